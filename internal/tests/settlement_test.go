package tests

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"rideshare/internal/config"
	"rideshare/internal/domain"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// 1. FARE SPLIT
// ──────────────────────────────────────────────

func TestFareSplit_CommissionRoundedDriverGetsRemainder(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name           string
		fare           float64
		rate           float64
		wantDriver     float64
		wantCommission float64
	}{
		{"round fare", 1000, 0.10, 900, 100},
		{"fractional split", 55, 0.10, 49.5, 5.5},
		{"commission rounds to cents", 99.99, 0.10, 89.99, 10.00},
		{"tiny fare rounds commission away", 0.01, 0.10, 0.01, 0},
		{"zero fare", 0, 0.10, 0, 0},
		{"zero rate", 250, 0, 250, 0},
		{"quarter rate", 123.45, 0.25, 92.59, 30.86},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			driver, commission := service.SplitFare(tc.fare, tc.rate)

			if !almostEqual(driver, tc.wantDriver) {
				t.Errorf("expected driver share %.2f, got %v", tc.wantDriver, driver)
			}
			if !almostEqual(commission, tc.wantCommission) {
				t.Errorf("expected commission %.2f, got %v", tc.wantCommission, commission)
			}
			// The split must conserve the fare to the last cent.
			if !almostEqual(driver+commission, tc.fare) {
				t.Errorf("split does not sum back to fare: %v + %v != %v", driver, commission, tc.fare)
			}
		})
	}
}

// ──────────────────────────────────────────────
// 2. PAYOUT RELEASE
// ──────────────────────────────────────────────

func TestPayoutRelease_HeldPayout_SentAndDriverNotified(t *testing.T) {
	t.Parallel()

	f := newPayoutFixture(t)
	f.payouts.AddPayout(&domain.Payout{
		ID:       "payout-1",
		DriverID: "driver-1",
		TripID:   "trip-1",
		Amount:   900,
		Status:   domain.PayoutStatusHeld,
		HeldAt:   time.Now(),
	})

	released, err := f.svc.ReleasePayout(context.Background(), "payout-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if released.Status != domain.PayoutStatusSent {
		t.Errorf("expected status %s, got %s", domain.PayoutStatusSent, released.Status)
	}
	if released.ReleasedAt.IsZero() {
		t.Error("expected ReleasedAt to be set")
	}
	if !f.notifications.HasType("driver-1", domain.NotificationPayoutSent) {
		t.Error("expected driver payout notification")
	}
}

func TestPayoutRelease_SecondRelease_Rejected(t *testing.T) {
	t.Parallel()

	f := newPayoutFixture(t)
	f.payouts.AddPayout(&domain.Payout{
		ID:       "payout-1",
		DriverID: "driver-1",
		TripID:   "trip-1",
		Amount:   600,
		Status:   domain.PayoutStatusHeld,
		HeldAt:   time.Now(),
	})

	if _, err := f.svc.ReleasePayout(context.Background(), "payout-1"); err != nil {
		t.Fatalf("first release failed: %v", err)
	}

	_, err := f.svc.ReleasePayout(context.Background(), "payout-1")
	if !errors.Is(err, service.ErrPayoutAlreadySent) {
		t.Errorf("expected ErrPayoutAlreadySent, got %v", err)
	}
}

func TestPayoutRelease_AlreadySentPayout_Rejected(t *testing.T) {
	t.Parallel()

	f := newPayoutFixture(t)
	f.payouts.AddPayout(&domain.Payout{
		ID:         "payout-1",
		DriverID:   "driver-1",
		TripID:     "trip-1",
		Amount:     120,
		Status:     domain.PayoutStatusSent,
		HeldAt:     time.Now(),
		ReleasedAt: time.Now(),
	})

	_, err := f.svc.ReleasePayout(context.Background(), "payout-1")
	if !errors.Is(err, service.ErrPayoutAlreadySent) {
		t.Errorf("expected ErrPayoutAlreadySent, got %v", err)
	}
	if f.notifications.CountForUser("driver-1") != 0 {
		t.Error("expected no notification for a rejected release")
	}
}

func TestPayoutRelease_InvalidInput(t *testing.T) {
	t.Parallel()

	f := newPayoutFixture(t)

	_, err := f.svc.ReleasePayout(context.Background(), "")
	if !errors.Is(err, service.ErrInvalidPayoutID) {
		t.Errorf("expected ErrInvalidPayoutID, got %v", err)
	}

	_, err = f.svc.ReleasePayout(context.Background(), "missing-payout")
	if !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestPayoutRelease_ConcurrentAttempts_ExactlyOnce(t *testing.T) {
	t.Parallel()

	f := newPayoutFixture(t)
	f.payouts.AddPayout(&domain.Payout{
		ID:       "payout-1",
		DriverID: "driver-1",
		TripID:   "trip-1",
		Amount:   750,
		Status:   domain.PayoutStatusHeld,
		HeldAt:   time.Now(),
	})

	// The admin endpoint and the deferred worker release can race; the
	// guarded status flip lets exactly one of them through.
	const attempts = 6
	var (
		wg           sync.WaitGroup
		successCount int32
	)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := f.svc.ReleasePayout(context.Background(), "payout-1")
			switch {
			case err == nil:
				atomic.AddInt32(&successCount, 1)
			case errors.Is(err, service.ErrPayoutAlreadySent):
				// Lost the race.
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	if successCount != 1 {
		t.Errorf("expected exactly 1 successful release, got %d", successCount)
	}
	if got := f.notifications.CountForUser("driver-1"); got != 1 {
		t.Errorf("expected exactly 1 payout notification, got %d", got)
	}
}

// ──────────────────────────────────────────────
// 3. PAYOUT REVIEW THRESHOLD
// ──────────────────────────────────────────────

func TestPayoutThreshold_ShareAtThreshold_Held(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	f.wallets.SetBalance("rider-1", domain.OwnerTypeRider, 500)
	// Fare 300 leaves the driver exactly 270 after 10% commission.
	f.engine.PayoutReviewThreshold = 270

	trip := f.startTrip(t, "rider-1", 300)
	if _, err := f.svc.CompleteTrip(context.Background(), trip.ID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	payout := f.payouts.PayoutForTrip(trip.ID)
	if payout == nil {
		t.Fatal("expected a payout for the completed trip")
	}
	// Amounts at the threshold are reviewed, only strictly smaller ones skip it.
	if payout.Status != domain.PayoutStatusHeld {
		t.Errorf("expected payout at threshold to be held, got %s", payout.Status)
	}
	if !payout.ReleasedAt.IsZero() {
		t.Error("expected no release timestamp while held")
	}
}

// ──────────────────────────────────────────────
// 4. PAYOUT LISTING
// ──────────────────────────────────────────────

func TestPayoutList_ReturnsDriverPayoutsOnly(t *testing.T) {
	t.Parallel()

	f := newPayoutFixture(t)
	f.payouts.AddPayout(&domain.Payout{ID: "p-1", DriverID: "driver-1", TripID: "t-1", Amount: 90, Status: domain.PayoutStatusSent})
	f.payouts.AddPayout(&domain.Payout{ID: "p-2", DriverID: "driver-1", TripID: "t-2", Amount: 650, Status: domain.PayoutStatusHeld})
	f.payouts.AddPayout(&domain.Payout{ID: "p-3", DriverID: "driver-2", TripID: "t-3", Amount: 45, Status: domain.PayoutStatusSent})

	payouts, err := f.svc.ListDriverPayouts(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(payouts) != 2 {
		t.Errorf("expected 2 payouts for driver-1, got %d", len(payouts))
	}
	for _, p := range payouts {
		if p.DriverID != "driver-1" {
			t.Errorf("expected only driver-1 payouts, got one for %s", p.DriverID)
		}
	}

	if _, err := f.svc.ListDriverPayouts(context.Background(), ""); !errors.Is(err, service.ErrInvalidDriverID) {
		t.Errorf("expected ErrInvalidDriverID, got %v", err)
	}
}

// ──────────────────────────────────────────────
// HELPER FUNCTIONS
// ──────────────────────────────────────────────

type payoutFixture struct {
	payouts       *MockPayoutRepository
	notifications *MockNotificationRepository
	svc           *service.SettlementService
}

// newPayoutFixture builds a SettlementService for the payout paths, which
// never open a database transaction.
func newPayoutFixture(t *testing.T) *payoutFixture {
	t.Helper()

	payouts := NewMockPayoutRepository()
	notifications := NewMockNotificationRepository()
	users := NewMockUserRepository()

	notificationService := service.NewNotificationService(notifications, users, time.Second, zap.NewNop())

	cfg := config.SettlementConfig{
		CommissionRate:        0.10,
		PayoutReviewThreshold: 500,
		PayoutReviewWindow:    30 * time.Minute,
	}

	svc := service.NewSettlementService(nil, payouts, nil, nil, notificationService, cfg, zap.NewNop())

	return &payoutFixture{
		payouts:       payouts,
		notifications: notifications,
		svc:           svc,
	}
}
