package tests

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap"

	"rideshare/internal/domain"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// 1. WALLET READS
// ──────────────────────────────────────────────

func TestWallet_FirstReference_MaterializedAtZero(t *testing.T) {
	t.Parallel()

	wallets, _, svc := newWalletService(t)

	wallet, err := svc.GetWallet(context.Background(), "rider-1", domain.OwnerTypeRider)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if wallet.OwnerID != "rider-1" || wallet.OwnerType != domain.OwnerTypeRider {
		t.Error("expected owner reference to be recorded")
	}
	if wallet.Balance != 0 {
		t.Errorf("expected zero balance, got %.2f", wallet.Balance)
	}
	if !wallets.HasWallet("rider-1", domain.OwnerTypeRider) {
		t.Error("expected the wallet row to be materialized")
	}
}

func TestWallet_ExistingBalanceReturned(t *testing.T) {
	t.Parallel()

	wallets, _, svc := newWalletService(t)
	wallets.SetBalance("driver-1", domain.OwnerTypeDriver, 350)

	wallet, err := svc.GetWallet(context.Background(), "driver-1", domain.OwnerTypeDriver)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(wallet.Balance, 350) {
		t.Errorf("expected balance 350, got %.2f", wallet.Balance)
	}
}

func TestWallet_InvalidOwner_Rejected(t *testing.T) {
	t.Parallel()

	_, _, svc := newWalletService(t)

	testCases := []struct {
		name      string
		ownerID   string
		ownerType domain.OwnerType
	}{
		{"empty owner id", "", domain.OwnerTypeRider},
		{"unknown owner type", "rider-1", "merchant"},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.GetWallet(context.Background(), tc.ownerID, tc.ownerType)
			if !errors.Is(err, service.ErrInvalidOwner) {
				t.Errorf("expected ErrInvalidOwner, got %v", err)
			}
		})
	}
}

// ──────────────────────────────────────────────
// 2. BALANCE ADJUSTMENTS
// ──────────────────────────────────────────────

func TestWalletAdjust_CreditIncreasesBalance(t *testing.T) {
	t.Parallel()

	wallets, notifications, svc := newWalletService(t)

	balance, err := svc.AdjustBalance(context.Background(), service.AdjustBalanceRequest{
		OwnerID:   "rider-1",
		OwnerType: domain.OwnerTypeRider,
		Delta:     200,
		Reason:    "top-up",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !almostEqual(balance, 200) {
		t.Errorf("expected balance 200, got %.2f", balance)
	}
	if got := wallets.Balance("rider-1", domain.OwnerTypeRider); !almostEqual(got, 200) {
		t.Errorf("expected stored balance 200, got %.2f", got)
	}
	if !notifications.HasType("rider-1", domain.NotificationWalletUpdate) {
		t.Error("expected wallet update notification")
	}
}

func TestWalletAdjust_DebitDecreasesBalance(t *testing.T) {
	t.Parallel()

	wallets, _, svc := newWalletService(t)
	wallets.SetBalance("rider-1", domain.OwnerTypeRider, 500)

	balance, err := svc.AdjustBalance(context.Background(), service.AdjustBalanceRequest{
		OwnerID:   "rider-1",
		OwnerType: domain.OwnerTypeRider,
		Delta:     -150,
		Reason:    "voucher reversal",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(balance, 350) {
		t.Errorf("expected balance 350, got %.2f", balance)
	}
}

func TestWalletAdjust_Overdraft_RejectedUnchanged(t *testing.T) {
	t.Parallel()

	wallets, notifications, svc := newWalletService(t)
	wallets.SetBalance("rider-1", domain.OwnerTypeRider, 100)

	_, err := svc.AdjustBalance(context.Background(), service.AdjustBalanceRequest{
		OwnerID:   "rider-1",
		OwnerType: domain.OwnerTypeRider,
		Delta:     -250,
	})
	if !errors.Is(err, service.ErrInsufficientFunds) {
		t.Fatalf("expected ErrInsufficientFunds, got %v", err)
	}

	if got := wallets.Balance("rider-1", domain.OwnerTypeRider); !almostEqual(got, 100) {
		t.Errorf("expected balance unchanged at 100, got %.2f", got)
	}
	if notifications.CountForUser("rider-1") != 0 {
		t.Error("expected no notification for a failed adjustment")
	}
}

func TestWalletAdjust_ZeroDelta_Rejected(t *testing.T) {
	t.Parallel()

	_, _, svc := newWalletService(t)

	_, err := svc.AdjustBalance(context.Background(), service.AdjustBalanceRequest{
		OwnerID:   "rider-1",
		OwnerType: domain.OwnerTypeRider,
		Delta:     0,
	})
	if !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestWalletAdjust_DriverCredit_NotifiesDriverRole(t *testing.T) {
	t.Parallel()

	_, notifications, svc := newWalletService(t)

	if _, err := svc.AdjustBalance(context.Background(), service.AdjustBalanceRequest{
		OwnerID:   "driver-1",
		OwnerType: domain.OwnerTypeDriver,
		Delta:     80,
		Reason:    "referral bonus",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stored, err := notifications.ListByUser(context.Background(), "driver-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stored) != 1 {
		t.Fatalf("expected 1 notification, got %d", len(stored))
	}
	if stored[0].Role != domain.RoleDriver {
		t.Errorf("expected driver role on the notification, got %s", stored[0].Role)
	}
}

func TestWalletAdjust_PlatformWallet_NoNotification(t *testing.T) {
	t.Parallel()

	wallets, notifications, svc := newWalletService(t)

	// The platform wallet has no user behind it.
	if _, err := svc.AdjustBalance(context.Background(), service.AdjustBalanceRequest{
		OwnerID:   domain.PlatformOwnerID,
		OwnerType: domain.OwnerTypePlatform,
		Delta:     50,
		Reason:    "manual correction",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if got := wallets.Balance(domain.PlatformOwnerID, domain.OwnerTypePlatform); !almostEqual(got, 50) {
		t.Errorf("expected platform balance 50, got %.2f", got)
	}
	if notifications.CountNotifications() != 0 {
		t.Error("expected no notification for a platform adjustment")
	}
}

// ──────────────────────────────────────────────
// 3. AFFORDABILITY
// ──────────────────────────────────────────────

func TestWalletAfford_BoundaryInclusive(t *testing.T) {
	t.Parallel()

	wallets, _, svc := newWalletService(t)
	wallets.SetBalance("rider-1", domain.OwnerTypeRider, 300)

	testCases := []struct {
		name   string
		amount float64
		want   bool
	}{
		{"below balance", 299.99, true},
		{"exactly balance", 300, true},
		{"above balance", 300.01, false},
		{"zero amount", 0, true},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			got, err := svc.CanAfford(context.Background(), "rider-1", tc.amount)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tc.want {
				t.Errorf("expected CanAfford(%.2f) = %v, got %v", tc.amount, tc.want, got)
			}
		})
	}
}

func TestWalletAfford_UnfundedRider(t *testing.T) {
	t.Parallel()

	_, _, svc := newWalletService(t)

	// A rider nobody has funded yet affords exactly nothing.
	canAfford, err := svc.CanAfford(context.Background(), "rider-1", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if canAfford {
		t.Error("expected an unfunded rider not to afford 1")
	}

	canAfford, err = svc.CanAfford(context.Background(), "rider-1", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !canAfford {
		t.Error("expected a zero amount to always be affordable")
	}
}

func TestWalletAfford_InvalidInput_Rejected(t *testing.T) {
	t.Parallel()

	_, _, svc := newWalletService(t)

	if _, err := svc.CanAfford(context.Background(), "", 10); !errors.Is(err, service.ErrInvalidRiderID) {
		t.Errorf("expected ErrInvalidRiderID, got %v", err)
	}
	if _, err := svc.CanAfford(context.Background(), "rider-1", -5); !errors.Is(err, service.ErrInvalidAmount) {
		t.Errorf("expected ErrInvalidAmount, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 4. PLATFORM WALLET
// ──────────────────────────────────────────────

func TestWallet_EnsurePlatformWallet_Idempotent(t *testing.T) {
	t.Parallel()

	wallets, _, svc := newWalletService(t)

	if err := svc.EnsurePlatformWallet(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !wallets.HasWallet(domain.PlatformOwnerID, domain.OwnerTypePlatform) {
		t.Fatal("expected the platform wallet to exist")
	}

	// Re-running at startup must not reset an existing balance.
	wallets.SetBalance(domain.PlatformOwnerID, domain.OwnerTypePlatform, 75)
	if err := svc.EnsurePlatformWallet(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := wallets.Balance(domain.PlatformOwnerID, domain.OwnerTypePlatform); !almostEqual(got, 75) {
		t.Errorf("expected balance preserved at 75, got %.2f", got)
	}
}

// ──────────────────────────────────────────────
// HELPER FUNCTIONS
// ──────────────────────────────────────────────

// newWalletService builds a WalletService over mocks, without a cache.
func newWalletService(t *testing.T) (*MockWalletRepository, *MockNotificationRepository, *service.WalletService) {
	t.Helper()

	wallets := NewMockWalletRepository()
	notifications := NewMockNotificationRepository()
	users := NewMockUserRepository()

	notificationService := service.NewNotificationService(notifications, users, time.Second, zap.NewNop())
	svc := service.NewWalletService(wallets, nil, notificationService, zap.NewNop())

	return wallets, notifications, svc
}
