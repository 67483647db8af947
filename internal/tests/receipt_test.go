package tests

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
	"rideshare/internal/service"
)

// ──────────────────────────────────────────────
// 1. RECEIPT GENERATION
// ──────────────────────────────────────────────

func TestReceipt_CompletedTrip_BreakdownConservesFare(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	f.wallets.SetBalance("rider-1", domain.OwnerTypeRider, 1500)

	trip := f.startTrip(t, "rider-1", 1000)
	if _, err := f.svc.CompleteTrip(context.Background(), trip.ID); err != nil {
		t.Fatalf("CompleteTrip failed: %v", err)
	}

	receipts := service.NewReceiptService(f.trips)

	receipt, err := receipts.GenerateReceipt(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if receipt.ID != "rcpt-"+trip.ID {
		t.Errorf("expected receipt ID rcpt-%s, got %s", trip.ID, receipt.ID)
	}
	if !almostEqual(receipt.Fare, 1000) {
		t.Errorf("expected fare 1000, got %v", receipt.Fare)
	}
	if !almostEqual(receipt.Commission, 100) {
		t.Errorf("expected commission 100, got %v", receipt.Commission)
	}
	if !almostEqual(receipt.DriverShare, 900) {
		t.Errorf("expected driver share 900, got %v", receipt.DriverShare)
	}
	if !almostEqual(receipt.Commission+receipt.DriverShare, receipt.Fare) {
		t.Errorf("expected breakdown to sum to the fare, got %v + %v != %v",
			receipt.Commission, receipt.DriverShare, receipt.Fare)
	}
	if receipt.Pickup != "Central Station" || receipt.Dropoff != "Harbor View" {
		t.Errorf("expected trip endpoints on receipt, got %q to %q", receipt.Pickup, receipt.Dropoff)
	}
	if receipt.DriverName != "Sam" {
		t.Errorf("expected driver name Sam, got %q", receipt.DriverName)
	}
	if receipt.CompletedAt.IsZero() {
		t.Error("expected completion timestamp on receipt")
	}
}

func TestReceipt_RepeatRequests_SameDocument(t *testing.T) {
	t.Parallel()

	f := newTripFixture(t)
	f.wallets.SetBalance("rider-1", domain.OwnerTypeRider, 500)

	trip := f.startTrip(t, "rider-1", 300)
	if _, err := f.svc.CompleteTrip(context.Background(), trip.ID); err != nil {
		t.Fatalf("CompleteTrip failed: %v", err)
	}

	receipts := service.NewReceiptService(f.trips)

	first, err := receipts.GenerateReceipt(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := receipts.GenerateReceipt(context.Background(), trip.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("expected stable receipt ID, got %s then %s", first.ID, second.ID)
	}
	if !almostEqual(first.DriverShare, second.DriverShare) {
		t.Errorf("expected stable breakdown, got %v then %v", first.DriverShare, second.DriverShare)
	}
}

func TestReceipt_NonCompletedTrip_Rejected(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name   string
		status domain.TripStatus
	}{
		{name: "requested trip", status: domain.TripStatusRequested},
		{name: "confirmed trip", status: domain.TripStatusConfirmed},
		{name: "in-progress trip", status: domain.TripStatusInProgress},
		{name: "cancelled trip", status: domain.TripStatusCancelled},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			trips := NewMockTripRepository()
			trips.AddTrip(&domain.Trip{
				ID:      "trip-1",
				RiderID: "rider-1",
				Status:  tc.status,
				Fare:    300,
			})

			receipts := service.NewReceiptService(trips)

			_, err := receipts.GenerateReceipt(context.Background(), "trip-1")
			if !errors.Is(err, service.ErrTripNotCompleted) {
				t.Errorf("expected ErrTripNotCompleted, got %v", err)
			}
		})
	}
}

func TestReceipt_InvalidInput(t *testing.T) {
	t.Parallel()

	receipts := service.NewReceiptService(NewMockTripRepository())

	if _, err := receipts.GenerateReceipt(context.Background(), ""); !errors.Is(err, service.ErrInvalidTripID) {
		t.Errorf("expected ErrInvalidTripID, got %v", err)
	}

	if _, err := receipts.GenerateReceipt(context.Background(), "missing-trip"); !errors.Is(err, repository.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

// ──────────────────────────────────────────────
// 2. RECEIPT FORMATTING
// ──────────────────────────────────────────────

func TestReceiptFormat_ContainsFareBreakdown(t *testing.T) {
	t.Parallel()

	trips := NewMockTripRepository()
	trips.AddTrip(&domain.Trip{
		ID:         "trip-1",
		RiderID:    "rider-1",
		DriverID:   "driver-1",
		Pickup:     "Central Station",
		Dropoff:    "Harbor View",
		DistanceKm: 12.5,
		Duration:   25 * time.Minute,
		Fare:       300,
		Status:     domain.TripStatusCompleted,
		Method:     domain.PaymentMethodWallet,
		Payment: domain.PaymentInfo{
			RiderPaid:          true,
			DriverPaid:         true,
			PlatformCommission: 30,
		},
		CompletedAt: time.Now(),
	})

	receipts := service.NewReceiptService(trips)

	receipt, err := receipts.GenerateReceipt(context.Background(), "trip-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	formatted := receipts.FormatReceipt(receipt)

	for _, want := range []string{
		"rcpt-trip-1",
		"Central Station",
		"Harbor View",
		"$300.00",
		"$30.00",
		"$270.00",
		"25 min",
		"12.50 km",
		"WALLET",
	} {
		if !strings.Contains(formatted, want) {
			t.Errorf("expected formatted receipt to contain %q", want)
		}
	}
}
