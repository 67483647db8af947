package service

import (
	"context"
	"fmt"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// ReceiptService produces fare receipts for settled trips. Receipts are
// assembled from the trip record on demand rather than stored, so requests
// can be retried freely.
type ReceiptService struct {
	tripRepo repository.TripRepository
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(tripRepo repository.TripRepository) *ReceiptService {
	return &ReceiptService{
		tripRepo: tripRepo,
	}
}

// GenerateReceipt builds the receipt for a completed trip. The receipt ID is
// derived from the trip ID, so repeated requests return the same document.
func (s *ReceiptService) GenerateReceipt(ctx context.Context, tripID string) (*domain.Receipt, error) {
	if tripID == "" {
		return nil, ErrInvalidTripID
	}

	trip, err := s.tripRepo.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}

	// Receipts only exist once the fare has been settled.
	if trip.Status != domain.TripStatusCompleted {
		return nil, ErrTripNotCompleted
	}

	commission := trip.Payment.PlatformCommission

	return &domain.Receipt{
		ID:          "rcpt-" + trip.ID,
		TripID:      trip.ID,
		RiderID:     trip.RiderID,
		DriverID:    trip.DriverID,
		DriverName:  trip.DriverName,
		Pickup:      trip.Pickup,
		Dropoff:     trip.Dropoff,
		DistanceKm:  trip.DistanceKm,
		Duration:    trip.Duration,
		Fare:        trip.Fare,
		Commission:  commission,
		DriverShare: trip.Fare - commission,
		Method:      trip.Method,
		CompletedAt: trip.CompletedAt,
		GeneratedAt: time.Now(),
	}, nil
}

// FormatReceipt formats the receipt as a string (for email/print).
func (s *ReceiptService) FormatReceipt(receipt *domain.Receipt) string {
	return `
=====================================
            TRIP RECEIPT
=====================================
Receipt ID: ` + receipt.ID + `
Trip ID: ` + receipt.TripID + `
Date: ` + receipt.CompletedAt.Format("Jan 02, 2006 3:04 PM") + `

TRIP DETAILS
-------------------------------------
Pickup:      ` + receipt.Pickup + `
Dropoff:     ` + receipt.Dropoff + `
Duration:    ` + formatDuration(receipt.Duration) + `
Distance:    ` + formatFloat(receipt.DistanceKm) + ` km

FARE BREAKDOWN
-------------------------------------
Total Fare:       $` + formatFloat(receipt.Fare) + `
Platform Fee:     $` + formatFloat(receipt.Commission) + `
Driver Earnings:  $` + formatFloat(receipt.DriverShare) + `

PAYMENT
-------------------------------------
Method: ` + string(receipt.Method) + `

=====================================
     Thank you for riding with us!
=====================================
`
}

func formatFloat(f float64) string {
	return fmt.Sprintf("%.2f", f)
}

func formatDuration(d time.Duration) string {
	minutes := int(d.Minutes())
	return fmt.Sprintf("%d min", minutes)
}
