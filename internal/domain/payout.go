package domain

import "time"

// PayoutStatus represents the review state of a driver payout.
type PayoutStatus string

const (
	// PayoutStatusHeld marks a payout parked in the compliance review
	// window after escrow release and before the external transfer.
	PayoutStatusHeld PayoutStatus = "HELD"
	// PayoutStatusSent is terminal; a sent payout never re-enters escrow.
	PayoutStatusSent PayoutStatus = "SENT"
)

// Payout records the transfer of released trip earnings to a driver's
// external account. Escrow release always precedes the payout.
type Payout struct {
	ID         string
	DriverID   string
	TripID     string
	Amount     float64
	Status     PayoutStatus
	HeldAt     time.Time
	ReleasedAt time.Time // zero while held
}
