package domain

import "time"

// TripStatus represents the current status of a trip.
type TripStatus string

const (
	TripStatusRequested  TripStatus = "REQUESTED"
	TripStatusConfirmed  TripStatus = "CONFIRMED"
	TripStatusInProgress TripStatus = "IN_PROGRESS"
	TripStatusCompleted  TripStatus = "COMPLETED"
	TripStatusCancelled  TripStatus = "CANCELLED"
)

// IsTerminal reports whether no further transition may leave the status.
func (s TripStatus) IsTerminal() bool {
	return s == TripStatusCompleted || s == TripStatusCancelled
}

// CanTransitionTo reports whether the status graph permits moving from s to next.
// Allowed edges: REQUESTED -> {CONFIRMED, IN_PROGRESS, CANCELLED},
// CONFIRMED -> {IN_PROGRESS, CANCELLED}, IN_PROGRESS -> {COMPLETED}.
func (s TripStatus) CanTransitionTo(next TripStatus) bool {
	switch s {
	case TripStatusRequested:
		return next == TripStatusConfirmed || next == TripStatusInProgress || next == TripStatusCancelled
	case TripStatusConfirmed:
		return next == TripStatusInProgress || next == TripStatusCancelled
	case TripStatusInProgress:
		return next == TripStatusCompleted
	default:
		// COMPLETED and CANCELLED are terminal.
		return false
	}
}

// PaymentMethod is an optional tag recording how the rider intends to pay.
// It is informational only; settlement always moves through the wallet ledger.
type PaymentMethod string

const (
	PaymentMethodWallet PaymentMethod = "WALLET"
	PaymentMethodCash   PaymentMethod = "CASH"
	PaymentMethodCard   PaymentMethod = "CARD"
)

// PaymentInfo tracks the settlement state embedded in a trip.
type PaymentInfo struct {
	RiderPaid          bool    // rider's wallet debited for the fare
	DriverPaid         bool    // driver's wallet credited with their share
	PlatformCommission float64 // commission charged at settlement, 0 before
	EscrowHeld         bool    // captured fare parked with the platform
}

// Trip represents a trip moving through the lifecycle graph.
type Trip struct {
	ID           string
	RiderID      string
	Pickup       string
	Dropoff      string
	DistanceKm   float64
	Duration     time.Duration
	Fare         float64
	Status       TripStatus
	DriverID     string // set at assignment, empty before
	DriverName   string
	VehiclePlate string
	Method       PaymentMethod
	Payment      PaymentInfo
	Rating       int // 1..5 once rated, 0 otherwise
	CreatedAt    time.Time
	CompletedAt  time.Time
	CancelledAt  time.Time
	CancelReason string
}

// CanCancel reports whether the trip is still cancellable. Only trips that
// have not yet started (REQUESTED or CONFIRMED) may be cancelled.
func (t *Trip) CanCancel() bool {
	return t.Status == TripStatusRequested || t.Status == TripStatusConfirmed
}

// Receipt is the fare breakdown for a settled trip. Receipts are derived from
// the trip record on demand and are never persisted.
type Receipt struct {
	ID          string
	TripID      string
	RiderID     string
	DriverID    string
	DriverName  string
	Pickup      string
	Dropoff     string
	DistanceKm  float64
	Duration    time.Duration
	Fare        float64
	Commission  float64
	DriverShare float64
	Method      PaymentMethod
	CompletedAt time.Time
	GeneratedAt time.Time
}
