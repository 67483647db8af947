package repository

import (
	"context"

	"rideshare/internal/domain"
)

// PayoutRepository defines the persistence operations for driver payouts.
type PayoutRepository interface {
	// Create persists a new payout record.
	Create(ctx context.Context, p *domain.Payout) error

	// GetByID retrieves a payout by its ID.
	GetByID(ctx context.Context, id string) (*domain.Payout, error)

	// MarkSent flips a payout from held to sent and stamps the release
	// time. Returns ErrStaleStatus if the payout was already sent, so a
	// payout can only ever be released once.
	MarkSent(ctx context.Context, id string) error

	// ListByDriver retrieves a driver's payouts, newest first.
	ListByDriver(ctx context.Context, driverID string) ([]*domain.Payout, error)
}
