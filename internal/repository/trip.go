package repository

import (
	"context"

	"rideshare/internal/domain"
)

// TripRepository defines the persistence operations for trips.
type TripRepository interface {
	// Create persists a new trip.
	Create(ctx context.Context, trip *domain.Trip) error

	// GetByID retrieves a trip by ID.
	GetByID(ctx context.Context, id string) (*domain.Trip, error)

	// GetAll retrieves recent trips.
	GetAll(ctx context.Context) ([]*domain.Trip, error)

	// GetByRiderID retrieves a rider's trips, newest first.
	GetByRiderID(ctx context.Context, riderID string) ([]*domain.Trip, error)

	// Update updates an existing trip without a status guard.
	Update(ctx context.Context, trip *domain.Trip) error

	// UpdateFromStatus updates an existing trip only if it is still in the
	// given status. Returns ErrStaleStatus when the guard misses, which is
	// how concurrent transitions on the same trip are serialized to exactly
	// one winner.
	UpdateFromStatus(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error
}
