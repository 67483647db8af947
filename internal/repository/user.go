package repository

import (
	"context"

	"rideshare/internal/domain"
)

// UserRepository defines the persistence operations for users.
type UserRepository interface {
	// Create persists a new user.
	Create(ctx context.Context, user *domain.User) error

	// GetByID retrieves a user by their ID.
	GetByID(ctx context.Context, id string) (*domain.User, error)

	// GetByPhone retrieves a user by phone number.
	GetByPhone(ctx context.Context, phone string) (*domain.User, error)

	// GetAll retrieves all users.
	GetAll(ctx context.Context) ([]*domain.User, error)

	// ListActiveByRoles retrieves the active users holding any of the
	// given roles. Suspended users are never returned.
	ListActiveByRoles(ctx context.Context, roles []domain.Role) ([]*domain.User, error)

	// SetActive updates a user's active flag.
	SetActive(ctx context.Context, id string, active bool) error

	// AddRating folds one rating into the user's running rating aggregate.
	AddRating(ctx context.Context, id string, rating int) error

	// Update persists changes to an existing user.
	Update(ctx context.Context, user *domain.User) error
}
