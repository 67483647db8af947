package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/lib/pq"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// UserRepository is a PostgreSQL implementation of repository.UserRepository.
type UserRepository struct {
	q Querier
}

// NewUserRepository creates a new PostgreSQL user repository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{q: db}
}

// Create persists a new user.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	query := `
		INSERT INTO users (id, name, phone, role, active, rating_sum, rating_count, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	_, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		user.Role,
		user.Active,
		user.RatingSum,
		user.RatingCount,
		user.CreatedAt,
	)

	return err
}

// GetByID retrieves a user by ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	query := `
		SELECT id, name, phone, role, active, rating_sum, rating_count, created_at
		FROM users WHERE id = $1
	`

	var user domain.User
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Role,
		&user.Active,
		&user.RatingSum,
		&user.RatingCount,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// GetByPhone retrieves a user by phone number.
func (r *UserRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	query := `
		SELECT id, name, phone, role, active, rating_sum, rating_count, created_at
		FROM users WHERE phone = $1
	`

	var user domain.User
	err := r.q.QueryRowContext(ctx, query, phone).Scan(
		&user.ID,
		&user.Name,
		&user.Phone,
		&user.Role,
		&user.Active,
		&user.RatingSum,
		&user.RatingCount,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	return &user, nil
}

// GetAll retrieves all users.
func (r *UserRepository) GetAll(ctx context.Context) ([]*domain.User, error) {
	query := `
		SELECT id, name, phone, role, active, rating_sum, rating_count, created_at
		FROM users ORDER BY created_at DESC
	`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Phone,
			&user.Role,
			&user.Active,
			&user.RatingSum,
			&user.RatingCount,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// ListActiveByRoles retrieves the active users holding any of the given
// roles.
func (r *UserRepository) ListActiveByRoles(ctx context.Context, roles []domain.Role) ([]*domain.User, error) {
	query := `
		SELECT id, name, phone, role, active, rating_sum, rating_count, created_at
		FROM users
		WHERE active = TRUE AND role = ANY($1)
		ORDER BY created_at
	`

	names := make([]string, len(roles))
	for i, role := range roles {
		names[i] = string(role)
	}

	rows, err := r.q.QueryContext(ctx, query, pq.Array(names))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*domain.User
	for rows.Next() {
		var user domain.User
		if err := rows.Scan(
			&user.ID,
			&user.Name,
			&user.Phone,
			&user.Role,
			&user.Active,
			&user.RatingSum,
			&user.RatingCount,
			&user.CreatedAt,
		); err != nil {
			return nil, err
		}
		users = append(users, &user)
	}
	return users, rows.Err()
}

// SetActive updates a user's active flag.
func (r *UserRepository) SetActive(ctx context.Context, id string, active bool) error {
	query := `UPDATE users SET active = $2 WHERE id = $1`

	result, err := r.q.ExecContext(ctx, query, id, active)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AddRating folds one rating into the user's running rating aggregate.
func (r *UserRepository) AddRating(ctx context.Context, id string, rating int) error {
	query := `
		UPDATE users
		SET rating_sum = rating_sum + $2, rating_count = rating_count + 1
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query, id, rating)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Update persists changes to an existing user.
func (r *UserRepository) Update(ctx context.Context, user *domain.User) error {
	query := `
		UPDATE users
		SET name = $2, phone = $3, role = $4, active = $5, rating_sum = $6, rating_count = $7
		WHERE id = $1
	`

	result, err := r.q.ExecContext(ctx, query,
		user.ID,
		user.Name,
		user.Phone,
		user.Role,
		user.Active,
		user.RatingSum,
		user.RatingCount,
	)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// Ensure UserRepository implements repository.UserRepository.
var _ repository.UserRepository = (*UserRepository)(nil)
