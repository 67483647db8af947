package postgres

import (
	"context"
	"database/sql"
	"errors"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// PayoutRepository is a PostgreSQL implementation of repository.PayoutRepository.
type PayoutRepository struct {
	q Querier
}

// NewPayoutRepository creates a new PostgreSQL payout repository.
func NewPayoutRepository(db *sql.DB) *PayoutRepository {
	return &PayoutRepository{q: db}
}

// NewPayoutRepositoryWithTx creates a payout repository using a transaction.
func NewPayoutRepositoryWithTx(tx *sql.Tx) *PayoutRepository {
	return &PayoutRepository{q: tx}
}

// Create persists a new payout record.
func (r *PayoutRepository) Create(ctx context.Context, p *domain.Payout) error {
	query := `
		INSERT INTO payouts (id, driver_id, trip_id, amount, status, held_at, released_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`

	var releasedAt sql.NullTime
	if !p.ReleasedAt.IsZero() {
		releasedAt = sql.NullTime{Time: p.ReleasedAt, Valid: true}
	}

	_, err := r.q.ExecContext(ctx, query,
		p.ID,
		p.DriverID,
		p.TripID,
		p.Amount,
		p.Status,
		p.HeldAt,
		releasedAt,
	)

	return err
}

// GetByID retrieves a payout by ID.
func (r *PayoutRepository) GetByID(ctx context.Context, id string) (*domain.Payout, error) {
	query := `
		SELECT id, driver_id, trip_id, amount, status, held_at, released_at
		FROM payouts WHERE id = $1
	`

	var p domain.Payout
	var releasedAt sql.NullTime
	err := r.q.QueryRowContext(ctx, query, id).Scan(
		&p.ID,
		&p.DriverID,
		&p.TripID,
		&p.Amount,
		&p.Status,
		&p.HeldAt,
		&releasedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}

	if releasedAt.Valid {
		p.ReleasedAt = releasedAt.Time
	}

	return &p, nil
}

// MarkSent flips a payout from held to sent and stamps the release time.
// The status predicate makes the flip single-shot: a payout already sent
// matches no row and the caller gets ErrStaleStatus.
func (r *PayoutRepository) MarkSent(ctx context.Context, id string) error {
	query := `
		UPDATE payouts
		SET status = $2, released_at = NOW()
		WHERE id = $1 AND status = $3
	`

	result, err := r.q.ExecContext(ctx, query, id, domain.PayoutStatusSent, domain.PayoutStatusHeld)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		// Distinguish a missing payout from one already sent.
		if _, lookupErr := r.GetByID(ctx, id); lookupErr != nil {
			return lookupErr
		}
		return repository.ErrStaleStatus
	}

	return nil
}

// ListByDriver retrieves a driver's payouts, newest first.
func (r *PayoutRepository) ListByDriver(ctx context.Context, driverID string) ([]*domain.Payout, error) {
	query := `
		SELECT id, driver_id, trip_id, amount, status, held_at, released_at
		FROM payouts WHERE driver_id = $1 ORDER BY held_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, driverID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []*domain.Payout
	for rows.Next() {
		var p domain.Payout
		var releasedAt sql.NullTime
		if err := rows.Scan(
			&p.ID,
			&p.DriverID,
			&p.TripID,
			&p.Amount,
			&p.Status,
			&p.HeldAt,
			&releasedAt,
		); err != nil {
			return nil, err
		}
		if releasedAt.Valid {
			p.ReleasedAt = releasedAt.Time
		}
		payouts = append(payouts, &p)
	}
	return payouts, rows.Err()
}

// Ensure PayoutRepository implements repository.PayoutRepository.
var _ repository.PayoutRepository = (*PayoutRepository)(nil)
