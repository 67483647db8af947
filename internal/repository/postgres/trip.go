package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// TripRepository is a PostgreSQL implementation of repository.TripRepository.
type TripRepository struct {
	q Querier
}

// NewTripRepository creates a new PostgreSQL trip repository.
func NewTripRepository(db *sql.DB) *TripRepository {
	return &TripRepository{q: db}
}

// NewTripRepositoryWithTx creates a trip repository using a transaction.
func NewTripRepositoryWithTx(tx *sql.Tx) *TripRepository {
	return &TripRepository{q: tx}
}

const tripColumns = `id, rider_id, pickup, dropoff, distance_km, duration_seconds, fare, status, driver_id, driver_name, vehicle_plate, payment_method, rider_paid, driver_paid, platform_commission, escrow_held, rating, created_at, completed_at, cancelled_at, cancel_reason`

// Create persists a new trip.
func (r *TripRepository) Create(ctx context.Context, trip *domain.Trip) error {
	query := `
		INSERT INTO trips (` + tripColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)
	`

	args := tripArgs(trip)
	_, err := r.q.ExecContext(ctx, query, args...)
	return err
}

// GetByID retrieves a trip by ID.
func (r *TripRepository) GetByID(ctx context.Context, id string) (*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE id = $1`

	trip, err := scanTrip(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return trip, nil
}

// GetAll retrieves all trips, newest first.
func (r *TripRepository) GetAll(ctx context.Context) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// GetByRiderID retrieves a rider's trips, newest first.
func (r *TripRepository) GetByRiderID(ctx context.Context, riderID string) ([]*domain.Trip, error) {
	query := `SELECT ` + tripColumns + ` FROM trips WHERE rider_id = $1 ORDER BY created_at DESC LIMIT 100`

	rows, err := r.q.QueryContext(ctx, query, riderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var trips []*domain.Trip
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, trip)
	}
	return trips, rows.Err()
}

// Update updates an existing trip.
func (r *TripRepository) Update(ctx context.Context, trip *domain.Trip) error {
	query := `
		UPDATE trips
		SET rider_id = $2, pickup = $3, dropoff = $4, distance_km = $5, duration_seconds = $6, fare = $7, status = $8, driver_id = $9, driver_name = $10, vehicle_plate = $11, payment_method = $12, rider_paid = $13, driver_paid = $14, platform_commission = $15, escrow_held = $16, rating = $17, created_at = $18, completed_at = $19, cancelled_at = $20, cancel_reason = $21
		WHERE id = $1
	`

	args := tripArgs(trip)
	result, err := r.q.ExecContext(ctx, query, args...)
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

// UpdateFromStatus updates an existing trip only while its stored status
// still matches from. The status predicate makes the write conditional, so
// of two racing transitions exactly one sees a row and the other gets
// ErrStaleStatus.
func (r *TripRepository) UpdateFromStatus(ctx context.Context, trip *domain.Trip, from domain.TripStatus) error {
	query := `
		UPDATE trips
		SET rider_id = $2, pickup = $3, dropoff = $4, distance_km = $5, duration_seconds = $6, fare = $7, status = $8, driver_id = $9, driver_name = $10, vehicle_plate = $11, payment_method = $12, rider_paid = $13, driver_paid = $14, platform_commission = $15, escrow_held = $16, rating = $17, created_at = $18, completed_at = $19, cancelled_at = $20, cancel_reason = $21
		WHERE id = $1 AND status = $22
	`

	args := append(tripArgs(trip), from)
	result, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return err
	}

	if rowsAffected == 0 {
		return repository.ErrStaleStatus
	}

	return nil
}

// tripArgs flattens a trip into the column order of tripColumns.
func tripArgs(trip *domain.Trip) []any {
	var driverID, driverName, vehiclePlate sql.NullString
	if trip.DriverID != "" {
		driverID = sql.NullString{String: trip.DriverID, Valid: true}
	}
	if trip.DriverName != "" {
		driverName = sql.NullString{String: trip.DriverName, Valid: true}
	}
	if trip.VehiclePlate != "" {
		vehiclePlate = sql.NullString{String: trip.VehiclePlate, Valid: true}
	}

	// Default payment method to WALLET if not set
	method := trip.Method
	if method == "" {
		method = domain.PaymentMethodWallet
	}

	var completedAt, cancelledAt sql.NullTime
	if !trip.CompletedAt.IsZero() {
		completedAt = sql.NullTime{Time: trip.CompletedAt, Valid: true}
	}
	if !trip.CancelledAt.IsZero() {
		cancelledAt = sql.NullTime{Time: trip.CancelledAt, Valid: true}
	}

	var cancelReason sql.NullString
	if trip.CancelReason != "" {
		cancelReason = sql.NullString{String: trip.CancelReason, Valid: true}
	}

	return []any{
		trip.ID,
		trip.RiderID,
		trip.Pickup,
		trip.Dropoff,
		trip.DistanceKm,
		int64(trip.Duration.Seconds()),
		trip.Fare,
		trip.Status,
		driverID,
		driverName,
		vehiclePlate,
		method,
		trip.Payment.RiderPaid,
		trip.Payment.DriverPaid,
		trip.Payment.PlatformCommission,
		trip.Payment.EscrowHeld,
		trip.Rating,
		trip.CreatedAt,
		completedAt,
		cancelledAt,
		cancelReason,
	}
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanTrip reads one trip row in the column order of tripColumns.
func scanTrip(row rowScanner) (*domain.Trip, error) {
	var trip domain.Trip
	var driverID, driverName, vehiclePlate, cancelReason sql.NullString
	var completedAt, cancelledAt sql.NullTime
	var durationSeconds int64

	err := row.Scan(
		&trip.ID,
		&trip.RiderID,
		&trip.Pickup,
		&trip.Dropoff,
		&trip.DistanceKm,
		&durationSeconds,
		&trip.Fare,
		&trip.Status,
		&driverID,
		&driverName,
		&vehiclePlate,
		&trip.Method,
		&trip.Payment.RiderPaid,
		&trip.Payment.DriverPaid,
		&trip.Payment.PlatformCommission,
		&trip.Payment.EscrowHeld,
		&trip.Rating,
		&trip.CreatedAt,
		&completedAt,
		&cancelledAt,
		&cancelReason,
	)
	if err != nil {
		return nil, err
	}

	trip.Duration = time.Duration(durationSeconds) * time.Second
	if driverID.Valid {
		trip.DriverID = driverID.String
	}
	if driverName.Valid {
		trip.DriverName = driverName.String
	}
	if vehiclePlate.Valid {
		trip.VehiclePlate = vehiclePlate.String
	}
	if completedAt.Valid {
		trip.CompletedAt = completedAt.Time
	}
	if cancelledAt.Valid {
		trip.CancelledAt = cancelledAt.Time
	}
	if cancelReason.Valid {
		trip.CancelReason = cancelReason.String
	}

	return &trip, nil
}

// Ensure TripRepository implements repository.TripRepository.
var _ repository.TripRepository = (*TripRepository)(nil)
