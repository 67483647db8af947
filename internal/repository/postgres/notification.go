package postgres

import (
	"context"
	"database/sql"
	"encoding/json"

	"rideshare/internal/domain"
	"rideshare/internal/repository"
)

// NotificationRepository is a PostgreSQL implementation of
// repository.NotificationRepository.
type NotificationRepository struct {
	q Querier
}

// NewNotificationRepository creates a new PostgreSQL notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{q: db}
}

// Create persists a new notification. Metadata is stored as JSONB.
func (r *NotificationRepository) Create(ctx context.Context, n *domain.Notification) error {
	query := `
		INSERT INTO notifications (id, user_id, role, title, message, type, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`

	var metadata []byte
	if n.Metadata != nil {
		var err error
		metadata, err = json.Marshal(n.Metadata)
		if err != nil {
			return err
		}
	}

	_, err := r.q.ExecContext(ctx, query,
		n.ID,
		n.UserID,
		n.Role,
		n.Title,
		n.Message,
		n.Type,
		metadata,
		n.CreatedAt,
	)

	return err
}

// ListByUser retrieves a user's notifications, newest first.
func (r *NotificationRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Notification, error) {
	query := `
		SELECT id, user_id, role, title, message, type, metadata, created_at
		FROM notifications WHERE user_id = $1 ORDER BY created_at DESC LIMIT 100
	`

	rows, err := r.q.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []*domain.Notification
	for rows.Next() {
		var n domain.Notification
		var metadata []byte
		if err := rows.Scan(
			&n.ID,
			&n.UserID,
			&n.Role,
			&n.Title,
			&n.Message,
			&n.Type,
			&metadata,
			&n.CreatedAt,
		); err != nil {
			return nil, err
		}
		if len(metadata) > 0 {
			if err := json.Unmarshal(metadata, &n.Metadata); err != nil {
				return nil, err
			}
		}
		notifications = append(notifications, &n)
	}
	return notifications, rows.Err()
}

// Ensure NotificationRepository implements repository.NotificationRepository.
var _ repository.NotificationRepository = (*NotificationRepository)(nil)
