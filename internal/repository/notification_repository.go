package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scrimhub/internal/models"
)

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n models.Notification) error {
	const query = `
		INSERT INTO notifications (id, uid, kind, payload)
		VALUES ($1, $2, $3, $4)
	`
	_, err := r.pool.Exec(ctx, query, n.ID, n.UID, n.Kind, n.Payload)
	return err
}

func (r *NotificationRepository) ListByUser(ctx context.Context, uid, afterID string, limit int) ([]models.Notification, error) {
	const first = `
		SELECT id, uid, kind, payload, read, read_at, created_at
		FROM notifications
		WHERE uid = $1
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`
	const after = `
		SELECT id, uid, kind, payload, read, read_at, created_at
		FROM notifications
		WHERE uid = $1
		  AND (created_at, id) < (SELECT created_at, id FROM notifications WHERE id = $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var rows pgx.Rows
	var err error
	if afterID == "" {
		rows, err = r.pool.Query(ctx, first, uid, limit)
	} else {
		rows, err = r.pool.Query(ctx, after, uid, limit, afterID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.UID, &n.Kind, &n.Payload, &n.Read, &n.ReadAt, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

// MarkRead flips the given notifications to read, scoped to their owner.
func (r *NotificationRepository) MarkRead(ctx context.Context, uid string, ids []string) error {
	const query = `
		UPDATE notifications
		SET read = TRUE, read_at = NOW()
		WHERE uid = $1 AND id = ANY($2) AND NOT read
	`
	_, err := r.pool.Exec(ctx, query, uid, ids)
	return err
}
