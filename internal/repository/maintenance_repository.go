package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// MaintenanceRepository backs the batch sweeps. Every method commits one
// bounded batch on its own, so a crash mid-sweep leaves a partially cleaned
// table that the next run finishes.
type MaintenanceRepository struct {
	pool *pgxpool.Pool
}

func NewMaintenanceRepository(pool *pgxpool.Pool) *MaintenanceRepository {
	return &MaintenanceRepository{pool: pool}
}

// ExpireFriendRequestsBefore marks one batch of stale pending requests as
// expired and reports how many it touched.
func (r *MaintenanceRepository) ExpireFriendRequestsBefore(ctx context.Context, cutoff time.Time, batchSize int) (int, error) {
	const query = `
		UPDATE friend_requests
		SET status = 'expired', updated_at = NOW()
		WHERE id IN (
			SELECT id FROM friend_requests
			WHERE status = 'pending' AND created_at < $1
			LIMIT $2
		)
	`
	cmd, err := r.pool.Exec(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

// DeleteReadNotificationsBefore removes one batch of read notifications
// older than the retention cutoff.
func (r *MaintenanceRepository) DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time, batchSize int) (int, error) {
	const query = `
		DELETE FROM notifications
		WHERE id IN (
			SELECT id FROM notifications
			WHERE read AND read_at < $1
			LIMIT $2
		)
	`
	cmd, err := r.pool.Exec(ctx, query, cutoff, batchSize)
	if err != nil {
		return 0, err
	}
	return int(cmd.RowsAffected()), nil
}

// ListEmptyThreadIDs returns up to limit threads older than cutoff that
// have no messages.
func (r *MaintenanceRepository) ListEmptyThreadIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error) {
	const query = `
		SELECT t.id FROM chat_threads t
		WHERE t.created_at < $1
		  AND NOT EXISTS (SELECT 1 FROM chat_messages m WHERE m.thread_id = t.id)
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, cutoff, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var threadIDs []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		threadIDs = append(threadIDs, id)
	}
	return threadIDs, rows.Err()
}

// DeleteThreads removes the threads and any messages under them. The ids
// come from the empty-thread query, but a message may have landed since,
// so messages are cleared first.
func (r *MaintenanceRepository) DeleteThreads(ctx context.Context, threadIDs []string) error {
	if _, err := r.pool.Exec(ctx,
		`DELETE FROM chat_messages WHERE thread_id = ANY($1)`, threadIDs,
	); err != nil {
		return err
	}
	_, err := r.pool.Exec(ctx, `DELETE FROM chat_threads WHERE id = ANY($1)`, threadIDs)
	return err
}
