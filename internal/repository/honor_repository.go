package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
	"scrimhub/internal/scoring"
)

type HonorRepository struct {
	pool *pgxpool.Pool
}

func NewHonorRepository(pool *pgxpool.Pool) *HonorRepository {
	return &HonorRepository{pool: pool}
}

// CountEventsSince is the caller's sliding-window total. Runs outside the
// give transaction, so the limit it feeds is advisory under true concurrency.
func (r *HonorRepository) CountEventsSince(ctx context.Context, from string, since time.Time) (int, error) {
	const query = `SELECT COUNT(*) FROM honor_events WHERE from_uid = $1 AND created_at >= $2`

	var count int
	err := r.pool.QueryRow(ctx, query, from, since).Scan(&count)
	return count, err
}

func (r *HonorRepository) CountEventsToSince(ctx context.Context, from, to string, since time.Time) (int, error) {
	const query = `
		SELECT COUNT(*) FROM honor_events
		WHERE from_uid = $1 AND to_uid = $2 AND created_at >= $3
	`

	var count int
	err := r.pool.QueryRow(ctx, query, from, to, since).Scan(&count)
	return count, err
}

// Give records the event, bumps the recipient's counters and recomputed
// stars, and increments the denormalized user total, all in one transaction.
func (r *HonorRepository) Give(ctx context.Context, event models.HonorEvent) (models.HonorStats, error) {
	var stats models.HonorStats

	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		pos, neg, err := lockStats(ctx, tx, event.To)
		if err != nil {
			return err
		}

		if event.Kind == models.HonorKindPos {
			pos++
		} else {
			neg++
		}

		const insertEvent = `
			INSERT INTO honor_events (id, from_uid, to_uid, kind, type, reason)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		if _, err := tx.Exec(ctx, insertEvent,
			event.ID, event.From, event.To, event.Kind, event.Type, event.Reason,
		); err != nil {
			return err
		}

		stats, err = upsertStats(ctx, tx, event.To, pos, neg)
		if err != nil {
			return err
		}

		const bumpTotal = `
			INSERT INTO users (uid, total_honors)
			VALUES ($1, 1)
			ON CONFLICT (uid) DO UPDATE
			SET total_honors = users.total_honors + 1, updated_at = NOW()
		`
		_, err = tx.Exec(ctx, bumpTotal, event.To)
		return err
	})
	if err != nil {
		return models.HonorStats{}, err
	}
	return stats, nil
}

// Revoke is the algebraic inverse of Give for one event, restricted to the
// original giver. A second revoke of the same id fails with not-found since
// the event row is already gone.
func (r *HonorRepository) Revoke(ctx context.Context, honorID, callerUID string) (models.HonorStats, error) {
	var stats models.HonorStats

	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		const getEvent = `
			SELECT from_uid, to_uid, kind FROM honor_events WHERE id = $1 FOR UPDATE
		`
		var from, to string
		var kind models.HonorKind
		if err := tx.QueryRow(ctx, getEvent, honorID).Scan(&from, &to, &kind); err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.New(apperr.NotFound, "honor event %s not found", honorID)
			}
			return err
		}
		if from != callerUID {
			return apperr.New(apperr.PermissionDenied, "only the original giver can revoke an honor")
		}

		pos, neg, err := lockStats(ctx, tx, to)
		if err != nil {
			return err
		}

		// Revoke clamps at zero rather than trusting the counters.
		if kind == models.HonorKindPos {
			if pos > 0 {
				pos--
			}
		} else {
			if neg > 0 {
				neg--
			}
		}

		if _, err := tx.Exec(ctx, `DELETE FROM honor_events WHERE id = $1`, honorID); err != nil {
			return err
		}

		stats, err = upsertStats(ctx, tx, to, pos, neg)
		if err != nil {
			return err
		}

		const dropTotal = `
			UPDATE users
			SET total_honors = GREATEST(total_honors - 1, 0), updated_at = NOW()
			WHERE uid = $1
		`
		_, err = tx.Exec(ctx, dropTotal, to)
		return err
	})
	if err != nil {
		return models.HonorStats{}, err
	}
	return stats, nil
}

// lockStats row-locks the recipient's counters for the rest of the
// transaction. FOR UPDATE on an absent row locks nothing, which would let
// two concurrent first honors both read (0,0) and overwrite each other, so
// the default row is inserted first; a concurrent seeder blocks on the
// conflicting insert until the winner commits, then locks the real row.
func lockStats(ctx context.Context, tx pgx.Tx, uid string) (pos, neg int, err error) {
	const seed = `
		INSERT INTO honor_stats (uid, pos, neg, total, stars)
		VALUES ($1, 0, 0, 0, $2)
		ON CONFLICT (uid) DO NOTHING
	`
	if _, err = tx.Exec(ctx, seed, uid, scoring.Stars(0, 0)); err != nil {
		return 0, 0, err
	}

	const query = `SELECT pos, neg FROM honor_stats WHERE uid = $1 FOR UPDATE`

	err = tx.QueryRow(ctx, query, uid).Scan(&pos, &neg)
	return pos, neg, err
}

func upsertStats(ctx context.Context, tx pgx.Tx, uid string, pos, neg int) (models.HonorStats, error) {
	const query = `
		INSERT INTO honor_stats (uid, pos, neg, total, stars, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW())
		ON CONFLICT (uid) DO UPDATE
		SET pos = $2, neg = $3, total = $4, stars = $5, updated_at = NOW()
		RETURNING updated_at
	`

	stats := models.HonorStats{
		UID:   uid,
		Pos:   pos,
		Neg:   neg,
		Total: pos + neg,
		Stars: scoring.Stars(pos, neg),
	}
	err := tx.QueryRow(ctx, query, uid, pos, neg, stats.Total, stats.Stars).Scan(&stats.UpdatedAt)
	if err != nil {
		return models.HonorStats{}, err
	}
	return stats, nil
}

// Stats returns the stored counters, or the lazy default for users nobody
// has honored yet.
func (r *HonorRepository) Stats(ctx context.Context, uid string) (models.HonorStats, error) {
	const query = `SELECT uid, pos, neg, total, stars, updated_at FROM honor_stats WHERE uid = $1`

	var stats models.HonorStats
	err := r.pool.QueryRow(ctx, query, uid).Scan(
		&stats.UID, &stats.Pos, &stats.Neg, &stats.Total, &stats.Stars, &stats.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.HonorStats{UID: uid, Stars: scoring.Stars(0, 0)}, nil
	}
	if err != nil {
		return models.HonorStats{}, err
	}
	return stats, nil
}

// Rankings pages through honor_stats in (stars, total, uid) descending
// keyset order. afterUID is the last uid of the previous page; an unknown
// afterUID yields an empty continuation.
func (r *HonorRepository) Rankings(ctx context.Context, afterUID string, limit int) ([]models.HonorStats, error) {
	const first = `
		SELECT uid, pos, neg, total, stars, updated_at
		FROM honor_stats
		ORDER BY stars DESC, total DESC, uid DESC
		LIMIT $1
	`
	const after = `
		SELECT uid, pos, neg, total, stars, updated_at
		FROM honor_stats
		WHERE (stars, total, uid) < (SELECT stars, total, uid FROM honor_stats WHERE uid = $2)
		ORDER BY stars DESC, total DESC, uid DESC
		LIMIT $1
	`

	var rows pgx.Rows
	var err error
	if afterUID == "" {
		rows, err = r.pool.Query(ctx, first, limit)
	} else {
		rows, err = r.pool.Query(ctx, after, limit, afterUID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var page []models.HonorStats
	for rows.Next() {
		var stats models.HonorStats
		if err := rows.Scan(
			&stats.UID, &stats.Pos, &stats.Neg, &stats.Total, &stats.Stars, &stats.UpdatedAt,
		); err != nil {
			return nil, err
		}
		page = append(page, stats)
	}
	return page, rows.Err()
}
