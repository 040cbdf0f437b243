package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BlockRepository struct {
	pool *pgxpool.Pool
}

func NewBlockRepository(pool *pgxpool.Pool) *BlockRepository {
	return &BlockRepository{pool: pool}
}

func (r *BlockRepository) Exists(ctx context.Context, blockerUID, blockedUID string) (bool, error) {
	const query = `SELECT 1 FROM blocks WHERE blocker_uid = $1 AND blocked_uid = $2`

	var one int
	err := r.pool.QueryRow(ctx, query, blockerUID, blockedUID).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

func (r *BlockRepository) Create(ctx context.Context, blockerUID, blockedUID string) error {
	const query = `
		INSERT INTO blocks (blocker_uid, blocked_uid)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.pool.Exec(ctx, query, blockerUID, blockedUID)
	return err
}

func (r *BlockRepository) Delete(ctx context.Context, blockerUID, blockedUID string) error {
	const query = `DELETE FROM blocks WHERE blocker_uid = $1 AND blocked_uid = $2`

	_, err := r.pool.Exec(ctx, query, blockerUID, blockedUID)
	return err
}
