package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
)

type ScrimRepository struct {
	pool *pgxpool.Pool
}

func NewScrimRepository(pool *pgxpool.Pool) *ScrimRepository {
	return &ScrimRepository{pool: pool}
}

const scrimColumns = `
	id, team_id, status, region, scheduled_at, note,
	challenger_team_id, challenged_by, challenged_at, created_at, updated_at
`

func scanScrim(row pgx.Row) (models.Scrim, error) {
	var scrim models.Scrim
	err := row.Scan(
		&scrim.ID,
		&scrim.TeamID,
		&scrim.Status,
		&scrim.Region,
		&scrim.ScheduledAt,
		&scrim.Note,
		&scrim.ChallengerTeamID,
		&scrim.ChallengedBy,
		&scrim.ChallengedAt,
		&scrim.CreatedAt,
		&scrim.UpdatedAt,
	)
	return scrim, err
}

func (r *ScrimRepository) Create(ctx context.Context, scrim models.Scrim) error {
	const query = `
		INSERT INTO scrims (id, team_id, status, region, scheduled_at, note)
		VALUES ($1, $2, $3, $4, $5, $6)
	`

	_, err := r.pool.Exec(ctx, query,
		scrim.ID, scrim.TeamID, scrim.Status, scrim.Region, scrim.ScheduledAt, scrim.Note,
	)
	return err
}

func (r *ScrimRepository) GetByID(ctx context.Context, id string) (models.Scrim, error) {
	const query = `SELECT ` + scrimColumns + ` FROM scrims WHERE id = $1`

	scrim, err := scanScrim(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Scrim{}, apperr.New(apperr.NotFound, "scrim %s not found", id)
		}
		return models.Scrim{}, err
	}
	return scrim, nil
}

// ListOpen pages open scrims newest first, keyset on (created_at, id).
func (r *ScrimRepository) ListOpen(ctx context.Context, afterID string, limit int) ([]models.Scrim, error) {
	const first = `
		SELECT ` + scrimColumns + ` FROM scrims
		WHERE status = 'open'
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`
	const after = `
		SELECT ` + scrimColumns + ` FROM scrims
		WHERE status = 'open'
		  AND (created_at, id) < (SELECT created_at, id FROM scrims WHERE id = $2)
		ORDER BY created_at DESC, id DESC
		LIMIT $1
	`

	var rows pgx.Rows
	var err error
	if afterID == "" {
		rows, err = r.pool.Query(ctx, first, limit)
	} else {
		rows, err = r.pool.Query(ctx, after, limit, afterID)
	}
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scrims []models.Scrim
	for rows.Next() {
		scrim, err := scanScrim(rows)
		if err != nil {
			return nil, err
		}
		scrims = append(scrims, scrim)
	}
	return scrims, rows.Err()
}

type ChallengeParams struct {
	ScrimID           string
	ChallengingTeamID string
	CallerUID         string
	IdempotencyKey    string // empty when the client sent no clientId
}

// Challenge performs the open -> challenged transition. The scrim row is
// re-read under a row lock inside the transaction, so the check-then-update
// sequence is atomic against concurrent challengers: at most one wins.
func (r *ScrimRepository) Challenge(ctx context.Context, params ChallengeParams) (models.Scrim, error) {
	var scrim models.Scrim

	err := pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		const lock = `SELECT ` + scrimColumns + ` FROM scrims WHERE id = $1 FOR UPDATE`

		var err error
		scrim, err = scanScrim(tx.QueryRow(ctx, lock, params.ScrimID))
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return apperr.New(apperr.NotFound, "scrim %s not found", params.ScrimID)
			}
			return err
		}

		if scrim.Status != models.ScrimStatusOpen {
			return apperr.New(apperr.FailedPrecondition,
				"scrim is not open for challenges (status: %s)", scrim.Status)
		}
		if scrim.TeamID == params.ChallengingTeamID {
			return apperr.New(apperr.FailedPrecondition, "a team cannot challenge its own scrim")
		}

		member, err := isTeamMember(ctx, tx, params.ChallengingTeamID, params.CallerUID)
		if err != nil {
			return err
		}
		if !member {
			return apperr.New(apperr.PermissionDenied,
				"caller is not a member of team %s", params.ChallengingTeamID)
		}

		// Paranoia guard kept from the original flow: a challenger already
		// recorded on a nominally open scrim means an interleaved writer.
		if scrim.ChallengerTeamID != nil {
			return apperr.New(apperr.AlreadyExists, "scrim already has a challenger")
		}

		const update = `
			UPDATE scrims
			SET status = 'challenged',
			    challenger_team_id = $2,
			    challenged_by = $3,
			    challenged_at = NOW(),
			    updated_at = NOW()
			WHERE id = $1
		`
		if _, err := tx.Exec(ctx, update,
			params.ScrimID, params.ChallengingTeamID, params.CallerUID,
		); err != nil {
			return err
		}

		if params.IdempotencyKey != "" {
			const record = `
				INSERT INTO idempotency_keys (caller_uid, operation, client_id)
				VALUES ($1, 'challenge', $2)
				ON CONFLICT DO NOTHING
			`
			if _, err := tx.Exec(ctx, record, params.CallerUID, params.IdempotencyKey); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return models.Scrim{}, err
	}
	return scrim, nil
}

// isTeamMember checks the membership document directly, then falls back to
// the flattened member_ids index on the team document.
func isTeamMember(ctx context.Context, tx pgx.Tx, teamID, uid string) (bool, error) {
	const direct = `SELECT 1 FROM team_members WHERE team_id = $1 AND uid = $2`

	var one int
	err := tx.QueryRow(ctx, direct, teamID, uid).Scan(&one)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	const fallback = `SELECT 1 FROM teams WHERE id = $1 AND $2 = ANY(member_ids)`

	err = tx.QueryRow(ctx, fallback, teamID, uid).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// HasIdempotencyKey is the pre-transaction replay check. Records are
// written once inside the winning transaction and never updated.
func (r *ScrimRepository) HasIdempotencyKey(ctx context.Context, callerUID, operation, clientID string) (bool, error) {
	const query = `
		SELECT 1 FROM idempotency_keys
		WHERE caller_uid = $1 AND operation = $2 AND client_id = $3
	`

	var one int
	err := r.pool.QueryRow(ctx, query, callerUID, operation, clientID).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}
