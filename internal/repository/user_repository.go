package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scrimhub/internal/apperr"
	"scrimhub/internal/ids"
	"scrimhub/internal/models"
)

type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `
	uid, display_name, avatar_url, country, role, certified_streamer,
	disabled, ban_until, ban_reason, banned_by, total_honors, created_at, updated_at
`

func scanUser(row pgx.Row) (models.User, error) {
	var user models.User
	err := row.Scan(
		&user.UID,
		&user.DisplayName,
		&user.AvatarURL,
		&user.Country,
		&user.Role,
		&user.CertifiedStreamer,
		&user.Disabled,
		&user.BanUntil,
		&user.BanReason,
		&user.BannedBy,
		&user.TotalHonors,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	return user, err
}

func (r *UserRepository) GetByUID(ctx context.Context, uid string) (models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE uid = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, uid))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.User{}, apperr.New(apperr.NotFound, "user %s not found", uid)
		}
		return models.User{}, err
	}
	return user, nil
}

// GetManyByUIDs batch point-reads profiles for rankings enrichment. Missing
// uids are simply absent from the result.
func (r *UserRepository) GetManyByUIDs(ctx context.Context, uids []string) (map[string]models.User, error) {
	const query = `SELECT ` + userColumns + ` FROM users WHERE uid = ANY($1)`

	rows, err := r.pool.Query(ctx, query, uids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make(map[string]models.User, len(uids))
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users[user.UID] = user
	}
	return users, rows.Err()
}

type StatusChange struct {
	TargetUID     string
	ActorUID      string
	Disabled      bool
	BanUntil      *time.Time
	Reason        *string
	DurationHours *int
}

// ApplyStatusChange writes the profile ban fields and the audit log entry in
// one transaction. Unbanning clears the three ban fields.
func (r *UserRepository) ApplyStatusChange(ctx context.Context, change StatusChange) error {
	return pgx.BeginTxFunc(ctx, r.pool, pgx.TxOptions{}, func(tx pgx.Tx) error {
		if change.Disabled {
			const ban = `
				UPDATE users
				SET disabled = TRUE,
				    ban_until = $2,
				    ban_reason = $3,
				    banned_by = $4,
				    updated_at = NOW()
				WHERE uid = $1
			`
			cmd, err := tx.Exec(ctx, ban, change.TargetUID, change.BanUntil, change.Reason, change.ActorUID)
			if err != nil {
				return err
			}
			if cmd.RowsAffected() == 0 {
				return apperr.New(apperr.NotFound, "user %s not found", change.TargetUID)
			}
		} else {
			const unban = `
				UPDATE users
				SET disabled = FALSE,
				    ban_until = NULL,
				    ban_reason = NULL,
				    banned_by = NULL,
				    updated_at = NOW()
				WHERE uid = $1
			`
			cmd, err := tx.Exec(ctx, unban, change.TargetUID)
			if err != nil {
				return err
			}
			if cmd.RowsAffected() == 0 {
				return apperr.New(apperr.NotFound, "user %s not found", change.TargetUID)
			}
		}

		action := "unban"
		if change.Disabled {
			action = "ban"
		}

		const audit = `
			INSERT INTO admin_logs (id, actor_uid, target_uid, action, reason, duration_hours)
			VALUES ($1, $2, $3, $4, $5, $6)
		`
		_, err := tx.Exec(ctx, audit,
			ids.New(),
			change.ActorUID,
			change.TargetUID,
			action,
			change.Reason,
			change.DurationHours,
		)
		return err
	})
}
