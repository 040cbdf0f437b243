package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
)

type TeamRepository struct {
	pool *pgxpool.Pool
}

func NewTeamRepository(pool *pgxpool.Pool) *TeamRepository {
	return &TeamRepository{pool: pool}
}

func (r *TeamRepository) GetByID(ctx context.Context, id string) (models.Team, error) {
	const query = `SELECT id, name, tag, owner_uid, member_ids, created_at FROM teams WHERE id = $1`

	var team models.Team
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&team.ID, &team.Name, &team.Tag, &team.OwnerUID, &team.MemberIDs, &team.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Team{}, apperr.New(apperr.NotFound, "team %s not found", id)
		}
		return models.Team{}, err
	}
	return team, nil
}

func (r *TeamRepository) GetMember(ctx context.Context, teamID, uid string) (models.TeamMember, error) {
	const query = `
		SELECT team_id, uid, role_in_team, joined_at
		FROM team_members WHERE team_id = $1 AND uid = $2
	`

	var member models.TeamMember
	err := r.pool.QueryRow(ctx, query, teamID, uid).Scan(
		&member.TeamID, &member.UID, &member.RoleInTeam, &member.JoinedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.TeamMember{}, apperr.New(apperr.NotFound,
				"%s is not a member of team %s", uid, teamID)
		}
		return models.TeamMember{}, err
	}
	return member, nil
}

// IsMember checks the membership row first and falls back to the flattened
// member_ids index on the team document.
func (r *TeamRepository) IsMember(ctx context.Context, teamID, uid string) (bool, error) {
	const direct = `SELECT 1 FROM team_members WHERE team_id = $1 AND uid = $2`

	var one int
	err := r.pool.QueryRow(ctx, direct, teamID, uid).Scan(&one)
	if err == nil {
		return true, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return false, err
	}

	const fallback = `SELECT 1 FROM teams WHERE id = $1 AND $2 = ANY(member_ids)`

	err = r.pool.QueryRow(ctx, fallback, teamID, uid).Scan(&one)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return false, nil
	}
	return false, err
}

// SetMemberRole merge-writes the role on an existing membership row.
func (r *TeamRepository) SetMemberRole(ctx context.Context, teamID, uid string, role models.TeamRole) error {
	const query = `UPDATE team_members SET role_in_team = $3 WHERE team_id = $1 AND uid = $2`

	cmd, err := r.pool.Exec(ctx, query, teamID, uid, role)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return apperr.New(apperr.NotFound, "%s is not a member of team %s", uid, teamID)
	}
	return nil
}
