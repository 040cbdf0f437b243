package service

import (
	"context"

	"github.com/rs/zerolog"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
)

type TeamService struct {
	teams TeamStore
	log   zerolog.Logger
}

func NewTeamService(teams TeamStore, log zerolog.Logger) *TeamService {
	return &TeamService{teams: teams, log: log}
}

type SetMemberRoleInput struct {
	TeamID     string
	TargetUID  string
	RoleInTeam models.TeamRole
}

// SetMemberRole merge-writes a member's in-team role. Only owner and
// manager members may change roles at all; touching the manager tier in
// either direction is reserved for the team's designated owner.
func (s *TeamService) SetMemberRole(ctx context.Context, caller models.Caller, input SetMemberRoleInput) error {
	if caller.UID == "" {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if input.TeamID == "" || input.TargetUID == "" {
		return apperr.New(apperr.InvalidArgument, "teamId and targetUid are required")
	}
	if input.RoleInTeam != models.TeamRoleManager && input.RoleInTeam != models.TeamRolePlayer {
		return apperr.New(apperr.InvalidArgument, "roleInTeam must be manager or player")
	}

	team, err := s.teams.GetByID(ctx, input.TeamID)
	if err != nil {
		return err
	}

	actor, err := s.teams.GetMember(ctx, input.TeamID, caller.UID)
	if err != nil {
		if apperr.IsKind(err, apperr.NotFound) {
			return apperr.New(apperr.PermissionDenied, "caller is not a member of team %s", input.TeamID)
		}
		return err
	}
	if actor.RoleInTeam != models.TeamRoleOwner && actor.RoleInTeam != models.TeamRoleManager {
		return apperr.New(apperr.PermissionDenied, "only the team owner or a manager can change roles")
	}

	target, err := s.teams.GetMember(ctx, input.TeamID, input.TargetUID)
	if err != nil {
		return err
	}

	touchesManagerTier := input.RoleInTeam == models.TeamRoleManager ||
		target.RoleInTeam == models.TeamRoleManager
	if touchesManagerTier && caller.UID != team.OwnerUID {
		return apperr.New(apperr.PermissionDenied,
			"only the team owner can promote or demote managers")
	}

	if err := s.teams.SetMemberRole(ctx, input.TeamID, input.TargetUID, input.RoleInTeam); err != nil {
		return err
	}

	s.log.Info().
		Str("team_id", input.TeamID).
		Str("target", input.TargetUID).
		Str("role", string(input.RoleInTeam)).
		Str("actor", caller.UID).
		Msg("team member role updated")
	return nil
}
