package service

import (
	"context"

	"github.com/rs/zerolog"

	"scrimhub/internal/apperr"
	"scrimhub/internal/ids"
	"scrimhub/internal/models"
	"scrimhub/internal/repository"
)

const (
	clientIDMinLen     = 8
	clientIDMaxLen     = 64
	scrimsDefaultPage  = 20
	scrimsMaxPage      = 50
	challengeOperation = "challenge"
)

type ScrimStore interface {
	Create(ctx context.Context, scrim models.Scrim) error
	GetByID(ctx context.Context, id string) (models.Scrim, error)
	ListOpen(ctx context.Context, afterID string, limit int) ([]models.Scrim, error)
	Challenge(ctx context.Context, params repository.ChallengeParams) (models.Scrim, error)
	HasIdempotencyKey(ctx context.Context, callerUID, operation, clientID string) (bool, error)
}

type TeamStore interface {
	GetByID(ctx context.Context, id string) (models.Team, error)
	GetMember(ctx context.Context, teamID, uid string) (models.TeamMember, error)
	IsMember(ctx context.Context, teamID, uid string) (bool, error)
	SetMemberRole(ctx context.Context, teamID, uid string, role models.TeamRole) error
}

type ScrimService struct {
	scrims        ScrimStore
	teams         TeamStore
	notifications NotificationStore
	log           zerolog.Logger
}

func NewScrimService(scrims ScrimStore, teams TeamStore, notifications NotificationStore, log zerolog.Logger) *ScrimService {
	return &ScrimService{
		scrims:        scrims,
		teams:         teams,
		notifications: notifications,
		log:           log,
	}
}

type ChallengeInput struct {
	ScrimID           string
	ChallengingTeamID string
	ClientID          string
}

type ChallengeResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// Challenge moves a scrim from open to challenged, at most once. With a
// clientId the call is idempotent: a replay that finds the recorded key
// returns success without touching the scrim.
func (s *ScrimService) Challenge(ctx context.Context, caller models.Caller, input ChallengeInput) (ChallengeResult, error) {
	if caller.UID == "" {
		return ChallengeResult{}, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if input.ScrimID == "" || input.ChallengingTeamID == "" {
		return ChallengeResult{}, apperr.New(apperr.InvalidArgument,
			"scrimId and challengingTeamId are required")
	}
	if input.ClientID != "" {
		if len(input.ClientID) < clientIDMinLen || len(input.ClientID) > clientIDMaxLen {
			return ChallengeResult{}, apperr.New(apperr.InvalidArgument,
				"clientId must be between %d and %d characters", clientIDMinLen, clientIDMaxLen)
		}

		done, err := s.scrims.HasIdempotencyKey(ctx, caller.UID, challengeOperation, input.ClientID)
		if err != nil {
			return ChallengeResult{}, err
		}
		if done {
			return ChallengeResult{Success: true, Message: "challenge already processed"}, nil
		}
	}

	scrim, err := s.scrims.Challenge(ctx, repository.ChallengeParams{
		ScrimID:           input.ScrimID,
		ChallengingTeamID: input.ChallengingTeamID,
		CallerUID:         caller.UID,
		IdempotencyKey:    input.ClientID,
	})
	if err != nil {
		return ChallengeResult{}, err
	}

	s.log.Info().
		Str("scrim_id", input.ScrimID).
		Str("challenging_team", input.ChallengingTeamID).
		Str("caller", caller.UID).
		Msg("scrim challenged")

	// Best-effort ping to the listing team's owner; the challenge itself is
	// already committed.
	if team, err := s.teams.GetByID(ctx, scrim.TeamID); err == nil {
		notification := models.Notification{
			ID:   ids.New(),
			UID:  team.OwnerUID,
			Kind: models.NotificationScrimChallenged,
			Payload: map[string]any{
				"scrimId":          input.ScrimID,
				"challengerTeamId": input.ChallengingTeamID,
				"challengedBy":     caller.UID,
			},
		}
		if err := s.notifications.Create(ctx, notification); err != nil {
			s.log.Warn().Err(err).Str("scrim_id", input.ScrimID).Msg("challenge notification failed")
		}
	}

	return ChallengeResult{Success: true, Message: "challenge submitted"}, nil
}

// Open publishes a new scrim listing for one of the caller's teams.
func (s *ScrimService) Open(ctx context.Context, caller models.Caller, scrim models.Scrim) (models.Scrim, error) {
	if caller.UID == "" {
		return models.Scrim{}, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if scrim.TeamID == "" {
		return models.Scrim{}, apperr.New(apperr.InvalidArgument, "teamId is required")
	}

	member, err := s.teams.IsMember(ctx, scrim.TeamID, caller.UID)
	if err != nil {
		return models.Scrim{}, err
	}
	if !member {
		return models.Scrim{}, apperr.New(apperr.PermissionDenied,
			"caller is not a member of team %s", scrim.TeamID)
	}

	scrim.ID = ids.New()
	scrim.Status = models.ScrimStatusOpen
	if err := s.scrims.Create(ctx, scrim); err != nil {
		return models.Scrim{}, err
	}

	s.log.Info().Str("scrim_id", scrim.ID).Str("team_id", scrim.TeamID).Msg("scrim opened")
	return scrim, nil
}

func (s *ScrimService) Get(ctx context.Context, scrimID string) (models.Scrim, error) {
	if scrimID == "" {
		return models.Scrim{}, apperr.New(apperr.InvalidArgument, "scrimId is required")
	}
	return s.scrims.GetByID(ctx, scrimID)
}

func (s *ScrimService) ListOpen(ctx context.Context, cursor string, pageSize int) ([]models.Scrim, *string, error) {
	if pageSize <= 0 {
		pageSize = scrimsDefaultPage
	}
	if pageSize > scrimsMaxPage {
		return nil, nil, apperr.New(apperr.InvalidArgument, "pageSize must not exceed %d", scrimsMaxPage)
	}

	scrims, err := s.scrims.ListOpen(ctx, cursor, pageSize)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(scrims) == pageSize {
		last := scrims[len(scrims)-1].ID
		next = &last
	}
	return scrims, next, nil
}
