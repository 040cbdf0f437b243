package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"scrimhub/internal/apperr"
	"scrimhub/internal/identity"
	"scrimhub/internal/models"
	"scrimhub/internal/repository"
)

const (
	banReasonMaxLen  = 300
	banMaxDurationHr = 24 * 365
)

type UserStatusStore interface {
	GetByUID(ctx context.Context, uid string) (models.User, error)
	ApplyStatusChange(ctx context.Context, change repository.StatusChange) error
}

type ModerationService struct {
	users    UserStatusStore
	provider identity.Provider
	ownerUID string
	log      zerolog.Logger
}

func NewModerationService(users UserStatusStore, provider identity.Provider, ownerUID string, log zerolog.Logger) *ModerationService {
	return &ModerationService{
		users:    users,
		provider: provider,
		ownerUID: ownerUID,
		log:      log,
	}
}

type SetUserStatusInput struct {
	TargetUID     string
	Disabled      bool
	DurationHours *int
	Reason        *string
}

type SetUserStatusResult struct {
	Success  bool       `json:"success"`
	Message  string     `json:"message"`
	BanUntil *time.Time `json:"banUntil"`
}

// canSetUserStatus is the moderation authorization policy, first matching
// rule wins.
func canSetUserStatus(callerUID string, callerRole models.Role, targetUID string, targetRole models.Role, ownerUID string, disabled bool) error {
	if callerUID == targetUID {
		return apperr.New(apperr.FailedPrecondition, "you cannot moderate yourself")
	}
	if targetUID == ownerUID {
		return apperr.New(apperr.PermissionDenied, "the platform owner cannot be moderated")
	}
	if callerRole == models.RoleModerator && targetRole.IsStaff() {
		return apperr.New(apperr.PermissionDenied, "moderators cannot act on staff accounts")
	}
	if disabled && callerRole != models.RoleOwner && callerRole != models.RoleAdmin {
		return apperr.New(apperr.PermissionDenied, "only admins may ban users")
	}
	return nil
}

// SetUserStatus bans or unbans a user. The identity-provider flag and the
// profile document are two separate systems with no shared transaction: the
// provider update runs first, and if the profile write then fails the two
// are left divergent until reconciled out of band.
func (s *ModerationService) SetUserStatus(ctx context.Context, caller models.Caller, input SetUserStatusInput) (SetUserStatusResult, error) {
	if caller.UID == "" {
		return SetUserStatusResult{}, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if input.TargetUID == "" {
		return SetUserStatusResult{}, apperr.New(apperr.InvalidArgument, "uid is required")
	}
	if input.DurationHours != nil && (*input.DurationHours <= 0 || *input.DurationHours > banMaxDurationHr) {
		return SetUserStatusResult{}, apperr.New(apperr.InvalidArgument,
			"duration must be between 1 and %d hours", banMaxDurationHr)
	}
	if input.Reason != nil && len(*input.Reason) > banReasonMaxLen {
		return SetUserStatusResult{}, apperr.New(apperr.InvalidArgument,
			"reason exceeds %d characters", banReasonMaxLen)
	}

	target, err := s.users.GetByUID(ctx, input.TargetUID)
	if err != nil {
		return SetUserStatusResult{}, err
	}

	if err := canSetUserStatus(caller.UID, caller.Role, input.TargetUID, target.Role, s.ownerUID, input.Disabled); err != nil {
		return SetUserStatusResult{}, err
	}

	var banUntil *time.Time
	if input.Disabled && input.DurationHours != nil {
		until := time.Now().Add(time.Duration(*input.DurationHours) * time.Hour)
		banUntil = &until
	}

	if err := s.provider.SetDisabled(ctx, input.TargetUID, input.Disabled); err != nil {
		return SetUserStatusResult{}, apperr.Wrap(err, apperr.Internal, "identity provider update failed")
	}

	change := repository.StatusChange{
		TargetUID:     input.TargetUID,
		ActorUID:      caller.UID,
		Disabled:      input.Disabled,
		BanUntil:      banUntil,
		Reason:        input.Reason,
		DurationHours: input.DurationHours,
	}
	if err := s.users.ApplyStatusChange(ctx, change); err != nil {
		// Provider flag is already flipped; the two systems now disagree
		// and need manual reconciliation.
		s.log.Error().Err(err).
			Str("target", input.TargetUID).
			Bool("disabled", input.Disabled).
			Msg("profile write failed after identity provider update")
		return SetUserStatusResult{}, apperr.Wrap(err, apperr.Internal, "profile update failed")
	}

	var message string
	switch {
	case input.Disabled && banUntil != nil:
		message = fmt.Sprintf("user %s banned until %s", input.TargetUID, banUntil.UTC().Format(time.RFC3339))
	case input.Disabled:
		message = fmt.Sprintf("user %s banned permanently", input.TargetUID)
	default:
		message = fmt.Sprintf("user %s unbanned", input.TargetUID)
	}

	s.log.Info().
		Str("actor", caller.UID).
		Str("target", input.TargetUID).
		Bool("disabled", input.Disabled).
		Msg("user status updated")

	return SetUserStatusResult{Success: true, Message: message, BanUntil: banUntil}, nil
}
