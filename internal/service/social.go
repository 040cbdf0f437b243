package service

import (
	"context"

	"github.com/rs/zerolog"

	"scrimhub/internal/apperr"
	"scrimhub/internal/models"
)

const notificationsMaxPage = 50

// SocialService covers the small read/write surfaces around the core:
// blocklist management, notifications, and the caller's own profile.
type SocialService struct {
	blocks        BlockStore
	notifications NotificationStore
	profiles      ProfileStore
	honors        HonorStore
	log           zerolog.Logger
}

func NewSocialService(
	blocks BlockStore,
	notifications NotificationStore,
	profiles ProfileStore,
	honors HonorStore,
	log zerolog.Logger,
) *SocialService {
	return &SocialService{
		blocks:        blocks,
		notifications: notifications,
		profiles:      profiles,
		honors:        honors,
		log:           log,
	}
}

func (s *SocialService) Block(ctx context.Context, caller models.Caller, uid string) error {
	if caller.UID == "" {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if uid == "" {
		return apperr.New(apperr.InvalidArgument, "uid is required")
	}
	if uid == caller.UID {
		return apperr.New(apperr.FailedPrecondition, "you cannot block yourself")
	}
	return s.blocks.Create(ctx, caller.UID, uid)
}

func (s *SocialService) Unblock(ctx context.Context, caller models.Caller, uid string) error {
	if caller.UID == "" {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if uid == "" {
		return apperr.New(apperr.InvalidArgument, "uid is required")
	}
	return s.blocks.Delete(ctx, caller.UID, uid)
}

func (s *SocialService) Notifications(ctx context.Context, caller models.Caller, cursor string, pageSize int) ([]models.Notification, *string, error) {
	if caller.UID == "" {
		return nil, nil, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	if pageSize > notificationsMaxPage {
		return nil, nil, apperr.New(apperr.InvalidArgument, "pageSize must not exceed %d", notificationsMaxPage)
	}

	notifications, err := s.notifications.ListByUser(ctx, caller.UID, cursor, pageSize)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(notifications) == pageSize {
		last := notifications[len(notifications)-1].ID
		next = &last
	}
	return notifications, next, nil
}

func (s *SocialService) MarkNotificationsRead(ctx context.Context, caller models.Caller, ids []string) error {
	if caller.UID == "" {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if len(ids) == 0 {
		return apperr.New(apperr.InvalidArgument, "ids is required")
	}
	return s.notifications.MarkRead(ctx, caller.UID, ids)
}

type MeResult struct {
	User  models.User       `json:"user"`
	Honor models.HonorStats `json:"honor"`
}

func (s *SocialService) Me(ctx context.Context, caller models.Caller) (MeResult, error) {
	if caller.UID == "" {
		return MeResult{}, apperr.New(apperr.Unauthenticated, "authentication required")
	}

	user, err := s.profiles.GetByUID(ctx, caller.UID)
	if err != nil {
		return MeResult{}, err
	}
	stats, err := s.honors.Stats(ctx, caller.UID)
	if err != nil {
		return MeResult{}, err
	}
	return MeResult{User: user, Honor: stats}, nil
}
