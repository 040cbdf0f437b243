package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"scrimhub/internal/apperr"
	"scrimhub/internal/config"
	"scrimhub/internal/ids"
	"scrimhub/internal/models"
)

const (
	rankingsDefaultPageSize = 20
	rankingsMaxPageSize     = 50
	honorReasonMaxLen       = 200
)

type HonorStore interface {
	CountEventsSince(ctx context.Context, from string, since time.Time) (int, error)
	CountEventsToSince(ctx context.Context, from, to string, since time.Time) (int, error)
	Give(ctx context.Context, event models.HonorEvent) (models.HonorStats, error)
	Revoke(ctx context.Context, honorID, callerUID string) (models.HonorStats, error)
	Stats(ctx context.Context, uid string) (models.HonorStats, error)
	Rankings(ctx context.Context, afterUID string, limit int) ([]models.HonorStats, error)
}

type BlockStore interface {
	Exists(ctx context.Context, blockerUID, blockedUID string) (bool, error)
	Create(ctx context.Context, blockerUID, blockedUID string) error
	Delete(ctx context.Context, blockerUID, blockedUID string) error
}

type ProfileStore interface {
	GetByUID(ctx context.Context, uid string) (models.User, error)
	GetManyByUIDs(ctx context.Context, uids []string) (map[string]models.User, error)
}

type NotificationStore interface {
	Create(ctx context.Context, n models.Notification) error
	ListByUser(ctx context.Context, uid, afterID string, limit int) ([]models.Notification, error)
	MarkRead(ctx context.Context, uid string, ids []string) error
}

type HonorService struct {
	store         HonorStore
	blocks        BlockStore
	profiles      ProfileStore
	notifications NotificationStore
	cache         *redis.Client
	cfg           config.HonorConfig
	log           zerolog.Logger
}

func NewHonorService(
	store HonorStore,
	blocks BlockStore,
	profiles ProfileStore,
	notifications NotificationStore,
	cache *redis.Client,
	cfg config.HonorConfig,
	log zerolog.Logger,
) *HonorService {
	return &HonorService{
		store:         store,
		blocks:        blocks,
		profiles:      profiles,
		notifications: notifications,
		cache:         cache,
		cfg:           cfg,
		log:           log,
	}
}

type GiveInput struct {
	To     string
	Kind   models.HonorKind
	Type   models.HonorType
	Reason *string
}

type GiveResult struct {
	ID string
}

func (s *HonorService) Give(ctx context.Context, caller models.Caller, input GiveInput) (GiveResult, error) {
	if caller.UID == "" {
		return GiveResult{}, apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if input.To == "" {
		return GiveResult{}, apperr.New(apperr.InvalidArgument, "recipient is required")
	}
	if input.To == caller.UID {
		return GiveResult{}, apperr.New(apperr.FailedPrecondition, "you cannot honor yourself")
	}
	if !models.ValidHonorType(input.Kind, input.Type) {
		return GiveResult{}, apperr.New(apperr.InvalidArgument,
			"type %s is not valid for kind %s", input.Type, input.Kind)
	}
	if input.Reason != nil && len(*input.Reason) > honorReasonMaxLen {
		return GiveResult{}, apperr.New(apperr.InvalidArgument,
			"reason exceeds %d characters", honorReasonMaxLen)
	}

	blocked, err := s.blocks.Exists(ctx, input.To, caller.UID)
	if err != nil {
		return GiveResult{}, err
	}
	if blocked {
		return GiveResult{}, apperr.New(apperr.PermissionDenied, "recipient has blocked you")
	}

	// Sliding-window limits. Both counts run before the transaction, so two
	// truly concurrent gives can each pass and overshoot the limit by one;
	// the limits are advisory, not a hard guarantee.
	since := time.Now().Add(-s.cfg.Window)

	total, err := s.store.CountEventsSince(ctx, caller.UID, since)
	if err != nil {
		return GiveResult{}, err
	}
	if total >= s.cfg.MaxPerWindow {
		return GiveResult{}, apperr.New(apperr.ResourceExhausted,
			"honor limit reached: at most %d honors per %s", s.cfg.MaxPerWindow, s.cfg.Window)
	}

	pair, err := s.store.CountEventsToSince(ctx, caller.UID, input.To, since)
	if err != nil {
		return GiveResult{}, err
	}
	if pair >= s.cfg.MaxPerPairWindow {
		return GiveResult{}, apperr.New(apperr.ResourceExhausted,
			"you already honored this player in the last %s", s.cfg.Window)
	}

	event := models.HonorEvent{
		ID:     ids.New(),
		From:   caller.UID,
		To:     input.To,
		Kind:   input.Kind,
		Type:   input.Type,
		Reason: input.Reason,
	}

	stats, err := s.store.Give(ctx, event)
	if err != nil {
		return GiveResult{}, err
	}

	s.log.Info().
		Str("from", event.From).
		Str("to", event.To).
		Str("kind", string(event.Kind)).
		Str("type", string(event.Type)).
		Float64("stars", stats.Stars).
		Msg("honor given")

	s.notify(ctx, models.Notification{
		ID:   ids.New(),
		UID:  input.To,
		Kind: models.NotificationHonorReceived,
		Payload: map[string]any{
			"from": caller.UID,
			"kind": event.Kind,
			"type": event.Type,
		},
	})

	return GiveResult{ID: event.ID}, nil
}

func (s *HonorService) Revoke(ctx context.Context, caller models.Caller, honorID string) error {
	if caller.UID == "" {
		return apperr.New(apperr.Unauthenticated, "authentication required")
	}
	if honorID == "" {
		return apperr.New(apperr.InvalidArgument, "honorId is required")
	}

	stats, err := s.store.Revoke(ctx, honorID, caller.UID)
	if err != nil {
		return err
	}

	s.log.Info().
		Str("honor_id", honorID).
		Str("caller", caller.UID).
		Float64("stars", stats.Stars).
		Msg("honor revoked")
	return nil
}

func (s *HonorService) Stats(ctx context.Context, uid string) (models.HonorStats, error) {
	if uid == "" {
		return models.HonorStats{}, apperr.New(apperr.InvalidArgument, "uid is required")
	}
	return s.store.Stats(ctx, uid)
}

type RankingsResult struct {
	Rankings   []models.RankingEntry `json:"rankings"`
	NextCursor *string               `json:"nextCursor"`
}

// Rankings lists users by (stars desc, total desc, uid desc) with an opaque
// keyset cursor, each page enriched with profile fields via a batch
// point-read. Pages are cached briefly in redis; the first pages are hot.
func (s *HonorService) Rankings(ctx context.Context, cursor string, pageSize int) (RankingsResult, error) {
	if pageSize <= 0 {
		pageSize = rankingsDefaultPageSize
	}
	if pageSize > rankingsMaxPageSize {
		return RankingsResult{}, apperr.New(apperr.InvalidArgument,
			"pageSize must not exceed %d", rankingsMaxPageSize)
	}

	cacheKey := fmt.Sprintf("honor:rankings:%s:%d", cursor, pageSize)
	if s.cache != nil {
		if raw, err := s.cache.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached RankingsResult
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, nil
			}
		}
	}

	page, err := s.store.Rankings(ctx, cursor, pageSize)
	if err != nil {
		return RankingsResult{}, err
	}

	uids := make([]string, 0, len(page))
	for _, stats := range page {
		uids = append(uids, stats.UID)
	}

	profiles, err := s.profiles.GetManyByUIDs(ctx, uids)
	if err != nil {
		return RankingsResult{}, err
	}

	result := RankingsResult{Rankings: make([]models.RankingEntry, 0, len(page))}
	for _, stats := range page {
		entry := models.RankingEntry{
			UID:   stats.UID,
			Pos:   stats.Pos,
			Neg:   stats.Neg,
			Total: stats.Total,
			Stars: stats.Stars,
		}
		if profile, ok := profiles[stats.UID]; ok {
			entry.DisplayName = profile.DisplayName
			entry.AvatarURL = profile.AvatarURL
			entry.Country = profile.Country
		}
		result.Rankings = append(result.Rankings, entry)
	}

	if len(page) == pageSize {
		last := page[len(page)-1].UID
		result.NextCursor = &last
	}

	if s.cache != nil {
		if raw, err := json.Marshal(result); err == nil {
			if err := s.cache.Set(ctx, cacheKey, raw, s.cfg.RankingsCacheTTL).Err(); err != nil {
				s.log.Warn().Err(err).Msg("rankings cache write failed")
			}
		}
	}
	return result, nil
}

func (s *HonorService) notify(ctx context.Context, n models.Notification) {
	if err := s.notifications.Create(ctx, n); err != nil {
		s.log.Warn().Err(err).Str("uid", n.UID).Str("kind", string(n.Kind)).
			Msg("notification write failed")
	}
}
