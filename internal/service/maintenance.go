package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"scrimhub/internal/config"
)

// Maintenance task types carried on the redis stream.
const (
	TaskExpireFriendRequests = "expire_friend_requests"
	TaskPurgeNotifications   = "purge_notifications"
	TaskPurgeChatThreads     = "purge_chat_threads"
)

type SweepStore interface {
	ExpireFriendRequestsBefore(ctx context.Context, cutoff time.Time, batchSize int) (int, error)
	DeleteReadNotificationsBefore(ctx context.Context, cutoff time.Time, batchSize int) (int, error)
	ListEmptyThreadIDs(ctx context.Context, cutoff time.Time, limit int) ([]string, error)
	DeleteThreads(ctx context.Context, threadIDs []string) error
}

// MaintenanceService runs the scheduled sweeps. Each batch commits on its
// own, so a crash mid-sweep is picked up by the next run; rerunning a sweep
// that has nothing to do is a no-op.
type MaintenanceService struct {
	store SweepStore
	cfg   config.MaintenanceConfig
	log   zerolog.Logger
}

func NewMaintenanceService(store SweepStore, cfg config.MaintenanceConfig, log zerolog.Logger) *MaintenanceService {
	return &MaintenanceService{store: store, cfg: cfg, log: log}
}

// HandleTask dispatches one task from the maintenance stream.
func (s *MaintenanceService) HandleTask(ctx context.Context, task string) error {
	switch task {
	case TaskExpireFriendRequests:
		return s.ExpireFriendRequests(ctx)
	case TaskPurgeNotifications:
		return s.PurgeNotifications(ctx)
	case TaskPurgeChatThreads:
		return s.PurgeChatThreads(ctx)
	default:
		return fmt.Errorf("unknown maintenance task %q", task)
	}
}

func (s *MaintenanceService) ExpireFriendRequests(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.FriendRequestTTL)

	total := 0
	for {
		n, err := s.store.ExpireFriendRequestsBefore(ctx, cutoff, s.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("expire friend requests: %w", err)
		}
		total += n
		if n < s.cfg.BatchSize {
			break
		}
	}

	s.log.Info().Int("expired", total).Msg("friend request sweep done")
	return nil
}

func (s *MaintenanceService) PurgeNotifications(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.NotificationRetention)

	total := 0
	for {
		n, err := s.store.DeleteReadNotificationsBefore(ctx, cutoff, s.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("purge notifications: %w", err)
		}
		total += n
		if n < s.cfg.BatchSize {
			break
		}
	}

	s.log.Info().Int("deleted", total).Msg("notification sweep done")
	return nil
}

func (s *MaintenanceService) PurgeChatThreads(ctx context.Context) error {
	cutoff := time.Now().Add(-s.cfg.EmptyThreadAge)

	total := 0
	for {
		threadIDs, err := s.store.ListEmptyThreadIDs(ctx, cutoff, s.cfg.BatchSize)
		if err != nil {
			return fmt.Errorf("list empty threads: %w", err)
		}
		if len(threadIDs) == 0 {
			break
		}
		if err := s.store.DeleteThreads(ctx, threadIDs); err != nil {
			return fmt.Errorf("delete threads: %w", err)
		}
		total += len(threadIDs)
		if len(threadIDs) < s.cfg.BatchSize {
			break
		}
	}

	s.log.Info().Int("deleted", total).Msg("chat thread sweep done")
	return nil
}
