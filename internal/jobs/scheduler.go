package jobs

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"scrimhub/internal/config"
	"scrimhub/internal/service"
)

// Scheduler enqueues the daily maintenance sweeps onto the redis stream
// consumed by Consumer. Tasks are idempotent by construction, so a double
// enqueue is harmless.
type Scheduler struct {
	cron   *cron.Cron
	queue  *redis.Client
	stream string
	log    zerolog.Logger
}

func NewScheduler(queue *redis.Client, cfg config.MaintenanceConfig, log zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds()),
		queue:  queue,
		stream: cfg.Stream,
		log:    log,
	}
}

func (s *Scheduler) Start() error {
	if s.queue == nil {
		return nil
	}

	if _, err := s.cron.AddFunc("0 0 4 * * *", s.enqueueSweeps); err != nil {
		return err
	}

	s.cron.Start()
	return nil
}

func (s *Scheduler) Stop() {
	stopCtx := s.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(5 * time.Second):
		s.log.Warn().Msg("scheduler stop timed out")
	}
}

func (s *Scheduler) enqueueSweeps() {
	tasks := []string{
		service.TaskExpireFriendRequests,
		service.TaskPurgeNotifications,
		service.TaskPurgeChatThreads,
	}
	for _, task := range tasks {
		if err := s.enqueueTask(task); err != nil {
			s.log.Error().Err(err).Str("task", task).Msg("enqueue sweep failed")
		}
	}
}

func (s *Scheduler) enqueueTask(task string) error {
	_, err := s.queue.XAdd(context.Background(), &redis.XAddArgs{
		Stream: s.stream,
		Values: map[string]any{"type": task},
	}).Result()
	return err
}
