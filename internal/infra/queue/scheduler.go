package queue

import (
	"context"
	"fmt"
	"time"

	"telegram-event-reminder/internal/config"
	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/infra/logging"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Scheduler enqueues periodic reminder jobs on cron specs.
type Scheduler struct {
	scheduler *asynq.Scheduler
	log       *zerolog.Logger
}

func NewScheduler(opt asynq.RedisConnOpt, loc *time.Location, logger *zerolog.Logger) *Scheduler {
	l := logger.With().Str("component", "queue.Scheduler").Logger()
	s := asynq.NewScheduler(opt, &asynq.SchedulerOpts{
		Location: loc,
		Logger:   logging.NewAsynqLogger(logger),
		PostEnqueueFunc: func(info *asynq.TaskInfo, err error) {
			if err != nil {
				l.Error().Err(err).Msg("periodic enqueue failed")
				return
			}
			l.Info().Str("job_id", info.ID).Str("type", info.Type).Msg("periodic job enqueued")
		},
	})
	return &Scheduler{scheduler: s, log: &l}
}

// RegisterReminders adds one entry per schedule. The target day is resolved when the job runs.
func (s *Scheduler) RegisterReminders(schedules []config.ReminderSchedule, qcfg *config.QueueConfig) error {
	for _, sc := range schedules {
		task, err := NewRemindersTask(adapter.ReminderJob{OffsetDays: sc.OffsetDays, Title: sc.Title})
		if err != nil {
			return err
		}
		id, err := s.scheduler.Register(sc.Cron, task,
			asynq.Queue(qcfg.Name),
			asynq.MaxRetry(qcfg.MaxRetry),
			asynq.Timeout(qcfg.ReminderTimeout),
		)
		if err != nil {
			return fmt.Errorf("register %q: %w", sc.Cron, err)
		}
		s.log.Info().Str("entry_id", id).Str("cron", sc.Cron).Int("offset_days", sc.OffsetDays).Msg("reminder schedule registered")
	}
	return nil
}

// Run starts the scheduler and blocks until ctx is canceled.
func (s *Scheduler) Run(ctx context.Context) error {
	if err := s.scheduler.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	s.scheduler.Shutdown()
	return nil
}
