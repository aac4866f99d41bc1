package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/infra/logging"
	"telegram-event-reminder/internal/infra/metrics"
	"telegram-event-reminder/internal/usecase"

	"github.com/hibiken/asynq"
	"github.com/rs/zerolog"
)

// Handlers executes dispatch tasks by calling the dispatchers.
type Handlers struct {
	broadcasts usecase.BroadcastUseCase
	reminders  usecase.ReminderUseCase
	loc        *time.Location
	now        func() time.Time
	log        *zerolog.Logger
}

func NewHandlers(broadcasts usecase.BroadcastUseCase, reminders usecase.ReminderUseCase, loc *time.Location, logger *zerolog.Logger) *Handlers {
	l := logger.With().Str("component", "queue.Handlers").Logger()
	return &Handlers{broadcasts: broadcasts, reminders: reminders, loc: loc, now: time.Now, log: &l}
}

// Mux routes task types to handlers.
func (h *Handlers) Mux() *asynq.ServeMux {
	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeBroadcast, h.HandleBroadcast)
	mux.HandleFunc(TypeReminders, h.HandleReminders)
	return mux
}

func (h *Handlers) HandleBroadcast(ctx context.Context, t *asynq.Task) error {
	var job adapter.BroadcastJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		return fmt.Errorf("decode broadcast payload: %v: %w", err, asynq.SkipRetry)
	}
	jobID := taskID(ctx)
	ctx = logging.WithJobID(ctx, jobID)

	report, err := h.broadcasts.Broadcast(ctx, usecase.BroadcastRequest{
		JobID:        jobID,
		RecipientIDs: job.RecipientIDs,
		Text:         job.Text,
		Entities:     job.Entities,
		Buttons:      job.Buttons,
		Delay:        job.Delay,
		ParseMode:    job.ParseMode,
	})
	return h.finish(ctx, model.DispatchBroadcast, report, err)
}

func (h *Handlers) HandleReminders(ctx context.Context, t *asynq.Task) error {
	var job adapter.ReminderJob
	if err := json.Unmarshal(t.Payload(), &job); err != nil {
		return fmt.Errorf("decode reminders payload: %v: %w", err, asynq.SkipRetry)
	}
	jobID := taskID(ctx)
	ctx = logging.WithJobID(ctx, jobID)

	report, err := h.reminders.DispatchReminders(ctx, usecase.ReminderRequest{
		JobID: jobID,
		Date:  ResolveDate(job, h.now(), h.loc),
		Title: job.Title,
	})
	return h.finish(ctx, model.DispatchReminder, report, err)
}

func (h *Handlers) finish(ctx context.Context, kind model.DispatchKind, report *model.DispatchReport, err error) error {
	if report != nil {
		metrics.ObserveDispatch(string(kind), report.Sent(), report.Failed(), report.Duration())
	}
	log := logging.With(ctx, h.log)
	if err != nil {
		metrics.IncDispatchJob(string(kind), "failed")
		log.Error().Err(err).Str("kind", string(kind)).Msg("dispatch job failed")
		// Delivery is at-most-once; never re-run a partially sent job.
		return fmt.Errorf("%w: %w", err, asynq.SkipRetry)
	}
	metrics.IncDispatchJob(string(kind), "completed")
	log.Info().
		Str("kind", string(kind)).
		Int("sent", report.Sent()).
		Int("failed", report.Failed()).
		Dur("duration", report.Duration()).
		Msg("dispatch job completed")
	return nil
}

func taskID(ctx context.Context) string {
	if id, ok := asynq.GetTaskID(ctx); ok {
		return id
	}
	return ""
}
