package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/adapter"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ DispatchUseCase = (*dispatchUC)(nil)

type BroadcastDraft struct {
	Text     string
	Entities []adapter.MessageEntity
	Buttons  [][]adapter.InlineButton
	// RecipientIDs overrides the default audience (every non-blocked user).
	RecipientIDs []int64
	Delay        time.Duration
	ParseMode    string
}

type ScheduledJob struct {
	JobID      string `json:"job_id"`
	Recipients int    `json:"recipients,omitempty"`
}

// DispatchUseCase hands dispatch jobs to the background queue.
type DispatchUseCase interface {
	ScheduleBroadcast(ctx context.Context, draft BroadcastDraft) (*ScheduledJob, error)
	ScheduleReminders(ctx context.Context, date time.Time, title string) (*ScheduledJob, error)
}

type dispatchUC struct {
	users     UserUseCase
	queue     adapter.JobQueue
	delay     time.Duration
	parseMode string
	log       *zerolog.Logger
}

func NewDispatchUseCase(users UserUseCase, queue adapter.JobQueue, delay time.Duration, parseMode string, logger *zerolog.Logger) *dispatchUC {
	l := logger.With().Str("component", "DispatchUC").Logger()
	return &dispatchUC{users: users, queue: queue, delay: delay, parseMode: parseMode, log: &l}
}

func (uc *dispatchUC) ScheduleBroadcast(ctx context.Context, draft BroadcastDraft) (*ScheduledJob, error) {
	if strings.TrimSpace(draft.Text) == "" {
		return nil, fmt.Errorf("%w: empty broadcast text", domain.ErrInvalidArgument)
	}
	if draft.Delay < 0 {
		return nil, fmt.Errorf("%w: negative delay", domain.ErrInvalidArgument)
	}

	recipients := draft.RecipientIDs
	if len(recipients) == 0 {
		ids, err := uc.users.RecipientIDs(ctx)
		if err != nil {
			return nil, err
		}
		recipients = ids
	}
	if len(recipients) == 0 {
		return nil, domain.ErrRecipientNotFound
	}

	delay := draft.Delay
	if delay == 0 {
		delay = uc.delay
	}
	parseMode := draft.ParseMode
	if parseMode == "" {
		parseMode = uc.parseMode
	}

	id, err := uc.queue.EnqueueBroadcast(ctx, adapter.BroadcastJob{
		RecipientIDs: recipients,
		Text:         draft.Text,
		Entities:     draft.Entities,
		Buttons:      draft.Buttons,
		Delay:        EffectiveDelay(delay),
		ParseMode:    parseMode,
	})
	if err != nil {
		return nil, fmt.Errorf("enqueue broadcast: %w", err)
	}
	uc.log.Info().Str("job_id", id).Int("recipients", len(recipients)).Msg("broadcast scheduled")
	return &ScheduledJob{JobID: id, Recipients: len(recipients)}, nil
}

func (uc *dispatchUC) ScheduleReminders(ctx context.Context, date time.Time, title string) (*ScheduledJob, error) {
	if date.IsZero() || strings.TrimSpace(title) == "" {
		return nil, domain.ErrInvalidArgument
	}
	id, err := uc.queue.EnqueueReminders(ctx, adapter.ReminderJob{Date: model.DateOf(date), Title: title})
	if err != nil {
		return nil, fmt.Errorf("enqueue reminders: %w", err)
	}
	uc.log.Info().Str("job_id", id).Str("date", date.Format(time.DateOnly)).Msg("reminders scheduled")
	return &ScheduledJob{JobID: id}, nil
}
