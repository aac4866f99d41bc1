package usecase

import (
	"context"
	"time"

	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/domain/ports/repository"
	"telegram-event-reminder/internal/infra/logging"

	"github.com/rs/zerolog"
)

// MinSendDelay is the lower bound on the pause between two consecutive broadcast sends.
const MinSendDelay = 100 * time.Millisecond

// DefaultSendDelay is used when a request carries no delay.
const DefaultSendDelay = 400 * time.Millisecond

// Compile-time check
var _ BroadcastUseCase = (*broadcastUC)(nil)

type BroadcastRequest struct {
	JobID        string
	RecipientIDs []int64
	Text         string
	Entities     []adapter.MessageEntity
	Buttons      [][]adapter.InlineButton
	Delay        time.Duration
	ParseMode    string
}

type BroadcastUseCase interface {
	Broadcast(ctx context.Context, req BroadcastRequest) (*model.DispatchReport, error)
}

type broadcastUC struct {
	users  repository.UserRepository
	sender adapter.MessageSender
	sleep  func(ctx context.Context, d time.Duration) error
	log    *zerolog.Logger
}

func NewBroadcastUseCase(users repository.UserRepository, sender adapter.MessageSender, logger *zerolog.Logger) *broadcastUC {
	l := logger.With().Str("component", "BroadcastUC").Logger()
	return &broadcastUC{
		users:  users,
		sender: sender,
		sleep:  sleepCtx,
		log:    &l,
	}
}

// EffectiveDelay applies the default and the MinSendDelay floor.
func EffectiveDelay(d time.Duration) time.Duration {
	if d == 0 {
		d = DefaultSendDelay
	}
	return max(d, MinSendDelay)
}

func (uc *broadcastUC) Broadcast(ctx context.Context, req BroadcastRequest) (*model.DispatchReport, error) {
	defer logging.TraceDuration(uc.log, "BroadcastUC.Broadcast")()

	report := model.NewDispatchReport(req.JobID, model.DispatchBroadcast)
	defer report.Finish()

	delay := EffectiveDelay(req.Delay)
	params := adapter.SendMessageParams{
		Text:      req.Text,
		ParseMode: req.ParseMode,
		Entities:  req.Entities,
		Buttons:   req.Buttons,
	}
	if params.ParseMode == "" {
		params.ParseMode = adapter.ParseModeHTML
	}
	// Telegram rejects a parse mode combined with explicit entities.
	if len(params.Entities) > 0 {
		params.ParseMode = adapter.ParseModeNone
	}

	uc.log.Info().
		Str("job_id", req.JobID).
		Int("recipients", len(req.RecipientIDs)).
		Dur("delay", delay).
		Str("text", req.Text).
		Msg("going to send broadcast")

	for i, id := range req.RecipientIDs {
		if i > 0 {
			if err := uc.sleep(ctx, delay); err != nil {
				uc.log.Warn().Str("job_id", req.JobID).Int("attempts", report.Attempts()).Msg("broadcast interrupted")
				return report, err
			}
		}

		params.ChatID = id
		if err := uc.sender.SendMessage(ctx, params); err != nil {
			report.RecordFailed(id, 0, err)
			uc.log.Error().Err(err).Int64("tg_id", id).Msg("failed to send broadcast message")
			markBlocked(ctx, uc.users, uc.log, id, err)
			continue
		}
		report.RecordSent(id, 0)
		uc.log.Info().Int64("tg_id", id).Msg("broadcast message was sent")
	}

	uc.log.Info().
		Str("job_id", req.JobID).
		Int("sent", report.Sent()).
		Int("failed", report.Failed()).
		Msg("broadcast finished")
	return report, nil
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
