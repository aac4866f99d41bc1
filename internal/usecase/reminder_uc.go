package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/domain/ports/repository"
	"telegram-event-reminder/internal/infra/logging"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ ReminderUseCase = (*reminderUC)(nil)

type ReminderRequest struct {
	JobID string
	Date  time.Time
	Title string
}

// ReminderUseCase sends event reminders to every eligible user.
type ReminderUseCase interface {
	DispatchReminders(ctx context.Context, req ReminderRequest) (*model.DispatchReport, error)
}

type reminderUC struct {
	events   repository.EventRepository
	users    repository.UserRepository
	sender   adapter.MessageSender
	stickers []string
	pick     func(n int) int
	log      *zerolog.Logger
}

// NewReminderUseCase builds the dispatcher. An empty sticker pool disables stickers.
func NewReminderUseCase(
	events repository.EventRepository,
	users repository.UserRepository,
	sender adapter.MessageSender,
	stickers []string,
	logger *zerolog.Logger,
) *reminderUC {
	l := logger.With().Str("component", "ReminderUC").Logger()
	return &reminderUC{
		events:   events,
		users:    users,
		sender:   sender,
		stickers: stickers,
		pick:     rand.Intn,
		log:      &l,
	}
}

// ReminderText renders the reminder body for an event.
func ReminderText(title, eventText string) string {
	return fmt.Sprintf("%s:\n'%s'.", title, eventText)
}

func (uc *reminderUC) DispatchReminders(ctx context.Context, req ReminderRequest) (*model.DispatchReport, error) {
	defer logging.TraceDuration(uc.log, "ReminderUC.DispatchReminders")()

	date := model.DateOf(req.Date)
	report := model.NewDispatchReport(req.JobID, model.DispatchReminder)
	defer report.Finish()

	events, err := uc.events.ListByDate(ctx, repository.NoTX, date)
	if err != nil {
		return report, fmt.Errorf("%w: list events for %s: %w", domain.ErrDataAccess, date.Format(time.DateOnly), err)
	}

	for _, ev := range events {
		users, err := uc.users.ListByCompanyAndRoles(ctx, repository.NoTX, ev.CompanyID, ev.RoleIDs)
		if err != nil {
			return report, fmt.Errorf("%w: list users for event %d: %w", domain.ErrDataAccess, ev.ID, err)
		}

		for _, u := range users {
			if err := ctx.Err(); err != nil {
				uc.log.Warn().Str("job_id", req.JobID).Int("attempts", report.Attempts()).Msg("reminder dispatch interrupted")
				return report, err
			}
			// The query already filters by company and role; Targets guards against a
			// repository returning a wider set.
			if !ev.Targets(u) {
				continue
			}
			uc.remind(ctx, report, ev, u, req.Title)
		}
	}

	uc.log.Info().
		Str("job_id", req.JobID).
		Str("date", date.Format(time.DateOnly)).
		Int("events", len(events)).
		Int("sent", report.Sent()).
		Int("failed", report.Failed()).
		Msg("reminders for date sent")
	return report, nil
}

func (uc *reminderUC) remind(ctx context.Context, report *model.DispatchReport, ev *model.Event, u *model.User, title string) {
	err := uc.sender.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:    u.TelegramID,
		Text:      ReminderText(title, ev.Text),
		ParseMode: adapter.ParseModeNone,
	})
	if err != nil {
		report.RecordFailed(u.TelegramID, ev.ID, err)
		uc.log.Error().Err(err).Int64("tg_id", u.TelegramID).Int64("event_id", ev.ID).Msg("failed to send reminder")
		markBlocked(ctx, uc.users, uc.log, u.TelegramID, err)
		return
	}
	report.RecordSent(u.TelegramID, ev.ID)

	if len(uc.stickers) > 0 {
		sticker := uc.stickers[uc.pick(len(uc.stickers))]
		if err := uc.sender.SendSticker(ctx, u.TelegramID, sticker); err != nil {
			uc.log.Warn().Err(err).Int64("tg_id", u.TelegramID).Msg("failed to send reminder sticker")
		}
	}
	uc.log.Info().Int64("tg_id", u.TelegramID).Int64("event_id", ev.ID).Msg("reminder sent")
}

// markBlocked flags a recipient that blocked the bot so later broadcasts skip it.
func markBlocked(ctx context.Context, users repository.UserRepository, log *zerolog.Logger, tgID int64, sendErr error) {
	if !errors.Is(sendErr, adapter.ErrRecipientBlocked) {
		return
	}
	if err := users.MarkBlocked(ctx, repository.NoTX, tgID, true); err != nil && !errors.Is(err, domain.ErrNotFound) {
		log.Warn().Err(err).Int64("tg_id", tgID).Msg("failed to mark user as blocked")
	}
}
