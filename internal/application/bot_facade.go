package application

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/usecase"

	"github.com/rs/zerolog"
)

// Translator resolves a message key to localized text.
type Translator interface {
	T(key string, args ...any) string
}

// Reply is what the bot answers to one user message.
type Reply struct {
	Text           string
	Keyboard       [][]string
	RemoveKeyboard bool
	// NewUser is set when the message created a user record.
	NewUser bool
}

// Document is a file the bot uploads to the chat.
type Document struct {
	FileName string
	Data     []byte
	Caption  string
}

// BotFacade composes usecases into high-level bot commands and renders their
// results with the translator, so the Telegram adapter only forwards them to the chat.
type BotFacade struct {
	UserUC     usecase.UserUseCase
	RegUC      usecase.RegistrationUseCase
	StatsUC    usecase.StatsUseCase
	ExportUC   usecase.ExportUseCase
	DispatchUC usecase.DispatchUseCase

	tr  Translator
	log *zerolog.Logger
}

func NewBotFacade(
	userUC usecase.UserUseCase,
	regUC usecase.RegistrationUseCase,
	statsUC usecase.StatsUseCase,
	exportUC usecase.ExportUseCase,
	dispatchUC usecase.DispatchUseCase,
	tr Translator,
	logger *zerolog.Logger,
) *BotFacade {
	l := logger.With().Str("component", "BotFacade").Logger()
	return &BotFacade{
		UserUC:     userUC,
		RegUC:      regUC,
		StatsUC:    statsUC,
		ExportUC:   exportUC,
		DispatchUC: dispatchUC,
		tr:         tr,
		log:        &l,
	}
}

// Seen records that a user interacted with the bot. A previously blocked user is unblocked.
func (b *BotFacade) Seen(ctx context.Context, tgID int64) {
	u, err := b.UserUC.GetByTelegramID(ctx, tgID)
	if errors.Is(err, domain.ErrNotFound) {
		return
	}
	if err != nil {
		b.log.Warn().Err(err).Int64("tg_id", tgID).Msg("lookup user failed")
		return
	}
	if u.IsBlocked {
		if err := b.UserUC.Unblock(ctx, u); err != nil {
			b.log.Warn().Err(err).Int64("tg_id", tgID).Msg("unblock user failed")
		}
	}
	if err := b.UserUC.Touch(ctx, tgID); err != nil {
		b.log.Warn().Err(err).Int64("tg_id", tgID).Msg("touch user failed")
	}
}

// IsAdmin never fails open: lookup errors are treated as "not an admin".
func (b *BotFacade) IsAdmin(ctx context.Context, tgID int64) bool {
	ok, err := b.UserUC.IsAdmin(ctx, tgID)
	if err != nil {
		b.log.Warn().Err(err).Int64("tg_id", tgID).Msg("admin check failed")
		return false
	}
	return ok
}

// HandleStart restarts registration and shows the company keyboard.
func (b *BotFacade) HandleStart(ctx context.Context, tgID int64) (*Reply, error) {
	names, err := b.RegUC.Start(ctx, tgID)
	if err != nil {
		return nil, fmt.Errorf("start registration: %w", err)
	}
	if len(names) == 0 {
		return &Reply{Text: b.tr.T("no_companies"), RemoveKeyboard: true}, nil
	}
	return &Reply{Text: b.tr.T("ask_company"), Keyboard: companyKeyboard(names)}, nil
}

// HandleText feeds a plain message to the registration conversation.
func (b *BotFacade) HandleText(ctx context.Context, tgID int64, text string) (*Reply, error) {
	res, err := b.RegUC.HandleMessage(ctx, tgID, text)
	if err != nil {
		return nil, fmt.Errorf("registration: %w", err)
	}
	switch res.Reply {
	case usecase.ReplyCompanySelected:
		return &Reply{Text: b.tr.T("company_selected", res.Company), RemoveKeyboard: true, NewUser: res.Registered}, nil
	case usecase.ReplyCompanyNotFound:
		return &Reply{Text: b.tr.T("company_not_found"), Keyboard: companyKeyboard(res.Companies)}, nil
	case usecase.ReplyAskName:
		return &Reply{Text: b.tr.T("ask_name")}, nil
	case usecase.ReplyNameTooLong:
		return &Reply{Text: b.tr.T("name_too_long", usecase.MaxDisplayNameLen)}, nil
	case usecase.ReplyNameSaved:
		return &Reply{Text: b.tr.T("name_saved", res.Name)}, nil
	default:
		return &Reply{Text: b.tr.T("prompt_restart")}, nil
	}
}

func (b *BotFacade) HandleStats(ctx context.Context) (string, error) {
	st, err := b.StatsUC.UserStats(ctx)
	if err != nil {
		return "", fmt.Errorf("user stats: %w", err)
	}
	return b.tr.T("stats_message", st.Total, st.Active24h), nil
}

func (b *BotFacade) HandleExport(ctx context.Context) (*Document, error) {
	data, err := b.ExportUC.ExportUsersCSV(ctx)
	if err != nil {
		return nil, fmt.Errorf("export users: %w", err)
	}
	return &Document{
		FileName: fmt.Sprintf("users_%s.csv", time.Now().Format("20060102")),
		Data:     data,
		Caption:  b.tr.T("export_caption"),
	}, nil
}

// HandleBroadcast queues a broadcast of text to every reachable user.
// Input problems are answered, not returned as errors.
func (b *BotFacade) HandleBroadcast(ctx context.Context, text string, entities []adapter.MessageEntity) (string, error) {
	if strings.TrimSpace(text) == "" {
		return b.tr.T("usage_broadcast"), nil
	}
	job, err := b.DispatchUC.ScheduleBroadcast(ctx, usecase.BroadcastDraft{Text: text, Entities: entities})
	switch {
	case errors.Is(err, domain.ErrInvalidArgument):
		return b.tr.T("usage_broadcast"), nil
	case errors.Is(err, domain.ErrRecipientNotFound):
		return b.tr.T("broadcast_no_recipients"), nil
	case err != nil:
		return "", fmt.Errorf("schedule broadcast: %w", err)
	}
	return b.tr.T("broadcast_scheduled", job.JobID, job.Recipients), nil
}

// AdminMenu returns the admin help text with shortcut buttons.
func (b *BotFacade) AdminMenu() (string, [][]adapter.InlineButton) {
	rows := [][]adapter.InlineButton{
		{{Text: b.tr.T("button_stats"), Data: "admin:stats"}},
		{{Text: b.tr.T("button_export"), Data: "admin:export"}},
	}
	return b.tr.T("admin_help"), rows
}

func (b *BotFacade) Help() string { return b.tr.T("help_message") }

func (b *BotFacade) T(key string, args ...any) string { return b.tr.T(key, args...) }

func companyKeyboard(names []string) [][]string {
	rows := make([][]string, 0, len(names))
	for _, n := range names {
		rows = append(rows, []string{n})
	}
	return rows
}
