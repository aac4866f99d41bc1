package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"telegram-event-reminder/internal/application"
	"telegram-event-reminder/internal/config"
	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/infra/logging"
	"telegram-event-reminder/internal/infra/metrics"
	red "telegram-event-reminder/internal/infra/redis"
	"telegram-event-reminder/internal/infra/worker"
)

var (
	_ adapter.TelegramBotAdapter = (*Sender)(nil)
	_ adapter.TelegramBotAdapter = (*RealTelegramBotAdapter)(nil)
)

// botAPI is the part of *tgbotapi.BotAPI the adapter uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
}

type rateLimiter interface {
	Allow(ctx context.Context, key string, limit int, window time.Duration) (bool, error)
}

// Sender is the outbound half of the bot. Dispatch workers use it without polling.
type Sender struct {
	bot botAPI
	log *zerolog.Logger
}

func NewSender(cfg *config.BotConfig, logger *zerolog.Logger) (*Sender, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", err)
	}
	s := newSender(bot, logger)
	s.log.Info().Str("bot", bot.Self.UserName).Str("token", logging.Redact(cfg.Token, false)).Msg("telegram authorized")
	return s, nil
}

func newSender(bot botAPI, logger *zerolog.Logger) *Sender {
	l := logger.With().Str("component", "telegram").Logger()
	return &Sender{bot: bot, log: &l}
}

func (s *Sender) SendMessage(ctx context.Context, p adapter.SendMessageParams) error {
	msg := tgbotapi.NewMessage(p.ChatID, p.Text)
	if len(p.Entities) > 0 {
		msg.Entities = toTGEntities(p.Entities)
	} else {
		msg.ParseMode = p.ParseMode
	}
	switch {
	case len(p.Buttons) > 0:
		msg.ReplyMarkup = inlineKeyboard(p.Buttons)
	case len(p.ReplyKeyboard) > 0:
		msg.ReplyMarkup = replyKeyboard(p.ReplyKeyboard)
	case p.RemoveKeyboard:
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
	}
	return s.send(ctx, msg)
}

func (s *Sender) SendSticker(ctx context.Context, chatID int64, stickerID string) error {
	return s.send(ctx, tgbotapi.NewSticker(chatID, tgbotapi.FileID(stickerID)))
}

func (s *Sender) SendDocument(ctx context.Context, chatID int64, fileName string, data []byte, caption string) error {
	doc := tgbotapi.NewDocument(chatID, tgbotapi.FileBytes{Name: fileName, Bytes: data})
	doc.Caption = caption
	return s.send(ctx, doc)
}

// SendTyping goes through Request: the API answers chat actions with a bare boolean.
func (s *Sender) SendTyping(ctx context.Context, chatID int64) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.bot.Request(tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping))
	return classifySendErr(err)
}

func (s *Sender) send(ctx context.Context, c tgbotapi.Chattable) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := s.bot.Send(c)
	return classifySendErr(err)
}

// classifySendErr maps "Forbidden: bot was blocked by the user" (and deactivated
// accounts, which Telegram also reports as 403) to adapter.ErrRecipientBlocked.
func classifySendErr(err error) error {
	if err == nil {
		return nil
	}
	var tgErr *tgbotapi.Error
	if errors.As(err, &tgErr) && tgErr.Code == http.StatusForbidden {
		return fmt.Errorf("%w: %s", adapter.ErrRecipientBlocked, tgErr.Message)
	}
	return err
}

// RealTelegramBotAdapter polls updates and delegates them to BotFacade.
// Updates are handled on the worker pool, sharded by chat so one conversation stays ordered.
type RealTelegramBotAdapter struct {
	*Sender
	facade      *application.BotFacade
	rateLimiter rateLimiter
	pool        *worker.Pool
	security    config.SecurityConfig
	log         *zerolog.Logger
}

func NewRealTelegramBotAdapter(
	sender *Sender,
	facade *application.BotFacade,
	limiter rateLimiter,
	pool *worker.Pool,
	security config.SecurityConfig,
	logger *zerolog.Logger,
) (*RealTelegramBotAdapter, error) {
	if sender == nil {
		return nil, errors.New("telegram sender is nil")
	}
	if facade == nil {
		return nil, errors.New("bot facade is nil")
	}
	if pool == nil {
		return nil, errors.New("worker pool is nil")
	}
	l := logger.With().Str("component", "telegram.bot").Logger()
	return &RealTelegramBotAdapter{
		Sender:      sender,
		facade:      facade,
		rateLimiter: limiter,
		pool:        pool,
		security:    security,
		log:         &l,
	}, nil
}

// StartPolling blocks until ctx is done or the update channel closes.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	r.log.Info().Msg("polling telegram updates")
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			chatID := updateChatID(up)
			if chatID == 0 {
				continue
			}
			if err := r.pool.SubmitKeyed(ctx, chatID, func(ctx context.Context) error {
				return r.handleUpdate(ctx, up)
			}); err != nil {
				r.log.Warn().Err(err).Int("update_id", up.UpdateID).Msg("drop update")
			}
		}
	}
}

func updateChatID(up tgbotapi.Update) int64 {
	switch {
	case up.Message != nil && up.Message.Chat != nil:
		return up.Message.Chat.ID
	case up.CallbackQuery != nil && up.CallbackQuery.Message != nil && up.CallbackQuery.Message.Chat != nil:
		return up.CallbackQuery.Message.Chat.ID
	case up.CallbackQuery != nil && up.CallbackQuery.From != nil:
		return up.CallbackQuery.From.ID
	}
	return 0
}

func (r *RealTelegramBotAdapter) handleUpdate(ctx context.Context, update tgbotapi.Update) error {
	if update.CallbackQuery != nil {
		return r.handleQuery(ctx, update.CallbackQuery)
	}

	message := update.Message
	if message == nil || message.From == nil || message.Chat == nil || message.Text == "" {
		return nil
	}
	ctx = logging.WithTgID(ctx, message.From.ID)

	command := "message"
	if message.IsCommand() {
		command = "/" + message.Command()
	}
	metrics.IncTelegramCommand(command)

	if !r.allow(ctx, message.From.ID, command) {
		return r.reply(ctx, message.Chat.ID, r.facade.T("error_rate_limited"))
	}
	r.facade.Seen(ctx, message.From.ID)

	if message.IsCommand() {
		if route, ok := r.commandRoutes()[message.Command()]; ok {
			return route(ctx, message)
		}
		return r.reply(ctx, message.Chat.ID, r.facade.Help())
	}
	return r.handleText(ctx, message)
}

// allow applies the per-user, per-command limit. Limiter failures let the request through.
func (r *RealTelegramBotAdapter) allow(ctx context.Context, tgID int64, command string) bool {
	if r.rateLimiter == nil {
		return true
	}
	ok, err := r.rateLimiter.Allow(ctx, red.UserCommandKey(tgID, command), r.security.RateLimitCount, r.security.RateLimitWindow)
	if err != nil {
		logging.With(ctx, r.log).Warn().Err(err).Msg("rate limit check failed")
		return true
	}
	if !ok {
		metrics.IncRateLimitTriggered()
	}
	return ok
}

func (r *RealTelegramBotAdapter) handleText(ctx context.Context, message *tgbotapi.Message) error {
	rep, err := r.facade.HandleText(ctx, message.From.ID, message.Text)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("registration step failed")
		return r.reply(ctx, message.Chat.ID, r.facade.T("error_generic"))
	}
	if rep.NewUser {
		metrics.IncUsersRegistered()
	}
	return r.sendReply(ctx, message.Chat.ID, rep)
}

func (r *RealTelegramBotAdapter) reply(ctx context.Context, chatID int64, text string) error {
	return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: chatID, Text: text})
}

func (r *RealTelegramBotAdapter) sendReply(ctx context.Context, chatID int64, rep *application.Reply) error {
	return r.SendMessage(ctx, adapter.SendMessageParams{
		ChatID:         chatID,
		Text:           rep.Text,
		ReplyKeyboard:  rep.Keyboard,
		RemoveKeyboard: rep.RemoveKeyboard,
	})
}

func toTGEntities(in []adapter.MessageEntity) []tgbotapi.MessageEntity {
	out := make([]tgbotapi.MessageEntity, 0, len(in))
	for _, e := range in {
		out = append(out, tgbotapi.MessageEntity{
			Type:     e.Type,
			Offset:   e.Offset,
			Length:   e.Length,
			URL:      e.URL,
			Language: e.Language,
		})
	}
	return out
}

func fromTGEntities(in []tgbotapi.MessageEntity, shift int) []adapter.MessageEntity {
	var out []adapter.MessageEntity
	for _, e := range in {
		if e.Offset < shift {
			continue
		}
		out = append(out, adapter.MessageEntity{
			Type:     e.Type,
			Offset:   e.Offset - shift,
			Length:   e.Length,
			URL:      e.URL,
			Language: e.Language,
		})
	}
	return out
}

// inlineKeyboard builds the markup; URL buttons open a link, the rest send callback data
// (falling back to the label when no data is set).
func inlineKeyboard(rows [][]adapter.InlineButton) tgbotapi.InlineKeyboardMarkup {
	kbRows := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			label := btn.Text
			if label == "" {
				label = "•"
			}
			switch {
			case btn.URL != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonURL(label, btn.URL))
			case btn.Data != "":
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, btn.Data))
			default:
				r = append(r, tgbotapi.NewInlineKeyboardButtonData(label, label))
			}
		}
		kbRows = append(kbRows, r)
	}
	return tgbotapi.NewInlineKeyboardMarkup(kbRows...)
}

func replyKeyboard(rows [][]string) tgbotapi.ReplyKeyboardMarkup {
	kbRows := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		r := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			r = append(r, tgbotapi.NewKeyboardButton(label))
		}
		if len(r) > 0 {
			kbRows = append(kbRows, r)
		}
	}
	markup := tgbotapi.NewReplyKeyboard(kbRows...)
	markup.OneTimeKeyboard = true
	markup.ResizeKeyboard = true
	return markup
}
