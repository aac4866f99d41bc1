package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-event-reminder/internal/infra/logging"
	"telegram-event-reminder/internal/infra/metrics"
)

type cbHandler func(ctx context.Context, chatID int64, data string) error

// cbRoutes serves the buttons of the /admin menu. Every route is admin-only.
func (r *RealTelegramBotAdapter) cbRoutes() map[string]cbHandler {
	return map[string]cbHandler{
		"admin:stats":  func(ctx context.Context, id int64, _ string) error { return r.sendStats(ctx, id) },
		"admin:export": func(ctx context.Context, id int64, _ string) error { return r.sendExport(ctx, id) },
	}
}

func (r *RealTelegramBotAdapter) handleQuery(ctx context.Context, query *tgbotapi.CallbackQuery) error {
	if query == nil || query.From == nil {
		return nil
	}
	// Stop the telegram spinner when we return
	defer func() { _, _ = r.bot.Request(tgbotapi.NewCallback(query.ID, "")) }()

	chatID := query.From.ID
	if query.Message != nil && query.Message.Chat != nil {
		chatID = query.Message.Chat.ID
	}
	ctx = logging.WithTgID(ctx, query.From.ID)

	data := strings.TrimSpace(query.Data)
	if !r.allow(ctx, query.From.ID, "cb:"+data) {
		return r.reply(ctx, chatID, r.facade.T("error_rate_limited"))
	}

	fn, ok := r.cbRoutes()[data]
	if !ok {
		logging.With(ctx, r.log).Debug().Str("data", data).Msg("unknown callback")
		return nil
	}
	if !r.facade.IsAdmin(ctx, query.From.ID) {
		metrics.IncAdminCommand(data, "unauthorized")
		return r.reply(ctx, chatID, r.facade.T("error_unauthorized"))
	}
	metrics.IncAdminCommand(data, "authorized")
	r.facade.Seen(ctx, query.From.ID)
	return fn(ctx, chatID, data)
}
