package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"telegram-event-reminder/internal/domain/ports/adapter"
	"telegram-event-reminder/internal/infra/logging"
	"telegram-event-reminder/internal/infra/metrics"
)

type commandHandler func(ctx context.Context, message *tgbotapi.Message) error

// commandRoutes defines all available bot commands and their handlers.
func (r *RealTelegramBotAdapter) commandRoutes() map[string]commandHandler {
	return map[string]commandHandler{
		"start": r.handleStartCommand,
		"help":  r.handleHelpCommand,

		"admin":        r.adminOnly(r.handleAdminCommand),
		"stats":        r.adminOnly(r.handleStatsCommand),
		"export_users": r.adminOnly(r.handleExportCommand),
		"broadcast":    r.adminOnly(r.handleBroadcastCommand),
	}
}

func (r *RealTelegramBotAdapter) adminOnly(next commandHandler) commandHandler {
	return func(ctx context.Context, message *tgbotapi.Message) error {
		command := "/" + message.Command()
		if !r.facade.IsAdmin(ctx, message.From.ID) {
			metrics.IncAdminCommand(command, "unauthorized")
			return r.reply(ctx, message.Chat.ID, r.facade.T("error_unauthorized"))
		}
		metrics.IncAdminCommand(command, "authorized")
		return next(ctx, message)
	}
}

// handleStartCommand restarts the registration conversation.
func (r *RealTelegramBotAdapter) handleStartCommand(ctx context.Context, message *tgbotapi.Message) error {
	rep, err := r.facade.HandleStart(ctx, message.From.ID)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("start failed")
		return r.reply(ctx, message.Chat.ID, r.facade.T("error_generic"))
	}
	return r.sendReply(ctx, message.Chat.ID, rep)
}

func (r *RealTelegramBotAdapter) handleHelpCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.reply(ctx, message.Chat.ID, r.facade.Help())
}

func (r *RealTelegramBotAdapter) handleAdminCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, rows := r.facade.AdminMenu()
	return r.SendMessage(ctx, adapter.SendMessageParams{ChatID: message.Chat.ID, Text: text, Buttons: rows})
}

func (r *RealTelegramBotAdapter) handleStatsCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendStats(ctx, message.Chat.ID)
}

func (r *RealTelegramBotAdapter) handleExportCommand(ctx context.Context, message *tgbotapi.Message) error {
	return r.sendExport(ctx, message.Chat.ID)
}

// handleBroadcastCommand queues the text after the command. Formatting the admin applied
// (bold, links, ...) is kept by re-basing the message entities onto the arguments.
func (r *RealTelegramBotAdapter) handleBroadcastCommand(ctx context.Context, message *tgbotapi.Message) error {
	text, entities := commandArguments(message)
	answer, err := r.facade.HandleBroadcast(ctx, text, entities)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("broadcast scheduling failed")
		answer = r.facade.T("error_generic")
	}
	return r.reply(ctx, message.Chat.ID, answer)
}

func (r *RealTelegramBotAdapter) sendStats(ctx context.Context, chatID int64) error {
	text, err := r.facade.HandleStats(ctx)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("stats failed")
		text = r.facade.T("error_generic")
	}
	return r.reply(ctx, chatID, text)
}

func (r *RealTelegramBotAdapter) sendExport(ctx context.Context, chatID int64) error {
	if err := r.SendTyping(ctx, chatID); err != nil {
		r.log.Debug().Err(err).Msg("typing action failed")
	}
	doc, err := r.facade.HandleExport(ctx)
	if err != nil {
		logging.With(ctx, r.log).Error().Err(err).Msg("export failed")
		return r.reply(ctx, chatID, r.facade.T("error_generic"))
	}
	return r.SendDocument(ctx, chatID, doc.FileName, doc.Data, doc.Caption)
}

// commandArguments returns the text after "/cmd " and the entities that fall inside it.
// Commands are ASCII, so the byte length of the prefix equals its UTF-16 length.
func commandArguments(message *tgbotapi.Message) (string, []adapter.MessageEntity) {
	args := message.CommandArguments()
	if args == "" {
		return "", nil
	}
	shift := len(message.Text) - len(args)
	return args, fromTGEntities(message.Entities, shift)
}
