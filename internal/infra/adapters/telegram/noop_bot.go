package telegram

import (
	"context"

	"github.com/rs/zerolog"

	"telegram-event-reminder/internal/domain/ports/adapter"
)

var _ adapter.TelegramBotAdapter = (*NoopBotAdapter)(nil)

// NoopBotAdapter implements adapter.TelegramBotAdapter for local/dev runs.
// It logs messages instead of sending real Telegram messages.
type NoopBotAdapter struct {
	log *zerolog.Logger
}

func NewNoopBotAdapter(logger *zerolog.Logger) *NoopBotAdapter {
	l := logger.With().Str("component", "noop-telegram").Logger()
	return &NoopBotAdapter{log: &l}
}

func (b *NoopBotAdapter) SendMessage(ctx context.Context, p adapter.SendMessageParams) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().
		Int64("chat_id", p.ChatID).
		Str("text", p.Text).
		Int("entities", len(p.Entities)).
		Int("buttons", len(p.Buttons)).
		Msg("send message")
	return nil
}

func (b *NoopBotAdapter) SendSticker(ctx context.Context, chatID int64, stickerID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("sticker", stickerID).Msg("send sticker")
	return nil
}

func (b *NoopBotAdapter) SendDocument(ctx context.Context, chatID int64, fileName string, data []byte, caption string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.log.Info().Int64("chat_id", chatID).Str("file", fileName).Int("bytes", len(data)).Msg("send document")
	return nil
}

func (b *NoopBotAdapter) SendTyping(ctx context.Context, chatID int64) error {
	return ctx.Err()
}
