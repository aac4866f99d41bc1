package adapter

import (
	"context"
	"errors"
)

// ErrRecipientBlocked is returned (wrapped) when the recipient blocked the bot or deleted the chat.
var ErrRecipientBlocked = errors.New("recipient blocked the bot")

// Parse modes understood by the Telegram Bot API.
const (
	ParseModeHTML       = "HTML"
	ParseModeMarkdownV2 = "MarkdownV2"
	ParseModeNone       = ""
)

// InlineButton is a button attached under a message.
// URL buttons open a link, Data buttons send callback data.
type InlineButton struct {
	Text string `json:"text"`
	Data string `json:"callback_data,omitempty"`
	URL  string `json:"url,omitempty"`
}

// MessageEntity is a rich-text span (bold, text_link, ...) applied to the message text.
type MessageEntity struct {
	Type     string `json:"type"`
	Offset   int    `json:"offset"`
	Length   int    `json:"length"`
	URL      string `json:"url,omitempty"`
	Language string `json:"language,omitempty"`
}

type SendMessageParams struct {
	ChatID    int64
	Text      string
	ParseMode string
	Entities  []MessageEntity
	// Buttons renders an inline keyboard; ReplyKeyboard renders a one-time reply keyboard.
	// RemoveKeyboard hides a previously shown reply keyboard.
	Buttons        [][]InlineButton
	ReplyKeyboard  [][]string
	RemoveKeyboard bool
}

// MessageSender is the outbound side of the bot used by dispatch jobs.
type MessageSender interface {
	SendMessage(ctx context.Context, params SendMessageParams) error
	SendSticker(ctx context.Context, chatID int64, stickerID string) error
}

// TelegramBotAdapter is the full outbound port used by interactive handlers.
type TelegramBotAdapter interface {
	MessageSender
	SendDocument(ctx context.Context, chatID int64, fileName string, data []byte, caption string) error
	SendTyping(ctx context.Context, chatID int64) error
}
