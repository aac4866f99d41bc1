package repository

import (
	"context"
)

// Conversation steps of the registration flow. Idle is represented by the absence of state.
const (
	StepAwaitingCompany = "awaiting_company"
	StepAwaitingName    = "awaiting_name"
)

// ConversationState holds the user's progress in a multi-step conversation.
type ConversationState struct {
	Step string            `json:"step"`
	Data map[string]string `json:"data,omitempty"`
}

// StateRepository stores conversation state keyed by Telegram user id.
// GetState returns (nil, nil) when the user has no state.
type StateRepository interface {
	SetState(ctx context.Context, tgID int64, state *ConversationState) error
	GetState(ctx context.Context, tgID int64) (*ConversationState, error)
	ClearState(ctx context.Context, tgID int64) error
}
