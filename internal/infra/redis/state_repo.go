package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"telegram-event-reminder/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

const stateKeyPrefix = "registration:state:"

// StateRepo keeps registration conversation state in Redis as JSON, one key per user.
// Any bot instance can pick up the next message of a conversation.
type StateRepo struct {
	client RedisClient
	ttl    time.Duration
}

// NewStateRepo stores states with the given ttl; zero keeps them until cleared.
func NewStateRepo(client RedisClient, ttl time.Duration) *StateRepo {
	if ttl < 0 {
		ttl = 0
	}
	return &StateRepo{client: client, ttl: ttl}
}

func stateKey(tgID int64) string { return fmt.Sprintf("%s%d", stateKeyPrefix, tgID) }

// SetState overwrites the user's state. A nil state clears it.
func (s *StateRepo) SetState(ctx context.Context, tgID int64, state *repository.ConversationState) error {
	if state == nil {
		return s.ClearState(ctx, tgID)
	}
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := s.client.Set(ctx, stateKey(tgID), b, s.ttl); err != nil {
		return fmt.Errorf("save state: %w", err)
	}
	return nil
}

func (s *StateRepo) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	raw, err := s.client.Get(ctx, stateKey(tgID))
	switch {
	case errors.Is(err, Nil):
		return nil, nil
	case err != nil:
		return nil, fmt.Errorf("load state: %w", err)
	}

	st := new(repository.ConversationState)
	if err := json.Unmarshal([]byte(raw), st); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	if st.Step == "" {
		return nil, nil
	}
	return st, nil
}

func (s *StateRepo) ClearState(ctx context.Context, tgID int64) error {
	if err := s.client.Del(ctx, stateKey(tgID)); err != nil {
		return fmt.Errorf("clear state: %w", err)
	}
	return nil
}
