// Package memory holds process-local stores for single-instance deployments and development.
package memory

import (
	"context"
	"maps"
	"sync"
	"time"

	"telegram-event-reminder/internal/domain/ports/repository"
)

var _ repository.StateRepository = (*StateRepo)(nil)

type entry struct {
	state   repository.ConversationState
	expires time.Time // zero means no expiry
}

// StateRepo keeps conversation state in a map guarded by a mutex.
type StateRepo struct {
	mu     sync.Mutex
	states map[int64]entry
	ttl    time.Duration
	now    func() time.Time
}

func NewStateRepo(ttl time.Duration) *StateRepo {
	return &StateRepo{states: make(map[int64]entry), ttl: ttl, now: time.Now}
}

// SetState overwrites the user's state. A nil state or an empty step clears it.
func (s *StateRepo) SetState(ctx context.Context, tgID int64, state *repository.ConversationState) error {
	if state == nil || state.Step == "" {
		return s.ClearState(ctx, tgID)
	}
	e := entry{state: clone(state)}
	if s.ttl > 0 {
		e.expires = s.now().Add(s.ttl)
	}
	s.mu.Lock()
	s.states[tgID] = e
	s.mu.Unlock()
	return nil
}

func (s *StateRepo) GetState(ctx context.Context, tgID int64) (*repository.ConversationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.states[tgID]
	if !ok {
		return nil, nil
	}
	if !e.expires.IsZero() && s.now().After(e.expires) {
		delete(s.states, tgID)
		return nil, nil
	}
	st := clone(&e.state)
	return &st, nil
}

func (s *StateRepo) ClearState(ctx context.Context, tgID int64) error {
	s.mu.Lock()
	delete(s.states, tgID)
	s.mu.Unlock()
	return nil
}

func clone(st *repository.ConversationState) repository.ConversationState {
	if st == nil {
		return repository.ConversationState{}
	}
	return repository.ConversationState{Step: st.Step, Data: maps.Clone(st.Data)}
}
