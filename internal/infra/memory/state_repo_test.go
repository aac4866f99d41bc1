//go:build !integration

package memory

import (
	"context"
	"testing"
	"time"

	"telegram-event-reminder/internal/domain/ports/repository"
)

func TestStateRepo(t *testing.T) {
	ctx := context.Background()

	t.Run("should keep state until cleared when ttl is zero", func(t *testing.T) {
		repo := NewStateRepo(0)
		base := time.Now()
		repo.now = func() time.Time { return base }
		_ = repo.SetState(ctx, 1, &repository.ConversationState{Step: repository.StepAwaitingCompany})

		repo.now = func() time.Time { return base.Add(30 * 24 * time.Hour) }
		got, err := repo.GetState(ctx, 1)

		if err != nil || got == nil || got.Step != repository.StepAwaitingCompany {
			t.Fatalf("expected state to survive, got %+v (err %v)", got, err)
		}
		_ = repo.ClearState(ctx, 1)
		if got, _ := repo.GetState(ctx, 1); got != nil {
			t.Errorf("expected cleared state, got %+v", got)
		}
	})

	t.Run("should expire state after the ttl", func(t *testing.T) {
		repo := NewStateRepo(time.Minute)
		base := time.Now()
		repo.now = func() time.Time { return base }
		_ = repo.SetState(ctx, 1, &repository.ConversationState{Step: repository.StepAwaitingName})

		repo.now = func() time.Time { return base.Add(2 * time.Minute) }

		if got, _ := repo.GetState(ctx, 1); got != nil {
			t.Errorf("expected expired state, got %+v", got)
		}
	})

	t.Run("should treat a nil or empty state as clear", func(t *testing.T) {
		repo := NewStateRepo(0)
		_ = repo.SetState(ctx, 1, &repository.ConversationState{Step: repository.StepAwaitingName})
		_ = repo.SetState(ctx, 2, &repository.ConversationState{Step: repository.StepAwaitingName})

		if err := repo.SetState(ctx, 1, nil); err != nil {
			t.Fatalf("SetState(nil) failed: %v", err)
		}
		if err := repo.SetState(ctx, 2, &repository.ConversationState{}); err != nil {
			t.Fatalf("SetState(empty) failed: %v", err)
		}

		for _, id := range []int64{1, 2} {
			if got, err := repo.GetState(ctx, id); err != nil || got != nil {
				t.Errorf("user %d: expected (nil, nil), got (%+v, %v)", id, got, err)
			}
		}
		if len(repo.states) != 0 {
			t.Errorf("expected no stored entries, got %d", len(repo.states))
		}
	})

	t.Run("should not share data maps with callers", func(t *testing.T) {
		repo := NewStateRepo(0)
		in := &repository.ConversationState{Step: repository.StepAwaitingName, Data: map[string]string{"company": "Folk"}}
		_ = repo.SetState(ctx, 1, in)
		in.Data["company"] = "changed"

		got, _ := repo.GetState(ctx, 1)
		got.Data["company"] = "mutated"
		again, _ := repo.GetState(ctx, 1)

		if again.Data["company"] != "Folk" {
			t.Errorf("expected stored copy to stay intact, got %q", again.Data["company"])
		}
	})
}
