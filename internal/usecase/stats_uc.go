package usecase

import (
	"context"
	"fmt"
	"time"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// ActiveWindow is how far back a user's last interaction counts as active.
const ActiveWindow = 24 * time.Hour

// Compile-time check
var _ StatsUseCase = (*statsUC)(nil)

type UserStats struct {
	Total     int       `json:"total"`
	Active24h int       `json:"active_24h"`
	Since     time.Time `json:"since"`
}

type StatsUseCase interface {
	UserStats(ctx context.Context) (*UserStats, error)
}

type statsUC struct {
	users repository.UserRepository
	now   func() time.Time
	log   *zerolog.Logger
}

func NewStatsUseCase(users repository.UserRepository, logger *zerolog.Logger) *statsUC {
	return &statsUC{users: users, now: time.Now, log: logger}
}

func (s *statsUC) UserStats(ctx context.Context) (*UserStats, error) {
	total, err := s.users.CountUsers(ctx, repository.NoTX)
	if err != nil {
		return nil, fmt.Errorf("%w: count users: %w", domain.ErrDataAccess, err)
	}
	since := s.now().Add(-ActiveWindow)
	active, err := s.users.CountActiveSince(ctx, repository.NoTX, since)
	if err != nil {
		return nil, fmt.Errorf("%w: count active users: %w", domain.ErrDataAccess, err)
	}
	return &UserStats{Total: total, Active24h: active, Since: since}, nil
}
