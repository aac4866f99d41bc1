package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/repository"

	"github.com/rs/zerolog"
)

// Compile-time check
var _ UserUseCase = (*userUC)(nil)

// UserUseCase exposes user-related operations used by bot/admin flows.
type UserUseCase interface {
	GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error)
	// Touch records activity of a known user; unknown users are ignored.
	Touch(ctx context.Context, tgID int64) error
	IsAdmin(ctx context.Context, tgID int64) (bool, error)
	// RecipientIDs lists every user a broadcast should reach.
	RecipientIDs(ctx context.Context) ([]int64, error)
	// Unblock clears the blocked flag once a user talks to the bot again.
	Unblock(ctx context.Context, u *model.User) error
}

type userUC struct {
	users    repository.UserRepository
	adminIDs map[int64]struct{}
	log      *zerolog.Logger
}

func NewUserUseCase(users repository.UserRepository, adminIDs []int64, logger *zerolog.Logger) *userUC {
	ids := make(map[int64]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		ids[id] = struct{}{}
	}
	l := logger.With().Str("component", "UserUC").Logger()
	return &userUC{users: users, adminIDs: ids, log: &l}
}

func (u *userUC) GetByTelegramID(ctx context.Context, tgID int64) (*model.User, error) {
	usr, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if err != nil {
		return nil, err
	}
	if usr == nil {
		return nil, domain.ErrNotFound
	}
	return usr, nil
}

func (u *userUC) Touch(ctx context.Context, tgID int64) error {
	err := u.users.Touch(ctx, repository.NoTX, tgID, time.Now())
	if err != nil && !errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%w: touch user: %w", domain.ErrDataAccess, err)
	}
	return nil
}

func (u *userUC) IsAdmin(ctx context.Context, tgID int64) (bool, error) {
	if _, ok := u.adminIDs[tgID]; ok {
		return true, nil
	}
	usr, err := u.users.FindByTelegramID(ctx, repository.NoTX, tgID)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: find user: %w", domain.ErrDataAccess, err)
	}
	return usr != nil && usr.IsAdmin, nil
}

func (u *userUC) RecipientIDs(ctx context.Context) ([]int64, error) {
	ids, err := u.users.ListRecipientIDs(ctx, repository.NoTX)
	if err != nil {
		return nil, fmt.Errorf("%w: list recipients: %w", domain.ErrDataAccess, err)
	}
	return ids, nil
}

func (u *userUC) Unblock(ctx context.Context, usr *model.User) error {
	if usr == nil || !usr.IsBlocked {
		return nil
	}
	if err := u.users.MarkBlocked(ctx, repository.NoTX, usr.TelegramID, false); err != nil {
		return fmt.Errorf("%w: unblock user: %w", domain.ErrDataAccess, err)
	}
	usr.IsBlocked = false
	u.log.Info().Int64("tg_id", usr.TelegramID).Msg("user unblocked the bot")
	return nil
}
