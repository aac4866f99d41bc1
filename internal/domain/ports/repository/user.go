package repository

import (
	"context"
	"time"

	"telegram-event-reminder/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByTelegramID(ctx context.Context, tx Tx, tgID int64) (*model.User, error)
	// ListByCompanyAndRoles returns users WHERE company = companyID AND role IN roleIDs.
	ListByCompanyAndRoles(ctx context.Context, tx Tx, companyID int64, roleIDs []int64) ([]*model.User, error)
	// List pages through all users ordered by telegram id; limit <= 0 means no limit.
	List(ctx context.Context, tx Tx, offset, limit int) ([]*model.User, error)
	// ListRecipientIDs returns telegram ids of all users that have not blocked the bot.
	ListRecipientIDs(ctx context.Context, tx Tx) ([]int64, error)
	Touch(ctx context.Context, tx Tx, tgID int64, at time.Time) error
	MarkBlocked(ctx context.Context, tx Tx, tgID int64, blocked bool) error
	CountUsers(ctx context.Context, tx Tx) (int, error)
	CountActiveSince(ctx context.Context, tx Tx, since time.Time) (int, error)
}
