package repository

import (
	"context"

	"telegram-event-reminder/internal/domain/model"
)

// -----------------------------
// Companies & Roles
// -----------------------------

type CompanyRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Company) error
	// FindByName matches case-insensitively on the trimmed name.
	FindByName(ctx context.Context, tx Tx, name string) (*model.Company, error)
	FindByID(ctx context.Context, tx Tx, id int64) (*model.Company, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Company, error)
}

type RoleRepository interface {
	Save(ctx context.Context, tx Tx, r *model.Role) error
	FindByName(ctx context.Context, tx Tx, name string) (*model.Role, error)
	ListAll(ctx context.Context, tx Tx) ([]*model.Role, error)
}
