package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/repository"
)

var _ repository.UserRepository = (*PostgresUserRepo)(nil)

const userColumns = `telegram_id, username, company_id, role_id, is_blocked, is_admin, created_at, updated_at`

type PostgresUserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *PostgresUserRepo {
	return &PostgresUserRepo{pool: pool}
}

func (r *PostgresUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (` + userColumns + `)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
ON CONFLICT (telegram_id) DO UPDATE SET
  username=EXCLUDED.username, company_id=EXCLUDED.company_id, role_id=EXCLUDED.role_id,
  is_blocked=EXCLUDED.is_blocked, is_admin=EXCLUDED.is_admin, updated_at=EXCLUDED.updated_at;`
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	if u.UpdatedAt.IsZero() {
		u.UpdatedAt = u.CreatedAt
	}
	_, err = exec.Exec(ctx, q, u.TelegramID, u.Username, u.CompanyID, u.RoleID, u.IsBlocked, u.IsAdmin, u.CreatedAt, u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("save user: %w", err)
	}
	return nil
}

func (r *PostgresUserRepo) FindByTelegramID(ctx context.Context, tx repository.Tx, tgID int64) (*model.User, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	row := exec.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE telegram_id=$1;`, tgID)
	u, err := scanUser(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	return u, nil
}

func (r *PostgresUserRepo) ListByCompanyAndRoles(ctx context.Context, tx repository.Tx, companyID int64, roleIDs []int64) ([]*model.User, error) {
	if len(roleIDs) == 0 {
		return nil, nil
	}
	return r.query(ctx, tx, `
SELECT `+userColumns+` FROM users
 WHERE company_id=$1 AND role_id = ANY($2)
 ORDER BY telegram_id;`, companyID, roleIDs)
}

func (r *PostgresUserRepo) List(ctx context.Context, tx repository.Tx, offset, limit int) ([]*model.User, error) {
	if limit <= 0 {
		return r.query(ctx, tx, `SELECT `+userColumns+` FROM users ORDER BY telegram_id OFFSET $1;`, offset)
	}
	return r.query(ctx, tx, `SELECT `+userColumns+` FROM users ORDER BY telegram_id OFFSET $1 LIMIT $2;`, offset, limit)
}

func (r *PostgresUserRepo) ListRecipientIDs(ctx context.Context, tx repository.Tx) ([]int64, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, `SELECT telegram_id FROM users WHERE NOT is_blocked ORDER BY telegram_id;`)
	if err != nil {
		return nil, fmt.Errorf("list recipients: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *PostgresUserRepo) Touch(ctx context.Context, tx repository.Tx, tgID int64, at time.Time) error {
	return r.update(ctx, tx, `UPDATE users SET updated_at=$2 WHERE telegram_id=$1;`, tgID, at)
}

func (r *PostgresUserRepo) MarkBlocked(ctx context.Context, tx repository.Tx, tgID int64, blocked bool) error {
	return r.update(ctx, tx, `UPDATE users SET is_blocked=$2 WHERE telegram_id=$1;`, tgID, blocked)
}

func (r *PostgresUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM users;`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) CountActiveSince(ctx context.Context, tx repository.Tx, since time.Time) (int, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return 0, err
	}
	var n int
	if err := exec.QueryRow(ctx, `SELECT COUNT(*) FROM users WHERE updated_at >= $1;`, since).Scan(&n); err != nil {
		return 0, fmt.Errorf("count active: %w", err)
	}
	return n, nil
}

func (r *PostgresUserRepo) update(ctx context.Context, tx repository.Tx, q string, args ...interface{}) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	tag, err := exec.Exec(ctx, q, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepo) query(ctx context.Context, tx repository.Tx, q string, args ...interface{}) ([]*model.User, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var out []*model.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	if err := row.Scan(&u.TelegramID, &u.Username, &u.CompanyID, &u.RoleID, &u.IsBlocked, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt); err != nil {
		return nil, err
	}
	return &u, nil
}
