package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/repository"
)

var (
	_ repository.CompanyRepository = (*PostgresCompanyRepo)(nil)
	_ repository.RoleRepository    = (*PostgresRoleRepo)(nil)
)

// -----------------------------
// Companies
// -----------------------------

type PostgresCompanyRepo struct {
	pool *pgxpool.Pool
}

func NewCompanyRepo(pool *pgxpool.Pool) *PostgresCompanyRepo {
	return &PostgresCompanyRepo{pool: pool}
}

// Save inserts the company or, when a company with the same name (any case) exists,
// adopts its id.
func (r *PostgresCompanyRepo) Save(ctx context.Context, tx repository.Tx, c *model.Company) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO companies (name) VALUES ($1)
ON CONFLICT ((LOWER(name))) DO UPDATE SET name=EXCLUDED.name
RETURNING id;`
	if err := exec.QueryRow(ctx, q, c.Name).Scan(&c.ID); err != nil {
		return fmt.Errorf("save company: %w", err)
	}
	return nil
}

func (r *PostgresCompanyRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Company, error) {
	return r.findOne(ctx, tx, `SELECT id, name FROM companies WHERE LOWER(name)=LOWER($1);`, strings.TrimSpace(name))
}

func (r *PostgresCompanyRepo) FindByID(ctx context.Context, tx repository.Tx, id int64) (*model.Company, error) {
	return r.findOne(ctx, tx, `SELECT id, name FROM companies WHERE id=$1;`, id)
}

func (r *PostgresCompanyRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Company, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, `SELECT id, name FROM companies ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list companies: %w", err)
	}
	defer rows.Close()
	var out []*model.Company
	for rows.Next() {
		var c model.Company
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}

func (r *PostgresCompanyRepo) findOne(ctx context.Context, tx repository.Tx, q string, arg interface{}) (*model.Company, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var c model.Company
	if err := exec.QueryRow(ctx, q, arg).Scan(&c.ID, &c.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find company: %w", err)
	}
	return &c, nil
}

// -----------------------------
// Roles
// -----------------------------

type PostgresRoleRepo struct {
	pool *pgxpool.Pool
}

func NewRoleRepo(pool *pgxpool.Pool) *PostgresRoleRepo {
	return &PostgresRoleRepo{pool: pool}
}

func (r *PostgresRoleRepo) Save(ctx context.Context, tx repository.Tx, role *model.Role) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	const q = `
INSERT INTO roles (name) VALUES ($1)
ON CONFLICT (name) DO UPDATE SET name=EXCLUDED.name
RETURNING id;`
	if err := exec.QueryRow(ctx, q, role.Name).Scan(&role.ID); err != nil {
		return fmt.Errorf("save role: %w", err)
	}
	return nil
}

func (r *PostgresRoleRepo) FindByName(ctx context.Context, tx repository.Tx, name string) (*model.Role, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	var role model.Role
	if err := exec.QueryRow(ctx, `SELECT id, name FROM roles WHERE name=$1;`, name).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("find role: %w", err)
	}
	return &role, nil
}

func (r *PostgresRoleRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Role, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	rows, err := exec.Query(ctx, `SELECT id, name FROM roles ORDER BY id;`)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()
	var out []*model.Role
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name); err != nil {
			return nil, err
		}
		out = append(out, &role)
	}
	return out, rows.Err()
}
