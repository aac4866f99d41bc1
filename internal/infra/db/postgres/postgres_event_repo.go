package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/model"
	"telegram-event-reminder/internal/domain/ports/repository"
)

var _ repository.EventRepository = (*PostgresEventRepo)(nil)

type PostgresEventRepo struct {
	pool *pgxpool.Pool
	tm   *TxManager
}

func NewEventRepo(pool *pgxpool.Pool) *PostgresEventRepo {
	return &PostgresEventRepo{pool: pool, tm: NewTxManager(pool)}
}

// Save writes the event row and replaces its role set. Without a tx it opens its own.
func (r *PostgresEventRepo) Save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	if len(e.RoleIDs) == 0 {
		return domain.ErrInvalidArgument
	}
	if tx == nil {
		return r.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
			return r.save(ctx, tx, e)
		})
	}
	return r.save(ctx, tx, e)
}

func (r *PostgresEventRepo) save(ctx context.Context, tx repository.Tx, e *model.Event) error {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return err
	}
	date := model.DateOf(e.Date)
	if e.ID == 0 {
		err = exec.QueryRow(ctx, `
INSERT INTO events (title, text, date, company_id) VALUES ($1,$2,$3,$4) RETURNING id;`,
			e.Title, e.Text, date, e.CompanyID).Scan(&e.ID)
		if err != nil {
			return fmt.Errorf("insert event: %w", err)
		}
	} else {
		tag, err := exec.Exec(ctx, `UPDATE events SET title=$2, text=$3, date=$4, company_id=$5 WHERE id=$1;`,
			e.ID, e.Title, e.Text, date, e.CompanyID)
		if err != nil {
			return fmt.Errorf("update event: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		if _, err := exec.Exec(ctx, `DELETE FROM event_roles WHERE event_id=$1;`, e.ID); err != nil {
			return fmt.Errorf("reset event roles: %w", err)
		}
	}

	_, err = exec.Exec(ctx, `
INSERT INTO event_roles (event_id, role_id)
SELECT $1, UNNEST($2::bigint[])
ON CONFLICT DO NOTHING;`, e.ID, e.RoleIDs)
	if err != nil {
		return fmt.Errorf("insert event roles: %w", err)
	}
	return nil
}

func (r *PostgresEventRepo) ListByDate(ctx context.Context, tx repository.Tx, date time.Time) ([]*model.Event, error) {
	exec, err := getExecutor(r.pool, tx)
	if err != nil {
		return nil, err
	}
	const q = `
SELECT e.id, e.title, e.text, e.date, e.company_id,
       COALESCE(ARRAY_AGG(er.role_id ORDER BY er.role_id) FILTER (WHERE er.role_id IS NOT NULL), '{}')::bigint[]
  FROM events e
  LEFT JOIN event_roles er ON er.event_id = e.id
 WHERE e.date = $1
 GROUP BY e.id
 ORDER BY e.id;`
	rows, err := exec.Query(ctx, q, model.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("list events: %w", err)
	}
	defer rows.Close()

	var out []*model.Event
	for rows.Next() {
		var e model.Event
		if err := rows.Scan(&e.ID, &e.Title, &e.Text, &e.Date, &e.CompanyID, &e.RoleIDs); err != nil {
			return nil, err
		}
		out = append(out, &e)
	}
	return out, rows.Err()
}
