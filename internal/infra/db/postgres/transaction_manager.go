package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgconn"
	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"telegram-event-reminder/internal/domain"
	"telegram-event-reminder/internal/domain/ports/repository"
)

var _ repository.TransactionManager = (*TxManager)(nil)

// TxManager runs registration and event writes atomically. The handle passed
// to the callback is a pgx.Tx that the repositories in this package accept as tx.
type TxManager struct {
	pool *pgxpool.Pool
}

func NewTxManager(pool *pgxpool.Pool) *TxManager {
	return &TxManager{pool: pool}
}

// WithTx commits when fn returns nil and rolls back otherwise, including on panic.
// fn's error is returned unwrapped so callers can match domain sentinels.
func (m *TxManager) WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	var fnErr error
	err := m.pool.BeginTxFunc(ctx, txOpt, func(tx pgx.Tx) error {
		fnErr = fn(ctx, tx)
		return fnErr
	})
	switch {
	case fnErr != nil:
		return fnErr
	case err != nil:
		return fmt.Errorf("%w: transaction: %v", domain.ErrDataAccess, err)
	}
	return nil
}

// querier is the part of pgx shared by the pool and a transaction.
type querier interface {
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, arguments ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
}

// getExecutor picks the transaction when one is passed and the pool for repository.NoTX.
func getExecutor(pool *pgxpool.Pool, tx repository.Tx) (querier, error) {
	switch v := tx.(type) {
	case nil:
		if pool == nil {
			return nil, domain.ErrInvalidArgument
		}
		return pool, nil
	case pgx.Tx:
		return v, nil
	case *pgxpool.Pool:
		return v, nil
	default:
		return nil, fmt.Errorf("%w: %T", domain.ErrInvalidExecContext, tx)
	}
}
