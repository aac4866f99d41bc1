package repository

import (
	"context"

	"github.com/jackc/pgx/v4"
)

// Tx is an opaque transaction handle created by a TransactionManager.
// Only the repositories of the same infra package know its concrete type.
type Tx interface{}

// NoTX makes a repository run the statement outside any transaction.
var NoTX Tx

// TransactionManager runs fn atomically; repositories called with the tx it
// receives join the transaction.
type TransactionManager interface {
	WithTx(ctx context.Context, txOpt pgx.TxOptions, fn func(ctx context.Context, tx Tx) error) error
}
