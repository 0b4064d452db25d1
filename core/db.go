package core

import (
	"context"

	"github.com/jmoiron/sqlx"
)

type (
	// DBExecutor is implemented by both *sqlx.DB and *sqlx.Tx.
	// In-memory repositories only journal writes made through their own transactions.
	DBExecutor interface {
		sqlx.ExtContext
	}

	// TxRunner runs fn as one unit of work: either every write made through
	// the provided DBExecutor is kept, or none is.
	TxRunner interface {
		RunInTx(ctx context.Context, fn func(exec DBExecutor) error) error
	}
)
