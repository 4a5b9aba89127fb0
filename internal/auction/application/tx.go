package application

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TxRunner runs a function inside a database transaction, committing when
// it returns nil and rolled back otherwise. Use cases depend on this
// instead of a concrete pool so the transactional flow can be exercised
// without Postgres.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
