package store

import (
	"context"
	"database/sql"
)

// DBTX abstracts the database handle the postgres stores run on. Both
// *sql.DB and *sql.Tx satisfy it, so a store can execute against the pool
// directly or inside a caller-managed transaction.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}
