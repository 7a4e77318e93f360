package dialect

import (
	"context"
)

// Dialect names. Synthesized upserts use ON CONFLICT ... EXCLUDED,
// which both dialects accept.
const (
	Postgres = "postgres"
	SQLite   = "sqlite"
)

// Supported reports whether name is a known dialect.
func Supported(name string) bool {
	return name == Postgres || name == SQLite
}

// ExecQuerier wraps the two database operations generated repositories
// and the sqlexec executor issue.
type ExecQuerier interface {
	// Exec executes a statement that returns no rows. v is nil or a
	// *sql.Result receiving the result.
	Exec(ctx context.Context, query string, args, v any) error
	// Query executes a query and stores its rows in v.
	Query(ctx context.Context, query string, args, v any) error
}

// Driver is the interface that wraps all necessary operations for
// executing repository methods.
type Driver interface {
	ExecQuerier
	// Tx starts and returns a new transaction.
	Tx(context.Context) (Tx, error)
	// Close closes the underlying connection.
	Close() error
	// Dialect returns the dialect name of the driver.
	Dialect() string
}

// Tx wraps the Exec and Query operations in a transaction.
type Tx interface {
	ExecQuerier
	Commit() error
	Rollback() error
}
