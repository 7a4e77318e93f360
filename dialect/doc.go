// Package dialect names the database dialects synthesized SQL targets
// and defines the interfaces generated repositories run on.
//
// # Dialects
//
//	dialect.Postgres = "postgres"
//	dialect.SQLite   = "sqlite"
//
// # Interfaces
//
// ExecQuerier is implemented by both Driver and Tx, so a repository
// works the same inside and outside a transaction:
//
//	type ExecQuerier interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	}
//
// # Usage
//
//	import (
//	    "github.com/syssam/sqlrepo/dialect"
//	    "github.com/syssam/sqlrepo/dialect/sql"
//	)
//
//	drv, err := sql.Open(dialect.Postgres, "postgres://...")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer drv.Close()
//
// # Sub-packages
//
//   - dialect/sql: database/sql driver, transactions and statistics
//   - dialect/sql/sqlexec: runtime executor for synthesized methods
package dialect
