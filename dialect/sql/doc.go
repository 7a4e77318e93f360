// Package sql implements dialect.Driver on top of database/sql.
//
// Synthesized queries use "?" placeholders. Conn rebinds them to "$n"
// for Postgres and passes them through for SQLite:
//
//	drv, err := sql.Open(dialect.Postgres, dsn)
//	if err != nil {
//	    return err
//	}
//	rows := &sql.Rows{}
//	err = drv.Query(ctx, `SELECT "id" FROM items WHERE "name" = ?`, []any{name}, rows)
//
// # Transactions
//
// Transaction commits when the body returns nil and rolls back on an
// error or a panic:
//
//	err := sql.Transaction(ctx, drv, func(ctx context.Context, tx dialect.Tx) error {
//	    return tx.Exec(ctx, "DELETE FROM items", []any{}, nil)
//	})
//
// # Session variables
//
// WithVar attaches Postgres settings that are applied before each
// statement and reset before a pooled connection is released:
//
//	ctx = sql.WithVar(ctx, "statement_timeout", "5s")
//
// # Statistics
//
// StatsDriver counts the statements of any dialect.Driver and logs
// them, with slow statements at warn level:
//
//	stats := sql.NewStatsDriver(drv,
//	    sql.WithSlowThreshold(200*time.Millisecond),
//	    sql.WithStatsLogger(logger),
//	)
//	db := shop.NewShopDB(stats)
package sql
