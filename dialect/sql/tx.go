package sql

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/sqlrepo"
	"github.com/syssam/sqlrepo/dialect"
)

// TxFunc is the body of a transaction.
type TxFunc func(ctx context.Context, tx dialect.Tx) error

// Transaction runs fn in a new transaction of drv. The transaction is
// committed when fn returns nil and rolled back when it returns an error
// or panics. A panic is re-raised after the rollback.
func Transaction(ctx context.Context, drv dialect.Driver, fn TxFunc) (err error) {
	tx, err := drv.Tx(ctx)
	if err != nil {
		return fmt.Errorf("dialect/sql: begin transaction: %w", err)
	}
	defer func() {
		if v := recover(); v != nil {
			_ = tx.Rollback()
			panic(v)
		}
	}()
	if err := fn(ctx, tx); err != nil {
		if rerr := tx.Rollback(); rerr != nil {
			err = errors.Join(err, &sqlrepo.RollbackError{Err: rerr})
		}
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("dialect/sql: commit transaction: %w", err)
	}
	return nil
}
