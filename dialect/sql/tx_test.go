package sql

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrepo"
	"github.com/syssam/sqlrepo/dialect"
)

func TestTransaction(t *testing.T) {
	ctx := context.Background()
	insert := func(ctx context.Context, tx dialect.Tx) error {
		return tx.Exec(ctx, "INSERT INTO items DEFAULT VALUES", []any{}, nil)
	}

	t.Run("commits on success", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO items").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectCommit()

		require.NoError(t, Transaction(ctx, OpenDB(dialect.SQLite, db), insert))
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("rolls back on error", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO items").WillReturnResult(sqlmock.NewResult(1, 1))
		mock.ExpectRollback()

		err = Transaction(ctx, OpenDB(dialect.SQLite, db), func(ctx context.Context, tx dialect.Tx) error {
			if err := insert(ctx, tx); err != nil {
				return err
			}
			return boom
		})
		require.ErrorIs(t, err, boom)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("reports a failed rollback", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		boom := errors.New("boom")
		mock.ExpectBegin()
		mock.ExpectRollback().WillReturnError(errors.New("connection lost"))

		err = Transaction(ctx, OpenDB(dialect.SQLite, db), func(context.Context, dialect.Tx) error {
			return boom
		})
		require.ErrorIs(t, err, boom)
		var rerr *sqlrepo.RollbackError
		require.True(t, errors.As(err, &rerr))
		assert.Contains(t, rerr.Error(), "connection lost")
	})

	t.Run("rolls back on panic", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectRollback()

		assert.PanicsWithValue(t, "oops", func() {
			_ = Transaction(ctx, OpenDB(dialect.SQLite, db), func(context.Context, dialect.Tx) error {
				panic("oops")
			})
		})
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("begin failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin().WillReturnError(errors.New("too many connections"))

		called := false
		err = Transaction(ctx, OpenDB(dialect.SQLite, db), func(context.Context, dialect.Tx) error {
			called = true
			return nil
		})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "begin transaction")
		assert.False(t, called)
	})

	t.Run("commit failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectBegin()
		mock.ExpectCommit().WillReturnError(errors.New("serialization failure"))

		err = Transaction(ctx, OpenDB(dialect.SQLite, db), func(context.Context, dialect.Tx) error { return nil })
		require.Error(t, err)
		assert.Contains(t, err.Error(), "commit transaction")
	})
}
