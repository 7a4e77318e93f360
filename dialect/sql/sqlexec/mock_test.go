package sqlexec

import (
	"context"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrepo"
	"github.com/syssam/sqlrepo/dialect"
	"github.com/syssam/sqlrepo/dialect/sql"
)

func TestExecutorWithMock(t *testing.T) {
	ctx := context.Background()
	r := itemRepo(t)

	t.Run("second row stops the scan", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		id := uuid.New().String()
		mock.ExpectQuery("SELECT").
			WithArgs("ON").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name", "count", "tags", "mode", "width", "height", "version"}).
				AddRow(id, "a", 1, `[]`, "ON", 1, nil, 1).
				AddRow(id, "b", 2, `[]`, "ON", 2, nil, 1))

		_, err = New(sql.OpenDB(dialect.Postgres, db)).Call(ctx, r, "findByMode", Args{"mode": "ON"})
		require.ErrorIs(t, err, sqlrepo.ErrNotSingular)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("unique violation", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectExec("INSERT INTO items").WillReturnError(&pq.Error{Code: "23505"})

		item := newItem(uuid.New(), nil, 1, "ON")
		_, err = New(sql.OpenDB(dialect.Postgres, db)).Call(ctx, r, "save", Args{"item": item})
		require.True(t, sqlrepo.IsConstraintError(err))
	})

	t.Run("rows affected failure", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectExec("DELETE FROM items").
			WillReturnResult(sqlmock.NewErrorResult(errors.New("unsupported")))

		item := newItem(uuid.New(), nil, 1, "ON")
		_, err = New(sql.OpenDB(dialect.Postgres, db)).Call(ctx, r, "delete", Args{"item": item})
		require.True(t, sqlrepo.IsQueryError(err))
	})

	t.Run("null in non-nullable column", func(t *testing.T) {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		defer db.Close()
		mock.ExpectQuery("SELECT").
			WillReturnRows(sqlmock.NewRows([]string{"count(*)"}).AddRow(nil))

		_, err = New(sql.OpenDB(dialect.Postgres, db)).Call(ctx, r, "count", nil)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "NULL read for non-nullable result")
	})
}
