package sql

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScanColumns(t *testing.T) {
	query := func(t *testing.T, rows *sqlmock.Rows) ColumnScanner {
		db, mock, err := sqlmock.New()
		require.NoError(t, err)
		t.Cleanup(func() { db.Close() })
		mock.ExpectQuery("SELECT").WillReturnRows(rows)
		r, err := db.Query("SELECT")
		require.NoError(t, err)
		t.Cleanup(func() { r.Close() })
		require.True(t, r.Next())
		return r
	}

	t.Run("by name", func(t *testing.T) {
		rows := query(t, sqlmock.NewRows([]string{"ID", "name", "extra"}).AddRow(int64(7), nil, "x"))
		var (
			id   int
			name *string
		)
		require.NoError(t, ScanColumns(rows, map[string]any{"id": &id, "name": &name}))
		assert.Equal(t, 7, id)
		assert.Nil(t, name)
	})

	t.Run("first column", func(t *testing.T) {
		rows := query(t, sqlmock.NewRows([]string{"count(*)"}).AddRow(int64(3)))
		var n int64
		require.NoError(t, ScanColumns(rows, map[string]any{"": &n}))
		assert.Equal(t, int64(3), n)
	})

	t.Run("missing column", func(t *testing.T) {
		rows := query(t, sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		var id, other int
		err := ScanColumns(rows, map[string]any{"id": &id, "other": &other})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `column "other" not in result`)
	})
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name string
		json JSON
		want any
	}{
		{name: "slice", json: JSON{V: []string{"a", "b"}}, want: `["a","b"]`},
		{name: "nil slice", json: JSON{V: []string(nil)}, want: "[]"},
		{name: "nil map", json: JSON{V: map[string]int(nil)}, want: "{}"},
		{name: "nullable nil slice", json: JSON{V: []string(nil), Nullable: true}, want: nil},
		{name: "nil", json: JSON{}, want: nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := tt.json.Value()
			require.NoError(t, err)
			assert.Equal(t, tt.want, v)
		})
	}

	t.Run("scan", func(t *testing.T) {
		require := require.New(t)
		var tags []string
		require.NoError((&JSON{V: &tags}).Scan([]byte(`["x"]`)))
		require.Equal([]string{"x"}, tags)
		require.NoError((&JSON{V: &tags}).Scan(nil))
		require.Equal([]string{"x"}, tags)
		require.Error((&JSON{V: &tags}).Scan(42))
		require.Error((&JSON{V: &tags}).Scan(`{`))
	})
}
