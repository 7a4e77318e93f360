package gen

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrepo/compiler/load"
)

func TestNewGraph(t *testing.T) {
	t.Run("builds every repository in order", func(t *testing.T) {
		g := shopGraph(t, WithWorkers(2))
		require.Len(t, g.Repos, 3)
		assert.Equal(t, "MyClassRepository", g.Repos[0].Name.Name)
		assert.Equal(t, "OptimisticLockRepository", g.Repos[1].Name.Name)
		assert.Equal(t, "ReportRepository", g.Repos[2].Name.Name)
	})

	t.Run("groups by database", func(t *testing.T) {
		dbs := shopGraph(t).Databases()
		require.Len(t, dbs, 2)
		assert.Equal(t, "my.pack.ReportDB", dbs[0].Name.String())
		assert.Equal(t, "my.pack.ShopDB", dbs[1].Name.String())
		require.Len(t, dbs[1].Repos, 2)
		tables := dbs[1].Tables()
		require.Len(t, tables, 2)
		assert.Equal(t, "my_class", tables[0].Name)
		assert.Equal(t, "locked_items", tables[1].Name)
		assert.Empty(t, dbs[0].Tables())
	})

	t.Run("include filter", func(t *testing.T) {
		g := shopGraph(t, WithInclude("my.pack.Optimistic*"))
		require.Len(t, g.Repos, 1)
		assert.Nil(t, g.Repo(load.QualifiedName{Pkg: "my.pack", Name: "MyClassRepository"}))
	})

	t.Run("shared mapping cache", func(t *testing.T) {
		cache, err := NewMappingCache(64)
		require.NoError(t, err)
		defer cache.Close()
		g := shopGraph(t, WithMappingCache(cache), WithWorkers(4))
		cached, ok := cache.Get(load.QualifiedName{Pkg: "my.pack", Name: "MyClass"})
		require.True(t, ok)
		assert.Same(t, cached, g.Repos[0].Table)
	})

	t.Run("joins errors of every repository", func(t *testing.T) {
		u := load.NewUniverse()
		repos, err := load.Parse(u, "bad.yaml", []byte(inlineHeader+`
repositories:
  - name: A
    entity: Item
    annotations: {Repository: {database: DB}}
    functions:
      - {name: findByColour, params: [{name: colour, type: String}], returns: List<Item>}
  - name: B
    annotations: {Repository: {database: DB}}
    functions:
      - {name: findAll, returns: List<Item>}
`))
		require.NoError(t, err)
		_, err = NewGraph(context.Background(), &Config{}, &load.Model{Universe: u, Repositories: repos})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrMapping))
		assert.True(t, errors.Is(err, ErrInvalidSchema))
		assert.Contains(t, err.Error(), "t.A.findByColour")
		assert.Contains(t, err.Error(), "type t.B")
	})

	t.Run("validation runs before synthesis", func(t *testing.T) {
		u := load.NewUniverse()
		repos, err := load.Parse(u, "bad.yaml", []byte(`
package: t
classes:
  - name: Node
    fields:
      - {name: next, type: Node}
repositories:
  - name: NodeRepository
    entity: Node
    annotations: {Repository: {database: DB}}
    functions:
      - {name: findByMissing, params: [{name: missing, type: String}], returns: List<Node>}
`))
		require.NoError(t, err)
		_, err = NewGraph(context.Background(), &Config{}, &load.Model{Universe: u, Repositories: repos})
		require.Error(t, err)
		assert.True(t, IsValidationError(err))
		assert.False(t, IsMappingError(err))
	})

	t.Run("canceled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := NewGraph(ctx, &Config{}, loadShop(t))
		require.ErrorIs(t, err, context.Canceled)
	})

	t.Run("nil config", func(t *testing.T) {
		_, err := NewGraph(context.Background(), nil, loadShop(t))
		assert.True(t, IsConfigError(err))
	})
}

func TestSnapshot(t *testing.T) {
	for _, format := range []string{FormatJSON, FormatYAML, FormatMsgpack} {
		t.Run(format, func(t *testing.T) {
			require := require.New(t)
			var a, b bytes.Buffer
			require.NoError(shopGraph(t).Snapshot().Encode(&a, format))
			require.NoError(shopGraph(t, WithWorkers(1)).Snapshot().Encode(&b, format))
			require.Equal(a.Bytes(), b.Bytes(), "synthesis is deterministic")

			s, err := DecodeSnapshot(bytes.NewReader(a.Bytes()), format)
			require.NoError(err)
			require.Len(s.Databases, 2)
			shop := s.Databases[1]
			require.Equal("my.pack.ShopDB", shop.Name)
			require.Equal("my_class", shop.Repos[0].Table)
			require.Len(shop.Repos[0].Columns, 16)
			save := shop.Repos[1].Methods[0]
			require.Equal("save", save.Name)
			require.Equal("save", save.Kind)
			require.True(save.Optimistic)
			require.Len(save.Params, 2)
			require.Equal("item.version", save.Params[1].Path)
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		err := (&Snapshot{}).Encode(&bytes.Buffer{}, "toml")
		assert.True(t, IsConfigError(err))
		_, err = DecodeSnapshot(&bytes.Buffer{}, "toml")
		assert.True(t, IsConfigError(err))
	})
}
