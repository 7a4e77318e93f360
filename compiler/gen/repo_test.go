package gen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrepo/compiler/load"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name        string
		fn          string
		annotations load.Annotations
		want        MethodKind
	}{
		{"query wins over save prefix", "saveReport", load.Annotations{load.AnnotationQuery: "select 1"}, MethodCustom},
		{"statement", "touch", load.Annotations{load.AnnotationStatement: "select 1"}, MethodCustom},
		{"empty query is ignored", "findAll", load.Annotations{load.AnnotationQuery: ""}, MethodDerived},
		{"save prefix", "saveAll", nil, MethodSave},
		{"save annotation", "store", load.Annotations{load.AnnotationSave: map[string]any{}}, MethodSave},
		{"save prefix with delete annotation", "saveOrRemove", load.Annotations{load.AnnotationDelete: map[string]any{}}, MethodDelete},
		{"delete prefix", "deleteById", nil, MethodDelete},
		{"delete annotation", "remove", load.Annotations{load.AnnotationDelete: map[string]any{}}, MethodDelete},
		{"delete prefix with save annotation", "deleteAndStore", load.Annotations{load.AnnotationSave: map[string]any{}}, MethodSave},
		{"derived", "findByName", nil, MethodDerived},
		{"where template stays derived", "findSome", load.Annotations{load.AnnotationWhere: "a = :a"}, MethodDerived},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fn := &load.Function{Name: tt.fn, Annotations: tt.annotations}
			assert.Equal(t, tt.want, Classify(fn))
		})
	}
}

func TestMethodKindString(t *testing.T) {
	assert.Equal(t, "custom", MethodCustom.String())
	assert.Equal(t, "save", MethodSave.String())
	assert.Equal(t, "delete", MethodDelete.String())
	assert.Equal(t, "derived", MethodDerived.String())
	assert.Equal(t, "unknown", MethodKind(0).String())
}

func TestNewRepo(t *testing.T) {
	t.Run("methods keep declaration order", func(t *testing.T) {
		m := loadShop(t)
		r := shopRepo(t, "MyClassRepository")
		require.Len(t, r.Methods, len(m.Repositories[0].Functions))
		for i, fn := range m.Repositories[0].Functions {
			assert.Equal(t, fn.Name, r.Methods[i].Name)
		}
		assert.Equal(t, "my.pack.ShopDB", r.Database.String())
		assert.False(t, r.Standalone())
		assert.Equal(t, "my_class", r.Table.Name)
	})

	t.Run("standalone repository rejects derived methods", func(t *testing.T) {
		_, err := buildInline(t, `
repositories:
  - name: Reports
    annotations: {Repository: {database: DB}}
    functions:
      - {name: findAll, returns: List<Item>}
`)
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
		assert.Contains(t, err.Error(), "only custom queries")
	})

	t.Run("qualified database annotation", func(t *testing.T) {
		r, err := buildInline(t, `
repositories:
  - name: Reports
    annotations: {Repository: {database: other.pkg.Warehouse}}
    functions:
      - {name: total, returns: Long, annotations: {Query: "select count(*) from item"}}
`)
		require.NoError(t, err)
		assert.Equal(t, load.QualifiedName{Pkg: "other.pkg", Name: "Warehouse"}, r.Database)
		assert.Equal(t, "select count(*) from item\nLIMIT 2", r.Method("total").Query)
	})

	t.Run("default database", func(t *testing.T) {
		src := `
repositories:
  - name: Reports
    functions:
      - {name: total, returns: Long, annotations: {Query: "select count(*) from item"}}
`
		r, err := buildInline(t, src, WithDatabase("main.MainDB"))
		require.NoError(t, err)
		assert.Equal(t, "main.MainDB", r.Database.String())

		_, err = buildInline(t, src)
		require.Error(t, err)
		assert.True(t, IsSchemaError(err))
		assert.Contains(t, err.Error(), "no database")
	})
}
