package gen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrepo/compiler/load"
)

const shopFile = "../load/testdata/shop.yaml"

// shopColumns are the quoted columns of my.pack.MyClass.
const shopColumns = `"id", "name", "proc", "cap_city", "longivity", "version", "bool", "date", "timestamp", "uuid", "time", "local_date", "local_date_time", "list", "enum", "nullable_int"`

func loadShop(t *testing.T) *load.Model {
	t.Helper()
	m, err := load.ReadFiles(shopFile)
	require.NoError(t, err)
	return m
}

func shopGraph(t *testing.T, opts ...Option) *Graph {
	t.Helper()
	g, err := NewGraph(context.Background(), MustNewConfig(opts...), loadShop(t))
	require.NoError(t, err)
	return g
}

func shopRepo(t *testing.T, name string) *Repo {
	t.Helper()
	r := shopGraph(t).Repo(load.QualifiedName{Pkg: "my.pack", Name: name})
	require.NotNil(t, r, name)
	return r
}

func shopMethod(t *testing.T, repo, method string) *QueryMethod {
	t.Helper()
	m := shopRepo(t, repo).Method(method)
	require.NotNil(t, m, method)
	return m
}

func klass(t *testing.T, m *load.Model, name string) *load.Klass {
	t.Helper()
	k, ok := m.Universe.Lookup(load.QualifiedName{Pkg: "my.pack", Name: name})
	require.True(t, ok, name)
	return k
}

// inlineHeader declares the classes shared by inline repository sources.
const inlineHeader = `
package: t
classes:
  - name: Item
    fields:
      - {name: id, type: String, annotations: {Id: {}}}
      - {name: name, type: 'String?'}
      - {name: count, type: Int}
`

// buildInline parses src after inlineHeader and builds its single
// repository.
func buildInline(t *testing.T, src string, opts ...Option) (*Repo, error) {
	t.Helper()
	repos, err := load.Parse(load.NewUniverse(), "inline.yaml", []byte(inlineHeader+src))
	require.NoError(t, err)
	require.Len(t, repos, 1)
	return NewRepo(MustNewConfig(opts...), repos[0])
}

func paths(ps []*QueryParameter) []string {
	s := make([]string, len(ps))
	for i, p := range ps {
		s[i] = p.Path
	}
	return s
}

func positions(ps []*QueryParameter) []int {
	s := make([]int, len(ps))
	for i, p := range ps {
		s[i] = p.Position
	}
	return s
}
