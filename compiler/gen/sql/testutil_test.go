package sql

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrepo/compiler/gen"
	"github.com/syssam/sqlrepo/compiler/load"
)

const shopFile = "../../load/testdata/shop.yaml"

func shopGraph(t *testing.T, opts ...gen.Option) *gen.Graph {
	t.Helper()
	m, err := load.ReadFiles(shopFile)
	require.NoError(t, err)
	opts = append([]gen.Option{gen.WithPackage("example.com/shop/db"), gen.WithTarget(t.TempDir())}, opts...)
	g, err := gen.NewGraph(context.Background(), gen.MustNewConfig(opts...), m)
	require.NoError(t, err)
	return g
}

func shopGenerator(t *testing.T, opts ...gen.Option) *Generator {
	t.Helper()
	g, err := NewGenerator(shopGraph(t, opts...))
	require.NoError(t, err)
	return g
}

// shopFileCode renders the shop package and returns the source of
// the named file.
func shopFileCode(t *testing.T, name string) string {
	t.Helper()
	files, err := shopGenerator(t).Files()
	require.NoError(t, err)
	for _, f := range files {
		if f.Name == name {
			return f.GoString()
		}
	}
	require.Failf(t, "file not rendered", "%s", name)
	return ""
}

// funcBody returns the source of the method recv.name in code.
func funcBody(t *testing.T, code, recv, name string) string {
	t.Helper()
	start := strings.Index(code, "func (r *"+recv+") "+name+"(")
	require.GreaterOrEqual(t, start, 0, "method %s.%s not rendered", recv, name)
	body := code[start:]
	end := strings.Index(body, "\n}\n")
	require.GreaterOrEqual(t, end, 0)
	return body[:end+2]
}
