package sql

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/sqlrepo/compiler/gen"
	"github.com/syssam/sqlrepo/compiler/load"
)

func TestNewGenerator(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *gen.Config
		pkg     string
		wantErr string
	}{
		{"package path", gen.MustNewConfig(gen.WithPackage("example.com/shop/db")), "db", ""},
		{"target only", gen.MustNewConfig(gen.WithTarget("/tmp/out/my-repos")), "myrepos", ""},
		{"missing output", gen.MustNewConfig(), "", "missing package and target"},
		{"keyword", gen.MustNewConfig(gen.WithPackage("example.com/type")), "", "not a valid package name"},
		{"invalid identifier", gen.MustNewConfig(gen.WithPackage("example.com/1db")), "", "not a valid package name"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := NewGenerator(&gen.Graph{Config: tt.cfg})
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.True(t, gen.IsConfigError(err))
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.pkg, g.Package())
		})
	}

	_, err := NewGenerator(nil)
	assert.True(t, gen.IsConfigError(err))
}

func TestFiles(t *testing.T) {
	files, err := shopGenerator(t).Files()
	require.NoError(t, err)
	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	assert.ElementsMatch(t, []string{
		"model.go",
		"my_class_repository.go",
		"optimistic_lock_repository.go",
		"report_repository.go",
		"shop_db.go",
		"report_db.go",
	}, names)
	assert.Equal(t, "model.go", names[0])
}

func TestGenerate(t *testing.T) {
	require := require.New(t)
	target := t.TempDir()
	g := shopGraph(t, gen.WithTarget(target), gen.WithWorkers(2), gen.WithHeader("Code generated by shop tests. DO NOT EDIT."))
	require.NoError(Generate(context.Background(), g))

	entries, err := os.ReadDir(target)
	require.NoError(err)
	var written []string
	for _, e := range entries {
		written = append(written, e.Name())
	}
	assert.ElementsMatch(t, []string{
		"model.go",
		"my_class_repository.go",
		"optimistic_lock_repository.go",
		"report_repository.go",
		"shop_db.go",
		"report_db.go",
	}, written)

	data, err := os.ReadFile(filepath.Join(target, "my_class_repository.go"))
	require.NoError(err)
	code := string(data)
	assert.Contains(t, code, "// Code generated by shop tests. DO NOT EDIT.")
	assert.Contains(t, code, "package db")
	assert.Contains(t, code, `"github.com/syssam/sqlrepo/dialect"`)
	assert.Contains(t, code, "func NewMyClassRepository(drv dialect.ExecQuerier) MyClassRepository")
}

func TestGenerateCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Generate(ctx, shopGraph(t))
	require.ErrorIs(t, err, context.Canceled)
}

func TestGenerateMissingTarget(t *testing.T) {
	m, err := load.ReadFiles(shopFile)
	require.NoError(t, err)
	g, err := gen.NewGraph(context.Background(), gen.MustNewConfig(gen.WithPackage("example.com/shop/db")), m)
	require.NoError(t, err)
	err = Generate(context.Background(), g)
	require.Error(t, err)
	assert.True(t, gen.IsConfigError(err))
}
