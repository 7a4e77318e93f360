package sql

import (
	"bytes"
	"context"
	"fmt"
	"go/token"
	"os"
	"path"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dave/jennifer/jen"
	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/imports"

	"github.com/syssam/sqlrepo/compiler/gen"
)

// DefaultHeader is written at the top of generated files when the
// configuration sets none.
const DefaultHeader = "Code generated by sqlrepo. DO NOT EDIT."

// Generator renders the repositories of a graph as a Go package.
type Generator struct {
	graph *gen.Graph
	cfg   *gen.Config
	pkg   string
}

// File is a rendered source file, named relative to the target.
type File struct {
	Name string
	*jen.File
}

// NewGenerator returns a Generator for g. The package name is the
// last element of Config.Package, or of Config.Target when no package
// is set.
func NewGenerator(g *gen.Graph) (*Generator, error) {
	if g == nil || g.Config == nil {
		return nil, gen.NewConfigError("Config", nil, "missing graph config")
	}
	pkg := path.Base(g.Config.Package)
	if g.Config.Package == "" {
		if g.Config.Target == "" {
			return nil, gen.NewConfigError("Package", nil, "missing package and target")
		}
		pkg = filepath.Base(g.Config.Target)
	}
	pkg = strings.ReplaceAll(strings.ToLower(pkg), "-", "")
	if !token.IsIdentifier(pkg) || token.IsKeyword(pkg) {
		return nil, gen.NewConfigError("Package", pkg, "not a valid package name")
	}
	return &Generator{graph: g, cfg: g.Config, pkg: pkg}, nil
}

// Generate renders g into Config.Target.
//
//	g, err := gen.NewGraph(ctx, cfg, model)
//	if err != nil {
//		return err
//	}
//	return sql.Generate(ctx, g)
func Generate(ctx context.Context, g *gen.Graph) error {
	generator, err := NewGenerator(g)
	if err != nil {
		return err
	}
	return generator.Generate(ctx)
}

// Package returns the name of the generated package.
func (g *Generator) Package() string { return g.pkg }

// Files renders every file of the package: the models, one file per
// repository and one per database.
func (g *Generator) Files() ([]*File, error) {
	ks, err := g.models()
	if err != nil {
		return nil, err
	}
	files := []*File{{Name: "model.go", File: g.genModel(ks)}}
	for _, r := range g.graph.Repos {
		files = append(files, &File{Name: fileName(r.Name.Name), File: g.genRepo(r)})
	}
	for _, db := range g.graph.Databases() {
		files = append(files, &File{Name: fileName(db.Name.Name), File: g.genDatabase(db)})
	}
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		if seen[f.Name] {
			return nil, gen.NewGenerationError("render", f.Name, "two declarations render to the same file", nil)
		}
		seen[f.Name] = true
	}
	return files, nil
}

// Generate renders the package and writes its files concurrently.
func (g *Generator) Generate(ctx context.Context) error {
	if g.cfg.Target == "" {
		return gen.NewConfigError("Target", nil, "missing target directory in config")
	}
	if err := os.MkdirAll(g.cfg.Target, 0o755); err != nil {
		return gen.NewGenerationError("write", g.cfg.Target, "create target directory", err)
	}
	files, err := g.Files()
	if err != nil {
		return err
	}
	workers := g.cfg.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for _, f := range files {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return g.writeFile(ctx, f)
		})
	}
	return eg.Wait()
}

// writeFile renders f, formats it with its imports resolved and
// writes it below the target.
func (g *Generator) writeFile(ctx context.Context, f *File) error {
	var buf bytes.Buffer
	if err := f.Render(&buf); err != nil {
		return gen.NewGenerationError("render", f.Name, "", err)
	}
	fullPath := filepath.Join(g.cfg.Target, f.Name)
	formatted, err := imports.Process(fullPath, buf.Bytes(), nil)
	if err != nil {
		debugPath := fullPath + ".error"
		_ = os.WriteFile(debugPath, buf.Bytes(), 0o644)
		return gen.NewGenerationError("format", f.Name, fmt.Sprintf("unformatted source written to %s", debugPath), err)
	}
	if err := os.WriteFile(fullPath, formatted, 0o644); err != nil {
		return gen.NewGenerationError("write", f.Name, "", err)
	}
	g.cfg.Log().DebugContext(ctx, "file written", "file", fullPath, "bytes", len(formatted))
	return nil
}

// newFile creates a file of the generated package with the header.
func (g *Generator) newFile() *jen.File {
	var f *jen.File
	if g.cfg.Package != "" {
		f = jen.NewFilePathName(g.cfg.Package, g.pkg)
	} else {
		f = jen.NewFile(g.pkg)
	}
	header := g.cfg.Header
	if header == "" {
		header = DefaultHeader
	}
	f.HeaderComment(header)
	return f
}

// fileName returns the snake_case file name of a declaration.
func fileName(name string) string {
	ws := words(name)
	for i, w := range ws {
		ws[i] = strings.ToLower(w)
	}
	return strings.Join(ws, "_") + ".go"
}
