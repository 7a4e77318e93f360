package gen

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/syssam/sqlrepo/compiler/load"
)

// Graph holds the synthesized repositories of a model.
type Graph struct {
	*Config
	// Repos are the selected repositories, in declaration order.
	Repos []*Repo
}

// Database groups the repositories that share a database.
type Database struct {
	Name  load.QualifiedName
	Repos []*Repo
}

// NewGraph validates the entities of the selected repositories and
// then builds every repository concurrently. All validation and build
// failures are reported together.
func NewGraph(ctx context.Context, c *Config, m *load.Model) (*Graph, error) {
	if c == nil {
		return nil, NewConfigError("Config", nil, "config cannot be nil")
	}
	if err := m.Check(); err != nil {
		return nil, NewSchemaError("", "", "incomplete model", err)
	}
	var (
		selected []*load.Klass
		entities []*load.Klass
		seen     = make(map[load.QualifiedName]bool)
	)
	for _, r := range m.Repositories {
		if !c.Included(r.Name) {
			continue
		}
		selected = append(selected, r)
		if r.Entity != nil && !seen[r.Entity.Name()] {
			seen[r.Entity.Name()] = true
			entities = append(entities, r.Entity.Klass)
		}
	}
	if err := Validate(c, entities...); err != nil {
		return nil, err
	}

	var (
		repos    = make([]*Repo, len(selected))
		errs     = make([]error, len(selected))
		eg, gctx = errgroup.WithContext(ctx)
	)
	eg.SetLimit(c.workers())
	for i, k := range selected {
		eg.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := NewRepo(c, k)
			if err != nil {
				errs[i] = err
				return nil
			}
			c.logger().Debug("repository built", "repo", k.Name.String(), "methods", len(r.Methods), "database", r.Database.String())
			repos[i] = r
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return &Graph{Config: c, Repos: repos}, nil
}

// Repo returns the repository with the given name, or nil.
func (g *Graph) Repo(n load.QualifiedName) *Repo {
	for _, r := range g.Repos {
		if r.Name == n {
			return r
		}
	}
	return nil
}

// Databases groups the repositories by database, ordered by name.
// Repositories keep their declaration order within a group.
func (g *Graph) Databases() []*Database {
	var (
		dbs   []*Database
		index = make(map[load.QualifiedName]*Database)
	)
	for _, r := range g.Repos {
		db, ok := index[r.Database]
		if !ok {
			db = &Database{Name: r.Database}
			index[r.Database] = db
			dbs = append(dbs, db)
		}
		db.Repos = append(db.Repos, r)
	}
	slices.SortFunc(dbs, func(a, b *Database) int {
		return cmp.Compare(a.Name.String(), b.Name.String())
	})
	return dbs
}

// Tables returns the distinct table mappings of the repositories in db.
func (db *Database) Tables() []*TableMapping {
	var (
		ts   []*TableMapping
		seen = make(map[string]bool)
	)
	for _, r := range db.Repos {
		if r.Table != nil && !seen[r.Table.Name] {
			seen[r.Table.Name] = true
			ts = append(ts, r.Table)
		}
	}
	return ts
}
