package gen

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dominikbraun/graph"
	"github.com/go-openapi/inflect"
	"github.com/lib/pq"

	"github.com/syssam/sqlrepo/compiler/load"
)

// ColumnDefinition describes a single relational column.
type ColumnDefinition struct {
	Name     string
	Nullable bool
	Type     StorageType
	ID       bool
	Version  bool
}

// String returns the column as it would appear in a table definition.
func (c ColumnDefinition) String() string {
	var b strings.Builder
	b.WriteString(pq.QuoteIdentifier(c.Name))
	b.WriteByte(' ')
	b.WriteString(c.Type.String())
	if !c.Nullable {
		b.WriteString(" NOT NULL")
	}
	if c.ID {
		b.WriteString(" PRIMARY KEY")
	}
	return b.String()
}

// Quoted returns the quoted column name.
func (c ColumnDefinition) Quoted() string {
	return pq.QuoteIdentifier(c.Name)
}

// ColumnMapping binds a leaf field, addressed by its path from the
// entity root, to a column.
type ColumnMapping struct {
	Path   []string
	Type   *load.Type
	Column ColumnDefinition
}

// Dotted returns the field path joined with dots, e.g. "myNestedClass.proc".
func (m *ColumnMapping) Dotted() string {
	return strings.Join(m.Path, ".")
}

// Field returns the name of the leaf field.
func (m *ColumnMapping) Field() string {
	return m.Path[len(m.Path)-1]
}

// TableMapping is the relational view of an entity class.
type TableMapping struct {
	Name        string
	Klass       *load.Klass
	Columns     []*ColumnMapping
	Constructor ObjectConstructor
}

// IDColumns returns the columns marked as identifiers.
func (t *TableMapping) IDColumns() []*ColumnMapping {
	var ids []*ColumnMapping
	for _, c := range t.Columns {
		if c.Column.ID {
			ids = append(ids, c)
		}
	}
	return ids
}

// VersionColumn returns the optimistic-lock column, or nil.
func (t *TableMapping) VersionColumn() *ColumnMapping {
	for _, c := range t.Columns {
		if c.Column.Version {
			return c
		}
	}
	return nil
}

// byField indexes the columns by leaf field name.
func (t *TableMapping) byField() map[string][]*ColumnMapping {
	m := make(map[string][]*ColumnMapping, len(t.Columns))
	for _, c := range t.Columns {
		m[c.Field()] = append(m[c.Field()], c)
	}
	return m
}

// NewTableMapping validates and flattens k. Mappings are memoized in
// the configured MappingCache, if any.
func NewTableMapping(c *Config, k *load.Klass) (*TableMapping, error) {
	if t, ok := c.cachedMapping(k.Name); ok {
		return t, nil
	}
	if err := c.validate(k); err != nil {
		return nil, err
	}
	columns, err := c.flatten(k)
	if err != nil {
		return nil, err
	}
	ctor, err := c.plan(k.Name, k, columns, "", nil)
	if err != nil {
		return nil, err
	}
	t := &TableMapping{
		Name:        tableName(k),
		Klass:       k,
		Columns:     columns,
		Constructor: ctor,
	}
	c.cacheMapping(t)
	return t, nil
}

func tableName(k *load.Klass) string {
	if name, ok := k.Annotations.Table(); ok {
		return name
	}
	return snake(k.Name.Name)
}

// snake converts a field or class name to its column or table form.
func snake(s string) string {
	return inflect.Underscore(s)
}

// Flatten expands k into one column per leaf field. Composite fields
// emit no column of their own.
func Flatten(c *Config, k *load.Klass) ([]*ColumnMapping, error) {
	if err := c.validate(k); err != nil {
		return nil, err
	}
	return c.flatten(k)
}

func (c *Config) flatten(k *load.Klass) ([]*ColumnMapping, error) {
	var (
		columns []*ColumnMapping
		owner   = make(map[string]*ColumnMapping)
		walk    func(*load.Klass, []string) error
	)
	walk = func(cur *load.Klass, path []string) error {
		for _, f := range cur.Fields {
			p := append(slices.Clip(path), f.Name)
			st, err := c.storageOf(f)
			if err != nil {
				return NewValidationError(k.Name.String(), strings.Join(p, "."), err.Error())
			}
			switch {
			case st.Valid():
				col, _ := f.Annotations.Column()
				name := col.Name
				if name == "" {
					name = snake(f.Name)
				}
				m := &ColumnMapping{
					Path: p,
					Type: f.Type,
					Column: ColumnDefinition{
						Name:     name,
						Nullable: f.Type.Nullable,
						Type:     st,
						ID:       f.Annotations.Has(load.AnnotationID),
						Version:  f.Annotations.Has(load.AnnotationVersion),
					},
				}
				if prev, ok := owner[name]; ok {
					return NewValidationError(k.Name.String(), m.Dotted(),
						fmt.Sprintf("column %q is already mapped by %s", name, prev.Dotted()))
				}
				owner[name] = m
				columns = append(columns, m)
			case f.Type.Klass.Composite():
				if err := walk(f.Type.Klass, p); err != nil {
					return err
				}
			default:
				return NewValidationError(k.Name.String(), strings.Join(p, "."),
					"cannot determine storage type; supply an explicit Column type")
			}
		}
		return nil
	}
	if err := walk(k, nil); err != nil {
		return nil, err
	}
	return columns, nil
}

// storageOf resolves the storage type of a field: explicit override,
// then the scalar table, then TEXT for enums. TypeInvalid means the
// field must be composite.
func (c *Config) storageOf(f *load.Field) (StorageType, error) {
	if col, ok := f.Annotations.Column(); ok && col.Type != "" {
		return ParseStorageType(col.Type)
	}
	if st := c.scalarTable().Kind(f.Type).Storage(); st.Valid() {
		return st, nil
	}
	if f.Type.Klass.Enum {
		return TypeText, nil
	}
	return TypeInvalid, nil
}

// Validate checks every leaf field of the given entities and collects
// all problems into a single joined error.
func Validate(c *Config, entities ...*load.Klass) error {
	var errs []error
	for _, k := range entities {
		if err := c.validate(k); err != nil {
			errs = append(errs, err)
			continue
		}
		if _, err := c.flatten(k); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (c *Config) validate(root *load.Klass) error {
	var (
		errs []error
		g    = graph.New(graph.StringHash, graph.Directed(), graph.PreventCycles())
		walk func(*load.Klass, []string)
	)
	report := func(path []string, format string, args ...any) {
		errs = append(errs, NewValidationError(root.Name.String(), strings.Join(path, "."), fmt.Sprintf(format, args...)))
	}
	_ = g.AddVertex(root.Name.String())
	walk = func(k *load.Klass, path []string) {
		for _, f := range k.Fields {
			p := append(slices.Clip(path), f.Name)
			st, err := c.storageOf(f)
			switch {
			case err != nil:
				report(p, "%v", err)
			case st.Valid():
				if f.Annotations.Has(load.AnnotationVersion) {
					if kind := c.scalarTable().Kind(f.Type); kind != ScalarInt && kind != ScalarLong {
						report(p, "version field must be Int or Long, got %s", f.Type)
					}
				}
			case f.Type.Klass.Composite():
				child := f.Type.Name().String()
				_ = g.AddVertex(child)
				if err := g.AddEdge(k.Name.String(), child); errors.Is(err, graph.ErrEdgeCreatesCycle) {
					report(p, "recursive field type %s", f.Type)
					continue
				}
				walk(f.Type.Klass, p)
			default:
				report(p, "unsupported field type %s", f.Type)
			}
		}
	}
	walk(root, nil)
	return errors.Join(errs...)
}
