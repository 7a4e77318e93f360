package gen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/sqlrepo/compiler/load"
)

// ObjectConstructor describes how a value is rebuilt from a flat row.
// It is either a *Constructor or an *Extractor.
type ObjectConstructor interface {
	// FieldName returns the field the value is assigned to, or ""
	// for the root of the tree.
	FieldName() string
	objectConstructor()
}

// Constructor builds a composite value. Fields follow the declaration
// order of the class.
type Constructor struct {
	Field  string
	Class  load.QualifiedName
	Fields []ObjectConstructor
}

// Extractor reads a single column. An empty Column denotes the first
// column of the result, used by scalar-returning queries.
type Extractor struct {
	Column    string
	Field     string
	Class     load.QualifiedName
	Scalar    Scalar
	Getter    string
	JSON      bool
	Enum      bool
	Primitive bool
	Nullable  bool
}

// FieldName implements ObjectConstructor.
func (c *Constructor) FieldName() string { return c.Field }

// FieldName implements ObjectConstructor.
func (e *Extractor) FieldName() string { return e.Field }

func (*Constructor) objectConstructor() {}
func (*Extractor) objectConstructor()   {}

// Extractors returns the leaves of the tree in declaration order.
func Extractors(oc ObjectConstructor) []*Extractor {
	switch oc := oc.(type) {
	case *Extractor:
		return []*Extractor{oc}
	case *Constructor:
		var es []*Extractor
		for _, f := range oc.Fields {
			es = append(es, Extractors(f)...)
		}
		return es
	}
	return nil
}

// Plan builds the constructor tree of k over the given columns.
func Plan(c *Config, k *load.Klass, columns []*ColumnMapping) (ObjectConstructor, error) {
	return c.plan(k.Name, k, columns, "", nil)
}

func (c *Config) plan(root load.QualifiedName, k *load.Klass, columns []*ColumnMapping, field string, path []string) (ObjectConstructor, error) {
	var match []*ColumnMapping
	for _, col := range columns {
		if slices.Equal(col.Path, path) {
			match = append(match, col)
		}
	}
	// A composite field stored as one column (e.g. a JSONB override)
	// is read as a leaf.
	if !k.Composite() || (len(match) == 1 && len(path) > 0) {
		switch len(match) {
		case 0:
			return nil, NewSchemaError(root.String(), strings.Join(path, "."), "no column mapped at path", nil)
		case 1:
		default:
			return nil, NewSchemaError(root.String(), strings.Join(path, "."), fmt.Sprintf("%d columns mapped at path", len(match)), nil)
		}
		return c.extractor(match[0].Type, match[0].Column.Name, field, match[0].Column.Type), nil
	}
	ctor := &Constructor{Field: field, Class: k.Name}
	for _, f := range k.Fields {
		nested, err := c.plan(root, f.Type.Klass, columns, f.Name, append(slices.Clip(path), f.Name))
		if err != nil {
			return nil, err
		}
		ctor.Fields = append(ctor.Fields, nested)
	}
	return ctor, nil
}

// extractor plans the read of a single value of type t.
func (c *Config) extractor(t *load.Type, column, field string, st StorageType) *Extractor {
	kind := c.scalarTable().Kind(t)
	e := &Extractor{
		Column:    column,
		Field:     field,
		Class:     t.Name(),
		Scalar:    kind,
		Getter:    kind.Getter(),
		JSON:      st.JSON(),
		Enum:      t.Klass.Enum,
		Primitive: kind.Primitive(),
		Nullable:  t.Nullable,
	}
	if e.Enum {
		e.Getter = "String"
	}
	return e
}
