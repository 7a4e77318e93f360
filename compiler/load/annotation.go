package load

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Annotation names recognized by the synthesizer.
const (
	AnnotationID             = "Id"
	AnnotationVersion        = "Version"
	AnnotationColumn         = "Column"
	AnnotationTable          = "Table"
	AnnotationWhere          = "Where"
	AnnotationQuery          = "Query"
	AnnotationStatement      = "Statement"
	AnnotationOrderBy        = "OrderBy"
	AnnotationLimit          = "Limit"
	AnnotationFirst          = "First"
	AnnotationOnConflictFail = "OnConflictFail"
	AnnotationSave           = "Save"
	AnnotationDelete         = "Delete"
	AnnotationRepository     = "Repository"
)

// Annotations holds the annotations of a declaration keyed by name.
// Values are decoded lazily into the typed annotations below.
type Annotations map[string]any

type (
	// Column overrides the column name and/or storage type of a field.
	Column struct {
		Name string `yaml:"name,omitempty"`
		Type string `yaml:"type,omitempty"`
	}

	// Table overrides the table name of an entity.
	Table struct {
		Name string `yaml:"name,omitempty"`
	}

	// Template carries the literal SQL of Where, Query, Statement
	// and OrderBy annotations.
	Template struct {
		Value string `yaml:"value,omitempty"`
	}

	// Limit is a literal row cap on a function. On a parameter it has
	// no value and marks the parameter as the runtime limit.
	Limit struct {
		Value int `yaml:"value,omitempty"`
	}

	// Repository assigns a repository to a database.
	Repository struct {
		Database string `yaml:"database,omitempty"`
	}
)

// Has reports whether the annotation is present.
func (a Annotations) Has(name string) bool {
	_, ok := a[name]
	return ok
}

// Decode decodes the named annotation into v. Scalar values are
// treated as the "value" attribute, so `Query: "select 1"` and
// `Query: {value: "select 1"}` decode the same way.
func (a Annotations) Decode(name string, v any) error {
	raw, ok := a[name]
	if !ok {
		return fmt.Errorf("load: annotation %q not found", name)
	}
	switch raw.(type) {
	case nil, Annotations, map[string]any, map[any]any:
	default:
		raw = map[string]any{"value": raw}
	}
	var n yaml.Node
	if err := n.Encode(raw); err != nil {
		return fmt.Errorf("load: encode annotation %q: %w", name, err)
	}
	if err := n.Decode(v); err != nil {
		return fmt.Errorf("load: decode annotation %q: %w", name, err)
	}
	return nil
}

// Column returns the Column annotation, if present.
func (a Annotations) Column() (Column, bool) {
	var c Column
	if !a.Has(AnnotationColumn) || a.Decode(AnnotationColumn, &c) != nil {
		return c, false
	}
	return c, true
}

// Table returns the table name override, if present.
func (a Annotations) Table() (string, bool) {
	var t Table
	if !a.Has(AnnotationTable) || a.Decode(AnnotationTable, &t) != nil || t.Name == "" {
		return "", false
	}
	return t.Name, true
}

// Template returns the non-empty literal of a template annotation.
func (a Annotations) Template(name string) (string, bool) {
	var t Template
	if !a.Has(name) || a.Decode(name, &t) != nil || t.Value == "" {
		return "", false
	}
	return t.Value, true
}

// Limit returns the Limit annotation. The value is zero when the
// annotation marks a parameter.
func (a Annotations) Limit() (int, bool) {
	var l Limit
	if !a.Has(AnnotationLimit) || a.Decode(AnnotationLimit, &l) != nil {
		return 0, false
	}
	return l.Value, true
}

// Database returns the database a repository belongs to, if set.
func (a Annotations) Database() (string, bool) {
	var r Repository
	if !a.Has(AnnotationRepository) || a.Decode(AnnotationRepository, &r) != nil || r.Database == "" {
		return "", false
	}
	return r.Database, true
}
