package gen

import (
	"fmt"
	"strings"

	"github.com/syssam/sqlrepo/compiler/load"
)

// Repo is the synthesized form of a repository interface.
type Repo struct {
	Name    load.QualifiedName
	Klass   *load.Klass
	Methods []*QueryMethod
	// Table is the mapping of the repository entity. It is nil for
	// standalone repositories, which hold custom queries only.
	Table    *TableMapping
	Database load.QualifiedName
}

// Standalone reports whether the repository has no mapped entity.
func (r *Repo) Standalone() bool { return r.Table == nil }

// Method returns the method with the given name, or nil.
func (r *Repo) Method(name string) *QueryMethod {
	for _, m := range r.Methods {
		if m.Name == name {
			return m
		}
	}
	return nil
}

// Classify returns the category of fn. Custom queries win over
// everything; a save or delete prefix is ignored when an annotation
// of another category is present.
func Classify(fn *load.Function) MethodKind {
	a := fn.Annotations
	_, query := a.Template(load.AnnotationQuery)
	switch {
	case query || a.Has(load.AnnotationStatement):
		return MethodCustom
	case a.Has(load.AnnotationSave),
		strings.HasPrefix(fn.Name, "save") && !a.Has(load.AnnotationQuery) && !a.Has(load.AnnotationDelete):
		return MethodSave
	case a.Has(load.AnnotationDelete),
		strings.HasPrefix(fn.Name, "delete") && !a.Has(load.AnnotationQuery) && !a.Has(load.AnnotationSave):
		return MethodDelete
	default:
		return MethodDerived
	}
}

// repoBuilder synthesizes the methods of one repository.
type repoBuilder struct {
	*Config
	repo  *load.Klass
	table *TableMapping
}

func (b *repoBuilder) errorf(fn *load.Function, ident, format string, args ...any) error {
	return NewMappingError(b.repo.Name.String(), fn.Name, ident, fmt.Sprintf(format, args...))
}

// NewRepo synthesizes every method of the repository k.
func NewRepo(c *Config, k *load.Klass) (*Repo, error) {
	db, err := c.database(k)
	if err != nil {
		return nil, err
	}
	b := &repoBuilder{Config: c, repo: k}
	if k.Entity != nil {
		if !k.Entity.Klass.Composite() {
			return nil, NewSchemaError(k.Name.String(), "", fmt.Sprintf("entity %s has no fields", k.Entity), nil)
		}
		if b.table, err = NewTableMapping(c, k.Entity.Klass); err != nil {
			return nil, err
		}
	}
	r := &Repo{Name: k.Name, Klass: k, Table: b.table, Database: db}
	for _, fn := range k.Functions {
		kind := Classify(fn)
		if kind != MethodCustom && b.table == nil {
			return nil, NewSchemaError(k.Name.String(), fn.Name, "only custom queries are allowed in standalone repositories", nil)
		}
		var m *QueryMethod
		switch kind {
		case MethodCustom:
			m, err = b.customMethod(fn)
		case MethodSave:
			m, err = b.saveMethod(fn)
		case MethodDelete:
			m, err = b.deleteMethod(fn)
		default:
			m, err = b.derivedMethod(fn)
		}
		if err != nil {
			return nil, err
		}
		m.Kind = kind
		r.Methods = append(r.Methods, m)
	}
	return r, nil
}

// database resolves the database a repository belongs to.
func (c *Config) database(k *load.Klass) (load.QualifiedName, error) {
	if name, ok := k.Annotations.Database(); ok {
		if strings.ContainsRune(name, '.') {
			return load.ParseQualifiedName(name), nil
		}
		return load.QualifiedName{Pkg: k.Name.Pkg, Name: name}, nil
	}
	if !c.Database.IsZero() {
		return c.Database, nil
	}
	return load.QualifiedName{}, NewSchemaError(k.Name.String(), "", "no database: annotate the repository or configure a default", nil)
}

// methodParams copies the declared parameters of fn.
func methodParams(fn *load.Function) []*QueryMethodParameter {
	ps := make([]*QueryMethodParameter, len(fn.Parameters))
	for i, p := range fn.Parameters {
		ps[i] = &QueryMethodParameter{Name: p.Name, Type: p.Type}
	}
	return ps
}

// numberParams assigns positions 1..n to positional bindings.
func numberParams(ps []*QueryParameter) []*QueryParameter {
	for i, p := range ps {
		p.Position = i + 1
	}
	return ps
}
