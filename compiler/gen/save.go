package gen

import (
	"strings"

	"github.com/syssam/sqlrepo/compiler/load"
)

// saveMethod synthesizes an INSERT that upserts on the id columns.
// With a version column the upsert only applies when the incoming
// version is one above the stored one.
func (b *repoBuilder) saveMethod(fn *load.Function) (*QueryMethod, error) {
	t := b.table
	if len(fn.Parameters) != 1 {
		return nil, b.errorf(fn, "", "save method must have a single parameter (an entity or a list of entities)")
	}
	p := fn.Parameters[0]
	batch := p.Type.Is(load.List)
	elem := p.Type
	if batch {
		elem = p.Type.Arg()
	}
	if elem.Name() != t.Klass.Name {
		return nil, b.errorf(fn, p.Name, "parameter type %s is neither %s nor a list of it", p.Type, t.Klass.Name)
	}
	if !fn.Returns.Is(load.Unit) {
		return nil, b.errorf(fn, "", "save method must not return a value")
	}

	var (
		names  = make([]string, len(t.Columns))
		values = make([]string, len(t.Columns))
		sets   = make([]string, len(t.Columns))
		params = make([]*QueryParameter, len(t.Columns))
	)
	for i, c := range t.Columns {
		names[i] = c.Column.Quoted()
		values[i] = "?"
		if c.Column.Version {
			values[i] = "? + 1"
		}
		sets[i] = names[i] + " = EXCLUDED." + names[i]
		path := c.Dotted()
		if !batch {
			path = p.Name + "." + path
		}
		params[i] = b.columnParam(path, c.Type, c)
		params[i].Position = i + 1
	}
	lines := []string{
		"INSERT INTO " + t.Name,
		"(" + strings.Join(names, ", ") + ")",
		"VALUES (" + strings.Join(values, ", ") + ")",
	}
	version := t.VersionColumn()
	if ids := t.IDColumns(); len(ids) > 0 && !fn.Annotations.Has(load.AnnotationOnConflictFail) {
		idNames := make([]string, len(ids))
		for i, c := range ids {
			idNames[i] = c.Column.Quoted()
		}
		lines = append(lines,
			"ON CONFLICT ("+strings.Join(idNames, ", ")+") DO",
			"UPDATE SET "+strings.Join(sets, ", "),
		)
		if version != nil {
			v := version.Column.Quoted()
			lines = append(lines, "WHERE "+t.Name+"."+v+" = EXCLUDED."+v+" - 1")
		}
	}
	return &QueryMethod{
		Name:         fn.Name,
		Query:        strings.Join(lines, "\n"),
		MethodParams: methodParams(fn),
		QueryParams:  params,
		Returns:      fn.Returns,
		Result:       fn.Returns,
		Batch:        batch,
		Optimistic:   version != nil,
	}, nil
}

// deleteMethod synthesizes a DELETE. The WHERE clause comes from a
// Where template, from the id and version columns of an entity
// parameter, or from matching parameters to columns by name.
func (b *repoBuilder) deleteMethod(fn *load.Function) (*QueryMethod, error) {
	t := b.table
	if !fn.Returns.Is(load.Unit) {
		return nil, b.errorf(fn, "", "delete method must not return a value")
	}
	var (
		w      *whereClause
		err    error
		entity = len(fn.Parameters) == 1 && fn.Parameters[0].Type.Name() == t.Klass.Name
	)
	tpl, custom := fn.Annotations.Template(load.AnnotationWhere)
	switch {
	case custom:
		w, err = b.templateWhere(fn, fn.Parameters, tpl)
	case entity:
		w = b.entityWhere(fn.Parameters[0])
	default:
		w, err = b.matchWhere(fn, fn.Parameters)
	}
	if err != nil {
		return nil, err
	}
	lines := []string{"DELETE FROM " + t.Name}
	if w.text != "" {
		lines = append(lines, w.text)
	}
	return &QueryMethod{
		Name:         fn.Name,
		Query:        strings.Join(lines, "\n"),
		MethodParams: methodParams(fn),
		QueryParams:  append(numberParams(w.positional), w.in...),
		Returns:      fn.Returns,
		Result:       fn.Returns,
		Optimistic:   entity && !custom && t.VersionColumn() != nil,
	}, nil
}
