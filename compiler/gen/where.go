package gen

import (
	"fmt"
	"slices"
	"strings"

	"github.com/syssam/sqlrepo/compiler/load"
)

// intType is the type of the limit and offset bindings.
var intType = &load.Type{Klass: &load.Klass{Name: load.Int}}

// whereClause is a synthesized WHERE clause and its bindings.
type whereClause struct {
	text       string // empty when there is no condition
	positional []*QueryParameter
	in         []*QueryParameter
}

// matchWhere derives conditions by matching each parameter to the
// entity column whose leaf field has the same name.
func (b *repoBuilder) matchWhere(fn *load.Function, params []*load.Parameter) (*whereClause, error) {
	var (
		w     = &whereClause{}
		conds []string
		cols  = b.table.byField()
	)
	for _, p := range params {
		match := cols[p.Name]
		switch len(match) {
		case 0:
			return nil, b.errorf(fn, p.Name, "no column for parameter in %s", b.table.Klass.Name)
		case 1:
		default:
			paths := make([]string, len(match))
			for i, m := range match {
				paths[i] = m.Dotted()
			}
			return nil, b.errorf(fn, p.Name, "parameter matches several columns: %s", strings.Join(paths, ", "))
		}
		c := match[0]
		switch {
		case p.Type.Name() == c.Type.Name():
			op := "="
			if c.Type.Nullable && p.Type.Nullable {
				op = "IS"
			}
			conds = append(conds, fmt.Sprintf("%s %s ?", c.Column.Quoted(), op))
			w.positional = append(w.positional, b.columnParam(p.Name, p.Type, c))
		case p.Type.Is(load.List) && p.Type.Arg().Name() == c.Type.Name():
			conds = append(conds, fmt.Sprintf("%s IN (%%%s)", c.Column.Quoted(), p.Name))
			qp := b.columnParam(p.Name, p.Type, c)
			qp.Position, qp.In = -1, true
			w.in = append(w.in, qp)
		default:
			return nil, b.errorf(fn, p.Name, "type mismatch: parameter is %s, column %s is %s", p.Type, c.Column.Name, c.Type)
		}
	}
	if len(conds) > 0 {
		w.text = "WHERE " + strings.Join(conds, " AND ")
	}
	return w, nil
}

// entityWhere matches an entity parameter on its id and version
// columns, or on all columns when the entity has no id.
func (b *repoBuilder) entityWhere(p *load.Parameter) *whereClause {
	columns := b.table.IDColumns()
	if len(columns) > 0 {
		if v := b.table.VersionColumn(); v != nil {
			columns = append(columns, v)
		}
	} else {
		columns = b.table.Columns
	}
	w := &whereClause{}
	conds := make([]string, len(columns))
	for i, c := range columns {
		op := "="
		if c.Column.Nullable {
			op = "IS"
		}
		conds[i] = fmt.Sprintf("%s %s ?", c.Column.Quoted(), op)
		w.positional = append(w.positional, b.columnParam(p.Name+"."+c.Dotted(), c.Type, c))
	}
	if len(conds) > 0 {
		w.text = "WHERE " + strings.Join(conds, " AND ")
	}
	return w
}

// templateWhere uses a literal WHERE template with named placeholders.
func (b *repoBuilder) templateWhere(fn *load.Function, params []*load.Parameter, where string) (*whereClause, error) {
	tpl, err := b.resolveTemplate(fn, params, where)
	if err != nil {
		return nil, err
	}
	w := &whereClause{text: "WHERE " + tpl.text}
	if w.positional, w.in, err = b.templateParams(fn, params, tpl); err != nil {
		return nil, err
	}
	return w, nil
}

// resolveTemplate parses s and checks that placeholders and parameters
// match one to one.
func (b *repoBuilder) resolveTemplate(fn *load.Function, params []*load.Parameter, s string) (*sqlTemplate, error) {
	tpl := parseTemplate(s)
	names := tpl.names()
	for _, n := range names {
		if !slices.ContainsFunc(params, func(p *load.Parameter) bool { return p.Name == n }) {
			return nil, b.errorf(fn, n, "parameter %q not found", n)
		}
	}
	for _, p := range params {
		if !slices.Contains(names, p.Name) {
			return nil, b.errorf(fn, p.Name, "unused parameter %q", p.Name)
		}
	}
	return tpl, nil
}

// templateParams binds the placeholders of a resolved template.
func (b *repoBuilder) templateParams(fn *load.Function, params []*load.Parameter, tpl *sqlTemplate) (positional, in []*QueryParameter, err error) {
	byName := make(map[string]*load.Parameter, len(params))
	for _, p := range params {
		byName[p.Name] = p
	}
	for _, n := range tpl.positional {
		qp, err := b.valueParam(fn, byName[n], false)
		if err != nil {
			return nil, nil, err
		}
		positional = append(positional, qp)
	}
	for _, n := range tpl.in {
		qp, err := b.valueParam(fn, byName[n], true)
		if err != nil {
			return nil, nil, err
		}
		in = append(in, qp)
	}
	return positional, in, nil
}

// columnParam binds a value stored in column c.
func (b *repoBuilder) columnParam(path string, t *load.Type, c *ColumnMapping) *QueryParameter {
	kind := b.scalarTable().Kind(c.Type)
	return &QueryParameter{
		Path:    path,
		Type:    t,
		Scalar:  kind,
		Kind:    valueKind(kind, c.Type.Klass.Enum, c.Column.Type),
		Storage: c.Column.Type,
	}
}

// valueParam binds a method parameter that is not matched to a column.
// IN lists are classified by their element type.
func (b *repoBuilder) valueParam(fn *load.Function, p *load.Parameter, in bool) (*QueryParameter, error) {
	t := p.Type
	if in {
		if !t.Is(load.List) || t.Arg() == nil {
			return nil, b.errorf(fn, p.Name, "IN parameter must be a List, got %s", t)
		}
		t = t.Arg()
	}
	kind := b.scalarTable().Kind(t)
	st := kind.Storage()
	if t.Klass.Enum {
		st = TypeText
	}
	if !st.Valid() {
		return nil, b.errorf(fn, p.Name, "cannot bind parameter of type %s", t)
	}
	qp := &QueryParameter{
		Path:    p.Name,
		Type:    p.Type,
		Scalar:  kind,
		Kind:    valueKind(kind, t.Klass.Enum, st),
		Storage: st,
		In:      in,
	}
	if in {
		qp.Position = -1
	}
	return qp, nil
}

func valueKind(kind Scalar, enum bool, st StorageType) ValueKind {
	switch {
	case enum:
		return KindEnum
	case st.JSON():
		return KindJSON
	case kind.Primitive():
		return KindPrimitive
	}
	return KindScalar
}

// paginationParams binds the page size and offset after n positional
// parameters.
func paginationParams(name string, n int) []*QueryParameter {
	return []*QueryParameter{
		{Position: n + 1, Path: name + ".pageSize", Type: intType, Scalar: ScalarInt, Kind: KindPrimitive, Storage: TypeInteger},
		{Position: n + 2, Path: name + ".offset", Type: intType, Scalar: ScalarInt, Kind: KindPrimitive, Storage: TypeInteger},
	}
}
