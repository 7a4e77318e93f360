package gen

import (
	"strconv"
	"strings"

	"github.com/syssam/sqlrepo/compiler/load"
)

// resultShape is the return type of a query method with List and Page
// unwrapped.
type resultShape struct {
	result     *load.Type
	collection bool
	pagination *Pagination
}

// shape resolves the result shape of fn. A Page return and a Pageable
// parameter require each other.
func (b *repoBuilder) shape(fn *load.Function) (*resultShape, error) {
	var pageable []*load.Parameter
	for _, p := range fn.Parameters {
		if p.Type.Is(load.Pageable) {
			pageable = append(pageable, p)
		}
	}
	s := &resultShape{result: fn.Returns}
	switch page := fn.Returns.Is(load.Page); {
	case page && len(pageable) != 1:
		return nil, b.errorf(fn, "", "a Page result requires exactly one Pageable parameter, found %d", len(pageable))
	case !page && len(pageable) > 0:
		return nil, b.errorf(fn, pageable[0].Name, "a Pageable parameter requires a Page result")
	case page:
		s.pagination = &Pagination{Param: pageable[0].Name}
	}
	s.collection = fn.Returns.Is(load.List)
	if s.collection || s.pagination != nil {
		if s.result = fn.Returns.Arg(); s.result == nil {
			return nil, b.errorf(fn, "", "return type %s has no element type", fn.Returns)
		}
	}
	return s, nil
}

// derivedMethod synthesizes a SELECT from the shape of fn.
func (b *repoBuilder) derivedMethod(fn *load.Function) (*QueryMethod, error) {
	t := b.table
	s, err := b.shape(fn)
	if err != nil {
		return nil, err
	}
	var (
		orderParam string
		limitParam *load.Parameter
		params     []*load.Parameter
	)
	for _, p := range fn.Parameters {
		switch {
		case p.Type.Is(load.Pageable):
		case p.Type.Is(load.Order):
			orderParam = p.Name
		case p.Annotations.Has(load.AnnotationLimit):
			if limitParam != nil {
				return nil, b.errorf(fn, p.Name, "only one parameter may be marked as limit")
			}
			if b.scalarTable().Kind(p.Type) != ScalarInt {
				return nil, b.errorf(fn, p.Name, "limit parameter must be Int, got %s", p.Type)
			}
			limitParam = p
		default:
			params = append(params, p)
		}
	}

	var w *whereClause
	if tpl, ok := fn.Annotations.Template(load.AnnotationWhere); ok {
		w, err = b.templateWhere(fn, params, tpl)
	} else {
		w, err = b.matchWhere(fn, params)
	}
	if err != nil {
		return nil, err
	}
	where := ""
	if w.text != "" {
		where = "\n" + w.text
	}

	var (
		kind   = b.scalarTable().Kind(s.result)
		count  = !s.collection && s.pagination == nil && (kind == ScalarInt || kind == ScalarLong)
		exists = !s.collection && s.pagination == nil && kind == ScalarBool
		m      = &QueryMethod{
			Name:         fn.Name,
			MethodParams: methodParams(fn),
			Returns:      fn.Returns,
			Result:       s.result,
			Collection:   s.collection,
			Pagination:   s.pagination,
			OrderParam:   orderParam,
		}
		lines []string
	)
	switch {
	case count:
		lines = append(lines, "SELECT count(*)\nFROM "+t.Name+where)
	case exists:
		lines = append(lines, "SELECT EXISTS (\nSELECT *\nFROM "+t.Name+where+"\n)")
	default:
		if !s.result.Klass.Composite() {
			return nil, b.errorf(fn, "", "cannot select %s: not a class with fields", s.result)
		}
		proj, err := NewTableMapping(b.Config, s.result.Klass)
		if err != nil {
			return nil, err
		}
		cols := make([]string, len(proj.Columns))
		for i, c := range proj.Columns {
			cols[i] = c.Column.Quoted()
		}
		lines = append(lines, "SELECT "+strings.Join(cols, ", ")+"\nFROM "+t.Name+where)
		m.Constructor = proj.Constructor
	}
	if count || exists {
		m.Scalar = true
		m.Constructor = b.extractor(s.result, "", "", kind.Storage())
	}

	if tpl, ok := fn.Annotations.Template(load.AnnotationOrderBy); orderParam != "" {
		lines = append(lines, "%orderBy")
	} else if ok {
		lines = append(lines, "ORDER BY "+tpl)
	}

	positional := numberParams(w.positional)
	n, isLimit := fn.Annotations.Limit()
	switch {
	case count || exists:
	case s.collection && limitParam != nil:
		lines = append(lines, "LIMIT ?")
		positional = append(positional, &QueryParameter{
			Position: len(positional) + 1,
			Path:     limitParam.Name,
			Type:     limitParam.Type,
			Scalar:   ScalarInt,
			Kind:     KindPrimitive,
			Storage:  TypeInteger,
		})
	case s.collection && isLimit:
		lines = append(lines, "LIMIT "+strconv.Itoa(n))
	case s.collection:
	case s.pagination != nil:
		lines = append(lines, "LIMIT ? OFFSET ?")
		positional = append(positional, paginationParams(s.pagination.Param, len(positional))...)
	default:
		lines = append(lines, limitClause(fn))
	}
	m.Query = strings.Join(lines, "\n")
	m.QueryParams = append(positional, w.in...)
	return m, nil
}

// customMethod synthesizes a method from a literal Query or Statement.
func (b *repoBuilder) customMethod(fn *load.Function) (*QueryMethod, error) {
	s, err := b.shape(fn)
	if err != nil {
		return nil, err
	}
	query, ok := fn.Annotations.Template(load.AnnotationQuery)
	statement := !ok
	if statement {
		if query, ok = fn.Annotations.Template(load.AnnotationStatement); !ok {
			return nil, b.errorf(fn, "", "empty Query or Statement")
		}
		if !fn.Returns.Is(load.Unit) {
			return nil, b.errorf(fn, "", "statement must not return a value, got %s", fn.Returns)
		}
	}
	var params []*load.Parameter
	for _, p := range fn.Parameters {
		if !p.Type.Is(load.Pageable) {
			params = append(params, p)
		}
	}
	tpl, err := b.resolveTemplate(fn, params, query)
	if err != nil {
		return nil, err
	}
	positional, in, err := b.templateParams(fn, params, tpl)
	if err != nil {
		return nil, err
	}
	positional = numberParams(positional)

	m := &QueryMethod{
		Name:         fn.Name,
		MethodParams: methodParams(fn),
		Returns:      fn.Returns,
		Result:       s.result,
		Collection:   s.collection,
		Pagination:   s.pagination,
		Statement:    statement,
	}
	kind := b.scalarTable().Kind(s.result)
	switch {
	case s.result.Is(load.Unit):
	case kind.Storable() || s.result.Klass.Enum:
		m.Scalar = true
		st := kind.Storage()
		if s.result.Klass.Enum {
			st = TypeText
		}
		m.Constructor = b.extractor(s.result, "", "", st)
	case s.result.Klass.Composite():
		mapping, err := NewTableMapping(b.Config, s.result.Klass)
		if err != nil {
			return nil, err
		}
		m.Constructor = mapping.Constructor
	default:
		return nil, b.errorf(fn, "", "cannot read result of type %s", s.result)
	}

	text := tpl.text
	n, isLimit := fn.Annotations.Limit()
	switch {
	case fn.Returns.Is(load.Unit):
	case s.collection:
		if isLimit {
			text += "\nLIMIT " + strconv.Itoa(n)
		}
	case s.pagination != nil:
		text += "\nLIMIT ? OFFSET ?"
		positional = append(positional, paginationParams(s.pagination.Param, len(positional))...)
	default:
		text += "\n" + limitClause(fn)
	}
	m.Query = text
	m.QueryParams = append(positional, in...)
	return m, nil
}

// limitClause caps a single-result query. Two rows are fetched so that
// a second match is detected at runtime, unless First asks for the
// first row only.
func limitClause(fn *load.Function) string {
	if fn.Annotations.Has(load.AnnotationFirst) {
		return "LIMIT 1"
	}
	return "LIMIT 2"
}
