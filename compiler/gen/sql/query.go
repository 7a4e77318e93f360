package sql

import (
	"fmt"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/sqlrepo/compiler/gen"
	"github.com/syssam/sqlrepo/compiler/load"
)

// genRepo renders the interface of r, its implementation on a
// dialect.ExecQuerier and its constructor.
func (g *Generator) genRepo(r *gen.Repo) *jen.File {
	var (
		f     = g.newFile()
		name  = pascal(r.Name.Name)
		impl  = unexport(name)
		entry = "New" + name
	)
	if r.Standalone() {
		f.Commentf("%s is a standalone repository of %s.", name, r.Database.Name)
	} else {
		f.Commentf("%s is the repository of %s, stored in table %s.", name, typeName(r.Table.Klass.Name), r.Table.Name)
	}
	f.Type().Id(name).InterfaceFunc(func(group *jen.Group) {
		for i, m := range r.Methods {
			if i > 0 {
				group.Line()
			}
			for _, line := range methodDoc(m) {
				group.Comment(line)
			}
			group.Id(pascal(m.Name)).Params(g.params(m)...).Add(g.results(m))
		}
	})

	f.Commentf("%s implements %s.", impl, name)
	f.Type().Id(impl).Struct(
		jen.Id("drv").Qual(dialectPkg, "ExecQuerier"),
	)
	f.Commentf("%s returns a %s running its statements on drv, either a", entry, name)
	f.Comment("dialect.Driver or a dialect.Tx.")
	f.Func().Id(entry).Params(jen.Id("drv").Qual(dialectPkg, "ExecQuerier")).Id(name).Block(
		jen.Return(jen.Op("&").Id(impl).Values(jen.Dict{jen.Id("drv"): jen.Id("drv")})),
	)
	f.Var().Id("_").Id(name).Op("=").Parens(jen.Op("*").Id(impl)).Parens(jen.Nil())

	for _, m := range r.Methods {
		var body []jen.Code
		switch {
		case m.Batch:
			body = g.batchBody(r, m)
		case m.Void():
			body = g.execBody(r, m)
		default:
			body = g.queryBody(r, m)
		}
		f.Func().Params(jen.Id("r").Op("*").Id(impl)).Id(pascal(m.Name)).Params(g.params(m)...).Add(g.results(m)).Block(body...)
	}
	return f
}

// methodDoc documents a method with its SQL text.
func methodDoc(m *gen.QueryMethod) []string {
	doc := []string{fmt.Sprintf("%s runs the %s method %s:", pascal(m.Name), m.Kind, m.Name), ""}
	for _, line := range strings.Split(m.Query, "\n") {
		doc = append(doc, "\t"+line)
	}
	return doc
}

func (g *Generator) params(m *gen.QueryMethod) []jen.Code {
	ps := []jen.Code{jen.Id("ctx").Qual("context", "Context")}
	for _, p := range m.MethodParams {
		ps = append(ps, jen.Id(paramIdent(p.Name)).Add(g.goType(p.Type, false)))
	}
	return ps
}

func (g *Generator) results(m *gen.QueryMethod) jen.Code {
	if m.Void() {
		return jen.Error()
	}
	return jen.Params(g.goType(m.Returns, false), jen.Error())
}

// returner renders the return statements of a method body.
type returner struct {
	zero  jen.Code
	label string
}

func (g *Generator) returner(r *gen.Repo, m *gen.QueryMethod) *returner {
	ret := &returner{label: label(r, m)}
	if !m.Void() {
		ret.zero = g.zero(m.Returns)
	}
	return ret
}

// err returns zero values and e.
func (ret *returner) err(e jen.Code) jen.Code {
	if ret.zero == nil {
		return jen.Return(e)
	}
	return jen.Return(ret.zero, e)
}

// wrap returns the driver error in err, classified.
func (ret *returner) wrap() jen.Code {
	return ret.err(jen.Qual(sqlPkg, "WrapError").Call(jen.Lit(ret.label), jen.Id("query"), jen.Err()))
}

// check renders "if err != nil { return ..., wrapped }".
func (ret *returner) check() jen.Code {
	return jen.If(jen.Err().Op("!=").Nil()).Block(ret.wrap())
}

// queryDecl declares the query text. IN lists and the order are
// substituted at run time; any other text is a constant.
func (g *Generator) queryDecl(m *gen.QueryMethod, ret *returner) []jen.Code {
	in := m.InLists()
	if len(in) == 0 && m.OrderParam == "" {
		return []jen.Code{jen.Const().Id("query").Op("=").Lit(m.Query)}
	}
	var (
		stmts  []jen.Code
		tokens = jen.Dict{}
	)
	for i, p := range in {
		v := fmt.Sprintf("in%d", i)
		stmts = append(stmts,
			jen.List(jen.Id(v), jen.Err()).Op(":=").Qual(runtimePkg, "InList").Call(g.access(m, p.Path)),
			jen.If(jen.Err().Op("!=").Nil()).Block(ret.err(
				jen.Qual("fmt", "Errorf").Call(jen.Lit(ret.label+": %w"), jen.Err()),
			)),
		)
		tokens[jen.Lit(p.Path)] = jen.Id(v)
	}
	if m.OrderParam != "" {
		tokens[jen.Lit("orderBy")] = jen.Id(paramIdent(m.OrderParam)).Dot("SQL").Call()
	}
	return append(stmts, jen.Id("query").Op(":=").Qual(runtimePkg, "Expand").Call(
		jen.Lit(m.Query),
		jen.Map(jen.String()).String().Values(tokens),
	))
}

// args renders the positional arguments of m, with paths rooted at
// the method parameters, or at it for batch methods.
func (g *Generator) args(m *gen.QueryMethod) jen.Code {
	return jen.Index().Id("any").ValuesFunc(func(group *jen.Group) {
		for _, p := range m.Positional() {
			v := g.access(m, p.Path)
			if p.Kind == gen.KindJSON {
				fields := jen.Dict{jen.Id("V"): v}
				if p.Type != nil && p.Type.Nullable {
					fields[jen.Id("Nullable")] = jen.True()
				}
				group.Qual(sqlPkg, "JSON").Values(fields)
				continue
			}
			group.Add(v)
		}
	})
}

// access renders the value at a dotted path.
func (g *Generator) access(m *gen.QueryMethod, path string) *jen.Statement {
	var (
		segs = strings.Split(path, ".")
		v    *jen.Statement
		t    *load.Type
	)
	if m.Batch {
		v = jen.Id("it")
		if len(m.MethodParams) > 0 {
			t = arg(m.MethodParams[0].Type, 0)
		}
	} else {
		v = jen.Id(paramIdent(segs[0]))
		if p := m.Param(segs[0]); p != nil {
			t = p.Type
		}
		segs = segs[1:]
	}
	for _, s := range segs {
		if t != nil && t.Is(load.Pageable) {
			switch s {
			case "offset":
				v = v.Dot("Offset").Call()
			case "pageSize":
				v = v.Dot("PageSize")
			case "pageNumber":
				v = v.Dot("PageNumber")
			}
			t = nil
			continue
		}
		v = v.Dot(pascal(s))
		if t != nil {
			if f := t.Klass.Field(s); f != nil {
				t = f.Type
			} else {
				t = nil
			}
		}
	}
	return v
}

// execBody renders a method that returns nothing. Optimistic methods
// require exactly one affected row.
func (g *Generator) execBody(r *gen.Repo, m *gen.QueryMethod) []jen.Code {
	ret := g.returner(r, m)
	body := g.queryDecl(m, ret)
	if !m.Optimistic {
		return append(body,
			jen.If(
				jen.Err().Op(":=").Id("r").Dot("drv").Dot("Exec").Call(jen.Id("ctx"), jen.Id("query"), g.args(m), jen.Nil()),
				jen.Err().Op("!=").Nil(),
			).Block(ret.wrap()),
			jen.Return(jen.Nil()),
		)
	}
	return append(body,
		jen.Var().Id("res").Qual(sqlPkg, "Result"),
		jen.If(
			jen.Err().Op(":=").Id("r").Dot("drv").Dot("Exec").Call(jen.Id("ctx"), jen.Id("query"), g.args(m), jen.Op("&").Id("res")),
			jen.Err().Op("!=").Nil(),
		).Block(ret.wrap()),
		jen.List(jen.Id("n"), jen.Err()).Op(":=").Id("res").Dot("RowsAffected").Call(),
		ret.check(),
		jen.Return(jen.Qual(runtimePkg, "CheckAffected").Call(jen.Lit(ret.label), jen.Lit(1), jen.Id("n"))),
	)
}

// batchBody renders a method running its statement once per element
// of its list parameter. Optimistic methods require one affected row
// per element.
func (g *Generator) batchBody(r *gen.Repo, m *gen.QueryMethod) []jen.Code {
	ret := g.returner(r, m)
	items := jen.Id(paramIdent(m.MethodParams[0].Name))
	body := g.queryDecl(m, ret)
	if !m.Optimistic {
		return append(body,
			jen.For(jen.List(jen.Id("_"), jen.Id("it")).Op(":=").Range().Add(items)).Block(
				jen.If(
					jen.Err().Op(":=").Id("r").Dot("drv").Dot("Exec").Call(jen.Id("ctx"), jen.Id("query"), g.args(m), jen.Nil()),
					jen.Err().Op("!=").Nil(),
				).Block(ret.wrap()),
			),
			jen.Return(jen.Nil()),
		)
	}
	return append(body,
		jen.Var().Id("total").Int64(),
		jen.For(jen.List(jen.Id("_"), jen.Id("it")).Op(":=").Range().Add(items.Clone())).Block(
			jen.Var().Id("res").Qual(sqlPkg, "Result"),
			jen.If(
				jen.Err().Op(":=").Id("r").Dot("drv").Dot("Exec").Call(jen.Id("ctx"), jen.Id("query"), g.args(m), jen.Op("&").Id("res")),
				jen.Err().Op("!=").Nil(),
			).Block(ret.wrap()),
			jen.List(jen.Id("n"), jen.Err()).Op(":=").Id("res").Dot("RowsAffected").Call(),
			ret.check(),
			jen.Id("total").Op("+=").Id("n"),
		),
		jen.Return(jen.Qual(runtimePkg, "CheckAffected").Call(
			jen.Lit(ret.label),
			jen.Int64().Call(jen.Len(items.Clone())),
			jen.Id("total"),
		)),
	)
}

// queryBody renders a method reading rows. Single results read at
// most two rows: none is ErrNotFound unless the result is nullable,
// and a second one is ErrNotSingular.
func (g *Generator) queryBody(r *gen.Repo, m *gen.QueryMethod) []jen.Code {
	ret := g.returner(r, m)
	body := append(g.queryDecl(m, ret),
		jen.Id("rows").Op(":=").Op("&").Qual(sqlPkg, "Rows").Values(),
		jen.If(
			jen.Err().Op(":=").Id("r").Dot("drv").Dot("Query").Call(jen.Id("ctx"), jen.Id("query"), g.args(m), jen.Id("rows")),
			jen.Err().Op("!=").Nil(),
		).Block(ret.wrap()),
		jen.Defer().Id("rows").Dot("Close").Call(),
	)
	rowsErr := jen.If(jen.Err().Op(":=").Id("rows").Dot("Err").Call(), jen.Err().Op("!=").Nil()).Block(ret.wrap())
	if m.Collection || m.Pagination != nil {
		var result jen.Code = jen.Id("vs")
		if m.Pagination != nil {
			result = jen.Qual(runtimePkg, "NewPage").Call(jen.Id(paramIdent(m.Pagination.Param)), jen.Id("vs"))
		}
		return append(body,
			jen.Id("vs").Op(":=").Index().Add(g.goType(m.Result, false)).Values(),
			jen.For(jen.Id("rows").Dot("Next").Call()).BlockFunc(func(group *jen.Group) {
				for _, s := range g.scan(m, ret) {
					group.Add(s)
				}
				group.Id("vs").Op("=").Append(jen.Id("vs"), jen.Id("v"))
			}),
			rowsErr,
			jen.Return(result, jen.Nil()),
		)
	}
	var missing jen.Code = jen.Return(ret.zero, jen.Nil())
	if !m.Nullable() {
		missing = ret.err(jen.Qual(runtimePkg, "NewNotFoundError").Call(jen.Lit(ret.label)))
	}
	body = append(body,
		jen.If(jen.Op("!").Id("rows").Dot("Next").Call()).Block(
			jen.If(jen.Err().Op(":=").Id("rows").Dot("Err").Call(), jen.Err().Op("!=").Nil()).Block(ret.wrap()),
			missing,
		),
	)
	body = append(body, g.scan(m, ret)...)
	return append(body,
		jen.If(jen.Id("rows").Dot("Next").Call()).Block(
			ret.err(jen.Qual(runtimePkg, "NewNotSingularError").Call(jen.Lit(ret.label))),
		),
		rowsErr,
		jen.Return(jen.Id("v"), jen.Nil()),
	)
}

// scan renders the read of the current row into v.
func (g *Generator) scan(m *gen.QueryMethod, ret *returner) []jen.Code {
	if c, ok := m.Constructor.(*gen.Constructor); ok {
		return []jen.Code{
			jen.List(jen.Id("v"), jen.Err()).Op(":=").Id(scanner(c.Class)).Call(jen.Id("rows")),
			ret.check(),
		}
	}
	e, _ := m.Constructor.(*gen.Extractor)
	dest := jen.Op("&").Id("v")
	column := ""
	if e != nil {
		dest = scanDest(e, jen.Id("v")).(*jen.Statement)
		column = e.Column
	}
	return []jen.Code{
		jen.Var().Id("v").Add(g.goType(m.Result, false)),
		jen.If(
			jen.Err().Op(":=").Qual(sqlPkg, "ScanColumns").Call(jen.Id("rows"), jen.Map(jen.String()).Id("any").Values(jen.Dict{jen.Lit(column): dest})),
			jen.Err().Op("!=").Nil(),
		).Block(ret.wrap()),
	}
}
