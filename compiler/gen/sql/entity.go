package sql

import (
	"cmp"
	"fmt"
	"slices"
	"strings"

	"github.com/dave/jennifer/jen"

	"github.com/syssam/sqlrepo/compiler/gen"
	"github.com/syssam/sqlrepo/compiler/load"
)

// models collects the classes referenced by the repositories that
// are rendered as Go types: composite classes and enums. They are
// ordered by qualified name.
func (g *Generator) models() ([]*load.Klass, error) {
	var (
		ks    []*load.Klass
		seen  = make(map[load.QualifiedName]bool)
		names = make(map[string]load.QualifiedName)
		visit func(t *load.Type) error
	)
	visit = func(t *load.Type) error {
		if t == nil {
			return nil
		}
		for _, a := range t.Args {
			if err := visit(a); err != nil {
				return err
			}
		}
		k := t.Klass
		if seen[k.Name] || k.Builtin() || g.cfg.ScalarKind(t) != gen.ScalarNone {
			return nil
		}
		if !k.Enum && !k.Composite() {
			return nil
		}
		seen[k.Name] = true
		name := typeName(k.Name)
		if other, ok := names[name]; ok {
			return gen.NewGenerationError("model", "model.go", fmt.Sprintf("classes %s and %s share the Go name %s", other, k.Name, name), nil)
		}
		names[name] = k.Name
		ks = append(ks, k)
		for _, f := range k.Fields {
			if err := visit(f.Type); err != nil {
				return err
			}
		}
		return nil
	}
	for _, r := range g.graph.Repos {
		if r.Table != nil {
			if err := visit(load.TypeOf(r.Table.Klass)); err != nil {
				return nil, err
			}
		}
		for _, m := range r.Methods {
			for _, p := range m.MethodParams {
				if err := visit(p.Type); err != nil {
					return nil, err
				}
			}
			if err := visit(m.Returns); err != nil {
				return nil, err
			}
		}
	}
	slices.SortFunc(ks, func(a, b *load.Klass) int {
		return cmp.Compare(a.Name.String(), b.Name.String())
	})
	return ks, nil
}

// genModel renders the model types and the row scanners of the
// composite results.
func (g *Generator) genModel(ks []*load.Klass) *jen.File {
	f := g.newFile()
	for _, k := range ks {
		if k.Enum {
			g.genEnum(f, k)
			continue
		}
		name := typeName(k.Name)
		f.Commentf("%s is the model of %s.", name, k.Name)
		f.Type().Id(name).StructFunc(func(group *jen.Group) {
			for _, fd := range k.Fields {
				group.Id(pascal(fd.Name)).Add(g.goType(fd.Type, true)).Tag(map[string]string{"json": fd.Name})
			}
		})
	}
	for _, c := range g.scanners() {
		g.genScanner(f, c)
	}
	return f
}

// genEnum renders an enum as a string type stored by value name.
func (g *Generator) genEnum(f *jen.File, k *load.Klass) {
	name := typeName(k.Name)
	f.Commentf("%s is the enum %s, stored by value name.", name, k.Name)
	f.Type().Id(name).String()
	if len(k.Values) > 0 {
		f.Commentf("%s values.", name)
		f.Const().DefsFunc(func(group *jen.Group) {
			for _, v := range k.Values {
				group.Id(name + pascal(strings.ToLower(v))).Id(name).Op("=").Lit(v)
			}
		})
		f.Commentf("%sValues returns every value of %s in declaration order.", name, name)
		f.Func().Id(name + "Values").Params().Index().Id(name).Block(
			jen.Return(jen.Index().Id(name).ValuesFunc(func(group *jen.Group) {
				for _, v := range k.Values {
					group.Id(name + pascal(strings.ToLower(v)))
				}
			})),
		)
	}
	f.Comment("String implements fmt.Stringer.")
	f.Func().Params(jen.Id("e").Id(name)).Id("String").Params().String().Block(
		jen.Return(jen.String().Call(jen.Id("e"))),
	)
	f.Comment("Value implements driver.Valuer.")
	f.Func().Params(jen.Id("e").Id(name)).Id("Value").Params().Params(jen.Qual("database/sql/driver", "Value"), jen.Error()).Block(
		jen.Return(jen.String().Call(jen.Id("e")), jen.Nil()),
	)
	f.Comment("Scan implements sql.Scanner.")
	f.Func().Params(jen.Id("e").Op("*").Id(name)).Id("Scan").Params(jen.Id("src").Id("any")).Error().Block(
		jen.Switch(jen.Id("v").Op(":=").Id("src").Assert(jen.Type())).Block(
			jen.Case(jen.String()).Block(jen.Op("*").Id("e").Op("=").Id(name).Call(jen.Id("v"))),
			jen.Case(jen.Index().Byte()).Block(jen.Op("*").Id("e").Op("=").Id(name).Call(jen.Id("v"))),
			jen.Default().Block(jen.Return(jen.Qual("fmt", "Errorf").Call(jen.Lit("unexpected type %T for "+name), jen.Id("src")))),
		),
		jen.Return(jen.Nil()),
	)
}

// scanners returns one constructor per composite result class, in
// class order.
func (g *Generator) scanners() []*gen.Constructor {
	var (
		cs   []*gen.Constructor
		seen = make(map[load.QualifiedName]bool)
	)
	for _, r := range g.graph.Repos {
		for _, m := range r.Methods {
			c, ok := m.Constructor.(*gen.Constructor)
			if !ok || seen[c.Class] {
				continue
			}
			seen[c.Class] = true
			cs = append(cs, c)
		}
	}
	slices.SortFunc(cs, func(a, b *gen.Constructor) int {
		return cmp.Compare(a.Class.String(), b.Class.String())
	})
	return cs
}

// scanner returns the name of the row scanner of class n.
func scanner(n load.QualifiedName) string {
	return "scan" + typeName(n)
}

// genScanner renders the function reading one row into a new value of
// the constructor's class.
func (g *Generator) genScanner(f *jen.File, c *gen.Constructor) {
	name := typeName(c.Class)
	dest := jen.Dict{}
	var walk func(oc gen.ObjectConstructor, access *jen.Statement)
	walk = func(oc gen.ObjectConstructor, access *jen.Statement) {
		switch oc := oc.(type) {
		case *gen.Constructor:
			for _, fd := range oc.Fields {
				walk(fd, access.Clone().Dot(pascal(fd.FieldName())))
			}
		case *gen.Extractor:
			dest[jen.Lit(oc.Column)] = scanDest(oc, access)
		}
	}
	walk(c, jen.Id("v"))
	f.Commentf("%s reads the current row into a new %s.", scanner(c.Class), name)
	f.Func().Id(scanner(c.Class)).Params(jen.Id("rows").Op("*").Qual(sqlPkg, "Rows")).Params(jen.Op("*").Id(name), jen.Error()).Block(
		jen.Id("v").Op(":=").Op("&").Id(name).Values(),
		jen.If(
			jen.Err().Op(":=").Qual(sqlPkg, "ScanColumns").Call(jen.Id("rows"), jen.Map(jen.String()).Id("any").Values(dest)),
			jen.Err().Op("!=").Nil(),
		).Block(jen.Return(jen.Nil(), jen.Err())),
		jen.Return(jen.Id("v"), jen.Nil()),
	)
}

// scanDest returns the scan destination of the value at access.
func scanDest(e *gen.Extractor, access *jen.Statement) jen.Code {
	if e.JSON {
		return jen.Op("&").Qual(sqlPkg, "JSON").Values(jen.Dict{jen.Id("V"): jen.Op("&").Add(access)})
	}
	return jen.Op("&").Add(access)
}
