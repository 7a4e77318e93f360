package sql

import (
	"github.com/dave/jennifer/jen"

	"github.com/syssam/sqlrepo/compiler/gen"
)

// genDatabase renders the wrapper of a database: its repositories over
// a dialect.Driver and a Transaction method running a function with
// the same repositories bound to one transaction.
func (g *Generator) genDatabase(db *gen.Database) *jen.File {
	var (
		f    = g.newFile()
		name = pascal(db.Name.Name)
		tx   = name + "Tx"
	)
	repos := func(group *jen.Group) {
		for _, r := range db.Repos {
			rn := pascal(r.Name.Name)
			group.Id(rn).Id(rn)
		}
	}
	bind := func(eq jen.Code) jen.Dict {
		d := jen.Dict{}
		for _, r := range db.Repos {
			rn := pascal(r.Name.Name)
			d[jen.Id(rn)] = jen.Id("New" + rn).Call(eq)
		}
		return d
	}

	f.Commentf("%s holds the repositories of the %s database.", name, db.Name)
	f.Type().Id(name).StructFunc(func(group *jen.Group) {
		group.Id("drv").Qual(dialectPkg, "Driver")
		group.Line()
		repos(group)
	})

	fields := bind(jen.Id("drv"))
	fields[jen.Id("drv")] = jen.Id("drv")
	f.Commentf("New%s returns a %s running on drv.", name, name)
	f.Func().Id("New" + name).Params(jen.Id("drv").Qual(dialectPkg, "Driver")).Op("*").Id(name).Block(
		jen.Return(jen.Op("&").Id(name).Values(fields)),
	)

	f.Commentf("%s holds the repositories of %s bound to a transaction.", tx, name)
	f.Type().Id(tx).StructFunc(repos)

	f.Comment("Transaction runs fn in a new transaction. The transaction commits when")
	f.Comment("fn returns nil and rolls back when it returns an error or panics.")
	f.Func().Params(jen.Id("db").Op("*").Id(name)).Id("Transaction").Params(
		jen.Id("ctx").Qual("context", "Context"),
		jen.Id("fn").Func().Params(jen.Qual("context", "Context"), jen.Op("*").Id(tx)).Error(),
	).Error().Block(
		jen.Return(jen.Qual(sqlPkg, "Transaction").Call(
			jen.Id("ctx"),
			jen.Id("db").Dot("drv"),
			jen.Func().Params(
				jen.Id("ctx").Qual("context", "Context"),
				jen.Id("tx").Qual(dialectPkg, "Tx"),
			).Error().Block(
				jen.Return(jen.Id("fn").Call(jen.Id("ctx"), jen.Op("&").Id(tx).Values(bind(jen.Id("tx"))))),
			),
		)),
	)

	f.Comment("Close closes the underlying driver.")
	f.Func().Params(jen.Id("db").Op("*").Id(name)).Id("Close").Params().Error().Block(
		jen.Return(jen.Id("db").Dot("drv").Dot("Close").Call()),
	)
	return f
}
