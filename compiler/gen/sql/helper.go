package sql

import (
	"go/token"
	"go/types"
	"strings"
	"unicode"

	"github.com/dave/jennifer/jen"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/syssam/sqlrepo/compiler/gen"
	"github.com/syssam/sqlrepo/compiler/load"
)

// Import paths referenced by generated code.
const (
	runtimePkg = "github.com/syssam/sqlrepo"
	dialectPkg = "github.com/syssam/sqlrepo/dialect"
	sqlPkg     = "github.com/syssam/sqlrepo/dialect/sql"
	uuidPkg    = "github.com/google/uuid"
)

// acronyms are written in upper case when they form a word of an
// exported name.
var acronyms = map[string]bool{
	"API": true, "DB": true, "HTML": true, "HTTP": true, "ID": true,
	"IP": true, "JSON": true, "SQL": true, "UID": true, "URL": true,
	"UUID": true, "XML": true,
}

// words splits a camelCase, PascalCase or snake_case name.
func words(s string) []string {
	var (
		ws []string
		rs = []rune(s)
		w  []rune
	)
	flush := func() {
		if len(w) > 0 {
			ws = append(ws, string(w))
			w = nil
		}
	}
	for i, r := range rs {
		switch {
		case r == '_' || r == '-' || unicode.IsSpace(r):
			flush()
			continue
		case unicode.IsUpper(r) && i > 0:
			prev := rs[i-1]
			next := i+1 < len(rs) && unicode.IsLower(rs[i+1])
			if unicode.IsLower(prev) || unicode.IsDigit(prev) || (unicode.IsUpper(prev) && next) {
				flush()
			}
		}
		w = append(w, r)
	}
	flush()
	return ws
}

// pascal returns the exported Go name of s, e.g. "findById" becomes
// "FindByID" and "nullable_int" becomes "NullableInt".
func pascal(s string) string {
	title := cases.Title(language.Und)
	var b strings.Builder
	for _, w := range words(s) {
		if u := strings.ToUpper(w); acronyms[u] {
			b.WriteString(u)
			continue
		}
		b.WriteString(title.String(w))
	}
	return b.String()
}

// unexport returns s with its leading upper-case run lowered, e.g.
// "MyClassRepository" becomes "myClassRepository" and "DBRepository"
// becomes "dbRepository".
func unexport(s string) string {
	rs := []rune(s)
	for i := 0; i < len(rs) && unicode.IsUpper(rs[i]); i++ {
		if i > 0 && i+1 < len(rs) && unicode.IsLower(rs[i+1]) {
			break
		}
		rs[i] = unicode.ToLower(rs[i])
	}
	return string(rs)
}

// locals are the identifiers declared by generated method bodies.
var locals = map[string]bool{
	"args": true, "ctx": true, "err": true, "it": true, "n": true,
	"query": true, "r": true, "res": true, "rows": true, "total": true,
	"v": true, "vs": true,
}

// paramIdent returns the Go identifier of a method parameter, renamed
// when it collides with a keyword, a predeclared identifier, an import
// or a local of the generated body.
func paramIdent(name string) string {
	switch {
	case token.IsKeyword(name), types.Universe.Lookup(name) != nil, locals[name],
		name == "sql", name == "sqlrepo", name == "dialect", name == "uuid", name == "time", name == "context":
		return name + "_"
	}
	return name
}

// typeName returns the Go name of a model class.
func typeName(n load.QualifiedName) string {
	return pascal(n.Name)
}

// label names a method in errors, e.g. "ItemRepository.findById".
func label(r *gen.Repo, m *gen.QueryMethod) string {
	return r.Name.Name + "." + m.Name
}

// arg returns the i-th type argument of t, or nil.
func arg(t *load.Type, i int) *load.Type {
	if t == nil || i >= len(t.Args) {
		return nil
	}
	return t.Args[i]
}

// goType returns the Go type of t. Composite classes are referenced by
// pointer, except for struct fields. Nullable values become pointers
// unless the type is already nillable.
func (g *Generator) goType(t *load.Type, field bool) jen.Code {
	if t == nil {
		return jen.Id("any")
	}
	base, nillable := g.baseType(t, field)
	if t.Nullable && !nillable {
		return jen.Op("*").Add(base)
	}
	return base
}

// baseType returns the Go type of t ignoring its nullability, and
// whether that type already admits nil.
func (g *Generator) baseType(t *load.Type, field bool) (*jen.Statement, bool) {
	if t.Klass.Enum {
		return jen.Id(typeName(t.Name())), false
	}
	switch g.cfg.ScalarKind(t) {
	case gen.ScalarString, gen.ScalarDecimal:
		return jen.String(), false
	case gen.ScalarInt:
		return jen.Int(), false
	case gen.ScalarLong:
		return jen.Int64(), false
	case gen.ScalarFloat:
		return jen.Float32(), false
	case gen.ScalarDouble:
		return jen.Float64(), false
	case gen.ScalarBool:
		return jen.Bool(), false
	case gen.ScalarBytes:
		return jen.Index().Byte(), true
	case gen.ScalarDate, gen.ScalarLocalDate, gen.ScalarLocalDateTime,
		gen.ScalarLocalTime, gen.ScalarTime, gen.ScalarTimestamp:
		return jen.Qual("time", "Time"), false
	case gen.ScalarUUID:
		return jen.Qual(uuidPkg, "UUID"), false
	case gen.ScalarList:
		return jen.Index().Add(g.goType(arg(t, 0), field)), true
	case gen.ScalarMap:
		key := arg(t, 0)
		if key == nil {
			return jen.Map(jen.String()).Id("any"), true
		}
		return jen.Map(g.goType(key, true)).Add(g.goType(arg(t, 1), field)), true
	case gen.ScalarPage:
		return jen.Qual(runtimePkg, "Page").Types(g.goType(arg(t, 0), false)), false
	case gen.ScalarPageable:
		return jen.Qual(runtimePkg, "Pageable"), false
	case gen.ScalarOrder:
		return jen.Qual(runtimePkg, "Order"), true
	}
	if t.Klass.Composite() {
		id := jen.Id(typeName(t.Name()))
		if field {
			return id, false
		}
		return jen.Op("*").Add(id), true
	}
	return jen.Id("any"), true
}

// zero returns the zero value of the Go type of t, as returned
// alongside an error.
func (g *Generator) zero(t *load.Type) jen.Code {
	if t == nil {
		return jen.Nil()
	}
	if _, nillable := g.baseType(t, false); nillable || t.Nullable {
		return jen.Nil()
	}
	if t.Klass.Enum {
		return jen.Lit("")
	}
	switch g.cfg.ScalarKind(t) {
	case gen.ScalarString, gen.ScalarDecimal:
		return jen.Lit("")
	case gen.ScalarInt, gen.ScalarLong, gen.ScalarFloat, gen.ScalarDouble:
		return jen.Lit(0)
	case gen.ScalarBool:
		return jen.False()
	case gen.ScalarUUID:
		return jen.Qual(uuidPkg, "Nil")
	}
	base, _ := g.baseType(t, false)
	return base.Clone().Values()
}
