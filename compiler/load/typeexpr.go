package load

import (
	"fmt"
	"strings"
	"unicode"
)

// ParseType parses a type expression such as "List<shop.Item?>?".
// Unqualified names resolve to a builtin first and to pkg otherwise.
//
//	type := name [ "<" type { "," type } ">" ] [ "?" ]
func (u *Universe) ParseType(expr, pkg string) (*Type, error) {
	p := &typeParser{u: u, pkg: pkg, src: expr}
	t, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("load: type %q: %w", expr, err)
	}
	p.skipSpace()
	if p.pos < len(p.src) {
		return nil, fmt.Errorf("load: type %q: unexpected %q at offset %d", expr, p.src[p.pos:], p.pos)
	}
	return t, nil
}

type typeParser struct {
	u   *Universe
	pkg string
	src string
	pos int
}

func (p *typeParser) parse() (*Type, error) {
	p.skipSpace()
	start := p.pos
	for p.pos < len(p.src) && isNameRune(rune(p.src[p.pos])) {
		p.pos++
	}
	if start == p.pos {
		return nil, fmt.Errorf("expected type name at offset %d", start)
	}
	t := &Type{Klass: p.u.Intern(p.resolve(p.src[start:p.pos]))}
	if p.accept('<') {
		for {
			arg, err := p.parse()
			if err != nil {
				return nil, err
			}
			t.Args = append(t.Args, arg)
			if p.accept(',') {
				continue
			}
			if !p.accept('>') {
				return nil, fmt.Errorf("expected '>' at offset %d", p.pos)
			}
			break
		}
	}
	t.Nullable = p.accept('?')
	return t, nil
}

func (p *typeParser) resolve(name string) QualifiedName {
	if strings.ContainsRune(name, '.') {
		return ParseQualifiedName(name)
	}
	if k, ok := p.u.Lookup(QualifiedName{Name: name}); ok && k.builtin {
		return k.Name
	}
	return QualifiedName{Pkg: p.pkg, Name: name}
}

func (p *typeParser) accept(c byte) bool {
	p.skipSpace()
	if p.pos < len(p.src) && p.src[p.pos] == c {
		p.pos++
		return true
	}
	return false
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && p.src[p.pos] == ' ' {
		p.pos++
	}
}

func isNameRune(r rune) bool {
	return r == '.' || r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}
