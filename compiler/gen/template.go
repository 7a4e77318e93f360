package gen

import (
	"regexp"
	"strings"
)

// inClause matches "IN (:name)" in any letter case.
var inClause = regexp.MustCompile(`(?i)\bIN\s*\(\s*:(\w+)\s*\)`)

// sqlTemplate is a literal SQL fragment with named placeholders resolved.
type sqlTemplate struct {
	// text has ":name" replaced by "?" and IN placeholders replaced
	// by "%name".
	text string
	// positional lists the names bound by "?", in template order.
	// A name appears once per occurrence.
	positional []string
	// in lists the IN-list names in first-appearance order.
	in []string
}

// names returns every distinct placeholder name.
func (t *sqlTemplate) names() []string {
	var (
		names []string
		seen  = make(map[string]bool)
	)
	for _, n := range append(append([]string(nil), t.positional...), t.in...) {
		if !seen[n] {
			seen[n] = true
			names = append(names, n)
		}
	}
	return names
}

type placeholder struct {
	name       string
	start, end int
}

// scanPlaceholders finds ":name" placeholders outside quoted literals
// and identifiers. "::" casts are skipped.
func scanPlaceholders(s string) []placeholder {
	var ps []placeholder
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\'', '"':
			for i++; i < len(s); i++ {
				if s[i] == c {
					if i+1 < len(s) && s[i+1] == c {
						i++
						continue
					}
					break
				}
			}
		case ':':
			if i+1 < len(s) && s[i+1] == ':' {
				i++
				continue
			}
			j := i + 1
			for j < len(s) && isWordByte(s[j]) {
				j++
			}
			if j > i+1 {
				ps = append(ps, placeholder{name: s[i+1 : j], start: i, end: j})
				i = j - 1
			}
		}
	}
	return ps
}

func isWordByte(c byte) bool {
	return c == '_' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// parseTemplate resolves the placeholders of s.
func parseTemplate(s string) *sqlTemplate {
	inAt := make(map[int]bool)
	for _, m := range inClause.FindAllStringSubmatchIndex(s, -1) {
		// m[2] is the start of the name; the colon precedes it.
		inAt[m[2]-1] = true
	}
	var (
		t    = &sqlTemplate{}
		b    strings.Builder
		last int
		seen = make(map[string]bool)
	)
	for _, p := range scanPlaceholders(s) {
		b.WriteString(s[last:p.start])
		last = p.end
		if inAt[p.start] {
			b.WriteString("%" + p.name)
			if !seen[p.name] {
				seen[p.name] = true
				t.in = append(t.in, p.name)
			}
			continue
		}
		b.WriteByte('?')
		t.positional = append(t.positional, p.name)
	}
	b.WriteString(s[last:])
	t.text = b.String()
	return t
}
