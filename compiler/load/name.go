package load

import (
	"cmp"
	"strings"
)

// QualifiedName identifies a class by package and simple name.
type QualifiedName struct {
	Pkg  string `json:"pkg,omitempty" yaml:"pkg,omitempty"`
	Name string `json:"name" yaml:"name"`
}

// ParseQualifiedName splits s at its last dot. A name without a dot
// has an empty package.
func ParseQualifiedName(s string) QualifiedName {
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return QualifiedName{Pkg: s[:i], Name: s[i+1:]}
	}
	return QualifiedName{Name: s}
}

// String returns the dotted form of the name.
func (q QualifiedName) String() string {
	if q.Pkg == "" {
		return q.Name
	}
	return q.Pkg + "." + q.Name
}

// IsZero reports whether q is the zero name.
func (q QualifiedName) IsZero() bool {
	return q.Pkg == "" && q.Name == ""
}

// Compare orders names by their string form.
func (q QualifiedName) Compare(o QualifiedName) int {
	return cmp.Compare(q.String(), o.String())
}
