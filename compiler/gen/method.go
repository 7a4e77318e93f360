package gen

import (
	"github.com/syssam/sqlrepo/compiler/load"
)

// MethodKind is the category a repository function is classified into.
type MethodKind uint8

// Method kinds, in classification priority order.
const (
	MethodCustom MethodKind = iota + 1
	MethodSave
	MethodDelete
	MethodDerived
)

// String implements fmt.Stringer.
func (k MethodKind) String() string {
	switch k {
	case MethodCustom:
		return "custom"
	case MethodSave:
		return "save"
	case MethodDelete:
		return "delete"
	case MethodDerived:
		return "derived"
	}
	return "unknown"
}

// ValueKind tells the renderer how a bound value is converted.
type ValueKind uint8

// Value kinds.
const (
	KindScalar ValueKind = iota
	KindPrimitive
	KindJSON
	KindEnum
)

// String implements fmt.Stringer.
func (k ValueKind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindJSON:
		return "json"
	case KindEnum:
		return "enum"
	}
	return "scalar"
}

// QueryMethod is the synthesized form of one repository function.
type QueryMethod struct {
	Name string
	Kind MethodKind
	// Query is the SQL text. It may contain "%name" tokens for IN lists
	// and a "%orderBy" token, substituted before execution.
	Query string
	// MethodParams are the parameters as declared.
	MethodParams []*QueryMethodParameter
	// QueryParams are the values bound into Query: positional ones in
	// placeholder order, followed by IN lists with Position -1.
	QueryParams []*QueryParameter
	// Returns is the declared return type and Result the row type,
	// with List and Page unwrapped.
	Returns     *load.Type
	Result      *load.Type
	Collection  bool
	Scalar      bool
	Constructor ObjectConstructor
	Pagination  *Pagination
	OrderParam  string
	Batch       bool
	Optimistic  bool
	Statement   bool
}

// QueryMethodParameter is a parameter as declared on the function.
type QueryMethodParameter struct {
	Name string
	Type *load.Type
}

// QueryParameter is a value bound into the SQL text.
type QueryParameter struct {
	// Position is the 1-based placeholder index, or -1 for values
	// substituted as text (IN lists).
	Position int
	// Path is the dotted path to the value, rooted at a method
	// parameter, or at the list element for batch methods.
	Path    string
	Type    *load.Type
	Scalar  Scalar
	Kind    ValueKind
	Storage StorageType
	In      bool
}

// Pagination names the page-request parameter of a paginated method.
type Pagination struct {
	Param string
}

// Void reports whether the method returns nothing.
func (m *QueryMethod) Void() bool {
	return m.Returns == nil || m.Returns.Is(load.Unit)
}

// Nullable reports whether a single-row method may return no value.
func (m *QueryMethod) Nullable() bool {
	return m.Returns != nil && m.Returns.Nullable
}

// Positional returns the parameters bound with "?" placeholders.
func (m *QueryMethod) Positional() []*QueryParameter {
	var ps []*QueryParameter
	for _, p := range m.QueryParams {
		if p.Position > 0 {
			ps = append(ps, p)
		}
	}
	return ps
}

// InLists returns the parameters substituted as IN-list literals.
func (m *QueryMethod) InLists() []*QueryParameter {
	var ps []*QueryParameter
	for _, p := range m.QueryParams {
		if p.In {
			ps = append(ps, p)
		}
	}
	return ps
}

// Param returns the declared parameter with the given name, or nil.
func (m *QueryMethod) Param(name string) *QueryMethodParameter {
	for _, p := range m.MethodParams {
		if p.Name == name {
			return p
		}
	}
	return nil
}
