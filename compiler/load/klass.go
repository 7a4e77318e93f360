package load

import (
	"strings"
)

// Klass is a named type of the model: an entity, a nested value class,
// an enum, a builtin scalar or a repository interface.
type Klass struct {
	Name        QualifiedName
	Fields      []*Field
	Functions   []*Function
	Enum        bool
	Values      []string
	Annotations Annotations
	// Entity is the mapped entity of a repository. It is nil for
	// classes that are not repositories and for standalone repositories.
	Entity *Type
	// Pos is the declaration position ("file:line") reported in errors.
	Pos string

	builtin  bool
	declared bool
}

// Field is a named, typed member of a class.
type Field struct {
	Name        string
	Type        *Type
	Annotations Annotations
}

// Parameter is a named, typed parameter of a repository function.
type Parameter struct {
	Name        string
	Type        *Type
	Annotations Annotations
}

// Function is a method declared on a repository interface.
type Function struct {
	Name        string
	Parameters  []*Parameter
	Returns     *Type
	Annotations Annotations
}

// Type is a reference to a class with nullability and type arguments.
type Type struct {
	Klass    *Klass
	Nullable bool
	Args     []*Type
}

// Composite reports whether the class has sub-fields.
func (k *Klass) Composite() bool { return len(k.Fields) > 0 }

// Builtin reports whether the class is one of the predeclared classes.
func (k *Klass) Builtin() bool { return k.builtin }

// Field returns the field with the given name, or nil.
func (k *Klass) Field(name string) *Field {
	for _, f := range k.Fields {
		if f.Name == name {
			return f
		}
	}
	return nil
}

// Equal reports whether two classes have the same name and structure.
// Field types are compared by name, which keeps the comparison finite
// for recursive classes.
func (k *Klass) Equal(o *Klass) bool {
	switch {
	case k == o:
		return true
	case k == nil || o == nil:
		return false
	case k.Name != o.Name || k.Enum != o.Enum || len(k.Fields) != len(o.Fields):
		return false
	}
	for i, f := range k.Fields {
		g := o.Fields[i]
		if f.Name != g.Name || f.Type.String() != g.Type.String() {
			return false
		}
	}
	return true
}

// String implements fmt.Stringer.
func (k *Klass) String() string { return k.Name.String() }

// Name returns the qualified name of the referenced class.
func (t *Type) Name() QualifiedName {
	if t == nil || t.Klass == nil {
		return QualifiedName{}
	}
	return t.Klass.Name
}

// Arg returns the single type argument of a collection type, or nil.
func (t *Type) Arg() *Type {
	if t == nil || len(t.Args) == 0 {
		return nil
	}
	return t.Args[0]
}

// Is reports whether t references the class named n.
func (t *Type) Is(n QualifiedName) bool {
	return t.Name() == n
}

// NonNull returns a copy of t that is not nullable.
func (t *Type) NonNull() *Type {
	c := *t
	c.Nullable = false
	return &c
}

// String renders t as a type expression, for example "List<String?>?".
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	var b strings.Builder
	b.WriteString(t.Name().String())
	if len(t.Args) > 0 {
		b.WriteByte('<')
		for i, a := range t.Args {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(a.String())
		}
		b.WriteByte('>')
	}
	if t.Nullable {
		b.WriteByte('?')
	}
	return b.String()
}

// TypeOf returns a non-nullable reference to k.
func TypeOf(k *Klass, args ...*Type) *Type {
	return &Type{Klass: k, Args: args}
}
