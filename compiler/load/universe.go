package load

import (
	"fmt"
	"slices"
)

// Names of the predeclared classes. They live in the empty package so
// type expressions can refer to them without qualification.
var (
	String        = QualifiedName{Name: "String"}
	Int           = QualifiedName{Name: "Int"}
	Long          = QualifiedName{Name: "Long"}
	Float         = QualifiedName{Name: "Float"}
	Double        = QualifiedName{Name: "Double"}
	Boolean       = QualifiedName{Name: "Boolean"}
	ByteArray     = QualifiedName{Name: "ByteArray"}
	BigDecimal    = QualifiedName{Name: "BigDecimal"}
	Date          = QualifiedName{Name: "Date"}
	LocalDate     = QualifiedName{Name: "LocalDate"}
	LocalDateTime = QualifiedName{Name: "LocalDateTime"}
	LocalTime     = QualifiedName{Name: "LocalTime"}
	Time          = QualifiedName{Name: "Time"}
	Timestamp     = QualifiedName{Name: "Timestamp"}
	UUID          = QualifiedName{Name: "UUID"}
	List          = QualifiedName{Name: "List"}
	Map           = QualifiedName{Name: "Map"}
	Unit          = QualifiedName{Name: "Unit"}
	Pageable      = QualifiedName{Name: "Pageable"}
	Page          = QualifiedName{Name: "Page"}
	Order         = QualifiedName{Name: "Order"}
)

// Builtins lists the predeclared class names.
var Builtins = []QualifiedName{
	String, Int, Long, Float, Double, Boolean, ByteArray, BigDecimal,
	Date, LocalDate, LocalDateTime, LocalTime, Time, Timestamp, UUID,
	List, Map, Unit, Pageable, Page, Order,
}

// Universe holds one canonical Klass per qualified name. It replaces
// any process-wide visitor cache: front-ends pass it explicitly and
// every reference to a name resolves to the same *Klass.
type Universe struct {
	klasses map[QualifiedName]*Klass
}

// NewUniverse returns a universe holding the predeclared classes.
func NewUniverse() *Universe {
	u := &Universe{klasses: make(map[QualifiedName]*Klass, len(Builtins))}
	for _, n := range Builtins {
		u.klasses[n] = &Klass{Name: n, builtin: true, declared: true}
	}
	return u
}

// Lookup returns the class registered under n.
func (u *Universe) Lookup(n QualifiedName) (*Klass, bool) {
	k, ok := u.klasses[n]
	return k, ok
}

// Intern returns the class registered under n, registering an empty
// undeclared class first if needed. References may be interned before
// the class is declared, which is how recursive classes resolve.
func (u *Universe) Intern(n QualifiedName) *Klass {
	if k, ok := u.klasses[n]; ok {
		return k
	}
	k := &Klass{Name: n}
	u.klasses[n] = k
	return k
}

// Declare interns n and marks it declared. Declaring a name twice
// is an error.
func (u *Universe) Declare(n QualifiedName, pos string) (*Klass, error) {
	k := u.Intern(n)
	if k.declared {
		if k.builtin {
			return nil, fmt.Errorf("load: %s: class %s redeclares a builtin", pos, n)
		}
		return nil, fmt.Errorf("load: %s: class %s already declared at %s", pos, n, k.Pos)
	}
	k.declared, k.Pos = true, pos
	return k, nil
}

// Undeclared returns the names that were referenced but never declared.
func (u *Universe) Undeclared() []QualifiedName {
	var names []QualifiedName
	for n, k := range u.klasses {
		if !k.declared {
			names = append(names, n)
		}
	}
	slices.SortFunc(names, QualifiedName.Compare)
	return names
}

// Klasses returns the declared non-builtin classes ordered by name.
func (u *Universe) Klasses() []*Klass {
	var ks []*Klass
	for _, k := range u.klasses {
		if k.declared && !k.builtin {
			ks = append(ks, k)
		}
	}
	slices.SortFunc(ks, func(a, b *Klass) int { return a.Name.Compare(b.Name) })
	return ks
}
