package gen

import (
	"fmt"
	"maps"

	"github.com/syssam/sqlrepo/compiler/load"
)

// Scalar classifies a class that maps to a single column value.
type Scalar uint8

// Scalar kinds. ScalarUnit and the pagination and order kinds are
// never stored; they mark special return and parameter types.
const (
	ScalarNone Scalar = iota
	ScalarDecimal
	ScalarBool
	ScalarBytes
	ScalarDate
	ScalarDouble
	ScalarFloat
	ScalarInt
	ScalarList
	ScalarLong
	ScalarLocalDate
	ScalarLocalDateTime
	ScalarLocalTime
	ScalarMap
	ScalarString
	ScalarTime
	ScalarTimestamp
	ScalarUUID
	ScalarUnit
	ScalarPageable
	ScalarPage
	ScalarOrder
	endScalars
)

var scalarNames = [...]string{
	ScalarNone:          "none",
	ScalarDecimal:       "decimal",
	ScalarBool:          "bool",
	ScalarBytes:         "bytes",
	ScalarDate:          "date",
	ScalarDouble:        "double",
	ScalarFloat:         "float",
	ScalarInt:           "int",
	ScalarList:          "list",
	ScalarLong:          "long",
	ScalarLocalDate:     "local-date",
	ScalarLocalDateTime: "local-date-time",
	ScalarLocalTime:     "local-time",
	ScalarMap:           "map",
	ScalarString:        "string",
	ScalarTime:          "time",
	ScalarTimestamp:     "timestamp",
	ScalarUUID:          "uuid",
	ScalarUnit:          "unit",
	ScalarPageable:      "pageable",
	ScalarPage:          "page",
	ScalarOrder:         "order",
}

// String returns the kind name used in configuration files.
func (s Scalar) String() string {
	if s < endScalars {
		return scalarNames[s]
	}
	return fmt.Sprintf("Scalar(%d)", s)
}

// ParseScalar resolves a kind from its name.
func ParseScalar(name string) (Scalar, error) {
	for s := ScalarDecimal; s < endScalars; s++ {
		if scalarNames[s] == name {
			return s, nil
		}
	}
	return ScalarNone, fmt.Errorf("sqlrepo: unknown scalar kind %q", name)
}

// Storable reports whether the kind maps to a column.
func (s Scalar) Storable() bool {
	return s > ScalarNone && s < ScalarUnit
}

// Storage returns the default storage type of the kind.
func (s Scalar) Storage() StorageType {
	switch s {
	case ScalarDecimal:
		return TypeNumeric
	case ScalarBool:
		return TypeBoolean
	case ScalarBytes:
		return TypeBytea
	case ScalarDate, ScalarLocalDate:
		return TypeDate
	case ScalarFloat:
		return TypeReal
	case ScalarDouble:
		return TypeDouble
	case ScalarInt:
		return TypeInteger
	case ScalarList, ScalarMap:
		return TypeJSONB
	case ScalarLong:
		return TypeBigInt
	case ScalarLocalDateTime:
		return TypeTimestamp
	case ScalarLocalTime, ScalarTime:
		return TypeTime
	case ScalarString:
		return TypeText
	case ScalarTimestamp:
		return TypeTimestampTZ
	case ScalarUUID:
		return TypeUUID
	default:
		return TypeInvalid
	}
}

// Primitive reports whether the kind is a non-reference value that
// needs explicit NULL detection when read from a row.
func (s Scalar) Primitive() bool {
	switch s {
	case ScalarBool, ScalarInt, ScalarLong, ScalarFloat, ScalarDouble:
		return true
	}
	return false
}

// Getter returns the row accessor used to read the kind.
func (s Scalar) Getter() string {
	switch s {
	case ScalarBool:
		return "Bool"
	case ScalarInt:
		return "Int"
	case ScalarLong:
		return "Long"
	case ScalarFloat:
		return "Float"
	case ScalarDouble:
		return "Double"
	case ScalarDecimal:
		return "Decimal"
	case ScalarBytes:
		return "Bytes"
	case ScalarDate:
		return "Date"
	case ScalarTime:
		return "Time"
	case ScalarTimestamp:
		return "Timestamp"
	case ScalarString, ScalarList, ScalarMap:
		return "String"
	default:
		return "Object"
	}
}

// ScalarTable maps class names to scalar kinds.
type ScalarTable map[load.QualifiedName]Scalar

// DefaultScalars returns the kinds of the predeclared classes.
func DefaultScalars() ScalarTable {
	return ScalarTable{
		load.BigDecimal:    ScalarDecimal,
		load.Boolean:       ScalarBool,
		load.ByteArray:     ScalarBytes,
		load.Date:          ScalarDate,
		load.Double:        ScalarDouble,
		load.Float:         ScalarFloat,
		load.Int:           ScalarInt,
		load.List:          ScalarList,
		load.Long:          ScalarLong,
		load.LocalDate:     ScalarLocalDate,
		load.LocalDateTime: ScalarLocalDateTime,
		load.LocalTime:     ScalarLocalTime,
		load.Map:           ScalarMap,
		load.String:        ScalarString,
		load.Time:          ScalarTime,
		load.Timestamp:     ScalarTimestamp,
		load.UUID:          ScalarUUID,
		load.Unit:          ScalarUnit,
		load.Pageable:      ScalarPageable,
		load.Page:          ScalarPage,
		load.Order:         ScalarOrder,
	}
}

// Clone returns a copy of the table.
func (t ScalarTable) Clone() ScalarTable {
	return maps.Clone(t)
}

// Kind classifies the class referenced by typ.
func (t ScalarTable) Kind(typ *load.Type) Scalar {
	if typ == nil {
		return ScalarNone
	}
	return t[typ.Name()]
}

// Storable reports whether typ maps to a single column.
func (t ScalarTable) Storable(typ *load.Type) bool {
	return t.Kind(typ).Storable()
}
