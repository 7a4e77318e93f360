package gen

import (
	"fmt"
	"strings"
)

// StorageType is the relational column type a value is stored as.
type StorageType uint8

// Storage types.
const (
	TypeInvalid StorageType = iota
	TypeBoolean
	TypeInteger
	TypeBigInt
	TypeText
	TypeJSONB
	TypeBytea
	TypeReal
	TypeDate
	TypeDouble
	TypeNumeric
	TypeMoney
	TypeTime
	TypeTimestamp
	TypeTimestampTZ
	TypeUUID
	TypeXML
	TypeTSVector
	endStorageTypes
)

var storageNames = [...]string{
	TypeInvalid:     "",
	TypeBoolean:     "BOOLEAN",
	TypeInteger:     "INTEGER",
	TypeBigInt:      "BIGINT",
	TypeText:        "TEXT",
	TypeJSONB:       "JSONB",
	TypeBytea:       "BYTEA",
	TypeReal:        "REAL",
	TypeDate:        "DATE",
	TypeDouble:      "DOUBLE",
	TypeNumeric:     "NUMERIC",
	TypeMoney:       "MONEY",
	TypeTime:        "TIME",
	TypeTimestamp:   "TIMESTAMP",
	TypeTimestampTZ: "TIMESTAMP_WITH_TIMEZONE",
	TypeUUID:        "UUID",
	TypeXML:         "XML",
	TypeTSVector:    "TSVECTOR",
}

var storageSQL = [...]string{
	TypeInvalid:     "invalid",
	TypeBoolean:     "boolean",
	TypeInteger:     "integer",
	TypeBigInt:      "bigint",
	TypeText:        "text",
	TypeJSONB:       "jsonb",
	TypeBytea:       "bytea",
	TypeReal:        "real",
	TypeDate:        "date",
	TypeDouble:      "double precision",
	TypeNumeric:     "numeric",
	TypeMoney:       "money",
	TypeTime:        "time without time zone",
	TypeTimestamp:   "timestamp without time zone",
	TypeTimestampTZ: "timestamp with time zone",
	TypeUUID:        "uuid",
	TypeXML:         "xml",
	TypeTSVector:    "tsvector",
}

// String returns the SQL spelling of the type.
func (t StorageType) String() string {
	if t < endStorageTypes {
		return storageSQL[t]
	}
	return "invalid"
}

// ConstName returns the upper-case constant name of the type.
func (t StorageType) ConstName() string {
	if t < endStorageTypes {
		return storageNames[t]
	}
	return ""
}

// Valid reports whether t is a known storage type.
func (t StorageType) Valid() bool {
	return t > TypeInvalid && t < endStorageTypes
}

// JSON reports whether values of this type are stored as JSON documents.
func (t StorageType) JSON() bool { return t == TypeJSONB }

// ParseStorageType resolves a storage type from its constant name
// ("TIMESTAMP_WITH_TIMEZONE") or its SQL spelling ("timestamp with time zone").
func ParseStorageType(s string) (StorageType, error) {
	for t := TypeBoolean; t < endStorageTypes; t++ {
		if strings.EqualFold(s, storageNames[t]) || strings.EqualFold(s, storageSQL[t]) {
			return t, nil
		}
	}
	return TypeInvalid, fmt.Errorf("sqlrepo: unknown storage type %q", s)
}
