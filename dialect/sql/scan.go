package sql

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

// ScanColumns scans the current row of rows into the destinations
// keyed by column name. The key "" receives the first column. Names
// fall back to a case-insensitive match, columns without a destination
// are discarded, and a destination without a column is an error.
func ScanColumns(rows ColumnScanner, dest map[string]any) error {
	columns, err := rows.Columns()
	if err != nil {
		return fmt.Errorf("dialect/sql: columns: %w", err)
	}
	var (
		values = make([]any, len(columns))
		used   = make(map[string]bool, len(dest))
	)
	for i, c := range columns {
		key, ok := lookupColumn(dest, c)
		if !ok && i == 0 {
			_, ok = dest[""]
		}
		if !ok || used[key] {
			values[i] = new(any)
			continue
		}
		used[key] = true
		values[i] = dest[key]
	}
	for _, key := range slices.Sorted(maps.Keys(dest)) {
		if !used[key] {
			return fmt.Errorf("dialect/sql: column %q not in result", key)
		}
	}
	return rows.Scan(values...)
}

func lookupColumn(dest map[string]any, column string) (string, bool) {
	if _, ok := dest[column]; ok {
		return column, true
	}
	for key := range dest {
		if key != "" && strings.EqualFold(key, column) {
			return key, true
		}
	}
	return "", false
}

// JSON binds and scans a value stored as JSON text. V holds the value
// when binding and a pointer to it when scanning. With Nullable set, a
// nil V is written as NULL; otherwise nil slices and maps are written
// as empty ones.
type JSON struct {
	V        any
	Nullable bool
}

// Value implements driver.Valuer.
func (j JSON) Value() (driver.Value, error) {
	v := j.V
	if isNil(v) {
		if j.Nullable || v == nil {
			return nil, nil
		}
		switch reflect.TypeOf(v).Kind() {
		case reflect.Slice:
			return "[]", nil
		case reflect.Map:
			return "{}", nil
		}
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: encode json: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner. NULL leaves V untouched.
func (j *JSON) Scan(src any) error {
	var b []byte
	switch src := src.(type) {
	case nil:
		return nil
	case []byte:
		b = src
	case string:
		b = []byte(src)
	default:
		return fmt.Errorf("dialect/sql: unexpected type %T for json column", src)
	}
	if err := json.Unmarshal(b, j.V); err != nil {
		return fmt.Errorf("dialect/sql: decode json: %w", err)
	}
	return nil
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	switch rv := reflect.ValueOf(v); rv.Kind() {
	case reflect.Pointer, reflect.Slice, reflect.Map, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
