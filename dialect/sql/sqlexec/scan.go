package sqlexec

import (
	"encoding/json"
	"fmt"
	"math/big"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/syssam/sqlrepo/compiler/gen"
	"github.com/syssam/sqlrepo/dialect/sql"
)

// timeLayouts are tried in order when a driver returns a time as text.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
	"15:04:05.999999999",
}

// row is one scanned result row with its column positions.
type row struct {
	index  map[string]int
	values []any
}

func scanRow(rows *sql.Rows, n int, index map[string]int) (*row, error) {
	values := make([]any, n)
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := rows.Scan(dest...); err != nil {
		return nil, err
	}
	return &row{index: index, values: values}, nil
}

func columnIndex(columns []string) map[string]int {
	index := make(map[string]int, len(columns))
	for i, c := range columns {
		if _, ok := index[c]; !ok {
			index[c] = i
		}
	}
	return index
}

func (r *row) column(name string) (any, error) {
	if name == "" {
		return r.values[0], nil
	}
	if i, ok := r.index[name]; ok {
		return r.values[i], nil
	}
	for c, i := range r.index {
		if strings.EqualFold(c, name) {
			return r.values[i], nil
		}
	}
	return nil, fmt.Errorf("sqlexec: column %q not in result", name)
}

// build assembles the value described by oc. Composite values become
// maps keyed by field name.
func build(oc gen.ObjectConstructor, r *row) (any, error) {
	switch oc := oc.(type) {
	case *gen.Extractor:
		raw, err := r.column(oc.Column)
		if err != nil {
			return nil, err
		}
		return convert(oc, raw)
	case *gen.Constructor:
		m := make(map[string]any, len(oc.Fields))
		for _, f := range oc.Fields {
			v, err := build(f, r)
			if err != nil {
				return nil, err
			}
			m[f.FieldName()] = v
		}
		return m, nil
	}
	return nil, fmt.Errorf("sqlexec: unexpected constructor %T", oc)
}

// convert reads a raw driver value as the extractor's kind.
func convert(e *gen.Extractor, raw any) (any, error) {
	if raw == nil {
		if e.Nullable {
			return nil, nil
		}
		return nil, fmt.Errorf("sqlexec: NULL read for non-nullable %s", describe(e))
	}
	switch {
	case e.JSON:
		var v any
		if err := json.Unmarshal(bytesOf(raw), &v); err != nil {
			return nil, fmt.Errorf("sqlexec: decode %s: %w", describe(e), err)
		}
		return v, nil
	case e.Enum:
		return string(bytesOf(raw)), nil
	}
	v, err := scalar(e.Scalar, raw)
	if err != nil {
		return nil, fmt.Errorf("sqlexec: read %s: %w", describe(e), err)
	}
	return v, nil
}

func scalar(kind gen.Scalar, raw any) (any, error) {
	switch kind {
	case gen.ScalarInt:
		n, err := toInt64(raw)
		return int(n), err
	case gen.ScalarLong:
		return toInt64(raw)
	case gen.ScalarBool:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		}
		return strconv.ParseBool(string(bytesOf(raw)))
	case gen.ScalarFloat:
		f, err := toFloat64(raw)
		return float32(f), err
	case gen.ScalarDouble:
		return toFloat64(raw)
	case gen.ScalarDecimal:
		r, ok := new(big.Rat).SetString(string(bytesOf(raw)))
		if !ok {
			return nil, fmt.Errorf("invalid decimal %v", raw)
		}
		return r, nil
	case gen.ScalarString:
		return string(bytesOf(raw)), nil
	case gen.ScalarBytes:
		return bytesOf(raw), nil
	case gen.ScalarUUID:
		if b, ok := raw.([]byte); ok && len(b) == 16 {
			return uuid.FromBytes(b)
		}
		return uuid.Parse(string(bytesOf(raw)))
	case gen.ScalarDate, gen.ScalarTime, gen.ScalarTimestamp,
		gen.ScalarLocalDate, gen.ScalarLocalDateTime, gen.ScalarLocalTime:
		return toTime(raw)
	}
	return raw, nil
}

func toInt64(raw any) (int64, error) {
	switch v := raw.(type) {
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case bool:
		if v {
			return 1, nil
		}
		return 0, nil
	}
	return strconv.ParseInt(string(bytesOf(raw)), 10, 64)
}

func toFloat64(raw any) (float64, error) {
	switch v := raw.(type) {
	case float64:
		return v, nil
	case float32:
		return float64(v), nil
	case int64:
		return float64(v), nil
	}
	return strconv.ParseFloat(string(bytesOf(raw)), 64)
}

func toTime(raw any) (time.Time, error) {
	switch v := raw.(type) {
	case time.Time:
		return v, nil
	case int64:
		return time.UnixMilli(v).UTC(), nil
	}
	s := string(bytesOf(raw))
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid time %q", s)
}

func bytesOf(raw any) []byte {
	switch v := raw.(type) {
	case []byte:
		return v
	case string:
		return []byte(v)
	}
	return []byte(fmt.Sprint(raw))
}

func describe(e *gen.Extractor) string {
	if e.Column == "" {
		return "result"
	}
	return fmt.Sprintf("column %q", e.Column)
}
