package sqlrepo

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/lib/pq"
)

// TimeLayout is the layout of time values rendered into IN lists.
const TimeLayout = "2006-01-02 15:04:05.999999999Z07:00"

// Literal renders v as an SQL literal. Strings, string-based enums,
// fmt.Stringer values (UUIDs among them) and times are quoted; numbers
// and booleans are written bare.
func Literal(v any) (string, error) {
	switch v := v.(type) {
	case nil:
		return "NULL", nil
	case string:
		return pq.QuoteLiteral(v), nil
	case time.Time:
		return pq.QuoteLiteral(v.Format(TimeLayout)), nil
	case bool:
		return strconv.FormatBool(v), nil
	case fmt.Stringer:
		if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
			return "NULL", nil
		}
		return pq.QuoteLiteral(v.String()), nil
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.String:
		return pq.QuoteLiteral(rv.String()), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), nil
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), nil
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), nil
	case reflect.Bool:
		return strconv.FormatBool(rv.Bool()), nil
	case reflect.Pointer:
		if rv.IsNil() {
			return "NULL", nil
		}
		return Literal(rv.Elem().Interface())
	}
	return "", fmt.Errorf("sqlrepo: unsupported IN list value of type %T", v)
}

// InList renders values as a comma separated list of literals. An empty
// list renders as NULL, so that "x IN (NULL)" matches no row.
func InList[T any](values []T) (string, error) {
	if len(values) == 0 {
		return "NULL", nil
	}
	lits := make([]string, len(values))
	for i, v := range values {
		lit, err := Literal(v)
		if err != nil {
			return "", err
		}
		lits[i] = lit
	}
	return strings.Join(lits, ", "), nil
}

// Expand replaces the "%name" tokens of query with their values.
// Tokens inside quoted literals and identifiers are left alone, and a
// token only matches a whole word, so "%id" does not touch "%ids".
func Expand(query string, values map[string]string) string {
	if len(values) == 0 || !strings.Contains(query, "%") {
		return query
	}
	var (
		b     strings.Builder
		quote byte
	)
	b.Grow(len(query))
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '%':
			j := i + 1
			for j < len(query) && isWord(query[j]) {
				j++
			}
			if v, ok := values[query[i+1:j]]; ok && j > i+1 {
				b.WriteString(v)
				i = j - 1
				continue
			}
		}
		b.WriteByte(c)
	}
	return b.String()
}

func isWord(c byte) bool {
	return c == '_' || '0' <= c && c <= '9' || 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}
