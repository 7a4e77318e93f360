package sqlexec

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strings"

	"github.com/google/uuid"

	"github.com/syssam/sqlrepo"
	"github.com/syssam/sqlrepo/compiler/gen"
)

// Args holds the arguments of a method call keyed by parameter name.
// Composite values are maps keyed by field name, lists are slices.
// Pageable and Order parameters take sqlrepo.Pageable and sqlrepo.Order.
type Args map[string]any

// resolve walks the dotted path from root.
func resolve(root any, path string) (any, error) {
	cur := root
	for _, seg := range strings.Split(path, ".") {
		switch v := cur.(type) {
		case nil:
			return nil, nil
		case Args:
			x, ok := v[seg]
			if !ok {
				return nil, fmt.Errorf("no value at %q", path)
			}
			cur = x
		case map[string]any:
			x, ok := v[seg]
			if !ok {
				return nil, fmt.Errorf("no value at %q", path)
			}
			cur = x
		case sqlrepo.Pageable:
			x, err := pageField(v, seg)
			if err != nil {
				return nil, err
			}
			cur = x
		case *sqlrepo.Pageable:
			x, err := pageField(*v, seg)
			if err != nil {
				return nil, err
			}
			cur = x
		default:
			return nil, fmt.Errorf("cannot read %q of %T at %q", seg, cur, path)
		}
	}
	return cur, nil
}

func pageField(p sqlrepo.Pageable, name string) (int, error) {
	switch name {
	case "pageSize":
		return p.PageSize, nil
	case "pageNumber":
		return p.PageNumber, nil
	case "offset":
		return p.Offset(), nil
	}
	return 0, fmt.Errorf("unknown Pageable field %q", name)
}

// bind converts v to the value passed to the driver for p.
func bind(p *gen.QueryParameter, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch p.Kind {
	case gen.KindJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, fmt.Errorf("encode %q: %w", p.Path, err)
		}
		return string(b), nil
	case gen.KindEnum:
		return enumName(v), nil
	}
	if p.Scalar == gen.ScalarUUID {
		return uuidValue(v)
	}
	return v, nil
}

func enumName(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	}
	return fmt.Sprint(v)
}

func uuidValue(v any) (string, error) {
	switch v := v.(type) {
	case uuid.UUID:
		return v.String(), nil
	case string:
		id, err := uuid.Parse(v)
		if err != nil {
			return "", fmt.Errorf("%q: %w", v, err)
		}
		return id.String(), nil
	case []byte:
		id, err := uuid.FromBytes(v)
		if err != nil {
			return "", fmt.Errorf("%q: %w", v, err)
		}
		return id.String(), nil
	}
	return "", fmt.Errorf("unsupported UUID value of type %T", v)
}

// inList renders the list at p as IN-list literals.
func inList(p *gen.QueryParameter, v any) (string, error) {
	items, err := elements(v)
	if err != nil {
		return "", fmt.Errorf("%q: %w", p.Path, err)
	}
	for i, x := range items {
		switch {
		case x == nil:
		case p.Kind == gen.KindEnum:
			items[i] = enumName(x)
		case p.Scalar == gen.ScalarUUID:
			if items[i], err = uuidValue(x); err != nil {
				return "", err
			}
		}
	}
	return sqlrepo.InList(items)
}

// elements returns the items of a slice value.
func elements(v any) ([]any, error) {
	if v == nil {
		return nil, nil
	}
	if items, ok := v.([]any); ok {
		return append([]any(nil), items...), nil
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, fmt.Errorf("expect a list, got %T", v)
	}
	items := make([]any, rv.Len())
	for i := range items {
		items[i] = rv.Index(i).Interface()
	}
	return items, nil
}
