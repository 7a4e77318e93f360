package sqlexec

import (
	"context"
	stdsql "database/sql"
	"fmt"
	"io"
	"log/slog"

	"github.com/syssam/sqlrepo"
	"github.com/syssam/sqlrepo/compiler/gen"
	"github.com/syssam/sqlrepo/dialect"
	"github.com/syssam/sqlrepo/dialect/sql"
)

// Executor runs synthesized methods with dynamic arguments.
type Executor struct {
	drv dialect.ExecQuerier
	log *slog.Logger
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger logs every statement at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(e *Executor) {
		e.log = l
	}
}

// New returns an Executor running statements on drv, which may be a
// driver or a transaction.
func New(drv dialect.ExecQuerier, opts ...Option) *Executor {
	e := &Executor{
		drv: drv,
		log: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Call runs the named method of r.
func (e *Executor) Call(ctx context.Context, r *gen.Repo, method string, args Args) (any, error) {
	m := r.Method(method)
	if m == nil {
		return nil, fmt.Errorf("sqlexec: %s has no method %q", r.Name, method)
	}
	return e.Run(ctx, r.Name.Name+"."+m.Name, m, args)
}

// Run executes m and returns its result:
//
//   - nil for methods returning nothing;
//   - a value, or nil for a nullable result without rows, for single-row methods;
//   - []any for collections and sqlrepo.Page[any] for paginated methods.
//
// Composite values are map[string]any keyed by field name.
func (e *Executor) Run(ctx context.Context, label string, m *gen.QueryMethod, args Args) (any, error) {
	if m.Batch {
		return nil, e.batch(ctx, label, m, args)
	}
	query, argv, err := prepare(m, args)
	if err != nil {
		return nil, fmt.Errorf("sqlexec: %s: %w", label, err)
	}
	e.log.DebugContext(ctx, "running method", "method", label, "query", query)
	if m.Void() {
		var res stdsql.Result
		if err := e.drv.Exec(ctx, query, argv, &res); err != nil {
			return nil, sql.WrapError(label, query, err)
		}
		if m.Optimistic {
			n, err := res.RowsAffected()
			if err != nil {
				return nil, sql.WrapError(label, query, err)
			}
			return nil, sqlrepo.CheckAffected(label, 1, n)
		}
		return nil, nil
	}
	return e.query(ctx, label, m, query, argv, args)
}

// batch runs the statement once per list element. Optimistic batches
// fail unless every element affected one row.
func (e *Executor) batch(ctx context.Context, label string, m *gen.QueryMethod, args Args) error {
	if len(m.MethodParams) != 1 {
		return fmt.Errorf("sqlexec: %s: batch method with %d parameters", label, len(m.MethodParams))
	}
	items, err := elements(args[m.MethodParams[0].Name])
	if err != nil {
		return fmt.Errorf("sqlexec: %s: %w", label, err)
	}
	var affected int64
	for _, item := range items {
		query, argv, err := prepare(m, item)
		if err != nil {
			return fmt.Errorf("sqlexec: %s: %w", label, err)
		}
		var res stdsql.Result
		if err := e.drv.Exec(ctx, query, argv, &res); err != nil {
			return sql.WrapError(label, query, err)
		}
		n, err := res.RowsAffected()
		if err != nil {
			return sql.WrapError(label, query, err)
		}
		affected += n
	}
	e.log.DebugContext(ctx, "ran batch", "method", label, "items", len(items), "affected", affected)
	if m.Optimistic {
		return sqlrepo.CheckAffected(label, int64(len(items)), affected)
	}
	return nil
}

func (e *Executor) query(ctx context.Context, label string, m *gen.QueryMethod, query string, argv []any, args Args) (any, error) {
	rows := &sql.Rows{}
	if err := e.drv.Query(ctx, query, argv, rows); err != nil {
		return nil, sql.WrapError(label, query, err)
	}
	defer rows.Close()
	columns, err := rows.Columns()
	if err != nil {
		return nil, sql.WrapError(label, query, err)
	}
	var (
		index = columnIndex(columns)
		many  = m.Collection || m.Pagination != nil
		out   []any
	)
	for rows.Next() {
		if !many && len(out) == 1 {
			return nil, sqlrepo.NewNotSingularError(label)
		}
		r, err := scanRow(rows, len(columns), index)
		if err != nil {
			return nil, sql.WrapError(label, query, err)
		}
		v, err := build(m.Constructor, r)
		if err != nil {
			return nil, fmt.Errorf("sqlexec: %s: %w", label, err)
		}
		out = append(out, v)
	}
	if err := rows.Err(); err != nil {
		return nil, sql.WrapError(label, query, err)
	}
	switch {
	case m.Pagination != nil:
		p, err := pageable(args[m.Pagination.Param])
		if err != nil {
			return nil, fmt.Errorf("sqlexec: %s: %w", label, err)
		}
		return sqlrepo.NewPage(p, out), nil
	case m.Collection:
		if out == nil {
			out = []any{}
		}
		return out, nil
	case len(out) == 0:
		if m.Nullable() {
			return nil, nil
		}
		return nil, sqlrepo.NewNotFoundError(label)
	}
	return out[0], nil
}

// prepare substitutes the IN lists and the order of m and binds its
// positional parameters, resolving paths from root.
func prepare(m *gen.QueryMethod, root any) (string, []any, error) {
	tokens := make(map[string]string)
	for _, p := range m.InLists() {
		v, err := resolve(root, p.Path)
		if err != nil {
			return "", nil, err
		}
		if tokens[p.Path], err = inList(p, v); err != nil {
			return "", nil, err
		}
	}
	if m.OrderParam != "" {
		v, err := resolve(root, m.OrderParam)
		if err != nil {
			return "", nil, err
		}
		order, ok := v.(sqlrepo.Order)
		if !ok && v != nil {
			return "", nil, fmt.Errorf("expect sqlrepo.Order for %q, got %T", m.OrderParam, v)
		}
		tokens["orderBy"] = order.SQL()
	}
	positional := m.Positional()
	argv := make([]any, len(positional))
	for i, p := range positional {
		v, err := resolve(root, p.Path)
		if err != nil {
			return "", nil, err
		}
		if argv[i], err = bind(p, v); err != nil {
			return "", nil, err
		}
	}
	return sqlrepo.Expand(m.Query, tokens), argv, nil
}

func pageable(v any) (sqlrepo.Pageable, error) {
	switch v := v.(type) {
	case sqlrepo.Pageable:
		return v, nil
	case *sqlrepo.Pageable:
		if v != nil {
			return *v, nil
		}
	}
	return sqlrepo.Pageable{}, fmt.Errorf("expect sqlrepo.Pageable, got %T", v)
}
