package sql

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/syssam/sqlrepo/dialect"
)

// DefaultSlowThreshold is the duration above which a statement is
// reported as slow.
const DefaultSlowThreshold = 100 * time.Millisecond

// Stats is a snapshot of the statements run through a StatsDriver.
type Stats struct {
	Queries  int64
	Execs    int64
	Errors   int64
	Slow     int64
	Duration time.Duration
}

// Avg returns the mean statement duration.
func (s Stats) Avg() time.Duration {
	n := s.Queries + s.Execs
	if n == 0 {
		return 0
	}
	return s.Duration / time.Duration(n)
}

// LogValue implements slog.LogValuer.
func (s Stats) LogValue() slog.Value {
	return slog.GroupValue(
		slog.Int64("queries", s.Queries),
		slog.Int64("execs", s.Execs),
		slog.Int64("errors", s.Errors),
		slog.Int64("slow", s.Slow),
		slog.Duration("avg", s.Avg()),
	)
}

// StatsDriver counts the statements run by repositories. Every
// statement is logged at debug level; statements above the slow
// threshold are logged at warn level instead.
type StatsDriver struct {
	dialect.Driver
	threshold time.Duration
	logger    *slog.Logger

	queries, execs, errs, slow, nanos atomic.Int64
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the slow statement threshold.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.threshold = d
	}
}

// WithStatsLogger sets the logger of statements. It defaults to
// slog.Default.
func WithStatsLogger(l *slog.Logger) StatsOption {
	return func(s *StatsDriver) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewStatsDriver wraps drv:
//
//	drv := sql.NewStatsDriver(base, sql.WithStatsLogger(logger))
//	db := shop.NewShopDB(drv)
//	...
//	logger.Info("done", "stats", drv.Stats())
func NewStatsDriver(drv dialect.Driver, opts ...StatsOption) *StatsDriver {
	d := &StatsDriver{
		Driver:    drv,
		threshold: DefaultSlowThreshold,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Query implements dialect.ExecQuerier.
func (d *StatsDriver) Query(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.queries, "query", query, func() error {
		return d.Driver.Query(ctx, query, args, v)
	})
}

// Exec implements dialect.ExecQuerier.
func (d *StatsDriver) Exec(ctx context.Context, query string, args, v any) error {
	return d.observe(ctx, &d.execs, "exec", query, func() error {
		return d.Driver.Exec(ctx, query, args, v)
	})
}

// Tx starts a transaction whose statements are counted by d.
func (d *StatsDriver) Tx(ctx context.Context) (dialect.Tx, error) {
	tx, err := d.Driver.Tx(ctx)
	if err != nil {
		return nil, err
	}
	d.logger.DebugContext(ctx, "begin")
	return &statsTx{Tx: tx, d: d, ctx: ctx}, nil
}

// Stats returns the current counters.
func (d *StatsDriver) Stats() Stats {
	return Stats{
		Queries:  d.queries.Load(),
		Execs:    d.execs.Load(),
		Errors:   d.errs.Load(),
		Slow:     d.slow.Load(),
		Duration: time.Duration(d.nanos.Load()),
	}
}

// Reset zeroes the counters.
func (d *StatsDriver) Reset() {
	for _, c := range []*atomic.Int64{&d.queries, &d.execs, &d.errs, &d.slow, &d.nanos} {
		c.Store(0)
	}
}

func (d *StatsDriver) observe(ctx context.Context, counter *atomic.Int64, kind, query string, run func() error) error {
	start := time.Now()
	err := run()
	elapsed := time.Since(start)
	counter.Add(1)
	d.nanos.Add(int64(elapsed))
	attrs := []slog.Attr{slog.String("query", query), slog.Duration("duration", elapsed)}
	if err != nil {
		d.errs.Add(1)
		attrs = append(attrs, slog.Any("error", err))
	}
	if elapsed > d.threshold {
		d.slow.Add(1)
		d.logger.LogAttrs(ctx, slog.LevelWarn, "slow "+kind, attrs...)
		return err
	}
	d.logger.LogAttrs(ctx, slog.LevelDebug, kind, attrs...)
	return err
}

type statsTx struct {
	dialect.Tx
	d   *StatsDriver
	ctx context.Context
}

func (tx *statsTx) Query(ctx context.Context, query string, args, v any) error {
	return tx.d.observe(ctx, &tx.d.queries, "query", query, func() error {
		return tx.Tx.Query(ctx, query, args, v)
	})
}

func (tx *statsTx) Exec(ctx context.Context, query string, args, v any) error {
	return tx.d.observe(ctx, &tx.d.execs, "exec", query, func() error {
		return tx.Tx.Exec(ctx, query, args, v)
	})
}

func (tx *statsTx) Commit() error {
	tx.d.logger.DebugContext(tx.ctx, "commit")
	return tx.Tx.Commit()
}

func (tx *statsTx) Rollback() error {
	tx.d.logger.DebugContext(tx.ctx, "rollback")
	return tx.Tx.Rollback()
}

var _ dialect.Driver = (*StatsDriver)(nil)
