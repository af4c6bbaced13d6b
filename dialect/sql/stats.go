package sql

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/syssam/joli/dialect"
)

// QueryStats counts the statements a StatsDriver forwarded. Selects and
// counts go through Query; inserts, updates, deletes, DDL and the
// BEGIN;/COMMIT; pair go through Exec.
type QueryStats struct {
	TotalQueries  atomic.Int64 // selects and counts
	TotalExecs    atomic.Int64 // everything sent through Exec
	TotalDuration atomic.Int64 // nanoseconds
	SlowQueries   atomic.Int64
	Errors        atomic.Int64
}

// Stats returns a copy of the counters.
func (s *QueryStats) Stats() StatsSnapshot {
	return StatsSnapshot{
		TotalQueries:  s.TotalQueries.Load(),
		TotalExecs:    s.TotalExecs.Load(),
		TotalDuration: time.Duration(s.TotalDuration.Load()),
		SlowQueries:   s.SlowQueries.Load(),
		Errors:        s.Errors.Load(),
	}
}

// Reset zeroes the counters.
func (s *QueryStats) Reset() {
	s.TotalQueries.Store(0)
	s.TotalExecs.Store(0)
	s.TotalDuration.Store(0)
	s.SlowQueries.Store(0)
	s.Errors.Store(0)
}

// StatsSnapshot is a copy of QueryStats taken at one instant.
type StatsSnapshot struct {
	TotalQueries  int64
	TotalExecs    int64
	TotalDuration time.Duration
	SlowQueries   int64
	Errors        int64
}

// AvgQueryDuration is TotalDuration spread over every statement, or zero.
func (s StatsSnapshot) AvgQueryDuration() time.Duration {
	total := s.TotalQueries + s.TotalExecs
	if total == 0 {
		return 0
	}
	return s.TotalDuration / time.Duration(total)
}

func (s StatsSnapshot) String() string {
	return fmt.Sprintf(
		"queries=%d execs=%d duration=%s avg=%s slow=%d errors=%d",
		s.TotalQueries, s.TotalExecs, s.TotalDuration, s.AvgQueryDuration(),
		s.SlowQueries, s.Errors,
	)
}

// SlowQueryHook receives each statement that ran longer than the slow
// threshold, with its SQL text.
type SlowQueryHook func(ctx context.Context, query string, duration time.Duration)

// StatsDriver is a dialect.Connection that times every statement of the
// wrapped connection. LastInsertID passes through uncounted.
type StatsDriver struct {
	dialect.Connection
	stats         *QueryStats
	slowThreshold time.Duration
	slowHook      SlowQueryHook
	mu            sync.RWMutex
}

// StatsOption configures a StatsDriver.
type StatsOption func(*StatsDriver)

// WithSlowThreshold sets the duration above which a statement is slow.
// The default is 100ms.
func WithSlowThreshold(d time.Duration) StatsOption {
	return func(s *StatsDriver) {
		s.slowThreshold = d
	}
}

// WithSlowQueryHook sets the hook called for slow statements.
func WithSlowQueryHook(hook SlowQueryHook) StatsOption {
	return func(s *StatsDriver) {
		s.slowHook = hook
	}
}

// WithSlowQueryLog warns about slow statements on the default slog logger.
func WithSlowQueryLog() StatsOption {
	return WithSlowQueryHook(func(ctx context.Context, query string, duration time.Duration) {
		slog.WarnContext(ctx, "joli: slow statement", "duration", duration, "sql", query)
	})
}

// NewStatsDriver returns conn wrapped in a StatsDriver:
//
//	stats := sql.NewStatsDriver(drv, sql.WithSlowQueryLog())
//	client := joli.NewClient(stats)
//	...
//	fmt.Println(stats.QueryStats().Stats())
func NewStatsDriver(conn dialect.Connection, opts ...StatsOption) *StatsDriver {
	s := &StatsDriver{
		Connection:    conn,
		stats:         &QueryStats{},
		slowThreshold: 100 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// QueryStats returns the live counters.
func (d *StatsDriver) QueryStats() *QueryStats {
	return d.stats
}

// SlowThreshold returns the slow statement threshold.
func (d *StatsDriver) SlowThreshold() time.Duration {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.slowThreshold
}

// SetSlowThreshold changes the slow statement threshold. It is safe to
// call while statements run.
func (d *StatsDriver) SetSlowThreshold(threshold time.Duration) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.slowThreshold = threshold
}

// Query runs a select or count on the wrapped connection.
func (d *StatsDriver) Query(ctx context.Context, query string) (dialect.Cursor, error) {
	start := time.Now()
	cur, err := d.Connection.Query(ctx, query)
	d.record(ctx, query, start, err, true)
	return cur, err
}

// Exec runs a mutation, DDL or transaction statement on the wrapped
// connection.
func (d *StatsDriver) Exec(ctx context.Context, query string) (dialect.Result, error) {
	start := time.Now()
	res, err := d.Connection.Exec(ctx, query)
	d.record(ctx, query, start, err, false)
	return res, err
}

func (d *StatsDriver) record(ctx context.Context, query string, start time.Time, err error, isQuery bool) {
	duration := time.Since(start)
	if isQuery {
		d.stats.TotalQueries.Add(1)
	} else {
		d.stats.TotalExecs.Add(1)
	}
	d.stats.TotalDuration.Add(int64(duration))

	if err != nil {
		d.stats.Errors.Add(1)
	}

	d.mu.RLock()
	threshold := d.slowThreshold
	hook := d.slowHook
	d.mu.RUnlock()

	if duration > threshold {
		d.stats.SlowQueries.Add(1)
		if hook != nil {
			hook(ctx, query, duration)
		}
	}
}

// DebugDriver is a dialect.Connection that logs the SQL text of every
// statement before running it, prefixed "query: " or "exec: ".
type DebugDriver struct {
	dialect.Connection
	log func(context.Context, ...any)
}

// DebugOption configures a DebugDriver.
type DebugOption func(*DebugDriver)

// DebugWithLog sends each line to logFunc.
func DebugWithLog(logFunc func(context.Context, ...any)) DebugOption {
	return func(d *DebugDriver) {
		d.log = logFunc
	}
}

// DebugWithLogger logs statements to l at debug level.
func DebugWithLogger(l *slog.Logger) DebugOption {
	return DebugWithLog(func(ctx context.Context, v ...any) {
		l.DebugContext(ctx, fmt.Sprint(v...))
	})
}

// NewDebugDriver returns conn wrapped in a DebugDriver. Lines go to the
// default slog logger at info level unless an option says otherwise.
func NewDebugDriver(conn dialect.Connection, opts ...DebugOption) *DebugDriver {
	d := &DebugDriver{
		Connection: conn,
		log: func(_ context.Context, v ...any) {
			slog.Info(fmt.Sprint(v...))
		},
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

func (d *DebugDriver) Query(ctx context.Context, query string) (dialect.Cursor, error) {
	d.log(ctx, fmt.Sprintf("query: %s", query))
	return d.Connection.Query(ctx, query)
}

func (d *DebugDriver) Exec(ctx context.Context, query string) (dialect.Result, error) {
	d.log(ctx, fmt.Sprintf("exec: %s", query))
	return d.Connection.Exec(ctx, query)
}

var (
	_ dialect.Connection = (*StatsDriver)(nil)
	_ dialect.Connection = (*DebugDriver)(nil)
)

// OpenWithStats is OpenSQLite followed by NewStatsDriver. It returns the
// driver and its counters.
func OpenWithStats(cfg Config, opts ...StatsOption) (*StatsDriver, *QueryStats, error) {
	drv, err := OpenSQLite(cfg)
	if err != nil {
		return nil, nil, err
	}
	statsDriver := NewStatsDriver(drv, opts...)
	return statsDriver, statsDriver.QueryStats(), nil
}
