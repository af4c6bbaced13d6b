package sql

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/joli/dialect"
)

func TestStatsDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var slow []string
	drv := NewStatsDriver(OpenDB(dialect.SQLite, db),
		WithSlowThreshold(-1),
		WithSlowQueryHook(func(_ context.Context, query string, _ time.Duration) {
			slow = append(slow, query)
		}),
	)
	ctx := context.Background()

	mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
	mock.ExpectExec("DELETE FROM users").WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec("DROP TABLE").WillReturnError(errors.New("no such table"))

	cur, err := drv.Query(ctx, "SELECT 1")
	require.NoError(t, err)
	require.NoError(t, cur.Close())
	_, err = drv.Exec(ctx, "DELETE FROM users")
	require.NoError(t, err)
	_, err = drv.Exec(ctx, "DROP TABLE users")
	require.Error(t, err)
	require.NoError(t, mock.ExpectationsWereMet())

	s := drv.QueryStats().Stats()
	assert.Equal(t, int64(1), s.TotalQueries)
	assert.Equal(t, int64(2), s.TotalExecs)
	assert.Equal(t, int64(1), s.Errors)
	assert.Equal(t, int64(3), s.SlowQueries)
	assert.Equal(t, []string{"SELECT 1", "DELETE FROM users", "DROP TABLE users"}, slow)
	assert.Contains(t, s.String(), "queries=1 execs=2")

	drv.QueryStats().Reset()
	assert.Equal(t, StatsSnapshot{}, drv.QueryStats().Stats())
}

func TestStatsDriverThreshold(t *testing.T) {
	drv := NewStatsDriver(nil)
	assert.Equal(t, 100*time.Millisecond, drv.SlowThreshold())
	drv.SetSlowThreshold(time.Second)
	assert.Equal(t, time.Second, drv.SlowThreshold())
}

func TestStatsSnapshotAvg(t *testing.T) {
	assert.Zero(t, StatsSnapshot{}.AvgQueryDuration())
	s := StatsSnapshot{TotalQueries: 1, TotalExecs: 3, TotalDuration: 8 * time.Millisecond}
	assert.Equal(t, 2*time.Millisecond, s.AvgQueryDuration())
}

func TestDebugDriver(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	drv := NewDebugDriver(OpenDB(dialect.SQLite, db), DebugWithLogger(logger))
	ctx := context.Background()

	mock.ExpectExec("BEGIN;").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery("SELECT \\* FROM users").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = drv.Exec(ctx, "BEGIN;")
	require.NoError(t, err)
	cur, err := drv.Query(ctx, "SELECT * FROM users")
	require.NoError(t, err)
	require.NoError(t, cur.Close())
	require.NoError(t, mock.ExpectationsWereMet())

	out := buf.String()
	assert.Contains(t, out, "exec: BEGIN;")
	assert.Contains(t, out, "query: SELECT * FROM users")
}

func TestDebugDriverCustomLog(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	var lines []string
	drv := NewDebugDriver(OpenDB(dialect.SQLite, db), DebugWithLog(func(_ context.Context, v ...any) {
		for _, s := range v {
			lines = append(lines, s.(string))
		}
	}))
	mock.ExpectExec("COMMIT;").WillReturnResult(sqlmock.NewResult(0, 0))
	_, err = drv.Exec(context.Background(), "COMMIT;")
	require.NoError(t, err)
	assert.Equal(t, []string{"exec: COMMIT;"}, lines)
}
