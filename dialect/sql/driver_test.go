package sql

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/syssam/joli/dialect"
)

// TestOpenDB tests the OpenDB function with different dialects.
func TestOpenDB(t *testing.T) {
	tests := []struct {
		name    string
		dialect string
	}{
		{"SQLite", dialect.SQLite},
		{"SQLite3", dialect.SQLite3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, _, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()

			drv := OpenDB(tt.dialect, db)
			assert.NotNil(t, drv)
			assert.Equal(t, tt.dialect, drv.Dialect())
			assert.Same(t, db, drv.DB())
		})
	}
}

// TestDriverQuery tests query operations.
func TestDriverQuery(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)

	t.Run("simple_query", func(t *testing.T) {
		mock.ExpectQuery("SELECT id, name FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).
				AddRow(int64(1), "Alice").
				AddRow(int64(2), "Bob"))

		cur, err := drv.Query(context.Background(), "SELECT id, name FROM users")
		require.NoError(t, err)
		require.Equal(t, 2, cur.FieldCount())
		assert.Equal(t, "id", cur.FieldName(0))
		assert.Equal(t, "name", cur.FieldName(1))

		var names []any
		for cur.Valid() {
			names = append(names, cur.Field(1))
			require.NoError(t, cur.Next())
		}
		assert.Equal(t, []any{"Alice", "Bob"}, names)
		require.NoError(t, cur.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty_result", func(t *testing.T) {
		mock.ExpectQuery("SELECT id FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id"}))

		cur, err := drv.Query(context.Background(), "SELECT id FROM users")
		require.NoError(t, err)
		assert.False(t, cur.Valid())
		assert.Nil(t, cur.Field(0))
		require.NoError(t, cur.Close())
		require.NoError(t, cur.Close(), "closing twice is allowed")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query_error", func(t *testing.T) {
		expectedErr := errors.New("database error")
		mock.ExpectQuery("SELECT").WillReturnError(expectedErr)

		_, err := drv.Query(context.Background(), "SELECT")
		require.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "dialect/sql: query")
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row_error", func(t *testing.T) {
		rowErr := errors.New("corrupt page")
		mock.ExpectQuery("SELECT id FROM users").
			WillReturnRows(sqlmock.NewRows([]string{"id"}).
				AddRow(int64(1)).
				AddRow(int64(2)).
				RowError(1, rowErr))

		cur, err := drv.Query(context.Background(), "SELECT id FROM users")
		require.NoError(t, err)
		require.True(t, cur.Valid())
		require.ErrorIs(t, cur.Next(), rowErr)
		assert.False(t, cur.Valid())
		require.NoError(t, cur.Close())
	})
}

// TestDriverExec tests execute operations.
func TestDriverExec(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	t.Run("insert_tracks_last_id", func(t *testing.T) {
		mock.ExpectExec(regexp.QuoteMeta("INSERT INTO users (name) VALUES ('test')")).
			WillReturnResult(sqlmock.NewResult(7, 1))

		res, err := drv.Exec(ctx, "INSERT INTO users (name) VALUES ('test')")
		require.NoError(t, err)
		n, err := res.RowsAffected()
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)

		id, err := drv.LastInsertID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("update_keeps_last_id", func(t *testing.T) {
		mock.ExpectExec("UPDATE users SET").WillReturnResult(sqlmock.NewResult(0, 1))

		_, err := drv.Exec(ctx, "UPDATE users SET name = 'x'")
		require.NoError(t, err)
		id, err := drv.LastInsertID(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(7), id)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("exec_error", func(t *testing.T) {
		expectedErr := errors.New("constraint violation")
		mock.ExpectExec("DELETE").WillReturnError(expectedErr)

		_, err := drv.Exec(ctx, "DELETE FROM users")
		require.ErrorIs(t, err, expectedErr)
		assert.Contains(t, err.Error(), "dialect/sql: exec")
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

// TestRawTransaction tests that BEGIN and COMMIT travel as plain statements.
func TestRawTransaction(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)
	ctx := context.Background()

	mock.ExpectExec("BEGIN;").WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectExec("INSERT INTO users").WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec("COMMIT;").WillReturnResult(sqlmock.NewResult(0, 0))

	for _, q := range []string{"BEGIN;", "INSERT INTO users (name) VALUES ('a')", "COMMIT;"} {
		_, err := drv.Exec(ctx, q)
		require.NoError(t, err)
	}
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestNullValues tests handling of NULL values.
func TestNullValues(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)

	mock.ExpectQuery("SELECT").
		WillReturnRows(sqlmock.NewRows([]string{"name", "email"}).
			AddRow("Alice", nil).
			AddRow(nil, "bob@example.com"))

	cur, err := drv.Query(context.Background(), "SELECT name, email FROM users")
	require.NoError(t, err)
	assert.Equal(t, "Alice", cur.Field(0))
	assert.Nil(t, cur.Field(1))
	require.NoError(t, cur.Next())
	assert.Nil(t, cur.Field(0))
	assert.Equal(t, "bob@example.com", cur.Field(1))
	require.NoError(t, cur.Close())
	require.NoError(t, mock.ExpectationsWereMet())
}

// TestContextCancellation tests that context cancellation is respected.
func TestContextCancellation(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)

	ctx, cancel := context.WithCancel(context.Background())
	cancel() // Cancel immediately

	mock.ExpectQuery("SELECT").WillReturnError(context.Canceled)
	_, err = drv.Query(ctx, "SELECT 1")
	assert.Error(t, err)
}

// BenchmarkDriver benchmarks driver operations.
func BenchmarkDriver(b *testing.B) {
	db, mock, err := sqlmock.New()
	if err != nil {
		b.Fatal(err)
	}
	defer db.Close()

	drv := OpenDB(dialect.SQLite, db)

	b.Run("Query_Simple", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			mock.ExpectQuery("SELECT 1").WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(int64(1)))
			cur, err := drv.Query(context.Background(), "SELECT 1")
			if err == nil {
				cur.Close()
			}
		}
	})

	b.Run("Exec_Simple", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			mock.ExpectExec("INSERT").WillReturnResult(sqlmock.NewResult(1, 1))
			_, _ = drv.Exec(context.Background(), "INSERT INTO t VALUES (1)")
		}
	})
}
