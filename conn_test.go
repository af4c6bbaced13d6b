package joli_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/require"

	"github.com/syssam/joli"
	"github.com/syssam/joli/dialect"
	"github.com/syssam/joli/dialect/sql"
)

// fakeConn records every statement it receives and answers queries from
// canned results.
type fakeConn struct {
	calls   []string
	results map[string]fakeRows
	cursors []*fakeCursor
	lastID  int64
	err     error
}

type fakeRows struct {
	cols []string
	rows [][]any
}

func newFakeConn() *fakeConn {
	return &fakeConn{results: make(map[string]fakeRows)}
}

func (c *fakeConn) Exec(_ context.Context, query string) (dialect.Result, error) {
	c.calls = append(c.calls, query)
	if c.err != nil {
		return nil, c.err
	}
	return sqlmock.NewResult(c.lastID, 1), nil
}

func (c *fakeConn) Query(_ context.Context, query string) (dialect.Cursor, error) {
	c.calls = append(c.calls, query)
	if c.err != nil {
		return nil, c.err
	}
	r := c.results[query]
	cur := &fakeCursor{cols: r.cols, rows: r.rows}
	c.cursors = append(c.cursors, cur)
	return cur, nil
}

func (c *fakeConn) LastInsertID(context.Context) (int64, error) {
	return c.lastID, nil
}

// reset forgets the recorded calls.
func (c *fakeConn) reset() {
	c.calls = nil
}

type fakeCursor struct {
	cols   []string
	rows   [][]any
	pos    int
	closed bool
}

func (c *fakeCursor) Valid() bool { return !c.closed && c.pos < len(c.rows) }
func (c *fakeCursor) Next() error { c.pos++; return nil }
func (c *fakeCursor) FieldCount() int { return len(c.cols) }
func (c *fakeCursor) FieldName(i int) string { return c.cols[i] }
func (c *fakeCursor) Field(i int) any { return c.rows[c.pos][i] }
func (c *fakeCursor) Close() error { c.closed = true; return nil }

var usersFields = []joli.Field{
	joli.Column("id", "INTEGER PRIMARY KEY"),
	joli.Column("name", "TEXT"),
}

// newFakeClient returns a client on a recording connection with the
// users model registered.
func newFakeClient() (*joli.Client, *fakeConn, *joli.Model) {
	conn := newFakeConn()
	client := joli.NewClient(conn)
	return client, conn, client.Register("users", usersFields)
}

// newMockClient returns a client on a sqlmock database matching SQL text
// exactly.
func newMockClient(t *testing.T, opts ...joli.Option) (*joli.Client, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return joli.NewClient(sql.OpenDB(dialect.SQLite, db), opts...), mock
}
