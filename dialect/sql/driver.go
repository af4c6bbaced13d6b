package sql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/syssam/joli/dialect"
)

// Driver is a dialect.Connection implementation for SQL based databases.
type Driver struct {
	ExecQuerier
	dialect      string
	lastInsertID int64
}

// NewDriver creates a new Driver with the given ExecQuerier and dialect.
func NewDriver(dialect string, eq ExecQuerier) *Driver {
	return &Driver{dialect: dialect, ExecQuerier: eq}
}

// Open wraps the database/sql.Open method and returns a Driver.
//
// The pool is limited to a single connection: raw BEGIN and COMMIT
// statements only scope a transaction when every statement runs on the
// same session.
func Open(dialect, source string) (*Driver, error) {
	db, err := sql.Open(dialect, source)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	return OpenDB(dialect, db), nil
}

// OpenDB wraps the given database/sql.DB with a Driver. Callers that use
// joli transactions must limit db to one open connection.
func OpenDB(dialect string, db *sql.DB) *Driver {
	return NewDriver(dialect, db)
}

// DB returns the underlying *sql.DB instance.
func (d *Driver) DB() *sql.DB {
	return d.ExecQuerier.(*sql.DB)
}

// Dialect returns the dialect name of the driver.
func (d *Driver) Dialect() string {
	// If the underlying driver is wrapped with a telemetry driver.
	for _, name := range []string{dialect.SQLite3, dialect.SQLite} {
		if strings.HasPrefix(d.dialect, name) {
			return name
		}
	}
	return d.dialect
}

// Close closes the underlying connection.
func (d *Driver) Close() error {
	if db, ok := d.ExecQuerier.(*sql.DB); ok {
		return db.Close()
	}
	return nil
}

// ExecQuerier wraps the standard Exec and Query methods.
type ExecQuerier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Exec implements the dialect.Connection method.
func (d *Driver) Exec(ctx context.Context, query string) (dialect.Result, error) {
	res, err := d.ExecContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: exec: %w", err)
	}
	if id, err := res.LastInsertId(); err == nil && id > 0 {
		d.lastInsertID = id
	}
	return res, nil
}

// Query implements the dialect.Connection method.
func (d *Driver) Query(ctx context.Context, query string) (dialect.Cursor, error) {
	rows, err := d.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	cur, err := NewRows(rows)
	if err != nil {
		return nil, fmt.Errorf("dialect/sql: query: %w", err)
	}
	return cur, nil
}

// LastInsertID implements the dialect.Connection method.
func (d *Driver) LastInsertID(context.Context) (int64, error) {
	return d.lastInsertID, nil
}

var _ dialect.Connection = (*Driver)(nil)

// ColumnScanner is the interface that wraps the standard
// sql.Rows methods used for scanning database rows.
type ColumnScanner interface {
	Close() error
	Columns() ([]string, error)
	Err() error
	Next() bool
	Scan(dest ...any) error
}

// Rows adapts a ColumnScanner to the dialect.Cursor contract. The current
// row is read eagerly so that Valid answers without touching the driver.
type Rows struct {
	ColumnScanner
	columns []string
	values  []any
	valid   bool
	closed  bool
}

// NewRows wraps rs and positions it on its first row. rs is closed when an
// error is returned.
func NewRows(rs ColumnScanner) (*Rows, error) {
	columns, err := rs.Columns()
	if err != nil {
		return nil, errors.Join(err, rs.Close())
	}
	r := &Rows{ColumnScanner: rs, columns: columns}
	if err := r.Next(); err != nil {
		return nil, errors.Join(err, r.Close())
	}
	return r, nil
}

// Valid implements the dialect.Cursor method.
func (r *Rows) Valid() bool { return r.valid }

// Next implements the dialect.Cursor method.
func (r *Rows) Next() error {
	if r.closed || !r.ColumnScanner.Next() {
		r.valid, r.values = false, nil
		if r.closed {
			return nil
		}
		return r.Err()
	}
	values := make([]any, len(r.columns))
	dest := make([]any, len(values))
	for i := range values {
		dest[i] = &values[i]
	}
	if err := r.Scan(dest...); err != nil {
		r.valid, r.values = false, nil
		return err
	}
	r.valid, r.values = true, values
	return nil
}

// FieldCount implements the dialect.Cursor method.
func (r *Rows) FieldCount() int { return len(r.columns) }

// FieldName implements the dialect.Cursor method.
func (r *Rows) FieldName(i int) string { return r.columns[i] }

// Field implements the dialect.Cursor method.
func (r *Rows) Field(i int) any {
	if !r.valid {
		return nil
	}
	return r.values[i]
}

// Close implements the dialect.Cursor method.
func (r *Rows) Close() error {
	if r.closed {
		return nil
	}
	r.closed, r.valid = true, false
	return r.ColumnScanner.Close()
}

var _ dialect.Cursor = (*Rows)(nil)
