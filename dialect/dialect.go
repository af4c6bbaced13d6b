package dialect

import "context"

// Dialect names understood by dialect/sql.
const (
	SQLite  = "sqlite"  // modernc.org/sqlite
	SQLite3 = "sqlite3" // cgo based drivers
)

// Connection executes raw SQL text against the embedded engine.
//
// Values are always embedded in the SQL text; no bound parameters are
// passed. Implementations are not required to be safe for concurrent use.
type Connection interface {
	// Exec runs a statement that does not return rows.
	Exec(ctx context.Context, query string) (Result, error)
	// Query runs a statement that returns rows. The returned cursor is
	// positioned on the first row, if any.
	Query(ctx context.Context, query string) (Cursor, error)
	// LastInsertID returns the row identifier generated by the most
	// recent successful insert on this connection.
	LastInsertID(ctx context.Context) (int64, error)
}

// Result is the outcome of a mutation. It has the same method set as
// database/sql.Result.
type Result interface {
	LastInsertId() (int64, error)
	RowsAffected() (int64, error)
}

// Cursor iterates over the rows of a query result.
type Cursor interface {
	// Valid reports whether the cursor is positioned on a row.
	Valid() bool
	// Next advances to the following row.
	Next() error
	// FieldCount returns the number of columns of the result.
	FieldCount() int
	// FieldName returns the name of the i-th column.
	FieldName(i int) string
	// Field returns the value of the i-th column of the current row.
	Field(i int) any
	// Close releases the cursor. It is safe to call more than once.
	Close() error
}
