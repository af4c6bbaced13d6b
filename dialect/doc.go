// Package dialect provides the connection contract consumed by joli.
//
// The joli core never opens, configures or closes a database. It only
// speaks raw SQL text through the Connection interface defined here, and
// reads result rows through a Cursor.
//
// # Dialect Constants
//
// Each dialect is identified by a constant string:
//
//	dialect.SQLite = "sqlite"
//	dialect.SQLite3 = "sqlite3"
//
// # Connection Interface
//
//	type Connection interface {
//	    Exec(ctx context.Context, query string) (Result, error)
//	    Query(ctx context.Context, query string) (Cursor, error)
//	    LastInsertID(ctx context.Context) (int64, error)
//	}
//
// # Cursor Interface
//
// A Cursor is positioned on its first row as soon as it is returned:
//
//	for cur.Valid() {
//	    for i := 0; i < cur.FieldCount(); i++ {
//	        fmt.Println(cur.FieldName(i), cur.Field(i))
//	    }
//	    if err := cur.Next(); err != nil {
//	        return err
//	    }
//	}
//	cur.Close()
//
// # Sub-packages
//
//   - dialect/sql: Connection implementation over database/sql
//   - dialect/sql/schema: table descriptors and DDL text
package dialect
