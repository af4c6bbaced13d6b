// Package sql implements the dialect.Connection contract on top of
// database/sql.
//
// # Opening a Connection
//
// For SQLite, OpenSQLite applies the pragmas found in a Config and pins the
// pool to a single connection:
//
//	drv, err := sql.OpenSQLite(sql.Config{Path: "app.db", BusyTimeout: 5})
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//	client := joli.NewClient(drv)
//
// Any other database/sql driver can be wrapped with Open or OpenDB.
//
// # Cursors
//
// Query returns a *Rows positioned on the first row. Rows reads the
// current row eagerly, so Valid never blocks.
//
// # Instrumentation
//
// StatsDriver and DebugDriver wrap any dialect.Connection:
//
//	conn := sql.NewDebugDriver(sql.NewStatsDriver(drv, sql.WithSlowQueryLog()))
package sql
