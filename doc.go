// Package joli is a small active-record layer over an embedded SQL
// engine.
//
// A Client owns a dialect.Connection and a registry of models. Statements
// are built fluently, compiled to SQL text with every value embedded as a
// literal, and executed on the connection. Select results are hydrated
// either as plain rows or as change-tracked records of the registered
// model.
//
//	drv, err := sql.OpenSQLite(sql.DefaultConfig())
//	if err != nil {
//		return err
//	}
//	client := joli.NewClient(drv)
//	users := client.Register("users", []joli.Field{
//		joli.Column("id", "INTEGER PRIMARY KEY"),
//		joli.Column("name", "TEXT"),
//	})
//	if err := client.Initialize(ctx); err != nil {
//		return err
//	}
//	ann := users.NewRecord(map[string]any{"name": "Ann"})
//	if _, err := ann.Save(ctx); err != nil {
//		return err
//	}
//
// Values are escaped by Literal only. Never build statements from
// untrusted input.
package joli
