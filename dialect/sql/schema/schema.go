// Package schema describes tables as declared by joli models and renders
// the DDL statements used to create and drop them.
package schema

import (
	"regexp"
	"strings"
)

// Column is a column name with its declared type. The type is emitted
// verbatim in CREATE TABLE and may carry constraints, e.g.
// "INTEGER PRIMARY KEY AUTOINCREMENT".
type Column struct {
	Name string
	Type string
}

// Table is a table name with its columns in declaration order.
type Table struct {
	Name    string
	Columns []*Column
}

// NewTable returns a new table with the given name.
func NewTable(name string) *Table {
	return &Table{Name: name}
}

// AddColumn appends a column to the table.
func (t *Table) AddColumn(name, typ string) *Table {
	t.Columns = append(t.Columns, &Column{Name: name, Type: typ})
	return t
}

// Column returns the column with the given name.
func (t *Table) Column(name string) (*Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// CreateSQL returns the CREATE TABLE IF NOT EXISTS statement of the table.
func (t *Table) CreateSQL() string {
	defs := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		defs[i] = strings.TrimSpace(c.Name + " " + c.Type)
	}
	return "CREATE TABLE IF NOT EXISTS " + t.Name + " (" + strings.Join(defs, ", ") + ")"
}

// DropSQL returns the DROP TABLE IF EXISTS statement of the table.
func (t *Table) DropSQL() string {
	return DropTable(t.Name)
}

// DropTable returns the DROP TABLE IF EXISTS statement for name.
func DropTable(name string) string {
	return "DROP TABLE IF EXISTS " + name
}

// validIdentifierRe validates SQL identifiers (alphanumeric, underscores, dots for schema.name)
var validIdentifierRe = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_.]*$`)

// IsValidIdentifier checks if the string is a valid SQL identifier.
func IsValidIdentifier(s string) bool {
	return s != "" && len(s) <= 128 && validIdentifierRe.MatchString(s)
}
