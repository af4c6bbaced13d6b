package joli

import (
	"fmt"
	"reflect"
	"slices"
	"strconv"
	"strings"
)

// Op is the operation of a statement.
type Op uint

// List of statement operations.
const (
	OpUnset Op = iota
	OpSelect
	OpCount
	OpInsert
	OpInsertOrReplace
	OpReplace
	OpUpdate
	OpDelete
)

var opNames = [...]string{
	OpUnset:           "unset",
	OpSelect:          "select",
	OpCount:           "count",
	OpInsert:          "insert",
	OpInsertOrReplace: "insert or replace",
	OpReplace:         "replace",
	OpUpdate:          "update",
	OpDelete:          "delete",
}

// String returns the name of the operation.
func (o Op) String() string {
	if int(o) < len(opNames) {
		return opNames[o]
	}
	return "Op(" + strconv.Itoa(int(o)) + ")"
}

// Is reports whether o is one of the given operations.
func (o Op) Is(ops ...Op) bool {
	return slices.Contains(ops, o)
}

// Statement accumulates the clauses of one SQL operation and compiles
// them into SQL text. The operation is chosen exactly once; the clause
// methods may be called in any order and any number of times.
//
//	n, err := client.Query().
//		Count().
//		From("users").
//		Where("name = ?", "Ann").
//		Total(ctx)
type Statement struct {
	client  *Client
	op      Op
	table   string
	alias   string
	columns []string
	joins   []string
	where   []string
	having  []string
	groupBy []string
	order   []string
	limit   int
	offset  int
	// set holds UPDATE assignments. cols and vals hold the parallel
	// column and literal lists of INSERT-shaped operations.
	set  []string
	cols []string
	vals []string
	err  error
}

// NewStatement returns a statement that is not bound to a client. It can
// be compiled but not executed.
func NewStatement() *Statement {
	return &Statement{}
}

func (s *Statement) setOp(op Op, table string) *Statement {
	if s.op != OpUnset {
		if s.err == nil {
			s.err = NewStatementError("operation already set to %s, cannot change it to %s", s.op, op)
		}
		return s
	}
	s.op = op
	if table != "" {
		s.table = table
	}
	return s
}

// Select sets the operation to SELECT with the given projection.
// An empty projection selects all columns.
func (s *Statement) Select(columns ...string) *Statement {
	if s.op == OpUnset {
		s.columns = append(s.columns, columns...)
	}
	return s.setOp(OpSelect, "")
}

// Count sets the operation to SELECT COUNT(*) AS total.
func (s *Statement) Count() *Statement {
	return s.setOp(OpCount, "")
}

// Delete sets the operation to DELETE.
func (s *Statement) Delete() *Statement {
	return s.setOp(OpDelete, "")
}

// InsertInto sets the operation to INSERT INTO table.
func (s *Statement) InsertInto(table string) *Statement {
	return s.setOp(OpInsert, table)
}

// InsertOrReplaceInto sets the operation to INSERT OR REPLACE INTO table.
func (s *Statement) InsertOrReplaceInto(table string) *Statement {
	return s.setOp(OpInsertOrReplace, table)
}

// ReplaceInto sets the operation to REPLACE INTO table.
func (s *Statement) ReplaceInto(table string) *Statement {
	return s.setOp(OpReplace, table)
}

// Update sets the operation to UPDATE table.
func (s *Statement) Update(table string) *Statement {
	return s.setOp(OpUpdate, table)
}

// From sets the table of the statement.
func (s *Statement) From(table string) *Statement {
	s.table = table
	return s
}

// As sets the name of the model used to hydrate records. It defaults to
// the table name and is not emitted in SQL.
func (s *Statement) As(name string) *Statement {
	s.alias = name
	return s
}

// Where adds a predicate. Each ? in expr is replaced, left to right, by
// the next argument in double quotes. A single slice argument supplies
// one value per placeholder. Placeholders without a matching argument
// are kept. Predicates are joined with AND.
//
// Arguments are not escaped nor typed: Where("id = ?", 5) compiles to
// id = "5", which the engine compares loosely. A nil argument compiles
// to "null".
func (s *Statement) Where(expr string, args ...any) *Statement {
	s.where = append(s.where, substitute(expr, flatten(args)))
	return s
}

// WhereIn adds an "expr IN (...)" predicate with every value single
// quoted verbatim. It is a no-op when no values are given.
func (s *Statement) WhereIn(expr string, values ...any) *Statement {
	values = flatten(values)
	if len(values) == 0 {
		return s
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = "'" + fmt.Sprint(v) + "'"
	}
	s.where = append(s.where, expr+" IN ("+strings.Join(quoted, ", ")+")")
	return s
}

// Having adds a HAVING predicate, substituted like Where.
func (s *Statement) Having(expr string, args ...any) *Statement {
	s.having = append(s.having, substitute(expr, flatten(args)))
	return s
}

// Join adds "LEFT OUTER JOIN table ON table.localKey = foreignKey". A
// localKey that already has a table qualifier is kept as is.
func (s *Statement) Join(table, localKey, foreignKey string) *Statement {
	if !strings.Contains(localKey, ".") {
		localKey = table + "." + localKey
	}
	s.joins = append(s.joins, "LEFT OUTER JOIN "+table+" ON "+localKey+" = "+foreignKey)
	return s
}

// Order appends ORDER BY terms, e.g. "name DESC".
func (s *Statement) Order(terms ...string) *Statement {
	s.order = append(s.order, terms...)
	return s
}

// GroupBy appends GROUP BY columns.
func (s *Statement) GroupBy(columns ...string) *Statement {
	s.groupBy = append(s.groupBy, columns...)
	return s
}

// Limit sets the LIMIT clause. Values below 1 remove it.
func (s *Statement) Limit(n int) *Statement {
	s.limit = n
	return s
}

// Offset sets the OFFSET clause. It is emitted only along with a limit.
func (s *Statement) Offset(n int) *Statement {
	s.offset = n
	return s
}

// Set adds UPDATE assignments in sorted key order. A key containing "="
// is a raw SQL fragment and is emitted unchanged, ignoring its value.
func (s *Statement) Set(values map[string]any) *Statement {
	for _, k := range sortedKeys(values) {
		s.SetColumn(k, values[k])
	}
	return s
}

// SetColumn adds one UPDATE assignment.
func (s *Statement) SetColumn(column string, v any) *Statement {
	if strings.Contains(column, "=") {
		s.set = append(s.set, column)
		return s
	}
	s.set = append(s.set, column+" = "+Literal(v))
	return s
}

// Values adds INSERT columns and values in sorted key order.
func (s *Statement) Values(values map[string]any) *Statement {
	for _, k := range sortedKeys(values) {
		s.Value(k, values[k])
	}
	return s
}

// Value adds one INSERT column and its value.
func (s *Statement) Value(column string, v any) *Statement {
	s.cols = append(s.cols, column)
	s.vals = append(s.vals, Literal(v))
	return s
}

// Op returns the operation of the statement.
func (s *Statement) Op() Op { return s.op }

// Table returns the table of the statement.
func (s *Statement) Table() string { return s.table }

// Compile returns the SQL text of the statement.
func (s *Statement) Compile() (string, error) {
	if s.err != nil {
		return "", s.err
	}
	if s.op == OpUnset {
		return "", NewStatementError("operation type must be one of select/insert/update/delete/replace/count")
	}
	if s.table == "" {
		return "", NewStatementError("%s statement has no table", s.op)
	}
	var b strings.Builder
	switch s.op {
	case OpCount:
		b.WriteString("SELECT COUNT(*) AS total FROM ")
		b.WriteString(s.table)
	case OpDelete:
		b.WriteString("DELETE FROM ")
		b.WriteString(s.table)
	case OpInsert, OpInsertOrReplace, OpReplace:
		if len(s.cols) == 0 {
			return "", NewStatementError("%s statement has no values", s.op)
		}
		switch s.op {
		case OpInsert:
			b.WriteString("INSERT INTO ")
		case OpInsertOrReplace:
			b.WriteString("INSERT OR REPLACE INTO ")
		default:
			b.WriteString("REPLACE INTO ")
		}
		b.WriteString(s.table)
		b.WriteString(" (")
		b.WriteString(strings.Join(s.cols, ", "))
		b.WriteString(") VALUES (")
		b.WriteString(strings.Join(s.vals, ", "))
		b.WriteString(")")
	case OpSelect:
		b.WriteString("SELECT ")
		if len(s.columns) == 0 {
			b.WriteString("*")
		} else {
			b.WriteString(strings.Join(s.columns, ", "))
		}
		b.WriteString(" FROM ")
		b.WriteString(s.table)
		for _, j := range s.joins {
			b.WriteString(" ")
			b.WriteString(j)
		}
	case OpUpdate:
		if len(s.set) == 0 {
			return "", NewStatementError("update statement has no assignments")
		}
		b.WriteString("UPDATE ")
		b.WriteString(s.table)
		b.WriteString(" SET ")
		b.WriteString(strings.Join(s.set, ", "))
	default:
		return "", NewStatementError("unknown operation %s", s.op)
	}
	if len(s.where) > 0 {
		b.WriteString(" WHERE ")
		b.WriteString(strings.Join(s.where, " AND "))
	}
	if len(s.groupBy) > 0 {
		b.WriteString(" GROUP BY ")
		b.WriteString(strings.Join(s.groupBy, ", "))
	}
	if len(s.having) > 0 {
		b.WriteString(" HAVING ")
		b.WriteString(strings.Join(s.having, " AND "))
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ")
		b.WriteString(strings.Join(s.order, ", "))
	}
	if s.limit > 0 {
		b.WriteString(" LIMIT ")
		b.WriteString(strconv.Itoa(s.limit))
		if s.offset > 0 {
			b.WriteString(" OFFSET ")
			b.WriteString(strconv.Itoa(s.offset))
		}
	}
	return b.String(), nil
}

// String returns the compiled SQL text, or an empty string if the
// statement does not compile.
func (s *Statement) String() string {
	query, err := s.Compile()
	if err != nil {
		return ""
	}
	return query
}

// substitute replaces the ? markers of expr with the double quoted args.
func substitute(expr string, args []any) string {
	if len(args) == 0 {
		return expr
	}
	var b strings.Builder
	b.Grow(len(expr))
	for i := 0; i < len(expr); i++ {
		if expr[i] != '?' || len(args) == 0 {
			b.WriteByte(expr[i])
			continue
		}
		b.WriteByte('"')
		if args[0] == nil {
			b.WriteString("null")
		} else {
			b.WriteString(fmt.Sprint(args[0]))
		}
		b.WriteByte('"')
		args = args[1:]
	}
	return b.String()
}

// flatten expands a single slice argument into its elements.
func flatten(args []any) []any {
	if len(args) != 1 {
		return args
	}
	switch args[0].(type) {
	case []byte, string, nil:
		return args
	case []any:
		return args[0].([]any)
	}
	rv := reflect.ValueOf(args[0])
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return args
	}
	out := make([]any, rv.Len())
	for i := range out {
		out[i] = rv.Index(i).Interface()
	}
	return out
}

func sortedKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
