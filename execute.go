package joli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/syssam/joli/dialect"
)

// HydrationMode selects how select results are returned.
type HydrationMode string

const (
	// HydrateObject turns each row into a Record of the model registered
	// under the statement alias or table. It is the default mode.
	HydrateObject HydrationMode = "object"
	// HydrateArray returns each row as a plain Row.
	HydrateArray HydrationMode = "array"
)

// Row maps the column names of a result row to their values.
type Row map[string]any

// Result is the outcome of an executed statement. Which fields are set
// depends on the operation.
type Result struct {
	Op Op
	// Total is the row count of a count statement.
	Total int64
	// LastInsertID is the identifier generated by an insert.
	LastInsertID int64
	// RowsAffected is reported by update, delete and replace.
	RowsAffected int64
	// Rows holds select results hydrated with HydrateArray.
	Rows []Row
	// Records holds select results hydrated with HydrateObject.
	Records []*Record
}

// Execute compiles the statement and runs it on the client connection.
// The optional mode applies to select statements and defaults to
// HydrateObject.
func (s *Statement) Execute(ctx context.Context, mode ...HydrationMode) (*Result, error) {
	if s.client == nil {
		return nil, NewStatementError("statement is not bound to a client")
	}
	query, err := s.Compile()
	if err != nil {
		return nil, err
	}
	m := HydrateObject
	if len(mode) > 0 && mode[0] != "" {
		m = mode[0]
	}
	var model *Model
	if s.op == OpSelect {
		if model, err = s.resolve(m); err != nil {
			return nil, err
		}
	}
	conn := s.client.conn
	s.client.log.DebugContext(ctx, "joli: execute", "op", s.op.String(), "query", query)
	res := &Result{Op: s.op}
	switch s.op {
	case OpCount:
		cur, err := conn.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		if res.Total, err = readTotal(cur); err != nil {
			return nil, err
		}
	case OpInsert, OpInsertOrReplace:
		if _, err := conn.Exec(ctx, query); err != nil {
			return nil, err
		}
		if res.LastInsertID, err = conn.LastInsertID(ctx); err != nil {
			return nil, err
		}
	case OpSelect:
		cur, err := conn.Query(ctx, query)
		if err != nil {
			return nil, err
		}
		rows, err := hydrate(cur)
		if err != nil {
			return nil, err
		}
		if m == HydrateArray {
			res.Rows = rows
			break
		}
		res.Records = make([]*Record, len(rows))
		for i, row := range rows {
			res.Records[i] = model.fromRow(row)
		}
	default:
		r, err := conn.Exec(ctx, query)
		if err != nil {
			return nil, err
		}
		if res.RowsAffected, err = r.RowsAffected(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// resolve validates the hydration mode and, for object hydration,
// returns the target model.
func (s *Statement) resolve(mode HydrationMode) (*Model, error) {
	switch mode {
	case HydrateArray:
		return nil, nil
	case HydrateObject:
		name := s.alias
		if name == "" {
			name = s.table
		}
		model, ok := s.client.registry.Get(name)
		if !ok {
			return nil, &HydrationError{Mode: mode, Table: name, msg: fmt.Sprintf("no model registered for %q", name)}
		}
		return model, nil
	default:
		return nil, &HydrationError{Mode: mode, msg: fmt.Sprintf("unknown hydration mode %q", mode)}
	}
}

// Exec executes the statement. It is a shorthand for Execute(ctx).
func (s *Statement) Exec(ctx context.Context) (*Result, error) {
	return s.Execute(ctx)
}

// All executes a select statement and returns its records.
func (s *Statement) All(ctx context.Context) ([]*Record, error) {
	if s.op != OpSelect {
		return nil, NewStatementError("All requires a select statement, got %s", s.op)
	}
	res, err := s.Execute(ctx, HydrateObject)
	if err != nil {
		return nil, err
	}
	return res.Records, nil
}

// Rows executes a select statement and returns its rows.
func (s *Statement) Rows(ctx context.Context) ([]Row, error) {
	if s.op != OpSelect {
		return nil, NewStatementError("Rows requires a select statement, got %s", s.op)
	}
	res, err := s.Execute(ctx, HydrateArray)
	if err != nil {
		return nil, err
	}
	return res.Rows, nil
}

// Total executes a count statement and returns the count.
func (s *Statement) Total(ctx context.Context) (int64, error) {
	if s.op != OpCount {
		return 0, NewStatementError("Total requires a count statement, got %s", s.op)
	}
	res, err := s.Execute(ctx)
	if err != nil {
		return 0, err
	}
	return res.Total, nil
}

// hydrate reads every row of cur into a Row and closes it.
func hydrate(cur dialect.Cursor) ([]Row, error) {
	n := cur.FieldCount()
	rows := []Row{}
	for cur.Valid() {
		row := make(Row, n)
		for i := range n {
			row[cur.FieldName(i)] = cur.Field(i)
		}
		rows = append(rows, row)
		if err := cur.Next(); err != nil {
			return nil, errors.Join(err, cur.Close())
		}
	}
	if err := cur.Close(); err != nil {
		return nil, err
	}
	return rows, nil
}

// readTotal reads the total field of the first row of cur and closes it.
func readTotal(cur dialect.Cursor) (int64, error) {
	var total int64
	if cur.Valid() {
		for i := range cur.FieldCount() {
			if cur.FieldName(i) != "total" {
				continue
			}
			n, err := toInt64(cur.Field(i))
			if err != nil {
				return 0, errors.Join(err, cur.Close())
			}
			total = n
		}
	}
	return total, cur.Close()
}

// toInt64 converts an integer value read from the engine.
func toInt64(v any) (int64, error) {
	switch v := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return v, nil
	case int:
		return int64(v), nil
	case int32:
		return int64(v), nil
	case float64:
		return int64(v), nil
	case string:
		return strconv.ParseInt(v, 10, 64)
	case []byte:
		return strconv.ParseInt(string(v), 10, 64)
	default:
		return 0, fmt.Errorf("joli: unexpected integer value %v (%T)", v, v)
	}
}
