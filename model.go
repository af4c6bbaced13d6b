package joli

import (
	"context"
	"strings"

	"github.com/syssam/joli/dialect/sql/schema"
)

// IDColumn is the identity column of every model.
const IDColumn = schema.IDColumn

// Field is a column of a model. Type is emitted verbatim in CREATE TABLE.
// An identity column declared "INTEGER PRIMARY KEY" holds the engine's
// rowid; any other declaration gets the generated rowid written back
// after insert.
type Field struct {
	Name string
	Type string
}

// Column returns a Field.
func Column(name, typ string) Field {
	return Field{Name: name, Type: typ}
}

// Model describes the table of one kind of record and provides its
// finders. Models are created with Client.Register.
type Model struct {
	client *Client
	table  string
	fields []Field
	ext    any
	hooks  hooks
}

// ModelOption configures a Model.
type ModelOption func(*Model)

// WithExtension attaches per-model behavior to the records of the model.
// ext may implement Validator, BeforeSaver, AfterSaver and BeforeDestroyer;
// the implemented capabilities are resolved once, at registration.
func WithExtension(ext any) ModelOption {
	return func(m *Model) {
		m.ext = ext
	}
}

// Constraints narrow the records returned by All and Count.
type Constraints struct {
	// Where maps predicate expressions to their argument, e.g.
	// {"name = ?": "Ann"}. Predicates are applied in sorted order.
	Where map[string]any
	// Order holds ORDER BY terms.
	Order []string
	// Limit caps the number of records. Zero means no limit.
	Limit int
}

func (c Constraints) apply(s *Statement) *Statement {
	for _, expr := range sortedKeys(c.Where) {
		s.Where(expr, c.Where[expr])
	}
	return s
}

// Table returns the table name of the model.
func (m *Model) Table() string { return m.table }

// Fields returns the columns of the model in declaration order.
func (m *Model) Fields() []Field {
	return append([]Field(nil), m.fields...)
}

// Columns returns the column names of the model in declaration order.
func (m *Model) Columns() []string {
	names := make([]string, len(m.fields))
	for i, f := range m.fields {
		names[i] = f.Name
	}
	return names
}

// HasColumn reports whether the model declares the column.
func (m *Model) HasColumn(name string) bool {
	for _, f := range m.fields {
		if f.Name == name {
			return true
		}
	}
	return false
}

// aliasesRowid reports whether the id column is declared INTEGER PRIMARY
// KEY, in which case the engine stores the generated rowid in it.
func (m *Model) aliasesRowid() bool {
	for _, f := range m.fields {
		if f.Name != IDColumn {
			continue
		}
		decl := strings.Join(strings.Fields(strings.ToUpper(f.Type)), " ")
		return strings.HasPrefix(decl, "INTEGER PRIMARY KEY") && !strings.Contains(decl, " DESC")
	}
	return false
}

// Extension returns the value given to WithExtension, if any.
func (m *Model) Extension() any { return m.ext }

// Schema returns the table definition of the model.
func (m *Model) Schema() *schema.Table {
	t := schema.NewTable(m.table)
	for _, f := range m.fields {
		t.AddColumn(f.Name, f.Type)
	}
	return t
}

// Query returns a select statement on the model table.
func (m *Model) Query() *Statement {
	return m.client.Query().Select().From(m.table)
}

// All returns the records matching c.
func (m *Model) All(ctx context.Context, c Constraints) ([]*Record, error) {
	s := c.apply(m.Query())
	if len(c.Order) > 0 {
		s.Order(c.Order...)
	}
	if c.Limit > 0 {
		s.Limit(c.Limit)
	}
	return s.All(ctx)
}

// Count returns the number of records matching the predicates of c.
func (m *Model) Count(ctx context.Context, c Constraints) (int64, error) {
	return c.apply(m.client.Query().Count().From(m.table)).Total(ctx)
}

// FindBy returns the records whose field equals value.
func (m *Model) FindBy(ctx context.Context, field string, value any) ([]*Record, error) {
	return m.Query().Where(field+" = ?", value).All(ctx)
}

// FindByID returns the records with the given identity.
func (m *Model) FindByID(ctx context.Context, id any) ([]*Record, error) {
	return m.FindBy(ctx, IDColumn, id)
}

// FindOneBy returns the first record whose field equals value. It returns
// a *NotFoundError if there is none.
func (m *Model) FindOneBy(ctx context.Context, field string, value any) (*Record, error) {
	records, err := m.Query().Where(field+" = ?", value).Limit(1).All(ctx)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, NewNotFoundError(m.table, field, value)
	}
	return records[0], nil
}

// FindOneByID returns the record with the given identity.
func (m *Model) FindOneByID(ctx context.Context, id any) (*Record, error) {
	return m.FindOneBy(ctx, IDColumn, id)
}

// Exists reports whether a record with the given identity exists.
func (m *Model) Exists(ctx context.Context, id any) (bool, error) {
	n, err := m.client.Query().Count().From(m.table).Where(IDColumn+" = ?", id).Total(ctx)
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteRecords deletes the records with the given identities without
// running record hooks. One identity compiles to "id = ?", several to
// "id IN (...)". No identities is a no-op.
func (m *Model) DeleteRecords(ctx context.Context, ids ...any) (int64, error) {
	ids = flatten(ids)
	s := m.client.Query().Delete().From(m.table)
	switch len(ids) {
	case 0:
		return 0, nil
	case 1:
		s.Where(IDColumn+" = ?", ids[0])
	default:
		s.WhereIn(IDColumn, ids...)
	}
	res, err := s.Exec(ctx)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected, nil
}

// Truncate deletes every record of the model.
func (m *Model) Truncate(ctx context.Context) error {
	_, err := m.client.Query().Delete().From(m.table).Exec(ctx)
	return err
}

// NewRecord returns a new, unsaved record with the given values. Columns
// missing from values are nil; keys that are not columns are ignored.
func (m *Model) NewRecord(values map[string]any) *Record {
	r := m.newRecord()
	for _, f := range m.fields {
		r.current[f.Name] = values[f.Name]
	}
	return r
}

// fromRow returns the record of a result row. Rows with an identity are
// persisted records; others are new.
func (m *Model) fromRow(row Row) *Record {
	r := m.newRecord()
	for _, f := range m.fields {
		r.current[f.Name] = row[f.Name]
	}
	if r.current[IDColumn] != nil {
		r.state = statePersisted
		r.baseline = clone(r.current)
	}
	return r
}

func (m *Model) newRecord() *Record {
	return &Record{
		model:   m,
		state:   stateNew,
		current: make(map[string]any, len(m.fields)),
	}
}
