package joli

import (
	"context"
	"io"
	"log/slog"

	"github.com/syssam/joli/dialect"
	"github.com/syssam/joli/dialect/sql/schema"
)

// DefaultMigrationTable is the table holding the schema version.
const DefaultMigrationTable = "migration"

// Client owns the connection, the model registry and the migration of
// one database. Models registered on a client live as long as it does.
type Client struct {
	conn      dialect.Connection
	log       *slog.Logger
	registry  *Registry
	migration *Migration
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the logger of the client. By default nothing is logged.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMigrationTable sets the name of the table storing the schema
// version. It defaults to "migration".
func WithMigrationTable(name string) Option {
	return func(c *Client) {
		if name != "" {
			c.migration.table = name
		}
	}
}

// NewClient returns a client executing statements on conn.
func NewClient(conn dialect.Connection, opts ...Option) *Client {
	c := &Client{
		conn:     conn,
		log:      slog.New(slog.NewTextHandler(io.Discard, nil)),
		registry: NewRegistry(),
	}
	c.migration = &Migration{client: c, table: DefaultMigrationTable}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Conn returns the connection of the client.
func (c *Client) Conn() dialect.Connection { return c.conn }

// Registry returns the model registry of the client.
func (c *Client) Registry() *Registry { return c.registry }

// Migration returns the schema version store of the client.
func (c *Client) Migration() *Migration { return c.migration }

// Query returns a new statement bound to the client.
func (c *Client) Query() *Statement {
	return &Statement{client: c}
}

// Register registers a model for table with the given columns. The first
// registration of a table wins: later calls return the registered model
// and ignore their arguments.
func (c *Client) Register(table string, fields []Field, opts ...ModelOption) *Model {
	m := &Model{client: c, table: table, fields: append([]Field(nil), fields...)}
	for _, opt := range opts {
		opt(m)
	}
	m.hooks = resolveHooks(m.ext)
	registered, ok := c.registry.add(m)
	if !ok {
		c.log.Debug("joli: model already registered", "table", table)
	}
	return registered
}

// Model returns the model registered for table, or nil.
func (c *Client) Model(table string) *Model {
	m, _ := c.registry.Get(table)
	return m
}

// Initialize creates the table of every registered model, in registration
// order, when it does not exist yet. Table definitions are validated first.
func (c *Client) Initialize(ctx context.Context) error {
	models := c.registry.Models()
	tables := make([]*schema.Table, len(models))
	for i, m := range models {
		tables[i] = m.Schema()
	}
	result := schema.ValidateSchema(tables)
	if result.HasErrors() {
		return result.Err()
	}
	for _, w := range result.Warnings {
		c.log.WarnContext(ctx, "joli: schema warning", "warning", w.Error())
	}
	for _, t := range tables {
		if _, err := c.conn.Exec(ctx, t.CreateSQL()); err != nil {
			return err
		}
		c.log.DebugContext(ctx, "joli: table initialized", "table", t.Name)
	}
	return nil
}

// Migrate drops every registered table when the stored schema version is
// lower than target, calls onMigrate and stores target. It is a no-op
// otherwise. Call Initialize afterwards to recreate the tables.
func (c *Client) Migrate(ctx context.Context, target int64, onMigrate func(context.Context, MigrationEvent) error) error {
	return c.migration.Migrate(ctx, target, onMigrate)
}
