package joli

import (
	"context"

	"github.com/syssam/joli/dialect/sql/schema"
)

// MigrationEvent describes a schema version change.
type MigrationEvent struct {
	// Table is the table storing the version.
	Table      string
	OldVersion int64
	NewVersion int64
}

// Migration stores the schema version in a single row table. The version
// is read and written without locking; concurrent writers race.
type Migration struct {
	client *Client
	table  string
}

// Table returns the name of the version table.
func (m *Migration) Table() string { return m.table }

// Version returns the stored schema version. The version table and its
// row are created on first use with version 0.
func (m *Migration) Version(ctx context.Context) (int64, error) {
	create := schema.NewTable(m.table).AddColumn("version", "").CreateSQL()
	if _, err := m.client.conn.Exec(ctx, create); err != nil {
		return 0, err
	}
	rows, err := m.client.Query().Select().From(m.table).Order("version DESC").Rows(ctx)
	if err != nil {
		return 0, err
	}
	if len(rows) > 0 {
		return toInt64(rows[0]["version"])
	}
	if _, err := m.client.Query().InsertInto(m.table).Value("version", 0).Exec(ctx); err != nil {
		return 0, err
	}
	return 0, nil
}

// SetVersion stores version.
func (m *Migration) SetVersion(ctx context.Context, version int64) error {
	_, err := m.client.Query().Update(m.table).SetColumn("version", version).Exec(ctx)
	return err
}

// Migrate moves the schema to target. When the stored version is lower,
// every registered table is dropped, onMigrate is called and target is
// stored. An error from onMigrate leaves the stored version unchanged.
// Targets at or below the stored version are ignored.
func (m *Migration) Migrate(ctx context.Context, target int64, onMigrate func(context.Context, MigrationEvent) error) error {
	current, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if current >= target {
		return nil
	}
	for _, model := range m.client.registry.Models() {
		if _, err := m.client.conn.Exec(ctx, schema.DropTable(model.Table())); err != nil {
			return err
		}
		m.client.log.DebugContext(ctx, "joli: table dropped", "table", model.Table())
	}
	if onMigrate != nil {
		ev := MigrationEvent{Table: m.table, OldVersion: current, NewVersion: target}
		if err := onMigrate(ctx, ev); err != nil {
			return err
		}
	}
	if err := m.SetVersion(ctx, target); err != nil {
		return err
	}
	m.client.log.InfoContext(ctx, "joli: schema migrated", "from", current, "to", target)
	return nil
}
