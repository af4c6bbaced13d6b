package joli

import "context"

// LoadOptions configure Model.Load.
type LoadOptions struct {
	// PurgeFirst deletes every record of the model before loading.
	PurgeFirst bool
	// UseTransaction wraps the whole load, purge included, in one
	// transaction. Without it a failure leaves the rows saved so far.
	UseTransaction bool
}

// Load upserts rows into the model table. A row whose identity matches a
// stored record is merged into it, any other row is saved as a new record.
// onDone, when not nil, is called after every row was saved.
//
// When a row fails with UseTransaction set, the transaction is left open
// and uncommitted; no rollback is issued.
func (m *Model) Load(ctx context.Context, rows []map[string]any, opts LoadOptions, onDone func()) error {
	var tx *Transaction
	if opts.UseTransaction {
		var err error
		if tx, err = m.client.Begin(ctx); err != nil {
			return err
		}
	}
	if opts.PurgeFirst {
		if err := m.Truncate(ctx); err != nil {
			return err
		}
	}
	var updated, inserted int
	for _, row := range rows {
		var rec *Record
		if id := row[IDColumn]; id != nil {
			found, err := m.FindOneByID(ctx, id)
			switch {
			case err == nil:
				rec = found
			case !IsNotFound(err):
				return err
			}
		}
		if rec != nil {
			rec.Merge(row)
			updated++
		} else {
			rec = m.NewRecord(row)
			inserted++
		}
		if _, err := rec.Save(ctx); err != nil {
			return err
		}
	}
	if tx != nil {
		if err := tx.Commit(ctx); err != nil {
			return err
		}
	}
	m.client.log.InfoContext(ctx, "joli: records loaded",
		"table", m.table,
		"inserted", inserted,
		"merged", updated,
	)
	if onDone != nil {
		onDone()
	}
	return nil
}
