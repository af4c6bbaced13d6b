package joli

import (
	"context"
	"fmt"
	"maps"
)

// Validator is implemented by model extensions that validate records
// before they are saved. A validation error aborts the save.
type Validator interface {
	Validate(ctx context.Context, r *Record) error
}

// BeforeSaver is implemented by model extensions that run before a
// record is written. An error aborts the save.
type BeforeSaver interface {
	BeforeSave(ctx context.Context, r *Record) error
}

// AfterSaver is implemented by model extensions that run after a record
// was written.
type AfterSaver interface {
	AfterSave(ctx context.Context, r *Record) error
}

// BeforeDestroyer is implemented by model extensions that run before a
// record is deleted. An error aborts the deletion.
type BeforeDestroyer interface {
	BeforeDestroy(ctx context.Context, r *Record) error
}

// hooks are the capabilities implemented by a model extension.
type hooks struct {
	validate      Validator
	beforeSave    BeforeSaver
	afterSave     AfterSaver
	beforeDestroy BeforeDestroyer
}

func resolveHooks(ext any) hooks {
	var h hooks
	if ext == nil {
		return h
	}
	h.validate, _ = ext.(Validator)
	h.beforeSave, _ = ext.(BeforeSaver)
	h.afterSave, _ = ext.(AfterSaver)
	h.beforeDestroy, _ = ext.(BeforeDestroyer)
	return h
}

type recordState uint8

const (
	stateNew recordState = iota
	statePersisted
	stateDestroyed
)

// Record is the change-tracked value of one row of a model table.
//
// A record is new until its first save, then persisted. A persisted
// record whose values differ from the values of its last load or save is
// dirty. Record values always hold exactly the model columns.
type Record struct {
	model    *Model
	state    recordState
	current  map[string]any
	baseline map[string]any
}

// Model returns the model of the record.
func (r *Record) Model() *Model { return r.model }

// Extension returns the extension of the record model, if any.
func (r *Record) Extension() any { return r.model.ext }

// IsNew reports whether the record was never saved.
func (r *Record) IsNew() bool { return r.state == stateNew }

// IsDestroyed reports whether the record was deleted by Destroy.
func (r *Record) IsDestroyed() bool { return r.state == stateDestroyed }

// IsChanged reports whether a persisted record differs from its last
// loaded or saved values. New records are never changed.
func (r *Record) IsChanged() bool {
	if r.state != statePersisted {
		return false
	}
	return r.current[IDColumn] == nil || canonical(r.current) != canonical(r.baseline)
}

// ID returns the identity of the record, or nil.
func (r *Record) ID() any { return r.current[IDColumn] }

// Get returns the value of a column.
func (r *Record) Get(column string) any { return r.current[column] }

// Set sets the value of a column. Setting a column the model does not
// declare returns an *InvariantError.
func (r *Record) Set(column string, v any) error {
	if !r.model.HasColumn(column) {
		return NewInvariantError(r.model.table, "unknown column "+column)
	}
	r.current[column] = v
	return nil
}

// Merge sets the columns present in values. Other keys are ignored.
func (r *Record) Merge(values map[string]any) {
	for _, f := range r.model.fields {
		if v, ok := values[f.Name]; ok {
			r.current[f.Name] = v
		}
	}
}

// Map returns a copy of the record values.
func (r *Record) Map() map[string]any { return clone(r.current) }

// Save writes the record. A dirty record is updated by its stored
// identity, a new record is inserted and receives the generated identity
// unless it has one or its model declares no id column. When the id
// column does not hold the rowid, the generated identity is written back
// with one UPDATE. An unchanged persisted record is not written. Every
// column is written. The record is left untouched when an error occurs.
func (r *Record) Save(ctx context.Context) (bool, error) {
	if r.state == stateDestroyed {
		return false, NewInvariantError(r.model.table, "destroyed record cannot be saved")
	}
	if h := r.model.hooks.validate; h != nil {
		if err := h.Validate(ctx, r); err != nil {
			return false, err
		}
	}
	if h := r.model.hooks.beforeSave; h != nil {
		if err := h.BeforeSave(ctx, r); err != nil {
			return false, err
		}
	}
	current := clone(r.current)
	switch {
	case r.IsChanged():
		id := r.baseline[IDColumn]
		if id == nil {
			return false, NewInvariantError(r.model.table, "changed record has no stored identity")
		}
		s := r.model.client.Query().Update(r.model.table)
		for _, f := range r.model.fields {
			s.SetColumn(f.Name, current[f.Name])
		}
		if _, err := s.Where(IDColumn+" = ?", id).Exec(ctx); err != nil {
			return false, err
		}
	case r.IsNew():
		s := r.model.client.Query().InsertInto(r.model.table)
		for _, f := range r.model.fields {
			s.Value(f.Name, current[f.Name])
		}
		res, err := s.Exec(ctx)
		if err != nil {
			return false, err
		}
		if r.model.HasColumn(IDColumn) && current[IDColumn] == nil {
			if !r.model.aliasesRowid() {
				backfill := r.model.client.Query().
					Update(r.model.table).
					SetColumn(IDColumn, res.LastInsertID).
					Where(fmt.Sprintf("rowid = %d AND %s IS NULL", res.LastInsertID, IDColumn))
				if _, err := backfill.Exec(ctx); err != nil {
					return false, err
				}
			}
			current[IDColumn] = res.LastInsertID
		}
	}
	r.current, r.baseline, r.state = current, clone(current), statePersisted
	if h := r.model.hooks.afterSave; h != nil {
		if err := h.AfterSave(ctx, r); err != nil {
			return true, err
		}
	}
	return true, nil
}

// Destroy deletes the record by its identity. Records without identity
// cannot be destroyed. A destroyed record cannot be saved again.
func (r *Record) Destroy(ctx context.Context) error {
	if r.state == stateDestroyed {
		return NewInvariantError(r.model.table, "record already destroyed")
	}
	id := r.ID()
	if id == nil {
		return NewInvariantError(r.model.table, "unsaved record cannot be destroyed")
	}
	if h := r.model.hooks.beforeDestroy; h != nil {
		if err := h.BeforeDestroy(ctx, r); err != nil {
			return err
		}
	}
	if _, err := r.model.DeleteRecords(ctx, id); err != nil {
		return err
	}
	r.state = stateDestroyed
	return nil
}

func clone(m map[string]any) map[string]any {
	if m == nil {
		return nil
	}
	return maps.Clone(m)
}
