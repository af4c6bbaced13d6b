package joli

import "sync"

// Registry maps table names to models. A table is registered once; the
// registry keeps models in registration order.
type Registry struct {
	mu     sync.RWMutex
	models map[string]*Model
	order  []*Model
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{models: make(map[string]*Model)}
}

// add registers m unless its table is taken. It returns the model
// registered for the table and whether m was added.
func (r *Registry) add(m *Model) (*Model, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if existing, ok := r.models[m.table]; ok {
		return existing, false
	}
	r.models[m.table] = m
	r.order = append(r.order, m)
	return m, true
}

// Get returns the model registered for table.
func (r *Registry) Get(table string) (*Model, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	m, ok := r.models[table]
	return m, ok
}

// Has reports whether a model is registered for table.
func (r *Registry) Has(table string) bool {
	_, ok := r.Get(table)
	return ok
}

// Models returns the registered models in registration order.
func (r *Registry) Models() []*Model {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]*Model(nil), r.order...)
}

// Len returns the number of registered models.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}
