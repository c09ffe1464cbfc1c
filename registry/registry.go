// Package registry holds the table of named resources served by the API.
//
// The table is immutable once built; Reload constructs a new table and
// swaps the pointer atomically, so in-flight requests keep reading the
// generation they started with and never observe a partial update.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/Rostezkiy/spectre/store"
)

// ErrResourceNotFound is returned when a resource name is not registered.
var ErrResourceNotFound = errors.New("registry: resource not found")

// table is one immutable registry generation.
type table struct {
	byName map[string]store.Resource
	names  []string // insertion order, for stable listings
}

// Registry resolves resource names to definitions.
type Registry struct {
	current atomic.Pointer[table]
}

// New builds a registry from an initial resource set. Later duplicates of
// a name are ignored; the first definition wins.
func New(resources []store.Resource) *Registry {
	r := &Registry{}
	r.current.Store(buildTable(resources))
	return r
}

// Load builds a registry from configured resources plus the persisted
// resources table, configured definitions first (config wins on a name
// clash), and mirrors the merged set back into the store.
func Load(ctx context.Context, s *store.Store, configured []store.Resource) (*Registry, error) {
	persisted, err := s.ListResources(ctx)
	if err != nil {
		return nil, fmt.Errorf("registry: load persisted: %w", err)
	}

	merged := make([]store.Resource, 0, len(configured)+len(persisted))
	merged = append(merged, configured...)
	merged = append(merged, persisted...)

	r := New(merged)
	if err := s.ReplaceResources(ctx, r.List()); err != nil {
		return nil, fmt.Errorf("registry: persist: %w", err)
	}
	return r, nil
}

// Get resolves a resource by name.
func (r *Registry) Get(name string) (store.Resource, error) {
	t := r.current.Load()
	res, ok := t.byName[name]
	if !ok {
		return store.Resource{}, fmt.Errorf("%w: %s", ErrResourceNotFound, name)
	}
	return res, nil
}

// List returns all resources in registration order.
func (r *Registry) List() []store.Resource {
	t := r.current.Load()
	out := make([]store.Resource, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, t.byName[name])
	}
	return out
}

// Names returns the registered resource names in registration order.
func (r *Registry) Names() []string {
	t := r.current.Load()
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Reload replaces the whole table atomically. Readers holding the old
// generation finish against it; new lookups see the new one.
func (r *Registry) Reload(resources []store.Resource) {
	r.current.Store(buildTable(resources))
}

func buildTable(resources []store.Resource) *table {
	t := &table{byName: make(map[string]store.Resource, len(resources))}
	for _, res := range resources {
		if _, exists := t.byName[res.Name]; exists {
			continue
		}
		t.byName[res.Name] = res
		t.names = append(t.names, res.Name)
	}
	return t
}
