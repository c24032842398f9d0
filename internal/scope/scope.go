// Package scope holds the evaluation environment of a single model run.
//
// A Scope keeps two explicit tables: one keyed by element name and one keyed
// by element id. Expressions may reference an element either way; Lookup
// consults the name table first and the id table second, so an id can never
// shadow a name. Within one table a later binding silently replaces an
// earlier one, which is how two elements sharing a name behave.
//
// Business knowledge models are bound as *Function values. A Function closes
// over a snapshot of the scope taken when it was bound and evaluates its body
// through an Evaluator with its parameters bound on top of that snapshot.
// An error raised by the body is returned to the caller instead of being
// turned into a null result, so the decision that called the function fails
// with it.
package scope

import (
	"maps"
	"sort"
)

// Scope is a mutable two-layer binding table. It is not safe for concurrent
// use; every run builds its own.
type Scope struct {
	names map[string]any
	ids   map[string]any
}

// New returns an empty scope.
func New() *Scope {
	return &Scope{
		names: map[string]any{},
		ids:   map[string]any{},
	}
}

// BindName binds v under a name. An existing binding is replaced.
func (s *Scope) BindName(name string, v any) {
	s.names[name] = v
}

// BindID binds v under an element id. An existing binding is replaced.
func (s *Scope) BindID(id string, v any) {
	s.ids[id] = v
}

// Bind binds v under both the element's id and its name.
func (s *Scope) Bind(id, name string, v any) {
	s.BindID(id, v)
	s.BindName(name, v)
}

// LookupName returns the value bound under a name.
func (s *Scope) LookupName(name string) (any, bool) {
	v, ok := s.names[name]
	return v, ok
}

// LookupID returns the value bound under an element id.
func (s *Scope) LookupID(id string) (any, bool) {
	v, ok := s.ids[id]
	return v, ok
}

// Lookup resolves a key against the name table, then the id table.
func (s *Scope) Lookup(key string) (any, bool) {
	if v, ok := s.names[key]; ok {
		return v, true
	}
	return s.LookupID(key)
}

// Snapshot returns an independent copy of the scope. Bound values are shared,
// the tables are not.
func (s *Scope) Snapshot() *Scope {
	return &Scope{
		names: maps.Clone(s.names),
		ids:   maps.Clone(s.ids),
	}
}

// Flatten merges both tables into a single map with names taking precedence
// over ids, which is the view an interpreter with a single variable namespace
// needs.
func (s *Scope) Flatten() map[string]any {
	out := make(map[string]any, len(s.names)+len(s.ids))
	maps.Copy(out, s.ids)
	maps.Copy(out, s.names)
	return out
}

// Keys returns every key bound in either table, sorted.
func (s *Scope) Keys() []string {
	seen := make(map[string]struct{}, len(s.names)+len(s.ids))
	for k := range s.ids {
		seen[k] = struct{}{}
	}
	for k := range s.names {
		seen[k] = struct{}{}
	}
	keys := make([]string, 0, len(seen))
	for k := range seen {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
