package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrUnknownEngine is returned by Get when no engine has the requested id.
var ErrUnknownEngine = errors.New("unknown engine")

// Registry maps engine identifiers to implementations. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	engines map[string]Engine
	order   []string
}

// NewRegistry creates a registry holding engines. It panics on a duplicate
// id, which is a wiring mistake.
func NewRegistry(engines ...Engine) *Registry {
	r := &Registry{engines: make(map[string]Engine)}
	for _, e := range engines {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds e under its Info().ID.
func (r *Registry) Register(e Engine) error {
	id := e.Info().ID
	if id == "" {
		return errors.New("engine has an empty id")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.engines[id]; exists {
		return fmt.Errorf("engine with id '%s' already registered", id)
	}
	r.engines[id] = e
	r.order = append(r.order, id)
	return nil
}

// Get returns the engine registered under id.
func (r *Registry) Get(id string) (Engine, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.engines[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q (available: %v)", ErrUnknownEngine, id, r.idsLocked())
	}
	return e, nil
}

// All lists every engine's Info in registration order.
func (r *Registry) All() []Info {
	r.mu.RLock()
	defer r.mu.RUnlock()
	infos := make([]Info, 0, len(r.order))
	for _, id := range r.order {
		infos = append(infos, r.engines[id].Info())
	}
	return infos
}

// CheckConnection probes the engine registered under id. An unknown id is
// reported as unreachable.
func (r *Registry) CheckConnection(ctx context.Context, id string) bool {
	e, err := r.Get(id)
	if err != nil {
		return false
	}
	return CheckConnection(ctx, e)
}

func (r *Registry) idsLocked() []string {
	ids := make([]string, len(r.order))
	copy(ids, r.order)
	sort.Strings(ids)
	return ids
}
