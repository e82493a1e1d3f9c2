package job

import (
	"fmt"
	"sync"
)

// Factory rebuilds an executable job from its stored record.
type Factory func(rec *Record) (Job, error)

// Registry maps job types to factories. Jobs loaded back from the store
// during recovery are rebuilt through it.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Register binds a factory to a job type, replacing any previous binding.
func (r *Registry) Register(jobType string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[jobType] = f
}

// Build creates the job described by rec.
func (r *Registry) Build(rec *Record) (Job, error) {
	r.mu.RLock()
	f, ok := r.factories[rec.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownType, rec.Type)
	}
	return f(rec)
}

// Types returns the registered job types.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.factories))
	for t := range r.factories {
		types = append(types, t)
	}
	return types
}
