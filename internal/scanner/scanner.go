// Package scanner discovers cleanable items. Each Target knows how to
// enumerate one category; the Registry holds them keyed by category ID.
package scanner

import "macsweep/internal/types"

type Target interface {
	Scan() (*types.ScanResult, error)
	Category() types.Category
	IsAvailable() bool
}

// BuiltinCleaner is implemented by targets with their own cleanup logic
// (e.g. brew, docker). Items handed to Clean have already passed the
// policy gate.
type BuiltinCleaner interface {
	Clean(items []types.CleanableItem) (*types.CleanResult, error)
}

type Registry struct {
	targets map[string]Target
}

func NewRegistry() *Registry {
	return &Registry{targets: make(map[string]Target)}
}

func (r *Registry) Register(t Target) {
	r.targets[t.Category().ID] = t
}

func (r *Registry) Get(id string) (Target, bool) {
	t, ok := r.targets[id]
	return t, ok
}

func (r *Registry) All() []Target {
	result := make([]Target, 0, len(r.targets))
	for _, t := range r.targets {
		result = append(result, t)
	}
	return result
}

func (r *Registry) Available() []Target {
	result := make([]Target, 0)
	for _, t := range r.targets {
		if t.IsAvailable() {
			result = append(result, t)
		}
	}
	return result
}
