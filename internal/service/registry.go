package service

import "sort"

// Registry is an immutable mapping from qualified name to Factory.
// Populated once at construction; read-only thereafter, so lookups need no
// locking.
type Registry struct {
	factories map[string]Factory
	names     []string
}

func NewRegistry(factories map[string]Factory) *Registry {
	m := make(map[string]Factory, len(factories))
	names := make([]string, 0, len(factories))
	for name, f := range factories {
		if f == nil {
			continue
		}
		m[name] = f
		names = append(names, name)
	}
	sort.Strings(names)
	return &Registry{factories: m, names: names}
}

func (r *Registry) Lookup(name string) (Factory, bool) {
	f, ok := r.factories[name]
	return f, ok
}

func (r *Registry) Has(name string) bool {
	_, ok := r.factories[name]
	return ok
}

// Names returns the registered names in sorted order. The slice is a copy.
func (r *Registry) Names() []string {
	out := make([]string, len(r.names))
	copy(out, r.names)
	return out
}

func (r *Registry) Len() int { return len(r.names) }
