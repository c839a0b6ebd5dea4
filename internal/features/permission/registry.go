package permission

import (
	"fmt"
	"slices"
)

// Registry is the immutable, process-wide permission catalog. Built once at
// startup; read-only afterwards.
type Registry struct {
	modules  []ModuleDef
	ordered  []string
	keys     map[string]struct{}
	defaults []string
}

func NewRegistry() *Registry {
	r := &Registry{
		modules: catalog,
		keys:    make(map[string]struct{}),
	}
	for _, m := range catalog {
		for _, s := range m.Screens {
			for _, a := range s.Actions {
				key := fmt.Sprintf("%s.%s.%s", m.Module, s.Screen, a)
				if _, dup := r.keys[key]; dup {
					panic(fmt.Sprintf("duplicate permission key in catalog: %s", key))
				}
				r.keys[key] = struct{}{}
				r.ordered = append(r.ordered, key)
			}
		}
	}
	r.defaults = slices.Clone(defaultKeys)
	for _, key := range r.defaults {
		if _, ok := r.keys[key]; !ok {
			panic(fmt.Sprintf("default permission key missing from catalog: %s", key))
		}
	}
	return r
}

// ListAll returns the flattened catalog in a stable order.
func (r *Registry) ListAll() []string {
	return slices.Clone(r.ordered)
}

// Modules returns the catalog grouped for the role-editor UI.
func (r *Registry) Modules() []ModuleDef {
	return r.modules
}

func (r *Registry) Has(key string) bool {
	_, ok := r.keys[key]
	return ok
}

// DefaultsForNewRole returns the curated subset pre-checked on role creation.
func (r *Registry) DefaultsForNewRole() []string {
	return slices.Clone(r.defaults)
}

// Validate returns every submitted key that is not in the catalog.
func (r *Registry) Validate(keys []string) []string {
	var invalid []string
	for _, key := range keys {
		if !r.Has(key) && !slices.Contains(invalid, key) {
			invalid = append(invalid, key)
		}
	}
	return invalid
}
