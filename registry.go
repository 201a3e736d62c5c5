package inflate

import (
	"sync"

	"github.com/pthm/inflate/lib/bundle"
)

// Attribute is an alias for bundle.Attribute for convenience.
type Attribute = bundle.Attribute

// Definition is a named template registered from a bundle.
type Definition struct {
	Name   string
	Attrs  []Attribute
	Body   string
	Source string // identifier of the bundle that defined it
}

// Registry holds definitions in registration order.
//
// Names are not unique. Lookup returns the earliest registered definition
// with a name, so a bundle loaded first wins over later bundles that reuse
// the name. The registry only grows.
type Registry struct {
	mu   sync.RWMutex
	defs []*Definition
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Add appends definitions parsed from the bundle identified by source.
func (reg *Registry) Add(source string, defs ...bundle.Definition) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	for _, d := range defs {
		attrs := make([]Attribute, len(d.Attrs))
		copy(attrs, d.Attrs)
		reg.defs = append(reg.defs, &Definition{
			Name:   d.Name,
			Attrs:  attrs,
			Body:   d.Body,
			Source: source,
		})
	}
}

// Lookup returns the first registered definition named name.
func (reg *Registry) Lookup(name string) (*Definition, bool) {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	for _, d := range reg.defs {
		if d.Name == name {
			return d, true
		}
	}
	return nil, false
}

// Len returns the number of registered definitions, shadowed ones included.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.defs)
}

// Definitions returns a copy of the registration order.
func (reg *Registry) Definitions() []*Definition {
	reg.mu.RLock()
	defer reg.mu.RUnlock()

	out := make([]*Definition, len(reg.defs))
	copy(out, reg.defs)
	return out
}
