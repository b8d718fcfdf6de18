package routecfg

import (
	"sort"
	"sync"

	"github.com/a-h/templ"
)

// Registry maps component names used in route tables to components.
type Registry struct {
	mu         sync.RWMutex
	components map[string]templ.Component
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{components: make(map[string]templ.Component)}
}

// Register adds comp under name, replacing any earlier registration.
func (r *Registry) Register(name string, comp templ.Component) *Registry {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.components[name] = comp
	return r
}

// Component returns the component registered under name.
func (r *Registry) Component(name string) (templ.Component, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	comp, ok := r.components[name]
	return comp, ok
}

// Names returns the registered names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.components))
	for name := range r.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
