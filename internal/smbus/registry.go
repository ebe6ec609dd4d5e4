// internal/smbus/registry.go
package smbus

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is the adapter registry the embedding system sees. One entry per
// installed controller, keyed by adapter name.
type Registry struct {
	mu       sync.Mutex
	adapters map[string]*Controller
}

func NewRegistry() *Registry {
	return &Registry{adapters: make(map[string]*Controller)}
}

// Add registers the controller. A second adapter with the same name is
// rejected.
func (r *Registry) Add(c *Controller) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := c.Name()
	if _, ok := r.adapters[name]; ok {
		return fmt.Errorf("smbus: adapter %q already registered", name)
	}
	r.adapters[name] = c
	c.registry = r
	c.stage = StageRegistered
	return nil
}

// Remove drops the controller from the registry. Removing an absent
// controller is a no-op.
func (r *Registry) Remove(c *Controller) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.adapters, c.Name())
	c.registry = nil
	if c.stage == StageRegistered {
		c.stage = StageReserved
	}
}

// Names lists the registered adapters, sorted.
func (r *Registry) Names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// Install runs Setup and registers the result, unwinding the controller if
// registration fails.
func Install(cfg Config, deps Deps, reg *Registry) (*Controller, error) {
	c, err := Setup(cfg, deps)
	if err != nil {
		return nil, err
	}
	if err := reg.Add(c); err != nil {
		c.Close()
		return nil, err
	}
	return c, nil
}
