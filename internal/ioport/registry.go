// internal/ioport/registry.go
package ioport

import (
	"fmt"
	"sync"
)

// Reservations is the region bookkeeping contract: probe a port range for
// conflicts, claim it under a tag, release it.
type Reservations interface {
	Busy(base, n uint16) bool
	Reserve(base, n uint16, tag string) error
	Release(base, n uint16)
}

type region struct {
	base, n uint16
	tag     string
}

// Registry tracks in-process reservations. SystemProbe, when set, also
// consults the platform for ranges owned outside this process.
type Registry struct {
	mu      sync.Mutex
	regions []region

	SystemProbe func(base, n uint16) bool
}

func NewRegistry() *Registry { return &Registry{} }

func overlaps(a region, base, n uint16) bool {
	return base < a.base+a.n && a.base < base+n
}

func (r *Registry) Busy(base, n uint16) bool {
	if r.SystemProbe != nil && r.SystemProbe(base, n) {
		return true
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.regions {
		if overlaps(a, base, n) {
			return true
		}
	}
	return false
}

func (r *Registry) Reserve(base, n uint16, tag string) error {
	if r.SystemProbe != nil && r.SystemProbe(base, n) {
		return fmt.Errorf("ioport: 0x%04x-0x%04x owned outside this process", base, base+n-1)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.regions {
		if overlaps(a, base, n) {
			return fmt.Errorf("ioport: 0x%04x-0x%04x already reserved by %s", base, base+n-1, a.tag)
		}
	}
	r.regions = append(r.regions, region{base: base, n: n, tag: tag})
	return nil
}

// Release drops an exact prior reservation. Releasing an unreserved range
// is a no-op.
func (r *Registry) Release(base, n uint16) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, a := range r.regions {
		if a.base == base && a.n == n {
			r.regions = append(r.regions[:i], r.regions[i+1:]...)
			return
		}
	}
}
