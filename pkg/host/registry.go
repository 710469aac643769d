package host

import (
	"slices"
	"sync"

	"github.com/mchmarny/menubuilder/pkg/menu"
)

// Registry keeps the top-level handles created by the build engine.
type Registry struct {
	mu      sync.Mutex
	handles []menu.Handle
}

// Handles implements menu.Registry.
func (r *Registry) Handles() []menu.Handle {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.handles)
}

// Add implements menu.Registry.
func (r *Registry) Add(h menu.Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = append(r.handles, h)
}

// Reset implements menu.Registry.
func (r *Registry) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles = nil
}
