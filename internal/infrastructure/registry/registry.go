// Package registry holds the compiled-in plugin implementations. Plugins
// register themselves from init functions in their own packages; the
// manifest on disk stays the single source of truth for what a plugin may
// do, the registry only supplies the code.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/luminor-dev/luminor/internal/application/ports"
)

// Registry maps plugin ids to implementations. It implements
// ports.PluginRegistry.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]ports.Plugin
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{plugins: make(map[string]ports.Plugin)}
}

// Register adds a plugin implementation. Registering the same id twice is
// a programming error and panics at startup rather than shadowing code.
func (r *Registry) Register(p ports.Plugin) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := p.PluginID()
	if _, exists := r.plugins[id]; exists {
		panic(fmt.Sprintf("plugin %s registered twice", id))
	}
	r.plugins[id] = p
}

// Lookup returns the implementation for a plugin id.
func (r *Registry) Lookup(pluginID string) (ports.Plugin, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.plugins[pluginID]
	return p, ok
}

// IDs returns all registered plugin ids, sorted.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.plugins))
	for id := range r.plugins {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Default is the process-wide registry compiled-in plugins register into.
var Default = New()

// Register adds a plugin to the default registry.
func Register(p ports.Plugin) {
	Default.Register(p)
}
