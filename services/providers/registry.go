package providers

import (
	"sync"

	"github.com/juyterman1000/smartllm-router/models"
	"github.com/juyterman1000/smartllm-router/services"
)

// Registry holds the configured provider adapters. A provider absent from
// the registry means no credential was configured for it.
type Registry struct {
	mu        sync.RWMutex
	providers map[models.Provider]Provider
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[models.Provider]Provider)}
}

// Register adds or replaces an adapter under its own name.
func (r *Registry) Register(p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[p.Name()] = p
}

// Resolve returns the adapter for a provider. A missing adapter is a
// missing-credential condition, not an internal error.
func (r *Registry) Resolve(name models.Provider) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, services.NewMissingCredentialError(string(name))
	}
	return p, nil
}

// Has reports whether an adapter is registered for the provider.
func (r *Registry) Has(name models.Provider) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}

// Names returns the registered provider names.
func (r *Registry) Names() []models.Provider {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.Provider, 0, len(r.providers))
	for name := range r.providers {
		out = append(out, name)
	}
	return out
}

// Len returns the number of registered adapters.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.providers)
}
