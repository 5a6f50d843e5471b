package provider

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mstgnz/eventpay/infra/config"
)

// Registry manages gateway implementations by name
type Registry struct {
	factories map[string]Factory
	mu        sync.RWMutex
}

// NewRegistry creates a new gateway registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]Factory),
	}
}

// Register adds a gateway factory to the registry
func (r *Registry) Register(name string, factory Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[name] = factory
}

// Get retrieves a gateway factory by name
func (r *Registry) Get(name string) (Factory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, fmt.Errorf("payment gateway '%s' is not registered", name)
	}

	return factory, nil
}

// New creates a configured gateway instance
func (r *Registry) New(name string, cfg *config.AppConfig) (Gateway, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return factory(cfg)
}

// Names returns the registered gateway names in sorted order
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)

	return names
}

// DefaultRegistry is the global gateway registry
var DefaultRegistry = NewRegistry()

// Register registers a gateway with the default registry
func Register(name string, factory Factory) {
	DefaultRegistry.Register(name, factory)
}

// New creates a gateway from the default registry
func New(name string, cfg *config.AppConfig) (Gateway, error) {
	return DefaultRegistry.New(name, cfg)
}
