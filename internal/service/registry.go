package service

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/GriffinCanCode/AgentOS/foundation/internal/shared/utils"
)

// ErrNotFound is returned when no binding exists under a name.
var ErrNotFound = errors.New("service not found")

// Provider contributes bindings to a registry.
type Provider interface {
	Name() string
	Register(r *Registry) error
}

// Registry maps service names to values and tracks which providers ran.
type Registry struct {
	services sync.Map

	mu        sync.Mutex
	providers []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{}
}

// Bind stores value under name, replacing any previous binding.
func (r *Registry) Bind(name string, value interface{}) error {
	if err := utils.ValidateID(name, "service name", true); err != nil {
		return err
	}
	if value == nil {
		return fmt.Errorf("service %q: nil value", name)
	}
	r.services.Store(name, value)
	return nil
}

// Unbind removes a binding.
func (r *Registry) Unbind(name string) {
	r.services.Delete(name)
}

// Get retrieves a binding by name.
func (r *Registry) Get(name string) (interface{}, bool) {
	return r.services.Load(name)
}

// Has reports whether name is bound.
func (r *Registry) Has(name string) bool {
	_, ok := r.services.Load(name)
	return ok
}

// Register runs a provider once. Provider names must be unique; a second
// provider under the same name is rejected before it runs.
func (r *Registry) Register(p Provider) error {
	if p == nil {
		return fmt.Errorf("provider cannot be nil")
	}
	name := p.Name()
	if err := utils.ValidateID(name, "provider name", true); err != nil {
		return err
	}

	r.mu.Lock()
	for _, existing := range r.providers {
		if existing == name {
			r.mu.Unlock()
			return fmt.Errorf("provider %q already registered", name)
		}
	}
	r.providers = append(r.providers, name)
	r.mu.Unlock()

	if err := p.Register(r); err != nil {
		r.forget(name)
		return fmt.Errorf("provider %q: %w", name, err)
	}
	return nil
}

func (r *Registry) forget(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.providers {
		if existing == name {
			r.providers = append(r.providers[:i], r.providers[i+1:]...)
			return
		}
	}
}

// Providers returns provider names in registration order.
func (r *Registry) Providers() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.providers))
	copy(out, r.providers)
	return out
}

// List returns all binding names, sorted.
func (r *Registry) List() []string {
	var names []string
	r.services.Range(func(key, _ interface{}) bool {
		names = append(names, key.(string))
		return true
	})
	sort.Strings(names)
	return names
}

// Stats returns registry statistics
func (r *Registry) Stats() map[string]interface{} {
	return map[string]interface{}{
		"total_services":  len(r.List()),
		"total_providers": len(r.Providers()),
	}
}

// Resolve returns the binding under name as a T.
func Resolve[T any](r *Registry, name string) (T, error) {
	var zero T
	v, ok := r.Get(name)
	if !ok {
		return zero, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	typed, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("service %q is %T, not %T", name, v, zero)
	}
	return typed, nil
}
