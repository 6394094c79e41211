package registry

import (
	"fmt"
	"sync"

	"github.com/archstep/archstep/pkg/errors"
)

// Registry is a generic, thread-safe registry for storing and retrieving items by name
type Registry[T any] interface {
	// Register adds an item to the registry
	Register(name string, item T) error

	// Alias adds another name for a registered item
	Alias(alias, name string) error

	// Get retrieves an item by name or alias
	Get(name string) (T, error)

	// Resolve returns the canonical name for a name or alias
	Resolve(name string) (string, error)

	// List returns all registered names in registration order
	List() []string

	// Aliases returns the aliases of a canonical name
	Aliases(name string) []string

	// Has checks if a name or alias is registered
	Has(name string) bool

	// Count returns the number of registered items
	Count() int
}

// registry is the internal implementation of Registry
type registry[T any] struct {
	mu      sync.RWMutex
	items   map[string]T
	order   []string
	aliases map[string]string
}

// New creates a new Registry instance
func New[T any]() Registry[T] {
	return &registry[T]{
		items:   make(map[string]T),
		aliases: make(map[string]string),
	}
}

// Register adds an item to the registry
func (r *registry[T]) Register(name string, item T) error {
	if name == "" {
		return errors.New(errors.ErrInvalidInput, "registry name cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.taken(name) {
		return errors.Newf(errors.ErrAlreadyExists, "item '%s' is already registered", name)
	}

	r.items[name] = item
	r.order = append(r.order, name)
	return nil
}

// Alias adds another name for a registered item
func (r *registry[T]) Alias(alias, name string) error {
	if alias == "" {
		return errors.New(errors.ErrInvalidInput, "alias cannot be empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[name]; !ok {
		return errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}
	if r.taken(alias) {
		return errors.Newf(errors.ErrAlreadyExists, "name '%s' is already registered", alias)
	}

	r.aliases[alias] = name
	return nil
}

func (r *registry[T]) taken(name string) bool {
	_, item := r.items[name]
	_, alias := r.aliases[name]
	return item || alias
}

func (r *registry[T]) canonical(name string) (string, bool) {
	if _, ok := r.items[name]; ok {
		return name, true
	}
	target, ok := r.aliases[name]
	return target, ok
}

// Get retrieves an item by name or alias
func (r *registry[T]) Get(name string) (T, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical, ok := r.canonical(name)
	if !ok {
		var zero T
		return zero, errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}
	return r.items[canonical], nil
}

// Resolve returns the canonical name for a name or alias
func (r *registry[T]) Resolve(name string) (string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	canonical, ok := r.canonical(name)
	if !ok {
		return "", errors.Newf(errors.ErrNotFound, "item '%s' not found in registry", name)
	}
	return canonical, nil
}

// List returns all registered names in registration order
func (r *registry[T]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, len(r.order))
	copy(names, r.order)
	return names
}

// Aliases returns the aliases of a canonical name
func (r *registry[T]) Aliases(name string) []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []string
	for alias, target := range r.aliases {
		if target == name {
			out = append(out, alias)
		}
	}
	return out
}

// Has checks if a name or alias is registered
func (r *registry[T]) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.canonical(name)
	return ok
}

// Count returns the number of registered items
func (r *registry[T]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return len(r.items)
}

// MustRegister registers an item and panics if registration fails
// This is useful for init() functions where registration errors are programming errors
func MustRegister[T any](reg Registry[T], name string, item T) {
	if err := reg.Register(name, item); err != nil {
		panic(fmt.Sprintf("failed to register %s: %v", name, err))
	}
}

// MustAlias adds an alias and panics if it fails
func MustAlias[T any](reg Registry[T], alias, name string) {
	if err := reg.Alias(alias, name); err != nil {
		panic(fmt.Sprintf("failed to alias %s: %v", alias, err))
	}
}

// MustGet retrieves an item and panics if not found
// This is useful when the item must exist
func MustGet[T any](reg Registry[T], name string) T {
	item, err := reg.Get(name)
	if err != nil {
		panic(fmt.Sprintf("failed to get %s: %v", name, err))
	}
	return item
}
