package gantry

import (
	"fmt"
	"sync"
)

// Lazy defers resolution of a named service until Get is called. The main use
// is breaking construction-time cycles: a factory holds a Lazy back-reference
// and dereferences it only after wiring has completed. It also keeps expensive
// services unbuilt until something actually asks for them.
type Lazy[T any] struct {
	container Container
	name      string
	once      sync.Once
	value     T
	err       error
	resolved  bool
}

// NewLazy returns a handle for name. Nothing is resolved until Get.
func NewLazy[T any](container Container, name string) *Lazy[T] {
	return &Lazy[T]{
		container: container,
		name:      name,
	}
}

// Get resolves the service on first call and caches the outcome, error
// included; later calls return whatever the first one produced.
func (l *Lazy[T]) Get() (T, error) {
	l.once.Do(func() {
		instance, err := l.container.Resolve(l.name)
		if err != nil {
			l.err = err

			return
		}

		typed, ok := instance.(T)
		if !ok {
			var zero T

			l.err = fmt.Errorf("lazy dependency %s: expected type %T, got %T", l.name, zero, instance)

			return
		}

		l.value = typed
		l.resolved = true
	})

	return l.value, l.err
}

// MustGet is Get, panicking instead of returning an error.
func (l *Lazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", l.name, err))
	}

	return value
}

// IsResolved reports whether a value has been resolved and cached.
func (l *Lazy[T]) IsResolved() bool {
	return l.resolved
}

// Name returns the service name this handle points at.
func (l *Lazy[T]) Name() string {
	return l.name
}

// OptionalLazy is Lazy for services that may legitimately be absent: a missing
// registration yields the zero value rather than an error.
type OptionalLazy[T any] struct {
	container Container
	name      string
	once      sync.Once
	value     T
	err       error
	resolved  bool
	found     bool
}

// NewOptionalLazy returns a handle for name. Nothing is resolved until Get.
func NewOptionalLazy[T any](container Container, name string) *OptionalLazy[T] {
	return &OptionalLazy[T]{
		container: container,
		name:      name,
	}
}

// Get resolves the service on first call; the outcome is cached. An
// unregistered name is not an error here, it just yields the zero value.
func (l *OptionalLazy[T]) Get() (T, error) {
	l.once.Do(func() {
		if !l.container.Has(l.name) {
			l.resolved = true
			l.found = false

			return
		}

		instance, err := l.container.Resolve(l.name)
		if err != nil {
			l.err = err

			return
		}

		typed, ok := instance.(T)
		if !ok {
			var zero T

			l.err = fmt.Errorf("optional lazy dependency %s: expected type %T, got %T", l.name, zero, instance)

			return
		}

		l.value = typed
		l.resolved = true
		l.found = true
	})

	return l.value, l.err
}

// MustGet is Get, panicking on error. Absence is not an error: a missing
// service returns the zero value without panicking.
func (l *OptionalLazy[T]) MustGet() T {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("optional lazy dependency %s failed: %v", l.name, err))
	}

	return value
}

// IsResolved reports whether Get has run, found or not.
func (l *OptionalLazy[T]) IsResolved() bool {
	return l.resolved
}

// IsFound reports whether the service existed. Meaningless before Get.
func (l *OptionalLazy[T]) IsFound() bool {
	return l.found
}

// Name returns the service name this handle points at.
func (l *OptionalLazy[T]) Name() string {
	return l.name
}

// Provider hands out instances of a named service on demand, with no caching
// of its own. Against a transient registration every Provide call yields a
// fresh instance.
type Provider[T any] struct {
	container Container
	name      string
}

// NewProvider returns a provider for name.
func NewProvider[T any](container Container, name string) *Provider[T] {
	return &Provider[T]{
		container: container,
		name:      name,
	}
}

// Provide resolves the service and returns it. The service's lifecycle
// decides whether repeated calls share an instance.
func (p *Provider[T]) Provide() (T, error) {
	instance, err := p.container.Resolve(p.name)
	if err != nil {
		var zero T

		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		var zero T

		return zero, fmt.Errorf("provider %s: expected type %T, got %T", p.name, zero, instance)
	}

	return typed, nil
}

// MustProvide is Provide, panicking instead of returning an error.
func (p *Provider[T]) MustProvide() T {
	value, err := p.Provide()
	if err != nil {
		panic(fmt.Sprintf("provider %s failed: %v", p.name, err))
	}

	return value
}

// Name returns the service name this provider points at.
func (p *Provider[T]) Name() string {
	return p.name
}
