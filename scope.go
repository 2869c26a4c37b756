package gantry

import (
	"context"
	"fmt"
	"sync"
)

// scope implements Scope.
type scope struct {
	parent    *container
	instances map[string]any
	mu        sync.Mutex
	ended     bool
}

// newScope creates a new scope.
func newScope(parent *container) *scope {
	return &scope{
		parent:    parent,
		instances: make(map[string]any),
	}
}

// Resolve returns a service by name from this scope.
func (s *scope) Resolve(name string) (any, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return nil, ErrScopeEnded
	}

	s.parent.mu.RLock()
	reg, exists := s.parent.services[name]
	s.parent.mu.RUnlock()

	if !exists {
		s.parent.stats.misses.Add(1)

		return nil, ErrServiceNotFound(name)
	}

	switch reg.lifecycle {
	case lifecycleSingleton:
		// Singletons are owned by the parent container.
		return s.parent.Resolve(name)

	case lifecycleScoped:
		if instance, ok := s.instances[name]; ok {
			return instance, nil
		}

		instance, err := s.create(reg)
		if err != nil {
			return nil, err
		}

		s.instances[name] = instance

		return instance, nil

	default:
		// Transient: always a fresh instance.
		return s.create(reg)
	}
}

// create invokes the factory with a fresh resolution stack so nested
// dependency cycles are still caught when resolving through a scope.
func (s *scope) create(reg *registration) (any, error) {
	stack := &resolutionStack{}
	stack.push(reg.name)

	view := &resolution{container: s.parent, stack: stack, ctx: context.Background()}

	instance, err := reg.factory(view)
	if err != nil {
		s.parent.stats.factoryFailures.Add(1)

		return nil, NewServiceError(reg.name, "resolve", err)
	}

	return instance, nil
}

// End disposes all scoped instances and invalidates the scope.
func (s *scope) End() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.ended {
		return ErrScopeEnded
	}

	var errList []error

	for name, instance := range s.instances {
		if disposable, ok := instance.(Disposable); ok {
			if err := disposable.Dispose(); err != nil {
				errList = append(errList, fmt.Errorf("failed to dispose %s: %w", name, err))
			}
		}
	}

	s.instances = nil
	s.ended = true

	if len(errList) > 0 {
		return fmt.Errorf("scope cleanup errors: %v", errList)
	}

	return nil
}
