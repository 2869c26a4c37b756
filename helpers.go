package gantry

import (
	"context"
	"fmt"

	logger "github.com/xraph/go-utils/log"
	"github.com/xraph/go-utils/metrics"
)

// Resolve with type safety.
func Resolve[T any](c Container, name string) (T, error) {
	var zero T

	instance, err := c.Resolve(name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: service %s is not of type %T", ErrTypeMismatch(name, instance), name, zero)
	}

	return typed, nil
}

// Must resolves or panics - use only during startup.
func Must[T any](c Container, name string) T {
	instance, err := Resolve[T](c, name)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s: %v", name, err))
	}

	return instance
}

// ResolveReady resolves a service with type safety, ensuring it and its
// dependencies are started first.
func ResolveReady[T any](ctx context.Context, c Container, name string) (T, error) {
	var zero T

	instance, err := c.ResolveReady(ctx, name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: service %s is not of type %T", ErrTypeMismatch(name, instance), name, zero)
	}

	return typed, nil
}

// MustResolveReady resolves or panics, ensuring the service is started first.
// Use only during startup/registration phase.
func MustResolveReady[T any](ctx context.Context, c Container, name string) T {
	instance, err := ResolveReady[T](ctx, c, name)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve ready %s: %v", name, err))
	}

	return instance
}

// RegisterSingleton is a convenience wrapper for singleton services.
func RegisterSingleton[T any](c Container, name string, factory func(Container) (T, error)) error {
	return c.Register(name, func(c Container) (any, error) {
		return factory(c)
	}, Singleton())
}

// RegisterTransient is a convenience wrapper for transient services.
func RegisterTransient[T any](c Container, name string, factory func(Container) (T, error)) error {
	return c.Register(name, func(c Container) (any, error) {
		return factory(c)
	}, Transient())
}

// RegisterScoped is a convenience wrapper for request-scoped services.
func RegisterScoped[T any](c Container, name string, factory func(Container) (T, error)) error {
	return c.Register(name, func(c Container) (any, error) {
		return factory(c)
	}, Scoped())
}

// RegisterSingletonWith registers a singleton service with typed dependency
// injection. Accepts InjectOption arguments followed by a factory function.
//
// Usage:
//
//	gantry.RegisterSingletonWith[*UserService](c, "userService",
//	    gantry.Inject[*Database]("database"),
//	    func(db *Database) (*UserService, error) {
//	        return &UserService{db: db}, nil
//	    },
//	)
func RegisterSingletonWith[T any](c Container, name string, args ...any) error {
	return registerWithLifecycle[T](c, name, Singleton(), args...)
}

// RegisterTransientWith registers a transient service with typed dependency
// injection. Accepts InjectOption arguments followed by a factory function.
func RegisterTransientWith[T any](c Container, name string, args ...any) error {
	return registerWithLifecycle[T](c, name, Transient(), args...)
}

// RegisterScopedWith registers a scoped service with typed dependency
// injection. Accepts InjectOption arguments followed by a factory function.
func RegisterScopedWith[T any](c Container, name string, args ...any) error {
	return registerWithLifecycle[T](c, name, Scoped(), args...)
}

// registerWithLifecycle handles typed injection patterns.
func registerWithLifecycle[T any](c Container, name string, lifecycle RegisterOption, args ...any) error {
	var (
		injectOpts   []InjectOption
		factoryFn    any
		registerOpts []RegisterOption
	)

	registerOpts = append(registerOpts, lifecycle)

	for _, arg := range args {
		switch v := arg.(type) {
		case InjectOption:
			injectOpts = append(injectOpts, v)
		case RegisterOption:
			registerOpts = append(registerOpts, v)
		default:
			if factoryFn != nil {
				return fmt.Errorf("register %s: multiple factory functions provided", name)
			}

			factoryFn = arg
		}
	}

	if factoryFn == nil {
		return fmt.Errorf("register %s: no factory function provided", name)
	}

	deps := ExtractDeps(injectOpts)

	factory := func(container Container) (any, error) {
		resolvedDeps := make([]any, len(injectOpts))

		for i, opt := range injectOpts {
			resolved, err := resolveDep(container, opt)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve dependency %s: %w", opt.Dep.Name, err)
			}

			resolvedDeps[i] = resolved
		}

		return callFactory(factoryFn, resolvedDeps)
	}

	if len(deps) > 0 {
		registerOpts = append(registerOpts, WithDeps(deps...))
	}

	return c.Register(name, factory, registerOpts...)
}

// RegisterInterface registers an implementation as an interface
// Supports all lifecycle options (Singleton, Scoped, Transient).
func RegisterInterface[I, T any](c Container, name string, factory func(Container) (T, error), opts ...RegisterOption) error {
	return c.Register(name, func(c Container) (any, error) {
		impl, err := factory(c)
		if err != nil {
			return nil, err
		}
		// Return as any - the type will be checked at resolve time
		return any(impl), nil
	}, opts...)
}

// RegisterValue registers a pre-built instance (always singleton).
func RegisterValue[T any](c Container, name string, instance T) error {
	return c.Register(name, func(c Container) (any, error) {
		return instance, nil
	}, Singleton())
}

// RegisterSingletonInterface is a convenience wrapper.
func RegisterSingletonInterface[I, T any](c Container, name string, factory func(Container) (T, error)) error {
	return RegisterInterface[I, T](c, name, factory, Singleton())
}

// RegisterScopedInterface is a convenience wrapper.
func RegisterScopedInterface[I, T any](c Container, name string, factory func(Container) (T, error)) error {
	return RegisterInterface[I, T](c, name, factory, Scoped())
}

// RegisterTransientInterface is a convenience wrapper.
func RegisterTransientInterface[I, T any](c Container, name string, factory func(Container) (T, error)) error {
	return RegisterInterface[I, T](c, name, factory, Transient())
}

// ResolveScope is a helper for resolving from a scope.
func ResolveScope[T any](s Scope, name string) (T, error) {
	var zero T

	instance, err := s.Resolve(name)
	if err != nil {
		return zero, err
	}

	typed, ok := instance.(T)
	if !ok {
		return zero, fmt.Errorf("%w: service %s is not of type %T", ErrTypeMismatch(name, instance), name, zero)
	}

	return typed, nil
}

// MustScope resolves from scope or panics.
func MustScope[T any](s Scope, name string) T {
	instance, err := ResolveScope[T](s, name)
	if err != nil {
		panic(fmt.Sprintf("failed to resolve %s from scope: %v", name, err))
	}

	return instance
}

// GetLogger resolves the logger from the container.
// Convention: application wiring registers its logger under "logger".
func GetLogger(c Container) (logger.Logger, error) {
	l, err := c.Resolve("logger")
	if err != nil {
		return nil, err
	}

	log, ok := l.(logger.Logger)
	if !ok {
		return nil, fmt.Errorf("resolved instance is not Logger, got %T", l)
	}

	return log, nil
}

// GetMetrics resolves the metrics sink from the container.
// Convention: application wiring registers its metrics sink under "metrics".
func GetMetrics(c Container) (metrics.Metrics, error) {
	m, err := c.Resolve("metrics")
	if err != nil {
		return nil, err
	}

	sink, ok := m.(metrics.Metrics)
	if !ok {
		return nil, fmt.Errorf("resolved instance is not Metrics, got %T", m)
	}

	return sink, nil
}
