package gantry

import (
	"fmt"
	"reflect"
)

// Provide registers a service whose dependencies are declared up front and
// handed to the factory as plain arguments, in declaration order. args mixes
// InjectOption values, RegisterOption values and exactly one factory function;
// lazy injections arrive as *LazyAny, lazy-optional ones as *OptionalLazyAny.
//
//	gantry.Provide[*UserService](c, "userService",
//	    gantry.Inject[*Database]("database"),
//	    gantry.LazyInject[*Cache]("cache"),
//	    func(db *Database, cache *gantry.LazyAny) (*UserService, error) {
//	        return &UserService{db: db, cache: cache}, nil
//	    },
//	)
func Provide[T any](c Container, name string, args ...any) error {
	var (
		injectOpts   []InjectOption
		registerOpts []RegisterOption
		factoryFn    any
	)

	for _, arg := range args {
		switch v := arg.(type) {
		case InjectOption:
			injectOpts = append(injectOpts, v)
		case RegisterOption:
			registerOpts = append(registerOpts, v)
		default:
			if factoryFn != nil {
				return fmt.Errorf("provide %s: multiple factory functions provided", name)
			}

			factoryFn = arg
		}
	}

	if factoryFn == nil {
		return fmt.Errorf("provide %s: no factory function provided", name)
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

// resolveDep materializes one declared dependency according to its mode:
// eager and optional resolve now, the lazy modes hand back a deferred wrapper.
func resolveDep(c Container, opt InjectOption) (any, error) {
	switch opt.Dep.Mode {
	case DepEager:
		return c.Resolve(opt.Dep.Name)

	case DepLazy:
		return NewLazyAny(c, opt.Dep.Name, opt.TypeInfo), nil

	case DepOptional:
		if !c.Has(opt.Dep.Name) {
			return nil, nil
		}

		return c.Resolve(opt.Dep.Name)

	case DepLazyOptional:
		return NewOptionalLazyAny(c, opt.Dep.Name, opt.TypeInfo), nil

	default:
		return nil, fmt.Errorf("unknown dependency mode: %v", opt.Dep.Mode)
	}
}

// callFactory invokes a user factory reflectively with the materialized
// dependencies. The factory must return (T) or (T, error).
func callFactory(factoryFn any, deps []any) (any, error) {
	fnValue := reflect.ValueOf(factoryFn)
	fnType := fnValue.Type()

	if fnType.Kind() != reflect.Func {
		return nil, fmt.Errorf("factory must be a function, got %T", factoryFn)
	}

	if fnType.NumIn() != len(deps) {
		return nil, fmt.Errorf("factory expects %d parameters, got %d dependencies", fnType.NumIn(), len(deps))
	}

	args := make([]reflect.Value, len(deps))
	for i, dep := range deps {
		if dep == nil {
			// Optional deps that were not found become the zero value.
			args[i] = reflect.Zero(fnType.In(i))
		} else {
			args[i] = reflect.ValueOf(dep)
		}
	}

	results := fnValue.Call(args)

	switch fnType.NumOut() {
	case 1:
		return results[0].Interface(), nil
	case 2:
		if !results[1].IsNil() {
			return nil, results[1].Interface().(error)
		}

		return results[0].Interface(), nil
	default:
		return nil, fmt.Errorf("factory must return (T) or (T, error), got %d return values", fnType.NumOut())
	}
}

// LazyAny is the untyped counterpart of Lazy[T], used where the concrete type
// is only known as a reflect.Type at registration time (injected lazy
// dependencies). Factories receiving one call Get and assert the type.
type LazyAny struct {
	container  Container
	name       string
	expectedTy reflect.Type
	resolved   bool
	value      any
	err        error
}

// NewLazyAny returns an untyped lazy handle for name.
func NewLazyAny(c Container, name string, expectedType reflect.Type) *LazyAny {
	return &LazyAny{
		container:  c,
		name:       name,
		expectedTy: expectedType,
	}
}

// Get resolves the service on first call and caches the outcome.
func (l *LazyAny) Get() (any, error) {
	if l.resolved {
		return l.value, l.err
	}

	instance, err := l.container.Resolve(l.name)
	if err != nil {
		l.err = err
		l.resolved = true

		return nil, err
	}

	l.value = instance
	l.resolved = true

	return l.value, nil
}

// MustGet is Get, panicking instead of returning an error.
func (l *LazyAny) MustGet() any {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("lazy dependency %s failed: %v", l.name, err))
	}

	return value
}

// IsResolved reports whether Get has run.
func (l *LazyAny) IsResolved() bool {
	return l.resolved
}

// Name returns the service name this handle points at.
func (l *LazyAny) Name() string {
	return l.name
}

// OptionalLazyAny is LazyAny for services that may legitimately be absent.
type OptionalLazyAny struct {
	container  Container
	name       string
	expectedTy reflect.Type
	resolved   bool
	found      bool
	value      any
	err        error
}

// NewOptionalLazyAny returns an untyped optional lazy handle for name.
func NewOptionalLazyAny(c Container, name string, expectedType reflect.Type) *OptionalLazyAny {
	return &OptionalLazyAny{
		container:  c,
		name:       name,
		expectedTy: expectedType,
	}
}

// Get resolves the service on first call; the outcome is cached. An
// unregistered name is not an error here, it just yields nil.
func (l *OptionalLazyAny) Get() (any, error) {
	if l.resolved {
		return l.value, l.err
	}

	if !l.container.Has(l.name) {
		l.resolved = true
		l.found = false

		return nil, nil
	}

	instance, err := l.container.Resolve(l.name)
	if err != nil {
		l.err = err
		l.resolved = true

		return nil, err
	}

	l.value = instance
	l.resolved = true
	l.found = true

	return l.value, nil
}

// MustGet is Get, panicking on error. Absence returns nil without panicking.
func (l *OptionalLazyAny) MustGet() any {
	value, err := l.Get()
	if err != nil {
		panic(fmt.Sprintf("optional lazy dependency %s failed: %v", l.name, err))
	}

	return value
}

// IsResolved reports whether Get has run, found or not.
func (l *OptionalLazyAny) IsResolved() bool {
	return l.resolved
}

// IsFound reports whether the service existed. Meaningless before Get.
func (l *OptionalLazyAny) IsFound() bool {
	return l.found
}

// Name returns the service name this handle points at.
func (l *OptionalLazyAny) Name() string {
	return l.name
}
