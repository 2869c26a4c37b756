package gantry

import "reflect"

// InjectOption represents a dependency injection option.
// It carries type information and the dependency specification.
type InjectOption struct {
	Dep      Dep
	TypeInfo reflect.Type
}

// Inject creates an eager injection option for a dependency.
// The dependency is resolved immediately when the service is created.
//
// Usage:
//
//	gantry.Provide[*UserService](c, "userService",
//	    gantry.Inject[*Database]("database"),
//	    func(db *Database) (*UserService, error) { ... },
//	)
func Inject[T any](name string) InjectOption {
	return injectOption[T](name, DepEager)
}

// LazyInject creates a lazy injection option for a dependency.
// The dependency is resolved on first access via LazyAny.Get().
func LazyInject[T any](name string) InjectOption {
	return injectOption[T](name, DepLazy)
}

// OptionalInject creates an optional injection option for a dependency.
// The dependency is resolved immediately but yields nil if not found.
func OptionalInject[T any](name string) InjectOption {
	return injectOption[T](name, DepOptional)
}

// LazyOptionalInject creates a lazy optional injection option.
// The dependency is resolved on first access and yields nil if not found.
func LazyOptionalInject[T any](name string) InjectOption {
	return injectOption[T](name, DepLazyOptional)
}

// ProviderInject creates an injection option for a transient dependency
// provider. Each access creates a new instance.
func ProviderInject[T any](name string) InjectOption {
	// Providers are inherently lazy.
	return injectOption[T](name, DepLazy)
}

func injectOption[T any](name string, mode DepMode) InjectOption {
	var zero T

	typ := reflect.TypeOf(zero)

	return InjectOption{
		Dep:      Dep{Name: name, Type: typ, Mode: mode},
		TypeInfo: typ,
	}
}

// ExtractDeps extracts dependency specifications from inject options.
func ExtractDeps(opts []InjectOption) []Dep {
	deps := make([]Dep, len(opts))
	for i, opt := range opts {
		deps[i] = opt.Dep
	}

	return deps
}

// ExtractDepNames extracts just the names from inject options.
func ExtractDepNames(opts []InjectOption) []string {
	names := make([]string, len(opts))
	for i, opt := range opts {
		names[i] = opt.Dep.Name
	}

	return names
}
