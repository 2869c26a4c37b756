// Package gantry is a dependency-injection container with lifecycle
// management. Services are registered under string names with a factory and a
// lifecycle (singleton, transient or scoped), and resolved lazily. The
// container detects circular dependencies at resolve time, serializes access
// across goroutines, and can start and stop registered services in dependency
// order.
package gantry

import "context"

// Factory creates a service instance. The container passes itself so the
// factory can resolve its own dependencies.
type Factory func(Container) (any, error)

// Container is the registration and resolution contract.
type Container interface {
	// Register stores a factory under a name. Registering a name that already
	// exists replaces the previous recipe wholesale and drops any cached
	// singleton instance.
	Register(name string, factory Factory, opts ...RegisterOption) error

	// Unregister removes the recipe and any cached singleton for a name.
	// Returns false if the name was not registered.
	Unregister(name string) bool

	// Clear removes all recipes and all cached singletons.
	Clear()

	// Resolve returns a service by name, invoking its factory if no cached
	// instance exists. Resolving an unregistered name returns an error that
	// matches ErrServiceNotFoundSentinel via errors.Is.
	Resolve(name string) (any, error)

	// ResolveReady resolves a service, ensuring it and its dependencies are
	// started first.
	ResolveReady(ctx context.Context, name string) (any, error)

	// Has checks if a service is registered.
	Has(name string) bool

	// IsStarted checks if a service has been started.
	IsStarted(name string) bool

	// Services returns all registered service names.
	Services() []string

	// Inspect returns diagnostic information about a service.
	Inspect(name string) ServiceInfo

	// Use adds middleware to the container.
	Use(mw Middleware)

	// BeginScope creates a new scope for request-scoped services.
	BeginScope() Scope

	// Start initializes all services in dependency order.
	Start(ctx context.Context) error

	// Stop shuts down all services in reverse dependency order.
	Stop(ctx context.Context) error

	// Health checks all instantiated singleton services.
	Health(ctx context.Context) error

	// Stats returns a snapshot of container counters.
	Stats() Stats
}

// Scope is a lifetime scope for scoped services, typically bounded to an HTTP
// request or another short-lived operation.
type Scope interface {
	// Resolve returns a service by name from this scope. Scoped services are
	// cached per scope; singletons delegate to the parent container.
	Resolve(name string) (any, error)

	// End disposes all scoped instances and invalidates the scope.
	End() error
}

// Service is implemented by services that participate in container lifecycle.
// Singletons implementing Service are started automatically on first resolve.
type Service interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
}

// HealthChecker is implemented by services that can report their health.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// Disposable is implemented by services that need cleanup when their scope
// ends or their registration is removed.
type Disposable interface {
	Dispose() error
}

// ServiceInfo contains diagnostic information about a registration.
type ServiceInfo struct {
	Name         string
	Type         string
	Lifecycle    string
	Dependencies []string
	Deps         []Dep
	Started      bool
	Healthy      bool
	Metadata     map[string]string
}

// New creates a new DI container.
func New() Container {
	return newContainer()
}
