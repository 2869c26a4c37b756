package gantry

import (
	"context"
	"fmt"
	"sync"
)

// container implements Container.
type container struct {
	services   map[string]*registration
	graph      *DependencyGraph
	middleware *middlewareChain
	stats      counters
	started    bool
	mu         sync.RWMutex
}

// registration holds one recipe: the factory, its lifecycle and, for
// singletons, the cached instance. The registry owns the recipe exclusively;
// re-registration replaces it wholesale.
type registration struct {
	name      string
	factory   Factory
	lifecycle string
	deps      []Dep
	groups    []string
	metadata  map[string]string
	instance  any
	started   bool
	mu        sync.RWMutex
}

// newContainer creates a new DI container implementation.
func newContainer() *container {
	return &container{
		services:   make(map[string]*registration),
		graph:      NewDependencyGraph(),
		middleware: newMiddlewareChain(),
	}
}

// Register adds a service factory to the container. Registering an existing
// name replaces the previous recipe and drops any cached singleton; the old
// instance is disposed if it implements Disposable.
func (c *container) Register(name string, factory Factory, opts ...RegisterOption) error {
	if name == "" {
		return fmt.Errorf("service name cannot be empty")
	}

	if factory == nil {
		return ErrInvalidFactory
	}

	merged := mergeOptions(opts)

	reg := &registration{
		name:      name,
		factory:   factory,
		lifecycle: merged.lifecycle,
		deps:      merged.deps,
		groups:    merged.groups,
		metadata:  merged.metadata,
	}

	c.mu.Lock()

	old := c.services[name]
	if old != nil {
		c.stats.overwrites.Add(1)
	}

	c.services[name] = reg
	c.graph.AddNode(name, merged.deps)
	c.stats.registrations.Add(1)

	c.mu.Unlock()

	// Touch the replaced registration only after releasing the container lock:
	// an in-flight factory holds old.mu and may need the container lock for a
	// nested resolve. Dispose is user code and stays outside all locks.
	if old != nil {
		old.mu.RLock()
		replaced := old.instance
		old.mu.RUnlock()

		disposeInstance(replaced)
	}

	return nil
}

// Unregister removes the recipe and any cached singleton for a name.
func (c *container) Unregister(name string) bool {
	c.mu.Lock()

	reg, exists := c.services[name]
	if !exists {
		c.mu.Unlock()

		return false
	}

	delete(c.services, name)
	c.graph.RemoveNode(name)
	c.stats.unregistrations.Add(1)

	c.mu.Unlock()

	reg.mu.RLock()
	instance := reg.instance
	reg.mu.RUnlock()

	disposeInstance(instance)

	return true
}

// Clear removes all recipes and all cached singletons, and resets the
// container counters.
func (c *container) Clear() {
	c.mu.Lock()

	regs := make([]*registration, 0, len(c.services))
	for _, reg := range c.services {
		regs = append(regs, reg)
	}

	c.services = make(map[string]*registration)
	c.graph = NewDependencyGraph()
	c.started = false
	c.stats.reset()

	c.mu.Unlock()

	// Same lock ordering as Register: registration locks are only taken once
	// the container lock is released.
	for _, reg := range regs {
		reg.mu.RLock()
		instance := reg.instance
		reg.mu.RUnlock()

		disposeInstance(instance)
	}
}

// Resolve returns a service by name. Each top-level Resolve starts a fresh
// resolution stack; factories resolving their own dependencies share the
// stack so cycles are caught across nested calls.
func (c *container) Resolve(name string) (any, error) {
	return c.resolve(context.Background(), name, &resolutionStack{})
}

// resolve runs middleware around the actual resolution.
func (c *container) resolve(ctx context.Context, name string, stack *resolutionStack) (any, error) {
	if err := c.middleware.beforeResolve(ctx, name); err != nil {
		return nil, err
	}

	service, err := c.resolveInternal(ctx, name, stack)

	if mwErr := c.middleware.afterResolve(ctx, name, service, err); mwErr != nil {
		return nil, mwErr
	}

	return service, err
}

// resolveInternal performs the actual service resolution without middleware.
func (c *container) resolveInternal(ctx context.Context, name string, stack *resolutionStack) (any, error) {
	c.stats.resolutions.Add(1)

	c.mu.RLock()
	reg, exists := c.services[name]
	c.mu.RUnlock()

	if !exists {
		c.stats.misses.Add(1)

		return nil, ErrServiceNotFound(name)
	}

	// Cycle check must happen before any registration lock is touched: on a
	// cycle, this chain already holds the registration's write lock further
	// up the stack.
	if stack.contains(name) {
		c.stats.cycles.Add(1)

		return nil, ErrCircularDependency(stack.chain(name))
	}

	stack.push(name)
	defer stack.pop()

	view := &resolution{container: c, stack: stack, ctx: ctx}

	switch reg.lifecycle {
	case lifecycleSingleton:
		return c.resolveSingleton(ctx, reg, view)

	case lifecycleScoped:
		return nil, fmt.Errorf("scoped service %s must be resolved from a scope", name)

	default:
		// Transient: create a new instance each time.
		instance, err := reg.factory(view)
		if err != nil {
			c.stats.factoryFailures.Add(1)

			return nil, NewServiceError(reg.name, "resolve", err)
		}

		if err := c.autoStart(ctx, reg.name, instance); err != nil {
			return nil, err
		}

		return instance, nil
	}
}

// resolveSingleton returns the cached instance or creates it exactly once.
func (c *container) resolveSingleton(ctx context.Context, reg *registration, view *resolution) (any, error) {
	// Fast path: already created and started (read lock).
	reg.mu.RLock()

	if reg.instance != nil && reg.started {
		instance := reg.instance
		reg.mu.RUnlock()

		c.stats.cacheHits.Add(1)

		return instance, nil
	}
	reg.mu.RUnlock()

	// Slow path: create and/or start the instance (write lock).
	reg.mu.Lock()
	defer reg.mu.Unlock()

	// Double-check after acquiring the write lock.
	if reg.instance != nil && reg.started {
		c.stats.cacheHits.Add(1)

		return reg.instance, nil
	}

	if reg.instance == nil {
		// The factory runs while holding the registration lock. Nested
		// resolutions take other registrations' locks; a same-chain revisit of
		// this registration is stopped by the cycle check before it can block
		// here.
		instance, err := reg.factory(view)
		if err != nil {
			c.stats.factoryFailures.Add(1)

			return nil, NewServiceError(reg.name, "resolve", err)
		}

		reg.instance = instance
	}

	if !reg.started {
		if err := c.autoStart(ctx, reg.name, reg.instance); err != nil {
			return nil, err
		}

		reg.started = true
	}

	return reg.instance, nil
}

// autoStart starts an instance that implements Service, wrapped in the start
// middleware hooks. Instances that don't implement Service pass through. The
// context is the caller's: Start and ResolveReady deadlines reach Service.Start.
func (c *container) autoStart(ctx context.Context, name string, instance any) error {
	svc, ok := instance.(Service)
	if !ok {
		return nil
	}

	if err := c.middleware.beforeStart(ctx, name); err != nil {
		return err
	}

	startErr := svc.Start(ctx)

	if mwErr := c.middleware.afterStart(ctx, name, startErr); mwErr != nil {
		return mwErr
	}

	if startErr != nil {
		return NewServiceError(name, "auto_start", startErr)
	}

	return nil
}

// Use adds middleware to the container.
// Middleware is called in the order they are added.
func (c *container) Use(mw Middleware) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.middleware.add(mw)
}

// Has checks if a service is registered.
func (c *container) Has(name string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()

	_, exists := c.services[name]

	return exists
}

// IsStarted checks if a service has been started.
// Returns false if the service doesn't exist or hasn't been started.
func (c *container) IsStarted(name string) bool {
	c.mu.RLock()
	reg, exists := c.services[name]
	c.mu.RUnlock()

	if !exists {
		return false
	}

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	return reg.started
}

// ResolveReady resolves a service, ensuring it and its dependencies are
// started first. Useful during wiring when a dependency must be fully
// initialized before use.
func (c *container) ResolveReady(ctx context.Context, name string) (any, error) {
	return c.resolveReady(ctx, name, &resolutionStack{})
}

// resolveReady is the stack-carrying implementation of ResolveReady.
func (c *container) resolveReady(ctx context.Context, name string, stack *resolutionStack) (any, error) {
	c.mu.RLock()
	reg, exists := c.services[name]
	c.mu.RUnlock()

	if !exists {
		c.stats.misses.Add(1)

		return nil, ErrServiceNotFound(name)
	}

	// Same guard as resolveInternal: a revisit on this chain is a cycle and
	// must fail here, before startService can block on a registration lock
	// held further up the chain.
	if stack.contains(name) {
		c.stats.cycles.Add(1)

		return nil, ErrCircularDependency(stack.chain(name))
	}

	reg.mu.RLock()
	started := reg.started
	reg.mu.RUnlock()

	if !started {
		if err := c.startService(ctx, name, stack); err != nil {
			return nil, NewServiceError(name, "start", err)
		}
	}

	return c.resolve(ctx, name, stack)
}

// Services returns all registered service names.
func (c *container) Services() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	names := make([]string, 0, len(c.services))
	for name := range c.services {
		names = append(names, name)
	}

	return names
}

// BeginScope creates a new scope for request-scoped services.
func (c *container) BeginScope() Scope {
	return newScope(c)
}

// Start initializes all services in dependency order.
// Idempotent: already-started services are skipped, and calling Start on a
// started container is a no-op.
func (c *container) Start(ctx context.Context) error {
	c.mu.Lock()

	if c.started {
		c.mu.Unlock()

		return nil
	}

	order, err := c.graph.TopologicalSort()
	if err != nil {
		c.mu.Unlock()

		return err
	}

	c.mu.Unlock()

	// Start in order without holding the container lock; services already
	// auto-started on Resolve are skipped.
	for _, name := range order {
		if err := c.startService(ctx, name, &resolutionStack{}); err != nil {
			// Rollback: stop whatever already started.
			c.stopServices(ctx, order)

			return NewServiceError(name, "start", err)
		}
	}

	c.mu.Lock()
	c.started = true
	c.mu.Unlock()

	return nil
}

// Stop shuts down all services in reverse dependency order.
func (c *container) Stop(ctx context.Context) error {
	c.mu.Lock()

	if !c.started {
		c.mu.Unlock()

		return nil
	}

	order, err := c.graph.TopologicalSort()
	if err != nil {
		c.mu.Unlock()

		return err
	}

	c.mu.Unlock()

	for i := len(order) - 1; i >= 0; i-- {
		if err := c.stopService(ctx, order[i]); err != nil {
			return NewServiceError(order[i], "stop", err)
		}
	}

	c.mu.Lock()
	c.started = false
	c.mu.Unlock()

	return nil
}

// Health checks all instantiated singleton services.
func (c *container) Health(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	for name, reg := range c.services {
		reg.mu.RLock()
		instance := reg.instance
		reg.mu.RUnlock()

		if reg.lifecycle != lifecycleSingleton || instance == nil {
			continue
		}

		if checker, ok := instance.(HealthChecker); ok {
			if err := checker.Health(ctx); err != nil {
				return NewServiceError(name, "health", err)
			}
		}
	}

	return nil
}

// Inspect returns diagnostic information about a service.
func (c *container) Inspect(name string) ServiceInfo {
	c.mu.RLock()
	reg, exists := c.services[name]
	c.mu.RUnlock()

	if !exists {
		return ServiceInfo{Name: name}
	}

	reg.mu.RLock()
	defer reg.mu.RUnlock()

	typeName := "unknown"
	if reg.instance != nil {
		typeName = fmt.Sprintf("%T", reg.instance)
	}

	healthy := false
	if checker, ok := reg.instance.(HealthChecker); ok {
		healthy = checker.Health(context.Background()) == nil
	}

	metadata := make(map[string]string, len(reg.metadata)+1)
	for k, v := range reg.metadata {
		metadata[k] = v
	}

	// Groups ride along in metadata so the query surface can filter on them.
	if len(reg.groups) > 0 {
		metadata[groupsMetadataKey] = joinGroups(reg.groups)
	}

	return ServiceInfo{
		Name:         name,
		Type:         typeName,
		Lifecycle:    reg.lifecycle,
		Dependencies: DepNames(reg.deps),
		Deps:         reg.deps,
		Started:      reg.started,
		Healthy:      healthy,
		Metadata:     metadata,
	}
}

// Stats returns a snapshot of the container counters.
func (c *container) Stats() Stats {
	stats := c.stats.snapshot()

	c.mu.RLock()
	defer c.mu.RUnlock()

	for _, reg := range c.services {
		reg.mu.RLock()
		if reg.lifecycle == lifecycleSingleton && reg.instance != nil {
			stats.ActiveSingletons++
		}
		reg.mu.RUnlock()
	}

	return stats
}

// startService starts a single service. Idempotent: already-started services
// (via auto-start on Resolve) are skipped. The stack is the caller's
// resolution chain so cycles routed through ResolveReady are still detected.
func (c *container) startService(ctx context.Context, name string, stack *resolutionStack) error {
	c.mu.RLock()
	reg, exists := c.services[name]
	c.mu.RUnlock()

	if !exists {
		// Declared dependency that was never registered; Resolve of the
		// dependent will fail with a proper error if it actually needs it.
		return nil
	}

	reg.mu.RLock()
	started := reg.started
	reg.mu.RUnlock()

	if started {
		return nil
	}

	// Resolve creates and auto-starts the instance.
	_, err := c.resolve(ctx, name, stack)

	return err
}

// stopService stops a single service if it was started.
func (c *container) stopService(ctx context.Context, name string) error {
	c.mu.RLock()
	reg, exists := c.services[name]
	c.mu.RUnlock()

	if !exists {
		return nil
	}

	reg.mu.RLock()
	instance := reg.instance
	started := reg.started
	reg.mu.RUnlock()

	if !started || instance == nil {
		return nil
	}

	if svc, ok := instance.(Service); ok {
		if err := svc.Stop(ctx); err != nil {
			return err
		}

		reg.mu.Lock()
		reg.started = false
		reg.mu.Unlock()
	}

	return nil
}

// stopServices stops multiple services in reverse order (for rollback).
func (c *container) stopServices(ctx context.Context, names []string) {
	for i := len(names) - 1; i >= 0; i-- {
		_ = c.stopService(ctx, names[i])
	}
}

// disposeInstance calls Dispose on instances that support it. Dispose errors
// are dropped: the registration is already gone.
func disposeInstance(instance any) {
	if disposable, ok := instance.(Disposable); ok {
		_ = disposable.Dispose()
	}
}
