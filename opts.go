package gantry

const (
	lifecycleSingleton = "singleton"
	lifecycleTransient = "transient"
	lifecycleScoped    = "scoped"
)

// RegisterOption configures a service registration.
type RegisterOption func(*registerOptions)

// registerOptions is the merged view of all options for one registration.
type registerOptions struct {
	lifecycle string
	deps      []Dep
	groups    []string
	metadata  map[string]string
}

// Singleton makes the service a singleton (default). One instance is created
// lazily on first resolve and cached for the container's lifetime.
func Singleton() RegisterOption {
	return func(o *registerOptions) {
		o.lifecycle = lifecycleSingleton
	}
}

// Transient makes the service created anew on each resolve.
func Transient() RegisterOption {
	return func(o *registerOptions) {
		o.lifecycle = lifecycleTransient
	}
}

// Scoped makes the service live for the duration of a scope.
func Scoped() RegisterOption {
	return func(o *registerOptions) {
		o.lifecycle = lifecycleScoped
	}
}

// WithDependencies declares explicit dependencies by name. Named dependencies
// are treated as eager.
func WithDependencies(names ...string) RegisterOption {
	return func(o *registerOptions) {
		o.deps = append(o.deps, DepsFromNames(names)...)
	}
}

// WithDeps declares dependencies with full specs, including lazy and optional
// modes.
func WithDeps(deps ...Dep) RegisterOption {
	return func(o *registerOptions) {
		o.deps = append(o.deps, deps...)
	}
}

// WithMetadata adds diagnostic metadata to the registration.
func WithMetadata(key, value string) RegisterOption {
	return func(o *registerOptions) {
		if o.metadata == nil {
			o.metadata = make(map[string]string)
		}

		o.metadata[key] = value
	}
}

// WithGroup adds the service to a named group.
func WithGroup(group string) RegisterOption {
	return func(o *registerOptions) {
		o.groups = append(o.groups, group)
	}
}

// mergeOptions applies all options over the defaults.
func mergeOptions(opts []RegisterOption) *registerOptions {
	merged := &registerOptions{lifecycle: lifecycleSingleton}
	for _, opt := range opts {
		if opt != nil {
			opt(merged)
		}
	}

	return merged
}

// depNames returns the names of all declared dependencies.
func (o *registerOptions) depNames() []string {
	return DepNames(o.deps)
}
