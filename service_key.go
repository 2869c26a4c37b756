package gantry

// ServiceKey binds a service name to its Go type at compile time. Declaring
// keys as package-level variables gives every call site the same name and the
// same type, so a renamed service or a changed type is a one-line fix instead
// of a scattered string hunt.
//
//	var DatabaseKey = NewServiceKey[*Database]("database")
type ServiceKey[T any] struct {
	name string
}

// NewServiceKey creates a key tying name to type T.
func NewServiceKey[T any](name string) ServiceKey[T] {
	return ServiceKey[T]{name: name}
}

// Name returns the underlying service name.
func (k ServiceKey[T]) Name() string {
	return k.name
}

// RegisterWithKey registers a factory under the key's name. The factory's
// return type is pinned to the key's type parameter.
func RegisterWithKey[T any](c Container, key ServiceKey[T], factory func(Container) (T, error), opts ...RegisterOption) error {
	wrappedFactory := func(c Container) (any, error) {
		return factory(c)
	}

	return c.Register(key.name, wrappedFactory, opts...)
}

// ResolveWithKey resolves the key's service, already asserted to the key's
// type. A registration whose instance has a different type is a type-mismatch
// error, not a silent nil.
func ResolveWithKey[T any](c Container, key ServiceKey[T]) (T, error) {
	service, err := c.Resolve(key.name)
	if err != nil {
		var zero T

		return zero, err
	}

	result, ok := service.(T)
	if !ok {
		var zero T

		return zero, ErrTypeMismatch(key.name, service)
	}

	return result, nil
}

// MustWithKey is ResolveWithKey, panicking instead of returning an error.
func MustWithKey[T any](c Container, key ServiceKey[T]) T {
	result, err := ResolveWithKey(c, key)
	if err != nil {
		panic(err)
	}

	return result
}

// UnregisterKey removes the key's registration and any cached singleton.
func UnregisterKey[T any](c Container, key ServiceKey[T]) bool {
	return c.Unregister(key.name)
}

// HasKey reports whether the key's service is registered.
func HasKey[T any](c Container, key ServiceKey[T]) bool {
	return c.Has(key.name)
}

// IsStartedKey reports whether the key's service has been started.
func IsStartedKey[T any](c Container, key ServiceKey[T]) bool {
	return c.IsStarted(key.name)
}

// InspectKey returns diagnostics for the key's service.
func InspectKey[T any](c Container, key ServiceKey[T]) ServiceInfo {
	return c.Inspect(key.name)
}
