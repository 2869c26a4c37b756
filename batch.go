package gantry

// Registration holds configuration for a service to be registered in batch.
type Registration struct {
	Name    string
	Factory Factory
	Options []RegisterOption
}

// Def creates a Registration for batch registration.
//
// Example:
//
//	gantry.RegisterAll(c,
//	    gantry.Def("db", NewDatabase, gantry.Singleton()),
//	    gantry.Def("cache", NewCache, gantry.Singleton()),
//	)
func Def(name string, factory Factory, opts ...RegisterOption) Registration {
	return Registration{
		Name:    name,
		Factory: factory,
		Options: opts,
	}
}

// RegisterAll registers multiple services in a single call.
// Returns the first registration error encountered.
//
// Example:
//
//	err := gantry.RegisterAll(c,
//	    gantry.Def("db", NewDatabase, gantry.Singleton()),
//	    gantry.Def("cache", NewCache, gantry.Singleton()),
//	    gantry.Def("logger", NewLogger, gantry.Singleton()),
//	)
func RegisterAll(c Container, registrations ...Registration) error {
	for _, reg := range registrations {
		if err := c.Register(reg.Name, reg.Factory, reg.Options...); err != nil {
			return err
		}
	}

	return nil
}

// TypedRegistration holds configuration for a typed service to be registered.
type TypedRegistration[T any] struct {
	Name    string
	Factory func(Container) (T, error)
	Options []RegisterOption
}

// TypedDef creates a TypedRegistration for batch typed registration.
func TypedDef[T any](name string, factory func(Container) (T, error), opts ...RegisterOption) TypedRegistration[T] {
	return TypedRegistration[T]{
		Name:    name,
		Factory: factory,
		Options: opts,
	}
}

// RegisterAllTyped registers multiple typed services in a single call.
// This version provides type safety for the factory functions.
//
// Example:
//
//	err := gantry.RegisterAllTyped(c,
//	    gantry.TypedDef("db", NewDatabase, gantry.Singleton()),
//	    gantry.TypedDef("cache", NewCache, gantry.Singleton()),
//	)
func RegisterAllTyped[T any](c Container, registrations ...TypedRegistration[T]) error {
	for _, reg := range registrations {
		wrappedFactory := func(c Container) (any, error) {
			return reg.Factory(c)
		}

		if err := c.Register(reg.Name, wrappedFactory, reg.Options...); err != nil {
			return err
		}
	}

	return nil
}

// KeyedRegistration holds configuration for a keyed service to be registered.
type KeyedRegistration[T any] struct {
	Key     ServiceKey[T]
	Factory func(Container) (T, error)
	Options []RegisterOption
}

// KeyedDef creates a KeyedRegistration for batch registration with service keys.
func KeyedDef[T any](key ServiceKey[T], factory func(Container) (T, error), opts ...RegisterOption) KeyedRegistration[T] {
	return KeyedRegistration[T]{
		Key:     key,
		Factory: factory,
		Options: opts,
	}
}

// RegisterAllKeyed registers multiple keyed services in a single call.
// This version provides type safety via ServiceKeys.
//
// Example:
//
//	var (
//	    DatabaseKey = gantry.NewServiceKey[*Database]("database")
//	    CacheKey    = gantry.NewServiceKey[*Cache]("cache")
//	)
//
//	err := gantry.RegisterAllKeyed(c,
//	    gantry.KeyedDef(DatabaseKey, NewDatabase, gantry.Singleton()),
//	    gantry.KeyedDef(CacheKey, NewCache, gantry.Singleton()),
//	)
func RegisterAllKeyed[T any](c Container, registrations ...KeyedRegistration[T]) error {
	for _, reg := range registrations {
		if err := RegisterWithKey(c, reg.Key, reg.Factory, reg.Options...); err != nil {
			return err
		}
	}

	return nil
}
