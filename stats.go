package gantry

import "sync/atomic"

// Stats is a point-in-time snapshot of container counters. Counters accumulate
// for the container's lifetime and reset on Clear.
type Stats struct {
	// Registrations counts successful Register calls, including overwrites.
	Registrations uint64

	// Overwrites counts Register calls that replaced an existing recipe.
	Overwrites uint64

	// Unregistrations counts Unregister calls that removed a recipe.
	Unregistrations uint64

	// Resolutions counts all resolution attempts, nested ones included.
	Resolutions uint64

	// CacheHits counts resolutions served from the singleton cache.
	CacheHits uint64

	// Misses counts resolutions of unregistered names.
	Misses uint64

	// CyclesDetected counts resolutions aborted by the cycle detector.
	CyclesDetected uint64

	// FactoryFailures counts factory invocations that returned an error.
	FactoryFailures uint64

	// ActiveSingletons is the number of currently cached singleton instances.
	ActiveSingletons int
}

// counters holds the container's atomic counters.
type counters struct {
	registrations   atomic.Uint64
	overwrites      atomic.Uint64
	unregistrations atomic.Uint64
	resolutions     atomic.Uint64
	cacheHits       atomic.Uint64
	misses          atomic.Uint64
	cycles          atomic.Uint64
	factoryFailures atomic.Uint64
}

// snapshot copies the counters into a Stats value.
func (c *counters) snapshot() Stats {
	return Stats{
		Registrations:   c.registrations.Load(),
		Overwrites:      c.overwrites.Load(),
		Unregistrations: c.unregistrations.Load(),
		Resolutions:     c.resolutions.Load(),
		CacheHits:       c.cacheHits.Load(),
		Misses:          c.misses.Load(),
		CyclesDetected:  c.cycles.Load(),
		FactoryFailures: c.factoryFailures.Load(),
	}
}

// reset zeroes all counters.
func (c *counters) reset() {
	c.registrations.Store(0)
	c.overwrites.Store(0)
	c.unregistrations.Store(0)
	c.resolutions.Store(0)
	c.cacheHits.Store(0)
	c.misses.Store(0)
	c.cycles.Store(0)
	c.factoryFailures.Store(0)
}
