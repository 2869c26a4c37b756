package gantry

import "reflect"

// DepMode controls how a declared dependency is resolved.
type DepMode int

const (
	// DepEager resolves the dependency immediately when the service is
	// created. Resolution fails if the dependency is missing.
	DepEager DepMode = iota

	// DepLazy defers resolution until first access.
	DepLazy

	// DepOptional resolves immediately but tolerates a missing dependency.
	DepOptional

	// DepLazyOptional defers resolution and tolerates a missing dependency.
	DepLazyOptional
)

// IsLazy reports whether the dependency is resolved on demand rather than at
// service creation time.
func (m DepMode) IsLazy() bool {
	return m == DepLazy || m == DepLazyOptional
}

// IsOptional reports whether a missing dependency is tolerated.
func (m DepMode) IsOptional() bool {
	return m == DepOptional || m == DepLazyOptional
}

// Dep is a declared dependency of a service registration. Deps drive the
// dependency graph used for start ordering and diagnostics.
type Dep struct {
	Name string
	Type reflect.Type
	Mode DepMode
}

// DepsFromNames converts plain dependency names to eager Dep specs.
func DepsFromNames(names []string) []Dep {
	if len(names) == 0 {
		return nil
	}

	deps := make([]Dep, len(names))
	for i, name := range names {
		deps[i] = Dep{Name: name, Mode: DepEager}
	}

	return deps
}

// DepNames extracts the names from a list of Dep specs.
func DepNames(deps []Dep) []string {
	if len(deps) == 0 {
		return nil
	}

	names := make([]string, len(deps))
	for i, dep := range deps {
		names[i] = dep.Name
	}

	return names
}
