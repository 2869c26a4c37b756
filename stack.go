package gantry

import "context"

// resolutionStack is the ordered chain of service names currently being
// resolved on one call chain. It exists purely to detect cycles: a name may
// appear at most once. The stack is confined to a single resolution chain and
// needs no locking.
type resolutionStack struct {
	names []string
}

// contains reports whether a name is already being resolved on this chain.
func (s *resolutionStack) contains(name string) bool {
	for _, n := range s.names {
		if n == name {
			return true
		}
	}

	return false
}

// push records a name as in-progress. Every push must be paired with a pop,
// including on failure paths.
func (s *resolutionStack) push(name string) {
	s.names = append(s.names, name)
}

// pop removes the most recent in-progress name.
func (s *resolutionStack) pop() {
	s.names = s.names[:len(s.names)-1]
}

// chain returns a copy of the stack with the offending name appended, for use
// in circular-dependency errors.
func (s *resolutionStack) chain(name string) []string {
	out := make([]string, len(s.names), len(s.names)+1)
	copy(out, s.names)

	return append(out, name)
}

// resolution is the view of the container handed to factories. It carries the
// resolution stack across nested Resolve calls so cycles are detected no
// matter how deep the factory chain goes, and the originating context so
// Start/ResolveReady deadlines reach nested auto-starts.
type resolution struct {
	*container
	stack *resolutionStack
	ctx   context.Context
}

// Resolve resolves a nested dependency on the same chain.
func (r *resolution) Resolve(name string) (any, error) {
	return r.container.resolve(r.ctx, name, r.stack)
}

// ResolveReady resolves a nested dependency, starting it first if needed.
func (r *resolution) ResolveReady(ctx context.Context, name string) (any, error) {
	return r.container.resolveReady(ctx, name, r.stack)
}
