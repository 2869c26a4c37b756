package gantry

// DependencyGraph tracks declared service dependencies. It drives start/stop
// ordering; cycle detection during resolution is handled separately by the
// resolution stack.
type DependencyGraph struct {
	nodes map[string]*node
	order []string // preserves registration order
}

type node struct {
	name string
	deps []Dep
}

// NewDependencyGraph creates a new dependency graph.
func NewDependencyGraph() *DependencyGraph {
	return &DependencyGraph{
		nodes: make(map[string]*node),
	}
}

// AddNode adds or replaces a node with its dependency specs. A replaced node
// keeps its original registration-order position.
func (g *DependencyGraph) AddNode(name string, deps []Dep) {
	if _, exists := g.nodes[name]; !exists {
		g.order = append(g.order, name)
	}

	g.nodes[name] = &node{name: name, deps: deps}
}

// RemoveNode removes a node and its registration-order entry.
func (g *DependencyGraph) RemoveNode(name string) {
	if _, exists := g.nodes[name]; !exists {
		return
	}

	delete(g.nodes, name)

	for i, n := range g.order {
		if n == name {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}
}

// HasNode checks if a node exists in the graph.
func (g *DependencyGraph) HasNode(name string) bool {
	_, ok := g.nodes[name]

	return ok
}

// GetDependencies returns the dependency names for a node.
func (g *DependencyGraph) GetDependencies(name string) []string {
	if n, ok := g.nodes[name]; ok {
		return DepNames(n.deps)
	}

	return nil
}

// GetDeps returns the full dependency specs for a node.
func (g *DependencyGraph) GetDeps(name string) []Dep {
	if n, ok := g.nodes[name]; ok {
		return n.deps
	}

	return nil
}

// GetEagerDependencies returns only the eager (non-lazy) dependency names.
// These must be resolvable before the service can be created.
func (g *DependencyGraph) GetEagerDependencies(name string) []string {
	n, ok := g.nodes[name]
	if !ok {
		return nil
	}

	var eager []string

	for _, dep := range n.deps {
		if !dep.Mode.IsLazy() {
			eager = append(eager, dep.Name)
		}
	}

	return eager
}

// TopologicalSort returns nodes in dependency order. Nodes without
// dependencies keep their registration order (FIFO). Returns an error if the
// declared dependencies form a cycle.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	return g.sort(false)
}

// TopologicalSortEagerOnly sorts considering only eager dependencies. Lazy
// dependencies are excluded from the ordering since they resolve on demand.
func (g *DependencyGraph) TopologicalSortEagerOnly() ([]string, error) {
	return g.sort(true)
}

func (g *DependencyGraph) sort(eagerOnly bool) ([]string, error) {
	visited := make(map[string]bool)
	visiting := make(map[string]bool)
	result := make([]string, 0, len(g.nodes))

	for _, name := range g.order {
		if err := g.visit(name, eagerOnly, visited, visiting, &result); err != nil {
			return nil, err
		}
	}

	return result, nil
}

// visit performs the DFS traversal. A back edge into a node still being
// visited is a declared-dependency cycle.
func (g *DependencyGraph) visit(name string, eagerOnly bool, visited, visiting map[string]bool, result *[]string) error {
	if visited[name] {
		return nil
	}

	if visiting[name] {
		return ErrCircularDependency([]string{name})
	}

	n := g.nodes[name]
	if n == nil {
		// Not in the graph: declared but unregistered dependency, skip.
		return nil
	}

	visiting[name] = true

	for _, dep := range n.deps {
		if eagerOnly && dep.Mode.IsLazy() {
			continue
		}

		if err := g.visit(dep.Name, eagerOnly, visited, visiting, result); err != nil {
			return err
		}
	}

	visiting[name] = false
	visited[name] = true
	*result = append(*result, name)

	return nil
}
