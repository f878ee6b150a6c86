package domain

import (
	"iter"
	"strings"

	"go.trai.ch/zerr"
)

// Graph is the dependency DAG of build targets. Cycles and references to
// undeclared targets are configuration errors surfaced by Validate before any
// action runs.
type Graph struct {
	targets map[InternedString]Target
	// order preserves insertion order so validation and walks are
	// deterministic across runs (map iteration is not).
	order []InternedString
}

// NewGraph creates an empty Graph.
func NewGraph() *Graph {
	return &Graph{targets: make(map[InternedString]Target)}
}

// AddTarget adds a target to the graph. Adding a second target with the same
// name is a configuration error.
func (g *Graph) AddTarget(t *Target) error {
	if _, exists := g.targets[t.Name]; exists {
		return zerr.With(ErrDuplicateTarget, "target", t.Name.String())
	}
	g.targets[t.Name] = *t
	g.order = append(g.order, t.Name)
	return nil
}

// Target looks up a target by name.
func (g *Graph) Target(name string) (Target, error) {
	t, ok := g.targets[NewInternedString(name)]
	if !ok {
		return Target{}, zerr.With(ErrUnknownTarget, "target", name)
	}
	return t, nil
}

// TargetCount returns the number of targets in the graph.
func (g *Graph) TargetCount() int {
	return len(g.targets)
}

// Names yields every target name in insertion order.
func (g *Graph) Names() iter.Seq[InternedString] {
	return func(yield func(InternedString) bool) {
		for _, name := range g.order {
			if !yield(name) {
				return
			}
		}
	}
}

const (
	colorWhite = 0 // unvisited
	colorGray  = 1 // on the current DFS path
	colorBlack = 2 // fully visited
)

// Validate checks every dependency edge resolves to a declared target and
// that the graph is acyclic. It must pass before the graph is walked.
func (g *Graph) Validate() error {
	visited := make(map[InternedString]int, len(g.targets))
	for _, name := range g.order {
		if visited[name] == colorWhite {
			if _, err := g.visit(name, visited, nil, nil); err != nil {
				return err
			}
		}
	}
	return nil
}

// ExecutionOrder returns the targets reachable from root in post-order:
// every dependency strictly precedes its dependents, siblings in declaration
// order. The root target is always last.
func (g *Graph) ExecutionOrder(root InternedString) ([]Target, error) {
	if _, ok := g.targets[root]; !ok {
		return nil, zerr.With(ErrUnknownTarget, "target", root.String())
	}
	visited := make(map[InternedString]int, len(g.targets))
	order, err := g.visit(root, visited, nil, nil)
	if err != nil {
		return nil, err
	}
	targets := make([]Target, len(order))
	for i, name := range order {
		targets[i] = g.targets[name]
	}
	return targets, nil
}

// visit runs the DFS from u, accumulating post-order into out. The gray/black
// coloring detects cycles: revisiting a gray node means the current path
// loops back on itself.
func (g *Graph) visit(u InternedString, visited map[InternedString]int, path, out []InternedString) ([]InternedString, error) {
	visited[u] = colorGray
	path = append(path, u)

	t, exists := g.targets[u]
	if !exists {
		return nil, zerr.With(ErrMissingDependency, "dependency", u.String())
	}

	for _, dep := range t.Dependencies {
		switch visited[dep] {
		case colorGray:
			return nil, cycleError(path, dep)
		case colorWhite:
			var err error
			out, err = g.visit(dep, visited, path, out)
			if err != nil {
				return nil, err
			}
		}
	}

	visited[u] = colorBlack
	return append(out, u), nil
}

// cycleError names the cycle found on the current DFS path, e.g. "A -> B -> A".
func cycleError(path []InternedString, dep InternedString) error {
	start := 0
	for i, node := range path {
		if node == dep {
			start = i
			break
		}
	}
	var b strings.Builder
	for _, node := range path[start:] {
		b.WriteString(node.String())
		b.WriteString(" -> ")
	}
	b.WriteString(dep.String())
	return zerr.With(ErrCyclicDependency, "cycle", b.String())
}
