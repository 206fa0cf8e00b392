package store

import (
	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
)

// NewDAG returns a directed graph refusing cycles, backed by a MemoryStore.
func NewDAG() graph.Graph[string, string] {
	return graph.NewWithStore(graph.StringHash, NewMemoryStore[string, string](), graph.Directed(), graph.PreventCycles())
}

// EnsureVertex adds hash to g unless it is already there.
func EnsureVertex(g graph.Graph[string, string], hash string, options ...func(*graph.VertexProperties)) error {
	err := g.AddVertex(hash, options...)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrapf(err, "unable to add vertex %s", hash)
	}

	return nil
}

// AddDependency adds an edge from dep to dependent. Both vertices are created when missing and
// an edge already present is not an error. graph.ErrEdgeCreatesCycle is returned as is.
func AddDependency(g graph.Graph[string, string], dep, dependent string) error {
	for _, hash := range []string{dep, dependent} {
		err := EnsureVertex(g, hash)
		if err != nil {
			return err
		}
	}

	err := g.AddEdge(dep, dependent)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return err
	}

	return nil
}
