package store_test

import (
	"testing"

	"github.com/dominikbraun/graph"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/askiada/go-warlock/internal/store"
)

func TestListVerticesInsertionOrder(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[string, string]()
	for _, name := range []string{"c", "a", "b"} {
		require.NoError(t, s.AddVertex(name, name, graph.VertexProperties{}))
	}

	require.ErrorIs(t, s.AddVertex("a", "a", graph.VertexProperties{}), graph.ErrVertexAlreadyExists)

	got, err := s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "a", "b"}, got)

	require.NoError(t, s.RemoveVertex("a"))

	got, err = s.ListVertices()
	require.NoError(t, err)
	assert.Equal(t, []string{"c", "b"}, got)

	count, err := s.VertexCount()
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestRemoveVertexWithEdges(t *testing.T) {
	t.Parallel()

	g := graph.NewWithStore(graph.StringHash, store.NewMemoryStore[string, string](), graph.Directed())
	require.NoError(t, g.AddVertex("a"))
	require.NoError(t, g.AddVertex("b"))
	require.NoError(t, g.AddEdge("a", "b"))
	require.ErrorIs(t, g.RemoveVertex("a"), graph.ErrVertexHasEdges)
	require.ErrorIs(t, g.RemoveVertex("missing"), graph.ErrVertexNotFound)
}

func TestListEdgesInsertionOrder(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[string, string]()
	g := graph.NewWithStore(graph.StringHash, s, graph.Directed())

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, g.AddVertex(name))
	}

	require.NoError(t, g.AddEdge("c", "a"))
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("c", "b"))
	require.NoError(t, g.UpdateEdge("a", "b", graph.EdgeAttribute("color", "red")))

	edges, err := s.ListEdges()
	require.NoError(t, err)
	require.Len(t, edges, 3)
	assert.Equal(t, [2]string{"c", "a"}, [2]string{edges[0].Source, edges[0].Target})
	assert.Equal(t, [2]string{"a", "b"}, [2]string{edges[1].Source, edges[1].Target})
	assert.Equal(t, "red", edges[1].Properties.Attributes["color"])
	assert.Equal(t, [2]string{"c", "b"}, [2]string{edges[2].Source, edges[2].Target})

	require.NoError(t, g.RemoveEdge("c", "a"))

	edges, err = s.ListEdges()
	require.NoError(t, err)
	assert.Len(t, edges, 2)
}

func TestUpdateVertex(t *testing.T) {
	t.Parallel()

	s := store.NewMemoryStore[string, string]()
	require.NoError(t, s.AddVertex("a", "a", graph.VertexProperties{Attributes: map[string]string{}}))
	require.NoError(t, s.UpdateVertex("a", graph.VertexAttribute("shape", "box")))

	_, props, err := s.Vertex("a")
	require.NoError(t, err)
	assert.Equal(t, "box", props.Attributes["shape"])

	require.ErrorIs(t, s.UpdateVertex("missing"), graph.ErrVertexNotFound)
}

func TestCreatesCycle(t *testing.T) {
	t.Parallel()

	tcs := map[string]struct {
		source, target string
		expected       bool
	}{
		"self":      {source: "a", target: "a", expected: true},
		"back edge": {source: "c", target: "a", expected: true},
		"forward":   {source: "a", target: "c", expected: false},
		"unrelated": {source: "d", target: "a", expected: false},
	}

	for name, tc := range tcs {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			s := store.NewMemoryStore[string, string]()
			g := graph.NewWithStore(graph.StringHash, s, graph.Directed())

			for _, v := range []string{"a", "b", "c", "d"} {
				require.NoError(t, g.AddVertex(v))
			}

			require.NoError(t, g.AddEdge("a", "b"))
			require.NoError(t, g.AddEdge("b", "c"))

			got, err := s.CreatesCycle(tc.source, tc.target)
			require.NoError(t, err)
			assert.Equal(t, tc.expected, got)
		})
	}
}

func TestPreventCycles(t *testing.T) {
	t.Parallel()

	g := graph.NewWithStore(graph.StringHash, store.NewMemoryStore[string, string](), graph.Directed(), graph.PreventCycles())
	require.NoError(t, g.AddVertex("a"))
	require.NoError(t, g.AddVertex("b"))
	require.NoError(t, g.AddEdge("a", "b"))
	require.ErrorIs(t, g.AddEdge("b", "a"), graph.ErrEdgeCreatesCycle)
}

func TestAddDependency(t *testing.T) {
	t.Parallel()

	g := store.NewDAG()
	require.NoError(t, store.EnsureVertex(g, "b", graph.VertexAttribute("shape", "box")))
	require.NoError(t, store.AddDependency(g, "a", "b"))
	require.NoError(t, store.AddDependency(g, "a", "b"))
	require.NoError(t, store.EnsureVertex(g, "b"))

	_, props, err := g.VertexWithProperties("b")
	require.NoError(t, err)
	assert.Equal(t, "box", props.Attributes["shape"])

	order, err := graph.TopologicalSort(g)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, order)

	require.ErrorIs(t, store.AddDependency(g, "b", "a"), graph.ErrEdgeCreatesCycle)
	require.ErrorIs(t, store.AddDependency(g, "c", "c"), graph.ErrEdgeCreatesCycle)
}
