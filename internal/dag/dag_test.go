package dag

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	g := New()
	require.NotNil(t, g)
	assert.Empty(t, g.nodes)
	assert.Empty(t, g.order)
}

func TestAddNode(t *testing.T) {
	g := New()

	g.AddNode("a")
	g.AddNode("a") // idempotent
	g.AddNode("b")

	assert.Len(t, g.nodes, 2)
	assert.Equal(t, []string{"a", "b"}, g.order)
}

func TestAddEdge(t *testing.T) {
	t.Run("success case", func(t *testing.T) {
		g := New()
		g.AddNode("a")
		g.AddNode("b")

		require.NoError(t, g.AddEdge("a", "b"))
		require.NoError(t, g.AddEdge("a", "b")) // duplicate is ignored

		assert.Equal(t, []string{"b"}, g.nodes["a"].out)
		deps, err := g.Dependencies("b")
		require.NoError(t, err)
		assert.Equal(t, []string{"a"}, deps)
		dependents, err := g.Dependents("a")
		require.NoError(t, err)
		assert.Equal(t, []string{"b"}, dependents)
	})

	t.Run("error cases", func(t *testing.T) {
		g := New()
		g.AddNode("a")

		assert.ErrorContains(t, g.AddEdge("dne", "a"), "source node not found")
		assert.ErrorContains(t, g.AddEdge("a", "dne"), "destination node not found")
		assert.ErrorContains(t, g.AddEdge("a", "a"), "self-referential edge")

		_, err := g.Dependencies("dne")
		assert.ErrorContains(t, err, "node not found")
		_, err = g.Dependents("dne")
		assert.ErrorContains(t, err, "node not found")
	})
}

func TestDetectCycles(t *testing.T) {
	build := func(t *testing.T, ids []string, edges [][2]string) *Graph {
		t.Helper()
		g := New()
		for _, id := range ids {
			g.AddNode(id)
		}
		for _, e := range edges {
			require.NoError(t, g.AddEdge(e[0], e[1]))
		}
		return g
	}

	testCases := []struct {
		name     string
		ids      []string
		edges    [][2]string
		wantPath []string
	}{
		{name: "empty graph"},
		{name: "no edges", ids: []string{"a", "b", "c"}},
		{
			name:  "valid dag with transitive edge",
			ids:   []string{"a", "b", "c", "d"},
			edges: [][2]string{{"a", "b"}, {"b", "c"}, {"a", "c"}, {"c", "d"}},
		},
		{
			name:     "direct cycle",
			ids:      []string{"a", "b"},
			edges:    [][2]string{{"a", "b"}, {"b", "a"}},
			wantPath: []string{"a", "b", "a"},
		},
		{
			name:     "longer cycle",
			ids:      []string{"a", "b", "c", "d"},
			edges:    [][2]string{{"a", "b"}, {"b", "c"}, {"c", "d"}, {"d", "a"}},
			wantPath: []string{"a", "b", "c", "d", "a"},
		},
		{
			name:     "cycle in a disjoint component",
			ids:      []string{"a", "b", "x", "y", "z"},
			edges:    [][2]string{{"a", "b"}, {"x", "y"}, {"y", "z"}, {"z", "y"}},
			wantPath: []string{"y", "z", "y"},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// --- Arrange ---
			g := build(t, tc.ids, tc.edges)

			// --- Act ---
			err := g.DetectCycles()

			// --- Assert ---
			if tc.wantPath == nil {
				assert.NoError(t, err)
				return
			}
			var cycleErr *CycleError
			require.True(t, errors.As(err, &cycleErr), "expected *CycleError, got %v", err)
			if diff := cmp.Diff(tc.wantPath, cycleErr.Path); diff != "" {
				t.Errorf("cycle path mismatch (-want +got):\n%s", diff)
			}
			assert.ErrorContains(t, err, "cycle detected")
		})
	}
}
