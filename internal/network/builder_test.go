package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ZhangdingLiu/Charleston-Flood-Risk-Digital-Twin/internal/domain"
)

// repeatIncidents fabricates n incidents with the same street set on
// consecutive days.
func repeatIncidents(start time.Time, n int, streets ...string) []domain.Incident {
	out := make([]domain.Incident, n)
	for i := range out {
		day := start.AddDate(0, 0, i)
		out[i] = domain.Incident{
			ID:      "inc-" + day.Format("20060102"),
			Date:    day,
			Streets: streets,
		}
	}
	return out
}

func TestBuild(t *testing.T) {
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	// A, B, C always flood together; D only ever pairs with A, twice.
	incidents := repeatIncidents(day, 6, "A", "B", "C")
	incidents = append(incidents, repeatIncidents(day.AddDate(0, 1, 0), 2, "A", "D")...)

	net := Build(incidents, Thresholds{Occurrence: 5, Edge: 3, Weight: 0.4})

	t.Run("node set", func(t *testing.T) {
		// A appears in 8 incidents, B and C in 6, D only in 2.
		assert.Equal(t, []string{"A", "B", "C"}, net.Names())
		require.Equal(t, 3, net.NodeCount())
		assert.Equal(t, 8, net.Nodes()[0].Count)
		assert.Equal(t, 6, net.Nodes()[1].Count)
	})

	t.Run("edge weights over surviving incidents", func(t *testing.T) {
		// The {A, D} incidents project to {A} alone and drop out, so A's
		// weight denominator is 6, not 8, and every pair weight is 1.0.
		require.Equal(t, 6, net.EdgeCount())
		for _, e := range net.Edges() {
			assert.Equal(t, 6, e.CoCount)
			assert.Equal(t, 6, e.ParentCount)
			assert.Equal(t, 1.0, e.Weight)
		}
	})

	t.Run("adjacency", func(t *testing.T) {
		a, ok := net.Lookup("A")
		require.True(t, ok)
		assert.Len(t, net.Parents(a), 2)
		assert.Len(t, net.Children(a), 2)
		assert.False(t, net.Contains("D"))
	})
}

func TestBuildNodes(t *testing.T) {
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)
	incidents := repeatIncidents(day, 3, "B", "A")
	incidents = append(incidents, repeatIncidents(day.AddDate(0, 1, 0), 2, "A", "C")...)

	t.Run("threshold boundary is inclusive", func(t *testing.T) {
		nodes := BuildNodes(incidents, 3)
		require.Len(t, nodes, 2)
		assert.Equal(t, Node{ID: 0, Name: "A", Count: 5}, nodes[0])
		assert.Equal(t, Node{ID: 1, Name: "B", Count: 3}, nodes[1])
	})

	t.Run("ids follow sorted name order", func(t *testing.T) {
		nodes := BuildNodes(incidents, 1)
		require.Len(t, nodes, 3)
		assert.Equal(t, "A", nodes[0].Name)
		assert.Equal(t, "B", nodes[1].Name)
		assert.Equal(t, "C", nodes[2].Name)
	})

	t.Run("empty when nothing qualifies", func(t *testing.T) {
		assert.Empty(t, BuildNodes(incidents, 100))
	})
}

func TestBuildEdges(t *testing.T) {
	day := time.Date(2023, 1, 2, 0, 0, 0, 0, time.UTC)

	t.Run("direction asymmetry", func(t *testing.T) {
		// X and Y co-occur 3 times; X floods alone in 3 further two-node
		// incidents with Z, so X's denominator is larger than Y's.
		incidents := repeatIncidents(day, 3, "X", "Y")
		incidents = append(incidents, repeatIncidents(day.AddDate(0, 1, 0), 3, "X", "Z")...)

		nodes := BuildNodes(incidents, 3)
		edges := BuildEdges(incidents, nodes, 3, 0.0)

		byPair := make(map[[2]string]Edge)
		for _, e := range edges {
			byPair[[2]string{nodes[e.Parent].Name, nodes[e.Child].Name}] = e
		}

		xy, ok := byPair[[2]string{"X", "Y"}]
		require.True(t, ok)
		assert.InDelta(t, 0.5, xy.Weight, 1e-12)

		yx, ok := byPair[[2]string{"Y", "X"}]
		require.True(t, ok)
		assert.InDelta(t, 1.0, yx.Weight, 1e-12)
	})

	t.Run("edge threshold excludes rare pairs", func(t *testing.T) {
		incidents := repeatIncidents(day, 2, "X", "Y")
		nodes := []Node{{ID: 0, Name: "X", Count: 2}, {ID: 1, Name: "Y", Count: 2}}

		assert.Empty(t, BuildEdges(incidents, nodes, 3, 0.0))
		assert.Len(t, BuildEdges(incidents, nodes, 2, 0.0), 2)
	})

	t.Run("weight threshold filters per direction", func(t *testing.T) {
		incidents := repeatIncidents(day, 3, "X", "Y")
		incidents = append(incidents, repeatIncidents(day.AddDate(0, 1, 0), 3, "X", "Z")...)

		nodes := BuildNodes(incidents, 3)
		edges := BuildEdges(incidents, nodes, 3, 0.6)

		// Both outgoing weights of X are 3/6 and fall below 0.6; the
		// reverse directions are 3/3 and survive.
		require.Len(t, edges, 2)
		for _, e := range edges {
			assert.Equal(t, "X", nodes[e.Child].Name)
			assert.Equal(t, 1.0, e.Weight)
		}
	})

	t.Run("no self loops no edges without co-occurrence", func(t *testing.T) {
		incidents := repeatIncidents(day, 5, "X")
		nodes := BuildNodes(incidents, 5)
		assert.Empty(t, BuildEdges(incidents, nodes, 1, 0.0))
	})

	t.Run("deterministic ordering", func(t *testing.T) {
		incidents := repeatIncidents(day, 4, "A", "B", "C")
		nodes := BuildNodes(incidents, 3)

		first := BuildEdges(incidents, nodes, 3, 0.0)
		second := BuildEdges(incidents, nodes, 3, 0.0)
		require.Equal(t, first, second)
		for i := 1; i < len(first); i++ {
			prev, cur := first[i-1], first[i]
			assert.True(t, prev.Parent < cur.Parent ||
				(prev.Parent == cur.Parent && prev.Child < cur.Child))
		}
	})
}
