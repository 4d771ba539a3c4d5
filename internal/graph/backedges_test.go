package graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func buildLoop(t *testing.T) (*Graph, NodeID, NodeID, NodeID) {
	t.Helper()
	g := New()
	h := g.AddNode() // header
	l := g.AddNode() // loop body
	x := g.AddNode() // exit
	assert.NoError(t, g.SetEntry(h))
	assert.NoError(t, g.AddEdge(h, l))
	assert.NoError(t, g.AddEdge(h, x))
	assert.NoError(t, g.AddEdge(l, h))
	return g, h, l, x
}

func TestBackEdgesDetectsLoopHeader(t *testing.T) {
	g, h, l, _ := buildLoop(t)
	edges, err := BackEdges(g, h)
	assert.NoError(t, err)
	assert.Contains(t, edges, Edge{From: l, To: h})

	headers, err := LoopHeaders(g, h)
	assert.NoError(t, err)
	assert.True(t, headers[h])
}

func TestBackEdgeFormulationsAgreeOnReducibleGraph(t *testing.T) {
	g, h, _, _ := buildLoop(t)
	domEdges, err := BackEdges(g, h)
	assert.NoError(t, err)
	_, dfsHeaders, err := DFSBackEdges(g, h)
	assert.NoError(t, err)

	domHeaders := map[NodeID]bool{}
	for _, e := range domEdges {
		domHeaders[e.To] = true
	}
	assert.Equal(t, domHeaders, dfsHeaders)
}

func TestNoBackEdgesInDiamond(t *testing.T) {
	g, a, _, _, _ := buildDiamond(t)
	edges, err := BackEdges(g, a)
	assert.NoError(t, err)
	assert.Empty(t, edges)
}
