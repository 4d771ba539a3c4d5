// Package graph implements the directed-graph kernel this decompiler builds on:
// stable node identifiers, successor/predecessor queries, dominators,
// post-dominators, and back-edge detection. It has no notion of basic
// blocks or instructions — internal/ir layers those on top.
package graph

import (
	kerrors "luadec/internal/errors"
)

// NodeID is an opaque dense identifier for a graph node, unique within a
// Graph.
type NodeID int

// Edge is a directed edge between two nodes.
type Edge struct {
	From NodeID
	To   NodeID
}

// Graph is a directed graph with stable node identifiers. Successor and
// predecessor iteration order is insertion order of edges, so that two
// structuring runs over edge-identical CFGs produce identical output
// (callers may depend on this ordering).
type Graph struct {
	order    []NodeID
	exists   map[NodeID]bool
	succ     map[NodeID][]NodeID
	pred     map[NodeID][]NodeID
	entry    NodeID
	hasEntry bool
	nextID   NodeID
}

// New returns an empty graph.
func New() *Graph {
	return &Graph{
		exists: make(map[NodeID]bool),
		succ:   make(map[NodeID][]NodeID),
		pred:   make(map[NodeID][]NodeID),
	}
}

// AddNode allocates and returns a fresh NodeID.
func (g *Graph) AddNode() NodeID {
	id := g.nextID
	g.nextID++
	g.addNode(id)
	return id
}

// AddNodeWithID inserts a node under a caller-chosen id, failing if that id
// is already present (spec's DuplicateNode).
func (g *Graph) AddNodeWithID(id NodeID) error {
	if g.exists[id] {
		return kerrors.NewGraphError(kerrors.DuplicateNode, int(id))
	}
	g.addNode(id)
	return nil
}

func (g *Graph) addNode(id NodeID) {
	g.exists[id] = true
	g.order = append(g.order, id)
	if id >= g.nextID {
		g.nextID = id + 1
	}
}

// NodeExists reports whether id names a live node.
func (g *Graph) NodeExists(id NodeID) bool { return g.exists[id] }

// Nodes returns all live nodes in insertion order.
func (g *Graph) Nodes() []NodeID {
	out := make([]NodeID, 0, len(g.order))
	for _, n := range g.order {
		if g.exists[n] {
			out = append(out, n)
		}
	}
	return out
}

// SetEntry designates id as the graph's single entry point.
func (g *Graph) SetEntry(id NodeID) error {
	if !g.exists[id] {
		return kerrors.NewGraphError(kerrors.InvalidNode, int(id))
	}
	g.entry = id
	g.hasEntry = true
	return nil
}

// Entry returns the entry node, or false if none has been set.
func (g *Graph) Entry() (NodeID, bool) { return g.entry, g.hasEntry }

// AddEdge adds a directed edge from -> to. Parallel edges between the same
// pair are rejected (EdgeExists) since every caller in this codebase
// distinguishes successors by branch kind, not multiplicity.
func (g *Graph) AddEdge(from, to NodeID) error {
	if !g.exists[from] {
		return kerrors.NewGraphError(kerrors.InvalidNode, int(from))
	}
	if !g.exists[to] {
		return kerrors.NewGraphError(kerrors.InvalidNode, int(to))
	}
	for _, s := range g.succ[from] {
		if s == to {
			return kerrors.NewGraphError(kerrors.EdgeExists, int(from))
		}
	}
	g.succ[from] = append(g.succ[from], to)
	g.pred[to] = append(g.pred[to], from)
	return nil
}

// RemoveEdge removes the edge from -> to, if present.
func (g *Graph) RemoveEdge(from, to NodeID) error {
	if !g.exists[from] || !g.exists[to] {
		return kerrors.NewGraphError(kerrors.InvalidNode, int(from))
	}
	g.succ[from] = removeID(g.succ[from], to)
	g.pred[to] = removeID(g.pred[to], from)
	return nil
}

// RemoveNode deletes a node and every edge touching it. This
// invalidates any iterator a caller is holding over Nodes()/Successors();
// callers must materialize lists before mutating.
func (g *Graph) RemoveNode(id NodeID) {
	if !g.exists[id] {
		return
	}
	for _, s := range append([]NodeID(nil), g.succ[id]...) {
		g.pred[s] = removeID(g.pred[s], id)
	}
	for _, p := range append([]NodeID(nil), g.pred[id]...) {
		g.succ[p] = removeID(g.succ[p], id)
	}
	delete(g.succ, id)
	delete(g.pred, id)
	delete(g.exists, id)
	if g.hasEntry && g.entry == id {
		g.hasEntry = false
	}
}

// Successors returns id's successors in edge-insertion order.
func (g *Graph) Successors(id NodeID) []NodeID { return append([]NodeID(nil), g.succ[id]...) }

// Predecessors returns id's predecessors in edge-insertion order.
func (g *Graph) Predecessors(id NodeID) []NodeID { return append([]NodeID(nil), g.pred[id]...) }

func removeID(ids []NodeID, target NodeID) []NodeID {
	out := ids[:0]
	for _, id := range ids {
		if id != target {
			out = append(out, id)
		}
	}
	return out
}

// Clone returns a deep copy of g. Used by PostDominators to build the
// sink-decorated view without mutating the caller's graph.
func (g *Graph) Clone() *Graph {
	c := New()
	for _, n := range g.order {
		if g.exists[n] {
			_ = c.AddNodeWithID(n)
		}
	}
	for _, n := range c.order {
		for _, s := range g.succ[n] {
			_ = c.AddEdge(n, s)
		}
	}
	if g.hasEntry {
		_ = c.SetEntry(g.entry)
	}
	c.nextID = g.nextID
	return c
}
