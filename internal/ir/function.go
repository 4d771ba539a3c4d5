package ir

import (
	"fmt"

	kerrors "luadec/internal/errors"
	"luadec/internal/graph"
)

// Function is a CFG-IR function container: a graph of NodeIDs, a block per
// node, and a single entry. Edges carry no weight of their own —
// an edge's branch kind is derived from its source block's terminator
// (invariant 2), which Validate checks.
type Function struct {
	Graph  *graph.Graph
	Blocks map[graph.NodeID]*Block
	Entry  graph.NodeID

	nextValue ValueID
	name      string
}

// NewFunction creates an empty function with a single (unterminated)
// entry block.
func NewFunction(name string) *Function {
	g := graph.New()
	fn := &Function{Graph: g, Blocks: map[graph.NodeID]*Block{}, name: name}
	entry := fn.NewBlock()
	fn.Entry = entry
	_ = g.SetEntry(entry)
	return fn
}

// Name returns the function's debug name, used only for diagnostics.
func (fn *Function) Name() string { return fn.name }

// NewBlock allocates a fresh node and an empty block for it.
func (fn *Function) NewBlock() graph.NodeID {
	id := fn.Graph.AddNode()
	fn.Blocks[id] = NewBlock()
	return id
}

// NewValue allocates a fresh ValueID, unique within fn.
func (fn *Function) NewValue() ValueID {
	v := fn.nextValue
	fn.nextValue++
	return v
}

// Block returns the block for node, or nil if node does not exist.
func (fn *Function) Block(node graph.NodeID) *Block { return fn.Blocks[node] }

// RemoveBlock deletes node from both the graph and the block map,
// returning the removed block (or nil if it didn't exist).
func (fn *Function) RemoveBlock(node graph.NodeID) *Block {
	b := fn.Blocks[node]
	delete(fn.Blocks, node)
	fn.Graph.RemoveNode(node)
	return b
}

// AddEdge adds a CFG edge. Callers are responsible for keeping the source
// block's terminator consistent with the edge set (Validate checks this).
func (fn *Function) AddEdge(from, to graph.NodeID) error {
	return fn.Graph.AddEdge(from, to)
}

// Values returns every ValueID allocated so far, in allocation order —
// used by the lifter to build its locals arena (the shared-ownership
// Local, realized here as arena indices).
func (fn *Function) Values() []ValueID {
	out := make([]ValueID, 0, fn.nextValue)
	for v := ValueID(0); v < fn.nextValue; v++ {
		out = append(out, v)
	}
	return out
}

// Validate checks the Function data-model invariants:
// each block has at most one terminator (exactly one once finalized),
// phis precede inner instructions structurally (guaranteed by the Block
// API, not re-checked here), every in-edge destination is a real block,
// edge branch kind matches the source's terminator, and there is exactly
// one entry.
func (fn *Function) Validate() error {
	if !fn.Graph.NodeExists(fn.Entry) {
		return kerrors.NewGraphError(kerrors.NoEntry, int(fn.Entry))
	}
	for _, node := range fn.Graph.Nodes() {
		block := fn.Blocks[node]
		if block == nil {
			return kerrors.NewGraphError(kerrors.InvalidNode, int(node))
		}
		succs := fn.Graph.Successors(node)
		if block.Terminator == nil {
			continue // mid-construction block; finalized later
		}
		want := block.Terminator.Targets()
		if len(want) != len(succs) {
			return fmt.Errorf("block %d: terminator names %d target(s) but graph has %d successor edge(s)",
				node, len(want), len(succs))
		}
		for i, t := range want {
			if succs[i] != t {
				return fmt.Errorf("block %d: successor edge %d is %d, terminator expects %d",
					node, i, succs[i], t)
			}
		}
	}
	return nil
}
