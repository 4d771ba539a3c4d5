// Package locals decides, for every SSA-destructed value that survives
// into the lifted AST, whether its Lua local can be declared right where
// it's first assigned or must be forward-declared earlier so that later
// iterations of an enclosing loop (or any other multi-entry use) see the
// same local instead of shadowing a fresh one each time.
package locals

import (
	"luadec/internal/graph"
	"luadec/internal/ir"
)

// Decision is the declare-here-or-forward-declare verdict for one value.
type Decision struct {
	ForwardDeclare bool
	At             graph.NodeID // where `local v` (= nil) belongs when ForwardDeclare
}

// Analyze computes a Decision for every value fn's instructions define. A
// value that SSA destruction coalesced (its phi became Moves in more than
// one predecessor) now has more than one definition site, and no single
// `local v = expr` can cover all of them. The rule: take the nearest
// common dominator of every block that defines or uses the value. A value
// with exactly one definition, whose own block is that NCD, declares in
// place (`local v = expr`); anything else — multiple definitions, or a use
// reaching the value along a path that doesn't go through its one
// definition first — forward-declares `local v` at the NCD and turns every
// definition into a plain assignment.
func Analyze(fn *ir.Function) (map[ir.ValueID]Decision, error) {
	idom, err := graph.Dominators(fn.Graph, fn.Entry)
	if err != nil {
		return nil, err
	}
	tree := graph.DominatorTree(idom)
	depth := map[graph.NodeID]int{fn.Entry: 0}
	var walk func(n graph.NodeID)
	walk = func(n graph.NodeID) {
		for _, c := range tree[n] {
			depth[c] = depth[n] + 1
			walk(c)
		}
	}
	walk(fn.Entry)

	ncd := func(a, b graph.NodeID) graph.NodeID {
		for depth[a] > depth[b] {
			a = idom[a]
		}
		for depth[b] > depth[a] {
			b = idom[b]
		}
		for a != b {
			pa, okA := idom[a]
			pb, okB := idom[b]
			if !okA || !okB {
				return fn.Entry
			}
			a, b = pa, pb
		}
		return a
	}

	defBlocks := map[ir.ValueID][]graph.NodeID{}
	useBlocks := map[ir.ValueID][]graph.NodeID{}

	for _, node := range fn.Graph.Nodes() {
		block := fn.Blocks[node]
		for _, p := range block.Phis {
			defBlocks[p.Dest] = append(defBlocks[p.Dest], node)
		}
		for _, inst := range block.Inner {
			if d, ok := inst.Defines(); ok {
				defBlocks[d] = append(defBlocks[d], node)
			}
			for _, u := range inst.Uses() {
				useBlocks[u] = append(useBlocks[u], node)
			}
		}
		if block.Terminator != nil {
			for _, u := range block.Terminator.Uses() {
				useBlocks[u] = append(useBlocks[u], node)
			}
		}
	}

	decisions := make(map[ir.ValueID]Decision, len(defBlocks))
	for v, defs := range defBlocks {
		joint := defs[0]
		for _, d := range defs[1:] {
			joint = ncd(joint, d)
		}
		for _, useNode := range useBlocks[v] {
			joint = ncd(joint, useNode)
		}
		if len(defs) == 1 && joint == defs[0] {
			decisions[v] = Decision{ForwardDeclare: false, At: defs[0]}
		} else {
			decisions[v] = Decision{ForwardDeclare: true, At: joint}
		}
	}
	return decisions, nil
}
