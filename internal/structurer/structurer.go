// Package structurer computes the dominance-based facts the lifter needs
// to decide which shape (if-then, if-then-else, short-circuit, while-true,
// goto) a node's outgoing edges take — the analysis half of
// collapse/tryMatchPattern pipeline. It answers questions, it does not
// itself mutate a graph or emit statements; internal/lifter asks these
// questions while walking the CFG in dominator order, grounded on
// _examples/original_source/cfg-to-ast/src/lib.rs's Lifter doing the same
// fusion of structuring decision and instruction lowering in one recursive
// walk (the separately-retrieved restructure/src/lib.rs names the same
// patterns — loop collapse, jump match, conditional match — but mutates an
// actual graph in place; its conditional.rs/jump.rs/loop.rs pattern bodies
// were not included in the retrieval pack, so the pattern tests here are
// reconstructed directly from that prose description).
package structurer

import "luadec/internal/graph"

// Analysis holds the dominance facts computed once per function and
// queried repeatedly while the lifter decides how to shape each node.
type Analysis struct {
	g         *graph.Graph
	root      graph.NodeID
	idom      map[graph.NodeID]graph.NodeID
	doms      map[graph.NodeID]map[graph.NodeID]bool
	postIdom  map[graph.NodeID]graph.NodeID
	loopHdrs  map[graph.NodeID]bool
}

func NewAnalysis(g *graph.Graph, root graph.NodeID) (*Analysis, error) {
	idom, err := graph.Dominators(g, root)
	if err != nil {
		return nil, err
	}
	doms, err := graph.DominatorSet(g, root)
	if err != nil {
		return nil, err
	}
	postIdom, err := graph.PostDominators(g, root)
	if err != nil {
		return nil, err
	}
	loopHdrs, err := graph.LoopHeaders(g, root)
	if err != nil {
		return nil, err
	}
	return &Analysis{g: g, root: root, idom: idom, doms: doms, postIdom: postIdom, loopHdrs: loopHdrs}, nil
}

func (a *Analysis) IsLoopHeader(n graph.NodeID) bool { return a.loopHdrs[n] }

func (a *Analysis) Dominates(x, y graph.NodeID) bool {
	return graph.Dominates(a.doms, x, y)
}

// PostDominator returns n's immediate post-dominator, if one exists (it
// won't for the function's exit blocks).
func (a *Analysis) PostDominator(n graph.NodeID) (graph.NodeID, bool) {
	p, ok := a.postIdom[n]
	return p, ok
}

// LoopExit implements §4.6 pattern 1's exit-finding rule: the unique
// post-dominator-tree predecessor of the header, falling back to the
// node whose immediate dominator is the header when exactly one such node
// exists. Loop-body nodes are not excluded from that fallback, so a header
// that immediately dominates both a body node and an exit gets no exit.
func (a *Analysis) LoopExit(header graph.NodeID) (graph.NodeID, bool) {
	if exit, ok := a.postIdom[header]; ok && exit != header {
		return exit, true
	}
	var candidate graph.NodeID
	found := false
	for _, n := range a.g.Nodes() {
		if n == header {
			continue
		}
		if a.idom[n] != header {
			continue
		}
		if found {
			return graph.NodeID(0), false
		}
		candidate = n
		found = true
	}
	return candidate, found
}

// Edge names a CFG edge by its endpoints, used as a map key by the
// collapse loop below.
type Edge struct {
	From, To graph.NodeID
}

// PickIrreducibleEdge finds one not-yet-cut retreating edge (a DFS back
// edge) whose target does not dominate its source, so neither endpoint
// dominates the other, in deterministic DFS order, for the
// last-resort goto refinement. cut names edges a previous call in the same
// collapse loop already decided to replace with a goto; this mirrors
// `_examples/original_source/restructure/src/lib.rs`'s `collapse` outer
// loop repeatedly calling `insert_goto_for_edge` until no candidate edge
// remains, rather than cutting a single edge and stopping — a CFG with
// more than one independent irreducible region needs a goto per region,
// not just the first one found.
func (a *Analysis) PickIrreducibleEdge(cut map[Edge]bool) (Edge, bool) {
	retreating, _, err := graph.DFSBackEdges(a.g, a.root)
	if err != nil {
		return Edge{}, false
	}
	for _, r := range retreating {
		e := Edge{From: r.From, To: r.To}
		if cut[e] {
			continue
		}
		if a.Dominates(e.To, e.From) {
			continue
		}
		return e, true
	}
	return Edge{}, false
}
