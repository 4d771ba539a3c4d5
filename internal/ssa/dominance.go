// Package ssa turns the raw CFG-IR the bytecode lifter produces — where a
// register may be defined on more than one path — into the SSA form the
// rest of the pipeline assumes, and back out again once restructuring is
// done.
package ssa

import "luadec/internal/graph"

// Frontiers computes the dominance frontier of every node reachable from
// root, using the standard idom-walk formulation (Cytron et al.): for a
// join node b with predecessor p, every node on the idom chain from p up
// to (but not including) idom(b) has b in its frontier. The root counts as
// a join whenever it has any predecessor, since entry into the function is
// one more way in; its chain runs up to the root itself.
func Frontiers(g *graph.Graph, root graph.NodeID) (map[graph.NodeID]map[graph.NodeID]bool, error) {
	idom, err := graph.Dominators(g, root)
	if err != nil {
		return nil, err
	}
	df := map[graph.NodeID]map[graph.NodeID]bool{}
	for _, n := range g.Nodes() {
		df[n] = map[graph.NodeID]bool{}
	}
	for _, b := range g.Nodes() {
		preds := g.Predecessors(b)
		if len(preds) < 2 && b != root {
			continue
		}
		idomB, hasIdomB := idom[b]
		for _, p := range preds {
			runner := p
			for {
				if hasIdomB && runner == idomB {
					break
				}
				df[runner][b] = true
				if runner == root {
					break
				}
				next, ok := idom[runner]
				if !ok {
					break
				}
				runner = next
			}
		}
	}
	return df, nil
}
