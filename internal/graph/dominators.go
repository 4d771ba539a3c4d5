package graph

import kerrors "luadec/internal/errors"

// Dominators computes immediate dominators for every node reachable from
// root using the iterative data-flow algorithm of Cooper, Harvey & Kennedy
// ("A Simple, Fast Dominance Algorithm"), run to fixpoint over reverse
// post-order. Unreachable nodes are absent from the result, per spec
// §4.1.
func Dominators(g *Graph, root NodeID) (map[NodeID]NodeID, error) {
	rpo, err := ReversePostOrder(g, root)
	if err != nil {
		return nil, err
	}

	postNum := make(map[NodeID]int, len(rpo))
	for i, n := range rpo {
		// rank by reverse-postorder position; smaller is "earlier"
		postNum[n] = i
	}

	idom := make(map[NodeID]NodeID, len(rpo))
	idom[root] = root

	changed := true
	for changed {
		changed = false
		for _, n := range rpo {
			if n == root {
				continue
			}
			var newIdom NodeID
			set := false
			for _, p := range g.Predecessors(n) {
				if _, ok := postNum[p]; !ok {
					continue // predecessor not reachable from root
				}
				if _, ok := idom[p]; !ok {
					continue // not yet processed this round
				}
				if !set {
					newIdom = p
					set = true
					continue
				}
				newIdom = intersect(idom, postNum, newIdom, p)
			}
			if !set {
				continue
			}
			if prev, ok := idom[n]; !ok || prev != newIdom {
				idom[n] = newIdom
				changed = true
			}
		}
	}

	delete(idom, root) // root has no dominator of its own, per convention
	return idom, nil
}

func intersect(idom map[NodeID]NodeID, postNum map[NodeID]int, a, b NodeID) NodeID {
	for a != b {
		for postNum[a] > postNum[b] {
			a = idom[a]
		}
		for postNum[b] > postNum[a] {
			b = idom[b]
		}
	}
	return a
}

// DominatorSet returns, for every node reachable from root, the set of all
// nodes that dominate it (including itself) — used by BackEdges' "v
// dominates u" formulation.
func DominatorSet(g *Graph, root NodeID) (map[NodeID]map[NodeID]bool, error) {
	idom, err := Dominators(g, root)
	if err != nil {
		return nil, err
	}
	reach, err := Reachable(g, root)
	if err != nil {
		return nil, err
	}

	sets := make(map[NodeID]map[NodeID]bool, len(reach))
	for n := range reach {
		set := map[NodeID]bool{n: true}
		cur := n
		for cur != root {
			parent, ok := idom[cur]
			if !ok {
				break
			}
			set[parent] = true
			cur = parent
		}
		set[root] = true
		sets[n] = set
	}
	return sets, nil
}

// Dominates reports whether a dominates b (reflexively: a dominates a).
func Dominates(doms map[NodeID]map[NodeID]bool, a, b NodeID) bool {
	set, ok := doms[b]
	return ok && set[a]
}

// DominatorTree turns an immediate-dominator map into parent -> children
// adjacency, as used by post-dominator-tree-predecessor lookups in the
// Structurer and the Lifter.
func DominatorTree(idom map[NodeID]NodeID) map[NodeID][]NodeID {
	tree := make(map[NodeID][]NodeID, len(idom))
	for n, parent := range idom {
		tree[parent] = append(tree[parent], n)
	}
	return tree
}

// sinkView is an immutable decorated view, used in place of
// mutating the caller's graph to compute post-dominators: a private clone
// with one synthetic sink node, never exposed to the caller.
type sinkView struct {
	g    *Graph
	sink NodeID
}

func newSinkView(g *Graph, terminals []NodeID) *sinkView {
	clone := g.Clone()
	sink := clone.AddNode()
	for _, t := range terminals {
		_ = clone.AddEdge(t, sink)
	}
	return &sinkView{g: clone, sink: sink}
}

// reversed returns a graph with every edge of the sink view flipped, ready
// to compute dominators from the sink (which becomes the new root).
func (v *sinkView) reversed() *Graph {
	rev := New()
	for _, n := range v.g.Nodes() {
		_ = rev.AddNodeWithID(n)
	}
	for _, n := range v.g.Nodes() {
		for _, s := range v.g.Successors(n) {
			_ = rev.AddEdge(s, n)
		}
	}
	_ = rev.SetEntry(v.sink)
	return rev
}

// PostDominators computes immediate post-dominators for every node that
// can reach a terminal (successor-less) node reachable from root. It fails
// with NoEntry if no such terminal node exists — an infinite loop without
// an exit; the caller must synthesize one on a chosen back
// edge first (see internal/structurer's goto refinement).
func PostDominators(g *Graph, root NodeID) (map[NodeID]NodeID, error) {
	reach, err := Reachable(g, root)
	if err != nil {
		return nil, err
	}

	var terminals []NodeID
	for n := range reach {
		if len(g.Successors(n)) == 0 {
			terminals = append(terminals, n)
		}
	}
	if len(terminals) == 0 {
		return nil, kerrors.NewGraphError(kerrors.NoEntry, int(root))
	}

	view := newSinkView(g, terminals)
	rev := view.reversed()

	idom, err := Dominators(rev, view.sink)
	if err != nil {
		return nil, err
	}
	delete(idom, view.sink)
	for n, p := range idom {
		if p == view.sink {
			delete(idom, n)
		}
	}
	return idom, nil
}

// PostDominatorTree is the DominatorTree of PostDominators(g, root).
func PostDominatorTree(g *Graph, root NodeID) (map[NodeID][]NodeID, error) {
	idom, err := PostDominators(g, root)
	if err != nil {
		return nil, err
	}
	return DominatorTree(idom), nil
}
