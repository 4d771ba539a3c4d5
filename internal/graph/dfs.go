package graph

import kerrors "luadec/internal/errors"

// PostOrder returns the nodes reachable from root in DFS post-order:
// deterministic, successor iteration order is edge-insertion order (spec
// §4.1's "DFS postorder iterator").
func PostOrder(g *Graph, root NodeID) ([]NodeID, error) {
	if !g.NodeExists(root) {
		return nil, kerrors.NewGraphError(kerrors.InvalidNode, int(root))
	}

	var order []NodeID
	visited := map[NodeID]bool{}

	type frame struct {
		node    NodeID
		nextIdx int
	}
	stack := []frame{{root, 0}}
	visited[root] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Successors(top.node)
		if top.nextIdx < len(succs) {
			next := succs[top.nextIdx]
			top.nextIdx++
			if !visited[next] {
				visited[next] = true
				stack = append(stack, frame{next, 0})
			}
			continue
		}
		order = append(order, top.node)
		stack = stack[:len(stack)-1]
	}
	return order, nil
}

// ReversePostOrder returns PostOrder reversed — the order the classical
// dominator fixpoint (and SSA renaming) walk nodes in.
func ReversePostOrder(g *Graph, root NodeID) ([]NodeID, error) {
	po, err := PostOrder(g, root)
	if err != nil {
		return nil, err
	}
	rpo := make([]NodeID, len(po))
	for i, n := range po {
		rpo[len(po)-1-i] = n
	}
	return rpo, nil
}

// Reachable returns the set of nodes reachable from root, root included.
func Reachable(g *Graph, root NodeID) (map[NodeID]bool, error) {
	po, err := PostOrder(g, root)
	if err != nil {
		return nil, err
	}
	set := make(map[NodeID]bool, len(po))
	for _, n := range po {
		set[n] = true
	}
	return set, nil
}

// DFSBackEdges classifies edges reached during a DFS from root into "tree
// descendant" traversal and edges pointing at an ancestor still on the DFS
// stack — the alternate, stack-based formulation of a back edge (spec
// §4.1: "Both formulations must agree for reducible graphs"). It returns
// those back edges and the set of their destinations (loop headers).
func DFSBackEdges(g *Graph, root NodeID) ([]Edge, map[NodeID]bool, error) {
	if !g.NodeExists(root) {
		return nil, nil, kerrors.NewGraphError(kerrors.InvalidNode, int(root))
	}

	var backEdges []Edge
	headers := map[NodeID]bool{}
	onStack := map[NodeID]bool{}
	visited := map[NodeID]bool{}

	type frame struct {
		node    NodeID
		nextIdx int
	}
	stack := []frame{{root, 0}}
	visited[root] = true
	onStack[root] = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		succs := g.Successors(top.node)
		if top.nextIdx < len(succs) {
			next := succs[top.nextIdx]
			top.nextIdx++
			if onStack[next] {
				backEdges = append(backEdges, Edge{From: top.node, To: next})
				headers[next] = true
				continue
			}
			if !visited[next] {
				visited[next] = true
				onStack[next] = true
				stack = append(stack, frame{next, 0})
			}
			continue
		}
		onStack[top.node] = false
		stack = stack[:len(stack)-1]
	}
	return backEdges, headers, nil
}
