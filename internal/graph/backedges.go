package graph

// BackEdges returns every edge (u,v) such that v dominates u (the
// dominance formulation), by walking each reachable node's successor list
// against its dominator set. For reducible graphs this agrees with
// DFSBackEdges; internal/graph/backedges_test.go tests both formulations
// against each other on a reducible graph.
func BackEdges(g *Graph, root NodeID) ([]Edge, error) {
	doms, err := DominatorSet(g, root)
	if err != nil {
		return nil, err
	}

	var edges []Edge
	for _, node := range g.Nodes() {
		domSet, ok := doms[node]
		if !ok {
			continue
		}
		for _, succ := range g.Successors(node) {
			if domSet[succ] {
				edges = append(edges, Edge{From: node, To: succ})
			}
		}
	}
	return edges, nil
}

// LoopHeaders returns the set of nodes that are the destination of at
// least one back edge — the definition of "loop header" (spec glossary).
func LoopHeaders(g *Graph, root NodeID) (map[NodeID]bool, error) {
	edges, err := BackEdges(g, root)
	if err != nil {
		return nil, err
	}
	headers := make(map[NodeID]bool, len(edges))
	for _, e := range edges {
		headers[e.To] = true
	}
	return headers, nil
}
