package ssa

import (
	"fmt"

	kerrors "luadec/internal/errors"
	"luadec/internal/graph"
	"luadec/internal/ir"
)

// Destruct eliminates every phi in fn, replacing it with parallel Moves on
// the incoming edges. Critical edges — a branch with more than
// one successor landing on a join with more than one predecessor — are
// split first, since a Move belongs to exactly one edge and a critical
// edge has nowhere safe to put it without affecting the block's other
// successors or the join's other predecessors. Cycles among a block's
// phis (phi(a)=b, phi(b)=a) are broken with a fresh temporary, the
// standard parallel-copy sequentialization.
func Destruct(fn *ir.Function) error {
	if err := validateSSAForm(fn); err != nil {
		return err
	}
	if err := splitCriticalEdges(fn); err != nil {
		return err
	}

	// Temporaries must not collide with any SSA value already in use.
	maxValue := ir.ValueID(0)
	bump := func(v ir.ValueID) {
		if v > maxValue {
			maxValue = v
		}
	}
	for _, node := range fn.Graph.Nodes() {
		b := fn.Blocks[node]
		for _, p := range b.Phis {
			bump(p.Dest)
			for _, v := range p.Incoming {
				bump(v)
			}
		}
		for _, inst := range b.Inner {
			if d, ok := inst.Defines(); ok {
				bump(d)
			}
			for _, u := range inst.Uses() {
				bump(u)
			}
		}
		if b.Terminator != nil {
			for _, u := range b.Terminator.Uses() {
				bump(u)
			}
		}
	}
	// Temporaries come from fn's own counter, advanced past maxValue, so
	// fn.Values (and the lifter's locals built from it) include them.
	freshTemp := func() ir.ValueID {
		v := fn.NewValue()
		for v <= maxValue {
			v = fn.NewValue()
		}
		return v
	}

	for _, node := range fn.Graph.Nodes() {
		block := fn.Blocks[node]
		if len(block.Phis) == 0 {
			continue
		}
		for _, pred := range fn.Graph.Predecessors(node) {
			copies := make(map[ir.ValueID]ir.ValueID, len(block.Phis))
			order := make([]ir.ValueID, 0, len(block.Phis))
			for _, phi := range block.Phis {
				src, ok := phi.Incoming[pred]
				if !ok {
					continue
				}
				copies[phi.Dest] = src
				order = append(order, phi.Dest)
			}
			moves := sequentializeCopies(order, copies, freshTemp)
			predBlock := fn.Blocks[pred]
			predBlock.Inner = append(predBlock.Inner, moves...)
		}
		block.Phis = nil
	}
	return nil
}

// validateSSAForm checks the two well-formedness properties Destruct
// assumes of its input before it starts rewiring phis into Moves: every
// value is defined exactly once (NonSSAInput catches a builder bug that
// reused a ValueID), and every phi names exactly the block's actual
// predecessor set, no more and no fewer (MalformedPhi catches a phi built
// for a graph shape that has since changed underneath it). Both would
// otherwise surface much later and much less legibly, as a parallel-copy
// sequentialization that silently drops or duplicates a Move.
func validateSSAForm(fn *ir.Function) error {
	defCount := map[ir.ValueID]int{}
	bump := func(v ir.ValueID) { defCount[v]++ }

	for _, node := range fn.Graph.Nodes() {
		block := fn.Blocks[node]
		if block == nil {
			continue
		}
		for _, p := range block.Phis {
			bump(p.Dest)
		}
		for _, inst := range block.Inner {
			if d, ok := inst.Defines(); ok {
				bump(d)
			}
		}
	}
	for v, n := range defCount {
		if n > 1 {
			return kerrors.NewSSAError(kerrors.NonSSAInput, v.String(), fmt.Sprintf("defined %d times", n))
		}
	}

	for _, node := range fn.Graph.Nodes() {
		block := fn.Blocks[node]
		if block == nil || len(block.Phis) == 0 {
			continue
		}
		preds := map[graph.NodeID]bool{}
		for _, p := range fn.Graph.Predecessors(node) {
			preds[p] = true
		}
		for _, phi := range block.Phis {
			if len(phi.Incoming) != len(preds) {
				return kerrors.NewSSAError(kerrors.MalformedPhi, phi.Dest.String(),
					fmt.Sprintf("block %d has %d predecessor(s) but phi names %d", node, len(preds), len(phi.Incoming)))
			}
			for pred := range phi.Incoming {
				if !preds[pred] {
					return kerrors.NewSSAError(kerrors.MalformedPhi, phi.Dest.String(),
						fmt.Sprintf("block %d is not a predecessor of block %d", pred, node))
				}
			}
		}
	}
	return nil
}

// sequentializeCopies orders a parallel-copy set {dest: src} into a Move
// sequence that is safe even when a dest is also some other copy's src,
// breaking cycles with a temporary (e.g. a<-b, b<-a becomes t<-b, b<-a,
// a<-t).
func sequentializeCopies(order []ir.ValueID, copies map[ir.ValueID]ir.ValueID, freshTemp func() ir.ValueID) []ir.Inner {
	var out []ir.Inner
	done := map[ir.ValueID]bool{}
	isDest := func(v ir.ValueID) bool {
		_, ok := copies[v]
		return ok
	}

	var emit func(dest ir.ValueID, visiting map[ir.ValueID]bool) ir.ValueID
	emit = func(dest ir.ValueID, visiting map[ir.ValueID]bool) ir.ValueID {
		if done[dest] {
			return dest
		}
		src := copies[dest]
		if visiting[dest] {
			// dest participates in a cycle; break it with a temp that
			// holds dest's original value before it gets overwritten.
			t := freshTemp()
			out = append(out, &ir.Move{Dest: t, Source: dest})
			return t
		}
		visiting[dest] = true
		if isDest(src) && !done[src] {
			src = emit(src, visiting)
		}
		out = append(out, &ir.Move{Dest: dest, Source: src})
		done[dest] = true
		return dest
	}

	for _, dest := range order {
		if !done[dest] {
			emit(dest, map[ir.ValueID]bool{})
		}
	}
	return out
}

// splitCriticalEdges inserts an empty relay block on every edge whose
// source has more than one successor and whose destination has more than
// one predecessor.
func splitCriticalEdges(fn *ir.Function) error {
	type edge struct{ from, to graph.NodeID }
	var critical []edge
	for _, from := range fn.Graph.Nodes() {
		succs := fn.Graph.Successors(from)
		if len(succs) < 2 {
			continue
		}
		for _, to := range succs {
			if len(fn.Graph.Predecessors(to)) >= 2 {
				critical = append(critical, edge{from, to})
			}
		}
	}

	for _, e := range critical {
		relay := fn.NewBlock()
		if err := fn.Graph.RemoveEdge(e.from, e.to); err != nil {
			return err
		}
		if err := fn.Graph.AddEdge(e.from, relay); err != nil {
			return err
		}
		if err := fn.Graph.AddEdge(relay, e.to); err != nil {
			return err
		}
		fn.Blocks[relay].SetTerminator(&ir.UnconditionalJump{Target: e.to})
		retarget(fn.Blocks[e.from].Terminator, e.to, relay)

		for _, phi := range fn.Blocks[e.to].Phis {
			if v, ok := phi.Incoming[e.from]; ok {
				delete(phi.Incoming, e.from)
				phi.Incoming[relay] = v
			}
		}
	}
	return nil
}

// retarget rewrites every occurrence of oldTarget in term to newTarget, in
// place. Terminator's closed variant set means this, like renameUses, is
// one named case per concrete type.
func retarget(term ir.Terminator, oldTarget, newTarget graph.NodeID) {
	switch v := term.(type) {
	case *ir.UnconditionalJump:
		if v.Target == oldTarget {
			v.Target = newTarget
		}
	case *ir.ConditionalJump:
		if v.TrueBranch == oldTarget {
			v.TrueBranch = newTarget
		}
		if v.FalseBranch == oldTarget {
			v.FalseBranch = newTarget
		}
	case *ir.Return:
		// no targets
	}
}
