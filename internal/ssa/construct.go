package ssa

import (
	"fmt"

	kerrors "luadec/internal/errors"
	"luadec/internal/graph"
	"luadec/internal/ir"
)

// Register is a pre-SSA bytecode register slot. The raw function the
// bytecode parser produces addresses operands by register, and the same
// register number is reused across many instructions and blocks; Construct
// turns that into one fresh ir.ValueID per definition plus phis at the
// merge points the registers' definitions disagree on.
type Register = ir.ValueID

// RawFunction is a CFG whose instructions address Registers instead of
// SSA values. It reuses ir.Inner/ir.Terminator — a Move{Dest: r, Source: s}
// here means "register r := register s", not "SSA value".
type RawFunction struct {
	Graph     *graph.Graph
	Blocks    map[graph.NodeID]*ir.Block
	Entry     graph.NodeID
	NumParams int
}

// Construct builds an ir.Function in SSA form from raw, mirroring the
// classic dominance-frontier phi-placement algorithm: phis go exactly at
// the join points a register's definitions disagree at, and a dominator-
// tree walk renames every def to a fresh ValueID and every use to the
// definition currently reaching it (kanso's builder.go calls this
// writeVariable/readVariable; this package generalizes it with a real
// frontier computation, since kanso's source language
// has no irreducible control flow to worry about and this decompiler's
// input does).
func Construct(raw *RawFunction) (*ir.Function, error) {
	df, err := Frontiers(raw.Graph, raw.Entry)
	if err != nil {
		return nil, err
	}

	defsOf := map[Register]map[graph.NodeID]bool{}
	recordDef := func(reg Register, node graph.NodeID) {
		if defsOf[reg] == nil {
			defsOf[reg] = map[graph.NodeID]bool{}
		}
		defsOf[reg][node] = true
	}
	for p := 0; p < raw.NumParams; p++ {
		recordDef(Register(p), raw.Entry)
	}
	for _, node := range raw.Graph.Nodes() {
		b := raw.Blocks[node]
		if b == nil {
			continue
		}
		for _, inst := range b.Inner {
			if dest, ok := inst.Defines(); ok {
				recordDef(dest, node)
			}
		}
	}

	phiRegister := map[graph.NodeID]map[Register]*ir.Phi{}
	for reg, defs := range defsOf {
		worklist := make([]graph.NodeID, 0, len(defs))
		onWorklist := map[graph.NodeID]bool{}
		for n := range defs {
			worklist = append(worklist, n)
			onWorklist[n] = true
		}
		hasPhi := map[graph.NodeID]bool{}
		for len(worklist) > 0 {
			n := worklist[len(worklist)-1]
			worklist = worklist[:len(worklist)-1]
			for front := range df[n] {
				if hasPhi[front] {
					continue
				}
				hasPhi[front] = true
				if phiRegister[front] == nil {
					phiRegister[front] = map[Register]*ir.Phi{}
				}
				phiRegister[front][reg] = ir.NewPhi(0) // Dest assigned during rename
				if !onWorklist[front] {
					onWorklist[front] = true
					worklist = append(worklist, front)
				}
			}
		}
	}

	fn := ir.NewFunction("")
	fn.RemoveBlock(fn.Entry)
	fn.Entry = raw.Entry
	fn.Graph = raw.Graph.Clone()
	for _, node := range fn.Graph.Nodes() {
		fn.Blocks[node] = ir.NewBlock()
	}

	fresh := fn.NewValue

	phiDest := map[graph.NodeID]map[Register]ir.ValueID{}
	for node, phis := range phiRegister {
		phiDest[node] = map[Register]ir.ValueID{}
		for reg, phi := range phis {
			phi.Dest = fresh()
			phiDest[node][reg] = phi.Dest
			fn.Blocks[node].AddPhi(phi)
		}
	}

	idomTree, err := treeChildren(raw.Graph, raw.Entry)
	if err != nil {
		return nil, err
	}

	stacks := map[Register][]ir.ValueID{}
	push := func(reg Register, v ir.ValueID) { stacks[reg] = append(stacks[reg], v) }
	top := func(reg Register) (ir.ValueID, bool) {
		s := stacks[reg]
		if len(s) == 0 {
			return 0, false
		}
		return s[len(s)-1], true
	}

	var walk func(node graph.NodeID) error
	walk = func(node graph.NodeID) error {
		pushed := map[Register]int{}

		if node == raw.Entry {
			for p := 0; p < raw.NumParams; p++ {
				v := fresh()
				fn.Blocks[node].AddInner(&ir.Parameter{Dest: v, Index: p})
				push(Register(p), v)
				pushed[Register(p)]++
			}
		}
		for reg, v := range phiDest[node] {
			push(reg, v)
			pushed[reg]++
		}

		rawBlock := raw.Blocks[node]
		out := fn.Blocks[node]
		lookup := func(r Register) (ir.ValueID, error) {
			v, ok := top(r)
			if !ok {
				return 0, kerrors.NewSSAError(kerrors.UndefinedUse, fmt.Sprintf("r%d", r), fmt.Sprintf("block %d", node))
			}
			return v, nil
		}
		for _, inst := range rawBlock.Inner {
			renamed, err := renameUses(inst, lookup)
			if err != nil {
				return err
			}
			if oldDest, ok := renamed.Defines(); ok {
				newDest := fresh()
				setDefines(renamed, newDest)
				push(oldDest, newDest)
				pushed[oldDest]++
			}
			out.AddInner(renamed)
		}
		if rawBlock.Terminator != nil {
			renamedTerm, err := renameTerminator(rawBlock.Terminator, lookup)
			if err != nil {
				return err
			}
			out.SetTerminator(renamedTerm)
		}

		for _, succ := range fn.Graph.Successors(node) {
			for reg, phi := range phiRegister[succ] {
				if v, ok := top(reg); ok {
					phi.Incoming[node] = v
				}
			}
		}

		for _, child := range idomTree[node] {
			if err := walk(child); err != nil {
				return err
			}
		}
		for reg, n := range pushed {
			for i := 0; i < n; i++ {
				stacks[reg] = stacks[reg][:len(stacks[reg])-1]
			}
		}
		return nil
	}

	if err := walk(raw.Entry); err != nil {
		return nil, err
	}
	return fn, nil
}

func treeChildren(g *graph.Graph, root graph.NodeID) (map[graph.NodeID][]graph.NodeID, error) {
	idom, err := graph.Dominators(g, root)
	if err != nil {
		return nil, err
	}
	children := map[graph.NodeID][]graph.NodeID{}
	for _, n := range g.Nodes() {
		if p, ok := idom[n]; ok {
			children[p] = append(children[p], n)
		}
	}
	return children, nil
}
