package ssa

import (
	"luadec/internal/graph"
	"luadec/internal/ir"
)

// Tags carries the side information StructureForLoops and
// StructureMethodCalls detect without touching the CFG itself — cues the
// lifter can consult later to pick a more specific surface form (a numeric
// for instead of a while-true, a colon call instead of an indexed one)
// than the default structural walk would.
type Tags struct {
	ForLoops    map[graph.NodeID]ForLoopHeader
	MethodCalls map[ir.ValueID]MethodCallShape
}

// ForLoopHeader records the pieces of Luau's compiled numeric-for protocol
// a header block carries: the loop variable, its limit and step, and the
// body/exit targets the header's own comparison already encodes.
type ForLoopHeader struct {
	Variable ir.ValueID
	Limit    ir.ValueID
	Step     ir.ValueID
	Body     graph.NodeID
	Exit     graph.NodeID
}

// MethodCallShape records a Call whose target was loaded via `obj[key]`
// where obj is also the call's first argument — the compiled shape of a
// Luau `obj:method(...)` call — so a later pass can print it that way.
type MethodCallShape struct {
	Receiver ir.ValueID
	Method   string
}

// Run drives the four SSA-level structuring helpers to a fixpoint, in the
// order the decompiler's own entry point imports them in: conditionals,
// for-loops, jumps, method calls.
func Run(fn *ir.Function) (*Tags, error) {
	tags := &Tags{ForLoops: map[graph.NodeID]ForLoopHeader{}, MethodCalls: map[ir.ValueID]MethodCallShape{}}
	for {
		changed := false
		if StructureConditionals(fn) {
			changed = true
		}
		if StructureForLoops(fn, tags) {
			changed = true
		}
		if StructureJumps(fn) {
			changed = true
		}
		if StructureMethodCalls(fn, tags) {
			changed = true
		}
		if !changed {
			return tags, nil
		}
	}
}

// StructureJumps folds an empty, single-predecessor jump-chain block away:
// a block with no phis, no instructions of its own, and an unconditional
// jump to C can be skipped entirely by whichever block still points at it,
// since nothing it would have contributed is lost.
func StructureJumps(fn *ir.Function) bool {
	changed := false
	for _, node := range fn.Graph.Nodes() {
		if node == fn.Entry {
			continue
		}
		block := fn.Blocks[node]
		if block == nil || len(block.Phis) != 0 || len(block.Inner) != 0 {
			continue
		}
		jump, ok := block.Terminator.(*ir.UnconditionalJump)
		if !ok || jump.Target == node {
			continue
		}
		preds := fn.Graph.Predecessors(node)
		if len(preds) != 1 {
			continue
		}
		pred := preds[0]
		if !retarget(fn.Blocks[pred].Terminator, node, jump.Target) {
			continue
		}
		if err := fn.Graph.RemoveEdge(pred, node); err != nil {
			continue
		}
		if err := fn.Graph.RemoveEdge(node, jump.Target); err != nil {
			continue
		}
		if err := fn.Graph.AddEdge(pred, jump.Target); err != nil {
			continue
		}
		fn.RemoveBlock(node)
		changed = true
	}
	return changed
}

// retarget rewrites every edge in t that points at from to point at to
// instead, reporting whether it found one.
func retarget(t ir.Terminator, from, to graph.NodeID) bool {
	switch term := t.(type) {
	case *ir.UnconditionalJump:
		if term.Target != from {
			return false
		}
		term.Target = to
		return true
	case *ir.ConditionalJump:
		found := false
		if term.TrueBranch == from {
			term.TrueBranch = to
			found = true
		}
		if term.FalseBranch == from {
			term.FalseBranch = to
			found = true
		}
		return found
	default:
		return false
	}
}

// StructureConditionals folds the classic ternary diamond — a header
// testing cond, whose two single-predecessor, side-effect-free arms each
// do nothing but Move a different value into the same destination before
// rejoining at the same block — into `cond and a or b`, computed directly
// in the header with no branch at all. Luau's own compiler emits exactly
// this shape for `x = cond and a or b` source and for ternary-like
// conditional expressions; folding it back undoes that lowering instead of
// structuring it as a full if/else.
func StructureConditionals(fn *ir.Function) bool {
	changed := false
	for _, node := range fn.Graph.Nodes() {
		block := fn.Blocks[node]
		if block == nil {
			continue
		}
		cj, ok := block.Terminator.(*ir.ConditionalJump)
		if !ok {
			continue
		}
		thenDest, thenSrc, thenJoin, ok1 := trivialMoveArm(fn, cj.TrueBranch)
		elseDest, elseSrc, elseJoin, ok2 := trivialMoveArm(fn, cj.FalseBranch)
		if !ok1 || !ok2 || thenDest != elseDest || thenJoin != elseJoin {
			continue
		}

		and := fn.NewValue()
		or := fn.NewValue()
		block.AddInner(&ir.Binary{Dest: and, Op: ir.And, Lhs: cj.Condition, Rhs: thenSrc})
		block.AddInner(&ir.Binary{Dest: or, Op: ir.Or, Lhs: and, Rhs: elseSrc})
		block.AddInner(&ir.Move{Dest: thenDest, Source: or})
		block.SetTerminator(&ir.UnconditionalJump{Target: thenJoin})

		_ = fn.Graph.RemoveEdge(node, cj.TrueBranch)
		_ = fn.Graph.RemoveEdge(node, cj.FalseBranch)
		_ = fn.Graph.RemoveEdge(cj.TrueBranch, thenJoin)
		_ = fn.Graph.RemoveEdge(cj.FalseBranch, thenJoin)
		fn.RemoveBlock(cj.TrueBranch)
		fn.RemoveBlock(cj.FalseBranch)
		_ = fn.Graph.AddEdge(node, thenJoin)
		changed = true
	}
	return changed
}

// trivialMoveArm reports whether n is exactly one Move instruction (no
// phis, no other instructions) jumping unconditionally to a join, with n
// as its only predecessor — the shape a ternary's arm takes once
// destructed.
func trivialMoveArm(fn *ir.Function, n graph.NodeID) (dest, src ir.ValueID, join graph.NodeID, ok bool) {
	block := fn.Blocks[n]
	if block == nil || len(block.Phis) != 0 || len(block.Inner) != 1 {
		return 0, 0, 0, false
	}
	mv, isMove := block.Inner[0].(*ir.Move)
	if !isMove {
		return 0, 0, 0, false
	}
	jump, isJump := block.Terminator.(*ir.UnconditionalJump)
	if !isJump {
		return 0, 0, 0, false
	}
	if len(fn.Graph.Predecessors(n)) != 1 {
		return 0, 0, 0, false
	}
	return mv.Dest, mv.Source, jump.Target, true
}

// StructureForLoops recognizes Luau's compiled numeric-for protocol: a
// header whose body adds a step value to the loop variable (the step is
// not checked to be a constant) and jumps back, with the header's own comparison choosing between the body
// and an exit. Luau bytecode proper carries a dedicated FORNPREP/FORNLOOP
// instruction pair for this; this decompiler only ever sees the generic
// conditional-jump-to-self shape those lower to once expanded, so the
// protocol has to be pattern-matched back rather than read off a single
// opcode.
func StructureForLoops(fn *ir.Function, tags *Tags) bool {
	changed := false
	for _, header := range fn.Graph.Nodes() {
		if _, already := tags.ForLoops[header]; already {
			continue
		}
		block := fn.Blocks[header]
		if block == nil {
			continue
		}
		cj, ok := block.Terminator.(*ir.ConditionalJump)
		if !ok {
			continue
		}
		cmp := definingBinary(block, cj.Condition)
		if cmp == nil || (cmp.Op != ir.Lt && cmp.Op != ir.Le) {
			continue
		}
		variable, limit := cmp.Lhs, cmp.Rhs

		for _, body := range []graph.NodeID{cj.TrueBranch, cj.FalseBranch} {
			exit := cj.FalseBranch
			if body == cj.FalseBranch {
				exit = cj.TrueBranch
			}
			bodyBlock := fn.Blocks[body]
			if bodyBlock == nil {
				continue
			}
			jump, isJump := bodyBlock.Terminator.(*ir.UnconditionalJump)
			if !isJump || jump.Target != header {
				continue
			}
			step := incrementStep(bodyBlock, variable)
			if step == 0 {
				continue
			}
			tags.ForLoops[header] = ForLoopHeader{Variable: variable, Limit: limit, Step: step, Body: body, Exit: exit}
			changed = true
			break
		}
	}
	return changed
}

// definingBinary finds the Binary instruction in block that defines v, if
// any — the header's own comparison always lives in its own block since
// nothing else can have produced it first.
func definingBinary(block *ir.Block, v ir.ValueID) *ir.Binary {
	for _, inst := range block.Inner {
		if b, ok := inst.(*ir.Binary); ok && b.Dest == v {
			return b
		}
	}
	return nil
}

// incrementStep reports the value added to variable by the first Add in
// block that reads it (`variable' = variable + step`); zero means
// no such increment was found (ValueID 0 can never be a legitimate step
// operand here, since it is always an earlier-defined register and a
// for-loop step is always freshly materialized in the body).
func incrementStep(block *ir.Block, variable ir.ValueID) ir.ValueID {
	for _, inst := range block.Inner {
		b, ok := inst.(*ir.Binary)
		if !ok || b.Op != ir.Add {
			continue
		}
		if b.Lhs == variable {
			return b.Rhs
		}
		if b.Rhs == variable {
			return b.Lhs
		}
	}
	return 0
}

// StructureMethodCalls tags a Call whose target was loaded as `recv[key]`
// and whose first argument is that same recv — Luau's compiled shape for
// a `recv:method(...)` call — so the lifter can print it with colon-call
// syntax instead of spelling the receiver out twice.
func StructureMethodCalls(fn *ir.Function, tags *Tags) bool {
	changed := false
	for _, node := range fn.Graph.Nodes() {
		block := fn.Blocks[node]
		if block == nil {
			continue
		}
		for _, inst := range block.Inner {
			call, ok := inst.(*ir.Call)
			if !ok || len(call.Args) == 0 {
				continue
			}
			if _, already := tags.MethodCalls[call.Target]; already {
				continue
			}
			load := definingLoadIndex(block, call.Target)
			if load == nil || load.Object != call.Args[0] {
				continue
			}
			method, ok := constantStringKey(block, load.Key)
			if !ok {
				continue
			}
			tags.MethodCalls[call.Target] = MethodCallShape{Receiver: load.Object, Method: method}
			changed = true
		}
	}
	return changed
}

func definingLoadIndex(block *ir.Block, v ir.ValueID) *ir.LoadIndex {
	for _, inst := range block.Inner {
		if l, ok := inst.(*ir.LoadIndex); ok && l.Dest == v {
			return l
		}
	}
	return nil
}

func constantStringKey(block *ir.Block, v ir.ValueID) (string, bool) {
	for _, inst := range block.Inner {
		lc, ok := inst.(*ir.LoadConstant)
		if !ok || lc.Dest != v {
			continue
		}
		if lc.Constant.Kind == ir.ConstString {
			return string(lc.Constant.Str), true
		}
		return "", false
	}
	return "", false
}
