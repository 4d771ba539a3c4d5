package lifter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"luadec/internal/ast"
	"luadec/internal/ir"
)

// Scenario 1: diamond. A(cond)->{B,C}, B->D, C->D, D(return x).
func TestLiftDiamond(t *testing.T) {
	fn := ir.NewFunction("f")
	a := fn.Entry
	b := fn.NewBlock()
	c := fn.NewBlock()
	d := fn.NewBlock()
	assert.NoError(t, fn.AddEdge(a, b))
	assert.NoError(t, fn.AddEdge(a, c))
	assert.NoError(t, fn.AddEdge(b, d))
	assert.NoError(t, fn.AddEdge(c, d))

	cond := fn.NewValue()
	x := fn.NewValue()
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: cond, Constant: ir.Bool(true)})
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: x, Constant: ir.Num(42)})
	fn.Blocks[a].SetTerminator(&ir.ConditionalJump{Condition: cond, TrueBranch: b, FalseBranch: c})

	fn.Blocks[b].AddInner(&ir.StoreGlobal{Name: "flag", Value: cond})
	fn.Blocks[b].SetTerminator(&ir.UnconditionalJump{Target: d})

	fn.Blocks[c].AddInner(&ir.StoreGlobal{Name: "flag", Value: x})
	fn.Blocks[c].SetTerminator(&ir.UnconditionalJump{Target: d})

	fn.Blocks[d].SetTerminator(&ir.Return{Values: []ir.ValueID{x}})

	block, residual, err := Lift(fn, Options{})
	assert.Equal(t, 0, residual)
	assert.NoError(t, err)
	assert.Equal(t,
		"local l_0 = true\nlocal l_1 = 42\nif l_0 then\n  flag = l_0\nelse\n  flag = l_1\nend\nreturn l_1\n",
		block.String())
}

// Scenario 2: the same diamond with an empty then-branch — swap-for-
// emptiness negates the condition and folds to a then-only if.
func TestLiftEmptyThenSwapsForEmptiness(t *testing.T) {
	fn := ir.NewFunction("f")
	a := fn.Entry
	b := fn.NewBlock()
	c := fn.NewBlock()
	d := fn.NewBlock()
	assert.NoError(t, fn.AddEdge(a, b))
	assert.NoError(t, fn.AddEdge(a, c))
	assert.NoError(t, fn.AddEdge(b, d))
	assert.NoError(t, fn.AddEdge(c, d))

	cond := fn.NewValue()
	x := fn.NewValue()
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: cond, Constant: ir.Bool(true)})
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: x, Constant: ir.Num(42)})
	fn.Blocks[a].SetTerminator(&ir.ConditionalJump{Condition: cond, TrueBranch: b, FalseBranch: c})

	fn.Blocks[b].SetTerminator(&ir.UnconditionalJump{Target: d})

	fn.Blocks[c].AddInner(&ir.StoreGlobal{Name: "flag", Value: x})
	fn.Blocks[c].SetTerminator(&ir.UnconditionalJump{Target: d})

	fn.Blocks[d].SetTerminator(&ir.Return{Values: []ir.ValueID{x}})

	block, residual, err := Lift(fn, Options{})
	assert.Equal(t, 0, residual)
	assert.NoError(t, err)
	assert.Equal(t,
		"local l_0 = true\nlocal l_1 = 42\nif (not l_0) then\n  flag = l_1\nend\nreturn l_1\n",
		block.String())
}

// Scenario 3: while-true with break. H(cond)->{L,X}, L->H, X(return).
func TestLiftWhileTrueFoldsToWhileCond(t *testing.T) {
	fn := ir.NewFunction("f")
	p := fn.Entry
	h := fn.NewBlock()
	loopBody := fn.NewBlock()
	exit := fn.NewBlock()
	assert.NoError(t, fn.AddEdge(p, h))
	assert.NoError(t, fn.AddEdge(h, loopBody))
	assert.NoError(t, fn.AddEdge(h, exit))
	assert.NoError(t, fn.AddEdge(loopBody, h))

	cond := fn.NewValue()
	fn.Blocks[p].AddInner(&ir.Parameter{Dest: cond, Index: 0})
	fn.Blocks[p].SetTerminator(&ir.UnconditionalJump{Target: h})

	fn.Blocks[h].SetTerminator(&ir.ConditionalJump{Condition: cond, TrueBranch: loopBody, FalseBranch: exit})

	fn.Blocks[loopBody].AddInner(&ir.StoreGlobal{Name: "x", Value: cond})
	fn.Blocks[loopBody].SetTerminator(&ir.UnconditionalJump{Target: h})

	fn.Blocks[exit].SetTerminator(&ir.Return{})

	block, residual, err := Lift(fn, Options{})
	assert.Equal(t, 0, residual)
	assert.NoError(t, err)
	assert.Equal(t, "while l_0 do\n  x = l_0\nend\nreturn\n", block.String())
}

// Scenario 4: short-circuit. A(c1)->{B,D}; B(c2)->{C,D}; C->D; D(return).
// B is a pure test relay (no instructions of its own); its false edge
// rejoins A's own else target, so the two conditions combine with `and`.
func TestLiftShortCircuitCombinesConditions(t *testing.T) {
	fn := ir.NewFunction("f")
	a := fn.Entry
	b := fn.NewBlock()
	c := fn.NewBlock()
	d := fn.NewBlock()
	assert.NoError(t, fn.AddEdge(a, b))
	assert.NoError(t, fn.AddEdge(a, d))
	assert.NoError(t, fn.AddEdge(b, c))
	assert.NoError(t, fn.AddEdge(b, d))
	assert.NoError(t, fn.AddEdge(c, d))

	c1 := fn.NewValue()
	c2 := fn.NewValue()
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: c1, Constant: ir.Bool(true)})
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: c2, Constant: ir.Bool(true)})
	fn.Blocks[a].SetTerminator(&ir.ConditionalJump{Condition: c1, TrueBranch: b, FalseBranch: d})

	fn.Blocks[b].SetTerminator(&ir.ConditionalJump{Condition: c2, TrueBranch: c, FalseBranch: d})

	fn.Blocks[c].AddInner(&ir.StoreGlobal{Name: "y", Value: c2})
	fn.Blocks[c].SetTerminator(&ir.UnconditionalJump{Target: d})

	fn.Blocks[d].SetTerminator(&ir.Return{})

	block, residual, err := Lift(fn, Options{})
	assert.Equal(t, 0, residual)
	assert.NoError(t, err)
	assert.Equal(t,
		"local l_0 = true\nlocal l_1 = true\nif (l_0 and l_1) then\n  y = l_1\nend\nreturn\n",
		block.String())
}

// Scenario 6: concat chain folds left-associatively.
func TestLiftConcatChainIsLeftAssociative(t *testing.T) {
	fn := ir.NewFunction("f")
	entry := fn.Entry

	p0 := fn.NewValue()
	p1 := fn.NewValue()
	p2 := fn.NewValue()
	r := fn.NewValue()
	fn.Blocks[entry].AddInner(&ir.Parameter{Dest: p0, Index: 0})
	fn.Blocks[entry].AddInner(&ir.Parameter{Dest: p1, Index: 1})
	fn.Blocks[entry].AddInner(&ir.Parameter{Dest: p2, Index: 2})
	fn.Blocks[entry].AddInner(&ir.Concat{Dest: r, Values: []ir.ValueID{p0, p1, p2}})
	fn.Blocks[entry].SetTerminator(&ir.Return{Values: []ir.ValueID{r}})

	block, residual, err := Lift(fn, Options{})
	assert.Equal(t, 0, residual)
	assert.NoError(t, err)
	assert.Equal(t, "local l_3 = ((l_0 .. l_1) .. l_2)\nreturn l_3\n", block.String())
}

// Scenario 5: an irreducible two-entry loop — A->B, A->C, B->C, C->B —
// gets exactly one goto/label pair on one of the mutual edges, and no
// structuring-failure comment.
func TestLiftIrreducibleLoopInsertsOneGoto(t *testing.T) {
	fn := ir.NewFunction("f")
	a := fn.Entry
	b := fn.NewBlock()
	c := fn.NewBlock()
	d := fn.NewBlock()
	assert.NoError(t, fn.AddEdge(a, b))
	assert.NoError(t, fn.AddEdge(a, c))
	assert.NoError(t, fn.AddEdge(b, c))
	assert.NoError(t, fn.AddEdge(c, b))
	assert.NoError(t, fn.AddEdge(c, d))

	cond := fn.NewValue()
	cond2 := fn.NewValue()
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: cond, Constant: ir.Bool(true)})
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: cond2, Constant: ir.Bool(true)})
	fn.Blocks[a].SetTerminator(&ir.ConditionalJump{Condition: cond, TrueBranch: b, FalseBranch: c})
	fn.Blocks[b].SetTerminator(&ir.UnconditionalJump{Target: c})
	// c's first successor (back to b) keeps the mutual B<->C edge that
	// makes this irreducible; its second successor is a real exit so
	// post-dominators are defined.
	fn.Blocks[c].SetTerminator(&ir.ConditionalJump{Condition: cond2, TrueBranch: b, FalseBranch: d})
	fn.Blocks[d].SetTerminator(&ir.Return{})

	block, residual, err := Lift(fn, Options{})
	assert.Equal(t, 0, residual)
	assert.NoError(t, err)

	gotos, labels := countGotosAndLabels(block)
	assert.Equal(t, 1, gotos)
	assert.Equal(t, 1, labels)
	for _, stat := range block {
		_, isComment := stat.(*ast.Comment)
		assert.False(t, isComment)
	}
}

// Scenario 7: two disjoint irreducible two-entry loops chained in
// sequence — A->B, A->C, B->C, C->B, C->D, D->E, D->F, E->F, F->E, F->G —
// each must get its own goto/label pair. Before the collapse loop re-ran
// PickIrreducibleEdge to a fixpoint, only the first region (B/C) got cut;
// walking into the second region (E/F) found no if-then/if-then-else match
// and silently dropped the revisited arm's statements with no goto, no
// label, and no comment.
func TestLiftTwoDisjointIrreducibleRegionsEachGetAGoto(t *testing.T) {
	fn := ir.NewFunction("f")
	a := fn.Entry
	b := fn.NewBlock()
	c := fn.NewBlock()
	d := fn.NewBlock()
	e := fn.NewBlock()
	ff := fn.NewBlock()
	g := fn.NewBlock()
	assert.NoError(t, fn.AddEdge(a, b))
	assert.NoError(t, fn.AddEdge(a, c))
	assert.NoError(t, fn.AddEdge(b, c))
	assert.NoError(t, fn.AddEdge(c, b))
	assert.NoError(t, fn.AddEdge(c, d))
	assert.NoError(t, fn.AddEdge(d, e))
	assert.NoError(t, fn.AddEdge(d, ff))
	assert.NoError(t, fn.AddEdge(e, ff))
	assert.NoError(t, fn.AddEdge(ff, e))
	assert.NoError(t, fn.AddEdge(ff, g))

	cond := fn.NewValue()
	cond2 := fn.NewValue()
	cond3 := fn.NewValue()
	cond4 := fn.NewValue()
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: cond, Constant: ir.Bool(true)})
	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: cond2, Constant: ir.Bool(true)})
	fn.Blocks[a].SetTerminator(&ir.ConditionalJump{Condition: cond, TrueBranch: b, FalseBranch: c})
	fn.Blocks[b].SetTerminator(&ir.UnconditionalJump{Target: c})
	fn.Blocks[c].SetTerminator(&ir.ConditionalJump{Condition: cond2, TrueBranch: b, FalseBranch: d})

	fn.Blocks[d].AddInner(&ir.LoadConstant{Dest: cond3, Constant: ir.Bool(true)})
	fn.Blocks[d].AddInner(&ir.LoadConstant{Dest: cond4, Constant: ir.Bool(true)})
	fn.Blocks[d].SetTerminator(&ir.ConditionalJump{Condition: cond3, TrueBranch: e, FalseBranch: ff})
	fn.Blocks[e].SetTerminator(&ir.UnconditionalJump{Target: ff})
	fn.Blocks[ff].SetTerminator(&ir.ConditionalJump{Condition: cond4, TrueBranch: e, FalseBranch: g})
	fn.Blocks[g].SetTerminator(&ir.Return{})

	block, residual, err := Lift(fn, Options{})
	assert.Equal(t, 0, residual)
	assert.NoError(t, err)

	gotos, labels := countGotosAndLabels(block)
	assert.Equal(t, 2, gotos)
	assert.Equal(t, 2, labels)
	for _, stat := range block {
		_, isComment := stat.(*ast.Comment)
		assert.False(t, isComment)
	}
}

func countGotosAndLabels(b ast.Block) (gotos, labels int) {
	for _, stat := range b {
		switch s := stat.(type) {
		case *ast.Goto:
			gotos++
		case *ast.Label:
			labels++
		case *ast.If:
			g, l := countGotosAndLabels(s.Then)
			gotos += g
			labels += l
			g, l = countGotosAndLabels(s.Else)
			gotos += g
			labels += l
		case *ast.While:
			g, l := countGotosAndLabels(s.Body)
			gotos += g
			labels += l
		}
	}
	return gotos, labels
}
