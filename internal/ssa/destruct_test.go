package ssa

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	kerrors "luadec/internal/errors"
	"luadec/internal/ir"
)

func TestDestructEliminatesPhis(t *testing.T) {
	raw, _, b, c, d := buildRawDiamond(t)
	fn, err := Construct(raw)
	assert.NoError(t, err)

	phi := fn.Blocks[d].Phis[0]
	fromB := phi.Incoming[b]
	fromC := phi.Incoming[c]

	assert.NoError(t, Destruct(fn))

	assert.Empty(t, fn.Blocks[d].Phis)

	bMoves := fn.Blocks[b].Inner
	last, ok := bMoves[len(bMoves)-1].(*ir.Move)
	assert.True(t, ok)
	assert.Equal(t, fromB, last.Source)
	assert.Equal(t, phi.Dest, last.Dest)

	cMoves := fn.Blocks[c].Inner
	lastC, ok := cMoves[len(cMoves)-1].(*ir.Move)
	assert.True(t, ok)
	assert.Equal(t, fromC, lastC.Source)
	assert.Equal(t, phi.Dest, lastC.Dest)
}

func TestSequentializeCopiesBreaksCycle(t *testing.T) {
	copies := map[ir.ValueID]ir.ValueID{10: 11, 11: 10}
	nextTemp := ir.ValueID(100)
	moves := sequentializeCopies([]ir.ValueID{10, 11}, copies, func() ir.ValueID {
		v := nextTemp
		nextTemp++
		return v
	})

	// Run the moves over an environment in which every value starts out
	// holding its own id: afterwards 10 must hold 11's old value and 11 must
	// hold 10's, whichever of the two went through the temporary.
	values := map[ir.ValueID]ir.ValueID{10: 10, 11: 11}
	for _, m := range moves {
		mv := m.(*ir.Move)
		values[mv.Dest] = values[mv.Source]
	}
	assert.Equal(t, ir.ValueID(11), values[ir.ValueID(10)])
	assert.Equal(t, ir.ValueID(10), values[ir.ValueID(11)])
}

// buildRawCriticalEdge builds a with successors b and d; b falls through to
// d; d also has c as a predecessor, via the standalone entry a->d edge
// being critical (a has 2 successors, d has 2 predecessors).
func buildRawCriticalEdge(t *testing.T) *ir.Function {
	t.Helper()
	fn := ir.NewFunction("f")
	a := fn.Entry
	b := fn.NewBlock()
	c := fn.NewBlock()
	d := fn.NewBlock()
	assert.NoError(t, fn.AddEdge(a, b))
	assert.NoError(t, fn.AddEdge(a, d))
	assert.NoError(t, fn.AddEdge(b, c))
	assert.NoError(t, fn.AddEdge(c, d))

	fn.Blocks[a].SetTerminator(&ir.ConditionalJump{Condition: 0, TrueBranch: b, FalseBranch: d})
	fn.Blocks[b].SetTerminator(&ir.UnconditionalJump{Target: c})
	fn.Blocks[c].SetTerminator(&ir.UnconditionalJump{Target: d})

	phi := ir.NewPhi(50)
	phi.Incoming[a] = 1
	phi.Incoming[c] = 2
	fn.Blocks[d].AddPhi(phi)
	fn.Blocks[d].SetTerminator(&ir.Return{Values: []ir.ValueID{50}})
	return fn
}

func TestDestructSplitsCriticalEdges(t *testing.T) {
	fn := buildRawCriticalEdge(t)
	before := len(fn.Graph.Nodes())

	assert.NoError(t, Destruct(fn))

	assert.Greater(t, len(fn.Graph.Nodes()), before)
	assert.Empty(t, fn.Graph.Predecessors(fn.Entry)) // sanity: entry has no incoming edges itself
}

// TestDestructRejectsDuplicateDefinition builds a function where value 5 is
// defined twice, a builder bug validateSSAForm must catch before
// splitCriticalEdges and the phi-elimination walk run on it.
func TestDestructRejectsDuplicateDefinition(t *testing.T) {
	fn := ir.NewFunction("f")
	a := fn.Entry
	b := fn.NewBlock()
	assert.NoError(t, fn.AddEdge(a, b))

	fn.Blocks[a].AddInner(&ir.LoadConstant{Dest: 5, Constant: ir.Num(1)})
	fn.Blocks[a].SetTerminator(&ir.UnconditionalJump{Target: b})
	fn.Blocks[b].AddInner(&ir.LoadConstant{Dest: 5, Constant: ir.Num(2)})
	fn.Blocks[b].SetTerminator(&ir.Return{Values: []ir.ValueID{5}})

	err := Destruct(fn)
	var se *kerrors.SSAError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, kerrors.NonSSAInput, se.Kind)
}

// TestDestructRejectsPhiMissingPredecessor builds a diamond join whose phi
// names only one of its block's two actual predecessors, the shape
// validateSSAForm's predecessor-set check exists to catch before
// splitCriticalEdges mutates Incoming out from under it.
func TestDestructRejectsPhiMissingPredecessor(t *testing.T) {
	fn := ir.NewFunction("f")
	a := fn.Entry
	b := fn.NewBlock()
	c := fn.NewBlock()
	d := fn.NewBlock()
	assert.NoError(t, fn.AddEdge(a, b))
	assert.NoError(t, fn.AddEdge(a, c))
	assert.NoError(t, fn.AddEdge(b, d))
	assert.NoError(t, fn.AddEdge(c, d))

	fn.Blocks[a].SetTerminator(&ir.ConditionalJump{Condition: 0, TrueBranch: b, FalseBranch: c})
	fn.Blocks[b].SetTerminator(&ir.UnconditionalJump{Target: d})
	fn.Blocks[c].SetTerminator(&ir.UnconditionalJump{Target: d})

	phi := ir.NewPhi(10)
	phi.Incoming[b] = 1 // c, also a real predecessor, is missing
	fn.Blocks[d].AddPhi(phi)
	fn.Blocks[d].SetTerminator(&ir.Return{Values: []ir.ValueID{10}})

	err := Destruct(fn)
	var se *kerrors.SSAError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, kerrors.MalformedPhi, se.Kind)
}
