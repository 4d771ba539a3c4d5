package ssa

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"luadec/internal/graph"
	"luadec/internal/ir"
)

// buildRawDiamond builds: a branches on param r0 to b or c; b sets r1 := r0,
// c sets r1 := 5; both join at d which returns r1. r1 needs a phi at d.
func buildRawDiamond(t *testing.T) (*RawFunction, graph.NodeID, graph.NodeID, graph.NodeID, graph.NodeID) {
	t.Helper()
	g := graph.New()
	a := g.AddNode()
	b := g.AddNode()
	c := g.AddNode()
	d := g.AddNode()
	assert.NoError(t, g.SetEntry(a))
	assert.NoError(t, g.AddEdge(a, b))
	assert.NoError(t, g.AddEdge(a, c))
	assert.NoError(t, g.AddEdge(b, d))
	assert.NoError(t, g.AddEdge(c, d))

	blocks := map[graph.NodeID]*ir.Block{
		a: ir.NewBlock(),
		b: ir.NewBlock(),
		c: ir.NewBlock(),
		d: ir.NewBlock(),
	}
	blocks[a].SetTerminator(&ir.ConditionalJump{Condition: 0, TrueBranch: b, FalseBranch: c})
	blocks[b].AddInner(&ir.Move{Dest: 1, Source: 0})
	blocks[b].SetTerminator(&ir.UnconditionalJump{Target: d})
	blocks[c].AddInner(&ir.LoadConstant{Dest: 1, Constant: ir.Num(5)})
	blocks[c].SetTerminator(&ir.UnconditionalJump{Target: d})
	blocks[d].SetTerminator(&ir.Return{Values: []ir.ValueID{1}})

	return &RawFunction{Graph: g, Blocks: blocks, Entry: a, NumParams: 1}, a, b, c, d
}

func TestConstructInsertsPhiAtJoin(t *testing.T) {
	raw, _, b, c, d := buildRawDiamond(t)
	fn, err := Construct(raw)
	assert.NoError(t, err)

	joinBlock := fn.Blocks[d]
	assert.Len(t, joinBlock.Phis, 1)
	phi := joinBlock.Phis[0]
	assert.Len(t, phi.Incoming, 2)

	ret, ok := joinBlock.Terminator.(*ir.Return)
	assert.True(t, ok)
	assert.Equal(t, []ir.ValueID{phi.Dest}, ret.Values)

	fromB, okB := phi.Incoming[b]
	fromC, okC := phi.Incoming[c]
	assert.True(t, okB)
	assert.True(t, okC)
	assert.NotEqual(t, fromB, fromC)
}

func TestConstructSeedsParametersAtEntry(t *testing.T) {
	raw, a, _, _, _ := buildRawDiamond(t)
	fn, err := Construct(raw)
	assert.NoError(t, err)

	entryBlock := fn.Blocks[a]
	assert.Len(t, entryBlock.Inner, 1)
	param, ok := entryBlock.Inner[0].(*ir.Parameter)
	assert.True(t, ok)
	assert.Equal(t, 0, param.Index)

	cond, ok := entryBlock.Terminator.(*ir.ConditionalJump)
	assert.True(t, ok)
	assert.Equal(t, param.Dest, cond.Condition)
}

func TestConstructDistinctValuesAreUnique(t *testing.T) {
	raw, _, b, c, _ := buildRawDiamond(t)
	fn, err := Construct(raw)
	assert.NoError(t, err)

	moveInB, ok := fn.Blocks[b].Inner[0].(*ir.Move)
	assert.True(t, ok)
	loadInC, ok := fn.Blocks[c].Inner[0].(*ir.LoadConstant)
	assert.True(t, ok)
	assert.NotEqual(t, moveInB.Dest, loadInC.Dest)
}
