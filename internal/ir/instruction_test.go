package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"luadec/internal/graph"
)

// AllInnerKinds returns one instance of every Inner variant. When a new
// variant is added here without a matching case below, TestInnerKindsHandled
// fails loudly instead of a type switch elsewhere silently falling through
// to a default case.
func AllInnerKinds() []Inner {
	return []Inner{
		&Move{Dest: 0, Source: 1},
		&Parameter{Dest: 0, Index: 0},
		&LoadConstant{Dest: 0, Constant: Num(1)},
		&LoadGlobal{Dest: 0, Name: "print"},
		&StoreGlobal{Name: "print", Value: 1},
		&LoadIndex{Dest: 0, Object: 1, Key: 2},
		&StoreIndex{Object: 0, Key: 1, Value: 2},
		&Unary{Dest: 0, Op: Not, Value: 1},
		&Binary{Dest: 0, Op: Add, Lhs: 1, Rhs: 2},
		&Concat{Dest: 0, Values: []ValueID{1, 2, 3}},
		&Call{Results: []ValueID{0}, Target: 1, Args: []ValueID{2, 3}},
	}
}

func describeInner(i Inner) string {
	switch i.(type) {
	case *Move, *Parameter, *LoadConstant, *LoadGlobal, *StoreGlobal, *LoadIndex,
		*StoreIndex, *Unary, *Binary, *Concat, *Call:
		return "known"
	default:
		return "unknown"
	}
}

func TestInnerKindsHandled(t *testing.T) {
	for _, i := range AllInnerKinds() {
		assert.Equal(t, "known", describeInner(i), "%T not recognized by exhaustive switch", i)
	}
}

func TestInnerDefinesAndUses(t *testing.T) {
	m := &Move{Dest: 5, Source: 7}
	dest, ok := m.Defines()
	assert.True(t, ok)
	assert.Equal(t, ValueID(5), dest)
	assert.Equal(t, []ValueID{7}, m.Uses())

	s := &StoreGlobal{Name: "x", Value: 3}
	_, ok = s.Defines()
	assert.False(t, ok)

	c := &Call{Results: nil, Target: 1, Args: []ValueID{2}}
	_, ok = c.Defines()
	assert.False(t, ok)
}

func TestReplaceUses(t *testing.T) {
	b := &Binary{Dest: 0, Op: Add, Lhs: 1, Rhs: 2}
	b.ReplaceUses(1, 9)
	assert.Equal(t, ValueID(9), b.Lhs)
	assert.Equal(t, ValueID(2), b.Rhs)

	cc := &Concat{Dest: 0, Values: []ValueID{1, 2, 1}}
	cc.ReplaceUses(1, 9)
	assert.Equal(t, []ValueID{9, 2, 9}, cc.Values)
}

func TestConcatStringListsOperandsInOrder(t *testing.T) {
	c := &Concat{Dest: 0, Values: []ValueID{1, 2, 3}}
	assert.Equal(t, "v0 = concat(v1, v2, v3)", c.String())
}

func TestPhiUsesAndString(t *testing.T) {
	p := NewPhi(0)
	p.Incoming[graph.NodeID(1)] = 10
	assert.Equal(t, []ValueID{10}, p.Uses())
	assert.Contains(t, p.String(), "phi(")
}

func TestTerminatorTargets(t *testing.T) {
	uj := &UnconditionalJump{Target: 3}
	assert.Equal(t, []graph.NodeID{3}, uj.Targets())
	assert.Equal(t, TermUnconditionalJump, uj.Kind())

	cj := &ConditionalJump{Condition: 0, TrueBranch: 1, FalseBranch: 2}
	assert.Equal(t, []graph.NodeID{1, 2}, cj.Targets())
	assert.Equal(t, []ValueID{0}, cj.Uses())

	r := &Return{Values: []ValueID{1, 2}}
	assert.Nil(t, r.Targets())
	assert.Equal(t, TermReturn, r.Kind())
}
