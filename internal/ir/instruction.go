package ir

import (
	"fmt"
	"strings"

	"luadec/internal/graph"
)

// UnaryOp enumerates Luau's unary operators.
type UnaryOp int

const (
	Not UnaryOp = iota
	Neg
	Len
)

func (op UnaryOp) String() string {
	switch op {
	case Not:
		return "not"
	case Neg:
		return "-"
	case Len:
		return "#"
	default:
		return "?"
	}
}

// BinaryOp enumerates Luau's binary operators.
type BinaryOp int

const (
	Add BinaryOp = iota
	Sub
	Mul
	Div
	Mod
	Pow
	Eq
	Le
	Lt
	And
	Or
)

func (op BinaryOp) String() string {
	switch op {
	case Add:
		return "+"
	case Sub:
		return "-"
	case Mul:
		return "*"
	case Div:
		return "/"
	case Mod:
		return "%"
	case Pow:
		return "^"
	case Eq:
		return "=="
	case Le:
		return "<="
	case Lt:
		return "<"
	case And:
		return "and"
	case Or:
		return "or"
	default:
		return "?"
	}
}

// Inner is the closed sum of non-terminator, non-phi instructions (spec
// §3). Every pass that walks instructions type-switches over this
// interface exhaustively; Go has no compiler-enforced exhaustiveness, so
// internal/ir/instruction_test.go enumerates every variant (AllInnerKinds)
// and asserts its type switch (describeInner) handles each one, catching a
// forgotten case the way an exhaustive match would in a closed-sum language.
type Inner interface {
	// Defines returns the instruction's result value, if it defines one.
	Defines() (ValueID, bool)
	// Uses returns the values read by this instruction, in operand order.
	Uses() []ValueID
	// ReplaceUses rewrites every use equal to old to new, in place.
	ReplaceUses(old, new ValueID)
	String() string
}

type Move struct {
	Dest   ValueID
	Source ValueID
}

func (m *Move) Defines() (ValueID, bool) { return m.Dest, true }
func (m *Move) Uses() []ValueID          { return []ValueID{m.Source} }
func (m *Move) ReplaceUses(old, new ValueID) {
	if m.Source == old {
		m.Source = new
	}
}
func (m *Move) String() string { return fmt.Sprintf("%s = %s", m.Dest, m.Source) }

// Parameter binds a function argument to a register at entry. SSA
// construction seeds each parameter register with one of these instead of
// leaving it an undefined use.
type Parameter struct {
	Dest  ValueID
	Index int
}

func (p *Parameter) Defines() (ValueID, bool)     { return p.Dest, true }
func (p *Parameter) Uses() []ValueID               { return nil }
func (p *Parameter) ReplaceUses(old, new ValueID) {}
func (p *Parameter) String() string                { return fmt.Sprintf("%s = arg%d", p.Dest, p.Index) }

type LoadConstant struct {
	Dest     ValueID
	Constant Constant
}

func (l *LoadConstant) Defines() (ValueID, bool)     { return l.Dest, true }
func (l *LoadConstant) Uses() []ValueID               { return nil }
func (l *LoadConstant) ReplaceUses(old, new ValueID) {}
func (l *LoadConstant) String() string {
	return fmt.Sprintf("%s = %s", l.Dest, l.Constant)
}

type LoadGlobal struct {
	Dest ValueID
	Name string
}

func (l *LoadGlobal) Defines() (ValueID, bool)     { return l.Dest, true }
func (l *LoadGlobal) Uses() []ValueID               { return nil }
func (l *LoadGlobal) ReplaceUses(old, new ValueID) {}
func (l *LoadGlobal) String() string {
	return fmt.Sprintf("%s = _G.%s", l.Dest, l.Name)
}

type StoreGlobal struct {
	Name  string
	Value ValueID
}

func (s *StoreGlobal) Defines() (ValueID, bool) { return 0, false }
func (s *StoreGlobal) Uses() []ValueID          { return []ValueID{s.Value} }
func (s *StoreGlobal) ReplaceUses(old, new ValueID) {
	if s.Value == old {
		s.Value = new
	}
}
func (s *StoreGlobal) String() string {
	return fmt.Sprintf("_G.%s = %s", s.Name, s.Value)
}

type LoadIndex struct {
	Dest   ValueID
	Object ValueID
	Key    ValueID
}

func (l *LoadIndex) Defines() (ValueID, bool) { return l.Dest, true }
func (l *LoadIndex) Uses() []ValueID          { return []ValueID{l.Object, l.Key} }
func (l *LoadIndex) ReplaceUses(old, new ValueID) {
	if l.Object == old {
		l.Object = new
	}
	if l.Key == old {
		l.Key = new
	}
}
func (l *LoadIndex) String() string {
	return fmt.Sprintf("%s = %s[%s]", l.Dest, l.Object, l.Key)
}

type StoreIndex struct {
	Object ValueID
	Key    ValueID
	Value  ValueID
}

func (s *StoreIndex) Defines() (ValueID, bool) { return 0, false }
func (s *StoreIndex) Uses() []ValueID          { return []ValueID{s.Object, s.Key, s.Value} }
func (s *StoreIndex) ReplaceUses(old, new ValueID) {
	if s.Object == old {
		s.Object = new
	}
	if s.Key == old {
		s.Key = new
	}
	if s.Value == old {
		s.Value = new
	}
}
func (s *StoreIndex) String() string {
	return fmt.Sprintf("%s[%s] = %s", s.Object, s.Key, s.Value)
}

type Unary struct {
	Dest  ValueID
	Op    UnaryOp
	Value ValueID
}

func (u *Unary) Defines() (ValueID, bool) { return u.Dest, true }
func (u *Unary) Uses() []ValueID          { return []ValueID{u.Value} }
func (u *Unary) ReplaceUses(old, new ValueID) {
	if u.Value == old {
		u.Value = new
	}
}
func (u *Unary) String() string { return fmt.Sprintf("%s = %s%s", u.Dest, u.Op, u.Value) }

type Binary struct {
	Dest ValueID
	Op   BinaryOp
	Lhs  ValueID
	Rhs  ValueID
}

func (b *Binary) Defines() (ValueID, bool) { return b.Dest, true }
func (b *Binary) Uses() []ValueID          { return []ValueID{b.Lhs, b.Rhs} }
func (b *Binary) ReplaceUses(old, new ValueID) {
	if b.Lhs == old {
		b.Lhs = new
	}
	if b.Rhs == old {
		b.Rhs = new
	}
}
func (b *Binary) String() string {
	return fmt.Sprintf("%s = %s %s %s", b.Dest, b.Lhs, b.Op, b.Rhs)
}

// Concat folds left-to-right: Concat{dest, [a,b,c]} means dest = (a..b)..c
// (the concat-associativity law), never right-associated.
type Concat struct {
	Dest   ValueID
	Values []ValueID
}

func (c *Concat) Defines() (ValueID, bool) { return c.Dest, true }
func (c *Concat) Uses() []ValueID          { return append([]ValueID(nil), c.Values...) }
func (c *Concat) ReplaceUses(old, new ValueID) {
	for i, v := range c.Values {
		if v == old {
			c.Values[i] = new
		}
	}
}
func (c *Concat) String() string {
	parts := make([]string, len(c.Values))
	for i, v := range c.Values {
		parts[i] = v.String()
	}
	return fmt.Sprintf("%s = concat(%s)", c.Dest, strings.Join(parts, ", "))
}

// Call models a (possibly multi-result) function call. Results may be
// empty (a statement-call) or hold several destinations (multiple return
// values).
type Call struct {
	Results []ValueID
	Target  ValueID
	Args    []ValueID
}

func (c *Call) Defines() (ValueID, bool) {
	if len(c.Results) == 0 {
		return 0, false
	}
	return c.Results[0], true
}
func (c *Call) Uses() []ValueID {
	return append([]ValueID{c.Target}, c.Args...)
}
func (c *Call) ReplaceUses(old, new ValueID) {
	if c.Target == old {
		c.Target = new
	}
	for i, a := range c.Args {
		if a == old {
			c.Args[i] = new
		}
	}
}
func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	results := make([]string, len(c.Results))
	for i, r := range c.Results {
		results[i] = r.String()
	}
	prefix := ""
	if len(results) > 0 {
		prefix = strings.Join(results, ", ") + " = "
	}
	return fmt.Sprintf("%s%s(%s)", prefix, c.Target, strings.Join(args, ", "))
}

// Phi is a block-header pseudo-instruction selecting a value based on the
// predecessor the block was entered through. It lives only at a block's
// header; dest is unique within the block.
type Phi struct {
	Dest     ValueID
	Incoming map[graph.NodeID]ValueID
}

func NewPhi(dest ValueID) *Phi {
	return &Phi{Dest: dest, Incoming: make(map[graph.NodeID]ValueID)}
}

func (p *Phi) Defines() (ValueID, bool) { return p.Dest, true }

func (p *Phi) Uses() []ValueID {
	out := make([]ValueID, 0, len(p.Incoming))
	for _, v := range p.Incoming {
		out = append(out, v)
	}
	return out
}

func (p *Phi) String() string {
	parts := make([]string, 0, len(p.Incoming))
	for pred, v := range p.Incoming {
		parts = append(parts, fmt.Sprintf("%d: %s", pred, v))
	}
	return fmt.Sprintf("%s = phi(%s)", p.Dest, strings.Join(parts, ", "))
}

// TerminatorKind discriminates the Terminator union.
type TerminatorKind int

const (
	TermUnconditionalJump TerminatorKind = iota
	TermConditionalJump
	TermReturn
)

// Terminator is the closed sum of block-ending instructions.
type Terminator interface {
	Kind() TerminatorKind
	Targets() []graph.NodeID
	Uses() []ValueID
	String() string
}

type UnconditionalJump struct {
	Target graph.NodeID
}

func (u *UnconditionalJump) Kind() TerminatorKind   { return TermUnconditionalJump }
func (u *UnconditionalJump) Targets() []graph.NodeID { return []graph.NodeID{u.Target} }
func (u *UnconditionalJump) Uses() []ValueID         { return nil }
func (u *UnconditionalJump) String() string          { return fmt.Sprintf("jump %d", u.Target) }

// BranchKind distinguishes which conditional edge a CFG edge realizes: the
// true or the false branch of its source's ConditionalJump.
type BranchKind int

const (
	BranchThen BranchKind = iota
	BranchElse
)

type ConditionalJump struct {
	Condition   ValueID
	TrueBranch  graph.NodeID
	FalseBranch graph.NodeID
}

func (c *ConditionalJump) Kind() TerminatorKind { return TermConditionalJump }
func (c *ConditionalJump) Targets() []graph.NodeID {
	return []graph.NodeID{c.TrueBranch, c.FalseBranch}
}
func (c *ConditionalJump) Uses() []ValueID { return []ValueID{c.Condition} }
func (c *ConditionalJump) String() string {
	return fmt.Sprintf("if %s then goto %d else goto %d", c.Condition, c.TrueBranch, c.FalseBranch)
}

type Return struct {
	Values []ValueID
}

func (r *Return) Kind() TerminatorKind    { return TermReturn }
func (r *Return) Targets() []graph.NodeID { return nil }
func (r *Return) Uses() []ValueID         { return append([]ValueID(nil), r.Values...) }
func (r *Return) String() string {
	parts := make([]string, len(r.Values))
	for i, v := range r.Values {
		parts[i] = v.String()
	}
	return fmt.Sprintf("return %s", strings.Join(parts, ", "))
}
