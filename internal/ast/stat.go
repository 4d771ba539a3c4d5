package ast

// Assign is `vars = values` (Declare false) or `local vars = values`
// (Declare true). The lifter emits a bare `local v` (no values) as an
// Assign with one nil-literal value — Lua has no separate declare-only
// form.
type Assign struct {
	Vars    []Expr
	Values  []Expr
	Declare bool
}

func (*Assign) isStat() {}

// ExprStat wraps a Call used only for its side effects.
type ExprStat struct {
	Call *Call
}

func (*ExprStat) isStat() {}

// If is `if Condition then Then [else Else] end`. Else is nil for a
// then-only conditional — the structurer's swap-for-emptiness rule keeps
// Then non-empty whenever either branch has statements.
type If struct {
	Condition Expr
	Then      Block
	Else      Block
}

func (*If) isStat() {}

// While is always `while true do Body end` as the structurer first
// produces it; optimize_while folds a body that is a single `if` with a
// sole `break` in one arm into Condition (negated when the break is in the
// then arm), same as the original lifter.
type While struct {
	Condition Expr
	Body      Block
}

func (*While) isStat() {}

type Return struct {
	Values []Expr
}

func (*Return) isStat() {}

type Break struct{}

func (*Break) isStat() {}

// Continue is only emitted when lifter.Options.EmitContinue is set — Lua
// itself has no continue statement; it exists for dialects (Luau included)
// that added one.
type Continue struct{}

func (*Continue) isStat() {}

// Goto and Label realize the structurer's last-resort refinement for
// control flow no then/else/while pattern can express (the
// irreducibility handling).
type Goto struct {
	Label string
}

func (*Goto) isStat() {}

type Label struct {
	Name string
}

func (*Label) isStat() {}

// Comment carries a structurer diagnostic into the output — e.g. a
// residual-node note when collapse couldn't fully reduce the graph. It is
// never produced for the happy path.
type Comment struct {
	Text string
}

func (*Comment) isStat() {}
