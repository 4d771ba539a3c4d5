package ast

// ExprLocal reads a local. Declare marks the textual position that should
// carry the `local` keyword — set by the lifter at a value's forward
// declaration or in-place declaration point, per internal/locals'
// decision, never at an ordinary read.
type ExprLocal struct {
	Local   *Local
	Declare bool
}

func (*ExprLocal) isExpr() {}

// Global reads or names a global variable (_G.<Name> in Lua semantics).
type Global struct {
	Name string
}

func (*Global) isExpr() {}

// LitKind discriminates a Lit's payload.
type LitKind int

const (
	LitNil LitKind = iota
	LitBoolean
	LitNumber
	LitString
)

// Lit is a literal constant.
type Lit struct {
	Kind    LitKind
	Boolean bool
	Number  float64
	Str     string
}

func (*Lit) isExpr() {}

// UnaryOp enumerates Lua's unary operators.
type UnaryOp int

const (
	UnaryNot UnaryOp = iota
	UnaryMinus
	UnaryLen
)

type Unary struct {
	Op   UnaryOp
	Expr Expr
}

func (*Unary) isExpr() {}

// BinaryOp enumerates Lua's binary operators, including Concat which has
// no counterpart in the IR's Binary (ir.Concat lowers to a left fold of
// these).
type BinaryOp int

const (
	BinaryAdd BinaryOp = iota
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod
	BinaryPow
	BinaryEqual
	BinaryLesserOrEqual
	BinaryLesserThan
	BinaryLogicalAnd
	BinaryLogicalOr
	BinaryConcat
)

type Binary struct {
	Op  BinaryOp
	Lhs Expr
	Rhs Expr
}

func (*Binary) isExpr() {}

// Index is a table index expression: Object[Key].
type Index struct {
	Object Expr
	Key    Expr
}

func (*Index) isExpr() {}

// Call is both an expression (a call used for its results) and, wrapped in
// ExprStat, a statement (a call used for its side effects only).
type Call struct {
	Target Expr
	Args   []Expr
}

func (*Call) isExpr() {}
