package structurer

import (
	"luadec/internal/ast"
	"luadec/internal/graph"
)

// IsIfThen tests §4.6 pattern 3's if-then shape: the else target is n's
// immediate post-dominator (the natural continuation) and the then target
// is strictly inside the region n dominates.
func (a *Analysis) IsIfThen(n, then, els graph.NodeID) bool {
	exit, ok := a.postIdom[n]
	if !ok || exit != els {
		return false
	}
	return a.Dominates(n, then)
}

// IsIfThenElse tests §4.6 pattern 3's if-then-else shape: both branches are
// dominated by n and share a common post-dominator (the join point after
// the conditional).
func (a *Analysis) IsIfThenElse(n, then, els graph.NodeID) (join graph.NodeID, ok bool) {
	if !a.Dominates(n, then) || !a.Dominates(n, els) {
		return graph.NodeID(0), false
	}
	thenJoin, thenOK := a.postIdom[then]
	elsJoin, elsOK := a.postIdom[els]
	if !thenOK || !elsOK || thenJoin != elsJoin {
		return graph.NodeID(0), false
	}
	return thenJoin, true
}

// CombineConditions implements combine_conditions: folding a literal-true
// left operand away entirely. The rule is asymmetric — only the left
// operand's truth collapses the expression (the round-trip law);
// combine_conditions(X, true) stays X 'and'/'or' true rather than X.
func CombineConditions(op ast.BinaryOp, left, right ast.Expr) ast.Expr {
	if lit, ok := left.(*ast.Lit); ok && lit.Kind == ast.LitBoolean && lit.Boolean {
		return right
	}
	return &ast.Binary{Op: op, Lhs: left, Rhs: right}
}

// SwapForEmptiness implements §4.6's swap-for-emptiness rule: an empty
// then-block with a non-empty else-block is rewritten as a negated
// then-only conditional, so the printer never has to special-case an
// empty then arm. Returns the (possibly swapped) condition, then-block and
// else-block, and whether a swap happened.
func SwapForEmptiness(cond ast.Expr, then, els ast.Block) (ast.Expr, ast.Block, ast.Block, bool) {
	if len(then) != 0 || len(els) == 0 {
		return cond, then, els, false
	}
	return Negate(cond), els, nil, true
}

// Negate wraps cond in a logical not, collapsing a double negative instead
// of nesting it (not (not c) -> c).
func Negate(cond ast.Expr) ast.Expr {
	if u, ok := cond.(*ast.Unary); ok && u.Op == ast.UnaryNot {
		return u.Expr
	}
	return &ast.Unary{Op: ast.UnaryNot, Expr: cond}
}
