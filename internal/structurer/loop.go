package structurer

import "luadec/internal/ast"

// OptimizeWhile implements §4.6's loop body optimization: when a `while
// true` body is exactly one `if` whose else-block is a single `break`,
// the if's condition folds into the loop condition and the body becomes
// the then-branch; symmetrically when the then-block is the sole break
// (negating the condition and keeping the else-branch). Applied to
// fixpoint, same as _examples/original_source/cfg-to-ast/src/lib.rs's
// optimize_while.
func OptimizeWhile(cond ast.Expr, body ast.Block) (ast.Expr, ast.Block) {
	for {
		newCond, newBody, changed := foldOnce(cond, body)
		if !changed {
			return cond, body
		}
		cond, body = newCond, newBody
	}
}

func foldOnce(cond ast.Expr, body ast.Block) (ast.Expr, ast.Block, bool) {
	if len(body) != 1 {
		return cond, body, false
	}
	ifStat, ok := body[0].(*ast.If)
	if !ok {
		return cond, body, false
	}
	if isSoleBreak(ifStat.Else) {
		return CombineConditions(ast.BinaryLogicalAnd, cond, ifStat.Condition), ifStat.Then, true
	}
	if isSoleBreak(ifStat.Then) {
		return CombineConditions(ast.BinaryLogicalAnd, cond, Negate(ifStat.Condition)), ifStat.Else, true
	}
	return cond, body, false
}

func isSoleBreak(b ast.Block) bool {
	if len(b) != 1 {
		return false
	}
	_, ok := b[0].(*ast.Break)
	return ok
}
