package structurer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"luadec/internal/ast"
)

func TestOptimizeWhileFoldsElseBreak(t *testing.T) {
	loopCond := &ast.Lit{Kind: ast.LitBoolean, Boolean: true}
	ifCond := &ast.ExprLocal{Local: &ast.Local{Name: "c"}}
	bodyStat := &ast.ExprStat{Call: &ast.Call{Target: &ast.Global{Name: "f"}}}
	body := ast.Block{&ast.If{
		Condition: ifCond,
		Then:      ast.Block{bodyStat},
		Else:      ast.Block{&ast.Break{}},
	}}

	newCond, newBody := OptimizeWhile(loopCond, body)

	// The literal-true loop condition drops out (CombineConditions), leaving
	// the if's own condition as the loop condition.
	assert.Equal(t, ifCond, newCond)
	assert.Equal(t, ast.Block{bodyStat}, newBody)
}

func TestOptimizeWhileFoldsThenBreakNegated(t *testing.T) {
	loopCond := &ast.Lit{Kind: ast.LitBoolean, Boolean: true}
	ifCond := &ast.ExprLocal{Local: &ast.Local{Name: "c"}}
	bodyStat := &ast.ExprStat{Call: &ast.Call{Target: &ast.Global{Name: "f"}}}
	body := ast.Block{&ast.If{
		Condition: ifCond,
		Then:      ast.Block{&ast.Break{}},
		Else:      ast.Block{bodyStat},
	}}

	newCond, newBody := OptimizeWhile(loopCond, body)

	// The literal-true loop condition drops out, leaving the negated if
	// condition.
	unary, ok := newCond.(*ast.Unary)
	assert.True(t, ok)
	assert.Equal(t, ast.UnaryNot, unary.Op)
	assert.Equal(t, ifCond, unary.Expr)
	assert.Equal(t, ast.Block{bodyStat}, newBody)
}

func TestOptimizeWhileNoopOnMultiStatementBody(t *testing.T) {
	loopCond := &ast.Lit{Kind: ast.LitBoolean, Boolean: true}
	body := ast.Block{&ast.Break{}, &ast.Continue{}}

	newCond, newBody := OptimizeWhile(loopCond, body)
	assert.Equal(t, loopCond, newCond)
	assert.Equal(t, body, newBody)
}
