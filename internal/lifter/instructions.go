package lifter

import (
	"fmt"

	"luadec/internal/ast"
	"luadec/internal/graph"
	"luadec/internal/ir"
)

// liftInstructions lowers n's own Inner instructions to statements and
// places the forward declarations for every value whose nearest-common-
// dominator is n ahead of them, so a `local v = nil` never follows (and
// resets) an assignment to v made in the same block. The declarations are
// computed after the instructions are lowered, so a value a Parameter
// already declared gets none.
func (l *Lifter) liftInstructions(n graph.NodeID, block *ir.Block) ast.Block {
	var stats ast.Block
	for _, inst := range block.Inner {
		if stat := l.liftInstruction(inst); stat != nil {
			stats = append(stats, stat)
		}
	}
	return append(l.forwardDeclarations(n), stats...)
}

func (l *Lifter) forwardDeclarations(n graph.NodeID) ast.Block {
	var stats ast.Block
	for _, v := range l.fn.Values() {
		d, ok := l.decisions[v]
		if !ok || !d.ForwardDeclare || d.At != n || l.declared[v] {
			continue
		}
		stats = append(stats, &ast.Assign{
			Vars:    []ast.Expr{&ast.ExprLocal{Local: l.localsOf[v], Declare: true}},
			Values:  []ast.Expr{&ast.Lit{Kind: ast.LitNil}},
			Declare: true,
		})
		l.declared[v] = true
	}
	return stats
}

func (l *Lifter) liftInstruction(inst ir.Inner) ast.Stat {
	switch in := inst.(type) {
	case *ir.Parameter:
		// Bound by the function signature, not the body — mark it defined
		// so later logic never tries to (re)declare it.
		l.declared[in.Dest] = true
		return nil
	case *ir.Move:
		return l.assign(in.Dest, l.localExpr(in.Source))
	case *ir.LoadConstant:
		return l.assign(in.Dest, convertConstant(in.Constant))
	case *ir.LoadGlobal:
		return l.assign(in.Dest, &ast.Global{Name: in.Name})
	case *ir.StoreGlobal:
		return &ast.Assign{
			Vars:   []ast.Expr{&ast.Global{Name: in.Name}},
			Values: []ast.Expr{l.localExpr(in.Value)},
		}
	case *ir.LoadIndex:
		return l.assign(in.Dest, &ast.Index{Object: l.localExpr(in.Object), Key: l.localExpr(in.Key)})
	case *ir.StoreIndex:
		return &ast.Assign{
			Vars:   []ast.Expr{&ast.Index{Object: l.localExpr(in.Object), Key: l.localExpr(in.Key)}},
			Values: []ast.Expr{l.localExpr(in.Value)},
		}
	case *ir.Unary:
		return l.assign(in.Dest, &ast.Unary{Op: convertUnaryOp(in.Op), Expr: l.localExpr(in.Value)})
	case *ir.Binary:
		return l.assign(in.Dest, &ast.Binary{Op: convertBinaryOp(in.Op), Lhs: l.localExpr(in.Lhs), Rhs: l.localExpr(in.Rhs)})
	case *ir.Concat:
		return l.assign(in.Dest, l.convertConcat(in.Values))
	case *ir.Call:
		call := &ast.Call{Target: l.localExpr(in.Target), Args: l.convertValues(in.Args)}
		if len(in.Results) == 0 {
			return &ast.ExprStat{Call: call}
		}
		vars := make([]ast.Expr, len(in.Results))
		for i, r := range in.Results {
			vars[i] = l.declareOrUse(r)
		}
		return &ast.Assign{Vars: vars, Values: []ast.Expr{call}, Declare: allDeclared(vars)}
	default:
		panic(fmt.Sprintf("lifter: unhandled instruction %T", inst))
	}
}

func allDeclared(vars []ast.Expr) bool {
	for _, v := range vars {
		el, ok := v.(*ast.ExprLocal)
		if !ok || !el.Declare {
			return false
		}
	}
	return true
}

// declareOrUse builds the ExprLocal for a definition site: Declare is set
// exactly once per value, the first time a non-forward-declared value is
// defined (internal/locals already guarantees that def site dominates
// every use).
func (l *Lifter) declareOrUse(v ir.ValueID) *ast.ExprLocal {
	declare := false
	if d, ok := l.decisions[v]; ok && !d.ForwardDeclare && !l.declared[v] {
		declare = true
		l.declared[v] = true
	}
	return &ast.ExprLocal{Local: l.localsOf[v], Declare: declare}
}

func (l *Lifter) localExpr(v ir.ValueID) ast.Expr {
	return &ast.ExprLocal{Local: l.localsOf[v], Declare: false}
}

func (l *Lifter) assign(dest ir.ValueID, value ast.Expr) ast.Stat {
	varExpr := l.declareOrUse(dest)
	return &ast.Assign{Vars: []ast.Expr{varExpr}, Values: []ast.Expr{value}, Declare: varExpr.Declare}
}

func (l *Lifter) convertValues(vs []ir.ValueID) []ast.Expr {
	out := make([]ast.Expr, len(vs))
	for i, v := range vs {
		out[i] = l.localExpr(v)
	}
	return out
}

// convertConcat folds left-to-right: the concat-associativity law,
// matching ir.Concat's own doc comment.
func (l *Lifter) convertConcat(values []ir.ValueID) ast.Expr {
	acc := l.localExpr(values[0])
	for _, v := range values[1:] {
		acc = &ast.Binary{Op: ast.BinaryConcat, Lhs: acc, Rhs: l.localExpr(v)}
	}
	return acc
}

func convertConstant(c ir.Constant) ast.Expr {
	switch c.Kind {
	case ir.ConstNil:
		return &ast.Lit{Kind: ast.LitNil}
	case ir.ConstBoolean:
		return &ast.Lit{Kind: ast.LitBoolean, Boolean: c.Boolean}
	case ir.ConstNumber:
		return &ast.Lit{Kind: ast.LitNumber, Number: c.Number}
	case ir.ConstString:
		return &ast.Lit{Kind: ast.LitString, Str: string(c.Str)}
	default:
		panic("lifter: unhandled constant kind")
	}
}

func convertUnaryOp(op ir.UnaryOp) ast.UnaryOp {
	switch op {
	case ir.Not:
		return ast.UnaryNot
	case ir.Neg:
		return ast.UnaryMinus
	case ir.Len:
		return ast.UnaryLen
	default:
		panic("lifter: unhandled unary op")
	}
}

func convertBinaryOp(op ir.BinaryOp) ast.BinaryOp {
	switch op {
	case ir.Add:
		return ast.BinaryAdd
	case ir.Sub:
		return ast.BinarySub
	case ir.Mul:
		return ast.BinaryMul
	case ir.Div:
		return ast.BinaryDiv
	case ir.Mod:
		return ast.BinaryMod
	case ir.Pow:
		return ast.BinaryPow
	case ir.Eq:
		return ast.BinaryEqual
	case ir.Le:
		return ast.BinaryLesserOrEqual
	case ir.Lt:
		return ast.BinaryLesserThan
	case ir.And:
		return ast.BinaryLogicalAnd
	case ir.Or:
		return ast.BinaryLogicalOr
	default:
		panic("lifter: unhandled binary op")
	}
}
