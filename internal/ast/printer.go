package ast

import (
	"fmt"
	"strconv"
	"strings"
)

func (b Block) String() string {
	return b.StringIndented("")
}

func (b Block) StringIndented(indent string) string {
	var out strings.Builder
	for _, s := range b {
		out.WriteString(indent)
		out.WriteString(s.String())
		out.WriteByte('\n')
	}
	return out.String()
}

func (l *Local) String() string { return l.Name }

func (e *ExprLocal) String() string { return e.Local.String() }

func (g *Global) String() string { return g.Name }

func (l *Lit) String() string {
	switch l.Kind {
	case LitNil:
		return "nil"
	case LitBoolean:
		return strconv.FormatBool(l.Boolean)
	case LitNumber:
		return strconv.FormatFloat(l.Number, 'g', -1, 64)
	case LitString:
		return strconv.Quote(l.Str)
	default:
		return "<bad literal>"
	}
}

func (op UnaryOp) String() string {
	switch op {
	case UnaryNot:
		return "not "
	case UnaryMinus:
		return "-"
	case UnaryLen:
		return "#"
	default:
		return "?"
	}
}

func (u *Unary) String() string {
	return fmt.Sprintf("(%s%s)", u.Op, u.Expr.String())
}

func (op BinaryOp) String() string {
	switch op {
	case BinaryAdd:
		return "+"
	case BinarySub:
		return "-"
	case BinaryMul:
		return "*"
	case BinaryDiv:
		return "/"
	case BinaryMod:
		return "%"
	case BinaryPow:
		return "^"
	case BinaryEqual:
		return "=="
	case BinaryLesserOrEqual:
		return "<="
	case BinaryLesserThan:
		return "<"
	case BinaryLogicalAnd:
		return "and"
	case BinaryLogicalOr:
		return "or"
	case BinaryConcat:
		return ".."
	default:
		return "?"
	}
}

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.Lhs.String(), b.Op, b.Rhs.String())
}

func (i *Index) String() string {
	return fmt.Sprintf("%s[%s]", i.Object.String(), i.Key.String())
}

func (c *Call) String() string {
	args := make([]string, len(c.Args))
	for i, a := range c.Args {
		args[i] = a.String()
	}
	return fmt.Sprintf("%s(%s)", c.Target.String(), strings.Join(args, ", "))
}

func exprList(exprs []Expr) string {
	parts := make([]string, len(exprs))
	for i, e := range exprs {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

func (a *Assign) String() string {
	prefix := ""
	if a.Declare {
		prefix = "local "
	}
	return fmt.Sprintf("%s%s = %s", prefix, exprList(a.Vars), exprList(a.Values))
}

func (e *ExprStat) String() string { return e.Call.String() }

func (i *If) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("if %s then\n", i.Condition.String()))
	b.WriteString(i.Then.StringIndented("  "))
	if len(i.Else) > 0 {
		b.WriteString("else\n")
		b.WriteString(i.Else.StringIndented("  "))
	}
	b.WriteString("end")
	return b.String()
}

func (w *While) String() string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("while %s do\n", w.Condition.String()))
	b.WriteString(w.Body.StringIndented("  "))
	b.WriteString("end")
	return b.String()
}

func (r *Return) String() string {
	if len(r.Values) == 0 {
		return "return"
	}
	return "return " + exprList(r.Values)
}

func (*Break) String() string { return "break" }

func (*Continue) String() string { return "continue" }

func (g *Goto) String() string { return "goto " + g.Label }

func (l *Label) String() string { return "::" + l.Name + "::" }

func (c *Comment) String() string { return "-- " + c.Text }
