// Package ir implements the typed SSA CFG-IR this decompiler describes:
// values, constants, instructions, basic blocks, and the function
// container they live in. Instructions are a closed tagged-variant sum:
// every pass switches exhaustively over Inner rather than relying on
// virtual dispatch.
package ir

import "fmt"

// ValueID is an opaque dense identifier for an SSA value, unique within a
// Function.
type ValueID uint32

func (v ValueID) String() string { return fmt.Sprintf("v%d", uint32(v)) }

// ConstantKind discriminates the Constant union.
type ConstantKind int

const (
	ConstNil ConstantKind = iota
	ConstBoolean
	ConstNumber
	ConstString
)

// Constant is the tagged union of Luau literal values.
type Constant struct {
	Kind    ConstantKind
	Boolean bool
	Number  float64
	Str     []byte
}

func Nil() Constant               { return Constant{Kind: ConstNil} }
func Bool(b bool) Constant        { return Constant{Kind: ConstBoolean, Boolean: b} }
func Num(n float64) Constant      { return Constant{Kind: ConstNumber, Number: n} }
func Str(s []byte) Constant       { return Constant{Kind: ConstString, Str: s} }

func (c Constant) String() string {
	switch c.Kind {
	case ConstNil:
		return "nil"
	case ConstBoolean:
		return fmt.Sprintf("%t", c.Boolean)
	case ConstNumber:
		return fmt.Sprintf("%v", c.Number)
	case ConstString:
		return fmt.Sprintf("%q", string(c.Str))
	default:
		return "<bad constant>"
	}
}

// Equal reports deep equality, used by constant-folding passes that need
// to recognize "the same literal" across LoadConstant sites.
func (c Constant) Equal(other Constant) bool {
	if c.Kind != other.Kind {
		return false
	}
	switch c.Kind {
	case ConstBoolean:
		return c.Boolean == other.Boolean
	case ConstNumber:
		return c.Number == other.Number
	case ConstString:
		return string(c.Str) == string(other.Str)
	default:
		return true
	}
}
