package ssa

import "luadec/internal/ir"

// lookupFunc resolves a register to the SSA value currently reaching it at
// the point being renamed.
type lookupFunc func(Register) (ir.ValueID, error)

// renameUses returns a copy of inst with every use rewritten through
// lookup. The returned instruction's Defines() value (if any) is still the
// old register — the caller installs the fresh SSA value with setDefines.
func renameUses(inst ir.Inner, lookup lookupFunc) (ir.Inner, error) {
	switch v := inst.(type) {
	case *ir.Move:
		src, err := lookup(v.Source)
		if err != nil {
			return nil, err
		}
		return &ir.Move{Dest: v.Dest, Source: src}, nil
	case *ir.Parameter:
		return &ir.Parameter{Dest: v.Dest, Index: v.Index}, nil
	case *ir.LoadConstant:
		return &ir.LoadConstant{Dest: v.Dest, Constant: v.Constant}, nil
	case *ir.LoadGlobal:
		return &ir.LoadGlobal{Dest: v.Dest, Name: v.Name}, nil
	case *ir.StoreGlobal:
		val, err := lookup(v.Value)
		if err != nil {
			return nil, err
		}
		return &ir.StoreGlobal{Name: v.Name, Value: val}, nil
	case *ir.LoadIndex:
		obj, err := lookup(v.Object)
		if err != nil {
			return nil, err
		}
		key, err := lookup(v.Key)
		if err != nil {
			return nil, err
		}
		return &ir.LoadIndex{Dest: v.Dest, Object: obj, Key: key}, nil
	case *ir.StoreIndex:
		obj, err := lookup(v.Object)
		if err != nil {
			return nil, err
		}
		key, err := lookup(v.Key)
		if err != nil {
			return nil, err
		}
		val, err := lookup(v.Value)
		if err != nil {
			return nil, err
		}
		return &ir.StoreIndex{Object: obj, Key: key, Value: val}, nil
	case *ir.Unary:
		val, err := lookup(v.Value)
		if err != nil {
			return nil, err
		}
		return &ir.Unary{Dest: v.Dest, Op: v.Op, Value: val}, nil
	case *ir.Binary:
		lhs, err := lookup(v.Lhs)
		if err != nil {
			return nil, err
		}
		rhs, err := lookup(v.Rhs)
		if err != nil {
			return nil, err
		}
		return &ir.Binary{Dest: v.Dest, Op: v.Op, Lhs: lhs, Rhs: rhs}, nil
	case *ir.Concat:
		values := make([]ir.ValueID, len(v.Values))
		for i, reg := range v.Values {
			val, err := lookup(reg)
			if err != nil {
				return nil, err
			}
			values[i] = val
		}
		return &ir.Concat{Dest: v.Dest, Values: values}, nil
	case *ir.Call:
		target, err := lookup(v.Target)
		if err != nil {
			return nil, err
		}
		args := make([]ir.ValueID, len(v.Args))
		for i, reg := range v.Args {
			val, err := lookup(reg)
			if err != nil {
				return nil, err
			}
			args[i] = val
		}
		results := append([]ir.ValueID(nil), v.Results...)
		return &ir.Call{Results: results, Target: target, Args: args}, nil
	default:
		panic("ssa: unhandled Inner variant in renameUses")
	}
}

// setDefines installs the freshly allocated SSA value as inst's result,
// mutating in place. Inner has no such setter of its own — the closed
// variant set means every case has to be named here once, same as
// renameUses.
func setDefines(inst ir.Inner, newDest ir.ValueID) {
	switch v := inst.(type) {
	case *ir.Move:
		v.Dest = newDest
	case *ir.Parameter:
		v.Dest = newDest
	case *ir.LoadConstant:
		v.Dest = newDest
	case *ir.LoadGlobal:
		v.Dest = newDest
	case *ir.LoadIndex:
		v.Dest = newDest
	case *ir.Unary:
		v.Dest = newDest
	case *ir.Binary:
		v.Dest = newDest
	case *ir.Concat:
		v.Dest = newDest
	case *ir.Call:
		if len(v.Results) > 0 {
			v.Results[0] = newDest
		}
	default:
		panic("ssa: unhandled Inner variant in setDefines")
	}
}

// renameTerminator returns a copy of term with every use rewritten through
// lookup. Terminators never define a register.
func renameTerminator(term ir.Terminator, lookup lookupFunc) (ir.Terminator, error) {
	switch v := term.(type) {
	case *ir.UnconditionalJump:
		return &ir.UnconditionalJump{Target: v.Target}, nil
	case *ir.ConditionalJump:
		cond, err := lookup(v.Condition)
		if err != nil {
			return nil, err
		}
		return &ir.ConditionalJump{Condition: cond, TrueBranch: v.TrueBranch, FalseBranch: v.FalseBranch}, nil
	case *ir.Return:
		values := make([]ir.ValueID, len(v.Values))
		for i, reg := range v.Values {
			val, err := lookup(reg)
			if err != nil {
				return nil, err
			}
			values[i] = val
		}
		return &ir.Return{Values: values}, nil
	default:
		panic("ssa: unhandled Terminator variant in renameTerminator")
	}
}
