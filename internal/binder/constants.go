package binder

import (
	"math"

	"stark/internal/symbols"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

// literalType is the natural type of a literal: null is typed as object,
// integers take the first of i32, i64 that holds them, reals are f64.
func (b *Binder) literalType(lit syntax.Literal) symbols.TypeSymbol {
	switch lit.Kind {
	case syntax.LitBool:
		return b.lib.GetSpecialType(wellknown.TypeBool)
	case syntax.LitInt:
		if lit.Int >= math.MinInt32 && lit.Int <= math.MaxInt32 {
			return b.lib.GetSpecialType(wellknown.TypeInt32)
		}
		return b.lib.GetSpecialType(wellknown.TypeInt64)
	case syntax.LitFloat:
		return b.lib.GetSpecialType(wellknown.TypeFloat64)
	case syntax.LitString:
		return b.lib.GetSpecialType(wellknown.TypeString)
	}
	return b.lib.GetSpecialType(wellknown.TypeObject)
}

// literalConstant is the value of lit at its natural type.
func (b *Binder) literalConstant(lit syntax.Literal) *symbols.ConstantValue {
	c, _ := constantFor(lit, b.literalType(lit))
	return c
}

// constantFor converts lit to a constant of type t. Integer literals are
// accepted by any integral or floating type they fit; enums take the value
// at their underlying type.
func constantFor(lit syntax.Literal, t symbols.TypeSymbol) (*symbols.ConstantValue, bool) {
	if t == nil || t.IsErrorType() {
		return nil, false
	}
	if u := symbols.NullableUnderlying(t); u != nil {
		if lit.Kind == syntax.LitNull {
			return symbols.NullConstant(), true
		}
		return constantFor(lit, u)
	}
	st := t.SpecialType()
	if nt, ok := t.(*symbols.NamedType); ok && nt.IsEnum() {
		if lit.Kind != syntax.LitInt {
			return nil, false
		}
		u := nt.EnumUnderlyingType()
		if u == nil {
			return nil, false
		}
		st = u.SpecialType()
	}
	switch lit.Kind {
	case syntax.LitNull:
		if t.IsReferenceType() {
			return symbols.NullConstant(), true
		}
	case syntax.LitBool:
		if st == wellknown.TypeBool {
			return symbols.BoolConstant(lit.Bool), true
		}
	case syntax.LitInt:
		switch {
		case st.IsIntegral() || st == wellknown.TypeRune:
			return symbols.IntegerConstant(st, lit.Int)
		case st.IsFloating():
			return symbols.FloatConstant(st, float64(lit.Int))
		case st == wellknown.TypeObject:
			return symbols.IntegerConstant(wellknown.TypeInt32, lit.Int)
		}
	case syntax.LitFloat:
		if st.IsFloating() {
			return symbols.FloatConstant(st, lit.Float)
		}
	case syntax.LitString:
		if st == wellknown.TypeString || st == wellknown.TypeObject {
			return symbols.StringConstant(lit.Str), true
		}
	}
	return nil, false
}
