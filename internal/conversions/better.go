package conversions

import (
	"stark/internal/symbols"
)

// Betterness is the outcome of comparing two conversion targets.
type Betterness int8

const (
	Neither Betterness = iota
	Left
	Right
)

// BetterConversionTarget picks the more specific of two target types.
// A target is better when it converts implicitly to the other and not back;
// failing that, a signed integral target beats an unsigned one.
// Nullable targets compare through their underlying types for the sign rule.
func BetterConversionTarget(t1, t2 symbols.TypeSymbol) Betterness {
	if symbols.Equal(t1, t2) {
		return Neither
	}
	oneToTwo := IsImplicit(t1, t2)
	twoToOne := IsImplicit(t2, t1)
	switch {
	case oneToTwo && !twoToOne:
		return Left
	case twoToOne && !oneToTwo:
		return Right
	}
	s1, s2 := symbols.StrippedSpecialType(t1), symbols.StrippedSpecialType(t2)
	if symbols.IsNullable(t1) != symbols.IsNullable(t2) {
		return Neither
	}
	switch {
	case s1.IsSignedIntegral() && s2.IsUnsignedIntegral():
		return Left
	case s2.IsSignedIntegral() && s1.IsUnsignedIntegral():
		return Right
	}
	return Neither
}
