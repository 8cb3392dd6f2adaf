package conversions

import (
	"stark/internal/symbols"
	"stark/internal/wellknown"
)

type typeSet uint32

func setOf(ts ...wellknown.SpecialType) typeSet {
	var s typeSet
	for _, t := range ts {
		s |= 1 << t
	}
	return s
}

func (s typeSet) has(t wellknown.SpecialType) bool { return s&(1<<t) != 0 }

// implicitNumeric lists the implicit numeric widening targets of each source.
var implicitNumeric = [wellknown.SpecialTypeCount]typeSet{
	wellknown.TypeRune: setOf(wellknown.TypeInt32, wellknown.TypeUInt32, wellknown.TypeInt64, wellknown.TypeUInt64,
		wellknown.TypeFloat32, wellknown.TypeFloat64, wellknown.TypeInt, wellknown.TypeUInt),
	wellknown.TypeInt8: setOf(wellknown.TypeInt16, wellknown.TypeInt32, wellknown.TypeInt64,
		wellknown.TypeFloat32, wellknown.TypeFloat64, wellknown.TypeInt),
	wellknown.TypeUInt8: setOf(wellknown.TypeInt16, wellknown.TypeUInt16, wellknown.TypeInt32, wellknown.TypeUInt32,
		wellknown.TypeInt64, wellknown.TypeUInt64, wellknown.TypeFloat32, wellknown.TypeFloat64, wellknown.TypeInt, wellknown.TypeUInt),
	wellknown.TypeInt16: setOf(wellknown.TypeInt32, wellknown.TypeInt64, wellknown.TypeFloat32, wellknown.TypeFloat64, wellknown.TypeInt),
	wellknown.TypeUInt16: setOf(wellknown.TypeInt32, wellknown.TypeUInt32, wellknown.TypeInt64, wellknown.TypeUInt64,
		wellknown.TypeFloat32, wellknown.TypeFloat64, wellknown.TypeInt, wellknown.TypeUInt),
	wellknown.TypeInt32:   setOf(wellknown.TypeInt64, wellknown.TypeFloat32, wellknown.TypeFloat64, wellknown.TypeInt),
	wellknown.TypeUInt32:  setOf(wellknown.TypeInt64, wellknown.TypeUInt64, wellknown.TypeFloat32, wellknown.TypeFloat64, wellknown.TypeUInt),
	wellknown.TypeInt64:   setOf(wellknown.TypeFloat32, wellknown.TypeFloat64),
	wellknown.TypeUInt64:  setOf(wellknown.TypeFloat32, wellknown.TypeFloat64),
	wellknown.TypeFloat32: setOf(wellknown.TypeFloat64),
	wellknown.TypeInt:     setOf(wellknown.TypeInt64, wellknown.TypeFloat32, wellknown.TypeFloat64),
	wellknown.TypeUInt:    setOf(wellknown.TypeUInt64, wellknown.TypeFloat32, wellknown.TypeFloat64),
}

// FastClassify decides conversions between two special types without
// looking at symbols. ok is false when the answer needs the full classifier.
func FastClassify(src, dst wellknown.SpecialType) (k Kind, ok bool) {
	if src == wellknown.TypeNone || dst == wellknown.TypeNone || src >= wellknown.SpecialTypeCount || dst >= wellknown.SpecialTypeCount {
		return NoConversion, false
	}
	if src == dst {
		return Identity, true
	}
	switch {
	case src.IsNumeric() && dst.IsNumeric():
		if implicitNumeric[src].has(dst) {
			return ImplicitNumeric, true
		}
		return ExplicitNumeric, true
	case dst == wellknown.TypeObject:
		if src == wellknown.TypeString {
			return ImplicitReference, true
		}
		if src.IsValueType() && src != wellknown.TypeVoid {
			return Boxing, true
		}
	case src == wellknown.TypeObject:
		if dst == wellknown.TypeString {
			return ExplicitReference, true
		}
		if dst.IsValueType() && dst != wellknown.TypeVoid {
			return Unboxing, true
		}
	case isPrimitive(src) && isPrimitive(dst):
		return NoConversion, true
	}
	return NoConversion, false
}

// Classify returns the conversion from src to dst.
func Classify(src, dst symbols.TypeSymbol) Kind {
	if src == nil || dst == nil {
		return NoConversion
	}
	if symbols.Equal(src, dst) {
		return Identity
	}
	if src.IsErrorType() || dst.IsErrorType() {
		return NoConversion
	}
	srcUnder := symbols.NullableUnderlying(src)
	dstUnder := symbols.NullableUnderlying(dst)

	switch {
	case dstUnder != nil && srcUnder != nil:
		return liftNullable(Classify(srcUnder, dstUnder))
	case dstUnder != nil:
		inner := Classify(src, dstUnder)
		if inner == Identity || inner == ImplicitNumeric {
			return ImplicitNullable
		}
		return liftNullable(inner)
	case srcUnder != nil:
		if isObjectLike(dst) {
			return Boxing
		}
		switch Classify(srcUnder, dst) {
		case Identity, ImplicitNumeric, ExplicitNumeric:
			return ExplicitNullable
		}
		return NoConversion
	}

	if k, ok := FastClassify(src.SpecialType(), dst.SpecialType()); ok {
		return k
	}
	if k := classifyEnum(src, dst); k != NoConversion {
		return k
	}
	if src.IsValueType() {
		if isObjectLike(dst) || derivesFrom(src, dst) {
			return Boxing
		}
		return NoConversion
	}
	if dst.IsValueType() {
		if isObjectLike(src) || derivesFrom(dst, src) {
			return Unboxing
		}
		return NoConversion
	}
	if isReference(src) && isReference(dst) {
		switch {
		case dst.SpecialType() == wellknown.TypeObject, derivesFrom(src, dst):
			return ImplicitReference
		case src.SpecialType() == wellknown.TypeObject, derivesFrom(dst, src), dst.TypeKind() == symbols.TypeKindInterface:
			return ExplicitReference
		}
	}
	return NoConversion
}

// IsImplicit reports whether src converts to dst without a cast.
func IsImplicit(src, dst symbols.TypeSymbol) bool {
	return Classify(src, dst).IsImplicit()
}

func isPrimitive(t wellknown.SpecialType) bool {
	return t == wellknown.TypeBool || t == wellknown.TypeString || t.IsNumeric()
}

func liftNullable(inner Kind) Kind {
	switch inner {
	case Identity:
		return Identity
	case ImplicitNumeric:
		return ImplicitNullable
	case ExplicitNumeric, ExplicitEnumeration:
		return ExplicitNullable
	}
	return NoConversion
}

func classifyEnum(src, dst symbols.TypeSymbol) Kind {
	se, de := isEnum(src), isEnum(dst)
	if !se && !de {
		return NoConversion
	}
	if (se || src.SpecialType().IsNumeric()) && (de || dst.SpecialType().IsNumeric()) {
		return ExplicitEnumeration
	}
	return NoConversion
}

func isEnum(t symbols.TypeSymbol) bool {
	return t.TypeKind() == symbols.TypeKindEnum
}

func isReference(t symbols.TypeSymbol) bool {
	return t.IsReferenceType()
}

// isObjectLike covers object and the abstract bases of value types.
func isObjectLike(t symbols.TypeSymbol) bool {
	switch t.SpecialType() {
	case wellknown.TypeObject, wellknown.TypeValueType:
		return true
	}
	return false
}

// derivesFrom reports whether t inherits from or implements base.
func derivesFrom(t, base symbols.TypeSymbol) bool {
	seen := 0
	var visit func(symbols.TypeSymbol) bool
	visit = func(cur symbols.TypeSymbol) bool {
		seen++
		if seen > 64 {
			return false
		}
		b := cur.BaseType()
		if b != nil && (symbols.Equal(b, base) || visit(b)) {
			return true
		}
		if nt, ok := cur.(*symbols.NamedType); ok {
			for _, i := range nt.Interfaces() {
				if symbols.Equal(i, base) || visit(i) {
					return true
				}
			}
		}
		return false
	}
	return visit(t)
}
