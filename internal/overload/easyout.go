package overload

import (
	"stark/internal/symbols"
	"stark/internal/wellknown"
)

// Operand indices of the constant-time tables. 0..15 are plain types,
// 17..30 are their nullable forms (bool through uint); 16 stays unused so
// that a lifted index minus liftedOffset is the plain index.
const (
	idxObject   = 0
	idxString   = 1
	idxBool     = 2
	idxRune     = 3
	idxInt8     = 4
	idxInt16    = 5
	idxInt32    = 6
	idxInt64    = 7
	idxUInt8    = 8
	idxUInt16   = 9
	idxUInt32   = 10
	idxUInt64   = 11
	idxFloat32  = 12
	idxFloat64  = 13
	idxInt      = 14
	idxUInt     = 15
	idxReserved = 16

	plainCount   = 16
	indexCount   = 31
	liftedOffset = 15
)

var plainIndex = map[wellknown.SpecialType]int{
	wellknown.TypeObject:  idxObject,
	wellknown.TypeString:  idxString,
	wellknown.TypeBool:    idxBool,
	wellknown.TypeRune:    idxRune,
	wellknown.TypeInt8:    idxInt8,
	wellknown.TypeInt16:   idxInt16,
	wellknown.TypeInt32:   idxInt32,
	wellknown.TypeInt64:   idxInt64,
	wellknown.TypeUInt8:   idxUInt8,
	wellknown.TypeUInt16:  idxUInt16,
	wellknown.TypeUInt32:  idxUInt32,
	wellknown.TypeUInt64:  idxUInt64,
	wellknown.TypeFloat32: idxFloat32,
	wellknown.TypeFloat64: idxFloat64,
	wellknown.TypeInt:     idxInt,
	wellknown.TypeUInt:    idxUInt,
}

// TypeToIndex maps a type onto the easy-out index. ok is false for types the
// tables do not cover; they go through the general algorithm.
func TypeToIndex(t symbols.TypeSymbol) (idx int, ok bool) {
	if t == nil {
		return 0, false
	}
	if u := symbols.NullableUnderlying(t); u != nil {
		i, ok := plainIndex[u.SpecialType()]
		if !ok || i < idxBool {
			return 0, false
		}
		return i + liftedOffset, true
	}
	if t.TypeKind() == symbols.TypeKindEnum {
		return 0, false
	}
	i, ok := plainIndex[t.SpecialType()]
	return i, ok
}

// underlyingIndex strips the nullable part of an index.
func underlyingIndex(i int) int {
	if i > idxReserved {
		return i - liftedOffset
	}
	return i
}

func isLiftedIndex(i int) bool { return i > idxReserved }

const (
	uERR = UnaryError

	uBOL = UnaryOperatorKind(OperandBool)
	uCHR = UnaryOperatorKind(OperandRune)
	uI08 = UnaryOperatorKind(OperandInt8)
	uU08 = UnaryOperatorKind(OperandUInt8)
	uI16 = UnaryOperatorKind(OperandInt16)
	uU16 = UnaryOperatorKind(OperandUInt16)
	uI32 = UnaryOperatorKind(OperandInt32)
	uU32 = UnaryOperatorKind(OperandUInt32)
	uI64 = UnaryOperatorKind(OperandInt64)
	uU64 = UnaryOperatorKind(OperandUInt64)
	uR32 = UnaryOperatorKind(OperandFloat32)
	uR64 = UnaryOperatorKind(OperandFloat64)
	uINT = UnaryOperatorKind(OperandInt)
	uUNT = UnaryOperatorKind(OperandUInt)

	uLBOL = UnaryLifted | uBOL
	uLCHR = UnaryLifted | uCHR
	uLI08 = UnaryLifted | uI08
	uLU08 = UnaryLifted | uU08
	uLI16 = UnaryLifted | uI16
	uLU16 = UnaryLifted | uU16
	uLI32 = UnaryLifted | uI32
	uLU32 = UnaryLifted | uU32
	uLI64 = UnaryLifted | uI64
	uLU64 = UnaryLifted | uU64
	uLR32 = UnaryLifted | uR32
	uLR64 = UnaryLifted | uR64
	uLINT = UnaryLifted | uINT
	uLUNT = UnaryLifted | uUNT
)

var unaryIncrement = [indexCount]UnaryOperatorKind{
	// obj   str   bool  chr   i08   i16   i32   i64   u08   u16   u32   u64   r32   r64   int   uint
	uERR, uERR, uERR, uCHR, uI08, uI16, uI32, uI64, uU08, uU16, uU32, uU64, uR32, uR64, uINT, uUNT,
	// lifted: reserved, then bool? through uint?
	uERR, uERR, uLCHR, uLI08, uLI16, uLI32, uLI64, uLU08, uLU16, uLU32, uLU64, uLR32, uLR64, uLINT, uLUNT,
}

var unaryPlus = [indexCount]UnaryOperatorKind{
	uERR, uERR, uERR, uI32, uI32, uI32, uI32, uI64, uI32, uI32, uU32, uU64, uR32, uR64, uINT, uUNT,
	uERR, uERR, uLI32, uLI32, uLI32, uLI32, uLI64, uLI32, uLI32, uLU32, uLU64, uLR32, uLR64, uLINT, uLUNT,
}

// Unary minus on u64 has no signed type wide enough.
var unaryMinus = [indexCount]UnaryOperatorKind{
	uERR, uERR, uERR, uI32, uI32, uI32, uI32, uI64, uI32, uI32, uI64, uERR, uR32, uR64, uINT, uUNT,
	uERR, uERR, uLI32, uLI32, uLI32, uLI32, uLI64, uLI32, uLI32, uLI64, uERR, uLR32, uLR64, uLINT, uLUNT,
}

var unaryLogicalNegation = [indexCount]UnaryOperatorKind{
	uERR, uERR, uBOL, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR,
	uERR, uLBOL, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR, uERR,
}

var unaryBitwiseComplement = [indexCount]UnaryOperatorKind{
	uERR, uERR, uERR, uI32, uI32, uI32, uI32, uI64, uI32, uI32, uU32, uU64, uERR, uERR, uINT, uUNT,
	uERR, uERR, uLI32, uLI32, uLI32, uLI32, uLI64, uLI32, uLI32, uLU32, uLU64, uERR, uERR, uLINT, uLUNT,
}

// indexed by UnaryOperatorKind.OperatorIndex
var unaryTables = [...]*[indexCount]UnaryOperatorKind{
	&unaryIncrement, // x++
	&unaryIncrement, // x--
	&unaryIncrement, // ++x
	&unaryIncrement, // --x
	&unaryPlus,
	&unaryMinus,
	&unaryLogicalNegation,
	&unaryBitwiseComplement,
}

// UnaryEasyOut returns the builtin operator for kind applied to operand, or
// UnaryError when the tables do not decide it.
func UnaryEasyOut(kind UnaryOperatorKind, operand symbols.TypeSymbol) UnaryOperatorKind {
	idx, ok := TypeToIndex(operand)
	if !ok {
		return UnaryError
	}
	return unaryEasyOutIndex(kind, idx)
}

func unaryEasyOutIndex(kind UnaryOperatorKind, idx int) UnaryOperatorKind {
	opIdx := kind.OperatorIndex()
	if opIdx < 0 || opIdx >= len(unaryTables) || idx < 0 || idx >= indexCount {
		return UnaryError
	}
	result := unaryTables[opIdx][idx]
	if result == UnaryError {
		return result
	}
	return result | kind
}

const (
	bERR = BinaryError

	bOBJ = BinaryOperatorKind(OperandObject)
	bSTR = BinaryOperatorKind(OperandString)
	bSOC = BinaryOperatorKind(OperandStringAndObject)
	bOSC = BinaryOperatorKind(OperandObjectAndString)
	bBOL = BinaryOperatorKind(OperandBool)
	bI32 = BinaryOperatorKind(OperandInt32)
	bU32 = BinaryOperatorKind(OperandUInt32)
	bI64 = BinaryOperatorKind(OperandInt64)
	bU64 = BinaryOperatorKind(OperandUInt64)
	bR32 = BinaryOperatorKind(OperandFloat32)
	bR64 = BinaryOperatorKind(OperandFloat64)
	bINT = BinaryOperatorKind(OperandInt)
	bUNT = BinaryOperatorKind(OperandUInt)
)

type binaryTable = [plainCount][plainCount]BinaryOperatorKind

// Arithmetic and relational operators share the numeric promotion grid.
var binaryNumeric = binaryTable{
	//          obj   str   bool  chr   i08   i16   i32   i64   u08   u16   u32   u64   r32   r64   int   uint
	/* obj  */ {bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR},
	/* str  */ {bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR},
	/* bool */ {bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR, bERR},
	/* chr  */ {bERR, bERR, bERR, bI32, bI32, bI32, bI32, bI64, bI32, bI32, bU32, bU64, bR32, bR64, bINT, bUNT},
	/* i08  */ {bERR, bERR, bERR, bI32, bI32, bI32, bI32, bI64, bI32, bI32, bI64, bERR, bR32, bR64, bINT, bERR},
	/* i16  */ {bERR, bERR, bERR, bI32, bI32, bI32, bI32, bI64, bI32, bI32, bI64, bERR, bR32, bR64, bINT, bERR},
	/* i32  */ {bERR, bERR, bERR, bI32, bI32, bI32, bI32, bI64, bI32, bI32, bI64, bERR, bR32, bR64, bINT, bERR},
	/* i64  */ {bERR, bERR, bERR, bI64, bI64, bI64, bI64, bI64, bI64, bI64, bI64, bERR, bR32, bR64, bI64, bERR},
	/* u08  */ {bERR, bERR, bERR, bI32, bI32, bI32, bI32, bI64, bI32, bI32, bU32, bU64, bR32, bR64, bINT, bUNT},
	/* u16  */ {bERR, bERR, bERR, bI32, bI32, bI32, bI32, bI64, bI32, bI32, bU32, bU64, bR32, bR64, bINT, bUNT},
	/* u32  */ {bERR, bERR, bERR, bU32, bI64, bI64, bI64, bI64, bU32, bU32, bU32, bU64, bR32, bR64, bI64, bUNT},
	/* u64  */ {bERR, bERR, bERR, bU64, bERR, bERR, bERR, bERR, bU64, bU64, bU64, bU64, bR32, bR64, bERR, bU64},
	/* r32  */ {bERR, bERR, bERR, bR32, bR32, bR32, bR32, bR32, bR32, bR32, bR32, bR32, bR32, bR64, bR32, bR32},
	/* r64  */ {bERR, bERR, bERR, bR64, bR64, bR64, bR64, bR64, bR64, bR64, bR64, bR64, bR64, bR64, bR64, bR64},
	/* int  */ {bERR, bERR, bERR, bINT, bINT, bINT, bINT, bI64, bINT, bINT, bI64, bERR, bR32, bR64, bINT, bERR},
	/* uint */ {bERR, bERR, bERR, bUNT, bERR, bERR, bERR, bERR, bUNT, bUNT, bUNT, bU64, bR32, bR64, bERR, bUNT},
}

var (
	binaryAddition    = deriveAddition()
	binaryShift       = deriveShift()
	binaryEquality    = deriveEquality()
	binaryLogical     = deriveLogical()
	binaryConditional = deriveConditional()
)

// string + anything concatenates; the string side keeps its position.
func deriveAddition() binaryTable {
	t := binaryNumeric
	for i := range plainCount {
		t[idxString][i] = bSOC
		t[i][idxString] = bOSC
	}
	t[idxString][idxString] = bSTR
	return t
}

// The left operand is promoted on its own; the count must fit in i32.
func deriveShift() binaryTable {
	var t binaryTable
	for l := range plainCount {
		for _, r := range []int{idxRune, idxInt8, idxInt16, idxInt32, idxUInt8, idxUInt16} {
			t[l][r] = BinaryOperatorKind(unaryBitwiseComplement[l])
		}
	}
	return t
}

func deriveEquality() binaryTable {
	t := binaryNumeric
	t[idxObject][idxObject] = bOBJ
	t[idxObject][idxString] = bOBJ
	t[idxString][idxObject] = bOBJ
	t[idxString][idxString] = bSTR
	t[idxBool][idxBool] = bBOL
	return t
}

// Bitwise operators: integral promotion only, plus bool.
func deriveLogical() binaryTable {
	t := binaryNumeric
	for l := range plainCount {
		for r := range plainCount {
			if ot := t[l][r].OperandType(); ot.IsFloating() {
				t[l][r] = bERR
			}
		}
	}
	t[idxBool][idxBool] = bBOL
	return t
}

func deriveConditional() binaryTable {
	var t binaryTable
	t[idxBool][idxBool] = bBOL
	return t
}

// indexed by BinaryOperatorKind.OperatorIndex
var binaryTables = [...]*binaryTable{
	&binaryNumeric,  // *
	&binaryAddition, // +
	&binaryNumeric,  // -
	&binaryNumeric,  // /
	&binaryNumeric,  // %
	&binaryShift,    // <<
	&binaryShift,    // >>
	&binaryEquality, // ==
	&binaryEquality, // !=
	&binaryNumeric,  // >
	&binaryNumeric,  // <
	&binaryNumeric,  // >=
	&binaryNumeric,  // <=
	&binaryLogical,  // &
	&binaryLogical,  // ^
	&binaryLogical,  // |
}

// BinaryEasyOut returns the builtin operator for kind applied to left and
// right, or BinaryError when the tables do not decide it.
func BinaryEasyOut(kind BinaryOperatorKind, left, right symbols.TypeSymbol) BinaryOperatorKind {
	li, ok := TypeToIndex(left)
	if !ok {
		return BinaryError
	}
	ri, ok := TypeToIndex(right)
	if !ok {
		return BinaryError
	}
	return binaryEasyOutIndex(kind, li, ri)
}

func binaryEasyOutIndex(kind BinaryOperatorKind, li, ri int) BinaryOperatorKind {
	opIdx := kind.OperatorIndex()
	if opIdx < 0 || opIdx >= len(binaryTables) || li == idxReserved || ri == idxReserved {
		return BinaryError
	}
	table := binaryTables[opIdx]
	if kind.IsLogical() {
		table = &binaryConditional
	}
	lifted := isLiftedIndex(li) || isLiftedIndex(ri)
	result := table[underlyingIndex(li)][underlyingIndex(ri)]
	if lifted {
		switch result {
		case bERR, bSTR, bOBJ:
			return BinaryError
		case bSOC, bOSC:
		default:
			// && и || не имеют поднятой формы
			if kind.IsLogical() {
				return BinaryError
			}
			result |= BinaryLifted
		}
	}
	if result == BinaryError {
		return result
	}
	return result | kind
}
