package overload

import (
	"sync"

	"stark/internal/symbols"
	"stark/internal/wellknown"
)

// UnarySignature is one candidate unary operator.
type UnarySignature struct {
	Kind    UnaryOperatorKind
	Operand symbols.TypeSymbol
	Return  symbols.TypeSymbol
	// Method is set for user-defined operators.
	Method symbols.MethodSymbol
}

// BinarySignature is one candidate binary operator.
type BinarySignature struct {
	Kind   BinaryOperatorKind
	Left   symbols.TypeSymbol
	Right  symbols.TypeSymbol
	Return symbols.TypeSymbol
	// Method is the user-defined operator or the corlib member the operator
	// lowers to (string concatenation, string and delegate equality).
	Method symbols.MethodSymbol
}

var (
	incrementTypes = []OperandType{
		OperandRune, OperandInt8, OperandUInt8, OperandInt16, OperandUInt16, OperandInt32, OperandUInt32,
		OperandInt64, OperandUInt64, OperandFloat32, OperandFloat64, OperandInt, OperandUInt,
	}
	numericTypes = []OperandType{
		OperandInt32, OperandUInt32, OperandInt64, OperandUInt64, OperandFloat32, OperandFloat64, OperandInt, OperandUInt,
	}
	minusTypes = []OperandType{
		OperandInt32, OperandInt64, OperandFloat32, OperandFloat64, OperandInt, OperandUInt,
	}
	integralTypes = []OperandType{
		OperandInt32, OperandUInt32, OperandInt64, OperandUInt64, OperandInt, OperandUInt,
	}
)

func unaryOperandTypes(op UnaryOperatorKind) []OperandType {
	switch op {
	case UnaryPostfixIncrement, UnaryPostfixDecrement, UnaryPrefixIncrement, UnaryPrefixDecrement:
		return incrementTypes
	case UnaryPlus:
		return numericTypes
	case UnaryMinus:
		return minusTypes
	case UnaryLogicalNegation:
		return []OperandType{OperandBool}
	case UnaryBitwiseComplement:
		return integralTypes
	}
	return nil
}

func binaryOperandTypes(kind BinaryOperatorKind) []OperandType {
	if kind.IsLogical() {
		return []OperandType{OperandBool}
	}
	switch kind.Operator() {
	case BinaryMultiplication, BinarySubtraction, BinaryDivision, BinaryRemainder,
		BinaryLessThan, BinaryLessThanOrEqual, BinaryGreaterThan, BinaryGreaterThanOrEqual:
		return numericTypes
	case BinaryAddition:
		return append(append([]OperandType(nil), numericTypes...),
			OperandString, OperandStringAndObject, OperandObjectAndString)
	case BinaryLeftShift, BinaryRightShift:
		return integralTypes
	case BinaryEqual, BinaryNotEqual:
		return append(append([]OperandType(nil), numericTypes...),
			OperandBool, OperandString, OperandObject)
	case BinaryAnd, BinaryOr, BinaryXor:
		return append(append([]OperandType(nil), integralTypes...), OperandBool)
	}
	return nil
}

// liftable reports whether an operand type has a nullable form.
func liftable(t OperandType) bool {
	switch t {
	case OperandString, OperandObject, OperandStringAndObject, OperandObjectAndString, OperandNone:
		return false
	}
	return true
}

// BuiltinOperators builds the signatures of the predefined operators over
// one corlib. Signatures are cached per kind.
type BuiltinOperators struct {
	lib *symbols.CorLibrary

	mu     sync.Mutex
	unary  map[UnaryOperatorKind]UnarySignature
	binary map[BinaryOperatorKind]BinarySignature
}

func NewBuiltinOperators(lib *symbols.CorLibrary) *BuiltinOperators {
	return &BuiltinOperators{
		lib:    lib,
		unary:  make(map[UnaryOperatorKind]UnarySignature),
		binary: make(map[BinaryOperatorKind]BinarySignature),
	}
}

func (b *BuiltinOperators) typeOf(t OperandType, lifted bool) symbols.TypeSymbol {
	st := t.SpecialType()
	if st == wellknown.TypeNone {
		return symbols.UnknownResultType
	}
	var ts symbols.TypeSymbol = b.lib.GetSpecialType(st)
	if lifted {
		ts = b.lib.MakeNullable(ts)
	}
	return ts
}

// UnarySignature returns the signature a resolved predefined unary kind denotes.
func (b *BuiltinOperators) UnarySignature(kind UnaryOperatorKind) UnarySignature {
	key := kind & (UnaryTypeMask | UnaryOpMask | UnaryLifted)
	b.mu.Lock()
	defer b.mu.Unlock()
	if sig, ok := b.unary[key]; ok {
		return sig
	}
	operand := b.typeOf(kind.OperandType(), kind.IsLifted())
	sig := UnarySignature{Kind: key, Operand: operand, Return: operand}
	b.unary[key] = sig
	return sig
}

// BinarySignature returns the signature a resolved predefined binary kind denotes.
func (b *BuiltinOperators) BinarySignature(kind BinaryOperatorKind) BinarySignature {
	key := kind & (BinaryTypeMask | BinaryOpMask | BinaryLifted | BinaryLogical)
	b.mu.Lock()
	defer b.mu.Unlock()
	if sig, ok := b.binary[key]; ok {
		return sig
	}
	sig := b.makeBinary(key)
	b.binary[key] = sig
	return sig
}

func (b *BuiltinOperators) makeBinary(kind BinaryOperatorKind) BinarySignature {
	lifted := kind.IsLifted()
	sig := BinarySignature{Kind: kind}
	str := b.typeOf(OperandString, false)
	obj := b.typeOf(OperandObject, false)
	boolean := b.typeOf(OperandBool, false)

	switch t := kind.OperandType(); t {
	case OperandString:
		sig.Left, sig.Right = str, str
	case OperandStringAndObject:
		sig.Left, sig.Right = str, obj
	case OperandObjectAndString:
		sig.Left, sig.Right = obj, str
	case OperandObject:
		sig.Left, sig.Right = obj, obj
	default:
		sig.Left = b.typeOf(t, lifted)
		sig.Right = sig.Left
		if kind.IsShift() {
			sig.Right = b.typeOf(OperandInt32, lifted)
		}
	}

	switch {
	case kind.IsComparison():
		sig.Return = boolean
	case kind.OperandType() == OperandStringAndObject || kind.OperandType() == OperandObjectAndString:
		sig.Return = str
	default:
		sig.Return = sig.Left
	}

	if id, ok := loweredMember(kind); ok {
		sig.Method = b.lib.SpecialMethod(id)
	}
	return sig
}

// loweredMember names the corlib member a predefined operator calls.
func loweredMember(kind BinaryOperatorKind) (wellknown.SpecialMember, bool) {
	switch kind.OperandType() {
	case OperandString:
		switch kind.Operator() {
		case BinaryAddition:
			return wellknown.StringConcatStringString, true
		case BinaryEqual:
			return wellknown.StringOpEquality, true
		case BinaryNotEqual:
			return wellknown.StringOpInequality, true
		}
	case OperandStringAndObject, OperandObjectAndString:
		if kind.Operator() == BinaryAddition {
			return wellknown.StringConcatObjectObject, true
		}
	case OperandDelegate:
		switch kind.Operator() {
		case BinaryAddition:
			return wellknown.DelegateCombine, true
		case BinarySubtraction:
			return wellknown.DelegateRemove, true
		case BinaryEqual:
			return wellknown.DelegateOpEquality, true
		case BinaryNotEqual:
			return wellknown.DelegateOpInequality, true
		}
	}
	return 0, false
}

// unaryCandidates lists the predefined signatures worth trying for operand.
// Floating candidates are dropped unless the operand is floating; lifted
// candidates exist only for nullable operands.
func (b *BuiltinOperators) unaryCandidates(op UnaryOperatorKind, operand symbols.TypeSymbol) []UnarySignature {
	op = op.Operator()
	floating := symbols.StrippedSpecialType(operand).IsFloating()
	nullable := symbols.IsNullable(operand)

	var out []UnarySignature
	for _, t := range unaryOperandTypes(op) {
		if t.IsFloating() && !floating {
			continue
		}
		out = append(out, b.UnarySignature(op|UnaryOperatorKind(t)))
		if nullable {
			out = append(out, b.UnarySignature(op|UnaryOperatorKind(t)|UnaryLifted))
		}
	}

	if e := enumOperand(operand); e != nil {
		switch {
		case op.IsIncrement(), op == UnaryBitwiseComplement:
			out = append(out, UnarySignature{Kind: op | UnaryOperatorKind(OperandEnum), Operand: e, Return: e})
			if nullable {
				ne := b.lib.MakeNullable(e)
				out = append(out, UnarySignature{Kind: op | UnaryOperatorKind(OperandEnum) | UnaryLifted, Operand: ne, Return: ne})
			}
		}
	}
	return out
}

// binaryCandidates lists the predefined signatures worth trying for left and right.
func (b *BuiltinOperators) binaryCandidates(kind BinaryOperatorKind, left, right symbols.TypeSymbol) []BinarySignature {
	kind &= BinaryOpMask | BinaryLogical
	floating := symbols.StrippedSpecialType(left).IsFloating() || symbols.StrippedSpecialType(right).IsFloating()
	nullable := symbols.IsNullable(left) || symbols.IsNullable(right)

	var out []BinarySignature
	for _, t := range binaryOperandTypes(kind) {
		if t.IsFloating() && !floating {
			continue
		}
		out = append(out, b.BinarySignature(kind|BinaryOperatorKind(t)))
		if nullable && liftable(t) && !kind.IsLogical() {
			out = append(out, b.BinarySignature(kind|BinaryOperatorKind(t)|BinaryLifted))
		}
	}
	if kind.IsLogical() {
		return out
	}

	// enum and delegate operators are built over the operand types themselves
	seen := make([]symbols.TypeSymbol, 0, 2)
	for _, operand := range []symbols.TypeSymbol{left, right} {
		if e := enumOperand(operand); e != nil && !containsType(seen, e) {
			seen = append(seen, e)
			out = append(out, b.enumCandidates(kind, e, nullable)...)
		}
		if d := delegateOperand(operand); d != nil && !containsType(seen, d) {
			seen = append(seen, d)
			out = append(out, b.delegateCandidates(kind, d)...)
		}
	}
	return out
}

func (b *BuiltinOperators) enumCandidates(kind BinaryOperatorKind, e symbols.TypeSymbol, nullable bool) []BinarySignature {
	var ret symbols.TypeSymbol
	switch {
	case kind.IsComparison():
		ret = b.typeOf(OperandBool, false)
	case kind.Operator() == BinaryAnd, kind.Operator() == BinaryOr, kind.Operator() == BinaryXor:
		ret = e
	default:
		return nil
	}
	k := kind | BinaryOperatorKind(OperandEnum)
	out := []BinarySignature{{Kind: k, Left: e, Right: e, Return: ret}}
	if nullable {
		ne := b.lib.MakeNullable(e)
		lret := ret
		if !kind.IsComparison() {
			lret = ne
		}
		out = append(out, BinarySignature{Kind: k | BinaryLifted, Left: ne, Right: ne, Return: lret})
	}
	return out
}

func (b *BuiltinOperators) delegateCandidates(kind BinaryOperatorKind, d symbols.TypeSymbol) []BinarySignature {
	k := kind | BinaryOperatorKind(OperandDelegate)
	id, ok := loweredMember(k)
	if !ok {
		return nil
	}
	ret := d
	if kind.IsComparison() {
		ret = b.typeOf(OperandBool, false)
	}
	return []BinarySignature{{Kind: k, Left: d, Right: d, Return: ret, Method: b.lib.SpecialMethod(id)}}
}

func enumOperand(t symbols.TypeSymbol) symbols.TypeSymbol {
	if u := symbols.NullableUnderlying(t); u != nil {
		t = u
	}
	if t.TypeKind() == symbols.TypeKindEnum {
		return t
	}
	return nil
}

func delegateOperand(t symbols.TypeSymbol) symbols.TypeSymbol {
	if t.TypeKind() == symbols.TypeKindDelegate {
		return t
	}
	return nil
}

func containsType(list []symbols.TypeSymbol, t symbols.TypeSymbol) bool {
	for _, x := range list {
		if symbols.Equal(x, t) {
			return true
		}
	}
	return false
}
