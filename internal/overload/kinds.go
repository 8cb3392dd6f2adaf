package overload

import (
	"fmt"
	"strings"

	"stark/internal/syntax"
	"stark/internal/wellknown"
)

// OperandType is the low byte of an operator kind.
type OperandType uint8

const (
	OperandNone OperandType = iota
	OperandRune
	OperandInt8
	OperandUInt8
	OperandInt16
	OperandUInt16
	OperandInt32
	OperandUInt32
	OperandInt64
	OperandUInt64
	OperandFloat32
	OperandFloat64
	OperandInt
	OperandUInt
	OperandBool
	OperandString
	OperandObject
	OperandStringAndObject
	OperandObjectAndString
	OperandEnum
	OperandDelegate
	OperandUserDefined
)

var operandNames = [...]string{
	OperandNone:            "error",
	OperandRune:            "rune",
	OperandInt8:            "i8",
	OperandUInt8:           "u8",
	OperandInt16:           "i16",
	OperandUInt16:          "u16",
	OperandInt32:           "i32",
	OperandUInt32:          "u32",
	OperandInt64:           "i64",
	OperandUInt64:          "u64",
	OperandFloat32:         "f32",
	OperandFloat64:         "f64",
	OperandInt:             "int",
	OperandUInt:            "uint",
	OperandBool:            "bool",
	OperandString:          "string",
	OperandObject:          "object",
	OperandStringAndObject: "string+object",
	OperandObjectAndString: "object+string",
	OperandEnum:            "enum",
	OperandDelegate:        "delegate",
	OperandUserDefined:     "user-defined",
}

func (t OperandType) String() string {
	if int(t) < len(operandNames) {
		return operandNames[t]
	}
	return fmt.Sprintf("OperandType(%d)", t)
}

var operandSpecial = map[OperandType]wellknown.SpecialType{
	OperandRune:    wellknown.TypeRune,
	OperandInt8:    wellknown.TypeInt8,
	OperandUInt8:   wellknown.TypeUInt8,
	OperandInt16:   wellknown.TypeInt16,
	OperandUInt16:  wellknown.TypeUInt16,
	OperandInt32:   wellknown.TypeInt32,
	OperandUInt32:  wellknown.TypeUInt32,
	OperandInt64:   wellknown.TypeInt64,
	OperandUInt64:  wellknown.TypeUInt64,
	OperandFloat32: wellknown.TypeFloat32,
	OperandFloat64: wellknown.TypeFloat64,
	OperandInt:     wellknown.TypeInt,
	OperandUInt:    wellknown.TypeUInt,
	OperandBool:    wellknown.TypeBool,
	OperandString:  wellknown.TypeString,
	OperandObject:  wellknown.TypeObject,
}

// SpecialType maps primitive operand types back to their special type.
func (t OperandType) SpecialType() wellknown.SpecialType {
	return operandSpecial[t]
}

// IsFloating is true for f32 and f64.
func (t OperandType) IsFloating() bool {
	return t == OperandFloat32 || t == OperandFloat64
}

// UnaryOperatorKind packs the operand type, the operator and flags:
// bits 0-7 operand type, bits 8-15 operator, bit 16 lifted.
type UnaryOperatorKind uint32

const (
	UnaryError UnaryOperatorKind = 0

	UnaryTypeMask UnaryOperatorKind = 0x0000FF
	UnaryOpMask   UnaryOperatorKind = 0x00FF00

	UnaryPostfixIncrement  UnaryOperatorKind = 0x1000
	UnaryPostfixDecrement  UnaryOperatorKind = 0x1100
	UnaryPrefixIncrement   UnaryOperatorKind = 0x1200
	UnaryPrefixDecrement   UnaryOperatorKind = 0x1300
	UnaryPlus              UnaryOperatorKind = 0x1400
	UnaryMinus             UnaryOperatorKind = 0x1500
	UnaryLogicalNegation   UnaryOperatorKind = 0x1600
	UnaryBitwiseComplement UnaryOperatorKind = 0x1700

	UnaryLifted UnaryOperatorKind = 0x10000
)

func (k UnaryOperatorKind) Operator() UnaryOperatorKind { return k & UnaryOpMask }
func (k UnaryOperatorKind) OperandType() OperandType    { return OperandType(k & UnaryTypeMask) }
func (k UnaryOperatorKind) IsLifted() bool              { return k&UnaryLifted != 0 }
func (k UnaryOperatorKind) Unlifted() UnaryOperatorKind { return k &^ UnaryLifted }

// OperatorIndex is the dense index of the operator, -1 when absent.
func (k UnaryOperatorKind) OperatorIndex() int {
	op := k.Operator()
	if op < UnaryPostfixIncrement || op > UnaryBitwiseComplement {
		return -1
	}
	return int((op - UnaryPostfixIncrement) >> 8)
}

// IsIncrement covers the four increment and decrement forms.
func (k UnaryOperatorKind) IsIncrement() bool {
	op := k.Operator()
	return op >= UnaryPostfixIncrement && op <= UnaryPrefixDecrement
}

var unaryOpNames = map[UnaryOperatorKind]string{
	UnaryPostfixIncrement:  "PostfixIncrement",
	UnaryPostfixDecrement:  "PostfixDecrement",
	UnaryPrefixIncrement:   "PrefixIncrement",
	UnaryPrefixDecrement:   "PrefixDecrement",
	UnaryPlus:              "UnaryPlus",
	UnaryMinus:             "UnaryMinus",
	UnaryLogicalNegation:   "LogicalNegation",
	UnaryBitwiseComplement: "BitwiseComplement",
}

func (k UnaryOperatorKind) String() string {
	if k == UnaryError {
		return "Error"
	}
	var sb strings.Builder
	if k.IsLifted() {
		sb.WriteString("Lifted")
	}
	if name, ok := unaryOpNames[k.Operator()]; ok {
		sb.WriteString(name)
	} else {
		fmt.Fprintf(&sb, "Op(0x%X)", uint32(k.Operator()))
	}
	if t := k.OperandType(); t != OperandNone {
		sb.WriteByte('[')
		sb.WriteString(t.String())
		sb.WriteByte(']')
	}
	return sb.String()
}

// UnaryOperatorFor maps a syntax operator to its unary operator kind.
func UnaryOperatorFor(op syntax.UnaryOp) UnaryOperatorKind {
	switch op {
	case syntax.UnaryPlus:
		return UnaryPlus
	case syntax.UnaryMinus:
		return UnaryMinus
	case syntax.UnaryNot:
		return UnaryLogicalNegation
	case syntax.UnaryBitNot:
		return UnaryBitwiseComplement
	case syntax.UnaryPreInc:
		return UnaryPrefixIncrement
	case syntax.UnaryPreDec:
		return UnaryPrefixDecrement
	case syntax.UnaryPostInc:
		return UnaryPostfixIncrement
	case syntax.UnaryPostDec:
		return UnaryPostfixDecrement
	}
	return UnaryError
}

// BinaryOperatorKind packs the operand type, the operator and flags:
// bits 0-7 operand type, bits 8-15 operator, bit 16 lifted, bit 17 logical (short-circuit).
type BinaryOperatorKind uint32

const (
	BinaryError BinaryOperatorKind = 0

	BinaryTypeMask BinaryOperatorKind = 0x0000FF
	BinaryOpMask   BinaryOperatorKind = 0x00FF00

	BinaryMultiplication     BinaryOperatorKind = 0x1000
	BinaryAddition           BinaryOperatorKind = 0x1100
	BinarySubtraction        BinaryOperatorKind = 0x1200
	BinaryDivision           BinaryOperatorKind = 0x1300
	BinaryRemainder          BinaryOperatorKind = 0x1400
	BinaryLeftShift          BinaryOperatorKind = 0x1500
	BinaryRightShift         BinaryOperatorKind = 0x1600
	BinaryEqual              BinaryOperatorKind = 0x1700
	BinaryNotEqual           BinaryOperatorKind = 0x1800
	BinaryGreaterThan        BinaryOperatorKind = 0x1900
	BinaryLessThan           BinaryOperatorKind = 0x1A00
	BinaryGreaterThanOrEqual BinaryOperatorKind = 0x1B00
	BinaryLessThanOrEqual    BinaryOperatorKind = 0x1C00
	BinaryAnd                BinaryOperatorKind = 0x1D00
	BinaryXor                BinaryOperatorKind = 0x1E00
	BinaryOr                 BinaryOperatorKind = 0x1F00

	BinaryLifted  BinaryOperatorKind = 0x10000
	BinaryLogical BinaryOperatorKind = 0x20000
)

func (k BinaryOperatorKind) Operator() BinaryOperatorKind { return k & BinaryOpMask }
func (k BinaryOperatorKind) OperandType() OperandType     { return OperandType(k & BinaryTypeMask) }
func (k BinaryOperatorKind) IsLifted() bool               { return k&BinaryLifted != 0 }
func (k BinaryOperatorKind) IsLogical() bool              { return k&BinaryLogical != 0 }
func (k BinaryOperatorKind) Unlifted() BinaryOperatorKind { return k &^ BinaryLifted }

// OperatorIndex is the dense index of the operator, -1 when absent.
func (k BinaryOperatorKind) OperatorIndex() int {
	op := k.Operator()
	if op < BinaryMultiplication || op > BinaryOr {
		return -1
	}
	return int((op - BinaryMultiplication) >> 8)
}

// IsComparison covers equality and relational operators; they yield bool.
func (k BinaryOperatorKind) IsComparison() bool {
	op := k.Operator()
	return op >= BinaryEqual && op <= BinaryLessThanOrEqual
}

// IsEquality covers == and !=.
func (k BinaryOperatorKind) IsEquality() bool {
	op := k.Operator()
	return op == BinaryEqual || op == BinaryNotEqual
}

// IsShift covers << and >>.
func (k BinaryOperatorKind) IsShift() bool {
	op := k.Operator()
	return op == BinaryLeftShift || op == BinaryRightShift
}

var binaryOpNames = map[BinaryOperatorKind]string{
	BinaryMultiplication:     "Multiplication",
	BinaryAddition:           "Addition",
	BinarySubtraction:        "Subtraction",
	BinaryDivision:           "Division",
	BinaryRemainder:          "Remainder",
	BinaryLeftShift:          "LeftShift",
	BinaryRightShift:         "RightShift",
	BinaryEqual:              "Equal",
	BinaryNotEqual:           "NotEqual",
	BinaryGreaterThan:        "GreaterThan",
	BinaryLessThan:           "LessThan",
	BinaryGreaterThanOrEqual: "GreaterThanOrEqual",
	BinaryLessThanOrEqual:    "LessThanOrEqual",
	BinaryAnd:                "And",
	BinaryXor:                "Xor",
	BinaryOr:                 "Or",
}

func (k BinaryOperatorKind) String() string {
	if k == BinaryError {
		return "Error"
	}
	var sb strings.Builder
	if k.IsLifted() {
		sb.WriteString("Lifted")
	}
	if k.IsLogical() {
		sb.WriteString("Logical")
	}
	if name, ok := binaryOpNames[k.Operator()]; ok {
		sb.WriteString(name)
	} else {
		fmt.Fprintf(&sb, "Op(0x%X)", uint32(k.Operator()))
	}
	if t := k.OperandType(); t != OperandNone {
		sb.WriteByte('[')
		sb.WriteString(t.String())
		sb.WriteByte(']')
	}
	return sb.String()
}

// BinaryOperatorFor maps a syntax operator to its binary operator kind.
func BinaryOperatorFor(op syntax.BinaryOp) BinaryOperatorKind {
	switch op {
	case syntax.BinaryAdd:
		return BinaryAddition
	case syntax.BinarySub:
		return BinarySubtraction
	case syntax.BinaryMul:
		return BinaryMultiplication
	case syntax.BinaryDiv:
		return BinaryDivision
	case syntax.BinaryMod:
		return BinaryRemainder
	case syntax.BinaryBitAnd:
		return BinaryAnd
	case syntax.BinaryBitOr:
		return BinaryOr
	case syntax.BinaryBitXor:
		return BinaryXor
	case syntax.BinaryShiftLeft:
		return BinaryLeftShift
	case syntax.BinaryShiftRight:
		return BinaryRightShift
	case syntax.BinaryLogicalAnd:
		return BinaryAnd | BinaryLogical
	case syntax.BinaryLogicalOr:
		return BinaryOr | BinaryLogical
	case syntax.BinaryEq:
		return BinaryEqual
	case syntax.BinaryNotEq:
		return BinaryNotEqual
	case syntax.BinaryLess:
		return BinaryLessThan
	case syntax.BinaryLessEq:
		return BinaryLessThanOrEqual
	case syntax.BinaryGreater:
		return BinaryGreaterThan
	case syntax.BinaryGreaterEq:
		return BinaryGreaterThanOrEqual
	}
	return BinaryError
}

// Metadata names of user-defined operator methods.
var unaryMetadataNames = map[UnaryOperatorKind]string{
	UnaryPostfixIncrement:  "op_Increment",
	UnaryPrefixIncrement:   "op_Increment",
	UnaryPostfixDecrement:  "op_Decrement",
	UnaryPrefixDecrement:   "op_Decrement",
	UnaryPlus:              "op_UnaryPlus",
	UnaryMinus:             "op_UnaryNegation",
	UnaryLogicalNegation:   "op_LogicalNot",
	UnaryBitwiseComplement: "op_OnesComplement",
}

var binaryMetadataNames = map[BinaryOperatorKind]string{
	BinaryMultiplication:     "op_Multiply",
	BinaryAddition:           "op_Addition",
	BinarySubtraction:        "op_Subtraction",
	BinaryDivision:           "op_Division",
	BinaryRemainder:          "op_Modulus",
	BinaryLeftShift:          "op_LeftShift",
	BinaryRightShift:         "op_RightShift",
	BinaryEqual:              "op_Equality",
	BinaryNotEqual:           "op_Inequality",
	BinaryGreaterThan:        "op_GreaterThan",
	BinaryLessThan:           "op_LessThan",
	BinaryGreaterThanOrEqual: "op_GreaterThanOrEqual",
	BinaryLessThanOrEqual:    "op_LessThanOrEqual",
	BinaryAnd:                "op_BitwiseAnd",
	BinaryXor:                "op_ExclusiveOr",
	BinaryOr:                 "op_BitwiseOr",
}

// UnaryMetadataName is the method name a user-defined operator is declared under.
func UnaryMetadataName(k UnaryOperatorKind) string { return unaryMetadataNames[k.Operator()] }

// BinaryMetadataName is the method name a user-defined operator is declared under.
// Short-circuit operators have none.
func BinaryMetadataName(k BinaryOperatorKind) string {
	if k.IsLogical() {
		return ""
	}
	return binaryMetadataNames[k.Operator()]
}
