package syntax

// UnaryOp enumerates unary operator tokens.
type UnaryOp uint8

const (
	UnaryInvalid UnaryOp = iota
	UnaryPlus
	UnaryMinus
	UnaryNot
	UnaryBitNot
	UnaryPreInc
	UnaryPreDec
	UnaryPostInc
	UnaryPostDec
)

// String returns the symbol representation of a unary operator.
// Postfix forms render with a leading underscore placeholder.
func (op UnaryOp) String() string {
	switch op {
	case UnaryPlus:
		return "+"
	case UnaryMinus:
		return "-"
	case UnaryNot:
		return "!"
	case UnaryBitNot:
		return "~"
	case UnaryPreInc:
		return "++"
	case UnaryPreDec:
		return "--"
	case UnaryPostInc:
		return "_++"
	case UnaryPostDec:
		return "_--"
	default:
		return "?"
	}
}

// BinaryOp enumerates binary operator tokens.
type BinaryOp uint8

const (
	BinaryInvalid BinaryOp = iota

	// Арифметические
	BinaryAdd
	BinarySub
	BinaryMul
	BinaryDiv
	BinaryMod

	// Битовые
	BinaryBitAnd
	BinaryBitOr
	BinaryBitXor
	BinaryShiftLeft
	BinaryShiftRight

	// Логические
	BinaryLogicalAnd
	BinaryLogicalOr

	// Сравнения
	BinaryEq
	BinaryNotEq
	BinaryLess
	BinaryLessEq
	BinaryGreater
	BinaryGreaterEq
)

// String returns the symbol representation of a binary operator.
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
	case BinaryBitAnd:
		return "&"
	case BinaryBitOr:
		return "|"
	case BinaryBitXor:
		return "^"
	case BinaryShiftLeft:
		return "<<"
	case BinaryShiftRight:
		return ">>"
	case BinaryLogicalAnd:
		return "&&"
	case BinaryLogicalOr:
		return "||"
	case BinaryEq:
		return "=="
	case BinaryNotEq:
		return "!="
	case BinaryLess:
		return "<"
	case BinaryLessEq:
		return "<="
	case BinaryGreater:
		return ">"
	case BinaryGreaterEq:
		return ">="
	default:
		return "?"
	}
}

// IsComparison reports whether op yields bool for every operand pair.
func (op BinaryOp) IsComparison() bool {
	return op >= BinaryEq && op <= BinaryGreaterEq
}

var (
	unaryByText  = map[string]UnaryOp{}
	binaryByText = map[string]BinaryOp{}
)

func init() {
	for op := UnaryPlus; op <= UnaryPostDec; op++ {
		unaryByText[op.String()] = op
	}
	// "x++" и "x--" тоже принимаются
	unaryByText["x++"] = UnaryPostInc
	unaryByText["x--"] = UnaryPostDec
	for op := BinaryAdd; op <= BinaryGreaterEq; op++ {
		binaryByText[op.String()] = op
	}
}

// ParseUnaryOp maps an operator token to UnaryOp.
func ParseUnaryOp(s string) (UnaryOp, bool) {
	op, ok := unaryByText[s]
	return op, ok
}

// ParseBinaryOp maps an operator token to BinaryOp.
func ParseBinaryOp(s string) (BinaryOp, bool) {
	op, ok := binaryByText[s]
	return op, ok
}
