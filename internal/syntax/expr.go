package syntax

import (
	"strconv"

	"stark/internal/source"
)

// LiteralKind says which field of Literal is set.
type LiteralKind uint8

const (
	LitNull LiteralKind = iota
	LitBool
	LitInt
	LitFloat
	LitString
)

// Literal is a constant from source.
type Literal struct {
	Kind  LiteralKind
	Bool  bool
	Int   int64
	Float float64
	Str   string
}

func (l Literal) String() string {
	switch l.Kind {
	case LitBool:
		return strconv.FormatBool(l.Bool)
	case LitInt:
		return strconv.FormatInt(l.Int, 10)
	case LitFloat:
		return strconv.FormatFloat(l.Float, 'g', -1, 64)
	case LitString:
		return strconv.Quote(l.Str)
	default:
		return "null"
	}
}

// Expr is an expression handed to the binder.
type Expr interface {
	Node
	exprNode()
}

// TypedExpr stands for an operand whose static type is already known,
// such as a local or a parameter.
type TypedExpr struct {
	Name string
	Type *TypeSyntax
	Span source.Span
}

// LiteralExpr is a constant operand.
type LiteralExpr struct {
	Value Literal
	Span  source.Span
}

type UnaryExpr struct {
	Op      UnaryOp
	Operand Expr
	Span    source.Span
}

type BinaryExpr struct {
	Op          BinaryOp
	Left, Right Expr
	Span        source.Span
}

// CallExpr calls Name on Receiver. Receiver is a type for static calls.
type CallExpr struct {
	Receiver *TypeSyntax
	Name     string
	Args     []Expr
	Span     source.Span
}

func (e *TypedExpr) NodeSpan() source.Span   { return e.Span }
func (e *LiteralExpr) NodeSpan() source.Span { return e.Span }
func (e *UnaryExpr) NodeSpan() source.Span   { return e.Span }
func (e *BinaryExpr) NodeSpan() source.Span  { return e.Span }
func (e *CallExpr) NodeSpan() source.Span    { return e.Span }

func (*TypedExpr) exprNode()   {}
func (*LiteralExpr) exprNode() {}
func (*UnaryExpr) exprNode()   {}
func (*BinaryExpr) exprNode()  {}
func (*CallExpr) exprNode()    {}
