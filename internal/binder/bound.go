package binder

import (
	"stark/internal/conversions"
	"stark/internal/overload"
	"stark/internal/source"
	"stark/internal/symbols"
)

// Expr is a bound expression. Type is never nil; expressions that failed
// to bind carry symbols.UnknownResultType.
type Expr interface {
	Type() symbols.TypeSymbol
	Span() source.Span
	HasErrors() bool
	boundExpr()
}

type node struct {
	typ  symbols.TypeSymbol
	span source.Span
}

func (n node) Type() symbols.TypeSymbol { return n.typ }
func (n node) Span() source.Span        { return n.span }
func (n node) HasErrors() bool          { return n.typ.IsErrorType() }
func (node) boundExpr()                 {}

// Literal is a constant at its natural type.
type Literal struct {
	node
	Value *symbols.ConstantValue
}

// Value is an operand of known type, such as a local or parameter.
type Value struct {
	node
	Name string
}

// Unary is a resolved unary operator application.
type Unary struct {
	node
	Operator   overload.UnaryOperatorKind
	Operand    Expr
	Conversion conversions.Kind
	// Method is the user-defined operator, nil for builtins.
	Method symbols.MethodSymbol
}

// Binary is a resolved binary operator application.
type Binary struct {
	node
	Operator        overload.BinaryOperatorKind
	Left, Right     Expr
	LeftConversion  conversions.Kind
	RightConversion conversions.Kind
	// Method is the user-defined operator or the corlib member a builtin
	// lowers to; nil otherwise.
	Method symbols.MethodSymbol
}

// Call is a static method call.
type Call struct {
	node
	Method      symbols.MethodSymbol
	Args        []Expr
	Conversions []conversions.Kind
}
