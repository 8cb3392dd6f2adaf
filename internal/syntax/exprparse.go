package syntax

import (
	"strconv"
	"strings"

	"stark/internal/source"
)

// ParseExpr parses an operand expression as written in a manifest body.
//
//	expr    := unary (binop unary)*
//	unary   := ('+' | '-' | '!' | '~' | '++' | '--') unary | primary ('++' | '--')?
//	primary := literal | name ':' type | type '.' name '(' args ')' | '(' expr ')'
//
// A type after ':' runs to the next blank, delimiter or operator character
// outside angle brackets; comparisons next to a typed operand need blanks.
func ParseExpr(text string, at source.Span) (Expr, error) {
	p := exprParser{typeParser: typeParser{src: text, at: at}}
	e, _, err := p.parseBinary(1)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return e, nil
}

// MustParseExpr is ParseExpr for literals in tests.
func MustParseExpr(text string) Expr {
	e, err := ParseExpr(text, source.NoSpan)
	if err != nil {
		panic(err)
	}
	return e
}

type exprParser struct {
	typeParser
}

var binaryPrecedence = map[BinaryOp]int{
	BinaryLogicalOr:  1,
	BinaryLogicalAnd: 2,
	BinaryBitOr:      3,
	BinaryBitXor:     4,
	BinaryBitAnd:     5,
	BinaryEq:         6,
	BinaryNotEq:      6,
	BinaryLess:       7,
	BinaryLessEq:     7,
	BinaryGreater:    7,
	BinaryGreaterEq:  7,
	BinaryShiftLeft:  8,
	BinaryShiftRight: 8,
	BinaryAdd:        9,
	BinarySub:        9,
	BinaryMul:        10,
	BinaryDiv:        10,
	BinaryMod:        10,
}

func (p *exprParser) peekBinary() (BinaryOp, int) {
	rest := p.src[p.pos:]
	if len(rest) >= 2 {
		if op, ok := ParseBinaryOp(rest[:2]); ok {
			return op, 2
		}
	}
	if len(rest) >= 1 {
		if op, ok := ParseBinaryOp(rest[:1]); ok {
			return op, 1
		}
	}
	return BinaryInvalid, 0
}

// parseBinary returns the expression and its start offset.
func (p *exprParser) parseBinary(minPrec int) (Expr, int, error) {
	left, start, err := p.parseUnary()
	if err != nil {
		return nil, 0, err
	}
	for {
		p.skipSpace()
		op, n := p.peekBinary()
		prec := binaryPrecedence[op]
		if n == 0 || prec < minPrec {
			return left, start, nil
		}
		p.pos += n
		right, _, err := p.parseBinary(prec + 1)
		if err != nil {
			return nil, 0, err
		}
		left = &BinaryExpr{Op: op, Left: left, Right: right, Span: p.span(start, p.pos)}
	}
}

func (p *exprParser) parseUnary() (Expr, int, error) {
	p.skipSpace()
	start := p.pos
	rest := p.src[p.pos:]
	var op UnaryOp
	switch {
	case strings.HasPrefix(rest, "++"):
		op = UnaryPreInc
	case strings.HasPrefix(rest, "--"):
		op = UnaryPreDec
	case rest != "" && strings.IndexByte("+-!~", rest[0]) >= 0:
		op, _ = ParseUnaryOp(rest[:1])
	}
	if op != UnaryInvalid {
		p.pos += len(op.String())
		operand, _, err := p.parseUnary()
		if err != nil {
			return nil, 0, err
		}
		return &UnaryExpr{Op: op, Operand: operand, Span: p.span(start, p.pos)}, start, nil
	}

	e, err := p.parsePrimary()
	if err != nil {
		return nil, 0, err
	}
	switch rest := p.src[p.pos:]; {
	case strings.HasPrefix(rest, "++"):
		p.pos += 2
		e = &UnaryExpr{Op: UnaryPostInc, Operand: e, Span: p.span(start, p.pos)}
	case strings.HasPrefix(rest, "--"):
		p.pos += 2
		e = &UnaryExpr{Op: UnaryPostDec, Operand: e, Span: p.span(start, p.pos)}
	}
	return e, start, nil
}

func (p *exprParser) parsePrimary() (Expr, error) {
	start := p.pos
	c := p.peek()
	switch {
	case c == '(':
		p.pos++
		e, _, err := p.parseBinary(1)
		if err != nil {
			return nil, err
		}
		p.skipSpace()
		if p.peek() != ')' {
			return nil, p.errorf("expected ')'")
		}
		p.pos++
		return e, nil
	case c == '"':
		return p.parseString()
	case c >= '0' && c <= '9':
		return p.parseNumber()
	case isIdentByte(c, true):
	default:
		return nil, p.errorf("expected operand")
	}

	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	switch p.peek() {
	case ':':
		if strings.Contains(name, ".") {
			return nil, p.errorf("operand name %q must be simple", name)
		}
		p.pos++
		ts, err := p.parseOperandType()
		if err != nil {
			return nil, err
		}
		return &TypedExpr{Name: name, Type: ts, Span: p.span(start, p.pos)}, nil
	case '(':
		dot := strings.LastIndexByte(name, '.')
		if dot < 0 {
			return nil, p.errorf("call to %s needs a receiver type", name)
		}
		recv, err := ParseType(name[:dot], p.span(start, start+dot))
		if err != nil {
			return nil, err
		}
		p.pos++
		args, err := p.parseArgs()
		if err != nil {
			return nil, err
		}
		return &CallExpr{Receiver: recv, Name: name[dot+1:], Args: args, Span: p.span(start, p.pos)}, nil
	}
	switch name {
	case "true", "false":
		return &LiteralExpr{Value: Literal{Kind: LitBool, Bool: name == "true"}, Span: p.span(start, p.pos)}, nil
	case "null":
		return &LiteralExpr{Value: Literal{Kind: LitNull}, Span: p.span(start, p.pos)}, nil
	}
	return nil, p.errorf("expected ':' or '(' after %s", name)
}

func (p *exprParser) parseOperandType() (*TypeSyntax, error) {
	start, depth := p.pos, 0
loop:
	for p.pos < len(p.src) {
		switch p.src[p.pos] {
		case '<':
			depth++
		case '>':
			depth--
		case ' ', '\t', ')', ',', '+', '-', '=', '!', '&', '|', '^', '%', '/', '~':
			if depth <= 0 {
				break loop
			}
		}
		p.pos++
	}
	return ParseType(p.src[start:p.pos], p.span(start, p.pos))
}

func (p *exprParser) parseArgs() ([]Expr, error) {
	var args []Expr
	p.skipSpace()
	if p.peek() == ')' {
		p.pos++
		return nil, nil
	}
	for {
		a, _, err := p.parseBinary(1)
		if err != nil {
			return nil, err
		}
		args = append(args, a)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case ')':
			p.pos++
			return args, nil
		default:
			return nil, p.errorf("expected ',' or ')'")
		}
	}
}

func (p *exprParser) parseString() (Expr, error) {
	start := p.pos
	p.pos++
	for p.pos < len(p.src) && p.src[p.pos] != '"' {
		if p.src[p.pos] == '\\' {
			p.pos++
		}
		p.pos++
	}
	if p.pos >= len(p.src) {
		return nil, p.errorf("unterminated string")
	}
	p.pos++
	s, err := strconv.Unquote(p.src[start:p.pos])
	if err != nil {
		return nil, p.errorf("bad string literal: %v", err)
	}
	return &LiteralExpr{Value: Literal{Kind: LitString, Str: s}, Span: p.span(start, p.pos)}, nil
}

func (p *exprParser) parseNumber() (Expr, error) {
	start := p.pos
	digits := func() {
		for p.pos < len(p.src) && p.src[p.pos] >= '0' && p.src[p.pos] <= '9' {
			p.pos++
		}
	}
	digits()
	isFloat := false
	if p.peek() == '.' && p.pos+1 < len(p.src) && p.src[p.pos+1] >= '0' && p.src[p.pos+1] <= '9' {
		isFloat = true
		p.pos++
		digits()
	}
	if c := p.peek(); c == 'e' || c == 'E' {
		isFloat = true
		p.pos++
		if c := p.peek(); c == '+' || c == '-' {
			p.pos++
		}
		digits()
	}
	text := p.src[start:p.pos]
	sp := p.span(start, p.pos)
	if isFloat {
		f, err := strconv.ParseFloat(text, 64)
		if err != nil {
			return nil, p.errorf("bad number %s", text)
		}
		return &LiteralExpr{Value: Literal{Kind: LitFloat, Float: f}, Span: sp}, nil
	}
	n, err := strconv.ParseInt(text, 10, 64)
	if err != nil {
		return nil, p.errorf("integer %s out of range", text)
	}
	return &LiteralExpr{Value: Literal{Kind: LitInt, Int: n}, Span: sp}, nil
}
