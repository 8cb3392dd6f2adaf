package syntax

import (
	"fmt"
	"strings"

	"stark/internal/source"
)

// TypeSyntaxKind says which shape a type expression has.
type TypeSyntaxKind uint8

const (
	TypeName     TypeSyntaxKind = iota // i32, core.String, Color
	TypeGeneric                        // Option<i32>
	TypeNullable                       // T?
	TypeArray                          // T[]
	TypePointer                        // T*
)

// TypeSyntax is a parsed type expression.
type TypeSyntax struct {
	Kind TypeSyntaxKind
	// Name holds the possibly qualified name for TypeName and TypeGeneric.
	Name string
	Args []*TypeSyntax
	// Elem is the operand of TypeNullable, TypeArray and TypePointer.
	Elem *TypeSyntax
	Span source.Span
}

func (t *TypeSyntax) NodeSpan() source.Span { return t.Span }

// Qualifier returns everything before the last dot of Name.
func (t *TypeSyntax) Qualifier() string {
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[:i]
	}
	return ""
}

// SimpleName returns the last dotted component of Name.
func (t *TypeSyntax) SimpleName() string {
	if i := strings.LastIndexByte(t.Name, '.'); i >= 0 {
		return t.Name[i+1:]
	}
	return t.Name
}

func (t *TypeSyntax) String() string {
	if t == nil {
		return "<nil>"
	}
	switch t.Kind {
	case TypeGeneric:
		parts := make([]string, len(t.Args))
		for i, a := range t.Args {
			parts[i] = a.String()
		}
		return t.Name + "<" + strings.Join(parts, ", ") + ">"
	case TypeNullable:
		return t.Elem.String() + "?"
	case TypeArray:
		return t.Elem.String() + "[]"
	case TypePointer:
		return t.Elem.String() + "*"
	default:
		return t.Name
	}
}

// ParseError reports a malformed type expression.
type ParseError struct {
	Text   string
	Offset int
	Msg    string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("type %q at %d: %s", e.Text, e.Offset, e.Msg)
}

// ParseType parses a type expression. at is the span of text in its file;
// nested spans are computed from it.
//
//	type := name ('<' type (',' type)* '>')? ('?' | '[]' | '*')*
func ParseType(text string, at source.Span) (*TypeSyntax, error) {
	p := typeParser{src: text, at: at}
	p.skipSpace()
	t, err := p.parseType()
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		return nil, p.errorf("unexpected %q", p.src[p.pos:])
	}
	return t, nil
}

// MustParseType is ParseType for literals in tests and tables.
func MustParseType(text string) *TypeSyntax {
	t, err := ParseType(text, source.NoSpan)
	if err != nil {
		panic(err)
	}
	return t
}

type typeParser struct {
	src string
	pos int
	at  source.Span
}

func (p *typeParser) errorf(format string, args ...any) error {
	return &ParseError{Text: p.src, Offset: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *typeParser) span(start, end int) source.Span {
	if p.at == source.NoSpan {
		return source.NoSpan
	}
	// offsets are bounded by len(src), which fits the span it came from
	return source.Span{File: p.at.File, Start: p.at.Start + uint32(start), End: p.at.Start + uint32(end)} //nolint:gosec
}

func (p *typeParser) skipSpace() {
	for p.pos < len(p.src) && (p.src[p.pos] == ' ' || p.src[p.pos] == '\t') {
		p.pos++
	}
}

func (p *typeParser) peek() byte {
	if p.pos < len(p.src) {
		return p.src[p.pos]
	}
	return 0
}

func (p *typeParser) parseType() (*TypeSyntax, error) {
	start := p.pos
	name, err := p.parseName()
	if err != nil {
		return nil, err
	}
	t := &TypeSyntax{Kind: TypeName, Name: name}
	p.skipSpace()
	if p.peek() == '<' {
		p.pos++
		t.Kind = TypeGeneric
		for {
			p.skipSpace()
			arg, err := p.parseType()
			if err != nil {
				return nil, err
			}
			t.Args = append(t.Args, arg)
			p.skipSpace()
			if p.peek() == ',' {
				p.pos++
				continue
			}
			if p.peek() != '>' {
				return nil, p.errorf("expected ',' or '>'")
			}
			p.pos++
			break
		}
	}
	t.Span = p.span(start, p.pos)
	for {
		p.skipSpace()
		switch {
		case p.peek() == '?':
			p.pos++
			t = &TypeSyntax{Kind: TypeNullable, Elem: t, Span: p.span(start, p.pos)}
		case p.peek() == '*':
			p.pos++
			t = &TypeSyntax{Kind: TypePointer, Elem: t, Span: p.span(start, p.pos)}
		case strings.HasPrefix(p.src[p.pos:], "[]"):
			p.pos += 2
			t = &TypeSyntax{Kind: TypeArray, Elem: t, Span: p.span(start, p.pos)}
		default:
			return t, nil
		}
	}
}

func (p *typeParser) parseName() (string, error) {
	start := p.pos
	for {
		identStart := p.pos
		for p.pos < len(p.src) && isIdentByte(p.src[p.pos], p.pos == identStart) {
			p.pos++
		}
		if p.pos == identStart {
			return "", p.errorf("expected identifier")
		}
		if p.peek() != '.' {
			break
		}
		p.pos++
	}
	return p.src[start:p.pos], nil
}

func isIdentByte(b byte, first bool) bool {
	switch {
	case b == '_', b >= 'a' && b <= 'z', b >= 'A' && b <= 'Z':
		return true
	case b >= '0' && b <= '9':
		return !first
	}
	return false
}
