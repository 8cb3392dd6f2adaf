package symbols

import (
	"strings"

	"stark/internal/source"
	"stark/internal/syntax"
)

// Symbol is the capability surface shared by every variant.
// The set of variants is closed: Namespace, NamedType, ArrayType,
// PointerType, ErrorType, Method, ErrorMethod, Field, Parameter and
// TypeParameter.
type Symbol interface {
	Kind() SymbolKind
	Name() string
	// ContainingSymbol is nil only for a global namespace and for error symbols
	// without a container.
	ContainingSymbol() Symbol
	DeclaredAccessibility() Accessibility
	Locations() []source.Span
	DeclaringSyntaxReferences() []syntax.Reference
	Attributes() []*AttributeData
	IsStatic() bool
	String() string

	symbol()
}

// symbolBase holds the identity fields most variants share.
type symbolBase struct {
	name       string
	containing Symbol
	access     Accessibility
	locations  []source.Span
	refs       []syntax.Reference
	attrs      []*AttributeData
	static     bool
}

func (s *symbolBase) Name() string                                  { return s.name }
func (s *symbolBase) ContainingSymbol() Symbol                      { return s.containing }
func (s *symbolBase) DeclaredAccessibility() Accessibility          { return s.access }
func (s *symbolBase) Locations() []source.Span                      { return s.locations }
func (s *symbolBase) DeclaringSyntaxReferences() []syntax.Reference { return s.refs }
func (s *symbolBase) Attributes() []*AttributeData                  { return s.attrs }
func (s *symbolBase) IsStatic() bool                                { return s.static }
func (s *symbolBase) symbol()                                       {}

// SetAttributes installs bound attributes. Only the declaration builder calls
// it, before the symbol is shared.
func (s *symbolBase) SetAttributes(attrs []*AttributeData) { s.attrs = attrs }

// Origin describes where a source symbol was declared.
type Origin struct {
	Span source.Span
	Node syntax.Node
}

func (o Origin) apply(b *symbolBase) {
	if o.Node == nil && o.Span == source.NoSpan {
		return
	}
	b.locations = []source.Span{o.Span}
	b.refs = []syntax.Reference{{Span: o.Span, Node: o.Node}}
}

// ContainingType walks up to the nearest enclosing named type.
func ContainingType(s Symbol) *NamedType {
	for c := s.ContainingSymbol(); c != nil; c = c.ContainingSymbol() {
		if t, ok := c.(*NamedType); ok {
			return t
		}
	}
	return nil
}

// ContainingNamespace walks up to the nearest enclosing namespace.
func ContainingNamespace(s Symbol) *Namespace {
	for c := s.ContainingSymbol(); c != nil; c = c.ContainingSymbol() {
		if ns, ok := c.(*Namespace); ok {
			return ns
		}
	}
	return nil
}

// QualifiedName joins the names of s and its containers with dots,
// stopping at the global namespace.
func QualifiedName(s Symbol) string {
	if s == nil {
		return ""
	}
	parts := []string{s.Name()}
	for c := s.ContainingSymbol(); c != nil; c = c.ContainingSymbol() {
		if ns, ok := c.(*Namespace); ok && ns.IsGlobal() {
			break
		}
		parts = append(parts, c.Name())
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, ".")
}

// PrimaryLocation returns the first location or NoSpan.
func PrimaryLocation(s Symbol) source.Span {
	if locs := s.Locations(); len(locs) > 0 {
		return locs[0]
	}
	return source.NoSpan
}
