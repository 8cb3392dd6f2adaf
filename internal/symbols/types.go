package symbols

import (
	"stark/internal/source"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

// TypeSymbol is implemented by every symbol that can be used as a type.
type TypeSymbol interface {
	Symbol
	TypeKind() TypeKind
	SpecialType() wellknown.SpecialType
	IsValueType() bool
	IsReferenceType() bool
	BaseType() *NamedType
	IsErrorType() bool

	typeSymbol()
}

// CustomModifier is a modreq/modopt annotation on a type in a signature.
type CustomModifier struct {
	Modifier   *NamedType
	IsOptional bool
}

func (m CustomModifier) String() string {
	if m.IsOptional {
		return "modopt(" + m.Modifier.String() + ")"
	}
	return "modreq(" + m.Modifier.String() + ")"
}

// TypeWithModifiers is a type as it appears in a signature.
type TypeWithModifiers struct {
	Type            TypeSymbol
	CustomModifiers []CustomModifier
}

// Plain wraps t without modifiers.
func Plain(t TypeSymbol) TypeWithModifiers {
	return TypeWithModifiers{Type: t}
}

func (t TypeWithModifiers) SpecialType() wellknown.SpecialType {
	if t.Type == nil {
		return wellknown.TypeNone
	}
	return t.Type.SpecialType()
}

func (t TypeWithModifiers) String() string {
	if t.Type == nil {
		return "?"
	}
	s := t.Type.String()
	for _, m := range t.CustomModifiers {
		s += " " + m.String()
	}
	return s
}

// Equal reports type identity. Constructed types are compared by definition
// and arguments since constructions are not interned.
func Equal(a, b TypeSymbol) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	switch x := a.(type) {
	case *NamedType:
		y, ok := b.(*NamedType)
		if !ok || x.definition != y.definition || len(x.typeArgs) != len(y.typeArgs) {
			return false
		}
		for i := range x.typeArgs {
			if !Equal(x.typeArgs[i], y.typeArgs[i]) {
				return false
			}
		}
		return true
	case *ArrayType:
		y, ok := b.(*ArrayType)
		return ok && Equal(x.elem, y.elem)
	case *PointerType:
		y, ok := b.(*PointerType)
		return ok && Equal(x.elem, y.elem)
	}
	return false
}

// ArrayType is a single-dimensional zero-based array.
type ArrayType struct {
	elem TypeSymbol
	base *NamedType
}

// NewArrayType builds elem[]. base is core.Array of the declaring corlib.
func NewArrayType(elem TypeSymbol, base *NamedType) *ArrayType {
	return &ArrayType{elem: elem, base: base}
}

func (a *ArrayType) ElementType() TypeSymbol                       { return a.elem }
func (a *ArrayType) Kind() SymbolKind                              { return SymbolArrayType }
func (a *ArrayType) Name() string                                  { return "" }
func (a *ArrayType) ContainingSymbol() Symbol                      { return nil }
func (a *ArrayType) DeclaredAccessibility() Accessibility          { return AccessNotApplicable }
func (a *ArrayType) Locations() []source.Span                      { return nil }
func (a *ArrayType) DeclaringSyntaxReferences() []syntax.Reference { return nil }
func (a *ArrayType) Attributes() []*AttributeData                  { return nil }
func (a *ArrayType) IsStatic() bool                                { return false }
func (a *ArrayType) TypeKind() TypeKind                            { return TypeKindArray }
func (a *ArrayType) SpecialType() wellknown.SpecialType            { return wellknown.TypeNone }
func (a *ArrayType) IsValueType() bool                             { return false }
func (a *ArrayType) IsReferenceType() bool                         { return true }
func (a *ArrayType) BaseType() *NamedType                          { return a.base }
func (a *ArrayType) IsErrorType() bool                             { return false }
func (a *ArrayType) String() string                                { return a.elem.String() + "[]" }
func (a *ArrayType) symbol()                                       {}
func (a *ArrayType) typeSymbol()                                   {}

// PointerType is an unmanaged pointer.
type PointerType struct {
	elem TypeSymbol
}

func NewPointerType(elem TypeSymbol) *PointerType {
	return &PointerType{elem: elem}
}

func (p *PointerType) PointedAtType() TypeSymbol                     { return p.elem }
func (p *PointerType) Kind() SymbolKind                              { return SymbolPointerType }
func (p *PointerType) Name() string                                  { return "" }
func (p *PointerType) ContainingSymbol() Symbol                      { return nil }
func (p *PointerType) DeclaredAccessibility() Accessibility          { return AccessNotApplicable }
func (p *PointerType) Locations() []source.Span                      { return nil }
func (p *PointerType) DeclaringSyntaxReferences() []syntax.Reference { return nil }
func (p *PointerType) Attributes() []*AttributeData                  { return nil }
func (p *PointerType) IsStatic() bool                                { return false }
func (p *PointerType) TypeKind() TypeKind                            { return TypeKindPointer }
func (p *PointerType) SpecialType() wellknown.SpecialType            { return wellknown.TypeNone }
func (p *PointerType) IsValueType() bool                             { return true }
func (p *PointerType) IsReferenceType() bool                         { return false }
func (p *PointerType) BaseType() *NamedType                          { return nil }
func (p *PointerType) IsErrorType() bool                             { return false }
func (p *PointerType) String() string                                { return p.elem.String() + "*" }
func (p *PointerType) symbol()                                       {}
func (p *PointerType) typeSymbol()                                   {}

// TypeParameter is a generic parameter of a type or method.
type TypeParameter struct {
	symbolBase
	ordinal int
}

// NewTypeParameter declares the ordinal-th type parameter of owner.
func NewTypeParameter(owner Symbol, ordinal int, name string, origin Origin) *TypeParameter {
	tp := &TypeParameter{symbolBase: symbolBase{name: name, containing: owner, access: AccessNotApplicable}, ordinal: ordinal}
	origin.apply(&tp.symbolBase)
	return tp
}

func (tp *TypeParameter) Ordinal() int                       { return tp.ordinal }
func (tp *TypeParameter) Kind() SymbolKind                   { return SymbolTypeParameter }
func (tp *TypeParameter) TypeKind() TypeKind                 { return TypeKindTypeParameter }
func (tp *TypeParameter) SpecialType() wellknown.SpecialType { return wellknown.TypeNone }
func (tp *TypeParameter) IsValueType() bool                  { return false }
func (tp *TypeParameter) IsReferenceType() bool              { return false }
func (tp *TypeParameter) BaseType() *NamedType               { return nil }
func (tp *TypeParameter) IsErrorType() bool                  { return false }
func (tp *TypeParameter) String() string                     { return tp.name }
func (tp *TypeParameter) typeSymbol()                        {}

// IsMethodTypeParameter reports whether tp belongs to a method.
func (tp *TypeParameter) IsMethodTypeParameter() bool {
	_, ok := tp.containing.(MethodSymbol)
	return ok
}
