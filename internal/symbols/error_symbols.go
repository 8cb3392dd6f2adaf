package symbols

import (
	"stark/internal/fault"
	"stark/internal/source"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

// ErrorType stands in for a type that could not be resolved.
type ErrorType struct {
	name string
}

// UnknownResultType is the one error type handed out by every failed type
// lookup. Compare against it by identity.
var UnknownResultType = &ErrorType{}

func (e *ErrorType) Kind() SymbolKind                              { return SymbolErrorType }
func (e *ErrorType) Name() string                                  { return e.name }
func (e *ErrorType) ContainingSymbol() Symbol                      { return nil }
func (e *ErrorType) DeclaredAccessibility() Accessibility          { return AccessPublic }
func (e *ErrorType) Locations() []source.Span                      { return nil }
func (e *ErrorType) DeclaringSyntaxReferences() []syntax.Reference { return nil }
func (e *ErrorType) Attributes() []*AttributeData                  { return nil }
func (e *ErrorType) IsStatic() bool                                { return false }
func (e *ErrorType) TypeKind() TypeKind                            { return TypeKindError }
func (e *ErrorType) SpecialType() wellknown.SpecialType            { return wellknown.TypeNone }
func (e *ErrorType) IsValueType() bool                             { return false }
func (e *ErrorType) IsReferenceType() bool                         { return false }
func (e *ErrorType) BaseType() *NamedType                          { return nil }
func (e *ErrorType) IsErrorType() bool                             { return true }
func (e *ErrorType) String() string                                { return "?" }
func (e *ErrorType) symbol()                                       {}
func (e *ErrorType) typeSymbol()                                   {}

// ErrorMethod stands in for a method that could not be resolved. Every
// query answers with a harmless default.
type ErrorMethod struct {
	containing TypeSymbol
	returnType TypeSymbol
	name       string
}

// UnknownMethod is the one error method handed out by failed member lookups.
var UnknownMethod = NewErrorMethod(UnknownResultType, UnknownResultType, "")

func NewErrorMethod(containing, returnType TypeSymbol, name string) *ErrorMethod {
	return &ErrorMethod{containing: containing, returnType: returnType, name: name}
}

func (m *ErrorMethod) Kind() SymbolKind                              { return SymbolMethod }
func (m *ErrorMethod) Name() string                                  { return m.name }
func (m *ErrorMethod) ContainingSymbol() Symbol                      { return m.containing }
func (m *ErrorMethod) DeclaredAccessibility() Accessibility          { return AccessPublic }
func (m *ErrorMethod) Locations() []source.Span                      { return nil }
func (m *ErrorMethod) DeclaringSyntaxReferences() []syntax.Reference { return nil }
func (m *ErrorMethod) Attributes() []*AttributeData                  { return nil }
func (m *ErrorMethod) IsStatic() bool                                { return false }
func (m *ErrorMethod) String() string                                { return "?." + m.name }
func (m *ErrorMethod) symbol()                                       {}

// MethodKind is Constructor for ".ctor" and Ordinary otherwise.
func (m *ErrorMethod) MethodKind() MethodKind {
	if m.name == InstanceConstructorName {
		return MethodConstructor
	}
	return MethodOrdinary
}

func (m *ErrorMethod) ReturnType() TypeWithModifiers { return Plain(m.returnType) }
func (m *ErrorMethod) ReturnsVoid() bool             { return m.returnType.SpecialType() == wellknown.TypeVoid }
func (m *ErrorMethod) RefKind() RefKind              { return RefNone }

func (m *ErrorMethod) RefCustomModifiers() []CustomModifier             { return nil }
func (m *ErrorMethod) Parameters() []*Parameter                         { return nil }
func (m *ErrorMethod) ParameterCount() int                              { return 0 }
func (m *ErrorMethod) TypeParameters() []*TypeParameter                 { return nil }
func (m *ErrorMethod) TypeArguments() []TypeSymbol                      { return nil }
func (m *ErrorMethod) Arity() int                                       { return 0 }
func (m *ErrorMethod) IsVirtual() bool                                  { return false }
func (m *ErrorMethod) IsOverride() bool                                 { return false }
func (m *ErrorMethod) IsAbstract() bool                                 { return false }
func (m *ErrorMethod) IsSealed() bool                                   { return false }
func (m *ErrorMethod) IsExtern() bool                                   { return false }
func (m *ErrorMethod) IsAsync() bool                                    { return false }
func (m *ErrorMethod) IsReadOnly() bool                                 { return false }
func (m *ErrorMethod) IsVararg() bool                                   { return false }
func (m *ErrorMethod) IsExtensionMethod() bool                          { return false }
func (m *ErrorMethod) HidesBaseMethodsByName() bool                     { return false }
func (m *ErrorMethod) HasSpecialName() bool                             { return false }
func (m *ErrorMethod) CallingConvention() CallingConvention             { return CallDefault }
func (m *ErrorMethod) ExplicitInterfaceImplementations() []MethodSymbol { return nil }
func (m *ErrorMethod) ThrowsList() []TypeSymbol                         { return nil }
func (m *ErrorMethod) SpecialMember() (wellknown.SpecialMember, bool)   { return 0, false }
func (m *ErrorMethod) OriginalDefinition() MethodSymbol                 { return m }
func (m *ErrorMethod) GenerateDebugInfo() bool                          { return false }

// CalculateLocalSyntaxOffset has no meaning without a body.
func (m *ErrorMethod) CalculateLocalSyntaxOffset(int, source.FileID) int {
	fault.Unreachable("local syntax offset requested on error method %q", m.name)
	return 0
}
