package symbols

import (
	"strings"

	"stark/internal/fault"
	"stark/internal/source"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

const (
	InstanceConstructorName = ".ctor"
	StaticConstructorName   = ".cctor"
)

// MethodSymbol is the surface shared by Method and ErrorMethod.
type MethodSymbol interface {
	Symbol
	MethodKind() MethodKind
	ReturnType() TypeWithModifiers
	ReturnsVoid() bool
	RefKind() RefKind
	RefCustomModifiers() []CustomModifier
	Parameters() []*Parameter
	ParameterCount() int
	TypeParameters() []*TypeParameter
	TypeArguments() []TypeSymbol
	Arity() int
	IsVirtual() bool
	IsOverride() bool
	IsAbstract() bool
	IsSealed() bool
	IsExtern() bool
	IsAsync() bool
	IsReadOnly() bool
	IsVararg() bool
	IsExtensionMethod() bool
	HidesBaseMethodsByName() bool
	HasSpecialName() bool
	CallingConvention() CallingConvention
	ExplicitInterfaceImplementations() []MethodSymbol
	ThrowsList() []TypeSymbol
	SpecialMember() (wellknown.SpecialMember, bool)
	OriginalDefinition() MethodSymbol
	GenerateDebugInfo() bool
	CalculateLocalSyntaxOffset(position int, file source.FileID) int
}

type methodFlags uint16

const (
	mfVirtual methodFlags = 1 << iota
	mfOverride
	mfAbstract
	mfSealed
	mfExtern
	mfAsync
	mfReadOnly
	mfVararg
	mfExtension
	mfHideByName
)

// MethodSpec carries everything needed to create a Method.
type MethodSpec struct {
	Name          string
	Kind          MethodKind
	Accessibility Accessibility
	Modifiers     syntax.Modifier
	ReadOnly      bool
	Vararg        bool
	Extension     bool
	Origin        Origin
	Special       *wellknown.MemberDescriptor
}

// Method is a source, corlib or synthesized method.
type Method struct {
	symbolBase
	kind         MethodKind
	flags        methodFlags
	returnType   TypeWithModifiers
	refKind      RefKind
	refMods      []CustomModifier
	params       []*Parameter
	paramCount   int
	typeParams   []*TypeParameter
	typeArgs     []TypeSymbol
	explicitImpl []MethodSymbol
	throws       []TypeSymbol
	special      *wellknown.MemberDescriptor
	definition   *Method
	bodyStart    uint32
}

// NewMethod creates a method owned by container. The signature is installed
// later with SetSignature, before the method is published.
func NewMethod(container Symbol, spec MethodSpec) *Method {
	m := &Method{
		symbolBase: symbolBase{
			name:       spec.Name,
			containing: container,
			access:     spec.Accessibility,
			static:     spec.Modifiers&syntax.ModStatic != 0,
		},
		kind:    spec.Kind,
		special: spec.Special,
	}
	m.definition = m
	spec.Origin.apply(&m.symbolBase)
	if spec.Origin.Span != source.NoSpan {
		m.bodyStart = spec.Origin.Span.Start
	}
	mods := spec.Modifiers
	for _, p := range [...]struct {
		mod  syntax.Modifier
		flag methodFlags
	}{
		{syntax.ModVirtual, mfVirtual},
		{syntax.ModOverride, mfOverride},
		{syntax.ModAbstract, mfAbstract},
		{syntax.ModSealed, mfSealed},
		{syntax.ModExtern, mfExtern},
		{syntax.ModAsync, mfAsync},
		{syntax.ModNew, mfHideByName},
	} {
		if mods&p.mod != 0 {
			m.flags |= p.flag
		}
	}
	if spec.ReadOnly {
		m.flags |= mfReadOnly
	}
	if spec.Vararg {
		m.flags |= mfVararg
	}
	if spec.Extension {
		m.flags |= mfExtension
	}
	return m
}

// AddTypeParameter appends a method type parameter and returns it.
func (m *Method) AddTypeParameter(name string, origin Origin) *TypeParameter {
	tp := NewTypeParameter(m, len(m.typeParams), name, origin)
	m.typeParams = append(m.typeParams, tp)
	m.typeArgs = append(m.typeArgs, tp)
	return tp
}

// SetSignature installs the return type and parameters.
func (m *Method) SetSignature(ret TypeWithModifiers, refKind RefKind, refMods []CustomModifier, params []*Parameter) {
	m.returnType = ret
	m.refKind = refKind
	m.refMods = refMods
	m.params = params
	m.paramCount = len(params)
}

// SetExplicitInterfaceImplementations records the interface methods m implements.
func (m *Method) SetExplicitInterfaceImplementations(impls []MethodSymbol) {
	m.explicitImpl = impls
}

func (m *Method) Kind() SymbolKind                                 { return SymbolMethod }
func (m *Method) MethodKind() MethodKind                           { return m.kind }
func (m *Method) ReturnType() TypeWithModifiers                    { return m.returnType }
func (m *Method) RefKind() RefKind                                 { return m.refKind }
func (m *Method) RefCustomModifiers() []CustomModifier             { return m.refMods }
func (m *Method) Parameters() []*Parameter                         { return m.params }
func (m *Method) ParameterCount() int                              { return m.paramCount }
func (m *Method) TypeParameters() []*TypeParameter                 { return m.typeParams }
func (m *Method) TypeArguments() []TypeSymbol                      { return m.typeArgs }
func (m *Method) Arity() int                                       { return len(m.typeParams) }
func (m *Method) IsVirtual() bool                                  { return m.flags&mfVirtual != 0 }
func (m *Method) IsOverride() bool                                 { return m.flags&mfOverride != 0 }
func (m *Method) IsAbstract() bool                                 { return m.flags&mfAbstract != 0 }
func (m *Method) IsSealed() bool                                   { return m.flags&mfSealed != 0 }
func (m *Method) IsExtern() bool                                   { return m.flags&mfExtern != 0 }
func (m *Method) IsAsync() bool                                    { return m.flags&mfAsync != 0 }
func (m *Method) IsReadOnly() bool                                 { return m.flags&mfReadOnly != 0 }
func (m *Method) IsVararg() bool                                   { return m.flags&mfVararg != 0 }
func (m *Method) IsExtensionMethod() bool                          { return m.flags&mfExtension != 0 }
func (m *Method) HidesBaseMethodsByName() bool                     { return m.flags&mfHideByName != 0 }
func (m *Method) ExplicitInterfaceImplementations() []MethodSymbol { return m.explicitImpl }
func (m *Method) ThrowsList() []TypeSymbol                         { return m.throws }
func (m *Method) OriginalDefinition() MethodSymbol                 { return m.definition }
func (m *Method) GenerateDebugInfo() bool                          { return len(m.refs) > 0 }

// ReturnsVoid holds exactly when the return type is core.Void.
func (m *Method) ReturnsVoid() bool {
	return m.returnType.SpecialType() == wellknown.TypeVoid
}

// HasSpecialName is set for constructors, operators and accessors.
func (m *Method) HasSpecialName() bool {
	switch m.kind {
	case MethodConstructor, MethodStaticConstructor, MethodUserDefinedOperator,
		MethodConversion, MethodPropertyGet, MethodPropertySet:
		return true
	}
	return false
}

func (m *Method) CallingConvention() CallingConvention {
	cc := CallDefault
	if m.IsVararg() {
		cc = CallVarArgs
	}
	if len(m.typeParams) > 0 {
		cc |= CallGeneric
	}
	if !m.static {
		cc |= CallHasThis
	}
	return cc
}

// SpecialMember returns the descriptor id when m was materialized from the
// special member table.
func (m *Method) SpecialMember() (wellknown.SpecialMember, bool) {
	if m.definition.special == nil {
		return 0, false
	}
	return m.definition.special.ID, true
}

// CalculateLocalSyntaxOffset maps a position inside the method body to an
// offset relative to the declaration. Methods without syntax cannot answer.
func (m *Method) CalculateLocalSyntaxOffset(position int, file source.FileID) int {
	if len(m.locations) == 0 || m.locations[0].File != file {
		fault.Unreachable("local syntax offset requested on %s without declaring syntax", m)
	}
	return position - int(m.bodyStart)
}

func (m *Method) String() string {
	var sb strings.Builder
	if ct := ContainingType(m); ct != nil {
		sb.WriteString(ct.String())
		sb.WriteByte('.')
	}
	sb.WriteString(m.name)
	if len(m.typeArgs) > 0 {
		sb.WriteByte('<')
		for i, a := range m.typeArgs {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(a.String())
		}
		sb.WriteByte('>')
	}
	sb.WriteByte('(')
	for i, p := range m.params {
		if i > 0 {
			sb.WriteString(", ")
		}
		if p.refKind != RefNone {
			sb.WriteString(p.refKind.String())
			sb.WriteByte(' ')
		}
		sb.WriteString(p.typ.Type.String())
	}
	sb.WriteByte(')')
	return sb.String()
}

// IsOperator reports whether m is a user-defined operator or conversion.
func IsOperator(m MethodSymbol) bool {
	k := m.MethodKind()
	return k == MethodUserDefinedOperator || k == MethodConversion
}
