package symbols

import (
	"fmt"

	"stark/internal/wellknown"
)

// MarshallingInfo is the native marshalling descriptor of a parameter.
type MarshallingInfo struct {
	UnmanagedType uint8
	Descriptor    []byte
}

// ParameterSpec carries everything needed to create a Parameter.
type ParameterSpec struct {
	Name         string
	Ordinal      int
	Type         TypeWithModifiers
	RefKind      RefKind
	RefModifiers []CustomModifier
	Optional     bool
	Default      *ConstantValue
	Params       bool
	Marshalling  *MarshallingInfo
	Origin       Origin
}

// Parameter is a method parameter.
type Parameter struct {
	symbolBase
	ordinal     int
	typ         TypeWithModifiers
	refKind     RefKind
	refMods     []CustomModifier
	optional    bool
	def         *ConstantValue
	params      bool
	marshalling *MarshallingInfo
}

// NewParameter creates a parameter of owner.
func NewParameter(owner Symbol, spec ParameterSpec) *Parameter {
	p := &Parameter{
		symbolBase:  symbolBase{name: spec.Name, containing: owner, access: AccessNotApplicable},
		ordinal:     spec.Ordinal,
		typ:         spec.Type,
		refKind:     spec.RefKind,
		refMods:     spec.RefModifiers,
		optional:    spec.Optional,
		def:         spec.Default,
		params:      spec.Params,
		marshalling: spec.Marshalling,
	}
	spec.Origin.apply(&p.symbolBase)
	return p
}

func (p *Parameter) Kind() SymbolKind                         { return SymbolParameter }
func (p *Parameter) Ordinal() int                             { return p.ordinal }
func (p *Parameter) Type() TypeSymbol                         { return p.typ.Type }
func (p *Parameter) TypeWithModifiers() TypeWithModifiers     { return p.typ }
func (p *Parameter) CustomModifiers() []CustomModifier        { return p.typ.CustomModifiers }
func (p *Parameter) RefKind() RefKind                         { return p.refKind }
func (p *Parameter) RefCustomModifiers() []CustomModifier     { return p.refMods }
func (p *Parameter) IsOptional() bool                         { return p.optional }
func (p *Parameter) IsParams() bool                           { return p.params }
func (p *Parameter) HasExplicitDefaultValue() bool            { return p.def != nil }
func (p *Parameter) ExplicitDefaultValue() *ConstantValue     { return p.def }
func (p *Parameter) MetadataName() string                     { return p.name }
func (p *Parameter) IsMarshalledExplicitly() bool             { return p.marshalling != nil }
func (p *Parameter) MarshallingInformation() *MarshallingInfo { return p.marshalling }

// IsMetadataIn is set for in-parameters and for parameters carrying InAttribute.
func (p *Parameter) IsMetadataIn() bool {
	return p.refKind == RefIn || p.hasAttribute(wellknown.AttrIn)
}

// IsMetadataOut is set for out-parameters and for parameters carrying OutAttribute.
func (p *Parameter) IsMetadataOut() bool {
	return p.refKind == RefOut || p.hasAttribute(wellknown.AttrOut)
}

// IsMetadataOptional is set for optional parameters and those with defaults.
func (p *Parameter) IsMetadataOptional() bool {
	return p.optional || p.def != nil
}

// MarshallingDescriptor returns the raw descriptor blob, nil when absent.
func (p *Parameter) MarshallingDescriptor() []byte {
	if p.marshalling == nil {
		return nil
	}
	return p.marshalling.Descriptor
}

func (p *Parameter) hasAttribute(id wellknown.AttributeID) bool {
	desc, ok := wellknown.Attribute(id)
	if !ok {
		return false
	}
	for _, a := range p.attrs {
		if a.IsTargetAttribute(desc) >= 0 {
			return true
		}
	}
	return false
}

func (p *Parameter) String() string {
	if p.refKind != RefNone {
		return fmt.Sprintf("%s %s %s", p.refKind, p.typ.Type, p.name)
	}
	return fmt.Sprintf("%s %s", p.typ.Type, p.name)
}

// FieldSpec carries everything needed to create a Field.
type FieldSpec struct {
	Name          string
	Type          TypeWithModifiers
	Accessibility Accessibility
	Static        bool
	Const         *ConstantValue
	SpecialName   bool
	RTSpecialName bool
	Origin        Origin
	Special       *wellknown.MemberDescriptor
}

// Field is a field or an enum constant.
type Field struct {
	symbolBase
	typ           TypeWithModifiers
	constant      *ConstantValue
	specialName   bool
	rtSpecialName bool
	special       *wellknown.MemberDescriptor
}

// NewField creates a field of container.
func NewField(container Symbol, spec FieldSpec) *Field {
	f := &Field{
		symbolBase: symbolBase{
			name:       spec.Name,
			containing: container,
			access:     spec.Accessibility,
			static:     spec.Static,
		},
		typ:           spec.Type,
		constant:      spec.Const,
		specialName:   spec.SpecialName,
		rtSpecialName: spec.RTSpecialName,
		special:       spec.Special,
	}
	spec.Origin.apply(&f.symbolBase)
	return f
}

func (f *Field) Kind() SymbolKind                     { return SymbolField }
func (f *Field) Type() TypeSymbol                     { return f.typ.Type }
func (f *Field) TypeWithModifiers() TypeWithModifiers { return f.typ }
func (f *Field) IsConst() bool                        { return f.constant != nil }
func (f *Field) ConstantValue() *ConstantValue        { return f.constant }
func (f *Field) HasSpecialName() bool                 { return f.specialName }
func (f *Field) HasRuntimeSpecialName() bool          { return f.rtSpecialName }

// SpecialMember returns the descriptor id for table-materialized fields.
func (f *Field) SpecialMember() (wellknown.SpecialMember, bool) {
	if f.special == nil {
		return 0, false
	}
	return f.special.ID, true
}

func (f *Field) String() string {
	if ct := ContainingType(f); ct != nil {
		return ct.String() + "." + f.name
	}
	return f.name
}
