package emit

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"stark/internal/metadata"
	"stark/internal/symbols"
	"stark/internal/wellknown"
)

// ErrParameterIndex is returned when a parameter ordinal does not fit the
// 16-bit sequence column of the Param table.
var ErrParameterIndex = errors.New("emit: parameter index does not fit 16 bits")

// ParameterDefinition is what the writer needs to know about a parameter.
type ParameterDefinition interface {
	Name() string
	// Index is the zero-based position; Sequence is Index+1.
	Index() (uint16, error)
	Sequence() (uint16, error)
	Type() symbols.TypeWithModifiers
	RefKind() symbols.RefKind
	RefCustomModifiers() []CustomModifierAdapter
	CustomModifiers() []CustomModifierAdapter
	IsIn() bool
	IsOut() bool
	IsOptional() bool
	HasDefaultValue() bool
	DefaultValue(ectx EmitContext) *symbols.ConstantValue
	IsMarshalledExplicitly() bool
	MarshallingInformation() *symbols.MarshallingInfo
	MarshallingDescriptor() []byte
	Attributes() []*symbols.AttributeData
}

// ParameterAdapter forwards to a source or reference parameter.
type ParameterAdapter struct {
	Underlying *symbols.Parameter
}

var _ ParameterDefinition = (*ParameterAdapter)(nil)

func NewParameterAdapter(p *symbols.Parameter) *ParameterAdapter {
	return &ParameterAdapter{Underlying: p}
}

func (p *ParameterAdapter) Name() string                                     { return p.Underlying.MetadataName() }
func (p *ParameterAdapter) Type() symbols.TypeWithModifiers                  { return p.Underlying.TypeWithModifiers() }
func (p *ParameterAdapter) RefKind() symbols.RefKind                         { return p.Underlying.RefKind() }
func (p *ParameterAdapter) IsIn() bool                                       { return p.Underlying.IsMetadataIn() }
func (p *ParameterAdapter) IsOut() bool                                      { return p.Underlying.IsMetadataOut() }
func (p *ParameterAdapter) IsOptional() bool                                 { return p.Underlying.IsMetadataOptional() }
func (p *ParameterAdapter) HasDefaultValue() bool                            { return p.Underlying.HasExplicitDefaultValue() }
func (p *ParameterAdapter) IsMarshalledExplicitly() bool                     { return p.Underlying.IsMarshalledExplicitly() }
func (p *ParameterAdapter) MarshallingInformation() *symbols.MarshallingInfo { return p.Underlying.MarshallingInformation() }
func (p *ParameterAdapter) MarshallingDescriptor() []byte                    { return p.Underlying.MarshallingDescriptor() }
func (p *ParameterAdapter) Attributes() []*symbols.AttributeData             { return p.Underlying.Attributes() }

func (p *ParameterAdapter) RefCustomModifiers() []CustomModifierAdapter {
	return AdaptCustomModifiers(p.Underlying.RefCustomModifiers())
}

func (p *ParameterAdapter) CustomModifiers() []CustomModifierAdapter {
	return AdaptCustomModifiers(p.Underlying.CustomModifiers())
}

// Index narrows the ordinal. Ordinals past 65535 are an error, never
// truncated.
func (p *ParameterAdapter) Index() (uint16, error) {
	idx, err := safecast.Conv[uint16](p.Underlying.Ordinal())
	if err != nil {
		return 0, fmt.Errorf("%w: %s has ordinal %d", ErrParameterIndex, p.Underlying.Name(), p.Underlying.Ordinal())
	}
	return idx, nil
}

func (p *ParameterAdapter) Sequence() (uint16, error) {
	idx, err := p.Index()
	if err != nil {
		return 0, err
	}
	seq, err := safecast.Conv[uint16](int(idx) + 1)
	if err != nil {
		return 0, fmt.Errorf("%w: %s has sequence %d", ErrParameterIndex, p.Underlying.Name(), int(idx)+1)
	}
	return seq, nil
}

// DefaultValue returns the constant written to the Constant table, nil
// when the parameter has none.
func (p *ParameterAdapter) DefaultValue(EmitContext) *symbols.ConstantValue {
	return p.Underlying.ExplicitDefaultValue()
}

// paramFlags combines the Param row flags of p.
func paramFlags(p ParameterDefinition) metadata.ParamAttributes {
	var f metadata.ParamAttributes
	if p.IsIn() {
		f |= metadata.ParamIn
	}
	if p.IsOut() {
		f |= metadata.ParamOut
	}
	if p.IsOptional() {
		f |= metadata.ParamOptional
	}
	if p.HasDefaultValue() {
		f |= metadata.ParamHasDefault
	}
	if p.IsMarshalledExplicitly() {
		f |= metadata.ParamHasFieldMarshal
	}
	return f
}

// pseudoAttributes become Param flags instead of CustomAttribute rows.
var pseudoAttributes = []wellknown.AttributeID{wellknown.AttrIn, wellknown.AttrOut}

func isPseudoAttribute(a *symbols.AttributeData) bool {
	for _, id := range pseudoAttributes {
		if desc, ok := wellknown.Attribute(id); ok && a.IsTargetAttribute(desc) >= 0 {
			return true
		}
	}
	return false
}
