package emit

import (
	"fmt"

	"stark/internal/diag"
	"stark/internal/metadata"
	"stark/internal/symbols"
	"stark/internal/trace"
	"stark/internal/wellknown"
)

// EmbeddedTypesManager decides which interop types are copied into the
// module and keeps them in discovery order. Their TypeDef handles follow
// the source types.
type EmbeddedTypesManager struct {
	module  *ModuleBuilder
	types   []*EmbeddedType
	byType  map[*symbols.NamedType]*EmbeddedType
	refused map[*symbols.NamedType]struct{}
	defined int
}

func newEmbeddedTypesManager(m *ModuleBuilder) *EmbeddedTypesManager {
	return &EmbeddedTypesManager{
		module:  m,
		byType:  make(map[*symbols.NamedType]*EmbeddedType),
		refused: make(map[*symbols.NamedType]struct{}),
	}
}

// EmbeddedType is an interop type written into the module.
type EmbeddedType struct {
	Underlying *symbols.NamedType
	Guid       string
	Handle     metadata.EntityHandle
	Methods    []*EmbeddedMethod
}

// EmbeddedMethod is a method of an embedded type.
type EmbeddedMethod struct {
	Underlying     *symbols.Method
	ContainingType *EmbeddedType
	Parameters     []*EmbeddedParameter
}

// EmbeddedParameter is a parameter of an embedded method. Only attributes
// the runtime understands survive the copy.
type EmbeddedParameter struct {
	ParameterAdapter
	ContainingMethod *EmbeddedMethod
}

var _ ParameterDefinition = (*EmbeddedParameter)(nil)

// Attributes keeps corlib attributes of the parameter that are not folded
// into Param flags.
func (p *EmbeddedParameter) Attributes() []*symbols.AttributeData {
	return embeddableAttributes(p.Underlying.Attributes())
}

func (et *EmbeddedType) addMethod(meth *symbols.Method) *EmbeddedMethod {
	em := &EmbeddedMethod{Underlying: meth, ContainingType: et}
	for _, p := range meth.Parameters() {
		em.Parameters = append(em.Parameters, &EmbeddedParameter{
			ParameterAdapter: ParameterAdapter{Underlying: p},
			ContainingMethod: em,
		})
	}
	et.Methods = append(et.Methods, em)
	return em
}

func (em *EmbeddedMethod) parameterDefinitions() []ParameterDefinition {
	out := make([]ParameterDefinition, len(em.Parameters))
	for i, p := range em.Parameters {
		out[i] = p
	}
	return out
}

// Types returns the embedded types in TypeDef order.
func (e *EmbeddedTypesManager) Types() []*EmbeddedType { return e.types }

// EmbedTypeIfNeedTo returns the TypeDef of t when t comes from an interop
// assembly and embedding is on. Generic interop types are referenced. A
// type without a GUID is reported once and referenced as well.
func (e *EmbeddedTypesManager) EmbedTypeIfNeedTo(t *symbols.NamedType, ectx EmitContext) (metadata.EntityHandle, bool) {
	if !e.module.opts.EmbedInteropTypes || !t.IsDefinition() || t.Arity() > 0 {
		return 0, false
	}
	if asm := t.Assembly(); asm == nil || !asm.IsInterop() {
		return 0, false
	}
	if et, ok := e.byType[t]; ok {
		return et.Handle, true
	}
	if _, ok := e.refused[t]; ok {
		return 0, false
	}
	guid := interopGuid(t)
	if guid == "" {
		e.refused[t] = struct{}{}
		e.module.report(ectx, diag.EmtInteropTypeMissingGuid, symbols.QualifiedName(t),
			fmt.Sprintf("interop type %s has no GUID and cannot be embedded", symbols.QualifiedName(t)))
		return 0, false
	}
	h := e.module.typeDefHandle(len(e.module.types) + len(e.types))
	if h.IsNil() {
		return 0, false
	}
	et := &EmbeddedType{Underlying: t, Guid: guid, Handle: h}
	e.types = append(e.types, et)
	e.byType[t] = et
	trace.Point(e.module.tracer, trace.ScopeType, "emit.embed", symbols.QualifiedName(t))
	return h, true
}

func interopGuid(t *symbols.NamedType) string {
	if g := t.Guid(); g != "" {
		return g
	}
	if a := symbols.FindAttribute(t, wellknown.AttrGuid); a != nil {
		if g, ok := a.StringArg(0); ok {
			return g
		}
	}
	return ""
}

// IsEmbedded reports whether t is copied into the module.
func (e *EmbeddedTypesManager) IsEmbedded(t *symbols.NamedType) bool {
	if t == nil {
		return false
	}
	_, ok := e.byType[t]
	return ok
}

func (e *EmbeddedTypesManager) handleOf(t *symbols.NamedType) (metadata.EntityHandle, bool) {
	if et, ok := e.byType[t]; ok {
		return et.Handle, true
	}
	return 0, false
}

func (e *EmbeddedTypesManager) typeOf(t *symbols.NamedType) *EmbeddedType { return e.byType[t] }

// define writes every embedded type discovered so far. Defining a type can
// discover more, so the loop runs until the list stops growing.
func (e *EmbeddedTypesManager) define(ectx EmitContext) {
	m := e.module
	prev := m.defining
	m.defining = true
	defer func() { m.defining = prev }()
	for e.defined < len(e.types) {
		et := e.types[e.defined]
		e.defined++
		m.defineType(et.Underlying, ectx)
	}
}

// applyAttributes writes TypeIdentifier on every embedded type and copies
// the corlib attributes of the types, their methods and parameters.
func (e *EmbeddedTypesManager) applyAttributes(ectx EmitContext) {
	m := e.module
	for i := 0; i < len(e.types); i++ {
		e.define(ectx)
		et := e.types[i]
		tctx := ectx.At(declNode(et.Underlying))
		if id := e.typeIdentifier(et); id != nil {
			m.applyAttributes(et.Handle, []*symbols.AttributeData{id}, tctx)
		}
		m.applyAttributes(et.Handle, embeddableAttributes(et.Underlying.Attributes()), tctx)
		for _, em := range et.Methods {
			m.applyAttributes(m.methodDefs[em.Underlying], embeddableAttributes(em.Underlying.Attributes()), tctx)
			for _, p := range em.Parameters {
				m.applyAttributes(m.paramDefs[p.Underlying], p.Attributes(), tctx)
			}
		}
	}
}

func (e *EmbeddedTypesManager) typeIdentifier(et *EmbeddedType) *symbols.AttributeData {
	desc, ok := wellknown.Attribute(wellknown.AttrTypeIdentifier)
	if !ok {
		return nil
	}
	class := e.module.corlib.Assembly().LookupType(desc.FullName(), 0)
	if class == nil {
		return nil
	}
	str := e.module.corlib.GetSpecialType(wellknown.TypeString)
	return &symbols.AttributeData{
		Class:      class,
		CtorParams: []symbols.TypeSymbol{str, str},
		Args: []*symbols.ConstantValue{
			symbols.StringConstant(et.Guid),
			symbols.StringConstant(symbols.QualifiedName(et.Underlying)),
		},
	}
}

// embeddableAttributes keeps corlib attributes other than TypeIdentifier,
// which is regenerated, and the pseudo attributes.
func embeddableAttributes(attrs []*symbols.AttributeData) []*symbols.AttributeData {
	desc, _ := wellknown.Attribute(wellknown.AttrTypeIdentifier)
	var out []*symbols.AttributeData
	for _, a := range attrs {
		if a.Class == nil || isPseudoAttribute(a) || a.IsTargetAttribute(desc) >= 0 {
			continue
		}
		if asm := a.Class.Assembly(); asm == nil || !asm.IsCorLibrary() {
			continue
		}
		out = append(out, a)
	}
	return out
}
