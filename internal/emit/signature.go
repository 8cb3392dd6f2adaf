package emit

import (
	"fortio.org/safecast"

	"stark/internal/fault"
	"stark/internal/metadata"
	"stark/internal/symbols"
	"stark/internal/wellknown"
)

// primitiveElement maps special types that have their own element code.
func primitiveElement(st wellknown.SpecialType) (metadata.ElementType, bool) {
	switch st {
	case wellknown.TypeInt:
		return metadata.ElemI, true
	case wellknown.TypeUInt:
		return metadata.ElemU, true
	}
	if code := st.SignatureCode(); code != wellknown.SigInvalid {
		return metadata.ElementType(code), true
	}
	return 0, false
}

func sigCount(n int) uint32 {
	v, err := safecast.Conv[uint32](n)
	fault.Invariant(err == nil && v <= metadata.MaxCompressedUint, "emit: count %d does not fit a signature", n)
	return v
}

func (m *ModuleBuilder) encodeType(sb *metadata.SigBuilder, t symbols.TypeSymbol, ectx EmitContext) {
	switch t := t.(type) {
	case *symbols.NamedType:
		if e, ok := primitiveElement(t.SpecialType()); ok {
			sb.Element(e)
			return
		}
		kind := metadata.ElemClass
		if t.IsValueType() {
			kind = metadata.ElemValueType
		}
		if t.IsDefinition() {
			sb.Element(kind)
			sb.TypeDefOrRef(m.namedType(t, ectx))
			return
		}
		args := t.TypeArguments()
		sb.Element(metadata.ElemGenericInst)
		sb.Element(kind)
		sb.TypeDefOrRef(m.namedType(t.OriginalDefinition(), ectx))
		sb.CompressedUint(sigCount(len(args)))
		for _, a := range args {
			m.encodeType(sb, a, ectx)
		}
	case *symbols.ArrayType:
		sb.Element(metadata.ElemSZArray)
		m.encodeType(sb, t.ElementType(), ectx)
	case *symbols.PointerType:
		sb.Element(metadata.ElemPtr)
		m.encodeType(sb, t.PointedAtType(), ectx)
	case *symbols.TypeParameter:
		if t.IsMethodTypeParameter() {
			sb.Element(metadata.ElemMVar)
		} else {
			sb.Element(metadata.ElemVar)
		}
		sb.CompressedUint(sigCount(t.Ordinal()))
	default:
		// object keeps the blob well formed; the report fails emission
		m.reportErrorType(t, ectx)
		sb.Element(metadata.ElemObject)
	}
}

func (m *ModuleBuilder) encodeModifiers(sb *metadata.SigBuilder, mods []CustomModifierAdapter, ectx EmitContext) {
	for _, mod := range mods {
		sb.CustomModifier(mod.GetModifier(ectx), mod.IsOptional())
	}
}

// encodeSlot writes a return value or parameter: ref modifiers, BYREF for
// ref kinds, type modifiers, then the type.
func (m *ModuleBuilder) encodeSlot(sb *metadata.SigBuilder, refKind symbols.RefKind, refMods []CustomModifierAdapter, tw symbols.TypeWithModifiers, ectx EmitContext) {
	m.encodeModifiers(sb, refMods, ectx)
	if refKind != symbols.RefNone {
		sb.Element(metadata.ElemByRef)
	}
	m.encodeModifiers(sb, AdaptCustomModifiers(tw.CustomModifiers), ectx)
	m.encodeType(sb, tw.Type, ectx)
}

// MethodSignature encodes the MethodDefSig of ms.
func (m *ModuleBuilder) MethodSignature(ms symbols.MethodSymbol, ectx EmitContext) []byte {
	params := make([]ParameterDefinition, len(ms.Parameters()))
	for i, p := range ms.Parameters() {
		params[i] = NewParameterAdapter(p)
	}
	return m.methodSignature(ms, params, ectx)
}

func (m *ModuleBuilder) methodSignature(ms symbols.MethodSymbol, params []ParameterDefinition, ectx EmitContext) []byte {
	var sb metadata.SigBuilder
	header := metadata.SigDefault
	if !ms.IsStatic() {
		header |= metadata.SigHasThis
	}
	if ms.Arity() > 0 {
		header |= metadata.SigGeneric
	}
	sb.Byte(header)
	if ms.Arity() > 0 {
		sb.CompressedUint(sigCount(ms.Arity()))
	}
	sb.CompressedUint(sigCount(len(params)))
	m.encodeSlot(&sb, ms.RefKind(), AdaptCustomModifiers(ms.RefCustomModifiers()), ms.ReturnType(), ectx)
	for _, p := range params {
		m.encodeSlot(&sb, p.RefKind(), p.RefCustomModifiers(), p.Type(), ectx)
	}
	return sb.Bytes()
}

// FieldSignature encodes the FieldSig of f.
func (m *ModuleBuilder) FieldSignature(f *symbols.Field, ectx EmitContext) []byte {
	var sb metadata.SigBuilder
	sb.Byte(metadata.SigField)
	tw := f.TypeWithModifiers()
	m.encodeModifiers(&sb, AdaptCustomModifiers(tw.CustomModifiers), ectx)
	m.encodeType(&sb, tw.Type, ectx)
	return sb.Bytes()
}
