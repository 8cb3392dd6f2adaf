package emit

import (
	"encoding/binary"
	"fmt"
	"unicode/utf16"

	"stark/internal/diag"
	"stark/internal/fault"
	"stark/internal/metadata"
	"stark/internal/symbols"
	"stark/internal/wellknown"
)

// defineType writes the TypeDef row of t followed by its fields and
// methods. The row must land on the handle reserved for t.
func (m *ModuleBuilder) defineType(t *symbols.NamedType, ectx EmitContext) {
	fault.Invariant(m.defining, "emit: TypeDef %s written outside the definition pass", t)
	ectx = ectx.At(declNode(t))
	flags := typeFlags(t)
	if m.embedded.IsEmbedded(t) && t.IsInterface() {
		flags |= metadata.TypeImport
	}
	h, err := m.md.AddTypeDef(flags, namespaceOf(t), t.MetadataName(), m.extends(t, ectx))
	if !m.check(err) {
		return
	}
	want := m.typeDefs[t]
	if want == 0 {
		want, _ = m.embedded.handleOf(t)
	}
	fault.Invariant(h == want, "emit: %s written as %s, reserved %s", t, h, want)

	members := t.Members()
	if t.IsEnum() {
		m.defineEnumFields(t, members.Fields, ectx)
	} else {
		for _, f := range members.Fields {
			m.defineField(f, ectx)
		}
	}
	et := m.embedded.typeOf(t)
	for _, meth := range members.Methods {
		if et != nil {
			m.defineMethod(meth, et.addMethod(meth).parameterDefinitions(), ectx)
			continue
		}
		m.defineMethod(meth, sourceParameters(meth), ectx)
	}
}

func typeFlags(t *symbols.NamedType) metadata.TypeAttributes {
	var f metadata.TypeAttributes
	if t.DeclaredAccessibility() == symbols.AccessPublic {
		f = metadata.TypePublic
	}
	switch t.TypeKind() {
	case symbols.TypeKindInterface:
		f |= metadata.TypeInterface | metadata.TypeAbstract
	case symbols.TypeKindStruct:
		f |= metadata.TypeSealed | metadata.TypeSequentialLayout
	case symbols.TypeKindEnum:
		f |= metadata.TypeSealed
	default:
		if t.IsStatic() {
			f |= metadata.TypeAbstract | metadata.TypeSealed
		}
	}
	return f
}

func (m *ModuleBuilder) extends(t *symbols.NamedType, ectx EmitContext) metadata.EntityHandle {
	var base *symbols.NamedType
	switch t.TypeKind() {
	case symbols.TypeKindInterface:
		return 0
	case symbols.TypeKindEnum:
		base = m.corlib.GetSpecialType(wellknown.TypeEnum)
	case symbols.TypeKindStruct:
		base = m.corlib.GetSpecialType(wellknown.TypeValueType)
	default:
		if base = t.BaseType(); base == nil {
			base = m.corlib.GetSpecialType(wellknown.TypeObject)
		}
	}
	return m.Translate(base, ectx.Node, ectx.Diagnostics)
}

// defineEnumFields writes value__ first, then one literal per constant.
func (m *ModuleBuilder) defineEnumFields(t *symbols.NamedType, fields []*symbols.Field, ectx EmitContext) {
	value := t.EnumValueField()
	m.defineField(value, ectx)
	for _, f := range fields {
		if f == value {
			continue
		}
		m.defineField(f, ectx)
	}
}

func fieldFlags(f *symbols.Field) metadata.FieldAttributes {
	var flags metadata.FieldAttributes
	switch f.DeclaredAccessibility() {
	case symbols.AccessPublic:
		flags = metadata.FieldPublic
	case symbols.AccessProtected:
		flags = metadata.FieldFamily
	case symbols.AccessInternal:
		flags = metadata.FieldAssembly
	case symbols.AccessProtectedOrInternal:
		flags = metadata.FieldFamORAssem
	case symbols.AccessProtectedAndInternal:
		flags = metadata.FieldFamANDAssem
	default:
		flags = metadata.FieldPrivate
	}
	if f.IsStatic() {
		flags |= metadata.FieldStatic
	}
	if f.IsConst() {
		flags |= metadata.FieldStatic | metadata.FieldLiteral | metadata.FieldHasDefault
	}
	if f.HasSpecialName() {
		flags |= metadata.FieldSpecialName
	}
	if f.HasRuntimeSpecialName() {
		flags |= metadata.FieldRTSpecialName
	}
	return flags
}

func (m *ModuleBuilder) defineField(f *symbols.Field, ectx EmitContext) {
	ectx = ectx.At(memberNode(f, ectx.Node))
	h, err := m.md.AddField(fieldFlags(f), f.Name(), m.FieldSignature(f, ectx))
	if !m.check(err) {
		return
	}
	m.fieldDefs[f] = h
	if c := f.ConstantValue(); c != nil {
		typ, value := constantBlob(c)
		m.check(m.md.AddConstant(h, typ, value))
	}
}

func methodFlags(meth *symbols.Method) metadata.MethodAttributes {
	var f metadata.MethodAttributes
	switch meth.DeclaredAccessibility() {
	case symbols.AccessPublic:
		f = metadata.MethodPublic
	case symbols.AccessProtected:
		f = metadata.MethodFamily
	case symbols.AccessInternal:
		f = metadata.MethodAssembly
	case symbols.AccessProtectedOrInternal:
		f = metadata.MethodFamORAssem
	case symbols.AccessProtectedAndInternal:
		f = metadata.MethodFamANDAssem
	default:
		f = metadata.MethodPrivate
	}
	if !meth.HidesBaseMethodsByName() {
		f |= metadata.MethodHideBySig
	}
	if meth.IsStatic() {
		f |= metadata.MethodStatic
	}
	ct := symbols.ContainingType(meth)
	abstract := meth.IsAbstract() || (ct != nil && ct.IsInterface() && !meth.IsStatic())
	virtual := abstract || meth.IsVirtual() || meth.IsOverride()
	if virtual {
		f |= metadata.MethodVirtual
		if !meth.IsOverride() {
			f |= metadata.MethodNewSlot
		}
		if meth.IsSealed() {
			f |= metadata.MethodFinal
		}
	}
	if abstract {
		f |= metadata.MethodAbstract
	}
	if meth.HasSpecialName() {
		f |= metadata.MethodSpecialName
	}
	switch meth.MethodKind() {
	case symbols.MethodConstructor, symbols.MethodStaticConstructor:
		f |= metadata.MethodRTSpecialName
	}
	return f
}

func sourceParameters(meth *symbols.Method) []ParameterDefinition {
	out := make([]ParameterDefinition, len(meth.Parameters()))
	for i, p := range meth.Parameters() {
		out[i] = NewParameterAdapter(p)
	}
	return out
}

// defineMethod writes the MethodDef row of meth and the Param rows of
// params. When a parameter cannot be numbered in 16 bits no Param rows are
// written and emission fails.
func (m *ModuleBuilder) defineMethod(meth *symbols.Method, params []ParameterDefinition, ectx EmitContext) metadata.EntityHandle {
	ectx = ectx.At(memberNode(meth, ectx.Node))
	impl := metadata.MethodImplIL
	if meth.IsExtern() {
		impl = metadata.MethodImplInternalCall
	}
	if m.embedded.IsEmbedded(symbols.ContainingType(meth)) && !meth.IsAbstract() {
		impl = metadata.MethodImplRuntime | metadata.MethodImplInternalCall
	}
	h, err := m.md.AddMethodDef(methodFlags(meth), impl, meth.Name(), m.methodSignature(meth, params, ectx))
	if !m.check(err) {
		return 0
	}
	m.methodDefs[meth] = h

	seqs := make([]uint16, len(params))
	for i, p := range params {
		if seqs[i], err = p.Sequence(); err != nil {
			m.report(ectx, diag.EmtTooManyParameters, meth.Name(),
				fmt.Sprintf("parameter %s of %s has no 16-bit sequence number (%v)", p.Name(), meth, err))
			return h
		}
	}
	for i, p := range params {
		ph, err := m.md.AddParam(paramFlags(p), seqs[i], p.Name())
		if !m.check(err) {
			return h
		}
		if adapter, ok := underlyingParameter(p); ok {
			m.paramDefs[adapter] = ph
		}
		if c := p.DefaultValue(ectx); c != nil {
			typ, value := constantBlob(c)
			m.check(m.md.AddConstant(ph, typ, value))
		}
		if p.IsMarshalledExplicitly() {
			m.check(m.md.AddFieldMarshal(ph, p.MarshallingDescriptor()))
		}
	}
	return h
}

func underlyingParameter(p ParameterDefinition) (*symbols.Parameter, bool) {
	switch p := p.(type) {
	case *ParameterAdapter:
		return p.Underlying, true
	case *EmbeddedParameter:
		return p.Underlying, true
	}
	return nil, false
}

// constantBlob encodes c for the Constant table: integers and floats little
// endian at their natural width, strings as UTF-16LE, null as a zero class
// reference.
func constantBlob(c *symbols.ConstantValue) (metadata.ElementType, []byte) {
	switch c.Kind {
	case symbols.ConstNull:
		return metadata.ElemClass, make([]byte, 4)
	case symbols.ConstString:
		units := utf16.Encode([]rune(c.Str))
		out := make([]byte, 0, 2*len(units))
		for _, u := range units {
			out = binary.LittleEndian.AppendUint16(out, u)
		}
		return metadata.ElemString, out
	}
	e, ok := primitiveElement(c.Type)
	fault.Invariant(ok, "emit: constant of non-primitive type %s", c.Type)
	return e, littleEndian(c.Bits(), constantWidth(c.Type))
}

func constantWidth(st wellknown.SpecialType) int {
	if n := st.SizeInBytes(); n > 0 {
		return n
	}
	return 8
}

func littleEndian(v uint64, width int) []byte {
	return binary.LittleEndian.AppendUint64(nil, v)[:width]
}
