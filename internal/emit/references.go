package emit

import (
	"stark/internal/binder"
	"stark/internal/diag"
	"stark/internal/fault"
	"stark/internal/metadata"
	"stark/internal/symbols"
	"stark/internal/wellknown"
)

// ReferenceMethod returns the MethodDef of a method written to this module,
// or a MemberRef to its definition elsewhere. Methods of constructed types
// are referenced through the TypeSpec of the type.
func (m *ModuleBuilder) ReferenceMethod(ms symbols.MethodSymbol, ectx EmitContext) metadata.EntityHandle {
	meth, ok := ms.(*symbols.Method)
	if !ok {
		m.report(ectx, diag.EmtErrorTypeInMetadata, ms.Name(),
			"call to "+ms.String()+" did not bind and cannot be written to metadata")
		return 0
	}
	def, _ := meth.OriginalDefinition().(*symbols.Method)
	if def == nil {
		def = meth
	}
	container := symbols.ContainingType(def)
	if container == nil {
		fault.Unreachable("emit: method %s has no containing type", meth)
	}
	owner := symbols.ContainingType(meth)
	if owner.IsDefinition() {
		if _, embedded := m.embedded.EmbedTypeIfNeedTo(owner, ectx); embedded {
			m.embedded.define(ectx)
		}
		if h, ok := m.methodDefs[def]; ok {
			return h
		}
	}
	parent := m.Translate(owner, ectx.Node, ectx.Diagnostics)
	h, err := m.md.AddMemberRef(parent, def.Name(), m.MethodSignature(def, ectx))
	m.check(err)
	return h
}

// ReferenceBody records the members a bound method body calls: user
// operators, lowered builtins such as string concatenation, and call
// targets.
func (m *ModuleBuilder) ReferenceBody(e binder.Expr, ectx EmitContext) {
	switch x := e.(type) {
	case *binder.Unary:
		m.ReferenceBody(x.Operand, ectx)
		if x.Method != nil {
			m.ReferenceMethod(x.Method, ectx)
		}
	case *binder.Binary:
		m.ReferenceBody(x.Left, ectx)
		m.ReferenceBody(x.Right, ectx)
		if x.Method != nil {
			m.ReferenceMethod(x.Method, ectx)
		}
	case *binder.Call:
		for _, a := range x.Args {
			m.ReferenceBody(a, ectx)
		}
		m.ReferenceMethod(x.Method, ectx)
	}
}

// applyAttributes writes one CustomAttribute row per application on parent.
func (m *ModuleBuilder) applyAttributes(parent metadata.EntityHandle, attrs []*symbols.AttributeData, ectx EmitContext) {
	if parent.IsNil() {
		return
	}
	for _, a := range attrs {
		if isPseudoAttribute(a) {
			continue
		}
		ctor := attributeConstructor(a)
		if ctor == nil {
			fault.Unreachable("emit: %s has no constructor matching a bound application", a.Class)
		}
		h := m.ReferenceMethod(ctor, ectx)
		m.check(m.md.AddCustomAttribute(parent, h, attributeBlob(a)))
	}
}

func attributeConstructor(a *symbols.AttributeData) *symbols.Method {
	for _, ctor := range a.Class.Members().Methods {
		if ctor.MethodKind() != symbols.MethodConstructor || ctor.ParameterCount() != len(a.CtorParams) {
			continue
		}
		match := true
		for i, p := range ctor.Parameters() {
			if !symbols.Equal(p.Type(), a.CtorParams[i]) {
				match = false
				break
			}
		}
		if match {
			return ctor
		}
	}
	return nil
}

// attributeBlob encodes the prolog, the fixed arguments and an empty named
// argument list.
func attributeBlob(a *symbols.AttributeData) []byte {
	b := []byte{0x01, 0x00}
	for i, arg := range a.Args {
		b = appendFixedArg(b, arg, a.CtorParams[i])
	}
	return append(b, 0x00, 0x00)
}

func appendFixedArg(b []byte, c *symbols.ConstantValue, t symbols.TypeSymbol) []byte {
	st := t.SpecialType()
	if nt, ok := t.(*symbols.NamedType); ok && nt.IsEnum() {
		st = nt.EnumUnderlyingType().SpecialType()
	}
	switch {
	case st == wellknown.TypeString:
		if c == nil || c.Kind == symbols.ConstNull {
			return metadata.AppendSerString(b, "", true)
		}
		return metadata.AppendSerString(b, c.Str, false)
	case st == wellknown.TypeBool, st == wellknown.TypeRune, st.IsIntegral(), st == wellknown.TypeFloat32, st == wellknown.TypeFloat64:
		return append(b, littleEndian(c.Bits(), constantWidth(st))...)
	}
	fault.Unreachable("emit: attribute argument of type %s", t)
	return b
}
