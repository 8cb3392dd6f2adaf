package symbols

import (
	"strconv"
	"strings"

	"stark/internal/syntax"
	"stark/internal/wellknown"
)

// CorLibraryName is the assembly name of the synthesized core library.
const CorLibraryName = "core"

// CorLibrary is the core assembly synthesized from a registry. Special
// members are materialized on first use and published once.
type CorLibrary struct {
	reg       *wellknown.Registry
	assembly  *Assembly
	special   [wellknown.SpecialTypeCount]*NamedType
	wellKnown [wellknown.WellKnownTypeCount]*NamedType
	members   [wellknown.SpecialMemberCount]Lazy[Symbol]
	// attrCtors holds the constructor signatures of synthesized attribute classes.
	attrCtors map[*NamedType][][]byte
}

// NewCorLibrary builds every special type, well-known type and well-known
// attribute class of reg.
func NewCorLibrary(reg *wellknown.Registry) *CorLibrary {
	c := &CorLibrary{
		reg:       reg,
		assembly:  NewAssembly(CorLibraryName),
		attrCtors: make(map[*NamedType][][]byte),
	}
	c.assembly.corLib = true
	global := c.assembly.global

	for st := wellknown.TypeObject; st < wellknown.SpecialTypeCount; st++ {
		ns := global.EnsureNamespace(wellknown.CoreNamespace)
		t := NewNamedType(ns, NamedTypeSpec{
			Name:          st.Name(),
			Kind:          kindOfShape(st.Shape()),
			Accessibility: AccessPublic,
			TypeParams:    typeParamNames(st.Arity()),
			Special:       st,
		})
		t.corLib = c
		ns.AddType(t)
		c.special[st] = t
	}
	for st := wellknown.TypeObject; st < wellknown.SpecialTypeCount; st++ {
		c.special[st].SetBases(c.specialBases(st))
	}

	for w := wellknown.WellKnownSystemType; w < wellknown.WellKnownTypeCount; w++ {
		c.wellKnown[w] = c.ensureType(w.Namespace(), w.Name(), w.IsEnum(), w)
	}
	for i := range wellknown.TypeHandleTargetCount {
		info := i.Info()
		if info.Underlying == wellknown.SigInt32 {
			c.ensureType(info.Namespace, info.Name, true, wellknown.WellKnownNone)
		}
	}
	for id := wellknown.AttributeID(1); id < wellknown.AttributeCount; id++ {
		desc, _ := reg.Attribute(id)
		t := c.ensureType(desc.Namespace, desc.Name, false, wellknown.WellKnownNone)
		for _, sig := range desc.Signatures {
			if !containsSig(c.attrCtors[t], sig) {
				c.attrCtors[t] = append(c.attrCtors[t], sig)
			}
		}
	}
	return c
}

func (c *CorLibrary) Assembly() *Assembly           { return c.assembly }
func (c *CorLibrary) Registry() *wellknown.Registry { return c.reg }

// GetSpecialType returns the corlib definition of st, nil for TypeNone.
func (c *CorLibrary) GetSpecialType(st wellknown.SpecialType) *NamedType {
	if st == wellknown.TypeNone || st >= wellknown.SpecialTypeCount {
		return nil
	}
	return c.special[st]
}

// GetWellKnownType returns the corlib definition of w.
func (c *CorLibrary) GetWellKnownType(w wellknown.WellKnownType) *NamedType {
	if w == wellknown.WellKnownNone || w >= wellknown.WellKnownTypeCount {
		return nil
	}
	return c.wellKnown[w]
}

// MakeArray builds elem[].
func (c *CorLibrary) MakeArray(elem TypeSymbol) *ArrayType {
	return NewArrayType(elem, c.special[wellknown.TypeArray])
}

// MakeNullable builds core.Option<t>.
func (c *CorLibrary) MakeNullable(t TypeSymbol) *NamedType {
	return c.special[wellknown.TypeOption].Construct(t)
}

// SpecialMember returns the symbol for id, materializing it once.
func (c *CorLibrary) SpecialMember(id wellknown.SpecialMember) Symbol {
	desc, ok := c.reg.Descriptor(id)
	if !ok {
		return nil
	}
	return c.members[id].GetOrCompute(func() Symbol {
		return c.materialize(&desc)
	})
}

// SpecialMethod returns the method for id, or UnknownMethod when id does not
// name a method.
func (c *CorLibrary) SpecialMethod(id wellknown.SpecialMember) MethodSymbol {
	if m, ok := c.SpecialMember(id).(*Method); ok {
		return m
	}
	return UnknownMethod
}

func (c *CorLibrary) materializeMembers(t *NamedType) Members {
	var out Members
	for _, id := range c.reg.MembersOf(t.special) {
		switch m := c.SpecialMember(id).(type) {
		case *Method:
			out.Methods = append(out.Methods, m)
		case *Field:
			out.Fields = append(out.Fields, m)
		}
	}
	for _, sig := range c.attrCtors[t] {
		if ctor := c.attributeCtor(t, sig); ctor != nil {
			out.Methods = append(out.Methods, ctor)
		}
	}
	return out
}

func (c *CorLibrary) materialize(desc *wellknown.MemberDescriptor) Symbol {
	owner := c.special[desc.DeclaringType]
	if desc.Flags.IsField() {
		return NewField(owner, FieldSpec{
			Name:          desc.Name,
			Type:          Plain(c.sigType(desc.ReturnType(), owner, nil)),
			Accessibility: AccessPublic,
			Static:        desc.Flags.IsStatic(),
			Special:       desc,
		})
	}
	var mods syntax.Modifier
	if desc.Flags.IsStatic() {
		mods |= syntax.ModStatic
	}
	if desc.Flags.IsVirtual() {
		mods |= syntax.ModVirtual
	}
	m := NewMethod(owner, MethodSpec{
		Name:          desc.Name,
		Kind:          methodKindOf(desc),
		Accessibility: AccessPublic,
		Modifiers:     mods,
		Special:       desc,
	})
	for i := range desc.Arity {
		m.AddTypeParameter(typeParamNames(int(desc.Arity))[i], Origin{})
	}
	ret := desc.ReturnType()
	refKind := RefNone
	if ret.IsByRef() {
		refKind = RefRef
		ret = *ret.Elem
	}
	params := make([]*Parameter, 0, desc.ParameterCount())
	for i, p := range desc.Params() {
		pk := RefNone
		if p.IsByRef() {
			pk = RefRef
			p = *p.Elem
		}
		params = append(params, NewParameter(m, ParameterSpec{
			Name:    "p" + strconv.Itoa(i),
			Ordinal: i,
			Type:    Plain(c.sigType(p, owner, m)),
			RefKind: pk,
		}))
	}
	m.SetSignature(Plain(c.sigType(ret, owner, m)), refKind, nil, params)
	return m
}

func (c *CorLibrary) sigType(s wellknown.SigType, owner *NamedType, m *Method) TypeSymbol {
	switch s.Code {
	case wellknown.SigTypeHandle:
		return c.special[s.Type]
	case wellknown.SigGenericTypeParameter:
		if int(s.Index) < len(owner.typeParams) {
			return owner.typeParams[s.Index]
		}
	case wellknown.SigGenericMethodParameter:
		if m != nil && int(s.Index) < len(m.typeParams) {
			return m.typeParams[s.Index]
		}
	case wellknown.SigSZArray:
		return c.MakeArray(c.sigType(*s.Elem, owner, m))
	case wellknown.SigPointer:
		return NewPointerType(c.sigType(*s.Elem, owner, m))
	default:
		if st := specialOfCode(s.Code); st != wellknown.TypeNone {
			return c.special[st]
		}
	}
	return UnknownResultType
}

func (c *CorLibrary) attributeCtor(t *NamedType, sig []byte) *Method {
	m := NewMethod(t, MethodSpec{Name: InstanceConstructorName, Kind: MethodConstructor, Accessibility: AccessPublic})
	desc := wellknown.AttributeDescription{Signatures: [][]byte{sig}}
	sp := desc.Params(0)
	params := make([]*Parameter, 0, len(sp))
	for i, p := range sp {
		var pt TypeSymbol
		switch p.Code {
		case wellknown.SigTypeHandle:
			info := p.Target.Info()
			if nt := c.assembly.LookupType(info.Namespace+"."+info.Name, 0); nt != nil {
				pt = nt
			}
		case wellknown.SigSZArray:
			if st := specialOfCode(p.Elem); st != wellknown.TypeNone {
				pt = c.MakeArray(c.special[st])
			}
		default:
			if st := specialOfCode(p.Code); st != wellknown.TypeNone {
				pt = c.special[st]
			}
		}
		if pt == nil {
			return nil
		}
		params = append(params, NewParameter(m, ParameterSpec{Name: "p" + strconv.Itoa(i), Ordinal: i, Type: Plain(pt)}))
	}
	m.SetSignature(Plain(c.special[wellknown.TypeVoid]), RefNone, nil, params)
	return m
}

func (c *CorLibrary) ensureType(namespace, name string, isEnum bool, w wellknown.WellKnownType) *NamedType {
	ns := c.assembly.global.EnsureNamespace(namespace)
	if t := ns.LookupType(name, 0); t != nil {
		if w != wellknown.WellKnownNone && t.wellKnown == wellknown.WellKnownNone {
			t.wellKnown = w
		}
		return t
	}
	kind := TypeKindClass
	if isEnum {
		kind = TypeKindEnum
	}
	t := NewNamedType(ns, NamedTypeSpec{
		Name:          name,
		Kind:          kind,
		Accessibility: AccessPublic,
		WellKnown:     w,
	})
	t.corLib = c
	ns.AddType(t)
	switch {
	case isEnum:
		t.SetBases(Bases{Base: c.special[wellknown.TypeEnum]})
		t.SetEnumUnderlyingType(c.special[wellknown.TypeInt32])
	case strings.HasSuffix(name, "Attribute") && name != "Attribute":
		base := c.assembly.LookupType(wellknown.WellKnownAttribute.Namespace()+"."+wellknown.WellKnownAttribute.Name(), 0)
		t.SetBases(Bases{Base: base})
	default:
		t.SetBases(Bases{Base: c.special[wellknown.TypeObject]})
	}
	return t
}

func (c *CorLibrary) specialBases(st wellknown.SpecialType) Bases {
	switch {
	case st == wellknown.TypeObject:
		return Bases{}
	case st.Shape() == wellknown.ShapeInterface:
		return Bases{}
	case st == wellknown.TypeMulticastDelegate:
		return Bases{Base: c.special[wellknown.TypeDelegate]}
	case st == wellknown.TypeEnum:
		return Bases{Base: c.special[wellknown.TypeValueType]}
	case st == wellknown.TypeArrayT:
		return Bases{Base: c.special[wellknown.TypeArray]}
	case st.Shape() == wellknown.ShapeStruct:
		return Bases{Base: c.special[wellknown.TypeValueType]}
	}
	return Bases{Base: c.special[wellknown.TypeObject]}
}

func kindOfShape(s wellknown.Shape) TypeKind {
	switch s {
	case wellknown.ShapeStruct:
		return TypeKindStruct
	case wellknown.ShapeInterface:
		return TypeKindInterface
	}
	return TypeKindClass
}

func methodKindOf(desc *wellknown.MemberDescriptor) MethodKind {
	switch desc.Flags.Kind() {
	case wellknown.MemberConstructor:
		return MethodConstructor
	case wellknown.MemberPropertyGet, wellknown.MemberProperty:
		return MethodPropertyGet
	}
	switch desc.Name {
	case "op_Implicit", "op_Explicit":
		return MethodConversion
	}
	if strings.HasPrefix(desc.Name, "op_") {
		return MethodUserDefinedOperator
	}
	return MethodOrdinary
}

func specialOfCode(code wellknown.SignatureTypeCode) wellknown.SpecialType {
	for st := wellknown.TypeObject; st < wellknown.SpecialTypeCount; st++ {
		if st.SignatureCode() == code {
			return st
		}
	}
	return wellknown.TypeNone
}

func typeParamNames(n int) []string {
	switch n {
	case 0:
		return nil
	case 1:
		return []string{"T"}
	}
	out := make([]string, n)
	for i := range out {
		out[i] = "T" + strconv.Itoa(i+1)
	}
	return out
}

func containsSig(sigs [][]byte, sig []byte) bool {
	for _, s := range sigs {
		if string(s) == string(sig) {
			return true
		}
	}
	return false
}
