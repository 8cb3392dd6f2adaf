package wellknown

import (
	"bytes"
	"testing"
)

func TestMemberBlobRoundTrip(t *testing.T) {
	blob := MemberBlob()
	descs, err := DecodeMemberBlob(blob, MemberNames())
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(descs) != int(SpecialMemberCount) {
		t.Fatalf("expected %d descriptors, got %d", SpecialMemberCount, len(descs))
	}
	for i := range descs {
		want, _ := Descriptor(SpecialMember(i))
		got := &descs[i]
		if got.Name != want.Name || got.Flags != want.Flags || got.DeclaringType != want.DeclaringType || got.Arity != want.Arity {
			t.Fatalf("member %d: header mismatch: got %+v want %+v", i, got, want)
		}
		if len(got.Signature) != len(want.Signature) {
			t.Fatalf("member %s: signature length %d, want %d", &want, len(got.Signature), len(want.Signature))
		}
		for j := range got.Signature {
			if !got.Signature[j].Equal(want.Signature[j]) {
				t.Fatalf("member %s: type %d is %s, want %s", &want, j, got.Signature[j], want.Signature[j])
			}
		}
	}
	if !bytes.Equal(EncodeMemberBlob(descs), blob) {
		t.Fatalf("re-encoding the decoded table changed the blob")
	}
}

func TestFieldRecordHasNoCountByte(t *testing.T) {
	d, _ := Descriptor(IndexValue)
	blob := EncodeMemberBlob([]MemberDescriptor{d})
	want := []byte{byte(MemberField), byte(TypeIndex), 0, byte(SigTypeHandle), byte(TypeInt)}
	if !bytes.Equal(blob, want) {
		t.Fatalf("field record = % X, want % X", blob, want)
	}
}

func TestDecodeMalformedBlob(t *testing.T) {
	blob := MemberBlob()
	cases := map[string][]byte{
		"truncated": blob[:len(blob)-1],
		"trailing":  append(append([]byte{}, blob...), 0),
		"bad code":  func() []byte { b := append([]byte{}, blob...); b[4] = 0x7F; return b }(),
	}
	for name, data := range cases {
		if _, err := DecodeMemberBlob(data, MemberNames()); err == nil {
			t.Fatalf("%s: expected error", name)
		}
	}
	defer func() {
		if recover() == nil {
			t.Fatalf("MustDecodeMemberBlob should panic on malformed input")
		}
	}()
	MustDecodeMemberBlob(blob[:3], MemberNames())
}

func TestDescriptorShapes(t *testing.T) {
	cases := []struct {
		member SpecialMember
		want   string
	}{
		{StringConcatStringString, "core.String::Concat string(string, string)"},
		{StringItem, "core.String::get_item ref u8(int)"},
		{IterableIterateCurrent, "core.Iterable`2::iterate_current !0(ref !1)"},
		{IndexValue, "core.Index::value : int"},
		{IntOpExplicitToPointer, "core.Int::op_Explicit void*(int)"},
		{OptionOpExplicitToT, "core.Option`1::op_Explicit !0(core.Option`1)"},
	}
	for _, tc := range cases {
		d, ok := Descriptor(tc.member)
		if !ok {
			t.Fatalf("%d: no descriptor", tc.member)
		}
		if got := d.String(); got != tc.want {
			t.Fatalf("%d: got %q want %q", tc.member, got, tc.want)
		}
	}
	if _, ok := Descriptor(SpecialMemberCount); ok {
		t.Fatalf("out of range member must not resolve")
	}
	concat, _ := Descriptor(StringConcatObjectObjectObject)
	if n := concat.ParameterCount(); n != 3 {
		t.Fatalf("Concat(object, object, object) has %d params", n)
	}
}

func TestRegistryFromBlob(t *testing.T) {
	reg, err := NewRegistryFromBlob(MemberBlob())
	if err != nil {
		t.Fatalf("NewRegistryFromBlob: %v", err)
	}
	ms := reg.MembersOf(TypeDelegate)
	if len(ms) != 4 || ms[0] != DelegateCombine {
		t.Fatalf("delegate members: %v", ms)
	}
	if Default() != Default() {
		t.Fatalf("Default must return a shared registry")
	}
}

func TestAttributeDescriptions(t *testing.T) {
	obsolete, ok := Attribute(AttrObsolete)
	if !ok || obsolete.FullName() != "System.ObsoleteAttribute" || len(obsolete.Signatures) != 3 {
		t.Fatalf("unexpected Obsolete description %v", obsolete)
	}
	if obsolete.ParameterCount(2) != 2 {
		t.Fatalf("Obsolete(string, bool) has 2 parameters")
	}
	tuple, _ := Attribute(AttrTupleElementNames)
	params := tuple.Params(1)
	if len(params) != 1 || params[0].Code != SigSZArray || params[0].Elem != SigString {
		t.Fatalf("TupleElementNames(string[]) decoded as %+v", params)
	}
	usage, _ := Attribute(AttrAttributeUsage)
	if p := usage.Params(0); p[0].Code != SigTypeHandle || p[0].Target.Info().Name != "AttributeTargets" {
		t.Fatalf("AttributeUsage param decoded as %+v", p)
	}
	if _, ok := Attribute(AttrNone); ok {
		t.Fatalf("AttrNone must not resolve")
	}

	reg := Default()
	if id, ok := reg.LookupAttribute("core.runtime", "ExtensionAttribute"); !ok || id != AttrCaseSensitiveExtension {
		t.Fatalf("exact lookup = %v", id)
	}
	if id, ok := reg.LookupAttribute("Core.Runtime", "extensionattribute"); !ok || id != AttrCaseInsensitiveExtension {
		t.Fatalf("case-insensitive lookup = %v", id)
	}
	if _, ok := reg.LookupAttribute("system", "obsoleteattribute"); ok {
		t.Fatalf("Obsolete matches case-sensitively only")
	}
}

func TestSpecialTypeFacts(t *testing.T) {
	if st, ok := SpecialTypeByKeyword("u16"); !ok || st != TypeUInt16 {
		t.Fatalf("keyword u16 -> %v", st)
	}
	if st, ok := SpecialTypeByMetadataName("core.Option`1"); !ok || st != TypeOption {
		t.Fatalf("core.Option`1 -> %v", st)
	}
	valid := 0
	for st := TypeNone; st < SpecialTypeCount; st++ {
		if st.IsValidEnumUnderlyingType() {
			valid++
			if !st.IsIntegral() {
				t.Fatalf("%s is a valid enum base but not integral", st)
			}
		}
	}
	if valid != 8 {
		t.Fatalf("expected 8 valid enum underlying types, got %d", valid)
	}
	if TypeRune.IsIntegral() || !TypeRune.IsNumeric() || TypeString.IsValueType() || !TypeOption.IsValueType() {
		t.Fatalf("unexpected classification")
	}
}

func TestRegistryHandsOutCopies(t *testing.T) {
	reg := NewRegistry()
	d, ok := reg.Descriptor(StringItem)
	if !ok {
		t.Fatal("StringItem missing")
	}
	d.Name = "changed"
	d.Signature[0].Elem.Type = TypeObject

	again, _ := reg.Descriptor(StringItem)
	if again.Name != "get_item" || again.Signature[0].Elem.Type != TypeUInt8 {
		t.Fatalf("registry descriptor changed through a copy: %s", &again)
	}
	if builtin, _ := Descriptor(StringItem); builtin.Signature[0].Elem.Type != TypeUInt8 {
		t.Fatalf("built-in table changed through a copy: %s", &builtin)
	}
	if other, _ := Default().Descriptor(StringItem); other.Name != "get_item" {
		t.Fatalf("default registry changed: %s", &other)
	}

	a, ok := reg.Attribute(AttrOut)
	if !ok || len(a.Signatures) == 0 {
		t.Fatalf("OutAttribute = %v, %v", a, ok)
	}
	a.Signatures[0] = append(a.Signatures[0], 0xFF)
	a.Name = "changed"
	b, _ := reg.Attribute(AttrOut)
	if b.Name != "OutAttribute" || len(b.Signatures[0]) == len(a.Signatures[0]) {
		t.Fatalf("attribute description changed through a copy: %v", b)
	}
	if _, ok := reg.Attribute(AttrNone); ok {
		t.Fatal("AttrNone resolved")
	}
}
