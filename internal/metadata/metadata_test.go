package metadata

import (
	"bytes"
	"errors"
	"reflect"
	"testing"

	"stark/internal/fault"
)

func TestMethodDefOrRefRoundTrip(t *testing.T) {
	for _, table := range []TableIndex{TableMethodDef, TableMemberRef} {
		for _, row := range []uint32{1, 2, 0x1234, 0x7FFFFF, RIDMask} {
			v := EncodeMethodDefOrRef(table, row)
			h := MethodDefOrRefToHandle(v)
			if h.Table() != table || h.RowID() != row {
				t.Fatalf("decode(encode(%s, %d)) = %s", table, row, h)
			}
			if h != NewHandle(table, row) {
				t.Fatalf("handle %08x, want %08x", uint32(h), uint32(NewHandle(table, row)))
			}
		}
	}
	if got := uint32(MethodDefOrRefToHandle(EncodeMethodDefOrRef(TableMemberRef, 5))); got != 0x0A000005 {
		t.Fatalf("MemberRef token = %#x", got)
	}
}

func TestMethodDefOrRefRowBudget(t *testing.T) {
	for _, table := range []TableIndex{TableMethodDef, TableMemberRef} {
		for _, row := range []uint32{1 << 24, 1<<24 + 1, 0x7FFFFFFF} {
			f := fault.Catch(func() { MethodDefOrRefToHandle(EncodeMethodDefOrRef(table, row)) })
			if f == nil || f.Kind != fault.KindInvalidCodedIndex {
				t.Fatalf("row %#x of %s: fault = %v", row, table, f)
			}
		}
	}
}

func TestCodedIndices(t *testing.T) {
	cases := []struct {
		ci *CodedIndex
		h  EntityHandle
	}{
		{&TypeDefOrRef, NewHandle(TableTypeDef, 3)},
		{&TypeDefOrRef, NewHandle(TableTypeRef, 1)},
		{&TypeDefOrRef, NewHandle(TableTypeSpec, RIDMask)},
		{&HasConstant, NewHandle(TableParam, 9)},
		{&HasCustomAttribute, NewHandle(TableAssemblyRef, 2)},
		{&HasCustomAttribute, NewHandle(TableModule, 1)},
		{&CustomAttributeType, NewHandle(TableMemberRef, 7)},
		{&MemberRefParent, NewHandle(TableTypeSpec, 4)},
	}
	for _, tc := range cases {
		if got := tc.ci.Decode(tc.ci.Encode(tc.h)); got != tc.h {
			t.Fatalf("%s round trip of %s = %s", tc.ci.Name, tc.h, got)
		}
	}
	if TypeDefOrRef.Encode(NewHandle(TableTypeRef, 1)) != 0x5 {
		t.Fatal("TypeDefOrRef tag layout")
	}
	for _, bad := range []struct {
		ci *CodedIndex
		v  uint32
	}{
		{&TypeDefOrRef, 1<<2 | 3},
		{&HasCustomAttribute, 1<<5 | 5},
		{&CustomAttributeType, 1<<3 | 0},
		{&TypeDefOrRef, RIDMask<<2 + 4},
	} {
		if f := fault.Catch(func() { bad.ci.Decode(bad.v) }); f == nil || f.Kind != fault.KindInvalidCodedIndex {
			t.Fatalf("%s.Decode(%#x): fault = %v", bad.ci.Name, bad.v, f)
		}
	}
	if f := fault.Catch(func() { TypeDefOrRef.Encode(NewHandle(TableField, 1)) }); f == nil {
		t.Fatal("TypeDefOrRef accepted a Field")
	}
}

func TestCompressedUint(t *testing.T) {
	cases := []struct {
		v    uint32
		want []byte
	}{
		{0, []byte{0x00}},
		{0x7F, []byte{0x7F}},
		{0x80, []byte{0x80, 0x80}},
		{0x3FFF, []byte{0xBF, 0xFF}},
		{0x4000, []byte{0xC0, 0x00, 0x40, 0x00}},
		{MaxCompressedUint, []byte{0xDF, 0xFF, 0xFF, 0xFF}},
	}
	for _, tc := range cases {
		got := AppendCompressedUint(nil, tc.v)
		if !bytes.Equal(got, tc.want) {
			t.Fatalf("encode %#x = %x, want %x", tc.v, got, tc.want)
		}
		v, n, err := ReadCompressedUint(got)
		if err != nil || v != tc.v || n != len(got) {
			t.Fatalf("decode %x = %#x, %d, %v", got, v, n, err)
		}
	}
	if _, _, err := ReadCompressedUint([]byte{0xE0}); !errors.Is(err, ErrBadCompression) {
		t.Fatalf("bad lead: %v", err)
	}
	if _, _, err := ReadCompressedUint([]byte{0xC0, 0}); !errors.Is(err, ErrTruncated) {
		t.Fatalf("short: %v", err)
	}
	if f := fault.Catch(func() { AppendCompressedUint(nil, MaxCompressedUint+1) }); f == nil {
		t.Fatal("oversized value encoded")
	}
}

func TestSerString(t *testing.T) {
	b := AppendSerString(nil, "héllo", false)
	b = AppendSerString(b, "", true)
	s, null, n, err := ReadSerString(b)
	if err != nil || null || s != "héllo" {
		t.Fatalf("ReadSerString = %q, %v, %v", s, null, err)
	}
	if _, null, _, err := ReadSerString(b[n:]); err != nil || !null {
		t.Fatalf("null string: %v %v", null, err)
	}
}

type sample struct {
	b                       *Builder
	obj, vector, scale, str EntityHandle
	field, spec             EntityHandle
}

func buildSample(t *testing.T) sample {
	t.Helper()
	b := NewBuilder("geo")
	must := func(h EntityHandle, err error) EntityHandle {
		t.Helper()
		if err != nil {
			t.Fatal(err)
		}
		return h
	}
	asm := must(b.AddAssemblyRef("core"))
	obj := must(b.AddTypeRef(asm, "core", "Object"))
	if again := must(b.AddTypeRef(asm, "core", "Object")); again != obj {
		t.Fatalf("TypeRef not shared: %s vs %s", again, obj)
	}
	isConst := must(b.AddTypeRef(asm, "core.runtime", "IsConst"))
	vector := must(b.AddTypeDef(TypePublic, "geo", "Vector", obj))

	var fs SigBuilder
	fs.Byte(SigField)
	fs.Element(ElemR8)
	field := must(b.AddField(FieldPublic, "X", fs.Bytes()))

	var ms SigBuilder
	ms.Byte(SigDefault)
	ms.CompressedUint(2)
	ms.Element(ElemVoid)
	ms.Element(ElemClass)
	ms.TypeDefOrRef(vector)
	ms.CustomModifier(isConst, true)
	ms.Element(ElemI4)
	scale := must(b.AddMethodDef(MethodPublic|MethodStatic, MethodImplIL, "Scale", ms.Bytes()))
	must(b.AddParam(0, 1, "v"))
	k := must(b.AddParam(ParamOptional|ParamHasDefault, 2, "k"))
	if err := b.AddConstant(k, ElemI4, []byte{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}

	str := must(b.AddMemberRef(obj, "ToString", []byte{SigHasThis, 0, byte(ElemString)}))
	if again := must(b.AddMemberRef(obj, "ToString", []byte{SigHasThis, 0, byte(ElemString)})); again != str {
		t.Fatal("MemberRef not shared")
	}
	if err := b.AddCustomAttribute(vector, str, []byte{1, 0, 0, 0}); err != nil {
		t.Fatal(err)
	}
	spec := must(b.AddTypeSpec([]byte{byte(ElemSZArray), byte(ElemI4)}))
	return sample{b: b, obj: obj, vector: vector, scale: scale, str: str, field: field, spec: spec}
}

func writeImage(t *testing.T, b *Builder) []byte {
	t.Helper()
	var buf bytes.Buffer
	n, err := b.WriteTo(&buf)
	if err != nil || n != int64(buf.Len()) {
		t.Fatalf("WriteTo = %d, %v (len %d)", n, err, buf.Len())
	}
	return buf.Bytes()
}

func TestImageRoundTrip(t *testing.T) {
	s := buildSample(t)
	data := writeImage(t, s.b)
	if !bytes.HasPrefix(data, []byte(Magic)) {
		t.Fatalf("magic %q", data[:4])
	}
	img, err := ReadImage(data)
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(img.Tables, s.b.Tables) {
		t.Fatalf("tables differ:\n%+v\n%+v", img.Tables, s.b.Tables)
	}
	if name, err := img.ModuleName(); err != nil || name != "geo" {
		t.Fatalf("module = %q, %v", name, err)
	}

	want := map[EntityHandle]Entry{
		s.vector: {Name: "geo.Vector", Detail: "extends core.Object flags=0x1"},
		s.field:  {Name: "geo.Vector::X", Detail: "f64"},
		s.scale:  {Name: "geo.Vector::Scale", Detail: "void (geo.Vector, i32 modopt(core.runtime.IsConst))"},
		s.str:    {Name: "core.Object::ToString", Detail: "instance string ()"},
		s.spec:   {Name: "i32[]"},
	}
	found := 0
	for _, e := range img.Entries() {
		w, ok := want[e.Token]
		if !ok {
			continue
		}
		found++
		if e.Name != w.Name || e.Detail != w.Detail {
			t.Fatalf("%s = %q %q, want %q %q", e.Token, e.Name, e.Detail, w.Name, w.Detail)
		}
	}
	if found != len(want) {
		t.Fatalf("found %d of %d entries", found, len(want))
	}
}

func TestReadImageRejectsDamage(t *testing.T) {
	data := writeImage(t, buildSample(t).b)
	for n := range len(data) {
		if _, err := ReadImage(data[:n]); err == nil {
			t.Fatalf("ReadImage accepted a %d-byte prefix", n)
		}
	}
	if _, err := ReadImage(append(bytes.Clone(data), 0)); err == nil {
		t.Fatal("trailing byte accepted")
	}
	if _, err := ReadImage([]byte("XMD1")); !errors.Is(err, ErrBadMagic) {
		t.Fatalf("bad magic: %v", err)
	}
}

func TestRowLimit(t *testing.T) {
	b := NewBuilder("m")
	b.maxRows = 2
	asm, _ := b.AddAssemblyRef("core")
	for i, name := range []string{"A", "B", "C"} {
		_, err := b.AddTypeRef(asm, "", name)
		if (i < 2) != (err == nil) {
			t.Fatalf("AddTypeRef #%d: %v", i, err)
		}
		if err != nil && !errors.Is(err, ErrRowLimit) {
			t.Fatalf("error %v is not ErrRowLimit", err)
		}
	}
}

func TestFormatSignatureErrors(t *testing.T) {
	for _, blob := range [][]byte{
		{},
		{SigDefault, 1, byte(ElemVoid)},
		{SigDefault, 0, byte(ElemVoid), 0x99},
		{SigField, 0x45},
		{SigDefault, 0, byte(ElemGenericInst), byte(ElemI4)},
	} {
		if _, err := FormatMethodSignature(blob, nil); err == nil {
			if _, err := FormatFieldSignature(blob, nil); err == nil {
				t.Fatalf("signature %x accepted", blob)
			}
		}
	}
}
