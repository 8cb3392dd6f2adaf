package emit

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"stark/internal/binder"
	"stark/internal/diag"
	"stark/internal/metadata"
	"stark/internal/source"
	"stark/internal/symbols"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

func typ(s string) *syntax.TypeSyntax { return syntax.MustParseType(s) }

func i64(v int64) *int64 { return &v }

func span(start uint32) source.Span {
	return source.Span{File: 1, Start: start, End: start + 1}
}

func newBinder(t *testing.T, decls ...*syntax.TypeDecl) *binder.Binder {
	t.Helper()
	lib := symbols.NewCorLibrary(wellknown.Default())
	b := binder.New(lib, "test", binder.Options{})
	b.Declare(b.Source(), decls, diag.NopReporter{})
	return b
}

// addInterop declares decls in a referenced interop assembly.
func addInterop(b *binder.Binder, name string, decls ...*syntax.TypeDecl) *symbols.Assembly {
	asm := symbols.NewAssembly(name)
	asm.MarkInterop()
	b.AddReference(asm)
	b.Declare(asm, decls, diag.NopReporter{})
	return asm
}

func seal(t *testing.T, b *binder.Binder) {
	t.Helper()
	if err := b.Seal(context.Background(), diag.NopReporter{}); err != nil {
		t.Fatalf("seal: %v", err)
	}
}

type result struct {
	md    *metadata.Builder
	img   *metadata.Image
	diags []diag.Diagnostic
	err   error
}

func emitModule(t *testing.T, b *binder.Binder, opts Options, bodies map[*symbols.Method]binder.Expr) result {
	t.Helper()
	bag := diag.NewBag(0)
	md, err := Emit(context.Background(), Input{
		Module:  "test",
		Source:  b.Source(),
		CorLib:  b.CorLibrary(),
		Bodies:  bodies,
		Options: opts,
	}, diag.BagReporter{Bag: bag})
	res := result{md: md, diags: bag.Items(), err: err}
	if md == nil {
		return res
	}
	var buf bytes.Buffer
	if _, werr := md.WriteTo(&buf); werr != nil {
		t.Fatalf("write: %v", werr)
	}
	img, rerr := metadata.ReadImage(buf.Bytes())
	if rerr != nil {
		t.Fatalf("read back: %v", rerr)
	}
	res.img = img
	return res
}

func (r result) entries(table metadata.TableIndex) []metadata.Entry {
	var out []metadata.Entry
	for _, e := range r.img.Entries() {
		if e.Token.Table() == table {
			out = append(out, e)
		}
	}
	return out
}

func (r result) codes() []diag.Code {
	out := make([]diag.Code, len(r.diags))
	for i, d := range r.diags {
		out[i] = d.Code
	}
	return out
}

func vectorDecl() *syntax.TypeDecl {
	vec := typ("Vector")
	return &syntax.TypeDecl{
		Name: "Vector", Namespace: "geo", Kind: syntax.DeclStruct, Accessibility: "public",
		Fields: []*syntax.FieldDecl{{Name: "X", Type: typ("f64"), Accessibility: "public"}, {Name: "Y", Type: typ("f64"), Accessibility: "public"}},
		Methods: []*syntax.MethodDecl{
			{Name: "+", Kind: syntax.MethodOperator, Modifiers: syntax.ModStatic, Accessibility: "public", Returns: vec,
				Params: []*syntax.ParamDecl{{Name: "a", Type: vec}, {Name: "b", Type: vec}}},
			{Name: "Scale", Modifiers: syntax.ModStatic, Accessibility: "public", Returns: vec,
				Params: []*syntax.ParamDecl{{Name: "v", Type: vec}, {Name: "k", Type: typ("f64"), Default: &syntax.Literal{Kind: syntax.LitInt, Int: 1}}}},
		},
	}
}

func TestEmitDefinitions(t *testing.T) {
	b := newBinder(t, vectorDecl())
	seal(t, b)
	res := emitModule(t, b, Options{}, nil)
	if res.err != nil {
		t.Fatalf("emit: %v (%v)", res.err, res.codes())
	}
	defs := res.entries(metadata.TableTypeDef)
	if len(defs) != 1 || defs[0].Name != "geo.Vector" || !strings.Contains(defs[0].Detail, "extends core.ValueType") {
		t.Fatalf("type defs = %+v", defs)
	}
	if n := len(res.md.Fields); n != 2 {
		t.Fatalf("fields = %d", n)
	}
	methods := res.entries(metadata.TableMethodDef)
	if len(methods) != 2 || methods[0].Name != "geo.Vector::op_Addition" || methods[1].Name != "geo.Vector::Scale" {
		t.Fatalf("methods = %+v", methods)
	}
	params := res.md.Params
	if len(params) != 4 || params[0].Sequence != 1 || params[3].Sequence != 2 {
		t.Fatalf("params = %+v", params)
	}
	if params[3].Flags&uint16(metadata.ParamHasDefault) == 0 {
		t.Fatalf("k has flags %#x, want HasDefault", params[3].Flags)
	}
	consts := res.entries(metadata.TableConstant)
	if len(consts) != 1 || consts[0].Detail != "type=0x0D value=000000000000f03f" {
		t.Fatalf("constants = %+v", consts)
	}
}

func TestEmitEnumFields(t *testing.T) {
	b := newBinder(t, &syntax.TypeDecl{
		Name: "Color", Namespace: "app", Kind: syntax.DeclEnum, Accessibility: "public",
		Bases:   []*syntax.TypeSyntax{typ("u8")},
		Members: []*syntax.EnumMemberDecl{{Name: "Red"}, {Name: "Green", Value: i64(5)}},
	})
	seal(t, b)
	res := emitModule(t, b, Options{}, nil)
	if res.err != nil {
		t.Fatalf("emit: %v (%v)", res.err, res.codes())
	}
	fields := res.entries(metadata.TableField)
	if len(fields) != 3 || fields[0].Name != "app.Color::"+symbols.EnumValueFieldName {
		t.Fatalf("fields = %+v", fields)
	}
	if f := res.md.Fields[0].Flags; f&uint16(metadata.FieldRTSpecialName) == 0 || f&uint16(metadata.FieldStatic) != 0 {
		t.Fatalf("value__ flags = %#x", f)
	}
	consts := res.md.Constants
	if len(consts) != 2 || consts[0].Type != uint8(metadata.ElemU1) {
		t.Fatalf("constants = %+v", consts)
	}
	want := []string{"type=0x05 value=00", "type=0x05 value=05"}
	for i, e := range res.entries(metadata.TableConstant) {
		if e.Detail != want[i] {
			t.Fatalf("constant %d = %q, want %q", i, e.Detail, want[i])
		}
	}
	if defs := res.entries(metadata.TableTypeDef); !strings.Contains(defs[0].Detail, "extends core.Enum") {
		t.Fatalf("enum base = %q", defs[0].Detail)
	}
}

func TestCustomModifiersInSignatures(t *testing.T) {
	b := newBinder(t,
		&syntax.TypeDecl{Name: "IsConst", Namespace: "rt", Kind: syntax.DeclClass, Accessibility: "public"},
		&syntax.TypeDecl{
			Name: "Mods", Namespace: "rt", Kind: syntax.DeclClass, Accessibility: "public",
			Methods: []*syntax.MethodDecl{{
				Name: "M", Modifiers: syntax.ModStatic, Accessibility: "public",
				Params: []*syntax.ParamDecl{{
					Name: "x", Type: typ("i32"),
					Modifiers: []*syntax.CustomModifierSyntax{{Type: typ("IsConst"), Optional: true}},
				}},
			}},
		},
	)
	seal(t, b)
	res := emitModule(t, b, Options{}, nil)
	if res.err != nil {
		t.Fatalf("emit: %v (%v)", res.err, res.codes())
	}
	methods := res.entries(metadata.TableMethodDef)
	if len(methods) != 1 || methods[0].Detail != "void (i32 modopt(rt.IsConst))" {
		t.Fatalf("methods = %+v", methods)
	}
	mods := NewParameterAdapter(b.Source().LookupType("rt.Mods", 0).Methods("M")[0].Parameters()[0]).CustomModifiers()
	if len(mods) != 1 || !mods[0].IsOptional() {
		t.Fatalf("adapted modifiers = %+v", mods)
	}
}

func TestParameterAdapterIndex(t *testing.T) {
	lib := symbols.NewCorLibrary(wellknown.Default())
	i32 := symbols.Plain(lib.GetSpecialType(wellknown.TypeInt32))
	tests := []struct {
		ordinal int
		index   uint16
		seq     uint16
		idxErr  bool
		seqErr  bool
	}{
		{ordinal: 0, index: 0, seq: 1},
		{ordinal: 65534, index: 65534, seq: 65535},
		{ordinal: 65535, index: 65535, seqErr: true},
		{ordinal: 70000, idxErr: true, seqErr: true},
	}
	for _, tt := range tests {
		p := NewParameterAdapter(symbols.NewParameter(nil, symbols.ParameterSpec{Name: "p", Ordinal: tt.ordinal, Type: i32}))
		idx, err := p.Index()
		if (err != nil) != tt.idxErr || (err == nil && idx != tt.index) {
			t.Fatalf("ordinal %d: Index() = %d, %v", tt.ordinal, idx, err)
		}
		if err != nil && !errors.Is(err, ErrParameterIndex) {
			t.Fatalf("ordinal %d: error %v does not wrap ErrParameterIndex", tt.ordinal, err)
		}
		seq, err := p.Sequence()
		if (err != nil) != tt.seqErr || (err == nil && seq != tt.seq) {
			t.Fatalf("ordinal %d: Sequence() = %d, %v", tt.ordinal, seq, err)
		}
	}
}

func TestTooManyParametersFailsEmission(t *testing.T) {
	b := newBinder(t, vectorDecl())
	seal(t, b)
	vec := b.Source().LookupType("geo.Vector", 0)
	scale := vec.Methods("Scale")[0]
	i32 := symbols.Plain(b.CorLibrary().GetSpecialType(wellknown.TypeInt32))

	bag := diag.NewBag(0)
	m := NewModuleBuilder("test", b.Source(), b.CorLibrary(), []*symbols.NamedType{vec}, Options{}, nil)
	ectx := EmitContext{Module: m, Diagnostics: diag.BagReporter{Bag: bag}}
	params := []ParameterDefinition{
		NewParameterAdapter(symbols.NewParameter(scale, symbols.ParameterSpec{Name: "first", Ordinal: 0, Type: i32})),
		NewParameterAdapter(symbols.NewParameter(scale, symbols.ParameterSpec{Name: "last", Ordinal: 65535, Type: i32})),
	}
	if h := m.defineMethod(scale, params, ectx); h.IsNil() {
		t.Fatal("method row not written")
	}
	if n := len(m.Metadata().Params); n != 0 {
		t.Fatalf("wrote %d param rows, want none", n)
	}
	ds := bag.Items()
	if len(ds) != 1 || ds[0].Code != diag.EmtTooManyParameters || ds[0].Primary != scale.Locations()[0] {
		t.Fatalf("diagnostics = %+v", ds)
	}
	if msg := ds[0].Message; !strings.Contains(msg, "last") || !strings.Contains(msg, "65536") {
		t.Fatalf("message %q does not name the parameter and its sequence", msg)
	}
	if !m.failed {
		t.Fatal("builder not marked failed")
	}
}

func TestErrorTypeInSignature(t *testing.T) {
	b := newBinder(t, &syntax.TypeDecl{
		Name: "Holder", Kind: syntax.DeclClass,
		Fields: []*syntax.FieldDecl{{Name: "missing", Type: typ("Nope"), Span: span(12)}},
	})
	seal(t, b)
	res := emitModule(t, b, Options{}, nil)
	if !errors.Is(res.err, ErrEmitFailed) {
		t.Fatalf("err = %v, want ErrEmitFailed", res.err)
	}
	var found bool
	for _, d := range res.diags {
		if d.Code == diag.EmtErrorTypeInMetadata {
			found = true
			if d.Primary != span(12) {
				t.Fatalf("reported at %v, want the field", d.Primary)
			}
		}
	}
	if !found {
		t.Fatalf("diagnostics = %v", res.codes())
	}
	if fields := res.entries(metadata.TableField); len(fields) != 1 || fields[0].Detail != "object" {
		t.Fatalf("fields = %+v", fields)
	}
}

func TestBodyReferencesLoweredConcat(t *testing.T) {
	b := newBinder(t, &syntax.TypeDecl{
		Name: "Greeter", Kind: syntax.DeclClass,
		Methods: []*syntax.MethodDecl{{Name: "Hello", Modifiers: syntax.ModStatic, Returns: typ("string")}},
	})
	seal(t, b)
	hello := b.Source().LookupType("Greeter", 0).Methods("Hello")[0]
	str := func(s string) *syntax.LiteralExpr {
		return &syntax.LiteralExpr{Value: syntax.Literal{Kind: syntax.LitString, Str: s}}
	}
	body, err := b.BindExpr(context.Background(), &syntax.BinaryExpr{Op: syntax.BinaryAdd, Left: str("a"), Right: str("b")}, hello, diag.NopReporter{})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	res := emitModule(t, b, Options{}, map[*symbols.Method]binder.Expr{hello: body})
	if res.err != nil {
		t.Fatalf("emit: %v (%v)", res.err, res.codes())
	}
	refs := res.entries(metadata.TableMemberRef)
	if len(refs) != 1 || !strings.HasSuffix(refs[0].Name, "::Concat") || refs[0].Detail != "string (string, string)" {
		t.Fatalf("member refs = %+v", refs)
	}
	if asm := res.entries(metadata.TableAssemblyRef); len(asm) != 1 || asm[0].Name != symbols.CorLibraryName {
		t.Fatalf("assembly refs = %+v", asm)
	}
}

func interopWindow(guid string) *syntax.TypeDecl {
	return &syntax.TypeDecl{
		Name: "IWindow", Namespace: "office", Kind: syntax.DeclInterface, Accessibility: "public", Guid: guid,
		Methods: []*syntax.MethodDecl{{
			Name: "Show", Accessibility: "public",
			Params: []*syntax.ParamDecl{{Name: "modal", Type: typ("bool")}},
		}},
	}
}

func windowUser() *syntax.TypeDecl {
	return &syntax.TypeDecl{
		Name: "App", Kind: syntax.DeclClass, Accessibility: "public",
		Methods: []*syntax.MethodDecl{{
			Name: "Open", Modifiers: syntax.ModStatic, Accessibility: "public",
			Params: []*syntax.ParamDecl{{Name: "w", Type: typ("office.IWindow")}},
			Span:   span(40),
		}},
	}
}

func TestEmbedInteropType(t *testing.T) {
	b := newBinder(t, windowUser())
	addInterop(b, "office", interopWindow("00020970-0000-0000-C000-000000000046"))
	seal(t, b)
	res := emitModule(t, b, Options{EmbedInteropTypes: true}, nil)
	if res.err != nil {
		t.Fatalf("emit: %v (%v)", res.err, res.codes())
	}
	defs := res.entries(metadata.TableTypeDef)
	if len(defs) != 2 || defs[0].Name != "App" || defs[1].Name != "office.IWindow" {
		t.Fatalf("type defs = %+v", defs)
	}
	if f := metadata.TypeAttributes(res.md.TypeDefs[1].Flags); f&metadata.TypeImport == 0 || f&metadata.TypeInterface == 0 {
		t.Fatalf("embedded flags = %#x", f)
	}
	for _, ref := range res.entries(metadata.TableTypeRef) {
		if ref.Detail != "["+symbols.CorLibraryName+"]" {
			t.Fatalf("type ref %+v outside corlib", ref)
		}
	}
	methods := res.entries(metadata.TableMethodDef)
	if len(methods) != 2 || methods[1].Name != "office.IWindow::Show" {
		t.Fatalf("methods = %+v", methods)
	}
	attrs := res.entries(metadata.TableCustomAttribute)
	if len(attrs) != 1 || attrs[0].Name != "office.IWindow" || !strings.Contains(attrs[0].Detail, "TypeIdentifierAttribute") {
		t.Fatalf("attributes = %+v", attrs)
	}
	if f := metadata.MethodAttributes(res.md.Methods[1].Flags); f&metadata.MethodAbstract == 0 || f&metadata.MethodVirtual == 0 {
		t.Fatalf("embedded method flags = %#x", f)
	}
}

func TestEmbedRequiresGuid(t *testing.T) {
	b := newBinder(t, windowUser())
	addInterop(b, "office", interopWindow(""))
	seal(t, b)
	res := emitModule(t, b, Options{EmbedInteropTypes: true}, nil)
	if !errors.Is(res.err, ErrEmitFailed) {
		t.Fatalf("err = %v, want ErrEmitFailed", res.err)
	}
	if len(res.diags) != 1 || res.diags[0].Code != diag.EmtInteropTypeMissingGuid || res.diags[0].Primary != span(40) {
		t.Fatalf("diagnostics = %+v", res.diags)
	}
	if !hasTypeRef(res, "office.IWindow", "[office]") {
		t.Fatalf("type refs = %+v", res.entries(metadata.TableTypeRef))
	}
	if defs := res.entries(metadata.TableTypeDef); len(defs) != 1 {
		t.Fatalf("type defs = %+v", defs)
	}
}

func TestReferenceWithoutEmbedding(t *testing.T) {
	b := newBinder(t, windowUser())
	addInterop(b, "office", interopWindow("00020970-0000-0000-C000-000000000046"))
	seal(t, b)
	res := emitModule(t, b, Options{}, nil)
	if res.err != nil {
		t.Fatalf("emit: %v (%v)", res.err, res.codes())
	}
	if defs := res.entries(metadata.TableTypeDef); len(defs) != 1 {
		t.Fatalf("type defs = %+v", defs)
	}
	if !hasTypeRef(res, "office.IWindow", "[office]") {
		t.Fatalf("type refs = %+v", res.entries(metadata.TableTypeRef))
	}
}

func hasTypeRef(res result, name, scope string) bool {
	for _, ref := range res.entries(metadata.TableTypeRef) {
		if ref.Name == name && ref.Detail == scope {
			return true
		}
	}
	return false
}
