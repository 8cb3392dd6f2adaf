package binder

import (
	"context"
	"strings"
	"testing"

	"stark/internal/diag"
	"stark/internal/overload"
	"stark/internal/source"
	"stark/internal/symbols"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

type fixedIndex []string

func (f fixedIndex) Find(name string, _ int) []string {
	var out []string
	for _, w := range f {
		if strings.EqualFold(w[:min(len(w), 3)], name[:min(len(name), 3)]) {
			out = append(out, w)
		}
	}
	return out
}

func newBinder(t *testing.T, decls ...*syntax.TypeDecl) (*Binder, *diag.Bag) {
	t.Helper()
	lib := symbols.NewCorLibrary(wellknown.Default())
	b := New(lib, "test", Options{Suggest: func() NameIndex { return fixedIndex{"Vector", "Matrix"} }})
	bag := diag.NewBag(0)
	r := diag.BagReporter{Bag: bag}
	b.Declare(b.Source(), decls, r)
	if err := b.Seal(context.Background(), r); err != nil {
		t.Fatalf("seal: %v", err)
	}
	return b, bag
}

func span(start uint32) source.Span {
	return source.Span{File: 1, Start: start, End: start + 1}
}

func typ(s string) *syntax.TypeSyntax { return syntax.MustParseType(s) }

func i64(v int64) *int64 { return &v }

func codes(ds []diag.Diagnostic) []diag.Code {
	out := make([]diag.Code, len(ds))
	for i, d := range ds {
		out[i] = d.Code
	}
	return out
}

func lookup(t *testing.T, b *Binder, name string) *symbols.NamedType {
	t.Helper()
	nt := b.Source().LookupType(name, -1)
	if nt == nil {
		t.Fatalf("type %s not declared", name)
	}
	return nt
}

func TestEnumConstantsAutoIncrement(t *testing.T) {
	b, _ := newBinder(t, &syntax.TypeDecl{
		Name: "Color", Namespace: "app", Kind: syntax.DeclEnum,
		Bases: []*syntax.TypeSyntax{typ("u8")},
		Members: []*syntax.EnumMemberDecl{
			{Name: "Red"}, {Name: "Green", Value: i64(5)}, {Name: "Blue"},
		},
	})
	color := lookup(t, b, "app.Color")
	fields := color.Members().Fields
	if len(fields) != 4 {
		t.Fatalf("fields = %d, want value__ plus 3 constants", len(fields))
	}
	if fields[0].Name() != symbols.EnumValueFieldName || fields[0].Type().SpecialType() != wellknown.TypeUInt8 {
		t.Fatalf("first field = %v", fields[0])
	}
	want := map[string]uint64{"Red": 0, "Green": 5, "Blue": 6}
	for _, f := range fields[1:] {
		c := f.ConstantValue()
		if c == nil || c.Type != wellknown.TypeUInt8 || c.Uint != want[f.Name()] {
			t.Fatalf("%s = %v, want %d", f.Name(), c, want[f.Name()])
		}
		if !f.IsStatic() || !symbols.Equal(f.Type(), color) {
			t.Fatalf("%s must be a static field of the enum type", f.Name())
		}
	}
	if color.BaseType().SpecialType() != wellknown.TypeEnum {
		t.Fatalf("base = %v", color.BaseType())
	}
	if ds := b.DeclarationDiagnostics().Items(); len(ds) != 0 {
		t.Fatalf("unexpected diagnostics %v", codes(ds))
	}
}

func TestEnumConstantOverflow(t *testing.T) {
	b, _ := newBinder(t, &syntax.TypeDecl{
		Name: "Small", Kind: syntax.DeclEnum,
		Bases:   []*syntax.TypeSyntax{typ("u8")},
		Members: []*syntax.EnumMemberDecl{{Name: "Last", Value: i64(255)}, {Name: "Over", Span: span(30)}, {Name: "Neg", Value: i64(-1), Span: span(40)}},
	})
	small := lookup(t, b, "Small")
	if err := small.ForceComplete(context.Background()); err != nil {
		t.Fatalf("complete: %v", err)
	}
	ds := b.DeclarationDiagnostics().Items()
	if len(ds) != 2 || ds[0].Code != diag.DclBadEnumMemberValue || ds[1].Code != diag.DclBadEnumMemberValue {
		t.Fatalf("diagnostics = %v", codes(ds))
	}
	if ds[0].Primary != span(30) {
		t.Fatalf("overflow reported at %v", ds[0].Primary)
	}
	if c := small.Field("Over").ConstantValue(); c.Uint != 0 {
		t.Fatalf("overflowing constant = %v, want 0", c)
	}
}

func TestEnumBadUnderlyingFallsBackToInt32(t *testing.T) {
	b, _ := newBinder(t, &syntax.TypeDecl{
		Name: "E", Kind: syntax.DeclEnum,
		Bases:   []*syntax.TypeSyntax{typ("string")},
		Members: []*syntax.EnumMemberDecl{{Name: "A"}},
	})
	e := lookup(t, b, "E")
	if u := e.EnumUnderlyingType(); u.SpecialType() != wellknown.TypeInt32 {
		t.Fatalf("underlying = %v", u)
	}
	e.Members()
	ds := b.DeclarationDiagnostics().Items()
	if len(ds) != 1 || ds[0].Code != diag.DclIntegralTypeExpected {
		t.Fatalf("diagnostics = %v", codes(ds))
	}
}

func TestBindTypeSyntax(t *testing.T) {
	b, _ := newBinder(t,
		&syntax.TypeDecl{Name: "Vector", Namespace: "geo", Kind: syntax.DeclStruct},
		&syntax.TypeDecl{Name: "Box", Namespace: "geo", Kind: syntax.DeclClass, TypeParams: []string{"T"}},
	)
	scope := b.Source().GlobalNamespace().LookupNamespace("geo")
	tests := []struct {
		text string
		want string
		code diag.Code
	}{
		{"i32", "i32", 0},
		{"i32?", "i32?", 0},
		{"core.Option<f64>", "f64?", 0},
		{"Vector?", "geo.Vector?", 0},
		{"geo.Vector[]", "geo.Vector[]", 0},
		{"Box<string>", "geo.Box<string>", 0},
		{"Option<bool>", "bool?", 0},
		{"string?", "?", diag.DclNullableReferenceType},
		{"Box", "?", diag.DclBadArity},
		{"Vector<i32>", "?", diag.DclTypeNotGeneric},
		{"Vectr", "?", diag.DclTypeNotFound},
		{"Missing[]", "?", diag.DclTypeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			bag := diag.NewBag(0)
			got, err := b.BindTypeSyntax(context.Background(), typ(tt.text), scope, diag.BagReporter{Bag: bag})
			if err != nil {
				t.Fatalf("bind: %v", err)
			}
			if got.String() != tt.want {
				t.Fatalf("bound %q to %s, want %s", tt.text, got, tt.want)
			}
			ds := bag.Items()
			if tt.code == 0 {
				if len(ds) != 0 {
					t.Fatalf("unexpected diagnostics %v", codes(ds))
				}
				return
			}
			if len(ds) != 1 || ds[0].Code != tt.code {
				t.Fatalf("diagnostics = %v, want [%v]", codes(ds), tt.code)
			}
		})
	}
}

func TestTypeNotFoundSuggests(t *testing.T) {
	b, _ := newBinder(t)
	bag := diag.NewBag(0)
	if _, err := b.BindType(context.Background(), typ("Vectr"), diag.BagReporter{Bag: bag}); err != nil {
		t.Fatalf("bind: %v", err)
	}
	ds := bag.Items()
	if len(ds) != 1 || len(ds[0].Notes) != 1 {
		t.Fatalf("want one diagnostic with one note, got %+v", ds)
	}
	if !strings.Contains(ds[0].Notes[0].Msg, "Vector") {
		t.Fatalf("note = %q", ds[0].Notes[0].Msg)
	}
}

func TestDuplicateTypeDeclaration(t *testing.T) {
	_, bag := newBinder(t,
		&syntax.TypeDecl{Name: "A", Kind: syntax.DeclClass, NameSpan: span(1)},
		&syntax.TypeDecl{Name: "A", Kind: syntax.DeclStruct, NameSpan: span(9)},
		&syntax.TypeDecl{Name: "A", Kind: syntax.DeclClass, TypeParams: []string{"T"}},
	)
	ds := bag.Items()
	if len(ds) != 1 || ds[0].Code != diag.DclDuplicateDeclaration || ds[0].Primary != span(9) {
		t.Fatalf("diagnostics = %+v", ds)
	}
	if len(ds[0].Notes) != 1 || ds[0].Notes[0].Span != span(1) {
		t.Fatalf("note should point at the first declaration: %+v", ds[0].Notes)
	}
}

func TestBindBases(t *testing.T) {
	b, _ := newBinder(t,
		&syntax.TypeDecl{Name: "IShape", Kind: syntax.DeclInterface},
		&syntax.TypeDecl{Name: "Point", Kind: syntax.DeclStruct, Bases: []*syntax.TypeSyntax{typ("IShape")}},
		&syntax.TypeDecl{Name: "Base", Kind: syntax.DeclClass},
		&syntax.TypeDecl{Name: "Derived", Kind: syntax.DeclClass, Bases: []*syntax.TypeSyntax{typ("Base"), typ("IShape")}},
		&syntax.TypeDecl{Name: "Bad", Kind: syntax.DeclClass, Bases: []*syntax.TypeSyntax{typ("Point"), typ("Base")}},
	)
	if p := lookup(t, b, "Point"); p.BaseType().SpecialType() != wellknown.TypeValueType || len(p.Interfaces()) != 1 {
		t.Fatalf("Point bases = %v %v", p.BaseType(), p.Interfaces())
	}
	d := lookup(t, b, "Derived")
	if d.BaseType() != lookup(t, b, "Base") || len(d.Interfaces()) != 1 {
		t.Fatalf("Derived bases = %v %v", d.BaseType(), d.Interfaces())
	}
	if base := lookup(t, b, "Base").BaseType(); base.SpecialType() != wellknown.TypeObject {
		t.Fatalf("Base base = %v", base)
	}
	bad := lookup(t, b, "Bad")
	if bad.BaseType().SpecialType() != wellknown.TypeObject {
		t.Fatalf("Bad base = %v", bad.BaseType())
	}
	ds := b.DeclarationDiagnostics().Items()
	if len(ds) != 2 || ds[0].Code != diag.DclBadBaseType || ds[1].Code != diag.DclBadBaseType {
		t.Fatalf("diagnostics = %v", codes(ds))
	}
}

func vectorDecl() *syntax.TypeDecl {
	vec := typ("Vector")
	return &syntax.TypeDecl{
		Name: "Vector", Namespace: "geo", Kind: syntax.DeclStruct, Accessibility: "public",
		Fields: []*syntax.FieldDecl{{Name: "X", Type: typ("f64")}, {Name: "Y", Type: typ("f64")}},
		Methods: []*syntax.MethodDecl{
			{Name: "+", Kind: syntax.MethodOperator, Modifiers: syntax.ModStatic, Accessibility: "public", Returns: vec,
				Params: []*syntax.ParamDecl{{Name: "a", Type: vec}, {Name: "b", Type: vec}}},
			{Name: "-", Kind: syntax.MethodOperator, Modifiers: syntax.ModStatic, Accessibility: "public", Returns: vec,
				Params: []*syntax.ParamDecl{{Name: "a", Type: vec}}},
			{Name: "Scale", Modifiers: syntax.ModStatic, Accessibility: "public", Returns: vec,
				Params: []*syntax.ParamDecl{{Name: "v", Type: vec}, {Name: "k", Type: typ("f64"), Default: &syntax.Literal{Kind: syntax.LitInt, Int: 1}}}},
			{Name: "Scale", Modifiers: syntax.ModStatic, Accessibility: "public", Returns: vec,
				Params: []*syntax.ParamDecl{{Name: "v", Type: vec}, {Name: "k", Type: typ("i32")}}},
		},
	}
}

func TestMethodsAndOperators(t *testing.T) {
	b, _ := newBinder(t, vectorDecl())
	vec := lookup(t, b, "geo.Vector")
	if ops := vec.Methods("op_Addition"); len(ops) != 1 || ops[0].MethodKind() != symbols.MethodUserDefinedOperator {
		t.Fatalf("op_Addition = %v", ops)
	}
	if ops := vec.Methods("op_UnaryNegation"); len(ops) != 1 || !ops[0].IsStatic() {
		t.Fatalf("op_UnaryNegation = %v", ops)
	}
	scale := vec.Methods("Scale")
	if len(scale) != 2 {
		t.Fatalf("Scale overloads = %d", len(scale))
	}
	k := scale[0].Parameters()[1]
	if !k.IsOptional() || k.ExplicitDefaultValue() == nil || k.ExplicitDefaultValue().F64 != 1 {
		t.Fatalf("default of k = %v", k.ExplicitDefaultValue())
	}
	if f := vec.Field("X"); f == nil || f.DeclaredAccessibility() != symbols.AccessPrivate {
		t.Fatalf("field X = %v", f)
	}
	if ds := b.DeclarationDiagnostics().Items(); len(ds) != 0 {
		t.Fatalf("unexpected diagnostics %v", codes(ds))
	}
}

func TestMemberDiagnostics(t *testing.T) {
	b, _ := newBinder(t, &syntax.TypeDecl{
		Name: "C", Kind: syntax.DeclClass,
		Fields: []*syntax.FieldDecl{{Name: "f", Type: typ("i32")}, {Name: "f", Type: typ("i64")}},
		Methods: []*syntax.MethodDecl{
			{Name: "M", Modifiers: syntax.ModStatic | syntax.ModVirtual},
			{Name: "N", Params: []*syntax.ParamDecl{{Name: "s", Type: typ("string"), Default: &syntax.Literal{Kind: syntax.LitInt, Int: 3}}}},
			{Name: "+", Kind: syntax.MethodOperator, Params: []*syntax.ParamDecl{{Name: "a", Type: typ("C")}, {Name: "b", Type: typ("C")}}},
		},
	})
	lookup(t, b, "C").Members()
	got := codes(b.DeclarationDiagnostics().Items())
	want := []diag.Code{
		diag.DclDuplicateDeclaration,
		diag.DclBadModifierCombination,
		diag.DclBadParameterDefault,
		diag.DclBadModifierCombination,
	}
	if len(got) != len(want) {
		t.Fatalf("diagnostics = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("diagnostics = %v, want %v", got, want)
		}
	}
}

func TestAttributesBind(t *testing.T) {
	b, bag := newBinder(t, &syntax.TypeDecl{
		Name: "Legacy", Kind: syntax.DeclClass,
		Attributes: []*syntax.AttributeSyntax{
			{Name: typ("System.Obsolete"), Args: []syntax.Literal{{Kind: syntax.LitString, Str: "use New"}}},
			{Name: typ("System.Flags"), Args: []syntax.Literal{{Kind: syntax.LitInt, Int: 1}}, Span: span(7)},
		},
	})
	legacy := lookup(t, b, "Legacy")
	a := symbols.FindAttribute(legacy, wellknown.AttrObsolete)
	if a == nil {
		t.Fatal("Obsolete not bound")
	}
	if s, ok := a.StringArg(0); !ok || s != "use New" {
		t.Fatalf("argument = %q", s)
	}
	ds := bag.Items()
	if len(ds) != 1 || ds[0].Code != diag.DclBadAttribute || ds[0].Primary != span(7) {
		t.Fatalf("diagnostics = %+v", ds)
	}
}

func lit(k syntax.LiteralKind, v int64) *syntax.LiteralExpr {
	return &syntax.LiteralExpr{Value: syntax.Literal{Kind: k, Int: v, Bool: v != 0, Str: "s"}}
}

func val(name, ts string) *syntax.TypedExpr {
	return &syntax.TypedExpr{Name: name, Type: typ(ts)}
}

func TestBindExprOperators(t *testing.T) {
	b, _ := newBinder(t, vectorDecl())
	scope := b.Source().GlobalNamespace().LookupNamespace("geo")
	tests := []struct {
		name string
		expr syntax.Expr
		want string
		code diag.Code
	}{
		{"int add", &syntax.BinaryExpr{Op: syntax.BinaryAdd, Left: lit(syntax.LitInt, 1), Right: lit(syntax.LitInt, 2)}, "i32", 0},
		{"big literal", &syntax.BinaryExpr{Op: syntax.BinaryAdd, Left: lit(syntax.LitInt, 1), Right: lit(syntax.LitInt, 1 << 40)}, "i64", 0},
		{"string concat", &syntax.BinaryExpr{Op: syntax.BinaryAdd, Left: lit(syntax.LitString, 0), Right: lit(syntax.LitInt, 2)}, "string", 0},
		{"lifted", &syntax.BinaryExpr{Op: syntax.BinaryMul, Left: val("a", "i32?"), Right: val("b", "i16")}, "i32?", 0},
		{"compare", &syntax.BinaryExpr{Op: syntax.BinaryLess, Left: val("a", "u8"), Right: val("b", "f32")}, "bool", 0},
		{"user plus", &syntax.BinaryExpr{Op: syntax.BinaryAdd, Left: val("a", "Vector"), Right: val("b", "Vector")}, "geo.Vector", 0},
		{"user negate", &syntax.UnaryExpr{Op: syntax.UnaryMinus, Operand: val("a", "Vector")}, "geo.Vector", 0},
		{"not int", &syntax.UnaryExpr{Op: syntax.UnaryNot, Operand: lit(syntax.LitInt, 1)}, "?", diag.OprBadUnaryOperand},
		{"bool plus int", &syntax.BinaryExpr{Op: syntax.BinaryAdd, Left: lit(syntax.LitBool, 1), Right: lit(syntax.LitInt, 1)}, "?", diag.OprBadBinaryOperands},
		{"vector times", &syntax.BinaryExpr{Op: syntax.BinaryMul, Left: val("a", "Vector"), Right: val("b", "Vector")}, "?", diag.OprBadBinaryOperands},
		{"missing operand", &syntax.BinaryExpr{Op: syntax.BinaryAdd, Left: val("a", "Nope"), Right: lit(syntax.LitInt, 1)}, "?", diag.DclTypeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag(0)
			got, err := b.BindExpr(context.Background(), tt.expr, scope, diag.BagReporter{Bag: bag})
			if err != nil {
				t.Fatalf("bind: %v", err)
			}
			if got.Type().String() != tt.want {
				t.Fatalf("type = %s, want %s", got.Type(), tt.want)
			}
			ds := bag.Items()
			if tt.code == 0 && len(ds) != 0 || tt.code != 0 && (len(ds) != 1 || ds[0].Code != tt.code) {
				t.Fatalf("diagnostics = %v, want %v", codes(ds), tt.code)
			}
		})
	}
}

func TestBindExprLowersStringConcat(t *testing.T) {
	b, _ := newBinder(t)
	e := &syntax.BinaryExpr{Op: syntax.BinaryAdd, Left: lit(syntax.LitString, 0), Right: lit(syntax.LitString, 0)}
	got, err := b.BindExpr(context.Background(), e, nil, diag.NopReporter{})
	if err != nil {
		t.Fatalf("bind: %v", err)
	}
	bin := got.(*Binary)
	if bin.Operator != overload.BinaryAddition|overload.BinaryOperatorKind(overload.OperandString) {
		t.Fatalf("operator = %v", bin.Operator)
	}
	if id, ok := bin.Method.SpecialMember(); !ok || id != wellknown.StringConcatStringString {
		t.Fatalf("lowered to %v", bin.Method)
	}
}

func TestBindCalls(t *testing.T) {
	b, _ := newBinder(t, vectorDecl())
	scope := b.Source().GlobalNamespace().LookupNamespace("geo")
	call := func(args ...syntax.Expr) *syntax.CallExpr {
		return &syntax.CallExpr{Receiver: typ("Vector"), Name: "Scale", Args: args}
	}
	tests := []struct {
		name  string
		expr  *syntax.CallExpr
		param string
		code  diag.Code
	}{
		{"exact int", call(val("v", "Vector"), lit(syntax.LitInt, 2)), "i32", 0},
		{"widened float", call(val("v", "Vector"), val("k", "f32")), "f64", 0},
		{"omitted default", call(val("v", "Vector")), "f64", 0},
		{"no overload", call(val("v", "Vector"), lit(syntax.LitString, 0)), "", diag.OprNoApplicableOverload},
		{"unknown method", &syntax.CallExpr{Receiver: typ("Vector"), Name: "Rotate"}, "", diag.OprUnknownMember},
		{"bad argument", call(val("v", "Vector"), val("k", "Nope")), "", diag.DclTypeNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bag := diag.NewBag(0)
			got, err := b.BindExpr(context.Background(), tt.expr, scope, diag.BagReporter{Bag: bag})
			if err != nil {
				t.Fatalf("bind: %v", err)
			}
			c := got.(*Call)
			ds := bag.Items()
			if tt.code != 0 {
				if len(ds) != 1 || ds[0].Code != tt.code {
					t.Fatalf("diagnostics = %v, want %v", codes(ds), tt.code)
				}
				if c.Method != symbols.UnknownMethod {
					t.Fatalf("failed call resolved to %v", c.Method)
				}
				return
			}
			if len(ds) != 0 {
				t.Fatalf("unexpected diagnostics %v", codes(ds))
			}
			if p := c.Method.Parameters(); p[len(p)-1].Type().String() != tt.param {
				t.Fatalf("picked %v", c.Method)
			}
			if c.Type().String() != "geo.Vector" {
				t.Fatalf("call type = %v", c.Type())
			}
		})
	}
}

func TestBindExprCancelled(t *testing.T) {
	b, _ := newBinder(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.BindExpr(ctx, lit(syntax.LitInt, 1), nil, diag.NopReporter{}); err == nil {
		t.Fatal("expected cancellation error")
	}
}

func TestParamsParameter(t *testing.T) {
	b, _ := newBinder(t, &syntax.TypeDecl{
		Name: "Log", Kind: syntax.DeclClass,
		Methods: []*syntax.MethodDecl{
			{Name: "Write", Modifiers: syntax.ModStatic, Params: []*syntax.ParamDecl{
				{Name: "format", Type: typ("string")},
				{Name: "args", Type: typ("i32[]"), Params: true},
			}},
			{Name: "Bad", Modifiers: syntax.ModStatic, Params: []*syntax.ParamDecl{
				{Name: "args", Type: typ("i32"), Params: true},
			}},
		},
	})
	log := lookup(t, b, "Log")
	log.Members()
	ps := log.Methods("Write")[0].Parameters()
	if ps[0].IsParams() || !ps[1].IsParams() {
		t.Fatalf("params flags = %v, %v", ps[0].IsParams(), ps[1].IsParams())
	}
	got := codes(b.DeclarationDiagnostics().Items())
	if len(got) != 1 || got[0] != diag.DclBadModifierCombination {
		t.Fatalf("diagnostics = %v", got)
	}
}
