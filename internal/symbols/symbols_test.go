package symbols

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"stark/internal/diag"
	"stark/internal/fault"
	"stark/internal/source"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

type fakeComp struct {
	lib   *CorLibrary
	mu    sync.Mutex
	diags []diag.Diagnostic
	binds atomic.Int32
	// when want > 0, BindTypeSyntax blocks until want callers are inside
	want int32
	gate chan struct{}
}

func newFakeComp() *fakeComp {
	return &fakeComp{lib: NewCorLibrary(wellknown.Default())}
}

func (f *fakeComp) GetSpecialType(st wellknown.SpecialType) *NamedType {
	return f.lib.GetSpecialType(st)
}

func (f *fakeComp) BindTypeSyntax(ctx context.Context, ts *syntax.TypeSyntax, _ Symbol, r diag.Reporter) (TypeSymbol, error) {
	n := f.binds.Add(1)
	if f.want > 0 {
		if n == f.want {
			close(f.gate)
		}
		<-f.gate
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if st, ok := wellknown.SpecialTypeByKeyword(ts.Name); ok {
		return f.lib.GetSpecialType(st), nil
	}
	diag.ReportError(r, diag.DclTypeNotFound, ts.Span, "type not found").Emit()
	return UnknownResultType, nil
}

func (f *fakeComp) BindBases(context.Context, *NamedType, diag.Reporter) (Bases, error) {
	return Bases{Base: f.lib.GetSpecialType(wellknown.TypeEnum)}, nil
}

func (f *fakeComp) BindMembers(context.Context, *NamedType, diag.Reporter) (Members, error) {
	return Members{}, nil
}

func (f *fakeComp) AddDeclarationDiagnostics(ds []diag.Diagnostic) {
	f.mu.Lock()
	f.diags = append(f.diags, ds...)
	f.mu.Unlock()
}

func (f *fakeComp) diagnostics() []diag.Diagnostic {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]diag.Diagnostic(nil), f.diags...)
}

func newEnum(comp *fakeComp, base string) *NamedType {
	decl := &syntax.TypeDecl{Name: "Color", Kind: syntax.DeclEnum, Span: source.Span{File: 1, Start: 0, End: 40}}
	if base != "" {
		decl.Bases = []*syntax.TypeSyntax{{
			Kind: syntax.TypeName,
			Name: base,
			Span: source.Span{File: 1, Start: 14, End: 14 + uint32(len(base))},
		}}
	}
	asm := NewAssembly("app")
	return NewNamedType(asm.GlobalNamespace(), NamedTypeSpec{
		Name:          "Color",
		Kind:          TypeKindEnum,
		Accessibility: AccessPublic,
		Decl:          decl,
		Compilation:   comp,
		Origin:        Origin{Span: decl.Span, Node: decl},
	})
}

func TestErrorMethodDefaults(t *testing.T) {
	m := UnknownMethod
	if m.ContainingSymbol() != Symbol(UnknownResultType) {
		t.Fatalf("containing symbol is %v", m.ContainingSymbol())
	}
	if m.ReturnType().Type != TypeSymbol(UnknownResultType) {
		t.Fatalf("return type is %v", m.ReturnType().Type)
	}
	if m.Name() != "" || m.MethodKind() != MethodOrdinary || m.DeclaredAccessibility() != AccessPublic {
		t.Fatalf("unexpected shape: %q %v %v", m.Name(), m.MethodKind(), m.DeclaredAccessibility())
	}
	if m.IsVirtual() || m.IsAbstract() || m.IsOverride() || m.IsSealed() || m.IsExtern() || m.IsStatic() || m.IsAsync() {
		t.Fatal("error method must not carry modifiers")
	}
	if len(m.Parameters()) != 0 || m.ParameterCount() != 0 || m.Arity() != 0 || len(m.Locations()) != 0 || len(m.Attributes()) != 0 {
		t.Fatal("error method must be empty")
	}
	if m.ReturnsVoid() {
		t.Fatal("unknown result type is not void")
	}

	lib := NewCorLibrary(wellknown.Default())
	ctor := NewErrorMethod(UnknownResultType, lib.GetSpecialType(wellknown.TypeVoid), InstanceConstructorName)
	if ctor.MethodKind() != MethodConstructor || !ctor.ReturnsVoid() {
		t.Fatalf("ctor error method: kind %v, void %v", ctor.MethodKind(), ctor.ReturnsVoid())
	}
}

func TestErrorMethodLocalOffsetIsUnreachable(t *testing.T) {
	f := fault.Catch(func() { UnknownMethod.CalculateLocalSyntaxOffset(10, 1) })
	if f == nil || f.Kind != fault.KindUnreachable {
		t.Fatalf("expected unreachable fault, got %v", f)
	}
}

func TestSpecialMethodFallsBackToSentinel(t *testing.T) {
	lib := NewCorLibrary(wellknown.Default())
	if got := lib.SpecialMethod(wellknown.IndexValue); got != MethodSymbol(UnknownMethod) {
		t.Fatalf("field id produced %v", got)
	}
	if got := lib.SpecialMethod(wellknown.SpecialMemberCount + 3); got != MethodSymbol(UnknownMethod) {
		t.Fatalf("out of range id produced %v", got)
	}
}

func TestEnumWithoutBaseDefaultsToInt32(t *testing.T) {
	comp := newFakeComp()
	e := newEnum(comp, "")
	u := e.EnumUnderlyingType()
	if u.SpecialType() != wellknown.TypeInt32 {
		t.Fatalf("underlying = %v", u)
	}
	if n := len(comp.diagnostics()); n != 0 {
		t.Fatalf("expected no diagnostics, got %d", n)
	}
	if e.CompletionParts()&PartEnumUnderlyingType == 0 {
		t.Fatal("completion part not recorded")
	}
}

func TestEnumWithBoolBaseReportsOnce(t *testing.T) {
	comp := newFakeComp()
	e := newEnum(comp, "bool")
	for range 3 {
		if u := e.EnumUnderlyingType(); u.SpecialType() != wellknown.TypeInt32 {
			t.Fatalf("underlying = %v", u)
		}
	}
	ds := comp.diagnostics()
	if len(ds) != 1 {
		t.Fatalf("expected exactly one diagnostic, got %d", len(ds))
	}
	if ds[0].Code != diag.DclIntegralTypeExpected {
		t.Fatalf("code = %v", ds[0].Code)
	}
	want := source.Span{File: 1, Start: 14, End: 18}
	if ds[0].Primary != want {
		t.Fatalf("location = %v, want %v", ds[0].Primary, want)
	}
}

func TestEnumWithValidBase(t *testing.T) {
	comp := newFakeComp()
	e := newEnum(comp, "u8")
	if u := e.EnumUnderlyingType(); u.SpecialType() != wellknown.TypeUInt8 {
		t.Fatalf("underlying = %v", u)
	}
	if f := e.EnumValueField(); f.Type().SpecialType() != wellknown.TypeUInt8 {
		t.Fatalf("value field type = %v", f.Type())
	}
}

func TestEnumUnderlyingTypeConcurrent(t *testing.T) {
	const workers = 16
	for trial := range 20 {
		comp := newFakeComp()
		comp.want = workers
		comp.gate = make(chan struct{})
		e := newEnum(comp, "f64")

		results := make([]*NamedType, workers)
		var wg sync.WaitGroup
		for i := range workers {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results[i] = e.EnumUnderlyingType()
			}()
		}
		wg.Wait()

		if got := comp.binds.Load(); got != workers {
			t.Fatalf("trial %d: %d computations, want %d", trial, got, workers)
		}
		for i, r := range results {
			if r != results[0] {
				t.Fatalf("trial %d: worker %d observed %v, worker 0 observed %v", trial, i, r, results[0])
			}
		}
		if n := len(comp.diagnostics()); n != 1 {
			t.Fatalf("trial %d: %d diagnostics published, want 1", trial, n)
		}
	}
}

func TestEnumCancelledComputationPublishesNothing(t *testing.T) {
	comp := newFakeComp()
	e := newEnum(comp, "bool")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	u, err := e.EnumUnderlyingTypeContext(ctx)
	if !errors.Is(err, context.Canceled) || u != nil {
		t.Fatalf("got %v, %v", u, err)
	}
	if e.enumUnderlying.Computed() || len(comp.diagnostics()) != 0 {
		t.Fatal("cancelled computation leaked state")
	}
	if e.EnumUnderlyingType().SpecialType() != wellknown.TypeInt32 || len(comp.diagnostics()) != 1 {
		t.Fatal("later completion did not run normally")
	}
}

func TestEnumValueField(t *testing.T) {
	comp := newFakeComp()
	e := newEnum(comp, "")
	f := e.EnumValueField()
	if f.Name() != EnumValueFieldName || f.IsStatic() || !f.HasSpecialName() || !f.HasRuntimeSpecialName() {
		t.Fatalf("unexpected value field %+v", f)
	}
	if f.DeclaredAccessibility() != AccessPublic || f.ContainingSymbol() != Symbol(e) {
		t.Fatal("value field must be public and owned by the enum")
	}
	if e.EnumValueField() != f {
		t.Fatal("value field must be created once")
	}
	class := NewNamedType(NewAssembly("x").GlobalNamespace(), NamedTypeSpec{Name: "C", Kind: TypeKindClass})
	if class.EnumValueField() != nil || class.EnumUnderlyingType() != nil {
		t.Fatal("non-enum types have no enum parts")
	}
}

func TestCorLibSpecialMembers(t *testing.T) {
	lib := NewCorLibrary(wellknown.Default())
	concat := lib.SpecialMember(wellknown.StringConcatStringString)
	m, ok := concat.(*Method)
	if !ok {
		t.Fatalf("concat is %T", concat)
	}
	if m != lib.SpecialMember(wellknown.StringConcatStringString) {
		t.Fatal("special member materialized twice")
	}
	if !m.IsStatic() || m.ParameterCount() != 2 || m.ReturnType().SpecialType() != wellknown.TypeString {
		t.Fatalf("concat shape: %s", m)
	}
	if id, ok := m.SpecialMember(); !ok || id != wellknown.StringConcatStringString {
		t.Fatalf("special id = %v %v", id, ok)
	}

	str := lib.GetSpecialType(wellknown.TypeString)
	found := false
	for _, meth := range str.Methods("Concat") {
		if meth == m {
			found = true
		}
	}
	if !found {
		t.Fatal("member list does not share the materialized symbol")
	}

	item := lib.SpecialMethod(wellknown.StringItem)
	if item.RefKind() != RefRef || item.ReturnType().SpecialType() != wellknown.TypeUInt8 {
		t.Fatalf("get_item returns %v %v", item.RefKind(), item.ReturnType())
	}
}

func TestConstructedOptionMembers(t *testing.T) {
	lib := NewCorLibrary(wellknown.Default())
	i32 := lib.GetSpecialType(wellknown.TypeInt32)
	opt := lib.MakeNullable(i32)
	if !IsNullable(opt) || NullableUnderlying(opt) != TypeSymbol(i32) || opt.String() != "i32?" {
		t.Fatalf("nullable facts wrong for %s", opt)
	}
	get := opt.Methods("get_value")
	if len(get) != 1 || get[0].ReturnType().Type != TypeSymbol(i32) {
		t.Fatalf("get_value on %s: %v", opt, get)
	}
	if def, ok := get[0].SpecialMember(); !ok || def != wellknown.OptionGetValue {
		t.Fatal("substituted member lost its descriptor")
	}
	imp := opt.Methods("op_Implicit")
	if len(imp) != 1 || !Equal(imp[0].ReturnType().Type, opt) || imp[0].MethodKind() != MethodConversion {
		t.Fatalf("op_Implicit on %s: %v", opt, imp)
	}
	if !Equal(opt, lib.MakeNullable(i32)) || Equal(opt, lib.MakeNullable(lib.GetSpecialType(wellknown.TypeInt64))) {
		t.Fatal("construction identity is structural")
	}
}

func TestWellKnownAttributeMatching(t *testing.T) {
	lib := NewCorLibrary(wellknown.Default())
	guid := lib.GetWellKnownType(wellknown.WellKnownGuidAttribute)
	if guid == nil || guid.BaseType() != lib.GetWellKnownType(wellknown.WellKnownAttribute) {
		t.Fatalf("guid attribute class: %v", guid)
	}
	desc, _ := wellknown.Attribute(wellknown.AttrGuid)
	str := lib.GetSpecialType(wellknown.TypeString)
	a := &AttributeData{Class: guid, CtorParams: []TypeSymbol{str}, Args: []*ConstantValue{StringConstant("x")}}
	if a.IsTargetAttribute(desc) != 0 {
		t.Fatal("guid attribute did not match its description")
	}
	bad := &AttributeData{Class: guid, CtorParams: []TypeSymbol{lib.GetSpecialType(wellknown.TypeInt32)}}
	if bad.IsTargetAttribute(desc) != -1 {
		t.Fatal("wrong parameter type matched")
	}
	ctors := guid.Methods(InstanceConstructorName)
	if len(ctors) != 1 || ctors[0].ParameterCount() != 1 {
		t.Fatalf("guid constructors: %v", ctors)
	}
}

func TestValidateMethodModifiers(t *testing.T) {
	cases := []struct {
		mods      syntax.Modifier
		kind      MethodKind
		container TypeKind
		bad       bool
	}{
		{syntax.ModStatic, MethodOrdinary, TypeKindClass, false},
		{syntax.ModSealed | syntax.ModOverride, MethodOrdinary, TypeKindClass, false},
		{syntax.ModSealed, MethodOrdinary, TypeKindClass, true},
		{syntax.ModStatic | syntax.ModVirtual, MethodOrdinary, TypeKindClass, true},
		{syntax.ModAbstract | syntax.ModOverride, MethodOrdinary, TypeKindClass, false},
		{syntax.ModAbstract | syntax.ModVirtual, MethodOrdinary, TypeKindClass, true},
		{syntax.ModVirtual | syntax.ModOverride, MethodOrdinary, TypeKindClass, true},
		{syntax.ModAsync | syntax.ModExtern, MethodOrdinary, TypeKindClass, true},
		{syntax.ModVirtual, MethodConstructor, TypeKindClass, true},
		{0, MethodUserDefinedOperator, TypeKindClass, true},
		{syntax.ModStatic, MethodUserDefinedOperator, TypeKindStruct, false},
		{syntax.ModVirtual, MethodOrdinary, TypeKindStruct, true},
	}
	for _, tc := range cases {
		got := ValidateMethodModifiers(tc.mods, tc.kind, tc.container)
		if (len(got) > 0) != tc.bad {
			t.Fatalf("%v on %v in %v: %v", tc.mods.Strings(), tc.kind, tc.container, got)
		}
	}
}

func TestLazyPublishesOnce(t *testing.T) {
	var cell Lazy[int]
	var wins atomic.Int32
	var wg sync.WaitGroup
	for i := range 32 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, won := cell.Publish(i); won {
				wins.Add(1)
			}
		}()
	}
	wg.Wait()
	if wins.Load() != 1 {
		t.Fatalf("%d winners", wins.Load())
	}
	var state CompletionState
	if !state.NotePartComplete(PartMembers) || state.NotePartComplete(PartMembers) {
		t.Fatal("part must flip exactly once")
	}
	if !state.HasComplete(PartMembers) || state.HasComplete(PartAll) {
		t.Fatal("unexpected completion set")
	}
}

func TestQualifiedNames(t *testing.T) {
	lib := NewCorLibrary(wellknown.Default())
	tid := lib.GetWellKnownType(wellknown.WellKnownTypeIdentifierAttribute)
	if got := QualifiedName(tid); got != "core.runtime.TypeIdentifierAttribute" {
		t.Fatalf("qualified name %q", got)
	}
	if lib.Assembly().LookupType("core.Option", 1) != lib.GetSpecialType(wellknown.TypeOption) {
		t.Fatal("lookup by dotted name failed")
	}
	if lib.GetSpecialType(wellknown.TypeArrayT).MetadataName() != "Array`1" {
		t.Fatal("metadata name must carry arity")
	}
}
