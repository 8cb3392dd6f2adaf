package conversions

import (
	"testing"

	"stark/internal/symbols"
	"stark/internal/wellknown"
)

func TestFastClassifyNumeric(t *testing.T) {
	tests := []struct {
		src, dst wellknown.SpecialType
		want     Kind
	}{
		{wellknown.TypeInt32, wellknown.TypeInt32, Identity},
		{wellknown.TypeInt8, wellknown.TypeInt16, ImplicitNumeric},
		{wellknown.TypeInt8, wellknown.TypeUInt16, ExplicitNumeric},
		{wellknown.TypeRune, wellknown.TypeInt32, ImplicitNumeric},
		{wellknown.TypeInt32, wellknown.TypeRune, ExplicitNumeric},
		{wellknown.TypeUInt32, wellknown.TypeInt, ExplicitNumeric},
		{wellknown.TypeUInt32, wellknown.TypeUInt, ImplicitNumeric},
		{wellknown.TypeInt, wellknown.TypeInt64, ImplicitNumeric},
		{wellknown.TypeInt64, wellknown.TypeInt, ExplicitNumeric},
		{wellknown.TypeFloat32, wellknown.TypeFloat64, ImplicitNumeric},
		{wellknown.TypeFloat64, wellknown.TypeFloat32, ExplicitNumeric},
		{wellknown.TypeString, wellknown.TypeObject, ImplicitReference},
		{wellknown.TypeObject, wellknown.TypeString, ExplicitReference},
		{wellknown.TypeBool, wellknown.TypeObject, Boxing},
		{wellknown.TypeObject, wellknown.TypeUInt8, Unboxing},
		{wellknown.TypeBool, wellknown.TypeInt32, NoConversion},
		{wellknown.TypeString, wellknown.TypeInt32, NoConversion},
	}
	for _, tt := range tests {
		got, ok := FastClassify(tt.src, tt.dst)
		if !ok || got != tt.want {
			t.Fatalf("FastClassify(%v, %v) = %v, %v; want %v", tt.src, tt.dst, got, ok, tt.want)
		}
	}
	if _, ok := FastClassify(wellknown.TypeNone, wellknown.TypeInt32); ok {
		t.Fatalf("TypeNone must not be decided")
	}
}

func TestClassifyNullable(t *testing.T) {
	lib := symbols.NewCorLibrary(wellknown.Default())
	st := lib.GetSpecialType
	i8, i32, u64 := st(wellknown.TypeInt8), st(wellknown.TypeInt32), st(wellknown.TypeUInt64)
	obj := st(wellknown.TypeObject)
	n := func(x symbols.TypeSymbol) symbols.TypeSymbol { return lib.MakeNullable(x) }

	tests := []struct {
		name     string
		src, dst symbols.TypeSymbol
		want     Kind
	}{
		{"wrap", i32, n(i32), ImplicitNullable},
		{"wrap widening", i8, n(i32), ImplicitNullable},
		{"wrap narrowing", i32, n(i8), ExplicitNullable},
		{"lift widening", n(i8), n(i32), ImplicitNullable},
		{"lift narrowing", n(i32), n(i8), ExplicitNullable},
		{"unwrap", n(i32), i32, ExplicitNullable},
		{"same", n(i32), n(i32), Identity},
		{"box", n(i32), obj, Boxing},
		{"no sign bridge", n(i8), n(u64), ExplicitNullable},
		{"bool to int", n(st(wellknown.TypeBool)), n(i32), NoConversion},
	}
	for _, tt := range tests {
		if got := Classify(tt.src, tt.dst); got != tt.want {
			t.Fatalf("%s: Classify(%v, %v) = %v, want %v", tt.name, tt.src, tt.dst, got, tt.want)
		}
	}
}

func TestClassifyErrorType(t *testing.T) {
	lib := symbols.NewCorLibrary(wellknown.Default())
	i32 := lib.GetSpecialType(wellknown.TypeInt32)
	if got := Classify(symbols.UnknownResultType, i32); got != NoConversion {
		t.Fatalf("error source: %v", got)
	}
	if got := Classify(symbols.UnknownResultType, symbols.UnknownResultType); got != Identity {
		t.Fatalf("error identity: %v", got)
	}
}

func TestClassifyReferences(t *testing.T) {
	lib := symbols.NewCorLibrary(wellknown.Default())
	obj := lib.GetSpecialType(wellknown.TypeObject)
	arr := lib.MakeArray(lib.GetSpecialType(wellknown.TypeInt32))
	if got := Classify(arr, obj); got != ImplicitReference {
		t.Fatalf("array to object: %v", got)
	}
	if got := Classify(obj, arr); got != ExplicitReference {
		t.Fatalf("object to array: %v", got)
	}
	enum := lib.GetSpecialType(wellknown.TypeEnum)
	if got := Classify(enum, obj); got != ImplicitReference {
		t.Fatalf("Enum to object: %v", got)
	}
}

func TestBetterConversionTarget(t *testing.T) {
	lib := symbols.NewCorLibrary(wellknown.Default())
	st := lib.GetSpecialType
	tests := []struct {
		a, b wellknown.SpecialType
		want Betterness
	}{
		{wellknown.TypeInt32, wellknown.TypeInt64, Left},
		{wellknown.TypeInt64, wellknown.TypeInt32, Right},
		{wellknown.TypeInt32, wellknown.TypeInt, Left},
		{wellknown.TypeInt32, wellknown.TypeUInt32, Left},
		{wellknown.TypeUInt64, wellknown.TypeInt64, Right},
		{wellknown.TypeFloat32, wellknown.TypeFloat64, Left},
		{wellknown.TypeInt32, wellknown.TypeInt32, Neither},
		{wellknown.TypeBool, wellknown.TypeString, Neither},
	}
	for _, tt := range tests {
		if got := BetterConversionTarget(st(tt.a), st(tt.b)); got != tt.want {
			t.Fatalf("better(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
	ni32, nu32 := lib.MakeNullable(st(wellknown.TypeInt32)), lib.MakeNullable(st(wellknown.TypeUInt32))
	if got := BetterConversionTarget(ni32, nu32); got != Left {
		t.Fatalf("lifted sign rule: %v", got)
	}
}
