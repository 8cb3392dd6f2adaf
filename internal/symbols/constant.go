package symbols

import (
	"math"
	"strconv"

	"stark/internal/wellknown"
)

// ConstantKind says which payload a ConstantValue carries.
type ConstantKind uint8

const (
	ConstNull ConstantKind = iota
	ConstBool
	ConstSigned
	ConstUnsigned
	ConstFloat
	ConstString
)

// ConstantValue is a compile-time constant with its special type.
type ConstantValue struct {
	Kind ConstantKind
	Type wellknown.SpecialType
	Bool bool
	Int  int64
	Uint uint64
	F64  float64
	Str  string
}

func NullConstant() *ConstantValue { return &ConstantValue{Kind: ConstNull} }

func BoolConstant(v bool) *ConstantValue {
	return &ConstantValue{Kind: ConstBool, Type: wellknown.TypeBool, Bool: v}
}

func StringConstant(s string) *ConstantValue {
	return &ConstantValue{Kind: ConstString, Type: wellknown.TypeString, Str: s}
}

// IntegerConstant stores v as a constant of integral type st. It fails when
// v does not fit.
func IntegerConstant(st wellknown.SpecialType, v int64) (*ConstantValue, bool) {
	if st.IsUnsignedIntegral() || st == wellknown.TypeRune {
		if v < 0 {
			return nil, false
		}
		uv := uint64(v)
		if size := st.SizeInBytes(); size > 0 && size < 8 && uv > (uint64(1)<<(8*size))-1 {
			return nil, false
		}
		return &ConstantValue{Kind: ConstUnsigned, Type: st, Uint: uv}, true
	}
	if !st.IsSignedIntegral() {
		return nil, false
	}
	if size := st.SizeInBytes(); size > 0 && size < 8 {
		limit := int64(1) << (8*size - 1)
		if v < -limit || v >= limit {
			return nil, false
		}
	}
	return &ConstantValue{Kind: ConstSigned, Type: st, Int: v}, true
}

// FloatConstant stores v as f32 or f64.
func FloatConstant(st wellknown.SpecialType, v float64) (*ConstantValue, bool) {
	switch st {
	case wellknown.TypeFloat32:
		if !math.IsInf(v, 0) && math.Abs(v) > math.MaxFloat32 {
			return nil, false
		}
		return &ConstantValue{Kind: ConstFloat, Type: st, F64: float64(float32(v))}, true
	case wellknown.TypeFloat64:
		return &ConstantValue{Kind: ConstFloat, Type: st, F64: v}, true
	}
	return nil, false
}

// Bits returns the little-endian two's-complement payload used by metadata
// constant rows.
func (c *ConstantValue) Bits() uint64 {
	switch c.Kind {
	case ConstBool:
		if c.Bool {
			return 1
		}
		return 0
	case ConstSigned:
		return uint64(c.Int) //nolint:gosec // reinterpretation
	case ConstUnsigned:
		return c.Uint
	case ConstFloat:
		if c.Type == wellknown.TypeFloat32 {
			return uint64(math.Float32bits(float32(c.F64)))
		}
		return math.Float64bits(c.F64)
	}
	return 0
}

// Next returns c+1 for integral constants; ok is false on overflow.
func (c *ConstantValue) Next() (*ConstantValue, bool) {
	switch c.Kind {
	case ConstSigned:
		if c.Int == math.MaxInt64 {
			return nil, false
		}
		return IntegerConstant(c.Type, c.Int+1)
	case ConstUnsigned:
		if c.Uint >= math.MaxInt64 {
			return nil, false
		}
		return IntegerConstant(c.Type, int64(c.Uint)+1) //nolint:gosec // checked above
	}
	return nil, false
}

func (c *ConstantValue) String() string {
	if c == nil {
		return "<none>"
	}
	switch c.Kind {
	case ConstBool:
		return strconv.FormatBool(c.Bool)
	case ConstSigned:
		return strconv.FormatInt(c.Int, 10)
	case ConstUnsigned:
		return strconv.FormatUint(c.Uint, 10)
	case ConstFloat:
		return strconv.FormatFloat(c.F64, 'g', -1, 64)
	case ConstString:
		return strconv.Quote(c.Str)
	default:
		return "null"
	}
}
