package wellknown

// SpecialType identifies a corlib type the compiler knows by identity.
// Zero means "not special".
type SpecialType uint8

const (
	TypeNone SpecialType = iota
	TypeObject
	TypeEnum
	TypeMulticastDelegate
	TypeDelegate
	TypeValueType
	TypeVoid
	TypeBool
	TypeRune
	TypeInt8
	TypeUInt8
	TypeInt16
	TypeUInt16
	TypeInt32
	TypeUInt32
	TypeInt64
	TypeUInt64
	TypeFloat32
	TypeFloat64
	TypeInt
	TypeUInt
	TypeString
	TypeArray
	TypeArrayT
	TypeIArrayT
	TypeISizeable
	TypeIndex
	TypeOption
	TypeIterable
	TypeMutableIterable
	TypeIDisposable

	SpecialTypeCount
)

// Shape is the declaration form of a corlib type.
type Shape uint8

const (
	ShapeClass Shape = iota
	ShapeStruct
	ShapeInterface
)

type specialTypeInfo struct {
	name    string // metadata name inside CoreNamespace
	keyword string // language keyword, if any
	arity   uint8
	shape   Shape
	size    uint8 // bytes, 0 when not a fixed-size primitive
}

// CoreNamespace hosts every special type.
const CoreNamespace = "core"

var specialTypes = [SpecialTypeCount]specialTypeInfo{
	TypeObject:            {name: "Object", keyword: "object"},
	TypeEnum:              {name: "Enum"},
	TypeMulticastDelegate: {name: "MulticastDelegate"},
	TypeDelegate:          {name: "Delegate"},
	TypeValueType:         {name: "ValueType"},
	TypeVoid:              {name: "Void", keyword: "void", shape: ShapeStruct},
	TypeBool:              {name: "Bool", keyword: "bool", shape: ShapeStruct, size: 1},
	TypeRune:              {name: "Rune", keyword: "rune", shape: ShapeStruct, size: 4},
	TypeInt8:              {name: "Int8", keyword: "i8", shape: ShapeStruct, size: 1},
	TypeUInt8:             {name: "UInt8", keyword: "u8", shape: ShapeStruct, size: 1},
	TypeInt16:             {name: "Int16", keyword: "i16", shape: ShapeStruct, size: 2},
	TypeUInt16:            {name: "UInt16", keyword: "u16", shape: ShapeStruct, size: 2},
	TypeInt32:             {name: "Int32", keyword: "i32", shape: ShapeStruct, size: 4},
	TypeUInt32:            {name: "UInt32", keyword: "u32", shape: ShapeStruct, size: 4},
	TypeInt64:             {name: "Int64", keyword: "i64", shape: ShapeStruct, size: 8},
	TypeUInt64:            {name: "UInt64", keyword: "u64", shape: ShapeStruct, size: 8},
	TypeFloat32:           {name: "Float32", keyword: "f32", shape: ShapeStruct, size: 4},
	TypeFloat64:           {name: "Float64", keyword: "f64", shape: ShapeStruct, size: 8},
	TypeInt:               {name: "Int", keyword: "int", shape: ShapeStruct},
	TypeUInt:              {name: "UInt", keyword: "uint", shape: ShapeStruct},
	TypeString:            {name: "String", keyword: "string"},
	TypeArray:             {name: "Array"},
	TypeArrayT:            {name: "Array", arity: 1},
	TypeIArrayT:           {name: "IArray", arity: 1, shape: ShapeInterface},
	TypeISizeable:         {name: "ISizeable", shape: ShapeInterface},
	TypeIndex:             {name: "Index", shape: ShapeStruct},
	TypeOption:            {name: "Option", arity: 1, shape: ShapeStruct},
	TypeIterable:          {name: "Iterable", arity: 2, shape: ShapeInterface},
	TypeMutableIterable:   {name: "MutableIterable", arity: 2, shape: ShapeInterface},
	TypeIDisposable:       {name: "IDisposable", shape: ShapeInterface},
}

var (
	byKeyword      = map[string]SpecialType{}
	byMetadataName = map[string]SpecialType{}
)

func init() {
	for t := TypeObject; t < SpecialTypeCount; t++ {
		info := specialTypes[t]
		if info.keyword != "" {
			byKeyword[info.keyword] = t
		}
		byMetadataName[t.MetadataName()] = t
	}
}

// Name is the simple metadata name without arity suffix.
func (t SpecialType) Name() string {
	if t == TypeNone || t >= SpecialTypeCount {
		return ""
	}
	return specialTypes[t].name
}

// MetadataName is the namespace-qualified name with a `N arity suffix for generics.
func (t SpecialType) MetadataName() string {
	if t == TypeNone || t >= SpecialTypeCount {
		return ""
	}
	info := specialTypes[t]
	name := CoreNamespace + "." + info.name
	if info.arity > 0 {
		name += "`" + string(rune('0'+info.arity))
	}
	return name
}

func (t SpecialType) String() string {
	if t == TypeNone {
		return "none"
	}
	if t >= SpecialTypeCount {
		return "invalid"
	}
	if kw := specialTypes[t].keyword; kw != "" {
		return kw
	}
	return t.MetadataName()
}

func (t SpecialType) Keyword() string { return specialTypes[t%SpecialTypeCount].keyword }
func (t SpecialType) Arity() int      { return int(specialTypes[t%SpecialTypeCount].arity) }
func (t SpecialType) Shape() Shape    { return specialTypes[t%SpecialTypeCount].shape }

// SizeInBytes is 0 for types without a fixed size.
func (t SpecialType) SizeInBytes() int { return int(specialTypes[t%SpecialTypeCount].size) }

func (t SpecialType) IsValueType() bool {
	return t != TypeNone && t < SpecialTypeCount && specialTypes[t].shape == ShapeStruct
}

// IsIntegral covers fixed-width and native integers. Rune is not integral.
func (t SpecialType) IsIntegral() bool {
	switch t {
	case TypeInt8, TypeUInt8, TypeInt16, TypeUInt16, TypeInt32, TypeUInt32,
		TypeInt64, TypeUInt64, TypeInt, TypeUInt:
		return true
	}
	return false
}

func (t SpecialType) IsSignedIntegral() bool {
	switch t {
	case TypeInt8, TypeInt16, TypeInt32, TypeInt64, TypeInt:
		return true
	}
	return false
}

func (t SpecialType) IsUnsignedIntegral() bool {
	return t.IsIntegral() && !t.IsSignedIntegral()
}

func (t SpecialType) IsFloating() bool {
	return t == TypeFloat32 || t == TypeFloat64
}

// IsNumeric reports whether t takes part in builtin arithmetic (rune included).
func (t SpecialType) IsNumeric() bool {
	return t.IsIntegral() || t.IsFloating() || t == TypeRune
}

// IsValidEnumUnderlyingType accepts the eight fixed-width integers.
func (t SpecialType) IsValidEnumUnderlyingType() bool {
	switch t {
	case TypeInt8, TypeUInt8, TypeInt16, TypeUInt16, TypeInt32, TypeUInt32, TypeInt64, TypeUInt64:
		return true
	}
	return false
}

// SpecialTypeByKeyword maps "i32", "string", ... to their special type.
func SpecialTypeByKeyword(kw string) (SpecialType, bool) {
	t, ok := byKeyword[kw]
	return t, ok
}

// SpecialTypeByMetadataName maps "core.Int32" or "core.Option`1" to a special type.
func SpecialTypeByMetadataName(name string) (SpecialType, bool) {
	t, ok := byMetadataName[name]
	return t, ok
}

// SignatureCode returns the primitive element code for t, or SigInvalid when
// t is encoded as a type reference.
func (t SpecialType) SignatureCode() SignatureTypeCode {
	switch t {
	case TypeVoid:
		return SigVoid
	case TypeBool:
		return SigBoolean
	case TypeRune:
		return SigRune
	case TypeInt8:
		return SigInt8
	case TypeUInt8:
		return SigUInt8
	case TypeInt16:
		return SigInt16
	case TypeUInt16:
		return SigUInt16
	case TypeInt32:
		return SigInt32
	case TypeUInt32:
		return SigUInt32
	case TypeInt64:
		return SigInt64
	case TypeUInt64:
		return SigUInt64
	case TypeFloat32:
		return SigFloat32
	case TypeFloat64:
		return SigFloat64
	case TypeString:
		return SigString
	case TypeObject:
		return SigObject
	}
	return SigInvalid
}
