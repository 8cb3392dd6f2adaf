package wellknown

import "strings"

// SpecialMember identifies a corlib member the compiler calls directly.
type SpecialMember uint8

const (
	StringCtorSZArrayChar SpecialMember = iota
	StringConcatStringString
	StringConcatStringStringString
	StringConcatStringStringStringString
	StringConcatStringArray
	StringConcatObject
	StringConcatObjectObject
	StringConcatObjectObjectObject
	StringConcatObjectArray
	StringOpEquality
	StringOpInequality
	StringSize
	StringItem
	StringFormat
	Float64IsNaN
	Float32IsNaN
	DelegateCombine
	DelegateRemove
	DelegateOpEquality
	DelegateOpInequality
	IterableIterateBegin
	IterableIterateHasCurrent
	IterableIterateCurrent
	IterableIterateNext
	IterableIterateEnd
	MutableIterableIterateCurrent
	IDisposableDispose
	ArraySize
	ArrayTItem
	ISizeableGetSize
	IArrayTGetItem
	IndexValue
	ObjectGetHashCode
	ObjectEquals
	ObjectToString
	ObjectReferenceEquals
	IntOpExplicitToPointer
	IntOpExplicitToInt32
	IntOpExplicitToInt64
	IntOpExplicitFromPointer
	IntOpExplicitFromInt32
	IntOpExplicitFromInt64
	UIntOpExplicitToPointer
	UIntOpExplicitToUInt32
	UIntOpExplicitToUInt64
	UIntOpExplicitFromPointer
	UIntOpExplicitFromUInt32
	UIntOpExplicitFromUInt64
	OptionGetValueOrDefault
	OptionGetValue
	OptionGetHasValue
	OptionCtor
	OptionOpImplicitFromT
	OptionOpExplicitToT

	SpecialMemberCount
)

// MemberFlags describe the kind and modifiers of a descriptor.
type MemberFlags uint8

const (
	MemberMethod      MemberFlags = 0x01
	MemberField       MemberFlags = 0x02
	MemberConstructor MemberFlags = 0x04
	MemberPropertyGet MemberFlags = 0x08
	MemberProperty    MemberFlags = 0x10
	MemberKindMask    MemberFlags = 0x1F
	MemberStatic      MemberFlags = 0x20
	MemberVirtual     MemberFlags = 0x40
)

func (f MemberFlags) Kind() MemberFlags { return f & MemberKindMask }
func (f MemberFlags) IsStatic() bool    { return f&MemberStatic != 0 }
func (f MemberFlags) IsVirtual() bool   { return f&MemberVirtual != 0 }
func (f MemberFlags) IsField() bool     { return f.Kind() == MemberField }

// MemberDescriptor is the static description of one special member.
// Signature[0] is the return type, or the field type for fields.
type MemberDescriptor struct {
	ID            SpecialMember
	Name          string
	Flags         MemberFlags
	DeclaringType SpecialType
	Arity         uint8
	Signature     []SigType
}

func (d *MemberDescriptor) ReturnType() SigType { return d.Signature[0] }

// Clone copies d together with its signature, so the copy shares no memory
// with the table it came from.
func (d *MemberDescriptor) Clone() MemberDescriptor {
	c := *d
	c.Signature = make([]SigType, len(d.Signature))
	for i, t := range d.Signature {
		c.Signature[i] = t.clone()
	}
	return c
}

// Params is empty for fields.
func (d *MemberDescriptor) Params() []SigType {
	if d.Flags.IsField() {
		return nil
	}
	return d.Signature[1:]
}

func (d *MemberDescriptor) ParameterCount() int { return len(d.Params()) }

func (d *MemberDescriptor) String() string {
	var sb strings.Builder
	sb.WriteString(d.DeclaringType.MetadataName())
	sb.WriteString("::")
	sb.WriteString(d.Name)
	if d.Flags.IsField() {
		sb.WriteString(" : ")
		sb.WriteString(d.Signature[0].String())
		return sb.String()
	}
	sb.WriteByte(' ')
	sb.WriteString(formatSignature(d.Signature[0], d.Params()))
	return sb.String()
}

var memberTable = [SpecialMemberCount]MemberDescriptor{
	StringCtorSZArrayChar:                {Name: ".ctor", Flags: MemberConstructor, DeclaringType: TypeString, Signature: []SigType{th(TypeVoid), arr(th(TypeRune))}},
	StringConcatStringString:             {Name: "Concat", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeString), th(TypeString), th(TypeString)}},
	StringConcatStringStringString:       {Name: "Concat", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeString), th(TypeString), th(TypeString), th(TypeString)}},
	StringConcatStringStringStringString: {Name: "Concat", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeString), th(TypeString), th(TypeString), th(TypeString), th(TypeString)}},
	StringConcatStringArray:              {Name: "Concat", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeString), arr(th(TypeString))}},
	StringConcatObject:                   {Name: "Concat", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeString), th(TypeObject)}},
	StringConcatObjectObject:             {Name: "Concat", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeString), th(TypeObject), th(TypeObject)}},
	StringConcatObjectObjectObject:       {Name: "Concat", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeString), th(TypeObject), th(TypeObject), th(TypeObject)}},
	StringConcatObjectArray:              {Name: "Concat", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeString), arr(th(TypeObject))}},
	StringOpEquality:                     {Name: "op_Equality", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeBool), th(TypeString), th(TypeString)}},
	StringOpInequality:                   {Name: "op_Inequality", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeBool), th(TypeString), th(TypeString)}},
	StringSize:                           {Name: "get_size", Flags: MemberPropertyGet, DeclaringType: TypeString, Signature: []SigType{th(TypeInt)}},
	StringItem:                           {Name: "get_item", Flags: MemberPropertyGet, DeclaringType: TypeString, Signature: []SigType{byref(th(TypeUInt8)), th(TypeInt)}},
	StringFormat:                         {Name: "Format", Flags: MemberMethod | MemberStatic, DeclaringType: TypeString, Signature: []SigType{th(TypeString), th(TypeString), arr(th(TypeObject))}},
	Float64IsNaN:                         {Name: "IsNaN", Flags: MemberMethod | MemberStatic, DeclaringType: TypeFloat64, Signature: []SigType{th(TypeBool), th(TypeFloat64)}},
	Float32IsNaN:                         {Name: "IsNaN", Flags: MemberMethod | MemberStatic, DeclaringType: TypeFloat32, Signature: []SigType{th(TypeBool), th(TypeFloat32)}},
	DelegateCombine:                      {Name: "Combine", Flags: MemberMethod | MemberStatic, DeclaringType: TypeDelegate, Signature: []SigType{th(TypeDelegate), th(TypeDelegate), th(TypeDelegate)}},
	DelegateRemove:                       {Name: "Remove", Flags: MemberMethod | MemberStatic, DeclaringType: TypeDelegate, Signature: []SigType{th(TypeDelegate), th(TypeDelegate), th(TypeDelegate)}},
	DelegateOpEquality:                   {Name: "op_Equality", Flags: MemberMethod | MemberStatic, DeclaringType: TypeDelegate, Signature: []SigType{th(TypeBool), th(TypeDelegate), th(TypeDelegate)}},
	DelegateOpInequality:                 {Name: "op_Inequality", Flags: MemberMethod | MemberStatic, DeclaringType: TypeDelegate, Signature: []SigType{th(TypeBool), th(TypeDelegate), th(TypeDelegate)}},
	IterableIterateBegin:                 {Name: "iterate_begin", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeIterable, Signature: []SigType{gp(1)}},
	IterableIterateHasCurrent:            {Name: "iterate_has_current", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeIterable, Signature: []SigType{th(TypeBool), byref(gp(1))}},
	IterableIterateCurrent:               {Name: "iterate_current", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeIterable, Signature: []SigType{gp(0), byref(gp(1))}},
	IterableIterateNext:                  {Name: "iterate_next", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeIterable, Signature: []SigType{th(TypeVoid), byref(gp(1))}},
	IterableIterateEnd:                   {Name: "iterate_end", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeIterable, Signature: []SigType{th(TypeVoid), byref(gp(1))}},
	MutableIterableIterateCurrent:        {Name: "iterate_current", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeMutableIterable, Signature: []SigType{byref(gp(0)), byref(gp(1))}},
	IDisposableDispose:                   {Name: "Dispose", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeIDisposable, Signature: []SigType{th(TypeVoid)}},
	ArraySize:                            {Name: "size", Flags: MemberProperty, DeclaringType: TypeArray, Signature: []SigType{th(TypeInt)}},
	ArrayTItem:                           {Name: "this[]", Flags: MemberProperty, DeclaringType: TypeArrayT, Signature: []SigType{byref(gp(0)), th(TypeInt)}},
	ISizeableGetSize:                     {Name: "get_size", Flags: MemberPropertyGet | MemberVirtual, DeclaringType: TypeISizeable, Signature: []SigType{th(TypeInt)}},
	IArrayTGetItem:                       {Name: "get_item", Flags: MemberPropertyGet | MemberVirtual, DeclaringType: TypeIArrayT, Signature: []SigType{byref(gp(0)), th(TypeInt)}},
	IndexValue:                           {Name: "value", Flags: MemberField, DeclaringType: TypeIndex, Signature: []SigType{th(TypeInt)}},
	ObjectGetHashCode:                    {Name: "GetHashCode", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeObject, Signature: []SigType{th(TypeInt32)}},
	ObjectEquals:                         {Name: "Equals", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeObject, Signature: []SigType{th(TypeBool), th(TypeObject)}},
	ObjectToString:                       {Name: "ToString", Flags: MemberMethod | MemberVirtual, DeclaringType: TypeObject, Signature: []SigType{th(TypeString)}},
	ObjectReferenceEquals:                {Name: "ReferenceEquals", Flags: MemberMethod | MemberStatic, DeclaringType: TypeObject, Signature: []SigType{th(TypeBool), th(TypeObject), th(TypeObject)}},
	IntOpExplicitToPointer:               {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeInt, Signature: []SigType{ptr(th(TypeVoid)), th(TypeInt)}},
	IntOpExplicitToInt32:                 {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeInt, Signature: []SigType{th(TypeInt32), th(TypeInt)}},
	IntOpExplicitToInt64:                 {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeInt, Signature: []SigType{th(TypeInt64), th(TypeInt)}},
	IntOpExplicitFromPointer:             {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeInt, Signature: []SigType{th(TypeInt), ptr(th(TypeVoid))}},
	IntOpExplicitFromInt32:               {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeInt, Signature: []SigType{th(TypeInt), th(TypeInt32)}},
	IntOpExplicitFromInt64:               {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeInt, Signature: []SigType{th(TypeInt), th(TypeInt64)}},
	UIntOpExplicitToPointer:              {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeUInt, Signature: []SigType{ptr(th(TypeVoid)), th(TypeUInt)}},
	UIntOpExplicitToUInt32:               {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeUInt, Signature: []SigType{th(TypeUInt32), th(TypeUInt)}},
	UIntOpExplicitToUInt64:               {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeUInt, Signature: []SigType{th(TypeUInt64), th(TypeUInt)}},
	UIntOpExplicitFromPointer:            {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeUInt, Signature: []SigType{th(TypeUInt), ptr(th(TypeVoid))}},
	UIntOpExplicitFromUInt32:             {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeUInt, Signature: []SigType{th(TypeUInt), th(TypeUInt32)}},
	UIntOpExplicitFromUInt64:             {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeUInt, Signature: []SigType{th(TypeUInt), th(TypeUInt64)}},
	OptionGetValueOrDefault:              {Name: "GetValueOrDefault", Flags: MemberMethod, DeclaringType: TypeOption, Signature: []SigType{gp(0)}},
	OptionGetValue:                       {Name: "get_value", Flags: MemberPropertyGet, DeclaringType: TypeOption, Signature: []SigType{gp(0)}},
	OptionGetHasValue:                    {Name: "get_has_value", Flags: MemberPropertyGet, DeclaringType: TypeOption, Signature: []SigType{th(TypeBool)}},
	OptionCtor:                           {Name: ".ctor", Flags: MemberConstructor, DeclaringType: TypeOption, Signature: []SigType{th(TypeVoid), gp(0)}},
	OptionOpImplicitFromT:                {Name: "op_Implicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeOption, Signature: []SigType{th(TypeOption), gp(0)}},
	OptionOpExplicitToT:                  {Name: "op_Explicit", Flags: MemberMethod | MemberStatic, DeclaringType: TypeOption, Signature: []SigType{gp(0), th(TypeOption)}},
}

func init() {
	for i := range memberTable {
		memberTable[i].ID = SpecialMember(i)
	}
}

// Descriptor returns a copy of the built-in descriptor of m; ok is false
// for out-of-range ids.
func Descriptor(m SpecialMember) (d MemberDescriptor, ok bool) {
	if m >= SpecialMemberCount {
		return MemberDescriptor{}, false
	}
	return memberTable[m].Clone(), true
}

// MemberNames lists descriptor names in id order. It is the name column the
// binary descriptor blob is decoded against.
func MemberNames() []string {
	names := make([]string, SpecialMemberCount)
	for i := range memberTable {
		names[i] = memberTable[i].Name
	}
	return names
}

func (m SpecialMember) String() string {
	if m < SpecialMemberCount {
		d := &memberTable[m]
		return d.DeclaringType.Name() + "." + d.Name
	}
	return "invalid"
}
