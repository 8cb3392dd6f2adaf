package metadata

// TypeAttributes are TypeDef flags.
type TypeAttributes uint32

const (
	TypeNotPublic        TypeAttributes = 0x00000000
	TypePublic           TypeAttributes = 0x00000001
	TypeVisibilityMask   TypeAttributes = 0x00000007
	TypeSequentialLayout TypeAttributes = 0x00000008
	TypeInterface        TypeAttributes = 0x00000020
	TypeAbstract         TypeAttributes = 0x00000080
	TypeSealed           TypeAttributes = 0x00000100
	TypeSpecialName      TypeAttributes = 0x00000400
	TypeImport           TypeAttributes = 0x00001000
	TypeBeforeFieldInit  TypeAttributes = 0x00100000
	TypeRTSpecialName    TypeAttributes = 0x00000800
)

// FieldAttributes are Field flags.
type FieldAttributes uint16

const (
	FieldPrivate       FieldAttributes = 0x0001
	FieldFamANDAssem   FieldAttributes = 0x0002
	FieldAssembly      FieldAttributes = 0x0003
	FieldFamily        FieldAttributes = 0x0004
	FieldFamORAssem    FieldAttributes = 0x0005
	FieldPublic        FieldAttributes = 0x0006
	FieldAccessMask    FieldAttributes = 0x0007
	FieldStatic        FieldAttributes = 0x0010
	FieldInitOnly      FieldAttributes = 0x0020
	FieldLiteral       FieldAttributes = 0x0040
	FieldSpecialName   FieldAttributes = 0x0200
	FieldRTSpecialName FieldAttributes = 0x0400
	FieldHasDefault    FieldAttributes = 0x8000
)

// MethodAttributes are MethodDef flags.
type MethodAttributes uint16

const (
	MethodPrivate       MethodAttributes = 0x0001
	MethodFamANDAssem   MethodAttributes = 0x0002
	MethodAssembly      MethodAttributes = 0x0003
	MethodFamily        MethodAttributes = 0x0004
	MethodFamORAssem    MethodAttributes = 0x0005
	MethodPublic        MethodAttributes = 0x0006
	MethodAccessMask    MethodAttributes = 0x0007
	MethodStatic        MethodAttributes = 0x0010
	MethodFinal         MethodAttributes = 0x0020
	MethodVirtual       MethodAttributes = 0x0040
	MethodHideBySig     MethodAttributes = 0x0080
	MethodNewSlot       MethodAttributes = 0x0100
	MethodAbstract      MethodAttributes = 0x0400
	MethodSpecialName   MethodAttributes = 0x0800
	MethodPInvokeImpl   MethodAttributes = 0x2000
	MethodRTSpecialName MethodAttributes = 0x1000
)

// MethodImplAttributes are MethodDef implementation flags.
type MethodImplAttributes uint16

const (
	MethodImplIL           MethodImplAttributes = 0x0000
	MethodImplRuntime      MethodImplAttributes = 0x0003
	MethodImplInternalCall MethodImplAttributes = 0x1000
)

// ParamAttributes are Param flags.
type ParamAttributes uint16

const (
	ParamIn              ParamAttributes = 0x0001
	ParamOut             ParamAttributes = 0x0002
	ParamOptional        ParamAttributes = 0x0010
	ParamHasDefault      ParamAttributes = 0x1000
	ParamHasFieldMarshal ParamAttributes = 0x2000
)
