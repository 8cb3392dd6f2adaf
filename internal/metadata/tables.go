package metadata

import "fmt"

// TableIndex identifies a metadata table; values are the ECMA-335 table numbers.
type TableIndex uint8

const (
	TableModule          TableIndex = 0x00
	TableTypeRef         TableIndex = 0x01
	TableTypeDef         TableIndex = 0x02
	TableField           TableIndex = 0x04
	TableMethodDef       TableIndex = 0x06
	TableParam           TableIndex = 0x08
	TableMemberRef       TableIndex = 0x0A
	TableConstant        TableIndex = 0x0B
	TableCustomAttribute TableIndex = 0x0C
	TableFieldMarshal    TableIndex = 0x0D
	TableModuleRef       TableIndex = 0x1A
	TableTypeSpec        TableIndex = 0x1B
	TableAssemblyRef     TableIndex = 0x23

	// tableNone marks an unused tag in a coded index.
	tableNone TableIndex = 0xFF
)

func (t TableIndex) String() string {
	switch t {
	case TableModule:
		return "Module"
	case TableTypeRef:
		return "TypeRef"
	case TableTypeDef:
		return "TypeDef"
	case TableField:
		return "Field"
	case TableMethodDef:
		return "MethodDef"
	case TableParam:
		return "Param"
	case TableMemberRef:
		return "MemberRef"
	case TableConstant:
		return "Constant"
	case TableCustomAttribute:
		return "CustomAttribute"
	case TableFieldMarshal:
		return "FieldMarshal"
	case TableModuleRef:
		return "ModuleRef"
	case TableTypeSpec:
		return "TypeSpec"
	case TableAssemblyRef:
		return "AssemblyRef"
	}
	return fmt.Sprintf("Table(0x%02X)", uint8(t))
}

// Token type ids: the table number in the high byte of a token.
const (
	TokenModule          uint32 = 0x00000000
	TokenTypeRef         uint32 = 0x01000000
	TokenTypeDef         uint32 = 0x02000000
	TokenField           uint32 = 0x04000000
	TokenMethodDef       uint32 = 0x06000000
	TokenParam           uint32 = 0x08000000
	TokenMemberRef       uint32 = 0x0A000000
	TokenCustomAttribute uint32 = 0x0C000000
	TokenModuleRef       uint32 = 0x1A000000
	TokenTypeSpec        uint32 = 0x1B000000
	TokenAssemblyRef     uint32 = 0x23000000

	RIDMask       uint32 = 0x00FFFFFF
	TypeMask      uint32 = 0x7F000000
	RowIdBitCount        = 24
)

// EntityHandle is a token: table number in the high byte, row id in the low
// 24 bits. Row ids are 1-based; the zero handle is nil.
type EntityHandle uint32

// NewHandle builds a token. row must fit RIDMask.
func NewHandle(table TableIndex, row uint32) EntityHandle {
	if row&^RIDMask != 0 {
		panicRow(table, row)
	}
	return EntityHandle(uint32(table)<<RowIdBitCount | row)
}

func (h EntityHandle) Table() TableIndex { return TableIndex(uint32(h) >> RowIdBitCount) }
func (h EntityHandle) RowID() uint32     { return uint32(h) & RIDMask }
func (h EntityHandle) IsNil() bool       { return h.RowID() == 0 }

func (h EntityHandle) String() string {
	if h.IsNil() {
		return "nil"
	}
	return fmt.Sprintf("%s[%d]", h.Table(), h.RowID())
}
