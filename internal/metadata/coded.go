package metadata

import (
	"stark/internal/fault"
)

// MethodDef-or-MemberRef coded index: one tag bit in the low position.
const (
	MethodDefOrRefBits    = 1
	MethodDefOrRefTagMask = 0x1
	MethodDefOrRefDef     = 0x0
	MethodDefOrRefRef     = 0x1

	// methodDefOrRefTokenTypes holds the token type byte of each tag, one byte
	// per tag starting at the low byte.
	methodDefOrRefTokenTypes = TokenMethodDef>>24 | TokenMemberRef>>16
)

// EncodeMethodDefOrRef packs a MethodDef or MemberRef row. row is not range
// checked so corrupt values can be produced for decoder tests.
func EncodeMethodDefOrRef(table TableIndex, row uint32) uint32 {
	switch table {
	case TableMethodDef:
		return row<<MethodDefOrRefBits | MethodDefOrRefDef
	case TableMemberRef:
		return row<<MethodDefOrRefBits | MethodDefOrRefRef
	}
	fault.Unreachable("MethodDefOrRef cannot reference %s", table)
	return 0
}

// MethodDefOrRefToHandle decodes a MethodDefOrRef value. A row id beyond the
// 24-bit budget is an invalid-coded-index fault.
func MethodDefOrRefToHandle(v uint32) EntityHandle {
	tokenType := (methodDefOrRefTokenTypes >> ((v & MethodDefOrRefTagMask) << 3)) << RowIdBitCount
	row := v >> MethodDefOrRefBits
	if row&^RIDMask != 0 {
		fault.InvalidCodedIndex(v)
	}
	return EntityHandle(tokenType | row)
}

// CodedIndex describes a tagged reference into one of several tables. The
// tag is the position of the table in Tables.
type CodedIndex struct {
	Name   string
	Bits   uint
	Tables []TableIndex
}

var (
	TypeDefOrRef = CodedIndex{Name: "TypeDefOrRef", Bits: 2,
		Tables: []TableIndex{TableTypeDef, TableTypeRef, TableTypeSpec}}
	HasConstant = CodedIndex{Name: "HasConstant", Bits: 2,
		Tables: []TableIndex{TableField, TableParam}}
	HasCustomAttribute = CodedIndex{Name: "HasCustomAttribute", Bits: 5,
		Tables: []TableIndex{TableMethodDef, TableField, TableTypeRef, TableTypeDef, TableParam,
			tableNone, TableMemberRef, TableModule, tableNone, tableNone, tableNone, tableNone,
			TableModuleRef, TableTypeSpec, tableNone, TableAssemblyRef}}
	HasFieldMarshal = CodedIndex{Name: "HasFieldMarshal", Bits: 1,
		Tables: []TableIndex{TableField, TableParam}}
	CustomAttributeType = CodedIndex{Name: "CustomAttributeType", Bits: 3,
		Tables: []TableIndex{tableNone, tableNone, TableMethodDef, TableMemberRef}}
	MemberRefParent = CodedIndex{Name: "MemberRefParent", Bits: 3,
		Tables: []TableIndex{TableTypeDef, TableTypeRef, TableModuleRef, TableMethodDef, TableTypeSpec}}
)

func (c *CodedIndex) tag(table TableIndex) (uint32, bool) {
	for i, t := range c.Tables {
		if t == table && t != tableNone {
			return uint32(i), true //nolint:gosec // tables are short
		}
	}
	return 0, false
}

// Accepts reports whether table can be referenced through c.
func (c *CodedIndex) Accepts(table TableIndex) bool {
	_, ok := c.tag(table)
	return ok
}

// Encode packs h. A nil handle encodes as zero.
func (c *CodedIndex) Encode(h EntityHandle) uint32 {
	if h.IsNil() {
		return 0
	}
	tag, ok := c.tag(h.Table())
	if !ok {
		fault.Unreachable("%s cannot reference %s", c.Name, h.Table())
	}
	return h.RowID()<<c.Bits | tag
}

// Decode unpacks v. An unused tag or an oversized row id is an
// invalid-coded-index fault.
func (c *CodedIndex) Decode(v uint32) EntityHandle {
	tag := v & (1<<c.Bits - 1)
	row := v >> c.Bits
	if int(tag) >= len(c.Tables) || c.Tables[tag] == tableNone || row&^RIDMask != 0 {
		fault.InvalidCodedIndex(v)
	}
	if row == 0 {
		return 0
	}
	return NewHandle(c.Tables[tag], row)
}

func panicRow(table TableIndex, row uint32) {
	fault.Invariant(false, "row %d of %s exceeds the row id budget", row, table)
}
