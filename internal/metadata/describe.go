package metadata

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// Entry is one row rendered for listings.
type Entry struct {
	Token  EntityHandle
	Name   string
	Detail string
}

func (img *Image) str(off uint32) string {
	s, err := img.String(off)
	if err != nil {
		return "<" + err.Error() + ">"
	}
	return s
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// TypeName renders a TypeDef, TypeRef or TypeSpec handle.
func (img *Image) TypeName(h EntityHandle) string {
	return img.typeName(h, 0)
}

func (img *Image) typeName(h EntityHandle, depth int) string {
	row := int(h.RowID())
	switch h.Table() {
	case TableTypeDef:
		if row >= 1 && row <= len(img.TypeDefs) {
			td := img.TypeDefs[row-1]
			return qualify(img.str(td.Namespace), img.str(td.Name))
		}
	case TableTypeRef:
		if row >= 1 && row <= len(img.TypeRefs) {
			tr := img.TypeRefs[row-1]
			return qualify(img.str(tr.Namespace), img.str(tr.Name))
		}
	case TableTypeSpec:
		if row >= 1 && row <= len(img.TypeSpecs) && depth < 8 {
			blob, err := img.Blob(img.TypeSpecs[row-1].Signature)
			if err == nil {
				s, err := FormatTypeSpec(blob, func(n EntityHandle) string { return img.typeName(n, depth+1) })
				if err == nil {
					return s
				}
			}
		}
	}
	return h.String()
}

func (img *Image) sig(off uint32, format func([]byte, TypeNamer) (string, error)) string {
	blob, err := img.Blob(off)
	if err == nil {
		var s string
		if s, err = format(blob, img.TypeName); err == nil {
			return s
		}
	}
	return "<" + err.Error() + ">"
}

// owner returns the TypeDef row owning list element row, given a column
// selecting the list start.
func (img *Image) owner(row int, start func(TypeDefRow) uint32) string {
	owner := ""
	for i, td := range img.TypeDefs {
		if int(start(td)) > row {
			break
		}
		owner = img.TypeName(NewHandle(TableTypeDef, uint32(i+1))) //nolint:gosec // i < rows read from a u32 count
	}
	return owner
}

// MemberName renders a MethodDef, MemberRef or Field handle as Type::name.
func (img *Image) MemberName(h EntityHandle) string {
	row := int(h.RowID())
	switch h.Table() {
	case TableMethodDef:
		if row >= 1 && row <= len(img.Methods) {
			return img.owner(row, func(td TypeDefRow) uint32 { return td.MethodList }) + "::" + img.str(img.Methods[row-1].Name)
		}
	case TableField:
		if row >= 1 && row <= len(img.Fields) {
			return img.owner(row, func(td TypeDefRow) uint32 { return td.FieldList }) + "::" + img.str(img.Fields[row-1].Name)
		}
	case TableMemberRef:
		if row >= 1 && row <= len(img.MemberRefs) {
			mr := img.MemberRefs[row-1]
			return img.parentName(mr.Class) + "::" + img.str(mr.Name)
		}
	}
	return h.String()
}

func (img *Image) parentName(class uint32) string {
	tag := class & (1<<MemberRefParent.Bits - 1)
	if int(tag) >= len(MemberRefParent.Tables) {
		return fmt.Sprintf("<bad parent %#x>", class)
	}
	h := MemberRefParent.Decode(class)
	if h.Table() == TableMethodDef {
		return img.MemberName(h)
	}
	return img.TypeName(h)
}

func hexValue(b []byte) string {
	if len(b) == 0 {
		return "(empty)"
	}
	return hex.EncodeToString(b)
}

// Entries lists every row in table order.
func (img *Image) Entries() []Entry {
	var out []Entry
	add := func(table TableIndex, i int, name, detail string) {
		out = append(out, Entry{Token: NewHandle(table, uint32(i+1)), Name: name, Detail: detail}) //nolint:gosec // row counts come from u32
	}
	for i, ar := range img.AssemblyRefs {
		add(TableAssemblyRef, i, img.str(ar.Name), "")
	}
	for i, tr := range img.TypeRefs {
		scope := ""
		if r := int(tr.ResolutionScope); r >= 1 && r <= len(img.AssemblyRefs) {
			scope = "[" + img.str(img.AssemblyRefs[r-1].Name) + "]"
		}
		add(TableTypeRef, i, qualify(img.str(tr.Namespace), img.str(tr.Name)), scope)
	}
	for i, td := range img.TypeDefs {
		detail := fmt.Sprintf("flags=%#x", td.Flags)
		if td.Extends != 0 {
			detail = "extends " + img.TypeName(img.decodeTypeDefOrRef(td.Extends)) + " " + detail
		}
		add(TableTypeDef, i, qualify(img.str(td.Namespace), img.str(td.Name)), detail)
	}
	for i, f := range img.Fields {
		add(TableField, i, img.MemberName(NewHandle(TableField, uint32(i+1))), img.sig(f.Signature, FormatFieldSignature)) //nolint:gosec // same
	}
	for i, m := range img.Methods {
		add(TableMethodDef, i, img.MemberName(NewHandle(TableMethodDef, uint32(i+1))), img.sig(m.Signature, FormatMethodSignature)) //nolint:gosec // same
	}
	for i, p := range img.Params {
		add(TableParam, i, img.str(p.Name), fmt.Sprintf("seq=%d flags=%#x", p.Sequence, p.Flags))
	}
	for i, mr := range img.MemberRefs {
		add(TableMemberRef, i, img.MemberName(NewHandle(TableMemberRef, uint32(i+1))), img.sig(mr.Signature, FormatMethodSignature)) //nolint:gosec // same
	}
	for i, c := range img.Constants {
		v, _ := img.Blob(c.Value)
		add(TableConstant, i, img.hasConstantName(c.Parent), fmt.Sprintf("type=0x%02X value=%s", c.Type, hexValue(v)))
	}
	for i, fm := range img.FieldMarshals {
		v, _ := img.Blob(fm.NativeType)
		add(TableFieldMarshal, i, img.hasFieldMarshalName(fm.Parent), "native="+hexValue(v))
	}
	for i, ca := range img.CustomAttributes {
		v, _ := img.Blob(ca.Value)
		add(TableCustomAttribute, i, img.hasCustomAttributeName(ca.Parent), img.ctorName(ca.Type)+" "+hexValue(v))
	}
	for i := range img.TypeSpecs {
		add(TableTypeSpec, i, img.TypeName(NewHandle(TableTypeSpec, uint32(i+1))), "") //nolint:gosec // same
	}
	return out
}

func (img *Image) decodeTypeDefOrRef(v uint32) EntityHandle {
	if v&3 == 3 {
		return 0
	}
	return TypeDefOrRef.Decode(v)
}

func (img *Image) hasConstantName(v uint32) string {
	if v&3 > 1 {
		return fmt.Sprintf("<bad parent %#x>", v)
	}
	h := HasConstant.Decode(v)
	if h.Table() == TableParam {
		if r := int(h.RowID()); r >= 1 && r <= len(img.Params) {
			return "param " + img.str(img.Params[r-1].Name)
		}
	}
	return img.MemberName(h)
}

func (img *Image) hasFieldMarshalName(v uint32) string {
	h := HasFieldMarshal.Decode(v)
	if h.Table() == TableParam {
		if r := int(h.RowID()); r >= 1 && r <= len(img.Params) {
			return "param " + img.str(img.Params[r-1].Name)
		}
	}
	return img.MemberName(h)
}

func (img *Image) hasCustomAttributeName(v uint32) string {
	tag := v & (1<<HasCustomAttribute.Bits - 1)
	if int(tag) >= len(HasCustomAttribute.Tables) || HasCustomAttribute.Tables[tag] == tableNone {
		return fmt.Sprintf("<bad parent %#x>", v)
	}
	h := HasCustomAttribute.Decode(v)
	switch h.Table() {
	case TableTypeDef, TableTypeRef, TableTypeSpec:
		return img.TypeName(h)
	case TableParam:
		if r := int(h.RowID()); r >= 1 && r <= len(img.Params) {
			return "param " + img.str(img.Params[r-1].Name)
		}
	case TableModule:
		return "module"
	}
	return img.MemberName(h)
}

func (img *Image) ctorName(v uint32) string {
	tag := v & (1<<CustomAttributeType.Bits - 1)
	if int(tag) >= len(CustomAttributeType.Tables) || CustomAttributeType.Tables[tag] == tableNone {
		return fmt.Sprintf("<bad constructor %#x>", v)
	}
	name := img.MemberName(CustomAttributeType.Decode(v))
	return strings.TrimSuffix(name, "::.ctor")
}
