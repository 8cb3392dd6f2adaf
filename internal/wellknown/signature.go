package wellknown

import (
	"fmt"
	"strings"
)

// SignatureTypeCode is the element code used in member descriptors and
// attribute constructor signatures. Values follow ECMA-335 element types,
// except TypeHandle which is a descriptor-only escape.
type SignatureTypeCode uint8

const (
	SigInvalid                SignatureTypeCode = 0x00
	SigVoid                   SignatureTypeCode = 0x01
	SigBoolean                SignatureTypeCode = 0x02
	SigRune                   SignatureTypeCode = 0x03
	SigInt8                   SignatureTypeCode = 0x04
	SigUInt8                  SignatureTypeCode = 0x05
	SigInt16                  SignatureTypeCode = 0x06
	SigUInt16                 SignatureTypeCode = 0x07
	SigInt32                  SignatureTypeCode = 0x08
	SigUInt32                 SignatureTypeCode = 0x09
	SigInt64                  SignatureTypeCode = 0x0A
	SigUInt64                 SignatureTypeCode = 0x0B
	SigFloat32                SignatureTypeCode = 0x0C
	SigFloat64                SignatureTypeCode = 0x0D
	SigString                 SignatureTypeCode = 0x0E
	SigPointer                SignatureTypeCode = 0x0F
	SigByReference            SignatureTypeCode = 0x10
	SigGenericTypeParameter   SignatureTypeCode = 0x13
	SigObject                 SignatureTypeCode = 0x1C
	SigSZArray                SignatureTypeCode = 0x1D
	SigGenericMethodParameter SignatureTypeCode = 0x1E
	SigTypeHandle             SignatureTypeCode = 0x40
)

// SigInstance marks an instance (hasthis) attribute constructor signature.
const SigInstance byte = 0x20

// SigType is one decoded type in a member descriptor signature.
type SigType struct {
	Code  SignatureTypeCode
	Type  SpecialType // SigTypeHandle
	Index uint8       // generic parameter ordinal
	Elem  *SigType    // SigSZArray, SigPointer, SigByReference
}

func (t SigType) clone() SigType {
	if t.Elem != nil {
		e := t.Elem.clone()
		t.Elem = &e
	}
	return t
}

func th(t SpecialType) SigType { return SigType{Code: SigTypeHandle, Type: t} }
func gp(i uint8) SigType       { return SigType{Code: SigGenericTypeParameter, Index: i} }
func arr(e SigType) SigType    { return SigType{Code: SigSZArray, Elem: &e} }
func ptr(e SigType) SigType    { return SigType{Code: SigPointer, Elem: &e} }
func byref(e SigType) SigType  { return SigType{Code: SigByReference, Elem: &e} }

// IsByRef reports whether the type is a managed reference.
func (s SigType) IsByRef() bool { return s.Code == SigByReference }

// Equal compares structurally.
func (s SigType) Equal(o SigType) bool {
	if s.Code != o.Code || s.Type != o.Type || s.Index != o.Index {
		return false
	}
	if s.Elem == nil || o.Elem == nil {
		return s.Elem == nil && o.Elem == nil
	}
	return s.Elem.Equal(*o.Elem)
}

func (s SigType) String() string {
	switch s.Code {
	case SigTypeHandle:
		return s.Type.String()
	case SigGenericTypeParameter:
		return fmt.Sprintf("!%d", s.Index)
	case SigGenericMethodParameter:
		return fmt.Sprintf("!!%d", s.Index)
	case SigSZArray:
		return s.Elem.String() + "[]"
	case SigPointer:
		return s.Elem.String() + "*"
	case SigByReference:
		return "ref " + s.Elem.String()
	}
	return fmt.Sprintf("sig(0x%02X)", uint8(s.Code))
}

func formatSignature(ret SigType, params []SigType) string {
	var sb strings.Builder
	sb.WriteString(ret.String())
	sb.WriteByte('(')
	for i, p := range params {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(p.String())
	}
	sb.WriteByte(')')
	return sb.String()
}
