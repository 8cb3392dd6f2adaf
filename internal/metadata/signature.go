package metadata

import (
	"fmt"
	"strings"
)

// ElementType is a signature element code.
type ElementType uint8

const (
	ElemEnd         ElementType = 0x00
	ElemVoid        ElementType = 0x01
	ElemBoolean     ElementType = 0x02
	ElemChar        ElementType = 0x03
	ElemI1          ElementType = 0x04
	ElemU1          ElementType = 0x05
	ElemI2          ElementType = 0x06
	ElemU2          ElementType = 0x07
	ElemI4          ElementType = 0x08
	ElemU4          ElementType = 0x09
	ElemI8          ElementType = 0x0A
	ElemU8          ElementType = 0x0B
	ElemR4          ElementType = 0x0C
	ElemR8          ElementType = 0x0D
	ElemString      ElementType = 0x0E
	ElemPtr         ElementType = 0x0F
	ElemByRef       ElementType = 0x10
	ElemValueType   ElementType = 0x11
	ElemClass       ElementType = 0x12
	ElemVar         ElementType = 0x13
	ElemGenericInst ElementType = 0x15
	ElemI           ElementType = 0x18
	ElemU           ElementType = 0x19
	ElemObject      ElementType = 0x1C
	ElemSZArray     ElementType = 0x1D
	ElemMVar        ElementType = 0x1E
	ElemCModReqd    ElementType = 0x1F
	ElemCModOpt     ElementType = 0x20
)

var primitiveNames = map[ElementType]string{
	ElemVoid: "void", ElemBoolean: "bool", ElemChar: "rune",
	ElemI1: "i8", ElemU1: "u8", ElemI2: "i16", ElemU2: "u16",
	ElemI4: "i32", ElemU4: "u32", ElemI8: "i64", ElemU8: "u64",
	ElemR4: "f32", ElemR8: "f64", ElemString: "string", ElemObject: "object",
	ElemI: "int", ElemU: "uint",
}

// Signature headers.
const (
	SigDefault  byte = 0x00
	SigField    byte = 0x06
	SigGeneric  byte = 0x10
	SigHasThis  byte = 0x20
	sigConvMask byte = 0x0F
)

// SigBuilder accumulates a signature blob.
type SigBuilder struct {
	buf []byte
}

func (s *SigBuilder) Byte(b byte)                 { s.buf = append(s.buf, b) }
func (s *SigBuilder) Element(e ElementType)       { s.buf = append(s.buf, byte(e)) }
func (s *SigBuilder) CompressedUint(v uint32)     { s.buf = AppendCompressedUint(s.buf, v) }
func (s *SigBuilder) Bytes() []byte               { return s.buf }
func (s *SigBuilder) Len() int                    { return len(s.buf) }
func (s *SigBuilder) TypeDefOrRef(h EntityHandle) { s.CompressedUint(TypeDefOrRef.Encode(h)) }

// CustomModifier writes modopt(h) or modreq(h).
func (s *SigBuilder) CustomModifier(h EntityHandle, optional bool) {
	if optional {
		s.Element(ElemCModOpt)
	} else {
		s.Element(ElemCModReqd)
	}
	s.TypeDefOrRef(h)
}

// TypeNamer renders a TypeDef, TypeRef or TypeSpec handle.
type TypeNamer func(EntityHandle) string

type sigReader struct {
	b    []byte
	pos  int
	name TypeNamer
}

func (r *sigReader) byte() (byte, error) {
	if r.pos >= len(r.b) {
		return 0, ErrTruncated
	}
	c := r.b[r.pos]
	r.pos++
	return c, nil
}

func (r *sigReader) uint() (uint32, error) {
	v, n, err := ReadCompressedUint(r.b[r.pos:])
	r.pos += n
	return v, err
}

func (r *sigReader) typeRef() (string, error) {
	v, err := r.uint()
	if err != nil {
		return "", err
	}
	h := TypeDefOrRef.Decode(v)
	if r.name == nil {
		return h.String(), nil
	}
	return r.name(h), nil
}

// typ renders one type, trailing custom modifiers included.
func (r *sigReader) typ(depth int) (string, error) {
	if depth > 32 {
		return "", fmt.Errorf("metadata: signature nested too deeply")
	}
	var mods []string
	for {
		c, err := r.byte()
		if err != nil {
			return "", err
		}
		e := ElementType(c)
		if e == ElemCModOpt || e == ElemCModReqd {
			t, err := r.typeRef()
			if err != nil {
				return "", err
			}
			if e == ElemCModOpt {
				mods = append(mods, "modopt("+t+")")
			} else {
				mods = append(mods, "modreq("+t+")")
			}
			continue
		}
		s, err := r.bare(e, depth)
		if err != nil {
			return "", err
		}
		for _, m := range mods {
			s += " " + m
		}
		return s, nil
	}
}

func (r *sigReader) bare(e ElementType, depth int) (string, error) {
	if name, ok := primitiveNames[e]; ok {
		return name, nil
	}
	switch e {
	case ElemClass, ElemValueType:
		return r.typeRef()
	case ElemSZArray, ElemPtr, ElemByRef:
		elem, err := r.typ(depth + 1)
		if err != nil {
			return "", err
		}
		switch e {
		case ElemSZArray:
			return elem + "[]", nil
		case ElemPtr:
			return elem + "*", nil
		}
		return "ref " + elem, nil
	case ElemVar, ElemMVar:
		n, err := r.uint()
		if err != nil {
			return "", err
		}
		if e == ElemVar {
			return fmt.Sprintf("!%d", n), nil
		}
		return fmt.Sprintf("!!%d", n), nil
	case ElemGenericInst:
		kind, err := r.byte()
		if err != nil {
			return "", err
		}
		if ElementType(kind) != ElemClass && ElementType(kind) != ElemValueType {
			return "", fmt.Errorf("metadata: generic instance of element 0x%02X", kind)
		}
		def, err := r.typeRef()
		if err != nil {
			return "", err
		}
		n, err := r.uint()
		if err != nil {
			return "", err
		}
		if int(n) > len(r.b)-r.pos {
			return "", ErrTruncated
		}
		args := make([]string, 0, n)
		for range n {
			a, err := r.typ(depth + 1)
			if err != nil {
				return "", err
			}
			args = append(args, a)
		}
		return def + "<" + strings.Join(args, ", ") + ">", nil
	}
	return "", fmt.Errorf("metadata: unknown element type 0x%02X", uint8(e))
}

func (r *sigReader) done(s string, err error) (string, error) {
	if err != nil {
		return "", err
	}
	if r.pos != len(r.b) {
		return "", fmt.Errorf("metadata: %d trailing signature bytes", len(r.b)-r.pos)
	}
	return s, nil
}

// FormatFieldSignature renders a field signature blob.
func FormatFieldSignature(blob []byte, name TypeNamer) (string, error) {
	r := &sigReader{b: blob, name: name}
	h, err := r.byte()
	if err != nil {
		return "", err
	}
	if h != SigField {
		return "", fmt.Errorf("metadata: field signature header 0x%02X", h)
	}
	return r.done(r.typ(0))
}

// FormatTypeSpec renders a TypeSpec signature blob.
func FormatTypeSpec(blob []byte, name TypeNamer) (string, error) {
	r := &sigReader{b: blob, name: name}
	return r.done(r.typ(0))
}

// FormatMethodSignature renders a method or member reference signature as
// "[instance ]ret <n>(params)".
func FormatMethodSignature(blob []byte, name TypeNamer) (string, error) {
	r := &sigReader{b: blob, name: name}
	h, err := r.byte()
	if err != nil {
		return "", err
	}
	if h&sigConvMask != SigDefault {
		return "", fmt.Errorf("metadata: method signature header 0x%02X", h)
	}
	var sb strings.Builder
	if h&SigHasThis != 0 {
		sb.WriteString("instance ")
	}
	generic := uint32(0)
	if h&SigGeneric != 0 {
		if generic, err = r.uint(); err != nil {
			return "", err
		}
	}
	count, err := r.uint()
	if err != nil {
		return "", err
	}
	ret, err := r.typ(0)
	if err != nil {
		return "", err
	}
	sb.WriteString(ret)
	sb.WriteByte(' ')
	if generic > 0 {
		fmt.Fprintf(&sb, "<%d>", generic)
	}
	sb.WriteByte('(')
	for i := range count {
		if r.pos >= len(r.b) {
			return "", ErrTruncated
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		p, err := r.typ(0)
		if err != nil {
			return "", err
		}
		sb.WriteString(p)
	}
	sb.WriteByte(')')
	return r.done(sb.String(), nil)
}
