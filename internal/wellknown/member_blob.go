package wellknown

import (
	"errors"
	"fmt"
)

// The descriptor blob is the compact wire form of the member table:
//
//	flags:u8 declaringType:u8 arity:u8 [paramCount:u8] type{paramCount+1}
//
// Field records carry a single type and no count byte. A type is one of
//
//	TypeHandle specialType | GenericTypeParameter idx | GenericMethodParameter idx
//	SZArray type | Pointer type | ByReference type

var errBlobTruncated = errors.New("descriptor blob truncated")

// EncodeMemberBlob serializes descriptors in order.
func EncodeMemberBlob(descs []MemberDescriptor) []byte {
	out := make([]byte, 0, len(descs)*8)
	for i := range descs {
		d := &descs[i]
		out = append(out, byte(d.Flags), byte(d.DeclaringType), d.Arity)
		if !d.Flags.IsField() {
			out = append(out, byte(len(d.Signature)-1))
		}
		for _, t := range d.Signature {
			out = appendSigType(out, t)
		}
	}
	return out
}

func appendSigType(out []byte, t SigType) []byte {
	out = append(out, byte(t.Code))
	switch t.Code {
	case SigTypeHandle:
		return append(out, byte(t.Type))
	case SigGenericTypeParameter, SigGenericMethodParameter:
		return append(out, t.Index)
	case SigSZArray, SigPointer, SigByReference:
		return appendSigType(out, *t.Elem)
	}
	return out
}

type blobReader struct {
	data []byte
	pos  int
}

func (r *blobReader) readByte() (byte, error) {
	if r.pos >= len(r.data) {
		return 0, errBlobTruncated
	}
	b := r.data[r.pos]
	r.pos++
	return b, nil
}

func (r *blobReader) sigType(depth int) (SigType, error) {
	if depth > 8 {
		return SigType{}, fmt.Errorf("type nesting too deep at offset %d", r.pos)
	}
	b, err := r.readByte()
	if err != nil {
		return SigType{}, err
	}
	t := SigType{Code: SignatureTypeCode(b)}
	switch t.Code {
	case SigTypeHandle:
		v, err := r.readByte()
		if err != nil {
			return SigType{}, err
		}
		if v == 0 || SpecialType(v) >= SpecialTypeCount {
			return SigType{}, fmt.Errorf("unknown special type %d at offset %d", v, r.pos-1)
		}
		t.Type = SpecialType(v)
	case SigGenericTypeParameter, SigGenericMethodParameter:
		if t.Index, err = r.readByte(); err != nil {
			return SigType{}, err
		}
	case SigSZArray, SigPointer, SigByReference:
		elem, err := r.sigType(depth + 1)
		if err != nil {
			return SigType{}, err
		}
		t.Elem = &elem
	default:
		return SigType{}, fmt.Errorf("unexpected signature code 0x%02X at offset %d", b, r.pos-1)
	}
	return t, nil
}

// DecodeMemberBlob parses blob against names; record i gets names[i] and id i.
// The blob must contain exactly len(names) records.
func DecodeMemberBlob(blob []byte, names []string) ([]MemberDescriptor, error) {
	r := &blobReader{data: blob}
	out := make([]MemberDescriptor, 0, len(names))
	for i, name := range names {
		var hdr [3]byte
		for j := range hdr {
			b, err := r.readByte()
			if err != nil {
				return nil, fmt.Errorf("record %d (%s): %w", i, name, err)
			}
			hdr[j] = b
		}
		d := MemberDescriptor{
			ID:            SpecialMember(i),
			Name:          name,
			Flags:         MemberFlags(hdr[0]),
			DeclaringType: SpecialType(hdr[1]),
			Arity:         hdr[2],
		}
		if d.DeclaringType == TypeNone || d.DeclaringType >= SpecialTypeCount {
			return nil, fmt.Errorf("record %d (%s): invalid declaring type %d", i, name, hdr[1])
		}
		count := 1
		if !d.Flags.IsField() {
			n, err := r.readByte()
			if err != nil {
				return nil, fmt.Errorf("record %d (%s): %w", i, name, err)
			}
			count = int(n) + 1
		}
		d.Signature = make([]SigType, count)
		for j := range d.Signature {
			t, err := r.sigType(0)
			if err != nil {
				return nil, fmt.Errorf("record %d (%s): %w", i, name, err)
			}
			d.Signature[j] = t
		}
		out = append(out, d)
	}
	if r.pos != len(blob) {
		return nil, fmt.Errorf("descriptor blob has %d trailing bytes", len(blob)-r.pos)
	}
	return out, nil
}

// MustDecodeMemberBlob is DecodeMemberBlob for build-time tables; a malformed blob is a fatal fault.
func MustDecodeMemberBlob(blob []byte, names []string) []MemberDescriptor {
	descs, err := DecodeMemberBlob(blob, names)
	if err != nil {
		panic(fmt.Errorf("special member table: %w", err))
	}
	return descs
}

// MemberBlob encodes the built-in member table.
func MemberBlob() []byte {
	return EncodeMemberBlob(memberTable[:])
}
