package metadata

import (
	"errors"
	"unicode/utf8"

	"stark/internal/fault"
)

// MaxCompressedUint is the largest value a compressed integer can hold.
const MaxCompressedUint = 0x1FFFFFFF

var (
	ErrTruncated      = errors.New("metadata: truncated data")
	ErrBadCompression = errors.New("metadata: bad compressed integer")
)

// AppendCompressedUint encodes v in one, two or four bytes, big-endian with
// the length in the leading bits.
func AppendCompressedUint(b []byte, v uint32) []byte {
	switch {
	case v <= 0x7F:
		return append(b, byte(v))
	case v <= 0x3FFF:
		return append(b, byte(v>>8)|0x80, byte(v))
	case v <= MaxCompressedUint:
		return append(b, byte(v>>24)|0xC0, byte(v>>16), byte(v>>8), byte(v))
	}
	fault.Invariant(false, "compressed integer %d out of range", v)
	return b
}

// ReadCompressedUint decodes a value from the front of b and returns it with
// the number of bytes consumed.
func ReadCompressedUint(b []byte) (uint32, int, error) {
	if len(b) == 0 {
		return 0, 0, ErrTruncated
	}
	switch lead := b[0]; {
	case lead&0x80 == 0:
		return uint32(lead), 1, nil
	case lead&0xC0 == 0x80:
		if len(b) < 2 {
			return 0, 0, ErrTruncated
		}
		return uint32(lead&0x3F)<<8 | uint32(b[1]), 2, nil
	case lead&0xE0 == 0xC0:
		if len(b) < 4 {
			return 0, 0, ErrTruncated
		}
		return uint32(lead&0x1F)<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3]), 4, nil
	}
	return 0, 0, ErrBadCompression
}

// AppendSerString writes a custom attribute string: 0xFF for null, else the
// compressed UTF-8 length and the bytes.
func AppendSerString(b []byte, s string, null bool) []byte {
	if null {
		return append(b, 0xFF)
	}
	fault.Invariant(len(s) <= MaxCompressedUint, "attribute string of %d bytes", len(s))
	b = AppendCompressedUint(b, uint32(len(s))) //nolint:gosec // checked above
	return append(b, s...)
}

// ReadSerString is the inverse of AppendSerString.
func ReadSerString(b []byte) (s string, null bool, n int, err error) {
	if len(b) > 0 && b[0] == 0xFF {
		return "", true, 1, nil
	}
	size, n, err := ReadCompressedUint(b)
	if err != nil {
		return "", false, 0, err
	}
	if uint64(len(b)-n) < uint64(size) {
		return "", false, 0, ErrTruncated
	}
	s = string(b[n : n+int(size)])
	if !utf8.ValidString(s) {
		return "", false, 0, errors.New("metadata: string is not UTF-8")
	}
	return s, false, n + int(size), nil
}
