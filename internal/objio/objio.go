// Package objio reads and writes the little-endian primitive stream used by
// persisted indexes: int32 values and UTF-16 code units.
package objio

import (
	"encoding/binary"
	"fmt"
	"io"
)

// Writer encodes primitives to an io.Writer.
type Writer struct {
	w   io.Writer
	n   int64
	buf [4]byte
}

func NewWriter(w io.Writer) *Writer {
	return &Writer{w: w}
}

func (w *Writer) WriteInt32(v int32) error {
	binary.LittleEndian.PutUint32(w.buf[:4], uint32(v)) //nolint:gosec // two's complement round-trips
	return w.put(w.buf[:4])
}

// WriteChar writes one UTF-16 code unit.
func (w *Writer) WriteChar(c uint16) error {
	binary.LittleEndian.PutUint16(w.buf[:2], c)
	return w.put(w.buf[:2])
}

// Written reports the number of bytes accepted by the underlying writer.
func (w *Writer) Written() int64 { return w.n }

func (w *Writer) put(p []byte) error {
	n, err := w.w.Write(p)
	w.n += int64(n)
	return err
}

// WriteChars writes a length-prefixed run of code units.
func (w *Writer) WriteChars(cs []uint16) error {
	if len(cs) > maxCount {
		return fmt.Errorf("objio: %d chars do not fit an int32 count", len(cs))
	}
	if err := w.WriteInt32(int32(len(cs))); err != nil { //nolint:gosec // bounded above
		return err
	}
	for _, c := range cs {
		if err := w.WriteChar(c); err != nil {
			return err
		}
	}
	return nil
}

// Reader decodes primitives written by Writer.
type Reader struct {
	r   io.Reader
	buf [4]byte
}

func NewReader(r io.Reader) *Reader {
	return &Reader{r: r}
}

const maxCount = 1<<31 - 1

func (r *Reader) ReadInt32() (int32, error) {
	if _, err := io.ReadFull(r.r, r.buf[:4]); err != nil {
		return 0, err
	}
	return int32(binary.LittleEndian.Uint32(r.buf[:4])), nil //nolint:gosec // two's complement round-trips
}

func (r *Reader) ReadChar() (uint16, error) {
	if _, err := io.ReadFull(r.r, r.buf[:2]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint16(r.buf[:2]), nil
}

// ReadCount reads an int32 element count and rejects negative values.
func (r *Reader) ReadCount() (int, error) {
	n, err := r.ReadInt32()
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("objio: negative count %d", n)
	}
	return int(n), nil
}

// ReadChars reads a run written by WriteChars. The slice grows as data
// arrives so a corrupt count cannot force a huge allocation.
func (r *Reader) ReadChars() ([]uint16, error) {
	n, err := r.ReadCount()
	if err != nil {
		return nil, err
	}
	out := make([]uint16, 0, min(n, 1<<12))
	for range n {
		c, err := r.ReadChar()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
