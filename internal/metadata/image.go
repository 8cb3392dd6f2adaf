package metadata

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

// Magic opens every image.
const Magic = "SMD1"

var ErrBadMagic = errors.New("metadata: not a metadata image")

type countingWriter struct {
	w   io.Writer
	n   int64
	err error
}

func (c *countingWriter) Write(p []byte) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	n, err := c.w.Write(p)
	c.n += int64(n)
	c.err = err
	return n, err
}

func (c *countingWriter) put(data any) {
	if c.err == nil {
		c.err = binary.Write(c, binary.LittleEndian, data)
	}
}

func (c *countingWriter) putCount(n int) {
	c.put(heapOffset(n))
}

// WriteTo writes the image.
func (b *Builder) WriteTo(w io.Writer) (int64, error) {
	cw := &countingWriter{w: w}
	cw.put([]byte(Magic))
	cw.putCount(len(b.strings))
	cw.put(b.strings)
	cw.putCount(len(b.blobs))
	cw.put(b.blobs)
	cw.put(b.Module)
	b.Tables.each(func(_ TableIndex, rows any, n int) {
		cw.putCount(n)
		if n > 0 {
			cw.put(rows)
		}
	})
	if cw.err != nil {
		return cw.n, fmt.Errorf("metadata: write image: %w", cw.err)
	}
	return cw.n, nil
}

// each visits the row tables in image order.
func (t *Tables) each(fn func(table TableIndex, rows any, n int)) {
	fn(TableAssemblyRef, t.AssemblyRefs, len(t.AssemblyRefs))
	fn(TableTypeRef, t.TypeRefs, len(t.TypeRefs))
	fn(TableTypeDef, t.TypeDefs, len(t.TypeDefs))
	fn(TableField, t.Fields, len(t.Fields))
	fn(TableMethodDef, t.Methods, len(t.Methods))
	fn(TableParam, t.Params, len(t.Params))
	fn(TableMemberRef, t.MemberRefs, len(t.MemberRefs))
	fn(TableConstant, t.Constants, len(t.Constants))
	fn(TableFieldMarshal, t.FieldMarshals, len(t.FieldMarshals))
	fn(TableCustomAttribute, t.CustomAttributes, len(t.CustomAttributes))
	fn(TableTypeSpec, t.TypeSpecs, len(t.TypeSpecs))
}

// Image is a decoded metadata image.
type Image struct {
	Tables
	strings []byte
	blobs   []byte
}

// ReadImage decodes an image written by Builder.WriteTo.
func ReadImage(data []byte) (*Image, error) {
	if !bytes.HasPrefix(data, []byte(Magic)) {
		return nil, ErrBadMagic
	}
	r := bytes.NewReader(data[len(Magic):])
	img := &Image{}
	var err error
	if img.strings, err = readHeap(r); err != nil {
		return nil, fmt.Errorf("metadata: #Strings: %w", err)
	}
	if img.blobs, err = readHeap(r); err != nil {
		return nil, fmt.Errorf("metadata: #Blob: %w", err)
	}
	if err := binary.Read(r, binary.LittleEndian, &img.Module); err != nil {
		return nil, fmt.Errorf("metadata: module: %w", truncated(err))
	}
	t := &img.Tables
	steps := []struct {
		table TableIndex
		read  func() error
	}{
		{TableAssemblyRef, func() error { return readInto(r, &t.AssemblyRefs) }},
		{TableTypeRef, func() error { return readInto(r, &t.TypeRefs) }},
		{TableTypeDef, func() error { return readInto(r, &t.TypeDefs) }},
		{TableField, func() error { return readInto(r, &t.Fields) }},
		{TableMethodDef, func() error { return readInto(r, &t.Methods) }},
		{TableParam, func() error { return readInto(r, &t.Params) }},
		{TableMemberRef, func() error { return readInto(r, &t.MemberRefs) }},
		{TableConstant, func() error { return readInto(r, &t.Constants) }},
		{TableFieldMarshal, func() error { return readInto(r, &t.FieldMarshals) }},
		{TableCustomAttribute, func() error { return readInto(r, &t.CustomAttributes) }},
		{TableTypeSpec, func() error { return readInto(r, &t.TypeSpecs) }},
	}
	for _, s := range steps {
		if err := s.read(); err != nil {
			return nil, fmt.Errorf("metadata: %s: %w", s.table, err)
		}
	}
	if r.Len() != 0 {
		return nil, fmt.Errorf("metadata: %d trailing bytes", r.Len())
	}
	return img, nil
}

func truncated(err error) error {
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return ErrTruncated
	}
	return err
}

func readCount(r *bytes.Reader) (int, error) {
	var n uint32
	if err := binary.Read(r, binary.LittleEndian, &n); err != nil {
		return 0, truncated(err)
	}
	return int(n), nil
}

func readHeap(r *bytes.Reader) ([]byte, error) {
	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	if n > r.Len() {
		return nil, ErrTruncated
	}
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, truncated(err)
	}
	return buf, nil
}

func readInto[T any](r *bytes.Reader, dst *[]T) error {
	rows, err := readRows[T](r)
	*dst = rows
	return err
}

// readRows reads a counted run of fixed-size rows. The count is checked
// against the remaining input before anything is allocated.
func readRows[T any](r *bytes.Reader) ([]T, error) {
	n, err := readCount(r)
	if err != nil {
		return nil, err
	}
	var zero T
	size := binary.Size(zero)
	if int64(n)*int64(size) > int64(r.Len()) {
		return nil, ErrTruncated
	}
	if n == 0 {
		return nil, nil
	}
	rows := make([]T, n)
	if err := binary.Read(r, binary.LittleEndian, rows); err != nil {
		return nil, truncated(err)
	}
	return rows, nil
}

// String reads #Strings at off.
func (img *Image) String(off uint32) (string, error) {
	if int64(off) >= int64(len(img.strings)) {
		return "", fmt.Errorf("metadata: string offset %d out of range", off)
	}
	end := bytes.IndexByte(img.strings[off:], 0)
	if end < 0 {
		return "", ErrTruncated
	}
	return string(img.strings[off : int(off)+end]), nil
}

// Blob reads #Blob at off.
func (img *Image) Blob(off uint32) ([]byte, error) {
	if int64(off) >= int64(len(img.blobs)) {
		return nil, fmt.Errorf("metadata: blob offset %d out of range", off)
	}
	size, n, err := ReadCompressedUint(img.blobs[off:])
	if err != nil {
		return nil, err
	}
	start := int(off) + n
	if uint64(size) > uint64(len(img.blobs)-start) {
		return nil, ErrTruncated
	}
	return img.blobs[start : start+int(size)], nil
}

// ModuleName is the name recorded in the Module row.
func (img *Image) ModuleName() (string, error) {
	return img.String(img.Module.Name)
}
