package metadata

import (
	"errors"
	"fmt"

	"fortio.org/safecast"

	"stark/internal/fault"
)

// Row layouts. Heap references are offsets; list columns are 1-based rows.
type (
	ModuleRow      struct{ Name uint32 }
	AssemblyRefRow struct{ Name uint32 }
	TypeRefRow     struct {
		ResolutionScope uint32 // AssemblyRef row
		Name, Namespace uint32
	}
	TypeDefRow struct {
		Flags                 uint32
		Name, Namespace       uint32
		Extends               uint32 // TypeDefOrRef
		FieldList, MethodList uint32
	}
	FieldRow struct {
		Flags           uint16
		Name, Signature uint32
	}
	MethodDefRow struct {
		ImplFlags, Flags uint16
		Name, Signature  uint32
		ParamList        uint32
	}
	ParamRow struct {
		Flags, Sequence uint16
		Name            uint32
	}
	MemberRefRow struct {
		Class           uint32 // MemberRefParent
		Name, Signature uint32
	}
	ConstantRow struct {
		Type   uint8
		_      uint8
		Parent uint32 // HasConstant
		Value  uint32
	}
	FieldMarshalRow struct {
		Parent     uint32 // HasFieldMarshal
		NativeType uint32
	}
	CustomAttributeRow struct {
		Parent uint32 // HasCustomAttribute
		Type   uint32 // CustomAttributeType
		Value  uint32
	}
	TypeSpecRow struct{ Signature uint32 }
)

// Tables holds every row of an image.
type Tables struct {
	Module           ModuleRow
	AssemblyRefs     []AssemblyRefRow
	TypeRefs         []TypeRefRow
	TypeDefs         []TypeDefRow
	Fields           []FieldRow
	Methods          []MethodDefRow
	Params           []ParamRow
	MemberRefs       []MemberRefRow
	Constants        []ConstantRow
	FieldMarshals    []FieldMarshalRow
	CustomAttributes []CustomAttributeRow
	TypeSpecs        []TypeSpecRow
}

// ErrRowLimit is returned when a table would need a row id past RIDMask.
var ErrRowLimit = errors.New("metadata: table row limit exceeded")

type memberRefKey struct {
	parent EntityHandle
	name   string
	sig    string
}

type typeRefKey struct {
	scope     EntityHandle
	namespace string
	name      string
}

// Builder accumulates tables and heaps. Types must be added with their
// fields and methods immediately after them, and methods with their params,
// since TypeDef and MethodDef own contiguous row ranges.
type Builder struct {
	Tables

	strings   []byte
	stringIdx map[string]uint32
	blobs     []byte
	blobIdx   map[string]uint32

	asmRefs    map[string]EntityHandle
	typeRefs   map[typeRefKey]EntityHandle
	memberRefs map[memberRefKey]EntityHandle
	typeSpecs  map[string]EntityHandle

	// maxRows is RIDMask outside tests.
	maxRows int
}

func NewBuilder(module string) *Builder {
	b := &Builder{
		strings:    []byte{0},
		stringIdx:  map[string]uint32{"": 0},
		blobs:      []byte{0},
		blobIdx:    map[string]uint32{"": 0},
		asmRefs:    make(map[string]EntityHandle),
		typeRefs:   make(map[typeRefKey]EntityHandle),
		memberRefs: make(map[memberRefKey]EntityHandle),
		typeSpecs:  make(map[string]EntityHandle),
		maxRows:    int(RIDMask),
	}
	b.Module.Name = b.String(module)
	return b
}

func heapOffset(n int) uint32 {
	off, err := safecast.Conv[uint32](n)
	fault.Invariant(err == nil, "metadata: heap offset %d does not fit u32", n)
	return off
}

// String interns s in #Strings.
func (b *Builder) String(s string) uint32 {
	if off, ok := b.stringIdx[s]; ok {
		return off
	}
	off := heapOffset(len(b.strings))
	b.strings = append(b.strings, s...)
	b.strings = append(b.strings, 0)
	b.stringIdx[s] = off
	return off
}

// Blob interns data in #Blob with a compressed length prefix.
func (b *Builder) Blob(data []byte) uint32 {
	if off, ok := b.blobIdx[string(data)]; ok {
		return off
	}
	off := heapOffset(len(b.blobs))
	b.blobs = AppendCompressedUint(b.blobs, uint32(len(data))) //nolint:gosec // AppendCompressedUint rejects oversized blobs
	b.blobs = append(b.blobs, data...)
	b.blobIdx[string(data)] = off
	return off
}

// nextRow returns the row id the next row of a table with n rows gets.
func (b *Builder) nextRow(table TableIndex, n int) (uint32, error) {
	if n >= b.maxRows {
		return 0, fmt.Errorf("%w: %s", ErrRowLimit, table)
	}
	return uint32(n + 1), nil //nolint:gosec // n < maxRows <= RIDMask
}

// AddAssemblyRef references an assembly by name, once.
func (b *Builder) AddAssemblyRef(name string) (EntityHandle, error) {
	if h, ok := b.asmRefs[name]; ok {
		return h, nil
	}
	row, err := b.nextRow(TableAssemblyRef, len(b.AssemblyRefs))
	if err != nil {
		return 0, err
	}
	b.AssemblyRefs = append(b.AssemblyRefs, AssemblyRefRow{Name: b.String(name)})
	h := NewHandle(TableAssemblyRef, row)
	b.asmRefs[name] = h
	return h, nil
}

// AddTypeRef references a type in another assembly, once per name.
func (b *Builder) AddTypeRef(scope EntityHandle, namespace, name string) (EntityHandle, error) {
	key := typeRefKey{scope: scope, namespace: namespace, name: name}
	if h, ok := b.typeRefs[key]; ok {
		return h, nil
	}
	row, err := b.nextRow(TableTypeRef, len(b.TypeRefs))
	if err != nil {
		return 0, err
	}
	b.TypeRefs = append(b.TypeRefs, TypeRefRow{
		ResolutionScope: scope.RowID(),
		Name:            b.String(name),
		Namespace:       b.String(namespace),
	})
	h := NewHandle(TableTypeRef, row)
	b.typeRefs[key] = h
	return h, nil
}

// AddTypeDef starts a type. Fields and methods added next belong to it.
func (b *Builder) AddTypeDef(flags TypeAttributes, namespace, name string, extends EntityHandle) (EntityHandle, error) {
	row, err := b.nextRow(TableTypeDef, len(b.TypeDefs))
	if err != nil {
		return 0, err
	}
	b.TypeDefs = append(b.TypeDefs, TypeDefRow{
		Flags:      uint32(flags),
		Name:       b.String(name),
		Namespace:  b.String(namespace),
		Extends:    TypeDefOrRef.Encode(extends),
		FieldList:  uint32(len(b.Fields) + 1),  //nolint:gosec // bounded by nextRow
		MethodList: uint32(len(b.Methods) + 1), //nolint:gosec // same
	})
	return NewHandle(TableTypeDef, row), nil
}

func (b *Builder) AddField(flags FieldAttributes, name string, sig []byte) (EntityHandle, error) {
	row, err := b.nextRow(TableField, len(b.Fields))
	if err != nil {
		return 0, err
	}
	b.Fields = append(b.Fields, FieldRow{Flags: uint16(flags), Name: b.String(name), Signature: b.Blob(sig)})
	return NewHandle(TableField, row), nil
}

// AddMethodDef adds a method to the current type. Params added next belong to it.
func (b *Builder) AddMethodDef(flags MethodAttributes, impl MethodImplAttributes, name string, sig []byte) (EntityHandle, error) {
	row, err := b.nextRow(TableMethodDef, len(b.Methods))
	if err != nil {
		return 0, err
	}
	b.Methods = append(b.Methods, MethodDefRow{
		ImplFlags: uint16(impl),
		Flags:     uint16(flags),
		Name:      b.String(name),
		Signature: b.Blob(sig),
		ParamList: uint32(len(b.Params) + 1), //nolint:gosec // bounded by nextRow
	})
	return NewHandle(TableMethodDef, row), nil
}

// AddParam adds a parameter row; sequence 0 is the return value.
func (b *Builder) AddParam(flags ParamAttributes, sequence uint16, name string) (EntityHandle, error) {
	row, err := b.nextRow(TableParam, len(b.Params))
	if err != nil {
		return 0, err
	}
	b.Params = append(b.Params, ParamRow{Flags: uint16(flags), Sequence: sequence, Name: b.String(name)})
	return NewHandle(TableParam, row), nil
}

// AddMemberRef references a member of parent, once per name and signature.
func (b *Builder) AddMemberRef(parent EntityHandle, name string, sig []byte) (EntityHandle, error) {
	key := memberRefKey{parent: parent, name: name, sig: string(sig)}
	if h, ok := b.memberRefs[key]; ok {
		return h, nil
	}
	row, err := b.nextRow(TableMemberRef, len(b.MemberRefs))
	if err != nil {
		return 0, err
	}
	b.MemberRefs = append(b.MemberRefs, MemberRefRow{
		Class:     MemberRefParent.Encode(parent),
		Name:      b.String(name),
		Signature: b.Blob(sig),
	})
	h := NewHandle(TableMemberRef, row)
	b.memberRefs[key] = h
	return h, nil
}

// AddTypeSpec adds a type specification, once per signature.
func (b *Builder) AddTypeSpec(sig []byte) (EntityHandle, error) {
	if h, ok := b.typeSpecs[string(sig)]; ok {
		return h, nil
	}
	row, err := b.nextRow(TableTypeSpec, len(b.TypeSpecs))
	if err != nil {
		return 0, err
	}
	b.TypeSpecs = append(b.TypeSpecs, TypeSpecRow{Signature: b.Blob(sig)})
	h := NewHandle(TableTypeSpec, row)
	b.typeSpecs[string(sig)] = h
	return h, nil
}

// AddConstant attaches a default value to a field or parameter.
func (b *Builder) AddConstant(parent EntityHandle, typ ElementType, value []byte) error {
	if _, err := b.nextRow(TableConstant, len(b.Constants)); err != nil {
		return err
	}
	b.Constants = append(b.Constants, ConstantRow{Type: uint8(typ), Parent: HasConstant.Encode(parent), Value: b.Blob(value)})
	return nil
}

// AddFieldMarshal attaches a native type descriptor to a field or parameter.
func (b *Builder) AddFieldMarshal(parent EntityHandle, descriptor []byte) error {
	if _, err := b.nextRow(TableFieldMarshal, len(b.FieldMarshals)); err != nil {
		return err
	}
	b.FieldMarshals = append(b.FieldMarshals, FieldMarshalRow{Parent: HasFieldMarshal.Encode(parent), NativeType: b.Blob(descriptor)})
	return nil
}

// AddCustomAttribute applies the attribute constructed by ctor to parent.
func (b *Builder) AddCustomAttribute(parent, ctor EntityHandle, value []byte) error {
	if _, err := b.nextRow(TableCustomAttribute, len(b.CustomAttributes)); err != nil {
		return err
	}
	b.CustomAttributes = append(b.CustomAttributes, CustomAttributeRow{
		Parent: HasCustomAttribute.Encode(parent),
		Type:   CustomAttributeType.Encode(ctor),
		Value:  b.Blob(value),
	})
	return nil
}
