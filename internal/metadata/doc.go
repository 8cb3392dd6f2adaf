// Package metadata builds and reads the portable metadata image written by
// the emitter: ECMA-335 style tables, #Strings and #Blob heaps, tokens and
// coded indices.
//
// The image is little-endian:
//
//	"SMD1"
//	u32 len, #Strings bytes
//	u32 len, #Blob bytes
//	Module row
//	per table: u32 count, rows
//
// Tables follow in the order AssemblyRef, TypeRef, TypeDef, Field,
// MethodDef, Param, MemberRef, Constant, FieldMarshal, CustomAttribute and
// TypeSpec.
//
// Row references inside tables are plain u32 values; coded indices keep the
// ECMA tag layout.
package metadata
