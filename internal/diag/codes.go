package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Объявления и связывание
	DclInfo                   Code = 1000
	DclIntegralTypeExpected   Code = 1001
	DclTypeNotFound           Code = 1002
	DclBadModifierCombination Code = 1003
	DclDuplicateDeclaration   Code = 1004
	DclBadArity               Code = 1005
	DclBadEnumMemberValue     Code = 1006
	DclTypeNotGeneric         Code = 1007
	DclNullableReferenceType  Code = 1008
	DclBadParameterDefault    Code = 1009
	DclBadBaseType            Code = 1010
	DclBadAttribute           Code = 1011

	// Операторы и перегрузки
	OprInfo                    Code = 2000
	OprBadUnaryOperand         Code = 2001
	OprBadBinaryOperands       Code = 2002
	OprAmbiguousUnaryOperator  Code = 2003
	OprAmbiguousBinaryOperator Code = 2004
	OprNoApplicableOverload    Code = 2005
	OprAmbiguousCall           Code = 2006
	OprUnknownMember           Code = 2007

	// Эмиссия метаданных
	EmtInfo                   Code = 3000
	EmtErrorTypeInMetadata    Code = 3001
	EmtTooManyParameters      Code = 3002
	EmtInteropTypeMissingGuid Code = 3003
	EmtRowLimitExceeded       Code = 3004
	EmtWriteFailed            Code = 3005

	// Проектные (stark.toml)
	PrjInfo             Code = 4000
	PrjManifestNotFound Code = 4001
	PrjManifestSyntax   Code = 4002
	PrjMissingField     Code = 4003
	PrjUnknownKind      Code = 4004
	PrjInvalidValue     Code = 4005
	PrjCacheUnavailable Code = 4006
	PrjMissingReference Code = 4007
	PrjReferenceCycle   Code = 4008
)

var (
	codeDescription = map[Code]string{
		UnknownCode: "Unknown error",

		DclInfo:                   "Declaration information",
		DclIntegralTypeExpected:   "Type i8, u8, i16, u16, i32, u32, i64, or u64 expected",
		DclTypeNotFound:           "The type or namespace name could not be found",
		DclBadModifierCombination: "Invalid combination of member modifiers",
		DclDuplicateDeclaration:   "Duplicate declaration",
		DclBadArity:               "Wrong number of type arguments",
		DclBadEnumMemberValue:     "Enum member value does not fit the underlying type",
		DclTypeNotGeneric:         "Type is not generic",
		DclNullableReferenceType:  "Only value types can be made nullable",
		DclBadParameterDefault:    "Invalid default value for parameter",
		DclBadBaseType:            "Type cannot be used as a base type",
		DclBadAttribute:           "Attribute constructor not found",

		OprInfo:                    "Operator information",
		OprBadUnaryOperand:         "Operator cannot be applied to operand",
		OprBadBinaryOperands:       "Operator cannot be applied to operands",
		OprAmbiguousUnaryOperator:  "Operator is ambiguous on an operand",
		OprAmbiguousBinaryOperator: "Operator is ambiguous on operands",
		OprNoApplicableOverload:    "No overload takes these arguments",
		OprAmbiguousCall:           "The call is ambiguous",
		OprUnknownMember:           "Member not found",

		EmtInfo:                   "Emission information",
		EmtErrorTypeInMetadata:    "Error type cannot be written to metadata",
		EmtTooManyParameters:      "Too many parameters for metadata",
		EmtInteropTypeMissingGuid: "Embedded interop type has no Guid attribute",
		EmtRowLimitExceeded:       "Metadata table row limit exceeded",
		EmtWriteFailed:            "Failed to write metadata image",

		PrjInfo:             "Project information",
		PrjManifestNotFound: "stark.toml not found",
		PrjManifestSyntax:   "Invalid stark.toml",
		PrjMissingField:     "Missing required manifest field",
		PrjUnknownKind:      "Unknown declaration kind",
		PrjInvalidValue:     "Invalid manifest value",
		PrjCacheUnavailable: "Index cache unavailable",
		PrjMissingReference: "Referenced package not found",
		PrjReferenceCycle:   "Package references form a cycle",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("DCL%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("OPR%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("EMT%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("PRJ%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
