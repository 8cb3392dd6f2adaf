package symbols

// SymbolKind classifies the semantic meaning of a symbol.
type SymbolKind uint8

const (
	SymbolNamespace SymbolKind = iota + 1
	SymbolNamedType
	SymbolArrayType
	SymbolPointerType
	SymbolErrorType
	SymbolMethod
	SymbolField
	SymbolParameter
	SymbolTypeParameter
)

func (k SymbolKind) String() string {
	switch k {
	case SymbolNamespace:
		return "namespace"
	case SymbolNamedType:
		return "type"
	case SymbolArrayType:
		return "array"
	case SymbolPointerType:
		return "pointer"
	case SymbolErrorType:
		return "error type"
	case SymbolMethod:
		return "method"
	case SymbolField:
		return "field"
	case SymbolParameter:
		return "parameter"
	case SymbolTypeParameter:
		return "type parameter"
	default:
		return "invalid"
	}
}

// TypeKind is the shape of a type symbol.
type TypeKind uint8

const (
	TypeKindUnknown TypeKind = iota
	TypeKindClass
	TypeKindStruct
	TypeKindInterface
	TypeKindEnum
	TypeKindDelegate
	TypeKindArray
	TypeKindPointer
	TypeKindTypeParameter
	TypeKindError
)

func (k TypeKind) String() string {
	switch k {
	case TypeKindClass:
		return "class"
	case TypeKindStruct:
		return "struct"
	case TypeKindInterface:
		return "interface"
	case TypeKindEnum:
		return "enum"
	case TypeKindDelegate:
		return "delegate"
	case TypeKindArray:
		return "array"
	case TypeKindPointer:
		return "pointer"
	case TypeKindTypeParameter:
		return "type parameter"
	case TypeKindError:
		return "error"
	default:
		return "unknown"
	}
}

// MethodKind tells ordinary methods from constructors, operators and accessors.
type MethodKind uint8

const (
	MethodOrdinary MethodKind = iota
	MethodConstructor
	MethodStaticConstructor
	MethodUserDefinedOperator
	MethodConversion
	MethodPropertyGet
	MethodPropertySet
	MethodDelegateInvoke
)

func (k MethodKind) String() string {
	switch k {
	case MethodOrdinary:
		return "ordinary"
	case MethodConstructor:
		return "constructor"
	case MethodStaticConstructor:
		return "static constructor"
	case MethodUserDefinedOperator:
		return "operator"
	case MethodConversion:
		return "conversion"
	case MethodPropertyGet:
		return "getter"
	case MethodPropertySet:
		return "setter"
	case MethodDelegateInvoke:
		return "delegate invoke"
	default:
		return "?"
	}
}

// Accessibility is the declared visibility of a symbol.
type Accessibility uint8

const (
	AccessNotApplicable Accessibility = iota
	AccessPrivate
	AccessProtectedAndInternal
	AccessProtected
	AccessInternal
	AccessProtectedOrInternal
	AccessPublic
)

func (a Accessibility) String() string {
	switch a {
	case AccessPrivate:
		return "private"
	case AccessProtectedAndInternal:
		return "private protected"
	case AccessProtected:
		return "protected"
	case AccessInternal:
		return "internal"
	case AccessProtectedOrInternal:
		return "protected internal"
	case AccessPublic:
		return "public"
	default:
		return "n/a"
	}
}

// ParseAccessibility maps a keyword to Accessibility. The empty string means def.
func ParseAccessibility(s string, def Accessibility) (Accessibility, bool) {
	switch s {
	case "":
		return def, true
	case "private":
		return AccessPrivate, true
	case "private protected":
		return AccessProtectedAndInternal, true
	case "protected":
		return AccessProtected, true
	case "internal":
		return AccessInternal, true
	case "protected internal":
		return AccessProtectedOrInternal, true
	case "public":
		return AccessPublic, true
	}
	return AccessNotApplicable, false
}

// RefKind describes how a parameter or return value is passed.
type RefKind uint8

const (
	RefNone RefKind = iota
	RefRef
	RefOut
	RefIn
)

func (k RefKind) String() string {
	switch k {
	case RefRef:
		return "ref"
	case RefOut:
		return "out"
	case RefIn:
		return "in"
	default:
		return ""
	}
}

// ParseRefKind maps "", "ref", "out" and "in" to RefKind.
func ParseRefKind(s string) (RefKind, bool) {
	switch s {
	case "":
		return RefNone, true
	case "ref":
		return RefRef, true
	case "out":
		return RefOut, true
	case "in":
		return RefIn, true
	}
	return RefNone, false
}

// CallingConvention uses the metadata signature header encoding.
type CallingConvention uint8

const (
	CallDefault CallingConvention = 0x00
	CallVarArgs CallingConvention = 0x05
	CallGeneric CallingConvention = 0x10
	CallHasThis CallingConvention = 0x20
)
