package conversions

// Kind classifies a conversion between two types.
type Kind uint8

const (
	NoConversion Kind = iota
	Identity
	ImplicitNumeric
	ImplicitNullable
	ImplicitReference
	Boxing
	ExplicitNumeric
	ExplicitNullable
	ExplicitReference
	Unboxing
	ExplicitEnumeration
)

func (k Kind) String() string {
	switch k {
	case Identity:
		return "identity"
	case ImplicitNumeric:
		return "implicit numeric"
	case ImplicitNullable:
		return "implicit nullable"
	case ImplicitReference:
		return "implicit reference"
	case Boxing:
		return "boxing"
	case ExplicitNumeric:
		return "explicit numeric"
	case ExplicitNullable:
		return "explicit nullable"
	case ExplicitReference:
		return "explicit reference"
	case Unboxing:
		return "unboxing"
	case ExplicitEnumeration:
		return "explicit enumeration"
	default:
		return "none"
	}
}

// Exists is false only for NoConversion.
func (k Kind) Exists() bool { return k != NoConversion }

// IsImplicit holds for conversions that need no cast.
func (k Kind) IsImplicit() bool {
	switch k {
	case Identity, ImplicitNumeric, ImplicitNullable, ImplicitReference, Boxing:
		return true
	}
	return false
}

// IsExplicit holds for conversions that need a cast.
func (k Kind) IsExplicit() bool {
	return k.Exists() && !k.IsImplicit()
}
