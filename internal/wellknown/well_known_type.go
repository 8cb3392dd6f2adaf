package wellknown

// WellKnownType names corlib types that are looked up by name rather than
// identity. Ids are dense and independent from SpecialType.
type WellKnownType uint8

const (
	WellKnownNone WellKnownType = iota
	WellKnownSystemType
	WellKnownAttribute
	WellKnownAttributeTargets
	WellKnownTypeIdentifierAttribute
	WellKnownGuidAttribute
	WellKnownParamArrayAttribute
	WellKnownCompilerGeneratedAttribute
	WellKnownObsoleteAttribute
	WellKnownFlagsAttribute

	WellKnownTypeCount
)

type wellKnownInfo struct {
	namespace string
	name      string
	isEnum    bool
}

var wellKnownTypes = [WellKnownTypeCount]wellKnownInfo{
	WellKnownSystemType:                 {"core", "Type", false},
	WellKnownAttribute:                  {"core", "Attribute", false},
	WellKnownAttributeTargets:           {"core", "AttributeTargets", true},
	WellKnownTypeIdentifierAttribute:    {"core.runtime", "TypeIdentifierAttribute", false},
	WellKnownGuidAttribute:              {"core.runtime", "GuidAttribute", false},
	WellKnownParamArrayAttribute:        {"System", "ParamArrayAttribute", false},
	WellKnownCompilerGeneratedAttribute: {"core.runtime", "CompilerGeneratedAttribute", false},
	WellKnownObsoleteAttribute:          {"System", "ObsoleteAttribute", false},
	WellKnownFlagsAttribute:             {"System", "FlagsAttribute", false},
}

func (w WellKnownType) Namespace() string { return wellKnownTypes[w%WellKnownTypeCount].namespace }
func (w WellKnownType) Name() string      { return wellKnownTypes[w%WellKnownTypeCount].name }
func (w WellKnownType) IsEnum() bool      { return wellKnownTypes[w%WellKnownTypeCount].isEnum }

// IsAttribute reports whether w derives from core.Attribute.
func (w WellKnownType) IsAttribute() bool {
	return w >= WellKnownTypeIdentifierAttribute && w < WellKnownTypeCount
}

func (w WellKnownType) MetadataName() string {
	if w == WellKnownNone || w >= WellKnownTypeCount {
		return ""
	}
	return w.Namespace() + "." + w.Name()
}

func (w WellKnownType) String() string {
	if s := w.MetadataName(); s != "" {
		return s
	}
	return "none"
}
