package symbols

import (
	"stark/internal/syntax"
)

type modifierRule struct {
	applies func(m syntax.Modifier, kind MethodKind, container TypeKind) bool
	msg     string
}

func has(m, bits syntax.Modifier) bool { return m&bits == bits }

var methodModifierRules = []modifierRule{
	{func(m syntax.Modifier, _ MethodKind, _ TypeKind) bool {
		return has(m, syntax.ModStatic) && m&(syntax.ModVirtual|syntax.ModOverride|syntax.ModAbstract|syntax.ModSealed) != 0
	}, "a static member cannot be marked virtual, override, abstract or sealed"},
	{func(m syntax.Modifier, _ MethodKind, _ TypeKind) bool {
		return has(m, syntax.ModSealed) && !has(m, syntax.ModOverride)
	}, "sealed requires override"},
	{func(m syntax.Modifier, _ MethodKind, _ TypeKind) bool {
		return has(m, syntax.ModVirtual|syntax.ModOverride)
	}, "a member marked override cannot also be marked virtual"},
	{func(m syntax.Modifier, _ MethodKind, _ TypeKind) bool {
		return has(m, syntax.ModAbstract) && m&(syntax.ModVirtual|syntax.ModSealed|syntax.ModExtern) != 0
	}, "an abstract member cannot be marked virtual, sealed or extern"},
	{func(m syntax.Modifier, _ MethodKind, _ TypeKind) bool {
		return has(m, syntax.ModAsync) && m&(syntax.ModExtern|syntax.ModAbstract) != 0
	}, "async cannot be combined with extern or abstract"},
	{func(m syntax.Modifier, kind MethodKind, _ TypeKind) bool {
		return kind == MethodConstructor && m&(syntax.ModVirtual|syntax.ModOverride|syntax.ModAbstract|syntax.ModSealed|syntax.ModAsync) != 0
	}, "a constructor cannot be virtual, override, abstract, sealed or async"},
	{func(m syntax.Modifier, kind MethodKind, _ TypeKind) bool {
		return (kind == MethodUserDefinedOperator || kind == MethodConversion) && !has(m, syntax.ModStatic)
	}, "user-defined operators must be static"},
	{func(m syntax.Modifier, _ MethodKind, container TypeKind) bool {
		return container == TypeKindStruct && m&(syntax.ModVirtual|syntax.ModAbstract|syntax.ModSealed) != 0
	}, "struct members cannot be virtual, abstract or sealed"},
	{func(m syntax.Modifier, _ MethodKind, container TypeKind) bool {
		return container == TypeKindInterface && m&(syntax.ModSealed|syntax.ModOverride|syntax.ModExtern|syntax.ModAsync) != 0
	}, "interface members cannot be sealed, override, extern or async"},
	{func(m syntax.Modifier, _ MethodKind, container TypeKind) bool {
		return container == TypeKindEnum && m != 0
	}, "enums cannot declare methods with modifiers"},
}

// ValidateMethodModifiers checks the mutual constraints between modifiers of
// a method of the given kind inside a container of the given kind. It
// returns one message per violated rule.
func ValidateMethodModifiers(m syntax.Modifier, kind MethodKind, container TypeKind) []string {
	var out []string
	for _, r := range methodModifierRules {
		if r.applies(m, kind, container) {
			out = append(out, r.msg)
		}
	}
	return out
}
