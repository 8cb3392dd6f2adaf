package syntax

import (
	"stark/internal/source"
)

// Node is anything that carries a source span.
type Node interface {
	NodeSpan() source.Span
}

// Reference points back at the syntax that declared a symbol.
type Reference struct {
	Span source.Span
	Node Node
}

// DeclKind is the kind keyword of a type declaration.
type DeclKind uint8

const (
	DeclClass DeclKind = iota
	DeclStruct
	DeclInterface
	DeclEnum
)

func (k DeclKind) String() string {
	switch k {
	case DeclClass:
		return "class"
	case DeclStruct:
		return "struct"
	case DeclInterface:
		return "interface"
	case DeclEnum:
		return "enum"
	default:
		return "?"
	}
}

// ParseDeclKind maps a kind keyword to DeclKind.
func ParseDeclKind(s string) (DeclKind, bool) {
	switch s {
	case "class":
		return DeclClass, true
	case "struct":
		return DeclStruct, true
	case "interface":
		return DeclInterface, true
	case "enum":
		return DeclEnum, true
	}
	return 0, false
}

// Modifier is one declaration modifier keyword.
type Modifier uint16

const (
	ModStatic Modifier = 1 << iota
	ModVirtual
	ModOverride
	ModSealed
	ModAbstract
	ModExtern
	ModAsync
	ModNew
)

var modifierNames = [...]struct {
	m    Modifier
	name string
}{
	{ModStatic, "static"},
	{ModVirtual, "virtual"},
	{ModOverride, "override"},
	{ModSealed, "sealed"},
	{ModAbstract, "abstract"},
	{ModExtern, "extern"},
	{ModAsync, "async"},
	{ModNew, "new"},
}

// ParseModifier maps a keyword to its Modifier bit.
func ParseModifier(s string) (Modifier, bool) {
	for _, e := range modifierNames {
		if e.name == s {
			return e.m, true
		}
	}
	return 0, false
}

// Strings lists the keywords set in m in declaration order.
func (m Modifier) Strings() []string {
	if m == 0 {
		return nil
	}
	out := make([]string, 0, 2)
	for _, e := range modifierNames {
		if m&e.m != 0 {
			out = append(out, e.name)
		}
	}
	return out
}

// TypeDecl declares a class, struct, interface or enum.
type TypeDecl struct {
	Name          string
	Namespace     string
	Kind          DeclKind
	Accessibility string
	TypeParams    []string
	// Bases is the base list; for enums only the first entry is meaningful.
	Bases      []*TypeSyntax
	Members    []*EnumMemberDecl
	Fields     []*FieldDecl
	Methods    []*MethodDecl
	Attributes []*AttributeSyntax
	Guid       string
	Span       source.Span
	NameSpan   source.Span
}

func (d *TypeDecl) NodeSpan() source.Span { return d.Span }

// FullName is Namespace.Name, or just Name in the global namespace.
func (d *TypeDecl) FullName() string {
	if d.Namespace == "" {
		return d.Name
	}
	return d.Namespace + "." + d.Name
}

// EnumMemberDecl is one enumerator. Value is nil when implicit.
type EnumMemberDecl struct {
	Name  string
	Value *int64
	Span  source.Span
}

func (d *EnumMemberDecl) NodeSpan() source.Span { return d.Span }

// FieldDecl declares a field.
type FieldDecl struct {
	Name          string
	Type          *TypeSyntax
	Modifiers     Modifier
	Accessibility string
	Span          source.Span
}

func (d *FieldDecl) NodeSpan() source.Span { return d.Span }

// MethodKindSyntax is the declared flavour of a method.
type MethodKindSyntax uint8

const (
	MethodOrdinary MethodKindSyntax = iota
	MethodConstructor
	MethodOperator
	MethodConversion
)

// ParseMethodKind maps a manifest kind string to MethodKindSyntax.
func ParseMethodKind(s string) (MethodKindSyntax, bool) {
	switch s {
	case "", "method":
		return MethodOrdinary, true
	case "constructor", "ctor":
		return MethodConstructor, true
	case "operator":
		return MethodOperator, true
	case "conversion":
		return MethodConversion, true
	}
	return 0, false
}

// MethodDecl declares a method, constructor or operator.
type MethodDecl struct {
	Name          string
	Kind          MethodKindSyntax
	Modifiers     Modifier
	Accessibility string
	TypeParams    []string
	Returns       *TypeSyntax
	// ReturnModifiers are custom modifiers on the return type.
	ReturnModifiers []*CustomModifierSyntax
	Params          []*ParamDecl
	Attributes      []*AttributeSyntax
	// Body is an optional expression the method evaluates; nil for abstract
	// and extern methods.
	Body Expr
	Span source.Span
}

func (d *MethodDecl) NodeSpan() source.Span { return d.Span }

// ParamDecl declares one parameter.
type ParamDecl struct {
	Name string
	Type *TypeSyntax
	// Ref is "", "ref", "in" or "out".
	Ref        string
	Optional   bool
	Default    *Literal
	Params     bool
	Modifiers  []*CustomModifierSyntax
	Attributes []*AttributeSyntax
	Span       source.Span
}

func (d *ParamDecl) NodeSpan() source.Span { return d.Span }

// CustomModifierSyntax is modreq(T) or modopt(T).
type CustomModifierSyntax struct {
	Type     *TypeSyntax
	Optional bool
	Span     source.Span
}

// AttributeSyntax is an applied attribute with positional arguments.
type AttributeSyntax struct {
	Name *TypeSyntax
	Args []Literal
	Span source.Span
}

func (a *AttributeSyntax) NodeSpan() source.Span { return a.Span }
