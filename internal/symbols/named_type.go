package symbols

import (
	"context"
	"strconv"
	"strings"

	"stark/internal/diag"
	"stark/internal/fault"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

// EnumValueFieldName is the name of the instance field backing an enum value.
const EnumValueFieldName = "value__"

// DeclaringCompilation is what a source type needs from its compilation to
// complete its lazy parts.
type DeclaringCompilation interface {
	GetSpecialType(st wellknown.SpecialType) *NamedType
	BindTypeSyntax(ctx context.Context, ts *syntax.TypeSyntax, scope Symbol, r diag.Reporter) (TypeSymbol, error)
	BindBases(ctx context.Context, t *NamedType, r diag.Reporter) (Bases, error)
	BindMembers(ctx context.Context, t *NamedType, r diag.Reporter) (Members, error)
	AddDeclarationDiagnostics(ds []diag.Diagnostic)
}

// Bases is the resolved base list of a type.
type Bases struct {
	Base       *NamedType
	Interfaces []*NamedType
}

// Members is the member list of a type in declaration order.
type Members struct {
	Fields  []*Field
	Methods []*Method
}

// Lookup returns fields and methods called name.
func (m Members) Lookup(name string) []Symbol {
	var out []Symbol
	for _, f := range m.Fields {
		if f.name == name {
			out = append(out, f)
		}
	}
	for _, meth := range m.Methods {
		if meth.name == name {
			out = append(out, meth)
		}
	}
	return out
}

// NamedTypeSpec carries everything needed to declare a NamedType.
type NamedTypeSpec struct {
	Name          string
	Kind          TypeKind
	Accessibility Accessibility
	Static        bool
	TypeParams    []string
	Special       wellknown.SpecialType
	WellKnown     wellknown.WellKnownType
	Guid          string
	Origin        Origin
	Decl          *syntax.TypeDecl
	Compilation   DeclaringCompilation
}

// NamedType is a class, struct, interface, enum or delegate. A constructed
// generic type shares its definition's declaration and state.
type NamedType struct {
	symbolBase
	typeKind   TypeKind
	special    wellknown.SpecialType
	wellKnown  wellknown.WellKnownType
	guid       string
	typeParams []*TypeParameter
	typeArgs   []TypeSymbol
	definition *NamedType
	decl       *syntax.TypeDecl
	comp       DeclaringCompilation
	corLib     *CorLibrary

	state          CompletionState
	bases          Lazy[Bases]
	members        Lazy[Members]
	enumUnderlying Lazy[*NamedType]
	enumValueField Lazy[*Field]
}

// NewNamedType declares a type definition in container. It does not register
// the type with its namespace.
func NewNamedType(container Symbol, spec NamedTypeSpec) *NamedType {
	t := &NamedType{
		symbolBase: symbolBase{
			name:       spec.Name,
			containing: container,
			access:     spec.Accessibility,
			static:     spec.Static,
		},
		typeKind:  spec.Kind,
		special:   spec.Special,
		wellKnown: spec.WellKnown,
		guid:      spec.Guid,
		decl:      spec.Decl,
		comp:      spec.Compilation,
	}
	t.definition = t
	spec.Origin.apply(&t.symbolBase)
	for i, name := range spec.TypeParams {
		t.typeParams = append(t.typeParams, NewTypeParameter(t, i, name, Origin{}))
	}
	return t
}

func (t *NamedType) Kind() SymbolKind                           { return SymbolNamedType }
func (t *NamedType) TypeKind() TypeKind                         { return t.typeKind }
func (t *NamedType) SpecialType() wellknown.SpecialType         { return t.special }
func (t *NamedType) WellKnownType() wellknown.WellKnownType     { return t.wellKnown }
func (t *NamedType) IsErrorType() bool                          { return false }
func (t *NamedType) Arity() int                                 { return len(t.typeParams) }
func (t *NamedType) TypeParameters() []*TypeParameter           { return t.typeParams }
func (t *NamedType) OriginalDefinition() *NamedType             { return t.definition }
func (t *NamedType) IsDefinition() bool                         { return t.definition == t }
func (t *NamedType) Declaration() *syntax.TypeDecl              { return t.definition.decl }
func (t *NamedType) Guid() string                               { return t.definition.guid }
func (t *NamedType) IsEnum() bool                               { return t.typeKind == TypeKindEnum }
func (t *NamedType) IsInterface() bool                          { return t.typeKind == TypeKindInterface }
func (t *NamedType) CompletionParts() CompletionPart            { return t.state.Parts() }
func (t *NamedType) DeclaringCompilation() DeclaringCompilation { return t.definition.comp }
func (t *NamedType) typeSymbol()                                {}

// TypeArguments returns the arguments of a construction, or the type
// parameters of a definition.
func (t *NamedType) TypeArguments() []TypeSymbol {
	if t.IsDefinition() {
		out := make([]TypeSymbol, len(t.typeParams))
		for i, tp := range t.typeParams {
			out[i] = tp
		}
		return out
	}
	return t.typeArgs
}

func (t *NamedType) IsValueType() bool {
	switch t.typeKind {
	case TypeKindStruct, TypeKindEnum:
		return true
	}
	return false
}

func (t *NamedType) IsReferenceType() bool {
	switch t.typeKind {
	case TypeKindClass, TypeKindInterface, TypeKindDelegate:
		return true
	}
	return false
}

// MetadataName appends the `N arity suffix used in metadata.
func (t *NamedType) MetadataName() string {
	if n := len(t.typeParams); n > 0 {
		return t.name + "`" + strconv.Itoa(n)
	}
	return t.name
}

// Assembly returns the assembly declaring the definition.
func (t *NamedType) Assembly() *Assembly {
	if ns := ContainingNamespace(t.definition); ns != nil {
		return ns.assembly
	}
	return nil
}

func (t *NamedType) String() string {
	if under := NullableUnderlying(t); under != nil {
		return under.String() + "?"
	}
	if kw := t.special.Keyword(); kw != "" && t.special != wellknown.TypeNone {
		return kw
	}
	name := QualifiedName(t.definition)
	if t.IsDefinition() {
		if len(t.typeParams) == 0 {
			return name
		}
	}
	args := t.TypeArguments()
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	return name + "<" + strings.Join(parts, ", ") + ">"
}

// Construct instantiates a generic definition. The construction shares the
// definition's declaration; its members are substituted on first use.
func (t *NamedType) Construct(args ...TypeSymbol) *NamedType {
	fault.Invariant(t.IsDefinition(), "construct called on constructed type %s", t)
	fault.Invariant(len(args) == len(t.typeParams), "type %s takes %d type arguments, got %d", t, len(t.typeParams), len(args))
	c := &NamedType{
		symbolBase: t.symbolBase,
		typeKind:   t.typeKind,
		wellKnown:  t.wellKnown,
		typeParams: t.typeParams,
		typeArgs:   args,
		definition: t,
	}
	return c
}

// substitute replaces the definition's type parameters with t's arguments.
func (t *NamedType) substitute(ts TypeSymbol) TypeSymbol {
	if t.IsDefinition() || ts == nil {
		return ts
	}
	switch x := ts.(type) {
	case *TypeParameter:
		if x.containing == t.definition && x.ordinal < len(t.typeArgs) {
			return t.typeArgs[x.ordinal]
		}
	case *NamedType:
		if x.IsDefinition() {
			if len(x.typeParams) == 0 {
				return x
			}
			if x == t.definition {
				return t
			}
			return x
		}
		args := make([]TypeSymbol, len(x.typeArgs))
		for i, a := range x.typeArgs {
			args[i] = t.substitute(a)
		}
		return x.definition.Construct(args...)
	case *ArrayType:
		return NewArrayType(t.substitute(x.elem), x.base)
	case *PointerType:
		return NewPointerType(t.substitute(x.elem))
	}
	return ts
}

func (t *NamedType) substituteMods(tw TypeWithModifiers) TypeWithModifiers {
	return TypeWithModifiers{Type: t.substitute(tw.Type), CustomModifiers: tw.CustomModifiers}
}

// BaseType resolves the base class. Interfaces and core.Object have none.
func (t *NamedType) BaseType() *NamedType {
	b, _ := t.BasesContext(context.Background())
	return b.Base
}

// Interfaces resolves the implemented interfaces.
func (t *NamedType) Interfaces() []*NamedType {
	b, _ := t.BasesContext(context.Background())
	return b.Interfaces
}

// BasesContext resolves the base list once and publishes its diagnostics once.
func (t *NamedType) BasesContext(ctx context.Context) (Bases, error) {
	if !t.IsDefinition() {
		def, err := t.definition.BasesContext(ctx)
		if err != nil {
			return Bases{}, err
		}
		return t.bases.GetOrCompute(func() Bases {
			out := Bases{}
			if def.Base != nil {
				out.Base, _ = t.substitute(def.Base).(*NamedType)
			}
			for _, i := range def.Interfaces {
				if st, ok := t.substitute(i).(*NamedType); ok {
					out.Interfaces = append(out.Interfaces, st)
				}
			}
			return out
		}), nil
	}
	if t.comp == nil {
		v, _ := t.bases.Get()
		return v, nil
	}
	return completeFacet(ctx, t, &t.bases, PartBaseType, func(ctx context.Context, r diag.Reporter) (Bases, error) {
		return t.comp.BindBases(ctx, t, r)
	})
}

// SetBases fixes the base list of a type that has no compilation.
func (t *NamedType) SetBases(b Bases) {
	if _, won := t.bases.Publish(b); won {
		t.state.NotePartComplete(PartBaseType)
	}
}

// GetMembers returns fields and methods, binding them on first use.
func (t *NamedType) GetMembers(ctx context.Context) (Members, error) {
	if v, ok := t.members.Get(); ok {
		return v, nil
	}
	switch {
	case !t.IsDefinition():
		def, err := t.definition.GetMembers(ctx)
		if err != nil {
			return Members{}, err
		}
		v, _ := t.members.Publish(t.substituteMembers(def))
		return v, nil
	case t.corLib != nil:
		v, _ := t.members.Publish(t.corLib.materializeMembers(t))
		t.state.NotePartComplete(PartMembers)
		return v, nil
	case t.comp != nil:
		return completeFacet(ctx, t, &t.members, PartMembers, func(ctx context.Context, r diag.Reporter) (Members, error) {
			return t.comp.BindMembers(ctx, t, r)
		})
	}
	return Members{}, nil
}

// SetMembers fixes the member list of a type that has no compilation.
func (t *NamedType) SetMembers(m Members) {
	if _, won := t.members.Publish(m); won {
		t.state.NotePartComplete(PartMembers)
	}
}

// Members is GetMembers without cancellation.
func (t *NamedType) Members() Members {
	m, _ := t.GetMembers(context.Background())
	return m
}

// Methods returns the methods called name.
func (t *NamedType) Methods(name string) []*Method {
	var out []*Method
	for _, m := range t.Members().Methods {
		if m.name == name {
			out = append(out, m)
		}
	}
	return out
}

// Field returns the field called name.
func (t *NamedType) Field(name string) *Field {
	for _, f := range t.Members().Fields {
		if f.name == name {
			return f
		}
	}
	return nil
}

func (t *NamedType) substituteMembers(def Members) Members {
	out := Members{
		Fields:  make([]*Field, len(def.Fields)),
		Methods: make([]*Method, len(def.Methods)),
	}
	for i, f := range def.Fields {
		c := *f
		c.containing = t
		c.typ = t.substituteMods(f.typ)
		out.Fields[i] = &c
	}
	for i, m := range def.Methods {
		out.Methods[i] = m.substituted(t, t.substituteMods)
	}
	return out
}

func (m *Method) substituted(container *NamedType, sub func(TypeWithModifiers) TypeWithModifiers) *Method {
	c := *m
	c.containing = container
	c.returnType = sub(m.returnType)
	c.params = make([]*Parameter, len(m.params))
	for i, p := range m.params {
		pc := *p
		pc.containing = &c
		pc.typ = sub(p.typ)
		c.params[i] = &pc
	}
	return &c
}

// EnumUnderlyingType returns the integral type behind an enum, nil for any
// other kind of type.
func (t *NamedType) EnumUnderlyingType() *NamedType {
	u, _ := t.EnumUnderlyingTypeContext(context.Background())
	return u
}

// EnumUnderlyingTypeContext resolves the underlying type once. Concurrent
// callers may compute in parallel but only the winner's diagnostics reach
// the compilation. A cancelled computation publishes nothing.
func (t *NamedType) EnumUnderlyingTypeContext(ctx context.Context) (*NamedType, error) {
	if t.typeKind != TypeKindEnum {
		return nil, nil
	}
	if t.comp == nil || t.decl == nil {
		v, _ := t.enumUnderlying.Get()
		return v, nil
	}
	return completeFacet(ctx, t, &t.enumUnderlying, PartEnumUnderlyingType, t.computeEnumUnderlyingType)
}

func (t *NamedType) computeEnumUnderlyingType(ctx context.Context, r diag.Reporter) (*NamedType, error) {
	if len(t.decl.Bases) > 0 {
		ts := t.decl.Bases[0]
		bound, err := t.comp.BindTypeSyntax(ctx, ts, t, r)
		if err != nil {
			return nil, err
		}
		if nt, ok := bound.(*NamedType); ok && nt.special.IsValidEnumUnderlyingType() {
			return nt, nil
		}
		// ошибочные типы наружу не отдаются, подставляем i32
		diag.ReportError(r, diag.DclIntegralTypeExpected, ts.Span,
			"type "+ts.String()+" cannot back an enum; expected i8, u8, i16, u16, i32, u32, i64 or u64").Emit()
	}
	return t.comp.GetSpecialType(wellknown.TypeInt32), nil
}

// SetEnumUnderlyingType fixes the underlying type of an enum without a compilation.
func (t *NamedType) SetEnumUnderlyingType(u *NamedType) {
	if _, won := t.enumUnderlying.Publish(u); won {
		t.state.NotePartComplete(PartEnumUnderlyingType)
	}
}

// EnumValueField returns the synthesized value__ field of an enum, nil for
// other types.
func (t *NamedType) EnumValueField() *Field {
	if t.typeKind != TypeKindEnum {
		return nil
	}
	if f, ok := t.enumValueField.Get(); ok {
		return f
	}
	f := NewField(t, FieldSpec{
		Name:          EnumValueFieldName,
		Type:          Plain(t.EnumUnderlyingType()),
		Accessibility: AccessPublic,
		SpecialName:   true,
		RTSpecialName: true,
	})
	f, won := t.enumValueField.Publish(f)
	if won {
		t.state.NotePartComplete(PartEnumValueField)
	}
	return f
}

// ForceComplete drives every lazy part of t to completion.
func (t *NamedType) ForceComplete(ctx context.Context) error {
	if _, err := t.BasesContext(ctx); err != nil {
		return err
	}
	if _, err := t.EnumUnderlyingTypeContext(ctx); err != nil {
		return err
	}
	t.EnumValueField()
	if _, err := t.GetMembers(ctx); err != nil {
		return err
	}
	return ctx.Err()
}

// completeFacet computes a lazy part off to the side and publishes it with a
// single compare-and-swap. Only the winning caller hands its diagnostics to
// the compilation and marks the part complete.
func completeFacet[T any](ctx context.Context, t *NamedType, cell *Lazy[T], part CompletionPart,
	compute func(context.Context, diag.Reporter) (T, error)) (T, error) {
	if v, ok := cell.Get(); ok {
		return v, nil
	}
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	bag := diag.NewBag(0)
	v, err := compute(ctx, diag.BagReporter{Bag: bag})
	if err != nil {
		return zero, err
	}
	if err := ctx.Err(); err != nil {
		return zero, err
	}
	winner, won := cell.Publish(v)
	if won {
		if t.comp != nil && bag.Len() > 0 {
			t.comp.AddDeclarationDiagnostics(bag.Items())
		}
		t.state.NotePartComplete(part)
	}
	return winner, nil
}

// IsNullable reports whether t is core.Option<T> over some type.
func IsNullable(t TypeSymbol) bool {
	return NullableUnderlying(t) != nil
}

// NullableUnderlying returns T for core.Option<T>, nil otherwise.
func NullableUnderlying(t TypeSymbol) TypeSymbol {
	nt, ok := t.(*NamedType)
	if !ok || nt.IsDefinition() || nt.definition.special != wellknown.TypeOption || len(nt.typeArgs) != 1 {
		return nil
	}
	return nt.typeArgs[0]
}

// StrippedSpecialType returns the special type of t, looking through Option.
func StrippedSpecialType(t TypeSymbol) wellknown.SpecialType {
	if u := NullableUnderlying(t); u != nil {
		return u.SpecialType()
	}
	return t.SpecialType()
}
