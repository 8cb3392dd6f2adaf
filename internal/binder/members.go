package binder

import (
	"context"
	"fmt"
	"strings"

	"stark/internal/diag"
	"stark/internal/overload"
	"stark/internal/source"
	"stark/internal/symbols"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

// BindBases resolves the base list of a source type. Classes default to
// core.Object, structs to core.ValueType and enums to core.Enum.
func (b *Binder) BindBases(ctx context.Context, t *symbols.NamedType, r diag.Reporter) (symbols.Bases, error) {
	if t.IsEnum() {
		// базовый список enum'а задаёт только underlying type
		return symbols.Bases{Base: b.lib.GetSpecialType(wellknown.TypeEnum)}, nil
	}
	d := t.Declaration()
	var out symbols.Bases
	for i, ts := range d.Bases {
		bound, err := b.BindTypeSyntax(ctx, ts, t, r)
		if err != nil {
			return symbols.Bases{}, err
		}
		if bound.IsErrorType() {
			continue
		}
		nt, ok := bound.(*symbols.NamedType)
		switch {
		case ok && nt.IsInterface():
			out.Interfaces = append(out.Interfaces, nt)
		case ok && i == 0 && t.TypeKind() == symbols.TypeKindClass && canDerive(t, nt):
			out.Base = nt
		default:
			diag.ReportError(r, diag.DclBadBaseType, ts.Span,
				fmt.Sprintf("%s cannot be used as a base type of %s", bound, t)).Emit()
		}
	}
	if out.Base == nil {
		switch t.TypeKind() {
		case symbols.TypeKindClass:
			out.Base = b.lib.GetSpecialType(wellknown.TypeObject)
		case symbols.TypeKindStruct:
			out.Base = b.lib.GetSpecialType(wellknown.TypeValueType)
		}
	}
	return out, nil
}

func canDerive(t, base *symbols.NamedType) bool {
	if base.OriginalDefinition() == t || base.TypeKind() != symbols.TypeKindClass || base.IsStatic() {
		return false
	}
	switch base.SpecialType() {
	case wellknown.TypeNone, wellknown.TypeObject:
		return true
	}
	return false
}

// BindMembers builds the fields and methods of a source type. Enum
// constants get consecutive values at the underlying type; a value that
// does not fit is reported and replaced by zero.
func (b *Binder) BindMembers(ctx context.Context, t *symbols.NamedType, r diag.Reporter) (symbols.Members, error) {
	d := t.Declaration()
	var out symbols.Members
	seen := make(map[string]source.Span)

	if t.IsEnum() {
		fields, err := b.bindEnumConstants(ctx, t, d, seen, r)
		if err != nil {
			return symbols.Members{}, err
		}
		out.Fields = fields
	}
	for _, fd := range d.Fields {
		if err := ctx.Err(); err != nil {
			return symbols.Members{}, err
		}
		f, err := b.bindField(ctx, t, fd, r)
		if err != nil {
			return symbols.Members{}, err
		}
		if declaredTwice(seen, fd.Name, fd.Span, r) {
			continue
		}
		out.Fields = append(out.Fields, f)
	}
	for _, md := range d.Methods {
		if err := ctx.Err(); err != nil {
			return symbols.Members{}, err
		}
		m, err := b.bindMethod(ctx, t, md, r)
		if err != nil {
			return symbols.Members{}, err
		}
		if prev := sameSignature(out.Methods, m); prev != nil {
			diag.ReportError(r, diag.DclDuplicateDeclaration, md.Span,
				fmt.Sprintf("%s is already declared", m)).
				WithNote(symbols.PrimaryLocation(prev), "previous declaration").
				Emit()
			continue
		}
		out.Methods = append(out.Methods, m)
	}
	return out, nil
}

// declaredTwice records the first site of each member name.
func declaredTwice(seen map[string]source.Span, name string, at source.Span, r diag.Reporter) bool {
	if prev, ok := seen[name]; ok {
		diag.ReportError(r, diag.DclDuplicateDeclaration, at,
			fmt.Sprintf("member %s is already declared", name)).
			WithNote(prev, "previous declaration").
			Emit()
		return true
	}
	seen[name] = at
	return false
}

func (b *Binder) bindEnumConstants(ctx context.Context, t *symbols.NamedType, d *syntax.TypeDecl, seen map[string]source.Span, r diag.Reporter) ([]*symbols.Field, error) {
	underlying, err := t.EnumUnderlyingTypeContext(ctx)
	if err != nil {
		return nil, err
	}
	st := underlying.SpecialType()
	fields := []*symbols.Field{t.EnumValueField()}
	var prev *symbols.ConstantValue
	for _, md := range d.Members {
		var (
			val *symbols.ConstantValue
			ok  bool
		)
		switch {
		case md.Value != nil:
			val, ok = symbols.IntegerConstant(st, *md.Value)
			if !ok {
				diag.ReportError(r, diag.DclBadEnumMemberValue, md.Span,
					fmt.Sprintf("value %d of %s.%s does not fit %s", *md.Value, t.Name(), md.Name, underlying)).Emit()
			}
		case prev == nil:
			val, ok = symbols.IntegerConstant(st, 0)
		default:
			val, ok = prev.Next()
			if !ok {
				diag.ReportError(r, diag.DclBadEnumMemberValue, md.Span,
					fmt.Sprintf("implicit value of %s.%s overflows %s", t.Name(), md.Name, underlying)).Emit()
			}
		}
		if !ok {
			val, _ = symbols.IntegerConstant(st, 0)
		}
		prev = val
		if declaredTwice(seen, md.Name, md.Span, r) {
			continue
		}
		fields = append(fields, symbols.NewField(t, symbols.FieldSpec{
			Name:          md.Name,
			Type:          symbols.Plain(t),
			Accessibility: symbols.AccessPublic,
			Static:        true,
			Const:         val,
			Origin:        symbols.Origin{Span: md.Span, Node: md},
		}))
	}
	return fields, nil
}

func (b *Binder) bindField(ctx context.Context, t *symbols.NamedType, fd *syntax.FieldDecl, r diag.Reporter) (*symbols.Field, error) {
	ft, err := b.BindTypeSyntax(ctx, fd.Type, t, r)
	if err != nil {
		return nil, err
	}
	return symbols.NewField(t, symbols.FieldSpec{
		Name:          fd.Name,
		Type:          symbols.Plain(ft),
		Accessibility: b.accessibility(fd.Accessibility, memberDefault(t), fd.Span, r),
		Static:        fd.Modifiers&syntax.ModStatic != 0,
		Origin:        symbols.Origin{Span: fd.Span, Node: fd},
	}), nil
}

func memberDefault(t *symbols.NamedType) symbols.Accessibility {
	if t.IsInterface() {
		return symbols.AccessPublic
	}
	return symbols.AccessPrivate
}

func (b *Binder) accessibility(s string, def symbols.Accessibility, at source.Span, r diag.Reporter) symbols.Accessibility {
	a, ok := symbols.ParseAccessibility(s, def)
	if !ok {
		diag.ReportError(r, diag.DclBadModifierCombination, at, fmt.Sprintf("unknown accessibility %q", s)).Emit()
		return def
	}
	return a
}

func (b *Binder) bindMethod(ctx context.Context, t *symbols.NamedType, md *syntax.MethodDecl, r diag.Reporter) (*symbols.Method, error) {
	kind, name := methodKindAndName(md)
	for _, msg := range symbols.ValidateMethodModifiers(md.Modifiers, kind, t.TypeKind()) {
		diag.ReportError(r, diag.DclBadModifierCombination, md.Span, msg).Emit()
	}
	if kind == symbols.MethodUserDefinedOperator && !strings.HasPrefix(name, "op_") {
		diag.ReportError(r, diag.DclBadModifierCombination, md.Span,
			fmt.Sprintf("%q is not an overloadable operator with %d operands", md.Name, len(md.Params))).Emit()
	}
	m := symbols.NewMethod(t, symbols.MethodSpec{
		Name:          name,
		Kind:          kind,
		Accessibility: b.accessibility(md.Accessibility, memberDefault(t), md.Span, r),
		Modifiers:     md.Modifiers,
		Origin:        symbols.Origin{Span: md.Span, Node: md},
	})
	for _, tp := range md.TypeParams {
		m.AddTypeParameter(tp, symbols.Origin{})
	}

	var ret symbols.TypeSymbol = b.lib.GetSpecialType(wellknown.TypeVoid)
	if md.Returns != nil && kind != symbols.MethodConstructor && kind != symbols.MethodStaticConstructor {
		rt, err := b.BindTypeSyntax(ctx, md.Returns, m, r)
		if err != nil {
			return nil, err
		}
		ret = rt
	}
	retMods, err := b.bindCustomModifiers(ctx, md.ReturnModifiers, m, r)
	if err != nil {
		return nil, err
	}

	params := make([]*symbols.Parameter, 0, len(md.Params))
	for i, pd := range md.Params {
		p, err := b.bindParameter(ctx, m, i, pd, i == len(md.Params)-1, r)
		if err != nil {
			return nil, err
		}
		params = append(params, p)
	}
	m.SetSignature(symbols.TypeWithModifiers{Type: ret, CustomModifiers: retMods}, symbols.RefNone, nil, params)

	attrs, err := b.bindAttributes(ctx, md.Attributes, m, r)
	if err != nil {
		return nil, err
	}
	m.SetAttributes(attrs)
	return m, nil
}

// methodKindAndName maps declared operators to their metadata names:
// "+" with two operands becomes op_Addition, with one op_UnaryPlus.
func methodKindAndName(md *syntax.MethodDecl) (symbols.MethodKind, string) {
	switch md.Kind {
	case syntax.MethodConstructor:
		if md.Modifiers&syntax.ModStatic != 0 {
			return symbols.MethodStaticConstructor, symbols.StaticConstructorName
		}
		return symbols.MethodConstructor, symbols.InstanceConstructorName
	case syntax.MethodConversion:
		return symbols.MethodConversion, md.Name
	case syntax.MethodOperator:
		if strings.HasPrefix(md.Name, "op_") {
			return symbols.MethodUserDefinedOperator, md.Name
		}
		switch len(md.Params) {
		case 1:
			if op, ok := syntax.ParseUnaryOp(md.Name); ok {
				if name := overload.UnaryMetadataName(overload.UnaryOperatorFor(op)); name != "" {
					return symbols.MethodUserDefinedOperator, name
				}
			}
		case 2:
			if op, ok := syntax.ParseBinaryOp(md.Name); ok {
				if name := overload.BinaryMetadataName(overload.BinaryOperatorFor(op)); name != "" {
					return symbols.MethodUserDefinedOperator, name
				}
			}
		}
		return symbols.MethodUserDefinedOperator, md.Name
	}
	return symbols.MethodOrdinary, md.Name
}

func (b *Binder) bindParameter(ctx context.Context, m *symbols.Method, ordinal int, pd *syntax.ParamDecl, last bool, r diag.Reporter) (*symbols.Parameter, error) {
	pt, err := b.BindTypeSyntax(ctx, pd.Type, m, r)
	if err != nil {
		return nil, err
	}
	mods, err := b.bindCustomModifiers(ctx, pd.Modifiers, m, r)
	if err != nil {
		return nil, err
	}
	refKind, ok := symbols.ParseRefKind(pd.Ref)
	if !ok {
		diag.ReportError(r, diag.DclBadModifierCombination, pd.Span,
			fmt.Sprintf("unknown parameter passing mode %q", pd.Ref)).Emit()
	}
	var def *symbols.ConstantValue
	if pd.Default != nil && !pt.IsErrorType() {
		if def, ok = constantFor(*pd.Default, pt); !ok {
			diag.ReportError(r, diag.DclBadParameterDefault, pd.Span,
				fmt.Sprintf("default value %s is not a constant of type %s", pd.Default, pt)).Emit()
		}
	}
	if pd.Params {
		if _, isArray := pt.(*symbols.ArrayType); !isArray || !last {
			diag.ReportError(r, diag.DclBadModifierCombination, pd.Span,
				"a params parameter must be the last parameter and have an array type").Emit()
		}
	}
	p := symbols.NewParameter(m, symbols.ParameterSpec{
		Name:     pd.Name,
		Ordinal:  ordinal,
		Type:     symbols.TypeWithModifiers{Type: pt, CustomModifiers: mods},
		RefKind:  refKind,
		Optional: pd.Optional || def != nil,
		Default:  def,
		Params:   pd.Params,
		Origin:   symbols.Origin{Span: pd.Span, Node: pd},
	})
	attrs, err := b.bindAttributes(ctx, pd.Attributes, m, r)
	if err != nil {
		return nil, err
	}
	p.SetAttributes(attrs)
	return p, nil
}

func (b *Binder) bindCustomModifiers(ctx context.Context, mods []*syntax.CustomModifierSyntax, scope symbols.Symbol, r diag.Reporter) ([]symbols.CustomModifier, error) {
	if len(mods) == 0 {
		return nil, nil
	}
	out := make([]symbols.CustomModifier, 0, len(mods))
	for _, cm := range mods {
		mt, err := b.BindTypeSyntax(ctx, cm.Type, scope, r)
		if err != nil {
			return nil, err
		}
		nt, ok := mt.(*symbols.NamedType)
		if !ok {
			if !mt.IsErrorType() {
				diag.ReportError(r, diag.DclBadModifierCombination, cm.Span,
					fmt.Sprintf("%s cannot be used as a custom modifier", mt)).Emit()
			}
			continue
		}
		out = append(out, symbols.CustomModifier{Modifier: nt, IsOptional: cm.Optional})
	}
	return out, nil
}

// sameSignature returns an earlier method with m's name, arity and
// parameter types.
func sameSignature(methods []*symbols.Method, m *symbols.Method) *symbols.Method {
	for _, other := range methods {
		if other.Name() != m.Name() || other.Arity() != m.Arity() || other.ParameterCount() != m.ParameterCount() {
			continue
		}
		same := true
		for i, p := range other.Parameters() {
			q := m.Parameters()[i]
			if p.RefKind() != q.RefKind() || !symbols.Equal(p.Type(), q.Type()) {
				same = false
				break
			}
		}
		if same {
			return other
		}
	}
	return nil
}
