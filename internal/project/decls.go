package project

import (
	"fmt"

	"stark/internal/diag"
	"stark/internal/source"
	"stark/internal/syntax"
)

// converter turns [[type]] tables into declaration syntax. A declaration
// with a broken part is reported and dropped; the rest still convert.
type converter struct {
	loc *locator
	r   diag.Reporter
	ok  bool
}

func convertTypes(types []TypeConfig, loc *locator, r diag.Reporter) []*syntax.TypeDecl {
	c := &converter{loc: loc, r: r}
	out := make([]*syntax.TypeDecl, 0, len(types))
	for i := range types {
		c.ok = true
		d := c.typeDecl(&types[i])
		if c.ok {
			out = append(out, d)
		}
	}
	return out
}

func (c *converter) errorf(code diag.Code, at source.Span, format string, args ...any) {
	c.ok = false
	diag.ReportError(c.r, code, at, fmt.Sprintf(format, args...)).Emit()
}

func (c *converter) typeDecl(tc *TypeConfig) *syntax.TypeDecl {
	if tc.Name == "" {
		c.errorf(diag.PrjMissingField, c.loc.find("[[type]]"), "[[type]] without a name")
		return nil
	}
	at := c.loc.advance(tc.Name)
	kind, ok := syntax.ParseDeclKind(tc.Kind)
	if tc.Kind == "" {
		kind, ok = syntax.DeclClass, true
	}
	if !ok {
		c.errorf(diag.PrjUnknownKind, c.loc.find(tc.Kind), "unknown type kind %q for %s", tc.Kind, tc.Name)
	}
	d := &syntax.TypeDecl{
		Name:          tc.Name,
		Namespace:     tc.Namespace,
		Kind:          kind,
		Accessibility: tc.Accessibility,
		TypeParams:    tc.TypeParams,
		Guid:          tc.Guid,
		Span:          at,
		NameSpan:      at,
	}
	if tc.Base != "" {
		d.Bases = append(d.Bases, c.typeSyntax(tc.Base))
	}
	for _, itf := range tc.Interfaces {
		d.Bases = append(d.Bases, c.typeSyntax(itf))
	}
	for _, mc := range tc.Members {
		d.Members = append(d.Members, &syntax.EnumMemberDecl{Name: mc.Name, Value: mc.Value, Span: c.loc.advance(mc.Name)})
	}
	if len(tc.Members) > 0 && kind != syntax.DeclEnum {
		c.errorf(diag.PrjInvalidValue, at, "%s declares enum members but is a %s", tc.Name, kind)
	}
	for _, fc := range tc.Fields {
		d.Fields = append(d.Fields, c.field(&fc))
	}
	for i := range tc.Methods {
		d.Methods = append(d.Methods, c.method(&tc.Methods[i]))
	}
	d.Attributes = c.attributes(tc.Attributes)
	return d
}

func (c *converter) typeSyntax(text string) *syntax.TypeSyntax {
	at := c.loc.advance(text)
	ts, err := syntax.ParseType(text, at)
	if err != nil {
		c.errorf(diag.PrjInvalidValue, at, "%v", err)
		return &syntax.TypeSyntax{Name: text, Span: at}
	}
	return ts
}

func (c *converter) modifiers(words []string, at source.Span) syntax.Modifier {
	var mods syntax.Modifier
	for _, w := range words {
		m, ok := syntax.ParseModifier(w)
		if !ok {
			c.errorf(diag.PrjInvalidValue, c.loc.find(w), "unknown modifier %q", w)
			continue
		}
		if mods&m != 0 {
			c.errorf(diag.PrjInvalidValue, at, "modifier %q repeated", w)
		}
		mods |= m
	}
	return mods
}

func (c *converter) field(fc *FieldConfig) *syntax.FieldDecl {
	at := c.loc.advance(fc.Name)
	if fc.Type == "" {
		c.errorf(diag.PrjMissingField, at, "field %s has no type", fc.Name)
	}
	return &syntax.FieldDecl{
		Name:          fc.Name,
		Type:          c.typeSyntax(fc.Type),
		Modifiers:     c.modifiers(fc.Modifiers, at),
		Accessibility: fc.Accessibility,
		Span:          at,
	}
}

func (c *converter) method(mc *MethodConfig) *syntax.MethodDecl {
	at := c.loc.advance(mc.Name)
	kind, ok := syntax.ParseMethodKind(mc.Kind)
	if !ok {
		c.errorf(diag.PrjUnknownKind, c.loc.find(mc.Kind), "unknown method kind %q for %s", mc.Kind, mc.Name)
	}
	if mc.Name == "" && kind != syntax.MethodConstructor {
		c.errorf(diag.PrjMissingField, at, "[[type.method]] without a name")
	}
	md := &syntax.MethodDecl{
		Name:            mc.Name,
		Kind:            kind,
		Modifiers:       c.modifiers(mc.Modifiers, at),
		Accessibility:   mc.Accessibility,
		TypeParams:      mc.TypeParams,
		ReturnModifiers: c.customModifiers(mc.ReturnModifiers),
		Span:            at,
	}
	if mc.Returns != "" {
		md.Returns = c.typeSyntax(mc.Returns)
	}
	for i := range mc.Params {
		md.Params = append(md.Params, c.param(&mc.Params[i]))
	}
	md.Attributes = c.attributes(mc.Attributes)
	if mc.Body != "" {
		bodyAt := c.loc.advance(mc.Body)
		body, err := syntax.ParseExpr(mc.Body, bodyAt)
		if err != nil {
			c.errorf(diag.PrjInvalidValue, bodyAt, "body of %s: %v", mc.Name, err)
		}
		md.Body = body
	}
	return md
}

func (c *converter) param(pc *ParamConfig) *syntax.ParamDecl {
	at := c.loc.advance(pc.Name)
	if pc.Type == "" {
		c.errorf(diag.PrjMissingField, at, "parameter %s has no type", pc.Name)
	}
	pd := &syntax.ParamDecl{
		Name:       pc.Name,
		Type:       c.typeSyntax(pc.Type),
		Ref:        pc.Ref,
		Optional:   pc.Optional,
		Params:     pc.Params,
		Modifiers:  c.customModifiers(pc.Modifiers),
		Attributes: c.attributes(pc.Attributes),
		Span:       at,
	}
	if pc.Default != nil {
		lit, ok := literalOf(pc.Default)
		if !ok {
			c.errorf(diag.PrjInvalidValue, at, "default of %s must be a boolean, number or string, got %T", pc.Name, pc.Default)
		}
		pd.Default = &lit
	}
	return pd
}

func (c *converter) customModifiers(mods []ModifierConfig) []*syntax.CustomModifierSyntax {
	out := make([]*syntax.CustomModifierSyntax, 0, len(mods))
	for _, m := range mods {
		ts := c.typeSyntax(m.Type)
		out = append(out, &syntax.CustomModifierSyntax{Type: ts, Optional: m.Optional, Span: ts.Span})
	}
	return out
}

func (c *converter) attributes(attrs []AttributeConfig) []*syntax.AttributeSyntax {
	out := make([]*syntax.AttributeSyntax, 0, len(attrs))
	for _, ac := range attrs {
		name := c.typeSyntax(ac.Name)
		as := &syntax.AttributeSyntax{Name: name, Span: name.Span}
		for _, a := range ac.Args {
			lit, ok := literalOf(a)
			if !ok {
				c.errorf(diag.PrjInvalidValue, name.Span, "argument of %s must be a boolean, number or string, got %T", ac.Name, a)
				continue
			}
			as.Args = append(as.Args, lit)
		}
		out = append(out, as)
	}
	return out
}

// literalOf maps a decoded TOML scalar to a literal.
func literalOf(v any) (syntax.Literal, bool) {
	switch v := v.(type) {
	case bool:
		return syntax.Literal{Kind: syntax.LitBool, Bool: v}, true
	case int64:
		return syntax.Literal{Kind: syntax.LitInt, Int: v}, true
	case float64:
		return syntax.Literal{Kind: syntax.LitFloat, Float: v}, true
	case string:
		return syntax.Literal{Kind: syntax.LitString, Str: v}, true
	}
	return syntax.Literal{}, false
}
