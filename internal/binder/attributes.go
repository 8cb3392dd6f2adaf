package binder

import (
	"context"
	"fmt"

	"stark/internal/diag"
	"stark/internal/symbols"
	"stark/internal/syntax"
)

const attributeSuffix = "Attribute"

// bindAttributes binds applied attributes. The class is looked up as
// Name+"Attribute" first, then as Name; the constructor is the first one
// whose parameters accept every argument as a constant.
func (b *Binder) bindAttributes(ctx context.Context, list []*syntax.AttributeSyntax, scope symbols.Symbol, r diag.Reporter) ([]*symbols.AttributeData, error) {
	if len(list) == 0 {
		return nil, nil
	}
	out := make([]*symbols.AttributeData, 0, len(list))
	for _, as := range list {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cls := b.attributeClass(as.Name, scope)
		if cls == nil {
			b.reportMissingType(as.Name, as.Name.Qualifier(), as.Name.SimpleName(), 0, scope, r)
			continue
		}
		members, err := cls.GetMembers(ctx)
		if err != nil {
			return nil, err
		}
		data := matchAttributeCtor(cls, members.Methods, as)
		if data == nil {
			diag.ReportError(r, diag.DclBadAttribute, as.Span,
				fmt.Sprintf("%s has no constructor taking %d matching arguments", cls, len(as.Args))).Emit()
			continue
		}
		out = append(out, data)
	}
	return out, nil
}

func (b *Binder) attributeClass(ts *syntax.TypeSyntax, scope symbols.Symbol) *symbols.NamedType {
	q, name := ts.Qualifier(), ts.SimpleName()
	if t := b.lookup(q, name+attributeSuffix, 0, scope); t != nil {
		return t
	}
	return b.lookup(q, name, 0, scope)
}

func matchAttributeCtor(cls *symbols.NamedType, methods []*symbols.Method, as *syntax.AttributeSyntax) *symbols.AttributeData {
	for _, m := range methods {
		if m.MethodKind() != symbols.MethodConstructor || m.ParameterCount() != len(as.Args) {
			continue
		}
		params := make([]symbols.TypeSymbol, len(as.Args))
		args := make([]*symbols.ConstantValue, len(as.Args))
		ok := true
		for i, p := range m.Parameters() {
			c, fits := constantFor(as.Args[i], p.Type())
			if !fits {
				ok = false
				break
			}
			params[i], args[i] = p.Type(), c
		}
		if ok {
			return &symbols.AttributeData{Class: cls, CtorParams: params, Args: args, Span: as.Span}
		}
	}
	return nil
}
