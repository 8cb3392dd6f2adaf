package binder

import (
	"context"
	"fmt"
	"strings"

	"stark/internal/diag"
	"stark/internal/symbols"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

// BindType binds ts in the global namespace of the source assembly.
func (b *Binder) BindType(ctx context.Context, ts *syntax.TypeSyntax, r diag.Reporter) (symbols.TypeSymbol, error) {
	return b.BindTypeSyntax(ctx, ts, b.source.GlobalNamespace(), r)
}

// BindTypeSyntax resolves a type expression as seen from scope. Names that
// do not resolve bind to symbols.UnknownResultType after a diagnostic;
// operands that are already error types produce no further diagnostics.
func (b *Binder) BindTypeSyntax(ctx context.Context, ts *syntax.TypeSyntax, scope symbols.Symbol, r diag.Reporter) (symbols.TypeSymbol, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if ts == nil {
		return b.lib.GetSpecialType(wellknown.TypeVoid), nil
	}
	switch ts.Kind {
	case syntax.TypeNullable:
		elem, err := b.BindTypeSyntax(ctx, ts.Elem, scope, r)
		if err != nil {
			return nil, err
		}
		return b.makeNullable(elem, ts, r), nil
	case syntax.TypeArray:
		elem, err := b.BindTypeSyntax(ctx, ts.Elem, scope, r)
		if err != nil {
			return nil, err
		}
		if elem.IsErrorType() {
			return elem, nil
		}
		return b.lib.MakeArray(elem), nil
	case syntax.TypePointer:
		elem, err := b.BindTypeSyntax(ctx, ts.Elem, scope, r)
		if err != nil {
			return nil, err
		}
		if elem.IsErrorType() {
			return elem, nil
		}
		return symbols.NewPointerType(elem), nil
	}
	return b.bindNamed(ctx, ts, scope, r)
}

func (b *Binder) bindNamed(ctx context.Context, ts *syntax.TypeSyntax, scope symbols.Symbol, r diag.Reporter) (symbols.TypeSymbol, error) {
	qualifier, name := ts.Qualifier(), ts.SimpleName()
	if ts.Kind == syntax.TypeName && qualifier == "" {
		if st, ok := wellknown.SpecialTypeByKeyword(name); ok {
			return b.lib.GetSpecialType(st), nil
		}
		if tp := typeParameterInScope(scope, name); tp != nil {
			return tp, nil
		}
	}

	args := make([]symbols.TypeSymbol, 0, len(ts.Args))
	argsOK := true
	for _, a := range ts.Args {
		at, err := b.BindTypeSyntax(ctx, a, scope, r)
		if err != nil {
			return nil, err
		}
		if at.IsErrorType() {
			argsOK = false
		}
		args = append(args, at)
	}

	t := b.lookup(qualifier, name, len(args), scope)
	if t == nil {
		b.reportMissingType(ts, qualifier, name, len(args), scope, r)
		return symbols.UnknownResultType, nil
	}
	if len(args) == 0 {
		return t, nil
	}
	if !argsOK {
		return symbols.UnknownResultType, nil
	}
	if t.SpecialType() == wellknown.TypeOption {
		return b.makeNullable(args[0], ts, r), nil
	}
	return t.Construct(args...), nil
}

func (b *Binder) makeNullable(elem symbols.TypeSymbol, ts *syntax.TypeSyntax, r diag.Reporter) symbols.TypeSymbol {
	switch {
	case elem.IsErrorType():
		return elem
	case symbols.IsNullable(elem):
		return elem
	case !elem.IsValueType():
		diag.ReportError(r, diag.DclNullableReferenceType, ts.Span,
			fmt.Sprintf("%s is not a value type and cannot be made nullable", elem)).Emit()
		return symbols.UnknownResultType
	}
	return b.lib.MakeNullable(elem)
}

func (b *Binder) reportMissingType(ts *syntax.TypeSyntax, qualifier, name string, arity int, scope symbols.Symbol, r diag.Reporter) {
	if other := b.lookup(qualifier, name, -1, scope); other != nil {
		if other.Arity() == 0 {
			diag.ReportError(r, diag.DclTypeNotGeneric, ts.Span,
				fmt.Sprintf("%s is not generic and cannot take type arguments", other)).Emit()
			return
		}
		diag.ReportError(r, diag.DclBadArity, ts.Span,
			fmt.Sprintf("%s requires %d type arguments, got %d", other, other.Arity(), arity)).
			WithNote(symbols.PrimaryLocation(other), "declared here").
			Emit()
		return
	}
	rb := diag.ReportError(r, diag.DclTypeNotFound, ts.Span,
		fmt.Sprintf("type %s could not be found", ts.Name))
	if hint := b.suggest(name); hint != "" {
		rb = rb.WithNote(ts.Span, hint)
	}
	rb.Emit()
}

func (b *Binder) suggest(name string) string {
	if b.opts.Suggest == nil {
		return ""
	}
	idx := b.opts.Suggest()
	if idx == nil {
		return ""
	}
	found := idx.Find(name, b.opts.SuggestThreshold)
	if len(found) == 0 {
		return ""
	}
	if len(found) > 3 {
		found = found[:3]
	}
	return "did you mean " + strings.Join(found, ", ") + "?"
}

// lookup finds a named type. A qualified name is looked up from the global
// namespace of every assembly; a simple name from the scope's namespace
// outwards, then in the core namespace. arity < 0 matches any arity.
func (b *Binder) lookup(qualifier, name string, arity int, scope symbols.Symbol) *symbols.NamedType {
	asms := b.lookupOrder()
	if qualifier != "" {
		for _, asm := range asms {
			if t := asm.LookupType(qualifier+"."+name, arity); t != nil {
				return t
			}
		}
		return nil
	}
	for ns := namespaceOf(scope); ns != nil; ns = parentNamespace(ns) {
		q := ns.QualifiedName()
		for _, asm := range asms {
			if n := asm.GlobalNamespace().LookupNamespace(q); n != nil {
				if t := n.LookupType(name, arity); t != nil {
					return t
				}
			}
		}
	}
	if ns := b.lib.Assembly().GlobalNamespace().LookupNamespace(wellknown.CoreNamespace); ns != nil {
		return ns.LookupType(name, arity)
	}
	return nil
}

func namespaceOf(s symbols.Symbol) *symbols.Namespace {
	if s == nil {
		return nil
	}
	if ns, ok := s.(*symbols.Namespace); ok {
		return ns
	}
	return symbols.ContainingNamespace(s)
}

func parentNamespace(ns *symbols.Namespace) *symbols.Namespace {
	p, _ := ns.ContainingSymbol().(*symbols.Namespace)
	return p
}

func typeParameterInScope(scope symbols.Symbol, name string) *symbols.TypeParameter {
	for s := scope; s != nil; s = s.ContainingSymbol() {
		var tps []*symbols.TypeParameter
		switch x := s.(type) {
		case *symbols.Method:
			tps = x.TypeParameters()
		case *symbols.NamedType:
			tps = x.TypeParameters()
		case *symbols.Namespace:
			return nil
		}
		for _, tp := range tps {
			if tp.Name() == name {
				return tp
			}
		}
	}
	return nil
}
