package binder

import (
	"context"
	"fmt"
	"strings"

	"stark/internal/diag"
	"stark/internal/fault"
	"stark/internal/overload"
	"stark/internal/source"
	"stark/internal/symbols"
	"stark/internal/syntax"
)

// BindExpr binds e as seen from scope. Operators go through operator
// overload resolution and calls through method overload resolution. An
// operand that already failed to bind silences diagnostics further up.
func (b *Binder) BindExpr(ctx context.Context, e syntax.Expr, scope symbols.Symbol, r diag.Reporter) (Expr, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	switch x := e.(type) {
	case *syntax.LiteralExpr:
		return &Literal{node: node{typ: b.literalType(x.Value), span: x.Span}, Value: b.literalConstant(x.Value)}, nil
	case *syntax.TypedExpr:
		t, err := b.BindTypeSyntax(ctx, x.Type, scope, r)
		if err != nil {
			return nil, err
		}
		return &Value{node: node{typ: t, span: x.Span}, Name: x.Name}, nil
	case *syntax.UnaryExpr:
		return b.bindUnary(ctx, x, scope, r)
	case *syntax.BinaryExpr:
		return b.bindBinary(ctx, x, scope, r)
	case *syntax.CallExpr:
		return b.bindCall(ctx, x, scope, r)
	}
	fault.Unreachable("unexpected expression %T", e)
	return nil, nil
}

func (b *Binder) bindUnary(ctx context.Context, x *syntax.UnaryExpr, scope symbols.Symbol, r diag.Reporter) (Expr, error) {
	operand, err := b.BindExpr(ctx, x.Operand, scope, r)
	if err != nil {
		return nil, err
	}
	out := &Unary{node: node{typ: symbols.UnknownResultType, span: x.Span}, Operator: overload.UnaryError, Operand: operand}
	if operand.HasErrors() {
		return out, nil
	}
	kind := overload.UnaryOperatorFor(x.Op)
	res, err := b.resolver.ResolveUnary(ctx, kind, operand.Type())
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case overload.Resolved:
		out.typ = res.Signature.Return
		out.Operator = res.Signature.Kind
		out.Conversion = res.Conversion
		out.Method = res.Signature.Method
	case overload.Ambiguous:
		rb := diag.ReportError(r, diag.OprAmbiguousUnaryOperator, x.Span,
			fmt.Sprintf("operator '%s' is ambiguous on an operand of type %s", x.Op, operand.Type()))
		for _, c := range res.Candidates {
			rb = rb.WithNote(candidateSpan(c.Method, x.Span), "candidate: "+c.Kind.String())
		}
		rb.Emit()
	default:
		diag.ReportError(r, diag.OprBadUnaryOperand, x.Span,
			fmt.Sprintf("operator '%s' cannot be applied to operand of type %s", x.Op, operand.Type())).Emit()
	}
	return out, nil
}

func (b *Binder) bindBinary(ctx context.Context, x *syntax.BinaryExpr, scope symbols.Symbol, r diag.Reporter) (Expr, error) {
	left, err := b.BindExpr(ctx, x.Left, scope, r)
	if err != nil {
		return nil, err
	}
	right, err := b.BindExpr(ctx, x.Right, scope, r)
	if err != nil {
		return nil, err
	}
	out := &Binary{node: node{typ: symbols.UnknownResultType, span: x.Span}, Operator: overload.BinaryError, Left: left, Right: right}
	if left.HasErrors() || right.HasErrors() {
		return out, nil
	}
	kind := overload.BinaryOperatorFor(x.Op)
	res, err := b.resolver.ResolveBinary(ctx, kind, left.Type(), right.Type())
	if err != nil {
		return nil, err
	}
	switch res.Status {
	case overload.Resolved:
		out.typ = res.Signature.Return
		out.Operator = res.Signature.Kind
		out.LeftConversion = res.LeftConversion
		out.RightConversion = res.RightConversion
		out.Method = res.Signature.Method
	case overload.Ambiguous:
		rb := diag.ReportError(r, diag.OprAmbiguousBinaryOperator, x.Span,
			fmt.Sprintf("operator '%s' is ambiguous on operands of type %s and %s", x.Op, left.Type(), right.Type()))
		for _, c := range res.Candidates {
			rb = rb.WithNote(candidateSpan(c.Method, x.Span), "candidate: "+c.Kind.String())
		}
		rb.Emit()
	default:
		diag.ReportError(r, diag.OprBadBinaryOperands, x.Span,
			fmt.Sprintf("operator '%s' cannot be applied to operands of type %s and %s", x.Op, left.Type(), right.Type())).Emit()
	}
	return out, nil
}

func (b *Binder) bindCall(ctx context.Context, x *syntax.CallExpr, scope symbols.Symbol, r diag.Reporter) (Expr, error) {
	out := &Call{node: node{typ: symbols.UnknownResultType, span: x.Span}, Method: symbols.UnknownMethod}
	args := make([]symbols.TypeSymbol, 0, len(x.Args))
	argsOK := true
	for _, a := range x.Args {
		be, err := b.BindExpr(ctx, a, scope, r)
		if err != nil {
			return nil, err
		}
		out.Args = append(out.Args, be)
		args = append(args, be.Type())
		argsOK = argsOK && !be.HasErrors()
	}
	if x.Receiver == nil {
		diag.ReportError(r, diag.OprUnknownMember, x.Span,
			fmt.Sprintf("call to %s has no receiver type", x.Name)).Emit()
		return out, nil
	}
	recv, err := b.BindTypeSyntax(ctx, x.Receiver, scope, r)
	if err != nil {
		return nil, err
	}
	if recv.IsErrorType() || !argsOK {
		return out, nil
	}
	nt, ok := recv.(*symbols.NamedType)
	if !ok {
		diag.ReportError(r, diag.OprUnknownMember, x.Span,
			fmt.Sprintf("%s has no member %s", recv, x.Name)).Emit()
		return out, nil
	}
	members, err := nt.GetMembers(ctx)
	if err != nil {
		return nil, err
	}
	var methods []symbols.MethodSymbol
	for _, m := range members.Methods {
		if m.Name() == x.Name {
			methods = append(methods, m)
		}
	}
	if len(methods) == 0 {
		diag.ReportError(r, diag.OprUnknownMember, x.Span,
			fmt.Sprintf("%s has no method %s", nt, x.Name)).Emit()
		return out, nil
	}

	res := overload.ResolveCall(methods, args)
	switch res.Status {
	case overload.Resolved:
		out.Method = res.Method
		out.Conversions = res.Conversions
		out.typ = res.Method.ReturnType().Type
	case overload.Ambiguous:
		rb := diag.ReportError(r, diag.OprAmbiguousCall, x.Span,
			fmt.Sprintf("the call %s.%s(%s) is ambiguous", nt, x.Name, typeList(args)))
		for _, m := range res.Candidates {
			rb = rb.WithNote(candidateSpan(m, x.Span), "candidate: "+fmt.Sprint(m))
		}
		rb.Emit()
	default:
		diag.ReportError(r, diag.OprNoApplicableOverload, x.Span,
			fmt.Sprintf("no overload of %s.%s takes arguments (%s)", nt, x.Name, typeList(args))).Emit()
	}
	return out, nil
}

func candidateSpan(m symbols.MethodSymbol, fallback source.Span) source.Span {
	if m == nil {
		return fallback
	}
	if locs := m.Locations(); len(locs) > 0 {
		return locs[0]
	}
	return fallback
}

func typeList(ts []symbols.TypeSymbol) string {
	parts := make([]string, len(ts))
	for i, t := range ts {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
