package overload

import (
	"context"

	"stark/internal/symbols"
	"stark/internal/wellknown"
)

// operatorOwners returns the named types whose declared operators apply to
// the operands: each operand type, stripped of Option, and its base chain.
func operatorOwners(operands ...symbols.TypeSymbol) []*symbols.NamedType {
	var out []*symbols.NamedType
	seen := make(map[*symbols.NamedType]bool)
	for _, t := range operands {
		if u := symbols.NullableUnderlying(t); u != nil {
			t = u
		}
		nt, ok := t.(*symbols.NamedType)
		for ok && nt != nil && !seen[nt] {
			seen[nt] = true
			out = append(out, nt)
			nt = nt.BaseType()
		}
	}
	return out
}

func declaredOperators(ctx context.Context, owners []*symbols.NamedType, name string, arity int) ([]*symbols.Method, error) {
	if name == "" {
		return nil, nil
	}
	var out []*symbols.Method
	for _, nt := range owners {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// примитивы corlib не объявляют операторов
		if nt.SpecialType() != wellknown.TypeNone {
			continue
		}
		members, err := nt.GetMembers(ctx)
		if err != nil {
			return nil, err
		}
		for _, m := range members.Methods {
			if m.Name() == name && m.MethodKind() == symbols.MethodUserDefinedOperator &&
				m.IsStatic() && m.ParameterCount() == arity {
				out = append(out, m)
			}
		}
	}
	return out, nil
}

// liftableOperator: every parameter and the return are non-nullable value types.
func liftableOperator(m *symbols.Method) bool {
	ret := m.ReturnType().Type
	if ret == nil || !ret.IsValueType() || symbols.IsNullable(ret) {
		return false
	}
	for _, p := range m.Parameters() {
		if !p.Type().IsValueType() || symbols.IsNullable(p.Type()) {
			return false
		}
	}
	return true
}

func userDefinedUnary(ctx context.Context, kind UnaryOperatorKind, operand symbols.TypeSymbol, lib *symbols.CorLibrary) ([]UnarySignature, error) {
	methods, err := declaredOperators(ctx, operatorOwners(operand), UnaryMetadataName(kind), 1)
	if err != nil || len(methods) == 0 {
		return nil, err
	}
	nullable := symbols.IsNullable(operand)
	k := kind.Operator() | UnaryOperatorKind(OperandUserDefined)
	var out []UnarySignature
	for _, m := range methods {
		p, ret := m.Parameters()[0].Type(), m.ReturnType().Type
		out = append(out, UnarySignature{Kind: k, Operand: p, Return: ret, Method: m})
		if nullable && liftableOperator(m) {
			out = append(out, UnarySignature{Kind: k | UnaryLifted, Operand: lib.MakeNullable(p), Return: lib.MakeNullable(ret), Method: m})
		}
	}
	return out, nil
}

func userDefinedBinary(ctx context.Context, kind BinaryOperatorKind, left, right symbols.TypeSymbol, lib *symbols.CorLibrary) ([]BinarySignature, error) {
	methods, err := declaredOperators(ctx, operatorOwners(left, right), BinaryMetadataName(kind), 2)
	if err != nil || len(methods) == 0 {
		return nil, err
	}
	nullable := symbols.IsNullable(left) || symbols.IsNullable(right)
	k := kind.Operator() | BinaryOperatorKind(OperandUserDefined)
	var out []BinarySignature
	for _, m := range methods {
		ps := m.Parameters()
		l, r, ret := ps[0].Type(), ps[1].Type(), m.ReturnType().Type
		out = append(out, BinarySignature{Kind: k, Left: l, Right: r, Return: ret, Method: m})
		if nullable && liftableOperator(m) {
			var lret symbols.TypeSymbol = lib.MakeNullable(ret)
			if k.IsComparison() {
				lret = ret
			}
			out = append(out, BinarySignature{
				Kind: k | BinaryLifted, Left: lib.MakeNullable(l), Right: lib.MakeNullable(r), Return: lret, Method: m,
			})
		}
	}
	return out, nil
}
