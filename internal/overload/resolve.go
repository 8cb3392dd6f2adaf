package overload

import (
	"context"

	"stark/internal/conversions"
	"stark/internal/fault"
	"stark/internal/symbols"
)

// Status is the outcome of a resolution.
type Status uint8

const (
	NoApplicable Status = iota
	Resolved
	Ambiguous
)

func (s Status) String() string {
	switch s {
	case Resolved:
		return "resolved"
	case Ambiguous:
		return "ambiguous"
	default:
		return "no applicable"
	}
}

// UnaryResult is the outcome of unary operator resolution.
type UnaryResult struct {
	Status     Status
	Signature  UnarySignature
	Conversion conversions.Kind
	// Candidates holds the tied best candidates when Status is Ambiguous.
	Candidates []UnarySignature
	EasyOut    bool
}

// Kind is the resolved operator kind, UnaryError unless Resolved.
func (r UnaryResult) Kind() UnaryOperatorKind {
	if r.Status != Resolved {
		return UnaryError
	}
	return r.Signature.Kind
}

// BinaryResult is the outcome of binary operator resolution.
type BinaryResult struct {
	Status          Status
	Signature       BinarySignature
	LeftConversion  conversions.Kind
	RightConversion conversions.Kind
	Candidates      []BinarySignature
	EasyOut         bool
}

// Kind is the resolved operator kind, BinaryError unless Resolved.
func (r BinaryResult) Kind() BinaryOperatorKind {
	if r.Status != Resolved {
		return BinaryError
	}
	return r.Signature.Kind
}

// Resolver picks operator signatures and call targets.
type Resolver struct {
	builtins *BuiltinOperators
}

func NewResolver(lib *symbols.CorLibrary) *Resolver {
	return &Resolver{builtins: NewBuiltinOperators(lib)}
}

// ResolveUnary resolves kind applied to operand. Only a cancelled context
// produces an error.
func (r *Resolver) ResolveUnary(ctx context.Context, kind UnaryOperatorKind, operand symbols.TypeSymbol) (UnaryResult, error) {
	if operand == nil || operand.IsErrorType() {
		return UnaryResult{}, nil
	}
	if easy := UnaryEasyOut(kind, operand); easy != UnaryError {
		sig := r.builtins.UnarySignature(easy)
		conv := conversions.Classify(operand, sig.Operand)
		fault.Invariant(conv.IsImplicit(), "easy-out %v on %v: conversion to %v is %v", easy, operand, sig.Operand, conv)
		return UnaryResult{Status: Resolved, Signature: sig, Conversion: conv, EasyOut: true}, nil
	}
	return r.unaryGeneral(ctx, kind, operand)
}

// ResolveBinary resolves kind applied to left and right.
func (r *Resolver) ResolveBinary(ctx context.Context, kind BinaryOperatorKind, left, right symbols.TypeSymbol) (BinaryResult, error) {
	if left == nil || right == nil || left.IsErrorType() || right.IsErrorType() {
		return BinaryResult{}, nil
	}
	if easy := BinaryEasyOut(kind, left, right); easy != BinaryError {
		sig := r.builtins.BinarySignature(easy)
		lc := conversions.Classify(left, sig.Left)
		rc := conversions.Classify(right, sig.Right)
		fault.Invariant(lc.IsImplicit() && rc.IsImplicit(),
			"easy-out %v on (%v, %v): conversions %v, %v", easy, left, right, lc, rc)
		return BinaryResult{Status: Resolved, Signature: sig, LeftConversion: lc, RightConversion: rc, EasyOut: true}, nil
	}
	return r.binaryGeneral(ctx, kind, left, right)
}

func (r *Resolver) unaryGeneral(ctx context.Context, kind UnaryOperatorKind, operand symbols.TypeSymbol) (UnaryResult, error) {
	user, err := userDefinedUnary(ctx, kind, operand, r.builtins.lib)
	if err != nil {
		return UnaryResult{}, err
	}
	if res := pickUnary(user, operand); res.Status != NoApplicable {
		return res, nil
	}
	return pickUnary(r.builtins.unaryCandidates(kind, operand), operand), nil
}

func (r *Resolver) binaryGeneral(ctx context.Context, kind BinaryOperatorKind, left, right symbols.TypeSymbol) (BinaryResult, error) {
	user, err := userDefinedBinary(ctx, kind, left, right, r.builtins.lib)
	if err != nil {
		return BinaryResult{}, err
	}
	if res := pickBinary(user, left, right); res.Status != NoApplicable {
		return res, nil
	}
	return pickBinary(r.builtins.binaryCandidates(kind, left, right), left, right), nil
}

type unaryApplicable struct {
	sig  UnarySignature
	conv conversions.Kind
}

func pickUnary(cands []UnarySignature, operand symbols.TypeSymbol) UnaryResult {
	var app []unaryApplicable
	for _, c := range cands {
		if conv := conversions.Classify(operand, c.Operand); conv.IsImplicit() {
			app = append(app, unaryApplicable{sig: c, conv: conv})
		}
	}
	if len(app) == 0 {
		return UnaryResult{}
	}
	best := -1
	for i := range app {
		if unaryBeatsAll(app, i, operand) {
			best = i
			break
		}
	}
	if best < 0 {
		out := make([]UnarySignature, len(app))
		for i, a := range app {
			out[i] = a.sig
		}
		return UnaryResult{Status: Ambiguous, Candidates: out}
	}
	return UnaryResult{Status: Resolved, Signature: app[best].sig, Conversion: app[best].conv}
}

func unaryBeatsAll(app []unaryApplicable, i int, operand symbols.TypeSymbol) bool {
	for j := range app {
		if j == i {
			continue
		}
		if betterConversion(operand, app[i].sig.Operand, app[j].sig.Operand) != conversions.Left {
			return false
		}
	}
	return true
}

type binaryApplicable struct {
	sig    BinarySignature
	lc, rc conversions.Kind
}

func pickBinary(cands []BinarySignature, left, right symbols.TypeSymbol) BinaryResult {
	var app []binaryApplicable
	for _, c := range cands {
		lc := conversions.Classify(left, c.Left)
		rc := conversions.Classify(right, c.Right)
		if !lc.IsImplicit() || !rc.IsImplicit() {
			continue
		}
		// reference equality does not box
		if c.Kind.OperandType() == OperandObject && c.Kind.IsEquality() && !(referenceLike(lc) && referenceLike(rc)) {
			continue
		}
		app = append(app, binaryApplicable{sig: c, lc: lc, rc: rc})
	}
	if len(app) == 0 {
		return BinaryResult{}
	}
	best := -1
	for i := range app {
		if binaryBeatsAll(app, i, left, right) {
			best = i
			break
		}
	}
	if best < 0 {
		out := make([]BinarySignature, len(app))
		for i, a := range app {
			out[i] = a.sig
		}
		return BinaryResult{Status: Ambiguous, Candidates: out}
	}
	a := app[best]
	return BinaryResult{Status: Resolved, Signature: a.sig, LeftConversion: a.lc, RightConversion: a.rc}
}

func referenceLike(k conversions.Kind) bool {
	return k == conversions.Identity || k == conversions.ImplicitReference
}

func binaryBeatsAll(app []binaryApplicable, i int, left, right symbols.TypeSymbol) bool {
	for j := range app {
		if j == i {
			continue
		}
		if !binaryBetter(app[i].sig, app[j].sig, left, right) {
			return false
		}
	}
	return true
}

// binaryBetter: no operand converts worse and at least one converts better.
func binaryBetter(a, b BinarySignature, left, right symbols.TypeSymbol) bool {
	l := betterConversion(left, a.Left, b.Left)
	r := betterConversion(right, a.Right, b.Right)
	if l == conversions.Right || r == conversions.Right {
		return false
	}
	return l == conversions.Left || r == conversions.Left
}

// betterConversion compares converting src to t1 against converting it to t2.
func betterConversion(src, t1, t2 symbols.TypeSymbol) conversions.Betterness {
	if symbols.Equal(t1, t2) {
		return conversions.Neither
	}
	switch {
	case symbols.Equal(src, t1):
		return conversions.Left
	case symbols.Equal(src, t2):
		return conversions.Right
	}
	return conversions.BetterConversionTarget(t1, t2)
}
