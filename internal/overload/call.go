package overload

import (
	"stark/internal/conversions"
	"stark/internal/symbols"
)

// CallResult is the outcome of method overload resolution. Method is the
// UnknownMethod sentinel unless Status is Resolved.
type CallResult struct {
	Status      Status
	Method      symbols.MethodSymbol
	Conversions []conversions.Kind
	Candidates  []symbols.MethodSymbol
}

type callApplicable struct {
	method  symbols.MethodSymbol
	params  []symbols.TypeSymbol
	convs   []conversions.Kind
	omitted int
}

// ResolveCall picks the best method for the argument types. Generic
// methods need explicit type arguments; params arrays are not expanded.
func ResolveCall(methods []symbols.MethodSymbol, args []symbols.TypeSymbol) CallResult {
	var app []callApplicable
	for _, m := range methods {
		if a, ok := applicable(m, args); ok {
			app = append(app, a)
		}
	}
	switch len(app) {
	case 0:
		return CallResult{Status: NoApplicable, Method: symbols.UnknownMethod}
	case 1:
		return CallResult{Status: Resolved, Method: app[0].method, Conversions: app[0].convs}
	}
	for i := range app {
		if callBeatsAll(app, i, args) {
			return CallResult{Status: Resolved, Method: app[i].method, Conversions: app[i].convs}
		}
	}
	out := make([]symbols.MethodSymbol, len(app))
	for i, a := range app {
		out[i] = a.method
	}
	return CallResult{Status: Ambiguous, Method: symbols.UnknownMethod, Candidates: out}
}

func applicable(m symbols.MethodSymbol, args []symbols.TypeSymbol) (callApplicable, bool) {
	if m.Arity() > 0 && len(m.TypeArguments()) == 0 {
		return callApplicable{}, false
	}
	params := m.Parameters()
	if len(args) > len(params) {
		return callApplicable{}, false
	}
	for _, p := range params[len(args):] {
		if !p.IsMetadataOptional() {
			return callApplicable{}, false
		}
	}
	a := callApplicable{
		method:  m,
		params:  make([]symbols.TypeSymbol, len(args)),
		convs:   make([]conversions.Kind, len(args)),
		omitted: len(params) - len(args),
	}
	for i, arg := range args {
		p := params[i]
		conv := conversions.Classify(arg, p.Type())
		if p.RefKind() != symbols.RefNone {
			// by-reference arguments must match exactly
			if conv != conversions.Identity {
				return callApplicable{}, false
			}
		} else if !conv.IsImplicit() {
			return callApplicable{}, false
		}
		a.params[i] = p.Type()
		a.convs[i] = conv
	}
	return a, true
}

func callBeatsAll(app []callApplicable, i int, args []symbols.TypeSymbol) bool {
	for j := range app {
		if j != i && !callBetter(app[i], app[j], args) {
			return false
		}
	}
	return true
}

// callBetter applies the better-function-member rule, then prefers the
// candidate that fills fewer parameters from defaults.
func callBetter(a, b callApplicable, args []symbols.TypeSymbol) bool {
	anyBetter := false
	for k, arg := range args {
		switch betterConversion(arg, a.params[k], b.params[k]) {
		case conversions.Right:
			return false
		case conversions.Left:
			anyBetter = true
		}
	}
	if anyBetter {
		return true
	}
	return a.omitted < b.omitted
}
