package symbols

import (
	"stark/internal/source"
	"stark/internal/wellknown"
)

// AttributeData is an attribute application bound to its class and
// constructor parameter types.
type AttributeData struct {
	Class      *NamedType
	CtorParams []TypeSymbol
	Args       []*ConstantValue
	Span       source.Span
}

// IsTargetAttribute returns the index of the first signature of desc that
// this application matches, or -1.
func (a *AttributeData) IsTargetAttribute(desc wellknown.AttributeDescription) int {
	if a == nil || a.Class == nil {
		return -1
	}
	ns := ""
	if n := ContainingNamespace(a.Class); n != nil {
		ns = n.QualifiedName()
	}
	if !desc.Matches(ns, a.Class.Name()) {
		return -1
	}
	for i := range desc.Signatures {
		if desc.ParameterCount(i) != len(a.CtorParams) {
			continue
		}
		if paramsMatch(desc.Params(i), a.CtorParams) {
			return i
		}
	}
	return -1
}

func paramsMatch(want []wellknown.SigParam, got []TypeSymbol) bool {
	for i, p := range want {
		if !sigParamMatches(p, got[i]) {
			return false
		}
	}
	return true
}

func sigParamMatches(p wellknown.SigParam, t TypeSymbol) bool {
	switch p.Code {
	case wellknown.SigTypeHandle:
		info := p.Target.Info()
		nt, ok := t.(*NamedType)
		if !ok {
			return false
		}
		ns := ""
		if n := ContainingNamespace(nt); n != nil {
			ns = n.QualifiedName()
		}
		return ns == info.Namespace && nt.Name() == info.Name
	case wellknown.SigSZArray:
		at, ok := t.(*ArrayType)
		return ok && at.ElementType().SpecialType().SignatureCode() == p.Elem
	default:
		return t.SpecialType().SignatureCode() == p.Code
	}
}

// StringArg returns the i-th argument when it is a string constant.
func (a *AttributeData) StringArg(i int) (string, bool) {
	if i >= len(a.Args) || a.Args[i] == nil || a.Args[i].Kind != ConstString {
		return "", false
	}
	return a.Args[i].Str, true
}

// FindAttribute returns the first application on s matching id.
func FindAttribute(s Symbol, id wellknown.AttributeID) *AttributeData {
	desc, ok := wellknown.Attribute(id)
	if !ok {
		return nil
	}
	for _, a := range s.Attributes() {
		if a.IsTargetAttribute(desc) >= 0 {
			return a
		}
	}
	return nil
}
