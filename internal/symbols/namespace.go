package symbols

import (
	"slices"
	"strings"
	"sync"

	"stark/internal/source"
	"stark/internal/syntax"
)

// Assembly owns one global namespace. It is not a symbol itself.
type Assembly struct {
	name    string
	global  *Namespace
	corLib  bool
	interop bool
}

// NewAssembly creates an empty assembly.
func NewAssembly(name string) *Assembly {
	a := &Assembly{name: name}
	a.global = &Namespace{
		symbolBase: symbolBase{access: AccessPublic},
		assembly:   a,
	}
	return a
}

func (a *Assembly) Name() string                { return a.name }
func (a *Assembly) GlobalNamespace() *Namespace { return a.global }
func (a *Assembly) IsCorLibrary() bool          { return a.corLib }

// IsInterop reports whether types of a are embedded into consumers.
func (a *Assembly) IsInterop() bool { return a.interop }

// MarkInterop flags a as an interop assembly whose types may be embedded.
func (a *Assembly) MarkInterop() { a.interop = true }

// LookupType resolves a dotted name such as "core.String".
func (a *Assembly) LookupType(qualified string, arity int) *NamedType {
	ns, name := a.global, qualified
	if i := strings.LastIndexByte(qualified, '.'); i >= 0 {
		ns = a.global.LookupNamespace(qualified[:i])
		name = qualified[i+1:]
	}
	if ns == nil {
		return nil
	}
	return ns.LookupType(name, arity)
}

// Types lists every named type of a in namespace order.
func (a *Assembly) Types() []*NamedType {
	var out []*NamedType
	var walk func(ns *Namespace)
	walk = func(ns *Namespace) {
		out = append(out, ns.Types()...)
		for _, child := range ns.Namespaces() {
			walk(child)
		}
	}
	walk(a.global)
	return out
}

// Namespace groups types and nested namespaces.
type Namespace struct {
	symbolBase
	assembly   *Assembly
	mu         sync.RWMutex
	namespaces map[string]*Namespace
	types      map[string][]*NamedType
}

func (n *Namespace) Kind() SymbolKind    { return SymbolNamespace }
func (n *Namespace) IsGlobal() bool      { return n.containing == nil }
func (n *Namespace) Assembly() *Assembly { return n.assembly }

func (n *Namespace) QualifiedName() string {
	if n.IsGlobal() {
		return ""
	}
	return QualifiedName(n)
}

func (n *Namespace) String() string {
	if n.IsGlobal() {
		return "<global>"
	}
	return n.QualifiedName()
}

// GetOrAddNamespace returns the child namespace called name, creating it.
func (n *Namespace) GetOrAddNamespace(name string) *Namespace {
	n.mu.Lock()
	defer n.mu.Unlock()
	if child, ok := n.namespaces[name]; ok {
		return child
	}
	if n.namespaces == nil {
		n.namespaces = make(map[string]*Namespace)
	}
	child := &Namespace{
		symbolBase: symbolBase{name: name, containing: n, access: AccessPublic},
		assembly:   n.assembly,
	}
	n.namespaces[name] = child
	return child
}

// EnsureNamespace creates every component of a dotted path.
func (n *Namespace) EnsureNamespace(dotted string) *Namespace {
	ns := n
	if dotted == "" {
		return ns
	}
	for _, part := range strings.Split(dotted, ".") {
		ns = ns.GetOrAddNamespace(part)
	}
	return ns
}

// LookupNamespace follows a dotted path without creating anything.
func (n *Namespace) LookupNamespace(dotted string) *Namespace {
	ns := n
	if dotted == "" {
		return ns
	}
	for _, part := range strings.Split(dotted, ".") {
		ns.mu.RLock()
		child := ns.namespaces[part]
		ns.mu.RUnlock()
		if child == nil {
			return nil
		}
		ns = child
	}
	return ns
}

// AddType registers t. It returns false when a type with the same name and
// arity already exists.
func (n *Namespace) AddType(t *NamedType) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	for _, other := range n.types[t.name] {
		if other.Arity() == t.Arity() {
			return false
		}
	}
	if n.types == nil {
		n.types = make(map[string][]*NamedType)
	}
	n.types[t.name] = append(n.types[t.name], t)
	return true
}

// LookupType finds the type name with the given arity. arity < 0 matches any.
func (n *Namespace) LookupType(name string, arity int) *NamedType {
	n.mu.RLock()
	defer n.mu.RUnlock()
	for _, t := range n.types[name] {
		if arity < 0 || t.Arity() == arity {
			return t
		}
	}
	return nil
}

// Types lists the types of n sorted by name and arity.
func (n *Namespace) Types() []*NamedType {
	n.mu.RLock()
	out := make([]*NamedType, 0, len(n.types))
	for _, ts := range n.types {
		out = append(out, ts...)
	}
	n.mu.RUnlock()
	slices.SortFunc(out, func(a, b *NamedType) int {
		if c := strings.Compare(a.name, b.name); c != 0 {
			return c
		}
		return a.Arity() - b.Arity()
	})
	return out
}

// Namespaces lists child namespaces sorted by name.
func (n *Namespace) Namespaces() []*Namespace {
	n.mu.RLock()
	out := make([]*Namespace, 0, len(n.namespaces))
	for _, ns := range n.namespaces {
		out = append(out, ns)
	}
	n.mu.RUnlock()
	slices.SortFunc(out, func(a, b *Namespace) int { return strings.Compare(a.name, b.name) })
	return out
}

// Namespaces have no single declaration site.
func (n *Namespace) Locations() []source.Span                      { return nil }
func (n *Namespace) DeclaringSyntaxReferences() []syntax.Reference { return nil }
