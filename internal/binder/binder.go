package binder

import (
	"context"
	"fmt"
	"sync"

	"stark/internal/diag"
	"stark/internal/overload"
	"stark/internal/symbols"
	"stark/internal/syntax"
	"stark/internal/wellknown"
)

// NameIndex answers fuzzy lookups over declared type names.
type NameIndex interface {
	Find(name string, threshold int) []string
}

// Options configures a Binder.
type Options struct {
	// Suggest is consulted for "did you mean" notes when a type name does
	// not resolve. It is called lazily, at most once per unresolved name.
	Suggest func() NameIndex
	// SuggestThreshold is the edit distance accepted for suggestions.
	SuggestThreshold int
}

// Binder turns declaration syntax into source symbols and binds types and
// expressions against them. It is the DeclaringCompilation of every type it
// declares and is safe for concurrent use once declaration is finished.
type Binder struct {
	lib      *symbols.CorLibrary
	source   *symbols.Assembly
	resolver *overload.Resolver
	opts     Options

	mu      sync.RWMutex
	refs    []*symbols.Assembly
	pending []*symbols.NamedType

	declDiags *diag.Bag
}

var _ symbols.DeclaringCompilation = (*Binder)(nil)

// New creates a binder whose source types live in an assembly called name.
func New(lib *symbols.CorLibrary, name string, opts Options) *Binder {
	if opts.SuggestThreshold <= 0 {
		opts.SuggestThreshold = 2
	}
	return &Binder{
		lib:       lib,
		source:    symbols.NewAssembly(name),
		resolver:  overload.NewResolver(lib),
		opts:      opts,
		declDiags: diag.NewBag(0),
	}
}

func (b *Binder) CorLibrary() *symbols.CorLibrary { return b.lib }
func (b *Binder) Source() *symbols.Assembly       { return b.source }
func (b *Binder) Resolver() *overload.Resolver    { return b.resolver }

// DeclarationDiagnostics holds diagnostics published by lazy completion.
func (b *Binder) DeclarationDiagnostics() *diag.Bag { return b.declDiags }

// AddReference makes the types of asm visible to lookup.
func (b *Binder) AddReference(asm *symbols.Assembly) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.refs = append(b.refs, asm)
}

// References returns referenced assemblies in the order they were added.
func (b *Binder) References() []*symbols.Assembly {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]*symbols.Assembly(nil), b.refs...)
}

// lookupOrder is the assembly search order: source, references, corlib.
func (b *Binder) lookupOrder() []*symbols.Assembly {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]*symbols.Assembly, 0, len(b.refs)+2)
	out = append(out, b.source)
	out = append(out, b.refs...)
	return append(out, b.lib.Assembly())
}

func (b *Binder) GetSpecialType(st wellknown.SpecialType) *symbols.NamedType {
	return b.lib.GetSpecialType(st)
}

func (b *Binder) AddDeclarationDiagnostics(ds []diag.Diagnostic) {
	b.declDiags.AddAll(ds)
}

// Declare creates a NamedType for every declaration and registers it with
// its namespace in asm. Types are not completed; their bases and members
// bind lazily through the Binder.
func (b *Binder) Declare(asm *symbols.Assembly, decls []*syntax.TypeDecl, r diag.Reporter) []*symbols.NamedType {
	out := make([]*symbols.NamedType, 0, len(decls))
	for _, d := range decls {
		ns := asm.GlobalNamespace().EnsureNamespace(d.Namespace)
		access, ok := symbols.ParseAccessibility(d.Accessibility, symbols.AccessInternal)
		if !ok {
			diag.ReportError(r, diag.DclBadModifierCombination, d.NameSpan,
				fmt.Sprintf("unknown accessibility %q on %s", d.Accessibility, d.FullName())).Emit()
			access = symbols.AccessInternal
		}
		t := symbols.NewNamedType(ns, symbols.NamedTypeSpec{
			Name:          d.Name,
			Kind:          typeKindOf(d.Kind),
			Accessibility: access,
			TypeParams:    d.TypeParams,
			Guid:          d.Guid,
			Origin:        symbols.Origin{Span: d.NameSpan, Node: d},
			Decl:          d,
			Compilation:   b,
		})
		if !ns.AddType(t) {
			prev := ns.LookupType(d.Name, len(d.TypeParams))
			diag.ReportError(r, diag.DclDuplicateDeclaration, d.NameSpan,
				fmt.Sprintf("%s is already declared", d.FullName())).
				WithNote(symbols.PrimaryLocation(prev), "previous declaration").
				Emit()
			continue
		}
		out = append(out, t)
	}
	b.mu.Lock()
	b.pending = append(b.pending, out...)
	b.mu.Unlock()
	return out
}

// Seal binds the attributes of every type declared so far. It must run
// after the last Declare and before types are shared between goroutines.
func (b *Binder) Seal(ctx context.Context, r diag.Reporter) error {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()
	for _, t := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}
		attrs, err := b.bindAttributes(ctx, t.Declaration().Attributes, t, r)
		if err != nil {
			return err
		}
		t.SetAttributes(attrs)
	}
	return nil
}

func typeKindOf(k syntax.DeclKind) symbols.TypeKind {
	switch k {
	case syntax.DeclStruct:
		return symbols.TypeKindStruct
	case syntax.DeclInterface:
		return symbols.TypeKindInterface
	case syntax.DeclEnum:
		return symbols.TypeKindEnum
	default:
		return symbols.TypeKindClass
	}
}
