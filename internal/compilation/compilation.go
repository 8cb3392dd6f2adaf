// Package compilation ties a set of declarations to one binder: it owns the
// corlib, the source and referenced assemblies, the diagnostics they produce
// and the bound method bodies, and drives binding and emission.
package compilation

import (
	"context"
	"fmt"
	"sync"

	"stark/internal/binder"
	"stark/internal/diag"
	"stark/internal/emit"
	"stark/internal/observ"
	"stark/internal/project"
	"stark/internal/source"
	"stark/internal/symbols"
	"stark/internal/syntax"
	"stark/internal/trace"
	"stark/internal/wellknown"
)

// Options configures a Compilation.
type Options struct {
	// Name is the assembly name of the source types.
	Name string
	// Registry defaults to wellknown.Default().
	Registry *wellknown.Registry
	// Jobs bounds the binding workers; zero means GOMAXPROCS.
	Jobs           int
	MaxDiagnostics int
	Emit           emit.Options
	Tracer         trace.Tracer
	// Cache persists the name index between runs under Digest. Optional.
	Cache  *IndexCache
	Digest project.Digest
}

// Compilation is safe for concurrent use once Seal has returned.
type Compilation struct {
	opts   Options
	files  *source.FileSet
	lib    *symbols.CorLibrary
	binder *binder.Binder
	refs   []*symbols.Assembly
	diags  *diag.Bag
	timer  *observ.Timer
	tracer trace.Tracer
	sealed bool

	mu     sync.Mutex
	bodies map[*symbols.Method]binder.Expr

	indexOnce sync.Once
	index     *NameIndex
}

// New creates an empty compilation.
func New(opts Options) *Compilation {
	if opts.Registry == nil {
		opts.Registry = wellknown.Default()
	}
	if opts.Name == "" {
		opts.Name = "main"
	}
	if opts.Tracer == nil {
		opts.Tracer = trace.Nop
	}
	c := &Compilation{
		opts:   opts,
		lib:    symbols.NewCorLibrary(opts.Registry),
		diags:  diag.NewBag(opts.MaxDiagnostics),
		timer:  observ.NewTimer(),
		tracer: opts.Tracer,
		bodies: make(map[*symbols.Method]binder.Expr),
	}
	c.binder = binder.New(c.lib, opts.Name, binder.Options{
		Suggest: func() binder.NameIndex { return c.NameIndex() },
	})
	return c
}

// FromWorkspace declares every package of ws: referenced packages as
// assemblies of their own, the root package as the source assembly. Build
// settings of the root manifest fill the options left unset.
func FromWorkspace(ctx context.Context, ws *project.Workspace, opts Options) (*Compilation, error) {
	build := ws.Root.Config.Build
	if opts.Name == "" {
		opts.Name = ws.Root.Name()
	}
	if opts.Jobs == 0 {
		opts.Jobs = build.Jobs
	}
	if opts.MaxDiagnostics == 0 {
		opts.MaxDiagnostics = build.MaxDiagnostics
	}
	opts.Emit.EmbedInteropTypes = opts.Emit.EmbedInteropTypes || build.EmbedInteropTypes
	if opts.Digest.IsZero() {
		opts.Digest = ws.Digest
	}
	c := New(opts)
	c.files = ws.Files
	for _, m := range ws.Packages {
		c.AddReference(m.Name(), m.Config.Package.Interop, m.Decls)
	}
	c.AddSource(ws.Root.Decls)
	if err := c.Seal(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Compilation) Name() string                    { return c.opts.Name }
func (c *Compilation) Binder() *binder.Binder          { return c.binder }
func (c *Compilation) CorLibrary() *symbols.CorLibrary { return c.lib }
func (c *Compilation) Source() *symbols.Assembly       { return c.binder.Source() }
func (c *Compilation) References() []*symbols.Assembly { return c.refs }
func (c *Compilation) Files() *source.FileSet          { return c.files }
func (c *Compilation) Timer() *observ.Timer            { return c.timer }
func (c *Compilation) Tracer() trace.Tracer            { return c.tracer }
func (c *Compilation) Reporter() diag.Reporter         { return diag.BagReporter{Bag: c.diags} }
func (c *Compilation) EmitOptions() emit.Options       { return c.opts.Emit }
func (c *Compilation) Options() Options                { return c.opts }

// AddReference declares decls in a new referenced assembly.
func (c *Compilation) AddReference(name string, interop bool, decls []*syntax.TypeDecl) *symbols.Assembly {
	c.mustNotBeSealed("AddReference")
	asm := symbols.NewAssembly(name)
	if interop {
		asm.MarkInterop()
	}
	c.binder.AddReference(asm)
	c.binder.Declare(asm, decls, c.Reporter())
	c.refs = append(c.refs, asm)
	return asm
}

// AddSource declares decls in the source assembly.
func (c *Compilation) AddSource(decls []*syntax.TypeDecl) []*symbols.NamedType {
	c.mustNotBeSealed("AddSource")
	return c.binder.Declare(c.binder.Source(), decls, c.Reporter())
}

// Seal finishes declaration. Types may be shared between goroutines only
// after it returns.
func (c *Compilation) Seal(ctx context.Context) error {
	if c.sealed {
		return nil
	}
	idx := c.timer.Begin("declare")
	err := c.binder.Seal(ctx, c.Reporter())
	c.timer.End(idx, fmt.Sprintf("%d references", len(c.refs)))
	if err != nil {
		return err
	}
	c.sealed = true
	return nil
}

func (c *Compilation) mustNotBeSealed(op string) {
	if c.sealed {
		panic(fmt.Sprintf("compilation: %s after Seal", op))
	}
}

// LookupType finds a type by qualified name in the source assembly, then in
// the references, then in the corlib.
func (c *Compilation) LookupType(qualified string, arity int) *symbols.NamedType {
	if t := c.Source().LookupType(qualified, arity); t != nil {
		return t
	}
	for _, asm := range c.refs {
		if t := asm.LookupType(qualified, arity); t != nil {
			return t
		}
	}
	return c.lib.Assembly().LookupType(qualified, arity)
}

// Body returns the bound body of m, if BindAll bound one.
func (c *Compilation) Body(m *symbols.Method) (binder.Expr, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	b, ok := c.bodies[m]
	return b, ok
}

// Diagnostics returns everything reported so far, including diagnostics
// published by lazy completion, sorted and without duplicates.
func (c *Compilation) Diagnostics() *diag.Bag {
	out := diag.NewBag(c.diags.Cap())
	out.Merge(c.diags)
	out.Merge(c.binder.DeclarationDiagnostics())
	out.Sort()
	out.Dedup()
	return out
}
