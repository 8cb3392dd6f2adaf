package emit

import (
	"fmt"

	"fortio.org/safecast"

	"stark/internal/diag"
	"stark/internal/fault"
	"stark/internal/metadata"
	"stark/internal/source"
	"stark/internal/symbols"
	"stark/internal/syntax"
	"stark/internal/trace"
)

// Options tune emission.
type Options struct {
	// EmbedInteropTypes copies types of interop assemblies into the module
	// instead of referencing them.
	EmbedInteropTypes bool
}

// ModuleBuilder owns the metadata builder of one module and maps symbols to
// the rows that represent them.
type ModuleBuilder struct {
	md     *metadata.Builder
	source *symbols.Assembly
	corlib *symbols.CorLibrary
	opts   Options
	tracer trace.Tracer

	types      []*symbols.NamedType
	typeDefs   map[*symbols.NamedType]metadata.EntityHandle
	methodDefs map[*symbols.Method]metadata.EntityHandle
	fieldDefs  map[*symbols.Field]metadata.EntityHandle
	paramDefs  map[*symbols.Parameter]metadata.EntityHandle
	embedded   *EmbeddedTypesManager

	// defining is set while TypeDef rows and the rows they own are written.
	defining bool
	reported map[reportKey]struct{}
	failed   bool
	err      error
}

type reportKey struct {
	code diag.Code
	at   source.Span
	what string
}

// NewModuleBuilder prepares a module named name for the source types in
// types. TypeDef handles are fixed up front, in the order of types, so
// signatures can point at types that are written later.
func NewModuleBuilder(name string, src *symbols.Assembly, corlib *symbols.CorLibrary, types []*symbols.NamedType, opts Options, tracer trace.Tracer) *ModuleBuilder {
	m := &ModuleBuilder{
		md:         metadata.NewBuilder(name),
		source:     src,
		corlib:     corlib,
		opts:       opts,
		tracer:     tracer,
		types:      types,
		typeDefs:   make(map[*symbols.NamedType]metadata.EntityHandle, len(types)),
		methodDefs: make(map[*symbols.Method]metadata.EntityHandle),
		fieldDefs:  make(map[*symbols.Field]metadata.EntityHandle),
		paramDefs:  make(map[*symbols.Parameter]metadata.EntityHandle),
		reported:   make(map[reportKey]struct{}),
	}
	m.embedded = newEmbeddedTypesManager(m)
	for i, t := range types {
		fault.Invariant(t.IsDefinition(), "emit: %s is not a type definition", t)
		m.typeDefs[t] = m.typeDefHandle(i)
	}
	return m
}

// Metadata returns the underlying table builder.
func (m *ModuleBuilder) Metadata() *metadata.Builder { return m.md }

// EmbeddedTypes returns the manager of embedded interop types.
func (m *ModuleBuilder) EmbeddedTypes() *EmbeddedTypesManager { return m.embedded }

// Err returns the first table error hit while translating.
func (m *ModuleBuilder) Err() error { return m.err }

// typeDefHandle is the handle the i-th written TypeDef receives.
func (m *ModuleBuilder) typeDefHandle(i int) metadata.EntityHandle {
	row, err := safecast.Conv[uint32](i + 1)
	if err != nil || row > metadata.RIDMask {
		m.check(fmt.Errorf("%w: %s", metadata.ErrRowLimit, metadata.TableTypeDef))
		return 0
	}
	return metadata.NewHandle(metadata.TableTypeDef, row)
}

// check keeps the first table error; later calls see it through Err.
func (m *ModuleBuilder) check(err error) bool {
	if err == nil {
		return true
	}
	if m.err == nil {
		m.err = err
	}
	return false
}

// report emits an error once per code, position and subject.
func (m *ModuleBuilder) report(ectx EmitContext, code diag.Code, what, msg string) {
	m.failed = true
	key := reportKey{code: code, at: ectx.span(), what: what}
	if _, dup := m.reported[key]; dup {
		return
	}
	m.reported[key] = struct{}{}
	diag.ReportError(ectx.Diagnostics, code, key.at, msg).Emit()
}

// Translate returns the TypeDef, TypeRef or TypeSpec that stands for t in
// this module. A type that failed to bind is reported at node and yields a
// nil handle.
func (m *ModuleBuilder) Translate(t symbols.TypeSymbol, node syntax.Node, r diag.Reporter) metadata.EntityHandle {
	ectx := EmitContext{Module: m, Node: node, Diagnostics: r}
	if t == nil || t.IsErrorType() {
		m.reportErrorType(t, ectx)
		return 0
	}
	if nt, ok := t.(*symbols.NamedType); ok && nt.IsDefinition() {
		return m.namedType(nt, ectx)
	}
	var sb metadata.SigBuilder
	m.encodeType(&sb, t, ectx)
	h, err := m.md.AddTypeSpec(sb.Bytes())
	m.check(err)
	return h
}

func (m *ModuleBuilder) reportErrorType(t symbols.TypeSymbol, ectx EmitContext) {
	name := "?"
	if t != nil && t.Name() != "" {
		name = t.Name()
	}
	m.report(ectx, diag.EmtErrorTypeInMetadata, name,
		fmt.Sprintf("type %s did not bind and cannot be written to metadata", name))
}

func (m *ModuleBuilder) namedType(t *symbols.NamedType, ectx EmitContext) metadata.EntityHandle {
	if h, ok := m.typeDefs[t]; ok {
		return h
	}
	if h, ok := m.embedded.EmbedTypeIfNeedTo(t, ectx); ok {
		return h
	}
	asm := t.Assembly()
	if asm == nil || asm == m.source {
		fault.Unreachable("emit: %s has no row in module %s", t, m.source.Name())
	}
	scope, err := m.md.AddAssemblyRef(asm.Name())
	if !m.check(err) {
		return 0
	}
	h, err := m.md.AddTypeRef(scope, namespaceOf(t), t.MetadataName())
	m.check(err)
	return h
}

func namespaceOf(s symbols.Symbol) string {
	if ns := symbols.ContainingNamespace(s); ns != nil {
		return ns.QualifiedName()
	}
	return ""
}

// declNode returns the declaring syntax of t as a node, or nil.
func declNode(t *symbols.NamedType) syntax.Node {
	if d := t.Declaration(); d != nil {
		return d
	}
	return nil
}

// memberNode returns the first declaring syntax of s, or fallback.
func memberNode(s symbols.Symbol, fallback syntax.Node) syntax.Node {
	for _, ref := range s.DeclaringSyntaxReferences() {
		if ref.Node != nil {
			return ref.Node
		}
	}
	return fallback
}
