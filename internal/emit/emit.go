package emit

import (
	"context"
	"errors"
	"fmt"

	"stark/internal/binder"
	"stark/internal/diag"
	"stark/internal/fault"
	"stark/internal/metadata"
	"stark/internal/source"
	"stark/internal/symbols"
	"stark/internal/trace"
)

// ErrEmitFailed is returned when emission reported errors. The builder is
// still returned so callers can inspect what was written.
var ErrEmitFailed = errors.New("emit: module has errors")

// Input is one module to write.
type Input struct {
	Module string
	Source *symbols.Assembly
	CorLib *symbols.CorLibrary
	// Types defaults to every type of Source.
	Types []*symbols.NamedType
	// Bodies are the bound bodies of source methods.
	Bodies  map[*symbols.Method]binder.Expr
	Options Options
	Tracer  trace.Tracer
}

// Emit writes the metadata of in. Types, fields, methods and parameters go
// first, embedded interop types after them; attributes and the members
// bodies call are referenced last.
func Emit(ctx context.Context, in Input, r diag.Reporter) (md *metadata.Builder, err error) {
	defer fault.Recover(&err)

	tracer := in.Tracer
	if tracer == nil {
		tracer = trace.FromContext(ctx)
	}
	types := in.Types
	if types == nil {
		types = in.Source.Types()
	}
	m := NewModuleBuilder(in.Module, in.Source, in.CorLib, types, in.Options, tracer)
	ectx := EmitContext{Module: m, Diagnostics: r}
	span := trace.Begin(tracer, trace.ScopePass, "emit", 0)
	defer func() { span.End(in.Module) }()

	defs := trace.Begin(tracer, trace.ScopePass, "emit.definitions", span.ID())
	m.defining = true
	for _, t := range types {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		m.defineType(t, ectx)
	}
	m.defining = false
	m.embedded.define(ectx)
	defs.End(fmt.Sprintf("%d types, %d embedded", len(types), len(m.embedded.types)))

	refs := trace.Begin(tracer, trace.ScopePass, "emit.references", span.ID())
	if err := m.referencePass(ctx, in.Bodies, ectx); err != nil {
		return nil, err
	}
	m.embedded.applyAttributes(ectx)
	refs.End("")

	if err := m.Err(); err != nil {
		if errors.Is(err, metadata.ErrRowLimit) {
			diag.ReportError(r, diag.EmtRowLimitExceeded, source.Span{}, err.Error()).Emit()
		} else {
			diag.ReportError(r, diag.EmtWriteFailed, source.Span{}, err.Error()).Emit()
		}
		trace.Failure(tracer, "emit", err)
		return m.md, fmt.Errorf("%w: %w", ErrEmitFailed, err)
	}
	if m.failed {
		return m.md, ErrEmitFailed
	}
	return m.md, nil
}

// referencePass writes the attributes of source symbols and the references
// their bodies need.
func (m *ModuleBuilder) referencePass(ctx context.Context, bodies map[*symbols.Method]binder.Expr, ectx EmitContext) error {
	for _, t := range m.types {
		if err := ctx.Err(); err != nil {
			return err
		}
		tctx := ectx.At(declNode(t))
		m.applyAttributes(m.typeDefs[t], t.Attributes(), tctx)
		members := t.Members()
		for _, f := range members.Fields {
			m.applyAttributes(m.fieldDefs[f], f.Attributes(), tctx.At(memberNode(f, tctx.Node)))
		}
		for _, meth := range members.Methods {
			mctx := tctx.At(memberNode(meth, tctx.Node))
			m.applyAttributes(m.methodDefs[meth], meth.Attributes(), mctx)
			for _, p := range meth.Parameters() {
				m.applyAttributes(m.paramDefs[p], p.Attributes(), mctx)
			}
			if body, ok := bodies[meth]; ok && body != nil {
				m.ReferenceBody(body, mctx)
			}
		}
	}
	return nil
}
