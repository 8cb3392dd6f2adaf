package compilation

import (
	"context"
	"fmt"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"stark/internal/symbols"
	"stark/internal/syntax"
	"stark/internal/trace"
)

// BindAll completes every declared type and binds the bodies of source
// methods. Types are completed by a bounded pool of workers; the first
// error, including cancellation of ctx, stops the rest.
func (c *Compilation) BindAll(ctx context.Context) error {
	if err := c.Seal(ctx); err != nil {
		return err
	}
	var types []*symbols.NamedType
	for _, asm := range c.refs {
		types = append(types, asm.Types()...)
	}
	sourceTypes := c.Source().Types()
	types = append(types, sourceTypes...)
	source := make(map[*symbols.NamedType]bool, len(sourceTypes))
	for _, t := range sourceTypes {
		source[t] = true
	}

	jobs := c.opts.Jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}
	idx := c.timer.Begin("bind")
	span := trace.Begin(c.tracer, trace.ScopePass, "bind_all", 0)
	var bodies atomic.Int64

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, min(jobs, len(types))))
	for _, t := range types {
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}
			ts := trace.Begin(c.tracer, trace.ScopeType, "complete", span.ID())
			defer ts.End(t.String())
			if err := t.ForceComplete(gctx); err != nil {
				return fmt.Errorf("%s: %w", t, err)
			}
			if !source[t] {
				return nil
			}
			n, err := c.bindBodies(gctx, t)
			bodies.Add(int64(n))
			return err
		})
	}
	err := g.Wait()
	note := fmt.Sprintf("%d types, %d bodies", len(types), bodies.Load())
	span.End(note)
	c.timer.End(idx, note)
	if err != nil {
		trace.Failure(c.tracer, "bind_all", err)
	}
	return err
}

func (c *Compilation) bindBodies(ctx context.Context, t *symbols.NamedType) (int, error) {
	n := 0
	for _, m := range t.Members().Methods {
		md := methodDecl(m)
		if md == nil || md.Body == nil {
			continue
		}
		body, err := c.binder.BindExpr(ctx, md.Body, m, c.Reporter())
		if err != nil {
			return n, fmt.Errorf("%s: %w", m, err)
		}
		c.mu.Lock()
		c.bodies[m] = body
		c.mu.Unlock()
		n++
	}
	return n, nil
}

func methodDecl(m *symbols.Method) *syntax.MethodDecl {
	for _, ref := range m.DeclaringSyntaxReferences() {
		if md, ok := ref.Node.(*syntax.MethodDecl); ok {
			return md
		}
	}
	return nil
}
