package compilation

import (
	"context"
	"fmt"
	"io"
	"maps"

	"stark/internal/binder"
	"stark/internal/emit"
	"stark/internal/metadata"
	"stark/internal/symbols"
	"stark/internal/trace"
)

// Build emits the metadata of the source assembly. Bodies bound by BindAll
// are included. On failure the partly written builder is returned with the
// error; the diagnostics explain it.
func (c *Compilation) Build(ctx context.Context) (*metadata.Builder, error) {
	if err := c.Seal(ctx); err != nil {
		return nil, err
	}
	c.mu.Lock()
	bodies := make(map[*symbols.Method]binder.Expr, len(c.bodies))
	maps.Copy(bodies, c.bodies)
	c.mu.Unlock()

	idx := c.timer.Begin("emit")
	md, err := emit.Emit(trace.WithTracer(ctx, c.tracer), emit.Input{
		Module:  c.opts.Name,
		Source:  c.Source(),
		CorLib:  c.lib,
		Bodies:  bodies,
		Options: c.opts.Emit,
		Tracer:  c.tracer,
	}, c.Reporter())
	note := ""
	if md != nil {
		note = fmt.Sprintf("%d type defs, %d methods", len(md.TypeDefs), len(md.Methods))
	}
	c.timer.End(idx, note)
	return md, err
}

// Emit builds the module and writes its image to w. Nothing is written when
// emission fails.
func (c *Compilation) Emit(ctx context.Context, w io.Writer) (int64, error) {
	md, err := c.Build(ctx)
	if err != nil {
		return 0, err
	}
	idx := c.timer.Begin("write")
	n, err := md.WriteTo(w)
	c.timer.End(idx, fmt.Sprintf("%d bytes", n))
	if err != nil {
		return n, fmt.Errorf("write %s: %w", c.opts.Name, err)
	}
	return n, nil
}
