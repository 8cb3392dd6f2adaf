package emit

import (
	"stark/internal/diag"
	"stark/internal/source"
	"stark/internal/syntax"
)

// EmitContext is what every translation call carries: the module being written,
// the syntax that caused the call and the sink for diagnostics.
type EmitContext struct {
	Module      *ModuleBuilder
	Node        syntax.Node
	Diagnostics diag.Reporter
}

// At returns a copy of c positioned at node.
func (c EmitContext) At(node syntax.Node) EmitContext {
	c.Node = node
	return c
}

func (c EmitContext) span() source.Span {
	if c.Node == nil {
		return source.Span{}
	}
	return c.Node.NodeSpan()
}
