// Package trace is the structured event log of the compiler.
//
// A Tracer receives Events (span begin/end, points, recovered failures) and
// filters them by Level and Scope. StreamTracer writes text or NDJSON as events
// arrive, RingTracer keeps the most recent events for post-mortem dumps, and
// MultiTracer fans out to both. The active tracer travels in a context.Context
// (WithTracer / FromContext); code without a tracer gets Nop.
package trace
