// Package emit translates bound symbols into a metadata image.
//
// Emission runs in two passes over the source types. The definition pass
// writes TypeDef rows followed by their fields, methods and parameters, so
// every TypeDef owns a contiguous range of rows. The reference pass then
// applies custom attributes and records the members method bodies call.
// Interop types reached from either pass are embedded after the source types
// when Options.EmbedInteropTypes is set.
package emit
