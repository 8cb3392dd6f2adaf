// Package diag defines the diagnostic model shared by binding, operator
// resolution, metadata emission and manifest loading.
//
// Diagnostic is the central record: Severity, a compact numeric Code with a
// stable string form (see codes.go), a short Message, the Primary span and
// optional Notes. Producers talk to a Reporter; BagReporter stores into a Bag,
// which is goroutine-safe so parallel binding workers can share one sink.
//
// Package diag does no formatting or IO. Rendering lives in internal/diagfmt.
package diag
