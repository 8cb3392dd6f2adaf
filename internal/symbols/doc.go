// Package symbols is the semantic graph of a compilation: namespaces, types,
// methods, fields and parameters, plus the error sentinels handed out when
// binding fails.
//
// Symbols are immutable after construction except for their lazy parts
// (base list, members, enum underlying type, enum value field). Each lazy
// part lives in a Lazy cell and is published with one compare-and-swap, so
// concurrent binders may compute a part twice but never publish it twice.
package symbols
