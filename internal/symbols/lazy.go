package symbols

import "sync/atomic"

// Lazy is a single-assignment cell. The zero value is unset.
// Any number of goroutines may race to Publish; exactly one wins and
// every caller observes the winner's value afterwards.
type Lazy[T any] struct {
	p atomic.Pointer[T]
}

// Get returns the published value, if any.
func (l *Lazy[T]) Get() (T, bool) {
	if p := l.p.Load(); p != nil {
		return *p, true
	}
	var zero T
	return zero, false
}

// Computed reports whether a value was published.
func (l *Lazy[T]) Computed() bool {
	return l.p.Load() != nil
}

// Publish stores v unless another value got there first. It returns the
// value now in the cell and whether v was the one stored.
func (l *Lazy[T]) Publish(v T) (T, bool) {
	if l.p.CompareAndSwap(nil, &v) {
		return v, true
	}
	return *l.p.Load(), false
}

// GetOrCompute publishes compute() on first use. compute may run more
// than once under contention; only one result is kept.
func (l *Lazy[T]) GetOrCompute(compute func() T) T {
	if v, ok := l.Get(); ok {
		return v
	}
	v, _ := l.Publish(compute())
	return v
}

// CompletionPart names one lazily computed facet of a symbol.
type CompletionPart uint32

const (
	PartAttributes CompletionPart = 1 << iota
	PartMembers
	PartEnumUnderlyingType
	PartEnumValueField
	PartBaseType

	PartAll = PartAttributes | PartMembers | PartEnumUnderlyingType | PartEnumValueField | PartBaseType
)

// CompletionState records which parts of a symbol are complete.
type CompletionState struct {
	bits atomic.Uint32
}

// NotePartComplete marks part done. It returns true for the call that
// flipped the bit.
func (s *CompletionState) NotePartComplete(part CompletionPart) bool {
	old := s.bits.Or(uint32(part))
	return old&uint32(part) == 0
}

// HasComplete reports whether every bit of part is done.
func (s *CompletionState) HasComplete(part CompletionPart) bool {
	return CompletionPart(s.bits.Load())&part == part
}

// Parts returns the completed parts.
func (s *CompletionState) Parts() CompletionPart {
	return CompletionPart(s.bits.Load())
}
