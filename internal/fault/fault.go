// Package fault carries internal compiler faults. A fault is a broken
// invariant, never a user error: it is raised with panic and only recovered at
// the driver boundary.
package fault

import (
	"errors"
	"fmt"
)

// Kind classifies a fault.
type Kind uint8

const (
	KindUnreachable Kind = iota + 1
	KindInvalidCodedIndex
	KindInvariant
)

func (k Kind) String() string {
	switch k {
	case KindUnreachable:
		return "unreachable"
	case KindInvalidCodedIndex:
		return "invalid coded index"
	case KindInvariant:
		return "invariant violated"
	default:
		return "fault"
	}
}

// Fault is the panic payload of this package.
type Fault struct {
	Kind Kind
	Msg  string
}

func (f *Fault) Error() string {
	if f.Msg == "" {
		return f.Kind.String()
	}
	return f.Kind.String() + ": " + f.Msg
}

// Unreachable panics with a KindUnreachable fault.
func Unreachable(format string, args ...any) {
	panic(&Fault{Kind: KindUnreachable, Msg: fmt.Sprintf(format, args...)})
}

// InvalidCodedIndex panics with a KindInvalidCodedIndex fault.
func InvalidCodedIndex(value uint32) {
	panic(&Fault{Kind: KindInvalidCodedIndex, Msg: fmt.Sprintf("0x%08X", value)})
}

// Invariant panics unless cond holds.
func Invariant(cond bool, format string, args ...any) {
	if !cond {
		panic(&Fault{Kind: KindInvariant, Msg: fmt.Sprintf(format, args...)})
	}
}

// Recover converts a Fault panic into *errp. Other panics propagate.
// Use as: defer fault.Recover(&err)
func Recover(errp *error) {
	r := recover()
	if r == nil {
		return
	}
	f, ok := r.(*Fault)
	if !ok {
		panic(r)
	}
	*errp = errors.Join(*errp, f)
}

// Catch runs fn and returns the fault it raised, if any.
func Catch(fn func()) (f *Fault) {
	defer func() {
		if r := recover(); r != nil {
			var ok bool
			if f, ok = r.(*Fault); !ok {
				panic(r)
			}
		}
	}()
	fn()
	return nil
}
