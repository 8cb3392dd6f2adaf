package fault

import (
	"errors"
	"testing"
)

func TestCatch(t *testing.T) {
	f := Catch(func() { InvalidCodedIndex(1 << 25) })
	if f == nil || f.Kind != KindInvalidCodedIndex {
		t.Fatalf("expected invalid coded index fault, got %v", f)
	}
	if Catch(func() {}) != nil {
		t.Fatalf("no fault expected")
	}
}

func TestRecover(t *testing.T) {
	run := func() (err error) {
		defer Recover(&err)
		Unreachable("offset of %s", "error method")
		return nil
	}
	err := run()
	var f *Fault
	if !errors.As(err, &f) || f.Kind != KindUnreachable {
		t.Fatalf("expected unreachable fault, got %v", err)
	}
}
