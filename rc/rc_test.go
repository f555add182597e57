package rc

import (
	"testing"
	"unsafe"
)

type heapAllocator struct{}

func (heapAllocator) Alloc(n uintptr) (unsafe.Pointer, error) {
	if n == 0 {
		return nil, nil
	}
	b := make([]byte, n)
	return unsafe.Pointer(&b[0]), nil
}

func (heapAllocator) Free(unsafe.Pointer) {}

func TestStrongCloneRelease(t *testing.T) {
	s, err := New[int](heapAllocator{}, 42)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if *s.Get() != 42 {
		t.Fatalf("Get() = %d, want 42", *s.Get())
	}
	if s.cb.strong.Load() != 1 || s.cb.weak.Load() != 1 {
		t.Fatalf("fresh handle counts = (%d,%d), want (1,1)", s.cb.strong.Load(), s.cb.weak.Load())
	}

	s2 := s.Clone()
	if s.cb.strong.Load() != 2 {
		t.Fatalf("strong after Clone = %d, want 2", s.cb.strong.Load())
	}

	s2.Release()
	if s.cb.strong.Load() != 1 {
		t.Fatalf("strong after one Release = %d, want 1", s.cb.strong.Load())
	}

	s.Release()
	if s.cb.strong.Load() != 0 {
		t.Fatalf("strong after final Release = %d, want 0", s.cb.strong.Load())
	}
}

// S7: after inc_strong; inc_weak; dec_strong, the object is destroyed and
// (strong, weak) = (0, 1); a subsequent dec_weak returns the "release
// control block" signal. New already performs the initial inc_strong (with
// its life-token weak bump); Downgrade supplies inc_weak.
func TestScenarioS7(t *testing.T) {
	s, err := New[int](heapAllocator{}, 7)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w := s.Downgrade() // inc_weak: weak 1 -> 2

	s.Release() // dec_strong: strong 1 -> 0, weak 2 -> 1

	if s.cb.strong.Load() != 0 || s.cb.weak.Load() != 1 {
		t.Fatalf("counts after dec_strong = (%d,%d), want (0,1)", s.cb.strong.Load(), s.cb.weak.Load())
	}
	if s.cb.obj != nil {
		t.Fatalf("pointee storage should be released once strong hits 0")
	}

	if _, ok := w.Lock(); ok {
		t.Fatalf("Lock should fail once strong has reached 0")
	}

	w.Release() // dec_weak: weak 1 -> 0, releases the control block
	if w.cb.weak.Load() != 0 {
		t.Fatalf("weak after final dec_weak = %d, want 0", w.cb.weak.Load())
	}
}

// Invariant 10: a weak handle's Lock succeeds iff at least one strong
// handle currently exists.
func TestWeakLockTracksStrongExistence(t *testing.T) {
	s, _ := New[string](heapAllocator{}, "hi")
	w := s.Downgrade()

	if locked, ok := w.Lock(); !ok {
		t.Fatalf("Lock should succeed while a strong handle exists")
	} else {
		locked.Release()
	}

	s.Release()
	if _, ok := w.Lock(); ok {
		t.Fatalf("Lock should fail once no strong handle exists")
	}
	w.Release()
}

func TestStrongArrayAtCloneRelease(t *testing.T) {
	a, err := NewArray[int](heapAllocator{}, 4)
	if err != nil {
		t.Fatalf("NewArray: %v", err)
	}
	for i := 0; i < a.Len(); i++ {
		*a.At(i) = i * 10
	}
	for i := 0; i < a.Len(); i++ {
		if *a.At(i) != i*10 {
			t.Fatalf("At(%d) = %d, want %d", i, *a.At(i), i*10)
		}
	}
	b := a.Clone()
	if a.cb.strong.Load() != 2 {
		t.Fatalf("strong after Clone = %d, want 2", a.cb.strong.Load())
	}
	b.Release()
	a.Release()
	if a.cb.strong.Load() != 0 {
		t.Fatalf("strong after both Release = %d, want 0", a.cb.strong.Load())
	}
}
