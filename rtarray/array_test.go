package rtarray

import "testing"

func TestPushPopBack(t *testing.T) {
	a := New[int](HeapAllocator{})
	for i := 0; i < 10; i++ {
		if err := a.PushBack(i); err != nil {
			t.Fatalf("PushBack(%d): %v", i, err)
		}
	}
	if a.Len() != 10 {
		t.Fatalf("Len = %d, want 10", a.Len())
	}
	for i := 9; i >= 0; i-- {
		v, ok := a.PopBack()
		if !ok || v != i {
			t.Fatalf("PopBack = (%d,%v), want (%d,true)", v, ok, i)
		}
	}
	if _, ok := a.PopBack(); ok {
		t.Fatalf("PopBack on empty array should report ok=false")
	}
}

func TestGeometricGrowth(t *testing.T) {
	a := New[int](HeapAllocator{})
	caps := map[int]bool{}
	for i := 0; i < 20; i++ {
		a.PushBack(i)
		caps[a.Cap()] = true
	}
	// capacities visited should all be powers of two (doubling from 1)
	for c := range caps {
		x := c
		for x > 1 {
			if x%2 != 0 {
				t.Fatalf("capacity %d is not a power of two", c)
			}
			x /= 2
		}
	}
}

func TestRemoveFastReorders(t *testing.T) {
	a := New[int](HeapAllocator{})
	for _, v := range []int{1, 2, 3, 4, 5} {
		a.PushBack(v)
	}
	v, ok := a.RemoveFast(1)
	if !ok || v != 2 {
		t.Fatalf("RemoveFast(1) = (%d,%v), want (2,true)", v, ok)
	}
	if a.Len() != 4 {
		t.Fatalf("Len = %d, want 4", a.Len())
	}
	if *a.Index(1) != 5 {
		t.Fatalf("RemoveFast should move last element into the gap")
	}
}

func TestRemoveStablePreservesOrder(t *testing.T) {
	a := New[int](HeapAllocator{})
	for _, v := range []int{1, 2, 3, 4, 5} {
		a.PushBack(v)
	}
	v, ok := a.RemoveStable(1)
	if !ok || v != 2 {
		t.Fatalf("RemoveStable(1) = (%d,%v), want (2,true)", v, ok)
	}
	want := []int{1, 3, 4, 5}
	if a.Len() != len(want) {
		t.Fatalf("Len = %d, want %d", a.Len(), len(want))
	}
	for i, w := range want {
		if *a.Index(i) != w {
			t.Fatalf("element %d = %d, want %d", i, *a.Index(i), w)
		}
	}
}

func TestCopyIsIndependent(t *testing.T) {
	a := New[int](HeapAllocator{})
	a.PushBack(1)
	a.PushBack(2)
	b, err := a.Copy()
	if err != nil {
		t.Fatalf("Copy: %v", err)
	}
	*b.Index(0) = 99
	if *a.Index(0) != 1 {
		t.Fatalf("mutating the copy mutated the original")
	}
	if !Equal(a, a) {
		t.Fatalf("Equal(a,a) should be true")
	}
	if Equal(a, b) {
		t.Fatalf("Equal(a,b) should be false after mutation")
	}
}

func TestReserveNeverShrinks(t *testing.T) {
	a := New[int](HeapAllocator{})
	if err := a.Reserve(16); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if err := a.Reserve(4); err != nil {
		t.Fatalf("Reserve: %v", err)
	}
	if a.Cap() != 16 {
		t.Fatalf("Cap = %d, want 16 (Reserve must not shrink)", a.Cap())
	}
}
