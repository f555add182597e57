package rtpool

import (
	"testing"

	"github.com/akiscode/real-time-library/rtarray"
)

func TestGetPutRoundTrip(t *testing.T) {
	p := New[int](rtarray.HeapAllocator{}, 2, 1)
	if p.Len() != 2 {
		t.Fatalf("Len = %d, want 2", p.Len())
	}
	a := p.Get(7)
	if a == nil || *a != 7 {
		t.Fatalf("Get(7) = %v, want pointer to 7", a)
	}
	if p.Len() != 1 {
		t.Fatalf("Len after Get = %d, want 1", p.Len())
	}
	p.Put(a)
	if p.Len() != 2 {
		t.Fatalf("Len after Put = %d, want 2", p.Len())
	}
	if *a != 0 {
		t.Fatalf("Put should zero the slot, got %d", *a)
	}
}

func TestElasticityRefill(t *testing.T) {
	p := New[int](rtarray.HeapAllocator{}, 0, 3)
	if !p.Empty() {
		t.Fatalf("pool constructed with 0 objects should start empty")
	}
	got := make([]*int, 0, 3)
	for i := 0; i < 3; i++ {
		v := p.Get(i)
		if v == nil {
			t.Fatalf("Get(%d) returned nil", i)
		}
		got = append(got, v)
	}
	if p.Len() != 0 {
		t.Fatalf("Len after draining refill = %d, want 0", p.Len())
	}
	// A 4th Get should trigger another elasticity-sized refill.
	v := p.Get(99)
	if v == nil {
		t.Fatalf("Get after drain should refill and succeed")
	}
	if p.Len() != 2 {
		t.Fatalf("Len after 4th Get = %d, want 2 (refilled 3, took 1)", p.Len())
	}
}

func TestGetAutoReleasesOnScope(t *testing.T) {
	p := New[string](rtarray.HeapAllocator{}, 1, 1)
	func() {
		h := p.GetAuto("hello")
		defer h.Release()
		if *h.Value() != "hello" {
			t.Fatalf("Value() = %q, want hello", *h.Value())
		}
		if p.Len() != 0 {
			t.Fatalf("Len while handle held = %d, want 0", p.Len())
		}
	}()
	if p.Len() != 1 {
		t.Fatalf("Len after handle released = %d, want 1", p.Len())
	}
}

func TestPutNilIsNoOp(t *testing.T) {
	p := New[int](rtarray.HeapAllocator{}, 1, 1)
	p.Put(nil)
	if p.Len() != 1 {
		t.Fatalf("Put(nil) should not change Len, got %d", p.Len())
	}
}

func TestSetElasticityClampsToOne(t *testing.T) {
	p := New[int](rtarray.HeapAllocator{}, 0, 1)
	p.SetElasticity(0)
	if p.Elasticity() != 1 {
		t.Fatalf("Elasticity = %d, want clamped to 1", p.Elasticity())
	}
}
