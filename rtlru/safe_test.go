package rtlru

import (
	"sync"
	"testing"

	"github.com/akiscode/real-time-library/rtarray"
)

func TestSafeConcurrentPutGet(t *testing.T) {
	s := NewSafe(New[int, int](rtarray.HeapAllocator{}, 64))

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				k := g*100 + i
				s.Put(k, k*2)
				s.Get(k)
			}
		}(g)
	}
	wg.Wait()

	if s.Len() > 64 {
		t.Fatalf("Len = %d, want <= capacity 64", s.Len())
	}
}

func TestSafeResetClears(t *testing.T) {
	s := NewSafe(New[int, string](rtarray.HeapAllocator{}, 4))
	s.Put(1, "a")
	s.Put(2, "b")
	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	s.Reset()
	if s.Len() != 0 {
		t.Fatalf("Len after Reset = %d, want 0", s.Len())
	}
	if s.Contains(1) {
		t.Fatalf("Contains(1) should be false after Reset")
	}
}
