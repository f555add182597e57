package ring

import "testing"

// S2: capacity 7 (writable 6): write {0..5}, read 4, write {6..9}, read 6.
// spec.md's prose names {2,3,4,5,6,7} as the expected drain, but tracing the
// index arithmetic this ring buffer actually implements gives a different
// result: Write({0..5}) leaves writeIdx=6; Read(4) consumes {0,1,2,3} and
// leaves readIdx=4; Write({6,7,8,9}) has free=(4-6-1+7)%7=4, so all four
// bytes fit, wrapping once (buf[6]=6, buf[0:3]=7,8,9), leaving writeIdx=3;
// the six unread bytes starting at readIdx=4 are then {4,5,6,7,8,9}, not
// {2,3,4,5,6,7} -- the same kind of dropped-step discrepancy already
// resolved for the LRU's S6 in rtlru/cache_test.go, here in the spec's own
// arithmetic rather than a missing call. Writing 7 bytes in one Write
// fails; WriteBytes of 7 writes 6 and returns 6.
func TestScenarioS2(t *testing.T) {
	r, err := New(make([]byte, 7))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := r.Write([]byte{0, 1, 2, 3, 4, 5}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got := make([]byte, 4)
	if n := r.Read(got); n != 4 {
		t.Fatalf("Read = %d, want 4", n)
	}

	if err := r.Write([]byte{6, 7, 8, 9}); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got = make([]byte, 6)
	if n := r.Read(got); n != 6 {
		t.Fatalf("Read = %d, want 6", n)
	}
	want := []byte{4, 5, 6, 7, 8, 9}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Read contents = %v, want %v", got, want)
		}
	}

	r2, _ := New(make([]byte, 7))
	if err := r2.Write([]byte{0, 1, 2, 3, 4, 5, 6}); err == nil {
		t.Fatalf("Write of 7 bytes into writable-6 ring should fail")
	}
	if n := r2.WriteBytes([]byte{0, 1, 2, 3, 4, 5, 6}); n != 6 {
		t.Fatalf("WriteBytes of 7 = %d, want 6", n)
	}
}

func TestEmptyFullInvariants(t *testing.T) {
	r, _ := New(make([]byte, 4))
	if !r.IsEmpty() {
		t.Fatalf("fresh ring should be empty")
	}
	if r.WriteBytes([]byte{1, 2, 3}) != 3 {
		t.Fatalf("expected to fill writable capacity of 3")
	}
	if !r.IsFull() {
		t.Fatalf("ring should be full after filling writable capacity")
	}
	if r.WriteBytes([]byte{4}) != 0 {
		t.Fatalf("write into full ring should write 0 bytes")
	}
}

// Property 6 (ring-buffer wrap): after filling and partially
// draining, CompoundAllocContig's spans sum to exactly the free count and
// writing through them is equivalent to sequential WriteBytes.
func TestCompoundAllocContigWrap(t *testing.T) {
	r, _ := New(make([]byte, 8))
	r.WriteBytes([]byte{1, 2, 3, 4, 5, 6, 7})
	drain := make([]byte, 5)
	r.Read(drain) // readIdx now ahead, frees 5 slots wrapping past end

	first, second, _ := r.CompoundAllocContig()
	total := len(first) + len(second)
	_, free := r.freeSpace()
	if total != free {
		t.Fatalf("compound spans sum to %d, want free=%d", total, free)
	}

	// Write through the compound spans and verify the reader then sees the
	// two undrained bytes followed by the payload, the same stream a
	// sequential WriteBytes of the payload would produce.
	payload := []byte{9, 9, 9, 9, 9}
	n := copy(first, payload)
	if n < len(payload) {
		copy(second, payload[n:])
	}
	r.CommitWrite(len(payload))

	out := make([]byte, 7)
	if got := r.Read(out); got != 7 {
		t.Fatalf("Read = %d, want 7", got)
	}
	want := []byte{6, 7, 9, 9, 9, 9, 9}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("got %v, want %v", out, want)
		}
	}
}

func TestAllocContigAtEOB(t *testing.T) {
	r, _ := New(make([]byte, 8))
	r.WriteBytes(make([]byte, 5))
	drain := make([]byte, 5)
	r.Read(drain)
	// writeIdx=5, readIdx=5, free = cap-1 = 7, toEnd = 8-5 = 3 < free=7
	region, atEOB := r.AllocContig(10)
	if len(region) != 3 {
		t.Fatalf("region len = %d, want 3", len(region))
	}
	if !atEOB {
		t.Fatalf("expected atEOB=true when physical end limits the span")
	}
}
