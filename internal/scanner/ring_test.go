package scanner

import "testing"

func TestRingFillAndWrap(t *testing.T) {
	r := newRing[int](3)
	if r.Full() || r.Len() != 0 {
		t.Fatalf("fresh ring: full=%v len=%d", r.Full(), r.Len())
	}

	r.Push(1)
	r.Push(2)
	if r.Full() {
		t.Fatal("ring full after 2 of 3 pushes")
	}
	if got := r.PeekOldest(); got != 1 {
		t.Errorf("PeekOldest = %d, want 1", got)
	}

	r.Push(3)
	if !r.Full() || r.Len() != 3 {
		t.Fatalf("after 3 pushes: full=%v len=%d", r.Full(), r.Len())
	}

	// Fourth push evicts the oldest.
	r.Push(4)
	if got := r.PeekOldest(); got != 2 {
		t.Errorf("PeekOldest after wrap = %d, want 2", got)
	}

	var got []int
	for v := range r.Values() {
		got = append(got, v)
	}
	want := []int{2, 3, 4}
	if len(got) != len(want) {
		t.Fatalf("Values yielded %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Values yielded %v, want %v", got, want)
		}
	}
}

func TestRingClear(t *testing.T) {
	r := newRing[float64](2)
	r.Push(1.5)
	r.Push(2.5)
	r.Clear()

	if r.Full() || r.Len() != 0 {
		t.Fatalf("after Clear: full=%v len=%d", r.Full(), r.Len())
	}
	for range r.Values() {
		t.Fatal("Values yielded after Clear")
	}
}

func TestRingValuesEarlyStop(t *testing.T) {
	r := newRing[int](4)
	for i := 1; i <= 4; i++ {
		r.Push(i)
	}

	n := 0
	for range r.Values() {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("stopped after %d values, want 2", n)
	}
}
