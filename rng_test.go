package punkrun

import "testing"

func TestRandomRingRange(t *testing.T) {
	r := NewRandomRing(32, 1)
	for i := 0; i < 1000; i++ {
		if v := r.Float(); v < 0 || v >= 1 {
			t.Fatalf("Float = %v, outside [0, 1)", v)
		}
		if n := r.IntN(5); n < 0 || n >= 5 {
			t.Fatalf("IntN(5) = %d", n)
		}
		if b := r.Between(3, 6); b < 3 || b > 6 {
			t.Fatalf("Between(3, 6) = %d", b)
		}
	}
}

func TestRandomRingDeterministic(t *testing.T) {
	a := NewRandomRing(16, 42)
	b := NewRandomRing(16, 42)
	for i := 0; i < 40; i++ {
		if a.Float() != b.Float() {
			t.Fatalf("rings with equal seeds diverged at %d", i)
		}
		if i%7 == 0 {
			a.Refresh()
			b.Refresh()
		}
	}
}

func TestRandomRingRefreshOnlyConsumed(t *testing.T) {
	r := NewRandomRing(8, 5)
	before := append([]float32(nil), r.values...)

	r.Float()
	r.Float()
	r.Float()
	if r.Pending() != 3 {
		t.Fatalf("Pending = %d, want 3", r.Pending())
	}
	r.Refresh()
	if r.Pending() != 0 {
		t.Errorf("Pending after Refresh = %d", r.Pending())
	}
	changed := 0
	for i := range before {
		if r.values[i] != before[i] {
			changed++
			if i >= 3 {
				t.Errorf("index %d regenerated but was never consumed", i)
			}
		}
	}
	if changed == 0 {
		t.Error("Refresh regenerated nothing")
	}
}

func TestRandomRingRefreshWithoutUseIsNoop(t *testing.T) {
	r := NewRandomRing(8, 5)
	before := append([]float32(nil), r.values...)
	r.Refresh()
	for i := range before {
		if r.values[i] != before[i] {
			t.Fatalf("index %d changed on an idle refresh", i)
		}
	}
}

func TestRandomRingWrapsAndCapsPending(t *testing.T) {
	r := NewRandomRing(4, 9)
	for i := 0; i < 10; i++ {
		r.Float()
	}
	if r.Pending() != 4 {
		t.Errorf("Pending = %d, want capped at 4", r.Pending())
	}
	r.Refresh()
	if r.Pending() != 0 {
		t.Error("Refresh did not reset Pending")
	}
}

func TestRandomRingDefaults(t *testing.T) {
	if n := NewRandomRing(0, 1).Len(); n != DefaultRandomRingSize {
		t.Errorf("Len = %d, want %d", n, DefaultRandomRingSize)
	}
	r := NewRandomRing(4, 1)
	if r.IntN(1) != 0 || r.IntN(0) != 0 {
		t.Error("IntN of 0 or 1 must be 0")
	}
	if r.Between(5, 5) != 5 || r.Between(5, 2) != 5 {
		t.Error("Between with an empty range must return lo")
	}
}
