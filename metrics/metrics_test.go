package metrics

import (
	"sync"
	"testing"
	"time"
)

func TestCounter_IncAndAdd(t *testing.T) {
	c := NewCounter(ClaimsCommitted)
	if c.Value() != 0 {
		t.Fatalf("initial value = %d, want 0", c.Value())
	}
	c.Inc()
	c.Add(9)
	c.Add(0)
	if c.Value() != 10 {
		t.Fatalf("value = %d, want 10", c.Value())
	}
}

func TestGauge_Set(t *testing.T) {
	g := NewGauge(CohortsRegistered)
	g.Set(42)
	if g.Value() != 42 {
		t.Fatalf("value = %d, want 42", g.Value())
	}
	g.Set(-10)
	if g.Value() != -10 {
		t.Fatalf("after Set(-10) value = %d, want -10", g.Value())
	}
}

func TestHistogram_Snapshot(t *testing.T) {
	h := NewHistogram(ProofDepth)
	if s := h.Snapshot(); s != (HistogramSnapshot{}) {
		t.Fatalf("empty snapshot = %+v, want zero", s)
	}
	for _, v := range []float64{17, 3, 10} {
		h.Observe(v)
	}
	s := h.Snapshot()
	if s.Count != 3 || s.Sum != 30 || s.Min != 3 || s.Max != 17 || s.Mean != 10 {
		t.Fatalf("snapshot = %+v", s)
	}
	if h.Count() != 3 || h.Max() != 17 {
		t.Fatalf("Count/Max = %d/%v", h.Count(), h.Max())
	}
}

func TestTimer_Stop(t *testing.T) {
	h := NewHistogram(TreeBuildTime)
	tm := NewTimer(h)
	time.Sleep(2 * time.Millisecond)
	if d := tm.Stop(); d < 2*time.Millisecond {
		t.Fatalf("elapsed = %v, want >= 2ms", d)
	}
	if h.Count() != 1 {
		t.Fatalf("histogram count = %d, want 1", h.Count())
	}

	// A nil histogram must not panic.
	NewTimer(nil).Stop()
}

func TestConcurrentCounter(t *testing.T) {
	c := NewCounter("concurrent")
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 1000; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	if c.Value() != 8000 {
		t.Fatalf("value = %d, want 8000", c.Value())
	}
}
