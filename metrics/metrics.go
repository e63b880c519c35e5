// Package metrics holds the in-process counters, gauges and histograms the
// distributor and merkletool record into, and renders them as Prometheus
// text for node_exporter's textfile collector.
package metrics

import (
	"math"
	"sync"
	"sync/atomic"
	"time"
)

// Counter counts events, such as committed or rejected claims. It only goes
// up.
type Counter struct {
	n atomic.Int64
}

// NewCounter returns a zeroed Counter. The name is kept by the Registry.
func NewCounter(string) *Counter { return new(Counter) }

func (c *Counter) Inc() { c.n.Add(1) }

// Add adds n events at once.
func (c *Counter) Add(n uint64) { c.n.Add(int64(n)) }

func (c *Counter) Value() int64 { return c.n.Load() }

// Gauge holds the latest reading of a level, such as the number of
// registered cohorts.
type Gauge struct {
	v atomic.Int64
}

// NewGauge returns a zeroed Gauge. The name is kept by the Registry.
func NewGauge(string) *Gauge { return new(Gauge) }

func (g *Gauge) Set(v int64) { g.v.Store(v) }

func (g *Gauge) Value() int64 { return g.v.Load() }

// Histogram tracks count, sum, min and max of observed values. Proof depths
// and tree build times are small, bounded distributions, so no quantile
// sketch is kept.
type Histogram struct {
	mu    sync.Mutex
	count int64
	sum   float64
	min   float64
	max   float64
}

// NewHistogram returns an empty Histogram. The name is kept by the Registry.
func NewHistogram(string) *Histogram {
	return &Histogram{
		min: math.MaxFloat64,
		max: -math.MaxFloat64,
	}
}

// Observe records a value.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	h.count++
	h.sum += v
	h.min = math.Min(h.min, v)
	h.max = math.Max(h.max, v)
	h.mu.Unlock()
}

// HistogramSnapshot is a consistent view of a Histogram.
type HistogramSnapshot struct {
	Count int64   `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Mean  float64 `json:"mean"`
}

// Snapshot returns count, sum, min, max and mean taken under one lock. Min,
// Max and Mean are zero when nothing has been observed.
func (h *Histogram) Snapshot() HistogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return HistogramSnapshot{}
	}
	return HistogramSnapshot{
		Count: h.count,
		Sum:   h.sum,
		Min:   h.min,
		Max:   h.max,
		Mean:  h.sum / float64(h.count),
	}
}

// Count returns the number of observations.
func (h *Histogram) Count() int64 { return h.Snapshot().Count }

// Max returns the largest observed value, or 0 if nothing was observed.
func (h *Histogram) Max() float64 { return h.Snapshot().Max }

// Timer records the elapsed duration, in milliseconds, into a Histogram when
// Stop is called.
type Timer struct {
	start time.Time
	hist  *Histogram
}

// NewTimer starts a new timer that will record into h when stopped.
func NewTimer(h *Histogram) *Timer {
	return &Timer{
		start: time.Now(),
		hist:  h,
	}
}

// Stop records the elapsed time and returns it.
func (t *Timer) Stop() time.Duration {
	d := time.Since(t.start)
	if t.hist != nil {
		t.hist.Observe(float64(d.Milliseconds()))
	}
	return d
}
