package embed

import (
	"slices"
	"sync"
	"time"
)

type sample struct {
	at       time.Time
	duration time.Duration
	failed   bool
}

// StatsSnapshot aggregates the embedding calls still inside the window.
// Latency percentiles cover successful calls only.
type StatsSnapshot struct {
	Calls    int     `json:"calls"`
	Failures int     `json:"failures"`
	Retries  int     `json:"retries"`
	MinMs    float64 `json:"min_ms"`
	MaxMs    float64 `json:"max_ms"`
	AvgMs    float64 `json:"avg_ms"`
	P50Ms    float64 `json:"p50_ms"`
	P95Ms    float64 `json:"p95_ms"`
	P99Ms    float64 `json:"p99_ms"`
	WindowS  float64 `json:"window_s"`
}

// Stats tracks recent embedding calls within a rolling window. A nil *Stats
// ignores every call.
type Stats struct {
	mu      sync.Mutex
	samples []sample
	retries []time.Time
	window  time.Duration
	now     func() time.Time
}

func NewStats(window time.Duration) *Stats {
	if window <= 0 {
		window = time.Hour
	}
	return &Stats{
		samples: make([]sample, 0, 256),
		window:  window,
		now:     time.Now,
	}
}

// Record adds one finished call.
func (s *Stats) Record(d time.Duration, err error) {
	if s == nil {
		return
	}
	if d < 0 {
		d = 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	s.pruneLocked(now)
	s.samples = append(s.samples, sample{at: now, duration: d, failed: err != nil})
}

// RecordRetry notes that a call is being attempted again.
func (s *Stats) RecordRetry() {
	if s == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.retries = append(s.retries, s.now())
}

func (s *Stats) Snapshot() StatsSnapshot {
	if s == nil {
		return StatsSnapshot{}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pruneLocked(s.now())

	snap := StatsSnapshot{Calls: len(s.samples), Retries: len(s.retries), WindowS: s.window.Seconds()}
	values := make([]float64, 0, len(s.samples))
	var sum float64
	for _, sm := range s.samples {
		if sm.failed {
			snap.Failures++
			continue
		}
		ms := float64(sm.duration) / float64(time.Millisecond)
		values = append(values, ms)
		sum += ms
	}
	if len(values) == 0 {
		return snap
	}
	slices.Sort(values)

	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = sum / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *Stats) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.window)
	s.samples = slices.DeleteFunc(s.samples, func(sm sample) bool { return sm.at.Before(cutoff) })
	s.retries = slices.DeleteFunc(s.retries, func(t time.Time) bool { return t.Before(cutoff) })
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []float64, pct float64) float64 {
	switch {
	case len(sorted) == 0:
		return 0
	case pct <= 0:
		return sorted[0]
	case pct >= 100:
		return sorted[len(sorted)-1]
	}
	index := float64(len(sorted)-1) * pct / 100
	lower := int(index)
	if lower+1 >= len(sorted) {
		return sorted[lower]
	}
	weight := index - float64(lower)
	return sorted[lower] + (sorted[lower+1]-sorted[lower])*weight
}
