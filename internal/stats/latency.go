package stats

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

// Snapshot is a point-in-time aggregate of the samples in the window.
type Snapshot struct {
	Count  int     `json:"count"`
	Errors int     `json:"errors"`
	MinMs  int64   `json:"min_ms"`
	MaxMs  int64   `json:"max_ms"`
	AvgMs  float64 `json:"avg_ms"`
	P50Ms  float64 `json:"p50_ms"`
	P95Ms  float64 `json:"p95_ms"`
	P99Ms  float64 `json:"p99_ms"`
}

// Latency tracks recent call durations within a rolling window.
// The zero value is not usable; call NewLatency.
type Latency struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration
	now     func() time.Time
}

func NewLatency(maxAge time.Duration) *Latency {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Latency{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
		now:     time.Now,
	}
}

// Record adds one call of duration d.
func (l *Latency) Record(d time.Duration, err error) {
	if d < 0 {
		d = 0
	}
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)
	l.samples = append(l.samples, sample{at: now, duration: d, failed: err != nil})
}

// Since records the time elapsed since start. Intended for defer.
func (l *Latency) Since(start time.Time, err error) {
	l.Record(l.now().Sub(start), err)
}

func (l *Latency) Snapshot() Snapshot {
	now := l.now()

	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(now)
	if len(l.samples) == 0 {
		return Snapshot{}
	}

	values := make([]int64, 0, len(l.samples))
	var sum int64
	errs := 0
	for _, s := range l.samples {
		ms := s.duration.Milliseconds()
		values = append(values, ms)
		sum += ms
		if s.failed {
			errs++
		}
	}
	slices.Sort(values)

	return Snapshot{
		Count:  len(values),
		Errors: errs,
		MinMs:  values[0],
		MaxMs:  values[len(values)-1],
		AvgMs:  float64(sum) / float64(len(values)),
		P50Ms:  percentile(values, 50),
		P95Ms:  percentile(values, 95),
		P99Ms:  percentile(values, 99),
	}
}

func (l *Latency) pruneLocked(now time.Time) {
	cutoff := now.Add(-l.maxAge)
	l.samples = slices.DeleteFunc(l.samples, func(s sample) bool {
		return s.at.Before(cutoff)
	})
}

// percentile interpolates linearly between the closest ranks.
func percentile(sorted []int64, pct float64) float64 {
	if len(sorted) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sorted[0])
	}
	if pct >= 100 {
		return float64(sorted[len(sorted)-1])
	}

	index := (float64(len(sorted)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sorted) {
		return float64(sorted[lower])
	}
	weight := index - float64(lower)
	lo := float64(sorted[lower])
	hi := float64(sorted[upper])
	return lo + ((hi - lo) * weight)
}
