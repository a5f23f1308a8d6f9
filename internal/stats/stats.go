// Package stats tracks pipeline throughput and latency over a rolling
// window.
package stats

import (
	"sort"
	"sync"
	"time"
)

type sample struct {
	timestamp  time.Time
	durationMs int64
}

// Snapshot is a point-in-time aggregate of pipeline runs.
type Snapshot struct {
	Count          int     `json:"count"`
	MinMs          int64   `json:"min_ms"`
	MaxMs          int64   `json:"max_ms"`
	AvgMs          float64 `json:"avg_ms"`
	P50Ms          float64 `json:"p50_ms"`
	P95Ms          float64 `json:"p95_ms"`
	P99Ms          float64 `json:"p99_ms"`
	DocumentsTotal int64   `json:"documents_total"`
	ChunksTotal    int64   `json:"chunks_total"`
	FailuresTotal  int64   `json:"failures_total"`
}

// Pipeline tracks recent per-document processing durations within a
// rolling window, plus lifetime counters.
type Pipeline struct {
	mu      sync.Mutex
	samples []sample
	maxAge  time.Duration

	documents int64
	chunks    int64
	failures  int64
}

func NewPipeline(maxAge time.Duration) *Pipeline {
	if maxAge <= 0 {
		maxAge = time.Hour
	}
	return &Pipeline{
		samples: make([]sample, 0, 256),
		maxAge:  maxAge,
	}
}

// RecordDocument records one completed document run.
func (s *Pipeline) RecordDocument(duration time.Duration, chunkCount int) {
	ms := duration.Milliseconds()
	if ms < 0 {
		ms = 0
	}
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	s.samples = append(s.samples, sample{timestamp: now, durationMs: ms})
	s.documents++
	s.chunks += int64(chunkCount)
}

// RecordFailure counts a failed document run.
func (s *Pipeline) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures++
}

func (s *Pipeline) Snapshot() Snapshot {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.pruneLocked(now)
	snap := Snapshot{
		DocumentsTotal: s.documents,
		ChunksTotal:    s.chunks,
		FailuresTotal:  s.failures,
	}
	if len(s.samples) == 0 {
		return snap
	}

	values := make([]int64, 0, len(s.samples))
	var sum int64
	for _, sm := range s.samples {
		values = append(values, sm.durationMs)
		sum += sm.durationMs
	}
	sort.Slice(values, func(i, j int) bool { return values[i] < values[j] })

	snap.Count = len(values)
	snap.MinMs = values[0]
	snap.MaxMs = values[len(values)-1]
	snap.AvgMs = float64(sum) / float64(len(values))
	snap.P50Ms = percentile(values, 50)
	snap.P95Ms = percentile(values, 95)
	snap.P99Ms = percentile(values, 99)
	return snap
}

func (s *Pipeline) pruneLocked(now time.Time) {
	cutoff := now.Add(-s.maxAge)
	writeIdx := 0
	for _, sm := range s.samples {
		if !sm.timestamp.Before(cutoff) {
			s.samples[writeIdx] = sm
			writeIdx++
		}
	}
	s.samples = s.samples[:writeIdx]
}

func percentile(sortedValues []int64, pct float64) float64 {
	if len(sortedValues) == 0 {
		return 0
	}
	if pct <= 0 {
		return float64(sortedValues[0])
	}
	if pct >= 100 {
		return float64(sortedValues[len(sortedValues)-1])
	}

	index := (float64(len(sortedValues)-1) * pct) / 100.0
	lower := int(index)
	upper := lower + 1
	if upper >= len(sortedValues) {
		return float64(sortedValues[lower])
	}
	weight := index - float64(lower)
	lo := float64(sortedValues[lower])
	hi := float64(sortedValues[upper])
	return lo + ((hi - lo) * weight)
}
