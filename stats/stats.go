// Package stats tracks run-wide counters for a search (sources expanded,
// evaluations dispatched, cache hits, degraded pairs, search iterations),
// surfaced as a short summary at the end of a run.
package stats

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/atomic"
)

//go:generate enumer -type=Type -text -transform=snake -output=./stats_type.go
type Type int

const (
	SourcesExpanded Type = iota
	SourcesMatched
	Evaluations
	CacheHits
	Degraded
	Iterations
)

// Stats is a thread-safe set of run counters, safe to update concurrently
// from evaluator workers.
type Stats struct {
	start    time.Time
	counters map[Type]*atomic.Int64
}

// New returns a fresh Stats with its clock started.
func New() Stats {
	counters := make(map[Type]*atomic.Int64, 6)

	for _, t := range []Type{SourcesExpanded, SourcesMatched, Evaluations, CacheHits, Degraded, Iterations} {
		counters[t] = atomic.NewInt64(0)
	}

	return Stats{start: time.Now(), counters: counters}
}

// Add increments t's counter by delta and returns the new value.
func (s *Stats) Add(t Type, delta int64) int64 {
	return s.counters[t].Add(delta)
}

// Value returns t's current count.
func (s *Stats) Value(t Type) int64 {
	return s.counters[t].Load()
}

// Elapsed returns the time since this Stats was created.
func (s *Stats) Elapsed() time.Duration {
	return time.Since(s.start)
}

// Print writes a short human-readable summary to stdout.
func (s *Stats) Print() {
	lines := []string{
		"expanded %d source(s), %d matched the formatter's filters",
		"ran %d evaluation(s) (%d cache hit(s), %d degraded) across %d search iteration(s) in %v",
		"",
	}

	fmt.Printf(
		strings.Join(lines, "\n"),
		s.Value(SourcesExpanded), s.Value(SourcesMatched),
		s.Value(Evaluations), s.Value(CacheHits), s.Value(Degraded), s.Value(Iterations),
		s.Elapsed().Round(time.Millisecond),
	)
}
