// Package diffmetric reduces a pair of byte streams to a non-negative
// integer distance, tagged with enough structural detail to render variants
// later (spec §4.1).
package diffmetric

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/log"
)

// ErrMetricUnavailable is surfaced when every configured backend, including
// the internal fallback, fails to compute a distance for a pair.
var ErrMetricUnavailable = errors.New("metric-unavailable: no diff backend could compute a distance")

// Hunk describes one differing region between reference and candidate,
// sufficient for later side-by-side variant rendering.
type Hunk struct {
	// Kind is one of "insert", "delete", "replace", or, internal-backend
	// only, "whitespace" for a replace whose character-level diff touches
	// nothing but whitespace.
	Kind string

	RefStart, RefLen   int
	CandStart, CandLen int
}

// Result is the outcome of comparing two byte streams.
type Result struct {
	// Distance is the count of lines changed: insertions + deletions, where
	// a replacement counts as one insertion plus one deletion per changed
	// line. Trailing-newline presence is significant and counted, since it
	// always surfaces as a line-level difference in the underlying
	// line-oriented diff.
	Distance int64
	Hunks    []Hunk
}

// Backend computes a Result for a pair of byte streams. Implementations
// must be deterministic: identical inputs always yield the same Distance
// (hunk boundaries may differ between backends, but not the Distance).
type Backend interface {
	Name() string
	Available(ctx context.Context) bool
	Compute(ctx context.Context, reference, candidate []byte) (Result, error)
}

// Name identifiers for the three allowed backends (spec §4.1, §6 diff_backend).
const (
	Auto         = "auto"
	ExternalDiff = "external-diff"
	ExternalGit  = "external-git"
	Internal     = "internal"
)

// Metric wraps a single backend, chosen once at startup and frozen for the
// run, with a retry against the internal fallback on backend failure (spec
// §4.1 failure semantics).
type Metric struct {
	name     string
	backend  Backend
	fallback Backend
	log      *log.Logger
}

// Probe selects a backend by name, probing availability when name is Auto.
// The selection is frozen: callers should construct one Metric per run and
// reuse it for every evaluation so distances stay comparable across
// candidates.
func Probe(ctx context.Context, name string) (*Metric, error) {
	fallback := newInternalBackend()

	var chosen Backend

	switch name {
	case ExternalDiff:
		chosen = newExternalDiffBackend()
	case ExternalGit:
		chosen = newExternalGitBackend()
	case Internal, "":
		chosen = fallback
	case Auto:
		candidates := []Backend{newExternalDiffBackend(), newExternalGitBackend()}

		for _, b := range candidates {
			if b.Available(ctx) {
				chosen = b
				break
			}
		}

		if chosen == nil {
			chosen = fallback
		}
	default:
		return nil, fmt.Errorf("unknown diff backend %q", name)
	}

	if chosen != fallback && !chosen.Available(ctx) {
		return nil, fmt.Errorf("diff backend %q is not available", chosen.Name())
	}

	m := &Metric{
		name:     chosen.Name(),
		backend:  chosen,
		fallback: fallback,
		log:      log.WithPrefix("diffmetric | " + chosen.Name()),
	}

	m.log.Debugf("selected diff backend: %s", m.name)

	return m, nil
}

// Name returns the frozen backend's identifier.
func (m *Metric) Name() string {
	return m.name
}

// Compute returns the distance and hunks between reference and candidate.
// On backend failure it retries once against the internal fallback; if both
// fail, ErrMetricUnavailable is returned and the caller should record an
// infinite distance for the pair rather than abort the whole search.
func (m *Metric) Compute(ctx context.Context, reference, candidate []byte) (Result, error) {
	result, err := m.backend.Compute(ctx, reference, candidate)
	if err == nil {
		return result, nil
	}

	m.log.Debugf("backend %s failed, retrying with internal fallback: %v", m.backend.Name(), err)

	result, fallbackErr := m.fallback.Compute(ctx, reference, candidate)
	if fallbackErr != nil {
		return Result{}, fmt.Errorf("%w: %s failed (%v), internal fallback failed (%v)", ErrMetricUnavailable, m.backend.Name(), err, fallbackErr)
	}

	return result, nil
}
