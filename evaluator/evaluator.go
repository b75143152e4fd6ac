// Package evaluator runs one Style against a corpus of sources in parallel,
// consulting the evaluation cache before paying for a subprocess, and
// degrading individual failures to an infinite distance rather than aborting
// the whole batch (spec §4.4).
package evaluator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/multierr"

	"github.com/styleprobe/styleprobe/diffmetric"
	"github.com/styleprobe/styleprobe/evalcache"
	"github.com/styleprobe/styleprobe/stats"
	"github.com/styleprobe/styleprobe/style"
)

// Formatter is the subset of formatter.Adapter the evaluator depends on,
// kept narrow so this package never needs to import concrete adapters.
type Formatter interface {
	Fingerprint() (string, error)
	Format(ctx context.Context, s style.Style, source []byte, filenameHint string) ([]byte, error)
}

// Source is one file from the reference corpus.
type Source struct {
	// Path is a display/debugging hint; FilenameHint is passed to the
	// formatter (it may influence language/dialect detection).
	Path         string
	FilenameHint string
	Bytes        []byte
}

// Fingerprint returns the content fingerprint of a source, which together
// with the formatter and style fingerprints makes up a cache key.
func (s Source) Fingerprint() string {
	sum := sha256.Sum256(s.Bytes)
	return hex.EncodeToString(sum[:])
}

// SourceResult is the per-source outcome of evaluating one Style.
type SourceResult struct {
	Source   Source
	Distance int64
	Err      error
}

// Result is the aggregate outcome of evaluating one Style against a corpus.
type Result struct {
	Style     style.Style
	Distance  int64
	PerSource []SourceResult

	// Degraded lists sources that could not be evaluated (formatter failure
	// or metric-unavailable); they contribute style.Infinite to Distance but
	// never abort the siblings in the same batch.
	Degraded []SourceResult
}

// Evaluator dispatches (style, source) evaluations across a bounded worker
// pool, backed by an evalcache.Cache so repeated styles never re-run a
// subprocess for a source they've already seen.
type Evaluator struct {
	formatter      Formatter
	formatterFP    string
	metric         *diffmetric.Metric
	cache          *evalcache.Cache
	concurrency    int
	perCallTimeout time.Duration
	log            *log.Logger
	stats          *stats.Stats
}

// SetStats attaches run counters: every dispatched (style, source)
// evaluation increments stats.Evaluations, and every one that degrades to
// an infinite distance also increments stats.Degraded. A nil Stats (the
// default) makes this a no-op.
func (e *Evaluator) SetStats(s *stats.Stats) {
	e.stats = s
}

// SetPerCallTimeout bounds each individual Format/diff-metric subprocess
// call at d, so a single slow invocation degrades only its own
// (style, source) pair to an infinite distance instead of the whole batch
// (spec §5/§7). d <= 0 (the default) leaves calls bound only by ctx.
func (e *Evaluator) SetPerCallTimeout(d time.Duration) {
	e.perCallTimeout = d
}

// withTimeout derives a per-call context from ctx, applying perCallTimeout
// when one is set.
func (e *Evaluator) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.perCallTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, e.perCallTimeout)
}

// New builds an Evaluator. concurrency <= 0 defaults to the number of usable
// CPUs, matching the teacher's default worker-pool sizing.
func New(formatter Formatter, metric *diffmetric.Metric, cache *evalcache.Cache, concurrency int) (*Evaluator, error) {
	fp, err := formatter.Fingerprint()
	if err != nil {
		return nil, fmt.Errorf("failed to fingerprint formatter: %w", err)
	}

	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	return &Evaluator{
		formatter:   formatter,
		formatterFP: fp,
		metric:      metric,
		cache:       cache,
		concurrency: concurrency,
		log:         log.WithPrefix("evaluator"),
	}, nil
}

// Evaluate computes the aggregate distance of s against sources. Context
// cancellation stops new dispatch; sources already in flight are allowed to
// finish (batch-granularity cancellation per spec §4.4).
func (e *Evaluator) Evaluate(ctx context.Context, s style.Style, sources []Source) (Result, error) {
	styleFP := s.Fingerprint()

	p := pool.New().WithMaxGoroutines(e.concurrency)

	var (
		mu      sync.Mutex
		results = make([]SourceResult, 0, len(sources))
		errs    error
	)

	for _, src := range sources {
		src := src

		p.Go(func() {
			sr := e.evaluateOne(ctx, s, styleFP, src)

			mu.Lock()
			defer mu.Unlock()

			results = append(results, sr)
			if sr.Err != nil {
				errs = multierr.Append(errs, fmt.Errorf("%s: %w", src.Path, sr.Err))
			}
		})
	}

	p.Wait()

	result := Result{Style: s, PerSource: results}

	var total int64

	for _, sr := range results {
		if sr.Err != nil {
			result.Degraded = append(result.Degraded, sr)
		}

		total = addDistance(total, sr.Distance)
	}

	result.Distance = total

	return result, errs
}

// addDistance sums two distances while keeping style.Infinite absorbing:
// once any component is infinite, the aggregate stays infinite rather than
// overflowing or wrapping.
func addDistance(a, b int64) int64 {
	if a >= style.Infinite || b >= style.Infinite {
		return style.Infinite
	}

	sum := a + b
	if sum < 0 || sum >= style.Infinite {
		return style.Infinite
	}

	return sum
}

func (e *Evaluator) evaluateOne(ctx context.Context, s style.Style, styleFP string, src Source) SourceResult {
	if e.stats != nil {
		e.stats.Add(stats.Evaluations, 1)
	}

	if ctx.Err() != nil {
		return e.degrade(src, ctx.Err())
	}

	key := evalcache.Key{
		FormatterFingerprint: e.formatterFP,
		StyleFingerprint:     styleFP,
		SourceFingerprint:    src.Fingerprint(),
	}

	entry, err := e.cache.GetOrCompute(ctx, key, func(ctx context.Context) (evalcache.Entry, error) {
		return e.compute(ctx, s, src)
	})
	if err != nil {
		e.log.Debugf("degrading %s to infinite distance: %v", src.Path, err)
		return e.degrade(src, err)
	}

	return SourceResult{Source: src, Distance: entry.Result.Distance}
}

func (e *Evaluator) degrade(src Source, err error) SourceResult {
	if e.stats != nil {
		e.stats.Add(stats.Degraded, 1)
	}

	return SourceResult{Source: src, Distance: style.Infinite, Err: err}
}

func (e *Evaluator) compute(ctx context.Context, s style.Style, src Source) (evalcache.Entry, error) {
	formatCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	formatted, err := e.formatter.Format(formatCtx, s, src.Bytes, src.FilenameHint)
	if err != nil {
		return evalcache.Entry{}, fmt.Errorf("formatter failed: %w", err)
	}

	diffCtx, cancel := e.withTimeout(ctx)
	defer cancel()

	result, err := e.metric.Compute(diffCtx, src.Bytes, formatted)
	if err != nil {
		return evalcache.Entry{}, fmt.Errorf("diff metric failed: %w", err)
	}

	sum := sha256.Sum256(formatted)

	return evalcache.Entry{
		Digest: hex.EncodeToString(sum[:]),
		Result: result,
		Bytes:  formatted,
	}, nil
}
