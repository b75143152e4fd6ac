// Package search implements the style search engine: the policy layer that
// generates candidate Styles, drives the Evaluator, and converges on a
// minimal Style reproducing a reference corpus's formatting (spec §4.5).
package search

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sort"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sourcegraph/conc/pool"

	"github.com/styleprobe/styleprobe/diffmetric"
	"github.com/styleprobe/styleprobe/evaluator"
	"github.com/styleprobe/styleprobe/formatter"
	"github.com/styleprobe/styleprobe/stats"
	"github.com/styleprobe/styleprobe/style"
)

// Mode selects which optional phase runs after Phase B's greedy attachment.
type Mode string

const (
	ModeStandard  Mode = "standard"
	ModeResilient Mode = "resilient"
	ModeVariants  Mode = "variants"
)

// Sentinel errors for the engine's error kinds (spec §7). Run returns
// ErrNoBaseline; on cancellation Run returns the best Result seen so far with
// a nil error, and ErrCancelled is not returned by this package.
var (
	ErrNoBaseline = errors.New("no-baseline: every base style failed on every source")
	ErrCancelled  = errors.New("cancelled")
)

// iterationBoundMultiplier bounds Phase B's iteration count at this many
// times the number of available options, guarding against adapter bugs that
// would otherwise oscillate forever.
const iterationBoundMultiplier = 10

// VariantResult is one Phase D record: an admissible alternative to the
// final Style whose reformatted output differs from it.
type VariantResult struct {
	Option string
	Value  any
	Style  style.Style
	Hunks  []diffmetric.Hunk
}

// Result is what Run returns.
type Result struct {
	Style    style.Style
	Distance int64

	// Converged is false when Phase B hit the iteration bound; Warning then
	// explains why.
	Converged bool
	Warning   string

	Variants []VariantResult
}

// Engine drives one formatter's option space toward a minimal Style.
type Engine struct {
	adapter        formatter.Adapter
	evaluator      *evaluator.Evaluator
	metric         *diffmetric.Metric
	sources        []evaluator.Source
	options        []style.Option // flattened: composite children expanded
	concurrency    int
	perCallTimeout time.Duration

	log   *log.Logger
	stats *stats.Stats
}

// SetStats attaches run counters: every Phase B iteration increments
// stats.Iterations. A nil Stats (the default) makes this a no-op.
func (e *Engine) SetStats(s *stats.Stats) {
	e.stats = s
}

// SetPerCallTimeout bounds each individual Phase D Format/diff-metric
// subprocess call at d, so one slow invocation degrades only its own
// variant attempt rather than the whole Phase D fan-out (spec §5/§7). d <= 0
// (the default) leaves calls bound only by the caller's context.
func (e *Engine) SetPerCallTimeout(d time.Duration) {
	e.perCallTimeout = d
}

// withTimeout derives a per-call context from ctx, applying perCallTimeout
// when one is set.
func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.perCallTimeout <= 0 {
		return ctx, func() {}
	}

	return context.WithTimeout(ctx, e.perCallTimeout)
}

// New builds an Engine for adapter, evaluating every trial against sources
// via ev. metric is used directly by Phase D to diff two formatted outputs
// against each other (rather than against the reference corpus).
func New(adapter formatter.Adapter, ev *evaluator.Evaluator, metric *diffmetric.Metric, sources []evaluator.Source) *Engine {
	return &Engine{
		adapter:     adapter,
		evaluator:   ev,
		metric:      metric,
		sources:     sources,
		options:     flattenOptions(adapter.Options()),
		concurrency: runtime.NumCPU(),
		log:         log.WithPrefix("search"),
	}
}

// flattenOptions expands composite options into their children, scoping
// each child's name under "parent.child" so it behaves as an independent
// option; the composite parent itself carries no direct admissible values
// (spec §9 dynamic option schemas).
func flattenOptions(options []style.Option) []style.Option {
	flat := make([]style.Option, 0, len(options))

	for _, opt := range options {
		if opt.Kind != style.Composite {
			flat = append(flat, opt)
			continue
		}

		for _, child := range flattenOptions(opt.Children) {
			child.Name = opt.Name + "." + child.Name
			flat = append(flat, child)
		}
	}

	sort.Slice(flat, func(i, j int) bool { return flat[i].Name < flat[j].Name })

	return flat
}

// effectiveValue returns the value s carries for opt, falling back to the
// option's canonical default when opt isn't explicitly set.
func effectiveValue(s style.Style, opt style.Option) any {
	if v, ok := s.Get(opt.Name); ok {
		return v
	}

	return opt.Default
}

// substitute applies (opt, value) to s, honoring cardinality reduction:
// setting an option to its default removes it from the explicit map rather
// than recording it.
func substitute(s style.Style, opt style.Option, value any) style.Style {
	if value == opt.Default {
		return s.Without(opt.Name)
	}

	return s.With(opt.Name, value)
}

// Run executes Phase A, Phase B, and whichever optional phase mode selects.
func (e *Engine) Run(ctx context.Context, mode Mode, variantsHunks int) (Result, error) {
	baseline, err := e.phaseA(ctx)
	if err != nil {
		return Result{}, err
	}

	if ctx.Err() != nil {
		return Result{Style: baseline.Style, Distance: baseline.Distance, Converged: true}, nil
	}

	current, converged, warning := e.phaseB(ctx, baseline)

	result := Result{Style: current.Style, Distance: current.Distance, Converged: converged, Warning: warning}

	if ctx.Err() != nil {
		return result, nil
	}

	switch mode {
	case ModeResilient:
		pinned, err := e.phaseC(ctx, current)
		if err != nil {
			return result, err
		}

		result.Style = pinned.Style
		result.Distance = pinned.Distance
	case ModeVariants:
		variants, err := e.phaseD(ctx, current, variantsHunks)
		if err != nil {
			return result, err
		}

		result.Variants = variants
	case ModeStandard:
		// nothing further
	}

	return result, nil
}

// evaluateStyles evaluates every style in styles against the corpus, in
// parallel, returning one style.Candidate per style in the same order.
func (e *Engine) evaluateStyles(ctx context.Context, styles []style.Style) ([]style.Candidate, error) {
	candidates := make([]style.Candidate, len(styles))

	p := pool.New().WithMaxGoroutines(e.concurrency).WithErrors()

	for i, s := range styles {
		i, s := i, s

		p.Go(func() error {
			result, err := e.evaluator.Evaluate(ctx, s, e.sources)
			candidates[i] = style.Candidate{Style: s, Distance: result.Distance}

			if err != nil {
				// partial per-source failures already degrade the aggregate
				// distance; propagate only so callers can log context.
				return fmt.Errorf("style %s: %w", s.Fingerprint(), err)
			}

			return nil
		})
	}

	err := p.Wait()

	return candidates, err
}

// best returns the minimal Candidate under the §3 total order.
func best(candidates []style.Candidate) style.Candidate {
	winner := candidates[0]

	for _, c := range candidates[1:] {
		if style.Compare(c, winner) < 0 {
			winner = c
		}
	}

	return winner
}
