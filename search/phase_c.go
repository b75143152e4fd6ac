package search

import (
	"context"

	"github.com/styleprobe/styleprobe/style"
)

// phaseC implements resilient mode: for every option Phase B left at its
// default, check whether explicitly pinning it to that same value leaves
// the aggregate distance unchanged. If so, the pin is added — trading
// brevity for robustness against a future change to the formatter's own
// default (spec §4.5 Phase C).
func (e *Engine) phaseC(ctx context.Context, current style.Candidate) (style.Candidate, error) {
	target := current.Distance
	working := current.Style

	for _, opt := range e.options {
		if ctx.Err() != nil {
			break
		}

		if _, explicit := working.Get(opt.Name); explicit {
			continue
		}

		pinned := working.With(opt.Name, opt.Default)

		candidates, err := e.evaluateStyles(ctx, []style.Style{pinned})
		if err != nil {
			e.log.Debugf("phase C: pinning %s failed to evaluate, skipping: %v", opt.Name, err)
			continue
		}

		if candidates[0].Distance != target {
			continue
		}

		e.log.Debugf("phase C: pinning %s=%v (distance unchanged)", opt.Name, opt.Default)

		working = pinned
	}

	return style.Candidate{Style: working, Distance: target}, nil
}
