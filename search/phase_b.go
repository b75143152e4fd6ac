package search

import (
	"context"

	"github.com/styleprobe/styleprobe/stats"
	"github.com/styleprobe/styleprobe/style"
)

// phaseB runs the greedy hill-climbing loop: at each step it enumerates
// every admissible (option, value) substitution on the current Candidate,
// evaluates every resulting trial in parallel, and adopts the minimal trial
// only if it strictly improves on the current Candidate under the §3
// ordering. It terminates on no improvement or on hitting the iteration
// bound (spec §4.5 Phase B, §9 cyclic-risk note).
func (e *Engine) phaseB(ctx context.Context, baseline style.Candidate) (style.Candidate, bool, string) {
	current := baseline

	bound := iterationBoundMultiplier * len(e.options)
	if bound == 0 {
		bound = iterationBoundMultiplier
	}

	for iteration := 0; iteration < bound; iteration++ {
		if ctx.Err() != nil {
			return current, true, ""
		}

		if e.stats != nil {
			e.stats.Add(stats.Iterations, 1)
		}

		trials := e.trialStyles(current.Style)
		if len(trials) == 0 {
			return current, true, ""
		}

		candidates, err := e.evaluateStyles(ctx, trials)
		if err != nil {
			e.log.Debugf("phase B iteration %d: one or more trials failed: %v", iteration, err)
		}

		winner := best(candidates)

		if style.Compare(winner, current) >= 0 {
			// no strict improvement: standard termination.
			return current, true, ""
		}

		e.log.Infof(
			"phase B iteration %d: adopting %s (distance=%d, cardinality=%d)",
			iteration, winner.Style.Fingerprint(), winner.Distance, winner.Cardinality(),
		)

		current = winner
	}

	return current, false, "search-did-not-converge: iteration bound reached"
}

// trialStyles builds every admissible single-option substitution on
// current, deduplicated by fingerprint, in canonical (option name then
// value) order.
func (e *Engine) trialStyles(current style.Style) []style.Style {
	seen := make(map[string]bool)

	var trials []style.Style

	for _, opt := range e.options {
		value := effectiveValue(current, opt)

		for _, candidateValue := range opt.AdmissibleValues(value) {
			trial := substitute(current, opt, candidateValue)

			fp := trial.Fingerprint()
			if seen[fp] {
				continue
			}

			seen[fp] = true

			trials = append(trials, trial)
		}
	}

	return trials
}
