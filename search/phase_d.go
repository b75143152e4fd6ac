package search

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/styleprobe/styleprobe/style"
)

// phaseD explores every admissible alternative to the final Style, one
// option change at a time, and reports the ones whose reformatted output
// actually differs from the final Style's output — trials that are
// byte-identical to the final output are excluded (spec §4.5 Phase D).
func (e *Engine) phaseD(ctx context.Context, final style.Candidate, variantsHunks int) ([]VariantResult, error) {
	type variantAttempt struct {
		opt   style.Option
		value any
		trial style.Style
		res   VariantResult
		err   error
	}

	attempts := make([]variantAttempt, 0, len(e.options)*4)

	for _, opt := range e.options {
		value := effectiveValue(final.Style, opt)

		for _, candidateValue := range opt.AdmissibleValues(value) {
			attempts = append(attempts, variantAttempt{
				opt:   opt,
				value: candidateValue,
				trial: substitute(final.Style, opt, candidateValue),
			})
		}
	}

	p := pool.New().WithMaxGoroutines(e.concurrency)

	for i := range attempts {
		i := i

		p.Go(func() {
			attempts[i].res, attempts[i].err = e.diffAgainstFinal(ctx, final.Style, attempts[i].trial, variantsHunks)
		})
	}

	p.Wait()

	variants := make([]VariantResult, 0, len(attempts))

	for _, a := range attempts {
		if a.err != nil {
			e.log.Debugf("phase D: variant %s=%v failed to evaluate, skipping: %v", a.opt.Name, a.value, a.err)
			continue
		}

		if len(a.res.Hunks) == 0 {
			// byte-identical to the final style's output; excluded per spec.
			continue
		}

		a.res.Option = a.opt.Name
		a.res.Value = a.value
		a.res.Style = a.trial

		variants = append(variants, a.res)
	}

	return variants, nil
}

// diffAgainstFinal reformats every source with both final and trial and
// diffs the two outputs against each other (not against the reference),
// collecting up to variantsHunks representative hunks across the corpus.
func (e *Engine) diffAgainstFinal(ctx context.Context, final, trial style.Style, variantsHunks int) (VariantResult, error) {
	var result VariantResult

	for _, src := range e.sources {
		if len(result.Hunks) >= variantsHunks {
			break
		}

		finalCtx, cancel := e.withTimeout(ctx)
		finalOut, err := e.adapter.Format(finalCtx, final, src.Bytes, src.FilenameHint)
		cancel()

		if err != nil {
			return VariantResult{}, fmt.Errorf("formatting %s with final style: %w", src.Path, err)
		}

		trialCtx, cancel := e.withTimeout(ctx)
		trialOut, err := e.adapter.Format(trialCtx, trial, src.Bytes, src.FilenameHint)
		cancel()

		if err != nil {
			return VariantResult{}, fmt.Errorf("formatting %s with trial style: %w", src.Path, err)
		}

		diffCtx, cancel := e.withTimeout(ctx)
		diff, err := e.metric.Compute(diffCtx, finalOut, trialOut)
		cancel()

		if err != nil {
			return VariantResult{}, fmt.Errorf("diffing %s: %w", src.Path, err)
		}

		remaining := variantsHunks - len(result.Hunks)
		if remaining < len(diff.Hunks) {
			result.Hunks = append(result.Hunks, diff.Hunks[:remaining]...)
		} else {
			result.Hunks = append(result.Hunks, diff.Hunks...)
		}
	}

	return result, nil
}
