package search

import (
	"context"
	"sort"

	"github.com/styleprobe/styleprobe/style"
)

// phaseA evaluates every named base style and returns the minimal Candidate
// under the §3 ordering. All base styles tying at infinite distance is
// fatal: the formatter could not produce output for this corpus at all.
func (e *Engine) phaseA(ctx context.Context) (style.Candidate, error) {
	bases := e.adapter.BaseStyles()

	names := make([]string, 0, len(bases))
	for name := range bases {
		names = append(names, name)
	}

	sort.Strings(names)

	styles := make([]style.Style, len(names))
	for i, name := range names {
		styles[i] = bases[name]
	}

	candidates, err := e.evaluateStyles(ctx, styles)
	if err != nil {
		e.log.Debugf("phase A: one or more base styles failed: %v", err)
	}

	winner := best(candidates)

	if winner.Distance >= style.Infinite {
		return style.Candidate{}, ErrNoBaseline
	}

	e.log.Infof("phase A: baseline %s (distance=%d)", winner.Style.BaseName, winner.Distance)

	return winner, nil
}
