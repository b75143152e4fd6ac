// Package cli defines the structured invocation contract between a
// front end (the cobra commands under cmd/) and the search engine: a
// Request in, a Result out, independent of how either side is driven.
package cli

import (
	"fmt"
	"runtime"

	"github.com/styleprobe/styleprobe/config"
	"github.com/styleprobe/styleprobe/diffmetric"
	"github.com/styleprobe/styleprobe/search"
)

// Request is the core's invocation surface.
type Request struct {
	FormatterName string
	Sources       []string
	Excludes      []string
	Mode          search.Mode
	Concurrency   int
	DiffBackend   string
	VariantsHunks int
}

// Result is the core's result surface: the selected Style rendered in the
// formatter's native syntax, the aggregate distance achieved, and, in
// variants mode, the differing trials.
type Result struct {
	Rendered string
	Distance int64
	Variants []search.VariantResult
}

// FromConfig maps a resolved config.Config onto a Request, applying the
// defaults a CLI front end would otherwise have to duplicate: concurrency
// falls back to the number of CPUs, and an unset/"auto" diff backend is
// passed through as diffmetric.Auto so diffmetric.Probe actually performs
// its documented probing of the external backends before falling back to
// the internal one, rather than being pre-decided here.
func FromConfig(cfg *config.Config) (Request, error) {
	if cfg.Formatter == "" {
		return Request{}, fmt.Errorf("formatter name is required")
	}

	if len(cfg.Sources) == 0 {
		return Request{}, fmt.Errorf("at least one source path is required")
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = runtime.NumCPU()
	}

	diffBackend := cfg.DiffBackend
	if diffBackend == "" {
		diffBackend = diffmetric.Auto
	}

	variantsHunks := cfg.VariantsHunks
	if variantsHunks <= 0 {
		variantsHunks = 3
	}

	mode := search.Mode(cfg.Mode)
	if mode == "" {
		mode = search.ModeStandard
	}

	return Request{
		FormatterName: cfg.Formatter,
		Sources:       cfg.Sources,
		Excludes:      cfg.Excludes,
		Mode:          mode,
		Concurrency:   concurrency,
		DiffBackend:   diffBackend,
		VariantsHunks: variantsHunks,
	}, nil
}
