// Package infer wires the search engine's collaborators (registry, corpus
// expansion, diff metric, evaluation cache, evaluator) into one run driven
// by a cli.Request, mirroring the teacher's cmd/format.Run orchestration.
package infer

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gobwas/glob"

	"github.com/styleprobe/styleprobe/cli"
	"github.com/styleprobe/styleprobe/corpus"
	"github.com/styleprobe/styleprobe/diffmetric"
	"github.com/styleprobe/styleprobe/evalcache"
	"github.com/styleprobe/styleprobe/evaluator"
	"github.com/styleprobe/styleprobe/formatter"
	"github.com/styleprobe/styleprobe/search"
	"github.com/styleprobe/styleprobe/stats"
)

// Options carries the pieces of config.Config that aren't part of the
// core's structured Request (spec §6) but are still needed to wire it up:
// where to look for the formatter's executable, the cache's size budget and
// whether to bypass it, how a missing executable is reported, and the
// per-call timeout.
type Options struct {
	WorkingDir            string
	CacheFootprintBytes   int64
	NoCache               bool
	AllowMissingFormatter bool

	// PerCallTimeout bounds each individual formatter/diff subprocess
	// invocation (spec §5/§7): a slow call degrades only its own
	// (style, source) pair to an infinite distance, not the whole run.
	// <= 0 leaves calls bound only by ctx.
	PerCallTimeout time.Duration
}

// Run executes req end to end and returns the rendered Style plus the
// aggregate distance and any variants (variants mode only).
func Run(ctx context.Context, req cli.Request, opts Options, statz *stats.Stats) (cli.Result, error) {
	registry := formatter.NewRegistry()

	adapter, err := registry.Build(req.FormatterName, opts.WorkingDir, os.Environ())
	if err != nil {
		if errors.Is(err, formatter.ErrCommandNotFound) && opts.AllowMissingFormatter {
			return cli.Result{}, fmt.Errorf("formatter unavailable, skipping: %w", err)
		}

		return cli.Result{}, fmt.Errorf("failed to build formatter %q: %w", req.FormatterName, err)
	}

	excludes, err := compileExcludes(req.Excludes)
	if err != nil {
		return cli.Result{}, err
	}

	filter := corpus.Filter{Includes: adapter.Includes(), Excludes: append(adapter.Excludes(), excludes...)}

	var sources []evaluator.Source

	for _, src := range req.Sources {
		statz.Add(stats.SourcesExpanded, 1)

		root := src
		if !filepath.IsAbs(root) {
			root = filepath.Join(opts.WorkingDir, root)
		}

		expanded, err := corpus.Expand(root, filter)
		if err != nil {
			return cli.Result{}, fmt.Errorf("failed to expand corpus %q: %w", src, err)
		}

		statz.Add(stats.SourcesMatched, int64(len(expanded)))

		for _, s := range expanded {
			sources = append(sources, evaluator.Source{Path: s.Path, FilenameHint: s.FilenameHint, Bytes: s.Bytes})
		}
	}

	if len(sources) == 0 {
		return cli.Result{}, fmt.Errorf("no sources matched formatter %q's filters", req.FormatterName)
	}

	metric, err := diffmetric.Probe(ctx, req.DiffBackend)
	if err != nil {
		return cli.Result{}, fmt.Errorf("failed to select diff backend: %w", err)
	}

	cache := evalcache.New(opts.CacheFootprintBytes)
	cache.SetStats(statz)
	cache.SetDisabled(opts.NoCache)

	ev, err := evaluator.New(adapter, metric, cache, req.Concurrency)
	if err != nil {
		return cli.Result{}, fmt.Errorf("failed to initialise evaluator: %w", err)
	}

	ev.SetStats(statz)
	ev.SetPerCallTimeout(opts.PerCallTimeout)

	engine := search.New(adapter, ev, metric, sources)
	engine.SetStats(statz)
	engine.SetPerCallTimeout(opts.PerCallTimeout)

	result, err := engine.Run(ctx, req.Mode, req.VariantsHunks)
	if err != nil {
		return cli.Result{}, err
	}

	if !result.Converged {
		log.WithPrefix("infer").Warnf("%s", result.Warning)
	}

	rendered, err := adapter.Render(result.Style)
	if err != nil {
		return cli.Result{}, fmt.Errorf("failed to render inferred style: %w", err)
	}

	return cli.Result{Rendered: rendered, Distance: result.Distance, Variants: result.Variants}, nil
}

func compileExcludes(patterns []string) ([]glob.Glob, error) {
	compiled := make([]glob.Glob, 0, len(patterns))

	for _, p := range patterns {
		g, err := glob.Compile(p, '/')
		if err != nil {
			return nil, fmt.Errorf("invalid exclude pattern %q: %w", p, err)
		}

		compiled = append(compiled, g)
	}

	return compiled, nil
}
