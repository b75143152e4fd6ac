package search_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/gobwas/glob"
	"github.com/stretchr/testify/require"

	"github.com/styleprobe/styleprobe/diffmetric"
	"github.com/styleprobe/styleprobe/evalcache"
	"github.com/styleprobe/styleprobe/evaluator"
	"github.com/styleprobe/styleprobe/search"
	"github.com/styleprobe/styleprobe/style"
)

// fakeAdapter is a minimal in-process formatter.Adapter: it ignores the
// source's actual content and instead renders a line whose indentation
// encodes the style's IndentWidth option, so distance-to-reference is
// driven purely by the option under test.
type fakeAdapter struct {
	bases     map[string]style.Style
	failBases map[string]bool
}

func newFakeAdapter() *fakeAdapter {
	return &fakeAdapter{
		bases: map[string]style.Style{
			"Google": style.New("Google"),
			"LLVM":   style.New("LLVM"),
		},
	}
}

func (a *fakeAdapter) Name() string { return "fake" }

func (a *fakeAdapter) Options() []style.Option {
	return []style.Option{
		{Name: "IndentWidth", Kind: style.BoundedInt, Default: int64(4), Min: 2, Max: 8, Sweep: []int64{2, 4, 8}},
		{Name: "UseTab", Kind: style.Boolean, Default: false},
	}
}

func (a *fakeAdapter) BaseStyles() map[string]style.Style { return a.bases }

func (a *fakeAdapter) Includes() []glob.Glob { return nil }
func (a *fakeAdapter) Excludes() []glob.Glob { return nil }

func (a *fakeAdapter) Fingerprint() (string, error) { return "fake-v1", nil }

func (a *fakeAdapter) Format(_ context.Context, s style.Style, _ []byte, _ string) ([]byte, error) {
	if a.failBases[s.BaseName] {
		return nil, errors.New("simulated: formatter rejects this input")
	}

	indent, _ := s.Get("IndentWidth")
	width, _ := indent.(int64)

	if width == 0 {
		width = 4
	}

	useTab, _ := s.Get("UseTab")
	tab, _ := useTab.(bool)

	prefix := ""
	for i := int64(0); i < width; i++ {
		prefix += " "
	}

	if tab {
		prefix = "\t"
	}

	return []byte(fmt.Sprintf("%sline\n", prefix)), nil
}

func (a *fakeAdapter) Render(s style.Style) (string, error) {
	return s.BaseName, nil
}

func newTestEngine(t *testing.T, adapter *fakeAdapter, sources []evaluator.Source) (*search.Engine, *diffmetric.Metric) {
	t.Helper()

	metric, err := diffmetric.Probe(context.Background(), diffmetric.Internal)
	require.NoError(t, err)

	cache := evalcache.New(1 << 20)

	ev, err := evaluator.New(adapter, metric, cache, 4)
	require.NoError(t, err)

	return search.New(adapter, ev, metric, sources), metric
}

func TestPhaseASelectsMinimalBaseline(t *testing.T) {
	as := require.New(t)

	adapter := newFakeAdapter()
	// reference already matches the 4-space default, so "Google"/"LLVM" tie
	// at distance 0; the ordering's canonical tie-break still picks one
	// deterministically.
	sources := []evaluator.Source{{Path: "a.txt", Bytes: []byte("    line\n")}}

	engine, _ := newTestEngine(t, adapter, sources)

	result, err := engine.Run(context.Background(), search.ModeStandard, 0)
	as.NoError(err)
	as.Equal(int64(0), result.Distance)
	as.Contains([]string{"Google", "LLVM"}, result.Style.BaseName)
}

func TestPhaseBAttachesSingleOptionDelta(t *testing.T) {
	as := require.New(t)

	adapter := newFakeAdapter()
	// reference uses 2-space indent; default base styles use 4.
	sources := []evaluator.Source{{Path: "a.txt", Bytes: []byte("  line\n")}}

	engine, _ := newTestEngine(t, adapter, sources)

	result, err := engine.Run(context.Background(), search.ModeStandard, 0)
	as.NoError(err)
	as.Equal(int64(0), result.Distance)

	indent, ok := result.Style.Get("IndentWidth")
	as.True(ok, "IndentWidth must be explicit since it differs from the default")
	as.Equal(int64(2), indent)

	_, useTabSet := result.Style.Get("UseTab")
	as.False(useTabSet, "UseTab must stay implicit: it never helped, so cardinality stays minimal")
}

func TestRunNoBaselineWhenAllBasesFail(t *testing.T) {
	as := require.New(t)

	adapter := newFakeAdapter()
	adapter.failBases = map[string]bool{"Google": true, "LLVM": true}

	sources := []evaluator.Source{{Path: "a.txt", Bytes: []byte("    line\n")}}

	engine, _ := newTestEngine(t, adapter, sources)

	_, err := engine.Run(context.Background(), search.ModeStandard, 0)
	as.ErrorIs(err, search.ErrNoBaseline)
}

func TestPhaseCPinsOptionsThatLeaveDistanceUnchanged(t *testing.T) {
	as := require.New(t)

	adapter := newFakeAdapter()
	sources := []evaluator.Source{{Path: "a.txt", Bytes: []byte("    line\n")}}

	engine, _ := newTestEngine(t, adapter, sources)

	result, err := engine.Run(context.Background(), search.ModeResilient, 0)
	as.NoError(err)
	as.Equal(int64(0), result.Distance)

	indent, ok := result.Style.Get("IndentWidth")
	as.True(ok, "resilient mode pins IndentWidth at its default since that doesn't change the distance")
	as.Equal(int64(4), indent)
}

func TestPhaseDExcludesByteIdenticalVariants(t *testing.T) {
	as := require.New(t)

	adapter := newFakeAdapter()
	sources := []evaluator.Source{{Path: "a.txt", Bytes: []byte("  line\n")}}

	engine, _ := newTestEngine(t, adapter, sources)

	result, err := engine.Run(context.Background(), search.ModeVariants, 10)
	as.NoError(err)

	for _, v := range result.Variants {
		as.NotEmpty(v.Hunks, "phase D must exclude variants byte-identical to the final style's output")
	}

	var sawIndentFour bool

	for _, v := range result.Variants {
		if v.Option == "IndentWidth" && v.Value == int64(4) {
			sawIndentFour = true
		}
	}

	as.True(sawIndentFour, "the default indent width must appear as a differing variant")
}
