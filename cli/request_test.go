package cli_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/styleprobe/styleprobe/cli"
	"github.com/styleprobe/styleprobe/config"
	"github.com/styleprobe/styleprobe/diffmetric"
	"github.com/styleprobe/styleprobe/search"
)

func TestFromConfigAppliesDefaults(t *testing.T) {
	as := require.New(t)

	cfg := &config.Config{
		Formatter: "clang-format",
		Sources:   []string{"a.c"},
	}

	req, err := cli.FromConfig(cfg)
	as.NoError(err)
	as.Equal("clang-format", req.FormatterName)
	as.Equal(search.ModeStandard, req.Mode)
	as.Equal(diffmetric.Auto, req.DiffBackend, "an unset diff backend must reach diffmetric.Probe as auto, not be pre-decided here")
	as.Equal(3, req.VariantsHunks)
	as.Greater(req.Concurrency, 0)
}

func TestFromConfigPreservesExplicitAutoDiffBackend(t *testing.T) {
	as := require.New(t)

	cfg := &config.Config{
		Formatter:   "clang-format",
		Sources:     []string{"a.c"},
		DiffBackend: diffmetric.Auto,
	}

	req, err := cli.FromConfig(cfg)
	as.NoError(err)
	as.Equal(diffmetric.Auto, req.DiffBackend, "an explicit auto must pass through to diffmetric.Probe for real probing")
}

func TestFromConfigPreservesExplicitValues(t *testing.T) {
	as := require.New(t)

	cfg := &config.Config{
		Formatter:     "prettier",
		Sources:       []string{"a.js", "b.js"},
		Mode:          string(search.ModeVariants),
		Concurrency:   7,
		DiffBackend:   diffmetric.ExternalGit,
		VariantsHunks: 5,
	}

	req, err := cli.FromConfig(cfg)
	as.NoError(err)
	as.Equal(search.ModeVariants, req.Mode)
	as.Equal(7, req.Concurrency)
	as.Equal(diffmetric.ExternalGit, req.DiffBackend)
	as.Equal(5, req.VariantsHunks)
}

func TestFromConfigRequiresFormatterAndSources(t *testing.T) {
	as := require.New(t)

	_, err := cli.FromConfig(&config.Config{Sources: []string{"a.c"}})
	as.ErrorContains(err, "formatter")

	_, err = cli.FromConfig(&config.Config{Formatter: "clang-format"})
	as.ErrorContains(err, "source")
}
