// Package config turns command-line flags, environment variables and an
// optional TOML file into a validated Config, in that precedence order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/styleprobe/styleprobe/diffmetric"
	"github.com/styleprobe/styleprobe/search"
)

// Config is the fully-resolved set of inputs to a search run.
type Config struct {
	Formatter             string   `mapstructure:"formatter"                toml:"formatter,omitempty"`
	Sources               []string `mapstructure:"sources"                  toml:"sources,omitempty"`
	Excludes              []string `mapstructure:"excludes"                 toml:"excludes,omitempty"`
	Mode                  string   `mapstructure:"mode"                     toml:"mode,omitempty"`
	VariantsHunks         int      `mapstructure:"variants-hunks"           toml:"variants-hunks,omitempty"`
	Concurrency           int      `mapstructure:"concurrency"              toml:"concurrency,omitempty"`
	DiffBackend           string   `mapstructure:"diff-backend"             toml:"diff-backend,omitempty"`
	NoCache               bool     `mapstructure:"no-cache"                 toml:"-"` // not allowed in config
	CacheFootprintBytes   int64    `mapstructure:"cache-footprint-bytes"    toml:"cache-footprint-bytes,omitempty"`
	AllowMissingFormatter bool     `mapstructure:"allow-missing-formatter"  toml:"allow-missing-formatter,omitempty"`
	Timeout               time.Duration `mapstructure:"timeout"             toml:"timeout,omitempty"`
	Output                string   `mapstructure:"output"                   toml:"-"` // not allowed in config
	CPUProfile            string   `mapstructure:"cpu-profile"              toml:"cpu-profile,omitempty"`
	Verbose               uint8    `mapstructure:"verbose"                  toml:"-"` // not allowed in config
	WorkingDirectory      string   `mapstructure:"working-dir"              toml:"-"`
}

// SetFlags appends styleprobe's flags to fs. Flag names match the
// mapstructure tags above one-for-one so viper's automatic env/flag
// binding lines up without bespoke glue.
func SetFlags(fs *pflag.FlagSet) {
	fs.String(
		"formatter", "",
		"Name of the registered formatter adapter to infer a style for, e.g. clang-format or prettier. "+
			"(env $STYLEPROBE_FORMATTER)",
	)
	fs.StringSlice(
		"excludes", nil,
		"Exclude files or directories matching the specified globs from the corpus. (env $STYLEPROBE_EXCLUDES)",
	)
	fs.StringP(
		"mode", "m", string(search.ModeStandard),
		"Search mode to run. One of <standard|resilient|variants>. (env $STYLEPROBE_MODE)",
	)
	fs.Int(
		"variants-hunks", 3,
		"Maximum representative diff hunks collected per variant in variants mode. (env $STYLEPROBE_VARIANTS_HUNKS)",
	)
	fs.IntP(
		"concurrency", "j", 0,
		"Maximum concurrent formatter invocations for each candidate style; up to one style per CPU is "+
			"evaluated at a time, so the run as a whole may exceed this. Defaults to the number of CPUs. "+
			"(env $STYLEPROBE_CONCURRENCY)",
	)
	fs.String(
		"diff-backend", diffmetric.Internal,
		"Diff backend to use. One of <auto|external-diff|external-git|internal>. (env $STYLEPROBE_DIFF_BACKEND)",
	)
	fs.Bool(
		"no-cache", false,
		"Ignore the evaluation cache entirely. (env $STYLEPROBE_NO_CACHE)",
	)
	fs.Int64(
		"cache-footprint-bytes", 64<<20,
		"Maximum bytes of reformatted output retained by the evaluation cache. (env $STYLEPROBE_CACHE_FOOTPRINT_BYTES)",
	)
	fs.Bool(
		"allow-missing-formatter", false,
		"Report a missing formatter executable as unavailable rather than as a build failure; "+
			"the run still exits with an error. (env $STYLEPROBE_ALLOW_MISSING_FORMATTER)",
	)
	fs.Duration(
		"timeout", 30*time.Second,
		"Per-invocation timeout for formatter subprocesses. (env $STYLEPROBE_TIMEOUT)",
	)
	fs.StringP(
		"output", "o", "-",
		"File to write the inferred style to. Defaults to stdout. (env $STYLEPROBE_OUTPUT)",
	)
	fs.String(
		"cpu-profile", "",
		"The file into which a cpu profile will be written. (env $STYLEPROBE_CPU_PROFILE)",
	)
	fs.CountP(
		"verbose", "v",
		"Set the verbosity of logs e.g. -vv. (env $STYLEPROBE_VERBOSE)",
	)
	fs.StringP(
		"working-dir", "C", ".",
		"Run as if styleprobe was started in the specified working directory instead of the current "+
			"working directory. (env $STYLEPROBE_WORKING_DIR)",
	)
}

// NewViper creates a Viper instance pre-configured with:
//   - TOML config type
//   - automatic env enabled
//   - the `STYLEPROBE_` env prefix
//   - replacement of `-` with `_` when mapping flags to env, e.g.
//     `cache-footprint-bytes` => `STYLEPROBE_CACHE_FOOTPRINT_BYTES`
func NewViper() *viper.Viper {
	v := viper.New()

	v.SetConfigType("toml")
	v.SetConfigName(".styleprobe")

	v.SetEnvPrefix("styleprobe")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	return v
}

var nameRegex = regexp.MustCompile("^[a-zA-Z0-9_-]+$")

// FromViper takes a viper instance plus the positional source arguments and
// produces a validated Config.
func FromViper(v *viper.Viper, sources []string) (*Config, error) {
	logger := log.WithPrefix("config")

	// values that are not allowed to be specified in a config file
	configReset := map[string]any{
		"no-cache":    false,
		"output":      "-",
		"verbose":     uint8(0),
		"working-dir": ".",
	}

	if err := v.MergeConfigMap(configReset); err != nil {
		return nil, fmt.Errorf("failed to overwrite config values: %w", err)
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	cfg.Sources = sources

	var err error

	cfg.WorkingDirectory, err = filepath.Abs(cfg.WorkingDirectory)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path for working directory: %w", err)
	}

	if cfg.Formatter != "" && !nameRegex.MatchString(cfg.Formatter) {
		return nil, fmt.Errorf("formatter name %q is invalid, must be of the form %s", cfg.Formatter, nameRegex.String())
	}

	switch search.Mode(cfg.Mode) {
	case search.ModeStandard, search.ModeResilient, search.ModeVariants:
	default:
		return nil, fmt.Errorf("mode %q is invalid, must be one of <standard|resilient|variants>", cfg.Mode)
	}

	switch cfg.DiffBackend {
	case diffmetric.Internal, diffmetric.ExternalDiff, diffmetric.ExternalGit, diffmetric.Auto, "":
	default:
		return nil, fmt.Errorf(
			"diff-backend %q is invalid, must be one of <auto|external-diff|external-git|internal>", cfg.DiffBackend,
		)
	}

	if cfg.Concurrency < 0 {
		return nil, errors.New("concurrency must not be negative")
	}

	logger.Debugf("resolved config: %+v", cfg)

	return cfg, nil
}
