// Package cmd wires styleprobe's cobra command tree: a root command that
// loads config.Config from flags/env/TOML, and the infer/formatters
// subcommands that actually drive the search engine.
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime/pprof"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/styleprobe/styleprobe/cli"
	"github.com/styleprobe/styleprobe/cmd/formatters"
	"github.com/styleprobe/styleprobe/cmd/infer"
	"github.com/styleprobe/styleprobe/config"
	"github.com/styleprobe/styleprobe/stats"
)

const (
	name    = "styleprobe"
	version = "dev"
)

// NewRoot builds the full command tree.
func NewRoot() *cobra.Command {
	v := config.NewViper()

	root := &cobra.Command{
		Use:     name,
		Short:   "Infer a formatter's style from a reference corpus",
		Version: version,
	}

	root.SetVersionTemplate(name + " {{.Version}}\n")

	config.SetFlags(root.PersistentFlags())

	if err := v.BindPFlags(root.PersistentFlags()); err != nil {
		cobra.CheckErr(fmt.Errorf("failed to bind flags to viper: %w", err))
	}

	root.AddCommand(newInferCommand(v))
	root.AddCommand(newFormattersCommand())
	root.AddCommand(newCompletionsCommand())

	return root
}

func newInferCommand(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "infer <formatter> <sources...>",
		Short: "Run the search engine and print the inferred style",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInfer(v, cmd, args[0], args[1:])
		},
	}
}

func runInfer(v *viper.Viper, cmd *cobra.Command, formatterName string, sources []string) error {
	cmd.SilenceUsage = true

	workingDir, err := filepath.Abs(v.GetString("working-dir"))
	if err != nil {
		return fmt.Errorf("failed to get absolute path for working directory: %w", err)
	}

	if err := loadConfigFile(v, workingDir); err != nil {
		return err
	}

	cfg, err := config.FromViper(v, sources)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cfg.Formatter = formatterName

	configureLogging(cfg.Verbose)

	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile) //nolint:gosec
		if err != nil {
			return fmt.Errorf("failed to create cpu profile file %q: %w", cfg.CPUProfile, err)
		}
		defer f.Close()

		if err := pprof.StartCPUProfile(f); err != nil {
			return fmt.Errorf("failed to start cpu profile: %w", err)
		}
		defer pprof.StopCPUProfile()
	}

	req, err := cli.FromConfig(cfg)
	if err != nil {
		return err
	}

	statz := stats.New()

	// Only the run as a whole is cancelled on signal; cfg.Timeout bounds each
	// individual formatter/diff subprocess call instead (spec §5/§7), so a
	// single slow invocation degrades only its own (style, source) pair.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	opts := infer.Options{
		WorkingDir:            cfg.WorkingDirectory,
		CacheFootprintBytes:   cfg.CacheFootprintBytes,
		NoCache:               cfg.NoCache,
		AllowMissingFormatter: cfg.AllowMissingFormatter,
		PerCallTimeout:        cfg.Timeout,
	}

	result, err := infer.Run(ctx, req, opts, &statz)
	if err != nil {
		return err
	}

	if err := writeOutput(cfg.Output, result); err != nil {
		return err
	}

	statz.Print()

	return nil
}

func loadConfigFile(v *viper.Viper, workingDir string) error {
	path := filepath.Join(workingDir, ".styleprobe.toml")

	if _, err := os.Stat(path); err != nil {
		// no config file is not an error: flags/env alone are a valid invocation.
		return nil
	}

	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config file %q: %w", path, err)
	}

	return nil
}

func configureLogging(verbose uint8) {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)

	switch {
	case verbose == 0:
		log.SetLevel(log.WarnLevel)
	case verbose == 1:
		log.SetLevel(log.InfoLevel)
	default:
		log.SetLevel(log.DebugLevel)
	}
}

func writeOutput(path string, result cli.Result) error {
	out := os.Stdout

	if path != "" && path != "-" {
		f, err := os.Create(path) //nolint:gosec
		if err != nil {
			return fmt.Errorf("failed to open output file %q: %w", path, err)
		}
		defer f.Close()

		out = f
	}

	fmt.Fprintln(out, result.Rendered)
	fmt.Fprintf(os.Stderr, "aggregate distance: %d\n", result.Distance)

	for _, variant := range result.Variants {
		fmt.Fprintf(os.Stderr, "variant %s=%v: %d hunk(s) differ from the final style\n",
			variant.Option, variant.Value, len(variant.Hunks))
	}

	return nil
}

func newFormattersCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "formatters",
		Short: "List the registered formatter adapters and their options",
		RunE: func(cmd *cobra.Command, args []string) error {
			return formatters.Run(os.Stdout, os.Environ())
		},
	}
}

func newCompletionsCommand() *cobra.Command {
	return &cobra.Command{
		Use:       "completions <bash|zsh|fish>",
		Short:     "Generate shell completion scripts",
		Args:      cobra.ExactValidArgs(1),
		ValidArgs: []string{"bash", "zsh", "fish"},
		RunE:      generateShellCompletions,
	}
}
