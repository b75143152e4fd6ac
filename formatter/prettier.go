package formatter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/gobwas/glob"

	"github.com/styleprobe/styleprobe/style"
)

// prettierOptions is the fixed set of options the search engine may attach.
// Prettier has a single implicit base style (its own defaults), so unlike
// clang-format there is nothing to name in BasedOnStyle.
func prettierOptions() []style.Option {
	return []style.Option{
		{Name: "printWidth", Kind: style.BoundedInt, Default: int64(80), Min: 40, Max: 160, Sweep: []int64{60, 80, 100, 120}},
		{Name: "tabWidth", Kind: style.BoundedInt, Default: int64(2), Min: 1, Max: 8, Sweep: []int64{2, 4, 8}},
		{Name: "useTabs", Kind: style.Boolean, Default: false},
		{Name: "semi", Kind: style.Boolean, Default: true},
		{Name: "singleQuote", Kind: style.Boolean, Default: false},
		{
			Name: "trailingComma", Kind: style.Enumerated, Default: "all",
			Values: []string{"none", "es5", "all"},
		},
		{Name: "bracketSpacing", Kind: style.Boolean, Default: true},
		{
			Name: "arrowParens", Kind: style.Enumerated, Default: "always",
			Values: []string{"avoid", "always"},
		},
	}
}

// prettierSchema describes prettier's options and its single implicit base
// style without resolving the prettier executable itself.
func prettierSchema() Schema {
	return Schema{
		Options:    prettierOptions(),
		BaseStyles: map[string]style.Style{"default": style.New("default")},
	}
}

type prettierAdapter struct {
	workingDir string
	executable string
	includes   []glob.Glob
	excludes   []glob.Glob
}

func newPrettierAdapter(workingDir string, env []string) (Adapter, error) {
	executable, err := lookExecutable(workingDir, env, "prettier")
	if err != nil {
		return nil, err
	}

	includes, err := compileGlobs([]string{"*.js", "*.jsx", "*.ts", "*.tsx", "*.json", "*.css", "*.scss", "*.md", "*.yaml", "*.yml"})
	if err != nil {
		return nil, err
	}

	return &prettierAdapter{
		workingDir: workingDir,
		executable: executable,
		includes:   includes,
	}, nil
}

func (a *prettierAdapter) Name() string { return "prettier" }

func (a *prettierAdapter) Options() []style.Option { return prettierOptions() }

func (a *prettierAdapter) Includes() []glob.Glob { return a.includes }
func (a *prettierAdapter) Excludes() []glob.Glob { return a.excludes }

// BaseStyles returns prettier's single implicit baseline: its own built-in
// defaults, with no options overridden.
func (a *prettierAdapter) BaseStyles() map[string]style.Style {
	return map[string]style.Style{"default": style.New("default")}
}

func (a *prettierAdapter) Fingerprint() (string, error) {
	return fingerprintExecutable(a.Name(), a.executable)
}

// Format writes s as a temporary .prettierrc.json and invokes prettier with
// --no-editorconfig so only that explicit config applies, piping source on
// stdin and reading the formatted result from stdout.
func (a *prettierAdapter) Format(ctx context.Context, s style.Style, source []byte, filenameHint string) ([]byte, error) {
	configPath, err := writePrettierConfig(s)
	if err != nil {
		return nil, err
	}
	defer os.Remove(configPath)

	if filenameHint == "" {
		filenameHint = "source.js"
	}

	cmd := exec.CommandContext(ctx, a.executable, //nolint:gosec
		"--no-editorconfig",
		"--config", configPath,
		"--stdin-filepath", filenameHint,
	)
	cmd.Dir = a.workingDir
	cmd.Stdin = bytes.NewReader(source)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("prettier failed: %w", err)
	}

	return out, nil
}

// Render serializes s as a .prettierrc.json document.
func (a *prettierAdapter) Render(s style.Style) (string, error) {
	data, err := renderPrettierJSON(s)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func renderPrettierJSON(s style.Style) ([]byte, error) {
	values := make(map[string]any, len(s.Names()))
	for _, name := range s.Names() {
		value, _ := s.Get(name)
		values[name] = value
	}

	data, err := json.MarshalIndent(values, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to render prettier config: %w", err)
	}

	return data, nil
}

func writePrettierConfig(s style.Style) (string, error) {
	data, err := renderPrettierJSON(s)
	if err != nil {
		return "", err
	}

	f, err := os.CreateTemp("", "styleprobe-prettierrc-*.json")
	if err != nil {
		return "", fmt.Errorf("failed to create prettier config temp file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("failed to write prettier config: %w", err)
	}

	return f.Name(), nil
}
