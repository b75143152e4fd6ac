package formatter

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"

	"github.com/gobwas/glob"
	"gopkg.in/yaml.v3"

	"github.com/styleprobe/styleprobe/style"
)

// clangFormatBaseStyles are the base styles clang-format ships with; each
// is a legal value of its own BasedOnStyle key.
var clangFormatBaseStyles = []string{
	"LLVM", "Google", "Chromium", "Mozilla", "WebKit", "Microsoft",
}

// clangFormatOptions is the fixed set of options the search engine may
// attach on top of a base style.
func clangFormatOptions() []style.Option {
	return []style.Option{
		{Name: "IndentWidth", Kind: style.BoundedInt, Default: int64(2), Min: 1, Max: 8},
		{Name: "UseTab", Kind: style.Boolean, Default: false},
		{Name: "ColumnLimit", Kind: style.BoundedInt, Default: int64(80), Min: 0, Max: 200, Sweep: []int64{0, 80, 100, 120}},
		{
			Name: "BreakBeforeBraces", Kind: style.Enumerated, Default: "Attach",
			Values: []string{"Attach", "Linux", "Mozilla", "Stroustrup", "Allman", "GNU", "WebKit", "Custom"},
		},
		{
			Name: "AllowShortFunctionsOnASingleLine", Kind: style.Enumerated, Default: "All",
			Values: []string{"None", "InlineOnly", "Empty", "Inline", "All"},
		},
		{
			Name: "PointerAlignment", Kind: style.Enumerated, Default: "Right",
			Values: []string{"Left", "Right", "Middle"},
		},
		{
			Name: "SpaceBeforeParens", Kind: style.Enumerated, Default: "ControlStatements",
			Values: []string{"Never", "ControlStatements", "Always"},
		},
		{
			Name: "NamespaceIndentation", Kind: style.Enumerated, Default: "None",
			Values: []string{"None", "Inner", "All"},
		},
		{Name: "AlignConsecutiveAssignments", Kind: style.Boolean, Default: false},
	}
}

// clangFormatSchema describes clang-format's options and base styles
// without resolving the clang-format executable itself.
func clangFormatSchema() Schema {
	styles := make(map[string]style.Style, len(clangFormatBaseStyles))
	for _, name := range clangFormatBaseStyles {
		styles[name] = style.New(name)
	}

	return Schema{Options: clangFormatOptions(), BaseStyles: styles}
}

type clangFormatAdapter struct {
	workingDir string
	executable string
	includes   []glob.Glob
	excludes   []glob.Glob
}

func newClangFormatAdapter(workingDir string, env []string) (Adapter, error) {
	executable, err := lookExecutable(workingDir, env, "clang-format")
	if err != nil {
		return nil, err
	}

	includes, err := compileGlobs([]string{"*.c", "*.h", "*.cc", "*.cpp", "*.cxx", "*.hpp", "*.hh", "*.m", "*.mm"})
	if err != nil {
		return nil, err
	}

	return &clangFormatAdapter{
		workingDir: workingDir,
		executable: executable,
		includes:   includes,
	}, nil
}

func (a *clangFormatAdapter) Name() string { return "clang-format" }

func (a *clangFormatAdapter) Options() []style.Option { return clangFormatOptions() }

func (a *clangFormatAdapter) Includes() []glob.Glob { return a.includes }
func (a *clangFormatAdapter) Excludes() []glob.Glob { return a.excludes }

func (a *clangFormatAdapter) BaseStyles() map[string]style.Style {
	styles := make(map[string]style.Style, len(clangFormatBaseStyles))
	for _, name := range clangFormatBaseStyles {
		styles[name] = style.New(name)
	}

	return styles
}

func (a *clangFormatAdapter) Fingerprint() (string, error) {
	return fingerprintExecutable(a.Name(), a.executable)
}

// Format invokes clang-format with an inline flow-style YAML mapping built
// from s, piping source on stdin and reading the reformatted file from
// stdout. clang-format treats a "-style" value starting with "{" as literal
// YAML rather than a named style lookup.
func (a *clangFormatAdapter) Format(ctx context.Context, s style.Style, source []byte, filenameHint string) ([]byte, error) {
	styleArg, err := clangFormatStyleArg(s)
	if err != nil {
		return nil, fmt.Errorf("failed to render clang-format style: %w", err)
	}

	args := []string{"-style=" + styleArg}
	if filenameHint != "" {
		args = append(args, "-assume-filename="+filenameHint)
	}

	cmd := exec.CommandContext(ctx, a.executable, args...) //nolint:gosec
	cmd.Dir = a.workingDir
	cmd.Stdin = bytes.NewReader(source)

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("clang-format failed: %w", err)
	}

	return out, nil
}

// Render serializes s as the same flow-style YAML mapping passed to
// "-style": a single line is a legal, if unusual, .clang-format document.
func (a *clangFormatAdapter) Render(s style.Style) (string, error) {
	return clangFormatStyleArg(s)
}

// clangFormatStyleArg renders s as a single-line YAML flow mapping, e.g.
// "{BasedOnStyle: LLVM, IndentWidth: 2, UseTab: false}".
func clangFormatStyleArg(s style.Style) (string, error) {
	node := &yaml.Node{Kind: yaml.MappingNode, Style: yaml.FlowStyle}

	appendPair := func(key string, value any) {
		node.Content = append(node.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: key},
			scalarNode(value),
		)
	}

	appendPair("BasedOnStyle", s.BaseName)

	for _, name := range s.Names() {
		value, _ := s.Get(name)
		appendPair(name, value)
	}

	data, err := yaml.Marshal(node)
	if err != nil {
		return "", err
	}

	// yaml.Marshal appends a trailing newline; clang-format expects a
	// single CLI token.
	return string(bytes.TrimSpace(data)), nil
}

func scalarNode(value any) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode}

	if err := n.Encode(value); err != nil {
		n.Value = fmt.Sprintf("%v", value)
		n.Tag = "!!str"
	}

	return n
}

