package cmd_test

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/styleprobe/styleprobe/cmd"
)

// fakeClangFormat writes a tiny POSIX shell script on PATH that echoes
// stdin verbatim, standing in for a real clang-format binary.
func fakeClangFormat(t *testing.T, dir string) {
	t.Helper()

	if runtime.GOOS == "windows" {
		t.Skip("fake shell executables are POSIX-only")
	}

	script := "#!/bin/sh\ncat\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "clang-format"), []byte(script), 0o755)) //nolint:gosec
}

func newCorpus(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.c"), []byte("int x;\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.cc"), []byte("int y;\n"), 0o644))

	return dir
}

func TestInferSubcommandWritesStyleToStdout(t *testing.T) {
	as := require.New(t)

	binDir := t.TempDir()
	fakeClangFormat(t, binDir)
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	corpus := newCorpus(t)
	outFile := filepath.Join(t.TempDir(), "out.txt")

	root := cmd.NewRoot()
	root.SetArgs([]string{"infer", "clang-format", corpus, "--output", outFile, "--concurrency", "2"})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	as.NoError(root.Execute())

	data, err := os.ReadFile(outFile)
	as.NoError(err)
	as.Contains(string(data), "BasedOnStyle")
}

func TestInferSubcommandRejectsUnknownFormatter(t *testing.T) {
	as := require.New(t)

	corpus := newCorpus(t)

	root := cmd.NewRoot()
	root.SetArgs([]string{"infer", "bogus", corpus})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	as.Error(root.Execute())
}

func TestInferSubcommandRequiresAFormatterArgument(t *testing.T) {
	as := require.New(t)

	root := cmd.NewRoot()
	root.SetArgs([]string{"infer"})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	as.Error(root.Execute())
}

func TestFormattersSubcommandListsBuiltinAdapters(t *testing.T) {
	as := require.New(t)

	out := new(bytes.Buffer)

	root := cmd.NewRoot()
	root.SetArgs([]string{"formatters"})
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))

	as.NoError(root.Execute())
}

func TestCompletionsSubcommandGeneratesBashScript(t *testing.T) {
	as := require.New(t)

	out := new(bytes.Buffer)

	root := cmd.NewRoot()
	root.SetArgs([]string{"completions", "bash"})
	root.SetOut(out)
	root.SetErr(new(bytes.Buffer))

	as.NoError(root.Execute())
}

func TestCompletionsSubcommandRejectsUnknownShell(t *testing.T) {
	as := require.New(t)

	root := cmd.NewRoot()
	root.SetArgs([]string{"completions", "powershell"})
	root.SetOut(new(bytes.Buffer))
	root.SetErr(new(bytes.Buffer))

	as.Error(root.Execute())
}
