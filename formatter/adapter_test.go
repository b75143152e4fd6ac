package formatter

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegistryBuildUnknownFormatter(t *testing.T) {
	as := require.New(t)

	r := NewRegistry()

	_, err := r.Build("does-not-exist", t.TempDir(), os.Environ())
	as.Error(err)
}

func TestRegistryNamesIncludesBuiltins(t *testing.T) {
	as := require.New(t)

	r := NewRegistry()
	names := r.Names()

	as.Contains(names, "clang-format")
	as.Contains(names, "prettier")
}

func TestRegistryDescribeWorksWithoutAnExecutable(t *testing.T) {
	as := require.New(t)

	r := NewRegistry()

	schema, err := r.Describe("prettier")
	as.NoError(err)
	as.Contains(schema.BaseStyles, "default")
	as.NotEmpty(schema.Options)

	_, err = r.Describe("does-not-exist")
	as.Error(err)
}

func TestRegistryBuildResolvesFakeExecutable(t *testing.T) {
	as := require.New(t)

	binDir := t.TempDir()
	fakeExecutable(t, binDir, "clang-format", "cat")
	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	r := NewRegistry()

	adapter, err := r.Build("clang-format", t.TempDir(), os.Environ())
	as.NoError(err)
	as.Equal("clang-format", adapter.Name())
}
