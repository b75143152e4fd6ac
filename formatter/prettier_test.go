package formatter

import (
	"context"
	"encoding/json"
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/styleprobe/styleprobe/style"
)

func TestPrettierBaseStyleIsSingleDefault(t *testing.T) {
	as := require.New(t)

	a := &prettierAdapter{}
	styles := a.BaseStyles()

	as.Len(styles, 1)
	as.Contains(styles, "default")
	as.Zero(styles["default"].Cardinality())
}

func TestWritePrettierConfigRendersAttachedOptions(t *testing.T) {
	as := require.New(t)

	s := style.New("default").With("printWidth", int64(100)).With("singleQuote", true)

	path, err := writePrettierConfig(s)
	as.NoError(err)
	defer os.Remove(path)

	data, err := os.ReadFile(path)
	as.NoError(err)

	var decoded map[string]any
	as.NoError(json.Unmarshal(data, &decoded))

	as.Equal(float64(100), decoded["printWidth"])
	as.Equal(true, decoded["singleQuote"])
}

func TestPrettierAdapterFormatsViaStdinStdout(t *testing.T) {
	as := require.New(t)

	binDir := t.TempDir()
	fakeExecutable(t, binDir, "prettier", "cat")

	t.Setenv("PATH", binDir+":"+os.Getenv("PATH"))

	adapter, err := newPrettierAdapter(t.TempDir(), os.Environ())
	as.NoError(err)
	as.Equal("prettier", adapter.Name())

	out, err := adapter.Format(context.Background(), style.New("default"), []byte(`{"a":1}`), "x.json")
	as.NoError(err)
	as.Equal([]byte(`{"a":1}`), out)
}

func TestPrettierAdapterMissingExecutable(t *testing.T) {
	as := require.New(t)

	binDir := t.TempDir()
	t.Setenv("PATH", binDir)

	_, err := newPrettierAdapter(t.TempDir(), os.Environ())
	as.ErrorIs(err, ErrCommandNotFound)
}
