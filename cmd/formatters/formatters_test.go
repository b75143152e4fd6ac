package formatters_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/styleprobe/styleprobe/cmd/formatters"
)

func TestRunListsBothBuiltinAdapters(t *testing.T) {
	as := require.New(t)

	var buf bytes.Buffer

	as.NoError(formatters.Run(&buf, nil))

	out := buf.String()
	as.Contains(out, "clang-format")
	as.Contains(out, "prettier")
	as.Contains(out, "base styles:")
	as.Contains(out, "options:")
}
