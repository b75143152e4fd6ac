package formatter

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/gobwas/glob"
	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
)

// compileGlobs mirrors the teacher's CompileGlobs: patterns are all
// right-matching, compiled once at adapter construction.
func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, len(patterns))

	for i, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, fmt.Errorf("failed to compile pattern %q: %w", pattern, err)
		}

		globs[i] = g
	}

	return globs, nil
}

// lookExecutable resolves command against workingDir and env the way
// mvdan.cc/sh/v3's interpreter would when resolving a command in a script,
// so adapters honor the same PATH/working-directory conventions tests can
// fake by prepending a directory to PATH.
func lookExecutable(workingDir string, env []string, command string) (string, error) {
	listEnv := expand.ListEnviron(env...)

	path, err := interp.LookPathDir(workingDir, listEnv, command)
	if err != nil {
		return "", fmt.Errorf("%w: error looking up %q", ErrCommandNotFound, command)
	}

	return path, nil
}

// fingerprintExecutable hashes an adapter identity together with its
// resolved executable's size and mod time, so a binary upgrade invalidates
// any cache entries keyed on the adapter's fingerprint.
func fingerprintExecutable(adapterName, executable string) (string, error) {
	info, err := os.Lstat(executable)
	if err != nil {
		return "", fmt.Errorf("failed to stat formatter executable: %w", err)
	}

	h := sha256.New()
	h.Write([]byte(adapterName))
	h.Write([]byte(executable))
	fmt.Fprintf(h, "%d %d", info.Size(), info.ModTime().UnixNano())

	return hex.EncodeToString(h.Sum(nil)), nil
}
