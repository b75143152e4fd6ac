// Package corpus turns a directory (or a single file) into the ordered set
// of reference sources a Style is evaluated against: content fingerprinted,
// git-aware when the root is inside a repository, falling back to a plain
// filesystem walk otherwise.
package corpus

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/gobwas/glob"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/gitignore"
)

// Source is one reference file pulled from the corpus.
type Source struct {
	// Path is the file's path relative to the corpus root.
	Path string
	// FilenameHint is the base name, handed to formatters for
	// language/dialect detection.
	FilenameHint string
	Bytes        []byte
}

// Fingerprint is the sha256 content hash of the source, used as part of the
// evaluation cache key.
func (s Source) Fingerprint() string {
	sum := sha256.Sum256(s.Bytes)
	return hex.EncodeToString(sum[:])
}

// Filter decides, by path, whether a formatter adapter claims a source.
type Filter struct {
	Includes []glob.Glob
	Excludes []glob.Glob
}

func (f Filter) matches(relPath string) bool {
	if len(f.Includes) == 0 {
		return false
	}

	included := false

	for _, g := range f.Includes {
		if g.Match(relPath) {
			included = true
			break
		}
	}

	if !included {
		return false
	}

	for _, g := range f.Excludes {
		if g.Match(relPath) {
			return false
		}
	}

	return true
}

// Expand walks root and returns every Source that f matches, in
// deterministic (lexical path) order. If root is inside a git repository,
// .gitignore rules are honored; otherwise every matching file is read.
func Expand(root string, f Filter) ([]Source, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat corpus root %q: %w", root, err)
	}

	if !info.IsDir() {
		return expandSingleFile(root, f)
	}

	paths, err := expandGitAware(root)
	if err != nil {
		paths, err = expandPlain(root)
		if err != nil {
			return nil, err
		}
	}

	sort.Strings(paths)

	sources := make([]Source, 0, len(paths))

	for _, relPath := range paths {
		if !f.matches(relPath) {
			continue
		}

		data, err := os.ReadFile(filepath.Join(root, relPath))
		if err != nil {
			return nil, fmt.Errorf("failed to read %q: %w", relPath, err)
		}

		sources = append(sources, Source{
			Path:         relPath,
			FilenameHint: filepath.Base(relPath),
			Bytes:        data,
		})
	}

	return sources, nil
}

func expandSingleFile(path string, f Filter) ([]Source, error) {
	relPath := filepath.Base(path)
	if !f.matches(relPath) {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %q: %w", path, err)
	}

	return []Source{{Path: relPath, FilenameHint: relPath, Bytes: data}}, nil
}

// expandGitAware lists every tracked-or-untracked, non-ignored regular file
// under root, relative to root, using go-git's worktree filesystem and its
// gitignore matcher rather than shelling out to `git ls-files`.
func expandGitAware(root string) ([]string, error) {
	repo, err := git.PlainOpenWithOptions(root, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return nil, fmt.Errorf("not a git repository: %w", err)
	}

	if _, err := repo.Worktree(); err != nil {
		return nil, fmt.Errorf("failed to open worktree: %w", err)
	}

	fs := osfs.New(root)

	patterns, err := gitignore.ReadPatterns(fs, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to read gitignore patterns: %w", err)
	}

	matcher := gitignore.NewMatcher(patterns)

	var relPaths []string

	err = walkBilly(fs, ".", func(p string, isDir bool) error {
		parts := strings.Split(p, string(filepath.Separator))

		if isDir {
			if p == ".git" || (len(parts) > 0 && parts[0] == ".git") {
				return errSkipDir
			}

			if matcher.Match(parts, true) {
				return errSkipDir
			}

			return nil
		}

		if matcher.Match(parts, false) {
			return nil
		}

		relPaths = append(relPaths, filepath.ToSlash(p))

		return nil
	})
	if err != nil {
		return nil, err
	}

	return relPaths, nil
}

var errSkipDir = errors.New("skip directory")

// walkBilly recursively visits every entry under dir (relative to the
// filesystem's root) in billy.Filesystem fs, calling visit for each file and
// directory. visit returning errSkipDir prunes a directory without
// aborting the walk.
func walkBilly(fs billy.Filesystem, dir string, visit func(path string, isDir bool) error) error {
	entries, err := fs.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %q: %w", dir, err)
	}

	for _, entry := range entries {
		childPath := entry.Name()
		if dir != "" && dir != "." {
			childPath = filepath.Join(dir, entry.Name())
		}

		if entry.IsDir() {
			err := visit(childPath, true)

			switch {
			case errors.Is(err, errSkipDir):
				continue
			case err != nil:
				return err
			}

			if err := walkBilly(fs, childPath, visit); err != nil {
				return err
			}

			continue
		}

		if entry.Mode()&os.ModeSymlink != 0 {
			continue
		}

		if err := visit(childPath, false); err != nil {
			return err
		}
	}

	return nil
}

// expandPlain walks root with a plain filesystem traversal (no git
// awareness), used when root isn't inside a git repository.
func expandPlain(root string) ([]string, error) {
	var relPaths []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		if info.IsDir() {
			if info.Name() == ".git" {
				return filepath.SkipDir
			}

			return nil
		}

		if info.Mode()&os.ModeSymlink != 0 {
			return nil
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		relPaths = append(relPaths, filepath.ToSlash(relPath))

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk %q: %w", root, err)
	}

	return relPaths, nil
}
