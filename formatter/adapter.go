// Package formatter wraps concrete formatter executables (clang-format,
// prettier, ...) behind a single Adapter abstraction the rest of the engine
// can search over without caring which binary is actually being driven
// (spec §4.2).
package formatter

import (
	"context"
	"errors"
	"fmt"

	"github.com/gobwas/glob"

	"github.com/styleprobe/styleprobe/style"
)

// ErrCommandNotFound mirrors the teacher's sentinel for a missing executable
// on PATH.
var ErrCommandNotFound = errors.New("formatter command not found in PATH")

// Adapter drives one concrete formatter binary: it knows which options that
// binary exposes, which named base styles it ships with, and how to run it
// against a single in-memory source.
type Adapter interface {
	// Name identifies the formatter, e.g. "clang-format" or "prettier".
	Name() string

	// Options lists every option the search engine is allowed to attach to
	// a Style for this formatter, in a fixed, stable order.
	Options() []style.Option

	// BaseStyles returns the formatter's named baseline styles (spec phase
	// A candidates), keyed by base name.
	BaseStyles() map[string]style.Style

	// Format reformats source according to s, returning the reformatted
	// bytes. filenameHint may influence language/dialect detection but
	// names no real file on disk.
	Format(ctx context.Context, s style.Style, source []byte, filenameHint string) ([]byte, error)

	// Render serializes s as the formatter's own native config syntax
	// (a .clang-format YAML mapping, a .prettierrc.json document, ...),
	// the form a result consumer would drop straight into a project.
	Render(s style.Style) (string, error)

	// Fingerprint identifies this adapter's current behavior: its name plus
	// enough about the underlying executable (size, mod time) that an
	// upgrade of the binary invalidates any cache keyed on it.
	Fingerprint() (string, error)

	// Includes/Excludes are the adapter's default corpus filters, compiled
	// glob patterns deciding which files it claims from a source tree.
	Includes() []glob.Glob
	Excludes() []glob.Glob
}

// Registry resolves formatter names to constructors. Each constructor binds
// an Adapter to a concrete working directory and environment at startup, the
// way the teacher resolves each configured formatter's executable once
// before a run.
type Registry struct {
	constructors map[string]Constructor
	schemas      map[string]SchemaFunc
}

// Constructor builds an Adapter rooted at workingDir, resolving its
// executable from env (mirroring mvdan.cc/sh/v3/interp.LookPathDir PATH
// semantics).
type Constructor func(workingDir string, env []string) (Adapter, error)

// Schema is the part of an adapter's shape that exists independent of any
// installed executable: its option space and named base styles.
type Schema struct {
	Options    []style.Option
	BaseStyles map[string]style.Style
}

// SchemaFunc returns a formatter's Schema without resolving or invoking its
// executable, so discovery (the `formatters` command) works even when no
// formatter binaries are installed on PATH.
type SchemaFunc func() Schema

// NewRegistry returns a Registry pre-populated with every built-in adapter.
func NewRegistry() *Registry {
	r := &Registry{constructors: make(map[string]Constructor), schemas: make(map[string]SchemaFunc)}

	r.Register("clang-format", newClangFormatAdapter, clangFormatSchema)
	r.Register("prettier", newPrettierAdapter, prettierSchema)

	return r
}

// Register adds or replaces the constructor and schema for name.
func (r *Registry) Register(name string, ctor Constructor, schema SchemaFunc) {
	r.constructors[name] = ctor
	r.schemas[name] = schema
}

// Describe returns name's Schema without touching PATH or the filesystem.
func (r *Registry) Describe(name string) (Schema, error) {
	schema, ok := r.schemas[name]
	if !ok {
		return Schema{}, fmt.Errorf("unknown formatter %q", name)
	}

	return schema(), nil
}

// Names lists every registered formatter name, in registration order is not
// guaranteed; callers needing determinism should sort.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.constructors))
	for name := range r.constructors {
		names = append(names, name)
	}

	return names
}

// Build resolves and constructs the named adapter.
func (r *Registry) Build(name, workingDir string, env []string) (Adapter, error) {
	ctor, ok := r.constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown formatter %q", name)
	}

	adapter, err := ctor(workingDir, env)
	if err != nil {
		return nil, fmt.Errorf("failed to build formatter %q: %w", name, err)
	}

	return adapter, nil
}
