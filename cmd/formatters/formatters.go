// Package formatters lists the registered formatter adapters and the
// options the search engine may attach to each of them, adapted from the
// teacher's "write a starter config" init command into a discovery command:
// styleprobe has no user-authored formatter config to scaffold, only a
// fixed set of built-in adapters worth describing.
package formatters

import (
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/styleprobe/styleprobe/formatter"
	"github.com/styleprobe/styleprobe/style"
)

// Run prints every registered adapter's name, base styles and options to w.
// Listing is schema-only: it never resolves a formatter's executable, so it
// works the same whether or not any formatter binaries are installed.
func Run(w io.Writer, _ []string) error {
	registry := formatter.NewRegistry()

	names := registry.Names()
	sort.Strings(names)

	for i, name := range names {
		if i > 0 {
			fmt.Fprintln(w)
		}

		schema, err := registry.Describe(name)
		if err != nil {
			return fmt.Errorf("failed to describe formatter %q: %w", name, err)
		}

		fmt.Fprintf(w, "%s\n", name)

		baseNames := make([]string, 0, len(schema.BaseStyles))
		for base := range schema.BaseStyles {
			baseNames = append(baseNames, base)
		}

		sort.Strings(baseNames)

		fmt.Fprintf(w, "  base styles: %v\n", baseNames)
		fmt.Fprintln(w, "  options:")

		for _, opt := range schema.Options {
			fmt.Fprintf(w, "    %s\n", describe(opt))
		}
	}

	return nil
}

func describe(opt style.Option) string {
	switch opt.Kind {
	case style.Boolean:
		return fmt.Sprintf("%s (boolean, default=%v)", opt.Name, opt.Default)
	case style.BoundedInt:
		return fmt.Sprintf("%s (integer %d..%d, default=%v)", opt.Name, opt.Min, opt.Max, opt.Default)
	case style.Enumerated:
		return fmt.Sprintf("%s (one of %v, default=%v)", opt.Name, opt.Values, opt.Default)
	case style.Composite:
		return fmt.Sprintf("%s (composite, %d child option(s))", opt.Name, len(opt.Children))
	default:
		return opt.Name
	}
}

// Stdout is a convenience wrapper for the cobra command.
func Stdout() error {
	return Run(os.Stdout, os.Environ())
}
