package style

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Style is an immutable-by-convention mapping from option name to chosen
// value. A Style is always created fresh (via New or With) rather than
// mutated in place, matching the data model invariant that two Styles with
// equal fingerprints are interchangeable.
type Style struct {
	// BaseName is the name of the named base style this Style was derived
	// from, if any (e.g. "LLVM", "Google"). Empty if the formatter has no
	// base styles or this Style isn't derived from one.
	BaseName string

	values map[string]any
}

// New creates an empty Style, optionally derived from a named base style.
func New(baseName string) Style {
	return Style{BaseName: baseName, values: make(map[string]any)}
}

// With returns a copy of s with name set to value.
func (s Style) With(name string, value any) Style {
	next := Style{BaseName: s.BaseName, values: make(map[string]any, len(s.values)+1)}
	for k, v := range s.values {
		next.values[k] = v
	}

	next.values[name] = value

	return next
}

// Without returns a copy of s with name removed from the explicit map
// (reverting it to the formatter's default). This is how cardinality is
// reduced per spec §4.5 Phase B step 4.
func (s Style) Without(name string) Style {
	next := Style{BaseName: s.BaseName, values: make(map[string]any, len(s.values))}

	for k, v := range s.values {
		if k != name {
			next.values[k] = v
		}
	}

	return next
}

// Get returns the explicit value for name and whether it was set.
func (s Style) Get(name string) (any, bool) {
	v, ok := s.values[name]
	return v, ok
}

// Names returns the explicitly-set option names, in canonical (sorted)
// order.
func (s Style) Names() []string {
	names := make([]string, 0, len(s.values))
	for k := range s.values {
		names = append(names, k)
	}

	sort.Strings(names)

	return names
}

// Cardinality is the count of options that differ from the formatter's
// defaults and must therefore be written explicitly.
func (s Style) Cardinality() int {
	return len(s.values)
}

// Fingerprint is a pure function of s's (option, value) pairs in canonical
// order, per the data model invariant in spec §3.
func (s Style) Fingerprint() string {
	h := sha256.New()
	h.Write([]byte(s.BaseName))
	h.Write([]byte{0})

	for _, name := range s.Names() {
		fmt.Fprintf(h, "%s=%v\n", name, s.values[name])
	}

	return hex.EncodeToString(h.Sum(nil))
}

// String renders a Style for logging/debugging and as the canonical
// tie-break key of Compare; not used for fingerprinting or wire
// serialization.
func (s Style) String() string {
	var b strings.Builder

	if s.BaseName != "" {
		fmt.Fprintf(&b, "%s", s.BaseName)
	}

	for _, name := range s.Names() {
		fmt.Fprintf(&b, " %s=%v", name, s.values[name])
	}

	return strings.TrimSpace(b.String())
}

// Equal reports whether s and other have the same fingerprint.
func (s Style) Equal(other Style) bool {
	return s.Fingerprint() == other.Fingerprint()
}
