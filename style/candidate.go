package style

import "cmp"

// Candidate is a Style together with its aggregated distance against a
// corpus. It lives within the search frontier until discarded or adopted.
type Candidate struct {
	Style    Style
	Distance int64
}

// Cardinality mirrors Style.Cardinality for convenience in sort/compare call
// sites.
func (c Candidate) Cardinality() int {
	return c.Style.Cardinality()
}

// Compare implements the total order from spec §3: aggregate distance
// ascending, then cardinality ascending, then the canonical rendering
// ascending (base name, then option=value pairs in option-name order, as
// String renders them), with the fingerprint hash as a last resort. It is
// used everywhere ties must be broken deterministically, matching the
// teacher's formatterSortFunc idiom of priority-then-name.
func Compare(a, b Candidate) int {
	if result := cmp.Compare(a.Distance, b.Distance); result != 0 {
		return result
	}

	if result := cmp.Compare(a.Cardinality(), b.Cardinality()); result != 0 {
		return result
	}

	if result := cmp.Compare(a.Style.String(), b.Style.String()); result != 0 {
		return result
	}

	return cmp.Compare(a.Style.Fingerprint(), b.Style.Fingerprint())
}

// Less reports whether a strictly precedes b under Compare.
func Less(a, b Candidate) bool {
	return Compare(a, b) < 0
}

// Infinite is the distance recorded for a (style, file) pair that could not
// be evaluated (formatter error, metric-unavailable, timeout, cancellation).
// It naturally loses every comparison against a finite Candidate.
const Infinite int64 = 1<<63 - 1
