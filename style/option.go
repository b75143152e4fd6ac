// Package style models the option schema, concrete style values and
// candidate ordering that the search engine operates over.
package style

import "slices"

// Kind tags the shape of an Option's value domain.
type Kind int

const (
	Enumerated Kind = iota
	Boolean
	BoundedInt
	Composite
)

// Option describes one formatter-configurable setting: its name, the shape
// of values it accepts, and its canonical default.
//
// Composite options nest a set of child Options (e.g. clang-format's
// BraceWrapping block); the engine treats a composite's children as
// independent options scoped under the parent's name.
type Option struct {
	Name    string
	Kind    Kind
	Default any

	// Enumerated domain, in canonical (declared) order. Only set when Kind == Enumerated.
	Values []string

	// BoundedInt domain. Only set when Kind == BoundedInt.
	Min, Max int64
	// Sweep is the adapter-declared set of values tried during search, in addition to
	// the current value. Per spec §9's open question, this is never guessed by the
	// engine — it is always adapter-declared.
	Sweep []int64

	// Composite children. Only set when Kind == Composite.
	Children []Option
}

// AdmissibleValues returns every value this Option could take that differs
// from current, in canonical order.
func (o Option) AdmissibleValues(current any) []any {
	switch o.Kind {
	case Enumerated:
		out := make([]any, 0, len(o.Values))
		for _, v := range o.Values {
			if v != current {
				out = append(out, v)
			}
		}

		return out

	case Boolean:
		cur, _ := current.(bool)
		return []any{!cur}

	case BoundedInt:
		seen := make(map[int64]bool)
		out := make([]any, 0, len(o.Sweep)+1)

		add := func(v int64) {
			if v == current || seen[v] {
				return
			}

			seen[v] = true

			out = append(out, v)
		}

		sweep := o.sweepValues()
		for _, v := range sweep {
			add(v)
		}

		slices.SortFunc(out, func(a, b any) int {
			av, _ := a.(int64)
			bv, _ := b.(int64)

			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			default:
				return 0
			}
		})

		return out

	default:
		// composite options are expanded by the caller into their children; they have
		// no direct admissible values of their own.
		return nil
	}
}

// sweepValues returns the effective sweep: the adapter-declared Sweep if
// present, otherwise {min, mid, max, default} deduplicated.
func (o Option) sweepValues() []int64 {
	if len(o.Sweep) > 0 {
		return o.Sweep
	}

	def, _ := o.Default.(int64)

	return []int64{o.Min, (o.Min + o.Max) / 2, o.Max, def}
}
