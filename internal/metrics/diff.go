package metrics

import (
	"iter"
	"sort"

	"github.com/cockroachdb/errors"
)

// Filter selects metric names. Implementations must return a subset of
// names in the order they should be compared.
type Filter interface {
	Filter(names []string) []string
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(names []string) []string

// Filter implements Filter.
func (f FilterFunc) Filter(names []string) []string { return f(names) }

// Differ compares snapshots against a metric registry.
type Differ struct {
	// Registry supplies comparators. Nil selects Default.
	Registry MetricRegistry

	// Filter restricts the compared names. Nil compares everything.
	Filter Filter

	SignificantFigures int
}

// Compare compares current against gold using the Default registry.
func Compare(gold, current Snapshot, significantFigures int, filter Filter) iter.Seq2[ComparisonResult, error] {
	d := Differ{Filter: filter, SignificantFigures: significantFigures}
	return d.Compare(gold, current)
}

// Compare yields one result per metric of current, in sorted name order after
// filtering. Metrics missing from gold or unknown to the registry are
// skipped. The gold value is converted to the type of the current value when
// they differ.
//
// The sequence is lazy; iteration stops after the first error.
func (d *Differ) Compare(gold, current Snapshot) iter.Seq2[ComparisonResult, error] {
	registry := d.Registry
	if registry == nil {
		registry = Default
	}

	return func(yield func(ComparisonResult, error) bool) {
		names := make([]string, 0, len(current))
		for name := range current {
			names = append(names, name)
		}
		sort.Strings(names)
		if d.Filter != nil {
			names = d.Filter.Filter(names)
		}

		for _, name := range names {
			goldValue, ok := gold[name]
			if !ok {
				continue
			}
			newValue, ok := current[name]
			if !ok {
				continue
			}

			newValue = Normalize(newValue)
			goldValue, err := Coerce(goldValue, newValue)
			if err != nil {
				yield(ComparisonResult{}, errors.Wrapf(err, "metric %s", name))
				return
			}

			base, modifiers := ParseName(name)
			comparator, ok := registry.Comparator(base)
			if !ok {
				continue
			}

			result, err := comparator.Compare(goldValue, newValue, d.SignificantFigures, modifiers)
			if !yield(result, err) || err != nil {
				return
			}
		}
	}
}

// Diff is a collected set of comparison results.
type Diff struct {
	Results []ComparisonResult
}

// NewDiff drains seq into a Diff, returning the first error it yields.
func NewDiff(seq iter.Seq2[ComparisonResult, error]) (*Diff, error) {
	d := &Diff{}
	for result, err := range seq {
		if err != nil {
			return nil, err
		}
		d.Results = append(d.Results, result)
	}
	return d, nil
}

// Stats summarizes the results.
func (d *Diff) Stats() Statistics {
	return Stats(d.Results)
}

// Render renders the results as a text table. See Render.
func (d *Diff) Render(sortBy []string, verbosity Verbosity) string {
	return Render(d.Results, sortBy, verbosity)
}
