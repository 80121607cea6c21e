package metrics

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Verbosity selects which results a report lists. Each level includes
// everything the previous one does.
type Verbosity int

const (
	VerbosityNone Verbosity = iota
	VerbosityCritical
	VerbosityWorse
	VerbosityChanged
	VerbosityAll
)

var verbosityNames = []string{"none", "critical", "worse", "changed", "all"}

// String returns the lowercase name of the verbosity.
func (v Verbosity) String() string {
	if v < VerbosityNone || v > VerbosityAll {
		return "Verbosity(" + strconv.Itoa(int(v)) + ")"
	}
	return verbosityNames[v]
}

// ParseVerbosity accepts a verbosity name, case-insensitively, or its
// number 0 through 4.
func ParseVerbosity(s string) (Verbosity, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for i, name := range verbosityNames {
		if s == name {
			return Verbosity(i), nil
		}
	}
	if n, err := strconv.Atoi(s); err == nil && n >= int(VerbosityNone) && n <= int(VerbosityAll) {
		return Verbosity(n), nil
	}
	return VerbosityNone, errors.Newf("unknown verbosity %q (expected one of %s)", s, strings.Join(verbosityNames, ", "))
}

// Annotation glyphs appended to the delta cell.
const (
	GlyphImproved = "⭕"
	GlyphWorsened = "❗"
	GlyphCritical = "‼️"
)

const rowFormat = "| %-70s | %-10s | %-10s | %-20s |\n"

// Render renders results as a fixed-width pipe table.
//
// When sortBy is non-empty the results are first stable-sorted by the
// listed modifier keys, where "" stands for the base name. Rows are then
// grouped as critical, worse, changed and remaining, and only the groups
// admitted by verbosity are listed, in that order. An empty string is
// returned when nothing is listed.
func Render(results []ComparisonResult, sortBy []string, verbosity Verbosity) string {
	if verbosity <= VerbosityNone {
		return ""
	}

	if len(sortBy) > 0 {
		results = sortResults(results, sortBy)
	}

	var critical, worse, changed, remaining []ComparisonResult
	for _, r := range results {
		switch {
		case r.Critical:
			critical = append(critical, r)
		case r.Better == Regressed:
			worse = append(worse, r)
		case r.IsChanged():
			changed = append(changed, r)
		default:
			remaining = append(remaining, r)
		}
	}

	var listed []ComparisonResult
	if verbosity >= VerbosityCritical {
		listed = append(listed, critical...)
	}
	if verbosity >= VerbosityWorse {
		listed = append(listed, worse...)
	}
	if verbosity >= VerbosityChanged {
		listed = append(listed, changed...)
	}
	if verbosity >= VerbosityAll {
		listed = append(listed, remaining...)
	}

	if len(listed) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, rowFormat, "Metric", "Before", "After", "Delta")
	fmt.Fprintf(&sb, rowFormat, "-", "-", "-", "-")
	for _, r := range listed {
		before, after, delta := r.FormatValues()
		fmt.Fprintf(&sb, rowFormat, r.MetricName, before, after, delta+annotation(r))
	}
	return sb.String()
}

func annotation(r ComparisonResult) string {
	if r.Critical && r.IsChanged() {
		return " " + GlyphCritical
	}
	switch r.Better {
	case Improved:
		return " " + GlyphImproved
	case Regressed:
		return " " + GlyphWorsened
	}
	return ""
}

// SortKey returns the sort key of a metric name for the given fields.
func SortKey(fields []string, name string) []string {
	base, modifiers := ParseName(name)
	key := make([]string, len(fields))
	for i, field := range fields {
		if field == "" {
			key[i] = base
			continue
		}
		key[i], _ = modifiers.Get(field)
	}
	return key
}

func sortResults(results []ComparisonResult, fields []string) []ComparisonResult {
	type keyed struct {
		key    []string
		result ComparisonResult
	}
	rows := make([]keyed, len(results))
	for i, r := range results {
		rows[i] = keyed{key: SortKey(fields, r.MetricName), result: r}
	}
	slices.SortStableFunc(rows, func(a, b keyed) int {
		return slices.Compare(a.key, b.key)
	})

	sorted := make([]ComparisonResult, len(rows))
	for i, row := range rows {
		sorted[i] = row.result
	}
	return sorted
}
