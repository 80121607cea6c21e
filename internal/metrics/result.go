package metrics

// Direction tells whether a change is an improvement.
type Direction int

const (
	// Undetermined means the change has no better/worse verdict, either
	// because nothing changed or because the metric has no preferred
	// direction.
	Undetermined Direction = iota
	Improved
	Regressed
)

// String returns the name of the direction.
func (d Direction) String() string {
	switch d {
	case Improved:
		return "improved"
	case Regressed:
		return "regressed"
	default:
		return "undetermined"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// ComparisonResult is the outcome of comparing one metric between a gold
// and a new snapshot. The formatted strings are produced by the comparator
// and consumed verbatim by the renderer.
type ComparisonResult struct {
	MetricName string    `json:"metric"`
	Gold       Value     `json:"gold"`
	New        Value     `json:"new"`
	Before     string    `json:"before"`
	After      string    `json:"after"`
	Delta      string    `json:"delta"`
	Changed    bool      `json:"changed"`
	Better     Direction `json:"better"`
	Critical   bool      `json:"critical"`
}

// IsChanged reports whether the values differ at the compared precision.
func (r ComparisonResult) IsChanged() bool {
	return r.Changed
}

// FormatValues returns the before, after and delta cells.
func (r ComparisonResult) FormatValues() (before, after, delta string) {
	return r.Before, r.After, r.Delta
}

// Statistics counts the outcomes of a set of comparisons. Critical is
// counted independently of the other three buckets.
type Statistics struct {
	Better    int `json:"better"`
	Worse     int `json:"worse"`
	Critical  int `json:"critical"`
	Unchanged int `json:"unchanged"`
}

// Stats summarizes results.
func Stats(results []ComparisonResult) Statistics {
	var stats Statistics
	for _, r := range results {
		if !r.IsChanged() {
			stats.Unchanged++
		} else {
			switch r.Better {
			case Improved:
				stats.Better++
			case Regressed:
				stats.Worse++
			}
		}
		if r.Critical {
			stats.Critical++
		}
	}
	return stats
}
