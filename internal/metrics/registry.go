package metrics

import (
	"sort"

	"github.com/cockroachdb/errors"
)

// MetricRegistry looks up the comparator for a base metric name.
type MetricRegistry interface {
	Comparator(base string) (Comparator, bool)
}

// Registry holds metric definitions by base name. It is a RuleRegistry and a
// MetricRegistry. A Registry is not safe for concurrent registration; treat
// it as read-only once populated.
type Registry struct {
	byName map[string]*Metric
}

// NewRegistry returns a registry holding metrics.
func NewRegistry(metrics ...*Metric) *Registry {
	r := &Registry{byName: make(map[string]*Metric, len(metrics))}
	for _, m := range metrics {
		r.byName[m.Name] = m
	}
	return r
}

// Register adds a metric definition. It fails if the name is empty, carries
// modifiers, or is already registered.
func (r *Registry) Register(m *Metric) error {
	if m.Name == "" {
		return errors.New("metric name is required")
	}
	if _, mods := ParseName(m.Name); len(mods) > 0 {
		return errors.Newf("metric name %q must not contain modifiers", m.Name)
	}
	if _, exists := r.byName[m.Name]; exists {
		return errors.Newf("metric %q is already registered", m.Name)
	}
	r.byName[m.Name] = m
	return nil
}

// Set adds or replaces a metric definition.
func (r *Registry) Set(m *Metric) {
	r.byName[m.Name] = m
}

// Get returns the metric definition for base.
func (r *Registry) Get(base string) (*Metric, bool) {
	m, ok := r.byName[base]
	return m, ok
}

// Rule implements RuleRegistry.
func (r *Registry) Rule(base string) (Rule, bool) {
	m, ok := r.byName[base]
	if !ok {
		return Rule{}, false
	}
	return m.Rule()
}

// Comparator implements MetricRegistry.
func (r *Registry) Comparator(base string) (Comparator, bool) {
	m, ok := r.byName[base]
	if !ok {
		return nil, false
	}
	return m, true
}

// Metrics returns the definitions sorted by name.
func (r *Registry) Metrics() []*Metric {
	out := make([]*Metric, 0, len(r.byName))
	for _, m := range r.byName {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Clone returns a copy that can be extended without touching r.
func (r *Registry) Clone() *Registry {
	c := &Registry{byName: make(map[string]*Metric, len(r.byName))}
	for name, m := range r.byName {
		c.byName[name] = m
	}
	return c
}

func aggregator(a Aggregator) *Aggregator { return &a }

// Default is the built-in registry of physical design metric families.
var Default = NewRegistry(
	&Metric{
		Name:          "design__instance__count",
		Description:   "Number of cell instances",
		Aggregator:    aggregator(SumAggregator),
		DontAggregate: []string{"stage"},
		Preference:    LowerIsBetter,
	},
	&Metric{
		Name:          "design__instance__area",
		Description:   "Total cell instance area",
		Aggregator:    aggregator(SumAggregator),
		DontAggregate: []string{"stage"},
		Preference:    LowerIsBetter,
	},
	&Metric{
		Name:        "design__instance_unmapped__count",
		Description: "Instances not mapped to a standard cell",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
		Critical:    true,
	},
	&Metric{
		Name:        "design__max_slew_violation__count",
		Description: "Max slew violations",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
	},
	&Metric{
		Name:        "design__max_fanout_violation__count",
		Description: "Max fanout violations",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
	},
	&Metric{
		Name:        "design__max_cap_violation__count",
		Description: "Max capacitance violations",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
	},
	&Metric{
		Name:        "design__lvs_error__count",
		Description: "Layout versus schematic errors",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
		Critical:    true,
	},
	&Metric{
		Name:        "clock__skew__worst_hold",
		Description: "Worst clock skew for hold checks",
		Aggregator:  aggregator(MaxAggregator),
		Preference:  LowerIsBetter,
	},
	&Metric{
		Name:        "clock__skew__worst_setup",
		Description: "Worst clock skew for setup checks",
		Aggregator:  aggregator(MaxAggregator),
		Preference:  LowerIsBetter,
	},
	&Metric{
		Name:        "timing__hold__ws",
		Description: "Worst hold slack",
		Aggregator:  aggregator(MinAggregator),
		Preference:  HigherIsBetter,
	},
	&Metric{
		Name:        "timing__setup__ws",
		Description: "Worst setup slack",
		Aggregator:  aggregator(MinAggregator),
		Preference:  HigherIsBetter,
	},
	&Metric{
		Name:        "timing__hold__tns",
		Description: "Total negative hold slack",
		Aggregator:  aggregator(SumAggregator),
		Preference:  HigherIsBetter,
	},
	&Metric{
		Name:        "timing__setup__tns",
		Description: "Total negative setup slack",
		Aggregator:  aggregator(SumAggregator),
		Preference:  HigherIsBetter,
	},
	&Metric{
		Name:        "timing__hold_vio__count",
		Description: "Hold violations",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
		Critical:    true,
	},
	&Metric{
		Name:        "timing__setup_vio__count",
		Description: "Setup violations",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
		Critical:    true,
	},
	&Metric{
		Name:        "route__drc_errors",
		Description: "Detailed routing DRC errors",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
		Critical:    true,
	},
	&Metric{
		Name:        "route__wirelength",
		Description: "Total routed wirelength",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
	},
	&Metric{
		Name:        "antenna__violating__nets",
		Description: "Nets with antenna violations",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
		Critical:    true,
	},
	&Metric{
		Name:        "antenna__violating__pins",
		Description: "Pins with antenna violations",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
		Critical:    true,
	},
	&Metric{
		Name:        "magic__drc_error__count",
		Description: "Magic DRC errors",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
		Critical:    true,
	},
	&Metric{
		Name:        "klayout__drc_error__count",
		Description: "KLayout DRC errors",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
		Critical:    true,
	},
	&Metric{
		Name:        "power__total",
		Description: "Total power",
		Aggregator:  aggregator(SumAggregator),
		Preference:  LowerIsBetter,
	},
	&Metric{
		Name:        "ir__drop__worst",
		Description: "Worst IR drop",
		Aggregator:  aggregator(MaxAggregator),
		Preference:  LowerIsBetter,
	},
	&Metric{
		Name:        "flow__warnings__count",
		Description: "Warnings emitted by the flow",
		Preference:  NoPreference,
	},
)
