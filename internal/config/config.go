// Package config loads metricsdiff run configuration: default diff settings
// and user metric definitions layered over the built-in registry.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/metricsdiff/internal/metrics"
)

// DefaultSignificantFigures is used when the configuration does not set one.
const DefaultSignificantFigures = 4

// Aggregator names accepted in metric definitions.
const (
	AggregatorNone = "none"
	AggregatorSum  = "sum"
	AggregatorMin  = "min"
	AggregatorMax  = "max"
)

var aggregators = map[string]metrics.Aggregator{
	AggregatorSum: metrics.SumAggregator,
	AggregatorMin: metrics.MinAggregator,
	AggregatorMax: metrics.MaxAggregator,
}

// File represents a configuration file
type File struct {
	Settings Settings       `json:"settings,omitempty" yaml:"settings,omitempty"`
	Metrics  []MetricConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`
}

// Settings holds defaults for the compare and aggregate commands
type Settings struct {
	// SignificantFigures is a pointer so an explicit 0 (no rounding) can be
	// told apart from an unset value.
	SignificantFigures *int     `json:"significantFigures,omitempty" yaml:"significantFigures,omitempty"`
	Verbosity          string   `json:"verbosity,omitempty" yaml:"verbosity,omitempty"`
	SortBy             []string `json:"sortBy,omitempty" yaml:"sortBy,omitempty"`
	Filter             []string `json:"filter,omitempty" yaml:"filter,omitempty"`
	JSONPath           string   `json:"jsonPath,omitempty" yaml:"jsonPath,omitempty"`
}

// MetricConfig is a user metric definition. It replaces any built-in
// definition with the same name.
type MetricConfig struct {
	Name           string   `json:"name" yaml:"name"`
	Description    string   `json:"description,omitempty" yaml:"description,omitempty"`
	Aggregator     string   `json:"aggregator,omitempty" yaml:"aggregator,omitempty"`
	HigherIsBetter *bool    `json:"higherIsBetter,omitempty" yaml:"higherIsBetter,omitempty"`
	Critical       bool     `json:"critical,omitempty" yaml:"critical,omitempty"`
	DontAggregate  []string `json:"dontAggregate,omitempty" yaml:"dontAggregate,omitempty"`
}

// LoadConfig loads a configuration file.
//
// The file format is determined by extension:
//   - .json -> JSON
//   - anything else -> YAML
//
// The returned configuration has been validated.
func LoadConfig(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read config file")
	}

	cfg, err := ParseConfig(data, path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config file %s", path)
	}
	return cfg, nil
}

// ParseConfig parses configuration data without validating it. The format
// is chosen from the extension of path.
func ParseConfig(data []byte, path string) (*File, error) {
	var cfg File

	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".json":
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse JSON config")
		}
	default:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrap(err, "failed to parse YAML config")
		}
	}

	return &cfg, nil
}

// SignificantFiguresOrDefault returns the configured significant figures or the
// default.
func (s Settings) SignificantFiguresOrDefault() int {
	if s.SignificantFigures == nil {
		return DefaultSignificantFigures
	}
	return *s.SignificantFigures
}

// VerbosityOrDefault returns the configured verbosity, VerbosityAll when
// unset.
func (s Settings) VerbosityOrDefault() (metrics.Verbosity, error) {
	if s.Verbosity == "" {
		return metrics.VerbosityAll, nil
	}
	return metrics.ParseVerbosity(s.Verbosity)
}

// Metric converts the definition to a metric.
func (m MetricConfig) Metric() (*metrics.Metric, error) {
	metric := &metrics.Metric{
		Name:          m.Name,
		Description:   m.Description,
		Critical:      m.Critical,
		DontAggregate: m.DontAggregate,
	}

	switch name := strings.ToLower(m.Aggregator); name {
	case "", AggregatorNone:
	default:
		agg, ok := aggregators[name]
		if !ok {
			return nil, errors.Newf("unknown aggregator %q", m.Aggregator)
		}
		metric.Aggregator = &agg
	}

	if m.HigherIsBetter != nil {
		metric.Preference = metrics.LowerIsBetter
		if *m.HigherIsBetter {
			metric.Preference = metrics.HigherIsBetter
		}
	}

	return metric, nil
}

// Registry returns base overlaid with the configured metric definitions.
// A nil base means metrics.Default. base itself is not modified.
func (f *File) Registry(base *metrics.Registry) (*metrics.Registry, error) {
	if base == nil {
		base = metrics.Default
	}
	registry := base.Clone()

	for i, mc := range f.Metrics {
		metric, err := mc.Metric()
		if err != nil {
			return nil, errors.Wrapf(err, "metrics[%d]", i)
		}
		registry.Set(metric)
	}
	return registry, nil
}
