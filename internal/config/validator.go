package config

import (
	"fmt"
	"strings"

	"github.com/wesleyorama2/metricsdiff/internal/filter"
	"github.com/wesleyorama2/metricsdiff/internal/metrics"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation error on field '%s': %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation error: %s", e.Message)
}

// ValidationErrors is a collection of validation errors.
type ValidationErrors struct {
	Errors []*ValidationError
}

func (e *ValidationErrors) Error() string {
	if len(e.Errors) == 0 {
		return "no validation errors"
	}
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%d validation errors:\n", len(e.Errors)))
	for i, err := range e.Errors {
		sb.WriteString(fmt.Sprintf("  %d. %s\n", i+1, err.Error()))
	}
	return sb.String()
}

// Add adds an error to the collection.
func (e *ValidationErrors) Add(field, message string) {
	e.Errors = append(e.Errors, &ValidationError{Field: field, Message: message})
}

// HasErrors returns true if there are any errors.
func (e *ValidationErrors) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate validates the configuration.
//
// Returns nil if valid, or a *ValidationErrors containing all validation errors.
func (f *File) Validate() error {
	errs := &ValidationErrors{}

	f.Settings.validate(errs)

	seen := make(map[string]int, len(f.Metrics))
	for i, m := range f.Metrics {
		prefix := fmt.Sprintf("metrics[%d]", i)
		m.validate(prefix, errs)

		if m.Name == "" {
			continue
		}
		if first, ok := seen[m.Name]; ok {
			errs.Add(prefix+".name", fmt.Sprintf("duplicate metric %q (first defined at metrics[%d])", m.Name, first))
			continue
		}
		seen[m.Name] = i
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}

func (s *Settings) validate(errs *ValidationErrors) {
	if s.SignificantFigures != nil && *s.SignificantFigures < 0 {
		errs.Add("settings.significantFigures", "must not be negative")
	}

	if s.Verbosity != "" {
		if _, err := metrics.ParseVerbosity(s.Verbosity); err != nil {
			errs.Add("settings.verbosity", err.Error())
		}
	}

	for i, pattern := range s.Filter {
		if _, err := filter.New(pattern); err != nil {
			errs.Add(fmt.Sprintf("settings.filter[%d]", i), err.Error())
		}
	}
}

func (m *MetricConfig) validate(prefix string, errs *ValidationErrors) {
	if m.Name == "" {
		errs.Add(prefix+".name", "name is required")
	} else if base, modifiers := metrics.ParseName(m.Name); len(modifiers) > 0 {
		errs.Add(prefix+".name", fmt.Sprintf("name must be a base name, got modifiers after %q", base))
	}

	if _, err := m.Metric(); err != nil {
		errs.Add(prefix+".aggregator", err.Error())
	}

	for i, key := range m.DontAggregate {
		if strings.TrimSpace(key) == "" {
			errs.Add(fmt.Sprintf("%s.dontAggregate[%d]", prefix, i), "modifier key cannot be empty")
		}
	}
}
