package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/metricsdiff/internal/metrics"
)

const yamlConfig = `
settings:
  significantFigures: 3
  verbosity: changed
  sortBy: ["corner", ""]
  filter: ["*", "!timing__*__tns"]
  jsonPath: metrics
metrics:
  - name: cell_count
    description: Standard cells in the netlist
    aggregator: sum
    higherIsBetter: false
    critical: true
    dontAggregate: [stage]
  - name: route__drc_errors
    aggregator: none
`

const jsonConfig = `{
  "settings": {"significantFigures": 0, "verbosity": "2"},
  "metrics": [{"name": "slack", "aggregator": "min", "higherIsBetter": true}]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig_YAML(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "metricsdiff.yaml", yamlConfig))
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Settings.SignificantFiguresOrDefault())
	verbosity, err := cfg.Settings.VerbosityOrDefault()
	require.NoError(t, err)
	assert.Equal(t, metrics.VerbosityChanged, verbosity)
	assert.Equal(t, []string{"corner", ""}, cfg.Settings.SortBy)
	assert.Equal(t, []string{"*", "!timing__*__tns"}, cfg.Settings.Filter)
	assert.Equal(t, "metrics", cfg.Settings.JSONPath)

	require.Len(t, cfg.Metrics, 2)
	assert.Equal(t, "cell_count", cfg.Metrics[0].Name)
	require.NotNil(t, cfg.Metrics[0].HigherIsBetter)
	assert.False(t, *cfg.Metrics[0].HigherIsBetter)
	assert.Nil(t, cfg.Metrics[1].HigherIsBetter)
}

func TestLoadConfig_JSON(t *testing.T) {
	cfg, err := LoadConfig(writeFile(t, "metricsdiff.json", jsonConfig))
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Settings.SignificantFiguresOrDefault(), "explicit zero is kept")
	verbosity, err := cfg.Settings.VerbosityOrDefault()
	require.NoError(t, err)
	assert.Equal(t, metrics.VerbosityWorse, verbosity)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.json", `{"settings":`))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "bad.yaml", "settings: [1"))
	assert.Error(t, err)

	_, err = LoadConfig(writeFile(t, "invalid.yaml", "settings:\n  significantFigures: -1\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "settings.significantFigures")
}

func TestSettings_Defaults(t *testing.T) {
	var s Settings
	assert.Equal(t, DefaultSignificantFigures, s.SignificantFiguresOrDefault())

	verbosity, err := s.VerbosityOrDefault()
	require.NoError(t, err)
	assert.Equal(t, metrics.VerbosityAll, verbosity)
}

func TestValidate(t *testing.T) {
	negative := -2

	tests := []struct {
		name   string
		config File
		fields []string
	}{
		{
			name:   "empty config is valid",
			config: File{},
		},
		{
			name:   "negative significant figures",
			config: File{Settings: Settings{SignificantFigures: &negative}},
			fields: []string{"settings.significantFigures"},
		},
		{
			name:   "unknown verbosity",
			config: File{Settings: Settings{Verbosity: "loud"}},
			fields: []string{"settings.verbosity"},
		},
		{
			name:   "invalid filter",
			config: File{Settings: Settings{Filter: []string{"*", "!"}}},
			fields: []string{"settings.filter[1]"},
		},
		{
			name: "metric problems",
			config: File{Metrics: []MetricConfig{
				{Name: ""},
				{Name: "cell_count__corner:ff"},
				{Name: "slack", Aggregator: "avg"},
				{Name: "area", DontAggregate: []string{"stage", " "}},
				{Name: "slack"},
			}},
			fields: []string{
				"metrics[0].name",
				"metrics[1].name",
				"metrics[2].aggregator",
				"metrics[3].dontAggregate[1]",
				"metrics[4].name",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if len(tt.fields) == 0 {
				assert.NoError(t, err)
				return
			}

			var errs *ValidationErrors
			require.ErrorAs(t, err, &errs)

			var got []string
			for _, e := range errs.Errors {
				got = append(got, e.Field)
			}
			assert.Equal(t, tt.fields, got)
		})
	}
}

func TestValidationErrors_Error(t *testing.T) {
	errs := &ValidationErrors{}
	assert.Equal(t, "no validation errors", errs.Error())
	assert.False(t, errs.HasErrors())

	errs.Add("settings.verbosity", "bad")
	assert.Equal(t, "validation error on field 'settings.verbosity': bad", errs.Error())

	errs.Add("", "worse")
	assert.True(t, errs.HasErrors())
	assert.Equal(t, "2 validation errors:\n"+
		"  1. validation error on field 'settings.verbosity': bad\n"+
		"  2. validation error: worse\n", errs.Error())
}

func TestRegistry_Overlay(t *testing.T) {
	higher := true
	cfg := &File{Metrics: []MetricConfig{
		{Name: "slack", Aggregator: "MIN", HigherIsBetter: &higher, DontAggregate: []string{"stage"}},
		{Name: "route__drc_errors"},
	}}

	registry, err := cfg.Registry(nil)
	require.NoError(t, err)

	slack, ok := registry.Get("slack")
	require.True(t, ok)
	assert.Equal(t, metrics.HigherIsBetter, slack.Preference)
	rule, ok := slack.Rule()
	require.True(t, ok)
	assert.Equal(t, []string{"stage"}, rule.DontAggregate)
	assert.Equal(t, int64(-1), rule.Reduce(int64(2), int64(-1)))

	drc, ok := registry.Get("route__drc_errors")
	require.True(t, ok)
	assert.False(t, drc.Critical, "user definition replaces the built-in one")
	assert.Equal(t, metrics.NoPreference, drc.Preference)
	_, ok = registry.Rule("route__drc_errors")
	assert.False(t, ok)

	builtin, ok := metrics.Default.Get("route__drc_errors")
	require.True(t, ok)
	assert.True(t, builtin.Critical, "default registry is untouched")

	_, ok = registry.Get("design__instance__count")
	assert.True(t, ok, "other built-in definitions are kept")
}

func TestRegistry_UnknownAggregator(t *testing.T) {
	cfg := &File{Metrics: []MetricConfig{{Name: "x", Aggregator: "median"}}}

	_, err := cfg.Registry(metrics.NewRegistry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "metrics[0]")
}
