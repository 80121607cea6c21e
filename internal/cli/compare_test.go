package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wesleyorama2/metricsdiff/internal/output"
)

const goldSnapshot = `{
	"route__drc_errors": 0,
	"design__instance__count": 100,
	"timing__setup__ws__corner:ff": 0.5,
	"unknown": 1
}`

const newSnapshot = `{
	"route__drc_errors": 2,
	"design__instance__count": 90,
	"timing__setup__ws__corner:ff": 0.5,
	"unknown": 2,
	"only_new": 3
}`

func snapshots(t *testing.T) (dir, gold, current string) {
	t.Helper()
	dir = t.TempDir()
	gold = writeFile(t, dir, "gold.json", goldSnapshot)
	current = writeFile(t, dir, "new.json", newSnapshot)
	return dir, gold, current
}

// tableNames returns the metric column of the body rows of a text report.
func tableNames(out string) []string {
	var names []string
	for i, line := range strings.Split(out, "\n") {
		if i < 2 || !strings.HasPrefix(line, "|") {
			continue
		}
		names = append(names, strings.TrimSpace(strings.Split(line, "|")[1]))
	}
	return names
}

func TestCompare_Text(t *testing.T) {
	_, gold, current := snapshots(t)

	stdout, _, err := execute(t, "compare", "--no-color", gold, current)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"route__drc_errors",
		"design__instance__count",
		"timing__setup__ws__corner:ff",
	}, tableNames(stdout))
	assert.Contains(t, stdout, "-10 (-10%) ⭕")
	assert.True(t, strings.HasSuffix(stdout,
		"✗ 3 metrics compared: 1 better, 1 worse, 1 unchanged, 1 critical\n"))
}

func TestCompare_Verbosity(t *testing.T) {
	_, gold, current := snapshots(t)

	stdout, _, err := execute(t, "compare", "--no-color", "--verbosity", "critical", gold, current)
	require.NoError(t, err)
	assert.Equal(t, []string{"route__drc_errors"}, tableNames(stdout))

	stdout, _, err = execute(t, "compare", "--no-color", "--verbosity", "none", gold, current)
	require.NoError(t, err)
	assert.Empty(t, tableNames(stdout))
	assert.Contains(t, stdout, "3 metrics compared")
}

func TestCompare_Filter(t *testing.T) {
	_, gold, current := snapshots(t)

	stdout, _, err := execute(t, "compare", "--no-color", "--filter", "!route__*", gold, current)
	require.NoError(t, err)
	assert.Equal(t, []string{"design__instance__count", "timing__setup__ws__corner:ff"}, tableNames(stdout))

	stdout, _, err = execute(t, "compare", "--no-color", "--filter", "timing__*", "--filter", "design__*", gold, current)
	require.NoError(t, err)
	assert.Equal(t, []string{"design__instance__count", "timing__setup__ws__corner:ff"}, tableNames(stdout))
}

func TestCompare_JSON(t *testing.T) {
	_, gold, current := snapshots(t)

	stdout, _, err := execute(t, "compare", "--json", gold, current)
	require.NoError(t, err)

	var data output.ReportData
	require.NoError(t, json.Unmarshal([]byte(stdout), &data))
	assert.Equal(t, gold, data.Gold)
	assert.Equal(t, output.StatsData{Total: 3, Better: 1, Worse: 1, Critical: 1, Unchanged: 1}, data.Stats)
	require.Len(t, data.Results, 3)
	assert.Equal(t, "design__instance__count", data.Results[0].Metric, "structured output keeps comparison order")
}

func TestCompare_JUnitFile(t *testing.T) {
	dir, gold, current := snapshots(t)
	report := filepath.Join(dir, "report.xml")

	stdout, _, err := execute(t, "compare", "--format", "junit", "-o", report, gold, current)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	data, err := os.ReadFile(report)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testsuite name="metricsdiff" tests="3" failures="1"`)
}

func TestCompare_FailOn(t *testing.T) {
	_, gold, current := snapshots(t)

	tests := []struct {
		name     string
		args     []string
		wantCode int
	}{
		{"none", []string{"--fail-on", "none"}, 0},
		{"critical", []string{"--fail-on", "critical"}, ExitCodeThreshold},
		{"worse", []string{"--fail-on", "worse"}, ExitCodeThreshold},
		{"worse without regressions", []string{"--fail-on", "worse", "--filter", "design__*"}, 0},
		{"critical with only worse", []string{"--fail-on", "critical", "--filter", "!route__*"}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"compare", "--no-color"}, tt.args...)
			stdout, _, err := execute(t, append(args, gold, current)...)

			assert.Equal(t, tt.wantCode, ExitCode(err))
			assert.NotEmpty(t, stdout, "the report is written before the threshold check")
		})
	}
}

func TestCompare_ConfigSettings(t *testing.T) {
	dir := t.TempDir()
	gold := writeFile(t, dir, "gold.json", `{"metrics": `+goldSnapshot+`}`)
	current := writeFile(t, dir, "new.json", `{"metrics": `+newSnapshot+`}`)
	cfg := writeFile(t, dir, "metricsdiff.yaml", `
settings:
  verbosity: worse
  jsonPath: metrics
  filter: ["*", "!timing__*"]
`)

	stdout, _, err := execute(t, "--config", cfg, "compare", "--no-color", gold, current)
	require.NoError(t, err)
	assert.Equal(t, []string{"route__drc_errors"}, tableNames(stdout))
	assert.Contains(t, stdout, "2 metrics compared")

	stdout, _, err = execute(t, "--config", cfg, "compare", "--no-color", "--verbosity", "all", gold, current)
	require.NoError(t, err)
	assert.Equal(t, []string{"route__drc_errors", "design__instance__count"}, tableNames(stdout), "flags override settings")
}

func TestCompare_Aggregate(t *testing.T) {
	dir := t.TempDir()
	gold := writeFile(t, dir, "gold.json", `{"route__drc_errors__iter:1": 0, "route__drc_errors__iter:2": 0}`)
	current := writeFile(t, dir, "new.json", `{"route__drc_errors__iter:1": 0, "route__drc_errors__iter:2": 4}`)

	stdout, _, err := execute(t, "compare", "--no-color", "--aggregate", "--verbosity", "critical", "--sort-by", "iter", gold, current)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"route__drc_errors",
		"route__drc_errors__iter:1",
		"route__drc_errors__iter:2",
	}, tableNames(stdout))
}

func TestCompare_CoercionError(t *testing.T) {
	dir := t.TempDir()
	gold := writeFile(t, dir, "gold.json", `{"design__instance__count": "many"}`)
	current := writeFile(t, dir, "new.json", `{"design__instance__count": 3}`)

	_, _, err := execute(t, "compare", gold, current)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "comparison failed")
	assert.Equal(t, 1, ExitCode(err))
}

func TestCompare_InvalidFlags(t *testing.T) {
	dir, gold, current := snapshots(t)

	tests := []struct {
		name string
		args []string
	}{
		{"fail-on", []string{"--fail-on", "sometimes"}},
		{"verbosity", []string{"--verbosity", "loud"}},
		{"format", []string{"--format", "xml"}},
		{"filter", []string{"--filter", "!"}},
		{"significant figures", []string{"-s", "-1"}},
		{"missing gold", []string{filepath.Join(dir, "missing.json")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]string{"compare"}, tt.args...)
			if len(tt.args) == 1 {
				args = append(args, current)
			} else {
				args = append(args, gold, current)
			}

			_, _, err := execute(t, args...)
			require.Error(t, err)

			var exitErr *ExitError
			assert.False(t, errors.As(err, &exitErr))
		})
	}
}

func TestCompare_SignificantFiguresDefault(t *testing.T) {
	stdout, _, err := execute(t, "compare", "--help")
	require.NoError(t, err)

	var line string
	for _, l := range strings.Split(stdout, "\n") {
		if strings.Contains(l, "--significant-figures") {
			line = l
		}
	}
	require.NotEmpty(t, line)
	assert.Equal(t, 1, strings.Count(line, "default"))
	assert.Contains(t, line, "(default 4)")
}

func TestCompare_DefaultRoundingApplies(t *testing.T) {
	dir := t.TempDir()
	gold := writeFile(t, dir, "gold.json", `{"design__instance__count": 100000}`)
	current := writeFile(t, dir, "new.json", `{"design__instance__count": 100004}`)

	stdout, _, err := execute(t, "compare", "--no-color", gold, current)
	require.NoError(t, err)
	assert.Contains(t, stdout, "1 unchanged", "values equal at four significant figures")
}
