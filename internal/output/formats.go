package output

import (
	"encoding/json"
	"encoding/xml"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/wesleyorama2/metricsdiff/internal/metrics"
)

// OutputFormat represents the available output formats
type OutputFormat string

const (
	// FormatText is the default human-readable table
	FormatText OutputFormat = "text"
	// FormatJSON outputs in JSON format
	FormatJSON OutputFormat = "json"
	// FormatYAML outputs in YAML format
	FormatYAML OutputFormat = "yaml"
	// FormatJUnit outputs in JUnit XML format (for CI/CD integration)
	FormatJUnit OutputFormat = "junit"
)

// ParseFormat parses an output format name.
func ParseFormat(s string) (OutputFormat, error) {
	switch format := OutputFormat(strings.ToLower(strings.TrimSpace(s))); format {
	case "":
		return FormatText, nil
	case FormatText, FormatJSON, FormatYAML, FormatJUnit:
		return format, nil
	default:
		return "", errors.Newf("unknown output format %q (want text, json, yaml or junit)", s)
	}
}

// Report is a finished comparison ready to be written.
type Report struct {
	Gold      string
	New       string
	Timestamp time.Time
	Results   []metrics.ComparisonResult
	SortBy    []string
	Verbosity metrics.Verbosity
}

// NewReport builds a report from a collected diff.
func NewReport(gold, current string, diff *metrics.Diff) *Report {
	return &Report{
		Gold:      gold,
		New:       current,
		Timestamp: time.Now(),
		Results:   diff.Results,
		Verbosity: metrics.VerbosityAll,
	}
}

// Stats returns the statistics of the report's results.
func (r *Report) Stats() metrics.Statistics {
	return metrics.Stats(r.Results)
}

// FormatProvider is an interface for different output formatters
type FormatProvider interface {
	Format(report *Report) (string, error)
}

// ResultData represents the structured data of a single comparison
type ResultData struct {
	Metric   string        `json:"metric" yaml:"metric"`
	Gold     metrics.Value `json:"gold" yaml:"gold"`
	New      metrics.Value `json:"new" yaml:"new"`
	Before   string        `json:"before" yaml:"before"`
	After    string        `json:"after" yaml:"after"`
	Delta    string        `json:"delta" yaml:"delta"`
	Changed  bool          `json:"changed" yaml:"changed"`
	Better   string        `json:"better" yaml:"better"`
	Critical bool          `json:"critical" yaml:"critical"`
}

// StatsData represents the structured statistics of a report
type StatsData struct {
	Total     int `json:"total" yaml:"total"`
	Better    int `json:"better" yaml:"better"`
	Worse     int `json:"worse" yaml:"worse"`
	Critical  int `json:"critical" yaml:"critical"`
	Unchanged int `json:"unchanged" yaml:"unchanged"`
}

// ReportData represents the structured data of a report
type ReportData struct {
	Gold      string       `json:"gold" yaml:"gold"`
	New       string       `json:"new" yaml:"new"`
	Timestamp string       `json:"timestamp" yaml:"timestamp"`
	Stats     StatsData    `json:"stats" yaml:"stats"`
	Results   []ResultData `json:"results" yaml:"results"`
}

func reportData(report *Report) ReportData {
	stats := report.Stats()
	data := ReportData{
		Gold:      report.Gold,
		New:       report.New,
		Timestamp: report.Timestamp.Format(time.RFC3339),
		Stats: StatsData{
			Total:     len(report.Results),
			Better:    stats.Better,
			Worse:     stats.Worse,
			Critical:  stats.Critical,
			Unchanged: stats.Unchanged,
		},
		Results: make([]ResultData, 0, len(report.Results)),
	}

	for _, r := range report.Results {
		before, after, delta := r.FormatValues()
		data.Results = append(data.Results, ResultData{
			Metric:   r.MetricName,
			Gold:     r.Gold,
			New:      r.New,
			Before:   before,
			After:    after,
			Delta:    delta,
			Changed:  r.IsChanged(),
			Better:   r.Better.String(),
			Critical: r.Critical,
		})
	}
	return data
}

// JSONFormatter formats reports as JSON
type JSONFormatter struct {
	Pretty bool
}

// Format formats a report as JSON
func (f *JSONFormatter) Format(report *Report) (string, error) {
	var (
		out []byte
		err error
	)
	if f.Pretty {
		out, err = json.MarshalIndent(reportData(report), "", "  ")
	} else {
		out, err = json.Marshal(reportData(report))
	}
	if err != nil {
		return "", errors.Wrap(err, "failed to encode JSON report")
	}
	return string(out) + "\n", nil
}

// YAMLFormatter formats reports as YAML
type YAMLFormatter struct{}

// Format formats a report as YAML
func (f *YAMLFormatter) Format(report *Report) (string, error) {
	out, err := yaml.Marshal(reportData(report))
	if err != nil {
		return "", errors.Wrap(err, "failed to encode YAML report")
	}
	return string(out), nil
}

// JUnitTestSuites represents the root element containing all test suites
type JUnitTestSuites struct {
	XMLName    xml.Name         `xml:"testsuites"`
	TestSuites []JUnitTestSuite `xml:"testsuite"`
}

// JUnitTestSuite represents a JUnit test suite
type JUnitTestSuite struct {
	Name      string          `xml:"name,attr"`
	Tests     int             `xml:"tests,attr"`
	Failures  int             `xml:"failures,attr"`
	Errors    int             `xml:"errors,attr"`
	Time      float64         `xml:"time,attr"`
	Timestamp string          `xml:"timestamp,attr"`
	TestCases []JUnitTestCase `xml:"testcase"`
}

// JUnitTestCase represents a JUnit test case
type JUnitTestCase struct {
	Name      string        `xml:"name,attr"`
	Classname string        `xml:"classname,attr"`
	Time      float64       `xml:"time,attr"`
	Failure   *JUnitFailure `xml:"failure,omitempty"`
	SystemOut string        `xml:"system-out,omitempty"`
}

// JUnitFailure represents a JUnit test failure
type JUnitFailure struct {
	Message string `xml:"message,attr"`
	Type    string `xml:"type,attr"`
	Content string `xml:",chardata"`
}

// JUnitFormatter formats reports as JUnit XML. Every compared metric is a
// test case; regressions and changed critical metrics are failures.
type JUnitFormatter struct {
	SuiteName string
}

// Format formats a report as JUnit XML
func (f *JUnitFormatter) Format(report *Report) (string, error) {
	suite := JUnitTestSuite{
		Name:      f.SuiteName,
		Tests:     len(report.Results),
		Timestamp: report.Timestamp.Format(time.RFC3339),
		TestCases: []JUnitTestCase{},
	}

	for _, r := range report.Results {
		before, after, delta := r.FormatValues()
		testCase := JUnitTestCase{
			Name:      r.MetricName,
			Classname: "metricsdiff." + metrics.BaseName(r.MetricName),
			SystemOut: fmt.Sprintf("before: %s\nafter: %s\ndelta: %s", before, after, delta),
		}

		switch {
		case r.Critical && r.IsChanged():
			testCase.Failure = &JUnitFailure{
				Message: fmt.Sprintf("critical metric changed by %s", delta),
				Type:    "CriticalChange",
				Content: fmt.Sprintf("%s: %s -> %s", r.MetricName, before, after),
			}
		case r.Better == metrics.Regressed:
			testCase.Failure = &JUnitFailure{
				Message: fmt.Sprintf("metric regressed by %s", delta),
				Type:    "Regression",
				Content: fmt.Sprintf("%s: %s -> %s", r.MetricName, before, after),
			}
		}
		if testCase.Failure != nil {
			suite.Failures++
		}

		suite.TestCases = append(suite.TestCases, testCase)
	}

	output, err := xml.MarshalIndent(JUnitTestSuites{TestSuites: []JUnitTestSuite{suite}}, "", "  ")
	if err != nil {
		return "", errors.Wrap(err, "failed to encode JUnit report")
	}
	return xml.Header + string(output) + "\n", nil
}

// TextFormatter writes the comparison table followed by a summary line
type TextFormatter struct {
	NoColor bool
}

// Format formats a report as a text table
func (f *TextFormatter) Format(report *Report) (string, error) {
	scheme := SchemeFor(f.NoColor)

	var sb strings.Builder
	table := metrics.Render(report.Results, report.SortBy, report.Verbosity)
	if table != "" {
		sb.WriteString(colorizeTable(table, scheme))
		sb.WriteString("\n")
	}
	sb.WriteString(FormatSummary(report.Results, f.NoColor))
	return sb.String(), nil
}

// colorizeTable colors whole table lines so the padding computed by
// metrics.Render is left intact.
func colorizeTable(table string, scheme *ColorScheme) string {
	lines := strings.Split(strings.TrimSuffix(table, "\n"), "\n")
	for i, line := range lines {
		switch {
		case i < 2:
			lines[i] = scheme.Header.Sprint(line)
		case strings.Contains(line, metrics.GlyphCritical):
			lines[i] = scheme.Critical.Sprint(line)
		case strings.Contains(line, metrics.GlyphWorsened):
			lines[i] = scheme.Regressed.Sprint(line)
		case strings.Contains(line, metrics.GlyphImproved):
			lines[i] = scheme.Improved.Sprint(line)
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// FormatSummary formats a one-line summary of the results. The leading icon
// is an error when a critical metric changed and a warning when any metric
// regressed.
func FormatSummary(results []metrics.ComparisonResult, noColor bool) string {
	scheme := SchemeFor(noColor)
	stats := metrics.Stats(results)

	icon := SuccessIcon(noColor)
	switch {
	case CriticalChanged(results):
		icon = ErrorIcon(noColor)
	case stats.Worse > 0:
		icon = WarningIcon(noColor)
	}

	return fmt.Sprintf("%s %s metrics compared: %s better, %s worse, %s unchanged, %s critical\n",
		icon,
		scheme.Highlight.Sprint(len(results)),
		scheme.Improved.Sprint(stats.Better),
		scheme.Regressed.Sprint(stats.Worse),
		scheme.Unchanged.Sprint(stats.Unchanged),
		scheme.Critical.Sprint(stats.Critical),
	)
}

// CriticalChanged reports whether any critical metric changed.
func CriticalChanged(results []metrics.ComparisonResult) bool {
	for _, r := range results {
		if r.Critical && r.IsChanged() {
			return true
		}
	}
	return false
}

// GetFormatter returns the appropriate formatter for the given format
func GetFormatter(format OutputFormat, noColor bool) FormatProvider {
	switch format {
	case FormatJSON:
		return &JSONFormatter{Pretty: true}
	case FormatYAML:
		return &YAMLFormatter{}
	case FormatJUnit:
		return &JUnitFormatter{SuiteName: "metricsdiff"}
	default:
		return &TextFormatter{NoColor: noColor}
	}
}
