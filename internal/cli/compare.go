package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/metricsdiff/internal/config"
	"github.com/wesleyorama2/metricsdiff/internal/filter"
	"github.com/wesleyorama2/metricsdiff/internal/metrics"
	"github.com/wesleyorama2/metricsdiff/internal/output"
	"github.com/wesleyorama2/metricsdiff/internal/snapshot"
)

// Thresholds accepted by --fail-on.
const (
	FailOnNone     = "none"
	FailOnCritical = "critical"
	FailOnWorse    = "worse"
)

// ExitCodeThreshold is the exit code used when --fail-on triggers.
const ExitCodeThreshold = 2

func newCompareCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <gold> <new>",
		Short: "Compare a new snapshot against a gold snapshot",
		Long: `Compare every metric of the new snapshot that also exists in the gold
snapshot and render the results.

Rows are grouped so changed critical metrics come first, followed by
regressions, other changes and finally unchanged metrics. --verbosity cuts
the table after a group: none, critical, worse, changed or all.`,
		Example: `  metricsdiff compare gold.json state_out.json
  metricsdiff compare -s 3 --verbosity worse --sort-by corner,"" gold.json new.json
  metricsdiff compare --filter 'timing__*' --filter '!*__tns' gold.yaml new.yaml
  metricsdiff compare --format junit -o report.xml --fail-on critical gold.json new.json`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runCompare(cmd, args)
		},
	}

	cmd.Flags().IntP("significant-figures", "s", config.DefaultSignificantFigures, "Significant figures to round values to; 0 disables rounding")
	cmd.Flags().String("verbosity", "", "Rows to show: none, critical, worse, changed or all (default all)")
	cmd.Flags().StringSlice("sort-by", nil, `Modifier keys to sort rows by; "" means the base name`)
	cmd.Flags().StringArray("filter", nil, "Glob pattern of metrics to compare; prefix with ! to exclude (repeatable)")
	cmd.Flags().String("json-path", "", "JSONPath of the metrics object inside both documents")
	cmd.Flags().Bool("aggregate", false, "Aggregate both snapshots before comparing")
	cmd.Flags().String("format", "text", "Output format: text, json, yaml or junit")
	cmd.Flags().Bool("json", false, "Shorthand for --format json")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().Bool("no-color", false, "Disable colored output")
	cmd.Flags().String("fail-on", FailOnNone, "Exit with code 2 on: none, critical (a critical metric changed) or worse (any regression)")

	return cmd
}

// compareOptions are the effective settings of one comparison: the
// configuration file overridden by explicitly set flags.
type compareOptions struct {
	significantFigures int
	verbosity          metrics.Verbosity
	sortBy             []string
	filter             *filter.Filter
	jsonPath           string
	aggregate          bool
	format             output.OutputFormat
	outputPath         string
	noColor            bool
	failOn             string
}

func (a *app) resolveCompareOptions(cmd *cobra.Command) (*compareOptions, error) {
	settings := a.config.Settings
	flags := cmd.Flags()

	opts := &compareOptions{
		significantFigures: settings.SignificantFiguresOrDefault(),
		sortBy:             settings.SortBy,
		jsonPath:           settings.JSONPath,
	}

	verbosity, err := settings.VerbosityOrDefault()
	if err != nil {
		return nil, err
	}
	opts.verbosity = verbosity

	if flags.Changed("significant-figures") {
		opts.significantFigures, _ = flags.GetInt("significant-figures")
		if opts.significantFigures < 0 {
			return nil, errors.New("--significant-figures must not be negative")
		}
	}
	if flags.Changed("verbosity") {
		s, _ := flags.GetString("verbosity")
		if opts.verbosity, err = metrics.ParseVerbosity(s); err != nil {
			return nil, err
		}
	}
	if flags.Changed("sort-by") {
		opts.sortBy, _ = flags.GetStringSlice("sort-by")
	}
	if flags.Changed("json-path") {
		opts.jsonPath, _ = flags.GetString("json-path")
	}

	patterns := settings.Filter
	if flags.Changed("filter") {
		patterns, _ = flags.GetStringArray("filter")
	}
	if opts.filter, err = filter.New(patterns...); err != nil {
		return nil, err
	}

	format, _ := flags.GetString("format")
	if opts.format, err = output.ParseFormat(format); err != nil {
		return nil, err
	}
	if jsonOutput, _ := flags.GetBool("json"); jsonOutput {
		opts.format = output.FormatJSON
	}

	opts.failOn, _ = flags.GetString("fail-on")
	switch opts.failOn {
	case FailOnNone, FailOnCritical, FailOnWorse:
	default:
		return nil, errors.Newf("unknown --fail-on value %q (want none, critical or worse)", opts.failOn)
	}

	opts.aggregate, _ = flags.GetBool("aggregate")
	opts.outputPath, _ = flags.GetString("output")
	opts.noColor, _ = flags.GetBool("no-color")
	if opts.outputPath != "" || !output.ColorEnabled(os.Stdout) {
		opts.noColor = true
	}

	return opts, nil
}

func (a *app) runCompare(cmd *cobra.Command, args []string) error {
	opts, err := a.resolveCompareOptions(cmd)
	if err != nil {
		return err
	}

	goldPath, newPath := args[0], args[1]
	gold, err := snapshot.Load(goldPath, snapshot.Options{JSONPath: opts.jsonPath})
	if err != nil {
		return err
	}
	current, err := snapshot.Load(newPath, snapshot.Options{JSONPath: opts.jsonPath})
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{
		"gold": len(gold),
		"new":  len(current),
	}).Debug("loaded snapshots")

	if opts.aggregate {
		gold = metrics.Aggregate(gold, a.registry)
		current = metrics.Aggregate(current, a.registry)
	}

	differ := &metrics.Differ{
		Registry:           a.registry,
		Filter:             opts.filter,
		SignificantFigures: opts.significantFigures,
	}
	diff, err := metrics.NewDiff(differ.Compare(gold, current))
	if err != nil {
		return errors.Wrap(err, "comparison failed")
	}

	stats := diff.Stats()
	a.log.WithFields(logrus.Fields{
		"compared":  len(diff.Results),
		"better":    stats.Better,
		"worse":     stats.Worse,
		"critical":  stats.Critical,
		"unchanged": stats.Unchanged,
	}).Info("compared snapshots")

	report := output.NewReport(goldPath, newPath, diff)
	report.SortBy = opts.sortBy
	report.Verbosity = opts.verbosity

	rendered, err := output.GetFormatter(opts.format, opts.noColor).Format(report)
	if err != nil {
		return err
	}
	if err := a.writeReport(cmd.OutOrStdout(), opts.outputPath, rendered); err != nil {
		return err
	}

	return checkThreshold(opts.failOn, diff.Results)
}

func (a *app) writeReport(stdout io.Writer, path, rendered string) error {
	if path == "" {
		_, err := io.WriteString(stdout, rendered)
		return err
	}

	if err := os.WriteFile(path, []byte(rendered), 0o644); err != nil {
		return errors.Wrapf(err, "failed to write report %s", path)
	}
	a.log.WithField("path", path).Info("wrote report")
	return nil
}

func checkThreshold(failOn string, results []metrics.ComparisonResult) error {
	critical := output.CriticalChanged(results)
	worse := metrics.Stats(results).Worse

	switch {
	case critical && failOn != FailOnNone:
		return &ExitError{Code: ExitCodeThreshold, Message: "a critical metric changed"}
	case failOn == FailOnWorse && worse > 0:
		return &ExitError{Code: ExitCodeThreshold, Message: fmt.Sprintf("%d metrics got worse", worse)}
	}
	return nil
}
