package cli

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/metricsdiff/internal/metrics"
	"github.com/wesleyorama2/metricsdiff/internal/snapshot"
)

func newAggregateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "aggregate <snapshot>",
		Short: "Roll leaf metrics up across their modifiers",
		Long: `Compute every intermediate roll-up of a snapshot and write the snapshot
overlaid with them. Metrics roll up with the aggregator of their definition;
metrics without one, and names without modifiers, are copied unchanged.`,
		Example: `  metricsdiff aggregate state_in.json
  metricsdiff aggregate --json-path metrics state_in.json -o aggregated.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runAggregate(cmd, args)
		},
	}

	cmd.Flags().StringP("output", "o", "", "Write the aggregated snapshot to a file (format from extension)")
	cmd.Flags().String("format", "", "Output format for stdout: json or yaml (default json)")
	cmd.Flags().String("json-path", "", "JSONPath of the metrics object inside the input document")

	return cmd
}

func (a *app) runAggregate(cmd *cobra.Command, args []string) error {
	outputPath, _ := cmd.Flags().GetString("output")
	format, _ := cmd.Flags().GetString("format")
	jsonPath := a.config.Settings.JSONPath
	if cmd.Flags().Changed("json-path") {
		jsonPath, _ = cmd.Flags().GetString("json-path")
	}

	input, err := snapshot.Load(args[0], snapshot.Options{JSONPath: jsonPath})
	if err != nil {
		return err
	}
	a.log.WithFields(logrus.Fields{"path": args[0], "metrics": len(input)}).Debug("loaded snapshot")

	aggregated := metrics.Aggregate(input, a.registry)
	a.log.WithFields(logrus.Fields{
		"input":  len(input),
		"output": len(aggregated),
	}).Info("aggregated snapshot")

	if outputPath != "" {
		if err := snapshot.Save(outputPath, aggregated); err != nil {
			return err
		}
		a.log.WithField("path", outputPath).Info("wrote aggregated snapshot")
		return nil
	}

	var outFormat snapshot.Format
	switch format {
	case "", "json":
		outFormat = snapshot.FormatJSON
	case "yaml", "yml":
		outFormat = snapshot.FormatYAML
	default:
		return errors.Newf("unknown snapshot format %q (want json or yaml)", format)
	}

	data, err := snapshot.Marshal(aggregated, outFormat)
	if err != nil {
		return err
	}
	_, err = cmd.OutOrStdout().Write(data)
	return err
}
