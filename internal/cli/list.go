package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

type metricInfo struct {
	Name          string   `json:"name"`
	Description   string   `json:"description,omitempty"`
	Aggregator    string   `json:"aggregator"`
	Preference    string   `json:"preference"`
	Critical      bool     `json:"critical"`
	DontAggregate []string `json:"dontAggregate,omitempty"`
}

func newMetricsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "metrics",
		Short: "List the metric definitions in effect",
		Long: `List the built-in metric definitions, overlaid with those of the
configuration file when --config is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runMetrics(cmd)
		},
	}

	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

func (a *app) runMetrics(cmd *cobra.Command) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")

	defs := a.registry.Metrics()
	infos := make([]metricInfo, 0, len(defs))
	for _, m := range defs {
		agg := "none"
		if m.Aggregator != nil && m.Aggregator.Name != "" {
			agg = m.Aggregator.Name
		}
		infos = append(infos, metricInfo{
			Name:          m.Name,
			Description:   m.Description,
			Aggregator:    agg,
			Preference:    m.Preference.String(),
			Critical:      m.Critical,
			DontAggregate: m.DontAggregate,
		})
	}

	if jsonOutput {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(infos)
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tAGGREGATOR\tBETTER\tCRITICAL\tDONT AGGREGATE")
	for _, info := range infos {
		dont := strings.Join(info.DontAggregate, ",")
		if dont == "" {
			dont = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%t\t%s\n", info.Name, info.Aggregator, info.Preference, info.Critical, dont)
	}
	return w.Flush()
}
