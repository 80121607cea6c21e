package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wesleyorama2/metricsdiff/internal/metrics"
)

type parsedName struct {
	Name      string            `json:"name"`
	Base      string            `json:"base"`
	Modifiers map[string]string `json:"modifiers"`
}

func newParseCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "parse <name>...",
		Short: "Split metric names into base name and modifiers",
		Example: `  metricsdiff parse timing__setup__ws__corner:ff__stage:cts
  metricsdiff parse --json route__drc_errors__iter:3`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args)
		},
	}

	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

func runParse(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	parsed := make([]parsedName, 0, len(args))
	for _, name := range args {
		base, modifiers := metrics.ParseName(name)
		parsed = append(parsed, parsedName{Name: name, Base: base, Modifiers: modifiers.Map()})

		if jsonOutput {
			continue
		}
		fmt.Fprintln(out, name)
		fmt.Fprintf(out, "  base: %s\n", base)
		for _, m := range modifiers {
			fmt.Fprintf(out, "  %s: %s\n", m.Key, m.Value)
		}
	}

	if jsonOutput {
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")
		return encoder.Encode(parsed)
	}
	return nil
}
