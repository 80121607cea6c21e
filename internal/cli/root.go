package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wesleyorama2/metricsdiff/internal/config"
	"github.com/wesleyorama2/metricsdiff/internal/metrics"
)

var version = "0.1.0"

// ExitError carries a process exit code out of a command. It is returned
// when a comparison crosses the --fail-on threshold.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// app holds state shared by the subcommands of one invocation
type app struct {
	log      *logrus.Logger
	config   *config.File
	registry *metrics.Registry
}

// NewRootCmd builds the metricsdiff command tree.
func NewRootCmd() *cobra.Command {
	a := &app{log: logrus.New(), config: &config.File{}}

	rootCmd := &cobra.Command{
		Use:     "metricsdiff",
		Short:   "Aggregate and compare hierarchical design metrics",
		Version: version,
		Long: `metricsdiff works with flat snapshots of metrics whose names carry
modifiers, such as timing__setup__ws__corner:ff__stage:cts.

It rolls leaf metrics up across their modifiers and compares a new snapshot
against a gold one, rendering a table of what got better, what got worse and
what changed in critical metrics.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// If no subcommand is provided, print help
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().String("log-level", "warn", "Log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().StringP("config", "c", "", "Configuration file (YAML or JSON)")

	rootCmd.AddCommand(newParseCmd(a))
	rootCmd.AddCommand(newAggregateCmd(a))
	rootCmd.AddCommand(newCompareCmd(a))
	rootCmd.AddCommand(newMetricsCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	level, _ := cmd.Flags().GetString("log-level")
	logger, err := newLogger(cmd.ErrOrStderr(), level)
	if err != nil {
		return err
	}
	a.log = logger

	configPath, _ := cmd.Flags().GetString("config")
	if configPath != "" {
		cfg, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		a.config = cfg
		a.log.WithFields(logrus.Fields{
			"path":    configPath,
			"metrics": len(cfg.Metrics),
		}).Debug("loaded configuration")
	}

	registry, err := a.config.Registry(metrics.Default)
	if err != nil {
		return err
	}
	a.registry = registry
	return nil
}

func newLogger(w io.Writer, level string) (*logrus.Logger, error) {
	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		return nil, errors.Wrap(err, "invalid --log-level")
	}

	logger := logrus.New()
	logger.SetOutput(w)
	logger.SetLevel(lvl)
	logger.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
	})
	return logger, nil
}

// Execute runs the root command against os.Args and reports errors on
// stderr. This is called by main.main().
func Execute() error {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

// ExitCode maps an error returned by Execute to a process exit code.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	return 1
}
