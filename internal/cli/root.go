// Package cli implements the analyst command line: customer listing and
// single-customer opportunity analysis against the configured transaction
// table.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/ignite/opportunity-analyst/internal/analysis"
	"github.com/ignite/opportunity-analyst/internal/config"
	"github.com/ignite/opportunity-analyst/internal/dataset"
	"github.com/ignite/opportunity-analyst/internal/pkg/logger"
	"github.com/ignite/opportunity-analyst/internal/report"
)

type globalOptions struct {
	configPath string
	dataPath   string
	logLevel   string
}

// NewRootCmd builds the analyst command tree.
func NewRootCmd() *cobra.Command {
	opts := &globalOptions{}

	root := &cobra.Command{
		Use:   "analyst",
		Short: "Cross-sell and upsell opportunity analysis for B2B customers",
		Long: `analyst profiles a customer from the transaction table, compares its
purchases with industry peers and co-purchasing customers, scores
cross-sell and upsell opportunities and writes a research report.

The table comes from the configured dataset source (CSV file, S3 object
or SQL query). --data points at a local CSV and overrides the config.

Examples:
  # List every customer in the table
  analyst customers --data customer_data.csv

  # Analyze one customer
  analyst analyze C001

  # Machine-readable output without the narrative report
  analyst analyze C001 --json --no-report`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger.SetOutput(cmd.ErrOrStderr())
		},
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "config/config.yaml", "path to config file")
	root.PersistentFlags().StringVar(&opts.dataPath, "data", "", "CSV file to analyze (overrides the configured dataset source)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level written to stderr (debug, info, warn, error); defaults to log.level from the config")

	root.SuggestionsMinimumDistance = 2

	root.AddCommand(newCustomersCmd(opts))
	root.AddCommand(newAnalyzeCmd(opts))
	root.AddCommand(newCheckCmd(opts))

	return root
}

// Execute runs the root command
func Execute() error {
	return NewRootCmd().Execute()
}

// loadConfig reads the config file and applies flag overrides.
func (o *globalOptions) loadConfig() (*config.Config, error) {
	cfg, err := config.LoadFromEnv(o.configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if o.dataPath != "" {
		cfg.Dataset.Source = config.SourceFile
		cfg.Dataset.Path = o.dataPath
	}

	level := o.logLevel
	if level == "" {
		level = cfg.Log.Level
	}
	logger.SetLevel(logger.ParseLevel(level))
	logger.SetRedact(cfg.Log.RedactEnabled())
	return cfg, nil
}

// openService loads the transaction table. The narrator is nil when no
// report is wanted. The returned cleanup releases the source and cache.
func openService(ctx context.Context, cfg *config.Config, withReport bool) (*analysis.Service, func(), error) {
	src, err := dataset.NewSource(ctx, cfg.Dataset)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open dataset: %w", err)
	}

	var closers []io.Closer
	if c, ok := src.(io.Closer); ok {
		closers = append(closers, c)
	}
	cleanup := func() {
		for _, c := range closers {
			c.Close()
		}
	}

	var narrator analysis.Narrator
	if withReport {
		reporter, client, err := report.Setup(ctx, cfg)
		if err != nil {
			cleanup()
			return nil, nil, err
		}
		if client != nil {
			closers = append(closers, client)
		}
		narrator = reporter
	}

	svc := analysis.NewService(src, narrator, cfg.Dataset.LoadTimeout())
	if _, err := svc.Reload(ctx); err != nil {
		cleanup()
		return nil, nil, err
	}
	return svc, cleanup, nil
}
