package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ignite/opportunity-analyst/internal/analysis"
)

func newAnalyzeCmd(opts *globalOptions) *cobra.Command {
	var (
		asJSON   bool
		noReport bool
	)

	cmd := &cobra.Command{
		Use:   "analyze <customer-id>",
		Short: "Analyze one customer for cross-sell and upsell opportunities",
		Long: `Run the full analysis for one customer: profile, earliest purchases,
industry purchase patterns, product affinity, scored opportunities and the
research report.

Customer ids match case-insensitively and ignore surrounding whitespace.`,
		Example: `  analyst analyze C001
  analyst analyze c001 --no-report
  analyst analyze C001 --json > analysis_C001.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			svc, cleanup, err := openService(cmd.Context(), cfg, !noReport)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.Analyze(cmd.Context(), args[0], analysis.AnalyzeOptions{SkipReport: noReport})
			if err != nil {
				return fmt.Errorf("analyze %q: %w", args[0], err)
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}
			purchases, err := svc.Purchases(args[0], analysis.DefaultPurchaseLimit)
			if err != nil {
				return fmt.Errorf("purchase history %q: %w", args[0], err)
			}
			fmt.Fprint(out, RenderAnalysis(result, purchases))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the full result as JSON")
	cmd.Flags().BoolVar(&noReport, "no-report", false, "skip the narrative research report")
	return cmd
}
