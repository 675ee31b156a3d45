package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCheckCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check",
		Short: "Load the transaction table and report what was read",
		Long: `Load the configured transaction table once, the same way the server
does at startup and on reload, and print its source, columns and size.
Exits non-zero when the table cannot be loaded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			svc, cleanup, err := openService(cmd.Context(), cfg, false)
			if err != nil {
				return err
			}
			defer cleanup()

			p, err := svc.Pipeline()
			if err != nil {
				return err
			}
			table := p.Table()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Source:    %s\n", table.Source())
			fmt.Fprintf(out, "Rows:      %d\n", table.Len())
			fmt.Fprintf(out, "Customers: %d\n", len(p.Customers()))
			fmt.Fprintf(out, "Columns:   %d\n", len(table.Columns()))
			for _, c := range table.Columns() {
				fmt.Fprintf(out, "  - %s\n", c)
			}
			fmt.Fprintln(out, colorize(colorGreen, "OK"))
			return nil
		},
	}
}
