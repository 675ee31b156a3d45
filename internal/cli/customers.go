package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newCustomersCmd(opts *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "customers",
		Short: "List the customers in the transaction table",
		Long: `List every customer in the transaction table, sorted by id, with
industry, priority, purchase count and total spend.`,
		Example: `  analyst customers
  analyst customers --data customer_data.csv`,
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

			customers, err := svc.Customers()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, RenderCustomerTable(customers))
			fmt.Fprintf(out, "\n%d customers\n", len(customers))
			return nil
		},
	}
}
