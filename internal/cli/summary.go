package cli

import (
	"github.com/spf13/cobra"

	"github.com/mvasquez/invctl/internal/repo"
	"github.com/mvasquez/invctl/internal/validate"
)

// NewSummaryCommand creates the summary command: per-user invoice counts
// and totals from the user_invoice_summary view.
func NewSummaryCommand(rootOpts *RootOptions) *cobra.Command {
	var minTotal string

	cmd := &cobra.Command{
		Use:           "summary",
		Short:         "Per-user invoice counts and totals",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			var minCents int64
			if cmd.Flags().Changed("min-total") {
				var err error
				minCents, err = validate.Cents(minTotal)
				if err != nil {
					return out.Report(repo.NewInvalidInput(err.Error()))
				}
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := repo.Summary(cmd.Context(), st, minCents)
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(rows)
			}
			printSummary(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&minTotal, "min-total", "", "only users with at least this invoiced total (dollars)")

	return cmd
}
