package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvasquez/invctl/internal/repo"
	"github.com/mvasquez/invctl/internal/validate"
)

// NewInvoicesCommand creates the invoices command group.
func NewInvoicesCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoices",
		Short: "Invoice commands",
	}

	cmd.AddCommand(newInvoicesCreateCommand(rootOpts))
	cmd.AddCommand(newInvoicesGetCommand(rootOpts))
	cmd.AddCommand(newInvoicesListCommand(rootOpts))
	cmd.AddCommand(newInvoicesCountCommand(rootOpts))
	cmd.AddCommand(newInvoicesSumCommand(rootOpts))
	cmd.AddCommand(newInvoicesUpdateCommand(rootOpts))
	cmd.AddCommand(newInvoicesDeleteCommand(rootOpts))

	return cmd
}

func newInvoicesCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var userID int64
	var total, due string

	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create a new invoice for a user",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			inv, err := repo.NewInvoices(st).Create(cmd.Context(), userID, total, due)
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(inv)
			}
			return out.Success(fmt.Sprintf("Created invoice %d for user %d (%s)",
				inv.ID, inv.UserID, validate.FormatCents(inv.Total)))
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "id of the owning user")
	cmd.Flags().StringVarP(&total, "total", "t", "", "invoice total in dollars, e.g. 400 or 99.95")
	cmd.Flags().StringVarP(&due, "due", "d", "", "due date (MM-DD-YYYY, MM/DD/YYYY, or YYYY-MM-DD)")
	_ = cmd.MarkFlagRequired("user")
	_ = cmd.MarkFlagRequired("total")

	return cmd
}

func newInvoicesGetCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "get <id>",
		Short:         "Get an invoice by id",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			inv, err := repo.NewInvoices(st).Get(cmd.Context(), id)
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(inv)
			}
			return out.Success(formatInvoice(inv))
		},
	}
}

func newInvoicesListCommand(rootOpts *RootOptions) *cobra.Command {
	var filter repo.Filter

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List invoices, id ascending",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			if filter.UserID != 0 && filter.Email != "" {
				return NewExitError(ExitCommandError, "supply at most one of --user or --email")
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			rows, err := repo.NewInvoices(st).List(cmd.Context(), filter)
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(rows)
			}
			printInvoices(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().Int64VarP(&filter.UserID, "user", "u", 0, "restrict to one user by id")
	cmd.Flags().StringVarP(&filter.Email, "email", "e", "", "restrict to one user by email")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum rows to return (0 = all)")
	cmd.Flags().IntVar(&filter.Offset, "offset", 0, "rows to skip")

	return cmd
}

func newInvoicesCountCommand(rootOpts *RootOptions) *cobra.Command {
	var filter repo.Filter

	cmd := &cobra.Command{
		Use:           "count",
		Short:         "Count invoices",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			n, err := repo.NewInvoices(st).Count(cmd.Context(), filter)
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(map[string]int64{"count": n})
			}
			return out.Success(fmt.Sprintf("%d", n))
		},
	}

	cmd.Flags().Int64VarP(&filter.UserID, "user", "u", 0, "restrict to one user by id")

	return cmd
}

func newInvoicesSumCommand(rootOpts *RootOptions) *cobra.Command {
	var userID int64

	cmd := &cobra.Command{
		Use:           "sum",
		Short:         "Sum of invoice totals for a user",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			sum, err := repo.NewInvoices(st).SumByUser(cmd.Context(), userID)
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(map[string]any{"user_id": userID, "total_cents": sum})
			}
			return out.Success(validate.FormatCents(sum))
		},
	}

	cmd.Flags().Int64VarP(&userID, "user", "u", 0, "id of the user")
	_ = cmd.MarkFlagRequired("user")

	return cmd
}

func newInvoicesUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var total, due string

	cmd := &cobra.Command{
		Use:           "update <id>",
		Short:         "Update an invoice's total and/or due date",
		Long: `Update an invoice's total and/or due date.

The owning user cannot be changed. Passing --due with an empty value
clears the due date.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var upd repo.InvoiceUpdate
			if cmd.Flags().Changed("total") {
				upd.Total = &total
			}
			if cmd.Flags().Changed("due") {
				upd.DateDue = &due
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			inv, err := repo.NewInvoices(st).Update(cmd.Context(), id, upd)
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(inv)
			}
			return out.Success("Updated " + formatInvoice(inv))
		},
	}

	cmd.Flags().StringVarP(&total, "total", "t", "", "new total in dollars")
	cmd.Flags().StringVarP(&due, "due", "d", "", "new due date (empty clears it)")

	return cmd
}

func newInvoicesDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete an invoice",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := repo.NewInvoices(st).Delete(cmd.Context(), id); err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(map[string]any{"id": id, "status": "deleted"})
			}
			return out.Success(fmt.Sprintf("Deleted invoice %d", id))
		},
	}
}
