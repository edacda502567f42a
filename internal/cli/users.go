package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/mvasquez/invctl/internal/repo"
	"github.com/mvasquez/invctl/internal/validate"
)

// NewUsersCommand creates the users command group.
func NewUsersCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "User commands",
	}

	cmd.AddCommand(newUsersCreateCommand(rootOpts))
	cmd.AddCommand(newUsersGetCommand(rootOpts))
	cmd.AddCommand(newUsersListCommand(rootOpts))
	cmd.AddCommand(newUsersUpdateCommand(rootOpts))
	cmd.AddCommand(newUsersDeleteCommand(rootOpts))

	return cmd
}

func newUsersCreateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:           "create",
		Short:         "Create a new user",
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

			u, err := repo.NewUsers(st).Create(cmd.Context(), name, email)
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(u)
			}
			return out.Success(fmt.Sprintf("Created user %s <%s> (id=%d)", u.Name, u.Email, u.ID))
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "name of the user")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email of the user")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func newUsersGetCommand(rootOpts *RootOptions) *cobra.Command {
	var id int64
	var email string

	cmd := &cobra.Command{
		Use:           "get",
		Short:         "Get a user by id or email",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			if (id == 0) == (email == "") {
				return NewExitError(ExitCommandError, "supply exactly one of --id or --email")
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			users := repo.NewUsers(st)
			var u *repo.User
			if id != 0 {
				u, err = users.GetByID(cmd.Context(), id)
			} else {
				u, err = users.GetByEmail(cmd.Context(), email)
			}
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(u)
			}
			return out.Success(formatUser(u))
		},
	}

	cmd.Flags().Int64VarP(&id, "id", "i", 0, "id of the user")
	cmd.Flags().StringVarP(&email, "email", "e", "", "email of the user")

	return cmd
}

func newUsersListCommand(rootOpts *RootOptions) *cobra.Command {
	var minTotal string

	cmd := &cobra.Command{
		Use:           "list",
		Short:         "List all users, id ascending",
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

			users := repo.NewUsers(st)

			if cmd.Flags().Changed("min-total") {
				minCents, err := validate.Cents(minTotal)
				if err != nil {
					return out.Report(repo.NewInvalidInput(err.Error()))
				}
				rows, err := users.ListWithTotals(cmd.Context(), minCents)
				if err != nil {
					return out.Report(err)
				}
				if out.JSON() {
					return out.Success(rows)
				}
				printUserTotals(cmd.OutOrStdout(), rows)
				return nil
			}

			rows, err := users.List(cmd.Context())
			if err != nil {
				return out.Report(err)
			}
			if out.JSON() {
				return out.Success(rows)
			}
			printUsers(cmd.OutOrStdout(), rows)
			return nil
		},
	}

	cmd.Flags().StringVar(&minTotal, "min-total", "", "only users with at least this invoiced total (dollars)")

	return cmd
}

func newUsersUpdateCommand(rootOpts *RootOptions) *cobra.Command {
	var name, email string

	cmd := &cobra.Command{
		Use:           "update <id>",
		Short:         "Update a user's name and/or email",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			var upd repo.UserUpdate
			if cmd.Flags().Changed("name") {
				upd.Name = &name
			}
			if cmd.Flags().Changed("email") {
				upd.Email = &email
			}

			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer st.Close()

			u, err := repo.NewUsers(st).Update(cmd.Context(), id, upd)
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(u)
			}
			return out.Success(fmt.Sprintf("Updated user %d: %s <%s>", u.ID, u.Name, u.Email))
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "new name")
	cmd.Flags().StringVarP(&email, "email", "e", "", "new email")

	return cmd
}

func newUsersDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "delete <id>",
		Short:         "Delete a user and all their invoices",
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

			if err := repo.NewUsers(st).Delete(cmd.Context(), id); err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(map[string]any{"id": id, "status": "deleted"})
			}
			return out.Success(fmt.Sprintf("Deleted user %d and their invoices", id))
		},
	}
}

// parseID parses a positional id argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, NewExitError(ExitCommandError, fmt.Sprintf("invalid id %q: expected a positive integer", arg))
	}
	return id, nil
}
