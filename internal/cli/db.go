package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mvasquez/invctl/internal/config"
	"github.com/mvasquez/invctl/internal/store"
)

// NewDBCommand creates the db command group: schema lifecycle operations.
func NewDBCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Database lifecycle commands",
	}

	cmd.AddCommand(newDBInitCommand(rootOpts))
	cmd.AddCommand(newDBDropCommand(rootOpts))
	cmd.AddCommand(newDBDeleteCommand(rootOpts))

	return cmd
}

func newDBInitCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "init",
		Short:         "Initialize a new database with all tables and schema",
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

			err = st.Init(cmd.Context())
			if errors.Is(err, store.ErrAlreadyInitialized) {
				// Reported, not failed: nothing was touched.
				if out.JSON() {
					return out.Success(map[string]string{
						"path":   st.Path(),
						"status": "already_initialized",
					})
				}
				return out.Success(fmt.Sprintf("Database %s already initialized", st.Path()))
			}
			if err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(map[string]string{
					"path":   st.Path(),
					"status": "initialized",
				})
			}
			return out.Success("Initialized database " + st.Path())
		},
	}
}

func newDBDropCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "drop",
		Short:         "Drop all tables, views and triggers (keeps the file)",
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

			if err := st.Drop(cmd.Context()); err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(map[string]string{
					"path":   st.Path(),
					"status": "dropped",
				})
			}
			return out.Success("Dropped all tables from " + st.Path())
		},
	}
}

func newDBDeleteCommand(rootOpts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:           "delete",
		Short:         "Permanently delete the database file from disk",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := NewFormatter(cmd, rootOpts)

			path, err := config.DatabasePath(rootOpts.Database, rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to resolve database path", err)
			}

			// Opening would create the file, so check before touching it.
			if _, err := os.Stat(path); os.IsNotExist(err) {
				return out.Report(fmt.Errorf("%w: no database found at %s", store.ErrUnavailable, path))
			}

			if !yes && !confirm(cmd, fmt.Sprintf("Are you sure you want to permanently delete '%s'?", path)) {
				return out.Success("Deletion cancelled")
			}

			st, err := store.Open(path)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			if err := st.Destroy(); err != nil {
				return out.Report(err)
			}

			if out.JSON() {
				return out.Success(map[string]string{
					"path":   path,
					"status": "deleted",
				})
			}
			return out.Success(fmt.Sprintf("Database file '%s' deleted", path))
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "skip the confirmation prompt")

	return cmd
}

// confirm asks a y/N question on the command's input stream.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N]: ", prompt)
	reader := bufio.NewReader(cmd.InOrStdin())
	line, err := reader.ReadString('\n')
	if err != nil {
		return false
	}
	answer := strings.ToLower(strings.TrimSpace(line))
	return answer == "y" || answer == "yes"
}
