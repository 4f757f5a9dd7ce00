package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/pythia/internal/dialect"
	"github.com/roach88/pythia/internal/store"
)

// NewSchemaCommand creates the schema command.
func NewSchemaCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the database script for the dialect",
		Long: `Print the script creating the corpus tables for the dialect. For pgsql
the script also installs the pg_trgm extension and the functions compiled
queries call. Every statement is idempotent.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter := rootOpts.formatter(cmd)
			d, err := dialect.New(rootOpts.config.Dialect)
			if err != nil {
				formatter.Error(ErrCodeGeneric, err.Error(), nil)
				return WrapExitError(ExitCommandError, "unknown dialect", err)
			}
			if d.Name() == "sqlite" {
				return formatter.Success(store.Schema())
			}
			return formatter.Success(store.PostgresSchema())
		},
	}

	return cmd
}
