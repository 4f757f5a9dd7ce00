package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/pythia/internal/querylang"
)

// CheckResult reports a query that parsed and compiled.
type CheckResult struct {
	Valid bool   `json:"valid"`
	Query string `json:"query"`
	CTEs  int    `json:"ctes"`
}

func (r CheckResult) String() string {
	return fmt.Sprintf("OK: %d pair(s)", r.CTEs)
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <query>",
		Short: "Check a query without producing SQL",
		Long: `Parse and compile a Pythia query, reporting the first syntax, validation
or dialect error with its line and column.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runCheck(opts *RootOptions, query string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	builder, err := newBuilder(opts.config)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "create builder", err)
	}

	q, err := querylang.Parse(query)
	if err != nil {
		return formatter.QueryFailure(err)
	}
	plan, err := builder.Compile(q)
	if err != nil {
		return formatter.QueryFailure(err)
	}
	formatter.VerboseLog("Compiled %d pair(s) for dialect %s", len(plan.CTEs), builder.Dialect().Name())

	return formatter.Success(CheckResult{Valid: true, Query: query, CTEs: len(plan.CTEs)})
}
