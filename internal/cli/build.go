package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pythia/internal/config"
	"github.com/roach88/pythia/internal/dialect"
	"github.com/roach88/pythia/internal/literal"
	"github.com/roach88/pythia/internal/querysql"
)

// PageOptions are the paging and sorting flags shared by build and search.
type PageOptions struct {
	Page int
	Size int
	Sort []string
}

func (p *PageOptions) bind(cmd *cobra.Command) {
	cmd.Flags().IntVar(&p.Page, "page", 1, "1-based page number")
	cmd.Flags().IntVar(&p.Size, "size", 0, "page size (default from config)")
	cmd.Flags().StringSliceVar(&p.Sort, "sort", nil, "sort fields, prefix with - for descending")
}

func (p *PageOptions) size(cfg *config.Config) int {
	if p.Size == 0 {
		return cfg.PageSize
	}
	return p.Size
}

// BuildResult holds the statements produced for one page of a query.
type BuildResult struct {
	Dialect string `json:"dialect"`
	Data    string `json:"data"`
	Count   string `json:"count"`
}

func (r BuildResult) String() string {
	return "-- data\n" + r.Data + "\n\n-- count\n" + r.Count
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	pageOpts := &PageOptions{}

	cmd := &cobra.Command{
		Use:   "build <query>",
		Short: "Compile a query to SQL",
		Long: `Compile a Pythia query into the SQL statement returning one page of
results and the statement counting all results.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(rootOpts, pageOpts, args[0], cmd)
		},
	}
	pageOpts.bind(cmd)

	return cmd
}

func runBuild(opts *RootOptions, pageOpts *PageOptions, query string, cmd *cobra.Command) error {
	formatter := opts.formatter(cmd)

	builder, err := newBuilder(opts.config)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "create builder", err)
	}

	data, count, err := builder.Build(query, pageOpts.Page, pageOpts.size(opts.config), pageOpts.Sort)
	if err != nil {
		return formatter.QueryFailure(err)
	}
	formatter.VerboseLog("Compiled query for dialect %s", builder.Dialect().Name())

	return formatter.Success(BuildResult{Dialect: builder.Dialect().Name(), Data: data, Count: count})
}

// newBuilder creates the SQL builder configured by cfg.
func newBuilder(cfg *config.Config) (*querysql.Builder, error) {
	d, err := dialect.New(cfg.Dialect, dialect.WithFuzzyThreshold(cfg.FuzzyThreshold))
	if err != nil {
		return nil, err
	}
	filters, err := literal.New(cfg.LiteralFilters...)
	if err != nil {
		return nil, fmt.Errorf("literal filters %s: %w", strings.Join(cfg.LiteralFilters, ","), err)
	}
	return querysql.NewBuilder(d, querysql.WithLiteralFilters(filters)), nil
}
