package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/pythia/internal/config"
	"github.com/roach88/pythia/internal/search"
	"github.com/roach88/pythia/internal/store"
)

// SearchResult is a page of hits, with keyword-in-context lines when
// requested.
type SearchResult struct {
	*search.Page
	Context []search.KWIC `json:"context,omitempty"`
}

func (r SearchResult) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d result(s), page %d (size %d)\n", r.Total, r.PageNumber, r.PageSize)
	if len(r.Context) > 0 {
		for _, k := range r.Context {
			fmt.Fprintf(&sb, "%d:%d  %s [%s] %s\n", k.Hit.DocumentID, k.Hit.P1,
				strings.TrimSpace(strings.Join(k.Left, " ")), k.Hit.Value,
				strings.TrimSpace(strings.Join(k.Right, " ")))
		}
		return strings.TrimRight(sb.String(), "\n")
	}
	for _, h := range r.Hits {
		fmt.Fprintf(&sb, "%d:%d-%d  %s  %s, %s\n", h.DocumentID, h.P1, h.P2, h.Value, h.Author, h.Title)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	pageOpts := &PageOptions{}
	var kwic int

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run a query against the corpus database",
		Long: `Compile a Pythia query and run it against the configured database,
printing one page of hits and the total count. With --kwic N each hit is
shown with N tokens of context on either side.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("kwic") {
				kwic = rootOpts.config.KWICSize
			}
			return runSearch(cmd.Context(), rootOpts, pageOpts, kwic, args[0], cmd)
		},
	}
	pageOpts.bind(cmd)
	cmd.Flags().IntVar(&kwic, "kwic", 0, "tokens of context per side (0 disables)")

	return cmd
}

func runSearch(ctx context.Context, opts *RootOptions, pageOpts *PageOptions, kwic int, query string, cmd *cobra.Command) error {
	if ctx == nil {
		ctx = context.Background()
	}
	formatter := opts.formatter(cmd)
	cfg := opts.config

	builder, err := newBuilder(cfg)
	if err != nil {
		formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitCommandError, "create builder", err)
	}

	db, err := openStore(ctx, cfg)
	if err != nil {
		formatter.Error(ErrCodeDatabase, err.Error(), nil)
		return WrapExitError(ExitCommandError, "open database", err)
	}
	defer db.Close()
	formatter.VerboseLog("Opened %s database %s", builder.Dialect().Name(), cfg.Database)

	svc := search.NewService(builder, db,
		search.WithLogger(opts.logger),
		search.WithMaxPageSize(cfg.MaxPageSize))

	page, err := svc.Search(ctx, search.Request{
		Query:      query,
		PageNumber: pageOpts.Page,
		PageSize:   pageOpts.size(cfg),
		SortFields: pageOpts.Sort,
	})
	if err != nil {
		return formatter.QueryFailure(err)
	}

	result := SearchResult{Page: page}
	if kwic > 0 {
		result.Context, err = svc.Context(ctx, page.Hits, kwic)
		if err != nil {
			return formatter.QueryFailure(err)
		}
	}

	return formatter.SuccessWithID(result, page.RequestID)
}

// openStore opens the database named by cfg with the driver matching its
// dialect.
func openStore(ctx context.Context, cfg *config.Config) (*store.Store, error) {
	switch cfg.Dialect {
	case "pgsql", "postgres":
		return store.OpenPostgres(ctx, cfg.Database)
	default:
		if _, err := os.Stat(cfg.Database); err != nil {
			return nil, fmt.Errorf("database not found: %w", err)
		}
		return store.Open(cfg.Database)
	}
}
