// Package search runs compiled queries against a corpus database and pages
// through their results.
package search

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/roach88/pythia/internal/logging"
	"github.com/roach88/pythia/internal/querysql"
	"github.com/roach88/pythia/internal/store"
)

// MaxPageSize is the largest page size a service can be configured with.
const MaxPageSize = 100

var (
	// ErrInvalidRequest is returned for page numbers or sizes out of range.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrDatabase wraps failures of the statements run against the database.
	ErrDatabase = errors.New("database query failed")
)

// Querier is the database access a Service needs. *store.Store satisfies it.
type Querier interface {
	Query(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRow(ctx context.Context, query string, args ...any) *sql.Row
	Tokens(ctx context.Context, documentID int64, from, to int) ([]store.Span, error)
}

// Request is one page of a query.
type Request struct {
	Query      string
	PageNumber int
	PageSize   int
	SortFields []string
}

// Hit is a matched span with its document's display metadata.
type Hit struct {
	ID         int64  `json:"id"`
	DocumentID int64  `json:"document_id"`
	Type       string `json:"type"`
	P1         int    `json:"p1"`
	P2         int    `json:"p2"`
	Index      int    `json:"index"`
	Length     int    `json:"length"`
	Value      string `json:"value"`
	Author     string `json:"author"`
	Title      string `json:"title"`
	SortKey    string `json:"sort_key"`
}

// Page is one page of results and the total result count.
type Page struct {
	RequestID  string `json:"request_id"`
	Total      int    `json:"total"`
	PageNumber int    `json:"page_number"`
	PageSize   int    `json:"page_size"`
	Hits       []Hit  `json:"hits"`
}

// Service executes queries.
type Service struct {
	builder     *querysql.Builder
	db          Querier
	logger      *slog.Logger
	maxPageSize int
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger. A nil logger discards output.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logging.Default(logger)
	}
}

// WithMaxPageSize caps the page size. Values outside 1..MaxPageSize are
// ignored.
func WithMaxPageSize(n int) Option {
	return func(s *Service) {
		if n >= 1 && n <= MaxPageSize {
			s.maxPageSize = n
		}
	}
}

// NewService creates a service compiling with builder and querying db.
func NewService(builder *querysql.Builder, db Querier, opts ...Option) *Service {
	s := &Service{
		builder:     builder,
		db:          db,
		logger:      logging.Discard(),
		maxPageSize: MaxPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Search compiles the request's query and runs the page and count
// statements concurrently.
func (s *Service) Search(ctx context.Context, req Request) (*Page, error) {
	if req.PageNumber < 1 {
		return nil, fmt.Errorf("%w: page number %d < 1", ErrInvalidRequest, req.PageNumber)
	}
	if req.PageSize < 1 || req.PageSize > s.maxPageSize {
		return nil, fmt.Errorf("%w: page size %d not in 1..%d", ErrInvalidRequest, req.PageSize, s.maxPageSize)
	}

	requestID := uuid.NewString()
	logger := s.logger.With("request_id", requestID)

	data, count, err := s.builder.Build(req.Query, req.PageNumber, req.PageSize, req.SortFields)
	if err != nil {
		logger.Debug("query rejected", "query", req.Query, "error", err)
		return nil, err
	}
	logger.Debug("query compiled", "query", req.Query, "dialect", s.builder.Dialect().Name())

	page := &Page{RequestID: requestID, PageNumber: req.PageNumber, PageSize: req.PageSize}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := s.db.QueryRow(gctx, count).Scan(&page.Total); err != nil {
			return fmt.Errorf("%w: count results: %w", ErrDatabase, err)
		}
		return nil
	})
	g.Go(func() error {
		hits, err := s.hits(gctx, data)
		if err != nil {
			return err
		}
		page.Hits = hits
		return nil
	})
	if err := g.Wait(); err != nil {
		logger.Warn("search failed", "error", err)
		return nil, err
	}

	logger.Info("search complete", "total", page.Total, "page", page.PageNumber, "hits", len(page.Hits))
	return page, nil
}

func (s *Service) hits(ctx context.Context, data string) ([]Hit, error) {
	rows, err := s.db.Query(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("%w: query results: %w", ErrDatabase, err)
	}
	defer rows.Close()

	hits := []Hit{}
	for rows.Next() {
		var h Hit
		var value, author, title, sortKey sql.NullString
		if err := rows.Scan(&h.ID, &h.DocumentID, &h.Type, &h.P1, &h.P2, &h.Index, &h.Length,
			&value, &author, &title, &sortKey); err != nil {
			return nil, fmt.Errorf("%w: scan result: %w", ErrDatabase, err)
		}
		h.Value = value.String
		h.Author = author.String
		h.Title = title.String
		h.SortKey = sortKey.String
		hits = append(hits, h)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate results: %w", ErrDatabase, err)
	}
	return hits, nil
}
