// Package querysql compiles parsed corpus queries into SQL.
//
// Compilation runs in two passes over the query AST. The first pass turns
// every pair into a self-contained CTE (s1, s2, ...) selecting matching
// spans, scoped by the corpus and document filters. The second pass composes
// those CTEs into the root CTE r: boolean operators become set operators and
// location operators become joins (or NOT EXISTS anti-joins) on the span
// distance functions. The planner then appends a paged results query and a
// count query, both reading only from r.
//
// Every backend-specific fragment is rendered by a dialect.Dialect.
package querysql

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/pythia/internal/dialect"
	"github.com/roach88/pythia/internal/literal"
	"github.com/roach88/pythia/internal/querylang"
)

// ErrInvalidPage is returned for a page number or size below 1.
var ErrInvalidPage = errors.New("invalid page")

// Builder compiles queries for one SQL dialect. It holds no per-query state
// and is safe for concurrent use.
type Builder struct {
	dialect dialect.Dialect
	filters literal.Pipeline
}

// Option configures a Builder.
type Option func(*Builder)

// WithLiteralFilters sets the pipeline applied to literal pair values.
func WithLiteralFilters(p literal.Pipeline) Option {
	return func(b *Builder) {
		b.filters = p
	}
}

// NewBuilder creates a Builder for d.
func NewBuilder(d dialect.Dialect, opts ...Option) *Builder {
	b := &Builder{dialect: d}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dialect returns the dialect the builder renders.
func (b *Builder) Dialect() dialect.Dialect {
	return b.dialect
}

type cte struct {
	name string
	body string
}

// compilation holds the state of a single query compilation.
type compilation struct {
	dialect dialect.Dialect
	filters literal.Pipeline

	corpusJoin string
	docFilter  string
	header     []string // document pair comments
	docPairs   int
	ctes       []cte
	pairNames  map[*querylang.Pair]string
	aliases    int
}

// Plan is a compiled query: the CTE chain ending with the root CTE r.
type Plan struct {
	Header []string
	CTEs   []string // name AS (body)
	Root   string
}

// Prefix renders the WITH clause shared by the results and count queries.
func (p *Plan) Prefix() string {
	var sb strings.Builder
	for _, line := range p.Header {
		sb.WriteString("-- ")
		sb.WriteString(line)
		sb.WriteByte('\n')
	}
	sb.WriteString("WITH ")
	for _, c := range p.CTEs {
		sb.WriteString(c)
		sb.WriteString(",\n")
	}
	sb.WriteString("r AS (\n")
	sb.WriteString(p.Root)
	sb.WriteString("\n)\n")
	return sb.String()
}

// Compile runs both passes over q.
func (b *Builder) Compile(q *querylang.Query) (*Plan, error) {
	if q == nil || q.Text == nil {
		return nil, fmt.Errorf("cannot compile empty query")
	}
	c := &compilation{
		dialect:   b.dialect,
		filters:   b.filters,
		pairNames: make(map[*querylang.Pair]string),
	}

	c.compileCorpora(q.Corpora)
	if err := c.compileDocuments(q.Documents); err != nil {
		return nil, err
	}
	if _, err := c.compileText(q.Text, ""); err != nil {
		return nil, err
	}

	root, err := c.compose(q.Text)
	if err != nil {
		return nil, err
	}

	plan := &Plan{Header: c.header, Root: root}
	for _, t := range c.ctes {
		plan.CTEs = append(plan.CTEs, t.name+" AS (\n"+t.body+"\n)")
	}
	return plan, nil
}

// Build compiles query into a statement returning one page of results and
// a statement counting all results. pageNumber is 1-based.
func (b *Builder) Build(query string, pageNumber, pageSize int, sortFields []string) (string, string, error) {
	q, err := querylang.Parse(query)
	if err != nil {
		return "", "", err
	}
	return b.BuildQuery(q, pageNumber, pageSize, sortFields)
}

// BuildQuery is Build for an already parsed query.
func (b *Builder) BuildQuery(q *querylang.Query, pageNumber, pageSize int, sortFields []string) (string, string, error) {
	if pageNumber < 1 {
		return "", "", fmt.Errorf("%w: page number %d", ErrInvalidPage, pageNumber)
	}
	if pageSize < 1 {
		return "", "", fmt.Errorf("%w: page size %d", ErrInvalidPage, pageSize)
	}

	plan, err := b.Compile(q)
	if err != nil {
		return "", "", err
	}

	c := &compilation{dialect: b.dialect}
	order, err := c.orderBy(sortFields)
	if err != nil {
		return "", "", err
	}

	prefix := plan.Prefix()
	data := prefix +
		"SELECT " + c.columns("r") + ", document.author, document.title, document.sort_key\n" +
		"FROM r\n" +
		"INNER JOIN document ON r.document_id=document.id\n" +
		"ORDER BY " + order + "\n" +
		b.dialect.Paging((pageNumber-1)*pageSize, pageSize)
	count := prefix + "SELECT COUNT(*) FROM r"
	return data, count, nil
}
