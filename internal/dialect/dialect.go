// Package dialect isolates every backend-specific piece of SQL the query
// compiler emits: literal and date encoding, keyword escaping, paging,
// numeric casts, regex and fuzzy matching, and the names of the span
// distance functions.
//
// Implementations are stateless values and safe for concurrent use.
package dialect

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/roach88/pythia/internal/spandist"
)

// ErrUnsupported is returned when a dialect cannot express a construct.
var ErrUnsupported = errors.New("unsupported by dialect")

// DefaultFuzzyThreshold is used when a fuzzy value carries no threshold.
const DefaultFuzzyThreshold = 0.9

// Dialect renders backend-specific SQL fragments.
type Dialect interface {
	// Name returns the registry name of the dialect.
	Name() string

	// EncodeLiteral renders text as a quoted SQL string literal. When like is
	// true the LIKE metacharacters in text are escaped so they match
	// literally.
	EncodeLiteral(text string, like bool) string

	// DecodeLiteral reverses EncodeLiteral.
	DecodeLiteral(literal string, like bool) (string, error)

	// EncodeDate renders t as a date or timestamp literal.
	EncodeDate(t time.Time, withTime bool) string

	// EscapeKeyword quotes an identifier when it collides with a reserved word.
	EscapeKeyword(name string) string

	// Like renders expr LIKE pattern with the escape character EncodeLiteral uses.
	Like(expr, pattern string) string

	// Paging renders the clause selecting limit rows after skipping offset.
	Paging(offset, limit int) string

	// TextAsNumber casts a text expression to a number, or NULL when the
	// text is not numeric.
	TextAsNumber(expr string) string

	// RegexMatch renders a test of expr against a regular expression.
	RegexMatch(expr, pattern string) (string, error)

	// FuzzyMatch renders a similarity test of expr against value. The value
	// may end with :threshold.
	FuzzyMatch(expr, value string) (string, error)

	// FunctionName returns the SQL function implementing a location operator.
	FunctionName(op spandist.Operator) (string, error)
}

type options struct {
	fuzzyThreshold float64
}

// Option configures a dialect returned by New.
type Option func(*options)

// WithFuzzyThreshold sets the threshold used for fuzzy values without one.
func WithFuzzyThreshold(threshold float64) Option {
	return func(o *options) {
		if threshold > 0 && threshold <= 1 {
			o.fuzzyThreshold = threshold
		}
	}
}

var registry = map[string]func(options) Dialect{
	"pgsql":    func(o options) Dialect { return Postgres{FuzzyThreshold: o.fuzzyThreshold} },
	"postgres": func(o options) Dialect { return Postgres{FuzzyThreshold: o.fuzzyThreshold} },
	"sqlite":   func(o options) Dialect { return SQLite{FuzzyThreshold: o.fuzzyThreshold} },
	"sqlite3":  func(o options) Dialect { return SQLite{FuzzyThreshold: o.fuzzyThreshold} },
}

// New returns the dialect registered under name.
func New(name string, opts ...Option) (Dialect, error) {
	factory, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown dialect %q (known: %v)", name, Names())
	}
	o := options{fuzzyThreshold: DefaultFuzzyThreshold}
	for _, opt := range opts {
		opt(&o)
	}
	return factory(o), nil
}

// Names lists the registered dialect names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
