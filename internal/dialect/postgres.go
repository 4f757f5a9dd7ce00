package dialect

import (
	"fmt"
	"time"

	"github.com/roach88/pythia/internal/spandist"
)

var postgresReserved = map[string]bool{
	"all": true, "analyse": true, "analyze": true, "and": true, "any": true,
	"array": true, "as": true, "asc": true, "both": true, "case": true,
	"cast": true, "check": true, "collate": true, "column": true,
	"constraint": true, "create": true, "default": true, "desc": true,
	"distinct": true, "do": true, "else": true, "end": true, "except": true,
	"false": true, "for": true, "foreign": true, "from": true, "grant": true,
	"group": true, "having": true, "in": true, "intersect": true, "into": true,
	"limit": true, "not": true, "null": true, "offset": true, "on": true,
	"or": true, "order": true, "primary": true, "references": true,
	"select": true, "table": true, "then": true, "to": true, "true": true,
	"union": true, "unique": true, "user": true, "using": true, "when": true,
	"where": true, "with": true,
}

// Postgres renders SQL for PostgreSQL. Fuzzy matching relies on the pg_trgm
// extension; the distance functions are installed by store.PostgresSchema.
type Postgres struct {
	FuzzyThreshold float64
}

// NewPostgres returns a PostgreSQL dialect with the default fuzzy threshold.
func NewPostgres() Postgres {
	return Postgres{FuzzyThreshold: DefaultFuzzyThreshold}
}

func (Postgres) Name() string { return "pgsql" }

func (Postgres) EncodeLiteral(text string, like bool) string {
	return encodeLiteral(text, like)
}

func (Postgres) DecodeLiteral(literal string, like bool) (string, error) {
	return decodeLiteral(literal, like)
}

func (Postgres) EncodeDate(t time.Time, withTime bool) string {
	if withTime {
		return "'" + t.UTC().Format("2006-01-02T15:04:05.000Z") + "'"
	}
	return "'" + t.Format("20060102") + "'"
}

func (Postgres) EscapeKeyword(name string) string {
	return escapeKeyword(postgresReserved, name)
}

func (Postgres) Like(expr, pattern string) string {
	return like(expr, pattern)
}

func (Postgres) Paging(offset, limit int) string {
	return paging(offset, limit)
}

func (Postgres) TextAsNumber(expr string) string {
	return fmt.Sprintf("(SELECT (CASE pyt_is_numeric(%[1]s::varchar) WHEN true THEN %[1]s::double precision ELSE NULL END))", expr)
}

func (Postgres) RegexMatch(expr, pattern string) (string, error) {
	return expr + " ~ " + encodeLiteral(pattern, false), nil
}

func (d Postgres) FuzzyMatch(expr, value string) (string, error) {
	text, threshold := SplitFuzzy(value, d.threshold())
	return fmt.Sprintf("similarity(%s, %s) >= %s", expr, encodeLiteral(text, false), formatFloat(threshold)), nil
}

func (Postgres) FunctionName(op spandist.Operator) (string, error) {
	return functionName(op)
}

func (d Postgres) threshold() float64 {
	if d.FuzzyThreshold <= 0 {
		return DefaultFuzzyThreshold
	}
	return d.FuzzyThreshold
}
