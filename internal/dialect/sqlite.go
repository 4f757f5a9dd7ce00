package dialect

import (
	"fmt"
	"time"

	"github.com/roach88/pythia/internal/spandist"
)

var sqliteReserved = map[string]bool{
	"abort": true, "all": true, "and": true, "as": true, "between": true,
	"by": true, "case": true, "check": true, "collate": true, "default": true,
	"delete": true, "distinct": true, "drop": true, "else": true, "escape": true,
	"except": true, "exists": true, "from": true, "glob": true, "group": true,
	"having": true, "in": true, "index": true, "insert": true,
	"intersect": true, "into": true, "is": true, "join": true, "like": true,
	"limit": true, "match": true, "not": true, "null": true, "on": true,
	"or": true, "order": true, "regexp": true, "select": true, "set": true,
	"table": true, "then": true, "union": true, "update": true, "values": true,
	"when": true, "where": true,
}

// SQLite renders SQL for SQLite. REGEXP, the distance functions,
// pyt_is_numeric and pyt_similarity are registered on every connection by
// the store driver.
type SQLite struct {
	FuzzyThreshold float64
}

// NewSQLite returns a SQLite dialect with the default fuzzy threshold.
func NewSQLite() SQLite {
	return SQLite{FuzzyThreshold: DefaultFuzzyThreshold}
}

func (SQLite) Name() string { return "sqlite" }

func (SQLite) EncodeLiteral(text string, like bool) string {
	return encodeLiteral(text, like)
}

func (SQLite) DecodeLiteral(literal string, like bool) (string, error) {
	return decodeLiteral(literal, like)
}

func (SQLite) EncodeDate(t time.Time, withTime bool) string {
	if withTime {
		return "'" + t.UTC().Format("2006-01-02 15:04:05") + "'"
	}
	return "'" + t.Format("2006-01-02") + "'"
}

func (SQLite) EscapeKeyword(name string) string {
	return escapeKeyword(sqliteReserved, name)
}

func (SQLite) Like(expr, pattern string) string {
	return like(expr, pattern)
}

func (SQLite) Paging(offset, limit int) string {
	return paging(offset, limit)
}

func (SQLite) TextAsNumber(expr string) string {
	return fmt.Sprintf("(CASE WHEN pyt_is_numeric(%[1]s) THEN CAST(%[1]s AS REAL) ELSE NULL END)", expr)
}

func (SQLite) RegexMatch(expr, pattern string) (string, error) {
	return expr + " REGEXP " + encodeLiteral(pattern, false), nil
}

func (d SQLite) FuzzyMatch(expr, value string) (string, error) {
	text, threshold := SplitFuzzy(value, d.threshold())
	return fmt.Sprintf("pyt_similarity(%s, %s) >= %s", expr, encodeLiteral(text, false), formatFloat(threshold)), nil
}

func (SQLite) FunctionName(op spandist.Operator) (string, error) {
	return functionName(op)
}

func (d SQLite) threshold() float64 {
	if d.FuzzyThreshold <= 0 {
		return DefaultFuzzyThreshold
	}
	return d.FuzzyThreshold
}
