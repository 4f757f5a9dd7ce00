package store

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"unicode"

	"github.com/mattn/go-sqlite3"

	"github.com/roach88/pythia/internal/dialect"
	"github.com/roach88/pythia/internal/spandist"
)

type sqlFunc struct {
	name string
	impl any
}

// distanceFunc adapts spandist.Eval to the argument order of the SQL
// distance functions:
//
//	LALIGN              (a1, b1, n, m)
//	RALIGN              (a2, b2, n, m)
//	INSIDE              (a1, a2, b1, b2, ns, ms, ne, me)
//	NEAR, BEFORE, ...   (a1, a2, b1, b2, n, m)
func distanceFunc(op spandist.Operator) func(args ...int64) (bool, error) {
	want := 6
	switch op {
	case spandist.OpLeftAlign, spandist.OpRightAlign:
		want = 4
	case spandist.OpInside:
		want = 8
	}

	return func(args ...int64) (bool, error) {
		if len(args) != want {
			return false, fmt.Errorf("%s: want %d arguments, got %d", op, want, len(args))
		}
		v := make([]int, len(args))
		for i, arg := range args {
			v[i] = int(arg)
		}

		var a, b spandist.Range
		bounds := spandist.DefaultBounds()
		switch op {
		case spandist.OpLeftAlign, spandist.OpRightAlign:
			a = spandist.Range{P1: v[0], P2: v[0]}
			b = spandist.Range{P1: v[1], P2: v[1]}
			bounds.N, bounds.M = v[2], v[3]
		case spandist.OpInside:
			a = spandist.Range{P1: v[0], P2: v[1]}
			b = spandist.Range{P1: v[2], P2: v[3]}
			bounds.NS, bounds.MS, bounds.NE, bounds.ME = v[4], v[5], v[6], v[7]
		default:
			a = spandist.Range{P1: v[0], P2: v[1]}
			b = spandist.Range{P1: v[2], P2: v[3]}
			bounds.N, bounds.M = v[4], v[5]
		}
		return spandist.Eval(op, a, b, bounds)
	}
}

// registerFunctions installs the query functions on a new connection.
func registerFunctions(conn *sqlite3.SQLiteConn) error {
	funcs := []sqlFunc{
		{"regexp", regexpMatch},
		{"pyt_is_numeric", IsNumeric},
		{"pyt_similarity", similarity},
	}
	for op, name := range dialect.FunctionNames() {
		funcs = append(funcs, sqlFunc{name, distanceFunc(op)})
	}

	for _, f := range funcs {
		if err := conn.RegisterFunc(f.name, f.impl, true); err != nil {
			return fmt.Errorf("register %s: %w", f.name, err)
		}
	}
	return nil
}

var numericText = regexp.MustCompile(`^\s*[-+]?(\d+\.?\d*|\.\d+)([eE][-+]?\d+)?\s*$`)

var regexpCache sync.Map

// regexpMatch implements `value REGEXP pattern`, which SQLite rewrites to
// regexp(pattern, value). NULL values never match.
func regexpMatch(pattern string, value any) (bool, error) {
	s, ok := sqlText(value)
	if !ok {
		return false, nil
	}

	var re *regexp.Regexp
	if cached, ok := regexpCache.Load(pattern); ok {
		re = cached.(*regexp.Regexp)
	} else {
		compiled, err := regexp.Compile(pattern)
		if err != nil {
			return false, fmt.Errorf("invalid regular expression %q: %w", pattern, err)
		}
		regexpCache.Store(pattern, compiled)
		re = compiled
	}
	return re.MatchString(s), nil
}

// IsNumeric reports whether value is a number or text holding a decimal
// number.
func IsNumeric(value any) bool {
	switch v := value.(type) {
	case int64, float64:
		return true
	case nil:
		return false
	default:
		s, ok := sqlText(v)
		if !ok {
			return false
		}
		return numericText.MatchString(s)
	}
}

func sqlText(value any) (string, bool) {
	switch v := value.(type) {
	case string:
		return v, true
	case []byte:
		return string(v), true
	case int64:
		return strconv.FormatInt(v, 10), true
	case float64:
		return strconv.FormatFloat(v, 'g', -1, 64), true
	default:
		return "", false
	}
}

// similarity is Similarity for SQL values. NULL is similar to nothing.
func similarity(a, b any) float64 {
	sa, ok := sqlText(a)
	if !ok {
		return 0
	}
	sb, ok := sqlText(b)
	if !ok {
		return 0
	}
	return Similarity(sa, sb)
}

// Similarity returns the trigram similarity of a and b the way pg_trgm
// computes it: the shared trigram count over the union count, where
// trigrams come from each lowercased alphanumeric word padded with two
// leading spaces and one trailing space.
func Similarity(a, b string) float64 {
	ta := trigrams(a)
	tb := trigrams(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	shared := 0
	for t := range ta {
		if tb[t] {
			shared++
		}
	}
	return float64(shared) / float64(len(ta)+len(tb)-shared)
}

func trigrams(s string) map[string]bool {
	set := make(map[string]bool)
	words := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, w := range words {
		padded := []rune("  " + w + " ")
		for i := 0; i+3 <= len(padded); i++ {
			set[string(padded[i:i+3])] = true
		}
	}
	return set
}
