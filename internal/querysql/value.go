package querysql

import (
	"errors"
	"regexp"
	"strings"

	"github.com/roach88/pythia/internal/dialect"
	"github.com/roach88/pythia/internal/querylang"
)

var numberLiteral = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// valueSQL compiles the comparison of expr against the pair's operator and
// value. Numeric expressions are compared raw; text expressions are compared
// case-insensitively or cast to a number for numeric operators.
func (c *compilation) valueSQL(pair *querylang.Pair, expr string, numeric bool) (string, error) {
	if !pair.HasValue {
		return "", validationError(pair.Pos, querylang.ErrMissingValue, "missing value for %s", pair.Name)
	}

	switch op := pair.Op; op {
	case querylang.OpEq, querylang.OpNeq:
		if numeric {
			num, err := numberValue(pair)
			if err != nil {
				return "", err
			}
			return expr + eqSymbol(op) + num, nil
		}
		lit := c.encode(c.filter(pair.Value), false)
		return "LOWER(" + expr + ")" + eqSymbol(op) + "LOWER(" + lit + ")", nil

	case querylang.OpContains, querylang.OpStartsWith, querylang.OpEndsWith:
		if numeric {
			return "", invalidOperator(pair)
		}
		lit := c.encode(c.filter(pair.Value), true)
		pattern := "LOWER(" + lit + ")"
		if op != querylang.OpStartsWith {
			pattern = "'%' || " + pattern
		}
		if op != querylang.OpEndsWith {
			pattern += " || '%'"
		}
		return c.dialect.Like("LOWER("+expr+")", "("+pattern+")"), nil

	case querylang.OpWildcards:
		if numeric {
			return "", invalidOperator(pair)
		}
		if !strings.ContainsAny(pair.Value, "*?") {
			lit := c.encode(c.filter(pair.Value), false)
			return "LOWER(" + expr + ")=LOWER(" + lit + ")", nil
		}
		return c.dialect.Like("LOWER("+expr+")", "LOWER("+c.wildcardPattern(pair.Value)+")"), nil

	case querylang.OpRegexp:
		if numeric {
			return "", invalidOperator(pair)
		}
		sql, err := c.dialect.RegexMatch(expr, pair.Value)
		return sql, dialectError(pair, err)

	case querylang.OpSimilar:
		if numeric {
			return "", invalidOperator(pair)
		}
		sql, err := c.dialect.FuzzyMatch(expr, pair.Value)
		return sql, dialectError(pair, err)

	case querylang.OpNumEq, querylang.OpNumNeq, querylang.OpLt, querylang.OpLte, querylang.OpGt, querylang.OpGte:
		num, err := numberValue(pair)
		if err != nil {
			return "", err
		}
		if numeric {
			return expr + op.SQL() + num, nil
		}
		return c.dialect.TextAsNumber(expr) + " " + op.SQL() + " " + num, nil

	default:
		return "", invalidOperator(pair)
	}
}

func eqSymbol(op querylang.Operator) string {
	if op == querylang.OpNeq {
		return "<>"
	}
	return "="
}

func (c *compilation) filter(value string) string {
	return c.filters.Apply(value)
}

func (c *compilation) encode(text string, like bool) string {
	return c.dialect.EncodeLiteral(text, like)
}

// wildcardPattern maps * and ? to LIKE wildcards, filtering and escaping
// the literal runs between them.
func (c *compilation) wildcardPattern(value string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	flush := func(run string) {
		if run == "" {
			return
		}
		lit := c.encode(c.filter(run), true)
		sb.WriteString(lit[1 : len(lit)-1])
	}

	start := 0
	for i, r := range value {
		if r != '*' && r != '?' {
			continue
		}
		flush(value[start:i])
		if r == '*' {
			sb.WriteByte('%')
		} else {
			sb.WriteByte('_')
		}
		start = i + 1
	}
	flush(value[start:])
	sb.WriteByte('\'')
	return sb.String()
}

func numberValue(pair *querylang.Pair) (string, error) {
	value := strings.TrimSpace(pair.Value)
	if !numberLiteral.MatchString(value) {
		return "", validationError(valuePos(pair), querylang.ErrInvalidNumber, "%s: %q is not a number", pair.Name, pair.Value)
	}
	return value, nil
}

func valuePos(pair *querylang.Pair) querylang.Pos {
	if pair.ValuePos.Length > 0 {
		return pair.ValuePos
	}
	return pair.Pos
}

func invalidOperator(pair *querylang.Pair) error {
	return validationError(pair.Pos, querylang.ErrInvalidOperator, "operator %s is not valid for %s", pair.Op.Symbol(), pair.Name)
}

func dialectError(pair *querylang.Pair, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, dialect.ErrUnsupported) {
		return &querylang.Error{
			Code:    querylang.CodeDialect,
			Message: err.Error(),
			Pos:     pair.Pos,
			Err:     err,
		}
	}
	return err
}

func validationError(pos querylang.Pos, err error, msgFmt string, args ...any) error {
	return querylang.NewError(querylang.CodeValidation, pos, err, msgFmt, args...)
}
