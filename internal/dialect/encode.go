package dialect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/pythia/internal/spandist"
)

// likeEscape is the escape character used in LIKE patterns.
const likeEscape = '\\'

// encodeLiteral quotes text using standard SQL string syntax, where the only
// special character is the quote itself.
func encodeLiteral(text string, like bool) string {
	var sb strings.Builder
	sb.Grow(len(text) + 2)
	sb.WriteByte('\'')
	for _, r := range text {
		switch {
		case r == '\'':
			sb.WriteString("''")
		case like && (r == '%' || r == '_' || r == likeEscape):
			sb.WriteRune(likeEscape)
			sb.WriteRune(r)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

func decodeLiteral(literal string, like bool) (string, error) {
	if len(literal) < 2 || literal[0] != '\'' || literal[len(literal)-1] != '\'' {
		return "", fmt.Errorf("not a quoted literal: %s", literal)
	}
	body := literal[1 : len(literal)-1]

	var sb strings.Builder
	runes := []rune(body)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch {
		case r == '\'':
			if i+1 >= len(runes) || runes[i+1] != '\'' {
				return "", fmt.Errorf("unescaped quote in literal: %s", literal)
			}
			i++
		case like && r == likeEscape:
			if i+1 >= len(runes) {
				return "", fmt.Errorf("dangling escape in literal: %s", literal)
			}
			i++
			r = runes[i]
		}
		sb.WriteRune(r)
	}
	return sb.String(), nil
}

func like(expr, pattern string) string {
	return fmt.Sprintf(`%s LIKE %s ESCAPE '\'`, expr, pattern)
}

func paging(offset, limit int) string {
	return fmt.Sprintf("LIMIT %d OFFSET %d", limit, offset)
}

var functionNames = map[spandist.Operator]string{
	spandist.OpNear:       "pyt_is_near_within",
	spandist.OpBefore:     "pyt_is_before_within",
	spandist.OpAfter:      "pyt_is_after_within",
	spandist.OpOverlaps:   "pyt_is_overlap_within",
	spandist.OpInside:     "pyt_is_inside_within",
	spandist.OpLeftAlign:  "pyt_is_left_aligned",
	spandist.OpRightAlign: "pyt_is_right_aligned",
}

// FunctionNames maps every location operator to its SQL function. Both
// dialects install the functions under the same names.
func FunctionNames() map[spandist.Operator]string {
	out := make(map[spandist.Operator]string, len(functionNames))
	for op, name := range functionNames {
		out[op] = name
	}
	return out
}

func functionName(op spandist.Operator) (string, error) {
	name, ok := functionNames[op]
	if !ok {
		return "", fmt.Errorf("location operator %v: %w", op, ErrUnsupported)
	}
	return name, nil
}

// SplitFuzzy separates a fuzzy value from its optional :threshold suffix.
// A suffix that is not a number in (0,1] is kept as part of the value.
func SplitFuzzy(value string, fallback float64) (string, float64) {
	i := strings.LastIndexByte(value, ':')
	if i < 0 {
		return value, fallback
	}
	threshold, err := strconv.ParseFloat(value[i+1:], 64)
	if err != nil || threshold <= 0 || threshold > 1 {
		return value, fallback
	}
	return value[:i], threshold
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func escapeKeyword(reserved map[string]bool, name string) string {
	if reserved[strings.ToLower(name)] {
		return `"` + name + `"`
	}
	return name
}
