package querysql

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"

	"github.com/roach88/pythia/internal/querylang"
)

const tokenType = "tok"

// spanColumns are the columns every pair CTE projects, in order.
var spanColumns = []string{"id", "document_id", "type", "p1", "p2", "index", "length", "value"}

var (
	privilegedDocAttrs = map[string]bool{
		"id": true, "author": true, "title": true, "date_value": true,
		"sort_key": true, "source": true, "profile_id": true,
	}
	numericDocAttrs = map[string]bool{"id": true, "date_value": true}

	privilegedSpanAttrs = map[string]bool{
		"p1": true, "p2": true, "index": true, "length": true, "language": true,
		"pos": true, "lemma": true, "value": true, "text": true,
		"lemma_id": true, "word_id": true,
	}
	numericSpanAttrs = map[string]bool{
		"p1": true, "p2": true, "index": true, "length": true,
		"lemma_id": true, "word_id": true,
	}
)

// compileCorpora builds the JOIN restricting spans to the given corpora.
func (c *compilation) compileCorpora(set *querylang.CorpusSet) {
	if set == nil {
		return
	}
	fold := cases.Fold()
	seen := make(map[string]bool, len(set.IDs))
	var ids []string
	for _, id := range set.IDs {
		id = fold.String(id)
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return
	}
	sort.Strings(ids)

	quoted := make([]string, len(ids))
	for i, id := range ids {
		quoted[i] = c.encode(id, false)
	}
	c.corpusJoin = "INNER JOIN document_corpus ON span.document_id=document_corpus.document_id" +
		" AND document_corpus.corpus_id IN (" + strings.Join(quoted, ", ") + ")"
}

// compileDocuments builds the boolean filter over the document table.
func (c *compilation) compileDocuments(set *querylang.DocumentSet) error {
	if set == nil || set.Expr == nil {
		return nil
	}
	sql, err := c.docExpr(set.Expr)
	if err != nil {
		return err
	}
	c.docFilter = sql
	return nil
}

func (c *compilation) docExpr(expr querylang.DocExpr) (string, error) {
	switch e := expr.(type) {
	case *querylang.Pair:
		return c.docPair(e)
	case *querylang.DocBinary:
		left, err := c.docExpr(e.Left)
		if err != nil {
			return "", err
		}
		right, err := c.docExpr(e.Right)
		if err != nil {
			return "", err
		}
		return "(" + left + " " + e.Op.String() + " " + right + ")", nil
	default:
		return "", fmt.Errorf("unsupported document expression: %T", expr)
	}
}

func (c *compilation) docPair(pair *querylang.Pair) (string, error) {
	c.docPairs++
	c.header = append(c.header, fmt.Sprintf("d%d: %s", c.docPairs, commentText(pair.String())))

	if pair.Prefix != querylang.PrefixNone {
		return "", validationError(pair.Pos, querylang.ErrInvalidOperator, "document attribute %s cannot be prefixed", pair.Name)
	}

	name := strings.ToLower(pair.Name)
	if privilegedDocAttrs[name] {
		if pair.Op == querylang.OpNone {
			return "", validationError(pair.Pos, querylang.ErrShortPrivilegedPair, "document attribute %s requires an operator", pair.Name)
		}
		sql, err := c.valueSQL(pair, "document."+name, numericDocAttrs[name])
		if err != nil {
			return "", err
		}
		return "(" + sql + ")", nil
	}

	sql := "EXISTS (SELECT 1 FROM document_attribute da WHERE da.document_id=document.id" +
		" AND LOWER(da.name)=LOWER(" + c.encode(pair.Name, false) + ")"
	if pair.Op != querylang.OpNone {
		cond, err := c.valueSQL(pair, "da.value", false)
		if err != nil {
			return "", err
		}
		sql += " AND " + cond
	}
	return sql + ")", nil
}

// compileText walks the text expression in source order, emitting one CTE
// per pair. prev is the type of the last structure pair seen so far.
func (c *compilation) compileText(expr querylang.TextExpr, prev string) (string, error) {
	switch e := expr.(type) {
	case *querylang.Pair:
		return c.textPair(e, prev)
	case *querylang.BooleanExpr:
		return c.compileSides(e.Left, e.Right, prev)
	case *querylang.LocationExpr:
		return c.compileSides(e.Left, e.Right, prev)
	default:
		return "", fmt.Errorf("unsupported text expression: %T", expr)
	}
}

func (c *compilation) compileSides(left, right querylang.TextExpr, prev string) (string, error) {
	prev, err := c.compileText(left, prev)
	if err != nil {
		return "", err
	}
	return c.compileText(right, prev)
}

func (c *compilation) textPair(pair *querylang.Pair, prev string) (string, error) {
	name := fmt.Sprintf("s%d", len(c.ctes)+1)

	var spanType, attrCond string
	switch pair.Prefix {
	case querylang.PrefixStructure:
		spanType = pair.Name
		if pair.Op != querylang.OpNone {
			if !pair.HasValue {
				return "", validationError(pair.Pos, querylang.ErrMissingValue, "missing value for $%s", pair.Name)
			}
			if pair.Op != querylang.OpEq {
				return "", invalidOperator(pair)
			}
			spanType = pair.Value
		}
		// Attribute pairs refer back to the structure by name, even when
		// a value overrides the span type.
		prev = pair.Name

	case querylang.PrefixStructAttribute:
		if prev == "" {
			return "", validationError(pair.Pos, querylang.ErrNoPrecedingStructure,
				"attribute _%s has no preceding structure pair", pair.Name)
		}
		spanType = prev
		cond, err := c.spanAttribute(pair)
		if err != nil {
			return "", err
		}
		attrCond = cond

	default:
		spanType = tokenType
		cond, err := c.spanAttribute(pair)
		if err != nil {
			return "", err
		}
		attrCond = cond
	}

	lines := []string{
		"-- " + name + ": " + commentText(pair.String()),
		"SELECT DISTINCT " + c.columns("span"),
		"FROM span",
	}
	if c.corpusJoin != "" {
		lines = append(lines, c.corpusJoin)
	}
	if c.docFilter != "" {
		lines = append(lines, "INNER JOIN document ON span.document_id=document.id")
	}

	var where []string
	if c.docFilter != "" {
		where = append(where, c.docFilter)
	}
	where = append(where, "span.type="+c.encode(spanType, false))
	if attrCond != "" {
		where = append(where, attrCond)
	}
	lines = append(lines, "WHERE "+strings.Join(where, " AND "))

	c.ctes = append(c.ctes, cte{name: name, body: strings.Join(lines, "\n")})
	c.pairNames[pair] = name
	return prev, nil
}

func (c *compilation) spanAttribute(pair *querylang.Pair) (string, error) {
	name := strings.ToLower(pair.Name)
	if privilegedSpanAttrs[name] {
		if pair.Op == querylang.OpNone {
			return "", validationError(pair.Pos, querylang.ErrShortPrivilegedPair, "span attribute %s requires an operator", pair.Name)
		}
		return c.valueSQL(pair, "span."+c.dialect.EscapeKeyword(name), numericSpanAttrs[name])
	}

	sql := "EXISTS (SELECT 1 FROM span_attribute sa WHERE sa.span_id=span.id" +
		" AND LOWER(sa.name)=LOWER(" + c.encode(pair.Name, false) + ")"
	if pair.Op != querylang.OpNone {
		cond, err := c.valueSQL(pair, "sa.value", false)
		if err != nil {
			return "", err
		}
		sql += " AND " + cond
	}
	return sql + ")", nil
}

// columns lists the span columns qualified by table.
func (c *compilation) columns(table string) string {
	cols := make([]string, len(spanColumns))
	for i, col := range spanColumns {
		cols[i] = table + "." + c.dialect.EscapeKeyword(col)
	}
	return strings.Join(cols, ", ")
}

// commentText makes text safe to embed in a -- comment.
func commentText(text string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '\u2028' || r == '\u2029' {
			return ' '
		}
		return r
	}, text)
}
