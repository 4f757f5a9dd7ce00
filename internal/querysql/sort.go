package querysql

import (
	"regexp"
	"strings"

	"github.com/roach88/pythia/internal/querylang"
)

var sortFieldName = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

var documentSortFields = map[string]bool{
	"id": true, "author": true, "title": true, "source": true,
	"profile_id": true, "user_id": true, "date_value": true,
	"sort_key": true, "last_modified": true,
}

// orderBy renders the ORDER BY list for the results page. Fields may be
// prefixed with + (ascending, the default) or - (descending). The span
// position and id always follow as tiebreakers.
func (c *compilation) orderBy(fields []string) (string, error) {
	var terms []string
	for _, field := range fields {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}

		desc := false
		switch field[0] {
		case '-':
			desc = true
			field = field[1:]
		case '+':
			field = field[1:]
		}

		name := strings.ToLower(field)
		if !sortFieldName.MatchString(name) {
			return "", validationError(querylang.Pos{}, querylang.ErrInvalidSortField, "invalid sort field %q", field)
		}

		term := "document." + c.dialect.EscapeKeyword(name)
		if !documentSortFields[name] {
			term = "(SELECT MIN(da.value) FROM document_attribute da" +
				" WHERE da.document_id=document.id AND da.name=" + c.encode(name, false) + ")"
		}
		if desc {
			term += " DESC"
		}
		terms = append(terms, term)
	}

	if len(terms) == 0 {
		terms = append(terms, "document.sort_key")
	}
	terms = append(terms, "r.p1", "r.id")
	return strings.Join(terms, ", "), nil
}
