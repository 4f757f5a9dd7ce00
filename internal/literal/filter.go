// Package literal normalizes the literal values of query pairs so that they
// match the way indexed text was normalized.
package literal

import (
	"fmt"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Filter rewrites a literal value.
type Filter interface {
	Apply(value string) string
}

// FilterFunc adapts a function to Filter.
type FilterFunc func(string) string

func (f FilterFunc) Apply(value string) string {
	return f(value)
}

// Pipeline applies filters in order. An empty value short-circuits the
// remaining filters.
type Pipeline []Filter

func (p Pipeline) Apply(value string) string {
	for _, f := range p {
		if value == "" {
			return value
		}
		value = f.Apply(value)
	}
	return value
}

var registry = map[string]func() Filter{
	"lower": func() Filter { return Lower() },
	"fold":  func() Filter { return FoldDiacritics() },
	"ita":   func() Filter { return Italian() },
}

// New builds a pipeline from registered filter names.
func New(names ...string) (Pipeline, error) {
	p := make(Pipeline, 0, len(names))
	for _, name := range names {
		factory, ok := registry[name]
		if !ok {
			return nil, fmt.Errorf("unknown literal filter %q (known: %s)", name, strings.Join(Names(), ", "))
		}
		p = append(p, factory())
	}
	return p, nil
}

// Names lists the registered filter names.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Lower lowercases a value using Unicode case mapping.
func Lower() Filter {
	caser := cases.Lower(language.Und)
	return FilterFunc(func(s string) string {
		return caser.String(s)
	})
}

// FoldDiacritics removes combining marks after canonical decomposition, so
// "perché" becomes "perche".
func FoldDiacritics() Filter {
	return FilterFunc(stripMarks)
}

func stripMarks(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}

// Italian keeps only letters, digits, apostrophes and currency symbols,
// folds diacritics and lowercases. A value made only of apostrophes becomes
// empty.
func Italian() Filter {
	caser := cases.Lower(language.Italian)
	return FilterFunc(func(s string) string {
		kept := strings.Map(func(r rune) rune {
			switch {
			case unicode.IsLetter(r), unicode.IsDigit(r), unicode.Is(unicode.Sc, r):
				return r
			case r == '\'', r == '’':
				return '\''
			case unicode.Is(unicode.Mn, r):
				return r
			default:
				return -1
			}
		}, s)
		kept = caser.String(stripMarks(kept))
		if strings.Trim(kept, "'") == "" {
			return ""
		}
		return kept
	})
}
