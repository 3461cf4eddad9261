package catalog

import (
	"strings"
	"unicode/utf8"
)

// wildcardMarker brackets search terms coming from list screens ("*term*").
const wildcardMarker = "*"

// trigramLength is the shortest word the trigram tokenizer can index.
const trigramLength = 3

// NormalizeSearchTerm strips wildcard markers and collapses whitespace.
// An empty result means the term carries nothing to search for.
func NormalizeSearchTerm(term string) string {
	trimmed := strings.TrimSpace(term)
	trimmed = strings.Trim(trimmed, wildcardMarker)
	return strings.Join(strings.Fields(trimmed), " ")
}

type searchExpression struct {
	match      string
	substrings []string
}

// buildSearchExpression turns a user term into an FTS5 MATCH string plus
// substring filters for words too short for trigram matching.
// Every word is quoted, so the MATCH string is always syntactically valid.
func buildSearchExpression(term string) searchExpression {
	var expression searchExpression
	phrases := make([]string, 0)
	for _, word := range strings.Fields(NormalizeSearchTerm(term)) {
		word = strings.Trim(strings.ReplaceAll(word, wildcardMarker, ""), `"`)
		if word == "" {
			continue
		}
		if utf8.RuneCountInString(word) < trigramLength {
			expression.substrings = append(expression.substrings, strings.ToLower(word))
			continue
		}
		phrases = append(phrases, `"`+strings.ReplaceAll(word, `"`, `""`)+`"`)
	}
	expression.match = strings.Join(phrases, " ")
	return expression
}

func (e searchExpression) empty() bool {
	return e.match == "" && len(e.substrings) == 0
}
