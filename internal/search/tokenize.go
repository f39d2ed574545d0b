package search

import (
	"strings"
	"unicode"
)

// tokenize lowercases text and splits it on anything that is not a letter
// or digit. Single characters are dropped.
func tokenize(text string) []string {
	var terms []string
	current := strings.Builder{}

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			current.WriteRune(unicode.ToLower(r))
		} else if current.Len() > 0 {
			if term := current.String(); len([]rune(term)) > 1 {
				terms = append(terms, term)
			}
			current.Reset()
		}
	}

	if term := current.String(); len([]rune(term)) > 1 {
		terms = append(terms, term)
	}

	return terms
}
