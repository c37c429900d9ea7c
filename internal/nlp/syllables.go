package nlp

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	silentSuffixRe = regexp.MustCompile(`(?:[^laeiouy]es|ed|[^laeiouy]e)$`)
	leadingYRe     = regexp.MustCompile(`^y`)
	vowelGroupRe   = regexp.MustCompile(`[aeiouy]{1,2}`)
)

// CountSyllables es una heuristica para ingles, no un diccionario. Minimo 1.
func CountSyllables(word string) int {
	w := strings.ToLower(word)
	if utf8.RuneCountInString(w) <= 3 {
		return 1
	}
	w = silentSuffixRe.ReplaceAllString(w, "")
	w = leadingYRe.ReplaceAllString(w, "")
	n := len(vowelGroupRe.FindAllStringIndex(w, -1))
	if n == 0 {
		return 1
	}
	return n
}
