package lexicon

import (
	"strings"

	"github.com/surgebase/porter2"
	"golang.org/x/text/cases"
)

// minStemLength is the shortest word handed to the stemmer.
const minStemLength = 3

// Normalize folds case and joins inner whitespace with underscores, the
// form lemmas are stored in.
func Normalize(word string) string {
	fields := strings.Fields(word)
	if len(fields) == 0 {
		return ""
	}
	return cases.Fold().String(strings.Join(fields, "_"))
}

// Stem returns the porter2 stem of a normalized word. Short words and
// multi-word lemmas are returned unchanged.
func Stem(word string) string {
	if len(word) < minStemLength || strings.Contains(word, "_") {
		return word
	}
	return porter2.Stem(word)
}
