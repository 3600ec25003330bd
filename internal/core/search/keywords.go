package search

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// minKeywordLength is the shortest token kept as a keyword.
const minKeywordLength = 3

var punctuation = regexp.MustCompile(`[^\p{L}\p{N}_\s]`)

var stopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {}, "with": {}, "by": {},
	"is": {}, "are": {}, "was": {}, "were": {}, "be": {}, "been": {}, "being": {},
	"have": {}, "has": {}, "had": {}, "do": {}, "does": {}, "did": {},
	"will": {}, "would": {}, "could": {}, "should": {}, "may": {}, "might": {}, "can": {},
	"this": {}, "that": {}, "these": {}, "those": {},
}

// IsStopWord reports whether word is excluded from keyword matching.
func IsStopWord(word string) bool {
	_, ok := stopWords[word]
	return ok
}

// ExtractKeywords lowercases text, replaces punctuation with spaces and
// returns the remaining tokens longer than two characters that are not
// stop words. Order and repetitions are preserved.
func ExtractKeywords(text string) []string {
	cleaned := punctuation.ReplaceAllString(strings.ToLower(text), " ")
	words := strings.Fields(cleaned)

	keywords := make([]string, 0, len(words))
	for _, w := range words {
		if utf8.RuneCountInString(w) < minKeywordLength || IsStopWord(w) {
			continue
		}
		keywords = append(keywords, w)
	}
	return keywords
}

// termCounts returns keyword occurrence counts for text.
func termCounts(text string) map[string]int {
	counts := make(map[string]int)
	for _, k := range ExtractKeywords(text) {
		counts[k]++
	}
	return counts
}
