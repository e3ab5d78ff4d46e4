package keywords

import (
	"strings"
	"unicode"
)

// Extractor normalizes free text into candidate keywords.
type Extractor struct {
	stopwords map[string]struct{}
}

// NewExtractor creates an extractor with the given stopword list.
// A nil list selects the built-in English defaults.
func NewExtractor(stopwords []string) *Extractor {
	if stopwords == nil {
		stopwords = DefaultStopwords()
	}
	stops := make(map[string]struct{}, len(stopwords))
	for _, w := range stopwords {
		stops[strings.ToLower(w)] = struct{}{}
	}
	return &Extractor{stopwords: stops}
}

// Extract splits text into lowercase keywords, removing short tokens,
// pure-number tokens, and stopwords. Duplicates are dropped, keeping
// first encounter order. Empty input yields an empty result.
func (e *Extractor) Extract(text string) []string {
	var tokens []string
	var current strings.Builder

	for _, r := range text {
		if !isSplitRune(r) {
			current.WriteRune(unicode.ToLower(r))
			continue
		}
		if current.Len() > 0 {
			if word := e.processToken(current.String()); word != "" {
				tokens = append(tokens, word)
			}
			current.Reset()
		}
	}

	// Don't forget the last token
	if current.Len() > 0 {
		if word := e.processToken(current.String()); word != "" {
			tokens = append(tokens, word)
		}
	}

	return uniquePreserveOrder(tokens)
}

// isSplitRune reports whether r separates tokens: any whitespace plus a
// fixed punctuation set.
func isSplitRune(r rune) bool {
	if unicode.IsSpace(r) {
		return true
	}
	switch r {
	case '/', '-', '_', '.', ',', '!', '?', '(', ')':
		return true
	}
	return false
}

// processToken applies length, numeric, and stopword filtering.
func (e *Extractor) processToken(token string) string {
	if len(token) <= 2 {
		return ""
	}

	// Pure-number tokens carry no topical signal. Mixed tokens like
	// "python3" are kept.
	if isNumericOnly(token) {
		return ""
	}

	if e.isStopword(token) {
		return ""
	}

	return token
}

// isNumericOnly returns true if the token contains only digits.
func isNumericOnly(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

func (e *Extractor) isStopword(word string) bool {
	_, ok := e.stopwords[word]
	return ok
}

// AddStopword adds a word to the stopword list
func (e *Extractor) AddStopword(word string) {
	e.stopwords[strings.ToLower(word)] = struct{}{}
}

// RemoveStopword removes a word from the stopword list
func (e *Extractor) RemoveStopword(word string) {
	delete(e.stopwords, strings.ToLower(word))
}

// uniquePreserveOrder drops duplicates, keeping first encounter order.
func uniquePreserveOrder(tokens []string) []string {
	seen := make(map[string]struct{}, len(tokens))
	var out []string
	for _, t := range tokens {
		if _, ok := seen[t]; ok {
			continue
		}
		seen[t] = struct{}{}
		out = append(out, t)
	}
	return out
}
