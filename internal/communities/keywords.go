package communities

import (
	"sort"
	"strings"
	"unicode"
)

var keywordStopWords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {}, "is": {}, "are": {},
	"was": {}, "were": {}, "been": {}, "be": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "should": {}, "could": {},
	"may": {}, "might": {}, "can": {}, "for": {}, "with": {}, "about": {}, "from": {},
	"this": {}, "that": {}, "these": {}, "those": {}, "what": {}, "when": {}, "where": {},
	"who": {}, "why": {}, "how": {}, "my": {}, "your": {}, "their": {}, "our": {},
	"need": {}, "help": {}, "please": {}, "anyone": {}, "just": {}, "any": {},
}

// Tokenize lowercases text, turns non-alphanumerics into spaces and keeps
// words longer than three characters that are not stop words
func Tokenize(text string) []string {
	clean := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return unicode.ToLower(r)
		}
		return ' '
	}, text)

	var words []string
	for _, w := range strings.Fields(clean) {
		if len([]rune(w)) <= 3 {
			continue
		}
		if _, stop := keywordStopWords[w]; stop {
			continue
		}
		words = append(words, w)
	}
	return words
}

// ExtractKeywords returns the topN most frequent words across titles.
// Equal counts keep first-seen order.
func ExtractKeywords(titles []string, topN int) []string {
	counts := make(map[string]int)
	var order []string
	for _, title := range titles {
		for _, w := range Tokenize(title) {
			if counts[w] == 0 {
				order = append(order, w)
			}
			counts[w]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > topN {
		order = order[:topN]
	}
	return order
}
