package semantic

import (
	"sort"
	"strings"
	"unicode/utf8"
)

// stopwords is the fixed stop set for keyword extraction. Results feed
// directly into theme naming, so the set is part of the output contract
// and must not grow casually.
var stopwords = map[string]struct{}{
	"the": {}, "a": {}, "an": {}, "and": {}, "or": {}, "but": {},
	"in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "as": {}, "is": {}, "was": {},
	"are": {}, "were": {}, "be": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {},
	"could": {}, "should": {}, "may": {}, "might": {}, "must": {},
	"can": {}, "this": {}, "that": {}, "these": {}, "those": {},
}

// keywordPunct is stripped from token edges before counting.
const keywordPunct = ".,!?;:"

// ExtractKeywords returns the topN most frequent content words across
// texts. Tokens are whitespace-split, edge-stripped of punctuation and
// lowercased; tokens of length <= 3 and stopwords are discarded.
// Frequency ties keep first-seen order so results are stable.
func ExtractKeywords(texts []string, topN int) []string {
	counts := make(map[string]int)
	var order []string

	for _, text := range texts {
		for _, raw := range strings.Fields(text) {
			word := strings.ToLower(strings.Trim(raw, keywordPunct))
			if utf8.RuneCountInString(word) <= 3 {
				continue
			}
			if _, stop := stopwords[word]; stop {
				continue
			}
			if _, seen := counts[word]; !seen {
				order = append(order, word)
			}
			counts[word]++
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
