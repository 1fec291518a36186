// Package discover recommends videos beyond the local index by searching an
// external platform and ranking candidates against a source embedding.
package discover

import (
	"sort"
	"strings"
	"unicode"
)

// stopwords are common English words that carry no search signal.
var stopwords = map[string]bool{
	"a": true, "about": true, "after": true, "all": true, "also": true,
	"an": true, "and": true, "any": true, "are": true, "as": true, "at": true,
	"be": true, "because": true, "been": true, "but": true, "by": true,
	"can": true, "come": true, "could": true, "day": true, "do": true,
	"even": true, "first": true, "for": true, "from": true, "get": true,
	"give": true, "go": true, "going": true, "had": true, "has": true,
	"have": true, "he": true, "her": true, "here": true, "him": true,
	"his": true, "how": true, "i": true, "if": true, "in": true, "into": true,
	"is": true, "it": true, "its": true, "just": true, "know": true,
	"like": true, "look": true, "make": true, "me": true, "more": true,
	"most": true, "my": true, "new": true, "no": true, "not": true,
	"now": true, "of": true, "on": true, "one": true, "only": true,
	"or": true, "other": true, "our": true, "out": true, "over": true,
	"people": true, "say": true, "see": true, "she": true, "so": true,
	"some": true, "take": true, "than": true, "that": true, "the": true,
	"their": true, "them": true, "then": true, "there": true, "these": true,
	"they": true, "think": true, "this": true, "time": true, "to": true,
	"two": true, "up": true, "us": true, "use": true, "very": true,
	"want": true, "was": true, "way": true, "we": true, "well": true,
	"were": true, "what": true, "when": true, "which": true, "who": true,
	"will": true, "with": true, "would": true, "year": true, "you": true,
	"your": true,
}

// QueryTerms derives a short search query from free text: the n most frequent
// non-stopword tokens, joined with spaces. Frequency ties keep first-seen
// order so the derived query is deterministic.
func QueryTerms(text string, n int) string {
	if n <= 0 {
		n = 5
	}

	type termCount struct {
		term  string
		count int
		seen  int
	}
	counts := make(map[string]*termCount)
	order := make([]*termCount, 0)

	tokens := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	for _, tok := range tokens {
		if len(tok) < 3 || stopwords[tok] {
			continue
		}
		if tc, ok := counts[tok]; ok {
			tc.count++
			continue
		}
		tc := &termCount{term: tok, count: 1, seen: len(order)}
		counts[tok] = tc
		order = append(order, tc)
	}

	sort.SliceStable(order, func(i, j int) bool {
		if order[i].count != order[j].count {
			return order[i].count > order[j].count
		}
		return order[i].seen < order[j].seen
	})

	if n > len(order) {
		n = len(order)
	}
	terms := make([]string, 0, n)
	for _, tc := range order[:n] {
		terms = append(terms, tc.term)
	}
	return strings.Join(terms, " ")
}
