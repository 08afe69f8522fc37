// Package keywords ranks the most frequent content words of a document.
package keywords

import (
	"sort"
	"strings"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/nlp"
)

// DefaultLimit is the number of keywords kept per document.
const DefaultLimit = 10

// Ranker computes stopword-filtered word frequencies.
type Ranker struct {
	stopwords nlp.StopwordSet
	limit     int
}

// NewRanker creates a ranker that keeps up to limit keywords.
// A non-positive limit falls back to DefaultLimit.
func NewRanker(stopwords nlp.StopwordSet, limit int) *Ranker {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if stopwords == nil {
		stopwords = nlp.StopwordSet{}
	}
	return &Ranker{stopwords: stopwords, limit: limit}
}

type wordCount struct {
	word  string
	count int
}

// Rank returns the most frequent non-stopword tokens of text, most frequent
// first. Ties keep the order in which the words first appeared.
func (r *Ranker) Rank(text string) []string {
	counts := make(map[string]int)
	var order []*wordCount

	// Same word rule as the summarizer's parser.
	for _, w := range nlp.Words(strings.ToLower(text)) {
		if r.stopwords.Contains(w) {
			continue
		}
		if _, seen := counts[w]; !seen {
			order = append(order, &wordCount{word: w})
		}
		counts[w]++
	}
	for _, wc := range order {
		wc.count = counts[wc.word]
	}

	// Go Pattern: sort.SliceStable keeps equal elements in their original
	// order, which is exactly the first-appearance tie-break we want.
	sort.SliceStable(order, func(i, j int) bool {
		return order[i].count > order[j].count
	})

	n := min(r.limit, len(order))
	out := make([]string, 0, n)
	for _, wc := range order[:n] {
		out = append(out, wc.word)
	}
	return out
}
