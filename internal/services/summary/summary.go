// Package summary builds extractive summaries by word-frequency scoring.
//
// The algorithm is the classic one:
//  1. Count every content word (not a stopword, not punctuation).
//  2. Score each sentence by summing the counts of its words.
//  3. Keep the highest-scoring sentences.
//
// Selected sentences are returned best-first, not in document order.
package summary

import (
	"sort"
	"strings"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/nlp"
)

// DefaultSentences is how many sentences a summary contains by default.
const DefaultSentences = 2

// Options configures how the summary should be generated.
type Options struct {
	NumSentences int // Sentences to keep; <= 0 means DefaultSentences
}

// Service generates extractive summaries.
type Service struct {
	defaults Options
}

// New creates a summary service with default options.
func New(numSentences int) *Service {
	return &Service{defaults: Options{NumSentences: numSentences}}
}

// Summarize summarizes doc with the service defaults.
func (s *Service) Summarize(doc nlp.Document) string {
	return Summarize(doc, s.defaults)
}

type scoredSentence struct {
	text  string
	score int
}

// Summarize returns the top-scoring sentences of doc joined by a space.
// Equal scores are broken by position in the document so the output is
// reproducible. Sentences without any scoring word are only used when too
// few sentences score.
func Summarize(doc nlp.Document, opts Options) string {
	n := opts.NumSentences
	if n <= 0 {
		n = DefaultSentences
	}
	if len(doc.Sentences) == 0 {
		return ""
	}

	freq := wordFrequencies(doc)

	scored := make([]scoredSentence, 0, len(doc.Sentences))
	for _, sent := range doc.Sentences {
		score := 0
		for _, tok := range sent.Tokens {
			score += freq[strings.ToLower(tok.Text)]
		}
		scored = append(scored, scoredSentence{text: sent.Text, score: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	n = min(n, len(scored))
	picked := make([]string, 0, n)
	for _, s := range scored[:n] {
		picked = append(picked, s.text)
	}
	return strings.Join(picked, " ")
}

// wordFrequencies counts lowercase content words across the whole document.
func wordFrequencies(doc nlp.Document) map[string]int {
	freq := make(map[string]int)
	for _, tok := range doc.Tokens() {
		if tok.IsStop || tok.IsPunct {
			continue
		}
		freq[strings.ToLower(tok.Text)]++
	}
	return freq
}
