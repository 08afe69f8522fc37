package summary

import (
	"strings"
	"testing"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/nlp"
)

func parse(text string) nlp.Document {
	return nlp.NewParser(nlp.EnglishStopwords()).Parse(text)
}

func TestSummarize(t *testing.T) {
	tests := []struct {
		name string
		text string
		n    int
		want string
	}{
		{"empty document", "", 2, ""},
		{"single sentence", "Graphs model networks.", 2, "Graphs model networks."},
		{
			// graphs=3, trees=2, others=1: scores 2, 5, 9
			name: "highest score first, not document order",
			text: "Cats sleep. Trees are graphs. Graphs contain trees and graphs.",
			n:    2,
			want: "Graphs contain trees and graphs. Trees are graphs.",
		},
		{
			name: "ties broken by position",
			text: "Alpha beta. Gamma delta. Epsilon zeta.",
			n:    2,
			want: "Alpha beta. Gamma delta.",
		},
		{
			name: "zero-score sentences fill in when needed",
			text: "It is what it is. Graphs matter.",
			n:    2,
			want: "Graphs matter. It is what it is.",
		},
		{
			name: "non-positive count uses default",
			text: "One fish. Two fish. Red fish.",
			n:    0,
			want: "One fish. Two fish.",
		},
		{
			name: "case-insensitive counting",
			text: "GRAPH theory. Graph graph. Other words here.",
			n:    1,
			want: "Graph graph.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Summarize(parse(tt.text), Options{NumSentences: tt.n})
			if got != tt.want {
				t.Errorf("Summarize(%q, %d) = %q, want %q", tt.text, tt.n, got, tt.want)
			}
		})
	}
}

// TestSummarizeSentenceCount checks that exactly min(n, total) sentences are picked.
func TestSummarizeSentenceCount(t *testing.T) {
	text := "Networks connect nodes. Nodes carry data. Data flows along edges. Edges join nodes."
	doc := parse(text)
	total := len(doc.Sentences)

	for n := 1; n <= total+2; n++ {
		got := Summarize(doc, Options{NumSentences: n})
		picked := parse(got).Sentences
		want := min(n, total)
		if len(picked) != want {
			t.Errorf("n=%d: picked %d sentences (%q), want %d", n, len(picked), got, want)
		}
		for _, s := range picked {
			if strings.TrimSpace(s.Text) == "" {
				t.Errorf("n=%d: empty sentence in summary", n)
			}
		}
	}
}

func TestServiceDefaults(t *testing.T) {
	svc := New(1)
	got := svc.Summarize(parse("Short one. Graphs graphs graphs."))
	if got != "Graphs graphs graphs." {
		t.Errorf("Summarize() = %q, want %q", got, "Graphs graphs graphs.")
	}
}
