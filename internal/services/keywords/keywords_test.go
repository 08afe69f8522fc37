package keywords

import (
	"reflect"
	"strings"
	"testing"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/nlp"
)

func TestRank(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"empty text", "", 10, []string{}},
		{"only stopwords", "The and of THE", 10, []string{}},
		{
			name:  "frequency order",
			text:  "graph node graph edge graph node",
			limit: 10,
			want:  []string{"graph", "node", "edge"},
		},
		{
			name:  "ties keep first appearance",
			text:  "zeta alpha mu alpha zeta mu",
			limit: 10,
			want:  []string{"zeta", "alpha", "mu"},
		},
		{
			name:  "lowercases and strips punctuation",
			text:  "Graphs, graphs! GRAPHS? (Trees) trees.",
			limit: 10,
			want:  []string{"graphs", "trees"},
		},
		{
			name:  "numbers and underscores are words",
			text:  "v2_model 2020 v2_model",
			limit: 10,
			want:  []string{"v2_model", "2020"},
		},
		{
			name:  "contractions stay whole",
			text:  "Graph's edges don't cross; graph's edges",
			limit: 10,
			want:  []string{"graph's", "edges", "cross"},
		},
		{
			name:  "combining marks stay in the word",
			text:  "cafe\u0301 tea cafe\u0301",
			limit: 10,
			want:  []string{"cafe\u0301", "tea"},
		},
		{
			name:  "limit applies",
			text:  "a1 b1 c1 d1",
			limit: 2,
			want:  []string{"a1", "b1"},
		},
		{
			name:  "non-positive limit uses default",
			text:  "k1 k2 k3 k4 k5 k6 k7 k8 k9 k10 k11 k12",
			limit: 0,
			want:  []string{"k1", "k2", "k3", "k4", "k5", "k6", "k7", "k8", "k9", "k10"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewRanker(nlp.EnglishStopwords(), tt.limit).Rank(tt.text)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Rank(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestRankProperties(t *testing.T) {
	stop := nlp.EnglishStopwords()
	text := strings.Repeat("The Quick brown fox jumps over the lazy dog while the Cat watches. ", 5) +
		"Alpha beta gamma delta epsilon zeta eta theta iota kappa lambda mu."
	r := NewRanker(stop, DefaultLimit)

	first := r.Rank(text)
	if len(first) > DefaultLimit {
		t.Fatalf("got %d keywords, want <= %d", len(first), DefaultLimit)
	}
	for _, kw := range first {
		if kw != strings.ToLower(kw) {
			t.Errorf("keyword %q is not lowercase", kw)
		}
		if stop.Contains(kw) {
			t.Errorf("keyword %q is a stopword", kw)
		}
	}

	for i := 0; i < 20; i++ {
		if again := r.Rank(text); !reflect.DeepEqual(first, again) {
			t.Fatalf("ranking is not deterministic: %q != %q", first, again)
		}
	}
}
