package metadata

import (
	"strings"
	"testing"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
)

func TestTitle(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty page", "", models.DefaultTitle},
		{"whitespace page", " \n\t", models.DefaultTitle},
		{"only parenthesized tokens", "(a) (b)", models.DefaultTitle},
		{"short title", "Graph Theory Basics", "Graph Theory Basics"},
		{
			name: "drops tokens with an opening parenthesis",
			text: "Smith (John Smith) studies Graphs (2020).",
			want: "Smith Smith) studies Graphs",
		},
		{
			name: "caps at ten words",
			text: "one two three four five six seven eight nine ten eleven twelve",
			want: "one two three four five six seven eight nine ten",
		},
		{
			name: "collapses newlines and runs of spaces",
			text: "A   Study\nof\tNetworks",
			want: "A Study of Networks",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Title(tt.text)
			if got != tt.want {
				t.Errorf("Title(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

// TestTitleShape checks the invariants that hold for any page text.
func TestTitleShape(t *testing.T) {
	pages := []string{
		"(x) a (b c) d e f g h i j k l m n",
		strings.Repeat("word(1) ", 30),
		"Deep (Learning) for (Graphs): a survey of methods and (open) problems in 2024",
	}
	for _, page := range pages {
		title := Title(page)
		if title == models.DefaultTitle {
			continue
		}
		words := strings.Split(title, " ")
		if len(words) > maxTitleWords {
			t.Errorf("Title(%q) has %d words, want <= %d", page, len(words), maxTitleWords)
		}
		for _, w := range words {
			if strings.Contains(w, "(") {
				t.Errorf("Title(%q) contains %q", page, w)
			}
		}
	}
}

func TestAuthors(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"empty page", "", models.DefaultAuthor},
		{"no parentheses", "Graph Theory by John Smith", models.DefaultAuthor},
		{"unclosed parenthesis", "Graph Theory (John", models.DefaultAuthor},
		{"single author", "Graphs (Ada Lovelace)", "Ada Lovelace"},
		{
			name: "multiple matches",
			text: "Smith (John Smith) studies Graphs (2020).",
			want: "John Smith, 2020",
		},
		{
			name: "first closing parenthesis ends the match",
			text: "Nested (outer (inner) tail)",
			want: "outer (inner",
		},
		{
			name: "match does not cross lines",
			text: "Broken (first\nline) and (Grace Hopper)",
			want: "Grace Hopper",
		},
		{"empty parentheses", "Title ()", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Authors(tt.text)
			if got != tt.want {
				t.Errorf("Authors(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}
