// Package metadata derives bibliographic fields from the first page of a PDF.
//
// The heuristics are deliberately simple: the title is the opening run of
// words, and anything in parentheses is treated as an author credit. Both
// functions are pure and fall back to fixed defaults.
package metadata

import (
	"regexp"
	"strings"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
)

// maxTitleWords is how many leading words make up a title.
const maxTitleWords = 10

// parenthesized matches the shortest "(...)" span on a single line.
var parenthesized = regexp.MustCompile(`\((.*?)\)`)

// Title returns the first ten whitespace-separated words of the page that do
// not contain "(", joined by single spaces.
func Title(firstPage string) string {
	words := make([]string, 0, maxTitleWords)
	for _, w := range strings.Fields(firstPage) {
		if strings.Contains(w, "(") {
			continue
		}
		words = append(words, w)
		if len(words) == maxTitleWords {
			break
		}
	}
	if len(words) == 0 {
		return models.DefaultTitle
	}
	return strings.Join(words, " ")
}

// Authors returns every parenthesized substring of the page joined by ", ".
func Authors(firstPage string) string {
	matches := parenthesized.FindAllStringSubmatch(firstPage, -1)
	if len(matches) == 0 {
		return models.DefaultAuthor
	}
	names := make([]string, 0, len(matches))
	for _, m := range matches {
		names = append(names, m[1])
	}
	return strings.Join(names, ", ")
}
