// Package nlp splits English text into sentences and tokens.
//
// It is a small rule-based segmenter: sentences end at '.', '!' or '?'
// (plus any closing quotes or brackets) when followed by whitespace, and at
// blank lines. Tokens are word runs or single punctuation characters, each
// flagged as stopword and/or punctuation for the summarizer.
package nlp

import (
	"strings"
	"unicode"
)

// Token is one word or punctuation mark of a sentence.
type Token struct {
	Text    string
	IsStop  bool
	IsPunct bool
}

// Sentence is a contiguous span of the source text and its tokens.
type Sentence struct {
	Text   string
	Tokens []Token
}

// Document is the parsed form of a text.
type Document struct {
	Sentences []Sentence
}

// Tokens returns every token of the document in order.
func (d Document) Tokens() []Token {
	var out []Token
	for _, s := range d.Sentences {
		out = append(out, s.Tokens...)
	}
	return out
}

// Parser turns raw text into a Document using a stopword set.
type Parser struct {
	stopwords StopwordSet
}

// NewParser creates a parser. A nil set means no token is a stopword.
func NewParser(stopwords StopwordSet) *Parser {
	if stopwords == nil {
		stopwords = StopwordSet{}
	}
	return &Parser{stopwords: stopwords}
}

// Parse segments text into sentences and tokenizes each of them.
func (p *Parser) Parse(text string) Document {
	var doc Document
	for _, raw := range splitSentences(text) {
		tokens := p.tokenize(raw)
		if !hasWord(tokens) {
			continue
		}
		doc.Sentences = append(doc.Sentences, Sentence{Text: raw, Tokens: tokens})
	}
	return doc
}

func (p *Parser) tokenize(s string) []Token {
	runes := []rune(s)
	var tokens []Token
	for i := 0; i < len(runes); {
		r := runes[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case IsWordRune(r):
			start := i
			i = wordEnd(runes, i)
			word := string(runes[start:i])
			tokens = append(tokens, Token{
				Text:   word,
				IsStop: p.stopwords.Contains(strings.ToLower(word)),
			})
		default:
			tokens = append(tokens, Token{
				Text:    string(r),
				IsPunct: unicode.IsPunct(r),
			})
			i++
		}
	}
	return tokens
}

func hasWord(tokens []Token) bool {
	for _, t := range tokens {
		if !t.IsPunct {
			return true
		}
	}
	return false
}

// IsWordRune reports whether r belongs to a word: letters, digits,
// combining marks and underscore.
func IsWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.Is(unicode.Mn, r) || r == '_'
}

// wordEnd returns the index just past the word that starts at i.
func wordEnd(runes []rune, i int) int {
	for i < len(runes) && (IsWordRune(runes[i]) || isInnerApostrophe(runes, i)) {
		i++
	}
	return i
}

// Words returns the words of text in order, split exactly as Parse splits
// them. Punctuation and whitespace are dropped.
func Words(text string) []string {
	runes := []rune(text)
	var words []string
	for i := 0; i < len(runes); {
		if !IsWordRune(runes[i]) {
			i++
			continue
		}
		end := wordEnd(runes, i)
		words = append(words, string(runes[i:end]))
		i = end
	}
	return words
}

// isInnerApostrophe keeps contractions such as "don't" in a single token.
func isInnerApostrophe(runes []rune, i int) bool {
	if runes[i] != '\'' && runes[i] != '’' {
		return false
	}
	return i > 0 && i+1 < len(runes) && unicode.IsLetter(runes[i-1]) && unicode.IsLetter(runes[i+1])
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', ']', '}', '”', '’', '»':
		return true
	}
	return false
}

// splitSentences returns the trimmed, non-empty sentence spans of text.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	start := 0

	flush := func(end int) {
		s := strings.TrimSpace(string(runes[start:end]))
		if s != "" {
			out = append(out, s)
		}
		start = end
	}

	for i := 0; i < len(runes); i++ {
		r := runes[i]

		if r == '\n' && blankLineFollows(runes, i) {
			flush(i)
			continue
		}

		if !isTerminal(r) {
			continue
		}
		end := i + 1
		for end < len(runes) && (isTerminal(runes[end]) || isCloser(runes[end])) {
			end++
		}
		if end == len(runes) || unicode.IsSpace(runes[end]) {
			flush(end)
			i = end - 1
		}
	}
	flush(len(runes))
	return out
}

// blankLineFollows reports whether the newline at i is followed by only
// horizontal whitespace and another newline.
func blankLineFollows(runes []rune, i int) bool {
	for j := i + 1; j < len(runes); j++ {
		switch runes[j] {
		case '\n':
			return true
		case ' ', '\t', '\r':
			continue
		default:
			return false
		}
	}
	return false
}
