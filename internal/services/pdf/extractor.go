// Package pdf provides page-by-page PDF text extraction.
//
// We use the ledongthuc/pdf library for text extraction. It's a pure Go
// implementation, no CGO required. Page counts come
// from pdfcpu, which tolerates more structural damage than the text reader.
package pdf

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

// ErrUnreadablePDF is returned when a file cannot be opened or parsed as a PDF.
var ErrUnreadablePDF = errors.New("unreadable pdf")

func init() {
	// pdfcpu would otherwise create a config directory under $HOME on first use.
	api.DisableConfigDir()
}

// Text holds the extracted text of every page, in page order.
type Text struct {
	Pages     []string
	PageCount int
}

// Full returns all pages joined by a newline.
func (t *Text) Full() string {
	return strings.Join(t.Pages, "\n")
}

// FirstPage returns the text of page 1, or "" for a document without pages.
func (t *Text) FirstPage() string {
	if len(t.Pages) == 0 {
		return ""
	}
	return t.Pages[0]
}

// Source reads text from PDF files on disk.
type Source struct{}

// NewSource creates a PDF text source.
func NewSource() *Source {
	return &Source{}
}

// Read extracts the text of every page of the PDF at path.
// A page without a text layer yields "" rather than an error.
//
// Go Pattern: Named return values let the deferred recover() turn a parser
// panic into an ordinary error. Malformed PDFs can drive the reader into
// index-out-of-range panics, and one bad upload must not take down a worker.
func (s *Source) Read(path string) (text *Text, err error) {
	defer func() {
		if r := recover(); r != nil {
			text = nil
			err = fmt.Errorf("%w: parser panic: %v", ErrUnreadablePDF, r)
		}
	}()

	if err := checkHeader(path); err != nil {
		return nil, err
	}

	f, reader, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	defer f.Close()

	pageCount := reader.NumPage()
	pages := make([]string, 0, pageCount)
	for i := 1; i <= pageCount; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			pages = append(pages, "")
			continue
		}

		pageText, err := page.GetPlainText(nil)
		if err != nil {
			// Image-only or oddly encoded pages: keep going with the rest
			pages = append(pages, "")
			continue
		}
		pages = append(pages, strings.TrimSpace(pageText))
	}

	return &Text{Pages: pages, PageCount: countPages(path, pageCount)}, nil
}

// countPages prefers pdfcpu's page tree count and falls back to the text
// reader's count when pdfcpu rejects the file.
func countPages(path string, fallback int) int {
	n, err := api.PageCountFile(path)
	if err != nil || n <= 0 {
		return fallback
	}
	return n
}

func checkHeader(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnreadablePDF, err)
	}
	defer f.Close()

	head := make([]byte, 5)
	if _, err := io.ReadFull(f, head); err != nil {
		return fmt.Errorf("%w: file too short", ErrUnreadablePDF)
	}
	if !ValidatePDF(head) {
		return fmt.Errorf("%w: missing %%PDF- header", ErrUnreadablePDF)
	}
	return nil
}

// ValidatePDF checks if the data looks like a valid PDF by checking the magic bytes.
func ValidatePDF(data []byte) bool {
	// PDF files start with "%PDF-"
	return len(data) >= 5 && string(data[:5]) == "%PDF-"
}
