// Package pipeline turns one uploaded PDF into a persisted metadata record.
//
// The steps for a single file are:
//  1. Save the upload under the upload directory (sanitized name).
//  2. Read its text, derive title, authors, keywords and a summary.
//  3. Record timing and memory for step 2.
//  4. Persist the record.
//
// Go Pattern: Instead of panicking or throwing, Process always returns an
// Outcome value. The caller (the worker pool) never has to recover from a
// failing file; it just sorts outcomes into results and errors.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/keywords"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/metadata"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/nlp"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/pdf"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/services/summary"
)

// ErrPersist is returned when a record could not be written to the store.
var ErrPersist = errors.New("failed to persist metadata")

// maxDetailLen caps error details sent back to clients.
const maxDetailLen = 300

// TextSource reads the text of a PDF on disk.
// Go Pattern: Interfaces are defined where they're used (here), not where
// they're implemented. *pdf.Source satisfies this implicitly.
type TextSource interface {
	Read(path string) (*pdf.Text, error)
}

// RecordWriter persists metadata records. Every MetadataStore implements it.
type RecordWriter interface {
	Put(ctx context.Context, doc *models.Document) error
}

// Status classifies how processing a file ended.
type Status int

const (
	// Succeeded means the record was derived and stored.
	Succeeded Status = iota
	// Degraded means the PDF could not be read; a record with default
	// values was stored and the file is still reported as an error.
	Degraded
	// Failed means no record was stored for the file.
	Failed
)

func (s Status) String() string {
	switch s {
	case Succeeded:
		return "succeeded"
	case Degraded:
		return "degraded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Outcome is the result of processing one upload.
type Outcome struct {
	FileName string           // Name as sent by the client
	Status   Status
	Record   *models.Document // Nil when Status is Failed
	Err      error            // Nil only when Status is Succeeded
	Details  string           // Err rendered for clients
}

// Options configures a Pipeline.
type Options struct {
	UploadDir        string
	SummarySentences int
	KeywordCount     int
}

// Pipeline processes uploads one at a time. It is safe for concurrent use:
// it holds no per-file state.
type Pipeline struct {
	uploadDir  string
	source     TextSource
	store      RecordWriter
	parser     *nlp.Parser
	ranker     *keywords.Ranker
	summarizer *summary.Service
}

// New creates a pipeline that reads PDFs with source and writes records to store.
func New(opts Options, source TextSource, store RecordWriter) *Pipeline {
	dir := opts.UploadDir
	if dir == "" {
		dir = "uploads"
	}
	stop := nlp.EnglishStopwords()
	return &Pipeline{
		uploadDir:  dir,
		source:     source,
		store:      store,
		parser:     nlp.NewParser(stop),
		ranker:     keywords.NewRanker(stop, opts.KeywordCount),
		summarizer: summary.New(opts.SummarySentences),
	}
}

// UploadDir returns the directory uploads are saved to.
func (p *Pipeline) UploadDir() string {
	return p.uploadDir
}

// Process saves, analyses and persists one upload.
//
// Once a file is dispatched it is processed to the end: the record is
// written with a context that keeps ctx's values but not its cancellation,
// so a client hanging up mid-batch doesn't discard finished work.
func (p *Pipeline) Process(ctx context.Context, up Upload) Outcome {
	ctx = context.WithoutCancel(ctx)

	name, path, contentType, err := saveUpload(p.uploadDir, up)
	if err != nil {
		log.Printf("❌ Could not save %s: %v", up.FileName, err)
		return p.failed(up.FileName, Failed, nil, err)
	}

	doc := models.NewDocument(name)
	doc.ID = uuid.New().String()
	doc.FilePath = path
	doc.ContentType = contentType

	// Only the analysis is measured, not the save above.
	start := time.Now()
	extractErr := p.analyse(path, doc)
	doc.TimeTakenSec = round2(time.Since(start).Seconds())
	doc.MemoryUsageMB = round2(memoryMB())

	if info, err := os.Stat(path); err == nil {
		doc.FileSize = info.Size()
	}
	doc.ProcessedAt = time.Now().UTC()

	if extractErr != nil {
		log.Printf("⚠️  Could not parse %s: %v", name, extractErr)
		degradeRecord(doc)
	}

	if err := p.store.Put(ctx, doc); err != nil {
		err = fmt.Errorf("%w: %v", ErrPersist, err)
		log.Printf("❌ Could not store metadata for %s: %v", name, err)
		return p.failed(up.FileName, Failed, nil, err)
	}

	if extractErr != nil {
		return p.failed(up.FileName, Degraded, doc, extractErr)
	}

	log.Printf("📄 Processed %s (%d pages, %d keywords) in %.2fs", name, doc.PageCount, len(doc.Keywords), doc.TimeTakenSec)
	return Outcome{FileName: up.FileName, Status: Succeeded, Record: doc}
}

// analyse fills the derived fields of doc from the PDF at path.
// Text without any content leaves the defaults in place.
func (p *Pipeline) analyse(path string, doc *models.Document) error {
	text, err := p.source.Read(path)
	if err != nil {
		return err
	}
	doc.PageCount = text.PageCount

	full := text.Full()
	if strings.TrimSpace(full) == "" {
		return nil
	}

	if first := text.FirstPage(); first != "" {
		doc.Title = metadata.Title(first)
		doc.Authors = metadata.Authors(first)
	}
	doc.Keywords = pq.StringArray(p.ranker.Rank(full))
	doc.Summary = p.summarizer.Summarize(p.parser.Parse(full))
	return nil
}

// degradeRecord resets every derived field to its fallback value.
func degradeRecord(doc *models.Document) {
	doc.Title = models.DefaultTitle
	doc.Authors = models.DefaultAuthor
	doc.Keywords = pq.StringArray{}
	doc.Summary = models.SummaryErrorMessage
}

func (p *Pipeline) failed(fileName string, status Status, doc *models.Document, err error) Outcome {
	return Outcome{
		FileName: fileName,
		Status:   status,
		Record:   doc,
		Err:      err,
		Details:  p.publicDetails(err),
	}
}

// publicDetails renders err for clients: server paths are made relative to
// the upload directory and long messages are truncated.
func (p *Pipeline) publicDetails(err error) string {
	msg := err.Error()
	if abs, absErr := filepath.Abs(p.uploadDir); absErr == nil {
		msg = strings.ReplaceAll(msg, abs+string(os.PathSeparator), "")
	}
	msg = strings.ReplaceAll(msg, p.uploadDir+string(os.PathSeparator), "")
	if len(msg) > maxDetailLen {
		// Cut on a rune boundary so details stay valid UTF-8.
		cut := maxDetailLen
		for cut > 0 && !utf8.RuneStart(msg[cut]) {
			cut--
		}
		msg = msg[:cut] + "..."
	}
	return msg
}

// memoryMB reports the memory the Go runtime has obtained from the OS.
func memoryMB() float64 {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	return float64(m.Sys) / (1 << 20)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
