// Package models defines the data structures used throughout the application.
//
// Go Pattern: Models are plain structs with tags for serialization.
// The `json` tags shape the HTTP wire format, `db` tags map sqlx columns,
// `firestore` tags map Firestore document fields and `yaml` tags drive the
// YAML export. One struct, four encodings, no ORM.
package models

import (
	"errors"
	"time"

	"github.com/lib/pq"
)

// Default values for fields that could not be derived from a document.
const (
	DefaultTitle        = "Unknown Title"
	DefaultAuthor       = "Unknown Author"
	SummaryErrorMessage = "Error during summarization"
)

// ErrDocumentNotFound is returned by every metadata store when no record
// exists for the requested file name.
var ErrDocumentNotFound = errors.New("document not found")

// Document is the metadata record produced for one uploaded PDF.
// FileName is the logical key: a later upload with the same sanitized name
// replaces the earlier record.
type Document struct {
	ID            string         `json:"id,omitempty" db:"id" firestore:"id" yaml:"-"`
	FileName      string         `json:"file_name" db:"file_name" firestore:"file_name" yaml:"file_name"`
	Title         string         `json:"title" db:"title" firestore:"title" yaml:"title"`
	Authors       string         `json:"author" db:"author" firestore:"author" yaml:"author"`
	Keywords      pq.StringArray `json:"keywords" db:"keywords" firestore:"keywords" yaml:"keywords"` // TEXT[] in Postgres
	Summary       string         `json:"summary" db:"summary" firestore:"summary" yaml:"summary"`
	FilePath      string         `json:"file_path" db:"file_path" firestore:"file_path" yaml:"file_path"`
	FileSize      int64          `json:"file_size" db:"file_size" firestore:"file_size" yaml:"file_size"`
	PageCount     int            `json:"page_count" db:"page_count" firestore:"page_count" yaml:"page_count"`
	ContentType   string         `json:"content_type" db:"content_type" firestore:"content_type" yaml:"content_type"`
	TimeTakenSec  float64        `json:"time_taken_sec" db:"time_taken_sec" firestore:"time_taken_sec" yaml:"time_taken_sec"`
	MemoryUsageMB float64        `json:"memory_usage_mb" db:"memory_usage_mb" firestore:"memory_usage_mb" yaml:"memory_usage_mb"`
	ProcessedAt   time.Time      `json:"processed_at" db:"processed_at" firestore:"processed_at" yaml:"processed_at"`
}

// NewDocument returns a record for fileName with every derived field set to
// its fallback value. Extraction overwrites the fields it manages to compute.
func NewDocument(fileName string) *Document {
	return &Document{
		FileName: fileName,
		Title:    DefaultTitle,
		Authors:  DefaultAuthor,
		Keywords: pq.StringArray{},
	}
}

// Export returns a copy of the record without its internal ID, which is
// what clients receive from the download endpoint.
func (d *Document) Export() Document {
	out := *d
	out.ID = ""
	if out.Keywords == nil {
		out.Keywords = pq.StringArray{}
	}
	return out
}

// --- Request/Response DTOs (Data Transfer Objects) ---

// FileError describes one file of a batch that could not be processed cleanly.
type FileError struct {
	Error   string `json:"error"`
	Details string `json:"details"`
}

// ParseResponse is the body returned by POST /parse.
// Go Pattern: Slices are initialised by the producer so they encode as []
// rather than null.
type ParseResponse struct {
	Success bool        `json:"success"`
	Results []Document  `json:"results"`
	Errors  []FileError `json:"errors"`
}

// MessageResponse is used for simple acknowledgements and the empty-batch case.
type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// ErrorResponse is the standard error format for non-batch API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    int    `json:"code,omitempty"`
}

// HealthResponse is returned by the health check endpoint.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Store   string `json:"store"`
	Workers int    `json:"workers"`
}
