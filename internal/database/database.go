// Package database handles PostgreSQL connections and queries.
//
// Go Pattern: We use the `sqlx` package which extends Go's standard `database/sql`
// with convenient features like scanning rows into structs. Unlike an ORM,
// you write raw SQL, which gives you full control over every query.
//
// Go's database/sql has built-in connection pooling: you create one *sql.DB
// (or *sqlx.DB) at startup and share it across your entire application.
// It's safe for concurrent use by multiple goroutines.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver, the underscore import runs its init()

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
)

// DB wraps the sqlx database connection with our application-specific methods.
// Go Pattern: Embedding (*sqlx.DB) gives us all of sqlx's methods automatically,
// plus we can add our own. This is Go's version of inheritance: composition.
type DB struct {
	*sqlx.DB
}

// New creates a new database connection with connection pooling configured.
func New(databaseURL string) (*DB, error) {
	// sqlx.Connect both opens the connection and pings the database
	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// A batch keeps at most WORKER_COUNT writers busy, so a small pool is plenty.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(2 * time.Minute)
	db.SetConnMaxIdleTime(30 * time.Second)

	return &DB{db}, nil
}

// Name identifies this backend in health responses.
func (db *DB) Name() string {
	return "postgres"
}

// HealthCheck verifies the database connection is alive.
// Go Pattern: context.Context is passed to functions that may be slow or
// need cancellation (like database queries, HTTP requests).
func (db *DB) HealthCheck(ctx context.Context) error {
	return db.PingContext(ctx)
}

// documentColumns lists columns explicitly so schema additions never break scans.
const documentColumns = `id, file_name, title, author, keywords, summary, file_path, file_size,
	page_count, content_type, time_taken_sec, memory_usage_mb, processed_at`

// --- Document Operations ---

// Put inserts a document, or replaces the stored one with the same file name.
// The row keeps its original ID on replacement; doc.ID is updated to match.
func (db *DB) Put(ctx context.Context, doc *models.Document) error {
	if doc.ID == "" {
		doc.ID = uuid.New().String()
	}

	query := `
		INSERT INTO documents (` + documentColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (file_name) DO UPDATE SET
			title = EXCLUDED.title,
			author = EXCLUDED.author,
			keywords = EXCLUDED.keywords,
			summary = EXCLUDED.summary,
			file_path = EXCLUDED.file_path,
			file_size = EXCLUDED.file_size,
			page_count = EXCLUDED.page_count,
			content_type = EXCLUDED.content_type,
			time_taken_sec = EXCLUDED.time_taken_sec,
			memory_usage_mb = EXCLUDED.memory_usage_mb,
			processed_at = EXCLUDED.processed_at
		RETURNING id`

	// QueryRowContext executes a query that returns a single row.
	// Scan() reads the returned columns into our struct fields.
	err := db.QueryRowContext(ctx, query,
		doc.ID, doc.FileName, doc.Title, doc.Authors, doc.Keywords, doc.Summary,
		doc.FilePath, doc.FileSize, doc.PageCount, doc.ContentType,
		doc.TimeTakenSec, doc.MemoryUsageMB, doc.ProcessedAt,
	).Scan(&doc.ID)
	if err != nil {
		return fmt.Errorf("failed to upsert document %s: %w", doc.FileName, err)
	}
	return nil
}

// GetByFileName retrieves the document stored for a sanitized file name.
func (db *DB) GetByFileName(ctx context.Context, fileName string) (*models.Document, error) {
	var doc models.Document
	// GetContext is sqlx's convenience method: it scans directly into a struct
	// using the `db:"column_name"` tags we defined on the model.
	err := db.GetContext(ctx, &doc,
		`SELECT `+documentColumns+` FROM documents WHERE file_name = $1`, fileName)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, models.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get document %s: %w", fileName, err)
	}
	return &doc, nil
}
