// Package store selects and opens the metadata store backend.
//
// Go Pattern: Every backend (PostgreSQL, Firestore, in-memory) satisfies
// MetadataStore implicitly, so handlers and the pipeline depend only on the
// interface and never on a concrete database.
package store

import (
	"context"
	"fmt"
	"log"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/database"
	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
)

// Backend names accepted by Open.
const (
	BackendPostgres  = "postgres"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// MetadataStore persists one metadata record per sanitized file name.
// Put replaces any earlier record with the same file name.
type MetadataStore interface {
	Put(ctx context.Context, doc *models.Document) error
	GetByFileName(ctx context.Context, fileName string) (*models.Document, error)
	HealthCheck(ctx context.Context) error
	Name() string
	Close() error
}

// Options selects a backend and carries its connection settings.
type Options struct {
	Backend        string
	DatabaseURL    string
	MigrationsPath string
	ProjectID      string
	Collection     string
}

// Open connects to the configured backend. For PostgreSQL it also applies
// pending migrations before returning.
func Open(ctx context.Context, opts Options) (MetadataStore, error) {
	switch opts.Backend {
	case BackendPostgres:
		db, err := database.New(opts.DatabaseURL)
		if err != nil {
			return nil, err
		}
		if err := db.RunMigrations(opts.MigrationsPath); err != nil {
			db.Close()
			return nil, err
		}
		log.Println("✅ Connected to PostgreSQL")
		return db, nil

	case BackendFirestore:
		fs, err := NewFirestore(ctx, opts.ProjectID, opts.Collection)
		if err != nil {
			return nil, err
		}
		log.Printf("✅ Connected to Firestore (project %s, collection %s)", opts.ProjectID, fs.collection)
		return fs, nil

	case BackendMemory:
		log.Println("⚠️  Using in-memory store: records are lost on restart")
		return NewMemory(), nil

	default:
		return nil, fmt.Errorf("unknown store backend %q", opts.Backend)
	}
}
