package store

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
)

// Memory is a MetadataStore kept in a map. It suits local runs and tests.
//
// Go Pattern: sync.RWMutex lets many readers in at once (downloads) while
// writers (batch workers) get exclusive access.
type Memory struct {
	mu   sync.RWMutex
	docs map[string]models.Document
}

// NewMemory creates an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{docs: make(map[string]models.Document)}
}

// Name identifies this backend in health responses.
func (m *Memory) Name() string {
	return BackendMemory
}

// Put stores a copy of doc, replacing any record with the same file name.
// A replaced record keeps its original ID.
func (m *Memory) Put(_ context.Context, doc *models.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing, ok := m.docs[doc.FileName]; ok {
		doc.ID = existing.ID
	} else if doc.ID == "" {
		doc.ID = uuid.New().String()
	}
	m.docs[doc.FileName] = clone(doc)
	return nil
}

// GetByFileName returns a copy of the stored record.
func (m *Memory) GetByFileName(_ context.Context, fileName string) (*models.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	doc, ok := m.docs[fileName]
	if !ok {
		return nil, models.ErrDocumentNotFound
	}
	out := clone(&doc)
	return &out, nil
}

// HealthCheck always succeeds.
func (m *Memory) HealthCheck(context.Context) error {
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error {
	return nil
}

// Len returns the number of stored records.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs)
}

// clone copies doc including its keyword slice, so callers can't mutate
// what the store holds.
func clone(doc *models.Document) models.Document {
	out := *doc
	out.Keywords = append(pq.StringArray{}, doc.Keywords...)
	return out
}
