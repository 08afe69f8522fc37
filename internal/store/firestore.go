package store

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/Shimizu-Technology/pdf-insights-api/internal/models"
)

// DefaultCollection is the Firestore collection used when none is configured.
const DefaultCollection = "pdf_metadata"

// Firestore is a MetadataStore backed by a Firestore collection.
// Each record is a document whose ID is the sanitized file name, so writing
// the same file name again replaces the earlier record.
type Firestore struct {
	client     *firestore.Client
	collection string
}

// NewFirestoreClient creates a Firestore client for the given project ID.
func NewFirestoreClient(ctx context.Context, projectID string) (*firestore.Client, error) {
	if projectID == "" {
		return nil, fmt.Errorf("projectID must be provided to create a firestore client")
	}

	client, err := firestore.NewClient(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to create Firestore client: %w", err)
	}
	return client, nil
}

// NewFirestore opens a store on the given project and collection.
func NewFirestore(ctx context.Context, projectID, collection string) (*Firestore, error) {
	client, err := NewFirestoreClient(ctx, projectID)
	if err != nil {
		return nil, err
	}
	return NewFirestoreWithClient(client, collection), nil
}

// NewFirestoreWithClient wraps an existing client, e.g. one pointed at the emulator.
func NewFirestoreWithClient(client *firestore.Client, collection string) *Firestore {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Firestore{client: client, collection: collection}
}

// Name identifies this backend in health responses.
func (f *Firestore) Name() string {
	return BackendFirestore
}

func (f *Firestore) doc(fileName string) *firestore.DocumentRef {
	return f.client.Collection(f.collection).Doc(fileName)
}

// Put writes doc under its file name. A replaced record keeps its ID.
func (f *Firestore) Put(ctx context.Context, doc *models.Document) error {
	ref := f.doc(doc.FileName)

	// Go Pattern: RunTransaction retries the function on contention, so the
	// read-then-write of the ID stays consistent across concurrent uploads.
	err := f.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(ref)
		switch {
		case err == nil:
			var existing models.Document
			if err := snap.DataTo(&existing); err == nil && existing.ID != "" {
				doc.ID = existing.ID
			}
		case status.Code(err) != codes.NotFound:
			return err
		}
		if doc.ID == "" {
			doc.ID = uuid.New().String()
		}
		return tx.Set(ref, doc)
	})
	if err != nil {
		return fmt.Errorf("failed to write %s to firestore: %w", doc.FileName, err)
	}
	return nil
}

// GetByFileName reads the record stored for fileName.
func (f *Firestore) GetByFileName(ctx context.Context, fileName string) (*models.Document, error) {
	snap, err := f.doc(fileName).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return nil, models.ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s from firestore: %w", fileName, err)
	}

	var doc models.Document
	if err := snap.DataTo(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", fileName, err)
	}
	return &doc, nil
}

// HealthCheck performs a cheap read against the collection.
func (f *Firestore) HealthCheck(ctx context.Context) error {
	_, err := f.client.Collection(f.collection).Limit(1).Documents(ctx).GetAll()
	return err
}

// Close releases the client's gRPC connections.
func (f *Firestore) Close() error {
	return f.client.Close()
}
