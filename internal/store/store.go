package store

import (
	"context"
	"errors"

	"github.com/papyri/archive/internal/model"
)

var (
	// ErrDocumentNotFound is returned by lookups for a document id that does
	// not exist, distinctly from an empty list result.
	ErrDocumentNotFound = errors.New("document not found")
)

type Store interface {
	DocumentStore
	// Transaction runs f against a transactional view of the store. Every
	// compound lifecycle operation uses this so that reading the version
	// collection and persisting the updated record happen as one unit.
	Transaction(ctx context.Context, f func(tx Store) error) error
	Migrate() error
}

type DocumentStore interface {
	// CreateDocument creates a new document. The store assigns the id.
	CreateDocument(ctx context.Context, doc *model.Document) error
	// GetDocument retrieves a document by id.
	GetDocument(ctx context.Context, id uint) (*model.Document, error)
	// ListDocuments retrieves all documents.
	ListDocuments(ctx context.Context) ([]*model.Document, error)
	// ListDocumentsByOwner retrieves the documents owned by the given actor.
	ListDocumentsByOwner(ctx context.Context, ownerID string) ([]*model.Document, error)
	// ListDocumentsByStatus retrieves documents whose aggregate status matches.
	ListDocumentsByStatus(ctx context.Context, status model.Status) ([]*model.Document, error)
	// UpdateDocument persists the whole document record.
	UpdateDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument soft deletes a document by id.
	DeleteDocument(ctx context.Context, id uint) error
	// EraseDocument hard deletes a document by id.
	EraseDocument(ctx context.Context, id uint) error
}
