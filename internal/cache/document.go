package cache

import (
	"context"

	"github.com/papyri/archive/internal/model"
)

// DocumentCache is a read-through cache in front of the document store.
// A miss returns (nil, nil).
type DocumentCache interface {
	// GetDocument gets a document from the cache.
	GetDocument(ctx context.Context, id uint) (*model.Document, error)
	// SetDocument sets a document in the cache.
	SetDocument(ctx context.Context, doc *model.Document) error
	// DeleteDocument drops a document from the cache. Called by every write
	// path so readers never see a stale aggregate after a lifecycle change.
	DeleteDocument(ctx context.Context, id uint) error
}
