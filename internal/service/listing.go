package service

import (
	"context"
	"strings"
	"sync"

	"github.com/papyri/archive/internal/model"
	"github.com/sirupsen/logrus"
)

// NewListingService creates a new ListingService.
func NewListingService(docs *DocumentService) *ListingService {
	return &ListingService{
		docs: docs,
	}
}

// ListingService is the read-side convenience over the lifecycle engine's
// state: cached global and owner-scoped document lists with approved-only
// views. Refresh failures are recorded, not raised, so the listing surface
// stays non-fatal.
type ListingService struct {
	docs *DocumentService

	mu      sync.RWMutex
	all     []*model.Document
	owned   []*model.Document
	lastErr error
}

// Listings is one refresh's view of the document lists: the global list,
// the requesting owner's list, and the approved-only filters of both.
type Listings struct {
	Documents     []*model.Document
	Owned         []*model.Document
	Approved      []*model.Document
	ApprovedOwned []*model.Document
}

// RefreshAll reloads the global list and the owner-scoped list and returns
// them as a snapshot bound to ownerID. The cached views are updated as a
// side effect, but the snapshot never reads them back: concurrent refreshes
// for different owners each get their own fetch. Partial failure is
// tolerated and recorded; the global view falls back to the previous
// (owner-neutral) list, the owned view comes back empty.
func (l *ListingService) RefreshAll(ctx context.Context, ownerID string) Listings {
	all, err := l.docs.ListDocuments(ctx)
	if err != nil {
		logrus.Errorf("refreshing document list: %v", err)
		l.record(err)
		all = l.Documents()
	} else {
		l.mu.Lock()
		l.all = all
		l.mu.Unlock()
	}

	owned, err := l.docs.ListDocumentsByOwner(ctx, ownerID)
	if err != nil {
		logrus.Errorf("refreshing documents for owner %s: %v", ownerID, err)
		l.record(err)
		owned = []*model.Document{}
	} else {
		l.mu.Lock()
		l.owned = owned
		l.mu.Unlock()
	}

	return Listings{
		Documents:     all,
		Owned:         owned,
		Approved:      filterApproved(all),
		ApprovedOwned: filterApproved(owned),
	}
}

// Documents returns the last refreshed global list.
func (l *ListingService) Documents() []*model.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*model.Document(nil), l.all...)
}

// OwnedDocuments returns the last refreshed owner-scoped list.
func (l *ListingService) OwnedDocuments() []*model.Document {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]*model.Document(nil), l.owned...)
}

// Approved returns the approved documents from the global view.
func (l *ListingService) Approved() []*model.Document {
	return filterApproved(l.Documents())
}

// ApprovedOwned returns the approved documents from the owner view.
func (l *ListingService) ApprovedOwned() []*model.Document {
	return filterApproved(l.OwnedDocuments())
}

// LastError returns the most recent recorded refresh failure.
func (l *ListingService) LastError() error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.lastErr
}

// ClearError dismisses the recorded failure.
func (l *ListingService) ClearError() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastErr = nil
}

func (l *ListingService) record(err error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lastErr = err
}

func filterApproved(docs []*model.Document) []*model.Document {
	approved := make([]*model.Document, 0)
	for _, doc := range docs {
		if doc.Status == model.StatusApproved {
			approved = append(approved, doc)
		}
	}
	return approved
}

// Search filters a document list by a case-insensitive substring match over
// title and status. An empty query returns the input unchanged. Pure.
func Search(docs []*model.Document, query string) []*model.Document {
	if query == "" {
		return docs
	}

	q := strings.ToLower(query)
	matched := make([]*model.Document, 0)
	for _, doc := range docs {
		if strings.Contains(strings.ToLower(doc.Title), q) ||
			strings.Contains(strings.ToLower(string(doc.Status)), q) {
			matched = append(matched, doc)
		}
	}
	return matched
}
