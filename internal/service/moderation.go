package service

import (
	"context"
	"sort"
	"sync"

	"github.com/papyri/archive/internal/model"
	"github.com/papyri/archive/internal/store"
	"github.com/sirupsen/logrus"
)

// WorklistItem is one version flattened out of its document, with enough
// context for a moderator to act on it.
type WorklistItem struct {
	DocumentID    uint          `json:"document_id"`
	DocumentTitle string        `json:"document_title"`
	OwnerID       string        `json:"owner_id"`
	Version       model.Version `json:"version"`
}

// NewModerationService creates a new ModerationService.
func NewModerationService(store store.Store, docs *DocumentService) *ModerationService {
	return &ModerationService{
		store: store,
		docs:  docs,
	}
}

// ModerationService produces the cross-document moderation worklist. Failures
// on the read path are recorded rather than raised, so one broken document
// never blocks the rest of the list; callers surface LastError as a
// dismissible notice.
type ModerationService struct {
	store store.Store
	docs  *DocumentService

	mu      sync.Mutex
	lastErr error
}

// Worklist flattens every document's versions into one list filtered by
// status, sorted by version number descending across documents. Legacy
// documents are seeded on the way through; seeding is idempotent.
func (m *ModerationService) Worklist(ctx context.Context, filter model.Filter) []WorklistItem {
	docs, err := m.store.ListDocuments(ctx)
	if err != nil {
		logrus.Errorf("listing documents for worklist: %v", err)
		m.record(err)
		return []WorklistItem{}
	}

	items := make([]WorklistItem, 0)
	for _, doc := range docs {
		versions, err := m.docs.FetchVersions(ctx, doc.ID)
		if err != nil {
			logrus.Errorf("fetching versions for document %d: %v", doc.ID, err)
			m.record(err)
			continue
		}

		for _, v := range versions {
			if !filter.Matches(v.Status) {
				continue
			}
			items = append(items, WorklistItem{
				DocumentID:    doc.ID,
				DocumentTitle: doc.Title,
				OwnerID:       doc.OwnerID,
				Version:       v,
			})
		}
	}

	sort.Slice(items, func(i, j int) bool {
		if items[i].Version.V != items[j].Version.V {
			return items[i].Version.V > items[j].Version.V
		}
		return items[i].DocumentID > items[j].DocumentID
	})

	return items
}

// ApproveVersion approves one version and returns the refreshed worklist.
func (m *ModerationService) ApproveVersion(ctx context.Context, id uint, versionNumber int64, filter model.Filter, actor string) ([]WorklistItem, error) {
	if _, err := m.docs.ApproveVersion(ctx, id, versionNumber, actor); err != nil {
		return nil, err
	}
	return m.Worklist(ctx, filter), nil
}

// RejectVersion rejects one version and returns the refreshed worklist.
func (m *ModerationService) RejectVersion(ctx context.Context, id uint, versionNumber int64, filter model.Filter, actor string) ([]WorklistItem, error) {
	if _, err := m.docs.RejectVersion(ctx, id, versionNumber, actor); err != nil {
		return nil, err
	}
	return m.Worklist(ctx, filter), nil
}

// LastError returns the most recent recorded read-path failure.
func (m *ModerationService) LastError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastErr
}

// ClearError dismisses the recorded failure.
func (m *ModerationService) ClearError() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = nil
}

func (m *ModerationService) record(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastErr = err
}
