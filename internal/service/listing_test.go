package service

import (
	"context"
	"testing"

	"github.com/papyri/archive/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestListingService_RefreshAll(t *testing.T) {
	docs, _, _ := newTestService(t)
	listing := NewListingService(docs)

	mine, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "my scroll",
		Type:    "scroll",
	})
	assert.NoError(t, err)

	theirs, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-2",
		Title:   "their scroll",
		Type:    "scroll",
	})
	assert.NoError(t, err)

	_, err = docs.ApproveVersion(context.TODO(), theirs.ID, 1, "mod-1")
	assert.NoError(t, err)

	listing.RefreshAll(context.TODO(), "owner-1")
	assert.NoError(t, listing.LastError())

	all := listing.Documents()
	assert.Len(t, all, 2)

	owned := listing.OwnedDocuments()
	assert.Len(t, owned, 1)
	assert.Equal(t, mine.ID, owned[0].ID)

	approved := listing.Approved()
	assert.Len(t, approved, 1)
	assert.Equal(t, theirs.ID, approved[0].ID)

	assert.Len(t, listing.ApprovedOwned(), 0)

	// the views are copies, sharing no backing array with the facade
	all[0] = nil
	assert.NotNil(t, listing.Documents()[0])
}

func TestListingService_OwnedViewIsolatedPerRefresh(t *testing.T) {
	docs, _, _ := newTestService(t)
	listing := NewListingService(docs)

	mine, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "my scroll",
		Type:    "scroll",
	})
	assert.NoError(t, err)

	theirs, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-2",
		Title:   "their scroll",
		Type:    "scroll",
	})
	assert.NoError(t, err)

	first := listing.RefreshAll(context.TODO(), "owner-1")
	second := listing.RefreshAll(context.TODO(), "owner-2")

	// the first snapshot keeps owner-1's documents even after a refresh
	// for another owner has overwritten the cached view
	assert.Len(t, first.Owned, 1)
	assert.Equal(t, mine.ID, first.Owned[0].ID)
	assert.Equal(t, "owner-1", first.Owned[0].OwnerID)

	assert.Len(t, second.Owned, 1)
	assert.Equal(t, theirs.ID, second.Owned[0].ID)

	assert.Len(t, first.Documents, 2)
	assert.Len(t, second.Documents, 2)
}

func TestListingService_ClearError(t *testing.T) {
	docs, _, _ := newTestService(t)
	listing := NewListingService(docs)

	listing.record(assert.AnError)
	assert.Error(t, listing.LastError())

	listing.ClearError()
	assert.NoError(t, listing.LastError())
}

func TestSearch(t *testing.T) {
	docs := []*model.Document{
		{ID: 1, Title: "Harbor Ledger", Status: model.StatusApproved},
		{ID: 2, Title: "Temple Accounts", Status: model.StatusPending},
		{ID: 3, Title: "harbor census", Status: model.StatusRejected},
	}

	// empty query returns the input unchanged
	assert.Equal(t, docs, Search(docs, ""))

	byTitle := Search(docs, "HARBOR")
	assert.Len(t, byTitle, 2)
	assert.Equal(t, uint(1), byTitle[0].ID)
	assert.Equal(t, uint(3), byTitle[1].ID)

	byStatus := Search(docs, "pending")
	assert.Len(t, byStatus, 1)
	assert.Equal(t, uint(2), byStatus[0].ID)

	assert.Len(t, Search(docs, "no such thing"), 0)

	// pure: the input list is never mutated
	assert.Len(t, docs, 3)
	assert.Equal(t, "Harbor Ledger", docs[0].Title)
}
