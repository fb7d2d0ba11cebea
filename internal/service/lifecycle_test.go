package service

import (
	"context"
	"testing"

	"github.com/papyri/archive/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestDocumentService_ApproveVersion_Promotes(t *testing.T) {
	docs, _, _ := newTestService(t)

	doc, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "charter",
		Type:    "charter",
	})
	assert.NoError(t, err)

	doc, err = docs.ApproveVersion(context.TODO(), doc.ID, 1, "mod-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusApproved, doc.Status)
	assert.Equal(t, int64(1), doc.CurrentVersion)
	assert.Equal(t, "mod-1", doc.LastEditedBy)

	versions := NormalizeVersions(doc)
	assert.Equal(t, model.StatusApproved, versions[0].Status)
}

func TestDocumentService_ApproveVersion_OlderVersion(t *testing.T) {
	docs, _, _ := newTestService(t)

	doc, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "decree",
		Type:    "decree",
	})
	assert.NoError(t, err)

	doc, err = docs.CreateNewVersion(context.TODO(), doc.ID, NewVersionInput{Actor: "owner-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), doc.CurrentVersion)

	// approval always promotes, even past a newer pending version
	doc, err = docs.ApproveVersion(context.TODO(), doc.ID, 1, "mod-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusApproved, doc.Status)
	assert.Equal(t, int64(1), doc.CurrentVersion)

	versions := NormalizeVersions(doc)
	assert.Equal(t, model.StatusApproved, versions[0].Status)
	assert.Equal(t, model.StatusPending, versions[1].Status)
}

func TestDocumentService_ApproveVersion_Errors(t *testing.T) {
	docs, docStore, _ := newTestService(t)

	doc, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "edict",
		Type:    "edict",
	})
	assert.NoError(t, err)

	_, err = docs.ApproveVersion(context.TODO(), doc.ID, 42, "mod-1")
	assert.ErrorIs(t, err, ErrVersionNotFound)

	empty := &model.Document{
		OwnerID: "owner-1",
		Title:   "empty history",
		Type:    "note",
		Status:  model.StatusPending,
	}
	err = docStore.CreateDocument(context.TODO(), empty)
	assert.NoError(t, err)

	_, err = docs.ApproveVersion(context.TODO(), empty.ID, 1, "mod-1")
	assert.ErrorIs(t, err, ErrNoVersions)

	_, err = docs.ApproveVersion(context.TODO(), 9999, 1, "mod-1")
	assert.ErrorIs(t, err, ErrDocumentNotFound)
}

func TestDocumentService_RejectVersion_FallsBack(t *testing.T) {
	docs, _, _ := newTestService(t)

	doc, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "almanac",
		Type:    "almanac",
	})
	assert.NoError(t, err)

	doc, err = docs.ApproveVersion(context.TODO(), doc.ID, 1, "mod-1")
	assert.NoError(t, err)

	doc, err = docs.CreateNewVersion(context.TODO(), doc.ID, NewVersionInput{Actor: "owner-1"})
	assert.NoError(t, err)
	assert.Equal(t, int64(2), doc.CurrentVersion)
	assert.Equal(t, model.StatusPending, doc.Status)

	doc, err = docs.ApproveVersion(context.TODO(), doc.ID, 2, "mod-1")
	assert.NoError(t, err)
	assert.Equal(t, int64(2), doc.CurrentVersion)

	// rejecting the active version falls back to the best remaining approved
	// one, not to pending
	doc, err = docs.RejectVersion(context.TODO(), doc.ID, 2, "mod-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusApproved, doc.Status)
	assert.Equal(t, int64(1), doc.CurrentVersion)
}

func TestDocumentService_RejectVersion_AllRejected(t *testing.T) {
	docs, _, _ := newTestService(t)

	doc, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "petition",
		Type:    "petition",
	})
	assert.NoError(t, err)

	doc, err = docs.CreateNewVersion(context.TODO(), doc.ID, NewVersionInput{Actor: "owner-1"})
	assert.NoError(t, err)

	doc, err = docs.RejectVersion(context.TODO(), doc.ID, 1, "mod-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, doc.Status)

	doc, err = docs.RejectVersion(context.TODO(), doc.ID, 2, "mod-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusRejected, doc.Status)
}

func TestDocumentService_Recompute_Idempotent(t *testing.T) {
	docs, docStore, _ := newTestService(t)

	doc, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "register",
		Type:    "register",
	})
	assert.NoError(t, err)

	// knock the aggregate out of sync with the version collection
	doc.Status = model.StatusRejected
	err = docStore.UpdateDocument(context.TODO(), doc)
	assert.NoError(t, err)

	first, err := docs.Recompute(context.TODO(), doc.ID)
	assert.NoError(t, err)
	assert.Equal(t, model.StatusPending, first.Status)

	afterFirst, err := docStore.GetDocument(context.TODO(), doc.ID)
	assert.NoError(t, err)

	second, err := docs.Recompute(context.TODO(), doc.ID)
	assert.NoError(t, err)
	assert.Equal(t, first.Status, second.Status)
	assert.Equal(t, first.CurrentVersion, second.CurrentVersion)
	assert.Equal(t, first.AttachFile, second.AttachFile)

	// no intervening change, nothing was persisted
	afterSecond, err := docStore.GetDocument(context.TODO(), doc.ID)
	assert.NoError(t, err)
	assert.True(t, afterFirst.UpdatedAt.Equal(afterSecond.UpdatedAt))
}

func TestDocumentService_ApproveDocument(t *testing.T) {
	docs, _, _ := newTestService(t)

	doc, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "deed",
		Type:    "deed",
	})
	assert.NoError(t, err)

	doc, err = docs.ApproveDocument(context.TODO(), doc.ID, "mod-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusApproved, doc.Status)

	versions := NormalizeVersions(doc)
	assert.Equal(t, model.StatusApproved, versions[0].Status)

	doc, err = docs.RejectDocument(context.TODO(), doc.ID, "mod-1")
	assert.NoError(t, err)
	assert.Equal(t, model.StatusRejected, doc.Status)

	versions = NormalizeVersions(doc)
	assert.Equal(t, model.StatusRejected, versions[0].Status)
}

func TestDocumentService_SetCurrentVersionStatus(t *testing.T) {
	docs, docStore, _ := newTestService(t)

	doc, err := docs.CreateDocument(context.TODO(), CreateDocumentInput{
		OwnerID: "owner-1",
		Title:   "will",
		Type:    "will",
	})
	assert.NoError(t, err)

	err = docs.SetCurrentVersionStatus(context.TODO(), doc.ID, model.StatusApproved)
	assert.NoError(t, err)

	stored, err := docStore.GetDocument(context.TODO(), doc.ID)
	assert.NoError(t, err)
	versions := NormalizeVersions(stored)
	assert.Equal(t, model.StatusApproved, versions[0].Status)
	// only the version status moves, the aggregate is recomputed separately
	assert.Equal(t, model.StatusPending, stored.Status)

	// a document without versions is a silent no-op
	empty := &model.Document{
		OwnerID: "owner-1",
		Title:   "no history",
		Type:    "note",
		Status:  model.StatusPending,
	}
	err = docStore.CreateDocument(context.TODO(), empty)
	assert.NoError(t, err)

	err = docs.SetCurrentVersionStatus(context.TODO(), empty.ID, model.StatusApproved)
	assert.NoError(t, err)
}
