package service

import (
	"context"

	"github.com/papyri/archive/internal/model"
	"github.com/papyri/archive/internal/queue"
	"github.com/papyri/archive/internal/store"
)

// Per-version moderation is idempotent and reversible: pending, approved and
// rejected versions can all be re-moderated, and no transition ever removes
// a version.

// SetCurrentVersionStatus overwrites the status of the version the current
// pointer names, falling back to the numerically highest version when the
// pointer is stale. No-op for a document with no versions.
func (d *DocumentService) SetCurrentVersionStatus(ctx context.Context, id uint, status model.Status) error {
	var touched bool

	err := d.store.Transaction(ctx, func(tx store.Store) error {
		doc, err := tx.GetDocument(ctx, id)
		if err != nil {
			return err
		}

		versions := NormalizeVersions(doc)
		idx := currentOrLatest(versions, doc.CurrentVersion)
		if idx < 0 {
			return nil
		}

		versions[idx].Status = status
		if err := doc.SetVersions(versions); err != nil {
			return err
		}
		touched = true

		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return err
	}

	if touched {
		d.invalidate(ctx, id)
	}

	return nil
}

// recomputeAggregate re-derives the document's aggregate fields from the
// version collection. Priority: the approved version with the highest number
// wins; otherwise any pending version keeps the document pending; otherwise
// everything is rejected. Reports whether any aggregate field changed, so
// repeated calls without an intervening version change are no-ops.
func recomputeAggregate(doc *model.Document, versions []model.Version) bool {
	status, current, file := doc.Status, doc.CurrentVersion, doc.AttachFile

	if best := latestApproved(versions); best >= 0 {
		doc.Status = model.StatusApproved
		doc.CurrentVersion = versions[best].V
		doc.AttachFile = versions[best].FileURL
	} else if anyPending(versions) {
		doc.Status = model.StatusPending
	} else if len(versions) > 0 {
		doc.Status = model.StatusRejected
	}

	return doc.Status != status || doc.CurrentVersion != current || doc.AttachFile != file
}

// Recompute re-derives the aggregate fields after a version-level change.
// Idempotent: a second call with no intervening mutation persists nothing.
func (d *DocumentService) Recompute(ctx context.Context, id uint) (*model.Document, error) {
	var doc *model.Document
	var changed bool

	err := d.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		doc, err = tx.GetDocument(ctx, id)
		if err != nil {
			return err
		}

		if changed = recomputeAggregate(doc, NormalizeVersions(doc)); !changed {
			return nil
		}

		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	if changed {
		d.invalidate(ctx, id)
	}

	return doc, nil
}

// ApproveVersion approves the version with the exact number and promotes it:
// the document's aggregate fields repoint to it even when a newer pending
// version exists.
func (d *DocumentService) ApproveVersion(ctx context.Context, id uint, versionNumber int64, actor string) (*model.Document, error) {
	var doc *model.Document

	err := d.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		doc, err = tx.GetDocument(ctx, id)
		if err != nil {
			return err
		}

		versions := NormalizeVersions(doc)
		if len(versions) == 0 {
			return ErrNoVersions
		}

		idx := findVersion(versions, versionNumber)
		if idx < 0 {
			return ErrVersionNotFound
		}

		versions[idx].Status = model.StatusApproved
		if err := doc.SetVersions(versions); err != nil {
			return err
		}

		// approval always promotes
		doc.Status = model.StatusApproved
		doc.CurrentVersion = versions[idx].V
		doc.AttachFile = versions[idx].FileURL
		doc.LastEditedBy = actor

		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	d.invalidate(ctx, id)
	d.publish(ctx, queue.EventVersionApproved, id, versionNumber, actor)

	return doc, nil
}

// RejectVersion rejects the version with the exact number and re-derives the
// aggregate fields, so rejecting the active version falls back to the best
// remaining approved version instead of leaving the document approved.
func (d *DocumentService) RejectVersion(ctx context.Context, id uint, versionNumber int64, actor string) (*model.Document, error) {
	var doc *model.Document

	err := d.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		doc, err = tx.GetDocument(ctx, id)
		if err != nil {
			return err
		}

		versions := NormalizeVersions(doc)
		if len(versions) == 0 {
			return ErrNoVersions
		}

		idx := findVersion(versions, versionNumber)
		if idx < 0 {
			return ErrVersionNotFound
		}

		versions[idx].Status = model.StatusRejected
		if err := doc.SetVersions(versions); err != nil {
			return err
		}

		recomputeAggregate(doc, versions)
		doc.LastEditedBy = actor

		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	d.invalidate(ctx, id)
	d.publish(ctx, queue.EventVersionRejected, id, versionNumber, actor)

	return doc, nil
}

// ApproveDocument is the single-version moderation flow: it marks the current
// version and the document approved in one write, without targeting a
// specific version number.
func (d *DocumentService) ApproveDocument(ctx context.Context, id uint, actor string) (*model.Document, error) {
	return d.setDocumentStatus(ctx, id, model.StatusApproved, queue.EventVersionApproved, actor)
}

// RejectDocument is the rejecting counterpart of ApproveDocument.
func (d *DocumentService) RejectDocument(ctx context.Context, id uint, actor string) (*model.Document, error) {
	return d.setDocumentStatus(ctx, id, model.StatusRejected, queue.EventVersionRejected, actor)
}

func (d *DocumentService) setDocumentStatus(ctx context.Context, id uint, status model.Status, event string, actor string) (*model.Document, error) {
	var doc *model.Document
	var version int64

	err := d.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		doc, err = tx.GetDocument(ctx, id)
		if err != nil {
			return err
		}

		versions := NormalizeVersions(doc)
		if idx := currentOrLatest(versions, doc.CurrentVersion); idx >= 0 {
			versions[idx].Status = status
			version = versions[idx].V
			if err := doc.SetVersions(versions); err != nil {
				return err
			}
		}

		doc.Status = status
		doc.LastEditedBy = actor

		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	d.invalidate(ctx, id)
	d.publish(ctx, event, id, version, actor)

	return doc, nil
}
