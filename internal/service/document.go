package service

import (
	"context"
	"fmt"
	"io"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/papyri/archive/internal/blob"
	"github.com/papyri/archive/internal/cache"
	"github.com/papyri/archive/internal/model"
	"github.com/papyri/archive/internal/queue"
	"github.com/papyri/archive/internal/store"
	"github.com/sirupsen/logrus"
)

// NewDocumentService creates a new DocumentService.
func NewDocumentService(store store.Store, blobs blob.Store, cache cache.DocumentCache, events queue.EventQueue) *DocumentService {
	return &DocumentService{
		store:  store,
		blobs:  blobs,
		cache:  cache,
		events: events,
	}
}

// DocumentService owns the document lifecycle: submissions, version history
// and the aggregate fields derived from it. Every compound operation runs as
// a single store transaction so the version collection and the aggregate
// fields are never persisted apart. Across separate processes without a
// serializable store the last writer wins; that race is a documented
// limitation of the target store.
type DocumentService struct {
	store  store.Store
	blobs  blob.Store
	cache  cache.DocumentCache
	events queue.EventQueue
}

type CreateDocumentInput struct {
	OwnerID    string
	OwnerEmail string
	Title      string
	Type       string
	Contents   string
	Tags       []string
	Notes      string
	File       io.Reader
	FileName   string
}

func (in CreateDocumentInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.OwnerID, validation.Required),
		validation.Field(&in.OwnerEmail, is.EmailFormat),
		validation.Field(&in.Title, validation.Required),
		validation.Field(&in.Type, validation.Required),
	)
}

// CreateDocument creates a document with its implicit first version, pending
// moderation.
func (d *DocumentService) CreateDocument(ctx context.Context, in CreateDocumentInput) (*model.Document, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var fileURL string
	if in.File != nil {
		ref, err := d.blobs.Upload(ctx, in.File, in.FileName)
		if err != nil {
			return nil, fmt.Errorf("upload attachment: %w", err)
		}
		fileURL = ref
	}

	doc := &model.Document{
		OwnerID:        in.OwnerID,
		OwnerEmail:     in.OwnerEmail,
		Title:          in.Title,
		Type:           in.Type,
		Contents:       in.Contents,
		Status:         model.StatusPending,
		CurrentVersion: 1,
		AttachFile:     fileURL,
		LastEditedBy:   in.OwnerID,
	}
	if err := doc.SetTags(in.Tags); err != nil {
		return nil, err
	}

	if err := doc.SetVersions([]model.Version{{
		V:         1,
		FileURL:   fileURL,
		Title:     in.Title,
		Contents:  in.Contents,
		Tags:      in.Tags,
		Status:    model.StatusPending,
		Notes:     in.Notes,
		CreatedAt: time.Now(),
		CreatedBy: in.OwnerID,
	}}); err != nil {
		return nil, err
	}

	if err := d.store.CreateDocument(ctx, doc); err != nil {
		return nil, err
	}

	d.publish(ctx, queue.EventVersionCreated, doc.ID, 1, in.OwnerID)

	return doc, nil
}

// GetDocument retrieves a document, reading through the cache.
func (d *DocumentService) GetDocument(ctx context.Context, id uint) (*model.Document, error) {
	cached, err := d.cache.GetDocument(ctx, id)
	if err != nil {
		logrus.Errorf("cache read for document %d: %v", id, err)
	}
	if cached != nil {
		return cached, nil
	}

	doc, err := d.store.GetDocument(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := d.cache.SetDocument(ctx, doc); err != nil {
		logrus.Errorf("cache write for document %d: %v", id, err)
	}

	return doc, nil
}

// ListDocuments lists all documents.
func (d *DocumentService) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	return d.store.ListDocuments(ctx)
}

// ListDocumentsByOwner lists the documents owned by an actor.
func (d *DocumentService) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]*model.Document, error) {
	return d.store.ListDocumentsByOwner(ctx, ownerID)
}

// ListDocumentsByStatus lists documents by aggregate status.
func (d *DocumentService) ListDocumentsByStatus(ctx context.Context, status model.Status) ([]*model.Document, error) {
	return d.store.ListDocumentsByStatus(ctx, status)
}

type UpdateDocumentInput struct {
	Title    *string
	Type     *string
	Contents *string
	Tags     []string
	Actor    string
}

// UpdateDocument updates document metadata. Version history is untouched;
// new content goes through CreateNewVersion.
func (d *DocumentService) UpdateDocument(ctx context.Context, id uint, in UpdateDocumentInput) (*model.Document, error) {
	var doc *model.Document

	err := d.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		doc, err = tx.GetDocument(ctx, id)
		if err != nil {
			return err
		}

		if in.Title != nil {
			doc.Title = *in.Title
		}
		if in.Type != nil {
			doc.Type = *in.Type
		}
		if in.Contents != nil {
			doc.Contents = *in.Contents
		}
		if in.Tags != nil {
			if err := doc.SetTags(in.Tags); err != nil {
				return err
			}
		}
		doc.LastEditedBy = in.Actor

		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	d.invalidate(ctx, id)

	return doc, nil
}

// DeleteDocument soft deletes a document, invalidating all its versions.
func (d *DocumentService) DeleteDocument(ctx context.Context, id uint, actor string) error {
	if _, err := d.store.GetDocument(ctx, id); err != nil {
		return err
	}

	if err := d.store.DeleteDocument(ctx, id); err != nil {
		return err
	}

	d.invalidate(ctx, id)
	d.publish(ctx, queue.EventDocumentDeleted, id, 0, actor)

	return nil
}

// EraseDocument hard deletes a document and the blobs behind its versions.
func (d *DocumentService) EraseDocument(ctx context.Context, id uint, actor string) error {
	doc, err := d.store.GetDocument(ctx, id)
	if err != nil {
		return err
	}

	for _, v := range NormalizeVersions(doc) {
		if v.FileURL == "" {
			continue
		}
		if err := d.blobs.Delete(ctx, v.FileURL); err != nil && err != blob.ErrNotFound {
			logrus.Errorf("deleting blob %s for document %d: %v", v.FileURL, id, err)
		}
	}

	if err := d.store.EraseDocument(ctx, id); err != nil {
		return err
	}

	d.invalidate(ctx, id)
	d.publish(ctx, queue.EventDocumentDeleted, id, 0, actor)

	return nil
}

type NewVersionInput struct {
	Title    string
	Contents string
	Tags     []string
	Notes    string
	File     io.Reader
	FileName string
	Actor    string
}

// CreateNewVersion appends a pending version to the document's history and
// repoints the aggregate fields at it, all in one persisted write. Payload
// fields not overridden by the submitter are copied from the prior state.
func (d *DocumentService) CreateNewVersion(ctx context.Context, id uint, in NewVersionInput) (*model.Document, error) {
	var doc *model.Document
	var next int64

	err := d.store.Transaction(ctx, func(tx store.Store) error {
		var err error
		doc, err = tx.GetDocument(ctx, id)
		if err != nil {
			return err
		}

		versions := NormalizeVersions(doc)

		// One past the current pointer, but never below an existing number:
		// a rejection fallback can move the pointer backward and version
		// numbers are never reused.
		next = doc.CurrentVersion + 1
		if mv := maxVersionNumber(versions); mv >= next {
			next = mv + 1
		}
		if next <= 0 {
			next = 1
		}

		fileURL := doc.AttachFile
		if in.File != nil {
			ref, err := d.blobs.Upload(ctx, in.File, in.FileName)
			if err != nil {
				return fmt.Errorf("upload attachment: %w", err)
			}
			fileURL = ref
		}

		version := model.Version{
			V:         next,
			FileURL:   fileURL,
			Title:     in.Title,
			Contents:  in.Contents,
			Tags:      in.Tags,
			Status:    model.StatusPending,
			Notes:     in.Notes,
			CreatedAt: time.Now(),
			CreatedBy: in.Actor,
		}

		var prev *model.Version
		if idx := currentOrLatest(versions, doc.CurrentVersion); idx >= 0 {
			prev = &versions[idx]
		}
		if version.Title == "" {
			if prev != nil {
				version.Title = prev.Title
			} else {
				version.Title = doc.Title
			}
		}
		if version.Contents == "" {
			if prev != nil {
				version.Contents = prev.Contents
			} else {
				version.Contents = doc.Contents
			}
		}
		if version.Tags == nil {
			if prev != nil {
				version.Tags = prev.Tags
			} else {
				version.Tags = doc.TagList()
			}
		}

		versions = append(versions, version)
		if err := doc.SetVersions(versions); err != nil {
			return err
		}

		doc.CurrentVersion = next
		doc.AttachFile = fileURL
		doc.Status = model.StatusPending
		doc.LastEditedBy = in.Actor

		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	d.invalidate(ctx, id)
	d.publish(ctx, queue.EventVersionCreated, id, next, in.Actor)

	return doc, nil
}

// FetchVersions returns the document's ordered version history, persisting
// the synthesized initial version for legacy documents on first access.
// Safe to call repeatedly; once a proper list is stored it is a pure read.
func (d *DocumentService) FetchVersions(ctx context.Context, id uint) ([]model.Version, error) {
	var versions []model.Version
	var seeded bool

	err := d.store.Transaction(ctx, func(tx store.Store) error {
		doc, err := tx.GetDocument(ctx, id)
		if err != nil {
			return err
		}

		versions = NormalizeVersions(doc)
		if len(versions) == 0 || hasVersionList(doc) {
			return nil
		}

		// legacy document: make the synthesized history canonical
		if err := doc.SetVersions(versions); err != nil {
			return err
		}
		if doc.CurrentVersion <= 0 {
			doc.CurrentVersion = versions[len(versions)-1].V
		}
		seeded = true

		return tx.UpdateDocument(ctx, doc)
	})
	if err != nil {
		return nil, err
	}

	if seeded {
		logrus.Infof("seeded initial version for legacy document %d", id)
		d.invalidate(ctx, id)
	}

	return versions, nil
}

func (d *DocumentService) invalidate(ctx context.Context, id uint) {
	if err := d.cache.DeleteDocument(ctx, id); err != nil {
		logrus.Errorf("cache invalidate for document %d: %v", id, err)
	}
}

func (d *DocumentService) publish(ctx context.Context, kind string, id uint, version int64, actor string) {
	err := d.events.Publish(ctx, queue.Event{
		Kind:       kind,
		DocumentID: id,
		Version:    version,
		Actor:      actor,
		At:         time.Now(),
	})
	if err != nil {
		logrus.Errorf("publishing %s for document %d: %v", kind, id, err)
	}
}
