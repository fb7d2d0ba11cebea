package store

import (
	"context"
	"errors"

	"github.com/papyri/archive/internal/model"
	"gorm.io/gorm"
)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{
		db: db,
	}
}

var _ Store = (*GormStore)(nil)

type GormStore struct {
	db *gorm.DB
}

func (g *GormStore) CreateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Create(doc).Error
}

func (g *GormStore) GetDocument(ctx context.Context, id uint) (*model.Document, error) {
	var doc model.Document
	err := g.db.WithContext(ctx).Where("id = ?", id).First(&doc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (g *GormStore) ListDocuments(ctx context.Context) ([]*model.Document, error) {
	var docs []*model.Document
	err := g.db.WithContext(ctx).Order("id").Find(&docs).Error
	return docs, err
}

func (g *GormStore) ListDocumentsByOwner(ctx context.Context, ownerID string) ([]*model.Document, error) {
	var docs []*model.Document
	err := g.db.WithContext(ctx).Where("owner_id = ?", ownerID).Order("id").Find(&docs).Error
	return docs, err
}

func (g *GormStore) ListDocumentsByStatus(ctx context.Context, status model.Status) ([]*model.Document, error) {
	var docs []*model.Document
	err := g.db.WithContext(ctx).Where("status = ?", status).Order("id").Find(&docs).Error
	return docs, err
}

func (g *GormStore) UpdateDocument(ctx context.Context, doc *model.Document) error {
	return g.db.WithContext(ctx).Save(doc).Error
}

func (g *GormStore) DeleteDocument(ctx context.Context, id uint) error {
	return g.db.WithContext(ctx).Delete(&model.Document{}, id).Error
}

func (g *GormStore) EraseDocument(ctx context.Context, id uint) error {
	return g.db.WithContext(ctx).Unscoped().Delete(&model.Document{}, id).Error
}

func (g *GormStore) Migrate() error {
	return model.Migrate(g.db)
}

func (g *GormStore) Transaction(ctx context.Context, f func(tx Store) error) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return f(&GormStore{db: tx})
	})
}
