package jobs

import (
	"context"
	"testing"

	"github.com/papyri/archive/internal/model"
	"github.com/papyri/archive/internal/queue"
	"github.com/papyri/archive/internal/service"
	"github.com/papyri/archive/internal/store"
	"github.com/papyri/archive/internal/tester"
	"github.com/stretchr/testify/assert"
)

func TestLegacySeeder_Run(t *testing.T) {
	tester.RemoveDBFile()
	tester.Setup()

	docStore := store.NewGormStore(tester.TestDB())
	docs := service.NewDocumentService(docStore, tester.Blobs(), tester.Cache(), queue.NewNoop())

	legacy := &model.Document{
		OwnerID:    "owner-1",
		Title:      "legacy scroll",
		Type:       "scroll",
		Status:     model.StatusPending,
		AttachFile: "file://legacy.pdf",
	}
	assert.NoError(t, docStore.CreateDocument(context.TODO(), legacy))

	bare := &model.Document{
		OwnerID: "owner-1",
		Title:   "metadata only",
		Type:    "note",
		Status:  model.StatusPending,
	}
	assert.NoError(t, docStore.CreateDocument(context.TODO(), bare))

	seeder := NewLegacySeeder("@every 10m", docStore, docs)
	assert.Equal(t, "@every 10m", seeder.Schedule())

	seeder.Run()

	seeded, err := docStore.GetDocument(context.TODO(), legacy.ID)
	assert.NoError(t, err)
	assert.NotEmpty(t, seeded.Versions)
	assert.Equal(t, int64(1), seeded.CurrentVersion)

	untouched, err := docStore.GetDocument(context.TODO(), bare.ID)
	assert.NoError(t, err)
	assert.Empty(t, untouched.Versions)

	// a second sweep changes nothing
	seeder.Run()
	again, err := docStore.GetDocument(context.TODO(), legacy.ID)
	assert.NoError(t, err)
	assert.True(t, seeded.UpdatedAt.Equal(again.UpdatedAt))
}
