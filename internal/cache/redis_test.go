package cache

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/papyri/archive/internal/compress"
	"github.com/papyri/archive/internal/model"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
)

func newTestCache(t *testing.T, encoder compress.Compress) *RedisDocumentCache {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return NewRedisDocumentCacheWithClient(client, encoder)
}

func TestRedisDocumentCache(t *testing.T) {
	cache := newTestCache(t, compress.NewNop())

	// miss
	doc, err := cache.GetDocument(context.TODO(), 1)
	assert.NoError(t, err)
	assert.Nil(t, doc)

	err = cache.SetDocument(context.TODO(), &model.Document{
		ID:     1,
		Title:  "cached scroll",
		Status: model.StatusPending,
	})
	assert.NoError(t, err)

	doc, err = cache.GetDocument(context.TODO(), 1)
	assert.NoError(t, err)
	assert.NotNil(t, doc)
	assert.Equal(t, "cached scroll", doc.Title)
	assert.Equal(t, model.StatusPending, doc.Status)

	err = cache.DeleteDocument(context.TODO(), 1)
	assert.NoError(t, err)

	doc, err = cache.GetDocument(context.TODO(), 1)
	assert.NoError(t, err)
	assert.Nil(t, doc)
}

func TestRedisDocumentCache_Encoders(t *testing.T) {
	for _, name := range []string{"nop", "gzip", "brotli", "lz4"} {
		t.Run(name, func(t *testing.T) {
			cache := newTestCache(t, compress.FromName(name))

			err := cache.SetDocument(context.TODO(), &model.Document{
				ID:       7,
				Title:    "compressed scroll",
				Contents: "the same phrase repeated, the same phrase repeated",
			})
			assert.NoError(t, err)

			doc, err := cache.GetDocument(context.TODO(), 7)
			assert.NoError(t, err)
			assert.NotNil(t, doc)
			assert.Equal(t, "compressed scroll", doc.Title)
		})
	}
}
