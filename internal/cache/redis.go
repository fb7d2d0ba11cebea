package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/papyri/archive/internal/compress"
	"github.com/papyri/archive/internal/model"
	redis "github.com/redis/go-redis/v9"
)

const documentTTL = time.Hour

func documentKey(id uint) string {
	return "document:" + strconv.FormatUint(uint64(id), 10)
}

var _ DocumentCache = (*RedisDocumentCache)(nil)

type RedisDocumentCache struct {
	client  *redis.Client
	encoder compress.Compress
}

// NewRedisDocumentCache connects to redis at addr and caches documents with
// the given payload encoder.
func NewRedisDocumentCache(addr string, encoder compress.Compress) *RedisDocumentCache {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "", // No password set
		DB:       0,  // Use default DB
	})

	return &RedisDocumentCache{client: client, encoder: encoder}
}

// NewRedisDocumentCacheWithClient wraps an existing client. Tests use this
// with miniredis.
func NewRedisDocumentCacheWithClient(client *redis.Client, encoder compress.Compress) *RedisDocumentCache {
	return &RedisDocumentCache{client: client, encoder: encoder}
}

func (r *RedisDocumentCache) GetDocument(ctx context.Context, id uint) (*model.Document, error) {
	res := r.client.Get(ctx, documentKey(id))
	if res.Err() != nil {
		if errors.Is(res.Err(), redis.Nil) {
			return nil, nil
		}
		return nil, res.Err()
	}

	buf, err := res.Bytes()
	if err != nil {
		return nil, err
	}

	data, err := r.encoder.Decode(buf)
	if err != nil {
		return nil, err
	}

	doc := &model.Document{}
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, err
	}

	return doc, nil
}

func (r *RedisDocumentCache) SetDocument(ctx context.Context, doc *model.Document) error {
	marshal, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	data, err := r.encoder.Encode(marshal)
	if err != nil {
		return err
	}

	return r.client.Set(ctx, documentKey(doc.ID), data, documentTTL).Err()
}

func (r *RedisDocumentCache) DeleteDocument(ctx context.Context, id uint) error {
	return r.client.Del(ctx, documentKey(id)).Err()
}
