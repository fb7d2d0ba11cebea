package tester

import (
	"os"

	"github.com/alicebob/miniredis/v2"
	"github.com/papyri/archive/internal/blob"
	"github.com/papyri/archive/internal/cache"
	"github.com/papyri/archive/internal/compress"
	"github.com/papyri/archive/internal/model"
	"github.com/redis/go-redis/v9"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const (
	testPath = "../../.test/"
)

var (
	db *gorm.DB
)

func Setup() {
	RemoveDBFile()

	_ = os.Setenv("ENV", "test")

	err := os.MkdirAll(testPath+"/db", os.ModePerm)
	if err != nil {
		panic(err)
	}

	db, err = gorm.Open(sqlite.Open(testPath+"db/archive.db"), &gorm.Config{})
	if err != nil {
		panic(err)
	}

	err = model.Migrate(db)
	if err != nil {
		panic(err)
	}
}

func TestDB() *gorm.DB {
	return db
}

func RemoveDBFile() {
	err := os.RemoveAll(testPath)
	if err != nil {
		panic(err)
	}
}

// Cache returns a document cache backed by an in-process redis.
func Cache() cache.DocumentCache {
	mr, err := miniredis.Run()
	if err != nil {
		panic(err)
	}

	client := redis.NewClient(&redis.Options{
		Addr: mr.Addr(),
	})

	return cache.NewRedisDocumentCacheWithClient(client, compress.NewNop())
}

// Blobs returns an in-memory blob store.
func Blobs() *blob.MemoryStore {
	return blob.NewMemoryStore()
}
