package blob

import (
	"context"
	"errors"
	"io"
	"strconv"
	"sync"
)

// ErrNotFound is returned when deleting a reference that does not exist.
var ErrNotFound = errors.New("blob not found")

// Store is the blob storage collaborator. The lifecycle engine uploads a
// submitted file before persisting the new version's file_url and treats the
// returned reference as opaque.
type Store interface {
	// Upload stores the blob and returns a stable reference for it.
	Upload(ctx context.Context, r io.Reader, suggestedName string) (string, error)
	// Delete removes the blob behind a reference.
	Delete(ctx context.Context, ref string) error
}

// MemoryStore keeps blobs in memory. Used by tests and as a fallback when no
// object store is configured.
type MemoryStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
	seq   int
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		blobs: make(map[string][]byte),
	}
}

func (m *MemoryStore) Upload(ctx context.Context, r io.Reader, suggestedName string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq++
	ref := "memory://" + strconv.Itoa(m.seq) + "/" + suggestedName
	m.blobs[ref] = data
	return ref, nil
}

func (m *MemoryStore) Delete(ctx context.Context, ref string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.blobs[ref]; !ok {
		return ErrNotFound
	}
	delete(m.blobs, ref)
	return nil
}

// Get returns a stored blob, for test assertions.
func (m *MemoryStore) Get(ref string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	data, ok := m.blobs[ref]
	return data, ok
}
