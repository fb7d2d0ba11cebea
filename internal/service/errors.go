package service

import (
	"errors"

	"github.com/papyri/archive/internal/store"
)

var (
	// ErrDocumentNotFound is returned when a document id does not exist.
	ErrDocumentNotFound = store.ErrDocumentNotFound
	// ErrVersionNotFound is returned when a version number does not exist in
	// the document's history.
	ErrVersionNotFound = errors.New("version not found")
	// ErrNoVersions is returned when an operation requires versions and the
	// document has none.
	ErrNoVersions = errors.New("document has no versions")
)
