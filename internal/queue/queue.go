package queue

import (
	"context"
	"time"
)

const (
	EventVersionCreated  = "version.created"
	EventVersionApproved = "version.approved"
	EventVersionRejected = "version.rejected"
	EventDocumentDeleted = "document.deleted"
)

// Event is a moderation lifecycle notification. Publishing is best effort:
// the engine logs failed publishes but never fails the operation over them.
type Event struct {
	Kind       string    `json:"kind"`
	DocumentID uint      `json:"document_id"`
	Version    int64     `json:"version,omitempty"`
	Actor      string    `json:"actor,omitempty"`
	At         time.Time `json:"at"`
}

type EventQueue interface {
	// Publish appends a lifecycle event to the queue.
	Publish(ctx context.Context, event Event) error
	Close()
}

// Noop discards events. Used by tests and when no broker is configured.
type Noop struct {
}

func NewNoop() Noop {
	return Noop{}
}

func (n Noop) Publish(ctx context.Context, event Event) error {
	return nil
}

func (n Noop) Close() {
}
