package identity

import (
	"context"
	"errors"
)

type Role string

const (
	RoleOwner     Role = "owner"
	RoleModerator Role = "moderator"
)

// Actor is the authenticated identity performing an operation. The engine
// reads it for created_by/last_edited_by stamping and for owner-vs-moderator
// view filtering; it never writes it.
type Actor struct {
	ID    string
	Email string
	Role  Role
}

func (a Actor) IsModerator() bool {
	return a.Role == RoleModerator
}

var ErrNoActor = errors.New("no actor in context")

type contextKey struct{}

// WithActor returns a context carrying the actor.
func WithActor(ctx context.Context, actor Actor) context.Context {
	return context.WithValue(ctx, contextKey{}, actor)
}

// FromContext returns the actor stored in the context.
func FromContext(ctx context.Context) (Actor, error) {
	actor, ok := ctx.Value(contextKey{}).(Actor)
	if !ok {
		return Actor{}, ErrNoActor
	}
	return actor, nil
}
