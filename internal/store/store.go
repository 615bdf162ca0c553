// Package store holds session state. All persistence operations go through
// the Store interface so the backing implementation can be swapped without
// touching the try-on service.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/jiaqili/fitroom/pkg/models"
)

var ErrNotFound = errors.New("session not found")

// Store is the session registry. Implementations must support safe concurrent
// insertion and lookup across sessions; each session id is written only by
// the background task that owns it, so no per-session locking is required of
// callers. Terminal states are absorbing: once a session is completed or
// failed, UpdateProgress, CompleteSession and FailSession become no-ops for
// that id.
type Store interface {
	Ping(ctx context.Context) error

	InsertSession(ctx context.Context, session *models.Session) error
	// GetSession returns a snapshot copy; mutating it never affects the store.
	GetSession(ctx context.Context, id string) (*models.Session, error)

	UpdateProgress(ctx context.Context, id string, progress int) error
	CompleteSession(ctx context.Context, id string, result models.TryOnResult) error
	FailSession(ctx context.Context, id string, message string) error

	// EvictTerminal removes sessions that reached a terminal state more than
	// olderThan ago and returns how many were removed.
	EvictTerminal(ctx context.Context, olderThan time.Duration) (int, error)
}
