package store

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jiaqili/fitroom/pkg/models"
)

// MemoryStore keeps sessions in a process-local map. State does not survive a
// restart; a poll after restart sees ErrNotFound, which clients must treat as
// a lost session. This is the default backend.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*models.Session
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{sessions: make(map[string]*models.Session)}
}

func (s *MemoryStore) Ping(_ context.Context) error { return nil }

func (s *MemoryStore) InsertSession(_ context.Context, session *models.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.sessions[session.ID]; exists {
		return fmt.Errorf("insert session: duplicate id %q", session.ID)
	}
	s.sessions[session.ID] = session.Clone()
	return nil
}

func (s *MemoryStore) GetSession(_ context.Context, id string) (*models.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return session.Clone(), nil
}

func (s *MemoryStore) UpdateProgress(_ context.Context, id string, progress int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if session.Terminal() {
		return nil
	}
	// Progress is monotonic while processing.
	if progress > session.Progress {
		session.Progress = progress
	}
	return nil
}

func (s *MemoryStore) CompleteSession(_ context.Context, id string, result models.TryOnResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if session.Terminal() {
		return nil
	}
	now := time.Now().UTC()
	session.Status = models.SessionStatusCompleted
	session.Progress = 100
	session.Result = &result
	session.ErrorMessage = nil
	session.CompletedAt = &now
	return nil
}

func (s *MemoryStore) FailSession(_ context.Context, id string, message string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return ErrNotFound
	}
	if session.Terminal() {
		return nil
	}
	now := time.Now().UTC()
	session.Status = models.SessionStatusFailed
	session.ErrorMessage = &message
	session.Result = nil
	session.CompletedAt = &now
	return nil
}

func (s *MemoryStore) EvictTerminal(_ context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, session := range s.sessions {
		if session.Terminal() && session.CompletedAt != nil && session.CompletedAt.Before(cutoff) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed, nil
}

// Len reports the number of tracked sessions. Used by tests and diagnostics.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

var _ Store = (*MemoryStore)(nil)
