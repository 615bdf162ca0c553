// Package tryon contains the core try-on session lifecycle: accepting a
// generation request, running it off the request path, and projecting session
// state to pollers.
package tryon

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jiaqili/fitroom/internal/ai"
	"github.com/jiaqili/fitroom/internal/cache"
	"github.com/jiaqili/fitroom/internal/store"
	"github.com/jiaqili/fitroom/pkg/models"
)

// Progress checkpoints written by the background task.
const (
	progressFetched  = 10
	progressEncoded  = 30
	progressAnalyzed = 80
)

// defaultStatusTTL bounds the Redis status mirror when no retention window
// is configured.
const defaultStatusTTL = 30 * time.Minute

// Service orchestrates try-on sessions. Submit creates a session and launches
// its background task; Get projects session state for pollers. A session is
// mutated only by its own background task.
type Service struct {
	store     store.Store
	cache     cache.Cache
	provider  models.TryOnProvider
	fetcher   ImageFetcher
	timeout   time.Duration
	statusTTL time.Duration

	mu    sync.Mutex
	tasks map[string]*task
}

// task is the retained handle for one background job. Cancellation is a
// no-op today; the handle exists so an abort operation can be added without
// changing the submission contract.
type task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// NewService creates a Service. The timeout applies to the provider call
// only; the fetcher carries its own. statusTTL is how long the cached status
// mirror lives, normally the session retention window; non-positive values
// fall back to defaultStatusTTL.
func NewService(st store.Store, ca cache.Cache, provider models.TryOnProvider, fetcher ImageFetcher, timeout, statusTTL time.Duration) *Service {
	if statusTTL <= 0 {
		statusTTL = defaultStatusTTL
	}
	return &Service{
		store:     st,
		cache:     ca,
		provider:  provider,
		fetcher:   fetcher,
		timeout:   timeout,
		statusTTL: statusTTL,
		tasks:     make(map[string]*task),
	}
}

// Submit validates the request, creates a processing session, and dispatches
// the generation job in a background goroutine. It returns the new session
// immediately: completion is only observable by polling Get.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (*models.Session, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	session := &models.Session{
		ID:               "session_" + uuid.NewString(),
		Status:           models.SessionStatusProcessing,
		Progress:         0,
		UserImageURL:     req.UserImageURL,
		ClothingImageURL: req.ClothingImageURL,
		Settings:         req.Settings,
		BackgroundType:   req.BackgroundType,
		CreatedAt:        time.Now().UTC(),
	}

	if err := s.store.InsertSession(ctx, session); err != nil {
		return nil, fmt.Errorf("creating session: %w", err)
	}
	_ = s.cache.SetSessionStatus(ctx, session.ID, session.Status, s.statusTTL)

	jobCtx, cancel := context.WithCancel(context.Background())
	t := &task{cancel: cancel, done: make(chan struct{})}
	s.mu.Lock()
	s.tasks[session.ID] = t
	s.mu.Unlock()

	go s.runSession(jobCtx, t, session.Clone())

	return session, nil
}

// Get returns a snapshot of the session, or store.ErrNotFound. Safe to call
// concurrently and repeatedly.
func (s *Service) Get(ctx context.Context, id string) (*models.Session, error) {
	return s.store.GetSession(ctx, id)
}

// Cancel releases the retained task handle for a session. It does not
// interrupt a running job: once submitted, a job runs to completion or
// failure.
func (s *Service) Cancel(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tasks[id]; !ok {
		return store.ErrNotFound
	}
	delete(s.tasks, id)
	return nil
}

// Wait blocks until the session's background task finishes or ctx expires.
// Only tests and shutdown paths need it; pollers use Get.
func (s *Service) Wait(ctx context.Context, id string) error {
	s.mu.Lock()
	t, ok := s.tasks[id]
	s.mu.Unlock()
	if !ok {
		return nil
	}
	select {
	case <-t.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// runSession performs the generation job for one session. Every failure path
// ends in a terminal failed state; nothing escapes the goroutine.
func (s *Service) runSession(ctx context.Context, t *task, session *models.Session) {
	defer close(t.done)
	defer t.cancel()
	defer func() {
		s.mu.Lock()
		delete(s.tasks, session.ID)
		s.mu.Unlock()
	}()
	defer func() {
		if r := recover(); r != nil {
			slog.Error("panic in try-on session", "session_id", session.ID, "error", r)
			s.fail(session.ID, fmt.Sprintf("internal error: %v", r))
		}
	}()

	userImage, err := s.fetcher.Fetch(ctx, session.UserImageURL)
	if err != nil {
		s.fail(session.ID, fmt.Sprintf("fetching user image: %v", err))
		return
	}
	clothingImage, err := s.fetcher.Fetch(ctx, session.ClothingImageURL)
	if err != nil {
		s.fail(session.ID, fmt.Sprintf("fetching clothing image: %v", err))
		return
	}
	s.progress(session.ID, progressFetched)

	userB64 := base64.StdEncoding.EncodeToString(userImage)
	clothingB64 := base64.StdEncoding.EncodeToString(clothingImage)
	s.progress(session.ID, progressEncoded)

	analysisCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.provider.GenerateTryOn(analysisCtx, models.TryOnRequest{
		SessionID:           session.ID,
		UserImageBase64:     userB64,
		ClothingImageBase64: clothingB64,
		Settings:            session.Settings,
		BackgroundType:      session.BackgroundType,
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("%w: %v", ai.ErrInferenceTimeout, err)
		}
		s.fail(session.ID, fmt.Sprintf("generating try-on result: %v", err))
		return
	}
	s.progress(session.ID, progressAnalyzed)

	if err := s.store.CompleteSession(context.Background(), session.ID, result); err != nil {
		slog.Error("completing session", "session_id", session.ID, "error", err)
		return
	}
	_ = s.cache.SetSessionStatus(context.Background(), session.ID, models.SessionStatusCompleted, s.statusTTL)
	slog.Info("try-on session completed", "session_id", session.ID, "provider", s.provider.Name())
}

func (s *Service) progress(id string, value int) {
	if err := s.store.UpdateProgress(context.Background(), id, value); err != nil {
		slog.Error("updating session progress", "session_id", id, "progress", value, "error", err)
	}
}

func (s *Service) fail(id, message string) {
	ctx := context.Background()
	if err := s.store.FailSession(ctx, id, message); err != nil {
		slog.Error("failing session", "session_id", id, "error", err)
		return
	}
	_ = s.cache.SetSessionStatus(ctx, id, models.SessionStatusFailed, s.statusTTL)
	slog.Warn("try-on session failed", "session_id", id, "reason", message)
}
