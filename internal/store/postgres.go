package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jiaqili/fitroom/pkg/models"
)

// PostgresStore implements the Store interface using pgx/v5. It exists so
// session state can outlive a single process; the in-memory store remains the
// default deployment.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Ping checks database connectivity.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) InsertSession(ctx context.Context, session *models.Session) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO sessions (id, status, progress, user_image_url, clothing_image_url,
		                       fitting_style, effect_intensity, background_type, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		session.ID, session.Status, session.Progress, session.UserImageURL, session.ClothingImageURL,
		session.Settings.FittingStyle, session.Settings.EffectIntensity, session.BackgroundType,
		session.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	var (
		session        models.Session
		resultImageURL *string
		analysis       *string
		suggestions    *string
	)
	err := s.pool.QueryRow(ctx,
		`SELECT id, status, progress, user_image_url, clothing_image_url,
		        fitting_style, effect_intensity, background_type,
		        result_image_url, analysis, suggestions, error_message,
		        created_at, completed_at
		 FROM sessions WHERE id = $1`, id,
	).Scan(&session.ID, &session.Status, &session.Progress, &session.UserImageURL,
		&session.ClothingImageURL, &session.Settings.FittingStyle, &session.Settings.EffectIntensity,
		&session.BackgroundType, &resultImageURL, &analysis, &suggestions, &session.ErrorMessage,
		&session.CreatedAt, &session.CompletedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	if resultImageURL != nil {
		session.Result = &models.TryOnResult{
			ResultImageURL: *resultImageURL,
			Analysis:       deref(analysis),
			Suggestions:    deref(suggestions),
		}
	}
	return &session, nil
}

// UpdateProgress raises progress for a still-processing session. The WHERE
// clause keeps both invariants: terminal states are absorbing and progress
// never decreases.
func (s *PostgresStore) UpdateProgress(ctx context.Context, id string, progress int) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions SET progress = $2
		 WHERE id = $1 AND status = 'processing' AND progress < $2`, id, progress)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.errIfMissing(ctx, id)
	}
	return nil
}

func (s *PostgresStore) CompleteSession(ctx context.Context, id string, result models.TryOnResult) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions
		 SET status = 'completed', progress = 100, result_image_url = $2,
		     analysis = $3, suggestions = $4, error_message = NULL, completed_at = NOW()
		 WHERE id = $1 AND status = 'processing'`,
		id, result.ResultImageURL, result.Analysis, result.Suggestions)
	if err != nil {
		return fmt.Errorf("complete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.errIfMissing(ctx, id)
	}
	return nil
}

func (s *PostgresStore) FailSession(ctx context.Context, id string, message string) error {
	tag, err := s.pool.Exec(ctx,
		`UPDATE sessions
		 SET status = 'failed', error_message = $2,
		     result_image_url = NULL, analysis = NULL, suggestions = NULL, completed_at = NOW()
		 WHERE id = $1 AND status = 'processing'`, id, message)
	if err != nil {
		return fmt.Errorf("fail session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return s.errIfMissing(ctx, id)
	}
	return nil
}

func (s *PostgresStore) EvictTerminal(ctx context.Context, olderThan time.Duration) (int, error) {
	cutoff := time.Now().UTC().Add(-olderThan)
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM sessions
		 WHERE status IN ('completed', 'failed') AND completed_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("evict sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// errIfMissing distinguishes "no such session" from "guarded update skipped a
// terminal session"; only the former is an error.
func (s *PostgresStore) errIfMissing(ctx context.Context, id string) error {
	var exists bool
	err := s.pool.QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM sessions WHERE id = $1)`, id).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check session: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

var _ Store = (*PostgresStore)(nil)
