package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jiaqili/fitroom/internal/ai/mock"
	"github.com/jiaqili/fitroom/internal/api"
	"github.com/jiaqili/fitroom/internal/cache"
	"github.com/jiaqili/fitroom/internal/config"
	"github.com/jiaqili/fitroom/internal/store"
	"github.com/jiaqili/fitroom/internal/tryon"
	"github.com/jiaqili/fitroom/internal/upload"
	"github.com/jiaqili/fitroom/pkg/models"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load()
	require.NoError(t, err)
	cfg.Upload.Dir = t.TempDir()
	return cfg
}

func TestBuildStore_MemoryDefault(t *testing.T) {
	cfg := testConfig(t)

	st, cleanup, err := buildStore(context.Background(), cfg)
	require.NoError(t, err)
	defer cleanup()

	_, ok := st.(*store.MemoryStore)
	assert.True(t, ok)
	assert.NoError(t, st.Ping(context.Background()))
}

func TestBuildCache_NoopWithoutRedisURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.URL = ""

	c, err := buildCache(cfg)
	require.NoError(t, err)
	_, ok := c.(cache.Noop)
	assert.True(t, ok)
}

func TestBuildCache_InvalidURL(t *testing.T) {
	cfg := testConfig(t)
	cfg.Redis.URL = "not-a-redis-url"

	_, err := buildCache(cfg)
	assert.Error(t, err)
}

// stubFetcher stands in for the HTTP fetcher so the smoke test never touches
// the network.
type stubFetcher struct{}

func (stubFetcher) Fetch(_ context.Context, _ string) ([]byte, error) {
	return []byte("image-bytes"), nil
}

func TestRouter_Smoke(t *testing.T) {
	cfg := testConfig(t)
	st := store.NewMemoryStore()
	c := cache.Noop{}
	provider := mock.NewProvider()

	uploads, err := upload.NewProcessor(cfg.Upload.Dir, provider)
	require.NoError(t, err)
	svc := tryon.NewService(st, c, provider, stubFetcher{}, 5*time.Second, cfg.Session.Retention)

	router := api.NewRouter(api.Dependencies{
		Config:  cfg,
		Store:   st,
		Cache:   c,
		TryOn:   svc,
		Uploads: uploads,
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	// Health.
	resp, err := http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Backgrounds.
	resp, err = http.Get(ts.URL + "/tryon/backgrounds")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	// Unknown session.
	resp, err = http.Get(ts.URL + "/tryon/status/session_nope")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	// Submit and poll to a terminal state.
	body := []byte(`{
		"userImage": "https://cdn.example.com/user.jpg",
		"clothingImage": "https://cdn.example.com/clothing.jpg",
		"aiSettings": {"fittingStyle": "standard", "effectIntensity": "natural"}
	}`)
	resp, err = http.Post(ts.URL+"/tryon/generate", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var created struct {
		SessionID string `json:"sessionId"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&created))
	require.NotEmpty(t, created.SessionID)

	require.Eventually(t, func() bool {
		s, err := st.GetSession(context.Background(), created.SessionID)
		return err == nil && s.Status == models.SessionStatusCompleted
	}, 5*time.Second, 20*time.Millisecond)
}

func TestEvictLoop(t *testing.T) {
	st := store.NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	require.NoError(t, st.InsertSession(ctx, &models.Session{
		ID:        "session_evict",
		Status:    models.SessionStatusProcessing,
		CreatedAt: time.Now().UTC(),
	}))
	require.NoError(t, st.CompleteSession(ctx, "session_evict", models.TryOnResult{ResultImageURL: "x"}))

	go evictLoop(ctx, st, 50*time.Millisecond)

	require.Eventually(t, func() bool {
		_, err := st.GetSession(context.Background(), "session_evict")
		return err != nil
	}, 2*time.Second, 20*time.Millisecond)
}
