package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/jiaqili/fitroom/internal/cache"
	"github.com/jiaqili/fitroom/pkg/models"
)

// setupRedis spins up a Redis container and returns a connected RedisCache + cleanup.
func setupRedis(t *testing.T) *cache.RedisCache {
	t.Helper()
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "redis:7-alpine",
		ExposedPorts: []string{"6379/tcp"},
		WaitingFor:   wait.ForLog("Ready to accept connections").WithStartupTimeout(30 * time.Second),
	}
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, container.Terminate(ctx)) })

	host, err := container.Host(ctx)
	require.NoError(t, err)
	port, err := container.MappedPort(ctx, "6379")
	require.NoError(t, err)

	redisURL := "redis://" + host + ":" + port.Port()
	rc, err := cache.NewRedisCache(redisURL)
	require.NoError(t, err)
	t.Cleanup(func() { require.NoError(t, rc.Close()) })

	return rc
}

// --- Ping ---

func TestPing(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	assert.NoError(t, rc.Ping(context.Background()))
}

// --- Session status mirror ---

func TestSessionStatus_Roundtrip(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.SetSessionStatus(ctx, "session_abc", models.SessionStatusProcessing, time.Minute))

	status, found, err := rc.GetSessionStatus(ctx, "session_abc")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, models.SessionStatusProcessing, status)
}

func TestSessionStatus_Miss(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)

	_, found, err := rc.GetSessionStatus(context.Background(), "session_missing")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestSessionStatus_Expiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	require.NoError(t, rc.SetSessionStatus(ctx, "session_ttl", models.SessionStatusCompleted, 100*time.Millisecond))
	time.Sleep(300 * time.Millisecond)

	_, found, err := rc.GetSessionStatus(ctx, "session_ttl")
	require.NoError(t, err)
	assert.False(t, found)
}

// --- Rate limit counter ---

func TestIncrWithExpiry(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	rc := setupRedis(t)
	ctx := context.Background()

	key := cache.RateLimitKey("203.0.113.9")
	for want := int64(1); want <= 3; want++ {
		got, err := rc.IncrWithExpiry(ctx, key, time.Minute)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

// --- Key builders ---

func TestKeys(t *testing.T) {
	assert.Equal(t, "session:session_abc", cache.SessionStatusKey("session_abc"))
	assert.Equal(t, "ratelimit:203.0.113.9", cache.RateLimitKey("203.0.113.9"))
}

// --- Noop ---

func TestNoop(t *testing.T) {
	var c cache.Cache = cache.Noop{}
	ctx := context.Background()

	assert.NoError(t, c.Ping(ctx))
	assert.NoError(t, c.SetSessionStatus(ctx, "session_x", models.SessionStatusProcessing, time.Minute))

	_, found, err := c.GetSessionStatus(ctx, "session_x")
	require.NoError(t, err)
	assert.False(t, found)

	n, err := c.IncrWithExpiry(ctx, "k", time.Minute)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	assert.NoError(t, c.Close())
}
