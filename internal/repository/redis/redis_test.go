package redis

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Piyushkr001/revix/internal/domain"
)

func setupTestRedis(t *testing.T) (*goredis.Client, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return client, mr
}

// ---------------------------------------------------------------------------
// ProfileCache
// ---------------------------------------------------------------------------

func TestProfileCache_Miss(t *testing.T) {
	client, _ := setupTestRedis(t)
	cache := NewProfileCache(client)

	p, ok, err := cache.Get(context.Background(), "user_2abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Nil(t, p)
}

func TestProfileCache_SetThenGet(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewProfileCache(client)
	ctx := context.Background()

	p := &domain.Profile{ID: "user_2abc", Email: "ada@example.com", FirstName: "Ada"}
	require.NoError(t, cache.Set(ctx, p, 10*time.Minute))

	assert.True(t, mr.Exists("revix:profile:user_2abc"))
	assert.Equal(t, 10*time.Minute, mr.TTL("revix:profile:user_2abc"))

	got, ok, err := cache.Get(ctx, "user_2abc")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, *p, *got)
}

func TestProfileCache_Expires(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewProfileCache(client)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, &domain.Profile{ID: "user_2abc", Email: "a@b.co"}, time.Minute))
	mr.FastForward(2 * time.Minute)

	_, ok, err := cache.Get(ctx, "user_2abc")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestProfileCache_CorruptEntry(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewProfileCache(client)

	require.NoError(t, mr.Set("revix:profile:user_2abc", "{not json"))

	_, _, err := cache.Get(context.Background(), "user_2abc")
	assert.Error(t, err)
}

func TestProfileCache_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	cache := NewProfileCache(client)
	mr.Close()

	_, _, err := cache.Get(context.Background(), "user_2abc")
	assert.Error(t, err)
}

// ---------------------------------------------------------------------------
// FixedWindowLimiter
// ---------------------------------------------------------------------------

func TestFixedWindowLimiter_AllowsUpToLimit(t *testing.T) {
	client, _ := setupTestRedis(t)
	lim := NewFixedWindowLimiter(client, 3, time.Minute)
	base := time.Date(2025, 3, 1, 10, 0, 15, 0, time.UTC)
	lim.now = func() time.Time { return base }
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		ok, _, err := lim.Allow(ctx, "analysis:user_2abc")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i+1)
	}

	ok, retryAfter, err := lim.Allow(ctx, "analysis:user_2abc")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, 45*time.Second, retryAfter)
}

func TestFixedWindowLimiter_KeysAreIndependent(t *testing.T) {
	client, _ := setupTestRedis(t)
	lim := NewFixedWindowLimiter(client, 1, time.Minute)
	ctx := context.Background()

	ok, _, err := lim.Allow(ctx, "analysis:user_a")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, _, err = lim.Allow(ctx, "analysis:user_b")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFixedWindowLimiter_NewWindowResets(t *testing.T) {
	client, _ := setupTestRedis(t)
	lim := NewFixedWindowLimiter(client, 1, time.Minute)
	now := time.Date(2025, 3, 1, 10, 0, 59, 0, time.UTC)
	lim.now = func() time.Time { return now }
	ctx := context.Background()

	ok, _, _ := lim.Allow(ctx, "k")
	assert.True(t, ok)
	ok, _, _ = lim.Allow(ctx, "k")
	assert.False(t, ok)

	now = now.Add(2 * time.Second)
	ok, _, err := lim.Allow(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFixedWindowLimiter_SetsExpiry(t *testing.T) {
	client, mr := setupTestRedis(t)
	lim := NewFixedWindowLimiter(client, 5, time.Minute)
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	lim.now = func() time.Time { return now }

	_, _, err := lim.Allow(context.Background(), "k")
	require.NoError(t, err)

	key := "revix:rl:k:" + "1740823200"
	assert.True(t, mr.Exists(key))
	assert.Equal(t, time.Minute, mr.TTL(key))
}

func TestFixedWindowLimiter_Disabled(t *testing.T) {
	client, mr := setupTestRedis(t)
	lim := NewFixedWindowLimiter(client, 0, time.Minute)
	mr.Close()

	ok, _, err := lim.Allow(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestFixedWindowLimiter_RedisDown(t *testing.T) {
	client, mr := setupTestRedis(t)
	lim := NewFixedWindowLimiter(client, 5, time.Minute)
	mr.Close()

	_, _, err := lim.Allow(context.Background(), "k")
	assert.Error(t, err)
}
