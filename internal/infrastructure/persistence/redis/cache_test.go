package redis

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T) (*Cache, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewCacheFromClient(client, "test:"), mr
}

type payload struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

func TestCache_SetGetDelete(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Set(ctx, "k", payload{Name: "Alice", Score: 95}, time.Minute))
	assert.True(t, mr.Exists("test:k"))

	var got payload
	require.NoError(t, cache.Get(ctx, "k", &got))
	assert.Equal(t, payload{Name: "Alice", Score: 95}, got)

	ok, err := cache.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, cache.Delete(ctx, "k", "missing"))
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestCache_TTLExpires(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	require.NoError(t, cache.Set(ctx, "k", payload{Name: "x"}, time.Second))
	mr.FastForward(2 * time.Second)

	var got payload
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), ErrCacheMiss)
}

func TestCache_ArgumentErrors(t *testing.T) {
	ctx := context.Background()
	cache, _ := newTestCache(t)

	assert.ErrorIs(t, cache.Set(ctx, "", payload{}, 0), ErrCacheKeyEmpty)
	assert.ErrorIs(t, cache.Set(ctx, "k", nil, 0), ErrCacheNilValue)
	assert.ErrorIs(t, cache.Set(ctx, "k", payload{}, -time.Second), ErrCacheInvalidTTL)
	assert.ErrorIs(t, cache.Get(ctx, "", &payload{}), ErrCacheKeyEmpty)
	assert.ErrorIs(t, cache.Delete(ctx, ""), ErrCacheKeyEmpty)
	assert.ErrorIs(t, cache.DeleteByPattern(ctx, ""), ErrCacheKeyEmpty)
	assert.NoError(t, cache.Delete(ctx))
}

func TestCache_CorruptValueIsSerializationError(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	require.NoError(t, mr.Set("test:k", "{not json"))

	var got payload
	assert.ErrorIs(t, cache.Get(ctx, "k", &got), ErrCacheSerialization)
}

func TestCache_DeleteByPatternStaysInNamespace(t *testing.T) {
	ctx := context.Background()
	cache, mr := newTestCache(t)

	for i := 0; i < 150; i++ {
		require.NoError(t, mr.Set("test:report:gpa:S"+strconv.Itoa(i), "1"))
	}
	require.NoError(t, mr.Set("test:report:course:CS101", "1"))
	require.NoError(t, mr.Set("other:report:gpa:S001", "1"))

	require.NoError(t, cache.DeleteByPattern(ctx, "report:gpa:*"))

	assert.Equal(t, []string{"other:report:gpa:S001", "test:report:course:CS101"}, mr.Keys())
}

func TestConfig_Options(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "redis.internal"
	cfg.Port = 6380

	opts, err := cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "redis.internal:6380", opts.Addr)
	assert.Equal(t, cfg.PoolSize, opts.PoolSize)

	cfg.URL = "redis://:secret@cache:6379/2"
	opts, err = cfg.Options()
	require.NoError(t, err)
	assert.Equal(t, "cache:6379", opts.Addr)
	assert.Equal(t, "secret", opts.Password)
	assert.Equal(t, 2, opts.DB)

	cfg.URL = "http://nope"
	_, err = cfg.Options()
	assert.Error(t, err)
}

func TestNewCache_FailsWithoutServer(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Host = "127.0.0.1"
	cfg.Port = 1
	cfg.MaxRetries = -1
	cfg.DialTimeout = 200 * time.Millisecond

	_, err := NewCache(context.Background(), cfg)
	assert.ErrorIs(t, err, ErrCacheConnection)
}

func TestNewCache_ConnectsToServer(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := DefaultConfig()
	cfg.URL = "redis://" + mr.Addr()

	cache, err := NewCache(context.Background(), cfg)
	require.NoError(t, err)
	defer cache.Close()

	assert.NoError(t, cache.Ping(context.Background()))
}
