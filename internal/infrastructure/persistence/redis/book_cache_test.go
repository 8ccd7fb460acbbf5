package redis

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/circuitbreaker"
)

// Redis不可达时熔断打开,后续请求不再访问Redis
func TestBookCache_BreakerOpensWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = client.Close() })

	cache := NewBookCache(client, time.Minute)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := cache.Get(ctx, "b-1")
		require.Error(t, err)
	}
	assert.Equal(t, circuitbreaker.StateOpen, cache.breaker.State())

	_, err := cache.Get(ctx, "b-1")
	assert.ErrorIs(t, err, circuitbreaker.ErrOpenState)
	assert.ErrorIs(t, cache.Delete(ctx, "b-1"), circuitbreaker.ErrOpenState)
}

func TestNoopBookCache(t *testing.T) {
	var c book.Cache = NoopBookCache{}
	b, err := c.Get(context.Background(), "x")
	assert.NoError(t, err)
	assert.Nil(t, b)
}

// 需要本地Redis：LIBRARY_TEST_REDIS_ADDR=localhost:6379
func TestBookCache_RoundTrip(t *testing.T) {
	addr := os.Getenv("LIBRARY_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("LIBRARY_TEST_REDIS_ADDR not set")
	}
	client := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })

	ctx := context.Background()
	cache := NewBookCache(client, time.Minute)
	b, err := book.NewBook("Clean Code", "Martin", "9780132350884", 2008, 2, "")
	require.NoError(t, err)

	got, err := cache.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got, "未命中")

	require.NoError(t, cache.Set(ctx, b))
	got, err = cache.Get(ctx, b.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, b.ISBN, got.ISBN)
	assert.Equal(t, 2, got.AvailableQuantity)

	require.NoError(t, cache.Delete(ctx, b.ID))
	got, err = cache.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	store := NewSessionStore(client)
	require.NoError(t, store.AddToBlacklist(ctx, "tok-"+b.ID, time.Minute))
	revoked, err := store.IsInBlacklist(ctx, "tok-"+b.ID)
	require.NoError(t, err)
	assert.True(t, revoked)
}
