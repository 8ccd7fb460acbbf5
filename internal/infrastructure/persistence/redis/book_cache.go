package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/book"
	"github.com/xiebiao/library/pkg/circuitbreaker"
	"github.com/xiebiao/library/pkg/metrics"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

const cacheName = "book"

// BookCache 图书详情缓存(Cache-Aside)
// 1. 读：先查缓存，未命中由调用方回源并Set
// 2. 写：库存或信息变化提交后Delete，下次读取回源
// 3. Redis故障时熔断，调用方直接查数据库
type BookCache struct {
	client  *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.CircuitBreaker
}

// NewBookCache 创建图书缓存
func NewBookCache(client *redis.Client, ttl time.Duration) *BookCache {
	breaker := circuitbreaker.New(circuitbreaker.Settings{
		Name:    "redis-book-cache",
		Timeout: 10 * time.Second,
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, redis.Nil)
		},
		OnStateChange: func(name string, from, to circuitbreaker.State) {
			zap.L().Warn("熔断器状态变化",
				zap.String("name", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()),
			)
			metrics.SetCircuitBreakerState(name, int(to))
		},
	})
	return &BookCache{client: client, ttl: ttl, breaker: breaker}
}

// Get 未命中返回(nil, nil)
func (c *BookCache) Get(ctx context.Context, id string) (*book.Book, error) {
	var val []byte
	err := c.breaker.Execute(func() error {
		var err error
		val, err = c.client.Get(ctx, bookKey(id)).Bytes()
		return err
	})
	switch {
	case errors.Is(err, redis.Nil):
		metrics.RecordCache(cacheName, "miss")
		return nil, nil
	case err != nil:
		metrics.RecordCache(cacheName, "error")
		return nil, fmt.Errorf("获取缓存失败: %w", err)
	}

	var b book.Book
	if err := json.Unmarshal(val, &b); err != nil {
		metrics.RecordCache(cacheName, "error")
		return nil, fmt.Errorf("反序列化失败: %w", err)
	}
	metrics.RecordCache(cacheName, "hit")
	return &b, nil
}

func (c *BookCache) Set(ctx context.Context, b *book.Book) error {
	val, err := json.Marshal(b)
	if err != nil {
		return fmt.Errorf("序列化失败: %w", err)
	}
	return c.breaker.Execute(func() error {
		return c.client.Set(ctx, bookKey(b.ID), val, c.ttl).Err()
	})
}

func (c *BookCache) Delete(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = bookKey(id)
	}
	return c.breaker.Execute(func() error {
		return c.client.Del(ctx, keys...).Err()
	})
}

func bookKey(id string) string {
	return fmt.Sprintf("book:detail:%s", id)
}

// NoopBookCache 未启用缓存时使用
type NoopBookCache struct{}

func (NoopBookCache) Get(context.Context, string) (*book.Book, error) { return nil, nil }
func (NoopBookCache) Set(context.Context, *book.Book) error           { return nil }
func (NoopBookCache) Delete(context.Context, ...string) error         { return nil }

var (
	_ book.Cache = (*BookCache)(nil)
	_ book.Cache = NoopBookCache{}
)
