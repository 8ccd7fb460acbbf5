package memory

import (
	"context"
	"sync"
	"time"
)

// TokenBlacklist 内存Token黑名单(未启用Redis时使用)
// 过期条目在查询时惰性清理
type TokenBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewTokenBlacklist 创建内存黑名单
func NewTokenBlacklist() *TokenBlacklist {
	return &TokenBlacklist{entries: make(map[string]time.Time), now: time.Now}
}

// AddToBlacklist 加入黑名单,ttl到期后自动失效
func (b *TokenBlacklist) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[token] = b.now().Add(ttl)
	return nil
}

// IsInBlacklist 是否在黑名单中
func (b *TokenBlacklist) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	expireAt, ok := b.entries[token]
	if !ok {
		return false, nil
	}
	if !b.now().Before(expireAt) {
		delete(b.entries, token)
		return false, nil
	}
	return true, nil
}
