package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// SessionStore Token黑名单
// JWT是无状态的，登出后通过黑名单让Access Token提前失效
// Key设计：blacklist:{token}，过期时间 = Access Token有效期
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore 创建会话存储
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// AddToBlacklist 将Token加入黑名单
func (s *SessionStore) AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error {
	if err := s.client.Set(ctx, blacklistKey(token), "revoked", ttl).Err(); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "Failed to revoke token")
	}
	return nil
}

// IsInBlacklist 检查Token是否在黑名单中
func (s *SessionStore) IsInBlacklist(ctx context.Context, token string) (bool, error) {
	exists, err := s.client.Exists(ctx, blacklistKey(token)).Result()
	if err != nil {
		return false, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "Failed to check token")
	}
	return exists > 0, nil
}

func blacklistKey(token string) string {
	return fmt.Sprintf("blacklist:%s", token)
}
