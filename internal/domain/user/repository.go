package user

import (
	"context"
	"time"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Repository 用户仓储接口
type Repository interface {
	// Create 创建用户,用户名/邮箱重复返回对应冲突错误
	Create(ctx context.Context, user *User) error

	// FindByID 不存在返回ErrUserNotFound
	FindByID(ctx context.Context, id string) (*User, error)

	// FindByUsername 登录使用
	FindByUsername(ctx context.Context, username string) (*User, error)

	// ExistsByUsername / ExistsByEmail 注册前预检
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
}

// TokenBlacklist 已注销Token的黑名单(Redis或内存实现)
type TokenBlacklist interface {
	AddToBlacklist(ctx context.Context, token string, ttl time.Duration) error
	IsInBlacklist(ctx context.Context, token string) (bool, error)
}

var (
	ErrUserNotFound      = apperrors.New(apperrors.ErrCodeUserNotFound, "User not found")
	ErrUsernameDuplicate = apperrors.New(apperrors.ErrCodeUsernameDuplicate, "Username already exists")
	ErrEmailDuplicate    = apperrors.New(apperrors.ErrCodeEmailDuplicate, "Email already exists")
	ErrWeakPassword      = apperrors.New(apperrors.ErrCodeWeakPassword, "Password must be at least 6 characters")
	ErrInvalidEmail      = apperrors.New(apperrors.ErrCodeInvalidParams, "Invalid email address")
	ErrInvalidUsername   = apperrors.New(apperrors.ErrCodeInvalidParams, "Username must be 3-50 characters")
)
