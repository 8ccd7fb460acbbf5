package user

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bcrypt成本因子,12在普通服务器上约250ms
const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// Service 用户领域服务
type Service interface {
	// Register 注册
	Register(ctx context.Context, username, email, password, fullName string, role Role) (*User, error)

	// Authenticate 用户名+密码认证,停用账号拒绝登录
	Authenticate(ctx context.Context, username, password string) (*User, error)

	// Get 查询用户
	Get(ctx context.Context, id string) (*User, error)
}

type service struct {
	repo Repository
	cost int
}

// NewService 创建用户领域服务
func NewService(repo Repository) Service {
	return &service{repo: repo, cost: bcryptCost}
}

// NewServiceWithCost 指定bcrypt成本(测试中使用bcrypt.MinCost加速)
func NewServiceWithCost(repo Repository, cost int) Service {
	return &service{repo: repo, cost: cost}
}

func (s *service) Register(ctx context.Context, username, email, password, fullName string, role Role) (*User, error) {
	username = strings.TrimSpace(username)
	if len(username) < 3 || len(username) > 50 {
		return nil, ErrInvalidUsername
	}
	if !emailPattern.MatchString(email) {
		return nil, ErrInvalidEmail
	}
	if len(password) < 6 {
		return nil, ErrWeakPassword
	}

	if exists, err := s.repo.ExistsByUsername(ctx, username); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrUsernameDuplicate
	}
	if exists, err := s.repo.ExistsByEmail(ctx, email); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrEmailDuplicate
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to hash password")
	}

	u := NewUser(username, email, string(hashed), strings.TrimSpace(fullName), role)
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *service) Authenticate(ctx context.Context, username, password string) (*User, error) {
	u, err := s.repo.FindByUsername(ctx, username)
	if err != nil {
		// 不区分"用户不存在"和"密码错误",防止枚举用户名
		if errors.Is(err, ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.Wrap(err, "Failed to verify password")
	}

	if !u.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}
	return u, nil
}

func (s *service) Get(ctx context.Context, id string) (*User, error) {
	return s.repo.FindByID(ctx, id)
}
