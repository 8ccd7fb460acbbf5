package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
)

// LoginUseCase 用户登录用例
// 1. 校验用户名密码
// 2. 生成JWT Token对
type LoginUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

// NewLoginUseCase 创建登录用例
func NewLoginUseCase(userService user.Service, jwtManager *jwt.Manager) *LoginUseCase {
	return &LoginUseCase{userService: userService, jwtManager: jwtManager}
}

// LoginRequest 登录请求
type LoginRequest struct {
	Username string
	Password string
}

// LoginResponse 登录结果
type LoginResponse struct {
	jwt.TokenPair
	User *user.User
}

// Execute 执行登录
func (uc *LoginUseCase) Execute(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	u, err := uc.userService.Authenticate(ctx, req.Username, req.Password)
	if err != nil {
		zap.L().Info("登录失败", zap.String("username", req.Username), zap.Error(err))
		return nil, err
	}

	pair, err := uc.jwtManager.GenerateToken(u.ID, u.Username, string(u.Role))
	if err != nil {
		return nil, err
	}

	return &LoginResponse{TokenPair: *pair, User: u}, nil
}

// RefreshUseCase 用Refresh Token换取新的Access Token
type RefreshUseCase struct {
	userService user.Service
	jwtManager  *jwt.Manager
}

// NewRefreshUseCase 创建刷新Token用例
func NewRefreshUseCase(userService user.Service, jwtManager *jwt.Manager) *RefreshUseCase {
	return &RefreshUseCase{userService: userService, jwtManager: jwtManager}
}

// RefreshResponse 刷新结果
type RefreshResponse struct {
	AccessToken string `json:"accessToken"`
	ExpiresIn   int64  `json:"expiresIn"`
}

// Execute 刷新Access Token,账号停用后不再签发
func (uc *RefreshUseCase) Execute(ctx context.Context, refreshToken string) (*RefreshResponse, error) {
	claims, err := uc.jwtManager.ParseRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	u, err := uc.userService.Get(ctx, claims.UserID)
	if err != nil {
		if apperrors.HasCode(err, apperrors.ErrCodeUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, err
	}
	if !u.IsActive {
		return nil, apperrors.ErrAccountDisabled
	}

	token, err := uc.jwtManager.RefreshAccessToken(refreshToken)
	if err != nil {
		return nil, err
	}
	return &RefreshResponse{
		AccessToken: token,
		ExpiresIn:   int64(uc.jwtManager.AccessTokenTTL().Seconds()),
	}, nil
}

// LogoutUseCase 用户登出用例
// JWT无状态,登出即把Access Token加入黑名单直到其过期
type LogoutUseCase struct {
	blacklist  user.TokenBlacklist
	jwtManager *jwt.Manager
}

// NewLogoutUseCase 创建登出用例
func NewLogoutUseCase(blacklist user.TokenBlacklist, jwtManager *jwt.Manager) *LogoutUseCase {
	return &LogoutUseCase{blacklist: blacklist, jwtManager: jwtManager}
}

// Execute 执行登出
func (uc *LogoutUseCase) Execute(ctx context.Context, p user.Principal, accessToken string) error {
	if err := uc.blacklist.AddToBlacklist(ctx, accessToken, uc.jwtManager.AccessTokenTTL()); err != nil {
		return apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "Failed to revoke token")
	}

	zap.L().Info("用户已登出", zap.String("user_id", p.UserID))
	return nil
}
