package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/xiebiao/library/internal/domain/user"
	apperrors "github.com/xiebiao/library/pkg/errors"
	"github.com/xiebiao/library/pkg/jwt"
	"github.com/xiebiao/library/pkg/response"
)

// Context中的key
const (
	ctxKeyPrincipal = "principal"
	ctxKeyToken     = "access_token"
)

// AuthMiddleware JWT认证中间件
// 1. 从Header提取Bearer Token
// 2. 检查黑名单(已登出的Token)
// 3. 校验签名与有效期
// 4. 将认证主体注入Context
type AuthMiddleware struct {
	jwtManager *jwt.Manager
	blacklist  user.TokenBlacklist
}

// NewAuthMiddleware 创建认证中间件
func NewAuthMiddleware(jwtManager *jwt.Manager, blacklist user.TokenBlacklist) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		blacklist:  blacklist,
	}
}

// RequireAuth 要求登录
func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Authorization: Bearer <token>
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abort(c, apperrors.ErrUnauthorized)
			return
		}
		scheme, token, ok := strings.Cut(authHeader, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abort(c, apperrors.ErrInvalidToken)
			return
		}
		token = strings.TrimSpace(token)

		revoked, err := m.blacklist.IsInBlacklist(c.Request.Context(), token)
		if err != nil {
			abort(c, apperrors.WrapCode(err, apperrors.ErrCodeRedisError, "Failed to verify token"))
			return
		}
		if revoked {
			abort(c, apperrors.ErrTokenRevoked)
			return
		}

		claims, err := m.jwtManager.ParseToken(token)
		if err != nil {
			abort(c, err)
			return
		}

		c.Set(ctxKeyPrincipal, user.Principal{
			UserID:   claims.UserID,
			Username: claims.Username,
			Role:     user.Role(claims.Role),
		})
		c.Set(ctxKeyToken, token)
		c.Next()
	}
}

func abort(c *gin.Context, err error) {
	response.Error(c, err)
	c.Abort()
}

// GetPrincipal 当前登录用户,未登录返回零值
func GetPrincipal(c *gin.Context) user.Principal {
	if v, ok := c.Get(ctxKeyPrincipal); ok {
		if p, ok := v.(user.Principal); ok {
			return p
		}
	}
	return user.Principal{}
}

// MustGetPrincipal 用于已经过RequireAuth的Handler
func MustGetPrincipal(c *gin.Context) user.Principal {
	p := GetPrincipal(c)
	if p.IsZero() {
		panic("principal not found in context")
	}
	return p
}

// GetAccessToken 当前请求携带的Access Token(登出时使用)
func GetAccessToken(c *gin.Context) string {
	return c.GetString(ctxKeyToken)
}
