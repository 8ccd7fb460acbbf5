package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

const issuer = "library"

// Manager JWT管理器
// Access Token 用于接口认证，Refresh Token 只用于换取新的 Access Token
type Manager struct {
	secret             string
	accessTokenExpire  time.Duration
	refreshTokenExpire time.Duration
}

// NewManager 创建JWT管理器
func NewManager(secret string, accessTokenExpire, refreshTokenExpire time.Duration) *Manager {
	return &Manager{
		secret:             secret,
		accessTokenExpire:  accessTokenExpire,
		refreshTokenExpire: refreshTokenExpire,
	}
}

// Claims 自定义声明
// 只放认证主体需要的最少信息：用户ID、用户名、角色
type Claims struct {
	UserID   string `json:"sub_id"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Refresh  bool   `json:"refresh,omitempty"`
	jwt.RegisteredClaims
}

// TokenPair Token对
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"` // Access Token过期时间（秒）
}

// GenerateToken 生成Access Token和Refresh Token
func (m *Manager) GenerateToken(userID, username, role string) (*TokenPair, error) {
	now := time.Now()

	accessToken, err := m.sign(Claims{
		UserID:           userID,
		Username:         username,
		Role:             role,
		RegisteredClaims: m.registered(userID, now, m.accessTokenExpire),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to sign access token")
	}

	refreshToken, err := m.sign(Claims{
		UserID:           userID,
		Username:         username,
		Role:             role,
		Refresh:          true,
		RegisteredClaims: m.registered(userID, now, m.refreshTokenExpire),
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to sign refresh token")
	}

	return &TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int64(m.accessTokenExpire.Seconds()),
	}, nil
}

// ParseToken 解析并校验Access Token
// Refresh Token 不能当作 Access Token 使用
func (m *Manager) ParseToken(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.Refresh {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// ParseRefreshToken 解析并校验Refresh Token
func (m *Manager) ParseRefreshToken(tokenString string) (*Claims, error) {
	claims, err := m.parse(tokenString)
	if err != nil {
		return nil, err
	}
	if !claims.Refresh {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// RefreshAccessToken 使用Refresh Token换取新的Access Token
func (m *Manager) RefreshAccessToken(refreshToken string) (string, error) {
	claims, err := m.ParseRefreshToken(refreshToken)
	if err != nil {
		return "", err
	}

	token, err := m.sign(Claims{
		UserID:           claims.UserID,
		Username:         claims.Username,
		Role:             claims.Role,
		RegisteredClaims: m.registered(claims.UserID, time.Now(), m.accessTokenExpire),
	})
	if err != nil {
		return "", apperrors.Wrap(err, "Failed to refresh token")
	}
	return token, nil
}

// AccessTokenTTL Access Token有效期（登出时用作黑名单过期时间）
func (m *Manager) AccessTokenTTL() time.Duration {
	return m.accessTokenExpire
}

func (m *Manager) registered(subject string, now time.Time, ttl time.Duration) jwt.RegisteredClaims {
	return jwt.RegisteredClaims{
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		Issuer:    issuer,
		Subject:   subject,
	}
}

func (m *Manager) sign(claims Claims) (string, error) {
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(m.secret))
}

func (m *Manager) parse(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		// 防止alg=none或RS/HS混淆攻击
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.secret), nil
	}, jwt.WithIssuer(issuer))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.ErrInvalidToken
	}

	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}

	return nil, apperrors.ErrInvalidToken
}
