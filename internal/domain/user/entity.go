package user

import (
	"time"

	"github.com/google/uuid"
)

// Role 用户角色
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User 用户实体
type User struct {
	ID        string
	Username  string
	Email     string
	Password  string // bcrypt哈希值
	FullName  string
	Role      Role
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewUser 创建用户,默认普通角色、启用状态
func NewUser(username, email, hashedPassword, fullName string, role Role) *User {
	if role == "" {
		role = RoleUser
	}
	now := time.Now()
	return &User{
		ID:        uuid.NewString(),
		Username:  username,
		Email:     email,
		Password:  hashedPassword,
		FullName:  fullName,
		Role:      role,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Principal 已认证的调用主体
// 由认证中间件根据Token构建,显式传入每个用例,而不是从全局上下文读取
type Principal struct {
	UserID   string
	Username string
	Role     Role
}

// IsAdmin 是否管理员
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}

// IsZero 是否为空主体(未认证)
func (p Principal) IsZero() bool {
	return p.UserID == ""
}
