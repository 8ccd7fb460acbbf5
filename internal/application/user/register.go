package user

import (
	"context"

	"go.uber.org/zap"

	"github.com/xiebiao/library/internal/domain/user"
)

// RegisterUseCase 用户注册用例
// 自助注册的账号一律是普通用户,管理员只能通过seed命令创建
type RegisterUseCase struct {
	userService user.Service
}

// NewRegisterUseCase 创建注册用例
func NewRegisterUseCase(userService user.Service) *RegisterUseCase {
	return &RegisterUseCase{userService: userService}
}

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string
	Email    string
	Password string
	FullName string
}

// Execute 执行注册
func (uc *RegisterUseCase) Execute(ctx context.Context, req RegisterRequest) (*user.User, error) {
	u, err := uc.userService.Register(ctx, req.Username, req.Email, req.Password, req.FullName, user.RoleUser)
	if err != nil {
		return nil, err
	}

	zap.L().Info("用户注册成功", zap.String("user_id", u.ID), zap.String("username", u.Username))
	return u, nil
}

// ProfileUseCase 查询当前登录用户
type ProfileUseCase struct {
	userService user.Service
}

// NewProfileUseCase 创建个人信息查询用例
func NewProfileUseCase(userService user.Service) *ProfileUseCase {
	return &ProfileUseCase{userService: userService}
}

// Execute 查询个人信息
func (uc *ProfileUseCase) Execute(ctx context.Context, p user.Principal) (*user.User, error) {
	return uc.userService.Get(ctx, p.UserID)
}
