package handler

import (
	"github.com/gin-gonic/gin"

	appuser "github.com/xiebiao/library/internal/application/user"
	"github.com/xiebiao/library/internal/interface/http/dto"
	"github.com/xiebiao/library/internal/interface/http/middleware"
	"github.com/xiebiao/library/pkg/response"
)

// UserHandler 认证与用户HTTP处理器
// Handler只负责解析请求、调用应用层、返回响应
type UserHandler struct {
	registerUseCase *appuser.RegisterUseCase
	loginUseCase    *appuser.LoginUseCase
	refreshUseCase  *appuser.RefreshUseCase
	logoutUseCase   *appuser.LogoutUseCase
	profileUseCase  *appuser.ProfileUseCase
}

// NewUserHandler 创建用户处理器
func NewUserHandler(
	registerUseCase *appuser.RegisterUseCase,
	loginUseCase *appuser.LoginUseCase,
	refreshUseCase *appuser.RefreshUseCase,
	logoutUseCase *appuser.LogoutUseCase,
	profileUseCase *appuser.ProfileUseCase,
) *UserHandler {
	return &UserHandler{
		registerUseCase: registerUseCase,
		loginUseCase:    loginUseCase,
		refreshUseCase:  refreshUseCase,
		logoutUseCase:   logoutUseCase,
		profileUseCase:  profileUseCase,
	}
}

// Register 用户注册
// @Summary      用户注册
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RegisterRequest true "注册信息"
// @Success      201 {object} response.Response{data=dto.UserResponse}
// @Failure      400 {object} response.Response "参数错误"
// @Failure      409 {object} response.Response "用户名或邮箱已存在"
// @Router       /api/auth/register [post]
func (h *UserHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	u, err := h.registerUseCase.Execute(c.Request.Context(), appuser.RegisterRequest{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, dto.ToUserResponse(u))
}

// Login 用户登录
// @Summary      用户登录
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.LoginRequest true "用户名密码"
// @Success      200 {object} response.Response{data=dto.LoginResponse}
// @Failure      401 {object} response.Response "用户名或密码错误/账号已停用"
// @Router       /api/auth/login [post]
func (h *UserHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.loginUseCase.Execute(c.Request.Context(), appuser.LoginRequest{
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, &dto.LoginResponse{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
		ExpiresIn:    result.ExpiresIn,
		User:         dto.ToUserResponse(result.User),
	})
}

// Refresh 刷新Access Token
// @Summary      刷新Token
// @Tags         认证
// @Accept       json
// @Produce      json
// @Param        request body dto.RefreshRequest true "Refresh Token"
// @Success      200 {object} response.Response{data=appuser.RefreshResponse}
// @Failure      401 {object} response.Response "Token无效或过期"
// @Router       /api/auth/refresh [post]
func (h *UserHandler) Refresh(c *gin.Context) {
	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, bindError(err))
		return
	}

	result, err := h.refreshUseCase.Execute(c.Request.Context(), req.RefreshToken)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 登出
// @Summary      登出
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response
// @Router       /api/auth/logout [post]
func (h *UserHandler) Logout(c *gin.Context) {
	err := h.logoutUseCase.Execute(c.Request.Context(), middleware.MustGetPrincipal(c), middleware.GetAccessToken(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.SuccessWithMessage(c, "Logged out successfully", nil)
}

// Profile 当前用户信息
// @Summary      当前用户信息
// @Tags         认证
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.Response{data=dto.UserResponse}
// @Router       /api/auth/profile [get]
func (h *UserHandler) Profile(c *gin.Context) {
	u, err := h.profileUseCase.Execute(c.Request.Context(), middleware.MustGetPrincipal(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, dto.ToUserResponse(u))
}
