package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/service"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/response"
)

// AuthHandler 认证模块 HTTP 处理器
type AuthHandler struct {
	authSvc service.AuthService
}

// NewAuthHandler 创建 AuthHandler
func NewAuthHandler(authSvc service.AuthService) *AuthHandler {
	return &AuthHandler{authSvc: authSvc}
}

// Register 学生注册
// POST /api/v1/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.Register(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, "注册成功", result)
}

// Login 用户登录
// POST /api/v1/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	result, err := h.authSvc.Login(c.Request.Context(), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, result)
}

// Logout 用户登出
// POST /api/v1/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	if _, ok := MustGetCaller(c); !ok {
		return
	}

	jti, expiresAt := tokenMeta(c)
	if err := h.authSvc.Logout(c.Request.Context(), jti, expiresAt); err != nil {
		writeError(c, err)
		return
	}

	response.OKWithMessage(c, "已退出登录", nil)
}

// GetProfile 当前用户资料
// GET /api/v1/auth/profile
func (h *AuthHandler) GetProfile(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	user, err := h.authSvc.GetProfile(c.Request.Context(), caller.UserID)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, user)
}

// UpdateProfile 修改个人资料
// PUT /api/v1/auth/profile
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.authSvc.UpdateProfile(c.Request.Context(), caller.UserID, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKWithMessage(c, "资料已更新", user)
}

// ChangePassword 修改密码
// PUT /api/v1/auth/change-password
func (h *AuthHandler) ChangePassword(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.ChangePasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	if err := h.authSvc.ChangePassword(c.Request.Context(), caller.UserID, &req); err != nil {
		writeError(c, err)
		return
	}

	response.OKWithMessage(c, "密码已修改", nil)
}
