package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/service"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/response"
)

// UserHandler 用户管理 HTTP 处理器（管理员）
type UserHandler struct {
	userSvc service.UserService
}

// NewUserHandler 创建 UserHandler
func NewUserHandler(userSvc service.UserService) *UserHandler {
	return &UserHandler{userSvc: userSvc}
}

// List 用户列表
// GET /api/v1/users?role=&page=&limit=
func (h *UserHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.UserListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	users, total, err := h.userSvc.List(c.Request.Context(), caller, &q)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, users, total, q.GetPage(), q.GetLimit())
}

// Stats 用户统计
// GET /api/v1/users/stats
func (h *UserHandler) Stats(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	stats, err := h.userSvc.Stats(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, stats)
}

// GetByID 用户详情
// GET /api/v1/users/:id
func (h *UserHandler) GetByID(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	user, err := h.userSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, user)
}

// Update 修改用户
// PUT /api/v1/users/:id
func (h *UserHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKWithMessage(c, "用户已更新", user)
}

// Delete 删除用户及其全部投诉
// DELETE /api/v1/users/:id
func (h *UserHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	if err := h.userSvc.Delete(c.Request.Context(), caller, c.Param("id")); err != nil {
		writeError(c, err)
		return
	}

	response.OKWithMessage(c, "用户已删除", nil)
}

// CreateAdmin 创建管理员
// POST /api/v1/users/admin
func (h *UserHandler) CreateAdmin(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateAdminRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	user, err := h.userSvc.CreateAdmin(c.Request.Context(), caller, &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, "管理员已创建", user)
}
