package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
)

// Response 统一响应结构
type Response struct {
	Success    bool                   `json:"success"`
	Code       int                    `json:"code"`
	Message    string                 `json:"message,omitempty"`
	Data       interface{}            `json:"data,omitempty"`
	Errors     []apperrors.FieldError `json:"errors,omitempty"`
	Pagination *Pagination            `json:"pagination,omitempty"`
}

// Pagination 分页元数据
type Pagination struct {
	Current int   `json:"current"`
	Limit   int   `json:"limit"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

// NewPagination 计算分页元数据
func NewPagination(page, limit int, total int64) *Pagination {
	pages := 0
	if limit > 0 {
		pages = int(total) / limit
		if int(total)%limit > 0 {
			pages++
		}
	}
	return &Pagination{Current: page, Limit: limit, Total: total, Pages: pages}
}

// ── 成功响应 ──

// OK 200 成功响应
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Data: data})
}

// OKWithMessage 200 成功响应（附带提示信息）
func OKWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{Success: true, Message: message, Data: data})
}

// Created 201 创建成功
func Created(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusCreated, Response{Success: true, Message: message, Data: data})
}

// OKPage 200 分页成功
func OKPage(c *gin.Context, list interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, Response{
		Success:    true,
		Data:       list,
		Pagination: NewPagination(page, limit, total),
	})
}

// ── 错误响应 ──

// Error 通用错误响应
func Error(c *gin.Context, httpStatus int, code int, message string) {
	c.JSON(httpStatus, Response{
		Success: false,
		Code:    code,
		Message: message,
	})
}

// ValidationFailed 400 字段级校验失败
func ValidationFailed(c *gin.Context, fields []apperrors.FieldError) {
	c.JSON(http.StatusBadRequest, Response{
		Success: false,
		Code:    10001,
		Message: "参数校验失败",
		Errors:  fields,
	})
}

// ── 常见快捷方式 ──

// BadRequest 400
func BadRequest(c *gin.Context, code int, message string) {
	Error(c, http.StatusBadRequest, code, message)
}

// Unauthorized 401
func Unauthorized(c *gin.Context, code int, message string) {
	Error(c, http.StatusUnauthorized, code, message)
}

// Forbidden 403
func Forbidden(c *gin.Context, code int, message string) {
	Error(c, http.StatusForbidden, code, message)
}

// NotFound 404
func NotFound(c *gin.Context, code int, message string) {
	Error(c, http.StatusNotFound, code, message)
}

// Conflict 409
func Conflict(c *gin.Context, code int, message string) {
	Error(c, http.StatusConflict, code, message)
}

// InternalError 500
func InternalError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, 50000, "服务器内部错误")
}
