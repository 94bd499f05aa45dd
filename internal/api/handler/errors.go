package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/response"
)

// 业务错误码
const (
	codeValidation   = 10001
	codeUnauthorized = 10002
	codeForbidden    = 10003
	codeBodyTooLarge = 10005
	codeNotFound     = 10006
	codeConflict     = 10007
	codeUnavailable  = 10008
)

// writeError 按错误分类统一写入响应。
// 存储错误只返回通用信息，详情已在 Service 层记录。
func writeError(c *gin.Context, err error) {
	var verr *apperrors.ValidationError
	switch {
	case errors.As(err, &verr):
		response.ValidationFailed(c, verr.Fields)
	case errors.Is(err, apperrors.ErrValidation):
		response.BadRequest(c, codeValidation, err.Error())
	case errors.Is(err, apperrors.ErrUnauthorized):
		response.Unauthorized(c, codeUnauthorized, err.Error())
	case errors.Is(err, apperrors.ErrAccessDenied):
		response.Forbidden(c, codeForbidden, "无权访问")
	case errors.Is(err, apperrors.ErrNotFound):
		response.NotFound(c, codeNotFound, err.Error())
	case errors.Is(err, apperrors.ErrConflict):
		response.Conflict(c, codeConflict, err.Error())
	case errors.Is(err, apperrors.ErrUnavailable):
		response.Error(c, http.StatusServiceUnavailable, codeUnavailable, err.Error())
	default:
		_ = c.Error(err)
		response.InternalError(c)
	}
}

// bindError 请求体解析失败
func bindError(c *gin.Context, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		response.Error(c, http.StatusRequestEntityTooLarge, codeBodyTooLarge, "请求体过大")
		return
	}
	response.BadRequest(c, codeValidation, "请求格式错误")
}
