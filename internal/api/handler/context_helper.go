package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Samikshyapaudel0/complanify-cms/internal/service"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/response"
)

// MustGetCaller 从 Gin 上下文中提取 JWT 中间件注入的调用者身份。
// 缺失时写入 401 响应并返回 false，调用方应直接 return。
func MustGetCaller(c *gin.Context) (service.Caller, bool) {
	userID := c.GetString("user_id")
	role := c.GetString("role")
	if userID == "" || role == "" {
		response.Unauthorized(c, codeUnauthorized, "未认证")
		return service.Caller{}, false
	}
	return service.Caller{UserID: userID, Role: role}, true
}

// tokenMeta 当前 Token 的 jti 与过期时间，供登出使用
func tokenMeta(c *gin.Context) (string, time.Time) {
	jti := c.GetString("token_jti")
	exp, _ := c.Get("token_exp")
	expiresAt, _ := exp.(time.Time)
	return jti, expiresAt
}

// queryInt 解析可选的整数查询参数，缺省返回 0。
// 格式错误时写入 400 响应并返回 false。
func queryInt(c *gin.Context, name string) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return 0, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		response.ValidationFailed(c, []apperrors.FieldError{{Field: name, Message: "必须为整数"}})
		return 0, false
	}
	return v, true
}
