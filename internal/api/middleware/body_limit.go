package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

// BodyLimit 请求体大小限制中间件
// multipart 上传使用 uploadBytes，其余请求使用 maxBytes；
// 超限时由 Handler 解析请求体失败并返回 413
func BodyLimit(maxBytes, uploadBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Body != nil {
			limit := maxBytes
			if c.ContentType() == binding.MIMEMultipartPOSTForm {
				limit = uploadBytes
			}
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		}

		c.Next()
	}
}
