package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Samikshyapaudel0/complanify-cms/config"
	"github.com/Samikshyapaudel0/complanify-cms/internal/api/handler"
	"github.com/Samikshyapaudel0/complanify-cms/internal/api/middleware"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/jwt"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
// rdb 为 nil 时不启用 Token 黑名单与登录限流
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	if cfg.Server.Mode == gin.DebugMode {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(middleware.RequestID())
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	// 附件上限之外为表单字段预留 1MB
	r.Use(middleware.BodyLimit(cfg.Server.MaxBodyBytes, cfg.Upload.MaxBytes()+1<<20))

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	adminOnly := middleware.RoleAuth(model.RoleAdmin)

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证）
		auth := v1.Group("/auth")
		{
			loginLimit := middleware.RateLimit(rdb, cfg.Auth.LoginRateLimit, cfg.Auth.LoginWindow)
			auth.POST("/register", loginLimit, h.Auth.Register)
			auth.POST("/login", loginLimit, h.Auth.Login)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/profile", h.Auth.GetProfile)
			authorized.PUT("/auth/profile", h.Auth.UpdateProfile)
			authorized.PUT("/auth/change-password", h.Auth.ChangePassword)

			// 投诉模块（所有者 / 管理员由 Service 层鉴权）
			complaints := authorized.Group("/complaints")
			{
				complaints.POST("", h.Complaint.Create)
				complaints.GET("/my-complaints", h.Complaint.ListMine)
				complaints.GET("", h.Complaint.List)
				complaints.GET("/export", h.Export.Complaints)
				complaints.GET("/stats/overview", h.Complaint.Stats)
				complaints.GET("/stats/categories", h.Complaint.CategoryStats)
				complaints.GET("/stats/recent", h.Complaint.Recent)
				complaints.GET("/:id", h.Complaint.GetByID)
				complaints.PUT("/:id", h.Complaint.Update)
				complaints.DELETE("/:id", h.Complaint.Delete)
				complaints.GET("/:id/attachment", h.Complaint.Attachment)
			}

			// 统计分析（管理员）
			analytics := authorized.Group("/analytics", adminOnly)
			{
				analytics.GET("/dashboard", h.Analytics.Dashboard)
				analytics.GET("/trends", h.Analytics.Trends)
				analytics.GET("/category-performance", h.Analytics.CategoryPerformance)
				analytics.GET("/response-time", h.Analytics.ResponseTime)
				analytics.GET("/priority-distribution", h.Analytics.PriorityDistribution)
				analytics.GET("/monthly-report", h.Analytics.MonthlyReport)
				analytics.GET("/monthly-report/export", h.Export.MonthlyReport)
			}

			// 用户管理（管理员）
			users := authorized.Group("/users", adminOnly)
			{
				users.GET("", h.User.List)
				users.GET("/stats", h.User.Stats)
				users.POST("/admin", h.User.CreateAdmin)
				users.GET("/:id", h.User.GetByID)
				users.PUT("/:id", h.User.Update)
				users.DELETE("/:id", h.User.Delete)
			}
		}
	}

	return r
}
