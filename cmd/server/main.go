package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/Samikshyapaudel0/complanify-cms/config"
	"github.com/Samikshyapaudel0/complanify-cms/internal/api/handler"
	"github.com/Samikshyapaudel0/complanify-cms/internal/api/router"
	"github.com/Samikshyapaudel0/complanify-cms/internal/repository"
	"github.com/Samikshyapaudel0/complanify-cms/internal/service"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/database"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/jwt"
	applogger "github.com/Samikshyapaudel0/complanify-cms/pkg/logger"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/redis"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/storage"
)

func main() {
	// 0. 加载 .env（不存在时忽略）
	_ = godotenv.Load()

	// 1. 加载配置
	cfg, err := config.Load(os.Getenv("CMS_CONFIG"))
	if err != nil {
		fmt.Fprintf(os.Stderr, "加载配置失败: %v\n", err)
		os.Exit(1)
	}

	// 2. 初始化日志
	logger, err := applogger.NewLogger(&cfg.Log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "初始化日志失败: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("应用启动中...",
		zap.Int("port", cfg.Server.Port),
		zap.String("log_level", cfg.Log.Level),
	)

	// 3. 连接数据库
	db, err := database.NewDB(&cfg.Database, cfg.Log.Level, logger)
	if err != nil {
		logger.Fatal("数据库连接失败", zap.Error(err))
	}
	logger.Info("数据库连接成功")

	// 3.1 执行数据库迁移
	sqlDB, err := db.DB()
	if err != nil {
		logger.Fatal("获取底层 sql.DB 失败", zap.Error(err))
	}
	if err := database.RunMigrations(sqlDB, logger); err != nil {
		logger.Fatal("数据库迁移失败", zap.Error(err))
	}

	var deps service.Deps

	// 4. 连接 Redis（可选：连接失败时降级运行，不中断启动）
	rdb, err := redis.NewClient(&cfg.Redis, logger)
	if err != nil {
		logger.Warn("Redis 连接失败，Token 黑名单与登录限流将不可用", zap.Error(err))
		rdb = nil
	} else {
		deps.Blacklist = rdb
	}

	// 5. 连接对象存储（可选：未启用时不支持附件）
	if cfg.Storage.Enabled {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		store, err := storage.NewMinIOStore(ctx, &cfg.Storage, logger)
		cancel()
		if err != nil {
			logger.Fatal("对象存储初始化失败", zap.Error(err))
		}
		deps.Store = store
	} else {
		logger.Info("对象存储未启用，附件上传不可用")
	}

	// 6. 初始化 JWT 管理器
	jwtMgr := jwt.NewManager(&cfg.Auth)

	// 7. 依赖注入: Repository → Service → Handler
	repo := repository.NewRepository(db)
	svc := service.NewService(cfg, repo, jwtMgr, deps, logger)

	seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
	if err := svc.User.EnsureDefaultAdmin(seedCtx); err != nil {
		logger.Error("初始化默认管理员失败", zap.Error(err))
	}
	seedCancel()

	h := handler.NewHandler(svc)

	// 8. 初始化路由
	engine := router.Setup(cfg, h, jwtMgr, rdb, logger)

	// 9. 启动 HTTP 服务器（优雅关闭）
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      engine,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("HTTP 服务器已启动", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP 服务器异常", zap.Error(err))
		}
	}()

	// 10. 监听系统信号，优雅关闭
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	logger.Info("收到关闭信号，开始优雅关闭...", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("服务器关闭异常", zap.Error(err))
	}

	// 关闭数据库连接
	if err := sqlDB.Close(); err != nil {
		logger.Error("关闭数据库连接失败", zap.Error(err))
	}

	// 关闭 Redis 连接
	if rdb != nil {
		rdb.Close()
	}

	logger.Info("服务器已关闭")
}
