package service

import (
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/Samikshyapaudel0/complanify-cms/config"
	"github.com/Samikshyapaudel0/complanify-cms/internal/repository"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/jwt"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/storage"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Auth      AuthService
	User      UserService
	Complaint ComplaintService
	Analytics AnalyticsService
	Export    ExportService
}

// Deps 可选的外部依赖，未启用时传 nil
type Deps struct {
	Store     storage.BlobStore
	Blacklist TokenBlacklist
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	deps Deps,
	logger *zap.Logger,
) *Service {
	policy := DefaultPolicy()
	analytics := NewAnalyticsService(repo, policy, logger)

	return &Service{
		Auth:      NewAuthService(cfg, repo, jwtMgr, deps.Blacklist, logger),
		User:      NewUserService(cfg, repo, policy, logger),
		Complaint: NewComplaintService(repo, policy, deps.Store, cfg, logger),
		Analytics: analytics,
		Export:    NewExportService(repo, policy, analytics, logger),
	}
}

func isRecordNotFound(err error) bool {
	return errors.Is(err, gorm.ErrRecordNotFound)
}
