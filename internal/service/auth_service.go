package service

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/Samikshyapaudel0/complanify-cms/config"
	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	"github.com/Samikshyapaudel0/complanify-cms/internal/repository"
	"github.com/Samikshyapaudel0/complanify-cms/internal/validation"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/jwt"
)

var (
	ErrInvalidCredentials = apperrors.Kind(apperrors.ErrUnauthorized, "邮箱或密码错误")
	ErrWrongPassword      = apperrors.Kind(apperrors.ErrValidation, "当前密码错误")
	ErrUserNotFound       = apperrors.Kind(apperrors.ErrNotFound, "用户不存在")
	ErrEmailExists        = apperrors.Kind(apperrors.ErrConflict, "该邮箱已注册")
	ErrStudentIDExists    = apperrors.Kind(apperrors.ErrConflict, "该学号已注册")
)

// TokenBlacklist 登出时吊销 Token
type TokenBlacklist interface {
	BlacklistToken(ctx context.Context, jti string, ttl time.Duration) error
}

// AuthService 认证业务接口
type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	// Logout 将 Token 加入黑名单直至其过期
	Logout(ctx context.Context, jti string, expiresAt time.Time) error
	GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error)
	UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error
}

type authService struct {
	cfg       *config.Config
	repo      *repository.Repository
	jwtMgr    *jwt.Manager
	blacklist TokenBlacklist // Redis 未启用时为 nil
	logger    *zap.Logger
}

// NewAuthService 创建 AuthService 实例
func NewAuthService(
	cfg *config.Config,
	repo *repository.Repository,
	jwtMgr *jwt.Manager,
	blacklist TokenBlacklist,
	logger *zap.Logger,
) AuthService {
	return &authService{
		cfg:       cfg,
		repo:      repo,
		jwtMgr:    jwtMgr,
		blacklist: blacklist,
		logger:    logger,
	}
}

// ────────────────────── Register ──────────────────────

func (s *authService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	email := normalizeEmail(req.Email)
	studentID := trimmedOrNil(req.StudentID)

	if err := ensureUnique(ctx, s.repo.User, email, studentID, ""); err != nil {
		return nil, err
	}

	hash, err := s.hashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(req.Name),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
		StudentID:    studentID,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建用户失败", zap.String("email", email), zap.Error(err))
		return nil, apperrors.NewStorageError("user.create", err)
	}

	s.logger.Info("新用户注册", zap.String("user_id", user.UserID))

	return s.issueToken(user)
}

// ────────────────────── Login ──────────────────────

func (s *authService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.User.GetByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		s.logger.Error("查询用户失败", zap.Error(err))
		return nil, apperrors.NewStorageError("user.get_by_email", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	// 学生入口不能登录管理员账号，反之亦然
	if req.Role != "" && req.Role != user.Role {
		return nil, ErrInvalidCredentials
	}

	return s.issueToken(user)
}

func (s *authService) issueToken(user *model.User) (*dto.TokenResponse, error) {
	token, err := s.jwtMgr.GenerateAccessToken(user.UserID, user.Role)
	if err != nil {
		s.logger.Error("生成 Token 失败", zap.Error(err))
		return nil, err
	}

	return &dto.TokenResponse{
		Token:     token,
		ExpiresIn: int(s.jwtMgr.TTL().Seconds()),
		User:      toUserResponse(user),
	}, nil
}

// ────────────────────── Logout ──────────────────────

func (s *authService) Logout(ctx context.Context, jti string, expiresAt time.Time) error {
	if s.blacklist == nil {
		s.logger.Debug("Redis 未启用，登出仅由客户端丢弃 Token")
		return nil
	}

	if err := s.blacklist.BlacklistToken(ctx, jti, time.Until(expiresAt)); err != nil {
		s.logger.Error("加入 Token 黑名单失败", zap.String("jti", jti), zap.Error(err))
		return apperrors.NewStorageError("token.blacklist", err)
	}
	return nil
}

// ────────────────────── Profile ──────────────────────

func (s *authService) GetProfile(ctx context.Context, userID string) (*dto.UserResponse, error) {
	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *authService) UpdateProfile(ctx context.Context, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	if req.Email != nil {
		email := normalizeEmail(*req.Email)
		if email != user.Email {
			if err := ensureUnique(ctx, s.repo.User, email, nil, user.UserID); err != nil {
				return nil, err
			}
			user.Email = email
		}
	}
	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新个人资料失败", zap.String("user_id", userID), zap.Error(err))
		return nil, apperrors.NewStorageError("user.update", err)
	}

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── ChangePassword ──────────────────────

func (s *authService) ChangePassword(ctx context.Context, userID string, req *dto.ChangePasswordRequest) error {
	if err := validation.Struct(req); err != nil {
		return err
	}

	user, err := s.getUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.CurrentPassword)); err != nil {
		return ErrWrongPassword
	}

	hash, err := s.hashPassword(req.NewPassword)
	if err != nil {
		return err
	}
	user.PasswordHash = hash

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("修改密码失败", zap.String("user_id", userID), zap.Error(err))
		return apperrors.NewStorageError("user.update", err)
	}

	s.logger.Info("用户修改密码", zap.String("user_id", userID))
	return nil
}

// ── 辅助函数 ──

func (s *authService) getUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.repo.User.GetByID(ctx, userID)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", userID), zap.Error(err))
		return nil, apperrors.NewStorageError("user.get", err)
	}
	return user, nil
}

func (s *authService) hashPassword(password string) (string, error) {
	return hashPassword(password, s.cfg.Auth.BcryptCost, s.logger)
}

func hashPassword(password string, cost int, logger *zap.Logger) (string, error) {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		logger.Error("密码哈希失败", zap.Error(err))
		return "", err
	}
	return string(hash), nil
}

// ensureUnique 检查邮箱、学号是否已被其他用户占用；selfID 为当前用户时跳过自身
func ensureUnique(ctx context.Context, users repository.UserRepository, email string, studentID *string, selfID string) error {
	if email != "" {
		u, err := users.GetByEmail(ctx, email)
		switch {
		case err == nil && u.UserID != selfID:
			return ErrEmailExists
		case err != nil && !isRecordNotFound(err):
			return apperrors.NewStorageError("user.get_by_email", err)
		}
	}
	if studentID != nil {
		u, err := users.GetByStudentID(ctx, *studentID)
		switch {
		case err == nil && u.UserID != selfID:
			return ErrStudentIDExists
		case err != nil && !isRecordNotFound(err):
			return apperrors.NewStorageError("user.get_by_student_id", err)
		}
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func trimmedOrNil(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" {
		return nil
	}
	return &t
}

func toUserResponse(u *model.User) dto.UserResponse {
	return dto.UserResponse{
		ID:        u.UserID,
		Name:      u.Name,
		Email:     u.Email,
		Role:      u.Role,
		StudentID: u.StudentID,
		CreatedAt: u.CreatedAt,
	}
}
