package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Samikshyapaudel0/complanify-cms/config"
	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	"github.com/Samikshyapaudel0/complanify-cms/internal/repository"
	"github.com/Samikshyapaudel0/complanify-cms/internal/validation"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
)

// ── 用户模块业务错误 ──

var (
	ErrUserSelfDelete = apperrors.Kind(apperrors.ErrValidation, "不能删除自己的账号")
)

// UserService 管理员用户管理
type UserService interface {
	List(ctx context.Context, caller Caller, q *dto.UserListQuery) ([]dto.UserResponse, int64, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.UserResponse, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	// Delete 删除用户，其投诉随之级联删除
	Delete(ctx context.Context, caller Caller, id string) error
	Stats(ctx context.Context, caller Caller) (*dto.UserStatsResponse, error)
	CreateAdmin(ctx context.Context, caller Caller, req *dto.CreateAdminRequest) (*dto.UserResponse, error)
	// EnsureDefaultAdmin 启动时按 seed 配置创建默认管理员，已存在则跳过
	EnsureDefaultAdmin(ctx context.Context) error
}

type userService struct {
	cfg    *config.Config
	repo   *repository.Repository
	policy *Policy
	logger *zap.Logger
}

// NewUserService 创建 UserService 实例
func NewUserService(cfg *config.Config, repo *repository.Repository, policy *Policy, logger *zap.Logger) UserService {
	return &userService{cfg: cfg, repo: repo, policy: policy, logger: logger}
}

// ────────────────────── List ──────────────────────

func (s *userService) List(ctx context.Context, caller Caller, q *dto.UserListQuery) ([]dto.UserResponse, int64, error) {
	if err := s.policy.Authorize(caller, OpUserManage, ""); err != nil {
		return nil, 0, err
	}
	if err := validation.Struct(q); err != nil {
		return nil, 0, err
	}

	users, total, err := s.repo.User.List(ctx, q.Role, q.GetOffset(), q.GetLimit())
	if err != nil {
		s.logger.Error("查询用户列表失败", zap.Error(err))
		return nil, 0, apperrors.NewStorageError("user.list", err)
	}

	out := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	return out, total, nil
}

// ────────────────────── GetByID ──────────────────────

func (s *userService) GetByID(ctx context.Context, caller Caller, id string) (*dto.UserResponse, error) {
	if err := s.policy.Authorize(caller, OpUserManage, ""); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) load(ctx context.Context, id string) (*model.User, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrUserNotFound
	}

	user, err := s.repo.User.GetByID(ctx, id)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrUserNotFound
		}
		s.logger.Error("查询用户失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.NewStorageError("user.get", err)
	}
	return user, nil
}

// ────────────────────── Update ──────────────────────

func (s *userService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := s.policy.Authorize(caller, OpUserManage, ""); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	var email string
	if req.Email != nil {
		if e := normalizeEmail(*req.Email); e != user.Email {
			email = e
		}
	}
	studentID := trimmedOrNil(req.StudentID)
	if studentID != nil && user.StudentID != nil && *studentID == *user.StudentID {
		studentID = nil
	}
	if err := ensureUnique(ctx, s.repo.User, email, studentID, user.UserID); err != nil {
		return nil, err
	}

	if req.Name != nil {
		user.Name = strings.TrimSpace(*req.Name)
	}
	if email != "" {
		user.Email = email
	}
	if studentID != nil {
		user.StudentID = studentID
	}
	if req.Role != nil {
		user.Role = *req.Role
	}

	if err := s.repo.User.Update(ctx, user); err != nil {
		s.logger.Error("更新用户失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.NewStorageError("user.update", err)
	}

	s.logger.Info("管理员更新用户", zap.String("user_id", id), zap.String("admin_id", caller.UserID))

	resp := toUserResponse(user)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *userService) Delete(ctx context.Context, caller Caller, id string) error {
	if err := s.policy.Authorize(caller, OpUserManage, ""); err != nil {
		return err
	}
	if id == caller.UserID {
		return ErrUserSelfDelete
	}
	if _, err := uuid.Parse(id); err != nil {
		return ErrUserNotFound
	}

	if err := s.repo.User.Delete(ctx, id); err != nil {
		if isRecordNotFound(err) {
			return ErrUserNotFound
		}
		s.logger.Error("删除用户失败", zap.String("id", id), zap.Error(err))
		return apperrors.NewStorageError("user.delete", err)
	}

	s.logger.Info("管理员删除用户", zap.String("user_id", id), zap.String("admin_id", caller.UserID))
	return nil
}

// ────────────────────── Stats ──────────────────────

func (s *userService) Stats(ctx context.Context, caller Caller) (*dto.UserStatsResponse, error) {
	if err := s.policy.Authorize(caller, OpUserManage, ""); err != nil {
		return nil, err
	}

	counts, err := s.repo.User.CountByRole(ctx)
	if err != nil {
		s.logger.Error("统计用户失败", zap.Error(err))
		return nil, apperrors.NewStorageError("user.count", err)
	}
	return &dto.UserStatsResponse{
		Total:    counts.Total,
		Students: counts.Students,
		Admins:   counts.Admins,
	}, nil
}

// ────────────────────── CreateAdmin ──────────────────────

func (s *userService) CreateAdmin(ctx context.Context, caller Caller, req *dto.CreateAdminRequest) (*dto.UserResponse, error) {
	if err := s.policy.Authorize(caller, OpUserManage, ""); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.createAdmin(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		return nil, err
	}

	s.logger.Info("创建管理员", zap.String("user_id", user.UserID), zap.String("by", caller.UserID))

	resp := toUserResponse(user)
	return &resp, nil
}

func (s *userService) createAdmin(ctx context.Context, name, email, password string) (*model.User, error) {
	email = normalizeEmail(email)
	if err := ensureUnique(ctx, s.repo.User, email, nil, ""); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password, s.cfg.Auth.BcryptCost, s.logger)
	if err != nil {
		return nil, err
	}

	user := &model.User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: hash,
		Role:         model.RoleAdmin,
	}
	if err := s.repo.User.Create(ctx, user); err != nil {
		s.logger.Error("创建管理员失败", zap.String("email", email), zap.Error(err))
		return nil, apperrors.NewStorageError("user.create", err)
	}
	return user, nil
}

// ────────────────────── EnsureDefaultAdmin ──────────────────────

func (s *userService) EnsureDefaultAdmin(ctx context.Context) error {
	seed := s.cfg.Seed
	if seed.AdminEmail == "" || seed.AdminPassword == "" {
		return nil
	}

	_, err := s.repo.User.GetByEmail(ctx, normalizeEmail(seed.AdminEmail))
	if err == nil {
		return nil
	}
	if !isRecordNotFound(err) {
		return apperrors.NewStorageError("user.get_by_email", err)
	}

	name := seed.AdminName
	if name == "" {
		name = "System Administrator"
	}
	user, err := s.createAdmin(ctx, name, seed.AdminEmail, seed.AdminPassword)
	if err != nil {
		return err
	}

	s.logger.Info("已创建默认管理员", zap.String("email", user.Email))
	return nil
}
