package service

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/Samikshyapaudel0/complanify-cms/config"
	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	"github.com/Samikshyapaudel0/complanify-cms/internal/repository"
	"github.com/Samikshyapaudel0/complanify-cms/internal/validation"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/storage"
)

// ── 投诉模块业务错误 ──

var (
	ErrComplaintNotFound     = apperrors.Kind(apperrors.ErrNotFound, "投诉不存在")
	ErrAttachmentNotFound    = apperrors.Kind(apperrors.ErrNotFound, "该投诉没有附件")
	ErrAttachmentUnavailable = apperrors.Kind(apperrors.ErrUnavailable, "附件存储未启用")
)

const (
	attachmentFolder   = "complaints"
	defaultRecentLimit = 5
	maxRecentLimit     = 50
)

// ComplaintService 投诉生命周期与访问控制
type ComplaintService interface {
	// Create 提交投诉，file 可为 nil
	Create(ctx context.Context, caller Caller, req *dto.CreateComplaintRequest, file *storage.Object) (*dto.ComplaintResponse, error)
	GetByID(ctx context.Context, caller Caller, id string) (*dto.ComplaintResponse, error)
	ListMine(ctx context.Context, caller Caller) ([]dto.ComplaintResponse, error)
	List(ctx context.Context, caller Caller, q *dto.ComplaintListQuery) ([]dto.ComplaintResponse, int64, error)
	Update(ctx context.Context, caller Caller, id string, req *dto.UpdateComplaintRequest) (*dto.ComplaintResponse, error)
	Delete(ctx context.Context, caller Caller, id string) (*dto.ComplaintResponse, error)
	AttachmentURL(ctx context.Context, caller Caller, id string) (*dto.AttachmentResponse, error)
	Stats(ctx context.Context, caller Caller) (*model.StatusCounts, error)
	CategoryStats(ctx context.Context, caller Caller) ([]model.CategoryCount, error)
	Recent(ctx context.Context, caller Caller, n int) ([]dto.ComplaintResponse, error)
}

type complaintService struct {
	repo   *repository.Repository
	policy *Policy
	store  storage.BlobStore // 未启用附件存储时为 nil
	cfg    *config.Config
	logger *zap.Logger
}

// NewComplaintService 创建 ComplaintService 实例
func NewComplaintService(
	repo *repository.Repository,
	policy *Policy,
	store storage.BlobStore,
	cfg *config.Config,
	logger *zap.Logger,
) ComplaintService {
	return &complaintService{
		repo:   repo,
		policy: policy,
		store:  store,
		cfg:    cfg,
		logger: logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *complaintService) Create(ctx context.Context, caller Caller, req *dto.CreateComplaintRequest, file *storage.Object) (*dto.ComplaintResponse, error) {
	if err := s.policy.Authorize(caller, OpComplaintCreate, ""); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	priority := req.Priority
	if priority == "" {
		priority = model.PriorityMedium
	}

	complaint := &model.Complaint{
		Title:       strings.TrimSpace(req.Title),
		Description: strings.TrimSpace(req.Description),
		Category:    req.Category,
		Priority:    priority,
		Status:      model.StatusPending,
		UserID:      caller.UserID, // 所有者始终为调用者本人
	}

	if file != nil {
		key, err := s.storeAttachment(ctx, file)
		if err != nil {
			return nil, err
		}
		complaint.FilePath = &key
	}

	if err := s.repo.Complaint.Create(ctx, complaint); err != nil {
		s.logger.Error("创建投诉失败", zap.String("user_id", caller.UserID), zap.Error(err))
		if complaint.FilePath != nil {
			s.removeAttachment(ctx, *complaint.FilePath)
		}
		return nil, apperrors.NewStorageError("complaint.create", err)
	}

	s.logger.Info("投诉已提交",
		zap.String("complaint_id", complaint.ComplaintID),
		zap.String("user_id", caller.UserID),
		zap.String("category", complaint.Category),
	)

	resp := toComplaintResponse(complaint)
	return &resp, nil
}

// storeAttachment 校验并上传附件，返回对象 key
func (s *complaintService) storeAttachment(ctx context.Context, file *storage.Object) (string, error) {
	if s.store == nil {
		return "", ErrAttachmentUnavailable
	}
	if file.Size > s.cfg.Upload.MaxBytes() {
		return "", apperrors.NewValidationError("file", "文件大小超出限制")
	}
	if !s.allowedExtension(file.Filename) {
		return "", apperrors.NewValidationError("file", "不支持的文件类型")
	}

	key, err := s.store.Store(ctx, attachmentFolder, *file)
	if err != nil {
		s.logger.Error("上传附件失败", zap.String("filename", file.Filename), zap.Error(err))
		return "", apperrors.NewStorageError("attachment.store", err)
	}
	return key, nil
}

func (s *complaintService) allowedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return false
	}
	for _, allowed := range s.cfg.Upload.AllowedExtensions {
		if strings.EqualFold(ext, allowed) {
			return true
		}
	}
	return false
}

// removeAttachment 尽力删除附件，失败只记录日志
func (s *complaintService) removeAttachment(ctx context.Context, key string) {
	if s.store == nil {
		return
	}
	if err := s.store.Remove(ctx, key); err != nil {
		s.logger.Warn("删除附件失败", zap.String("key", key), zap.Error(err))
	}
}

// ────────────────────── GetByID ──────────────────────

func (s *complaintService) GetByID(ctx context.Context, caller Caller, id string) (*dto.ComplaintResponse, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, OpComplaintRead, complaint.UserID); err != nil {
		return nil, err
	}

	resp := toComplaintResponse(complaint)
	return &resp, nil
}

// load 查询投诉，不存在时返回 ErrComplaintNotFound
func (s *complaintService) load(ctx context.Context, id string) (*model.Complaint, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrComplaintNotFound
	}

	complaint, err := s.repo.Complaint.FindByID(ctx, id)
	if err != nil {
		s.logger.Error("查询投诉失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.NewStorageError("complaint.find", err)
	}
	if complaint == nil {
		return nil, ErrComplaintNotFound
	}
	return complaint, nil
}

// ────────────────────── ListMine ──────────────────────

func (s *complaintService) ListMine(ctx context.Context, caller Caller) ([]dto.ComplaintResponse, error) {
	if err := s.policy.Authorize(caller, OpComplaintListMine, ""); err != nil {
		return nil, err
	}

	list, err := s.repo.Complaint.FindByOwner(ctx, caller.UserID)
	if err != nil {
		s.logger.Error("查询我的投诉失败", zap.String("user_id", caller.UserID), zap.Error(err))
		return nil, apperrors.NewStorageError("complaint.find_by_owner", err)
	}
	return toComplaintResponses(list), nil
}

// ────────────────────── List ──────────────────────

func (s *complaintService) List(ctx context.Context, caller Caller, q *dto.ComplaintListQuery) ([]dto.ComplaintResponse, int64, error) {
	if err := s.policy.Authorize(caller, OpComplaintList, ""); err != nil {
		return nil, 0, err
	}

	list, err := s.repo.Complaint.List(ctx, model.ComplaintFilter{
		Status:   strings.TrimSpace(q.Status),
		Category: strings.TrimSpace(q.Category),
		Search:   strings.TrimSpace(q.Search),
	})
	if err != nil {
		s.logger.Error("查询投诉列表失败", zap.Error(err))
		return nil, 0, apperrors.NewStorageError("complaint.list", err)
	}

	total := int64(len(list))
	offset := q.GetOffset()
	if offset >= len(list) {
		return []dto.ComplaintResponse{}, total, nil
	}
	end := offset + q.GetLimit()
	if end > len(list) {
		end = len(list)
	}

	return toComplaintResponses(list[offset:end]), total, nil
}

// ────────────────────── Update ──────────────────────

func (s *complaintService) Update(ctx context.Context, caller Caller, id string, req *dto.UpdateComplaintRequest) (*dto.ComplaintResponse, error) {
	// 仅管理员可处理，先于任何存储访问判断
	if err := s.policy.Authorize(caller, OpComplaintUpdate, ""); err != nil {
		return nil, err
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	if req.Status == nil && req.AdminResponse == nil {
		return nil, apperrors.NewValidationError("status", "至少需要提供 status 或 admin_response")
	}

	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}

	upd := model.ComplaintUpdate{Status: req.Status}
	if req.AdminResponse != nil {
		trimmed := strings.TrimSpace(*req.AdminResponse)
		upd.AdminResponse = &trimmed
	}

	updated, err := s.repo.Complaint.Update(ctx, id, upd)
	if err != nil {
		if isRecordNotFound(err) {
			return nil, ErrComplaintNotFound
		}
		s.logger.Error("更新投诉失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.NewStorageError("complaint.update", err)
	}
	updated.Owner = existing.Owner

	s.logger.Info("投诉已更新",
		zap.String("complaint_id", id),
		zap.String("admin_id", caller.UserID),
		zap.String("status", updated.Status),
	)

	resp := toComplaintResponse(updated)
	return &resp, nil
}

// ────────────────────── Delete ──────────────────────

func (s *complaintService) Delete(ctx context.Context, caller Caller, id string) (*dto.ComplaintResponse, error) {
	existing, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, OpComplaintDelete, existing.UserID); err != nil {
		return nil, err
	}

	removed, err := s.repo.Complaint.Delete(ctx, id)
	if err != nil {
		s.logger.Error("删除投诉失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.NewStorageError("complaint.delete", err)
	}
	if removed == nil {
		// 并发删除
		return nil, ErrComplaintNotFound
	}

	if removed.FilePath != nil {
		s.removeAttachment(ctx, *removed.FilePath)
	}

	s.logger.Info("投诉已删除", zap.String("complaint_id", id), zap.String("by", caller.UserID))

	removed.Owner = existing.Owner
	resp := toComplaintResponse(removed)
	return &resp, nil
}

// ────────────────────── AttachmentURL ──────────────────────

func (s *complaintService) AttachmentURL(ctx context.Context, caller Caller, id string) (*dto.AttachmentResponse, error) {
	complaint, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.policy.Authorize(caller, OpComplaintAttachment, complaint.UserID); err != nil {
		return nil, err
	}
	if complaint.FilePath == nil || *complaint.FilePath == "" {
		return nil, ErrAttachmentNotFound
	}
	if s.store == nil {
		return nil, ErrAttachmentUnavailable
	}

	url, err := s.store.PresignedURL(ctx, *complaint.FilePath)
	if err != nil {
		s.logger.Error("生成附件链接失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.NewStorageError("attachment.presign", err)
	}

	return &dto.AttachmentResponse{URL: url, ExpiresIn: int(s.cfg.Storage.PresignTTL.Seconds())}, nil
}

// ────────────────────── Stats ──────────────────────

func (s *complaintService) Stats(ctx context.Context, caller Caller) (*model.StatusCounts, error) {
	if err := s.policy.Authorize(caller, OpComplaintStats, ""); err != nil {
		return nil, err
	}

	counts, err := s.repo.Complaint.Stats(ctx)
	if err != nil {
		s.logger.Error("统计投诉状态失败", zap.Error(err))
		return nil, apperrors.NewStorageError("complaint.stats", err)
	}
	return counts, nil
}

func (s *complaintService) CategoryStats(ctx context.Context, caller Caller) ([]model.CategoryCount, error) {
	if err := s.policy.Authorize(caller, OpComplaintStats, ""); err != nil {
		return nil, err
	}

	rows, err := s.repo.Complaint.CategoryStats(ctx)
	if err != nil {
		s.logger.Error("统计投诉分类失败", zap.Error(err))
		return nil, apperrors.NewStorageError("complaint.category_stats", err)
	}
	if rows == nil {
		rows = []model.CategoryCount{}
	}
	return rows, nil
}

func (s *complaintService) Recent(ctx context.Context, caller Caller, n int) ([]dto.ComplaintResponse, error) {
	if err := s.policy.Authorize(caller, OpComplaintStats, ""); err != nil {
		return nil, err
	}

	switch {
	case n <= 0:
		n = defaultRecentLimit
	case n > maxRecentLimit:
		n = maxRecentLimit
	}

	list, err := s.repo.Complaint.Recent(ctx, n)
	if err != nil {
		s.logger.Error("查询最近投诉失败", zap.Error(err))
		return nil, apperrors.NewStorageError("complaint.recent", err)
	}
	return toComplaintResponses(list), nil
}

// ── 转换 ──

func toComplaintResponse(c *model.Complaint) dto.ComplaintResponse {
	resp := dto.ComplaintResponse{
		ID:            c.ComplaintID,
		Title:         c.Title,
		Description:   c.Description,
		Category:      c.Category,
		Priority:      c.Priority,
		Status:        c.Status,
		UserID:        c.UserID,
		AdminResponse: c.AdminResponse,
		HasAttachment: c.FilePath != nil && *c.FilePath != "",
		CreatedAt:     c.CreatedAt,
		UpdatedAt:     c.UpdatedAt,
	}
	if c.Owner != nil {
		resp.UserName = c.Owner.Name
		resp.UserEmail = c.Owner.Email
		resp.StudentID = c.Owner.StudentID
	}
	return resp
}

func toComplaintResponses(list []model.Complaint) []dto.ComplaintResponse {
	out := make([]dto.ComplaintResponse, 0, len(list))
	for i := range list {
		out = append(out, toComplaintResponse(&list[i]))
	}
	return out
}
