package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
)

// ComplaintRepository 投诉数据访问接口
// 每个方法只执行一条 SQL；查询结果按 created_at 倒序
type ComplaintRepository interface {
	Create(ctx context.Context, c *model.Complaint) error
	// FindByID 不存在时返回 (nil, nil)
	FindByID(ctx context.Context, id string) (*model.Complaint, error)
	FindByOwner(ctx context.Context, ownerID string) ([]model.Complaint, error)
	List(ctx context.Context, filter model.ComplaintFilter) ([]model.Complaint, error)
	// Update 不存在时返回 gorm.ErrRecordNotFound
	Update(ctx context.Context, id string, upd model.ComplaintUpdate) (*model.Complaint, error)
	// Delete 返回被删除的记录，不存在时返回 (nil, nil)
	Delete(ctx context.Context, id string) (*model.Complaint, error)
	Recent(ctx context.Context, n int) ([]model.Complaint, error)
	CountByOwner(ctx context.Context, ownerID string) (int64, error)

	// ── 聚合统计 ──
	Stats(ctx context.Context) (*model.StatusCounts, error)
	CategoryStats(ctx context.Context) ([]model.CategoryCount, error)
	CategoryStatusCounts(ctx context.Context) ([]model.CategoryStatusCount, error)
	PriorityCounts(ctx context.Context) ([]model.PriorityCount, error)
	ResponseTimeSpans(ctx context.Context) (*model.ResponseTimeSpan, error)
	DailyCounts(ctx context.Context, since time.Time) ([]model.DailyCount, error)
	MonthlyCounts(ctx context.Context, year, month int) (*model.MonthlyCounts, error)
}

// complaintRepo ComplaintRepository 的 GORM 实现
type complaintRepo struct {
	db *gorm.DB
}

// NewComplaintRepo 创建 ComplaintRepository 实例
func NewComplaintRepo(db *gorm.DB) ComplaintRepository {
	return &complaintRepo{db: db}
}

// statusCountColumns 按状态拆分计数的公共 SELECT 片段
const statusCountColumns = `COUNT(CASE WHEN complaints.status = 'pending' THEN 1 END) AS pending,
	COUNT(CASE WHEN complaints.status = 'in-review' THEN 1 END) AS in_review,
	COUNT(CASE WHEN complaints.status = 'resolved' THEN 1 END) AS resolved`

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r *complaintRepo) Create(ctx context.Context, c *model.Complaint) error {
	return r.db.WithContext(ctx).Create(c).Error
}

func (r *complaintRepo) FindByID(ctx context.Context, id string) (*model.Complaint, error) {
	var c model.Complaint
	err := r.db.WithContext(ctx).
		Joins("Owner").
		Where("complaints.complaint_id = ?", id).
		First(&c).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

func (r *complaintRepo) FindByOwner(ctx context.Context, ownerID string) ([]model.Complaint, error) {
	var list []model.Complaint
	err := r.db.WithContext(ctx).
		Joins("Owner").
		Where("complaints.user_id = ?", ownerID).
		Order("complaints.created_at DESC").
		Find(&list).Error
	return list, err
}

func (r *complaintRepo) List(ctx context.Context, filter model.ComplaintFilter) ([]model.Complaint, error) {
	db := r.db.WithContext(ctx).Joins("Owner")

	if filter.Status != "" && filter.Status != "all" {
		db = db.Where("complaints.status = ?", filter.Status)
	}
	if filter.Category != "" {
		db = db.Where("complaints.category = ?", filter.Category)
	}
	if filter.Search != "" {
		pattern := "%" + likeEscaper.Replace(filter.Search) + "%"
		db = db.Where(`(complaints.title ILIKE ? OR complaints.description ILIKE ? OR "Owner".name ILIKE ?)`,
			pattern, pattern, pattern)
	}

	var list []model.Complaint
	err := db.Order("complaints.created_at DESC").Find(&list).Error
	return list, err
}

func (r *complaintRepo) Update(ctx context.Context, id string, upd model.ComplaintUpdate) (*model.Complaint, error) {
	fields := map[string]interface{}{"updated_at": time.Now()}
	if upd.Status != nil {
		fields["status"] = *upd.Status
	}
	if upd.AdminResponse != nil {
		fields["admin_response"] = *upd.AdminResponse
	}

	var c model.Complaint
	res := r.db.WithContext(ctx).
		Model(&c).
		Clauses(clause.Returning{}).
		Where("complaint_id = ?", id).
		Updates(fields)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, gorm.ErrRecordNotFound
	}
	return &c, nil
}

func (r *complaintRepo) Delete(ctx context.Context, id string) (*model.Complaint, error) {
	var c model.Complaint
	res := r.db.WithContext(ctx).
		Clauses(clause.Returning{}).
		Where("complaint_id = ?", id).
		Delete(&c)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, nil
	}
	return &c, nil
}

func (r *complaintRepo) Recent(ctx context.Context, n int) ([]model.Complaint, error) {
	var list []model.Complaint
	err := r.db.WithContext(ctx).
		Joins("Owner").
		Order("complaints.created_at DESC").
		Limit(n).
		Find(&list).Error
	return list, err
}

func (r *complaintRepo) CountByOwner(ctx context.Context, ownerID string) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&model.Complaint{}).
		Where("user_id = ?", ownerID).
		Count(&n).Error
	return n, err
}

// ── 聚合统计 ──

func (r *complaintRepo) Stats(ctx context.Context) (*model.StatusCounts, error) {
	var counts model.StatusCounts
	err := r.db.WithContext(ctx).Model(&model.Complaint{}).
		Select("COUNT(*) AS total, " + statusCountColumns).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return &counts, nil
}

func (r *complaintRepo) CategoryStats(ctx context.Context) ([]model.CategoryCount, error) {
	var rows []model.CategoryCount
	err := r.db.WithContext(ctx).Model(&model.Complaint{}).
		Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *complaintRepo) CategoryStatusCounts(ctx context.Context) ([]model.CategoryStatusCount, error) {
	var rows []model.CategoryStatusCount
	err := r.db.WithContext(ctx).Model(&model.Complaint{}).
		Select("category, COUNT(*) AS total, " + statusCountColumns).
		Group("category").
		Order("total DESC").
		Scan(&rows).Error
	return rows, err
}

func (r *complaintRepo) PriorityCounts(ctx context.Context) ([]model.PriorityCount, error) {
	var rows []model.PriorityCount
	err := r.db.WithContext(ctx).Model(&model.Complaint{}).
		Select("priority, COUNT(*) AS count").
		Group("priority").
		Order("count DESC").
		Scan(&rows).Error
	return rows, err
}

// ResponseTimeSpans 只统计 updated_at 晚于 created_at 的已解决投诉
func (r *complaintRepo) ResponseTimeSpans(ctx context.Context) (*model.ResponseTimeSpan, error) {
	var span model.ResponseTimeSpan
	err := r.db.WithContext(ctx).Model(&model.Complaint{}).
		Select(`COALESCE(AVG(EXTRACT(EPOCH FROM (updated_at - created_at))), 0) AS avg_seconds,
			COALESCE(MIN(EXTRACT(EPOCH FROM (updated_at - created_at))), 0) AS min_seconds,
			COALESCE(MAX(EXTRACT(EPOCH FROM (updated_at - created_at))), 0) AS max_seconds,
			COUNT(*) AS resolved_count`).
		Where("status = ? AND updated_at > created_at", model.StatusResolved).
		Scan(&span).Error
	if err != nil {
		return nil, err
	}
	return &span, nil
}

func (r *complaintRepo) DailyCounts(ctx context.Context, since time.Time) ([]model.DailyCount, error) {
	var rows []model.DailyCount
	err := r.db.WithContext(ctx).Model(&model.Complaint{}).
		Select(`DATE(created_at) AS day, COUNT(*) AS count,
			COUNT(CASE WHEN status = 'resolved' THEN 1 END) AS resolved`).
		Where("created_at >= ?", since).
		Group("DATE(created_at)").
		Order("day ASC").
		Scan(&rows).Error
	return rows, err
}

func (r *complaintRepo) MonthlyCounts(ctx context.Context, year, month int) (*model.MonthlyCounts, error) {
	start := time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0)

	var counts model.MonthlyCounts
	err := r.db.WithContext(ctx).Model(&model.Complaint{}).
		Select("COUNT(*) AS total, "+statusCountColumns+", COUNT(DISTINCT user_id) AS unique_users").
		Where("created_at >= ? AND created_at < ?", start, end).
		Scan(&counts).Error
	if err != nil {
		return nil, err
	}
	return &counts, nil
}
