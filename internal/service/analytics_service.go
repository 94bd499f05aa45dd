package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	"github.com/Samikshyapaudel0/complanify-cms/internal/repository"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
)

const (
	defaultTrendDays = 30
	maxTrendDays     = 365
	dashboardRecent  = 5
	trendDateLayout  = "2006-01-02"
	minReportYear    = 2000
	maxReportYear    = 2100
	secondsPerHour   = 3600.0
)

// AnalyticsService 管理员统计分析
//
// 所有结果在每次调用时实时计算，不做缓存。
type AnalyticsService interface {
	Dashboard(ctx context.Context, caller Caller) (*dto.DashboardResponse, error)
	CategoryPerformance(ctx context.Context, caller Caller) ([]dto.CategoryPerformance, error)
	PriorityDistribution(ctx context.Context, caller Caller) ([]dto.PriorityShare, error)
	ResponseTime(ctx context.Context, caller Caller) (*dto.ResponseTimeResponse, error)
	// Trend 最近 days 天（含今天）的每日新增，缺失的日期补 0；days 为 0 时取 30
	Trend(ctx context.Context, caller Caller, days int) ([]dto.TrendPoint, error)
	// MonthlyReport year / month 为 0 时取当前年月
	MonthlyReport(ctx context.Context, caller Caller, year, month int) (*dto.MonthlyReportResponse, error)
}

type analyticsService struct {
	repo   *repository.Repository
	policy *Policy
	logger *zap.Logger
	now    func() time.Time
}

// NewAnalyticsService 创建 AnalyticsService 实例
func NewAnalyticsService(repo *repository.Repository, policy *Policy, logger *zap.Logger) AnalyticsService {
	return &analyticsService{
		repo:   repo,
		policy: policy,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// ────────────────────── Dashboard ──────────────────────

func (s *analyticsService) Dashboard(ctx context.Context, caller Caller) (*dto.DashboardResponse, error) {
	if err := s.policy.Authorize(caller, OpAnalytics, ""); err != nil {
		return nil, err
	}

	stats, err := s.repo.Complaint.Stats(ctx)
	if err != nil {
		return nil, s.storageErr("analytics.dashboard.stats", err)
	}

	users, err := s.repo.User.CountByRole(ctx)
	if err != nil {
		return nil, s.storageErr("analytics.dashboard.users", err)
	}

	categories, err := s.repo.Complaint.CategoryStats(ctx)
	if err != nil {
		return nil, s.storageErr("analytics.dashboard.categories", err)
	}
	if categories == nil {
		categories = []model.CategoryCount{}
	}

	recent, err := s.repo.Complaint.Recent(ctx, dashboardRecent)
	if err != nil {
		return nil, s.storageErr("analytics.dashboard.recent", err)
	}

	return &dto.DashboardResponse{
		Stats:          *stats,
		TotalStudents:  users.Students,
		Categories:     categories,
		Recent:         toComplaintResponses(recent),
		ResolutionRate: ResolutionRate(stats.Resolved, stats.Total),
	}, nil
}

// ────────────────────── CategoryPerformance ──────────────────────

func (s *analyticsService) CategoryPerformance(ctx context.Context, caller Caller) ([]dto.CategoryPerformance, error) {
	if err := s.policy.Authorize(caller, OpAnalytics, ""); err != nil {
		return nil, err
	}

	rows, err := s.repo.Complaint.CategoryStatusCounts(ctx)
	if err != nil {
		return nil, s.storageErr("analytics.category_performance", err)
	}

	out := make([]dto.CategoryPerformance, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.CategoryPerformance{
			Category:       r.Category,
			Total:          r.Total,
			Resolved:       r.Resolved,
			Pending:        r.Pending,
			InReview:       r.InReview,
			ResolutionRate: percent2(r.Resolved, r.Total),
		})
	}
	return out, nil
}

// ────────────────────── PriorityDistribution ──────────────────────

func (s *analyticsService) PriorityDistribution(ctx context.Context, caller Caller) ([]dto.PriorityShare, error) {
	if err := s.policy.Authorize(caller, OpAnalytics, ""); err != nil {
		return nil, err
	}

	rows, err := s.repo.Complaint.PriorityCounts(ctx)
	if err != nil {
		return nil, s.storageErr("analytics.priority_distribution", err)
	}

	var total int64
	for _, r := range rows {
		total += r.Count
	}

	out := make([]dto.PriorityShare, 0, len(rows))
	for _, r := range rows {
		out = append(out, dto.PriorityShare{
			Priority:   r.Priority,
			Count:      r.Count,
			Percentage: percent2(r.Count, total),
		})
	}
	return out, nil
}

// ────────────────────── ResponseTime ──────────────────────

func (s *analyticsService) ResponseTime(ctx context.Context, caller Caller) (*dto.ResponseTimeResponse, error) {
	if err := s.policy.Authorize(caller, OpAnalytics, ""); err != nil {
		return nil, err
	}

	span, err := s.repo.Complaint.ResponseTimeSpans(ctx)
	if err != nil {
		return nil, s.storageErr("analytics.response_time", err)
	}
	if span.ResolvedCount == 0 {
		return &dto.ResponseTimeResponse{}, nil
	}

	return &dto.ResponseTimeResponse{
		AvgHours:      round2(span.AvgSeconds / secondsPerHour),
		MinHours:      round2(span.MinSeconds / secondsPerHour),
		MaxHours:      round2(span.MaxSeconds / secondsPerHour),
		ResolvedCount: span.ResolvedCount,
	}, nil
}

// ────────────────────── Trend ──────────────────────

func (s *analyticsService) Trend(ctx context.Context, caller Caller, days int) ([]dto.TrendPoint, error) {
	if err := s.policy.Authorize(caller, OpAnalytics, ""); err != nil {
		return nil, err
	}

	if days == 0 {
		days = defaultTrendDays
	}
	if days < 1 || days > maxTrendDays {
		return nil, apperrors.NewValidationError("days", "取值范围为 1-365")
	}

	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	start := today.AddDate(0, 0, -days)

	rows, err := s.repo.Complaint.DailyCounts(ctx, start)
	if err != nil {
		return nil, s.storageErr("analytics.trend", err)
	}

	byDay := make(map[string]model.DailyCount, len(rows))
	for _, r := range rows {
		byDay[r.Day.UTC().Format(trendDateLayout)] = r
	}

	points := make([]dto.TrendPoint, 0, days+1)
	for d := start; !d.After(today); d = d.AddDate(0, 0, 1) {
		key := d.Format(trendDateLayout)
		r := byDay[key]
		points = append(points, dto.TrendPoint{Date: key, Count: r.Count, Resolved: r.Resolved})
	}
	return points, nil
}

// ────────────────────── MonthlyReport ──────────────────────

func (s *analyticsService) MonthlyReport(ctx context.Context, caller Caller, year, month int) (*dto.MonthlyReportResponse, error) {
	if err := s.policy.Authorize(caller, OpAnalytics, ""); err != nil {
		return nil, err
	}

	now := s.now()
	if year == 0 {
		year = now.Year()
	}
	if month == 0 {
		month = int(now.Month())
	}

	verr := &apperrors.ValidationError{}
	if year < minReportYear || year > maxReportYear {
		verr.Add("year", "取值范围为 2000-2100")
	}
	if month < 1 || month > 12 {
		verr.Add("month", "取值范围为 1-12")
	}
	if verr.HasErrors() {
		return nil, verr
	}

	counts, err := s.repo.Complaint.MonthlyCounts(ctx, year, month)
	if err != nil {
		return nil, s.storageErr("analytics.monthly_report", err)
	}

	return &dto.MonthlyReportResponse{
		Period:         dto.ReportPeriod{Year: year, Month: month},
		Total:          counts.Total,
		Resolved:       counts.Resolved,
		Pending:        counts.Pending,
		InReview:       counts.InReview,
		UniqueUsers:    counts.UniqueUsers,
		ResolutionRate: percent2(counts.Resolved, counts.Total),
	}, nil
}

func (s *analyticsService) storageErr(op string, err error) error {
	s.logger.Error("统计查询失败", zap.String("op", op), zap.Error(err))
	return apperrors.NewStorageError(op, err)
}
