package dto

import "github.com/Samikshyapaudel0/complanify-cms/internal/model"

// ── 统计分析响应 ──

// DashboardResponse 管理员仪表盘
type DashboardResponse struct {
	Stats          model.StatusCounts    `json:"stats"`
	TotalStudents  int64                 `json:"total_students"`
	Categories     []model.CategoryCount `json:"categories"`
	Recent         []ComplaintResponse   `json:"recent_complaints"`
	ResolutionRate int                   `json:"resolution_rate"` // 百分比，四舍五入为整数
}

// CategoryPerformance 分类处理情况
type CategoryPerformance struct {
	Category       string  `json:"category"`
	Total          int64   `json:"total"`
	Resolved       int64   `json:"resolved"`
	Pending        int64   `json:"pending"`
	InReview       int64   `json:"in_review"`
	ResolutionRate float64 `json:"resolution_rate"`
}

// PriorityShare 优先级分布
type PriorityShare struct {
	Priority   string  `json:"priority"`
	Count      int64   `json:"count"`
	Percentage float64 `json:"percentage"`
}

// ResponseTimeResponse 处理耗时（小时）
type ResponseTimeResponse struct {
	AvgHours      float64 `json:"avg_hours"`
	MinHours      float64 `json:"min_hours"`
	MaxHours      float64 `json:"max_hours"`
	ResolvedCount int64   `json:"resolved_count"`
}

// TrendPoint 单日趋势
type TrendPoint struct {
	Date     string `json:"date"` // YYYY-MM-DD
	Count    int64  `json:"count"`
	Resolved int64  `json:"resolved"`
}

// ReportPeriod 报表周期
type ReportPeriod struct {
	Year  int `json:"year"`
	Month int `json:"month"`
}

// MonthlyReportResponse 月度报表
type MonthlyReportResponse struct {
	Period         ReportPeriod `json:"period"`
	Total          int64        `json:"total"`
	Resolved       int64        `json:"resolved"`
	Pending        int64        `json:"pending"`
	InReview       int64        `json:"in_review"`
	UniqueUsers    int64        `json:"unique_users"`
	ResolutionRate float64      `json:"resolution_rate"`
}
