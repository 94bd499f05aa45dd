package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/Samikshyapaudel0/complanify-cms/internal/service"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/response"
)

// AnalyticsHandler 统计分析 HTTP 处理器（管理员）
type AnalyticsHandler struct {
	analyticsSvc service.AnalyticsService
}

// NewAnalyticsHandler 创建 AnalyticsHandler
func NewAnalyticsHandler(analyticsSvc service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analyticsSvc: analyticsSvc}
}

// Dashboard GET /api/v1/analytics/dashboard
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	dash, err := h.analyticsSvc.Dashboard(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, dash)
}

// Trends GET /api/v1/analytics/trends?days=30
func (h *AnalyticsHandler) Trends(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days")
	if !ok {
		return
	}

	points, err := h.analyticsSvc.Trend(c.Request.Context(), caller, days)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, points)
}

// CategoryPerformance GET /api/v1/analytics/category-performance
func (h *AnalyticsHandler) CategoryPerformance(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	rows, err := h.analyticsSvc.CategoryPerformance(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, rows)
}

// ResponseTime GET /api/v1/analytics/response-time
func (h *AnalyticsHandler) ResponseTime(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	resp, err := h.analyticsSvc.ResponseTime(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, resp)
}

// PriorityDistribution GET /api/v1/analytics/priority-distribution
func (h *AnalyticsHandler) PriorityDistribution(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	rows, err := h.analyticsSvc.PriorityDistribution(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, rows)
}

// MonthlyReport GET /api/v1/analytics/monthly-report?year=2026&month=3
func (h *AnalyticsHandler) MonthlyReport(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	year, ok := queryInt(c, "year")
	if !ok {
		return
	}
	month, ok := queryInt(c, "month")
	if !ok {
		return
	}

	report, err := h.analyticsSvc.MonthlyReport(c.Request.Context(), caller, year, month)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, report)
}
