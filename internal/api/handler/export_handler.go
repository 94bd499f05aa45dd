package handler

import (
	"bytes"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	"github.com/Samikshyapaudel0/complanify-cms/internal/service"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/response"
)

const (
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimePDF  = "application/pdf"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

// MonthlyReport 导出月度报表
// GET /api/v1/analytics/monthly-report/export?format=xlsx|pdf&year=&month=
func (h *ExportHandler) MonthlyReport(c *gin.Context) {
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

	var (
		buf         *bytes.Buffer
		filename    string
		contentType string
		err         error
	)
	switch c.DefaultQuery("format", "xlsx") {
	case "xlsx":
		buf, filename, err = h.exportSvc.MonthlyReportXLSX(c.Request.Context(), caller, year, month)
		contentType = mimeXLSX
	case "pdf":
		buf, filename, err = h.exportSvc.MonthlyReportPDF(c.Request.Context(), caller, year, month)
		contentType = mimePDF
	default:
		response.ValidationFailed(c, []apperrors.FieldError{{Field: "format", Message: "仅支持 xlsx 或 pdf"}})
		return
	}
	if err != nil {
		writeError(c, err)
		return
	}

	sendFile(c, buf, filename, contentType)
}

// Complaints 按筛选条件导出投诉
// GET /api/v1/complaints/export?status=&category=&search=
func (h *ExportHandler) Complaints(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.ComplaintListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	buf, filename, err := h.exportSvc.ComplaintsXLSX(c.Request.Context(), caller, model.ComplaintFilter{
		Status:   q.Status,
		Category: q.Category,
		Search:   q.Search,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	sendFile(c, buf, filename, mimeXLSX)
}

// sendFile 写入下载响应头与文件内容
func sendFile(c *gin.Context, buf *bytes.Buffer, filename, contentType string) {
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, contentType, buf.Bytes())
}
