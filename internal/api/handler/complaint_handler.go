package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/Samikshyapaudel0/complanify-cms/internal/dto"
	"github.com/Samikshyapaudel0/complanify-cms/internal/service"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/response"
	"github.com/Samikshyapaudel0/complanify-cms/pkg/storage"
)

// ComplaintHandler 投诉模块 HTTP 处理器
type ComplaintHandler struct {
	complaintSvc service.ComplaintService
}

// NewComplaintHandler 创建 ComplaintHandler
func NewComplaintHandler(complaintSvc service.ComplaintService) *ComplaintHandler {
	return &ComplaintHandler{complaintSvc: complaintSvc}
}

// Create 提交投诉，支持 JSON 或 multipart（附件字段 file）
// POST /api/v1/complaints
func (h *ComplaintHandler) Create(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.CreateComplaintRequest
	var file *storage.Object

	if c.ContentType() == binding.MIMEMultipartPOSTForm {
		if err := c.ShouldBindWith(&req, binding.FormMultipart); err != nil {
			bindError(c, err)
			return
		}

		header, err := c.FormFile("file")
		switch {
		case errors.Is(err, http.ErrMissingFile):
		case err != nil:
			bindError(c, err)
			return
		default:
			f, err := header.Open()
			if err != nil {
				bindError(c, err)
				return
			}
			defer f.Close()

			file = &storage.Object{
				Filename:    header.Filename,
				Size:        header.Size,
				ContentType: header.Header.Get("Content-Type"),
				Body:        f,
			}
		}
	} else if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	complaint, err := h.complaintSvc.Create(c.Request.Context(), caller, &req, file)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Created(c, "投诉已提交", complaint)
}

// ListMine 当前用户的投诉
// GET /api/v1/complaints/my-complaints
func (h *ComplaintHandler) ListMine(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	list, err := h.complaintSvc.ListMine(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, list)
}

// List 全部投诉（管理员，分页）
// GET /api/v1/complaints
func (h *ComplaintHandler) List(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var q dto.ComplaintListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}

	list, total, err := h.complaintSvc.List(c.Request.Context(), caller, &q)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKPage(c, list, total, q.GetPage(), q.GetLimit())
}

// GetByID 投诉详情
// GET /api/v1/complaints/:id
func (h *ComplaintHandler) GetByID(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	complaint, err := h.complaintSvc.GetByID(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, complaint)
}

// Update 处理投诉（管理员）
// PUT /api/v1/complaints/:id
func (h *ComplaintHandler) Update(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	var req dto.UpdateComplaintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}

	complaint, err := h.complaintSvc.Update(c.Request.Context(), caller, c.Param("id"), &req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKWithMessage(c, "投诉已更新", complaint)
}

// Delete 删除投诉（所有者或管理员）
// DELETE /api/v1/complaints/:id
func (h *ComplaintHandler) Delete(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	complaint, err := h.complaintSvc.Delete(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OKWithMessage(c, "投诉已删除", complaint)
}

// Attachment 附件临时下载链接
// GET /api/v1/complaints/:id/attachment
func (h *ComplaintHandler) Attachment(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	link, err := h.complaintSvc.AttachmentURL(c.Request.Context(), caller, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, link)
}

// Stats 状态统计
// GET /api/v1/complaints/stats/overview
func (h *ComplaintHandler) Stats(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	stats, err := h.complaintSvc.Stats(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, stats)
}

// CategoryStats 分类统计
// GET /api/v1/complaints/stats/categories
func (h *ComplaintHandler) CategoryStats(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}

	rows, err := h.complaintSvc.CategoryStats(c.Request.Context(), caller)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, rows)
}

// Recent 最近投诉
// GET /api/v1/complaints/stats/recent?limit=5
func (h *ComplaintHandler) Recent(c *gin.Context) {
	caller, ok := MustGetCaller(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit")
	if !ok {
		return
	}

	list, err := h.complaintSvc.Recent(c.Request.Context(), caller, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	response.OK(c, list)
}
