package dto

import "time"

// ── 投诉模块 DTO ──

// CreateComplaintRequest 提交投诉（JSON 或 multipart 表单）
type CreateComplaintRequest struct {
	Title       string `json:"title"       form:"title"       validate:"required,trimmin=5,max=255"`
	Description string `json:"description" form:"description" validate:"required,trimmin=10"`
	Category    string `json:"category"    form:"category"    validate:"required,complaint_category"`
	Priority    string `json:"priority"    form:"priority"    validate:"omitempty,complaint_priority"`
}

// UpdateComplaintRequest 管理员处理投诉，至少提供一个字段
type UpdateComplaintRequest struct {
	Status        *string `json:"status"         validate:"omitempty,complaint_status"`
	AdminResponse *string `json:"admin_response" validate:"omitempty,trimmin=5"`
}

// ComplaintListQuery 投诉列表查询参数
type ComplaintListQuery struct {
	PaginationQuery
	Status   string `form:"status"`
	Category string `form:"category"`
	Search   string `form:"search"`
}

// ComplaintResponse 投诉详情（附带提交人信息）
type ComplaintResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Category      string    `json:"category"`
	Priority      string    `json:"priority"`
	Status        string    `json:"status"`
	UserID        string    `json:"user_id"`
	UserName      string    `json:"user_name,omitempty"`
	UserEmail     string    `json:"user_email,omitempty"`
	StudentID     *string   `json:"student_id,omitempty"`
	AdminResponse *string   `json:"admin_response"`
	HasAttachment bool      `json:"has_attachment"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// AttachmentResponse 附件下载链接
type AttachmentResponse struct {
	URL       string `json:"url"`
	ExpiresIn int    `json:"expires_in"` // 秒
}
