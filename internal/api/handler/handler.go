package handler

import "github.com/Samikshyapaudel0/complanify-cms/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Auth      *AuthHandler
	Complaint *ComplaintHandler
	Analytics *AnalyticsHandler
	User      *UserHandler
	Export    *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Auth:      NewAuthHandler(svc.Auth),
		Complaint: NewComplaintHandler(svc.Complaint),
		Analytics: NewAnalyticsHandler(svc.Analytics),
		User:      NewUserHandler(svc.User),
		Export:    NewExportHandler(svc.Export),
	}
}
