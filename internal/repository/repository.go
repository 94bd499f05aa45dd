package repository

import "gorm.io/gorm"

// Repository 所有 Repository 的聚合入口
type Repository struct {
	User      UserRepository
	Complaint ComplaintRepository
}

// NewRepository 创建 Repository 聚合
// db 由调用方注入，仓储层不持有全局连接
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		User:      NewUserRepo(db),
		Complaint: NewComplaintRepo(db),
	}
}
