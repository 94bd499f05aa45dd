package dto

// ── 用户管理 DTO（管理员） ──

// UserListQuery 用户列表查询参数
type UserListQuery struct {
	PaginationQuery
	Role string `form:"role" json:"role" validate:"omitempty,user_role"`
}

// UpdateUserRequest 管理员修改用户
type UpdateUserRequest struct {
	Name      *string `json:"name"       validate:"omitempty,trimmin=2,max=100"`
	Email     *string `json:"email"      validate:"omitempty,email,max=255"`
	Role      *string `json:"role"       validate:"omitempty,user_role"`
	StudentID *string `json:"student_id" validate:"omitempty,trimmin=3,max=50"`
}

// CreateAdminRequest 创建管理员账号
type CreateAdminRequest struct {
	Name     string `json:"name"     validate:"required,trimmin=2,max=100"`
	Email    string `json:"email"    validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}
