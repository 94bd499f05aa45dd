package dto

// ── 认证模块 DTO ──

// RegisterRequest 学生注册请求
type RegisterRequest struct {
	Name      string  `json:"name"       validate:"required,trimmin=2,max=100"`
	Email     string  `json:"email"      validate:"required,email,max=255"`
	Password  string  `json:"password"   validate:"required,min=6,max=72"`
	StudentID *string `json:"student_id" validate:"omitempty,trimmin=3,max=50"`
}

// LoginRequest 登录请求，Role 非空时要求账号角色一致
type LoginRequest struct {
	Email    string `json:"email"    validate:"required,email"`
	Password string `json:"password" validate:"required"`
	Role     string `json:"role"     validate:"omitempty,user_role"`
}

// UpdateProfileRequest 修改个人资料
type UpdateProfileRequest struct {
	Name  *string `json:"name"  validate:"omitempty,trimmin=2,max=100"`
	Email *string `json:"email" validate:"omitempty,email,max=255"`
}

// ChangePasswordRequest 修改密码请求
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password"     validate:"required,min=6,max=72"`
}
