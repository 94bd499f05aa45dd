package dto

import "time"

// ── 认证模块响应 ──

// TokenResponse 登录 / 注册成功响应
type TokenResponse struct {
	Token     string       `json:"token"`
	ExpiresIn int          `json:"expires_in"` // Token 有效期（秒）
	User      UserResponse `json:"user"`
}

// ── 用户模块响应 ──

// UserResponse 用户信息响应（脱敏）
type UserResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	StudentID *string   `json:"student_id"`
	CreatedAt time.Time `json:"created_at"`
}

// UserStatsResponse 用户统计
type UserStatsResponse struct {
	Total    int64 `json:"total"`
	Students int64 `json:"students"`
	Admins   int64 `json:"admins"`
}

// ── 分页请求 ──

// PaginationQuery 通用分页参数
type PaginationQuery struct {
	Page  int `form:"page"`
	Limit int `form:"limit"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationQuery) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetLimit 获取每页数量（默认 10，最大 100）
func (p *PaginationQuery) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return 10
	case p.Limit > 100:
		return 100
	default:
		return p.Limit
	}
}

// GetOffset 计算偏移量
func (p *PaginationQuery) GetOffset() int {
	return (p.GetPage() - 1) * p.GetLimit()
}
