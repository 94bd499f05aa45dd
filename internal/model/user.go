package model

// 用户角色
const (
	RoleStudent = "student"
	RoleAdmin   = "admin"
)

// IsValidRole 角色是否合法
func IsValidRole(role string) bool {
	return role == RoleStudent || role == RoleAdmin
}

// User 用户表 — 对应 users
type User struct {
	UserID       string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name         string  `gorm:"type:varchar(100);not null"                     json:"name"`
	Email        string  `gorm:"type:varchar(255);not null;uniqueIndex"         json:"email"`
	PasswordHash string  `gorm:"type:varchar(255);not null"                     json:"-"`
	Role         string  `gorm:"type:varchar(20);not null;default:'student'"    json:"role"`
	StudentID    *string `gorm:"type:varchar(50);uniqueIndex"                   json:"student_id"`
	BaseModel
}

// TableName 指定表名
func (User) TableName() string { return "users" }

// IsAdmin 是否管理员
func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
