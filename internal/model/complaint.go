package model

// ── 投诉分类 ──

const (
	CategoryInfrastructure = "Infrastructure"
	CategoryFoodServices   = "Food Services"
	CategoryAcademic       = "Academic"
	CategoryTransportation = "Transportation"
	CategoryLibrary        = "Library"
	CategoryOther          = "Other"
)

// Categories 全部分类，顺序即前端展示顺序
var Categories = []string{
	CategoryInfrastructure,
	CategoryFoodServices,
	CategoryAcademic,
	CategoryTransportation,
	CategoryLibrary,
	CategoryOther,
}

// ── 优先级 ──

const (
	PriorityLow    = "low"
	PriorityMedium = "medium"
	PriorityHigh   = "high"
)

var Priorities = []string{PriorityLow, PriorityMedium, PriorityHigh}

// ── 处理状态 ──
// 三种状态之间可以任意流转

const (
	StatusPending  = "pending"
	StatusInReview = "in-review"
	StatusResolved = "resolved"
)

var Statuses = []string{StatusPending, StatusInReview, StatusResolved}

func IsValidCategory(v string) bool { return contains(Categories, v) }
func IsValidPriority(v string) bool { return contains(Priorities, v) }
func IsValidStatus(v string) bool   { return contains(Statuses, v) }

func contains(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

// Complaint 投诉表 — 对应 complaints
// UserID 只在创建时写入，之后不可变更
type Complaint struct {
	ComplaintID   string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Title         string  `gorm:"type:varchar(255);not null"                     json:"title"`
	Description   string  `gorm:"type:text;not null"                             json:"description"`
	Category      string  `gorm:"type:varchar(50);not null"                      json:"category"`
	Priority      string  `gorm:"type:varchar(20);not null;default:'medium'"     json:"priority"`
	Status        string  `gorm:"type:varchar(20);not null;default:'pending'"    json:"status"`
	UserID        string  `gorm:"type:uuid;not null;<-:create"                   json:"user_id"`
	AdminResponse *string `gorm:"type:text"                                      json:"admin_response"`
	FilePath      *string `gorm:"type:varchar(500)"                              json:"file_path"`
	BaseModel

	// 关联
	Owner *User `gorm:"foreignKey:UserID;references:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// TableName 指定表名
func (Complaint) TableName() string { return "complaints" }

// OwnedBy 是否属于指定用户
func (c *Complaint) OwnedBy(userID string) bool { return c.UserID == userID }

// ComplaintFilter 列表查询条件，各条件之间为 AND
type ComplaintFilter struct {
	Status   string // 空或 "all" 表示不过滤
	Category string
	Search   string // 标题、描述、提交人姓名的模糊匹配（不区分大小写）
}

// ComplaintUpdate 管理员可修改的字段，nil 表示不修改
type ComplaintUpdate struct {
	Status        *string
	AdminResponse *string
}

// IsEmpty 没有任何字段需要修改
func (u ComplaintUpdate) IsEmpty() bool {
	return u.Status == nil && u.AdminResponse == nil
}
