package service

import (
	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
)

var (
	ErrUnauthenticated = apperrors.Kind(apperrors.ErrUnauthorized, "请先登录")
	ErrAccessDenied    = apperrors.Kind(apperrors.ErrAccessDenied, "无权执行该操作")
)

// Caller 当前请求的调用者身份，由认证中间件解析得到
type Caller struct {
	UserID string
	Role   string
}

// IsAdmin 是否管理员
func (c Caller) IsAdmin() bool { return c.Role == model.RoleAdmin }

// Operation 受控操作
type Operation string

const (
	OpComplaintCreate     Operation = "complaint:create"
	OpComplaintListMine   Operation = "complaint:list-mine"
	OpComplaintRead       Operation = "complaint:read"
	OpComplaintDelete     Operation = "complaint:delete"
	OpComplaintAttachment Operation = "complaint:attachment"
	OpComplaintUpdate     Operation = "complaint:update"
	OpComplaintList       Operation = "complaint:list"
	OpComplaintStats      Operation = "complaint:stats"
	OpAnalytics           Operation = "analytics:read"
	OpUserManage          Operation = "user:manage"
)

// Rule 授权规则
type Rule int

const (
	// RuleDeny 未登记的操作一律拒绝
	RuleDeny Rule = iota
	// RuleCreatorOnly 任何已登录用户，资源归属强制为调用者本人
	RuleCreatorOnly
	// RuleOwnerOrAdmin 资源所有者或管理员
	RuleOwnerOrAdmin
	// RuleAdminOnly 仅管理员
	RuleAdminOnly
)

// Policy (操作 → 规则) 映射表
type Policy struct {
	rules map[Operation]Rule
}

// NewPolicy 创建授权策略，未出现在 rules 中的操作默认拒绝
func NewPolicy(rules map[Operation]Rule) *Policy {
	copied := make(map[Operation]Rule, len(rules))
	for op, r := range rules {
		copied[op] = r
	}
	return &Policy{rules: copied}
}

// DefaultPolicy 投诉系统的授权表
func DefaultPolicy() *Policy {
	return NewPolicy(map[Operation]Rule{
		OpComplaintCreate:     RuleCreatorOnly,
		OpComplaintListMine:   RuleCreatorOnly,
		OpComplaintRead:       RuleOwnerOrAdmin,
		OpComplaintDelete:     RuleOwnerOrAdmin,
		OpComplaintAttachment: RuleOwnerOrAdmin,
		OpComplaintUpdate:     RuleAdminOnly,
		OpComplaintList:       RuleAdminOnly,
		OpComplaintStats:      RuleAdminOnly,
		OpAnalytics:           RuleAdminOnly,
		OpUserManage:          RuleAdminOnly,
	})
}

// Authorize 判断调用者能否对资源执行操作
// ownerID 为资源所有者，对不涉及具体资源的操作传空字符串
func (p *Policy) Authorize(caller Caller, op Operation, ownerID string) error {
	if caller.UserID == "" {
		return ErrUnauthenticated
	}

	switch p.rules[op] {
	case RuleCreatorOnly:
		return nil
	case RuleOwnerOrAdmin:
		if caller.IsAdmin() || (ownerID != "" && ownerID == caller.UserID) {
			return nil
		}
	case RuleAdminOnly:
		if caller.IsAdmin() {
			return nil
		}
	}
	return ErrAccessDenied
}
