// Package errors 定义跨模块共享的错误分类。
//
// 各业务模块的哨兵错误通过 Kind 包装到这里的分类上，
// Handler 层只需判断分类即可决定 HTTP 状态码：
//
//	ErrValidation   → 400（附字段级详情）
//	ErrUnauthorized → 401
//	ErrAccessDenied → 403（不泄露细节）
//	ErrNotFound     → 404
//	ErrConflict     → 409
//	ErrUnavailable  → 503（依赖的外部组件未配置）
//	StorageError    → 500（只记录日志，不透出内部信息）
package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrValidation   = errors.New("参数校验失败")
	ErrUnauthorized = errors.New("未认证")
	ErrAccessDenied = errors.New("无权访问")
	ErrNotFound     = errors.New("资源不存在")
	ErrConflict     = errors.New("资源冲突")
	ErrUnavailable  = errors.New("服务暂不可用")
)

// kindError 带分类的业务错误
type kindError struct {
	kind error
	msg  string
}

func (e *kindError) Error() string { return e.msg }

// Is 使 errors.Is(err, ErrNotFound) 等分类判断生效
func (e *kindError) Is(target error) bool { return target == e.kind }

// Kind 创建一个归属于指定分类的哨兵错误
func Kind(kind error, msg string) error {
	return &kindError{kind: kind, msg: msg}
}

// FieldError 单个字段的校验错误
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError 字段级校验错误集合
type ValidationError struct {
	Fields []FieldError
}

// NewValidationError 以单个字段错误构造 ValidationError
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: []FieldError{{Field: field, Message: message}}}
}

// Add 追加字段错误
func (e *ValidationError) Add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

// HasErrors 是否存在字段错误
func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "参数校验失败: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// StorageError 底层存储失败
type StorageError struct {
	Op  string
	Err error
}

// NewStorageError 包装存储层错误
func NewStorageError(op string, err error) *StorageError {
	return &StorageError{Op: op, Err: err}
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("存储操作 %s 失败: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }
