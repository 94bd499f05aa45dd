// Package validation 业务字段校验
//
// DTO 使用 `validate` 标签声明规则，Service 层在访问存储之前调用 Struct。
// 自定义规则：
//
//	complaint_category  投诉分类枚举
//	complaint_priority  优先级枚举
//	complaint_status    处理状态枚举
//	user_role           用户角色枚举
//	trimmin=N           去除首尾空白后的最少字符数
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"

	"github.com/Samikshyapaudel0/complanify-cms/internal/model"
	apperrors "github.com/Samikshyapaudel0/complanify-cms/pkg/errors"
)

var validate = newValidate()

func newValidate() *validator.Validate {
	v := validator.New()

	// 字段名取 json 标签，与请求体保持一致
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})

	_ = v.RegisterValidation("complaint_category", func(fl validator.FieldLevel) bool {
		return model.IsValidCategory(fl.Field().String())
	})
	_ = v.RegisterValidation("complaint_priority", func(fl validator.FieldLevel) bool {
		return model.IsValidPriority(fl.Field().String())
	})
	_ = v.RegisterValidation("complaint_status", func(fl validator.FieldLevel) bool {
		return model.IsValidStatus(fl.Field().String())
	})
	_ = v.RegisterValidation("user_role", func(fl validator.FieldLevel) bool {
		return model.IsValidRole(fl.Field().String())
	})
	_ = v.RegisterValidation("trimmin", func(fl validator.FieldLevel) bool {
		n, err := strconv.Atoi(fl.Param())
		if err != nil {
			return false
		}
		return utf8.RuneCountInString(strings.TrimSpace(fl.Field().String())) >= n
	})

	return v
}

// Struct 校验结构体，失败时返回 *apperrors.ValidationError
func Struct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	out := &apperrors.ValidationError{}
	for _, fe := range verrs {
		out.Add(fe.Field(), message(fe))
	}
	return out
}

// message 生成面向用户的字段错误描述
func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "不能为空"
	case "email":
		return "邮箱格式不正确"
	case "min", "trimmin":
		return fmt.Sprintf("长度不能少于 %s 个字符", fe.Param())
	case "max":
		return fmt.Sprintf("长度不能超过 %s 个字符", fe.Param())
	case "complaint_category":
		return "分类必须是 " + strings.Join(model.Categories, ", ") + " 之一"
	case "complaint_priority":
		return "优先级必须是 " + strings.Join(model.Priorities, ", ") + " 之一"
	case "complaint_status":
		return "状态必须是 " + strings.Join(model.Statuses, ", ") + " 之一"
	case "user_role":
		return "角色必须是 student 或 admin"
	default:
		return "格式不正确"
	}
}
