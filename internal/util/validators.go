package util

import (
	"time"

	"github.com/go-playground/validator/v10"
)

// DateLayout 表单中日历日期的格式（与前端 <input type="date"> 一致）
const DateLayout = "2006-01-02"

// ValidateDateString 验证字符串是否为合法的日历日期
func ValidateDateString(fl validator.FieldLevel) bool {
	s, ok := fl.Field().Interface().(string)
	if !ok {
		return false
	}
	if s == "" {
		// 空值由 required 规则单独控制
		return true
	}
	_, err := time.Parse(DateLayout, s)
	return err == nil
}
