// Package validator 注册自定义校验规则到gin的binding引擎
package validator

import (
	"reflect"
	"regexp"
	"strings"
	"time"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var isbnPattern = regexp.MustCompile(`^(?:\d{10}|\d{13})$`)

// IsValidISBN ISBN-10或ISBN-13（纯数字，不含连字符）
func IsValidISBN(isbn string) bool {
	return isbnPattern.MatchString(isbn)
}

// IsValidPublicationYear 出版年份范围：1000 ~ 明年
func IsValidPublicationYear(year int, now time.Time) bool {
	return year >= 1000 && year <= now.Year()+1
}

// Register 在给定validator上注册自定义tag
//   - isbn:    `binding:"isbn"`
//   - pubyear: `binding:"pubyear"`
func Register(v *validator.Validate) error {
	if err := v.RegisterValidation("isbn", func(fl validator.FieldLevel) bool {
		return IsValidISBN(fl.Field().String())
	}); err != nil {
		return err
	}

	return v.RegisterValidation("pubyear", func(fl validator.FieldLevel) bool {
		return IsValidPublicationYear(int(fl.Field().Int()), time.Now())
	})
}

// Setup 注册到gin默认的binding引擎，服务启动时调用一次
// 错误信息中的字段名使用json/form tag，与请求体保持一致
func Setup() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return nil
	}
	v.RegisterTagNameFunc(fieldName)
	return Register(v)
}

func fieldName(f reflect.StructField) string {
	for _, tag := range []string{"json", "form"} {
		name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return f.Name
}
