package handler

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// bindError 参数绑定/校验失败转换为AppError
// 校验失败逐个字段给出原因,JSON格式错误统一返回40021
func bindError(err error) error {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		msgs := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			msgs = append(msgs, fieldMessage(fe))
		}
		return apperrors.ErrInvalidParams.WithMessagef("%s", strings.Join(msgs, "; "))
	}
	return apperrors.ErrBindError.WithCause(err)
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s", field, fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", field)
	case "isbn":
		return fmt.Sprintf("%s must be 10 or 13 digits", field)
	case "pubyear":
		return fmt.Sprintf("%s is out of range", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// bookIDParam 读取路径中的图书ID,必须是UUID
func bookIDParam(c *gin.Context) (string, error) {
	id := c.Param("id")
	if _, err := uuid.Parse(id); err != nil {
		return "", apperrors.ErrInvalidParams.WithMessagef("Validation failed (uuid is expected)")
	}
	return id, nil
}
