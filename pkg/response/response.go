package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	apperrors "github.com/xiebiao/library/pkg/errors"
)

// Response 统一响应结构
// 成功：{"statusCode":200,"data":{...}}
// 失败：{"statusCode":404,"code":40402,"message":"Book with ID xxx not found"}
// statusCode与HTTP状态码保持一致，前端可以只看响应体
type Response struct {
	StatusCode int         `json:"statusCode"`
	Code       int         `json:"code,omitempty"`
	Message    string      `json:"message,omitempty"`
	Data       interface{} `json:"data,omitempty"`
}

// Success 成功响应(200)
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: http.StatusOK,
		Data:       data,
	})
}

// Created 创建成功响应(201)
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		StatusCode: http.StatusCreated,
		Data:       data,
	})
}

// SuccessWithMessage 成功响应并附带提示信息（如删除成功）
func SuccessWithMessage(c *gin.Context, message string, data interface{}) {
	c.JSON(http.StatusOK, Response{
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       data,
	})
}

// Error 错误响应
// AppError按错误码映射HTTP状态；其他错误一律500，内部细节只写日志
func Error(c *gin.Context, err error) {
	appErr := apperrors.GetAppError(err)
	status := appErr.HTTPStatus()

	if appErr.Err != nil || status >= http.StatusInternalServerError {
		zap.L().Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.FullPath()),
			zap.Int("code", appErr.Code),
			zap.Error(err),
		)
	}

	c.JSON(status, Response{
		StatusCode: status,
		Code:       appErr.Code,
		Message:    appErr.Message,
	})
}

// ErrorWithCode 直接指定错误码与提示信息
func ErrorWithCode(c *gin.Context, code int, message string) {
	status := apperrors.HTTPStatus(code)
	c.JSON(status, Response{
		StatusCode: status,
		Code:       code,
		Message:    message,
	})
}

// =========================================
// 分页响应
// =========================================

// Pagination 分页元数据
type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalRows  int64 `json:"totalRows"`
	TotalPages int   `json:"totalPages"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	StatusCode int         `json:"statusCode"`
	Message    string      `json:"message"`
	Data       interface{} `json:"data"`
	Pagination Pagination  `json:"pagination"`
}

// NewPagination 计算总页数，没有数据时按1页处理
func NewPagination(total int64, page, limit int) Pagination {
	totalPages := 1
	if limit > 0 && total > 0 {
		totalPages = int(total) / limit
		if int(total)%limit != 0 {
			totalPages++
		}
	}

	return Pagination{
		Page:       page,
		Limit:      limit,
		TotalRows:  total,
		TotalPages: totalPages,
	}
}

// SuccessWithPage 分页成功响应
func SuccessWithPage(c *gin.Context, message string, list interface{}, total int64, page, limit int) {
	c.JSON(http.StatusOK, PageResponse{
		StatusCode: http.StatusOK,
		Message:    message,
		Data:       list,
		Pagination: NewPagination(total, page, limit),
	})
}
