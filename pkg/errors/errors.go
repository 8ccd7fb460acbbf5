package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError 自定义应用错误
// 设计说明：
// 1. Code是业务错误码，前三位即HTTP状态码（40402 → 404），响应层据此映射状态
// 2. Message是面向用户的提示信息，前端直接展示，必须说明具体原因
// 3. Err是内部错误，仅记录到日志，不返回给客户端
type AppError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 支持errors.Is和errors.As
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码比较
// 这样 book.ErrBookNotFound.WithMessagef(...) 生成的新实例仍能被 errors.Is 识别
func (e *AppError) Is(target error) bool {
	var t *AppError
	if !errors.As(target, &t) {
		return false
	}
	return e.Code == t.Code
}

// HTTPStatus 返回该错误对应的HTTP状态码
func (e *AppError) HTTPStatus() int {
	return HTTPStatus(e.Code)
}

// WithMessagef 复制一份错误并替换提示信息（错误码不变）
func (e *AppError) WithMessagef(format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: fmt.Sprintf(format, args...),
		Err:     e.Err,
	}
}

// WithCause 复制一份错误并附加底层原因
func (e *AppError) WithCause(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Err:     err,
	}
}

// New 创建新的AppError
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装系统错误（如数据库错误、网络错误）
// 用途：将底层错误转换为业务错误，隐藏实现细节
func Wrap(err error, message string) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: message,
		Err:     err,
	}
}

// Wrapf 格式化包装错误
func Wrapf(err error, format string, args ...interface{}) *AppError {
	return &AppError{
		Code:    ErrCodeInternal,
		Message: fmt.Sprintf(format, args...),
		Err:     err,
	}
}

// WrapCode 以指定错误码包装底层错误
func WrapCode(err error, code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// =========================================
// 错误码定义
// =========================================
// 规范：前三位是HTTP状态码，后两位是同一状态下的细分
// - 400xx: 业务规则校验失败
// - 401xx: 认证失败
// - 404xx: 资源不存在
// - 409xx: 资源冲突
// - 500xx: 服务端错误
// - 503xx: 可重试的瞬时故障

const (
	// 系统级错误码
	ErrCodeInternal      = 50000 // 内部错误
	ErrCodeDatabaseError = 50001 // 数据库错误
	ErrCodeRedisError    = 50002 // Redis错误
	ErrCodeStorageError  = 50003 // 文件存储错误

	// 事务失败（锁等待超时、死锁），唯一允许调用方重试的错误
	ErrCodeTransactionFailure = 50300

	// 认证授权错误
	ErrCodeUnauthorized       = 40100 // 未登录
	ErrCodeInvalidToken       = 40101 // Token无效
	ErrCodeTokenExpired       = 40102 // Token过期
	ErrCodeInvalidCredentials = 40103 // 用户名或密码错误
	ErrCodeAccountDisabled    = 40104 // 账号已停用
	ErrCodeTokenRevoked       = 40105 // Token已注销

	// 资源错误
	ErrCodeNotFound             = 40400 // 资源不存在(通用)
	ErrCodeUserNotFound         = 40401 // 用户不存在
	ErrCodeBookNotFound         = 40402 // 图书不存在
	ErrCodeBorrowRecordNotFound = 40403 // 借阅记录不存在

	// 业务规则错误
	ErrCodeBusinessError      = 40000 // 业务错误(通用)
	ErrCodeNoCopiesAvailable  = 40001 // 无可借副本
	ErrCodeAllCopiesAvailable = 40002 // 副本已全部在馆
	ErrCodeNotBorrowed        = 40003 // 未借阅该书
	ErrCodeAlreadyBorrowed    = 40004 // 已借阅该书
	ErrCodeWeakPassword       = 40005 // 密码强度不足

	// 参数错误
	ErrCodeInvalidParams = 40020 // 参数错误
	ErrCodeBindError     = 40021 // 参数绑定失败
	ErrCodeInvalidFile   = 40022 // 上传文件不合法

	// 冲突错误
	ErrCodeConflict          = 40900 // 冲突(通用)
	ErrCodeISBNDuplicate     = 40901 // ISBN已存在
	ErrCodeBookInUse         = 40902 // 图书借出中
	ErrCodeUsernameDuplicate = 40903 // 用户名已存在
	ErrCodeEmailDuplicate    = 40904 // 邮箱已存在
)

// =========================================
// 预定义错误
// =========================================

var (
	// 系统错误
	ErrInternal           = New(ErrCodeInternal, "Internal server error")
	ErrDatabaseError      = New(ErrCodeDatabaseError, "Database error")
	ErrRedisError         = New(ErrCodeRedisError, "Cache service error")
	ErrTransactionFailure = New(ErrCodeTransactionFailure, "The operation could not be completed due to concurrent access, please retry")

	// 认证授权
	ErrUnauthorized       = New(ErrCodeUnauthorized, "Unauthorized")
	ErrInvalidToken       = New(ErrCodeInvalidToken, "Invalid token")
	ErrTokenExpired       = New(ErrCodeTokenExpired, "Token has expired")
	ErrInvalidCredentials = New(ErrCodeInvalidCredentials, "Invalid credentials")
	ErrAccountDisabled    = New(ErrCodeAccountDisabled, "Account is deactivated")
	ErrTokenRevoked       = New(ErrCodeTokenRevoked, "Token has been revoked, please log in again")

	// 资源不存在
	ErrNotFound = New(ErrCodeNotFound, "Resource not found")

	// 参数错误
	ErrInvalidParams = New(ErrCodeInvalidParams, "Invalid parameters")
	ErrBindError     = New(ErrCodeBindError, "Malformed request")
)

// =========================================
// 辅助函数
// =========================================

// IsAppError 判断是否为AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// GetAppError 提取AppError（如果不是AppError则包装成Internal错误）
func GetAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Wrap(err, "Internal server error")
}

// HasCode 判断错误链中是否存在指定错误码
func HasCode(err error, code int) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// IsRetryable 只有事务失败允许调用方重试，其余错误需要调用方改变输入或状态
func IsRetryable(err error) bool {
	return HasCode(err, ErrCodeTransactionFailure)
}

// HTTPStatus 将业务错误码映射为HTTP状态码
func HTTPStatus(code int) int {
	status := code / 100
	if status >= 400 && status <= 599 && http.StatusText(status) != "" {
		return status
	}
	return http.StatusInternalServerError
}
