// Package errors 定义业务错误码和错误处理
package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError 应用错误
type AppError struct {
	Code    int                    `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
	Err     error                  `json:"-"`
}

// Error 实现 error 接口
func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%d] %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("[%d] %s", e.Code, e.Message)
}

// Unwrap 实现 errors.Unwrap
func (e *AppError) Unwrap() error {
	return e.Err
}

// Is 按错误码匹配，使 errors.Is(err, ErrXxx) 对派生出的错误同样成立
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// New 创建新的应用错误
func New(code int, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Wrap 包装错误
func Wrap(code int, message string, err error) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

func (e *AppError) clone() *AppError {
	c := &AppError{Code: e.Code, Message: e.Message, Err: e.Err}
	if len(e.Details) > 0 {
		c.Details = make(map[string]interface{}, len(e.Details))
		for k, v := range e.Details {
			c.Details[k] = v
		}
	}
	return c
}

// WithMessage 修改错误消息
func (e *AppError) WithMessage(message string) *AppError {
	c := e.clone()
	c.Message = message
	return c
}

// WithError 添加原始错误
func (e *AppError) WithError(err error) *AppError {
	c := e.clone()
	c.Err = err
	return c
}

// WithDetail 附加结构化上下文（房型、请求数量、可用数量等）
func (e *AppError) WithDetail(key string, value interface{}) *AppError {
	c := e.clone()
	if c.Details == nil {
		c.Details = make(map[string]interface{})
	}
	c.Details[key] = value
	return c
}

// 通用错误码 (1000-1999)
var (
	ErrUnknown         = New(1000, "未知错误")
	ErrInvalidParams   = New(1001, "参数错误")
	ErrNotFound        = New(1002, "资源不存在")
	ErrAlreadyExists   = New(1003, "资源已存在")
	ErrDatabaseError   = New(1004, "数据库错误")
	ErrCacheError      = New(1005, "缓存错误")
	ErrInternalError   = New(1006, "内部错误")
	ErrRateLimitExceed = New(1008, "请求过于频繁")
	ErrOperationFailed = New(1009, "操作失败")
)

// 认证错误码 (2000-2999)
var (
	ErrUnauthorized     = New(2000, "未登录")
	ErrTokenExpired     = New(2001, "登录已过期")
	ErrTokenInvalid     = New(2002, "无效的令牌")
	ErrPermissionDenied = New(2004, "权限不足")
)

// 前台预订错误码 (8000-8999)
var (
	ErrBookingNotFound          = New(8000, "预订不存在")
	ErrInvalidTransition        = New(8001, "当前状态不允许该操作")
	ErrRoomAssignmentConflict   = New(8002, "房间分配冲突")
	ErrInsufficientAvailability = New(8003, "可用房间不足")
	ErrCapacityExceeded         = New(8004, "超出房间容纳人数")
	ErrInvalidDateRange         = New(8005, "无效的入住日期")
	ErrRoomNotFound             = New(8006, "房间不存在")
	ErrRoomTypeNotFound         = New(8007, "房型不存在")
	ErrBookingRoomNotFound      = New(8008, "预订中不存在该房间")
	ErrStaffRequired            = New(8009, "缺少操作员工")
	ErrEarlyCheckoutReason      = New(8010, "提前退房必须填写原因")
	ErrPersistenceConflict      = New(8011, "数据已被并发修改，请重试")
	ErrRoomNumberExists         = New(8012, "房间号已存在")
)

// 账务错误码 (8500-8599)
var (
	ErrInvalidAmount        = New(8500, "无效的金额")
	ErrReconciliationFailed = New(8501, "退房结算失败")
	ErrInvalidPaymentMethod = New(8502, "无效的支付方式")
)

// IsAppError 判断是否为应用错误
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetAppError 获取应用错误
func GetAppError(err error) *AppError {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr
	}
	return ErrUnknown.WithError(err)
}
