// Package handler 提供 API Handler 的通用辅助函数
// 统一错误处理、员工身份检查、参数解析
package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/middleware"
)

// ============================================================================
// 统一错误处理
// ============================================================================

// HandleError 处理错误并发送适当的响应
// 如果 err 为 nil，返回 false（表示无错误需要处理）
// 如果 err 不为 nil，发送错误响应并返回 true（调用方应该 return）
//
// 业务错误的 Details 放在 data 中返回，便于前台修正输入（哪一行、哪个房间）。
// 非业务错误只记录日志，不向调用方暴露内部信息。
//
// 使用示例:
//
//	detail, err := service.CreateBookingWithRooms(ctx, rc, req)
//	if HandleError(c, err) {
//	    return
//	}
func HandleError(c *gin.Context, err error) bool {
	if err == nil {
		return false
	}
	if !errors.IsAppError(err) {
		logger.Error("Unhandled error",
			logger.RequestID(middleware.GetRequestID(c)),
			logger.Path(c.FullPath()),
			zap.Error(err),
		)
		response.InternalError(c, "服务器内部错误")
		return true
	}

	appErr := errors.GetAppError(err)
	if appErr.Err != nil {
		logger.Warn("Request failed",
			logger.RequestID(middleware.GetRequestID(c)),
			logger.Path(c.FullPath()),
			zap.Int("code", appErr.Code),
			zap.Error(appErr.Err),
		)
	}
	if len(appErr.Details) > 0 {
		response.ErrorWithData(c, appErr.Code, appErr.Message, appErr.Details)
		return true
	}
	response.Error(c, appErr.Code, appErr.Message)
	return true
}

// MustSucceed 如果有错误则返回错误响应，否则返回成功响应
//
// 使用示例:
//
//	result, err := service.GetData()
//	MustSucceed(c, err, result)
//	return  // 注意：调用 MustSucceed 后必须 return
func MustSucceed(c *gin.Context, err error, data interface{}) {
	if HandleError(c, err) {
		return
	}
	response.Success(c, data)
}

// MustSucceedPage 分页响应版本
func MustSucceedPage(c *gin.Context, err error, list interface{}, total int64, page, pageSize int) {
	if HandleError(c, err) {
		return
	}
	response.SuccessPage(c, list, total, page, pageSize)
}

// ============================================================================
// 员工身份检查
// ============================================================================

// RequireStaff 获取当前操作员工，未认证时返回 401
// 返回 (staffID, staffName, true) 表示已认证
//
// 使用示例:
//
//	staffID, name, ok := handler.RequireStaff(c)
//	if !ok {
//	    return
//	}
func RequireStaff(c *gin.Context) (int64, string, bool) {
	staffID := middleware.GetStaffID(c)
	if staffID <= 0 {
		response.Unauthorized(c, "请先登录")
		return 0, "", false
	}
	return staffID, middleware.GetStaffName(c), true
}

// ============================================================================
// ID 参数解析
// ============================================================================

// ParseID 解析路径参数 "id" 为 int64
// 返回 (0, false) 表示解析失败（已发送400响应，调用方应该 return）
func ParseID(c *gin.Context, resourceName string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// ParseQueryID 解析查询参数中的可选 ID
// 参数为空返回 (0, true)，解析失败返回 (0, false)（已发送400响应）
func ParseQueryID(c *gin.Context, paramName, resourceName string) (int64, bool) {
	idStr := c.Query(paramName)
	if idStr == "" {
		return 0, true
	}
	id, err := strconv.ParseInt(idStr, 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(c, "无效的"+resourceName+"ID")
		return 0, false
	}
	return id, true
}

// ============================================================================
// 时间解析辅助
// ============================================================================

// 时间格式常量
const (
	DateFormat         = "2006-01-02"
	DateTimeFormat     = "2006-01-02 15:04:05"
	DateTimeFormatISO  = time.RFC3339
	DateTimeFormatISO2 = "2006-01-02T15:04:05"
)

var dateTimeFormats = []string{
	DateTimeFormatISO,
	DateTimeFormat,
	DateTimeFormatISO2,
}

// ParseDate 解析日期字符串 (YYYY-MM-DD)，结果为 UTC 零点
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateFormat, s)
	if err != nil {
		return time.Time{}, errors.ErrInvalidParams.WithMessage("日期格式错误，应为 YYYY-MM-DD").WithDetail("value", s)
	}
	return t, nil
}

// ParseDateTime 解析日期时间字符串，支持多种格式，无时区的按 UTC 处理
func ParseDateTime(s string) (time.Time, error) {
	for _, format := range dateTimeFormats {
		if t, err := time.Parse(format, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, errors.ErrInvalidParams.WithMessage("时间格式错误").WithDetail("value", s)
}

// ParseOptionalDateTime 空字符串返回零值
func ParseOptionalDateTime(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, nil
	}
	return ParseDateTime(s)
}

// ParseQueryDate 从查询参数解析必填日期
// 返回 (zero, false) 如果参数为空或解析失败（已发送400响应）
func ParseQueryDate(c *gin.Context, paramName string) (time.Time, bool) {
	s := c.Query(paramName)
	if s == "" {
		response.BadRequest(c, "请提供"+paramName)
		return time.Time{}, false
	}
	t, err := ParseDate(s)
	if err != nil {
		response.BadRequest(c, "无效的"+paramName+"日期格式")
		return time.Time{}, false
	}
	return t, true
}

// ============================================================================
// 分页处理
// ============================================================================

// BindPagination 从查询参数绑定并规范化分页参数
// 默认 page=1, pageSize=10, 最大 pageSize=100
func BindPagination(c *gin.Context) utils.Pagination {
	var p utils.Pagination
	p.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	p.PageSize, _ = strconv.Atoi(c.DefaultQuery("page_size", "10"))
	p.Normalize()
	return p
}
