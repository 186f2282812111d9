// Package middleware 提供 HTTP 中间件
package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
)

// staffIDKey 与认证中间件写入的上下文键一致
const staffIDKey = "staff_id"

// OperationLogger 前台写操作审计
type OperationLogger struct {
	repo *repository.OperationLogRepository
}

// NewOperationLogger 创建操作日志中间件
func NewOperationLogger(repo *repository.OperationLogRepository) *OperationLogger {
	return &OperationLogger{repo: repo}
}

// OperationConfig 操作配置
type OperationConfig struct {
	Module     string
	Action     string
	TargetType string
}

// 路由前缀为 /api/v1
var moduleActionMap = map[string]OperationConfig{
	"POST /bookings":                   {Module: "booking", Action: "create", TargetType: "booking"},
	"POST /bookings/:id/cancel":        {Module: "booking", Action: "cancel", TargetType: "booking"},
	"POST /bookings/:id/checkout":      {Module: "booking", Action: "checkout", TargetType: "booking"},
	"POST /bookings/:id/payments":      {Module: "folio", Action: "record_advance", TargetType: "booking"},
	"POST /bookings/:id/charges":       {Module: "folio", Action: "post_charge", TargetType: "booking"},
	"POST /booking-rooms/:id/check-in": {Module: "booking", Action: "check_in", TargetType: "booking_room"},
	"POST /room-types":                 {Module: "room", Action: "create_type", TargetType: "room_type"},
	"POST /rooms":                      {Module: "room", Action: "create", TargetType: "room"},
	"PUT /rooms/:id/status":            {Module: "room", Action: "update_status", TargetType: "room"},
	"POST /rooms/:id/blocks":           {Module: "room", Action: "block", TargetType: "room"},
	"DELETE /room-blocks/:id":          {Module: "room", Action: "release_block", TargetType: "room_block"},
	"PUT /tax-rates":                   {Module: "tax", Action: "update_rates"},
}

// 不写入审计的请求字段
var sensitiveFields = []string{"id_number", "password", "token", "secret"}

// Log 记录写操作，读取请求体后原样放回
func (l *OperationLogger) Log() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !isWriteMethod(c.Request.Method) {
			c.Next()
			return
		}

		var requestBody []byte
		if c.Request.Body != nil {
			requestBody, _ = io.ReadAll(c.Request.Body)
			c.Request.Body = io.NopCloser(bytes.NewBuffer(requestBody))
		}

		c.Next()

		entry, ok := l.buildEntry(c, requestBody)
		if !ok {
			return
		}
		// gin.Context 在请求结束后会被复用，这里只传已构造好的记录
		go l.save(entry)
	}
}

func isWriteMethod(method string) bool {
	switch method {
	case "POST", "PUT", "PATCH", "DELETE":
		return true
	}
	return false
}

// buildEntry 构造日志记录，未认证的请求不记录
func (l *OperationLogger) buildEntry(c *gin.Context, requestBody []byte) (*models.OperationLog, bool) {
	if l.repo == nil {
		return nil, false
	}
	staffID := c.GetInt64(staffIDKey)
	if staffID <= 0 {
		return nil, false
	}

	config := lookupOperation(c.Request.Method, c.FullPath())
	entry := &models.OperationLog{
		StaffID:    staffID,
		Module:     config.Module,
		Action:     config.Action,
		StatusCode: c.Writer.Status(),
		IP:         c.ClientIP(),
	}
	if ua := c.Request.UserAgent(); ua != "" {
		entry.UserAgent = &ua
	}
	if config.TargetType != "" {
		targetType := config.TargetType
		entry.TargetType = &targetType
		if id, err := strconv.ParseInt(c.Param("id"), 10, 64); err == nil {
			entry.TargetID = &id
		}
	}
	if len(requestBody) > 0 {
		var data map[string]interface{}
		if err := json.Unmarshal(requestBody, &data); err == nil {
			entry.Payload = filterSensitiveData(data).(map[string]interface{})
		}
	}
	return entry, true
}

func (l *OperationLogger) save(entry *models.OperationLog) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := l.repo.Create(ctx, entry); err != nil {
		logger.Warn("Failed to save operation log",
			logger.StaffID(entry.StaffID),
			logger.Module(entry.Module),
			logger.Action(entry.Action),
			zap.Error(err),
		)
	}
}

// lookupOperation 按路由匹配模块与操作，未登记的路由按路径和方法推断
func lookupOperation(method, fullPath string) OperationConfig {
	path := strings.TrimPrefix(fullPath, "/api/v1")
	if config, ok := moduleActionMap[method+" "+path]; ok {
		return config
	}

	module := "unknown"
	switch {
	case strings.HasPrefix(path, "/booking"):
		module = "booking"
	case strings.HasPrefix(path, "/room"):
		module = "room"
	case strings.HasPrefix(path, "/tax"):
		module = "tax"
	}

	action := "unknown"
	switch method {
	case "POST":
		action = "create"
	case "PUT", "PATCH":
		action = "update"
	case "DELETE":
		action = "delete"
	}
	return OperationConfig{Module: module, Action: action}
}

// filterSensitiveData 递归屏蔽敏感字段
func filterSensitiveData(data interface{}) interface{} {
	switch v := data.(type) {
	case map[string]interface{}:
		result := make(map[string]interface{}, len(v))
		for key, value := range v {
			if isSensitive(key) {
				result[key] = "***"
			} else {
				result[key] = filterSensitiveData(value)
			}
		}
		return result
	case []interface{}:
		result := make([]interface{}, len(v))
		for i, item := range v {
			result[i] = filterSensitiveData(item)
		}
		return result
	default:
		return data
	}
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, f := range sensitiveFields {
		if strings.Contains(lower, f) {
			return true
		}
	}
	return false
}
