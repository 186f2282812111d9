// Package utils 提供通用工具函数
package utils

import (
	"crypto/rand"
	"fmt"
	"math"
	"math/big"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// GenerateOrderNo 生成单号
// 格式: 前缀 + 年月日时分秒(UTC) + 6位随机数
func GenerateOrderNo(prefix string) string {
	timestamp := time.Now().UTC().Format("20060102150405")
	n, _ := rand.Int(rand.Reader, big.NewInt(1000000))
	return fmt.Sprintf("%s%s%06d", prefix, timestamp, n.Int64())
}

var phonePattern = regexp.MustCompile(`^\+?[0-9]{7,15}$`)

// ValidatePhone 验证手机号（7-15 位数字，可带 + 前缀）
func ValidatePhone(phone string) bool {
	return phonePattern.MatchString(phone)
}

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

// ValidateEmail 验证邮箱
func ValidateEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ToCents 元转分，四舍五入到分
func ToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// FromCents 分转元
func FromCents(cents int64) float64 {
	return float64(cents) / 100
}

// JoinIDs 将 ID 列表拼接为逗号分隔字符串
func JoinIDs(ids []int64) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatInt(id, 10)
	}
	return strings.Join(parts, ",")
}

// StringPtr 返回字符串指针
func StringPtr(s string) *string {
	return &s
}

// OptionalString 空字符串返回 nil
func OptionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Unique 切片去重，保持原有顺序
func Unique[T comparable](slice []T) []T {
	seen := make(map[T]struct{}, len(slice))
	result := make([]T, 0, len(slice))
	for _, v := range slice {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}

// Pagination 分页参数
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// GetOffset 获取偏移量
func (p *Pagination) GetOffset() int {
	return (p.Page - 1) * p.PageSize
}

// GetLimit 获取限制数
func (p *Pagination) GetLimit() int {
	return p.PageSize
}

// Normalize 规范化分页参数
func (p *Pagination) Normalize() {
	if p.Page < 1 {
		p.Page = 1
	}
	if p.PageSize < 1 {
		p.PageSize = 10
	}
	if p.PageSize > 100 {
		p.PageSize = 100
	}
}
