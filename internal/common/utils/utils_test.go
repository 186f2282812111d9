// Package utils 通用工具函数单元测试
package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// ==================== GenerateOrderNo 测试 ====================

func TestGenerateOrderNo(t *testing.T) {
	tests := []string{"BK", "RC", ""}

	for _, prefix := range tests {
		t.Run("prefix_"+prefix, func(t *testing.T) {
			orderNo := GenerateOrderNo(prefix)
			assert.True(t, strings.HasPrefix(orderNo, prefix))
			// 前缀 + 14位时间戳 + 6位随机数
			assert.Equal(t, len(prefix)+20, len(orderNo))
		})
	}
}

// ==================== 校验测试 ====================

func TestValidatePhone(t *testing.T) {
	tests := []struct {
		phone string
		want  bool
	}{
		{"9876543210", true},
		{"+919876543210", true},
		{"13800138000", true},
		{"12345", false},
		{"98765abc10", false},
		{"", false},
	}
	for _, tt := range tests {
		t.Run(tt.phone, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidatePhone(tt.phone))
		})
	}
}

func TestValidateEmail(t *testing.T) {
	assert.True(t, ValidateEmail("guest@example.com"))
	assert.False(t, ValidateEmail("guest@"))
	assert.False(t, ValidateEmail(""))
}

// ==================== 金额测试 ====================

func TestToCents(t *testing.T) {
	tests := []struct {
		amount float64
		want   int64
	}{
		{0, 0},
		{0.1 + 0.2, 30},
		{19.99, 1999},
		{5560, 556000},
		{-2.5, -250},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ToCents(tt.amount), "amount=%v", tt.amount)
	}
	assert.Equal(t, 55.6, FromCents(5560))
}

// ==================== ID 列表测试 ====================

func TestJoinIDs(t *testing.T) {
	assert.Equal(t, "3,1,2", JoinIDs([]int64{3, 1, 2}))
	assert.Equal(t, "", JoinIDs(nil))
}

// ==================== 指针与集合测试 ====================

func TestPointers(t *testing.T) {
	assert.Equal(t, "a", *StringPtr("a"))
	assert.Nil(t, OptionalString(""))
	assert.Equal(t, "x", *OptionalString("x"))
}

func TestUnique(t *testing.T) {
	assert.Equal(t, []int64{3, 1, 2}, Unique([]int64{3, 1, 3, 2, 1}))
}

// ==================== Pagination 测试 ====================

func TestPagination(t *testing.T) {
	p := &Pagination{Page: 0, PageSize: 500}
	p.Normalize()
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 100, p.PageSize)
	assert.Equal(t, 0, p.GetOffset())

	p = &Pagination{Page: 3, PageSize: 20}
	assert.Equal(t, 40, p.GetOffset())
	assert.Equal(t, 20, p.GetLimit())
}
