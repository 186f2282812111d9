// Package models 定义数据库模型
package models

import (
	"database/sql/driver"
	"encoding/json"
	"time"
)

// SystemConfig 系统配置
type SystemConfig struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Group       string    `gorm:"type:varchar(50);not null;uniqueIndex:idx_system_configs_group_key;column:group" json:"group"`
	Key         string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_system_configs_group_key;column:key" json:"key"`
	Value       string    `gorm:"type:text;not null;column:value" json:"value"`
	Type        string    `gorm:"type:varchar(20);not null;default:'string';column:type" json:"type"`
	Description *string   `gorm:"type:varchar(255);column:description" json:"description,omitempty"`
	CreatedAt   time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt   time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

// TableName 表名
func (SystemConfig) TableName() string {
	return "system_configs"
}

// ConfigValueType 配置值类型
const (
	ConfigTypeString = "string" // 字符串
	ConfigTypeNumber = "number" // 数字
)

// ConfigGroup 配置分组
const (
	ConfigGroupTax = "tax" // 税率
)

// 税率配置键（百分比）
const (
	ConfigKeyGST           = "gst"
	ConfigKeyCGST          = "cgst"
	ConfigKeySGST          = "sgst"
	ConfigKeyLuxuryTax     = "luxury_tax"
	ConfigKeyServiceCharge = "service_charge"
)

// OperationLog 前台操作日志
type OperationLog struct {
	ID         int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	StaffID    int64     `gorm:"index;not null" json:"staff_id"`
	Module     string    `gorm:"type:varchar(50);not null" json:"module"`
	Action     string    `gorm:"type:varchar(50);not null" json:"action"`
	TargetType *string   `gorm:"type:varchar(50)" json:"target_type,omitempty"`
	TargetID   *int64    `json:"target_id,omitempty"`
	Payload    JSON      `gorm:"type:text" json:"payload,omitempty"`
	StatusCode int       `gorm:"not null;default:0" json:"status_code"`
	IP         string    `gorm:"type:varchar(45);not null" json:"ip"`
	UserAgent  *string   `gorm:"type:varchar(255)" json:"user_agent,omitempty"`
	CreatedAt  time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName 表名
func (OperationLog) TableName() string {
	return "operation_logs"
}

// JSON 自定义 JSON 类型
type JSON map[string]interface{}

// Scan 实现 sql.Scanner 接口
func (j *JSON) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return nil
	}
	return json.Unmarshal(data, j)
}

// Value 实现 driver.Valuer 接口
func (j JSON) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	b, err := json.Marshal(j)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}
