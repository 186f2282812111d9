// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// OperationLogRepository 操作日志仓储
type OperationLogRepository struct {
	db *gorm.DB
}

// NewOperationLogRepository 创建操作日志仓储
func NewOperationLogRepository(db *gorm.DB) *OperationLogRepository {
	return &OperationLogRepository{db: db}
}

// Create 创建操作日志
func (r *OperationLogRepository) Create(ctx context.Context, log *models.OperationLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}

// OperationLogFilters 操作日志筛选条件
type OperationLogFilters struct {
	StaffID    int64
	Module     string
	Action     string
	TargetType string
	TargetID   int64
	StartTime  *time.Time
	EndTime    *time.Time
}

// List 获取操作日志列表
func (r *OperationLogRepository) List(ctx context.Context, offset, limit int, filters *OperationLogFilters) ([]*models.OperationLog, int64, error) {
	var logs []*models.OperationLog
	var total int64

	query := r.db.WithContext(ctx).Model(&models.OperationLog{})

	if filters != nil {
		if filters.StaffID > 0 {
			query = query.Where("staff_id = ?", filters.StaffID)
		}
		if filters.Module != "" {
			query = query.Where("module = ?", filters.Module)
		}
		if filters.Action != "" {
			query = query.Where("action = ?", filters.Action)
		}
		if filters.TargetType != "" {
			query = query.Where("target_type = ?", filters.TargetType)
		}
		if filters.TargetID > 0 {
			query = query.Where("target_id = ?", filters.TargetID)
		}
		if filters.StartTime != nil {
			query = query.Where("created_at >= ?", *filters.StartTime)
		}
		if filters.EndTime != nil {
			query = query.Where("created_at <= ?", *filters.EndTime)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("id DESC").Offset(offset).Limit(limit).Find(&logs).Error; err != nil {
		return nil, 0, err
	}

	return logs, total, nil
}

// DeleteBefore 删除指定时间之前的日志
func (r *OperationLogRepository) DeleteBefore(ctx context.Context, before time.Time) (int64, error) {
	result := r.db.WithContext(ctx).
		Where("created_at < ?", before).
		Delete(&models.OperationLog{})
	return result.RowsAffected, result.Error
}
