// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// SystemConfigRepository 系统配置仓储
type SystemConfigRepository struct {
	db *gorm.DB
}

// NewSystemConfigRepository 创建系统配置仓储
func NewSystemConfigRepository(db *gorm.DB) *SystemConfigRepository {
	return &SystemConfigRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *SystemConfigRepository) WithTx(tx *gorm.DB) *SystemConfigRepository {
	return &SystemConfigRepository{db: tx}
}

// GetByGroupAndKey 根据分组和键获取配置
func (r *SystemConfigRepository) GetByGroupAndKey(ctx context.Context, group, key string) (*models.SystemConfig, error) {
	var config models.SystemConfig
	err := r.db.WithContext(ctx).
		Where("\"group\" = ? AND \"key\" = ?", group, key).
		First(&config).Error
	if err != nil {
		return nil, err
	}
	return &config, nil
}

// GetByGroup 获取分组下的所有配置
func (r *SystemConfigRepository) GetByGroup(ctx context.Context, group string) ([]*models.SystemConfig, error) {
	var configs []*models.SystemConfig
	err := r.db.WithContext(ctx).
		Where("\"group\" = ?", group).
		Order("id ASC").
		Find(&configs).Error
	return configs, err
}

// BatchUpsert 批量创建或更新配置（按 group + key 去重）
func (r *SystemConfigRepository) BatchUpsert(ctx context.Context, configs []*models.SystemConfig) error {
	if len(configs) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "group"}, {Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "description", "updated_at"}),
	}).Create(&configs).Error
}
