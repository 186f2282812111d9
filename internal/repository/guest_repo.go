// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// GuestRepository 住客仓储
type GuestRepository struct {
	db *gorm.DB
}

// NewGuestRepository 创建住客仓储
func NewGuestRepository(db *gorm.DB) *GuestRepository {
	return &GuestRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *GuestRepository) WithTx(tx *gorm.DB) *GuestRepository {
	return &GuestRepository{db: tx}
}

// Create 创建住客
func (r *GuestRepository) Create(ctx context.Context, guest *models.Guest) error {
	return r.db.WithContext(ctx).Create(guest).Error
}

// GetByID 根据 ID 获取住客
func (r *GuestRepository) GetByID(ctx context.Context, id int64) (*models.Guest, error) {
	var guest models.Guest
	err := r.db.WithContext(ctx).First(&guest, id).Error
	if err != nil {
		return nil, err
	}
	return &guest, nil
}
