// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// RoomBlockRepository 封房时段仓储
type RoomBlockRepository struct {
	db *gorm.DB
}

// NewRoomBlockRepository 创建封房时段仓储
func NewRoomBlockRepository(db *gorm.DB) *RoomBlockRepository {
	return &RoomBlockRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *RoomBlockRepository) WithTx(tx *gorm.DB) *RoomBlockRepository {
	return &RoomBlockRepository{db: tx}
}

// Create 创建封房时段
func (r *RoomBlockRepository) Create(ctx context.Context, block *models.RoomBlock) error {
	return r.db.WithContext(ctx).Create(block).Error
}

// ListActiveByRoom 获取房间未解除的封房时段
func (r *RoomBlockRepository) ListActiveByRoom(ctx context.Context, roomID int64) ([]*models.RoomBlock, error) {
	var blocks []*models.RoomBlock
	err := r.db.WithContext(ctx).
		Where("room_id = ? AND released_at IS NULL", roomID).
		Order("from_date ASC").
		Find(&blocks).Error
	return blocks, err
}

// Release 解除封房
func (r *RoomBlockRepository) Release(ctx context.Context, id int64, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.RoomBlock{}).
		Where("id = ? AND released_at IS NULL", id).
		Update("released_at", at)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
