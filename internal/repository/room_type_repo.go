// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// RoomTypeRepository 房型仓储
type RoomTypeRepository struct {
	db *gorm.DB
}

// NewRoomTypeRepository 创建房型仓储
func NewRoomTypeRepository(db *gorm.DB) *RoomTypeRepository {
	return &RoomTypeRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *RoomTypeRepository) WithTx(tx *gorm.DB) *RoomTypeRepository {
	return &RoomTypeRepository{db: tx}
}

// Create 创建房型
func (r *RoomTypeRepository) Create(ctx context.Context, roomType *models.RoomType) error {
	return r.db.WithContext(ctx).Create(roomType).Error
}

// GetByID 根据 ID 获取房型
func (r *RoomTypeRepository) GetByID(ctx context.Context, id int64) (*models.RoomType, error) {
	var roomType models.RoomType
	err := r.db.WithContext(ctx).First(&roomType, id).Error
	if err != nil {
		return nil, err
	}
	return &roomType, nil
}

// GetByIDs 批量获取房型，按 ID 建立索引
func (r *RoomTypeRepository) GetByIDs(ctx context.Context, ids []int64) (map[int64]*models.RoomType, error) {
	var roomTypes []*models.RoomType
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&roomTypes).Error; err != nil {
		return nil, err
	}
	result := make(map[int64]*models.RoomType, len(roomTypes))
	for _, rt := range roomTypes {
		result[rt.ID] = rt
	}
	return result, nil
}

// List 获取全部房型
func (r *RoomTypeRepository) List(ctx context.Context) ([]*models.RoomType, error) {
	var roomTypes []*models.RoomType
	err := r.db.WithContext(ctx).Order("id ASC").Find(&roomTypes).Error
	return roomTypes, err
}
