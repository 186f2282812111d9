// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// BookingRoomRepository 预订房间仓储
type BookingRoomRepository struct {
	db *gorm.DB
}

// NewBookingRoomRepository 创建预订房间仓储
func NewBookingRoomRepository(db *gorm.DB) *BookingRoomRepository {
	return &BookingRoomRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *BookingRoomRepository) WithTx(tx *gorm.DB) *BookingRoomRepository {
	return &BookingRoomRepository{db: tx}
}

// CreateBatch 批量创建预订房间
func (r *BookingRoomRepository) CreateBatch(ctx context.Context, rooms []*models.BookingRoom) error {
	if len(rooms) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Omit("Room").Create(&rooms).Error
}

// GetByID 根据 ID 获取预订房间
func (r *BookingRoomRepository) GetByID(ctx context.Context, id int64) (*models.BookingRoom, error) {
	var room models.BookingRoom
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// ListByBooking 获取预订下的全部房间
func (r *BookingRoomRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*models.BookingRoom, error) {
	var rooms []*models.BookingRoom
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id ASC").
		Find(&rooms).Error
	return rooms, err
}

// Transition 条件推进单间房状态，仅当当前状态为 from 时生效
func (r *BookingRoomRepository) Transition(ctx context.Context, id int64, from, to string, updates map[string]interface{}) error {
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields["room_status"] = to

	result := r.db.WithContext(ctx).Model(&models.BookingRoom{}).
		Where("id = ? AND room_status = ?", id, from).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// CancelByBooking 取消预订下所有仍为已确认的房间，返回受影响行数
func (r *BookingRoomRepository) CancelByBooking(ctx context.Context, bookingID int64) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.BookingRoom{}).
		Where("booking_id = ? AND room_status = ?", bookingID, models.RoomStatusConfirmed).
		Update("room_status", models.RoomStatusCancelled)
	return result.RowsAffected, result.Error
}

// CountActiveOverlap 统计房间在 [from, to) 内的有效入住段数量
func (r *BookingRoomRepository) CountActiveOverlap(ctx context.Context, roomID int64, from, to time.Time) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.BookingRoom{}).
		Where("room_id = ?", roomID).
		Where("room_status IN ?", models.ActiveRoomStatuses).
		Where("check_in_date < ? AND check_out_date > ?", to, from).
		Count(&count).Error
	return count, err
}
