// Package repository 提供数据访问层
package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// RoomRepository 房间仓储
type RoomRepository struct {
	db  *gorm.DB
	now func() time.Time
}

// NewRoomRepository 创建房间仓储
func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db, now: time.Now}
}

// WithTx 返回绑定到事务的仓储
func (r *RoomRepository) WithTx(tx *gorm.DB) *RoomRepository {
	return &RoomRepository{db: tx, now: r.now}
}

// WithClock 替换判断“当天”所用的时钟
func (r *RoomRepository) WithClock(now func() time.Time) *RoomRepository {
	return &RoomRepository{db: r.db, now: now}
}

// endOfToday 当天结束时刻（UTC）
func (r *RoomRepository) endOfToday() time.Time {
	n := r.now().UTC()
	return time.Date(n.Year(), n.Month(), n.Day()+1, 0, 0, 0, 0, time.UTC)
}

// Create 创建房间
func (r *RoomRepository) Create(ctx context.Context, room *models.Room) error {
	return r.db.WithContext(ctx).Create(room).Error
}

// GetByID 根据 ID 获取房间
func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// GetByIDWithType 根据 ID 获取房间（包含房型）
func (r *RoomRepository) GetByIDWithType(ctx context.Context, id int64) (*models.Room, error) {
	var room models.Room
	err := r.db.WithContext(ctx).Preload("RoomType").First(&room, id).Error
	if err != nil {
		return nil, err
	}
	return &room, nil
}

// RoomListFilters 房间列表筛选条件
type RoomListFilters struct {
	RoomTypeID         int64
	Floor              *int
	HousekeepingStatus string
}

// List 获取房间列表
func (r *RoomRepository) List(ctx context.Context, filters *RoomListFilters) ([]*models.Room, error) {
	var rooms []*models.Room
	query := r.db.WithContext(ctx).Model(&models.Room{})

	if filters != nil {
		if filters.RoomTypeID > 0 {
			query = query.Where("room_type_id = ?", filters.RoomTypeID)
		}
		if filters.Floor != nil {
			query = query.Where("floor = ?", *filters.Floor)
		}
		if filters.HousekeepingStatus != "" {
			query = query.Where("housekeeping_status = ?", filters.HousekeepingStatus)
		}
	}

	err := query.Order("floor ASC, room_no ASC").Find(&rooms).Error
	return rooms, err
}

// UpdateHousekeepingStatus 更新房间清洁状态
func (r *RoomRepository) UpdateHousekeepingStatus(ctx context.Context, id int64, status string, reason *string) error {
	result := r.db.WithContext(ctx).Model(&models.Room{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"housekeeping_status": status,
			"status_reason":       reason,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// FindAvailable 查询指定房型在 [from, to) 内可分配的房间
//
// 排除：与有效入住段重叠的房间、与未解除封房时段重叠的房间；
// 入住日在当天的查询额外排除清洁状态为封锁/维修的房间，之后日期的停用以封房时段为准。
// 区间重叠判定为 existing.from < to AND existing.to > from，结果按楼层、房号排序。
func (r *RoomRepository) FindAvailable(ctx context.Context, roomTypeID int64, from, to time.Time) ([]*models.Room, error) {
	var rooms []*models.Room

	bookedSub := r.db.Session(&gorm.Session{NewDB: true}).
		Model(&models.BookingRoom{}).
		Select("1").
		Where("booking_rooms.room_id = rooms.id").
		Where("booking_rooms.room_status IN ?", models.ActiveRoomStatuses).
		Where("booking_rooms.check_in_date < ? AND booking_rooms.check_out_date > ?", to, from)

	blockedSub := r.db.Session(&gorm.Session{NewDB: true}).
		Model(&models.RoomBlock{}).
		Select("1").
		Where("room_blocks.room_id = rooms.id").
		Where("room_blocks.released_at IS NULL").
		Where("room_blocks.from_date < ? AND room_blocks.to_date > ?", to, from)

	query := r.db.WithContext(ctx).Where("room_type_id = ?", roomTypeID)
	if from.Before(r.endOfToday()) {
		query = query.Where("housekeeping_status NOT IN ?", []string{
			models.HousekeepingBlocked,
			models.HousekeepingMaintenance,
		})
	}
	err := query.
		Where("NOT EXISTS (?)", bookedSub).
		Where("NOT EXISTS (?)", blockedSub).
		Order("floor ASC, room_no ASC, id ASC").
		Find(&rooms).Error
	return rooms, err
}
