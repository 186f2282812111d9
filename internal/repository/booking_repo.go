// Package repository 提供数据访问层
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// ErrStaleUpdate 条件更新未命中任何行（版本号或状态已被并发修改）
var ErrStaleUpdate = errors.New("repository: stale update")

// BookingRepository 预订仓储
type BookingRepository struct {
	db *gorm.DB
}

// NewBookingRepository 创建预订仓储
func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *BookingRepository) WithTx(tx *gorm.DB) *BookingRepository {
	return &BookingRepository{db: tx}
}

// Create 创建预订
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(booking).Error
}

// GetByID 根据 ID 获取预订
func (r *BookingRepository) GetByID(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *BookingRepository) withDetails(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).
		Preload("Guest").
		Preload("Rooms", func(db *gorm.DB) *gorm.DB {
			return db.Order("id ASC")
		}).
		Preload("Rooms.Room")
}

// GetByIDWithDetails 根据 ID 获取预订（包含住客与房间）
func (r *BookingRepository) GetByIDWithDetails(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.withDetails(ctx).First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetByBookingNoWithDetails 根据预订号获取预订（包含住客与房间）
func (r *BookingRepository) GetByBookingNoWithDetails(ctx context.Context, bookingNo string) (*models.Booking, error) {
	var booking models.Booking
	err := r.withDetails(ctx).
		Where("booking_no = ?", bookingNo).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// GetForUpdate 获取预订并加行锁（需在事务中调用）
func (r *BookingRepository) GetForUpdate(ctx context.Context, id int64) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&booking, id).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

// UpdateWithVersion 按版本号更新预订，成功后版本号加一
func (r *BookingRepository) UpdateWithVersion(ctx context.Context, id int64, version int, updates map[string]interface{}) error {
	fields := make(map[string]interface{}, len(updates)+1)
	for k, v := range updates {
		fields[k] = v
	}
	fields["version"] = gorm.Expr("version + 1")

	result := r.db.WithContext(ctx).Model(&models.Booking{}).
		Where("id = ? AND version = ?", id, version).
		Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrStaleUpdate
	}
	return nil
}

// BookingListFilters 预订列表筛选条件
type BookingListFilters struct {
	Status    string
	StaffID   int64
	BookingNo string
	From      *time.Time
	To        *time.Time
}

// List 获取预订列表
func (r *BookingRepository) List(ctx context.Context, offset, limit int, filters *BookingListFilters) ([]*models.Booking, int64, error) {
	var bookings []*models.Booking
	var total int64

	query := r.db.WithContext(ctx).Model(&models.Booking{})

	if filters != nil {
		if filters.Status != "" {
			query = query.Where("status = ?", filters.Status)
		}
		if filters.StaffID > 0 {
			query = query.Where("staff_id = ?", filters.StaffID)
		}
		if filters.BookingNo != "" {
			query = query.Where("booking_no = ?", filters.BookingNo)
		}
		// 与 [From, To) 有交集的预订
		if filters.From != nil {
			query = query.Where("expected_checkout > ?", *filters.From)
		}
		if filters.To != nil {
			query = query.Where("check_in < ?", *filters.To)
		}
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Preload("Guest").Order("id DESC").Offset(offset).Limit(limit).Find(&bookings).Error; err != nil {
		return nil, 0, err
	}

	return bookings, total, nil
}
