// Package repository 前台仓储测试公共方法
package repository

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

func setupFrontDeskTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", name)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.FrontDeskModels()...))
	return db
}

// day 返回 2026-11-dd 的指定小时（UTC）
func day(d, hour int) time.Time {
	return time.Date(2026, time.November, d, hour, 0, 0, 0, time.UTC)
}

func seedRoomType(t *testing.T, db *gorm.DB, code string, maxOccupancy int) *models.RoomType {
	t.Helper()
	rt := &models.RoomType{
		Name:         code,
		Code:         code,
		BedCount:     1,
		MaxOccupancy: maxOccupancy,
		BasePrice:    2000,
	}
	require.NoError(t, db.Create(rt).Error)
	return rt
}

func seedRoom(t *testing.T, db *gorm.DB, roomTypeID int64, roomNo string, floor int) *models.Room {
	t.Helper()
	room := &models.Room{
		RoomTypeID:         roomTypeID,
		RoomNo:             roomNo,
		Floor:              floor,
		HousekeepingStatus: models.HousekeepingAvailable,
	}
	require.NoError(t, db.Create(room).Error)
	return room
}

func seedBooking(t *testing.T, db *gorm.DB, bookingNo string, from, to time.Time) *models.Booking {
	t.Helper()
	guest := &models.Guest{Name: "Asha", Phone: "9800000000"}
	require.NoError(t, db.Create(guest).Error)
	booking := &models.Booking{
		BookingNo:        bookingNo,
		GuestID:          guest.ID,
		StaffID:          1,
		Status:           models.BookingStatusConfirmed,
		CheckIn:          from,
		ExpectedCheckout: to,
		Version:          1,
	}
	require.NoError(t, db.Create(booking).Error)
	return booking
}

func seedBookingRoom(t *testing.T, db *gorm.DB, bookingID int64, room *models.Room, from, to time.Time, status string) *models.BookingRoom {
	t.Helper()
	br := &models.BookingRoom{
		BookingID:    bookingID,
		RoomID:       room.ID,
		RoomTypeID:   room.RoomTypeID,
		CheckInDate:  from,
		CheckOutDate: to,
		RoomRate:     2000,
		Nights:       1,
		RoomTotal:    2000,
		Adults:       1,
		RoomStatus:   status,
	}
	require.NoError(t, db.Create(br).Error)
	return br
}

func roomNos(rooms []*models.Room) []string {
	nos := make([]string, 0, len(rooms))
	for _, r := range rooms {
		nos = append(nos, r.RoomNo)
	}
	return nos
}
