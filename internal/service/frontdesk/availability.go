package frontdesk

import (
	"context"
	"time"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// Overlaps 半开区间 [aFrom, aTo) 与 [bFrom, bTo) 是否相交，首尾相接不算冲突
func Overlaps(aFrom, aTo, bFrom, bTo time.Time) bool {
	return aFrom.Before(bTo) && aTo.After(bFrom)
}

// StayRange 入住时段
type StayRange struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// NewStayRange 按入住日、离店日及酒店规定的入住/退房钟点生成入住时段（UTC）
func NewStayRange(fromDate, toDate time.Time, checkInHour, checkOutHour int) (StayRange, error) {
	from := truncateDay(fromDate)
	to := truncateDay(toDate)
	if !to.After(from) {
		return StayRange{}, errors.ErrInvalidDateRange.
			WithDetail("from", from.Format(time.DateOnly)).
			WithDetail("to", to.Format(time.DateOnly))
	}
	return StayRange{
		From: from.Add(time.Duration(checkInHour) * time.Hour),
		To:   to.Add(time.Duration(checkOutHour) * time.Hour),
	}, nil
}

// Nights 入住晚数（按日历日计算，至少 1 晚）
func (r StayRange) Nights() int {
	return Nights(r.From, r.To)
}

// Nights 两个时刻之间跨越的日历晚数，至少 1 晚
func Nights(from, to time.Time) int {
	n := int(truncateDay(to).Sub(truncateDay(from)).Hours() / 24)
	if n < 1 {
		return 1
	}
	return n
}

func truncateDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// RoomFinder 查询某房型在时段内无冲突的房间
type RoomFinder interface {
	FindAvailable(ctx context.Context, roomTypeID int64, from, to time.Time) ([]*models.Room, error)
}

// AvailabilityResolver 可用房间查询
type AvailabilityResolver struct {
	finder RoomFinder
}

// NewAvailabilityResolver 创建可用房间查询
func NewAvailabilityResolver(finder RoomFinder) *AvailabilityResolver {
	return &AvailabilityResolver{finder: finder}
}

// FindAvailableRooms 返回房型在 [from, to) 内可分配的房间，无房返回空列表而非错误
func (a *AvailabilityResolver) FindAvailableRooms(ctx context.Context, roomTypeID int64, from, to time.Time) ([]*models.Room, error) {
	if !to.After(from) {
		return nil, errors.ErrInvalidDateRange
	}
	rooms, err := a.finder.FindAvailable(ctx, roomTypeID, from.UTC(), to.UTC())
	if err != nil {
		return nil, errors.ErrDatabaseError.WithError(err)
	}
	if rooms == nil {
		rooms = []*models.Room{}
	}
	return rooms, nil
}
