package frontdesk

import (
	"time"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// roomTransitions 单间房允许的状态迁移
var roomTransitions = map[string][]string{
	models.RoomStatusConfirmed: {models.RoomStatusCheckedIn, models.RoomStatusCancelled},
	models.RoomStatusCheckedIn: {models.RoomStatusCheckedOut},
}

// CanTransitionRoom 判断单间房状态能否从 from 迁移到 to
func CanTransitionRoom(from, to string) bool {
	for _, s := range roomTransitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

func invalidTransition(br *models.BookingRoom, to string) error {
	return errors.ErrInvalidTransition.
		WithDetail("booking_room_id", br.ID).
		WithDetail("from", br.RoomStatus).
		WithDetail("to", to)
}

// CheckInRoom 办理单间房入住，校验失败时不修改 br
func CheckInRoom(br *models.BookingRoom, staffID int64, at time.Time) error {
	if staffID <= 0 {
		return errors.ErrStaffRequired
	}
	if at.IsZero() {
		return errors.ErrInvalidParams.WithMessage("缺少实际入住时间")
	}
	if !CanTransitionRoom(br.RoomStatus, models.RoomStatusCheckedIn) {
		return invalidTransition(br, models.RoomStatusCheckedIn)
	}

	at = at.UTC()
	br.RoomStatus = models.RoomStatusCheckedIn
	br.ActualCheckIn = &at
	br.CheckedInBy = &staffID
	return nil
}

// CheckOutRoom 办理单间房退房，校验失败时不修改 br
func CheckOutRoom(br *models.BookingRoom, staffID int64, at time.Time) error {
	if staffID <= 0 {
		return errors.ErrStaffRequired
	}
	if at.IsZero() {
		return errors.ErrInvalidParams.WithMessage("缺少实际退房时间")
	}
	if !CanTransitionRoom(br.RoomStatus, models.RoomStatusCheckedOut) {
		return invalidTransition(br, models.RoomStatusCheckedOut)
	}
	if br.ActualCheckIn != nil && at.Before(*br.ActualCheckIn) {
		return errors.ErrInvalidParams.
			WithMessage("退房时间早于入住时间").
			WithDetail("booking_room_id", br.ID).
			WithDetail("actual_check_in", br.ActualCheckIn.UTC()).
			WithDetail("actual_checkout", at.UTC())
	}

	at = at.UTC()
	br.RoomStatus = models.RoomStatusCheckedOut
	br.ActualCheckOut = &at
	br.CheckedOutBy = &staffID
	return nil
}

// CancelBooking 取消整单，仅当预订及其全部房间仍为已确认时允许
func CancelBooking(b *models.Booking, rooms []*models.BookingRoom, reason string, at time.Time) error {
	if b.Status != models.BookingStatusConfirmed {
		return errors.ErrInvalidTransition.
			WithDetail("booking_id", b.ID).
			WithDetail("from", b.Status).
			WithDetail("to", models.BookingStatusCancelled)
	}
	for _, br := range rooms {
		if !CanTransitionRoom(br.RoomStatus, models.RoomStatusCancelled) {
			return invalidTransition(br, models.RoomStatusCancelled)
		}
	}

	at = at.UTC()
	for _, br := range rooms {
		br.RoomStatus = models.RoomStatusCancelled
	}
	b.Status = models.BookingStatusCancelled
	b.CancelledAt = &at
	if reason != "" {
		b.CancelReason = &reason
	}
	return nil
}

// DeriveBookingStatus 由各房间状态推导预订状态
//
// 任一房间已入住即为已入住；全部（未取消的）房间退房后为已退房。
func DeriveBookingStatus(current string, rooms []*models.BookingRoom) string {
	if current == models.BookingStatusCancelled {
		return current
	}

	var live, checkedIn, checkedOut int
	for _, br := range rooms {
		switch br.RoomStatus {
		case models.RoomStatusCancelled:
			continue
		case models.RoomStatusCheckedIn:
			checkedIn++
		case models.RoomStatusCheckedOut:
			checkedOut++
		}
		live++
	}

	switch {
	case live == 0:
		return models.BookingStatusCancelled
	case checkedOut == live:
		return models.BookingStatusCheckedOut
	case checkedIn > 0 || checkedOut > 0:
		return models.BookingStatusCheckedIn
	default:
		return models.BookingStatusConfirmed
	}
}
