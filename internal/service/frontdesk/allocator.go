package frontdesk

import (
	"context"
	"time"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// AllocationLine 一行房型需求，人数按该行每间房计
type AllocationLine struct {
	RoomTypeID int64    `json:"room_type_id" binding:"required"`
	RoomCount  int      `json:"room_count" binding:"required,min=1"`
	Adults     int      `json:"adults" binding:"min=0"`
	Children   int      `json:"children" binding:"min=0"`
	ExtraBeds  int      `json:"extra_beds" binding:"min=0"`
	Rate       *float64 `json:"rate,omitempty"`
}

// Party 返回该行每间房的人数
func (l AllocationLine) Party() Party {
	return Party{Adults: l.Adults, Children: l.Children, ExtraBeds: l.ExtraBeds}
}

// Assignment 分配结果：一间具体房间对应一条预订房间
type Assignment struct {
	LineIndex int
	Room      *models.Room
	RoomType  *models.RoomType
	Party     Party
}

// RoomAllocator 为多行房型需求分配互不重复的具体房间
type RoomAllocator struct {
	availability *AvailabilityResolver
}

// NewRoomAllocator 创建分房器
func NewRoomAllocator(finder RoomFinder) *RoomAllocator {
	return &RoomAllocator{availability: NewAvailabilityResolver(finder)}
}

// Allocate 全部成功或全部失败：任意一行不满足即返回错误，不产生部分分配
func (a *RoomAllocator) Allocate(ctx context.Context, lines []AllocationLine, roomTypes map[int64]*models.RoomType, stay StayRange) ([]Assignment, error) {
	if len(lines) == 0 {
		return nil, errors.ErrInvalidParams.WithMessage("至少需要一个房型")
	}

	// 1. 先校验每行的房型与人数，再查询房态
	for i, line := range lines {
		if line.RoomCount < 1 {
			return nil, errors.ErrInvalidParams.WithMessage("房间数量至少为 1").WithDetail("line", i)
		}
		roomType, ok := roomTypes[line.RoomTypeID]
		if !ok {
			return nil, errors.ErrRoomTypeNotFound.WithDetail("line", i).WithDetail("room_type_id", line.RoomTypeID)
		}
		if err := ValidateCapacity(line.Party(), roomType); err != nil {
			return nil, errors.GetAppError(err).WithDetail("line", i)
		}
	}

	// 2. 逐行取可用房间，跳过本次请求中前面行已占用的房间
	claimed := make(map[int64]struct{})
	assignments := make([]Assignment, 0, len(lines))
	for i, line := range lines {
		candidates, err := a.availability.FindAvailableRooms(ctx, line.RoomTypeID, stay.From, stay.To)
		if err != nil {
			return nil, err
		}

		free := make([]*models.Room, 0, len(candidates))
		for _, room := range candidates {
			if _, taken := claimed[room.ID]; !taken {
				free = append(free, room)
			}
		}
		if len(free) < line.RoomCount {
			return nil, errors.ErrInsufficientAvailability.
				WithDetail("line", i).
				WithDetail("room_type_id", line.RoomTypeID).
				WithDetail("requested", line.RoomCount).
				WithDetail("available", len(free))
		}

		for _, room := range free[:line.RoomCount] {
			if _, taken := claimed[room.ID]; taken || room.RoomTypeID != line.RoomTypeID {
				return nil, errors.ErrRoomAssignmentConflict.WithDetail("line", i).WithDetail("room_id", room.ID)
			}
			claimed[room.ID] = struct{}{}
			assignments = append(assignments, Assignment{
				LineIndex: i,
				Room:      room,
				RoomType:  roomTypes[line.RoomTypeID],
				Party:     line.Party(),
			})
		}
	}

	return assignments, nil
}

// OverlapCounter 统计房间在时段内的有效入住段
type OverlapCounter interface {
	CountActiveOverlap(ctx context.Context, roomID int64, from, to time.Time) (int64, error)
}

// ConfirmAssignments 写入前逐间复核：任一房间在入住段内已有有效占用即拒绝整单
func ConfirmAssignments(ctx context.Context, counter OverlapCounter, assignments []Assignment, stay StayRange) error {
	for _, a := range assignments {
		count, err := counter.CountActiveOverlap(ctx, a.Room.ID, stay.From, stay.To)
		if err != nil {
			return err
		}
		if count > 0 {
			return errors.ErrRoomAssignmentConflict.
				WithDetail("line", a.LineIndex).
				WithDetail("room_id", a.Room.ID)
		}
	}
	return nil
}
