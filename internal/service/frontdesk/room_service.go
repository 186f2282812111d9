package frontdesk

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
)

// RoomService 房型、房间与封房管理
type RoomService struct {
	*Dependencies
}

// NewRoomService 创建房间服务
func NewRoomService(deps *Dependencies) *RoomService {
	return &RoomService{Dependencies: deps}
}

// CreateRoomTypeRequest 创建房型请求
type CreateRoomTypeRequest struct {
	Name         string  `json:"name" binding:"required"`
	Code         string  `json:"code" binding:"required"`
	BedCount     int     `json:"bed_count"`
	MaxOccupancy int     `json:"max_occupancy" binding:"required"`
	BasePrice    float64 `json:"base_price" binding:"required"`
	Description  string  `json:"description"`
}

// CreateRoomType 创建房型
func (s *RoomService) CreateRoomType(ctx context.Context, rc *RequestContext, req *CreateRoomTypeRequest) (*models.RoomType, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if req.MaxOccupancy < 1 {
		return nil, errors.ErrInvalidParams.WithMessage("最大入住人数至少为1").WithDetail("max_occupancy", req.MaxOccupancy)
	}
	if utils.ToCents(req.BasePrice) <= 0 {
		return nil, errors.ErrInvalidAmount.WithDetail("base_price", req.BasePrice)
	}

	rt := &models.RoomType{
		Name:         req.Name,
		Code:         strings.ToUpper(strings.TrimSpace(req.Code)),
		BedCount:     max(req.BedCount, 1),
		MaxOccupancy: req.MaxOccupancy,
		BasePrice:    utils.FromCents(utils.ToCents(req.BasePrice)),
		Description:  utils.OptionalString(req.Description),
	}
	if err := s.Repos.RoomTypes.Create(ctx, rt); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.ErrAlreadyExists.WithMessage("房型编码已存在").WithDetail("code", rt.Code)
		}
		return nil, mapError(err, nil)
	}

	logger.Info("Room type created",
		logger.Module("rooms"),
		logger.RoomTypeID(rt.ID),
		logger.StaffID(rc.StaffID),
		zap.String("code", rt.Code),
	)
	return rt, nil
}

// ListRoomTypes 获取全部房型
func (s *RoomService) ListRoomTypes(ctx context.Context) ([]*models.RoomType, error) {
	types, err := s.Repos.RoomTypes.List(ctx)
	if err != nil {
		return nil, mapError(err, nil)
	}
	return types, nil
}

// CreateRoomRequest 创建房间请求
type CreateRoomRequest struct {
	RoomTypeID int64  `json:"room_type_id" binding:"required"`
	RoomNo     string `json:"room_no" binding:"required"`
	Floor      int    `json:"floor"`
}

// CreateRoom 创建房间，房间号全局唯一
func (s *RoomService) CreateRoom(ctx context.Context, rc *RequestContext, req *CreateRoomRequest) (*models.Room, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	roomNo := strings.TrimSpace(req.RoomNo)
	if roomNo == "" {
		return nil, errors.ErrInvalidParams.WithMessage("缺少房间号")
	}
	if _, err := s.Repos.RoomTypes.GetByID(ctx, req.RoomTypeID); err != nil {
		return nil, mapError(err, errors.ErrRoomTypeNotFound.WithDetail("room_type_id", req.RoomTypeID))
	}

	room := &models.Room{
		RoomTypeID:         req.RoomTypeID,
		RoomNo:             roomNo,
		Floor:              max(req.Floor, 1),
		HousekeepingStatus: models.HousekeepingAvailable,
	}
	if err := s.Repos.Rooms.Create(ctx, room); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, errors.ErrRoomNumberExists.WithDetail("room_no", roomNo)
		}
		return nil, mapError(err, nil)
	}

	logger.Info("Room created",
		logger.Module("rooms"),
		logger.RoomID(room.ID),
		logger.RoomTypeID(room.RoomTypeID),
		logger.StaffID(rc.StaffID),
	)
	return room, nil
}

// ListRooms 获取房间列表
func (s *RoomService) ListRooms(ctx context.Context, filters *repository.RoomListFilters) ([]*models.Room, error) {
	if filters != nil && filters.HousekeepingStatus != "" && !models.IsValidHousekeepingStatus(filters.HousekeepingStatus) {
		return nil, errors.ErrInvalidParams.WithDetail("housekeeping_status", filters.HousekeepingStatus)
	}
	rooms, err := s.Repos.Rooms.List(ctx, filters)
	if err != nil {
		return nil, mapError(err, nil)
	}
	return rooms, nil
}

// UpdateRoomStatus 更新房间清洁状态，不影响预订占用
func (s *RoomService) UpdateRoomStatus(ctx context.Context, rc *RequestContext, roomID int64, status, reason string) (*models.Room, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if !models.IsValidHousekeepingStatus(status) {
		return nil, errors.ErrInvalidParams.WithMessage("无效的房间状态").WithDetail("status", status)
	}

	if err := s.Repos.Rooms.UpdateHousekeepingStatus(ctx, roomID, status, utils.OptionalString(reason)); err != nil {
		return nil, mapError(err, errors.ErrRoomNotFound.WithDetail("room_id", roomID))
	}

	logger.Info("Room status updated",
		logger.Module("rooms"),
		logger.RoomID(roomID),
		logger.StaffID(rc.StaffID),
		zap.String("status", status),
	)

	room, err := s.Repos.Rooms.GetByIDWithType(ctx, roomID)
	if err != nil {
		return nil, mapError(err, errors.ErrRoomNotFound.WithDetail("room_id", roomID))
	}
	return room, nil
}

// BlockRoomRequest 封房请求，日期按入住日/离店日计算
type BlockRoomRequest struct {
	Kind     string    `json:"kind" binding:"required,oneof=blocked maintenance"`
	FromDate time.Time `json:"from_date" binding:"required"`
	ToDate   time.Time `json:"to_date" binding:"required"`
	Reason   string    `json:"reason" binding:"required"`
}

// BlockRoom 在指定时段内封房，已有的入住段不受影响
func (s *RoomService) BlockRoom(ctx context.Context, rc *RequestContext, roomID int64, req *BlockRoomRequest) (*models.RoomBlock, error) {
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if req.Kind != models.RoomBlockKindBlocked && req.Kind != models.RoomBlockKindMaintenance {
		return nil, errors.ErrInvalidParams.WithMessage("无效的封房类型").WithDetail("kind", req.Kind)
	}
	if strings.TrimSpace(req.Reason) == "" {
		return nil, errors.ErrInvalidParams.WithMessage("封房必须填写原因")
	}
	stay, err := NewStayRange(req.FromDate, req.ToDate, s.Config.CheckInHour, s.Config.CheckOutHour)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repos.Rooms.GetByID(ctx, roomID); err != nil {
		return nil, mapError(err, errors.ErrRoomNotFound.WithDetail("room_id", roomID))
	}

	block := &models.RoomBlock{
		RoomID:    roomID,
		Kind:      req.Kind,
		FromDate:  stay.From,
		ToDate:    stay.To,
		Reason:    req.Reason,
		CreatedBy: rc.StaffID,
	}
	if err := s.Repos.RoomBlocks.Create(ctx, block); err != nil {
		return nil, mapError(err, nil)
	}

	logger.Info("Room blocked",
		logger.Module("rooms"),
		logger.RoomID(roomID),
		logger.StaffID(rc.StaffID),
		zap.String("kind", req.Kind),
		zap.Time("from", stay.From),
		zap.Time("to", stay.To),
	)
	return block, nil
}

// ReleaseBlock 解除封房
func (s *RoomService) ReleaseBlock(ctx context.Context, rc *RequestContext, blockID int64) error {
	if err := rc.Validate(); err != nil {
		return err
	}
	if err := s.Repos.RoomBlocks.Release(ctx, blockID, rc.now()); err != nil {
		return mapError(err, errors.ErrNotFound.WithMessage("封房记录不存在或已解除").WithDetail("block_id", blockID))
	}
	logger.Info("Room block released",
		logger.Module("rooms"),
		logger.StaffID(rc.StaffID),
		zap.Int64("block_id", blockID),
	)
	return nil
}

// ListBlocks 获取房间未解除的封房时段
func (s *RoomService) ListBlocks(ctx context.Context, roomID int64) ([]*models.RoomBlock, error) {
	blocks, err := s.Repos.RoomBlocks.ListActiveByRoom(ctx, roomID)
	if err != nil {
		return nil, mapError(err, nil)
	}
	return blocks, nil
}
