package frontdesk

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	frontdeskService "github.com/dumeirei/hotel-frontdesk/internal/service/frontdesk"
)

// RoomHandler 房型、房间与封房处理器
type RoomHandler struct {
	roomService *frontdeskService.RoomService
	taxRates    *frontdeskService.TaxRateProvider
}

// NewRoomHandler 创建房间处理器
func NewRoomHandler(roomSvc *frontdeskService.RoomService, taxRates *frontdeskService.TaxRateProvider) *RoomHandler {
	return &RoomHandler{
		roomService: roomSvc,
		taxRates:    taxRates,
	}
}

// UpdateRoomStatusRequest 更新房间状态请求
type UpdateRoomStatusRequest struct {
	Status string `json:"status" binding:"required"`
	Reason string `json:"reason"`
}

// BlockRoomRequest 封房请求，日期格式 YYYY-MM-DD
type BlockRoomRequest struct {
	Kind     string `json:"kind" binding:"required,oneof=blocked maintenance"`
	FromDate string `json:"from_date" binding:"required"`
	ToDate   string `json:"to_date" binding:"required"`
	Reason   string `json:"reason" binding:"required"`
}

// CreateRoomType 创建房型
// @Summary 创建房型
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body frontdeskService.CreateRoomTypeRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.RoomType}
// @Router /api/v1/room-types [post]
func (h *RoomHandler) CreateRoomType(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}

	var req frontdeskService.CreateRoomTypeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	roomType, err := h.roomService.CreateRoomType(c.Request.Context(), rc, &req)
	handler.MustSucceed(c, err, roomType)
}

// ListRoomTypes 房型列表
// @Summary 房型列表
// @Tags 房间
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=[]models.RoomType}
// @Router /api/v1/room-types [get]
func (h *RoomHandler) ListRoomTypes(c *gin.Context) {
	roomTypes, err := h.roomService.ListRoomTypes(c.Request.Context())
	handler.MustSucceed(c, err, roomTypes)
}

// CreateRoom 创建房间
// @Summary 创建房间
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body frontdeskService.CreateRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms [post]
func (h *RoomHandler) CreateRoom(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}

	var req frontdeskService.CreateRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.roomService.CreateRoom(c.Request.Context(), rc, &req)
	handler.MustSucceed(c, err, room)
}

// ListRooms 房间列表
// @Summary 房间列表
// @Tags 房间
// @Produce json
// @Security Bearer
// @Param room_type_id query int false "房型ID"
// @Param floor query int false "楼层"
// @Param housekeeping_status query string false "清洁状态"
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/v1/rooms [get]
func (h *RoomHandler) ListRooms(c *gin.Context) {
	roomTypeID, ok := handler.ParseQueryID(c, "room_type_id", "房型")
	if !ok {
		return
	}

	filters := &repository.RoomListFilters{
		RoomTypeID:         roomTypeID,
		HousekeepingStatus: c.Query("housekeeping_status"),
	}
	if s := c.Query("floor"); s != "" {
		floor, err := strconv.Atoi(s)
		if err != nil {
			response.BadRequest(c, "无效的楼层")
			return
		}
		filters.Floor = &floor
	}

	rooms, err := h.roomService.ListRooms(c.Request.Context(), filters)
	handler.MustSucceed(c, err, rooms)
}

// UpdateRoomStatus 更新房间清洁状态
// @Summary 更新房间清洁状态
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body UpdateRoomStatusRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.Room}
// @Router /api/v1/rooms/{id}/status [put]
func (h *RoomHandler) UpdateRoomStatus(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	roomID, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	var req UpdateRoomStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	room, err := h.roomService.UpdateRoomStatus(c.Request.Context(), rc, roomID, req.Status, req.Reason)
	handler.MustSucceed(c, err, room)
}

// BlockRoom 封房
// @Summary 在指定时段内封房或维修
// @Tags 房间
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Param request body BlockRoomRequest true "请求参数"
// @Success 200 {object} response.Response{data=models.RoomBlock}
// @Router /api/v1/rooms/{id}/blocks [post]
func (h *RoomHandler) BlockRoom(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	roomID, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	var req BlockRoomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	from, err := handler.ParseDate(req.FromDate)
	if handler.HandleError(c, err) {
		return
	}
	to, err := handler.ParseDate(req.ToDate)
	if handler.HandleError(c, err) {
		return
	}

	block, err := h.roomService.BlockRoom(c.Request.Context(), rc, roomID, &frontdeskService.BlockRoomRequest{
		Kind:     req.Kind,
		FromDate: from,
		ToDate:   to,
		Reason:   req.Reason,
	})
	handler.MustSucceed(c, err, block)
}

// ListBlocks 封房列表
// @Summary 房间未解除的封房时段
// @Tags 房间
// @Produce json
// @Security Bearer
// @Param id path int true "房间ID"
// @Success 200 {object} response.Response{data=[]models.RoomBlock}
// @Router /api/v1/rooms/{id}/blocks [get]
func (h *RoomHandler) ListBlocks(c *gin.Context) {
	roomID, ok := handler.ParseID(c, "房间")
	if !ok {
		return
	}

	blocks, err := h.roomService.ListBlocks(c.Request.Context(), roomID)
	handler.MustSucceed(c, err, blocks)
}

// ReleaseBlock 解除封房
// @Summary 解除封房
// @Tags 房间
// @Produce json
// @Security Bearer
// @Param id path int true "封房记录ID"
// @Success 200 {object} response.Response
// @Router /api/v1/room-blocks/{id} [delete]
func (h *RoomHandler) ReleaseBlock(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	blockID, ok := handler.ParseID(c, "封房记录")
	if !ok {
		return
	}

	err := h.roomService.ReleaseBlock(c.Request.Context(), rc, blockID)
	handler.MustSucceed(c, err, nil)
}
