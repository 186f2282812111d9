package frontdesk

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	frontdeskService "github.com/dumeirei/hotel-frontdesk/internal/service/frontdesk"
)

// BookingHandler 预订处理器
type BookingHandler struct {
	bookingService *frontdeskService.BookingService
	taxRates       *frontdeskService.TaxRateProvider
}

// NewBookingHandler 创建预订处理器
func NewBookingHandler(bookingSvc *frontdeskService.BookingService, taxRates *frontdeskService.TaxRateProvider) *BookingHandler {
	return &BookingHandler{
		bookingService: bookingSvc,
		taxRates:       taxRates,
	}
}

// CreateBookingRequest 创建预订请求，日期格式 YYYY-MM-DD
type CreateBookingRequest struct {
	Guest           frontdeskService.GuestInput       `json:"guest" binding:"required"`
	CheckInDate     string                            `json:"check_in_date" binding:"required"`
	CheckOutDate    string                            `json:"check_out_date" binding:"required"`
	Lines           []frontdeskService.AllocationLine `json:"lines" binding:"required,min=1,dive"`
	TariffInclusive bool                              `json:"tariff_inclusive"`
	Advances        []frontdeskService.PaymentInput   `json:"advances" binding:"dive"`
	Source          string                            `json:"source"`
	Remark          string                            `json:"remark"`
}

// CheckInRequest 入住请求，actual_check_in 为空时取当前时间
type CheckInRequest struct {
	ActualCheckIn string `json:"actual_check_in"`
}

// CancelBookingRequest 取消预订请求
type CancelBookingRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// ClampPartyRequest 编辑人数时的实时截断请求
type ClampPartyRequest struct {
	frontdeskService.Party
	MaxOccupancy int    `json:"max_occupancy" binding:"required,min=1"`
	Editing      string `json:"editing" binding:"omitempty,oneof=adults children extra_beds"`
}

// FindAvailableRooms 查询可用房间
// @Summary 查询房型在入住时段内的可用房间
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param room_type_id query int true "房型ID"
// @Param check_in query string true "入住日期 YYYY-MM-DD"
// @Param check_out query string true "离店日期 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=[]models.Room}
// @Router /api/v1/availability [get]
func (h *BookingHandler) FindAvailableRooms(c *gin.Context) {
	roomTypeID, ok := handler.ParseQueryID(c, "room_type_id", "房型")
	if !ok {
		return
	}
	if roomTypeID == 0 {
		response.BadRequest(c, "请提供房型ID")
		return
	}
	checkIn, ok := handler.ParseQueryDate(c, "check_in")
	if !ok {
		return
	}
	checkOut, ok := handler.ParseQueryDate(c, "check_out")
	if !ok {
		return
	}

	rooms, err := h.bookingService.FindAvailableRooms(c.Request.Context(), roomTypeID, checkIn, checkOut)
	handler.MustSucceed(c, err, rooms)
}

// ClampParty 编辑人数时按房型上限截断
// @Summary 人数实时截断（不用于提交校验）
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body ClampPartyRequest true "请求参数"
// @Success 200 {object} response.Response{data=frontdeskService.Party}
// @Router /api/v1/bookings/clamp-party [post]
func (h *BookingHandler) ClampParty(c *gin.Context) {
	var req ClampPartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	if req.Adults < 0 || req.Children < 0 || req.ExtraBeds < 0 {
		response.BadRequest(c, "人数不能为负数")
		return
	}

	editing := frontdeskService.PartyField(req.Editing)
	if editing == "" {
		editing = frontdeskService.FieldAdults
	}
	response.Success(c, frontdeskService.ClampParty(req.Party, req.MaxOccupancy, editing))
}

// CreateBooking 创建预订并分配房间
// @Summary 创建预订（多房型分房，全部成功或全部失败）
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body CreateBookingRequest true "请求参数"
// @Success 200 {object} response.Response{data=frontdeskService.BookingDetail}
// @Router /api/v1/bookings [post]
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	checkIn, err := handler.ParseDate(req.CheckInDate)
	if handler.HandleError(c, err) {
		return
	}
	checkOut, err := handler.ParseDate(req.CheckOutDate)
	if handler.HandleError(c, err) {
		return
	}

	detail, err := h.bookingService.CreateBookingWithRooms(c.Request.Context(), rc, &frontdeskService.CreateBookingRequest{
		Guest:           req.Guest,
		CheckInDate:     checkIn,
		CheckOutDate:    checkOut,
		Lines:           req.Lines,
		TariffInclusive: req.TariffInclusive,
		Advances:        req.Advances,
		Source:          req.Source,
		Remark:          req.Remark,
	})
	handler.MustSucceed(c, err, detail)
}

// GetBooking 获取预订详情
// @Summary 获取预订详情（含账务明细）
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=frontdeskService.BookingDetail}
// @Router /api/v1/bookings/{id} [get]
func (h *BookingHandler) GetBooking(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	bookingID, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	detail, err := h.bookingService.GetBooking(c.Request.Context(), rc, bookingID)
	handler.MustSucceed(c, err, detail)
}

// GetBookingByNo 根据预订号获取预订
// @Summary 根据预订号获取预订
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param booking_no path string true "预订号"
// @Success 200 {object} response.Response{data=frontdeskService.BookingDetail}
// @Router /api/v1/bookings/no/{booking_no} [get]
func (h *BookingHandler) GetBookingByNo(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}

	bookingNo := strings.TrimSpace(c.Param("booking_no"))
	if bookingNo == "" {
		response.BadRequest(c, "预订号不能为空")
		return
	}

	detail, err := h.bookingService.GetBookingByNo(c.Request.Context(), rc, bookingNo)
	handler.MustSucceed(c, err, detail)
}

// ListBookings 预订列表
// @Summary 预订列表
// @Tags 预订
// @Produce json
// @Security Bearer
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Param status query string false "状态"
// @Param booking_no query string false "预订号"
// @Param from query string false "入住日期起 YYYY-MM-DD"
// @Param to query string false "入住日期止 YYYY-MM-DD"
// @Success 200 {object} response.Response{data=response.PageData}
// @Router /api/v1/bookings [get]
func (h *BookingHandler) ListBookings(c *gin.Context) {
	if _, _, ok := handler.RequireStaff(c); !ok {
		return
	}

	p := handler.BindPagination(c)
	filters := &repository.BookingListFilters{
		Status:    c.Query("status"),
		BookingNo: c.Query("booking_no"),
	}
	if s := c.Query("from"); s != "" {
		from, err := handler.ParseDate(s)
		if handler.HandleError(c, err) {
			return
		}
		filters.From = &from
	}
	if s := c.Query("to"); s != "" {
		to, err := handler.ParseDate(s)
		if handler.HandleError(c, err) {
			return
		}
		filters.To = &to
	}

	bookings, total, err := h.bookingService.ListBookings(c.Request.Context(), &p, filters)
	handler.MustSucceedPage(c, err, bookings, total, p.Page, p.PageSize)
}

// CheckIn 办理入住
// @Summary 预订房间办理入住
// @Tags 入住退房
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订房间ID"
// @Param request body CheckInRequest false "请求参数"
// @Success 200 {object} response.Response{data=frontdeskService.BookingDetail}
// @Router /api/v1/booking-rooms/{id}/check-in [post]
func (h *BookingHandler) CheckIn(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	bookingRoomID, ok := handler.ParseID(c, "预订房间")
	if !ok {
		return
	}

	var req CheckInRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.BadRequest(c, "参数错误")
			return
		}
	}
	at, err := handler.ParseOptionalDateTime(req.ActualCheckIn)
	if handler.HandleError(c, err) {
		return
	}
	if at.IsZero() {
		at = rc.Now
	}

	detail, err := h.bookingService.CheckIn(c.Request.Context(), rc, bookingRoomID, at)
	handler.MustSucceed(c, err, detail)
}

// CancelBooking 取消预订
// @Summary 取消预订（仅限尚未入住）
// @Tags 预订
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body CancelBookingRequest true "请求参数"
// @Success 200 {object} response.Response{data=frontdeskService.BookingDetail}
// @Router /api/v1/bookings/{id}/cancel [post]
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	bookingID, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	var req CancelBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "请填写取消原因")
		return
	}

	detail, err := h.bookingService.Cancel(c.Request.Context(), rc, bookingID, req.Reason)
	handler.MustSucceed(c, err, detail)
}
