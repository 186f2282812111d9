package frontdesk

import "github.com/gin-gonic/gin"

// RegisterRoutes 注册预订相关路由
func (h *BookingHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/availability", h.FindAvailableRooms)

	bookings := r.Group("/bookings")
	{
		bookings.POST("", h.CreateBooking)
		bookings.GET("", h.ListBookings)
		bookings.POST("/clamp-party", h.ClampParty)
		bookings.GET("/no/:booking_no", h.GetBookingByNo)
		bookings.GET("/:id", h.GetBooking)
		bookings.POST("/:id/cancel", h.CancelBooking)
	}

	r.POST("/booking-rooms/:id/check-in", h.CheckIn)
}

// RegisterRoutes 注册账务与退房路由
func (h *FolioHandler) RegisterRoutes(r *gin.RouterGroup) {
	bookings := r.Group("/bookings")
	{
		bookings.POST("/:id/payments", h.RecordAdvancePayment)
		bookings.POST("/:id/charges", h.PostCharge)
		bookings.GET("/:id/breakdown", h.GetPaymentBreakdown)
		bookings.POST("/:id/checkout", h.CheckOut)
	}
}

// RegisterRoutes 注册房型、房间与封房路由
func (h *RoomHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/room-types", h.ListRoomTypes)
	r.POST("/room-types", h.CreateRoomType)

	rooms := r.Group("/rooms")
	{
		rooms.GET("", h.ListRooms)
		rooms.POST("", h.CreateRoom)
		rooms.PUT("/:id/status", h.UpdateRoomStatus)
		rooms.GET("/:id/blocks", h.ListBlocks)
		rooms.POST("/:id/blocks", h.BlockRoom)
	}

	r.DELETE("/room-blocks/:id", h.ReleaseBlock)
}

// RegisterRoutes 注册税率查询路由
func (h *TaxHandler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/tax-rates", h.GetTaxRates)
	r.POST("/tax-rates/quote", h.Quote)
}

// RegisterManagerRoutes 注册仅经理可用的税率维护路由
func (h *TaxHandler) RegisterManagerRoutes(r *gin.RouterGroup) {
	r.PUT("/tax-rates", h.SetTaxRates)
}

// RegisterManagerRoutes 注册操作日志查询路由
func (h *AuditHandler) RegisterManagerRoutes(r *gin.RouterGroup) {
	r.GET("/operation-logs", h.ListOperationLogs)
}
