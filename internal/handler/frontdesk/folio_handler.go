package frontdesk

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	frontdeskService "github.com/dumeirei/hotel-frontdesk/internal/service/frontdesk"
)

// FolioHandler 账务与退房处理器
type FolioHandler struct {
	folioService    *frontdeskService.FolioService
	checkoutService *frontdeskService.CheckoutService
	taxRates        *frontdeskService.TaxRateProvider
}

// NewFolioHandler 创建账务处理器
func NewFolioHandler(folioSvc *frontdeskService.FolioService, checkoutSvc *frontdeskService.CheckoutService, taxRates *frontdeskService.TaxRateProvider) *FolioHandler {
	return &FolioHandler{
		folioService:    folioSvc,
		checkoutService: checkoutSvc,
		taxRates:        taxRates,
	}
}

// CheckoutRequest 退房请求，actual_checkout 为空时取当前时间
type CheckoutRequest struct {
	BookingRoomIDs   []int64                        `json:"booking_room_ids"`
	ActualCheckout   string                         `json:"actual_checkout"`
	Adjustment       float64                        `json:"adjustment"`
	AdjustmentReason string                         `json:"adjustment_reason"`
	Discount         *frontdeskService.Discount     `json:"discount"`
	EarlyReason      string                         `json:"early_reason"`
	Payment          *frontdeskService.PaymentInput `json:"payment"`
}

// RecordAdvancePayment 登记预付款
// @Summary 登记预付款
// @Tags 账务
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body frontdeskService.PaymentInput true "请求参数"
// @Success 200 {object} response.Response{data=models.LedgerEntry}
// @Router /api/v1/bookings/{id}/payments [post]
func (h *FolioHandler) RecordAdvancePayment(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	bookingID, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	var req frontdeskService.PaymentInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	entry, err := h.folioService.RecordAdvancePayment(c.Request.Context(), rc, bookingID, req)
	handler.MustSucceed(c, err, entry)
}

// PostChargesRequest 挂账请求
type PostChargesRequest struct {
	Items []frontdeskService.ChargeInput `json:"items" binding:"required,min=1,dive"`
}

// PostCharge 挂账消费
// @Summary 挂账消费（餐饮、洗衣等），多项一并入账
// @Tags 账务
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body PostChargesRequest true "请求参数"
// @Success 200 {object} response.Response{data=[]models.ChargeItem}
// @Router /api/v1/bookings/{id}/charges [post]
func (h *FolioHandler) PostCharge(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	bookingID, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	var req PostChargesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	items, err := h.folioService.CreateChargePosting(c.Request.Context(), rc, bookingID, req.Items)
	handler.MustSucceed(c, err, items)
}

// GetPaymentBreakdown 账务汇总
// @Summary 获取预订账务汇总（应收、已收、未结）
// @Tags 账务
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Success 200 {object} response.Response{data=frontdeskService.PaymentBreakdown}
// @Router /api/v1/bookings/{id}/breakdown [get]
func (h *FolioHandler) GetPaymentBreakdown(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	bookingID, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	breakdown, err := h.folioService.GetPaymentBreakdown(c.Request.Context(), rc, bookingID)
	handler.MustSucceed(c, err, breakdown)
}

// CheckOut 办理退房
// @Summary 办理退房并生成结算单（支持部分房间退房）
// @Tags 入住退房
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path int true "预订ID"
// @Param request body CheckoutRequest true "请求参数"
// @Success 200 {object} response.Response{data=frontdeskService.CheckoutResult}
// @Router /api/v1/bookings/{id}/checkout [post]
func (h *FolioHandler) CheckOut(c *gin.Context) {
	rc, ok := requestContext(c, h.taxRates)
	if !ok {
		return
	}
	bookingID, ok := handler.ParseID(c, "预订")
	if !ok {
		return
	}

	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}
	actual, err := handler.ParseOptionalDateTime(req.ActualCheckout)
	if handler.HandleError(c, err) {
		return
	}
	if actual.IsZero() {
		actual = rc.Now
	}

	result, err := h.checkoutService.CheckOut(c.Request.Context(), rc, &frontdeskService.CheckoutRequest{
		BookingID:        bookingID,
		BookingRoomIDs:   req.BookingRoomIDs,
		ActualCheckout:   actual,
		Adjustment:       req.Adjustment,
		AdjustmentReason: req.AdjustmentReason,
		Discount:         req.Discount,
		EarlyReason:      req.EarlyReason,
		Payment:          req.Payment,
	})
	handler.MustSucceed(c, err, result)
}
