package frontdesk

import (
	"github.com/gin-gonic/gin"

	"github.com/dumeirei/hotel-frontdesk/internal/common/handler"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	frontdeskService "github.com/dumeirei/hotel-frontdesk/internal/service/frontdesk"
)

// TaxHandler 税率与报价处理器
type TaxHandler struct {
	taxRates *frontdeskService.TaxRateProvider
}

// NewTaxHandler 创建税率处理器
func NewTaxHandler(taxRates *frontdeskService.TaxRateProvider) *TaxHandler {
	return &TaxHandler{taxRates: taxRates}
}

// TaxQuoteRequest 报价请求
type TaxQuoteRequest struct {
	Rate      float64 `json:"rate" binding:"required,gt=0"`
	Nights    int     `json:"nights" binding:"required,min=1"`
	Inclusive bool    `json:"inclusive"`
}

// TaxQuote 报价结果（元）
type TaxQuote struct {
	Subtotal      float64                   `json:"subtotal"`
	GST           float64                   `json:"gst"`
	CGST          float64                   `json:"cgst"`
	SGST          float64                   `json:"sgst"`
	LuxuryTax     float64                   `json:"luxury_tax"`
	ServiceCharge float64                   `json:"service_charge"`
	TotalTax      float64                   `json:"total_tax"`
	GrandTotal    float64                   `json:"grand_total"`
	Rates         frontdeskService.TaxRates `json:"rates"`
}

// GetTaxRates 当前税率
// @Summary 获取当前税率（百分比）
// @Tags 税率
// @Produce json
// @Security Bearer
// @Success 200 {object} response.Response{data=frontdeskService.TaxRates}
// @Router /api/v1/tax-rates [get]
func (h *TaxHandler) GetTaxRates(c *gin.Context) {
	response.Success(c, h.taxRates.GetTaxRates(c.Request.Context()))
}

// SetTaxRates 更新税率
// @Summary 更新税率（仅经理）
// @Tags 税率
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body frontdeskService.TaxRates true "请求参数"
// @Success 200 {object} response.Response{data=frontdeskService.TaxRates}
// @Router /api/v1/tax-rates [put]
func (h *TaxHandler) SetTaxRates(c *gin.Context) {
	if _, _, ok := handler.RequireStaff(c); !ok {
		return
	}

	var req frontdeskService.TaxRates
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	err := h.taxRates.SetTaxRates(c.Request.Context(), req)
	handler.MustSucceed(c, err, req)
}

// Quote 税额报价
// @Summary 按房价与晚数计算税额，不创建预订
// @Tags 税率
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body TaxQuoteRequest true "请求参数"
// @Success 200 {object} response.Response{data=TaxQuote}
// @Router /api/v1/tax-rates/quote [post]
func (h *TaxHandler) Quote(c *gin.Context) {
	var req TaxQuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "参数错误")
		return
	}

	rates := h.taxRates.GetTaxRates(c.Request.Context())
	b := frontdeskService.NewTaxEngine(rates).Quote(utils.ToCents(req.Rate), req.Nights, req.Inclusive)
	response.Success(c, TaxQuote{
		Subtotal:      utils.FromCents(b.Subtotal),
		GST:           utils.FromCents(b.GST),
		CGST:          utils.FromCents(b.CGST),
		SGST:          utils.FromCents(b.SGST),
		LuxuryTax:     utils.FromCents(b.LuxuryTax),
		ServiceCharge: utils.FromCents(b.ServiceCharge),
		TotalTax:      utils.FromCents(b.TotalTax),
		GrandTotal:    utils.FromCents(b.GrandTotal),
		Rates:         rates,
	})
}
