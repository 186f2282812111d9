package frontdesk

import (
	"math"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// TaxRates 税率（百分比）
type TaxRates struct {
	GST           float64 `json:"gst"`
	CGST          float64 `json:"cgst"`
	SGST          float64 `json:"sgst"`
	LuxuryTax     float64 `json:"luxury_tax"`
	ServiceCharge float64 `json:"service_charge"`
}

// DefaultTaxRates 内置兜底税率
func DefaultTaxRates() TaxRates {
	return TaxRates{GST: 12, CGST: 6, SGST: 6, LuxuryTax: 5, ServiceCharge: 10}
}

// TaxRatesFromConfig 读取配置中的兜底税率
func TaxRatesFromConfig(cfg config.TaxConfig) TaxRates {
	return TaxRates{
		GST:           cfg.GST,
		CGST:          cfg.CGST,
		SGST:          cfg.SGST,
		LuxuryTax:     cfg.LuxuryTax,
		ServiceCharge: cfg.ServiceCharge,
	}
}

// BookingTaxRates 预订创建时锁定的税率，后续账务均按此计算
func BookingTaxRates(b *models.Booking) TaxRates {
	return TaxRates{
		GST:           b.TaxGST,
		CGST:          b.TaxCGST,
		SGST:          b.TaxSGST,
		LuxuryTax:     b.TaxLuxury,
		ServiceCharge: b.TaxService,
	}
}

// stamp 将税率写入预订
func (r TaxRates) stamp(b *models.Booking) {
	b.TaxGST = r.GST
	b.TaxCGST = r.CGST
	b.TaxSGST = r.SGST
	b.TaxLuxury = r.LuxuryTax
	b.TaxService = r.ServiceCharge
}

// Total 税率合计
func (r TaxRates) Total() float64 {
	return r.GST + r.CGST + r.SGST + r.LuxuryTax + r.ServiceCharge
}

// Valid 各项税率均在 [0, 100] 内
func (r TaxRates) Valid() bool {
	for _, v := range []float64{r.GST, r.CGST, r.SGST, r.LuxuryTax, r.ServiceCharge} {
		if v < 0 || v > 100 || math.IsNaN(v) {
			return false
		}
	}
	return true
}

// TaxBreakdown 税额明细（单位：分），GrandTotal == Subtotal + TotalTax 恒成立
type TaxBreakdown struct {
	Subtotal      int64
	GST           int64
	CGST          int64
	SGST          int64
	LuxuryTax     int64
	ServiceCharge int64
	TotalTax      int64
	GrandTotal    int64
}

// TaxEngine 计税
type TaxEngine struct {
	rates TaxRates
}

// NewTaxEngine 使用税率快照创建计税器
func NewTaxEngine(rates TaxRates) *TaxEngine {
	return &TaxEngine{rates: rates}
}

// Rates 当前税率
func (e *TaxEngine) Rates() TaxRates {
	return e.rates
}

// Compute 不含税小计计税
func (e *TaxEngine) Compute(subtotal int64) TaxBreakdown {
	b := TaxBreakdown{
		Subtotal:      subtotal,
		GST:           percentOf(subtotal, e.rates.GST),
		CGST:          percentOf(subtotal, e.rates.CGST),
		SGST:          percentOf(subtotal, e.rates.SGST),
		LuxuryTax:     percentOf(subtotal, e.rates.LuxuryTax),
		ServiceCharge: percentOf(subtotal, e.rates.ServiceCharge),
	}
	b.TotalTax = b.GST + b.CGST + b.SGST + b.LuxuryTax + b.ServiceCharge
	b.GrandTotal = b.Subtotal + b.TotalTax
	return b
}

// FromGross 含税总价反推小计，分位舍入差计入小计，保证 GrandTotal 等于输入
func (e *TaxEngine) FromGross(gross int64) TaxBreakdown {
	subtotal := int64(math.Round(float64(gross) / (1 + e.rates.Total()/100)))
	b := e.Compute(subtotal)
	if diff := gross - b.GrandTotal; diff != 0 {
		b.Subtotal += diff
		b.GrandTotal = gross
	}
	return b
}

// Quote 按房价与晚数报价，inclusive 表示房价已含税
func (e *TaxEngine) Quote(rate int64, nights int, inclusive bool) TaxBreakdown {
	amount := rate * int64(nights)
	if inclusive {
		return e.FromGross(amount)
	}
	return e.Compute(amount)
}

// PreTax 返回金额的不含税部分
func (e *TaxEngine) PreTax(amount int64, inclusive bool) int64 {
	if inclusive {
		return e.FromGross(amount).Subtotal
	}
	return amount
}

// percentOf 金额乘以百分比，四舍五入到分
func percentOf(amount int64, rate float64) int64 {
	return int64(math.Round(float64(amount) * rate / 100))
}
