package frontdesk

import (
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// Folio 单个预订的全部账务记录
type Folio struct {
	Booking  *models.Booking
	Rooms    []*models.BookingRoom
	Charges  []*models.ChargeItem
	Entries  []*models.LedgerEntry
	Receipts []*models.CheckoutReceipt
}

// PaymentBreakdown 预订账务汇总，每次按 Folio 即时计算，不单独存储
type PaymentBreakdown struct {
	RoomCharges      float64            `json:"room_charges"`
	Discount         float64            `json:"discount"`
	Subtotal         float64            `json:"subtotal"`
	GST              float64            `json:"gst"`
	CGST             float64            `json:"cgst"`
	SGST             float64            `json:"sgst"`
	LuxuryTax        float64            `json:"luxury_tax"`
	ServiceCharge    float64            `json:"service_charge"`
	TotalTax         float64            `json:"total_tax"`
	TotalAmount      float64            `json:"total_amount"`
	TaxedTotalAmount float64            `json:"taxed_total_amount"`
	ChargesTotal     float64            `json:"charges_total"`
	LateFees         float64            `json:"late_fees"`
	Adjustments      float64            `json:"adjustments"`
	TotalBillable    float64            `json:"total_billable"`
	Advances         map[string]float64 `json:"advances"`
	Receipts         map[string]float64 `json:"receipts"`
	TotalAdvance     float64            `json:"total_advance"`
	TotalReceived    float64            `json:"total_received"`
	TotalPaid        float64            `json:"total_paid"`
	Outstanding      float64            `json:"outstanding"`
}

// ledgerTotals 账务汇总（单位：分）
type ledgerTotals struct {
	tax         TaxBreakdown
	roomCharges int64
	discount    int64
	charges     int64
	lateFees    int64
	adjustments int64
	billable    int64
	advances    map[string]int64
	receipts    map[string]int64
	paid        int64
}

func (t ledgerTotals) outstanding() int64 {
	return max(t.billable-t.paid, 0)
}

// Ledger 账务计算
type Ledger struct {
	engine *TaxEngine
}

// NewLedger 使用税率快照创建账务计算
func NewLedger(rates TaxRates) *Ledger {
	return &Ledger{engine: NewTaxEngine(rates)}
}

// ledgerFor 按预订锁定的税率创建账务计算
func ledgerFor(f *Folio) *Ledger {
	return NewLedger(BookingTaxRates(f.Booking))
}

// roomTax 计算未取消房间的房费税额，折扣在税前扣减
func (l *Ledger) roomTax(rooms []*models.BookingRoom, inclusive bool) (gross, discount int64, tax TaxBreakdown) {
	for _, br := range rooms {
		if br.RoomStatus == models.RoomStatusCancelled {
			continue
		}
		gross += utils.ToCents(br.RoomTotal)
		discount += utils.ToCents(br.DiscountAmount)
	}

	switch {
	case inclusive && discount == 0:
		tax = l.engine.FromGross(gross)
	case inclusive:
		tax = l.engine.Compute(l.engine.FromGross(gross).Subtotal - discount)
	default:
		tax = l.engine.Compute(gross - discount)
	}
	return gross, discount, tax
}

func (l *Ledger) totals(f *Folio) ledgerTotals {
	t := ledgerTotals{
		advances: make(map[string]int64),
		receipts: make(map[string]int64),
	}

	t.roomCharges, t.discount, t.tax = l.roomTax(f.Rooms, f.Booking.TariffInclusive)
	for _, br := range f.Rooms {
		t.lateFees += utils.ToCents(br.LateFee)
	}
	for _, item := range f.Charges {
		t.charges += utils.ToCents(item.TotalAmount)
	}
	for _, r := range f.Receipts {
		t.adjustments += utils.ToCents(r.Adjustment)
	}
	t.billable = t.tax.GrandTotal + t.charges + t.lateFees + t.adjustments

	for _, e := range f.Entries {
		amount := utils.ToCents(e.Amount)
		if e.Kind == models.LedgerKindReceipt {
			t.receipts[e.Method] += amount
		} else {
			t.advances[e.Method] += amount
		}
		t.paid += amount
	}
	return t
}

// Outstanding 当前未结金额（分），永不为负
func (l *Ledger) Outstanding(f *Folio) int64 {
	return l.totals(f).outstanding()
}

// Breakdown 生成账务汇总
func (l *Ledger) Breakdown(f *Folio) *PaymentBreakdown {
	t := l.totals(f)

	pb := &PaymentBreakdown{
		RoomCharges:      utils.FromCents(t.roomCharges),
		Discount:         utils.FromCents(t.discount),
		Subtotal:         utils.FromCents(t.tax.Subtotal),
		GST:              utils.FromCents(t.tax.GST),
		CGST:             utils.FromCents(t.tax.CGST),
		SGST:             utils.FromCents(t.tax.SGST),
		LuxuryTax:        utils.FromCents(t.tax.LuxuryTax),
		ServiceCharge:    utils.FromCents(t.tax.ServiceCharge),
		TotalTax:         utils.FromCents(t.tax.TotalTax),
		TotalAmount:      utils.FromCents(t.tax.Subtotal),
		TaxedTotalAmount: utils.FromCents(t.tax.GrandTotal),
		ChargesTotal:     utils.FromCents(t.charges),
		LateFees:         utils.FromCents(t.lateFees),
		Adjustments:      utils.FromCents(t.adjustments),
		TotalBillable:    utils.FromCents(t.billable),
		Advances:         make(map[string]float64, len(models.PaymentMethods)),
		Receipts:         make(map[string]float64, len(models.PaymentMethods)),
		Outstanding:      utils.FromCents(t.outstanding()),
	}

	var advance, received int64
	for _, m := range models.PaymentMethods {
		pb.Advances[m] = utils.FromCents(t.advances[m])
		pb.Receipts[m] = utils.FromCents(t.receipts[m])
		advance += t.advances[m]
		received += t.receipts[m]
	}
	pb.TotalAdvance = utils.FromCents(advance)
	pb.TotalReceived = utils.FromCents(received)
	pb.TotalPaid = utils.FromCents(t.paid)
	return pb
}

// PaymentInput 收款
type PaymentInput struct {
	Amount    float64 `json:"amount" binding:"required"`
	Method    string  `json:"method" binding:"required"`
	Reference string  `json:"reference"`
}

// ValidatePayment 校验收款金额与支付方式
func ValidatePayment(p PaymentInput) (int64, error) {
	amount := utils.ToCents(p.Amount)
	if amount <= 0 {
		return 0, errors.ErrInvalidAmount.WithDetail("amount", p.Amount)
	}
	if !models.IsValidPaymentMethod(p.Method) {
		return 0, errors.ErrInvalidPaymentMethod.WithDetail("method", p.Method)
	}
	return amount, nil
}

// ChargeInput 挂账消费
type ChargeInput struct {
	ProductID   *int64  `json:"product_id"`
	ProductName string  `json:"product_name" binding:"required"`
	Quantity    int     `json:"quantity" binding:"required"`
	Rate        float64 `json:"rate" binding:"required"`
	TaxRate     float64 `json:"tax_rate"`
}

// BuildChargeItem 校验并计算挂账金额：数量 × 单价，再加按税率计算的税额
func BuildChargeItem(bookingID, staffID int64, in ChargeInput) (*models.ChargeItem, error) {
	if in.ProductName == "" {
		return nil, errors.ErrInvalidParams.WithMessage("缺少消费项目名称")
	}
	if in.Quantity <= 0 {
		return nil, errors.ErrInvalidAmount.WithDetail("quantity", in.Quantity)
	}
	rate := utils.ToCents(in.Rate)
	if rate <= 0 {
		return nil, errors.ErrInvalidAmount.WithDetail("rate", in.Rate)
	}
	if in.TaxRate < 0 || in.TaxRate > 100 {
		return nil, errors.ErrInvalidAmount.WithDetail("tax_rate", in.TaxRate)
	}

	amount := rate * int64(in.Quantity)
	tax := percentOf(amount, in.TaxRate)
	return &models.ChargeItem{
		BookingID:   bookingID,
		ProductID:   in.ProductID,
		ProductName: in.ProductName,
		Quantity:    in.Quantity,
		Rate:        utils.FromCents(rate),
		TaxRate:     in.TaxRate,
		TaxAmount:   utils.FromCents(tax),
		TotalAmount: utils.FromCents(amount + tax),
		PostedBy:    staffID,
	}, nil
}
