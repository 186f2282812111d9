package frontdesk

import (
	"time"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// CheckoutPolicy 退房时间与滞纳金规则
type CheckoutPolicy struct {
	Grace          time.Duration
	LateFeePerHour int64 // 分
	LateFeeCap     int64 // 分，0 表示不封顶
	EarlyTolerance time.Duration
}

// CheckoutPolicyFromConfig 从配置读取退房规则
func CheckoutPolicyFromConfig(cfg config.CheckoutConfig) CheckoutPolicy {
	return CheckoutPolicy{
		Grace:          time.Duration(cfg.GraceMinutes) * time.Minute,
		LateFeePerHour: utils.ToCents(cfg.LateFeePerHour),
		LateFeeCap:     utils.ToCents(cfg.LateFeeCap),
		EarlyTolerance: time.Duration(cfg.EarlyToleranceMinutes) * time.Minute,
	}
}

// Classify 判断退房类型
func (p CheckoutPolicy) Classify(scheduled, actual time.Time) string {
	switch {
	case actual.After(scheduled.Add(p.Grace)):
		return models.CheckoutKindLate
	case actual.Before(scheduled.Add(-p.EarlyTolerance)):
		return models.CheckoutKindEarly
	default:
		return models.CheckoutKindOnTime
	}
}

// LateFee 宽限期后按整小时计费，不足一小时不计，超过上限按上限收取
func (p CheckoutPolicy) LateFee(scheduled, actual time.Time) int64 {
	over := actual.Sub(scheduled.Add(p.Grace))
	if over <= 0 {
		return 0
	}
	fee := int64(over/time.Hour) * p.LateFeePerHour
	if p.LateFeeCap > 0 && fee > p.LateFeeCap {
		fee = p.LateFeeCap
	}
	return fee
}

// 折扣类型
const (
	DiscountFlat    = "flat"
	DiscountPercent = "percent"
)

// Discount 退房折扣：固定金额或百分比，PerDay 表示按晚数重复计算（仅对固定金额有效）
type Discount struct {
	Kind   string  `json:"kind" binding:"required,oneof=flat percent"`
	Value  float64 `json:"value" binding:"required"`
	PerDay bool    `json:"per_day"`
}

// DiscountAmount 计算折扣金额（分），折扣超出税前小计时报错而非截断
func DiscountAmount(d Discount, subtotal int64, nights int) (int64, error) {
	if d.Value < 0 {
		return 0, errors.ErrInvalidAmount.WithDetail("discount", d.Value)
	}

	var amount int64
	switch d.Kind {
	case DiscountFlat:
		amount = utils.ToCents(d.Value)
		if d.PerDay {
			amount *= int64(max(nights, 1))
		}
	case DiscountPercent:
		if d.Value > 100 {
			return 0, errors.ErrInvalidAmount.WithDetail("discount", d.Value)
		}
		amount = percentOf(subtotal, d.Value)
	default:
		return 0, errors.ErrInvalidParams.WithMessage("无效的折扣类型").WithDetail("kind", d.Kind)
	}

	if amount > subtotal {
		return 0, errors.ErrInvalidAmount.
			WithMessage("折扣超过房费小计").
			WithDetail("discount", utils.FromCents(amount)).
			WithDetail("subtotal", utils.FromCents(subtotal))
	}
	return amount, nil
}

// ReconcileInput 退房结算输入
type ReconcileInput struct {
	Folio            *Folio
	TargetIDs        []int64
	StaffID          int64
	ActualCheckout   time.Time
	Adjustment       int64 // 分，可为负
	AdjustmentReason string
	Discount         *Discount
	EarlyReason      string
	Collected        int64 // 分
}

// ReconcileResult 退房结算结果（单位：分）
type ReconcileResult struct {
	Targets           []*models.BookingRoom
	ScheduledCheckout time.Time
	Kind              string
	LateFee           int64
	Discount          int64
	Outstanding       int64
	FinalAmount       int64
	RemainingBalance  int64
	Folio             *Folio
}

// CheckoutReconciler 退房结算
type CheckoutReconciler struct {
	policy CheckoutPolicy
	ledger *Ledger
}

// NewCheckoutReconciler 创建退房结算
func NewCheckoutReconciler(policy CheckoutPolicy, rates TaxRates) *CheckoutReconciler {
	return &CheckoutReconciler{policy: policy, ledger: NewLedger(rates)}
}

// Reconcile 计算退房应收：finalAmount = 折扣后的未结金额 + 手工调整 + 滞纳金
//
// 输入的 Folio 不会被修改，结果中的 Folio 为已应用退房、折扣与滞纳金后的副本。
func (c *CheckoutReconciler) Reconcile(in ReconcileInput) (*ReconcileResult, error) {
	if in.Adjustment != 0 && in.AdjustmentReason == "" {
		return nil, errors.ErrInvalidParams.WithMessage("手工调整必须填写原因")
	}
	if in.Collected < 0 {
		return nil, errors.ErrInvalidAmount.WithDetail("collected", utils.FromCents(in.Collected))
	}

	// 1. 复制房间并定位本次退房的房间
	folio := *in.Folio
	folio.Rooms = make([]*models.BookingRoom, len(in.Folio.Rooms))
	byID := make(map[int64]*models.BookingRoom, len(in.Folio.Rooms))
	for i, br := range in.Folio.Rooms {
		cp := *br
		folio.Rooms[i] = &cp
		byID[cp.ID] = &cp
	}

	targetIDs := in.TargetIDs
	if len(targetIDs) == 0 {
		for _, br := range folio.Rooms {
			if br.RoomStatus == models.RoomStatusCheckedIn {
				targetIDs = append(targetIDs, br.ID)
			}
		}
	}
	targetIDs = utils.Unique(targetIDs)
	if len(targetIDs) == 0 {
		return nil, errors.ErrInvalidTransition.WithMessage("没有可退房的房间").WithDetail("booking_id", folio.Booking.ID)
	}

	res := &ReconcileResult{Kind: models.CheckoutKindOnTime, Folio: &folio}
	for _, id := range targetIDs {
		br, ok := byID[id]
		if !ok {
			return nil, errors.ErrBookingRoomNotFound.WithDetail("booking_room_id", id)
		}
		if err := CheckOutRoom(br, in.StaffID, in.ActualCheckout); err != nil {
			return nil, err
		}
		res.Targets = append(res.Targets, br)
		if br.CheckOutDate.After(res.ScheduledCheckout) {
			res.ScheduledCheckout = br.CheckOutDate
		}
	}

	// 2. 退房类型：任一房间超时即为超时退房
	early := false
	for _, br := range res.Targets {
		switch c.policy.Classify(br.CheckOutDate, in.ActualCheckout) {
		case models.CheckoutKindLate:
			res.Kind = models.CheckoutKindLate
		case models.CheckoutKindEarly:
			early = true
		}
	}
	if res.Kind != models.CheckoutKindLate && early {
		res.Kind = models.CheckoutKindEarly
		if in.EarlyReason == "" {
			return nil, errors.ErrEarlyCheckoutReason
		}
	}

	// 3. 折扣在税前扣减，按各房间税前金额分摊
	if in.Discount != nil {
		if err := c.applyDiscount(res.Targets, *in.Discount, folio.Booking.TariffInclusive, res); err != nil {
			return nil, err
		}
	}

	// 4. 滞纳金
	for _, br := range res.Targets {
		fee := c.policy.LateFee(br.CheckOutDate, in.ActualCheckout)
		br.LateFee = utils.FromCents(fee)
		res.LateFee += fee
	}

	// 5. 折扣后的未结金额（不含本次滞纳金）
	withoutFees := folio
	withoutFees.Rooms = make([]*models.BookingRoom, len(folio.Rooms))
	for i, br := range folio.Rooms {
		cp := *br
		if containsRoom(res.Targets, cp.ID) {
			cp.LateFee = 0
		}
		withoutFees.Rooms[i] = &cp
	}
	res.Outstanding = c.ledger.Outstanding(&withoutFees)

	res.FinalAmount = res.Outstanding + in.Adjustment + res.LateFee
	if res.FinalAmount < 0 {
		return nil, errors.ErrReconciliationFailed.
			WithMessage("结算金额不能为负").
			WithDetail("final_amount", utils.FromCents(res.FinalAmount))
	}
	res.RemainingBalance = res.FinalAmount - in.Collected
	if res.RemainingBalance < 0 {
		return nil, errors.ErrReconciliationFailed.
			WithMessage("收款金额超过应收金额").
			WithDetail("final_amount", utils.FromCents(res.FinalAmount)).
			WithDetail("collected", utils.FromCents(in.Collected))
	}
	return res, nil
}

func (c *CheckoutReconciler) applyDiscount(rooms []*models.BookingRoom, d Discount, inclusive bool, res *ReconcileResult) error {
	bases := make([]int64, len(rooms))
	var subtotal int64
	nights := 0
	for i, br := range rooms {
		bases[i] = c.ledger.engine.PreTax(utils.ToCents(br.RoomTotal), inclusive) - utils.ToCents(br.DiscountAmount)
		subtotal += bases[i]
		nights = max(nights, br.Nights)
	}

	amount, err := DiscountAmount(d, subtotal, nights)
	if err != nil {
		return err
	}
	if amount == 0 {
		return nil
	}

	// 按税前金额比例分摊，尾差计入最后一间
	remaining := amount
	for i, br := range rooms {
		share := remaining
		if i < len(rooms)-1 && subtotal > 0 {
			share = amount * bases[i] / subtotal
		}
		remaining -= share
		br.DiscountAmount = utils.FromCents(utils.ToCents(br.DiscountAmount) + share)
	}
	res.Discount = amount
	return nil
}

func containsRoom(rooms []*models.BookingRoom, id int64) bool {
	for _, br := range rooms {
		if br.ID == id {
			return true
		}
	}
	return false
}
