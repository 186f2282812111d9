package frontdesk

import (
	"context"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// CheckoutService 退房结算服务
type CheckoutService struct {
	*Dependencies
}

// NewCheckoutService 创建退房结算服务
func NewCheckoutService(deps *Dependencies) *CheckoutService {
	return &CheckoutService{Dependencies: deps}
}

// CheckoutRequest 退房请求，BookingRoomIDs 为空时退掉全部已入住房间
type CheckoutRequest struct {
	BookingID        int64         `json:"-"`
	BookingRoomIDs   []int64       `json:"booking_room_ids"`
	ActualCheckout   time.Time     `json:"actual_checkout"`
	Adjustment       float64       `json:"adjustment"`
	AdjustmentReason string        `json:"adjustment_reason"`
	Discount         *Discount     `json:"discount"`
	EarlyReason      string        `json:"early_reason"`
	Payment          *PaymentInput `json:"payment"`
}

// CheckoutResult 退房结果
type CheckoutResult struct {
	Receipt          *models.CheckoutReceipt `json:"receipt"`
	FinalAmount      float64                 `json:"final_amount"`
	RemainingBalance float64                 `json:"remaining_balance"`
	BookingStatus    string                  `json:"booking_status"`
}

// CheckOut 办理退房并生成结算单
//
// 结算、房间状态、结算单与收款在同一事务中写入，任一步失败整体回滚。
func (s *CheckoutService) CheckOut(ctx context.Context, rc *RequestContext, req *CheckoutRequest) (result *CheckoutResult, err error) {
	ctx, span := s.Tracer.StartSpan(ctx, "frontdesk.CheckOut",
		tracing.WithOperation("checkout"),
		tracing.WithBookingID(req.BookingID),
	)
	defer span.End()
	defer func() {
		if err != nil {
			tracing.SetError(ctx, err)
		}
	}()

	if err := rc.Validate(); err != nil {
		return nil, err
	}
	actual := req.ActualCheckout
	if actual.IsZero() {
		actual = rc.now()
	}
	actual = actual.UTC()

	var collected int64
	if req.Payment != nil {
		if collected, err = ValidatePayment(*req.Payment); err != nil {
			return nil, err
		}
	}

	lock, err := s.lockBooking(ctx, req.BookingID)
	if err != nil {
		return nil, err
	}
	defer releaseLock(ctx, lock)

	policy := CheckoutPolicyFromConfig(s.Config.Checkout)
	var res *ReconcileResult
	err = s.withRetry(ctx, "checkout", func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repos := s.Repos.WithTx(tx)
			f, err := loadFolio(ctx, repos, req.BookingID, true)
			if err != nil {
				return err
			}

			res, err = NewCheckoutReconciler(policy, BookingTaxRates(f.Booking)).Reconcile(ReconcileInput{
				Folio:            f,
				TargetIDs:        req.BookingRoomIDs,
				StaffID:          rc.StaffID,
				ActualCheckout:   actual,
				Adjustment:       utils.ToCents(req.Adjustment),
				AdjustmentReason: req.AdjustmentReason,
				Discount:         req.Discount,
				EarlyReason:      req.EarlyReason,
				Collected:        collected,
			})
			if err != nil {
				return err
			}

			targetIDs := make([]int64, 0, len(res.Targets))
			for _, br := range res.Targets {
				if err := repos.BookingRooms.Transition(ctx, br.ID, models.RoomStatusCheckedIn, models.RoomStatusCheckedOut, map[string]interface{}{
					"actual_check_out": *br.ActualCheckOut,
					"checked_out_by":   rc.StaffID,
					"late_fee":         br.LateFee,
					"discount_amount":  br.DiscountAmount,
				}); err != nil {
					return err
				}
				if err := repos.Rooms.UpdateHousekeepingStatus(ctx, br.RoomID, models.HousekeepingUnclean, nil); err != nil {
					return mapError(err, errors.ErrRoomNotFound.WithDetail("room_id", br.RoomID))
				}
				targetIDs = append(targetIDs, br.ID)
			}

			receipt := &models.CheckoutReceipt{
				ReceiptNo:         utils.GenerateOrderNo("RC"),
				BookingID:         req.BookingID,
				BookingRoomIDs:    utils.JoinIDs(targetIDs),
				ScheduledCheckout: res.ScheduledCheckout,
				ActualCheckout:    actual,
				CheckoutKind:      res.Kind,
				LateFee:           utils.FromCents(res.LateFee),
				Adjustment:        utils.FromCents(utils.ToCents(req.Adjustment)),
				AdjustmentReason:  utils.OptionalString(req.AdjustmentReason),
				DiscountAmount:    utils.FromCents(res.Discount),
				Outstanding:       utils.FromCents(res.Outstanding),
				FinalAmount:       utils.FromCents(res.FinalAmount),
				CollectedAmount:   utils.FromCents(collected),
				RemainingBalance:  utils.FromCents(res.RemainingBalance),
				CollectedBy:       rc.StaffID,
			}
			if res.Kind == models.CheckoutKindEarly {
				receipt.EarlyReason = utils.OptionalString(req.EarlyReason)
			}
			if req.Payment != nil {
				receipt.PaymentMethod = utils.StringPtr(req.Payment.Method)
			}
			if err := repos.Receipts.Create(ctx, receipt); err != nil {
				return err
			}

			if collected > 0 {
				if err := repos.Ledger.Create(ctx, &models.LedgerEntry{
					BookingID:   req.BookingID,
					ReceiptID:   &receipt.ID,
					Kind:        models.LedgerKindReceipt,
					Method:      req.Payment.Method,
					Amount:      utils.FromCents(collected),
					Reference:   utils.OptionalString(req.Payment.Reference),
					CollectedBy: rc.StaffID,
				}); err != nil {
					return err
				}
			}

			status := DeriveBookingStatus(f.Booking.Status, res.Folio.Rooms)
			if err := bumpVersion(ctx, repos, f, map[string]interface{}{"status": status}); err != nil {
				return err
			}

			result = &CheckoutResult{
				Receipt:          receipt,
				FinalAmount:      receipt.FinalAmount,
				RemainingBalance: receipt.RemainingBalance,
				BookingStatus:    status,
			}
			return nil
		})
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	s.Metrics.RecordCheckout(res.Kind, utils.FromCents(res.LateFee))
	if req.Payment != nil {
		s.Metrics.RecordPayment(models.LedgerKindReceipt, req.Payment.Method)
	}
	logger.Info("Checkout completed",
		logger.Module("frontdesk"),
		logger.Action("checkout"),
		logger.BookingID(req.BookingID),
		logger.StaffID(rc.StaffID),
		logger.Amount(result.FinalAmount),
		zap.String("receipt_no", result.Receipt.ReceiptNo),
		zap.String("kind", res.Kind),
		zap.Float64("remaining", result.RemainingBalance),
	)
	return result, nil
}
