package frontdesk

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// FolioService 账务服务：预付款、挂账消费、账单汇总
type FolioService struct {
	*Dependencies
}

// NewFolioService 创建账务服务
func NewFolioService(deps *Dependencies) *FolioService {
	return &FolioService{Dependencies: deps}
}

// RecordAdvancePayment 登记预付款，金额不得超过当前未结金额
func (s *FolioService) RecordAdvancePayment(ctx context.Context, rc *RequestContext, bookingID int64, in PaymentInput) (entry *models.LedgerEntry, err error) {
	ctx, span := s.Tracer.StartSpan(ctx, "frontdesk.RecordAdvancePayment",
		tracing.WithOperation("advance_payment"),
		tracing.WithBookingID(bookingID),
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
	amount, err := ValidatePayment(in)
	if err != nil {
		return nil, err
	}

	lock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer releaseLock(ctx, lock)

	err = s.withRetry(ctx, "advance_payment", func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repos := s.Repos.WithTx(tx)
			f, err := loadFolio(ctx, repos, bookingID, true)
			if err != nil {
				return err
			}
			if err := requireOpen(f.Booking); err != nil {
				return err
			}

			outstanding := ledgerFor(f).Outstanding(f)
			if amount > outstanding {
				return errors.ErrInvalidAmount.
					WithMessage("预付款超过未结金额").
					WithDetail("amount", in.Amount).
					WithDetail("outstanding", utils.FromCents(outstanding))
			}

			entry = &models.LedgerEntry{
				BookingID:   bookingID,
				Kind:        models.LedgerKindAdvance,
				Method:      in.Method,
				Amount:      utils.FromCents(amount),
				Reference:   utils.OptionalString(in.Reference),
				CollectedBy: rc.StaffID,
			}
			if err := repos.Ledger.Create(ctx, entry); err != nil {
				return err
			}
			return bumpVersion(ctx, repos, f, map[string]interface{}{})
		})
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	s.Metrics.RecordPayment(models.LedgerKindAdvance, in.Method)
	logger.Info("Advance payment recorded",
		logger.Module("frontdesk"),
		logger.Action("advance_payment"),
		logger.BookingID(bookingID),
		logger.StaffID(rc.StaffID),
		logger.Amount(utils.FromCents(amount)),
		zap.String("method", in.Method),
	)
	return entry, nil
}

// CreateChargePosting 登记入住期间的挂账消费，多项消费在同一事务中全部写入或全部失败
func (s *FolioService) CreateChargePosting(ctx context.Context, rc *RequestContext, bookingID int64, in []ChargeInput) (items []*models.ChargeItem, err error) {
	ctx, span := s.Tracer.StartSpan(ctx, "frontdesk.CreateChargePosting",
		tracing.WithOperation("charge_posting"),
		tracing.WithBookingID(bookingID),
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
	if len(in) == 0 {
		return nil, errors.ErrInvalidParams.WithMessage("至少需要一项消费")
	}
	var total int64
	items = make([]*models.ChargeItem, 0, len(in))
	for i, c := range in {
		item, err := BuildChargeItem(bookingID, rc.StaffID, c)
		if err != nil {
			return nil, errors.GetAppError(err).WithDetail("item", i)
		}
		total += utils.ToCents(item.TotalAmount)
		items = append(items, item)
	}

	lock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer releaseLock(ctx, lock)

	err = s.withRetry(ctx, "charge_posting", func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repos := s.Repos.WithTx(tx)
			f, err := loadFolio(ctx, repos, bookingID, true)
			if err != nil {
				return err
			}
			if err := requireOpen(f.Booking); err != nil {
				return err
			}
			for _, item := range items {
				item.ID = 0
			}
			if err := repos.Charges.CreateBatch(ctx, items); err != nil {
				return err
			}
			return bumpVersion(ctx, repos, f, map[string]interface{}{})
		})
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	logger.Info("Charges posted",
		logger.Module("frontdesk"),
		logger.Action("charge_posting"),
		logger.BookingID(bookingID),
		logger.StaffID(rc.StaffID),
		logger.Amount(utils.FromCents(total)),
		zap.Int("items", len(items)),
	)
	return items, nil
}

// GetPaymentBreakdown 获取账单汇总
func (s *FolioService) GetPaymentBreakdown(ctx context.Context, rc *RequestContext, bookingID int64) (*PaymentBreakdown, error) {
	f, err := loadFolio(ctx, s.Repos, bookingID, false)
	if err != nil {
		return nil, err
	}
	return ledgerFor(f).Breakdown(f), nil
}

// requireOpen 仅已确认或已入住的预订可以记账
func requireOpen(b *models.Booking) error {
	if b.Status == models.BookingStatusConfirmed || b.Status == models.BookingStatusCheckedIn {
		return nil
	}
	return errors.ErrInvalidTransition.
		WithMessage("预订已结束，不能记账").
		WithDetail("booking_id", b.ID).
		WithDetail("status", b.Status)
}
