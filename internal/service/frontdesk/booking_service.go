package frontdesk

import (
	"context"
	stderrors "errors"
	"sort"
	"strconv"
	"time"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk/internal/common/utils"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
)

// BookingService 预订服务：查房、分房建单、入住、取消
type BookingService struct {
	*Dependencies
}

// NewBookingService 创建预订服务
func NewBookingService(deps *Dependencies) *BookingService {
	return &BookingService{Dependencies: deps}
}

// GuestInput 住客信息
type GuestInput struct {
	Name     string `json:"name" binding:"required"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
	IDType   string `json:"id_type"`
	IDNumber string `json:"id_number"`
	Address  string `json:"address"`
	City     string `json:"city"`
	State    string `json:"state"`
	Country  string `json:"country"`
	GSTIN    string `json:"gstin"`
}

// validate 电话、邮箱选填，填写时校验格式
func (g GuestInput) validate() error {
	if g.Name == "" {
		return errors.ErrInvalidParams.WithMessage("缺少住客姓名")
	}
	if g.Phone != "" && !utils.ValidatePhone(g.Phone) {
		return errors.ErrInvalidParams.WithMessage("住客电话格式错误").WithDetail("phone", g.Phone)
	}
	if g.Email != "" && !utils.ValidateEmail(g.Email) {
		return errors.ErrInvalidParams.WithMessage("住客邮箱格式错误").WithDetail("email", g.Email)
	}
	return nil
}

func (g GuestInput) toModel() *models.Guest {
	return &models.Guest{
		Name:     g.Name,
		Phone:    g.Phone,
		Email:    utils.OptionalString(g.Email),
		IDType:   utils.OptionalString(g.IDType),
		IDNumber: utils.OptionalString(g.IDNumber),
		Address:  utils.OptionalString(g.Address),
		City:     utils.OptionalString(g.City),
		State:    utils.OptionalString(g.State),
		Country:  utils.OptionalString(g.Country),
		GSTIN:    utils.OptionalString(g.GSTIN),
	}
}

// CreateBookingRequest 创建预订请求
type CreateBookingRequest struct {
	Guest           GuestInput       `json:"guest" binding:"required"`
	CheckInDate     time.Time        `json:"check_in_date" binding:"required"`
	CheckOutDate    time.Time        `json:"check_out_date" binding:"required"`
	Lines           []AllocationLine `json:"lines" binding:"required,min=1,dive"`
	TariffInclusive bool             `json:"tariff_inclusive"`
	Advances        []PaymentInput   `json:"advances" binding:"dive"`
	Source          string           `json:"source"`
	Remark          string           `json:"remark"`
}

// BookingDetail 预订详情（含账务）
type BookingDetail struct {
	*models.Booking
	Charges   []*models.ChargeItem      `json:"charges"`
	Payments  []*models.LedgerEntry     `json:"payments"`
	Receipts  []*models.CheckoutReceipt `json:"receipts"`
	Breakdown *PaymentBreakdown         `json:"breakdown"`
}

func newBookingDetail(f *Folio) *BookingDetail {
	f.Booking.Rooms = f.Rooms
	return &BookingDetail{
		Booking:   f.Booking,
		Charges:   f.Charges,
		Payments:  f.Entries,
		Receipts:  f.Receipts,
		Breakdown: ledgerFor(f).Breakdown(f),
	}
}

// FindAvailableRooms 按入住日、离店日查询房型可用房间
func (s *BookingService) FindAvailableRooms(ctx context.Context, roomTypeID int64, checkInDate, checkOutDate time.Time) ([]*models.Room, error) {
	stay, err := NewStayRange(checkInDate, checkOutDate, s.Config.CheckInHour, s.Config.CheckOutHour)
	if err != nil {
		return nil, err
	}
	if _, err := s.Repos.RoomTypes.GetByID(ctx, roomTypeID); err != nil {
		return nil, mapError(err, errors.ErrRoomTypeNotFound.WithDetail("room_type_id", roomTypeID))
	}
	return NewAvailabilityResolver(s.Repos.Rooms).FindAvailableRooms(ctx, roomTypeID, stay.From, stay.To)
}

// CreateBookingWithRooms 分房并创建预订
//
// 同房型的分房在 Redis 锁内串行执行；查房与写入预订房间在同一事务中完成，
// PostgreSQL 上由排他约束兜底，冲突时重新查房重试。
func (s *BookingService) CreateBookingWithRooms(ctx context.Context, rc *RequestContext, req *CreateBookingRequest) (detail *BookingDetail, err error) {
	ctx, span := s.Tracer.StartSpan(ctx, "frontdesk.CreateBookingWithRooms", tracing.WithOperation("create_booking"))
	defer span.End()
	defer func() {
		if err != nil {
			tracing.SetError(ctx, err)
			s.Metrics.RecordBooking(bookingResult(err))
		}
	}()

	// 1. 参数校验
	if err := rc.Validate(); err != nil {
		return nil, err
	}
	span.SetAttributes(tracing.WithStaffID(rc.StaffID))
	if err := req.Guest.validate(); err != nil {
		return nil, err
	}
	stay, err := NewStayRange(req.CheckInDate, req.CheckOutDate, s.Config.CheckInHour, s.Config.CheckOutHour)
	if err != nil {
		return nil, err
	}
	var advanceTotal int64
	for i, adv := range req.Advances {
		amount, err := ValidatePayment(adv)
		if err != nil {
			return nil, errors.GetAppError(err).WithDetail("advance", i)
		}
		advanceTotal += amount
	}

	// 2. 加载房型
	typeIDs := make([]int64, 0, len(req.Lines))
	for _, line := range req.Lines {
		typeIDs = append(typeIDs, line.RoomTypeID)
	}
	typeIDs = utils.Unique(typeIDs)
	sort.Slice(typeIDs, func(i, j int) bool { return typeIDs[i] < typeIDs[j] })
	span.SetAttributes(tracing.WithRoomTypeIDs(typeIDs...))

	roomTypes, err := s.Repos.RoomTypes.GetByIDs(ctx, typeIDs)
	if err != nil {
		return nil, mapError(err, nil)
	}

	// 3. 按房型加分房锁
	keys := make([]string, 0, len(typeIDs))
	for _, id := range typeIDs {
		keys = append(keys, cache.BuildKey(cache.KeyPrefixAllocLock, "roomtype", strconv.FormatInt(id, 10)))
	}
	lock, err := s.lock(ctx, keys...)
	if err != nil {
		return nil, err
	}
	defer releaseLock(ctx, lock)

	// 4. 事务内查房、分房、写入
	var booking *models.Booking
	err = s.withRetry(ctx, "create_booking", func() error {
		var txErr error
		booking, txErr = s.createOnce(ctx, rc, req, roomTypes, stay, advanceTotal)
		return txErr
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	s.Metrics.RecordBooking("success")
	for _, adv := range req.Advances {
		s.Metrics.RecordPayment(models.LedgerKindAdvance, adv.Method)
	}
	logger.Info("Booking created",
		logger.Module("frontdesk"),
		logger.Action("create_booking"),
		logger.BookingID(booking.ID),
		logger.BookingNo(booking.BookingNo),
		logger.StaffID(rc.StaffID),
		logger.Amount(utils.FromCents(advanceTotal)),
	)

	return s.GetBooking(ctx, rc, booking.ID)
}

func (s *BookingService) createOnce(ctx context.Context, rc *RequestContext, req *CreateBookingRequest, roomTypes map[int64]*models.RoomType, stay StayRange, advanceTotal int64) (*models.Booking, error) {
	var booking *models.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := s.Repos.WithTx(tx)

		assignments, err := NewRoomAllocator(repos.Rooms).Allocate(ctx, req.Lines, roomTypes, stay)
		if err != nil {
			return err
		}
		if err := ConfirmAssignments(ctx, repos.BookingRooms, assignments, stay); err != nil {
			return err
		}

		guest := req.Guest.toModel()
		if err := repos.Guests.Create(ctx, guest); err != nil {
			return err
		}

		booking = &models.Booking{
			BookingNo:        utils.GenerateOrderNo("BK"),
			GuestID:          guest.ID,
			StaffID:          rc.StaffID,
			Status:           models.BookingStatusConfirmed,
			CheckIn:          stay.From,
			ExpectedCheckout: stay.To,
			TariffInclusive:  req.TariffInclusive,
			Source:           utils.OptionalString(req.Source),
			Remark:           utils.OptionalString(req.Remark),
			Version:          1,
		}
		rc.TaxRates.stamp(booking)
		if err := repos.Bookings.Create(ctx, booking); err != nil {
			return err
		}

		nights := stay.Nights()
		rooms := make([]*models.BookingRoom, 0, len(assignments))
		for _, a := range assignments {
			rate := utils.ToCents(a.RoomType.BasePrice)
			if r := req.Lines[a.LineIndex].Rate; r != nil {
				rate = utils.ToCents(*r)
			}
			if rate <= 0 {
				return errors.ErrInvalidAmount.WithDetail("line", a.LineIndex).WithDetail("rate", utils.FromCents(rate))
			}
			rooms = append(rooms, &models.BookingRoom{
				BookingID:    booking.ID,
				RoomID:       a.Room.ID,
				RoomTypeID:   a.RoomType.ID,
				CheckInDate:  stay.From,
				CheckOutDate: stay.To,
				RoomRate:     utils.FromCents(rate),
				Nights:       nights,
				RoomTotal:    utils.FromCents(rate * int64(nights)),
				Adults:       a.Party.Adults,
				Children:     a.Party.Children,
				ExtraBeds:    a.Party.ExtraBeds,
				RoomStatus:   models.RoomStatusConfirmed,
			})
		}
		if err := repos.BookingRooms.CreateBatch(ctx, rooms); err != nil {
			return err
		}

		// 预付款不得超过应付总额
		folio := &Folio{Booking: booking, Rooms: rooms}
		if outstanding := ledgerFor(folio).Outstanding(folio); advanceTotal > outstanding {
			return errors.ErrInvalidAmount.
				WithMessage("预付款超过应付金额").
				WithDetail("advance", utils.FromCents(advanceTotal)).
				WithDetail("outstanding", utils.FromCents(outstanding))
		}

		entries := make([]*models.LedgerEntry, 0, len(req.Advances))
		for _, adv := range req.Advances {
			entries = append(entries, &models.LedgerEntry{
				BookingID:   booking.ID,
				Kind:        models.LedgerKindAdvance,
				Method:      adv.Method,
				Amount:      utils.FromCents(utils.ToCents(adv.Amount)),
				Reference:   utils.OptionalString(adv.Reference),
				CollectedBy: rc.StaffID,
			})
		}
		return repos.Ledger.CreateBatch(ctx, entries)
	})
	if err != nil {
		return nil, err
	}
	return booking, nil
}

// CheckIn 办理单间房入住，房间清洁状态置为住客中
func (s *BookingService) CheckIn(ctx context.Context, rc *RequestContext, bookingRoomID int64, actualCheckIn time.Time) (detail *BookingDetail, err error) {
	ctx, span := s.Tracer.StartSpan(ctx, "frontdesk.CheckIn", tracing.WithOperation("check_in"))
	defer span.End()
	defer func() {
		if err != nil {
			tracing.SetError(ctx, err)
		}
	}()

	if err := rc.Validate(); err != nil {
		return nil, err
	}
	if actualCheckIn.IsZero() {
		actualCheckIn = rc.now()
	}

	br, err := s.Repos.BookingRooms.GetByID(ctx, bookingRoomID)
	if err != nil {
		return nil, mapError(err, errors.ErrBookingRoomNotFound.WithDetail("booking_room_id", bookingRoomID))
	}
	span.SetAttributes(tracing.WithBookingID(br.BookingID), tracing.WithRoomID(br.RoomID))

	lock, err := s.lockBooking(ctx, br.BookingID)
	if err != nil {
		return nil, err
	}
	defer releaseLock(ctx, lock)

	err = s.withRetry(ctx, "check_in", func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repos := s.Repos.WithTx(tx)
			f, err := loadFolio(ctx, repos, br.BookingID, true)
			if err != nil {
				return err
			}

			target := findRoom(f.Rooms, bookingRoomID)
			if target == nil {
				return errors.ErrBookingRoomNotFound.WithDetail("booking_room_id", bookingRoomID)
			}
			if err := CheckInRoom(target, rc.StaffID, actualCheckIn); err != nil {
				return err
			}

			if err := repos.BookingRooms.Transition(ctx, target.ID, models.RoomStatusConfirmed, models.RoomStatusCheckedIn, map[string]interface{}{
				"actual_check_in": *target.ActualCheckIn,
				"checked_in_by":   rc.StaffID,
			}); err != nil {
				return err
			}
			if err := repos.Rooms.UpdateHousekeepingStatus(ctx, target.RoomID, models.HousekeepingOccupied, nil); err != nil {
				return mapError(err, errors.ErrRoomNotFound.WithDetail("room_id", target.RoomID))
			}

			return bumpVersion(ctx, repos, f, map[string]interface{}{
				"status": DeriveBookingStatus(f.Booking.Status, f.Rooms),
			})
		})
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	s.Metrics.RecordCheckIn()
	logger.Info("Room checked in",
		logger.Module("frontdesk"),
		logger.Action("check_in"),
		logger.BookingID(br.BookingID),
		logger.RoomID(br.RoomID),
		logger.StaffID(rc.StaffID),
	)
	return s.GetBooking(ctx, rc, br.BookingID)
}

// Cancel 取消整单并立即释放房间
func (s *BookingService) Cancel(ctx context.Context, rc *RequestContext, bookingID int64, reason string) (detail *BookingDetail, err error) {
	ctx, span := s.Tracer.StartSpan(ctx, "frontdesk.Cancel",
		tracing.WithOperation("cancel_booking"),
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

	lock, err := s.lockBooking(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	defer releaseLock(ctx, lock)

	err = s.withRetry(ctx, "cancel_booking", func() error {
		return s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			repos := s.Repos.WithTx(tx)
			f, err := loadFolio(ctx, repos, bookingID, true)
			if err != nil {
				return err
			}
			if err := CancelBooking(f.Booking, f.Rooms, reason, rc.now()); err != nil {
				return err
			}

			affected, err := repos.BookingRooms.CancelByBooking(ctx, bookingID)
			if err != nil {
				return err
			}
			if affected != int64(len(f.Rooms)) {
				return repository.ErrStaleUpdate
			}

			return bumpVersion(ctx, repos, f, map[string]interface{}{
				"status":        f.Booking.Status,
				"cancelled_at":  f.Booking.CancelledAt,
				"cancel_reason": f.Booking.CancelReason,
			})
		})
	})
	if err != nil {
		return nil, mapError(err, nil)
	}

	logger.Info("Booking cancelled",
		logger.Module("frontdesk"),
		logger.Action("cancel_booking"),
		logger.BookingID(bookingID),
		logger.StaffID(rc.StaffID),
	)
	return s.GetBooking(ctx, rc, bookingID)
}

// GetBooking 获取预订详情
func (s *BookingService) GetBooking(ctx context.Context, rc *RequestContext, bookingID int64) (*BookingDetail, error) {
	f, err := loadFolio(ctx, s.Repos, bookingID, false)
	if err != nil {
		return nil, err
	}
	if f.Booking, err = s.Repos.Bookings.GetByIDWithDetails(ctx, bookingID); err != nil {
		return nil, mapError(err, errors.ErrBookingNotFound)
	}
	f.Rooms = f.Booking.Rooms
	return newBookingDetail(f), nil
}

// GetBookingByNo 根据预订号获取预订详情
func (s *BookingService) GetBookingByNo(ctx context.Context, rc *RequestContext, bookingNo string) (*BookingDetail, error) {
	booking, err := s.Repos.Bookings.GetByBookingNoWithDetails(ctx, bookingNo)
	if err != nil {
		return nil, mapError(err, errors.ErrBookingNotFound.WithDetail("booking_no", bookingNo))
	}
	return s.GetBooking(ctx, rc, booking.ID)
}

// ListBookings 获取预订列表
func (s *BookingService) ListBookings(ctx context.Context, page *utils.Pagination, filters *repository.BookingListFilters) ([]*models.Booking, int64, error) {
	page.Normalize()
	bookings, total, err := s.Repos.Bookings.List(ctx, page.GetOffset(), page.GetLimit(), filters)
	if err != nil {
		return nil, 0, mapError(err, nil)
	}
	return bookings, total, nil
}

func findRoom(rooms []*models.BookingRoom, id int64) *models.BookingRoom {
	for _, br := range rooms {
		if br.ID == id {
			return br
		}
	}
	return nil
}

// bookingResult 预订失败的指标标签
func bookingResult(err error) string {
	switch {
	case stderrors.Is(err, errors.ErrInsufficientAvailability):
		return "insufficient_availability"
	case stderrors.Is(err, errors.ErrCapacityExceeded):
		return "capacity_exceeded"
	case stderrors.Is(err, errors.ErrPersistenceConflict):
		return "conflict"
	default:
		return "failed"
	}
}
