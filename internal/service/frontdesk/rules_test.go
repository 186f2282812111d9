package frontdesk

import (
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

func day(d, hour int) time.Time {
	return time.Date(2026, time.November, d, hour, 0, 0, 0, time.UTC)
}

// ==================== 时段 ====================

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b [2]time.Time
		want bool
	}{
		{"首尾相接", [2]time.Time{day(1, 14), day(3, 12)}, [2]time.Time{day(3, 12), day(5, 12)}, false},
		{"部分重叠", [2]time.Time{day(1, 14), day(3, 12)}, [2]time.Time{day(2, 14), day(4, 12)}, true},
		{"包含", [2]time.Time{day(1, 14), day(9, 12)}, [2]time.Time{day(2, 14), day(4, 12)}, true},
		{"不相交", [2]time.Time{day(1, 14), day(2, 12)}, [2]time.Time{day(5, 14), day(6, 12)}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.a[0], tt.a[1], tt.b[0], tt.b[1]))
			assert.Equal(t, tt.want, Overlaps(tt.b[0], tt.b[1], tt.a[0], tt.a[1]))
		})
	}
}

func TestNewStayRange(t *testing.T) {
	stay, err := NewStayRange(day(1, 0), day(3, 0), 14, 12)
	require.NoError(t, err)
	assert.Equal(t, day(1, 14), stay.From)
	assert.Equal(t, day(3, 12), stay.To)
	assert.Equal(t, 2, stay.Nights())

	_, err = NewStayRange(day(3, 0), day(3, 0), 14, 12)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidDateRange))

	_, err = NewStayRange(day(4, 0), day(3, 0), 14, 12)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidDateRange))
}

func TestNights_AtLeastOne(t *testing.T) {
	assert.Equal(t, 1, Nights(day(1, 14), day(1, 20)))
	assert.Equal(t, 1, Nights(day(1, 14), day(2, 12)))
	assert.Equal(t, 3, Nights(day(1, 14), day(4, 12)))
}

// ==================== 人数 ====================

func TestEffectiveOccupancy(t *testing.T) {
	assert.Equal(t, 2, EffectiveOccupancy(Party{Adults: 2}))
	assert.Equal(t, 3, EffectiveOccupancy(Party{Adults: 2, Children: 1}))
	assert.Equal(t, 3, EffectiveOccupancy(Party{Adults: 2, Children: 2}))
	assert.Equal(t, 4, EffectiveOccupancy(Party{Adults: 2, Children: 2, ExtraBeds: 1}))
}

func TestValidateCapacity(t *testing.T) {
	standard := &models.RoomType{ID: 1, MaxOccupancy: 2}

	tests := []struct {
		name  string
		party Party
		want  *errors.AppError
	}{
		{"两位成人", Party{Adults: 2}, nil},
		{"成人加儿童超员", Party{Adults: 2, Children: 2}, errors.ErrCapacityExceeded},
		{"无成人", Party{Adults: 0, Children: 1}, errors.ErrInvalidParams},
		{"负数", Party{Adults: 1, ExtraBeds: -1}, errors.ErrInvalidParams},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateCapacity(tt.party, standard)
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.True(t, stderrors.Is(err, tt.want), "got %v", err)
		})
	}

	err := ValidateCapacity(Party{Adults: 2, Children: 2}, standard)
	appErr := errors.GetAppError(err)
	assert.Equal(t, 2, appErr.Details["max_occupancy"])
	assert.Equal(t, 3, appErr.Details["effective_occupancy"])
}

func TestClampParty(t *testing.T) {
	tests := []struct {
		name    string
		party   Party
		max     int
		editing PartyField
		want    Party
	}{
		{"未超员不变", Party{Adults: 1, Children: 1}, 3, FieldAdults, Party{Adults: 1, Children: 1}},
		{"编辑儿童时先收缩加床", Party{Adults: 2, Children: 2, ExtraBeds: 1}, 3, FieldChildren, Party{Adults: 2, Children: 2}},
		{"编辑加床时先收缩儿童", Party{Adults: 2, Children: 2, ExtraBeds: 1}, 3, FieldExtraBeds, Party{Adults: 2, ExtraBeds: 1}},
		{"只能收缩正在编辑的成人", Party{Adults: 4}, 3, FieldAdults, Party{Adults: 3}},
		{"成人至少一位", Party{Adults: 0, Children: -2}, 2, FieldChildren, Party{Adults: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampParty(tt.party, tt.max, tt.editing)
			assert.Equal(t, tt.want, got)
			assert.LessOrEqual(t, EffectiveOccupancy(got), tt.max)
		})
	}
}

// ==================== 计税 ====================

func TestTaxEngine_SimpleBooking(t *testing.T) {
	engine := NewTaxEngine(DefaultTaxRates())

	b := engine.Quote(200000, 2, false)
	assert.Equal(t, int64(400000), b.Subtotal)
	assert.Equal(t, int64(48000), b.GST)
	assert.Equal(t, int64(24000), b.CGST)
	assert.Equal(t, int64(24000), b.SGST)
	assert.Equal(t, int64(20000), b.LuxuryTax)
	assert.Equal(t, int64(40000), b.ServiceCharge)
	assert.Equal(t, int64(556000), b.GrandTotal)
}

func TestTaxEngine_InclusiveRoundTrip(t *testing.T) {
	engine := NewTaxEngine(DefaultTaxRates())

	for _, gross := range []int64{556000, 10000, 99999, 1} {
		b := engine.FromGross(gross)
		assert.Equal(t, gross, b.GrandTotal)
		assert.Equal(t, b.GrandTotal, b.Subtotal+b.TotalTax)
	}
	assert.Equal(t, int64(400000), engine.FromGross(556000).Subtotal)
	assert.Equal(t, int64(400000), engine.PreTax(556000, true))
	assert.Equal(t, int64(556000), engine.PreTax(556000, false))
}

func TestTaxRates_Valid(t *testing.T) {
	assert.True(t, DefaultTaxRates().Valid())
	assert.InDelta(t, 39.0, DefaultTaxRates().Total(), 1e-9)
	assert.False(t, TaxRates{GST: -1}.Valid())
	assert.False(t, TaxRates{ServiceCharge: 101}.Valid())
}

// ==================== 状态机 ====================

func TestRoomLifecycle_Monotonic(t *testing.T) {
	br := &models.BookingRoom{ID: 1, RoomStatus: models.RoomStatusConfirmed}

	require.NoError(t, CheckInRoom(br, 7, day(1, 15)))
	assert.Equal(t, models.RoomStatusCheckedIn, br.RoomStatus)
	assert.Equal(t, int64(7), *br.CheckedInBy)

	err := CheckInRoom(br, 7, day(1, 16))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidTransition))
	assert.Equal(t, day(1, 15), *br.ActualCheckIn)

	require.NoError(t, CheckOutRoom(br, 8, day(3, 11)))
	assert.Equal(t, models.RoomStatusCheckedOut, br.RoomStatus)

	assert.Error(t, CheckOutRoom(br, 8, day(3, 12)))
	assert.Error(t, CheckInRoom(br, 8, day(3, 12)))
	assert.False(t, CanTransitionRoom(models.RoomStatusCheckedOut, models.RoomStatusCheckedIn))
	assert.False(t, CanTransitionRoom(models.RoomStatusCancelled, models.RoomStatusConfirmed))
}

func TestCheckInRoom_RequiresStaff(t *testing.T) {
	br := &models.BookingRoom{ID: 1, RoomStatus: models.RoomStatusConfirmed}
	err := CheckInRoom(br, 0, day(1, 15))
	assert.True(t, stderrors.Is(err, errors.ErrStaffRequired))
	assert.Equal(t, models.RoomStatusConfirmed, br.RoomStatus)
	assert.Nil(t, br.ActualCheckIn)
}

func TestCheckOutRoom_BeforeCheckInRejected(t *testing.T) {
	br := &models.BookingRoom{ID: 1, RoomStatus: models.RoomStatusConfirmed}
	require.NoError(t, CheckInRoom(br, 7, day(2, 15)))

	t.Run("早于入住时间的退房被拒绝且不修改房间", func(t *testing.T) {
		err := CheckOutRoom(br, 8, day(2, 10))
		assert.True(t, stderrors.Is(err, errors.ErrInvalidParams))
		assert.Equal(t, models.RoomStatusCheckedIn, br.RoomStatus)
		assert.Nil(t, br.ActualCheckOut)
		assert.Nil(t, br.CheckedOutBy)
	})

	t.Run("与入住时间相同可以退房", func(t *testing.T) {
		require.NoError(t, CheckOutRoom(br, 8, day(2, 15)))
		assert.Equal(t, models.RoomStatusCheckedOut, br.RoomStatus)
	})
}

func TestCancelBooking(t *testing.T) {
	b := &models.Booking{ID: 1, Status: models.BookingStatusConfirmed}
	rooms := []*models.BookingRoom{
		{ID: 1, RoomStatus: models.RoomStatusConfirmed},
		{ID: 2, RoomStatus: models.RoomStatusCheckedIn},
	}
	err := CancelBooking(b, rooms, "guest request", day(1, 10))
	assert.True(t, stderrors.Is(err, errors.ErrInvalidTransition))
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
	assert.Equal(t, models.RoomStatusConfirmed, rooms[0].RoomStatus)

	rooms[1].RoomStatus = models.RoomStatusConfirmed
	require.NoError(t, CancelBooking(b, rooms, "guest request", day(1, 10)))
	assert.Equal(t, models.BookingStatusCancelled, b.Status)
	assert.Equal(t, "guest request", *b.CancelReason)
	for _, br := range rooms {
		assert.Equal(t, models.RoomStatusCancelled, br.RoomStatus)
	}
}

func TestDeriveBookingStatus(t *testing.T) {
	rooms := func(statuses ...string) []*models.BookingRoom {
		out := make([]*models.BookingRoom, len(statuses))
		for i, s := range statuses {
			out[i] = &models.BookingRoom{RoomStatus: s}
		}
		return out
	}

	assert.Equal(t, models.BookingStatusConfirmed,
		DeriveBookingStatus(models.BookingStatusConfirmed, rooms(models.RoomStatusConfirmed, models.RoomStatusConfirmed)))
	assert.Equal(t, models.BookingStatusCheckedIn,
		DeriveBookingStatus(models.BookingStatusConfirmed, rooms(models.RoomStatusCheckedIn, models.RoomStatusConfirmed)))
	assert.Equal(t, models.BookingStatusCheckedIn,
		DeriveBookingStatus(models.BookingStatusCheckedIn, rooms(models.RoomStatusCheckedOut, models.RoomStatusCheckedIn)))
	assert.Equal(t, models.BookingStatusCheckedOut,
		DeriveBookingStatus(models.BookingStatusCheckedIn, rooms(models.RoomStatusCheckedOut, models.RoomStatusCheckedOut)))
	assert.Equal(t, models.BookingStatusCancelled,
		DeriveBookingStatus(models.BookingStatusCancelled, rooms(models.RoomStatusCheckedIn)))
}

// ==================== 账务 ====================

func testFolio(inclusive bool, rooms ...*models.BookingRoom) *Folio {
	return &Folio{
		Booking: &models.Booking{ID: 1, Status: models.BookingStatusCheckedIn, TariffInclusive: inclusive},
		Rooms:   rooms,
	}
}

func checkedInRoom(id int64, total float64) *models.BookingRoom {
	in := day(1, 15)
	return &models.BookingRoom{
		ID:            id,
		BookingID:     1,
		RoomID:        id,
		CheckInDate:   day(1, 14),
		CheckOutDate:  day(3, 12),
		ActualCheckIn: &in,
		RoomRate:      total / 2,
		Nights:        2,
		RoomTotal:     total,
		RoomStatus:    models.RoomStatusCheckedIn,
	}
}

func TestLedger_Outstanding(t *testing.T) {
	f := testFolio(false, checkedInRoom(1, 4000))
	ledger := NewLedger(DefaultTaxRates())
	assert.Equal(t, int64(556000), ledger.Outstanding(f))

	item, err := BuildChargeItem(1, 7, ChargeInput{ProductName: "Laundry", Quantity: 2, Rate: 150, TaxRate: 18})
	require.NoError(t, err)
	assert.Equal(t, 354.0, item.TotalAmount)
	f.Charges = append(f.Charges, item)

	f.Entries = []*models.LedgerEntry{
		{Kind: models.LedgerKindAdvance, Method: models.PaymentMethodCash, Amount: 1000},
		{Kind: models.LedgerKindAdvance, Method: models.PaymentMethodUPI, Amount: 500},
	}
	assert.Equal(t, int64(556000+35400-150000), ledger.Outstanding(f))

	pb := ledger.Breakdown(f)
	assert.Equal(t, 5560.0, pb.TaxedTotalAmount)
	assert.Equal(t, 354.0, pb.ChargesTotal)
	assert.Equal(t, 1000.0, pb.Advances[models.PaymentMethodCash])
	assert.Equal(t, 500.0, pb.Advances[models.PaymentMethodUPI])
	assert.Equal(t, 0.0, pb.Advances[models.PaymentMethodCard])
	assert.Equal(t, 1500.0, pb.TotalPaid)
	assert.Equal(t, 4414.0, pb.Outstanding)
}

func TestLedger_OutstandingNeverNegative(t *testing.T) {
	f := testFolio(false, checkedInRoom(1, 100))
	f.Entries = []*models.LedgerEntry{{Kind: models.LedgerKindAdvance, Method: models.PaymentMethodCash, Amount: 1000}}
	assert.Zero(t, NewLedger(DefaultTaxRates()).Outstanding(f))
}

func TestLedger_CancelledRoomsExcluded(t *testing.T) {
	cancelled := checkedInRoom(2, 4000)
	cancelled.RoomStatus = models.RoomStatusCancelled
	f := testFolio(false, checkedInRoom(1, 4000), cancelled)
	assert.Equal(t, int64(556000), NewLedger(DefaultTaxRates()).Outstanding(f))
}

func TestValidatePayment(t *testing.T) {
	amount, err := ValidatePayment(PaymentInput{Amount: 12.5, Method: models.PaymentMethodCard})
	require.NoError(t, err)
	assert.Equal(t, int64(1250), amount)

	_, err = ValidatePayment(PaymentInput{Amount: 0, Method: models.PaymentMethodCard})
	assert.True(t, stderrors.Is(err, errors.ErrInvalidAmount))

	_, err = ValidatePayment(PaymentInput{Amount: 10, Method: "cheque"})
	assert.True(t, stderrors.Is(err, errors.ErrInvalidPaymentMethod))
}

// ==================== 退房 ====================

func testPolicy() CheckoutPolicy {
	return CheckoutPolicy{Grace: time.Hour, LateFeePerHour: 10000, LateFeeCap: 50000}
}

func TestCheckoutPolicy_LateFee(t *testing.T) {
	p := testPolicy()
	scheduled := day(3, 12)

	tests := []struct {
		name   string
		actual time.Time
		want   int64
		kind   string
	}{
		{"宽限期内", scheduled.Add(45 * time.Minute), 0, models.CheckoutKindOnTime},
		{"超出一个半小时", scheduled.Add(150 * time.Minute), 10000, models.CheckoutKindLate},
		{"超过上限", scheduled.Add(12 * time.Hour), 50000, models.CheckoutKindLate},
		{"提前", scheduled.Add(-3 * time.Hour), 0, models.CheckoutKindEarly},
		{"准时", scheduled, 0, models.CheckoutKindOnTime},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, p.LateFee(scheduled, tt.actual))
			assert.Equal(t, tt.kind, p.Classify(scheduled, tt.actual))
		})
	}
}

func TestDiscountAmount(t *testing.T) {
	got, err := DiscountAmount(Discount{Kind: DiscountFlat, Value: 500}, 400000, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got)

	got, err = DiscountAmount(Discount{Kind: DiscountFlat, Value: 500, PerDay: true}, 400000, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(100000), got)

	got, err = DiscountAmount(Discount{Kind: DiscountPercent, Value: 10}, 400000, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(40000), got)

	_, err = DiscountAmount(Discount{Kind: DiscountFlat, Value: 5000}, 400000, 2)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidAmount))

	_, err = DiscountAmount(Discount{Kind: DiscountPercent, Value: 120}, 400000, 2)
	assert.True(t, stderrors.Is(err, errors.ErrInvalidAmount))
}

func TestReconcile_LateCheckout(t *testing.T) {
	f := testFolio(false, checkedInRoom(1, 4000))
	r := NewCheckoutReconciler(testPolicy(), DefaultTaxRates())

	res, err := r.Reconcile(ReconcileInput{
		Folio:          f,
		StaffID:        7,
		ActualCheckout: day(3, 12).Add(150 * time.Minute),
	})
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutKindLate, res.Kind)
	assert.Equal(t, int64(10000), res.LateFee)
	assert.Equal(t, int64(556000), res.Outstanding)
	assert.Equal(t, int64(566000), res.FinalAmount)
	assert.Equal(t, int64(566000), res.RemainingBalance)

	// 输入不被修改
	assert.Equal(t, models.RoomStatusCheckedIn, f.Rooms[0].RoomStatus)
	assert.Zero(t, f.Rooms[0].LateFee)
	assert.Equal(t, 100.0, res.Targets[0].LateFee)
}

func TestReconcile_PartialMultiRoomCheckout(t *testing.T) {
	f := testFolio(false, checkedInRoom(1, 4000), checkedInRoom(2, 4000))
	r := NewCheckoutReconciler(testPolicy(), DefaultTaxRates())

	res, err := r.Reconcile(ReconcileInput{
		Folio:          f,
		TargetIDs:      []int64{1},
		StaffID:        7,
		ActualCheckout: day(3, 12),
		Collected:      500000,
	})
	require.NoError(t, err)
	require.Len(t, res.Targets, 1)
	assert.Equal(t, int64(1), res.Targets[0].ID)
	assert.Equal(t, models.CheckoutKindOnTime, res.Kind)
	assert.Equal(t, int64(1112000), res.FinalAmount)
	assert.Equal(t, int64(612000), res.RemainingBalance)

	assert.Equal(t, models.RoomStatusCheckedOut, res.Folio.Rooms[0].RoomStatus)
	assert.Equal(t, models.RoomStatusCheckedIn, res.Folio.Rooms[1].RoomStatus)
	assert.Equal(t, models.BookingStatusCheckedIn, DeriveBookingStatus(f.Booking.Status, res.Folio.Rooms))
}

func TestReconcile_EarlyCheckoutRequiresReason(t *testing.T) {
	f := testFolio(false, checkedInRoom(1, 4000))
	r := NewCheckoutReconciler(testPolicy(), DefaultTaxRates())

	in := ReconcileInput{Folio: f, StaffID: 7, ActualCheckout: day(2, 10)}
	_, err := r.Reconcile(in)
	assert.True(t, stderrors.Is(err, errors.ErrEarlyCheckoutReason))

	in.EarlyReason = "flight rescheduled"
	res, err := r.Reconcile(in)
	require.NoError(t, err)
	assert.Equal(t, models.CheckoutKindEarly, res.Kind)
	assert.Zero(t, res.LateFee)
}

func TestReconcile_DiscountAppliedBeforeTax(t *testing.T) {
	f := testFolio(false, checkedInRoom(1, 4000))
	r := NewCheckoutReconciler(testPolicy(), DefaultTaxRates())

	res, err := r.Reconcile(ReconcileInput{
		Folio:          f,
		StaffID:        7,
		ActualCheckout: day(3, 12),
		Discount:       &Discount{Kind: DiscountFlat, Value: 500},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(50000), res.Discount)
	assert.Equal(t, int64(486500), res.Outstanding)
	assert.Equal(t, 500.0, res.Targets[0].DiscountAmount)
}

func TestReconcile_RejectsInvalidAmounts(t *testing.T) {
	r := NewCheckoutReconciler(testPolicy(), DefaultTaxRates())

	_, err := r.Reconcile(ReconcileInput{
		Folio:          testFolio(false, checkedInRoom(1, 4000)),
		StaffID:        7,
		ActualCheckout: day(3, 12),
		Collected:      600000,
	})
	assert.True(t, stderrors.Is(err, errors.ErrReconciliationFailed))

	_, err = r.Reconcile(ReconcileInput{
		Folio:            testFolio(false, checkedInRoom(1, 4000)),
		StaffID:          7,
		ActualCheckout:   day(3, 12),
		Adjustment:       -600000,
		AdjustmentReason: "goodwill",
	})
	assert.True(t, stderrors.Is(err, errors.ErrReconciliationFailed))

	_, err = r.Reconcile(ReconcileInput{
		Folio:          testFolio(false, checkedInRoom(1, 4000)),
		StaffID:        7,
		ActualCheckout: day(3, 12),
		Adjustment:     1000,
	})
	assert.True(t, stderrors.Is(err, errors.ErrInvalidParams))
}
