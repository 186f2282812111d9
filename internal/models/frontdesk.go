package models

import (
	"time"
)

// RoomType 房型
type RoomType struct {
	ID           int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name         string    `gorm:"type:varchar(50);not null;column:name" json:"name"`
	Code         string    `gorm:"type:varchar(20);uniqueIndex;not null;column:code" json:"code"`
	BedCount     int       `gorm:"not null;default:1;column:bed_count" json:"bed_count"`
	MaxOccupancy int       `gorm:"not null;column:max_occupancy" json:"max_occupancy"`
	BasePrice    float64   `gorm:"type:decimal(10,2);not null;column:base_price" json:"base_price"`
	Description  *string   `gorm:"type:text;column:description" json:"description,omitempty"`
	CreatedAt    time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`
}

// TableName 表名
func (RoomType) TableName() string {
	return "room_types"
}

// Room 客房
type Room struct {
	ID                 int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	RoomTypeID         int64     `gorm:"index;not null;column:room_type_id" json:"room_type_id"`
	RoomNo             string    `gorm:"type:varchar(20);uniqueIndex;not null;column:room_no" json:"room_no"`
	Floor              int       `gorm:"not null;default:1;column:floor" json:"floor"`
	HousekeepingStatus string    `gorm:"type:varchar(20);not null;default:'available';index;column:housekeeping_status" json:"housekeeping_status"`
	StatusReason       *string   `gorm:"type:varchar(255);column:status_reason" json:"status_reason,omitempty"`
	CreatedAt          time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt          time.Time `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`

	// 关联
	RoomType *RoomType `gorm:"foreignKey:RoomTypeID" json:"room_type,omitempty"`
}

// TableName 表名
func (Room) TableName() string {
	return "rooms"
}

// HousekeepingStatus 房间清洁状态（与预订占用无关）
const (
	HousekeepingAvailable   = "available"   // 可用
	HousekeepingOccupied    = "occupied"    // 住客中
	HousekeepingCleaning    = "cleaning"    // 清洁中
	HousekeepingMaintenance = "maintenance" // 维修中
	HousekeepingBlocked     = "blocked"     // 封锁
	HousekeepingUnclean     = "unclean"     // 待清洁
)

// IsValidHousekeepingStatus 校验清洁状态取值
func IsValidHousekeepingStatus(s string) bool {
	switch s {
	case HousekeepingAvailable, HousekeepingOccupied, HousekeepingCleaning,
		HousekeepingMaintenance, HousekeepingBlocked, HousekeepingUnclean:
		return true
	}
	return false
}

// RoomBlock 封房/维修时段，[FromDate, ToDate) 内房间不可分配
type RoomBlock struct {
	ID         int64      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	RoomID     int64      `gorm:"index;not null;column:room_id" json:"room_id"`
	Kind       string     `gorm:"type:varchar(20);not null;column:kind" json:"kind"`
	FromDate   time.Time  `gorm:"not null;index;column:from_date" json:"from_date"`
	ToDate     time.Time  `gorm:"not null;index;column:to_date" json:"to_date"`
	Reason     string     `gorm:"type:varchar(255);not null;column:reason" json:"reason"`
	CreatedBy  int64      `gorm:"not null;column:created_by" json:"created_by"`
	ReleasedAt *time.Time `gorm:"column:released_at" json:"released_at,omitempty"`
	CreatedAt  time.Time  `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

// TableName 表名
func (RoomBlock) TableName() string {
	return "room_blocks"
}

// RoomBlockKind 封房类型
const (
	RoomBlockKindBlocked     = "blocked"
	RoomBlockKindMaintenance = "maintenance"
)

// Guest 住客（每次预订新建，不按手机号去重）
type Guest struct {
	ID        int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	Name      string    `gorm:"type:varchar(100);not null;column:name" json:"name"`
	Phone     string    `gorm:"type:varchar(20);column:phone" json:"phone"`
	Email     *string   `gorm:"type:varchar(100);column:email" json:"email,omitempty"`
	IDType    *string   `gorm:"type:varchar(20);column:id_type" json:"id_type,omitempty"`
	IDNumber  *string   `gorm:"type:varchar(50);column:id_number" json:"id_number,omitempty"`
	Address   *string   `gorm:"type:varchar(255);column:address" json:"address,omitempty"`
	City      *string   `gorm:"type:varchar(50);column:city" json:"city,omitempty"`
	State     *string   `gorm:"type:varchar(50);column:state" json:"state,omitempty"`
	Country   *string   `gorm:"type:varchar(50);column:country" json:"country,omitempty"`
	GSTIN     *string   `gorm:"type:varchar(20);column:gstin" json:"gstin,omitempty"`
	CreatedAt time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

// TableName 表名
func (Guest) TableName() string {
	return "guests"
}

// Booking 预订
type Booking struct {
	ID               int64      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	BookingNo        string     `gorm:"type:varchar(64);uniqueIndex;not null;column:booking_no" json:"booking_no"`
	GuestID          int64      `gorm:"index;not null;column:guest_id" json:"guest_id"`
	StaffID          int64      `gorm:"index;not null;column:staff_id" json:"staff_id"`
	Status           string     `gorm:"type:varchar(20);not null;default:'confirmed';index;column:status" json:"status"`
	CheckIn          time.Time  `gorm:"not null;column:check_in" json:"check_in"`
	ExpectedCheckout time.Time  `gorm:"not null;column:expected_checkout" json:"expected_checkout"`
	TariffInclusive  bool       `gorm:"not null;default:false;column:tariff_inclusive" json:"tariff_inclusive"`
	TaxGST           float64    `gorm:"type:decimal(5,2);not null;default:0;column:tax_gst" json:"tax_gst"`
	TaxCGST          float64    `gorm:"type:decimal(5,2);not null;default:0;column:tax_cgst" json:"tax_cgst"`
	TaxSGST          float64    `gorm:"type:decimal(5,2);not null;default:0;column:tax_sgst" json:"tax_sgst"`
	TaxLuxury        float64    `gorm:"type:decimal(5,2);not null;default:0;column:tax_luxury" json:"tax_luxury"`
	TaxService       float64    `gorm:"type:decimal(5,2);not null;default:0;column:tax_service" json:"tax_service"`
	Source           *string    `gorm:"type:varchar(30);column:source" json:"source,omitempty"`
	Remark           *string    `gorm:"type:varchar(255);column:remark" json:"remark,omitempty"`
	Version          int        `gorm:"not null;default:1;column:version" json:"version"`
	CancelledAt      *time.Time `gorm:"column:cancelled_at" json:"cancelled_at,omitempty"`
	CancelReason     *string    `gorm:"type:varchar(255);column:cancel_reason" json:"cancel_reason,omitempty"`
	CreatedAt        time.Time  `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt        time.Time  `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`

	// 关联
	Guest *Guest         `gorm:"foreignKey:GuestID" json:"guest,omitempty"`
	Rooms []*BookingRoom `gorm:"foreignKey:BookingID" json:"rooms,omitempty"`
}

// TableName 表名
func (Booking) TableName() string {
	return "bookings"
}

// BookingStatus 预订状态
const (
	BookingStatusConfirmed  = "confirmed"   // 已确认
	BookingStatusCheckedIn  = "checked_in"  // 已入住
	BookingStatusCheckedOut = "checked_out" // 已退房
	BookingStatusCancelled  = "cancelled"   // 已取消
)

// BookingRoom 预订中单间房的入住段，拥有独立日期、房价和状态
type BookingRoom struct {
	ID             int64      `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	BookingID      int64      `gorm:"index;not null;column:booking_id" json:"booking_id"`
	RoomID         int64      `gorm:"index:idx_booking_rooms_room_dates;not null;column:room_id" json:"room_id"`
	RoomTypeID     int64      `gorm:"index;not null;column:room_type_id" json:"room_type_id"`
	CheckInDate    time.Time  `gorm:"index:idx_booking_rooms_room_dates;not null;column:check_in_date" json:"check_in_date"`
	CheckOutDate   time.Time  `gorm:"index:idx_booking_rooms_room_dates;not null;column:check_out_date" json:"check_out_date"`
	ActualCheckIn  *time.Time `gorm:"column:actual_check_in" json:"actual_check_in,omitempty"`
	ActualCheckOut *time.Time `gorm:"column:actual_check_out" json:"actual_check_out,omitempty"`
	RoomRate       float64    `gorm:"type:decimal(10,2);not null;column:room_rate" json:"room_rate"`
	Nights         int        `gorm:"not null;column:nights" json:"nights"`
	RoomTotal      float64    `gorm:"type:decimal(10,2);not null;column:room_total" json:"room_total"`
	DiscountAmount float64    `gorm:"type:decimal(10,2);not null;default:0;column:discount_amount" json:"discount_amount"`
	LateFee        float64    `gorm:"type:decimal(10,2);not null;default:0;column:late_fee" json:"late_fee"`
	Adults         int        `gorm:"not null;default:1;column:adults" json:"adults"`
	Children       int        `gorm:"not null;default:0;column:children" json:"children"`
	ExtraBeds      int        `gorm:"not null;default:0;column:extra_beds" json:"extra_beds"`
	RoomStatus     string     `gorm:"type:varchar(20);not null;default:'confirmed';index;column:room_status" json:"room_status"`
	CheckedInBy    *int64     `gorm:"column:checked_in_by" json:"checked_in_by,omitempty"`
	CheckedOutBy   *int64     `gorm:"column:checked_out_by" json:"checked_out_by,omitempty"`
	CreatedAt      time.Time  `gorm:"autoCreateTime;column:created_at" json:"created_at"`
	UpdatedAt      time.Time  `gorm:"autoUpdateTime;column:updated_at" json:"updated_at"`

	// 关联
	Room *Room `gorm:"foreignKey:RoomID" json:"room,omitempty"`
}

// TableName 表名
func (BookingRoom) TableName() string {
	return "booking_rooms"
}

// BookingRoomStatus 单间房状态，单调推进 confirmed → checked_in → checked_out
const (
	RoomStatusConfirmed  = "confirmed"
	RoomStatusCheckedIn  = "checked_in"
	RoomStatusCheckedOut = "checked_out"
	RoomStatusCancelled  = "cancelled"
)

// ActiveRoomStatuses 占用房间的单间房状态
var ActiveRoomStatuses = []string{RoomStatusConfirmed, RoomStatusCheckedIn}

// IsActive 是否占用房间
func (br *BookingRoom) IsActive() bool {
	return br.RoomStatus == RoomStatusConfirmed || br.RoomStatus == RoomStatusCheckedIn
}

// LedgerEntry 账本收款记录（预付款或退房收款）
type LedgerEntry struct {
	ID            int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	BookingID     int64     `gorm:"index;not null;column:booking_id" json:"booking_id"`
	BookingRoomID *int64    `gorm:"index;column:booking_room_id" json:"booking_room_id,omitempty"`
	ReceiptID     *int64    `gorm:"index;column:receipt_id" json:"receipt_id,omitempty"`
	Kind          string    `gorm:"type:varchar(20);not null;column:kind" json:"kind"`
	Method        string    `gorm:"type:varchar(20);not null;column:method" json:"method"`
	Amount        float64   `gorm:"type:decimal(10,2);not null;column:amount" json:"amount"`
	Reference     *string   `gorm:"type:varchar(100);column:reference" json:"reference,omitempty"`
	CollectedBy   int64     `gorm:"not null;column:collected_by" json:"collected_by"`
	CreatedAt     time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

// TableName 表名
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

// LedgerEntryKind 收款类型
const (
	LedgerKindAdvance = "advance" // 预付款
	LedgerKindReceipt = "receipt" // 退房收款
)

// PaymentMethod 支付方式
const (
	PaymentMethodCash = "cash"
	PaymentMethodCard = "card"
	PaymentMethodUPI  = "upi"
	PaymentMethodBank = "bank"
)

// PaymentMethods 全部支付方式，顺序固定
var PaymentMethods = []string{PaymentMethodCash, PaymentMethodCard, PaymentMethodUPI, PaymentMethodBank}

// IsValidPaymentMethod 校验支付方式
func IsValidPaymentMethod(m string) bool {
	for _, v := range PaymentMethods {
		if v == m {
			return true
		}
	}
	return false
}

// ChargeItem 入住期间挂账消费
type ChargeItem struct {
	ID          int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	BookingID   int64     `gorm:"index;not null;column:booking_id" json:"booking_id"`
	ProductID   *int64    `gorm:"column:product_id" json:"product_id,omitempty"`
	ProductName string    `gorm:"type:varchar(100);not null;column:product_name" json:"product_name"`
	Quantity    int       `gorm:"not null;column:quantity" json:"quantity"`
	Rate        float64   `gorm:"type:decimal(10,2);not null;column:rate" json:"rate"`
	TaxRate     float64   `gorm:"type:decimal(5,2);not null;default:0;column:tax_rate" json:"tax_rate"`
	TaxAmount   float64   `gorm:"type:decimal(10,2);not null;default:0;column:tax_amount" json:"tax_amount"`
	TotalAmount float64   `gorm:"type:decimal(10,2);not null;column:total_amount" json:"total_amount"`
	PostedBy    int64     `gorm:"not null;column:posted_by" json:"posted_by"`
	CreatedAt   time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

// TableName 表名
func (ChargeItem) TableName() string {
	return "charge_items"
}

// CheckoutReceipt 退房结算单，写入后不再修改
type CheckoutReceipt struct {
	ID                int64     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	ReceiptNo         string    `gorm:"type:varchar(64);uniqueIndex;not null;column:receipt_no" json:"receipt_no"`
	BookingID         int64     `gorm:"index;not null;column:booking_id" json:"booking_id"`
	BookingRoomIDs    string    `gorm:"type:varchar(255);not null;column:booking_room_ids" json:"booking_room_ids"`
	ScheduledCheckout time.Time `gorm:"not null;column:scheduled_checkout" json:"scheduled_checkout"`
	ActualCheckout    time.Time `gorm:"not null;column:actual_checkout" json:"actual_checkout"`
	CheckoutKind      string    `gorm:"type:varchar(20);not null;column:checkout_kind" json:"checkout_kind"`
	EarlyReason       *string   `gorm:"type:varchar(255);column:early_reason" json:"early_reason,omitempty"`
	LateFee           float64   `gorm:"type:decimal(10,2);not null;default:0;column:late_fee" json:"late_fee"`
	Adjustment        float64   `gorm:"type:decimal(10,2);not null;default:0;column:adjustment" json:"adjustment"`
	AdjustmentReason  *string   `gorm:"type:varchar(255);column:adjustment_reason" json:"adjustment_reason,omitempty"`
	DiscountAmount    float64   `gorm:"type:decimal(10,2);not null;default:0;column:discount_amount" json:"discount_amount"`
	Outstanding       float64   `gorm:"type:decimal(10,2);not null;column:outstanding" json:"outstanding"`
	FinalAmount       float64   `gorm:"type:decimal(10,2);not null;column:final_amount" json:"final_amount"`
	CollectedAmount   float64   `gorm:"type:decimal(10,2);not null;default:0;column:collected_amount" json:"collected_amount"`
	RemainingBalance  float64   `gorm:"type:decimal(10,2);not null;column:remaining_balance" json:"remaining_balance"`
	PaymentMethod     *string   `gorm:"type:varchar(20);column:payment_method" json:"payment_method,omitempty"`
	CollectedBy       int64     `gorm:"not null;column:collected_by" json:"collected_by"`
	CreatedAt         time.Time `gorm:"autoCreateTime;column:created_at" json:"created_at"`
}

// TableName 表名
func (CheckoutReceipt) TableName() string {
	return "checkout_receipts"
}

// CheckoutKind 退房时间类型
const (
	CheckoutKindOnTime = "on_time"
	CheckoutKindLate   = "late"
	CheckoutKindEarly  = "early"
)

// FrontDeskModels 前台相关的全部模型，用于自动迁移
func FrontDeskModels() []interface{} {
	return []interface{}{
		&RoomType{},
		&Room{},
		&RoomBlock{},
		&Guest{},
		&Booking{},
		&BookingRoom{},
		&LedgerEntry{},
		&ChargeItem{},
		&CheckoutReceipt{},
		&SystemConfig{},
		&OperationLog{},
	}
}

// PostgresConstraints 仅在 PostgreSQL 上创建的约束：同一房间的有效入住段时间不得重叠
var PostgresConstraints = []string{
	`CREATE EXTENSION IF NOT EXISTS btree_gist`,
	`DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'booking_rooms_no_overlap') THEN
		ALTER TABLE booking_rooms ADD CONSTRAINT booking_rooms_no_overlap
			EXCLUDE USING gist (room_id WITH =, tstzrange(check_in_date, check_out_date, '[)') WITH &&)
			WHERE (room_status IN ('confirmed', 'checked_in'));
	END IF;
END $$`,
}
