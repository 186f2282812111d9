// Package repository 提供数据访问层
package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

// LedgerRepository 收款账本仓储
type LedgerRepository struct {
	db *gorm.DB
}

// NewLedgerRepository 创建收款账本仓储
func NewLedgerRepository(db *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *LedgerRepository) WithTx(tx *gorm.DB) *LedgerRepository {
	return &LedgerRepository{db: tx}
}

// Create 记录一笔收款
func (r *LedgerRepository) Create(ctx context.Context, entry *models.LedgerEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// CreateBatch 批量记录收款
func (r *LedgerRepository) CreateBatch(ctx context.Context, entries []*models.LedgerEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&entries).Error
}

// ListByBooking 获取预订的全部收款记录
func (r *LedgerRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*models.LedgerEntry, error) {
	var entries []*models.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id ASC").
		Find(&entries).Error
	return entries, err
}

// ChargeRepository 挂账消费仓储
type ChargeRepository struct {
	db *gorm.DB
}

// NewChargeRepository 创建挂账消费仓储
func NewChargeRepository(db *gorm.DB) *ChargeRepository {
	return &ChargeRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *ChargeRepository) WithTx(tx *gorm.DB) *ChargeRepository {
	return &ChargeRepository{db: tx}
}

// CreateBatch 批量挂账
func (r *ChargeRepository) CreateBatch(ctx context.Context, items []*models.ChargeItem) error {
	if len(items) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&items).Error
}

// ListByBooking 获取预订的挂账明细
func (r *ChargeRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*models.ChargeItem, error) {
	var items []*models.ChargeItem
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id ASC").
		Find(&items).Error
	return items, err
}

// ReceiptRepository 退房结算单仓储，仅提供写入与查询
type ReceiptRepository struct {
	db *gorm.DB
}

// NewReceiptRepository 创建结算单仓储
func NewReceiptRepository(db *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: db}
}

// WithTx 返回绑定到事务的仓储
func (r *ReceiptRepository) WithTx(tx *gorm.DB) *ReceiptRepository {
	return &ReceiptRepository{db: tx}
}

// Create 写入结算单
func (r *ReceiptRepository) Create(ctx context.Context, receipt *models.CheckoutReceipt) error {
	return r.db.WithContext(ctx).Create(receipt).Error
}

// GetByReceiptNo 根据结算单号获取
func (r *ReceiptRepository) GetByReceiptNo(ctx context.Context, receiptNo string) (*models.CheckoutReceipt, error) {
	var receipt models.CheckoutReceipt
	err := r.db.WithContext(ctx).Where("receipt_no = ?", receiptNo).First(&receipt).Error
	if err != nil {
		return nil, err
	}
	return &receipt, nil
}

// ListByBooking 获取预订的全部结算单
func (r *ReceiptRepository) ListByBooking(ctx context.Context, bookingID int64) ([]*models.CheckoutReceipt, error) {
	var receipts []*models.CheckoutReceipt
	err := r.db.WithContext(ctx).
		Where("booking_id = ?", bookingID).
		Order("id ASC").
		Find(&receipts).Error
	return receipts, err
}
