package frontdesk

import (
	"context"
	stderrors "errors"
	"strconv"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/dumeirei/hotel-frontdesk/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/database"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/logger"
	"github.com/dumeirei/hotel-frontdesk/internal/common/metrics"
	"github.com/dumeirei/hotel-frontdesk/internal/common/tracing"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
)

// Repositories 前台仓储集合
type Repositories struct {
	RoomTypes    *repository.RoomTypeRepository
	Rooms        *repository.RoomRepository
	RoomBlocks   *repository.RoomBlockRepository
	Guests       *repository.GuestRepository
	Bookings     *repository.BookingRepository
	BookingRooms *repository.BookingRoomRepository
	Ledger       *repository.LedgerRepository
	Charges      *repository.ChargeRepository
	Receipts     *repository.ReceiptRepository
	Configs      *repository.SystemConfigRepository
}

// NewRepositories 创建前台仓储集合
func NewRepositories(db *gorm.DB) *Repositories {
	return &Repositories{
		RoomTypes:    repository.NewRoomTypeRepository(db),
		Rooms:        repository.NewRoomRepository(db),
		RoomBlocks:   repository.NewRoomBlockRepository(db),
		Guests:       repository.NewGuestRepository(db),
		Bookings:     repository.NewBookingRepository(db),
		BookingRooms: repository.NewBookingRoomRepository(db),
		Ledger:       repository.NewLedgerRepository(db),
		Charges:      repository.NewChargeRepository(db),
		Receipts:     repository.NewReceiptRepository(db),
		Configs:      repository.NewSystemConfigRepository(db),
	}
}

// WithTx 返回绑定到事务的仓储集合
func (r *Repositories) WithTx(tx *gorm.DB) *Repositories {
	return &Repositories{
		RoomTypes:    r.RoomTypes.WithTx(tx),
		Rooms:        r.Rooms.WithTx(tx),
		RoomBlocks:   r.RoomBlocks.WithTx(tx),
		Guests:       r.Guests.WithTx(tx),
		Bookings:     r.Bookings.WithTx(tx),
		BookingRooms: r.BookingRooms.WithTx(tx),
		Ledger:       r.Ledger.WithTx(tx),
		Charges:      r.Charges.WithTx(tx),
		Receipts:     r.Receipts.WithTx(tx),
		Configs:      r.Configs.WithTx(tx),
	}
}

// Dependencies 前台服务公共依赖
type Dependencies struct {
	DB      *gorm.DB
	Repos   *Repositories
	Locker  *cache.Locker
	Config  config.FrontDeskConfig
	Metrics *metrics.Metrics
	Tracer  *tracing.Tracer
}

// NewDependencies 创建服务依赖，locker 为 nil 时仅依赖数据库约束
func NewDependencies(db *gorm.DB, locker *cache.Locker, cfg config.FrontDeskConfig, m *metrics.Metrics, tracer *tracing.Tracer) *Dependencies {
	if locker == nil {
		locker = cache.NewLocker(nil, 0, 0)
	}
	return &Dependencies{
		DB:      db,
		Repos:   NewRepositories(db),
		Locker:  locker,
		Config:  cfg,
		Metrics: m,
		Tracer:  tracer,
	}
}

// isConflict 判断是否为可重试的并发冲突
func isConflict(err error) bool {
	return stderrors.Is(err, errors.ErrPersistenceConflict) ||
		stderrors.Is(err, repository.ErrStaleUpdate) ||
		database.IsConflictError(err)
}

// mapError 将仓储层错误转换为业务错误
func mapError(err error, notFound *errors.AppError) error {
	switch {
	case err == nil:
		return nil
	case errors.IsAppError(err):
		return err
	case stderrors.Is(err, gorm.ErrRecordNotFound) && notFound != nil:
		return notFound
	case isConflict(err):
		return errors.ErrPersistenceConflict.WithError(err)
	default:
		return errors.ErrDatabaseError.WithError(err)
	}
}

// withRetry 执行 fn，遇到并发冲突时按配置重试，仍冲突则返回 ErrPersistenceConflict
func (d *Dependencies) withRetry(ctx context.Context, action string, fn func() error) error {
	retries := max(d.Config.Allocation.ConflictRetries, 0)
	for attempt := 0; ; attempt++ {
		err := fn()
		if err == nil || !isConflict(err) {
			return err
		}
		if attempt >= retries {
			return mapError(err, nil)
		}
		d.Metrics.RecordAllocationRetry()
		tracing.AddEvent(ctx, "retry_on_conflict")
		logger.Warn("Persistence conflict, retrying",
			logger.Action(action),
			zap.Int("attempt", attempt+1),
			zap.Error(err),
		)
	}
}

// lock 获取一组 Redis 互斥锁并记录等待耗时
func (d *Dependencies) lock(ctx context.Context, keys ...string) (*cache.Lock, error) {
	start := time.Now()
	l, err := d.Locker.Acquire(ctx, keys...)
	d.Metrics.ObserveLockWait(time.Since(start))
	if err != nil {
		if stderrors.Is(err, cache.ErrLockTimeout) {
			return nil, errors.ErrPersistenceConflict.WithMessage("资源正被其他操作占用，请重试").WithError(err)
		}
		return nil, errors.ErrCacheError.WithError(err)
	}
	return l, nil
}

func (d *Dependencies) lockBooking(ctx context.Context, bookingID int64) (*cache.Lock, error) {
	return d.lock(ctx, cache.BuildKey(cache.KeyPrefixBookingLock, strconv.FormatInt(bookingID, 10)))
}

func releaseLock(ctx context.Context, l *cache.Lock) {
	if err := l.Release(context.WithoutCancel(ctx)); err != nil {
		logger.Warn("Failed to release lock", zap.Strings("keys", l.Keys()), zap.Error(err))
	}
}

// loadFolio 读取预订及其账务记录，repos 可为事务仓储
func loadFolio(ctx context.Context, repos *Repositories, bookingID int64, forUpdate bool) (*Folio, error) {
	var err error
	f := &Folio{}
	if forUpdate {
		f.Booking, err = repos.Bookings.GetForUpdate(ctx, bookingID)
	} else {
		f.Booking, err = repos.Bookings.GetByID(ctx, bookingID)
	}
	if err != nil {
		return nil, mapError(err, errors.ErrBookingNotFound.WithDetail("booking_id", bookingID))
	}
	if f.Rooms, err = repos.BookingRooms.ListByBooking(ctx, bookingID); err != nil {
		return nil, mapError(err, nil)
	}
	if f.Charges, err = repos.Charges.ListByBooking(ctx, bookingID); err != nil {
		return nil, mapError(err, nil)
	}
	if f.Entries, err = repos.Ledger.ListByBooking(ctx, bookingID); err != nil {
		return nil, mapError(err, nil)
	}
	if f.Receipts, err = repos.Receipts.ListByBooking(ctx, bookingID); err != nil {
		return nil, mapError(err, nil)
	}
	return f, nil
}

// bumpVersion 按版本号写回预订，用于防止并发的丢失更新
func bumpVersion(ctx context.Context, repos *Repositories, f *Folio, updates map[string]interface{}) error {
	if err := repos.Bookings.UpdateWithVersion(ctx, f.Booking.ID, f.Booking.Version, updates); err != nil {
		return err
	}
	f.Booking.Version++
	return nil
}
