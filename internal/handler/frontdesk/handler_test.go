package frontdesk

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/dumeirei/hotel-frontdesk/internal/common/cache"
	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/jwt"
	"github.com/dumeirei/hotel-frontdesk/internal/middleware"
	"github.com/dumeirei/hotel-frontdesk/internal/models"
	"github.com/dumeirei/hotel-frontdesk/internal/repository"
	frontdeskService "github.com/dumeirei/hotel-frontdesk/internal/service/frontdesk"
)

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func setupRouter(t *testing.T, role string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(models.FrontDeskModels()...))

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	cfg := config.Default().Business.FrontDesk
	deps := frontdeskService.NewDependencies(db,
		cache.NewLocker(client, cfg.Allocation.LockTTLDuration(), cfg.Allocation.LockWaitDuration()),
		cfg, nil, nil)
	taxRates := frontdeskService.NewTaxRateProvider(repository.NewSystemConfigRepository(db), client,
		frontdeskService.TaxRatesFromConfig(cfg.Tax), cfg.Tax.CacheDuration(), nil)

	bookings := NewBookingHandler(frontdeskService.NewBookingService(deps), taxRates)
	folios := NewFolioHandler(frontdeskService.NewFolioService(deps), frontdeskService.NewCheckoutService(deps), taxRates)
	rooms := NewRoomHandler(frontdeskService.NewRoomService(deps), taxRates)
	tax := NewTaxHandler(taxRates)

	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(middleware.ContextKeyStaffID, int64(1))
		c.Set(middleware.ContextKeyStaffName, "desk")
		c.Set(middleware.ContextKeyRole, role)
		c.Next()
	})
	bookings.RegisterRoutes(api)
	folios.RegisterRoutes(api)
	rooms.RegisterRoutes(api)
	tax.RegisterRoutes(api)
	tax.RegisterManagerRoutes(api.Group("", middleware.RequireRoles(jwt.RoleManager)))
	return r
}

func call(t *testing.T, r http.Handler, method, path string, body interface{}) (int, envelope) {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w.Code, env
}

func decode(t *testing.T, env envelope, v interface{}) {
	t.Helper()
	require.Equal(t, 0, env.Code, env.Message)
	require.NoError(t, json.Unmarshal(env.Data, v))
}

func seedInventory(t *testing.T, r http.Handler, maxOccupancy int, roomNos ...string) int64 {
	t.Helper()
	_, env := call(t, r, http.MethodPost, "/api/v1/room-types", gin.H{
		"name": "Deluxe", "code": "dlx", "max_occupancy": maxOccupancy, "base_price": 2000,
	})
	var rt models.RoomType
	decode(t, env, &rt)
	assert.Equal(t, "DLX", rt.Code)

	for _, no := range roomNos {
		_, env := call(t, r, http.MethodPost, "/api/v1/rooms", gin.H{"room_type_id": rt.ID, "room_no": no, "floor": 1})
		require.Equal(t, 0, env.Code, env.Message)
	}
	return rt.ID
}

func TestBookingFlow_CreateCheckInCheckOut(t *testing.T) {
	r := setupRouter(t, jwt.RoleFrontDesk)
	roomTypeID := seedInventory(t, r, 3, "101")

	_, env := call(t, r, http.MethodGet,
		fmt.Sprintf("/api/v1/availability?room_type_id=%d&check_in=2026-11-01&check_out=2026-11-03", roomTypeID), nil)
	var available []models.Room
	decode(t, env, &available)
	require.Len(t, available, 1)

	_, env = call(t, r, http.MethodPost, "/api/v1/bookings", gin.H{
		"guest":          gin.H{"name": "Asha Rao", "phone": "9800000000"},
		"check_in_date":  "2026-11-01",
		"check_out_date": "2026-11-03",
		"lines":          []gin.H{{"room_type_id": roomTypeID, "room_count": 1, "adults": 2}},
		"advances":       []gin.H{{"amount": 1000, "method": "cash"}},
	})
	var detail frontdeskService.BookingDetail
	decode(t, env, &detail)
	require.Len(t, detail.Rooms, 1)
	assert.Equal(t, models.BookingStatusConfirmed, detail.Status)
	assert.InDelta(t, 5560, detail.Breakdown.TotalBillable, 0.001)
	assert.InDelta(t, 4560, detail.Breakdown.Outstanding, 0.001)

	_, env = call(t, r, http.MethodGet, "/api/v1/bookings/no/"+detail.BookingNo, nil)
	var byNo frontdeskService.BookingDetail
	decode(t, env, &byNo)
	assert.Equal(t, detail.ID, byNo.ID)

	_, env = call(t, r, http.MethodPost, fmt.Sprintf("/api/v1/booking-rooms/%d/check-in", detail.Rooms[0].ID), gin.H{
		"actual_check_in": "2026-11-01T15:00:00Z",
	})
	var checkedIn frontdeskService.BookingDetail
	decode(t, env, &checkedIn)
	assert.Equal(t, models.BookingStatusCheckedIn, checkedIn.Status)

	_, env = call(t, r, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/checkout", detail.ID), gin.H{
		"actual_checkout": "2026-11-03T12:30:00Z",
		"payment":         gin.H{"amount": 4560, "method": "card"},
	})
	var result frontdeskService.CheckoutResult
	decode(t, env, &result)
	assert.InDelta(t, 4560, result.FinalAmount, 0.001)
	assert.InDelta(t, 0, result.RemainingBalance, 0.001)
	assert.Equal(t, models.BookingStatusCheckedOut, result.BookingStatus)
	assert.Equal(t, models.CheckoutKindOnTime, result.Receipt.CheckoutKind)

	_, env = call(t, r, http.MethodGet, fmt.Sprintf("/api/v1/bookings/%d/breakdown", detail.ID), nil)
	var breakdown frontdeskService.PaymentBreakdown
	decode(t, env, &breakdown)
	assert.InDelta(t, 0, breakdown.Outstanding, 0.001)
	assert.InDelta(t, 5560, breakdown.TotalPaid, 0.001)
}

func TestCreateBooking_ErrorsCarryDetails(t *testing.T) {
	r := setupRouter(t, jwt.RoleFrontDesk)
	roomTypeID := seedInventory(t, r, 2, "201")

	_, env := call(t, r, http.MethodPost, "/api/v1/bookings", gin.H{
		"guest":          gin.H{"name": "Vik"},
		"check_in_date":  "2026-11-01",
		"check_out_date": "2026-11-02",
		"lines":          []gin.H{{"room_type_id": roomTypeID, "room_count": 1, "adults": 3}},
	})
	assert.Equal(t, errors.ErrCapacityExceeded.Code, env.Code)
	assert.NotEmpty(t, env.Data)

	_, env = call(t, r, http.MethodPost, "/api/v1/bookings", gin.H{
		"guest":          gin.H{"name": "Vik"},
		"check_in_date":  "2026-11-01",
		"check_out_date": "2026-11-02",
		"lines":          []gin.H{{"room_type_id": roomTypeID, "room_count": 2, "adults": 1}},
	})
	assert.Equal(t, errors.ErrInsufficientAvailability.Code, env.Code)

	_, env = call(t, r, http.MethodPost, "/api/v1/bookings", gin.H{
		"guest":          gin.H{"name": "Vik"},
		"check_in_date":  "01/11/2026",
		"check_out_date": "2026-11-02",
		"lines":          []gin.H{{"room_type_id": roomTypeID, "room_count": 1, "adults": 1}},
	})
	assert.Equal(t, errors.ErrInvalidParams.Code, env.Code)

	status, _ := call(t, r, http.MethodPost, "/api/v1/bookings", gin.H{"guest": gin.H{"name": "Vik"}})
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestCancelAndChargeViaHTTP(t *testing.T) {
	r := setupRouter(t, jwt.RoleFrontDesk)
	roomTypeID := seedInventory(t, r, 2, "301")

	_, env := call(t, r, http.MethodPost, "/api/v1/bookings", gin.H{
		"guest":          gin.H{"name": "Lena"},
		"check_in_date":  "2026-11-05",
		"check_out_date": "2026-11-06",
		"lines":          []gin.H{{"room_type_id": roomTypeID, "room_count": 1, "adults": 1}},
	})
	var detail frontdeskService.BookingDetail
	decode(t, env, &detail)

	_, env = call(t, r, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/charges", detail.ID), gin.H{
		"items": []gin.H{
			{"product_name": "Laundry", "quantity": 2, "rate": 50},
			{"product_name": "Tea", "quantity": 1, "rate": 20},
		},
	})
	var items []models.ChargeItem
	decode(t, env, &items)
	require.Len(t, items, 2)
	assert.InDelta(t, 100, items[0].TotalAmount, 0.001)
	assert.InDelta(t, 20, items[1].TotalAmount, 0.001)

	status, _ := call(t, r, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/charges", detail.ID), gin.H{"items": []gin.H{}})
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = call(t, r, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", detail.ID), gin.H{})
	assert.Equal(t, http.StatusBadRequest, status)

	_, env = call(t, r, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/cancel", detail.ID), gin.H{"reason": "plans changed"})
	var cancelled frontdeskService.BookingDetail
	decode(t, env, &cancelled)
	assert.Equal(t, models.BookingStatusCancelled, cancelled.Status)

	_, env = call(t, r, http.MethodPost, fmt.Sprintf("/api/v1/bookings/%d/payments", detail.ID), gin.H{"amount": 10, "method": "cash"})
	assert.Equal(t, errors.ErrInvalidTransition.Code, env.Code)

	_, env = call(t, r, http.MethodGet, "/api/v1/bookings/999", nil)
	assert.Equal(t, errors.ErrBookingNotFound.Code, env.Code)
}

func TestBlockRoomViaHTTP(t *testing.T) {
	r := setupRouter(t, jwt.RoleFrontDesk)
	seedInventory(t, r, 2, "401")

	_, env := call(t, r, http.MethodPost, "/api/v1/rooms/1/blocks", gin.H{
		"kind": "maintenance", "from_date": "2026-11-03", "to_date": "2026-11-01", "reason": "AC repair",
	})
	assert.Equal(t, errors.ErrInvalidDateRange.Code, env.Code)

	_, env = call(t, r, http.MethodPost, "/api/v1/rooms/1/blocks", gin.H{
		"kind": "maintenance", "from_date": "2026-11-01", "to_date": "2026-11-03", "reason": "AC repair",
	})
	var block models.RoomBlock
	decode(t, env, &block)
	assert.Equal(t, models.RoomBlockKindMaintenance, block.Kind)
}

func TestClampParty(t *testing.T) {
	r := setupRouter(t, jwt.RoleFrontDesk)

	_, env := call(t, r, http.MethodPost, "/api/v1/bookings/clamp-party", gin.H{
		"adults": 2, "children": 2, "extra_beds": 1, "max_occupancy": 3, "editing": "adults",
	})
	var party frontdeskService.Party
	decode(t, env, &party)
	assert.LessOrEqual(t, frontdeskService.EffectiveOccupancy(party), 3)
	assert.Equal(t, 2, party.Adults)
}

func TestTaxRatesAndQuote(t *testing.T) {
	r := setupRouter(t, jwt.RoleFrontDesk)

	_, env := call(t, r, http.MethodPost, "/api/v1/tax-rates/quote", gin.H{"rate": 2000, "nights": 2})
	var quote TaxQuote
	decode(t, env, &quote)
	assert.InDelta(t, 4000, quote.Subtotal, 0.001)
	assert.InDelta(t, 5560, quote.GrandTotal, 0.001)

	status, _ := call(t, r, http.MethodPut, "/api/v1/tax-rates", gin.H{"gst": 18})
	assert.Equal(t, http.StatusForbidden, status)

	manager := setupRouter(t, jwt.RoleManager)
	rates := frontdeskService.TaxRates{GST: 18, CGST: 9, SGST: 9, LuxuryTax: 0, ServiceCharge: 5}
	_, env = call(t, manager, http.MethodPut, "/api/v1/tax-rates", rates)
	require.Equal(t, 0, env.Code, env.Message)

	_, env = call(t, manager, http.MethodGet, "/api/v1/tax-rates", nil)
	var got frontdeskService.TaxRates
	decode(t, env, &got)
	assert.Equal(t, rates, got)
}
