package handler

import (
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk/internal/common/errors"
	"github.com/dumeirei/hotel-frontdesk/internal/common/response"
	"github.com/dumeirei/hotel-frontdesk/internal/middleware"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func createTestContext(target string) (*gin.Context, *httptest.ResponseRecorder) {
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, target, nil)
	return c, w
}

func parseResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()
	var resp response.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// ============================================================================
// 错误处理测试
// ============================================================================

func TestHandleError_NilError(t *testing.T) {
	c, w := createTestContext("/")

	assert.False(t, HandleError(c, nil))
	assert.Zero(t, w.Body.Len())
}

func TestHandleError_AppError(t *testing.T) {
	c, w := createTestContext("/")

	assert.True(t, HandleError(c, errors.ErrBookingNotFound))

	assert.Equal(t, http.StatusOK, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, errors.ErrBookingNotFound.Code, resp.Code)
	assert.Equal(t, errors.ErrBookingNotFound.Message, resp.Message)
	assert.Nil(t, resp.Data)
}

func TestHandleError_AppErrorDetails(t *testing.T) {
	c, w := createTestContext("/")

	err := errors.ErrCapacityExceeded.WithDetail("line", 2).WithDetail("max_occupancy", 3)
	assert.True(t, HandleError(c, err))

	resp := parseResponse(t, w)
	assert.Equal(t, errors.ErrCapacityExceeded.Code, resp.Code)
	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(2), data["line"])
	assert.Equal(t, float64(3), data["max_occupancy"])
}

func TestHandleError_GenericErrorHidden(t *testing.T) {
	c, w := createTestContext("/")

	assert.True(t, HandleError(c, stderrors.New("pq: connection refused")))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	resp := parseResponse(t, w)
	assert.Equal(t, "服务器内部错误", resp.Message)
	assert.NotContains(t, w.Body.String(), "connection refused")
}

func TestMustSucceed(t *testing.T) {
	c, w := createTestContext("/")
	MustSucceed(c, nil, gin.H{"ok": true})
	assert.Equal(t, 0, parseResponse(t, w).Code)

	c, w = createTestContext("/")
	MustSucceed(c, errors.ErrRoomNotFound, gin.H{"ok": true})
	assert.Equal(t, errors.ErrRoomNotFound.Code, parseResponse(t, w).Code)
}

func TestMustSucceedPage(t *testing.T) {
	c, w := createTestContext("/")

	MustSucceedPage(c, nil, []int{1}, 11, 2, 10)

	data, ok := parseResponse(t, w).Data.(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, float64(11), data["total"])
}

// ============================================================================
// 员工身份测试
// ============================================================================

func TestRequireStaff(t *testing.T) {
	c, _ := createTestContext("/")
	c.Set(middleware.ContextKeyStaffID, int64(5))
	c.Set(middleware.ContextKeyStaffName, "Ravi")

	staffID, name, ok := RequireStaff(c)

	assert.True(t, ok)
	assert.Equal(t, int64(5), staffID)
	assert.Equal(t, "Ravi", name)
}

func TestRequireStaff_NotAuthenticated(t *testing.T) {
	c, w := createTestContext("/")

	_, _, ok := RequireStaff(c)

	assert.False(t, ok)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "请先登录", parseResponse(t, w).Message)
}

// ============================================================================
// 参数解析测试
// ============================================================================

func TestParseID(t *testing.T) {
	tests := []struct {
		value string
		want  int64
		ok    bool
	}{
		{"12345", 12345, true},
		{"invalid", 0, false},
		{"0", 0, false},
		{"-3", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			c, w := createTestContext("/")
			c.Params = gin.Params{{Key: "id", Value: tt.value}}

			id, ok := ParseID(c, "预订")

			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, id)
			if !ok {
				assert.Equal(t, http.StatusBadRequest, w.Code)
				assert.Equal(t, "无效的预订ID", parseResponse(t, w).Message)
			}
		})
	}
}

func TestParseQueryID(t *testing.T) {
	c, _ := createTestContext("/")
	id, ok := ParseQueryID(c, "room_type_id", "房型")
	assert.True(t, ok)
	assert.Zero(t, id)

	c, _ = createTestContext("/?room_type_id=7")
	id, ok = ParseQueryID(c, "room_type_id", "房型")
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)

	c, w := createTestContext("/?room_type_id=x")
	_, ok = ParseQueryID(c, "room_type_id", "房型")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2026-11-03")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 11, 3, 0, 0, 0, 0, time.UTC), d)

	_, err = ParseDate("03/11/2026")
	assert.True(t, stderrors.Is(err, errors.ErrInvalidParams))
}

func TestParseDateTime_MultipleFormats(t *testing.T) {
	want := time.Date(2026, 11, 3, 14, 30, 0, 0, time.UTC)
	for _, s := range []string{"2026-11-03T14:30:00Z", "2026-11-03T20:00:00+05:30", "2026-11-03 14:30:00", "2026-11-03T14:30:00"} {
		got, err := ParseDateTime(s)
		require.NoError(t, err, s)
		assert.True(t, want.Equal(got), s)
	}

	_, err := ParseDateTime("tomorrow")
	assert.Error(t, err)

	zero, err := ParseOptionalDateTime("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())
}

func TestParseQueryDate(t *testing.T) {
	c, _ := createTestContext("/?check_in=2026-11-01")
	d, ok := ParseQueryDate(c, "check_in")
	assert.True(t, ok)
	assert.Equal(t, 1, d.Day())

	c, w := createTestContext("/")
	_, ok = ParseQueryDate(c, "check_in")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	c, w = createTestContext("/?check_in=bad")
	_, ok = ParseQueryDate(c, "check_in")
	assert.False(t, ok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// ============================================================================
// 分页测试
// ============================================================================

func TestBindPagination(t *testing.T) {
	tests := []struct {
		query          string
		page, pageSize int
		offset         int
	}{
		{"", 1, 10, 0},
		{"page=3&page_size=20", 3, 20, 40},
		{"page=-1&page_size=200", 1, 100, 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			c, _ := createTestContext("/?" + tt.query)

			p := BindPagination(c)

			assert.Equal(t, tt.page, p.Page)
			assert.Equal(t, tt.pageSize, p.PageSize)
			assert.Equal(t, tt.offset, p.GetOffset())
		})
	}
}
