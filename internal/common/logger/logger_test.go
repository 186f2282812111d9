// Package logger 日志模块单元测试
package logger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dumeirei/hotel-frontdesk/internal/common/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func initFileLogger(t *testing.T, level string) string {
	t.Helper()
	logFile := filepath.Join(t.TempDir(), "app.log")
	err := Init(&config.LoggerConfig{
		Level:    level,
		Format:   "json",
		Output:   "file",
		FilePath: logFile,
	})
	require.NoError(t, err)
	return logFile
}

func readEntries(t *testing.T, path string) []map[string]interface{} {
	t.Helper()
	_ = Sync()
	content, err := os.ReadFile(path)
	require.NoError(t, err)

	var entries []map[string]interface{}
	for _, line := range strings.Split(strings.TrimSpace(string(content)), "\n") {
		if line == "" {
			continue
		}
		var entry map[string]interface{}
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries = append(entries, entry)
	}
	return entries
}

func TestInit_ConsoleFormat(t *testing.T) {
	err := Init(&config.LoggerConfig{Level: "debug", Format: "console", Output: "stdout", Caller: true})
	assert.NoError(t, err)
	assert.NotNil(t, GetLogger())
	assert.NotNil(t, GetSugar())
}

func TestGetLogLevel(t *testing.T) {
	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
		{"", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.level, func(t *testing.T) {
			assert.Equal(t, tt.want, getLogLevel(tt.level))
		})
	}
}

// ==================== 前台字段测试 ====================

func TestFrontDeskFields(t *testing.T) {
	logFile := initFileLogger(t, "info")

	Info("booking created",
		BookingID(42),
		BookingNo("BK20261016120000123456"),
		RoomID(7),
		RoomTypeID(3),
		StaffID(11),
		Amount(5560),
		RequestID("req-1"),
		Module("frontdesk"),
		Action("create_booking"),
	)

	entries := readEntries(t, logFile)
	require.Len(t, entries, 1)
	e := entries[0]
	assert.Equal(t, "booking created", e["msg"])
	assert.Equal(t, float64(42), e["booking_id"])
	assert.Equal(t, "BK20261016120000123456", e["booking_no"])
	assert.Equal(t, float64(7), e["room_id"])
	assert.Equal(t, float64(3), e["room_type_id"])
	assert.Equal(t, float64(11), e["staff_id"])
	assert.Equal(t, float64(5560), e["amount"])
	assert.Equal(t, "req-1", e["request_id"])
	assert.Equal(t, "frontdesk", e["module"])
	assert.Equal(t, "create_booking", e["action"])
	assert.Contains(t, e, "time")
}

func TestLogLevelFiltering(t *testing.T) {
	logFile := initFileLogger(t, "warn")

	Debug("debug message")
	Info("info message")
	Warn("warn message")
	Errorf("error %s", "message")

	var msgs []string
	for _, e := range readEntries(t, logFile) {
		msgs = append(msgs, e["msg"].(string))
	}
	assert.Equal(t, []string{"warn message", "error message"}, msgs)
}

func TestWithAndNamed(t *testing.T) {
	logFile := initFileLogger(t, "debug")

	With(BookingID(9)).Named("checkout").Info("settled")
	WithFields("room_id", 5).Infow("released")

	entries := readEntries(t, logFile)
	require.Len(t, entries, 2)
	assert.Equal(t, float64(9), entries[0]["booking_id"])
	assert.Equal(t, "checkout", entries[0]["logger"])
	assert.Equal(t, float64(5), entries[1]["room_id"])
}
