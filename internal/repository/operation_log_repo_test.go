// Package repository 操作日志仓储单元测试
package repository

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dumeirei/hotel-frontdesk/internal/models"
)

func TestOperationLogRepository_ListAndDelete(t *testing.T) {
	db := setupFrontDeskTestDB(t)
	repo := NewOperationLogRepository(db)
	ctx := context.Background()

	targetType := "booking"
	targetID := int64(42)
	logs := []*models.OperationLog{
		{StaffID: 1, Module: "frontdesk", Action: "create_booking", TargetType: &targetType, TargetID: &targetID, IP: "10.0.0.1", StatusCode: 200},
		{StaffID: 1, Module: "frontdesk", Action: "check_in", IP: "10.0.0.1", StatusCode: 200},
		{StaffID: 2, Module: "rooms", Action: "update_status", IP: "10.0.0.2", StatusCode: 400, Payload: models.JSON{"status": "blocked"}},
	}
	for _, l := range logs {
		require.NoError(t, repo.Create(ctx, l))
	}

	list, total, err := repo.List(ctx, 0, 10, &OperationLogFilters{StaffID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, "check_in", list[0].Action)

	list, total, err = repo.List(ctx, 0, 10, &OperationLogFilters{TargetType: "booking", TargetID: 42})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, "create_booking", list[0].Action)

	list, _, err = repo.List(ctx, 0, 10, &OperationLogFilters{Module: "rooms"})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "blocked", list[0].Payload["status"])

	deleted, err := repo.DeleteBefore(ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(3), deleted)
}
