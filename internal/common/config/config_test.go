// Package config 配置管理单元测试
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ==================== Load 测试 ====================

func TestLoad_WithDefaultValues(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, "hotel-frontdesk", cfg.Server.Name)
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "localhost", cfg.Database.Host)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "localhost", cfg.Redis.Host)
	assert.Equal(t, 6379, cfg.Redis.Port)
}

func TestLoad_WithConfigFile(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "test_config.yaml")

	configContent := `
server:
  name: "test-server"
  mode: "release"
  port: 9000
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	// sync.Once 只执行一次，这里只验证不返回错误
	cfg, err := Load(configPath)
	require.NoError(t, err)
	require.NotNil(t, cfg)
}

// ==================== Get / Default 测试 ====================

func TestGet_ReturnsSameInstance(t *testing.T) {
	cfg1 := Get()
	cfg2 := Get()
	assert.Same(t, cfg1, cfg2)
}

func TestDefault_IgnoresGlobal(t *testing.T) {
	cfg := Default()
	require.NotNil(t, cfg)
	assert.Equal(t, "hotel-frontdesk", cfg.Server.Name)
	assert.NotSame(t, cfg, Default())
}

// ==================== DatabaseConfig 测试 ====================

func TestDatabaseConfig_DSN(t *testing.T) {
	tests := []struct {
		name   string
		config DatabaseConfig
		want   string
	}{
		{
			name: "本地数据库",
			config: DatabaseConfig{
				Host:     "localhost",
				Port:     5432,
				User:     "postgres",
				Password: "secret",
				Name:     "frontdesk",
				SSLMode:  "disable",
				Timezone: "Asia/Kolkata",
			},
			want: "host=localhost port=5432 user=postgres password=secret dbname=frontdesk sslmode=disable TimeZone=Asia/Kolkata",
		},
		{
			name: "远程数据库",
			config: DatabaseConfig{
				Host:     "db.example.com",
				Port:     5433,
				User:     "admin",
				Password: "p@ssw0rd",
				Name:     "production",
				SSLMode:  "require",
				Timezone: "UTC",
			},
			want: "host=db.example.com port=5433 user=admin password=p@ssw0rd dbname=production sslmode=require TimeZone=UTC",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.DSN())
		})
	}
}

// ==================== RedisConfig 测试 ====================

func TestRedisConfig_Addr(t *testing.T) {
	tests := []struct {
		name   string
		config RedisConfig
		want   string
	}{
		{"本地", RedisConfig{Host: "localhost", Port: 6379}, "localhost:6379"},
		{"远程", RedisConfig{Host: "redis.example.com", Port: 6380}, "redis.example.com:6380"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.config.Addr())
		})
	}
}

// ==================== 时长换算测试 ====================

func TestJWTConfig_AccessTokenDuration(t *testing.T) {
	cfg := JWTConfig{AccessTokenExpire: 12}
	assert.Equal(t, 12*time.Hour, cfg.AccessTokenDuration())
}

func TestAllocationConfig_Durations(t *testing.T) {
	cfg := AllocationConfig{LockTTL: 10, LockWait: 250}
	assert.Equal(t, 10*time.Second, cfg.LockTTLDuration())
	assert.Equal(t, 250*time.Millisecond, cfg.LockWaitDuration())
}

func TestTaxConfig_CacheDuration(t *testing.T) {
	cfg := TaxConfig{CacheTTL: 300}
	assert.Equal(t, 5*time.Minute, cfg.CacheDuration())
}

// ==================== Config 模式测试 ====================

func TestConfig_Mode(t *testing.T) {
	tests := []struct {
		mode    string
		debug   bool
		release bool
	}{
		{"debug", true, false},
		{"release", false, true},
		{"test", false, false},
		{"", false, false},
	}

	for _, tt := range tests {
		t.Run("mode="+tt.mode, func(t *testing.T) {
			cfg := &Config{Server: ServerConfig{Mode: tt.mode}}
			assert.Equal(t, tt.debug, cfg.IsDebug())
			assert.Equal(t, tt.release, cfg.IsRelease())
		})
	}
}

// ==================== 前台业务配置测试 ====================

func TestFrontDeskConfig_Defaults(t *testing.T) {
	fd := Default().Business.FrontDesk

	// 税率
	assert.Equal(t, 12.0, fd.Tax.GST)
	assert.Equal(t, 6.0, fd.Tax.CGST)
	assert.Equal(t, 6.0, fd.Tax.SGST)
	assert.Equal(t, 5.0, fd.Tax.LuxuryTax)
	assert.Equal(t, 10.0, fd.Tax.ServiceCharge)
	assert.Equal(t, 300, fd.Tax.CacheTTL)

	// 退房
	assert.Equal(t, 60, fd.Checkout.GraceMinutes)
	assert.Equal(t, 100.0, fd.Checkout.LateFeePerHour)
	assert.Equal(t, 500.0, fd.Checkout.LateFeeCap)
	assert.Equal(t, 0, fd.Checkout.EarlyToleranceMinutes)

	// 分房
	assert.Equal(t, 10, fd.Allocation.LockTTL)
	assert.Equal(t, 3000, fd.Allocation.LockWait)
	assert.Equal(t, 1, fd.Allocation.ConflictRetries)

	assert.Equal(t, 14, fd.CheckInHour)
	assert.Equal(t, 12, fd.CheckOutHour)
}

func TestConfig_AllFieldsPopulated(t *testing.T) {
	cfg := Default()

	assert.NotEmpty(t, cfg.Server.Name)
	assert.NotZero(t, cfg.Server.Port)
	assert.NotEmpty(t, cfg.Database.Driver)
	assert.NotEmpty(t, cfg.Redis.Host)
	assert.NotEmpty(t, cfg.JWT.Secret)
	assert.NotZero(t, cfg.JWT.AccessTokenExpire)
	assert.NotEmpty(t, cfg.Logger.Level)
	assert.Equal(t, "hotel_frontdesk", cfg.Metrics.Namespace)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.False(t, cfg.Tracing.Enabled)
	assert.Equal(t, "hotel-frontdesk", cfg.Tracing.ServiceName)
	assert.Contains(t, cfg.CORS.AllowedHeaders, "Authorization")
	assert.Equal(t, 86400, cfg.CORS.MaxAge)
}
