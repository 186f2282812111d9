// Package jwt JWT令牌管理单元测试
package jwt

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestManager() *Manager {
	return NewManager(&Config{
		Secret:           "test-secret-key-for-jwt-token-signing",
		AccessExpireTime: 15 * time.Minute,
		Issuer:           "test-issuer",
	})
}

func TestManager_GenerateAndParse(t *testing.T) {
	manager := setupTestManager()

	tests := []struct {
		name    string
		staffID int64
		staff   string
		role    string
	}{
		{"前台", 12, "Meera", RoleFrontDesk},
		{"经理", 3, "Vikram", RoleManager},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, expiresAt, err := manager.GenerateToken(tt.staffID, tt.staff, tt.role)
			require.NoError(t, err)
			assert.Greater(t, expiresAt, time.Now().Unix())

			claims, err := manager.ParseToken(token)
			require.NoError(t, err)
			assert.Equal(t, tt.staffID, claims.StaffID)
			assert.Equal(t, tt.staff, claims.StaffName)
			assert.Equal(t, tt.role, claims.Role)
			assert.Equal(t, "test-issuer", claims.Issuer)
		})
	}
}

func TestManager_ParseToken_Errors(t *testing.T) {
	manager := setupTestManager()

	expired := NewManager(&Config{Secret: "test-secret-key-for-jwt-token-signing", AccessExpireTime: -time.Minute})
	expiredToken, _, err := expired.GenerateToken(1, "a", RoleFrontDesk)
	require.NoError(t, err)
	_, err = manager.ParseToken(expiredToken)
	assert.ErrorIs(t, err, ErrTokenExpired)

	_, err = manager.ParseToken("not-a-token")
	assert.ErrorIs(t, err, ErrTokenMalformed)

	other := NewManager(&Config{Secret: "another-secret", AccessExpireTime: time.Minute})
	otherToken, _, err := other.GenerateToken(1, "a", RoleFrontDesk)
	require.NoError(t, err)
	_, err = manager.ParseToken(otherToken)
	assert.ErrorIs(t, err, ErrTokenInvalid)

	// 无员工 ID 的令牌
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, &Claims{Role: RoleManager})
	signed, err := token.SignedString([]byte("test-secret-key-for-jwt-token-signing"))
	require.NoError(t, err)
	_, err = manager.ParseToken(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestManager_RejectsNoneAlgorithm(t *testing.T) {
	manager := setupTestManager()
	token := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{StaffID: 1})
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = manager.ParseToken(signed)
	assert.ErrorIs(t, err, ErrTokenInvalid)
	assert.Equal(t, 2, strings.Count(signed, "."))
}
