// internal/pkg/auth/jwt_test.go
package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/your-org/easystock-backend/internal/config"
	"github.com/your-org/easystock-backend/internal/pkg/apperror"
)

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.App.Name = "easystock-test"
	cfg.JWT.Secret = "test-secret-test-secret-test-secret-xx"
	cfg.JWT.AccessTokenExpiry = time.Hour
	cfg.JWT.RefreshTokenExpiry = 24 * time.Hour
	return cfg
}

func TestAccessTokenRoundTrip(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	token, err := mgr.GenerateAccessToken(42, "owner@example.com", true)
	require.NoError(t, err)

	claims, err := mgr.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.Equal(t, "owner@example.com", claims.Email)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "access", claims.TokenType)
}

func TestRefreshTokenNeverCarriesAdmin(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	token, err := mgr.GenerateRefreshToken(42, "owner@example.com")
	require.NoError(t, err)

	claims, err := mgr.ValidateRefreshToken(token)
	require.NoError(t, err)
	assert.False(t, claims.IsAdmin)
	assert.Equal(t, "refresh", claims.TokenType)
}

func TestTokenTypeMismatchRejected(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	access, err := mgr.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)
	refresh, err := mgr.GenerateRefreshToken(1, "a@example.com")
	require.NoError(t, err)

	_, err = mgr.ValidateRefreshToken(access)
	assert.Error(t, err)

	_, err = mgr.ValidateAccessToken(refresh)
	assert.Error(t, err)
}

func TestExpiredTokenReportsAuthExpired(t *testing.T) {
	cfg := testConfig()
	cfg.JWT.AccessTokenExpiry = -time.Minute
	cfg.JWT.RefreshTokenExpiry = -time.Minute
	mgr := NewJWTManager(cfg)

	access, err := mgr.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)
	_, err = mgr.ValidateAccessToken(access)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthExpired))

	refresh, err := mgr.GenerateRefreshToken(1, "a@example.com")
	require.NoError(t, err)
	_, err = mgr.ValidateRefreshToken(refresh)
	assert.True(t, apperror.IsKind(err, apperror.KindAuthExpired))
	assert.EqualError(t, err, "refresh token expired, please log in again")
}

func TestTamperedTokenRejected(t *testing.T) {
	mgr := NewJWTManager(testConfig())

	token, err := mgr.GenerateAccessToken(1, "a@example.com", false)
	require.NoError(t, err)

	otherCfg := testConfig()
	otherCfg.JWT.Secret = "another-secret-another-secret-another-xx"
	other := NewJWTManager(otherCfg)

	_, err = other.ValidateAccessToken(token)
	assert.Error(t, err)
	assert.False(t, apperror.IsKind(err, apperror.KindAuthExpired))
}

func TestExtractTokenFromHeader(t *testing.T) {
	assert.Equal(t, "abc.def.ghi", ExtractTokenFromHeader("Bearer abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader("abc.def.ghi"))
	assert.Empty(t, ExtractTokenFromHeader(""))
	assert.Empty(t, ExtractTokenFromHeader("Bearer "))
}
