package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidateAccessToken(t *testing.T) {
	cfg := DefaultConfig("test-secret")

	token, err := GenerateToken("user-1", "a@b.c", "admin", cfg)
	require.NoError(t, err)

	claims, err := ValidateAccessToken(token, "test-secret")
	require.NoError(t, err)
	require.Equal(t, "user-1", claims.UserID)
	require.Equal(t, "admin", claims.Role)
	require.Equal(t, "user-1", claims.Subject)
}

func TestTokenTypesAreNotInterchangeable(t *testing.T) {
	cfg := DefaultConfig("test-secret")

	access, refresh, err := GenerateTokenPair("user-1", "a@b.c", "user", cfg)
	require.NoError(t, err)

	_, err = ValidateRefreshToken(access, "test-secret")
	require.ErrorIs(t, err, ErrWrongTokenType)

	_, err = ValidateAccessToken(refresh, "test-secret")
	require.ErrorIs(t, err, ErrWrongTokenType)

	claims, err := ValidateRefreshToken(refresh, "test-secret")
	require.NoError(t, err)
	require.Empty(t, claims.Role)
}

func TestValidateToken_WrongSecretAndExpiry(t *testing.T) {
	cfg := DefaultConfig("test-secret")
	token, err := GenerateToken("user-1", "a@b.c", "user", cfg)
	require.NoError(t, err)

	_, err = ValidateToken(token, "other-secret")
	require.Error(t, err)

	cfg.AccessExpiry = -time.Minute
	expired, err := GenerateToken("user-1", "a@b.c", "user", cfg)
	require.NoError(t, err)
	_, err = ValidateToken(expired, "test-secret")
	require.Error(t, err)
}

func TestNewConfigHours(t *testing.T) {
	cfg := NewConfig("s", 2, 0)
	require.Equal(t, 2*time.Hour, cfg.AccessExpiry)
	require.Equal(t, 7*24*time.Hour, cfg.RefreshExpiry)
}
