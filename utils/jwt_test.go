package utils

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vnkhanh/form-builder/config"
)

func withSecret(t *testing.T, secret string, ttl time.Duration) {
	t.Helper()
	prev := config.App
	config.App.JWTSecret = secret
	config.App.JWTTTL = ttl
	t.Cleanup(func() { config.App = prev })
}

func TestGenerateAndVerifyToken(t *testing.T) {
	withSecret(t, "unit-secret", time.Hour)

	token, err := GenerateToken(42)
	require.NoError(t, err)

	uid, err := VerifyToken(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), uid)
}

func TestVerifyTokenRejects(t *testing.T) {
	withSecret(t, "unit-secret", time.Hour)

	t.Run("other secret", func(t *testing.T) {
		forged := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{UserID: "1"})
		s, err := forged.SignedString([]byte("someone-else"))
		require.NoError(t, err)

		_, err = VerifyToken(s)
		assert.Error(t, err)
	})

	t.Run("expired", func(t *testing.T) {
		config.App.JWTTTL = -time.Minute
		token, err := GenerateToken(1)
		config.App.JWTTTL = time.Hour
		require.NoError(t, err)

		_, err = VerifyToken(token)
		assert.ErrorIs(t, err, jwt.ErrTokenExpired)
	})

	t.Run("wrong algorithm", func(t *testing.T) {
		none := jwt.NewWithClaims(jwt.SigningMethodNone, JWTClaims{UserID: "1"})
		s, err := none.SignedString(jwt.UnsafeAllowNoneSignatureType)
		require.NoError(t, err)

		_, err = VerifyToken(s)
		assert.Error(t, err)
	})

	t.Run("non-numeric user id", func(t *testing.T) {
		bad := jwt.NewWithClaims(jwt.SigningMethodHS256, JWTClaims{UserID: "abc"})
		s, err := bad.SignedString([]byte("unit-secret"))
		require.NoError(t, err)

		_, err = VerifyToken(s)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("garbage", func(t *testing.T) {
		_, err := VerifyToken("a.b.c")
		assert.Error(t, err)
	})
}

func TestTokenNeedsSecret(t *testing.T) {
	withSecret(t, "", time.Hour)

	_, err := GenerateToken(1)
	assert.ErrorIs(t, err, ErrMissingSecret)

	_, err = VerifyToken("whatever")
	assert.ErrorIs(t, err, ErrMissingSecret)
}

func TestPassword(t *testing.T) {
	hash, err := HashPassword("hunter22")
	require.NoError(t, err)
	assert.NotEqual(t, "hunter22", hash)

	assert.True(t, CheckPassword(hash, "hunter22"))
	assert.False(t, CheckPassword(hash, "hunter23"))
	assert.False(t, CheckPassword("", "hunter22"))
}
