package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParseToken(t *testing.T) {
	maker := NewJWTMaker("test-secret-key", 15*time.Minute, 24*time.Hour)

	token, err := maker.GenerateToken("user@example.com", "user", "uid-123", false)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", claims.Email)
	assert.Equal(t, "user", claims.Role)
	assert.Equal(t, "uid-123", claims.UserUID)
	assert.False(t, claims.IsStaff)
	assert.Equal(t, "access", claims.TokenType)
}

func TestGenerateRefreshToken(t *testing.T) {
	maker := NewJWTMaker("test-secret-key", 15*time.Minute, 24*time.Hour)

	token, err := maker.GenerateRefreshToken("mod@example.com", "moderator", "uid-456", true)
	require.NoError(t, err)

	claims, err := maker.ParseToken(token)
	require.NoError(t, err)
	assert.Equal(t, "refresh", claims.TokenType)
	assert.Equal(t, "moderator", claims.Role)
	assert.True(t, claims.IsStaff)
}

func TestParseTokenErrors(t *testing.T) {
	maker := NewJWTMaker("test-secret-key", 15*time.Minute, 24*time.Hour)

	t.Run("мусор вместо токена", func(t *testing.T) {
		_, err := maker.ParseToken("not-a-jwt")
		assert.Error(t, err)
	})

	t.Run("токен подписан другим ключом", func(t *testing.T) {
		other := NewJWTMaker("another-secret", 15*time.Minute, 24*time.Hour)
		token, err := other.GenerateToken("user@example.com", "user", "uid-123", false)
		require.NoError(t, err)

		_, err = maker.ParseToken(token)
		assert.Error(t, err)
	})

	t.Run("просроченный токен", func(t *testing.T) {
		expired := NewJWTMaker("test-secret-key", -time.Minute, 24*time.Hour)
		token, err := expired.GenerateToken("user@example.com", "user", "uid-123", false)
		require.NoError(t, err)

		_, err = maker.ParseToken(token)
		assert.Error(t, err)
	})
}
