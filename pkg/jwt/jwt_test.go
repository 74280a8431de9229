package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate_Success(t *testing.T) {
	t.Parallel()

	j := NewJWT([]byte("super-secret"), time.Hour)

	tok, err := j.GenerateToken("user-123", "alice", false)
	require.NoError(t, err)

	claims, err := j.ValidateToken(tok)
	require.NoError(t, err)
	assert.Equal(t, "user-123", claims.UserID)
	assert.Equal(t, "alice", claims.Username)
	assert.False(t, claims.IsAdmin)
}

func TestValidateToken_Expired(t *testing.T) {
	t.Parallel()

	j := NewJWT([]byte("secret"), -1*time.Second)

	tok, err := j.GenerateToken("u1", "bob", false)
	require.NoError(t, err)

	_, err = j.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestValidateToken_WrongSecret(t *testing.T) {
	t.Parallel()

	right := NewJWT([]byte("right-secret"), time.Hour)
	wrong := NewJWT([]byte("wrong-secret"), time.Hour)

	tok, err := right.GenerateToken("u2", "carol", true)
	require.NoError(t, err)

	_, err = wrong.ValidateToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestValidateToken_Malformed(t *testing.T) {
	t.Parallel()

	j := NewJWT([]byte("k"), time.Hour)
	_, err := j.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
