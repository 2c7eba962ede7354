package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekazakov/taskmate/internal/common"
)

func TestNewBearerKey(t *testing.T) {
	k1, err := NewBearerKey()
	require.NoError(t, err)
	assert.Len(t, k1, 40)

	k2, err := NewBearerKey()
	require.NoError(t, err)
	assert.NotEqual(t, k1, k2)
}

func TestResetToken_RoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateResetToken(42, secret, time.Hour)
	require.NoError(t, err)

	userID, err := GetUserIDFromResetToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, int64(42), userID)
}

func TestResetToken_Expired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := GenerateResetToken(42, secret, -time.Minute)
	require.NoError(t, err)

	_, err = GetUserIDFromResetToken(token, secret)
	require.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestResetToken_WrongSecret(t *testing.T) {
	token, err := GenerateResetToken(42, []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = GetUserIDFromResetToken(token, []byte("secret-b"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestResetToken_Garbage(t *testing.T) {
	_, err := GetUserIDFromResetToken("not-a-token", []byte("secret"))
	require.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestResetToken_WrongSubjectRejected(t *testing.T) {
	secret := []byte("test-secret")

	// A token with a different subject must not pass as a reset token even
	// with a valid signature.
	other := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "email_verify",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		UserID: 42,
	})
	signed, err := other.SignedString(secret)
	require.NoError(t, err)

	_, err = GetUserIDFromResetToken(signed, secret)
	require.ErrorIs(t, err, common.ErrInvalidToken)
}
