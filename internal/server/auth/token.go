// Package auth contains token helpers: opaque bearer keys for the HTTP API
// and signed, short-lived password-reset tokens (HS256).
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/ekazakov/taskmate/internal/common"
)

// bearerKeySize is the number of random bytes per bearer key; the hex-encoded
// key is twice as long.
const bearerKeySize = 20

// resetSubject marks a JWT as a password-reset token so it cannot be replayed
// for any other purpose.
const resetSubject = "password_reset"

// Claims carries the registered claims plus the user reference for
// password-reset tokens.
type Claims struct {
	jwt.RegisteredClaims
	UserID int64 `json:"uid"`
}

// NewBearerKey generates an opaque random key for the Authorization header.
func NewBearerKey() (string, error) {
	return common.MakeRandHexString(bearerKeySize)
}

// GenerateResetToken mints a signed reset token for userID valid for the
// given duration.
func GenerateResetToken(userID int64, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   resetSubject,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		UserID: userID,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// GetUserIDFromResetToken verifies signature, expiry, and subject, and returns
// the user id the token was minted for.
func GetUserIDFromResetToken(tokenString string, secretKey []byte) (int64, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return 0, common.ErrTokenExpired
		}
		return 0, common.ErrInvalidToken
	}

	if !token.Valid || claims.Subject != resetSubject {
		return 0, common.ErrInvalidToken
	}

	return claims.UserID, nil
}
