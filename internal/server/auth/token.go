// Package auth issues and verifies the signed session tokens handed to
// clients. The token carries only the opaque session id; everything else
// lives in the session row.
package auth

import (
	"time"

	"github.com/enrollhub/admitd/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims includes the registered claims plus the session identifier.
type Claims struct {
	jwt.RegisteredClaims
	SessionID string `json:"sid"`
}

// GenerateToken signs sessionID into an HS256 token expiring after
// validityDuration. The secret is supplied by configuration at startup,
// never compiled into the binary.
func GenerateToken(sessionID string, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
		},
		SessionID: sessionID,
	})
	return token.SignedString(secretKey)
}

// SessionIDFromToken verifies the token signature and returns the embedded
// session id. Any parse or signature failure yields ErrInvalidToken.
func SessionIDFromToken(tokenString string, secretKey []byte) (string, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	})
	if err != nil {
		return "", common.ErrInvalidToken
	}
	if !token.Valid || claims.SessionID == "" {
		return "", common.ErrInvalidToken
	}

	return claims.SessionID, nil
}
