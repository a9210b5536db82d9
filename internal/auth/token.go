package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken means the session token failed verification.
var ErrInvalidToken = errors.New("invalid session token")

// sessionClaims are the claims carried by a provider-issued session
// token. The subject is the caller's external identity.
type sessionClaims struct {
	jwt.RegisteredClaims
}

// ParseSessionToken verifies tokenString against secret and returns the
// external id from the subject claim.
func ParseSessionToken(tokenString string, secret []byte) (string, error) {
	claims := &sessionClaims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	if !token.Valid || claims.Subject == "" {
		return "", ErrInvalidToken
	}

	return claims.Subject, nil
}
