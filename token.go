package linesight

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenExpiry reads the expiry claim from a JWT-shaped session token
// without verifying its signature. The token is owned and validated by the
// server; this is only a local hint for status displays ("session expires
// in ..."). Opaque tokens and tokens without an exp claim report false.
func TokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}

	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
