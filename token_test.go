package linesight

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func TestTokenExpiryFromJWT(t *testing.T) {
	exp := time.Date(2026, 3, 2, 18, 30, 0, 0, time.UTC)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	signed, err := token.SignedString([]byte("server-side-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	got, ok := TokenExpiry(signed)
	if !ok {
		t.Fatal("expiry not extracted from a JWT with exp")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
}

func TestTokenExpiryWithoutExpClaim(t *testing.T) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{Subject: "u1"})
	signed, err := token.SignedString([]byte("server-side-secret"))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}

	if _, ok := TokenExpiry(signed); ok {
		t.Fatal("token without exp reported an expiry")
	}
}

func TestTokenExpiryOpaqueToken(t *testing.T) {
	for _, tok := range []string{"", "opaque-session-id", "a.b", "not.a.jwt"} {
		if _, ok := TokenExpiry(tok); ok {
			t.Fatalf("opaque token %q reported an expiry", tok)
		}
	}
}
