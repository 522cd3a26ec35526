package auth

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

func signedToken(t *testing.T, claims jwt.Claims) string {
	t.Helper()
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("server-side-secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return token
}

func TestTokenExpiryReadsExpClaim(t *testing.T) {
	exp := time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)
	token := signedToken(t, jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(exp)})

	got, ok := TokenExpiry(token)
	if !ok {
		t.Fatalf("expected expiry")
	}
	if !got.Equal(exp) {
		t.Fatalf("expiry = %v, want %v", got, exp)
	}
	if TokenExpired(token, exp.Add(-time.Minute)) {
		t.Fatalf("token should be valid before exp")
	}
	if !TokenExpired(token, exp) {
		t.Fatalf("token should be expired at exp")
	}
}

func TestTokenExpiredIgnoresOpaqueAndMissingExp(t *testing.T) {
	if TokenExpired("opaque-session-token", time.Now()) {
		t.Fatalf("opaque token should not be treated as expired")
	}
	if TokenExpired("", time.Now()) {
		t.Fatalf("empty token should not be treated as expired")
	}
	noExp := signedToken(t, jwt.RegisteredClaims{Subject: "u1"})
	if TokenExpired(noExp, time.Now().Add(100*365*24*time.Hour)) {
		t.Fatalf("token without exp should not expire")
	}
}

func TestTokenSubjectFallsBackToIDClaim(t *testing.T) {
	if got := TokenSubject(signedToken(t, jwt.RegisteredClaims{Subject: "u1"})); got != "u1" {
		t.Fatalf("subject = %q", got)
	}
	if got := TokenSubject(signedToken(t, jwt.MapClaims{"id": "u2"})); got != "u2" {
		t.Fatalf("id claim = %q", got)
	}
	if got := TokenSubject("garbage"); got != "" {
		t.Fatalf("expected empty subject, got %q", got)
	}
}
