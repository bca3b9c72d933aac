package helpers

import (
	"testing"
	"time"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	token, exp, err := m.GenerateAccessToken(42, "a@x.com", "sid-1")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if !exp.After(time.Now()) {
		t.Fatal("expiry must be in the future")
	}

	claims, err := m.ParseAccessToken(token)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	if claims.UserID != 42 || claims.Email != "a@x.com" || claims.SessionID != "sid-1" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestExtractEmail(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	token, _, err := m.GenerateAccessToken(1, "a@x.com", "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	email, err := m.ExtractEmail(token)
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if email != "a@x.com" {
		t.Fatalf("expected a@x.com, got %q", email)
	}

	if _, err := m.ExtractEmail("not-a-token"); err == nil {
		t.Fatal("expected an error for a malformed token")
	}
}

func TestTokensNotInterchangeable(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", time.Hour, 24*time.Hour)

	refresh, _, err := m.GenerateRefreshToken(1, "a@x.com", "sid")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := m.ParseAccessToken(refresh); err == nil {
		t.Fatal("refresh token must not validate against the access secret")
	}

	other := NewJWTManager("different-secret", "refresh-secret", time.Hour, 24*time.Hour)
	access, _, _ := m.GenerateAccessToken(1, "a@x.com", "sid")
	if _, err := other.ParseAccessToken(access); err == nil {
		t.Fatal("token signed with another secret must not validate")
	}
}

func TestExpiredTokenRejected(t *testing.T) {
	m := NewJWTManager("access-secret", "refresh-secret", -time.Minute, 24*time.Hour)

	token, _, err := m.GenerateAccessToken(1, "a@x.com", "")
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}
	if _, err := m.ParseAccessToken(token); err == nil {
		t.Fatal("expired token must not validate")
	}
	if _, err := m.ExtractEmail(token); err == nil {
		t.Fatal("expired token must not yield an email")
	}
}
