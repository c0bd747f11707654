package security

import (
	"testing"
	"time"
)

func TestJWTProviderRoundTrip(t *testing.T) {
	provider := NewJWTProvider("test-secret", time.Hour)

	token, expiresAt, err := provider.Generate(42, "candidat", time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected expiry in the future, got %v", expiresAt)
	}

	claims, err := provider.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != 42 || claims.Role != "candidat" {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestJWTProviderRejectsExpiredToken(t *testing.T) {
	provider := NewJWTProvider("test-secret", time.Minute)

	token, _, err := provider.Generate(1, "entreprise", time.Now().Add(-time.Hour))
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := provider.Parse(token); err == nil {
		t.Fatal("expected expired token to be rejected")
	}
}

func TestJWTProviderRejectsForeignSecret(t *testing.T) {
	token, _, err := NewJWTProvider("one", time.Hour).Generate(1, "candidat", time.Now())
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewJWTProvider("two", time.Hour).Parse(token); err == nil {
		t.Fatal("expected signature mismatch")
	}
}
