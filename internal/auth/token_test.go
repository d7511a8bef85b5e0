package auth

import (
	"testing"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

func TestTokenRoundTrip(t *testing.T) {
	tm := NewTokenManager("secret", time.Hour)
	user := &domain.User{ID: "u1", Email: "a@example.com", Role: domain.RoleAgent}

	session, err := tm.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !session.ExpiresAt.After(time.Now()) {
		t.Fatalf("expiry should be in the future")
	}

	claims, err := tm.ParseToken(session.Token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Subject != "u1" || claims.Role != domain.RoleAgent {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}

func TestTokenRejectsForeignSecretAndExpiry(t *testing.T) {
	user := &domain.User{ID: "u1", Role: domain.RoleEndUser}

	session, err := NewTokenManager("one", time.Hour).GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := NewTokenManager("two", time.Hour).ParseToken(session.Token); err == nil {
		t.Fatalf("expected signature failure")
	}

	expired := NewTokenManager("one", time.Hour)
	expired.now = func() time.Time { return time.Now().Add(-2 * time.Hour) }
	old, err := expired.GenerateToken(user)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if _, err := expired.ParseToken(old.Token); err == nil {
		t.Fatalf("expected expiry failure")
	}
}
