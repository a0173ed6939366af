package service

import (
	"context"
	"testing"
	"time"

	"corralon_backend/platform/apperr"
	"corralon_backend/platform/httpkit"
	"corralon_backend/platform/logger"

	"golang.org/x/crypto/bcrypt"
)

type adminConfig struct {
	hash string
	ttl  time.Duration
}

func (c adminConfig) GetJWTAccessSecret() string       { return "test-secret" }
func (c adminConfig) GetAdminUsername() string         { return "ventas" }
func (c adminConfig) GetAdminPasswordHash() string     { return c.hash }
func (c adminConfig) GetAccessTokenTTL() time.Duration { return c.ttl }

func newTestService(t *testing.T) *Service {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct horse"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash: %v", err)
	}
	return New(adminConfig{hash: string(hash), ttl: time.Hour}, logger.Discard())
}

func TestSignInIssuesParsableToken(t *testing.T) {
	svc := newTestService(t)

	token, expiresAt, err := svc.SignIn(context.Background(), "ventas", "correct horse")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if time.Until(expiresAt) <= 0 {
		t.Fatalf("expected future expiry, got %v", expiresAt)
	}

	claims, err := httpkit.ParseAccessToken(token, svc.cfg)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if sub, _ := claims.GetSubject(); sub != "ventas" {
		t.Fatalf("expected subject ventas, got %q", sub)
	}
}

func TestSignInRejectsBadCredentials(t *testing.T) {
	svc := newTestService(t)

	tests := []struct{ user, pass string }{
		{"ventas", "wrong"},
		{"otro", "correct horse"},
		{"", ""},
	}
	for _, tt := range tests {
		_, _, err := svc.SignIn(context.Background(), tt.user, tt.pass)
		if !apperr.Is(err, apperr.KindUnauthorized) {
			t.Errorf("%q/%q: expected unauthorized, got %v", tt.user, tt.pass, err)
		}
	}
}

func TestSignInWithoutConfiguredAdmin(t *testing.T) {
	svc := New(adminConfig{}, logger.Discard())
	if _, _, err := svc.SignIn(context.Background(), "ventas", "x"); err == nil {
		t.Fatalf("expected error when no admin is configured")
	}
}

func TestHashPassword(t *testing.T) {
	if _, err := HashPassword("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	hash, err := HashPassword("long enough")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(hash), []byte("long enough")) != nil {
		t.Fatalf("hash does not match")
	}
}
