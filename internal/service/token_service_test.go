package service

import (
	"errors"
	"testing"
	"time"

	"verdict-api/internal/domain"
)

func TestTokenService_IssueParseRoundTrip(t *testing.T) {
	svc := NewTokenService("secret", 30*24*time.Hour)
	user := domain.User{
		ID:    "u1",
		Email: "user@example.com",
		Role:  domain.RoleAttorney,
	}

	token, err := svc.Issue(user)
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if token == "" {
		t.Fatalf("expected token")
	}

	claims, err := svc.Parse(token)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.UserID != "u1" || claims.Email != "user@example.com" || claims.Role != domain.RoleAttorney {
		t.Fatalf("unexpected claims: %+v", claims)
	}
	if claims.Subject != "u1" {
		t.Fatalf("expected subject bound to user id, got %q", claims.Subject)
	}
}

func TestTokenService_Expired(t *testing.T) {
	svc := NewTokenService("secret", 30*24*time.Hour)
	svc.ttl = -time.Minute

	token, err := svc.Issue(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := svc.Parse(token); !errors.Is(err, ErrTokenExpired) {
		t.Fatalf("expected ErrTokenExpired, got %v", err)
	}
}

func TestTokenService_WrongSecret(t *testing.T) {
	issuer := NewTokenService("secret-a", time.Hour)
	verifier := NewTokenService("secret-b", time.Hour)

	token, err := issuer.Issue(domain.User{ID: "u1", Email: "user@example.com"})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := verifier.Parse(token); !errors.Is(err, ErrTokenInvalid) {
		t.Fatalf("expected ErrTokenInvalid, got %v", err)
	}
}

func TestTokenService_Garbage(t *testing.T) {
	svc := NewTokenService("secret", time.Hour)

	for _, token := range []string{"", "   ", "not.a.jwt"} {
		if _, err := svc.Parse(token); !errors.Is(err, ErrTokenInvalid) {
			t.Fatalf("expected ErrTokenInvalid for %q, got %v", token, err)
		}
	}
}
