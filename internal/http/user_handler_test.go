package http

import (
	"encoding/json"
	"net/http"
	"strings"
	"testing"

	"verdict-api/internal/domain"
)

func TestUpdateProfile_StripsProtectedFields(t *testing.T) {
	env := newTestEnv()
	env.users.add(domain.User{
		ID:           "u1",
		Name:         "Ana",
		Email:        "a@x.com",
		PasswordHash: "$2a$10$hash",
		Role:         domain.RoleClient,
		IsVerified:   true,
	})
	token, err := env.tokenSvc.Issue(domain.User{ID: "u1", Email: "a@x.com", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := performRequest(env.router, http.MethodPut, "/user/profile", map[string]any{
		"city":         "Bogota",
		"role":         "attorney",
		"email":        "evil@x.com",
		"isVerified":   false,
		"passwordHash": "owned",
	}, token)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	stored := env.users.usersByID["u1"]
	if stored.Role != domain.RoleClient {
		t.Fatalf("role must be immutable via profile update, got %q", stored.Role)
	}
	if stored.Email != "a@x.com" || !stored.IsVerified || stored.PasswordHash != "$2a$10$hash" {
		t.Fatalf("protected fields were mutated: %+v", stored)
	}
	if stored.City != "Bogota" {
		t.Fatalf("mutable field should apply, got %q", stored.City)
	}

	body := decodeEnvelope(t, rec)
	var user domain.User
	if err := json.Unmarshal(body.Data["user"], &user); err != nil {
		t.Fatalf("decode user: %v", err)
	}
	if user.City != "Bogota" || user.Role != domain.RoleClient {
		t.Fatalf("unexpected response user: %+v", user)
	}
}

func TestUpdateProfile_RequiresToken(t *testing.T) {
	env := newTestEnv()

	rec := performRequest(env.router, http.MethodPut, "/user/profile", map[string]string{
		"city": "Bogota",
	}, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestUpdateProfile_UserGone(t *testing.T) {
	env := newTestEnv()
	token, err := env.tokenSvc.Issue(domain.User{ID: "ghost", Email: "ghost@x.com", Role: domain.RoleClient})
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	rec := performRequest(env.router, http.MethodPut, "/user/profile", map[string]string{
		"city": "Bogota",
	}, token)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestListAttorneys(t *testing.T) {
	env := newTestEnv()
	env.users.add(domain.User{
		ID:           "att1",
		Name:         "Maria Vega",
		Email:        "m@x.com",
		PasswordHash: "$2a$10$supersecret",
		Role:         domain.RoleAttorney,
		IsVerified:   true,
		LawFirm:      "Vega & Asociados",
	})
	env.users.add(domain.User{ID: "att2", Email: "unv@x.com", Role: domain.RoleAttorney})
	env.users.add(domain.User{ID: "cli1", Email: "c@x.com", Role: domain.RoleClient, IsVerified: true})

	rec := performRequest(env.router, http.MethodGet, "/attorneys", nil, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	body := decodeEnvelope(t, rec)
	var attorneys []domain.User
	if err := json.Unmarshal(body.Data["attorneys"], &attorneys); err != nil {
		t.Fatalf("decode attorneys: %v", err)
	}
	if len(attorneys) != 1 || attorneys[0].ID != "att1" {
		t.Fatalf("expected only the verified attorney, got %+v", attorneys)
	}
	if strings.Contains(rec.Body.String(), "supersecret") || strings.Contains(rec.Body.String(), "passwordHash") {
		t.Fatalf("password hash leaked: %s", rec.Body.String())
	}
}
