package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"servicelink/pkg/logger"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/julienschmidt/httprouter"
)

func newTestManager() *TokenManager {
	m := NewTokenManager("test-secret-with-enough-bytes", "servicelink", time.Hour)
	m.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return m
}

func TestTokenManager_RoundTrip(t *testing.T) {
	m := newTestManager()
	token, err := m.Issue(&Actor{ID: "user-1", Email: "a@b.test", Roles: []Role{RoleProvider}})
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	actor, err := m.Verify(token)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if actor.ID != "user-1" || actor.Email != "a@b.test" {
		t.Errorf("unexpected actor: %+v", actor)
	}
	if !actor.HasRole(RoleProvider) || actor.HasRole(RoleAdmin) {
		t.Errorf("unexpected roles: %v", actor.Roles)
	}
}

func TestTokenManager_Rejects(t *testing.T) {
	m := newTestManager()
	valid, _ := m.Issue(&Actor{ID: "user-1"})

	other := NewTokenManager("different-secret-value", "servicelink", time.Hour)
	other.now = m.now
	foreign, _ := other.Issue(&Actor{ID: "user-1"})

	expired := NewTokenManager("test-secret-with-enough-bytes", "servicelink", time.Hour)
	expired.now = func() time.Time { return m.now().Add(-2 * time.Hour) }
	stale, _ := expired.Issue(&Actor{ID: "user-1"})

	noSubject, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "servicelink",
			ExpiresAt: jwt.NewNumericDate(m.now().Add(time.Hour)),
		},
	}).SignedString([]byte("test-secret-with-enough-bytes"))

	tests := map[string]string{
		"empty":        "",
		"garbage":      "not-a-token",
		"wrong secret": foreign,
		"expired":      stale,
		"no subject":   noSubject,
		"tampered":     valid + "x",
	}

	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Verify(token)
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidToken) && !errors.Is(err, ErrMissingToken) {
				t.Errorf("unexpected error type: %v", err)
			}
		})
	}
}

func TestMiddleware_Require(t *testing.T) {
	m := newTestManager()
	mw := NewMiddleware(m, logger.Discard())

	var seen *Actor
	handle := mw.Require(func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		seen = ActorFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	handle(rec, httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil), nil)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
	if seen != nil {
		t.Fatal("handler must not run without token")
	}

	token, _ := m.Issue(&Actor{ID: "user-9", Roles: []Role{RoleUser}})
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/mine", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	handle(rec, req, nil)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with token, got %d", rec.Code)
	}
	if seen == nil || seen.ID != "user-9" {
		t.Errorf("actor not propagated: %+v", seen)
	}
}
