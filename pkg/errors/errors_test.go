package errors

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"not found", NotFound("Service"), CodeNotFound, http.StatusNotFound},
		{"not found with id", NotFoundWithID("Booking", "abc"), CodeNotFound, http.StatusNotFound},
		{"validation", Validation("bad", nil), CodeValidation, http.StatusUnprocessableEntity},
		{"invalid input", InvalidInput("bad id"), CodeInvalidInput, http.StatusBadRequest},
		{"invalid operation", InvalidOperation("service is inactive"), CodeInvalidOperation, http.StatusBadRequest},
		{"unauthorized", Unauthorized("missing token"), CodeUnauthorized, http.StatusUnauthorized},
		{"forbidden", Forbidden("not yours"), CodeForbidden, http.StatusForbidden},
		{"conflict", Conflict("service has bookings"), CodeConflict, http.StatusConflict},
		{"stale state", StaleState("Booking status has changed."), CodeStaleState, http.StatusConflict},
		{"concurrency conflict", ConcurrencyConflict("reload"), CodeConcurrencyConflict, http.StatusConflict},
		{"internal", Internal("boom", errors.New("db")), CodeInternal, http.StatusInternalServerError},
		{"timeout", Timeout("slow"), CodeTimeout, http.StatusGatewayTimeout},
		{"unavailable", Unavailable("Mongo"), CodeUnavailable, http.StatusServiceUnavailable},
		{"rate limited", RateLimited("slow down"), CodeRateLimited, http.StatusTooManyRequests},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("expected code %s, got %s", tt.wantCode, tt.err.Code)
			}
			if tt.err.StatusCode() != tt.wantStatus {
				t.Errorf("expected status %d, got %d", tt.wantStatus, tt.err.StatusCode())
			}
		})
	}
}

func TestNotFoundWithID_Details(t *testing.T) {
	err := NotFoundWithID("Service", "65f1c0ffee")

	if err.Message != "Service not found" {
		t.Errorf("expected message 'Service not found', got %s", err.Message)
	}
	if err.Details["id"] != "65f1c0ffee" {
		t.Errorf("expected id detail, got %v", err.Details["id"])
	}
	if err.Details["resource"] != "Service" {
		t.Errorf("expected resource detail, got %v", err.Details["resource"])
	}
}

func TestAppError_Error(t *testing.T) {
	plain := StaleState("Booking status has changed.")
	if got := plain.Error(); got != "STALE_STATE: Booking status has changed." {
		t.Errorf("Error() = %q", got)
	}

	wrapped := Internal("Failed to update booking", errors.New("connection reset"))
	if got := wrapped.Error(); got != "INTERNAL_ERROR: Failed to update booking (caused by: connection reset)" {
		t.Errorf("Error() = %q", got)
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("write conflict")
	appErr := Wrap(cause, CodeInternal, "wrapped", http.StatusInternalServerError)

	if !errors.Is(appErr, cause) {
		t.Error("errors.Is should find the wrapped cause")
	}
}

func TestAsAppError(t *testing.T) {
	appErr := Forbidden("not yours")
	if got := AsAppError(appErr); got != appErr {
		t.Error("AsAppError() should return the same AppError")
	}

	wrapped := fmt.Errorf("transaction failed: %w", appErr)
	if got := AsAppError(wrapped); got != appErr {
		t.Error("AsAppError() should unwrap to the inner AppError")
	}

	plain := errors.New("driver exploded")
	got := AsAppError(plain)
	if got.Code != CodeInternal {
		t.Errorf("expected plain error to map to %s, got %s", CodeInternal, got.Code)
	}
	if got.Err != plain {
		t.Error("AsAppError() should keep the original cause")
	}
}

func TestIsAppErrorAndHasCode(t *testing.T) {
	err := fmt.Errorf("outer: %w", ConcurrencyConflict("reload"))

	if !IsAppError(err) {
		t.Error("IsAppError() should see through wrapping")
	}
	if !HasCode(err, CodeConcurrencyConflict) {
		t.Error("HasCode() should match CONCURRENCY_CONFLICT")
	}
	if HasCode(err, CodeStaleState) {
		t.Error("HasCode() should not match a different code")
	}
	if HasCode(errors.New("plain"), CodeInternal) {
		t.Error("HasCode() should be false for non-AppError")
	}
}

func TestAppError_ToJSON(t *testing.T) {
	data := Validation("Service validation failed", map[string]any{"fields": []string{"title"}}).ToJSON()
	s := string(data)

	if !strings.Contains(s, `"code":"VALIDATION_ERROR"`) {
		t.Errorf("ToJSON() missing code: %s", s)
	}
	if !strings.Contains(s, `"details"`) {
		t.Errorf("ToJSON() missing details: %s", s)
	}
}
