package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

func TestParseIntQuery(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/accounts?limit=50", nil)
	if got := parseIntQuery(req, "limit", 10); got != 50 {
		t.Fatalf("expected limit=50, got %d", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/accounts?limit=invalid", nil)
	if got := parseIntQuery(req, "limit", 10); got != 10 {
		t.Fatalf("expected fallback to default, got %d", got)
	}

	req.URL = &url.URL{RawQuery: ""}
	if got := parseIntQuery(req, "limit", 25); got != 25 {
		t.Fatalf("expected default when missing, got %d", got)
	}
}

func TestParseIDParam(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    int64
		wantErr bool
	}{
		{"valid", "42", 42, false},
		{"zero", "0", 0, true},
		{"negative", "-1", 0, true},
		{"not a number", "abc", 0, true},
		{"missing", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := setChiURLParam(httptest.NewRequest(http.MethodGet, "/", nil), "id", tt.value)
			got, err := parseIDParam(req, "id")
			if (err != nil) != tt.wantErr {
				t.Fatalf("expected error=%v, got %v", tt.wantErr, err)
			}
			if got != tt.want {
				t.Fatalf("expected %d, got %d", tt.want, got)
			}
		})
	}
}

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"account not found", domain.ErrAccountNotFound, http.StatusNotFound},
		{"notification not found", domain.ErrNotificationNotFound, http.StatusNotFound},
		{"invalid amount", domain.ErrInvalidAmount, http.StatusBadRequest},
		{"same account", domain.ErrInvalidOperation, http.StatusBadRequest},
		{"bad kind", domain.ErrInvalidEntryKind, http.StatusBadRequest},
		{"bad time range", usecase.ErrInvalidTimeRange, http.StatusBadRequest},
		{"wrapped validation", fmt.Errorf("%w: name", domain.ErrInvalidAccountName), http.StatusBadRequest},
		{"insufficient credits", domain.ErrInsufficientCredits, http.StatusPaymentRequired},
		{"insufficient balance", domain.ErrInsufficientBalance, http.StatusUnprocessableEntity},
		{"duplicate payment", domain.ErrDuplicatePayment, http.StatusConflict},
		{"account exists", domain.ErrAccountExists, http.StatusConflict},
		{"busy", fmt.Errorf("%w: %w", domain.ErrBusy, domain.ErrLockTimeout), http.StatusServiceUnavailable},
		{"forbidden", domain.ErrForbidden, http.StatusForbidden},
		{"expired token", domain.ErrExpiredToken, http.StatusUnauthorized},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := mapDomainError(tt.err); got != tt.expected {
				t.Fatalf("expected %d, got %d", tt.expected, got)
			}
		})
	}
}

func TestAuthorize(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if err := authorize(req, 5); err != nil {
		t.Fatalf("expected anonymous request to pass without auth, got %v", err)
	}

	customer := withCaller(req, 5, domain.RoleCustomer)
	if err := authorize(customer, 5); err != nil {
		t.Fatalf("expected owner to pass, got %v", err)
	}
	if err := authorize(customer, 6); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for other account, got %v", err)
	}
	if err := requireAdmin(customer); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden for non-admin, got %v", err)
	}

	admin := withCaller(req, 1, domain.RoleAdmin)
	if err := authorize(admin, 6); err != nil {
		t.Fatalf("expected admin to pass, got %v", err)
	}
	if got := callerAccount(admin, 0); got != 1 {
		t.Fatalf("expected caller account 1, got %d", got)
	}
	if got := callerAccount(admin, 9); got != 9 {
		t.Fatalf("expected explicit account to win, got %d", got)
	}
}

func TestWriteJSON(t *testing.T) {
	rr := httptest.NewRecorder()
	payload := map[string]string{"status": "ok"}

	writeJSON(rr, http.StatusCreated, payload)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d", rr.Code)
	}

	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected content-type application/json, got %s", ct)
	}

	var decoded map[string]string
	if err := json.Unmarshal(rr.Body.Bytes(), &decoded); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}

	if decoded["status"] != "ok" {
		t.Fatalf("expected payload to round-trip, got %+v", decoded)
	}
}

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	writeError(rr, http.StatusBadRequest, "bad request", "detail")

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rr.Code)
	}

	var resp dto.ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("failed to decode error response: %v", err)
	}

	if resp.Error != "bad request" || resp.Message != "detail" {
		t.Fatalf("expected error message to propagate, got %+v", resp)
	}
}
