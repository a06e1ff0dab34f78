package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/iho/creditledger/internal/adapter/http/dto"
	"github.com/iho/creditledger/internal/domain"
	"github.com/iho/creditledger/internal/usecase"
)

// writeJSON writes a JSON response.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, message, details string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(dto.ErrorResponse{
		Error:   message,
		Message: details,
	})
}

// mapDomainError maps domain errors to HTTP status codes.
func mapDomainError(err error) int {
	switch {
	case errors.Is(err, domain.ErrAccountNotFound),
		errors.Is(err, domain.ErrNotificationNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrInvalidOperation),
		errors.Is(err, domain.ErrInvalidEntryKind),
		errors.Is(err, domain.ErrInvalidAccountName),
		errors.Is(err, domain.ErrInvalidAccountID),
		errors.Is(err, domain.ErrInvalidRole),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrDescriptionTooLong),
		errors.Is(err, domain.ErrInvalidReference),
		errors.Is(err, usecase.ErrInvalidTimeRange),
		errors.Is(err, usecase.ErrInvalidNotification),
		errors.Is(err, usecase.ErrInvalidPrice),
		errors.Is(err, usecase.ErrInvalidPayment):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrInsufficientCredits):
		return http.StatusPaymentRequired
	case errors.Is(err, domain.ErrInsufficientBalance):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrDuplicatePayment),
		errors.Is(err, domain.ErrAccountExists):
		return http.StatusConflict
	case errors.Is(err, domain.ErrBusy),
		errors.Is(err, domain.ErrLockTimeout),
		errors.Is(err, usecase.ErrGeneratorUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, domain.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, domain.ErrUnauthorized),
		errors.Is(err, domain.ErrInvalidToken),
		errors.Is(err, domain.ErrExpiredToken):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}

// parseIntQuery parses an integer query parameter with a default value.
func parseIntQuery(r *http.Request, key string, defaultValue int) int {
	val := r.URL.Query().Get(key)
	if val == "" {
		return defaultValue
	}
	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultValue
	}
	return i
}

// parseIDParam reads a positive int64 path parameter.
func parseIDParam(r *http.Request, key string) (int64, error) {
	raw := chi.URLParam(r, key)
	if raw == "" {
		return 0, fmt.Errorf("missing %s", key)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", key, raw)
	}
	return id, nil
}

// authorize checks that the authenticated caller may act for accountID.
// Requests without a caller pass; the auth middleware is off for them.
func authorize(r *http.Request, accountID int64) error {
	caller, ok := domain.CallerFromContext(r.Context())
	if !ok {
		return nil
	}
	if !caller.CanActFor(accountID) {
		return domain.ErrForbidden
	}
	return nil
}

// requireAdmin checks that the authenticated caller is an administrator.
func requireAdmin(r *http.Request) error {
	caller, ok := domain.CallerFromContext(r.Context())
	if !ok {
		return nil
	}
	if !caller.Role.CanAllocate() {
		return domain.ErrForbidden
	}
	return nil
}

// ownSource pins a transfer source to the caller's account. A source naming
// another account is refused.
func ownSource(r *http.Request, sourceID *int64) error {
	caller, ok := domain.CallerFromContext(r.Context())
	if !ok {
		return nil
	}
	if *sourceID != 0 && *sourceID != caller.AccountID {
		return domain.ErrForbidden
	}
	*sourceID = caller.AccountID
	return nil
}

// callerAccount returns the caller's account id, or fallback without auth.
func callerAccount(r *http.Request, fallback int64) int64 {
	if caller, ok := domain.CallerFromContext(r.Context()); ok && fallback == 0 {
		return caller.AccountID
	}
	return fallback
}
