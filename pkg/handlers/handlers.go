// Package handlers holds the helpers shared by the HTTP handler packages:
// JSON responses, domain-error-to-status mapping and caller identity.
package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dashibook/chapter-monetization/pkg/api"
	"github.com/dashibook/chapter-monetization/pkg/ledger"
	"github.com/dashibook/chapter-monetization/pkg/rates"
	"github.com/dashibook/chapter-monetization/pkg/revenue"
	"github.com/dashibook/chapter-monetization/pkg/storage"
	"github.com/dashibook/chapter-monetization/pkg/subscription"
)

// UserIDHeader carries the authenticated user id, set by the gateway in
// front of this service. An absent header means a guest request.
const UserIDHeader = "X-User-Id"

// UserID returns the caller's user id, or "" for a guest.
func UserID(r *http.Request) string {
	return r.Header.Get(UserIDHeader)
}

// RespondJSON writes v as a JSON response with the given status.
func RespondJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

// RespondError maps a domain error onto an HTTP status and writes the
// uniform error body.
func RespondError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal server error"

	switch {
	case errors.Is(err, storage.ErrNotFound),
		errors.Is(err, ledger.ErrChapterNotPublished):
		// Unpublished chapters are indistinguishable from absent ones.
		status = http.StatusNotFound
		message = "not found"
	case errors.Is(err, storage.ErrInsufficientFunds),
		errors.Is(err, revenue.ErrInsufficientRevenue):
		status = http.StatusUnprocessableEntity
		message = err.Error()
	case errors.Is(err, storage.ErrAlreadyUnlocked),
		errors.Is(err, storage.ErrWalletExists),
		errors.Is(err, subscription.ErrAlreadySubscribed),
		errors.Is(err, subscription.ErrInvalidTransition),
		errors.Is(err, ledger.ErrChapterFree):
		status = http.StatusConflict
		message = err.Error()
	case errors.Is(err, ledger.ErrAdvanceNotPurchasable):
		status = http.StatusForbidden
		message = err.Error()
	case errors.Is(err, ledger.ErrAmountSign),
		errors.Is(err, revenue.ErrInvalidAmount),
		errors.Is(err, revenue.ErrCommissionTypeMismatch),
		errors.Is(err, subscription.ErrInvalidTierChange),
		errors.Is(err, subscription.ErrTierInactive),
		errors.Is(err, rates.ErrRateOutOfRange),
		errors.Is(err, rates.ErrExchangeRateNotPositive):
		status = http.StatusBadRequest
		message = err.Error()
	default:
		slog.Error("request failed", "error", err)
	}

	RespondJSON(w, status, api.Error{Message: message})
}

// RespondBadRequest writes a 400 with the given message.
func RespondBadRequest(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusBadRequest, api.Error{Message: message})
}

// RespondUnauthorized writes a 401. Used by handlers that require a caller
// identity.
func RespondUnauthorized(w http.ResponseWriter) {
	RespondJSON(w, http.StatusUnauthorized, api.Error{Message: "authentication required"})
}

// RespondForbidden writes a 403 with the given message.
func RespondForbidden(w http.ResponseWriter, message string) {
	RespondJSON(w, http.StatusForbidden, api.Error{Message: message})
}
