package services

import (
	"errors"
	"fmt"
	"net/http"
)

// Error kinds returned by the ledger and auth services. Callers classify
// with errors.Is; storage failures are wrapped with ErrInternal so the
// cause is kept for logging.
var (
	ErrInvalidAmount     = errors.New("invalid amount")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrConflict          = errors.New("already registered")
	ErrNotFound          = errors.New("not found")
	ErrRateLimited       = errors.New("rate limited")
	ErrInternal          = errors.New("internal error")

	// Refinements of ErrInvalidAmount with their own public message.
	ErrAmountPrecision = fmt.Errorf("%w: at most two decimal places", ErrInvalidAmount)
	ErrAmountTooLarge  = fmt.Errorf("%w: exceeds %s", ErrInvalidAmount, MaxAmount.StringFixed(2))
	ErrBalanceLimit    = fmt.Errorf("%w: balance limit exceeded", ErrInvalidAmount)
)

var errorKinds = []struct {
	err     error
	status  int
	label   string
	message string
}{
	{ErrAmountPrecision, http.StatusBadRequest, "invalid_amount", "Amount must have at most two decimal places"},
	{ErrAmountTooLarge, http.StatusBadRequest, "invalid_amount", "Amount exceeds the maximum of " + MaxAmount.StringFixed(2)},
	{ErrBalanceLimit, http.StatusBadRequest, "invalid_amount", "Balance limit exceeded"},
	{ErrInvalidAmount, http.StatusBadRequest, "invalid_amount", "Amount must be positive"},
	{ErrInsufficientFunds, http.StatusBadRequest, "insufficient_funds", "Insufficient funds"},
	{ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Unauthorized"},
	{ErrConflict, http.StatusBadRequest, "conflict", "User with this ID already exists"},
	{ErrNotFound, http.StatusNotFound, "not_found", "Account not found"},
	{ErrRateLimited, http.StatusTooManyRequests, "rate_limited", "Too many requests"},
	{ErrInternal, http.StatusInternalServerError, "internal", "An Internal Error Occurred"},
}

// StatusCode maps an error kind to its HTTP status. Unknown errors are 500.
func StatusCode(err error) int {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.status
		}
	}
	return http.StatusInternalServerError
}

// PublicMessage returns the user-facing text for err. Causes wrapped inside
// an internal error are never exposed.
func PublicMessage(err error) string {
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.message
		}
	}
	return "An Internal Error Occurred"
}

// Outcome is the metrics label for err; nil is "ok".
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return k.label
		}
	}
	return "internal"
}
