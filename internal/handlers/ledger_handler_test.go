package handlers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/ruralpay/minibank/internal/middleware"
	"github.com/ruralpay/minibank/internal/models"
	"github.com/ruralpay/minibank/internal/services"
)

func amountIs(s string) any {
	want := decimal.RequireFromString(s)
	return mock.MatchedBy(func(d decimal.Decimal) bool { return d.Equal(want) })
}

func authed(r *http.Request, userID int64) *http.Request {
	return r.WithContext(middleware.WithSession(r.Context(), &models.Session{ID: "sid", UserID: userID}))
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	dec := json.NewDecoder(w.Body)
	dec.UseNumber()
	require.NoError(t, dec.Decode(&body))
	return body
}

func TestLedgerHandler_GetBalance(t *testing.T) {
	t.Run("returns balance as number", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetBalance", mock.Anything, int64(7)).Return(decimal.RequireFromString("110.50"), nil)

		w := httptest.NewRecorder()
		NewLedgerHandler(ledger).GetBalance(w, authed(httptest.NewRequest(http.MethodGet, "/balance", nil), 7))

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"balance": 110.5}`, w.Body.String())
	})

	t.Run("zero balance", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetBalance", mock.Anything, int64(7)).Return(decimal.Zero, nil)

		w := httptest.NewRecorder()
		NewLedgerHandler(ledger).GetBalance(w, authed(httptest.NewRequest(http.MethodGet, "/balance", nil), 7))

		assert.Equal(t, "0", string(decodeBody(t, w)["balance"].(json.Number)))
	})

	t.Run("missing account", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("GetBalance", mock.Anything, int64(7)).Return(decimal.Zero, services.ErrNotFound)

		w := httptest.NewRecorder()
		NewLedgerHandler(ledger).GetBalance(w, authed(httptest.NewRequest(http.MethodGet, "/balance", nil), 7))

		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("no session", func(t *testing.T) {
		w := httptest.NewRecorder()
		NewLedgerHandler(new(MockLedger)).GetBalance(w, httptest.NewRequest(http.MethodGet, "/balance", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestLedgerHandler_Deposit(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("Deposit", mock.Anything, int64(7), amountIs("100")).Return(decimal.RequireFromString("100"), nil)

		w := httptest.NewRecorder()
		r := authed(httptest.NewRequest(http.MethodPost, "/deposit", strings.NewReader(`{"amount": 100}`)), 7)
		NewLedgerHandler(ledger).Deposit(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"message": "Deposit successful", "balance": 100}`, w.Body.String())
		ledger.AssertExpectations(t)
	})

	t.Run("string amount is accepted", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("Deposit", mock.Anything, int64(7), amountIs("0.01")).Return(decimal.RequireFromString("0.01"), nil)

		w := httptest.NewRecorder()
		r := authed(httptest.NewRequest(http.MethodPost, "/deposit", strings.NewReader(`{"amount": "0.01"}`)), 7)
		NewLedgerHandler(ledger).Deposit(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("non-positive amount", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("Deposit", mock.Anything, int64(7), amountIs("-5")).Return(decimal.Zero, services.ErrInvalidAmount)

		w := httptest.NewRecorder()
		r := authed(httptest.NewRequest(http.MethodPost, "/deposit", strings.NewReader(`{"amount": -5}`)), 7)
		NewLedgerHandler(ledger).Deposit(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Amount must be positive", decodeBody(t, w)["error"])
	})

	bad := map[string]string{
		"missing amount": `{}`,
		"null amount":    `{"amount": null}`,
		"not a number":   `{"amount": "lots"}`,
		"unknown field":  `{"amount": 1, "currency": "NGN"}`,
		"two objects":    `{"amount": 1}{"amount": 2}`,
		"malformed json": `{"amount":`,
		"array body":     `[1]`,
	}
	for name, body := range bad {
		t.Run(name, func(t *testing.T) {
			w := httptest.NewRecorder()
			r := authed(httptest.NewRequest(http.MethodPost, "/deposit", strings.NewReader(body)), 7)
			NewLedgerHandler(new(MockLedger)).Deposit(w, r)

			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	t.Run("oversized body", func(t *testing.T) {
		body := fmt.Sprintf(`{"amount": 1, "pad": "%s"}`, strings.Repeat("x", maxBodyBytes))
		w := httptest.NewRecorder()
		r := authed(httptest.NewRequest(http.MethodPost, "/deposit", strings.NewReader(body)), 7)
		NewLedgerHandler(new(MockLedger)).Deposit(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestLedgerHandler_Withdraw(t *testing.T) {
	t.Run("insufficient funds", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("Withdraw", mock.Anything, int64(7), amountIs("150")).Return(decimal.Zero, services.ErrInsufficientFunds)

		w := httptest.NewRecorder()
		r := authed(httptest.NewRequest(http.MethodPost, "/withdraw", strings.NewReader(`{"amount": 150}`)), 7)
		NewLedgerHandler(ledger).Withdraw(w, r)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Insufficient funds", decodeBody(t, w)["error"])
	})

	t.Run("internal error hides cause", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("Withdraw", mock.Anything, int64(7), amountIs("1")).
			Return(decimal.Zero, fmt.Errorf("withdraw account 7: %w: %w", services.ErrInternal, context.DeadlineExceeded))

		w := httptest.NewRecorder()
		r := authed(httptest.NewRequest(http.MethodPost, "/withdraw", strings.NewReader(`{"amount": 1}`)), 7)
		NewLedgerHandler(ledger).Withdraw(w, r)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.NotContains(t, w.Body.String(), "deadline")
	})

	t.Run("success", func(t *testing.T) {
		ledger := new(MockLedger)
		ledger.On("Withdraw", mock.Anything, int64(7), amountIs("40")).Return(decimal.RequireFromString("60"), nil)

		w := httptest.NewRecorder()
		r := authed(httptest.NewRequest(http.MethodPost, "/withdraw", strings.NewReader(`{"amount": 40}`)), 7)
		NewLedgerHandler(ledger).Withdraw(w, r)

		assert.JSONEq(t, `{"message": "Withdrawal successful", "balance": 60}`, w.Body.String())
	})
}
