package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/ruralpay/minibank/internal/middleware"
	"github.com/ruralpay/minibank/internal/services"
)

// Ledger is the balance API the handlers need.
type Ledger interface {
	GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error)
	Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, error)
	Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

// AmountRequest is the body of deposit and withdraw.
// @Description Amount to move, positive with at most two decimals
type AmountRequest struct {
	Amount *decimal.Decimal `json:"amount" validate:"required" swaggertype:"number" example:"100.50"`
}

// BalanceResponse carries the current balance.
type BalanceResponse struct {
	Balance json.Number `json:"balance" swaggertype:"number" example:"100.50"`
}

// LedgerResponse carries the outcome of a balance mutation.
type LedgerResponse struct {
	Message string      `json:"message" example:"Deposit successful"`
	Balance json.Number `json:"balance" swaggertype:"number" example:"100.50"`
}

type LedgerHandler struct {
	ledger    Ledger
	validator *services.ValidationHelper
}

func NewLedgerHandler(ledger Ledger) *LedgerHandler {
	return &LedgerHandler{
		ledger:    ledger,
		validator: services.NewValidationHelper(),
	}
}

// GetBalance returns the caller's balance
// @Summary Get balance
// @Description Return the current balance of the logged-in user's account
// @Tags ledger
// @Produce json
// @Security SessionCookie
// @Success 200 {object} BalanceResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /balance [get]
func (h *LedgerHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		services.SendServiceError(w, services.ErrUnauthorized)
		return
	}

	balance, err := h.ledger.GetBalance(r.Context(), session.UserID)
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, BalanceResponse{Balance: jsonAmount(balance)})
}

// Deposit adds money to the caller's account
// @Summary Deposit
// @Description Atomically add a positive amount to the balance
// @Tags ledger
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body AmountRequest true "Deposit request"
// @Success 200 {object} LedgerResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /deposit [post]
func (h *LedgerHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.Deposit, "Deposit successful")
}

// Withdraw takes money from the caller's account
// @Summary Withdraw
// @Description Atomically subtract a positive amount; the balance never goes negative
// @Tags ledger
// @Accept json
// @Produce json
// @Security SessionCookie
// @Param request body AmountRequest true "Withdraw request"
// @Success 200 {object} LedgerResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse
// @Failure 404 {object} services.ErrorResponse
// @Router /withdraw [post]
func (h *LedgerHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	h.mutate(w, r, h.ledger.Withdraw, "Withdrawal successful")
}

type ledgerOp func(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, error)

func (h *LedgerHandler) mutate(w http.ResponseWriter, r *http.Request, op ledgerOp, message string) {
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		services.SendServiceError(w, services.ErrUnauthorized)
		return
	}

	var req AmountRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	balance, err := op(r.Context(), session.UserID, *req.Amount)
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, LedgerResponse{Message: message, Balance: jsonAmount(balance)})
}

// jsonAmount renders a balance as a bare JSON number.
func jsonAmount(d decimal.Decimal) json.Number {
	return json.Number(d.String())
}
