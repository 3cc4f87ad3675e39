package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/ruralpay/minibank/internal/logging"
)

// MaxAmount is the largest value a NUMERIC(10,2) column can hold.
var MaxAmount = decimal.RequireFromString("99999999.99")

const (
	opGetBalance = "get_balance"
	opDeposit    = "deposit"
	opWithdraw   = "withdraw"
)

// LedgerRecorder receives ledger events. Implementations must not block.
type LedgerRecorder interface {
	RecordLedgerOperation(operation, outcome string, duration time.Duration)
	SetBalance(value float64)
}

// LedgerService applies balance reads and mutations for a single account.
// It holds no state of its own; consistency comes from the store's atomic
// statements.
type LedgerService struct {
	accounts AccountStore
	recorder LedgerRecorder
	logger   logrus.FieldLogger
}

func NewLedgerService(accounts AccountStore, recorder LedgerRecorder, logger logrus.FieldLogger) *LedgerService {
	return &LedgerService{
		accounts: accounts,
		recorder: recorder,
		logger:   logging.Component(logger, "ledger"),
	}
}

// GetBalance returns the current balance of accountID.
func (s *LedgerService) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	start := time.Now()

	account, err := s.accounts.GetAccount(ctx, accountID)
	if err != nil {
		err = s.wrap(opGetBalance, accountID, err)
		s.record(opGetBalance, start, decimal.Zero, err)
		return decimal.Zero, err
	}

	s.record(opGetBalance, start, account.Balance, nil)
	return account.Balance, nil
}

// Deposit adds amount to accountID and returns the new balance.
func (s *LedgerService) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	start := time.Now()

	if err := ValidateAmount(amount); err != nil {
		s.record(opDeposit, start, decimal.Zero, err)
		return decimal.Zero, err
	}

	balance, err := s.accounts.AddBalance(ctx, accountID, amount)
	if err != nil {
		err = s.wrap(opDeposit, accountID, err)
		s.record(opDeposit, start, decimal.Zero, err)
		return decimal.Zero, err
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
		"balance":    balance.String(),
	}).Info("Deposit successful")
	s.record(opDeposit, start, balance, nil)
	return balance, nil
}

// Withdraw removes amount from accountID and returns the new balance. It
// fails with ErrInsufficientFunds rather than let the balance go negative.
func (s *LedgerService) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	start := time.Now()

	// Above MaxAmount no balance can cover it, so the store reports
	// insufficient funds.
	if err := validateSign(amount); err != nil {
		s.record(opWithdraw, start, decimal.Zero, err)
		return decimal.Zero, err
	}

	balance, err := s.accounts.SubtractBalance(ctx, accountID, amount)
	if err != nil {
		err = s.wrap(opWithdraw, accountID, err)
		s.record(opWithdraw, start, decimal.Zero, err)
		return decimal.Zero, err
	}

	s.logger.WithFields(logrus.Fields{
		"account_id": accountID,
		"amount":     amount.String(),
		"balance":    balance.String(),
	}).Info("Withdrawal successful")
	s.record(opWithdraw, start, balance, nil)
	return balance, nil
}

// ValidateAmount accepts strictly positive amounts with at most two
// fractional digits that fit the balance column.
func ValidateAmount(amount decimal.Decimal) error {
	if err := validateSign(amount); err != nil {
		return err
	}
	if amount.GreaterThan(MaxAmount) {
		return ErrAmountTooLarge
	}
	return nil
}

func validateSign(amount decimal.Decimal) error {
	switch {
	case amount.Sign() <= 0:
		return ErrInvalidAmount
	case !amount.Equal(amount.Truncate(2)):
		return ErrAmountPrecision
	}
	return nil
}

// wrap keeps domain errors as they are and turns everything else into an
// internal error.
func (s *LedgerService) wrap(op string, accountID int64, err error) error {
	for _, kind := range []error{ErrNotFound, ErrInsufficientFunds, ErrInvalidAmount} {
		if errors.Is(err, kind) {
			return err
		}
	}

	s.logger.WithFields(logrus.Fields{
		"operation":  op,
		"account_id": accountID,
	}).WithError(err).Error("Storage call failed")
	return fmt.Errorf("%s account %d: %w: %w", op, accountID, ErrInternal, err)
}

// record reports to the recorder without letting it affect the operation.
func (s *LedgerService) record(op string, start time.Time, balance decimal.Decimal, err error) {
	if s.recorder == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.logger.WithField("panic", r).Warn("Metrics recorder failed")
		}
	}()

	s.recorder.RecordLedgerOperation(op, Outcome(err), time.Since(start))
	if err == nil {
		s.recorder.SetBalance(balance.InexactFloat64())
	}
}
