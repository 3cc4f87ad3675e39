package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"github.com/ruralpay/minibank/internal/models"
)

// AccountStore is the storage side of the ledger. Every mutating method is a
// single atomic statement; implementations must not split a balance update
// into a read followed by a separate write.
type AccountStore interface {
	GetAccount(ctx context.Context, userID int64) (*models.Account, error)
	// AddBalance increments the balance and returns the new value.
	AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
	// SubtractBalance decrements the balance only if it stays non-negative.
	// It returns ErrInsufficientFunds when it does not.
	SubtractBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error)
}

const (
	selectAccountQuery = `SELECT user_id, balance, updated_at FROM accounts WHERE user_id = $1`
	depositQuery       = `UPDATE accounts SET balance = balance + $1, updated_at = NOW() WHERE user_id = $2 RETURNING balance`
	withdrawQuery      = `UPDATE accounts SET balance = balance - $1, updated_at = NOW() WHERE user_id = $2 AND balance >= $1 RETURNING balance`
	accountExistsQuery = `SELECT EXISTS (SELECT 1 FROM accounts WHERE user_id = $1)`
)

// lib/pq condition names used for classification.
const (
	pqCheckViolation    = "check_violation"
	pqNumericOutOfRange = "numeric_value_out_of_range"
	pqUniqueViolation   = "unique_violation"
)

// PostgresAccountStore implements AccountStore on the accounts table.
type PostgresAccountStore struct {
	db *sqlx.DB
}

func NewPostgresAccountStore(db *sqlx.DB) *PostgresAccountStore {
	return &PostgresAccountStore{db: db}
}

var _ AccountStore = (*PostgresAccountStore)(nil)

// withConn pins one pooled connection for the duration of fn and always
// hands it back.
func (s *PostgresAccountStore) withConn(ctx context.Context, fn func(conn *sqlx.Conn) error) error {
	conn, err := s.db.Connx(ctx)
	if err != nil {
		return fmt.Errorf("acquire connection: %w", err)
	}
	defer conn.Close()

	return fn(conn)
}

func (s *PostgresAccountStore) GetAccount(ctx context.Context, userID int64) (*models.Account, error) {
	var account models.Account
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.GetContext(ctx, &account, selectAccountQuery, userID)
	})
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &account, nil
}

func (s *PostgresAccountStore) AddBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		return conn.QueryRowxContext(ctx, depositQuery, amount, userID).Scan(&balance)
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return decimal.Zero, ErrNotFound
	case pqErrorIs(err, pqNumericOutOfRange):
		return decimal.Zero, ErrBalanceLimit
	case err != nil:
		return decimal.Zero, err
	}
	return balance, nil
}

func (s *PostgresAccountStore) SubtractBalance(ctx context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := s.withConn(ctx, func(conn *sqlx.Conn) error {
		err := conn.QueryRowxContext(ctx, withdrawQuery, amount, userID).Scan(&balance)
		if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		// Nothing matched: either the account is missing or the guard failed.
		var exists bool
		if err := conn.GetContext(ctx, &exists, accountExistsQuery, userID); err != nil {
			return err
		}
		if !exists {
			return ErrNotFound
		}
		return ErrInsufficientFunds
	})
	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrInsufficientFunds):
		return decimal.Zero, err
	case pqErrorIs(err, pqCheckViolation):
		return decimal.Zero, ErrInsufficientFunds
	case err != nil:
		return decimal.Zero, err
	}
	return balance, nil
}

func pqErrorIs(err error, name string) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && pqErr.Code.Name() == name
}
