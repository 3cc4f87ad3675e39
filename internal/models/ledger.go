package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Account holds the balance owned by exactly one user.
type Account struct {
	UserID    int64           `json:"user_id" db:"user_id"`
	Balance   decimal.Decimal `json:"balance" db:"balance"` // NUMERIC(10,2), never negative
	UpdatedAt time.Time       `json:"updated_at" db:"updated_at"`
}
