package services

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/ruralpay/minibank/internal/models"
)

type MockRecorder struct {
	mock.Mock
}

func (m *MockRecorder) RecordLedgerOperation(operation, outcome string, duration time.Duration) {
	m.Called(operation, outcome, duration)
}

func (m *MockRecorder) SetBalance(value float64) {
	m.Called(value)
}

type MockUserStore struct {
	mock.Mock
}

func (m *MockUserStore) CreateWithAccount(ctx context.Context, user *models.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserStore) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	args := m.Called(ctx, externalID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

type MockSessionStore struct {
	mock.Mock
}

func (m *MockSessionStore) Save(ctx context.Context, session models.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*models.Session, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

// memoryAccounts is an AccountStore whose mutations are atomic under a
// mutex, standing in for the single-statement updates of the SQL store.
type memoryAccounts struct {
	mu       sync.Mutex
	balances map[int64]decimal.Decimal
	err      error
}

func newMemoryAccounts(balances map[int64]decimal.Decimal) *memoryAccounts {
	return &memoryAccounts{balances: balances}
}

func (s *memoryAccounts) GetAccount(_ context.Context, userID int64) (*models.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return nil, s.err
	}
	balance, ok := s.balances[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &models.Account{UserID: userID, Balance: balance}, nil
}

func (s *memoryAccounts) AddBalance(_ context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return decimal.Zero, s.err
	}
	balance, ok := s.balances[userID]
	if !ok {
		return decimal.Zero, ErrNotFound
	}
	balance = balance.Add(amount)
	if balance.GreaterThan(MaxAmount) {
		return decimal.Zero, ErrBalanceLimit
	}
	s.balances[userID] = balance
	return balance, nil
}

func (s *memoryAccounts) SubtractBalance(_ context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.err != nil {
		return decimal.Zero, s.err
	}
	balance, ok := s.balances[userID]
	if !ok {
		return decimal.Zero, ErrNotFound
	}
	if balance.LessThan(amount) {
		return decimal.Zero, ErrInsufficientFunds
	}
	balance = balance.Sub(amount)
	s.balances[userID] = balance
	return balance, nil
}

type panickingRecorder struct{}

func (panickingRecorder) RecordLedgerOperation(string, string, time.Duration) { panic("registry gone") }
func (panickingRecorder) SetBalance(float64)                                 { panic("registry gone") }
