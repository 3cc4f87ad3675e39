package handlers

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"github.com/ruralpay/minibank/internal/models"
	"github.com/ruralpay/minibank/internal/services"
)

type MockLedger struct {
	mock.Mock
}

func (m *MockLedger) GetBalance(ctx context.Context, accountID int64) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedger) Deposit(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func (m *MockLedger) Withdraw(ctx context.Context, accountID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID, amount)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

type MockAuth struct {
	mock.Mock
}

func (m *MockAuth) Register(ctx context.Context, in services.RegisterInput) (int64, error) {
	args := m.Called(ctx, in)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockAuth) Login(ctx context.Context, externalID, password string) (string, *models.Session, error) {
	args := m.Called(ctx, externalID, password)
	if args.Get(1) == nil {
		return args.String(0), nil, args.Error(2)
	}
	return args.String(0), args.Get(1).(*models.Session), args.Error(2)
}

func (m *MockAuth) Logout(ctx context.Context, token string) {
	m.Called(ctx, token)
}

func (m *MockAuth) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Session), args.Error(1)
}

// memoryBank backs both the user and account stores for router tests.
type memoryBank struct {
	mu       sync.Mutex
	nextID   int64
	users    map[string]*models.User
	balances map[int64]decimal.Decimal
}

func newMemoryBank() *memoryBank {
	return &memoryBank{users: make(map[string]*models.User), balances: make(map[int64]decimal.Decimal)}
}

func (b *memoryBank) CreateWithAccount(_ context.Context, user *models.User) (int64, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if _, ok := b.users[user.ExternalID]; ok {
		return 0, services.ErrConflict
	}
	b.nextID++
	stored := *user
	stored.ID = b.nextID
	b.users[user.ExternalID] = &stored
	b.balances[stored.ID] = decimal.Zero
	user.ID = stored.ID
	return stored.ID, nil
}

func (b *memoryBank) GetByExternalID(_ context.Context, externalID string) (*models.User, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	user, ok := b.users[externalID]
	if !ok {
		return nil, services.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (b *memoryBank) GetAccount(_ context.Context, userID int64) (*models.Account, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance, ok := b.balances[userID]
	if !ok {
		return nil, services.ErrNotFound
	}
	return &models.Account{UserID: userID, Balance: balance}, nil
}

func (b *memoryBank) AddBalance(_ context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance, ok := b.balances[userID]
	if !ok {
		return decimal.Zero, services.ErrNotFound
	}
	b.balances[userID] = balance.Add(amount)
	return b.balances[userID], nil
}

func (b *memoryBank) SubtractBalance(_ context.Context, userID int64, amount decimal.Decimal) (decimal.Decimal, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	balance, ok := b.balances[userID]
	if !ok {
		return decimal.Zero, services.ErrNotFound
	}
	if balance.LessThan(amount) {
		return decimal.Zero, services.ErrInsufficientFunds
	}
	b.balances[userID] = balance.Sub(amount)
	return b.balances[userID], nil
}
