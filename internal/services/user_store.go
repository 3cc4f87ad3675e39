package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ruralpay/minibank/internal/models"
)

// UserStore persists users. CreateWithAccount must create the user and its
// zero-balance account together or not at all.
type UserStore interface {
	CreateWithAccount(ctx context.Context, user *models.User) (int64, error)
	GetByExternalID(ctx context.Context, externalID string) (*models.User, error)
}

const (
	insertUserQuery      = `INSERT INTO users (first_name, last_name, external_id, password_hash) VALUES ($1, $2, $3, $4) RETURNING id`
	insertAccountQuery   = `INSERT INTO accounts (user_id, balance) VALUES ($1, 0.00)`
	selectUserByExtQuery = `SELECT id, first_name, last_name, external_id, password_hash, created_at FROM users WHERE external_id = $1`
)

// PostgresUserStore implements UserStore on the users and accounts tables.
type PostgresUserStore struct {
	db *sqlx.DB
}

func NewPostgresUserStore(db *sqlx.DB) *PostgresUserStore {
	return &PostgresUserStore{db: db}
}

var _ UserStore = (*PostgresUserStore)(nil)

func (s *PostgresUserStore) CreateWithAccount(ctx context.Context, user *models.User) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	var userID int64
	err = tx.QueryRowxContext(ctx, insertUserQuery,
		user.FirstName, user.LastName, user.ExternalID, user.PasswordHash).Scan(&userID)
	if pqErrorIs(err, pqUniqueViolation) {
		return 0, ErrConflict
	}
	if err != nil {
		return 0, fmt.Errorf("insert user: %w", err)
	}

	if _, err := tx.ExecContext(ctx, insertAccountQuery, userID); err != nil {
		return 0, fmt.Errorf("insert account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	user.ID = userID
	return userID, nil
}

func (s *PostgresUserStore) GetByExternalID(ctx context.Context, externalID string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, selectUserByExtQuery, externalID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
