package services

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/ruralpay/minibank/internal/config"
	"github.com/ruralpay/minibank/internal/logging"
	"github.com/ruralpay/minibank/internal/models"
)

// RegisterInput carries the fields needed to open a new user with an account.
type RegisterInput struct {
	FirstName  string
	LastName   string
	ExternalID string
	Password   string
}

// AuthService registers users and manages their sessions. A session is a
// signed token whose id must also be present in the session store, so
// logging out revokes the token before it expires.
type AuthService struct {
	users    UserStore
	sessions SessionStore
	hasher   *PasswordHasher
	secret   []byte
	ttl      time.Duration
	logger   logrus.FieldLogger
	now      func() time.Time
}

func NewAuthService(users UserStore, sessions SessionStore, hasher *PasswordHasher, cfg config.SessionConfig, logger logrus.FieldLogger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		hasher:   hasher,
		secret:   []byte(cfg.Secret),
		ttl:      cfg.TTL,
		logger:   logging.Component(logger, "auth"),
		now:      time.Now,
	}
}

// Register creates the user and its zero-balance account. It returns
// ErrConflict when the external id is taken.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (int64, error) {
	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return 0, fmt.Errorf("%w: hash password: %w", ErrInternal, err)
	}

	user := &models.User{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		ExternalID:   in.ExternalID,
		PasswordHash: hash,
	}

	id, err := s.users.CreateWithAccount(ctx, user)
	if errors.Is(err, ErrConflict) {
		s.logger.WithField("external_id", in.ExternalID).Info("Registration rejected: duplicate external id")
		return 0, err
	}
	if err != nil {
		s.logger.WithError(err).Error("User creation failed")
		return 0, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	s.logger.WithField("user_id", id).Info("User registered")
	return id, nil
}

// Login checks credentials and opens a session. Unknown users and wrong
// passwords both yield ErrUnauthorized.
func (s *AuthService) Login(ctx context.Context, externalID, password string) (string, *models.Session, error) {
	user, err := s.users.GetByExternalID(ctx, externalID)
	if errors.Is(err, ErrNotFound) {
		s.logger.WithField("external_id", externalID).Info("Login failed: unknown user")
		return "", nil, ErrUnauthorized
	}
	if err != nil {
		s.logger.WithError(err).Error("User lookup failed")
		return "", nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.WithField("user_id", user.ID).Info("Login failed: wrong password")
		return "", nil, ErrUnauthorized
	}

	now := s.now()
	session := models.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		FirstName: user.FirstName,
		ExpiresAt: now.Add(s.ttl),
	}

	token, err := s.sign(session, now)
	if err != nil {
		return "", nil, fmt.Errorf("%w: sign token: %w", ErrInternal, err)
	}

	if err := s.sessions.Save(ctx, session); err != nil {
		s.logger.WithError(err).Error("Session save failed")
		return "", nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    user.ID,
		"session_id": session.ID,
	}).Info("Login successful")
	return token, &session, nil
}

// Logout revokes the session carried by token. It never fails: an invalid
// or already revoked token leaves nothing to do.
func (s *AuthService) Logout(ctx context.Context, token string) {
	if token == "" {
		return
	}

	claims, err := s.parse(token)
	if err != nil {
		s.logger.WithError(err).Debug("Logout with unusable token")
		return
	}

	if err := s.sessions.Delete(ctx, claims.ID); err != nil {
		s.logger.WithError(err).Warn("Session delete failed")
		return
	}
	s.logger.WithField("session_id", claims.ID).Info("Logout successful")
}

// Authenticate resolves token to a live session.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*models.Session, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}

	claims, err := s.parse(token)
	if err != nil {
		return nil, ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, ErrUnauthorized) {
		return nil, err
	}
	if err != nil {
		s.logger.WithError(err).Error("Session lookup failed")
		return nil, fmt.Errorf("%w: %w", ErrInternal, err)
	}

	if strconv.FormatInt(session.UserID, 10) != claims.Subject || session.Expired(s.now()) {
		return nil, ErrUnauthorized
	}
	return session, nil
}

func (s *AuthService) sign(session models.Session, now time.Time) (string, error) {
	claims := jwt.RegisteredClaims{
		ID:        session.ID,
		Subject:   strconv.FormatInt(session.UserID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *AuthService) parse(token string) (*jwt.RegisteredClaims, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, err
	}
	if claims.ID == "" {
		return nil, errors.New("token has no session id")
	}
	return claims, nil
}
