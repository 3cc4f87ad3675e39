package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/ruralpay/minibank/internal/models"
	"github.com/ruralpay/minibank/internal/services"
)

// Authenticator resolves a session token.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.Session, error)
}

type contextKey struct{ name string }

var sessionKey = &contextKey{"session"}

// SessionAuth guards the session-only routes. The token comes from the
// session cookie or, failing that, an "Authorization: Bearer" header.
type SessionAuth struct {
	auth       Authenticator
	cookieName string
}

func NewSessionAuth(auth Authenticator, cookieName string) *SessionAuth {
	return &SessionAuth{auth: auth, cookieName: cookieName}
}

// Require rejects requests without a live session with 401.
func (a *SessionAuth) Require(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		session, err := a.auth.Authenticate(r.Context(), a.Token(r))
		if err != nil {
			if !errors.Is(err, services.ErrInternal) {
				err = services.ErrUnauthorized
			}
			services.SendServiceError(w, err)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithSession(r.Context(), session)))
	})
}

// Optional attaches the session when there is one and never rejects.
func (a *SessionAuth) Optional(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if token := a.Token(r); token != "" {
			if session, err := a.auth.Authenticate(r.Context(), token); err == nil {
				r = r.WithContext(WithSession(r.Context(), session))
			}
		}
		next.ServeHTTP(w, r)
	})
}

// Token extracts the raw session token from r, or "".
func (a *SessionAuth) Token(r *http.Request) string {
	if cookie, err := r.Cookie(a.cookieName); err == nil && cookie.Value != "" {
		return cookie.Value
	}

	parts := strings.SplitN(r.Header.Get("Authorization"), " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

func WithSession(ctx context.Context, session *models.Session) context.Context {
	return context.WithValue(ctx, sessionKey, session)
}

// SessionFromContext returns the session attached by Require or Optional.
func SessionFromContext(ctx context.Context) (*models.Session, bool) {
	session, ok := ctx.Value(sessionKey).(*models.Session)
	return session, ok && session != nil
}
