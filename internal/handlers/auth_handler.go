package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/ruralpay/minibank/internal/config"
	"github.com/ruralpay/minibank/internal/middleware"
	"github.com/ruralpay/minibank/internal/models"
	"github.com/ruralpay/minibank/internal/services"
)

// Auth is the account and session API the handlers need.
type Auth interface {
	Register(ctx context.Context, in services.RegisterInput) (int64, error)
	Login(ctx context.Context, externalID, password string) (string, *models.Session, error)
	Logout(ctx context.Context, token string)
}

// RegisterRequest represents the registration request payload
// @Description Registration request structure
type RegisterRequest struct {
	FirstName  string `json:"first_name" validate:"required,max=50" example:"Ada"`
	LastName   string `json:"last_name" validate:"required,max=50" example:"Lovelace"`
	ExternalID string `json:"external_id" validate:"required,number,max=9" pattern:"^[0-9]+$" example:"123456789"`
	Password   string `json:"password" validate:"required,min=6" example:"password123"`
}

// LoginRequest represents the login request payload
// @Description Login request structure
type LoginRequest struct {
	ExternalID string `json:"external_id" validate:"required" example:"123456789"`
	Password   string `json:"password" validate:"required" example:"password123"`
}

type RegisterResponse struct {
	Message string `json:"message" example:"Registered successfully"`
	UserID  int64  `json:"user_id" example:"1"`
}

type SessionUser struct {
	ID        int64  `json:"id" example:"1"`
	FirstName string `json:"first_name" example:"Ada"`
}

type LoginResponse struct {
	Message string      `json:"message" example:"Logged in"`
	Token   string      `json:"token"`
	User    SessionUser `json:"user"`
}

type HomeResponse struct {
	Authenticated bool   `json:"authenticated"`
	FirstName     string `json:"first_name,omitempty"`
}

type AuthHandler struct {
	auth      Auth
	sessions  *middleware.SessionAuth
	cookie    config.SessionConfig
	validator *services.ValidationHelper
}

func NewAuthHandler(auth Auth, sessions *middleware.SessionAuth, cookie config.SessionConfig) *AuthHandler {
	return &AuthHandler{
		auth:      auth,
		sessions:  sessions,
		cookie:    cookie,
		validator: services.NewValidationHelper(),
	}
}

// Register handles user registration
// @Summary Register a new user
// @Description Create a user and a zero-balance account
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RegisterRequest true "Registration request"
// @Success 201 {object} RegisterResponse
// @Failure 400 {object} services.ErrorResponse "Invalid request or duplicate external id"
// @Failure 429 {object} services.ErrorResponse
// @Failure 500 {object} services.ErrorResponse
// @Router /register [post]
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	id, err := h.auth.Register(r.Context(), services.RegisterInput{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		ExternalID: req.ExternalID,
		Password:   req.Password,
	})
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, RegisterResponse{Message: "Registered successfully", UserID: id})
}

// Login handles user authentication
// @Summary Login user
// @Description Check credentials and start a session; the token is set as a cookie and returned
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login request"
// @Success 200 {object} LoginResponse
// @Failure 400 {object} services.ErrorResponse
// @Failure 401 {object} services.ErrorResponse "Invalid credentials"
// @Failure 429 {object} services.ErrorResponse
// @Router /login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !decodeJSON(w, r, h.validator, &req) {
		return
	}

	token, session, err := h.auth.Login(r.Context(), req.ExternalID, req.Password)
	if errors.Is(err, services.ErrUnauthorized) {
		services.SendErrorResponse(w, "Invalid credentials", http.StatusUnauthorized, nil)
		return
	}
	if err != nil {
		services.SendServiceError(w, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    token,
		Path:     "/",
		Expires:  session.ExpiresAt,
		MaxAge:   int(time.Until(session.ExpiresAt).Seconds()),
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, LoginResponse{
		Message: "Logged in",
		Token:   token,
		User:    SessionUser{ID: session.UserID, FirstName: session.FirstName},
	})
}

// Logout ends the session
// @Summary Logout user
// @Description Revoke the current session, clear the cookie and redirect to /
// @Tags auth
// @Success 302
// @Router /logout [get]
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	h.auth.Logout(r.Context(), h.sessions.Token(r))

	http.SetCookie(w, &http.Cookie{
		Name:     h.cookie.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.cookie.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	http.Redirect(w, r, "/", http.StatusFound)
}

// Home reports the caller's session state
// @Summary Session state
// @Description Whether the caller is logged in, and their first name if so
// @Tags auth
// @Produce json
// @Success 200 {object} HomeResponse
// @Router / [get]
func (h *AuthHandler) Home(w http.ResponseWriter, r *http.Request) {
	resp := HomeResponse{}
	if session, ok := middleware.SessionFromContext(r.Context()); ok {
		resp.Authenticated = true
		resp.FirstName = session.FirstName
	}
	writeJSON(w, http.StatusOK, resp)
}
