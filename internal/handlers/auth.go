// Package handlers contains the HTTP handlers behind the JSON API.
package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/courier/internal/auth"
	"github.com/nfrund/courier/internal/domain"
	"github.com/nfrund/courier/internal/middleware"
)

// AuthHandler handles registration, login, logout, and the profile probe.
type AuthHandler struct {
	users  domain.UserRepository
	tokens *auth.TokenService
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(users domain.UserRepository, tokens *auth.TokenService) *AuthHandler {
	return &AuthHandler{users: users, tokens: tokens}
}

// Register creates a new account and signs the client in immediately
// (POST /api/register).
func (h *AuthHandler) Register(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username and password are required"})
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		slog.Error("Failed to hash password", "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create account"})
	}

	user, err := h.users.Create(c.Request().Context(), req.Username, hash)
	if err != nil {
		if errors.Is(err, domain.ErrUserAlreadyExists) {
			return c.JSON(http.StatusConflict, map[string]string{"error": "username already taken"})
		}
		slog.Error("Error creating user", "username", req.Username, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create account"})
	}

	claim := domain.Claim{UserID: user.IDString(), Username: user.Username}
	token, err := h.tokens.Issue(claim)
	if err != nil {
		slog.Error("Failed to issue token", "userID", claim.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create session"})
	}

	setTokenCookie(c, token)
	return c.JSON(http.StatusCreated, map[string]string{"id": claim.UserID})
}

// Login verifies credentials and starts a session (POST /api/login).
func (h *AuthHandler) Login(c echo.Context) error {
	var req credentialsRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request body"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "username and password are required"})
	}

	user, err := h.authenticate(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidCredentials) {
			slog.Warn("Failed login attempt", "username", req.Username)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid credentials"})
		}
		slog.Error("Error looking up user", "username", req.Username, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not sign in"})
	}

	claim := domain.Claim{UserID: user.IDString(), Username: user.Username}
	token, err := h.tokens.Issue(claim)
	if err != nil {
		slog.Error("Failed to issue token", "userID", claim.UserID, "error", err)
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "could not create session"})
	}

	setTokenCookie(c, token)
	return c.JSON(http.StatusOK, map[string]string{"id": claim.UserID})
}

// authenticate resolves a username/password pair to the stored user. An
// unknown user and a wrong password both yield domain.ErrInvalidCredentials
// so the two cases are indistinguishable to a caller probing for accounts.
func (h *AuthHandler) authenticate(ctx context.Context, username, password string) (*domain.User, error) {
	user, err := h.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.ComparePassword(password, user.Password) {
		return nil, domain.ErrInvalidCredentials
	}
	return user, nil
}

// Logout expires the session cookie (POST /api/logout).
func (h *AuthHandler) Logout(c echo.Context) error {
	setTokenCookie(c, "")
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Profile returns the identity behind the session cookie (GET /api/profile).
// Clients call it on page load to restore their session.
func (h *AuthHandler) Profile(c echo.Context) error {
	cookie, err := c.Cookie(middleware.TokenCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "no token"})
	}

	claim, err := h.tokens.Verify(cookie.Value)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"userId":   claim.UserID,
		"username": claim.Username,
	})
}

// setTokenCookie creates and sets the session cookie. An empty token
// expires the cookie immediately, logging the client out.
func setTokenCookie(c echo.Context, token string) {
	cookie := new(http.Cookie)
	cookie.Name = middleware.TokenCookieName
	cookie.Value = token
	cookie.Path = "/"
	if token == "" {
		cookie.MaxAge = -1
	} else {
		cookie.Expires = time.Now().UTC().Add(24 * time.Hour)
	}
	// HttpOnly keeps the token away from client-side scripts; SameSite=Lax
	// still sends it on the top-level navigations the client needs.
	cookie.HttpOnly = true
	cookie.Secure = c.Request().TLS != nil
	cookie.SameSite = http.SameSiteLaxMode
	c.SetCookie(cookie)
}
