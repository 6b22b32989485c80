// Package middleware provides the HTTP middleware shared across API routes.
package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/nfrund/courier/internal/auth"
	"github.com/nfrund/courier/internal/domain"
)

// ClaimContextKey is the echo context key the verified identity claim is
// stored under.
const ClaimContextKey = "claim"

// TokenCookieName is the cookie carrying the session token.
const TokenCookieName = "token"

// Auth creates a middleware that protects API routes requiring an
// authenticated user. Requests without a valid token cookie get a JSON 401.
func Auth(verifier auth.Verifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(TokenCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "no token"})
			}

			claim, err := verifier.Verify(cookie.Value)
			if err != nil {
				// Clear the bad cookie so the client stops sending it.
				c.SetCookie(&http.Cookie{
					Name:   TokenCookieName,
					Value:  "",
					Path:   "/",
					MaxAge: -1,
				})
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid token"})
			}

			c.Set(ClaimContextKey, claim)
			return next(c)
		}
	}
}

// ClaimFrom retrieves the verified claim stored by Auth. The second return
// is false on routes the middleware did not run on.
func ClaimFrom(c echo.Context) (domain.Claim, bool) {
	claim, ok := c.Get(ClaimContextKey).(domain.Claim)
	return claim, ok
}
