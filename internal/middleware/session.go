package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"context"  // context with timeout bounds the revocation lookup
	"net/http" // HTTP status codes for responses
	"time"     // timeout duration

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/iliyamo/book-forum/internal/repository" // session revocation lookups
	"github.com/iliyamo/book-forum/internal/utils"      // session token parsing
)

// SessionCookieName is the cookie that carries the signed session token.
const SessionCookieName = "forum_session"

// Context keys populated by RequireSession for downstream handlers.
const (
	CtxUserID      = "user_id"
	CtxRole        = "role"
	CtxIsModerator = "is_moderator"
	CtxSessionHash = "session_hash"
)

// RequireSession returns an Echo middleware that authenticates a request
// from its session cookie.  The token signature is verified first, which is
// a pure function of the cookie value and the secret; then the token's hash
// is checked against the sessions table so that a token revoked at logout
// stops working even though its signature is still valid.  On success the
// resolved identity is stored in the request context under the Ctx* keys.
// Any failure responds 401 without reaching the wrapped handler.
func RequireSession(secret string, sessions *repository.SessionRepo) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			cookie, err := c.Cookie(SessionCookieName)
			if err != nil || cookie.Value == "" {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			claims, err := utils.ParseSessionToken(secret, cookie.Value)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
			}
			hash := utils.HashSessionRaw(cookie.Value)

			ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
			defer cancel()
			userID, err := sessions.Validate(ctx, hash)
			if err != nil || userID != claims.UserID {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid session"})
			}

			c.Set(CtxUserID, claims.UserID)
			c.Set(CtxRole, claims.Role)
			c.Set(CtxIsModerator, claims.Moderator)
			c.Set(CtxSessionHash, hash)
			return next(c)
		}
	}
}
