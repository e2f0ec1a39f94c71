package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireModerator returns a middleware that enforces the moderator flag on
// the authenticated user.  An unauthenticated request is rejected with 401
// before the flag is even considered; an authenticated non-moderator gets
// 403.  The check is a pure predicate over the identity RequireSession
// resolved; it performs no writes.
func RequireModerator() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Get(CtxUserID) == nil {
				return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
			}
			mod, ok := c.Get(CtxIsModerator).(bool)
			if !ok || !mod {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "moderator permissions required"})
			}
			return next(c)
		}
	}
}

// RequireRole returns a middleware function that enforces that the
// authenticated user has one of the specified roles.  If the user's role is
// not in the allowed set, the request is aborted with 403.  It assumes
// RequireSession has stored the role in the context.
func RequireRole(roles ...string) echo.MiddlewareFunc {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			v := c.Get(CtxRole)
			role, ok := v.(string)
			if !ok || !allowed[role] {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
