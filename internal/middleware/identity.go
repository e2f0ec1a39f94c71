package middleware

// identity.go defines helper functions shared across middleware files. It
// provides a best-effort user identifier for rate-limit bucket keys: the
// auth endpoints run before any session exists, so most requests key as
// "guest", but an already-signed-in user re-authenticating keys by id.

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

// currentUserID extracts a user identifier from the request context. It
// returns "guest" when no user is authenticated.
func currentUserID(c echo.Context) string {
	if v := c.Get(CtxUserID); v != nil {
		if id, ok := v.(uint64); ok && id != 0 {
			return strconv.FormatUint(id, 10)
		}
	}
	return "guest"
}
