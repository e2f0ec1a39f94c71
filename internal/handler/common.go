package handler // handler defines http handlers

import (
	"errors"  // errors provides the sentinel used in requestUserID
	"strconv" // strconv converts strings to numeric types

	"github.com/labstack/echo/v4" // echo defines request context types

	"github.com/iliyamo/book-forum/internal/middleware" // context keys set by RequireSession
)

// requestUserID extracts the authenticated user's id from echo.Context and
// converts it to uint64.
func requestUserID(c echo.Context) (uint64, error) {
	v := c.Get(middleware.CtxUserID)
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// requestRole returns the authenticated user's role, or "" when missing.
func requestRole(c echo.Context) string {
	if role, ok := c.Get(middleware.CtxRole).(string); ok {
		return role
	}
	return ""
}
