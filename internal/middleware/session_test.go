package middleware

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/book-forum/internal/repository"
	"github.com/iliyamo/book-forum/internal/utils"
)

const testSecret = "middleware-test-secret"

func newSessionMock(t *testing.T) (*repository.SessionRepo, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return repository.NewSessionRepo(db), mock, db
}

// runGuarded sends a request through the middleware chain into a probe
// handler. The probe records whether it ran and what identity it saw.
func runGuarded(mw echo.MiddlewareFunc, cookie *http.Cookie) (*httptest.ResponseRecorder, echo.Context, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/v1/me", nil)
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, c, reached
}

func TestRequireSession_ValidToken(t *testing.T) {
	sessions, mock, db := newSessionMock(t)
	defer db.Close()

	token, err := utils.NewSessionToken(testSecret, 42, repository.RoleCreator, true)
	require.NoError(t, err)

	mock.ExpectQuery("SELECT user_id, revoked_at FROM sessions WHERE token_hash=").
		WithArgs(token.Hash).
		WillReturnRows(sqlmock.NewRows([]string{"user_id", "revoked_at"}).AddRow(42, nil))

	rec, c, reached := runGuarded(RequireSession(testSecret, sessions),
		&http.Cookie{Name: SessionCookieName, Value: token.Raw})

	assert.True(t, reached)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(42), c.Get(CtxUserID))
	assert.Equal(t, repository.RoleCreator, c.Get(CtxRole))
	assert.Equal(t, true, c.Get(CtxIsModerator))
	assert.Equal(t, token.Hash, c.Get(CtxSessionHash))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireSession_NoCookie(t *testing.T) {
	sessions, mock, db := newSessionMock(t)
	defer db.Close()

	rec, _, reached := runGuarded(RequireSession(testSecret, sessions), nil)

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireSession_BadSignature(t *testing.T) {
	sessions, mock, db := newSessionMock(t)
	defer db.Close()

	// Signed with a different secret; rejected before any DB access.
	token, err := utils.NewSessionToken("some-other-secret", 42, repository.RoleReader, false)
	require.NoError(t, err)

	rec, _, reached := runGuarded(RequireSession(testSecret, sessions),
		&http.Cookie{Name: SessionCookieName, Value: token.Raw})

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestRequireSession_RevokedSession(t *testing.T) {
	sessions, mock, db := newSessionMock(t)
	defer db.Close()

	token, err := utils.NewSessionToken(testSecret, 42, repository.RoleReader, false)
	require.NoError(t, err)

	// The repository maps a revoked row to sql.ErrNoRows.
	mock.ExpectQuery("SELECT user_id, revoked_at FROM sessions WHERE token_hash=").
		WithArgs(token.Hash).
		WillReturnError(sql.ErrNoRows)

	rec, _, reached := runGuarded(RequireSession(testSecret, sessions),
		&http.Cookie{Name: SessionCookieName, Value: token.Raw})

	assert.False(t, reached)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func modProbe(mw echo.MiddlewareFunc, setup func(echo.Context)) (*httptest.ResponseRecorder, bool) {
	e := echo.New()
	req := httptest.NewRequest(http.MethodDelete, "/v1/posts/1", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if setup != nil {
		setup(c)
	}
	reached := false
	handler := mw(func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec, reached
}

func TestRequireModerator(t *testing.T) {
	t.Run("unauthenticated is 401", func(t *testing.T) {
		rec, reached := modProbe(RequireModerator(), nil)
		assert.False(t, reached)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("authenticated non-moderator is 403", func(t *testing.T) {
		rec, reached := modProbe(RequireModerator(), func(c echo.Context) {
			c.Set(CtxUserID, uint64(7))
			c.Set(CtxIsModerator, false)
		})
		assert.False(t, reached)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("moderator passes", func(t *testing.T) {
		rec, reached := modProbe(RequireModerator(), func(c echo.Context) {
			c.Set(CtxUserID, uint64(7))
			c.Set(CtxIsModerator, true)
		})
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
	})
}

func TestRequireRole(t *testing.T) {
	t.Run("allowed role passes", func(t *testing.T) {
		rec, reached := modProbe(RequireRole(repository.RoleCreator), func(c echo.Context) {
			c.Set(CtxRole, repository.RoleCreator)
		})
		assert.True(t, reached)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("other role is 403", func(t *testing.T) {
		rec, reached := modProbe(RequireRole(repository.RoleCreator), func(c echo.Context) {
			c.Set(CtxRole, repository.RoleReader)
		})
		assert.False(t, reached)
		assert.Equal(t, http.StatusForbidden, rec.Code)
	})
}
