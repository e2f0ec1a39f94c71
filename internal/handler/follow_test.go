package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/book-forum/internal/middleware"
	"github.com/iliyamo/book-forum/internal/repository"
)

func newFollowTest(t *testing.T) (*FollowHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	h := NewFollowHandler(
		repository.NewFollowRepo(db),
		repository.NewUserRepo(db),
		repository.NewPostRepo(db))
	return h, mock, db
}

// followRequest builds an authenticated request against a follow route with
// the target user id in the path.
func followRequest(method string, userID uint64, targetID string) (echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, "/v1/follow/"+targetID, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues(targetID)
	c.Set(middleware.CtxUserID, userID)
	return c, rec
}

func TestFollowing(t *testing.T) {
	h, mock, db := newFollowTest(t)
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM follows WHERE follower_id=").
		WithArgs(uint64(2), uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	c, rec := followRequest(http.MethodGet, 2, "4")
	require.NoError(t, h.Following(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"following":true`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollowing_NotFollowed(t *testing.T) {
	h, mock, db := newFollowTest(t)
	defer db.Close()

	mock.ExpectQuery("SELECT 1 FROM follows WHERE follower_id=").
		WithArgs(uint64(2), uint64(4)).
		WillReturnError(sql.ErrNoRows)

	c, rec := followRequest(http.MethodGet, 2, "4")
	require.NoError(t, h.Following(c))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"following":false`)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollow_Self(t *testing.T) {
	h, mock, db := newFollowTest(t)
	defer db.Close()

	c, rec := followRequest(http.MethodPost, 2, "2")
	require.NoError(t, h.Follow(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestFollow_UnknownUser(t *testing.T) {
	h, mock, db := newFollowTest(t)
	defer db.Close()

	mock.ExpectQuery("SELECT id,username,email,password_hash,otp_secret,role,is_moderator,created_at FROM users WHERE id=").
		WithArgs(uint64(99)).
		WillReturnError(sql.ErrNoRows)

	c, rec := followRequest(http.MethodPost, 2, "99")
	require.NoError(t, h.Follow(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}
