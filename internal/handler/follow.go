package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-forum/internal/repository"
)

// FollowHandler bundles repositories for the follow relation and the
// social feed built from it.
type FollowHandler struct {
	Follows *repository.FollowRepo
	Users   *repository.UserRepo
	Posts   *repository.PostRepo
}

func NewFollowHandler(follows *repository.FollowRepo, users *repository.UserRepo, posts *repository.PostRepo) *FollowHandler {
	if follows == nil || users == nil || posts == nil {
		panic("nil repository passed to NewFollowHandler")
	}
	return &FollowHandler{Follows: follows, Users: users, Posts: posts}
}

// Follow handles POST /v1/follow/:id. Following yourself is rejected, as is
// following someone twice.
func (h *FollowHandler) Follow(c echo.Context) error {
	followerID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	followeeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if followeeID == followerID {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "you cannot follow yourself"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if _, err := h.Users.GetByID(ctx, followeeID); err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.Follows.Create(ctx, followerID, followeeID); err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "you already follow this user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not follow"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Unfollow handles DELETE /v1/follow/:id. Removing a relation that does not
// exist succeeds quietly.
func (h *FollowHandler) Unfollow(c echo.Context) error {
	followerID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	followeeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Follows.Delete(ctx, followerID, followeeID); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not unfollow"})
	}
	return c.NoContent(http.StatusNoContent)
}

// Following handles GET /v1/follow/:id and reports whether the current user
// follows the user in the path, for the follow/unfollow toggle on profile
// pages.
func (h *FollowHandler) Following(c echo.Context) error {
	followerID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	followeeID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	following, err := h.Follows.Exists(ctx, followerID, followeeID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"following": following})
}

// Feed handles GET /v1/feed: profile posts of every creator the current
// user follows, newest first.
func (h *FollowHandler) Feed(c echo.Context) error {
	userID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	posts, err := h.Posts.ListFeed(ctx, userID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": posts})
}
