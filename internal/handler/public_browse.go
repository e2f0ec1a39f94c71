// Package handler exposes HTTP handlers for both authenticated and public endpoints.
// This file defines handlers for the public browsing API. These routes allow
// unauthenticated visitors to browse communities, general topics and creator
// profiles without an account. Sensitive fields (emails, password hashes,
// one-time-code secrets) never appear in responses.

package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-forum/internal/repository"
)

// PublicHandler aggregates repositories needed for unauthenticated browsing.
type PublicHandler struct {
	Communities *repository.CommunityRepo
	Topics      *repository.TopicRepo
	Posts       *repository.PostRepo
	Users       *repository.UserRepo
}

// PublicUser represents a user exposed via the public API. It contains only
// safe fields.
type PublicUser struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// ListCommunities returns all communities, newest first, plus the creator
// directory shown on the index page.
func (h *PublicHandler) ListCommunities(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	communities, err := h.Communities.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	creators, err := h.Users.ListCreators(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	pubCreators := make([]PublicUser, 0, len(creators))
	for _, u := range creators {
		pubCreators = append(pubCreators, PublicUser{ID: u.ID, Username: u.Username, Role: u.Role})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": communities, "creators": pubCreators})
}

// GetCommunity returns one community and its posts, newest first.
func (h *PublicHandler) GetCommunity(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	community, err := h.Communities.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrCommunityNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "community not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	posts, err := h.Posts.ListByCommunity(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"community": community, "posts": posts})
}

// ListTopics returns the general topics ordered by name.
func (h *PublicHandler) ListTopics(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	topics, err := h.Topics.ListAll(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": topics})
}

// GetTopic returns one general topic and its posts, newest first.
func (h *PublicHandler) GetTopic(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	topic, err := h.Topics.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrTopicNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "topic not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	posts, err := h.Posts.ListByTopic(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"topic": topic, "posts": posts})
}

// GetProfile returns a user's public profile and the posts published on it.
func (h *PublicHandler) GetProfile(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	owner, err := h.Users.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "user not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	posts, err := h.Posts.ListByProfile(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"owner": PublicUser{ID: owner.ID, Username: owner.Username, Role: owner.Role},
		"posts": posts,
	})
}

// SearchCommunities matches communities by name or book title. An empty
// query returns an empty result rather than the whole table.
func (h *PublicHandler) SearchCommunities(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if query == "" {
		return c.JSON(http.StatusOK, echo.Map{"items": []repository.Community{}})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	items, err := h.Communities.Search(ctx, query)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}
