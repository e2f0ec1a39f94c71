package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-forum/internal/repository"
)

// CommunityHandler bundles repositories for creators to manage their book
// communities.
type CommunityHandler struct {
	Communities *repository.CommunityRepo
}

func NewCommunityHandler(communities *repository.CommunityRepo) *CommunityHandler {
	if communities == nil {
		panic("nil repository passed to NewCommunityHandler")
	}
	return &CommunityHandler{Communities: communities}
}

// CreateCommunity handles POST /v1/communities. The route is wrapped with
// RequireSession and RequireRole(creator), so only creators reach it.
func (h *CommunityHandler) CreateCommunity(c echo.Context) error {
	creatorID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Name        string `json:"name" form:"name"`
		Description string `json:"description" form:"description"`
		BookTitle   string `json:"book_title" form:"book_title"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	name := strings.TrimSpace(body.Name)
	if name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "community name is required"})
	}
	community := &repository.Community{
		Name:        name,
		Description: strings.TrimSpace(body.Description),
		BookTitle:   strings.TrimSpace(body.BookTitle),
		CreatorID:   creatorID,
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Communities.Create(ctx, community); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create community"})
	}
	return c.JSON(http.StatusCreated, community)
}
