package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-forum/internal/repository"
)

// PostHandler bundles repositories for authenticated posting.
type PostHandler struct {
	Posts       *repository.PostRepo
	Communities *repository.CommunityRepo
	Topics      *repository.TopicRepo
}

func NewPostHandler(posts *repository.PostRepo, communities *repository.CommunityRepo, topics *repository.TopicRepo) *PostHandler {
	if posts == nil || communities == nil || topics == nil {
		panic("nil repository passed to NewPostHandler")
	}
	return &PostHandler{Posts: posts, Communities: communities, Topics: topics}
}

// CreatePost handles POST /v1/posts. A post goes to exactly one
// destination: a community, a general topic, or the author's own profile
// page. Profile posts are a creator privilege.
func (h *PostHandler) CreatePost(c echo.Context) error {
	authorID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		Title       string  `json:"title" form:"title"`
		Content     string  `json:"content" form:"content"`
		CommunityID *uint64 `json:"community_id" form:"community_id"`
		TopicID     *uint64 `json:"topic_id" form:"topic_id"`
		ProfilePost bool    `json:"profile_post" form:"profile_post"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	title := strings.TrimSpace(body.Title)
	content := strings.TrimSpace(body.Content)
	if title == "" || content == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and content are required"})
	}

	post := &repository.Post{Title: title, Content: content, AuthorID: authorID}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	switch {
	case body.ProfilePost:
		if requestRole(c) != repository.RoleCreator {
			return c.JSON(http.StatusForbidden, echo.Map{"error": "only creators can post on a profile page"})
		}
		owner := authorID
		post.ProfileOwnerID = &owner
	case body.CommunityID != nil && *body.CommunityID != 0:
		if _, err := h.Communities.GetByID(ctx, *body.CommunityID); err != nil {
			if err == repository.ErrCommunityNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "community not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		post.CommunityID = body.CommunityID
	case body.TopicID != nil && *body.TopicID != 0:
		if _, err := h.Topics.GetByID(ctx, *body.TopicID); err != nil {
			if err == repository.ErrTopicNotFound {
				return c.JSON(http.StatusNotFound, echo.Map{"error": "topic not found"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		}
		post.GeneralTopicID = body.TopicID
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "choose a destination for your post"})
	}

	if err := h.Posts.Create(ctx, post); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create post"})
	}
	return c.JSON(http.StatusCreated, post)
}
