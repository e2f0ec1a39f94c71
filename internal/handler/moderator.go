package handler

// moderator.go contains the endpoints behind the RequireModerator gate:
// deleting posts and issuing registration invites. Both actions are
// published to the audit queue after they succeed.

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/book-forum/internal/queue"
	"github.com/iliyamo/book-forum/internal/repository"
	queue_publisher "github.com/iliyamo/book-forum/internal/service"
)

// ModeratorHandler bundles repositories for moderator-only operations.
type ModeratorHandler struct {
	Posts   *repository.PostRepo
	Invites *repository.InviteRepo
}

func NewModeratorHandler(posts *repository.PostRepo, invites *repository.InviteRepo) *ModeratorHandler {
	if posts == nil || invites == nil {
		panic("nil repository passed to NewModeratorHandler")
	}
	return &ModeratorHandler{Posts: posts, Invites: invites}
}

// DeletePost handles DELETE /v1/posts/:id.
func (h *ModeratorHandler) DeletePost(c echo.Context) error {
	actorID, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	post, err := h.Posts.GetByID(ctx, id)
	if err != nil {
		if err == repository.ErrPostNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if err := h.Posts.Delete(ctx, id); err != nil {
		if err == repository.ErrPostNotFound {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "post not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}

	_ = queue_publisher.PublishAudit(ctx, queue.AuditEvent{
		Kind:       queue.KindPostDeleted,
		ActorID:    actorID,
		PostID:     post.ID,
		Detail:     post.Title,
		OccurredAt: time.Now().UTC().Format(time.RFC3339),
	})
	return c.NoContent(http.StatusNoContent)
}

// IssueCreatorInvite handles POST /v1/admin/invites/creator. The invite
// binds a full email address; registration must use that address, an exact
// code match, and a username equal to the address's domain.
func (h *ModeratorHandler) IssueCreatorInvite(c echo.Context) error {
	var body struct {
		DomainEmail string `json:"domain_email" form:"domain_email"`
		Code        string `json:"code" form:"code"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	email := strings.ToLower(strings.TrimSpace(body.DomainEmail))
	code := strings.TrimSpace(body.Code)
	if email == "" || code == "" || repository.EmailDomain(email) == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "a valid email and a code are required"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	id, err := h.Invites.IssueCreatorInvite(ctx, email, code)
	if err != nil {
		if err == repository.ErrConflict {
			return c.JSON(http.StatusConflict, echo.Map{"error": "an invite already exists for this email"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue invite"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id, "domain_email": email})
}

// IssueJournalistInvite handles POST /v1/admin/invites/journalist. The
// generated token is shown once in the response; the contact email is
// informational only.
func (h *ModeratorHandler) IssueJournalistInvite(c echo.Context) error {
	var body struct {
		ContactEmail string `json:"contact_email" form:"contact_email"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	token, err := h.Invites.IssueJournalistInvite(ctx, strings.TrimSpace(body.ContactEmail))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not issue invite"})
	}
	return c.JSON(http.StatusCreated, echo.Map{"token": token})
}
