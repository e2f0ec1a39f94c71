package handler

import (
	"context"      // provides context with cancellation for DB calls
	"database/sql" // transaction control for the registration flow
	"net/http"     // HTTP status codes and primitives
	"strings"      // string manipulation utilities
	"time"         // timeouts for DB calls

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/iliyamo/book-forum/internal/config"     // app configuration
	"github.com/iliyamo/book-forum/internal/middleware" // session cookie name and context keys
	"github.com/iliyamo/book-forum/internal/queue"      // audit event payloads
	"github.com/iliyamo/book-forum/internal/repository" // DB repositories
	queue_publisher "github.com/iliyamo/book-forum/internal/service"
	"github.com/iliyamo/book-forum/internal/utils" // hashing, tokens, one-time codes
)

// AuthHandler bundles dependencies for the registration, login and logout
// endpoints. It owns the only multi-table transaction in the application:
// the registration commit.
type AuthHandler struct {
	Cfg      config.Config
	DB       *sql.DB
	Users    *repository.UserRepo
	Invites  *repository.InviteRepo
	Sessions *repository.SessionRepo
}

func NewAuthHandler(cfg config.Config, db *sql.DB, u *repository.UserRepo, i *repository.InviteRepo, s *repository.SessionRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, DB: db, Users: u, Invites: i, Sessions: s}
}

// ----- DTOs -----

type registerReq struct {
	Username    string `json:"username" form:"username"`
	Email       string `json:"email" form:"email"`
	Password    string `json:"password" form:"password"`
	Role        string `json:"role" form:"role"` // reader | creator | journalist
	InviteCode  string `json:"invite_code" form:"invite_code"`
	InviteToken string `json:"invite_token" form:"invite_token"`
	IsModerator bool   `json:"is_moderator" form:"is_moderator"`
}

type loginReq struct {
	Username string `json:"username" form:"username"`
	Password string `json:"password" form:"password"`
	Code     string `json:"code" form:"code"`
}

type userPart struct {
	ID          uint64 `json:"id"`
	Username    string `json:"username"`
	Email       string `json:"email,omitempty"`
	Role        string `json:"role"`
	IsModerator bool   `json:"is_moderator"`
}

type registerResp struct {
	User userPart `json:"user"`
	// OTPSecret is returned exactly once so the new user can provision an
	// authenticator app. It is never retrievable again.
	OTPSecret string `json:"otp_secret"`
}

// Register runs the whole registration attempt as one transaction: field
// validation, duplicate checks, the role-specific gate, invite redemption,
// user creation and session creation either all commit or none do. A failed
// check leaves no invite consumed and no user row behind.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.ToLower(strings.TrimSpace(req.Role))

	if req.Username == "" || !validRole(role) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and a valid role are required"})
	}
	if req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "password is required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	tx, err := h.DB.BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	defer func() { _ = tx.Rollback() }()

	taken, err := h.Users.UsernameTakenTx(ctx, tx, req.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if taken {
		return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
	}
	if req.Email != "" {
		taken, err := h.Users.EmailTakenTx(ctx, tx, req.Email)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
		}
		if taken {
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
	}

	// Role-specific gate. Readers pass unconditionally; creators and
	// journalists must consume an invite inside this transaction.
	switch role {
	case repository.RoleCreator:
		if req.Email == "" || req.InviteCode == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "email and invite code are required for creators"})
		}
		if req.Username != repository.EmailDomain(req.Email) {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "username must match your email domain"})
		}
		if err := h.Invites.RedeemCreatorInviteTx(ctx, tx, req.Email, req.InviteCode); err != nil {
			if err == repository.ErrInviteInvalid {
				return c.JSON(http.StatusConflict, echo.Map{"error": "invalid or used invite"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
		}
	case repository.RoleJournalist:
		if req.InviteToken == "" {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "an invite token is required for journalists"})
		}
		if err := h.Invites.RedeemJournalistInviteTx(ctx, tx, req.InviteToken); err != nil {
			if err == repository.ErrInviteInvalid {
				return c.JSON(http.StatusConflict, echo.Map{"error": "invalid or used invite"})
			}
			return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
		}
	}

	secret, err := utils.NewOTPSecret(h.Cfg.TOTPIssuer, req.Username)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	user := &repository.User{
		Username:     req.Username,
		Email:        req.Email,
		PasswordHash: hash,
		OTPSecret:    secret,
		Role:         role,
		IsModerator:  req.IsModerator,
	}
	uid, err := h.Users.CreateTx(ctx, tx, user)
	if err != nil {
		switch err {
		case repository.ErrUsernameExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "username already exists"})
		case repository.ErrEmailExists:
			return c.JSON(http.StatusConflict, echo.Map{"error": "email already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	token, err := utils.NewSessionToken(h.Cfg.SessionSecret, uid, role, req.IsModerator)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}
	if err := h.Sessions.CreateTx(ctx, tx, uid, token.Hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "registration failed"})
	}

	// Audit the invite consumption once the commit is durable.
	if role == repository.RoleCreator || role == repository.RoleJournalist {
		_ = queue_publisher.PublishAudit(c.Request().Context(), queue.AuditEvent{
			Kind:       queue.KindInviteRedeemed,
			ActorID:    uid,
			ActorName:  req.Username,
			InviteRole: role,
			OccurredAt: time.Now().UTC().Format(time.RFC3339),
		})
	}

	h.setSessionCookie(c, token.Raw)
	return c.JSON(http.StatusCreated, registerResp{
		User: userPart{
			ID:          uid,
			Username:    req.Username,
			Email:       req.Email,
			Role:        role,
			IsModerator: req.IsModerator,
		},
		OTPSecret: secret,
	})
}

// Login verifies the password first and the one-time code second. The two
// checks fail with distinct messages; unifying them is a known hardening
// question left open on purpose.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
	}
	req.Username = strings.TrimSpace(req.Username)
	if req.Username == "" || req.Password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "username and password are required"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()

	u, err := h.Users.GetByUsername(ctx, req.Username)
	if err != nil {
		if err == repository.ErrUserNotFound {
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "query failed"})
	}
	if !utils.VerifyPassword(u.PasswordHash, req.Password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid credentials"})
	}
	if strings.TrimSpace(req.Code) == "" || !utils.VerifyOneTimeCode(u.OTPSecret, strings.TrimSpace(req.Code)) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "one-time code missing or invalid"})
	}

	token, err := utils.NewSessionToken(h.Cfg.SessionSecret, u.ID, u.Role, u.IsModerator)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "issue session failed"})
	}
	if err := h.Sessions.Create(ctx, u.ID, token.Hash); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "save session failed"})
	}

	h.setSessionCookie(c, token.Raw)
	return c.JSON(http.StatusOK, echo.Map{
		"user": userPart{
			ID:          u.ID,
			Username:    u.Username,
			Email:       u.Email,
			Role:        u.Role,
			IsModerator: u.IsModerator,
		},
	})
}

// Logout revokes the presented session and clears the cookie. A request
// without a cookie has nothing to revoke and is rejected.
func (h *AuthHandler) Logout(c echo.Context) error {
	cookie, err := c.Cookie(middleware.SessionCookieName)
	if err != nil || cookie.Value == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "no session to log out"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Sessions.Revoke(ctx, utils.HashSessionRaw(cookie.Value)); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	h.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// LogoutAll revokes every active session the user holds, ending sessions on
// other devices along with this one. Runs behind RequireSession, so the
// identity comes from the validated token, not the cookie alone.
func (h *AuthHandler) LogoutAll(c echo.Context) error {
	uid, err := requestUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
	defer cancel()
	if err := h.Sessions.RevokeAllForUser(ctx, uid); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "logout failed"})
	}

	h.clearSessionCookie(c)
	return c.NoContent(http.StatusNoContent)
}

// Me: simple protected endpoint.
func (h *AuthHandler) Me(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":      c.Get(middleware.CtxUserID),
		"role":         c.Get(middleware.CtxRole),
		"is_moderator": c.Get(middleware.CtxIsModerator),
	})
}

func (h *AuthHandler) setSessionCookie(c echo.Context, raw string) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    raw,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearSessionCookie(c echo.Context) {
	c.SetCookie(&http.Cookie{
		Name:     middleware.SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.Cfg.Env == "prod",
		SameSite: http.SameSiteLaxMode,
	})
}

func validRole(role string) bool {
	switch role {
	case repository.RoleReader, repository.RoleCreator, repository.RoleJournalist:
		return true
	}
	return false
}
