package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4" // import the Echo web framework to handle routing
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/book-forum/internal/config"
	"github.com/iliyamo/book-forum/internal/handler"    // import the handlers that implement business logic
	"github.com/iliyamo/book-forum/internal/middleware" // import middleware for session authentication and moderator enforcement
	"github.com/iliyamo/book-forum/internal/repository"
)

// RegisterRoutes registers routes that do not require authentication on the
// provided Echo instance.  Currently it exposes only a health check.
func RegisterRoutes(e *echo.Echo) {
	// Map the GET request at path "/healthz" to the Health handler.  This
	// endpoint can be used by load balancers or monitoring systems to verify
	// that the service is up and running.
	e.GET("/healthz", handler.Health)
}

// RegisterAuth registers the authentication routes and the session-guarded
// identity endpoint.  Register and login sit behind the Redis token-bucket
// limiter so invite codes and passwords cannot be brute-forced from a
// single address; logout only needs the cookie, not a valid session.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, sessions *repository.SessionRepo, rdb *redis.Client, rlCfg config.RateLimitConfig) {
	limiter := middleware.NewTokenBucket(rlCfg, rdb)

	g := e.Group("/v1/auth")
	g.POST("/register", a.Register, limiter)
	g.POST("/login", a.Login, limiter)
	g.POST("/logout", a.Logout)

	auth := e.Group("/v1")
	auth.Use(middleware.RequireSession(a.Cfg.SessionSecret, sessions))
	auth.GET("/me", a.Me)
	auth.POST("/auth/logout-all", a.LogoutAll)
}

// RegisterForum registers the authenticated forum surface: community
// creation (creators only), posting, following and the social feed, plus
// the moderator-gated admin endpoints (post deletion and invite issuance).
func RegisterForum(e *echo.Echo, secret string, sessions *repository.SessionRepo,
	ch *handler.CommunityHandler, ph *handler.PostHandler, fh *handler.FollowHandler, mh *handler.ModeratorHandler) {

	requireSession := middleware.RequireSession(secret, sessions)

	auth := e.Group("/v1")
	auth.Use(requireSession)
	auth.POST("/communities", ch.CreateCommunity, middleware.RequireRole(repository.RoleCreator))
	auth.POST("/posts", ph.CreatePost)
	auth.POST("/follow/:id", fh.Follow)
	auth.DELETE("/follow/:id", fh.Unfollow)
	auth.GET("/follow/:id", fh.Following)
	auth.GET("/feed", fh.Feed)

	mod := e.Group("/v1")
	mod.Use(requireSession)
	mod.Use(middleware.RequireModerator())
	mod.DELETE("/posts/:id", mh.DeletePost)
	mod.POST("/admin/invites/creator", mh.IssueCreatorInvite)
	mod.POST("/admin/invites/journalist", mh.IssueJournalistInvite)
}

// RegisterPublic registers unauthenticated browse endpoints on the provided
// Echo instance.  These routes apply no session middleware and are intended
// for guest visitors; responses are cached in Redis when available.
func RegisterPublic(e *echo.Echo, p *handler.PublicHandler, rdb *redis.Client, cacheCfg config.CacheConfig) {
	cache := middleware.NewRedisCache(cacheCfg, rdb)

	// Index data: all communities plus the creator directory
	e.GET("/v1/communities", p.ListCommunities, cache)
	// One community with its posts
	e.GET("/v1/communities/:id", p.GetCommunity, cache)
	// The fixed set of general topics
	e.GET("/v1/topics", p.ListTopics, cache)
	// One topic with its posts
	e.GET("/v1/topics/:id", p.GetTopic, cache)
	// A user's public profile with their profile posts
	e.GET("/v1/users/:id", p.GetProfile, cache)
	// Community search by name or book title
	e.GET("/v1/search/communities", p.SearchCommunities, cache)
}
