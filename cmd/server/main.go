package main // Entry point package

import (
	"context"
	"log" // Logging library
	"time"

	"github.com/joho/godotenv"    // .env bootstrap for local development
	"github.com/labstack/echo/v4" // Echo web framework

	"github.com/iliyamo/book-forum/internal/config"   // Internal config loader
	"github.com/iliyamo/book-forum/internal/database" // MySQL pool + migrations
	"github.com/iliyamo/book-forum/internal/handler"
	"github.com/iliyamo/book-forum/internal/queue" // audit event consumer
	"github.com/iliyamo/book-forum/internal/repository"
	"github.com/iliyamo/book-forum/internal/router" // Internal router setup
)

func main() {
	_ = godotenv.Load() // best effort; real deployments set the environment directly

	cfg := config.Load() // Load environment config

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrations: %v", err)
	}

	users := repository.NewUserRepo(db)
	invites := repository.NewInviteRepo(db)
	sessions := repository.NewSessionRepo(db)
	communities := repository.NewCommunityRepo(db)
	topics := repository.NewTopicRepo(db)
	posts := repository.NewPostRepo(db)
	follows := repository.NewFollowRepo(db)

	// Seed the fixed general topics on boot; the insert is idempotent.
	seedCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	if err := topics.Seed(seedCtx); err != nil {
		log.Fatalf("seed topics: %v", err)
	}
	cancel()

	rdb := config.NewRedisClient() // nil disables rate limiting and caching

	authHandler := handler.NewAuthHandler(cfg, db, users, invites, sessions)
	communityHandler := handler.NewCommunityHandler(communities)
	postHandler := handler.NewPostHandler(posts, communities, topics)
	followHandler := handler.NewFollowHandler(follows, users, posts)
	moderatorHandler := handler.NewModeratorHandler(posts, invites)
	publicHandler := &handler.PublicHandler{
		Communities: communities,
		Topics:      topics,
		Posts:       posts,
		Users:       users,
	}

	e := echo.New() // Create Echo instance
	router.RegisterRoutes(e)
	router.RegisterAuth(e, authHandler, sessions, rdb, config.LoadRateLimitConfig())
	router.RegisterForum(e, cfg.SessionSecret, sessions, communityHandler, postHandler, followHandler, moderatorHandler)
	router.RegisterPublic(e, publicHandler, rdb, config.LoadCacheConfig())

	// Consume moderation/invite audit events in the background.
	go func() {
		if err := queue.StartAuditConsumer(); err != nil {
			log.Printf("audit consumer stopped: %v", err)
		}
	}()

	addr := ":" + cfg.Port                                // Address string with port
	log.Printf("listening on %s (env=%s)", addr, cfg.Env) // Print startup info

	if err := e.Start(addr); err != nil { // Start HTTP server
		log.Fatal(err) // Log and exit if server fails
	}
}
