// Package server contains the HTTP handlers and route table for the
// application.
package server

import (
	"context"
	"fmt"
	"time"

	"quill/internal/cache"
	"quill/internal/config"
	"quill/internal/database"
	"quill/internal/media"
	"quill/internal/middleware"
	"quill/internal/repository"
	"quill/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	pageCache      *cache.PageCache
	mediaStore     *media.Store
	userRepo       repository.UserRepository
	groupRepo      repository.GroupRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	followRepo     repository.FollowRepository
	postService    *service.PostService
	commentService *service.CommentService
	followService  *service.FollowService
	userService    *service.UserService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg, middleware.Logger)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	redisClient := cache.InitRedis(cfg.RedisURL, middleware.Logger)

	return NewServerWithDeps(cfg, db, redisClient)
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and miniredis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	mediaStore := media.NewStore(cfg.MediaRoot)

	server := &Server{
		config:      cfg,
		db:          db,
		redis:       redisClient,
		pageCache:   cache.NewPageCache(redisClient, cfg.IndexCacheTTL(), middleware.Logger),
		mediaStore:  mediaStore,
		userRepo:    userRepo,
		groupRepo:   groupRepo,
		postRepo:    postRepo,
		commentRepo: commentRepo,
		followRepo:  followRepo,
	}
	server.postService = service.NewPostService(postRepo, groupRepo, userRepo, commentRepo, followRepo, mediaStore)
	server.commentService = service.NewCommentService(commentRepo, postRepo)
	server.followService = service.NewFollowService(followRepo, userRepo, postRepo)
	server.userService = service.NewUserService(userRepo)

	return server, nil
}

// PageCache exposes the page cache for explicit invalidation.
func (s *Server) PageCache() *cache.PageCache {
	return s.pageCache
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())

	// Session resolution runs before context propagation so user_id reaches
	// the logs.
	app.Use(middleware.CurrentUser(s.config.SessionSecret))
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware == nil {
		s.promMiddleware = middleware.InitMetrics("quill")
	}
	app.Use(s.promMiddleware.Middleware)

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	s.app = app

	app.Get("/health", s.HealthCheck)
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Auth
	app.Get("/auth/signup/", s.SignupForm)
	app.Post("/auth/signup/", middleware.RateLimit(s.redis, 5, 10*time.Minute), s.Signup)
	app.Get("/auth/login/", s.LoginForm)
	app.Post("/auth/login/", middleware.RateLimit(s.redis, 10, 5*time.Minute), s.Login)
	app.Get("/auth/logout/", s.Logout)

	// Listings
	app.Get("/", s.pageCache.Middleware(), s.Index)
	app.Get("/group/:slug/", s.GroupPosts)
	app.Post("/profile/:username/follow/", middleware.AuthRequired(), s.Follow)
	app.Post("/profile/:username/unfollow/", middleware.AuthRequired(), s.Unfollow)
	// Plain links still navigate by GET.
	app.Get("/profile/:username/follow/", middleware.AuthRequired(), s.Follow)
	app.Get("/profile/:username/unfollow/", middleware.AuthRequired(), s.Unfollow)
	app.Get("/profile/:username/", s.Profile)
	app.Get("/follow/", middleware.AuthRequired(), s.Feed)

	// Authoring
	app.Get("/create/", middleware.AuthRequired(), s.CreatePostForm)
	app.Post("/create/", middleware.AuthRequired(), s.CreatePost)
	app.Get("/posts/:id/edit/", middleware.AuthRequired(), s.EditPostForm)
	app.Post("/posts/:id/edit/", middleware.AuthRequired(), s.EditPost)
	app.Post("/posts/:id/comment/", middleware.AuthRequired(), s.AddComment)
	app.Get("/posts/:id/", s.PostDetail)

	// Uploaded images
	app.Get("/media/*", s.ServeMedia)
}

// HealthCheck reports process and dependency status.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	status := fiber.Map{"status": "ok"}

	if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.UserContext()) != nil {
		status["status"] = "degraded"
		status["database"] = "down"
	}
	if s.redis != nil {
		if err := s.redis.Ping(c.UserContext()).Err(); err != nil {
			status["cache"] = "down"
		}
	}

	return c.JSON(status)
}

// Start runs the HTTP server until Shutdown is called.
func (s *Server) Start() error {
	return s.app.Listen(":" + s.config.Port)
}

// Shutdown drains in-flight requests and closes connections.
func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.app.ShutdownWithContext(ctx); err != nil {
		return err
	}
	if s.redis != nil {
		_ = s.redis.Close()
	}
	if sqlDB, err := s.db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	return nil
}
