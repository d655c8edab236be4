// Package server contains the HTTP handlers for the application's endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"inkwell/internal/cache"
	"inkwell/internal/config"
	"inkwell/internal/database"
	"inkwell/internal/media"
	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/repository"
	"inkwell/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "inkwell-api"
	tokenAudience = "inkwell-client"
	tokenLifetime = 7 * 24 * time.Hour
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	promMiddleware *fiberprometheus.FiberPrometheus

	userRepo    repository.UserRepository
	groupRepo   repository.GroupRepository
	postRepo    repository.PostRepository
	commentRepo repository.CommentRepository
	followRepo  repository.FollowRepository

	store          *media.Store
	feedCache      *cache.FeedCache
	contentService *service.ContentService
	feedService    *service.FeedService
	followService  *service.FollowService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Tests use this with an in-memory database and no Redis.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	userRepo := repository.NewUserRepository(db)
	groupRepo := repository.NewGroupRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)
	followRepo := repository.NewFollowRepository(db)

	store := media.NewStore(cfg.MediaDir)
	feedCache := cache.NewFeedCache(time.Duration(cfg.FeedCacheTTLSec) * time.Second)

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("inkwell-api"),
		userRepo:       userRepo,
		groupRepo:      groupRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		followRepo:     followRepo,
		store:          store,
		feedCache:      feedCache,
	}
	server.contentService = service.NewContentService(postRepo, groupRepo, userRepo, commentRepo, store)
	server.feedService = service.NewFeedService(postRepo, userRepo, groupRepo, followRepo, feedCache)
	server.followService = service.NewFollowService(userRepo, followRepo)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))
}

// SetupRoutes configures all routes for the application. Fixed paths are
// registered before the /:username catch-alls.
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	// Identity provider surface
	auth := app.Group("/auth")
	auth.Get("/login", s.LoginPrompt)
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Post("/logout", s.Logout)
	auth.Delete("/me", s.RequireUser(), s.DeleteMyAccount)

	// Administrative surface
	admin := app.Group("/admin", s.RequireUser(), s.AdminRequired())
	admin.Post("/groups", s.CreateGroup)
	admin.Post("/cache/clear", s.ClearFeedCache)

	// Feeds and authoring
	app.Get("/", s.MainFeed)
	app.Get("/group/:slug", s.GroupFeed)
	app.Get("/new", s.RequireUser(), s.NewPostForm)
	app.Post("/new", s.RequireUser(), middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	app.Get("/follow", s.RequireUser(), s.FollowedFeed)

	// Stored illustrations
	app.Static("/media", s.store.Dir())

	// Author routes come last so fixed paths win.
	app.Get("/:username", s.AuthorFeed)
	app.Post("/:username/follow", s.RequireUser(), middleware.RateLimit(s.redis, 30, time.Minute, "follow"), s.Follow)
	app.Post("/:username/unfollow", s.RequireUser(), s.Unfollow)
	app.Get("/:username/:post_id", s.PostDetail)
	app.Get("/:username/:post_id/edit", s.RequireUser(), s.EditPostForm)
	app.Post("/:username/:post_id/edit", s.RequireUser(), s.EditPost)
	app.Post("/:username/:post_id/comment", s.RequireUser(), middleware.RateLimit(s.redis, 15, time.Minute, "comment"), s.AddComment)

	// Custom 404 for everything unmatched.
	app.Use(s.NotFound)
}

// NotFound renders the custom 404 payload with the requested path.
func (s *Server) NotFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "Page not found",
		"path":  c.Path(),
	})
}

// ErrorHandler is the Fiber global error handler: AppError codes map to their
// statuses, anything else becomes the custom 500 payload with no detail.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		switch appErr.Code {
		case models.CodeNotFound:
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Page not found",
				"path":  c.Path(),
			})
		case models.CodeValidation:
			return models.RespondWithError(c, fiber.StatusBadRequest, appErr)
		case models.CodeUnauthorized:
			return models.RespondWithError(c, fiber.StatusUnauthorized, appErr)
		}
	}

	middleware.Logger.ErrorContext(c.UserContext(), "unhandled error",
		"path", c.Path(), "error", err.Error())
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Server error",
	})
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Redis only backs rate limiting and token revocation; its absence
		// degrades, not breaks, the service.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// RequireUser returns middleware that resolves the authenticated user and
// redirects anonymous requests to the login page, per the site's navigation
// contract (protected pages never render an error, they bounce to login).
func (s *Server) RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, username, ok := s.currentUser(c)
		if !ok {
			return c.Redirect("/auth/login", fiber.StatusFound)
		}

		c.Locals("userID", userID)
		c.Locals("username", username)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, userID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// AdminRequired returns middleware that rejects non-admin users with 403.
// Must be placed after RequireUser so that userID is available in locals.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("userID").(uint)

		user, err := s.userRepo.GetByID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		if !user.IsAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewUnauthorizedError("Admin access required"))
		}
		return c.Next()
	}
}

// currentUser extracts and validates the caller's token. It returns ok=false
// for anonymous or invalid credentials; callers decide whether that redirects
// or merely degrades the view.
func (s *Server) currentUser(c *fiber.Ctx) (uint, string, bool) {
	tokenString := ""
	if authHeader := c.Get("Authorization"); authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && parts[0] == "Bearer" {
			tokenString = parts[1]
		}
	}
	if tokenString == "" {
		tokenString = c.Cookies("token")
	}
	if tokenString == "" {
		tokenString = c.Query("token")
	}
	if tokenString == "" {
		return 0, "", false
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, "", false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return 0, "", false
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return 0, "", false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return 0, "", false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, "", false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, "", false
	}

	// Revoked tokens carry a blacklisted jti.
	if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
		blacklisted, err := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
		if err == nil && blacklisted > 0 {
			return 0, "", false
		}
	}

	username, _ := claims["username"].(string)
	return uint(userID), username, true
}

// optionalUserID resolves the caller when a valid token is present but does
// not enforce authentication.
func (s *Server) optionalUserID(c *fiber.Ctx) uint {
	userID, _, ok := s.currentUser(c)
	if !ok {
		return 0
	}
	return userID
}

// Shutdown releases server resources: the database pool and, when present,
// the Redis connection.
func (s *Server) Shutdown(ctx context.Context) error {
	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			log.Printf("error closing redis: %v", rerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
