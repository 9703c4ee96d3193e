// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "aura/docs" // swagger docs
	"aura/internal/cache"
	"aura/internal/config"
	"aura/internal/database"
	"aura/internal/featureflags"
	"aura/internal/middleware"
	"aura/internal/models"
	"aura/internal/observability"
	"aura/internal/realtime"
	"aura/internal/repository"
	"aura/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	store          repository.Store
	verifier       middleware.TokenVerifier
	featureFlags   *featureflags.Manager
	hub            *realtime.Hub
	reconciler     *service.AuraReconciler
	reconcileCron  *cron.Cron

	postService     *service.PostService
	capsuleService  *service.TimeCapsuleService
	circleService   *service.MoodCircleService
	vibeService     *service.VibeService
	auraService     *service.AuraService
	moodStatService *service.MoodStatService
	userService     *service.UserService
	uploadService   *service.UploadService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	// Redis is optional: without it caching, revocation and the cross-instance relay are off.
	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient())
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and optionally
// performs explicit seeding.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil || db == nil {
		return nil, errors.New("config and database are required")
	}

	store := repository.NewStore(db)
	flags := featureflags.NewManager(cfg.FeatureFlags)
	hub := realtime.NewHub(
		realtime.NewRegistry(cfg.WSMaxConnections),
		realtime.NewRelay(redisClient),
		flags,
	)

	uploadDir := cfg.UploadDir
	if uploadDir == "" {
		uploadDir = service.DefaultUploadDir
	}

	server := &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: observability.HTTPMetrics("aura-api"),
		store:          store,
		verifier: middleware.TokenVerifier{
			Secret:   []byte(cfg.JWTSecret),
			Issuer:   cfg.AuthIssuer,
			Audience: cfg.AuthAudience,
		},
		featureFlags: flags,
		hub:          hub,
		reconciler:   service.NewAuraReconciler(store, redisClient),
	}

	server.postService = service.NewPostService(store, redisClient, hub, cfg.PublicBaseURL)
	server.capsuleService = service.NewTimeCapsuleService(store, redisClient, flags)
	server.circleService = service.NewMoodCircleService(store)
	server.vibeService = service.NewVibeService(store, redisClient)
	server.auraService = service.NewAuraService(store)
	server.moodStatService = service.NewMoodStatService(store, redisClient)
	server.userService = service.NewUserService(store, redisClient)
	server.uploadService = service.NewUploadService(uploadDir, cfg.UploadMaxBytes)

	return server, nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.TracingMiddleware())

	// Context Middleware to propagate Request ID and trace ID
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(s.promMiddleware.Middleware)
	}

	app.Use(helmet.New(helmet.Config{
		CrossOriginResourcePolicy: "cross-origin",
	}))

	app.Use(middleware.StructuredLogger())

	// CORS middleware should run before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:5173,http://localhost:3000,http://127.0.0.1:5173"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     "GET,POST,PUT,PATCH,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they should be handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			observability.RateLimitRejections.WithLabelValues("global").Inc()
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Message: "Too many requests, please try again later.",
				Code:    middleware.CodeRateLimited,
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}

	app.Get("/uploads/:name", s.ServeUpload)
	app.Get("/ws", s.WebSocketUpgrade(), s.WebSocketHandler())

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Aura Backend Metrics Dashboard",
	}))

	// Public routes are registered before the authenticated group so they
	// match first.
	api.Get("/posts", s.GetPosts)
	api.Get("/posts/:id", s.GetPost)
	api.Post("/posts/:id/share", s.SharePost)
	api.Get("/users/:id/posts", s.GetUserPosts)
	api.Get("/time-capsules/community", s.GetCommunityCapsules)
	api.Get("/mood-circles", s.GetMoodCircles)
	api.Get("/vibes/:postId", s.GetPostVibes)
	api.Get("/mood-stats/global", s.GetGlobalMoodStats)
	api.Get("/mood-stats/region", s.GetRegionMoodStats)

	protected := api.Group("", s.AuthRequired())

	auth := protected.Group("/auth")
	auth.Get("/user", s.GetCurrentUser)
	auth.Post("/logout", s.Logout)

	protected.Patch("/user/profile", s.UpdateProfile)

	posts := protected.Group("/posts")
	posts.Post("/", middleware.RateLimit(s.redis, 10, time.Minute, "create_post"), s.CreatePost)
	posts.Get("/user/:userId", s.GetPostsByUser)
	posts.Put("/:id", s.UpdatePost)
	posts.Delete("/:id", s.DeletePost)

	capsules := protected.Group("/time-capsules")
	capsules.Post("/", s.CreateCapsule)
	capsules.Get("/user", s.GetUserCapsules)
	capsules.Get("/unlocked", s.GetUnlockedCapsules)
	capsules.Post("/:id/unlock", s.UnlockCapsule)
	capsules.Put("/:id", s.UpdateCapsule)
	capsules.Delete("/:id", s.DeleteCapsule)

	circles := protected.Group("/mood-circles")
	circles.Post("/", s.CreateMoodCircle)
	circles.Post("/:id/join", s.JoinMoodCircle)
	circles.Post("/:id/leave", s.LeaveMoodCircle)

	vibes := protected.Group("/vibes")
	vibes.Post("/", middleware.RateLimit(s.redis, 60, time.Minute, "vibe"), s.ToggleVibe)
	vibes.Delete("/:postId", s.RemoveVibe)

	upload := protected.Group("/upload", middleware.RateLimit(s.redis, 20, time.Minute, "upload"))
	upload.Post("/image", s.UploadImage)
	upload.Post("/audio", s.UploadAudio)

	protected.Get("/aura-activities", s.GetAuraActivities)
	protected.Get("/aura/summary", s.GetAuraSummary)
	protected.Get("/feature-flags", s.GetFeatureFlags)
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
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if err := s.store.Ping(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis is optional; the app degrades to single-instance, uncached mode without it.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus != "healthy" || redisStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"websocketClients": s.hub.Registry().Len(),
		"time":             time.Now(),
	})
}

// ServeUpload handles GET /uploads/:name
func (s *Server) ServeUpload(c *fiber.Ctx) error {
	name := filepath.Base(c.Params("name"))
	if name == "." || name == "/" || strings.HasPrefix(name, ".") {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "File not found"})
	}

	path := filepath.Join(s.uploadService.Dir(), name)
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return c.Status(fiber.StatusNotFound).JSON(models.ErrorResponse{Message: "File not found"})
	}

	c.Set(fiber.HeaderCacheControl, "public, max-age=86400")
	return c.SendFile(path)
}

// AuthRequired returns the authentication middleware. The session token comes
// from the Authorization header or the session cookie; the user row is upserted
// from its claims.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := middleware.ExtractToken(c, s.config.SessionCookie)
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := s.verifier.Verify(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		if claims.ID != "" && s.redis != nil {
			revoked, err := s.redis.Exists(c.UserContext(), cache.BlacklistKey(claims.ID)).Result()
			if err != nil {
				observability.RedisErrorRate.WithLabelValues("blacklist").Inc()
			} else if revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		user, err := s.userService.SyncUser(c.UserContext(), service.SyncUserInput{
			ID:              claims.Subject,
			Email:           claims.Email,
			FirstName:       claims.GivenName,
			LastName:        claims.FamilyName,
			ProfileImageURL: claims.Picture,
		})
		if err != nil {
			return s.respondError(c, "authenticate", err)
		}

		middleware.SetUserID(c, user.ID)
		c.Locals(localsClaims, claims)
		c.Locals(localsUser, user)

		return c.Next()
	}
}

// optionalUserID attempts to identify the caller without enforcing a session.
func (s *Server) optionalUserID(c *fiber.Ctx) (string, bool) {
	tokenString := middleware.ExtractToken(c, s.config.SessionCookie)
	if tokenString == "" {
		return "", false
	}
	claims, err := s.verifier.Verify(tokenString)
	if err != nil {
		return "", false
	}
	return claims.Subject, true
}

// App builds the Fiber app with middleware and routes. Start uses it; tests
// drive it with app.Test.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:   "Aura API",
		BodyLimit: int(s.uploadService.MaxBytes()) + 1024*1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Message: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if err := s.hub.Start(s.shutdownCtx); err != nil {
		middleware.Logger.Warn("realtime relay unavailable, delivering to local clients only",
			slog.String("error", err.Error()))
	}

	reconcileCron, err := s.reconciler.Schedule(s.shutdownCtx, s.config.AuraReconcileSchedule)
	if err != nil {
		return fmt.Errorf("schedule aura reconciler: %w", err)
	}
	s.reconcileCron = reconcileCron

	middleware.Logger.Info("Server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	// Cancel the server-scoped context to stop the relay subscriber
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.reconcileCron != nil {
		<-s.reconcileCron.Stop().Done()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down realtime hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	middleware.Logger.Info("Server shutdown complete")
	return nil
}
