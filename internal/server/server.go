// Package server contains the HTTP handlers of the highlights API.
package server

import (
	"context"
	"log/slog"
	"time"

	_ "blizz/docs" // swagger docs
	"blizz/internal/config"
	"blizz/internal/events"
	"blizz/internal/featureflags"
	"blizz/internal/middleware"
	"blizz/internal/models"
	"blizz/internal/notifications"
	"blizz/internal/repository"
	"blizz/internal/service"
	"blizz/internal/storage"

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
	"gorm.io/gorm"
)

// Deps are the already-initialized resources a Server runs on.
type Deps struct {
	DB    *gorm.DB
	Redis *redis.Client
	Media storage.MediaStore
	// MediaDir is served under /media when non-empty.
	MediaDir string
	Events   events.Publisher
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	auth           *middleware.Authenticator
	featureFlags   *featureflags.Manager
	events         events.Publisher
	mediaDir       string

	userService         *service.UserService
	highlightService    *service.HighlightService
	feedService         *service.FeedService
	appreciationService *service.AppreciationService
	subscriptionService *service.SubscriptionService
}

// NewServer wires repositories and services over deps.
func NewServer(cfg *config.Config, deps Deps) *Server {
	publisher := deps.Events
	if publisher == nil {
		publisher = events.Nop{}
	}
	var notifier service.UserNotifier
	if deps.Redis != nil {
		notifier = notifications.NewNotifier(deps.Redis)
	}

	userRepo := repository.NewUserRepository(deps.DB)
	highlightRepo := repository.NewHighlightRepository(deps.DB)
	appreciationRepo := repository.NewAppreciationRepository(deps.DB)
	subscriptionRepo := repository.NewSubscriptionRepository(deps.DB)
	flags := featureflags.NewManager(cfg.FeatureFlags)

	s := &Server{
		config:         cfg,
		db:             deps.DB,
		redis:          deps.Redis,
		promMiddleware: middleware.InitMetrics("highlights-api"),
		auth:           middleware.NewAuthenticator(cfg.JWTSecret, deps.Redis),
		featureFlags:   flags,
		events:         publisher,
		mediaDir:       deps.MediaDir,
	}

	s.userService = service.NewUserService(userRepo)
	s.highlightService = service.NewHighlightService(service.HighlightDeps{
		Highlights:     highlightRepo,
		Appreciations:  appreciationRepo,
		Comments:       repository.NewCommentRepository(deps.DB),
		Views:          repository.NewViewRepository(deps.DB),
		Shares:         repository.NewShareRepository(deps.DB),
		Users:          userRepo,
		Media:          deps.Media,
		Events:         publisher,
		Notifier:       notifier,
		TTL:            cfg.HighlightTTL(),
		MaxUploadBytes: int64(cfg.MaxUploadSizeMB) << 20,
	})
	s.feedService = service.NewFeedService(highlightRepo, appreciationRepo, subscriptionRepo, flags, service.FeedConfig{
		PageSize:            cfg.FeedPageSize,
		TrendingWindowHours: cfg.TrendingWindowHours,
		TrendingCacheTTL:    cfg.TrendingCacheTTL(),
	})
	s.appreciationService = service.NewAppreciationService(appreciationRepo, publisher, notifier)
	s.subscriptionService = service.NewSubscriptionService(subscriptionRepo, userRepo, highlightRepo, publisher, notifier)
	return s
}

// NewApp builds the Fiber app with middleware and routes installed.
func (s *Server) NewApp() *fiber.App {
	bodyLimit := 4 * 1024 * 1024
	if s.config.MaxUploadSizeMB > 0 {
		// Leave room for the multipart envelope and caption.
		bodyLimit = (s.config.MaxUploadSizeMB + 1) << 20
	}

	app := fiber.New(fiber.Config{
		AppName:   "Highlights API",
		BodyLimit: bodyLimit,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return models.RespondWithError(c, fe.Code, fe)
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

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(middleware.TracingMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	app.Use(helmet.New(helmet.Config{
		// Videos under /media are embedded by the web client.
		CrossOriginResourcePolicy: "cross-origin",
	}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	app.Use(cors.New(cors.Config{
		AllowOrigins:     s.config.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	app.Use(limiter.New(limiter.Config{
		Max:        300,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/health", s.ReadinessCheck)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	api.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "Highlights Metrics Dashboard",
	}))
	api.Get("/swagger/*", swagger.HandlerDefault)

	if s.mediaDir != "" {
		app.Static("/media", s.mediaDir, fiber.Static{ByteRange: true})
	}

	required := s.auth.Required()
	optional := s.auth.Optional()

	auth := api.Group("/auth")
	auth.Post("/signup", middleware.RateLimit(s.redis, 3, 10*time.Minute, "signup"), s.Signup)
	auth.Post("/login", middleware.RateLimit(s.redis, 10, 5*time.Minute, "login"), s.Login)

	api.Get("/feature-flags", optional, s.GetFeatureFlags)

	highlights := api.Group("/highlights")
	// Specific routes before the generic /:id routes.
	highlights.Get("/feed", optional, s.GetFeed)
	highlights.Get("/for-you", optional, s.GetForYouFeed)
	highlights.Get("/friends", required, s.GetFriendsFeed)
	highlights.Get("/trending", s.GetTrendingHashtags)
	highlights.Get("/search", middleware.RateLimit(s.redis, 30, time.Minute, "search"), optional, s.SearchHighlights)
	highlights.Get("/hashtag/:tag", optional, s.GetHashtagHighlights)
	highlights.Post("/", required, middleware.RateLimit(s.redis, 10, time.Hour, "create_highlight"), s.CreateHighlight)
	highlights.Get("/:id/comments", s.GetHighlightComments)
	highlights.Post("/:id/comments", required, middleware.RateLimit(s.redis, 10, time.Minute, "create_comment"), s.CreateHighlightComment)
	highlights.Post("/:id/appreciate", required, s.AppreciateHighlight)
	highlights.Post("/:id/share", required, s.ShareHighlight)
	highlights.Post("/:id/view", optional, s.RecordHighlightView)
	highlights.Get("/:id", optional, s.GetHighlight)
	highlights.Delete("/:id", required, s.DeleteHighlight)

	users := api.Group("/users")
	users.Get("/me", required, s.GetMyProfile)
	users.Put("/me", required, s.UpdateMyProfile)
	users.Get("/me/subscriptions", required, s.GetMySubscriptions)
	users.Get("/me/subscribers", required, s.GetMySubscribers)
	users.Get("/me/stats", required, s.GetMyStats)
	users.Get("/:id/highlights", optional, s.GetUserHighlights)
	users.Get("/:id/stats", s.GetUserStats)
	users.Post("/:id/subscribe", required, s.ToggleSubscription)
	users.Get("/:id", s.GetUserProfile)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck reports database and Redis health. Redis is optional: a
// missing client is reported but does not fail readiness.
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" || redisStatus == "unhealthy" {
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

// Start builds the app and listens on the configured port.
func (s *Server) Start() error {
	app := s.NewApp()
	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown stops the HTTP server and closes the event publisher. Database
// and Redis are owned by the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}
	if err := s.events.Close(); err != nil {
		middleware.Logger.Error("error closing event publisher", slog.String("error", err.Error()))
	}
	middleware.Logger.Info("server shutdown complete")
	return nil
}
